package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-inventario/internal/domain/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// SaleUseCase crea ventas descontando el inventario en una sola transacción y
// gestiona su máquina de estados: PENDING -> PAID -> REFUNDED (terminal). El
// stock se reserva optimistamente al crear la venta, una sola vez; la reversión
// ocurre una sola vez al pasar a REFUNDED (o EXPIRED por compensación).
type SaleUseCase struct {
	txRunner   inventory.TxRunner
	mutator    *inventory.StockMutator
	itemRepo   repository.ItemRepository
	saleRepo   repository.SaleRepository
	authorizer PaymentAuthorizer
	cogsMethod domaininv.CostMethod
}

// NewSaleUseCase construye el caso de uso de ventas. cogsMethod es la política
// de costeo global (settings) pasada como parámetro explícito.
func NewSaleUseCase(
	txRunner inventory.TxRunner,
	mutator *inventory.StockMutator,
	itemRepo repository.ItemRepository,
	saleRepo repository.SaleRepository,
	authorizer PaymentAuthorizer,
	cogsMethod domaininv.CostMethod,
) *SaleUseCase {
	return &SaleUseCase{
		txRunner:   txRunner,
		mutator:    mutator,
		itemRepo:   itemRepo,
		saleRepo:   saleRepo,
		authorizer: authorizer,
		cogsMethod: cogsMethod,
	}
}

// CreateSale valida las líneas, autoriza el pago para medios no-efectivo y
// ejecuta el fan-out de stock + persistencia de la venta en una transacción.
// El costo de cada línea queda fijado al momento de la venta (CostAtSale).
func (uc *SaleUseCase) CreateSale(ctx context.Context, in dto.CreateSaleRequest, actor string) (*dto.SaleResponse, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	switch in.Tender {
	case entity.TenderCash, entity.TenderCard, entity.TenderTransfer, entity.TenderManual:
	default:
		return nil, domain.ErrInvalidInput
	}

	// Validar artículos y completar precios (fuera de la tx, solo lectura).
	sellLines := make([]inventory.SellLineInput, 0, len(in.Lines))
	var total decimal.Decimal
	for i := range in.Lines {
		line := &in.Lines[i]
		if line.ItemID == "" || !line.Quantity.GreaterThan(decimal.Zero) || line.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		item, err := uc.itemRepo.GetByID(line.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrNotFound
		}
		if item.Type != entity.ItemTypeProduct {
			// los ingredientes no se venden directamente
			return nil, domain.ErrInvalidInput
		}
		if line.UnitPrice.IsZero() {
			line.UnitPrice = item.Price
		}
		total = total.Add(line.Quantity.Mul(line.UnitPrice))
		sellLines = append(sellLines, inventory.SellLineInput{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			BatchRef:  line.BatchRef,
		})
	}

	now := time.Now()
	saleID := uuid.New().String()
	status := entity.SaleStatusPaid
	paidAt := &now

	// Autorización externa antes de tocar stock; efectivo/manual es implícito.
	if in.Tender != entity.TenderCash && in.Tender != entity.TenderManual {
		auth, err := uc.authorizer.Authorize(ctx, AuthorizationRequest{
			SaleID: saleID,
			Tender: in.Tender,
			Amount: total,
		})
		if err != nil {
			return nil, err
		}
		if auth == nil {
			return nil, domain.ErrPaymentDeclined
		}
		if auth.Pending {
			status = entity.SaleStatusPending
			paidAt = nil
		}
	}

	number := in.Number
	if number == "" {
		number = fmt.Sprintf("POS-%d", now.Unix())
	}

	var sale *entity.Sale
	var saleLines []*entity.SaleLine
	err := uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		results, err := uc.mutator.SellInTx(r, sellLines, uc.cogsMethod, saleID, actor, now)
		if err != nil {
			return err
		}

		var costTotal decimal.Decimal
		sale = &entity.Sale{
			ID:        saleID,
			Number:    number,
			Status:    status,
			Tender:    in.Tender,
			Total:     total,
			CreatedBy: actor,
			CreatedAt: now,
			PaidAt:    paidAt,
		}
		for i, line := range in.Lines {
			cost := results[i].UnitCost
			costTotal = costTotal.Add(cost.Mul(line.Quantity))
			saleLines = append(saleLines, &entity.SaleLine{
				ID:         uuid.New().String(),
				SaleID:     saleID,
				ItemID:     line.ItemID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				CostAtSale: cost,
				Subtotal:   line.Quantity.Mul(line.UnitPrice),
			})
		}
		sale.CostTotal = costTotal

		if err := r.Sales.Create(sale); err != nil {
			return err
		}
		for _, l := range saleLines {
			if err := r.Sales.CreateLine(l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, saleLines), nil
}

// ConfirmPayment transiciona PENDING -> PAID. Sin efecto sobre stock: ya quedó
// reservado al crear la venta.
func (uc *SaleUseCase) ConfirmPayment(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	var sale *entity.Sale
	var lines []*entity.SaleLine
	err := uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		var err error
		sale, err = r.Sales.GetForUpdate(saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Status != entity.SaleStatusPending {
			return domain.ErrConflict
		}
		now := time.Now()
		sale.Status = entity.SaleStatusPaid
		sale.PaidAt = &now
		if err := r.Sales.Update(sale); err != nil {
			return err
		}
		lines, err = r.Sales.GetLines(saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, lines), nil
}

// RefundSale transiciona PAID -> REFUNDED revirtiendo el fan-out original por
// las cantidades registradas. Una segunda invocación sobre la misma venta
// retorna ErrAlreadyRefunded y no toca cantidades.
func (uc *SaleUseCase) RefundSale(ctx context.Context, saleID, actor string) (*dto.SaleResponse, error) {
	var sale *entity.Sale
	var lines []*entity.SaleLine
	err := uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		var err error
		sale, err = r.Sales.GetForUpdate(saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		switch sale.Status {
		case entity.SaleStatusRefunded, entity.SaleStatusExpired:
			return domain.ErrAlreadyRefunded
		case entity.SaleStatusPaid:
		default:
			return domain.ErrConflict
		}
		lines, err = r.Sales.GetLines(saleID)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := uc.mutator.RefundInTx(r, sale, actor, now); err != nil {
			return err
		}
		sale.Status = entity.SaleStatusRefunded
		sale.RefundedAt = &now
		return r.Sales.Update(sale)
	})
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, lines), nil
}

// ReleaseExpiredPending aplica la reversión compensatoria a ventas atascadas en
// PENDING por más de ttl (el pago nunca se confirmó): revierte el stock y marca
// EXPIRED. Cada venta corre en su propia transacción. Devuelve cuántas liberó.
func (uc *SaleUseCase) ReleaseExpiredPending(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)
	stale, err := uc.saleRepo.ListByStatusOlderThan(entity.SaleStatusPending, cutoff)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, s := range stale {
		err := uc.txRunner.Run(ctx, func(r inventory.Repos) error {
			sale, err := r.Sales.GetForUpdate(s.ID)
			if err != nil {
				return err
			}
			if sale == nil || sale.Status != entity.SaleStatusPending {
				return nil // confirmada o liberada por otro proceso
			}
			now := time.Now()
			if err := uc.mutator.RefundInTx(r, sale, "sistema", now); err != nil {
				return err
			}
			sale.Status = entity.SaleStatusExpired
			sale.RefundedAt = &now
			return r.Sales.Update(sale)
		})
		if err != nil {
			return released, err
		}
		released++
	}
	return released, nil
}

// GetSale obtiene una venta con sus líneas.
func (uc *SaleUseCase) GetSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.saleRepo.GetLines(saleID)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, lines), nil
}

// ProfitReport suma utilidad del período con el costo fijado al vender: los
// reportes históricos no cambian aunque el costo promedio actual se mueva.
// Solo cuentan ventas PAID; las devueltas/expiradas quedan fuera.
func (uc *SaleUseCase) ProfitReport(ctx context.Context, from, to time.Time) (*dto.ProfitReportResponse, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	salesList, err := uc.saleRepo.ListByPeriod(from, to, 0, 0)
	if err != nil {
		return nil, err
	}
	report := &dto.ProfitReportResponse{From: from, To: to}
	for _, s := range salesList {
		if s.Status != entity.SaleStatusPaid {
			continue
		}
		report.Sales++
		report.Revenue = report.Revenue.Add(s.Total)
		report.Cost = report.Cost.Add(s.CostTotal)
	}
	report.Profit = report.Revenue.Sub(report.Cost)
	return report, nil
}

func toSaleResponse(s *entity.Sale, lines []*entity.SaleLine) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:         s.ID,
		Number:     s.Number,
		Status:     s.Status,
		Tender:     s.Tender,
		Total:      s.Total,
		CostTotal:  s.CostTotal,
		Profit:     s.Profit(),
		CreatedAt:  s.CreatedAt,
		PaidAt:     s.PaidAt,
		RefundedAt: s.RefundedAt,
		Lines:      make([]dto.SaleLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ID:         l.ID,
			ItemID:     l.ItemID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			CostAtSale: l.CostAtSale,
			Subtotal:   l.Subtotal,
		})
	}
	return resp
}
