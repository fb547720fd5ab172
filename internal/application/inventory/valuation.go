package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// ReportUseCase consultas de solo lectura sobre el motor de stock: historial del
// libro, lotes de un artículo y valorización del inventario. Trabaja con
// repositorios atados al pool (sin transacción ni bloqueos).
type ReportUseCase struct {
	items   repository.ItemRepository
	batches repository.BatchRepository
	ledger  repository.LedgerRepository
}

// NewReportUseCase construye el caso de uso de reportes.
func NewReportUseCase(items repository.ItemRepository, batches repository.BatchRepository, ledger repository.LedgerRepository) *ReportUseCase {
	return &ReportUseCase{items: items, batches: batches, ledger: ledger}
}

// History devuelve los asientos del libro de un artículo en un rango de fechas,
// ordenados por fecha (scan reiniciable vía limit/offset).
func (uc *ReportUseCase) History(ctx context.Context, itemID string, from, to *time.Time, page dto.PageRequest) ([]dto.LedgerEntryResponse, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	entries, err := uc.ledger.ListByItem(itemID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerEntryResponse{
			ID:        e.ID,
			ItemID:    e.ItemID,
			Direction: e.Direction,
			Quantity:  e.Quantity,
			UnitPrice: e.UnitPrice,
			Reference: e.Reference,
			CreatedBy: e.CreatedBy,
			CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}

// Batches devuelve los lotes de un artículo (incluidos los agotados).
func (uc *ReportUseCase) Batches(ctx context.Context, itemID string) ([]dto.BatchResponse, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	batches, err := uc.batches.ListByItem(itemID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, dto.BatchResponse{
			ID:         b.ID,
			Reference:  b.Reference,
			QuantityIn: b.QuantityIn,
			Remaining:  b.Remaining,
			UnitCost:   b.UnitCost,
			ReceivedAt: b.ReceivedAt,
		})
	}
	return out, nil
}

// Valuation devuelve la valorización del inventario: por artículo simple, stock
// actual, costo unitario y valor restante en lotes. Los bundles se omiten
// (stock derivado, valor ya contado en los componentes).
func (uc *ReportUseCase) Valuation(ctx context.Context) (*dto.ValuationReport, error) {
	items, err := uc.items.List("", 0, 0)
	if err != nil {
		return nil, err
	}
	report := &dto.ValuationReport{Items: []dto.ValuationRow{}}
	for _, it := range items {
		if it.IsBundle() {
			continue
		}
		batches, err := uc.batches.ListByItem(it.ID)
		if err != nil {
			return nil, err
		}
		var qty, value decimal.Decimal
		for _, b := range batches {
			qty = qty.Add(b.Remaining)
			value = value.Add(b.Value())
		}
		report.Items = append(report.Items, dto.ValuationRow{
			ItemID:     it.ID,
			SKU:        it.SKU,
			Name:       it.Name,
			OnHand:     it.OnHand,
			UnitCost:   it.Cost,
			BatchQty:   qty,
			BatchValue: value,
		})
		report.TotalValue = report.TotalValue.Add(value)
	}
	return report, nil
}
