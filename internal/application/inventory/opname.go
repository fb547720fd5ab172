package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// OpnameUseCase procesa conteos físicos (stock opname): compara la cantidad
// contada contra la del sistema y aplica la diferencia firmada como ajuste.
type OpnameUseCase struct {
	txRunner TxRunner
}

// NewOpnameUseCase construye el procesador de opname.
func NewOpnameUseCase(txRunner TxRunner) *OpnameUseCase {
	return &OpnameUseCase{txRunner: txRunner}
}

// CountEntry un artículo contado físicamente.
type CountEntry struct {
	ItemID     string
	CountedQty decimal.Decimal
}

// CountResult resultado por artículo de una corrida de opname.
type CountResult struct {
	ItemID     string
	Difference decimal.Decimal
	RecordID   string // vacío si no hubo diferencia
	Skipped    bool   // true si contada == sistema (sin ruido en el libro)
	Error      string // vacío si el artículo se procesó bien
}

// Count procesa una corrida de conteo. Cada artículo corre en su propia
// transacción: el fallo de uno se reporta en su resultado y no revierte a los
// demás (los conteos son independientes entre sí). Con diferencia cero no se
// genera registro ni asiento.
func (uc *OpnameUseCase) Count(ctx context.Context, entries []CountEntry, reason, actor string) ([]CountResult, error) {
	if len(entries) == 0 || reason == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	results := make([]CountResult, 0, len(entries))
	for _, e := range entries {
		res := CountResult{ItemID: e.ItemID}
		if e.ItemID == "" || e.CountedQty.LessThan(decimal.Zero) {
			res.Error = domain.ErrInvalidInput.Error()
			results = append(results, res)
			continue
		}
		err := uc.txRunner.Run(ctx, func(r Repos) error {
			item, err := r.Items.GetForUpdate(e.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrNotFound
			}
			if item.IsBundle() {
				// el stock de un bundle es derivado; no se cuenta físicamente
				return domain.ErrInvalidInput
			}
			diff := e.CountedQty.Sub(item.OnHand)
			if diff.IsZero() {
				res.Skipped = true
				return nil
			}
			record := &entity.StockOpname{
				ID:         uuid.New().String(),
				ItemID:     item.ID,
				SystemQty:  item.OnHand,
				CountedQty: e.CountedQty,
				Difference: diff,
				Reason:     reason,
				CreatedBy:  actor,
				CreatedAt:  now,
			}
			if err := r.Opnames.Create(record); err != nil {
				return err
			}
			if err := applyAdjustment(r, item, diff, reason, actor, now); err != nil {
				return err
			}
			res.Difference = diff
			res.RecordID = record.ID
			return nil
		})
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}
