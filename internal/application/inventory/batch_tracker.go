package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-inventario/internal/domain/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// ConsumedLot es una porción consumida de un lote: qué lote, cuánto y a qué costo.
type ConsumedLot struct {
	Batch    *entity.Batch
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// SelectBatches elige lotes para consumir qty según la política de costeo.
// FIFO recorre los lotes más antiguos primero; LIFO los más recientes primero;
// SPECIFIC exige batchRef y consume únicamente ese lote; AVERAGE agota FIFO pero
// no exige cobertura (el costo no sale de los lotes sino del promedio del artículo).
// batches debe venir ordenado por fecha de recepción ascendente y solo con Remaining > 0.
// No muta los lotes: devuelve las porciones a aplicar por el llamador.
func SelectBatches(batches []*entity.Batch, qty decimal.Decimal, method domaininv.CostMethod, batchRef string) ([]ConsumedLot, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	if method == domaininv.CostMethodSpecific {
		if batchRef == "" {
			return nil, domain.ErrBatchNotFound
		}
		for _, b := range batches {
			if b.Reference != batchRef {
				continue
			}
			if b.Remaining.LessThan(qty) {
				return nil, domain.ErrInsufficientBatchStock
			}
			return []ConsumedLot{{Batch: b, Quantity: qty, UnitCost: b.UnitCost}}, nil
		}
		return nil, domain.ErrBatchNotFound
	}

	ordered := batches
	if method == domaininv.CostMethodLIFO {
		ordered = make([]*entity.Batch, len(batches))
		for i, b := range batches {
			ordered[len(batches)-1-i] = b
		}
	}

	var lots []ConsumedLot
	pending := qty
	for _, b := range ordered {
		if !pending.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(pending, b.Remaining)
		if !take.GreaterThan(decimal.Zero) {
			continue
		}
		lots = append(lots, ConsumedLot{Batch: b, Quantity: take, UnitCost: b.UnitCost})
		pending = pending.Sub(take)
	}
	// AVERAGE no exige que los lotes cubran la cantidad: el faltante solo
	// significa que el libro de lotes quedó por detrás del stock escalar.
	if pending.GreaterThan(decimal.Zero) && method != domaininv.CostMethodAverage {
		return nil, domain.ErrInsufficientBatchStock
	}
	return lots, nil
}

// CostBasis devuelve el costo unitario a fijar para una salida de qty unidades.
// AVERAGE usa el costo promedio actual del artículo; FIFO/LIFO/SPECIFIC usan el
// promedio ponderado de las porciones consumidas.
func CostBasis(item *entity.Item, lots []ConsumedLot, qty decimal.Decimal, method domaininv.CostMethod) decimal.Decimal {
	if method == domaininv.CostMethodAverage || len(lots) == 0 {
		return item.Cost
	}
	var total, covered decimal.Decimal
	for _, l := range lots {
		total = total.Add(l.Quantity.Mul(l.UnitCost))
		covered = covered.Add(l.Quantity)
	}
	if !covered.GreaterThan(decimal.Zero) {
		return item.Cost
	}
	return total.Div(covered)
}

// receiveBatch crea el lote de una recepción con Remaining = cantidad recibida.
func receiveBatch(batches repository.BatchRepository, itemID string, qty, unitCost decimal.Decimal, reference string, now time.Time) (*entity.Batch, error) {
	b := &entity.Batch{
		ID:         uuid.New().String(),
		ItemID:     itemID,
		Reference:  reference,
		QuantityIn: qty,
		Remaining:  qty,
		UnitCost:   unitCost,
		ReceivedAt: now,
	}
	if err := batches.Create(b); err != nil {
		return nil, err
	}
	return b, nil
}

// consumeBatches carga los lotes disponibles del artículo, selecciona según la
// política y persiste los decrementos. Devuelve las porciones consumidas.
func consumeBatches(repo repository.BatchRepository, item *entity.Item, qty decimal.Decimal, method domaininv.CostMethod, batchRef string) ([]ConsumedLot, error) {
	available, err := repo.ListAvailable(item.ID)
	if err != nil {
		return nil, err
	}
	lots, err := SelectBatches(available, qty, method, batchRef)
	if err != nil {
		return nil, err
	}
	for _, l := range lots {
		if err := repo.UpdateRemaining(l.Batch.ID, l.Batch.Remaining.Sub(l.Quantity)); err != nil {
			return nil, err
		}
	}
	return lots, nil
}

// reconcileBatches redistribuye los lotes para que Σ Remaining == newTotal.
// Política determinística (administrativa, usada por ajustes/opname):
//   - diferencia positiva: se crea un lote de ajuste al costo promedio actual
//     del artículo, referencia "AJUSTE".
//   - diferencia negativa: se agotan lotes existentes en orden FIFO.
//
// El sistema de referencia sobrescribía la cantidad escalar sin tocar lotes y
// rompía el invariante; aquí se mantiene siempre.
func reconcileBatches(repo repository.BatchRepository, item *entity.Item, newTotal decimal.Decimal, now time.Time) error {
	available, err := repo.ListAvailable(item.ID)
	if err != nil {
		return err
	}
	var current decimal.Decimal
	for _, b := range available {
		current = current.Add(b.Remaining)
	}
	delta := newTotal.Sub(current)
	switch {
	case delta.IsZero():
		return nil
	case delta.GreaterThan(decimal.Zero):
		_, err := receiveBatch(repo, item.ID, delta, item.Cost, "AJUSTE", now)
		return err
	default:
		pending := delta.Neg()
		for _, b := range available {
			if !pending.GreaterThan(decimal.Zero) {
				break
			}
			take := decimal.Min(pending, b.Remaining)
			if err := repo.UpdateRemaining(b.ID, b.Remaining.Sub(take)); err != nil {
				return err
			}
			pending = pending.Sub(take)
		}
		if pending.GreaterThan(decimal.Zero) {
			return domain.ErrInsufficientBatchStock
		}
		return nil
	}
}
