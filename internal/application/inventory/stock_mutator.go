package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-inventario/internal/domain/inventory"
)

// StockMutator es la única vía permitida para cambiar Item.OnHand. Cada
// operación corre en una transacción con bloqueo de fila (SELECT FOR UPDATE)
// sobre los artículos leídos-y-escritos; el fan-out de bundles bloquea todos los
// componentes en orden ascendente de ID para evitar deadlocks.
type StockMutator struct {
	txRunner TxRunner
}

// NewStockMutator construye el mutador.
func NewStockMutator(txRunner TxRunner) *StockMutator {
	return &StockMutator{txRunner: txRunner}
}

// ReceiveInput entrada para una recepción de mercancía.
type ReceiveInput struct {
	ItemID    string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	Reference string
	Actor     string
}

// Receive registra una recepción: asiento IN en el libro, lote nuevo, costo
// promedio ponderado recalculado y OnHand incrementado, todo en una transacción.
// El bloqueo de la fila serializa recepciones concurrentes del mismo artículo
// (la fórmula de promedio es leer-modificar-escribir).
func (m *StockMutator) Receive(ctx context.Context, in ReceiveInput) error {
	if in.ItemID == "" || !in.Quantity.GreaterThan(decimal.Zero) || in.UnitCost.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	now := time.Now()
	return m.txRunner.Run(ctx, func(r Repos) error {
		item, err := r.Items.GetForUpdate(in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.IsBundle() {
			// un bundle no tiene stock propio; se recibe sobre sus componentes
			return domain.ErrInvalidInput
		}

		if err := r.Ledger.Append(&entity.LedgerEntry{
			ID:        uuid.New().String(),
			ItemID:    item.ID,
			Direction: entity.DirectionIn,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitCost,
			Reference: in.Reference,
			CreatedBy: in.Actor,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if _, err := receiveBatch(r.Batches, item.ID, in.Quantity, in.UnitCost, in.Reference, now); err != nil {
			return err
		}

		newCost := domaininv.CostCalculator(item.OnHand, item.Cost, in.Quantity, in.UnitCost)
		if err := r.Items.UpdateCost(item.ID, newCost); err != nil {
			return err
		}
		return r.Items.UpdateStock(item.ID, item.OnHand.Add(in.Quantity))
	})
}

// Adjust aplica OnHand += delta (delta puede ser negativo) con asiento firmado
// en el libro y redistribución de lotes. Nunca toca el costo unitario.
func (m *StockMutator) Adjust(ctx context.Context, itemID string, delta decimal.Decimal, reason, actor string) error {
	if itemID == "" || delta.IsZero() {
		return domain.ErrInvalidInput
	}
	now := time.Now()
	return m.txRunner.Run(ctx, func(r Repos) error {
		item, err := r.Items.GetForUpdate(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		return applyAdjustment(r, item, delta, reason, actor, now)
	})
}

// applyAdjustment es el cuerpo de Adjust, reutilizado por el procesador de
// opname dentro de su propia transacción (el artículo ya viene bloqueado).
func applyAdjustment(r Repos, item *entity.Item, delta decimal.Decimal, reason, actor string, now time.Time) error {
	if delta.IsZero() {
		return nil
	}
	newQty := item.OnHand.Add(delta)
	if newQty.LessThan(decimal.Zero) {
		return domain.ErrInsufficientStock
	}
	direction := entity.DirectionIn
	if delta.LessThan(decimal.Zero) {
		direction = entity.DirectionOut
	}
	if err := r.Ledger.Append(&entity.LedgerEntry{
		ID:        uuid.New().String(),
		ItemID:    item.ID,
		Direction: direction,
		Quantity:  delta.Abs(),
		UnitPrice: item.Cost,
		Reference: reason,
		CreatedBy: actor,
		CreatedAt: now,
	}); err != nil {
		return err
	}
	if err := reconcileBatches(r.Batches, item, newQty, now); err != nil {
		return err
	}
	if err := r.Items.UpdateStock(item.ID, newQty); err != nil {
		return err
	}
	item.OnHand = newQty
	return nil
}

// SellLineInput una línea a vender (artículo simple o bundle).
type SellLineInput struct {
	ItemID    string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	BatchRef  string // requerido solo bajo política SPECIFIC
}

// SellLineResult costo fijado para la línea al momento de la venta.
type SellLineResult struct {
	Item     *entity.Item
	UnitCost decimal.Decimal // base de costo por unidad vendida (HPP fijado)
}

// leafNeed cantidad de un componente hoja requerida por unidad del bundle vendido.
type leafNeed struct {
	itemID  string
	perUnit decimal.Decimal
}

// expandLeaves aplana la composición de un bundle hasta sus componentes hoja,
// resolviendo bundles anidados recursivamente (un bundle no tiene stock propio:
// vender uno consume las hojas simples de todo su árbol). Los duplicados por
// rutas distintas se acumulan. Devuelve las hojas en orden ascendente de ID.
func expandLeaves(r Repos, bundle *entity.Item, visited map[string]bool) ([]leafNeed, error) {
	acc := map[string]decimal.Decimal{}
	if err := collectLeaves(r, bundle, decimal.NewFromInt(1), visited, acc); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(acc))
	for id := range acc {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	leaves := make([]leafNeed, 0, len(ids))
	for _, id := range ids {
		leaves = append(leaves, leafNeed{itemID: id, perUnit: acc[id]})
	}
	return leaves, nil
}

func collectLeaves(r Repos, bundle *entity.Item, perUnit decimal.Decimal, visited map[string]bool, acc map[string]decimal.Decimal) error {
	// el grafo es un DAG por la validación de escritura; el guard protege
	// contra datos legados
	if visited[bundle.ID] {
		return domain.ErrCyclicComposition
	}
	visited[bundle.ID] = true
	defer delete(visited, bundle.ID)

	comps, err := r.Compositions.ListComponents(bundle.ID)
	if err != nil {
		return err
	}
	if len(comps) == 0 {
		// un bundle sin composición no es vendible
		return domain.ErrInsufficientStock
	}
	for _, c := range comps {
		child, err := r.Items.GetByID(c.ComponentID)
		if err != nil {
			return err
		}
		if child == nil {
			return domain.ErrNotFound
		}
		need := perUnit.Mul(c.Quantity)
		if child.IsBundle() {
			if err := collectLeaves(r, child, need, visited, acc); err != nil {
				return err
			}
			continue
		}
		acc[child.ID] = acc[child.ID].Add(need)
	}
	return nil
}

// SellInTx ejecuta la salida de stock de una venta usando los repositorios de la
// transacción del llamador (el caso de uso de ventas abre la tx). Para un bundle
// el fan-out decrementa cada componente hoja de su árbol de composición (los
// bundles anidados se aplanan) y genera un asiento OUT por hoja; el costo del
// bundle es la suma de los costos de las hojas en este instante.
// Si cualquier línea no tiene disponibilidad, retorna ErrInsufficientStock y el
// rollback del llamador deja todo intacto.
func (m *StockMutator) SellInTx(r Repos, lines []SellLineInput, method domaininv.CostMethod, reference, actor string, now time.Time) ([]SellLineResult, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}

	// Expandir composiciones hasta sus hojas y reunir todos los artículos afectados.
	type expanded struct {
		line   SellLineInput
		item   *entity.Item
		leaves []leafNeed // nil para artículos simples
	}
	var plan []expanded
	involved := map[string]bool{}
	for _, line := range lines {
		if line.ItemID == "" || !line.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		item, err := r.Items.GetByID(line.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrNotFound
		}
		e := expanded{line: line, item: item}
		if item.IsBundle() {
			leaves, err := expandLeaves(r, item, map[string]bool{})
			if err != nil {
				return nil, err
			}
			e.leaves = leaves
			for _, l := range leaves {
				involved[l.itemID] = true
			}
		} else {
			involved[item.ID] = true
		}
		plan = append(plan, e)
	}

	// Bloquear todas las filas afectadas en orden ascendente de ID (anti-deadlock).
	ids := make([]string, 0, len(involved))
	for id := range involved {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	locked := make(map[string]*entity.Item, len(ids))
	for _, id := range ids {
		it, err := r.Items.GetForUpdate(id)
		if err != nil {
			return nil, err
		}
		if it == nil {
			return nil, domain.ErrNotFound
		}
		locked[id] = it
	}

	// Verificación de disponibilidad contra decrementos acumulados, antes de escribir.
	taken := map[string]decimal.Decimal{}
	avail := func(id string) decimal.Decimal {
		return locked[id].OnHand.Sub(taken[id])
	}
	for _, e := range plan {
		if e.leaves != nil {
			for _, l := range e.leaves {
				need := e.line.Quantity.Mul(l.perUnit)
				if avail(l.itemID).LessThan(need) {
					return nil, domain.ErrInsufficientStock
				}
				taken[l.itemID] = taken[l.itemID].Add(need)
			}
		} else {
			if avail(e.item.ID).LessThan(e.line.Quantity) {
				return nil, domain.ErrInsufficientStock
			}
			taken[e.item.ID] = taken[e.item.ID].Add(e.line.Quantity)
		}
	}

	// Aplicar: consumo de lotes, asientos OUT y costo fijado por línea.
	out := func(item *entity.Item, qty, unitCost decimal.Decimal) error {
		return r.Ledger.Append(&entity.LedgerEntry{
			ID:        uuid.New().String(),
			ItemID:    item.ID,
			Direction: entity.DirectionOut,
			Quantity:  qty,
			UnitPrice: unitCost,
			Reference: reference,
			CreatedBy: actor,
			CreatedAt: now,
		})
	}
	// SPECIFIC exige una referencia de lote que solo aplica a la línea vendida;
	// los componentes del fan-out no tienen lote nombrado y consumen FIFO.
	fanMethod := method
	if method == domaininv.CostMethodSpecific {
		fanMethod = domaininv.CostMethodFIFO
	}
	results := make([]SellLineResult, 0, len(plan))
	for _, e := range plan {
		if e.leaves != nil {
			var bundleCost decimal.Decimal
			for _, l := range e.leaves {
				comp := locked[l.itemID]
				need := e.line.Quantity.Mul(l.perUnit)
				lots, err := consumeBatches(r.Batches, comp, need, fanMethod, "")
				if err != nil {
					return nil, err
				}
				basis := CostBasis(comp, lots, need, fanMethod)
				if err := out(comp, need, basis); err != nil {
					return nil, err
				}
				bundleCost = bundleCost.Add(basis.Mul(l.perUnit))
			}
			results = append(results, SellLineResult{Item: e.item, UnitCost: bundleCost})
		} else {
			item := locked[e.item.ID]
			lots, err := consumeBatches(r.Batches, item, e.line.Quantity, method, e.line.BatchRef)
			if err != nil {
				return nil, err
			}
			basis := CostBasis(item, lots, e.line.Quantity, method)
			if err := out(item, e.line.Quantity, basis); err != nil {
				return nil, err
			}
			results = append(results, SellLineResult{Item: item, UnitCost: basis})
		}
	}

	// Persistir los nuevos OnHand una sola vez por artículo.
	for _, id := range ids {
		if taken[id].IsZero() {
			continue
		}
		newQty := locked[id].OnHand.Sub(taken[id])
		if err := r.Items.UpdateStock(id, newQty); err != nil {
			return nil, err
		}
		locked[id].OnHand = newQty
	}
	return results, nil
}

// RefundInTx revierte exactamente la salida registrada de una venta: toma los
// asientos OUT que la venta dejó en el libro (la referencia es el ID de la
// venta) y los invierte uno a uno, cantidad y costo incluidos. Revertir desde
// el libro y no desde la composición vigente hace la reversión exacta aunque la
// composición de un bundle haya cambiado después de vender. Cada cantidad
// devuelta entra como lote de retorno para mantener Σ Remaining == OnHand.
// No altera costos unitarios.
func (m *StockMutator) RefundInTx(r Repos, sale *entity.Sale, actor string, now time.Time) error {
	entries, err := r.Ledger.ListByReference(sale.ID)
	if err != nil {
		return err
	}
	var outs []*entity.LedgerEntry
	for _, e := range entries {
		if e.Direction == entity.DirectionOut {
			outs = append(outs, e)
		}
	}
	if len(outs) == 0 {
		return domain.ErrNotFound
	}

	// Bloquear en orden ascendente de ID, como en la venta.
	involved := map[string]bool{}
	for _, e := range outs {
		involved[e.ItemID] = true
	}
	ids := make([]string, 0, len(involved))
	for id := range involved {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	locked := make(map[string]*entity.Item, len(ids))
	for _, id := range ids {
		it, err := r.Items.GetForUpdate(id)
		if err != nil {
			return err
		}
		if it == nil {
			return domain.ErrNotFound
		}
		locked[id] = it
	}

	returned := map[string]decimal.Decimal{}
	for _, e := range outs {
		if err := r.Ledger.Append(&entity.LedgerEntry{
			ID:        uuid.New().String(),
			ItemID:    e.ItemID,
			Direction: entity.DirectionIn,
			Quantity:  e.Quantity,
			UnitPrice: e.UnitPrice,
			Reference: "DEVOLUCION " + sale.ID,
			CreatedBy: actor,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if _, err := receiveBatch(r.Batches, e.ItemID, e.Quantity, e.UnitPrice, "DEVOLUCION "+sale.ID, now); err != nil {
			return err
		}
		returned[e.ItemID] = returned[e.ItemID].Add(e.Quantity)
	}

	for _, id := range ids {
		newQty := locked[id].OnHand.Add(returned[id])
		if err := r.Items.UpdateStock(id, newQty); err != nil {
			return err
		}
		locked[id].OnHand = newQty
	}
	return nil
}
