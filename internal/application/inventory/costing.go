package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// CostingUseCase deriva el costo de bundles y artículos manufacturados por
// agregación bottom-up: costo = Σ (costo del componente * cantidad por unidad).
// Para bundles los componentes son líneas BundleComponent; para manufacturados,
// líneas de receta sobre ingredientes. El costo promedio de artículos simples
// vive en el mutador (recepciones) y aquí solo se lee.
type CostingUseCase struct {
	txRunner TxRunner
}

// NewCostingUseCase construye el caso de uso.
func NewCostingUseCase(txRunner TxRunner) *CostingUseCase {
	return &CostingUseCase{txRunner: txRunner}
}

// RecomputeItem re-deriva y persiste el costo de un artículo compuesto.
func (uc *CostingUseCase) RecomputeItem(ctx context.Context, itemID string) (decimal.Decimal, error) {
	var cost decimal.Decimal
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		item, err := r.Items.GetForUpdate(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		cost, err = resolveCost(r, item, map[string]bool{})
		if err != nil {
			return err
		}
		return r.Items.UpdateCost(item.ID, cost)
	})
	return cost, err
}

// RecomputeAll recorre todo artículo con al menos una línea de composición (más
// los bundles que quedaron sin líneas, que se resetean a costo cero) y persiste
// el costo derivado. Devuelve cuántos artículos se actualizaron.
func (uc *CostingUseCase) RecomputeAll(ctx context.Context) (int, error) {
	count := 0
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		composed, err := r.Compositions.ListComposedItemIDs()
		if err != nil {
			return err
		}
		targets := map[string]bool{}
		for _, id := range composed {
			targets[id] = true
		}
		bundles, err := r.Items.ListByKind(entity.ItemKindBundle)
		if err != nil {
			return err
		}
		for _, b := range bundles {
			targets[b.ID] = true
		}

		ids := make([]string, 0, len(targets))
		for id := range targets {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			item, err := r.Items.GetByID(id)
			if err != nil {
				return err
			}
			if item == nil {
				continue
			}
			cost, err := resolveCost(r, item, map[string]bool{})
			if err != nil {
				return err
			}
			if err := r.Items.UpdateCost(item.ID, cost); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// resolveCost calcula recursivamente el costo de un artículo. Hojas (simples sin
// receta) devuelven su costo promedio almacenado; bundles sin líneas devuelven
// cero. El conjunto visiting detecta ciclos heredados de datos viejos y corta
// con ErrCyclicComposition en lugar de recorrer indefinidamente (los ciclos
// nuevos se rechazan al escribir la línea de composición).
func resolveCost(r Repos, item *entity.Item, visiting map[string]bool) (decimal.Decimal, error) {
	if visiting[item.ID] {
		return decimal.Zero, domain.ErrCyclicComposition
	}
	visiting[item.ID] = true
	defer delete(visiting, item.ID)

	if item.IsBundle() {
		comps, err := r.Compositions.ListComponents(item.ID)
		if err != nil {
			return decimal.Zero, err
		}
		var total decimal.Decimal
		for _, c := range comps {
			child, err := r.Items.GetByID(c.ComponentID)
			if err != nil {
				return decimal.Zero, err
			}
			if child == nil {
				return decimal.Zero, domain.ErrNotFound
			}
			childCost, err := resolveCost(r, child, visiting)
			if err != nil {
				return decimal.Zero, err
			}
			total = total.Add(childCost.Mul(c.Quantity))
		}
		return total, nil
	}

	recipe, err := r.Compositions.ListRecipe(item.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(recipe) == 0 {
		return item.Cost, nil
	}
	var total decimal.Decimal
	for _, l := range recipe {
		ing, err := r.Items.GetByID(l.IngredientID)
		if err != nil {
			return decimal.Zero, err
		}
		if ing == nil {
			return decimal.Zero, domain.ErrNotFound
		}
		total = total.Add(ing.Cost.Mul(l.Quantity))
	}
	return total, nil
}
