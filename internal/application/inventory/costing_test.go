package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// Combo de 2 und de un componente a 500 más 1 und de otro a 300:
// costo derivado 2*500 + 300 = 1300 (el precio de venta, ej. 1500, es independiente).
func TestRecomputeItem_CostoDeBundlePorAgregacion(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("comp-a", "A", dec("10"), dec("500")))
	store.addItem(simpleItem("comp-b", "B", dec("10"), dec("300")))
	store.addItem(bundleItem("combo-1", "COMBO"))
	store.comps["combo-1"] = []*entity.BundleComponent{
		{BundleID: "combo-1", ComponentID: "comp-a", Quantity: dec("2")},
		{BundleID: "combo-1", ComponentID: "comp-b", Quantity: dec("1")},
	}
	uc := inventory.NewCostingUseCase(&memTxRunner{s: store})

	cost, err := uc.RecomputeItem(context.Background(), "combo-1")
	require.NoError(t, err)
	assert.True(t, cost.Equal(dec("1300")), "2*500 + 300 = 1300, obtuvo %s", cost)
	assert.True(t, store.items["combo-1"].Cost.Equal(dec("1300")), "el costo debe persistirse")
}

// Bundles anidados: el costo se deriva recursivamente.
func TestRecomputeItem_BundleAnidado(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("comp-a", "A", dec("10"), dec("100")))
	store.addItem(bundleItem("combo-int", "COMBO-INT"))
	store.addItem(bundleItem("combo-ext", "COMBO-EXT"))
	store.comps["combo-int"] = []*entity.BundleComponent{
		{BundleID: "combo-int", ComponentID: "comp-a", Quantity: dec("3")},
	}
	store.comps["combo-ext"] = []*entity.BundleComponent{
		{BundleID: "combo-ext", ComponentID: "combo-int", Quantity: dec("2")},
	}
	uc := inventory.NewCostingUseCase(&memTxRunner{s: store})

	cost, err := uc.RecomputeItem(context.Background(), "combo-ext")
	require.NoError(t, err)
	assert.True(t, cost.Equal(dec("600")), "2 * (3*100) = 600")
}

// Un artículo con receta deriva su costo de los ingredientes.
func TestRecomputeItem_CostoPorReceta(t *testing.T) {
	store := newMemStore()
	harina := simpleItem("ing-harina", "HARINA", dec("100"), dec("2.5"))
	harina.Type = entity.ItemTypeIngredient
	queso := simpleItem("ing-queso", "QUESO", dec("50"), dec("12"))
	queso.Type = entity.ItemTypeIngredient
	store.addItem(harina)
	store.addItem(queso)
	store.addItem(simpleItem("pizza", "PIZZA", dec("0"), dec("0")))
	store.recipes["pizza"] = []*entity.RecipeLine{
		{ItemID: "pizza", IngredientID: "ing-harina", Quantity: dec("0.4")},
		{ItemID: "pizza", IngredientID: "ing-queso", Quantity: dec("0.25")},
	}
	uc := inventory.NewCostingUseCase(&memTxRunner{s: store})

	cost, err := uc.RecomputeItem(context.Background(), "pizza")
	require.NoError(t, err)
	assert.True(t, cost.Equal(dec("4")), "0.4*2.5 + 0.25*12 = 4, obtuvo %s", cost)
}

// Un ciclo heredado en los datos corta con ErrCyclicComposition, no cuelga.
func TestRecomputeItem_DetectaCiclo(t *testing.T) {
	store := newMemStore()
	store.addItem(bundleItem("combo-x", "X"))
	store.addItem(bundleItem("combo-y", "Y"))
	store.comps["combo-x"] = []*entity.BundleComponent{
		{BundleID: "combo-x", ComponentID: "combo-y", Quantity: dec("1")},
	}
	store.comps["combo-y"] = []*entity.BundleComponent{
		{BundleID: "combo-y", ComponentID: "combo-x", Quantity: dec("1")},
	}
	uc := inventory.NewCostingUseCase(&memTxRunner{s: store})

	_, err := uc.RecomputeItem(context.Background(), "combo-x")
	assert.ErrorIs(t, err, domain.ErrCyclicComposition)
}

// Un bundle sin líneas queda en costo cero (no hay de qué derivar).
func TestRecomputeItem_BundleSinLineasCostoCero(t *testing.T) {
	store := newMemStore()
	vacio := bundleItem("combo-vacio", "VACIO")
	vacio.Cost = dec("999") // costo viejo que debe resetearse
	store.addItem(vacio)
	uc := inventory.NewCostingUseCase(&memTxRunner{s: store})

	cost, err := uc.RecomputeItem(context.Background(), "combo-vacio")
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
}

// RecomputeAll recorre bundles y manufacturados y reporta cuántos actualizó.
func TestRecomputeAll_ActualizaTodosLosCompuestos(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("comp-a", "A", dec("10"), dec("500")))
	store.addItem(simpleItem("comp-b", "B", dec("10"), dec("300")))
	store.addItem(bundleItem("combo-1", "COMBO"))
	store.addItem(bundleItem("combo-vacio", "VACIO"))
	store.comps["combo-1"] = []*entity.BundleComponent{
		{BundleID: "combo-1", ComponentID: "comp-a", Quantity: dec("2")},
		{BundleID: "combo-1", ComponentID: "comp-b", Quantity: dec("1")},
	}
	uc := inventory.NewCostingUseCase(&memTxRunner{s: store})

	n, err := uc.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "combo-1 y combo-vacio")
	assert.True(t, store.items["combo-1"].Cost.Equal(dec("1300")))
	assert.True(t, store.items["combo-vacio"].Cost.IsZero())
}
