package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// Sistema dice 42, el conteo físico encuentra 40: diferencia -2, registro de
// conciliación, asiento OUT por 2 y stock en 40.
func TestOpname_FaltanteAplicaAjusteNegativo(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("item-1", "SKU-1", dec("42"), dec("10")))
	store.addBatch(batchAt("b1", "item-1", "OC-1", dec("42"), dec("10"), time.Now()))
	uc := inventory.NewOpnameUseCase(&memTxRunner{s: store})

	results, err := uc.Count(context.Background(), []inventory.CountEntry{
		{ItemID: "item-1", CountedQty: dec("40")},
	}, "conteo mensual", "u1")
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Empty(t, res.Error)
	assert.False(t, res.Skipped)
	assert.True(t, res.Difference.Equal(dec("-2")), "diferencia = contada - sistema = -2")
	assert.NotEmpty(t, res.RecordID)

	assert.True(t, store.items["item-1"].OnHand.Equal(dec("40")))
	assert.True(t, store.sumRemaining("item-1").Equal(dec("40")))

	require.Len(t, store.opnames, 1)
	rec := store.opnames[0]
	assert.True(t, rec.SystemQty.Equal(dec("42")))
	assert.True(t, rec.CountedQty.Equal(dec("40")))
	assert.True(t, rec.Difference.Equal(dec("-2")))
	assert.Equal(t, "conteo mensual", rec.Reason)

	require.Len(t, store.ledger, 1)
	assert.Equal(t, entity.DirectionOut, store.ledger[0].Direction)
	assert.True(t, store.ledger[0].Quantity.Equal(dec("2")))
}

// Conteo igual al sistema: sin registro, sin asiento, marcado como omitido.
func TestOpname_SinDiferenciaNoGeneraRuido(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("item-1", "SKU-1", dec("42"), dec("10")))
	uc := inventory.NewOpnameUseCase(&memTxRunner{s: store})

	results, err := uc.Count(context.Background(), []inventory.CountEntry{
		{ItemID: "item-1", CountedQty: dec("42")},
	}, "conteo mensual", "u1")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, results[0].Skipped)
	assert.Empty(t, results[0].RecordID)
	assert.Empty(t, store.opnames)
	assert.Empty(t, store.ledger)
}

// El sobrante aplica ajuste positivo y crea lote AJUSTE.
func TestOpname_SobranteAplicaAjustePositivo(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("item-1", "SKU-1", dec("10"), dec("25")))
	store.addBatch(batchAt("b1", "item-1", "OC-1", dec("10"), dec("25"), time.Now()))
	uc := inventory.NewOpnameUseCase(&memTxRunner{s: store})

	results, err := uc.Count(context.Background(), []inventory.CountEntry{
		{ItemID: "item-1", CountedQty: dec("13")},
	}, "conteo", "u1")
	require.NoError(t, err)
	require.True(t, results[0].Difference.Equal(dec("3")))

	assert.True(t, store.items["item-1"].OnHand.Equal(dec("13")))
	assert.True(t, store.sumRemaining("item-1").Equal(dec("13")))
}

// Cada artículo corre en su propia transacción: un fallo no arrastra a los demás.
func TestOpname_FallosPorArticuloNoRevientanLaCorrida(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("item-1", "SKU-1", dec("10"), dec("25")))
	store.addBatch(batchAt("b1", "item-1", "OC-1", dec("10"), dec("25"), time.Now()))
	store.addItem(bundleItem("combo-1", "COMBO"))
	uc := inventory.NewOpnameUseCase(&memTxRunner{s: store})

	results, err := uc.Count(context.Background(), []inventory.CountEntry{
		{ItemID: "no-existe", CountedQty: dec("5")},
		{ItemID: "combo-1", CountedQty: dec("5")}, // los bundles no se cuentan
		{ItemID: "item-1", CountedQty: dec("8")},
	}, "conteo", "u1")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, domain.ErrNotFound.Error(), results[0].Error)
	assert.Equal(t, domain.ErrInvalidInput.Error(), results[1].Error)
	assert.Empty(t, results[2].Error, "el artículo válido sí se procesa")
	assert.True(t, store.items["item-1"].OnHand.Equal(dec("8")))
}

// Cantidades contadas negativas y corridas vacías se rechazan.
func TestOpname_EntradasInvalidas(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("item-1", "SKU-1", dec("10"), dec("25")))
	uc := inventory.NewOpnameUseCase(&memTxRunner{s: store})
	ctx := context.Background()

	_, err := uc.Count(ctx, nil, "conteo", "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Count(ctx, []inventory.CountEntry{{ItemID: "item-1", CountedQty: dec("5")}}, "", "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el motivo es obligatorio")

	results, err := uc.Count(ctx, []inventory.CountEntry{
		{ItemID: "item-1", CountedQty: dec("-1")},
	}, "conteo", "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ErrInvalidInput.Error(), results[0].Error)
}
