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
	domaininv "github.com/jhoicas/pos-inventario/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Receive: recepciones y costo promedio ponderado
// ──────────────────────────────────────────────────────────────────────────────

// 10 und @ 100 y luego 10 und @ 200 → costo promedio 150, stock 20.
func TestReceive_CostoPromedioPonderado(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("item-1", "SKU-1", dec("0"), dec("0")))
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})
	ctx := context.Background()

	require.NoError(t, mutator.Receive(ctx, inventory.ReceiveInput{
		ItemID: "item-1", Quantity: dec("10"), UnitCost: dec("100"), Reference: "OC-1", Actor: "u1",
	}))
	require.NoError(t, mutator.Receive(ctx, inventory.ReceiveInput{
		ItemID: "item-1", Quantity: dec("10"), UnitCost: dec("200"), Reference: "OC-2", Actor: "u1",
	}))

	item := store.items["item-1"]
	assert.True(t, item.OnHand.Equal(dec("20")), "stock debe ser 20, obtuvo %s", item.OnHand)
	assert.True(t, item.Cost.Equal(dec("150")), "promedio (10*100+10*200)/20 = 150, obtuvo %s", item.Cost)

	// Un asiento IN por recepción y un lote por recepción.
	assert.Len(t, store.ledger, 2)
	for _, e := range store.ledger {
		assert.Equal(t, entity.DirectionIn, e.Direction)
	}
	assert.True(t, store.sumRemaining("item-1").Equal(item.OnHand),
		"Σ Remaining de lotes debe igualar OnHand")
}

// La primera recepción sobre un artículo sin stock fija el costo al de entrada.
func TestReceive_PrimeraRecepcionFijaCosto(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("item-1", "SKU-1", dec("0"), dec("0")))
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})

	require.NoError(t, mutator.Receive(context.Background(), inventory.ReceiveInput{
		ItemID: "item-1", Quantity: dec("7"), UnitCost: dec("12.50"), Reference: "OC-1", Actor: "u1",
	}))
	assert.True(t, store.items["item-1"].Cost.Equal(dec("12.50")))
}

func TestReceive_RechazaBundleYDatosInvalidos(t *testing.T) {
	store := newMemStore()
	store.addItem(bundleItem("combo-1", "COMBO"))
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})
	ctx := context.Background()

	err := mutator.Receive(ctx, inventory.ReceiveInput{
		ItemID: "combo-1", Quantity: dec("5"), UnitCost: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un bundle no recibe stock propio")

	err = mutator.Receive(ctx, inventory.ReceiveInput{
		ItemID: "combo-1", Quantity: dec("0"), UnitCost: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = mutator.Receive(ctx, inventory.ReceiveInput{
		ItemID: "no-existe", Quantity: dec("5"), UnitCost: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjust: ajustes manuales y redistribución de lotes
// ──────────────────────────────────────────────────────────────────────────────

// Un ajuste positivo crea un lote AJUSTE y mantiene Σ Remaining == OnHand.
func TestAdjust_PositivoCreaLoteDeAjuste(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("item-1", "SKU-1", dec("10"), dec("80")))
	store.addBatch(batchAt("b1", "item-1", "OC-1", dec("10"), dec("80"), time.Now()))
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})

	require.NoError(t, mutator.Adjust(context.Background(), "item-1", dec("3"), "sobrante en bodega", "u1"))

	item := store.items["item-1"]
	assert.True(t, item.OnHand.Equal(dec("13")))
	assert.True(t, store.sumRemaining("item-1").Equal(dec("13")))

	var adjuste *entity.Batch
	for _, b := range store.batches {
		if b.Reference == "AJUSTE" {
			adjuste = b
		}
	}
	require.NotNil(t, adjuste, "debe existir un lote de ajuste")
	assert.True(t, adjuste.Remaining.Equal(dec("3")))
	assert.True(t, adjuste.UnitCost.Equal(dec("80")), "el lote de ajuste entra al costo promedio actual")
}

// Un ajuste negativo agota lotes en orden FIFO.
func TestAdjust_NegativoAgotaLotesFIFO(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("item-1", "SKU-1", dec("20"), dec("60")))
	t0 := time.Now()
	store.addBatch(batchAt("b1", "item-1", "OC-1", dec("10"), dec("50"), t0))
	store.addBatch(batchAt("b2", "item-1", "OC-2", dec("10"), dec("70"), t0.Add(time.Hour)))
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})

	require.NoError(t, mutator.Adjust(context.Background(), "item-1", dec("-12"), "merma", "u1"))

	item := store.items["item-1"]
	assert.True(t, item.OnHand.Equal(dec("8")))
	assert.True(t, store.sumRemaining("item-1").Equal(dec("8")))
	assert.True(t, store.batches[0].Remaining.Equal(dec("0")), "el lote antiguo se agota primero")
	assert.True(t, store.batches[1].Remaining.Equal(dec("8")))

	// El asiento es OUT por el valor absoluto del delta.
	require.Len(t, store.ledger, 1)
	assert.Equal(t, entity.DirectionOut, store.ledger[0].Direction)
	assert.True(t, store.ledger[0].Quantity.Equal(dec("12")))
}

// El stock nunca queda negativo: el ajuste completo se rechaza sin tocar nada.
func TestAdjust_NoDejaStockNegativo(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("item-1", "SKU-1", dec("5"), dec("60")))
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})

	err := mutator.Adjust(context.Background(), "item-1", dec("-8"), "merma", "u1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, store.items["item-1"].OnHand.Equal(dec("5")), "el stock no debe cambiar")
	assert.Empty(t, store.ledger, "no debe quedar asiento de un ajuste fallido")
}

// ──────────────────────────────────────────────────────────────────────────────
// SellInTx: ventas con fan-out de bundles
// ──────────────────────────────────────────────────────────────────────────────

// sellStore arma un combo de 2×A + 1×B con stock y lotes para ambos componentes.
func sellStore() *memStore {
	store := newMemStore()
	store.addItem(simpleItem("comp-a", "A", dec("10"), dec("500")))
	store.addItem(simpleItem("comp-b", "B", dec("10"), dec("300")))
	store.addItem(bundleItem("combo-1", "COMBO"))
	t0 := time.Now()
	store.addBatch(batchAt("ba", "comp-a", "OC-A", dec("10"), dec("500"), t0))
	store.addBatch(batchAt("bb", "comp-b", "OC-B", dec("10"), dec("300"), t0))
	store.comps["combo-1"] = []*entity.BundleComponent{
		{BundleID: "combo-1", ComponentID: "comp-a", Quantity: dec("2")},
		{BundleID: "combo-1", ComponentID: "comp-b", Quantity: dec("1")},
	}
	return store
}

// Vender 3 combos (2×A + 1×B) descuenta A en 6 y B en 3, con un asiento OUT
// por componente y costo del combo = 2*500 + 300 = 1300 por unidad.
func TestSellInTx_FanOutDeBundle(t *testing.T) {
	store := sellStore()
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})

	var results []inventory.SellLineResult
	err := (&memTxRunner{s: store}).Run(context.Background(), func(r inventory.Repos) error {
		var err error
		results, err = mutator.SellInTx(r, []inventory.SellLineInput{
			{ItemID: "combo-1", Quantity: dec("3")},
		}, domaininv.CostMethodAverage, "POS-1", "u1", time.Now())
		return err
	})
	require.NoError(t, err)

	assert.True(t, store.items["comp-a"].OnHand.Equal(dec("4")), "A: 10 - 3*2 = 4")
	assert.True(t, store.items["comp-b"].OnHand.Equal(dec("7")), "B: 10 - 3*1 = 7")

	require.Len(t, results, 1)
	assert.True(t, results[0].UnitCost.Equal(dec("1300")),
		"costo del combo = 2*500 + 300, obtuvo %s", results[0].UnitCost)

	// Un asiento OUT por componente, nunca por el bundle.
	require.Len(t, store.ledger, 2)
	byItem := map[string]*entity.LedgerEntry{}
	for _, e := range store.ledger {
		assert.Equal(t, entity.DirectionOut, e.Direction)
		byItem[e.ItemID] = e
	}
	require.Contains(t, byItem, "comp-a")
	require.Contains(t, byItem, "comp-b")
	assert.True(t, byItem["comp-a"].Quantity.Equal(dec("6")))
	assert.True(t, byItem["comp-b"].Quantity.Equal(dec("3")))

	// Invariante de lotes para ambos componentes.
	assert.True(t, store.sumRemaining("comp-a").Equal(dec("4")))
	assert.True(t, store.sumRemaining("comp-b").Equal(dec("7")))
}

// Si un componente no alcanza, toda la venta falla sin escribir nada.
func TestSellInTx_ComponenteInsuficienteNoEscribeNada(t *testing.T) {
	store := sellStore()
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})

	err := (&memTxRunner{s: store}).Run(context.Background(), func(r inventory.Repos) error {
		_, err := mutator.SellInTx(r, []inventory.SellLineInput{
			{ItemID: "combo-1", Quantity: dec("6")}, // necesita 12 de A, hay 10
		}, domaininv.CostMethodAverage, "POS-2", "u1", time.Now())
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, store.items["comp-a"].OnHand.Equal(dec("10")))
	assert.True(t, store.items["comp-b"].OnHand.Equal(dec("10")))
	assert.Empty(t, store.ledger)
}

// Dos líneas que comparten componente: la disponibilidad se verifica contra el
// acumulado, no contra el stock inicial línea por línea.
func TestSellInTx_LineasAcumulanSobreElMismoComponente(t *testing.T) {
	store := sellStore()
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})

	err := (&memTxRunner{s: store}).Run(context.Background(), func(r inventory.Repos) error {
		_, err := mutator.SellInTx(r, []inventory.SellLineInput{
			{ItemID: "comp-a", Quantity: dec("6")},
			{ItemID: "combo-1", Quantity: dec("3")}, // necesita 6 más de A: total 12 > 10
		}, domaininv.CostMethodAverage, "POS-3", "u1", time.Now())
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, store.items["comp-a"].OnHand.Equal(dec("10")), "nada debe escribirse")
}

// Venta simple bajo FIFO fija el costo al promedio ponderado de los lotes consumidos.
func TestSellInTx_SimpleFIFOFijaCostoDeLotes(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("item-1", "SKU-1", dec("20"), dec("60")))
	t0 := time.Now()
	store.addBatch(batchAt("b1", "item-1", "OC-1", dec("10"), dec("50"), t0))
	store.addBatch(batchAt("b2", "item-1", "OC-2", dec("10"), dec("70"), t0.Add(time.Hour)))
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})

	var results []inventory.SellLineResult
	err := (&memTxRunner{s: store}).Run(context.Background(), func(r inventory.Repos) error {
		var err error
		results, err = mutator.SellInTx(r, []inventory.SellLineInput{
			{ItemID: "item-1", Quantity: dec("15")},
		}, domaininv.CostMethodFIFO, "POS-4", "u1", time.Now())
		return err
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].UnitCost.Equal(dec("850").Div(dec("15"))),
		"base FIFO = (10*50 + 5*70)/15")
	assert.True(t, store.items["item-1"].OnHand.Equal(dec("5")))
	assert.True(t, store.sumRemaining("item-1").Equal(dec("5")))
}

// ──────────────────────────────────────────────────────────────────────────────
// RefundInTx: devoluciones
// ──────────────────────────────────────────────────────────────────────────────

// La devolución de una venta de combo restaura componente por componente,
// invirtiendo los asientos OUT que la venta dejó en el libro.
func TestRefundInTx_RestauraComponentesDeBundle(t *testing.T) {
	store := sellStore()
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})
	now := time.Now()

	// Vender 3 combos primero; la referencia de los asientos es el ID de la venta.
	err := (&memTxRunner{s: store}).Run(context.Background(), func(r inventory.Repos) error {
		_, err := mutator.SellInTx(r, []inventory.SellLineInput{
			{ItemID: "combo-1", Quantity: dec("3")},
		}, domaininv.CostMethodAverage, "sale-1", "u1", now)
		return err
	})
	require.NoError(t, err)
	require.True(t, store.items["comp-a"].OnHand.Equal(dec("4")))

	sale := &entity.Sale{ID: "sale-1", Status: entity.SaleStatusPaid}
	err = (&memTxRunner{s: store}).Run(context.Background(), func(r inventory.Repos) error {
		return mutator.RefundInTx(r, sale, "u1", now.Add(time.Minute))
	})
	require.NoError(t, err)

	assert.True(t, store.items["comp-a"].OnHand.Equal(dec("10")), "A vuelve a 10")
	assert.True(t, store.items["comp-b"].OnHand.Equal(dec("10")), "B vuelve a 10")
	assert.True(t, store.sumRemaining("comp-a").Equal(dec("10")))
	assert.True(t, store.sumRemaining("comp-b").Equal(dec("10")))

	// Asientos IN con la referencia de devolución.
	var ins int
	for _, e := range store.ledger {
		if e.Direction == entity.DirectionIn {
			ins++
			assert.Equal(t, "DEVOLUCION sale-1", e.Reference)
		}
	}
	assert.Equal(t, 2, ins, "un asiento IN por componente devuelto")
}

// La devolución de una línea simple entra como lote al costo fijado en la venta.
func TestRefundInTx_LineaSimpleUsaCostoFijado(t *testing.T) {
	store := newMemStore()
	store.addItem(simpleItem("item-1", "SKU-1", dec("5"), dec("90"))) // el costo actual ya cambió
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})
	now := time.Now()

	// Asiento OUT de la venta original, al costo unitario de entonces.
	store.ledger = append(store.ledger, &entity.LedgerEntry{
		ID:        "le-1",
		ItemID:    "item-1",
		Direction: entity.DirectionOut,
		Quantity:  dec("4"),
		UnitPrice: dec("75"),
		Reference: "sale-2",
		CreatedBy: "u1",
		CreatedAt: now.Add(-time.Hour),
	})

	sale := &entity.Sale{ID: "sale-2", Status: entity.SaleStatusPaid}
	err := (&memTxRunner{s: store}).Run(context.Background(), func(r inventory.Repos) error {
		return mutator.RefundInTx(r, sale, "u1", now)
	})
	require.NoError(t, err)

	assert.True(t, store.items["item-1"].OnHand.Equal(dec("9")))
	require.Len(t, store.batches, 1)
	assert.True(t, store.batches[0].UnitCost.Equal(dec("75")),
		"el lote de retorno entra al costo de la venta, no al actual")
	assert.Equal(t, "DEVOLUCION sale-2", store.batches[0].Reference)
}

// Un bundle puede contener otro bundle: la venta aplana la composición hasta
// las hojas simples y consume stock solo de ellas.
func TestSellInTx_BundleAnidadoConsumeLasHojas(t *testing.T) {
	store := sellStore()
	store.addItem(bundleItem("mega-1", "MEGA"))
	store.comps["mega-1"] = []*entity.BundleComponent{
		{BundleID: "mega-1", ComponentID: "combo-1", Quantity: dec("1")},
	}
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})

	var results []inventory.SellLineResult
	err := (&memTxRunner{s: store}).Run(context.Background(), func(r inventory.Repos) error {
		var err error
		results, err = mutator.SellInTx(r, []inventory.SellLineInput{
			{ItemID: "mega-1", Quantity: dec("2")},
		}, domaininv.CostMethodAverage, "POS-7", "u1", time.Now())
		return err
	})
	require.NoError(t, err)

	// 2 megas = 2 combos = 4×A + 2×B.
	assert.True(t, store.items["comp-a"].OnHand.Equal(dec("6")))
	assert.True(t, store.items["comp-b"].OnHand.Equal(dec("8")))
	require.Len(t, results, 1)
	assert.True(t, results[0].UnitCost.Equal(dec("1300")),
		"el costo del mega es el del combo que envuelve, obtuvo %s", results[0].UnitCost)

	// Los asientos OUT son de las hojas, nunca de los bundles intermedios.
	for _, e := range store.ledger {
		assert.NotEqual(t, "mega-1", e.ItemID)
		assert.NotEqual(t, "combo-1", e.ItemID)
	}

	// Pedir más de lo que las hojas soportan falla como cualquier bundle.
	err = (&memTxRunner{s: store}).Run(context.Background(), func(r inventory.Repos) error {
		_, err := mutator.SellInTx(r, []inventory.SellLineInput{
			{ItemID: "mega-1", Quantity: dec("4")}, // necesita 8 de A, quedan 6
		}, domaininv.CostMethodAverage, "POS-8", "u1", time.Now())
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// Bajo política SPECIFIC los componentes del fan-out no tienen lote nombrado:
// consumen FIFO en vez de fallar por lote inexistente.
func TestSellInTx_BundleBajoPoliticaEspecifica(t *testing.T) {
	store := sellStore()
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})

	err := (&memTxRunner{s: store}).Run(context.Background(), func(r inventory.Repos) error {
		_, err := mutator.SellInTx(r, []inventory.SellLineInput{
			{ItemID: "combo-1", Quantity: dec("2")},
		}, domaininv.CostMethodSpecific, "POS-9", "u1", time.Now())
		return err
	})
	require.NoError(t, err)
	assert.True(t, store.items["comp-a"].OnHand.Equal(dec("6")))
	assert.True(t, store.items["comp-b"].OnHand.Equal(dec("8")))
	assert.True(t, store.sumRemaining("comp-a").Equal(dec("6")))
	assert.True(t, store.sumRemaining("comp-b").Equal(dec("8")))
}

// La devolución invierte lo que la venta asentó, aunque la composición del
// bundle haya cambiado entre la venta y la devolución.
func TestRefundInTx_IgnoraCambiosDeComposicion(t *testing.T) {
	store := sellStore()
	mutator := inventory.NewStockMutator(&memTxRunner{s: store})
	now := time.Now()

	err := (&memTxRunner{s: store}).Run(context.Background(), func(r inventory.Repos) error {
		_, err := mutator.SellInTx(r, []inventory.SellLineInput{
			{ItemID: "combo-1", Quantity: dec("2")},
		}, domaininv.CostMethodAverage, "sale-9", "u1", now)
		return err
	})
	require.NoError(t, err)
	require.True(t, store.items["comp-a"].OnHand.Equal(dec("6")))

	// La receta del combo cambia después de la venta.
	store.comps["combo-1"] = []*entity.BundleComponent{
		{BundleID: "combo-1", ComponentID: "comp-a", Quantity: dec("5")},
	}

	sale := &entity.Sale{ID: "sale-9", Status: entity.SaleStatusPaid}
	err = (&memTxRunner{s: store}).Run(context.Background(), func(r inventory.Repos) error {
		return mutator.RefundInTx(r, sale, "u1", now.Add(time.Minute))
	})
	require.NoError(t, err)

	// Vuelven las cantidades asentadas (4×A y 2×B), no las de la receta nueva.
	assert.True(t, store.items["comp-a"].OnHand.Equal(dec("10")))
	assert.True(t, store.items["comp-b"].OnHand.Equal(dec("10")))
	assert.True(t, store.sumRemaining("comp-a").Equal(dec("10")))
	assert.True(t, store.sumRemaining("comp-b").Equal(dec("10")))
}
