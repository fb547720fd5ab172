package entity

import "github.com/shopspring/decimal"

// BundleComponent define una línea de composición de un bundle: cuántas unidades
// del componente se necesitan por unidad de bundle. El grafo de composición debe
// ser acíclico; se valida al escribir la línea.
type BundleComponent struct {
	BundleID    string
	ComponentID string
	Quantity    decimal.Decimal // unidades de componente por bundle
	Unit        string          // unidad alternativa opcional; vacío = unidad del componente
}

// RecipeLine define la receta de un artículo manufacturado: cantidad de
// ingrediente necesaria por unidad producida. Solo afecta el costo del artículo,
// no su stock al momento de la venta.
type RecipeLine struct {
	ItemID       string // artículo manufacturado
	IngredientID string
	Quantity     decimal.Decimal // cantidad de ingrediente por unidad
}
