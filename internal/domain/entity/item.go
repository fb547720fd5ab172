package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de artículo. Producto se vende; Ingrediente solo compone recetas.
const (
	ItemTypeProduct    = "product"
	ItemTypeIngredient = "ingredient"
)

// Clases de artículo. Un bundle no posee stock propio: su disponibilidad y su
// costo se derivan de sus componentes.
const (
	ItemKindSimple = "simple"
	ItemKindBundle = "bundle"
)

// Item representa un artículo del inventario (producto o ingrediente, mismo contrato).
// Cost es el costo promedio ponderado para artículos simples, o el costo agregado
// de la composición para bundles y manufacturados. OnHand se muta únicamente a
// través del mutador de stock; para bundles se fuerza a 0 en almacenamiento.
type Item struct {
	ID        string
	SKU       string // código único
	Name      string
	Type      string // product | ingredient
	Kind      string // simple | bundle (los ingredientes son siempre simple)
	Unit      string // etiqueta de unidad: pcs, kg, lt...
	Price     decimal.Decimal // precio de venta (solo productos)
	Cost      decimal.Decimal // costo unitario actual (HPP)
	OnHand    decimal.Decimal // cantidad disponible; invariante: >= 0
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBundle indica si el artículo es un bundle (stock derivado de componentes).
func (i *Item) IsBundle() bool {
	return i.Kind == ItemKindBundle
}
