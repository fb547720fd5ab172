package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote de recepción: cantidad recibida, cantidad restante y
// costo unitario al momento de la compra. Los lotes se crean solo en recepciones
// y se agotan monótonamente (Remaining decrece), salvo redistribución por opname.
type Batch struct {
	ID         string
	ItemID     string
	Reference  string // serial / referencia de la recepción
	QuantityIn decimal.Decimal
	Remaining  decimal.Decimal // invariante: >= 0; Σ Remaining por artículo == Item.OnHand
	UnitCost   decimal.Decimal
	ReceivedAt time.Time
}

// HasStock indica si el lote aún tiene cantidad disponible.
func (b *Batch) HasStock() bool {
	return b.Remaining.GreaterThan(decimal.Zero)
}

// Value devuelve el valor monetario restante del lote.
func (b *Batch) Value() decimal.Decimal {
	return b.Remaining.Mul(b.UnitCost)
}
