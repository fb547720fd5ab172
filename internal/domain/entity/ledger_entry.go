package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de un asiento del libro de stock.
const (
	DirectionIn  = "IN"  // entrada
	DirectionOut = "OUT" // salida
)

// LedgerEntry representa un asiento inmutable del libro de stock (append-only).
// Quantity es siempre positiva; el signo lo aporta Direction. Item.OnHand es una
// proyección cacheada de este libro y se actualiza en la misma transacción.
type LedgerEntry struct {
	ID        string
	ItemID    string
	Direction string // IN | OUT
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal // costo o precio unitario al momento del movimiento
	Reference string          // texto libre: id de venta, recepción, motivo de ajuste
	CreatedBy string
	CreatedAt time.Time
}

// Signed devuelve la cantidad con signo según la dirección.
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.Direction == DirectionOut {
		return e.Quantity.Neg()
	}
	return e.Quantity
}
