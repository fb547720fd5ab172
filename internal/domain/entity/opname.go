package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockOpname registra una conciliación de conteo físico contra la cantidad del
// sistema. Historia inmutable: se crea una vez por artículo contado y nunca se
// modifica. Difference = CountedQty - SystemQty (con signo).
type StockOpname struct {
	ID         string
	ItemID     string
	SystemQty  decimal.Decimal // cantidad del sistema antes del ajuste
	CountedQty decimal.Decimal // cantidad física contada
	Difference decimal.Decimal
	Reason     string // justificación de texto libre
	CreatedBy  string
	CreatedAt  time.Time
}
