package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. El stock se descuenta exactamente una vez al crear la
// venta (reserva optimista) y se revierte exactamente una vez al pasar a
// REFUNDED o EXPIRED.
const (
	SaleStatusPending  = "PENDING"  // stock reservado, confirmación de pago pendiente
	SaleStatusPaid     = "PAID"     // pago confirmado
	SaleStatusRefunded = "REFUNDED" // devuelta; estado terminal
	SaleStatusExpired  = "EXPIRED"  // reversión compensatoria por pago nunca confirmado
)

// Medios de pago. Efectivo y manual se consideran autorizados implícitamente;
// el resto pasa por el autorizador externo antes de tocar el stock.
const (
	TenderCash     = "CASH"
	TenderCard     = "CARD"
	TenderTransfer = "TRANSFER"
	TenderManual   = "MANUAL"
)

// Sale representa la cabecera de una venta.
type Sale struct {
	ID         string
	Number     string
	Status     string
	Tender     string
	Total      decimal.Decimal // Σ subtotales de línea
	CostTotal  decimal.Decimal // Σ costo fijado al momento de la venta
	CreatedBy  string
	CreatedAt  time.Time
	PaidAt     *time.Time
	RefundedAt *time.Time
}

// Profit devuelve la utilidad de la venta con el costo fijado al vender.
func (s *Sale) Profit() decimal.Decimal {
	return s.Total.Sub(s.CostTotal)
}

// SaleLine representa una línea de venta. CostAtSale fija el costo unitario al
// momento de la venta: los reportes históricos de utilidad no cambian aunque
// compras posteriores muevan el costo promedio del artículo.
type SaleLine struct {
	ID         string
	SaleID     string
	ItemID     string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	CostAtSale decimal.Decimal
	Subtotal   decimal.Decimal
}

// LineProfit devuelve la utilidad de la línea: qty * (precio - costo fijado).
func (l *SaleLine) LineProfit() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice.Sub(l.CostAtSale))
}
