package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest una línea a vender.
type SaleLineRequest struct {
	ItemID    string          `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"` // 0 = usar precio del artículo
	BatchRef  string          `json:"batch_ref,omitempty"` // solo política SPECIFIC
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	Number string            `json:"number,omitempty"`
	Tender string            `json:"tender"` // CASH, CARD, TRANSFER, MANUAL
	Lines  []SaleLineRequest `json:"lines"`
}

// SaleLineResponse línea de venta con costo fijado.
type SaleLineResponse struct {
	ID         string          `json:"id"`
	ItemID     string          `json:"item_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CostAtSale decimal.Decimal `json:"cost_at_sale"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// SaleResponse cabecera + líneas.
type SaleResponse struct {
	ID         string             `json:"id"`
	Number     string             `json:"number"`
	Status     string             `json:"status"`
	Tender     string             `json:"tender"`
	Total      decimal.Decimal    `json:"total"`
	CostTotal  decimal.Decimal    `json:"cost_total"`
	Profit     decimal.Decimal    `json:"profit"`
	CreatedAt  time.Time          `json:"created_at"`
	PaidAt     *time.Time         `json:"paid_at,omitempty"`
	RefundedAt *time.Time         `json:"refunded_at,omitempty"`
	Lines      []SaleLineResponse `json:"lines"`
}

// ProfitReportResponse utilidad de un período con costo fijado al vender.
type ProfitReportResponse struct {
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}
