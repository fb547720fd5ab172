package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveRequest body para POST /api/inventory/receipts.
type ReceiveRequest struct {
	ItemID    string          `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Reference string          `json:"reference"`
}

// AdjustRequest body para POST /api/inventory/adjustments.
type AdjustRequest struct {
	ItemID string          `json:"item_id"`
	Delta  decimal.Decimal `json:"delta"` // puede ser negativo
	Reason string          `json:"reason"`
}

// OpnameItemRequest un artículo contado en una corrida de opname.
type OpnameItemRequest struct {
	ItemID     string          `json:"item_id"`
	CountedQty decimal.Decimal `json:"counted_qty"`
}

// OpnameRequest body para POST /api/inventory/opname.
type OpnameRequest struct {
	Reason string              `json:"reason"`
	Items  []OpnameItemRequest `json:"items"`
}

// OpnameResultResponse resultado por artículo de la corrida.
type OpnameResultResponse struct {
	ItemID     string          `json:"item_id"`
	Difference decimal.Decimal `json:"difference"`
	RecordID   string          `json:"record_id,omitempty"`
	Skipped    bool            `json:"skipped,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// LedgerEntryResponse asiento del libro de stock.
type LedgerEntryResponse struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"item_id"`
	Direction string          `json:"direction"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Reference string          `json:"reference"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// BatchResponse lote con su restante y valor.
type BatchResponse struct {
	ID         string          `json:"id"`
	Reference  string          `json:"reference"`
	QuantityIn decimal.Decimal `json:"quantity_in"`
	Remaining  decimal.Decimal `json:"remaining"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ReceivedAt time.Time       `json:"received_at"`
}

// ValuationRow valorización de un artículo: stock, costo y valor en lotes.
type ValuationRow struct {
	ItemID     string          `json:"item_id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	OnHand     decimal.Decimal `json:"on_hand"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	BatchQty   decimal.Decimal `json:"batch_qty"`   // Σ Remaining de lotes
	BatchValue decimal.Decimal `json:"batch_value"` // Σ Remaining * costo del lote
}

// ValuationReport reporte de valorización del inventario.
type ValuationReport struct {
	Items      []ValuationRow  `json:"items"`
	TotalValue decimal.Decimal `json:"total_value"`
}
