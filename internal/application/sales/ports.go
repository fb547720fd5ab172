package sales

import (
	"context"

	"github.com/shopspring/decimal"
)

// AuthorizationRequest solicitud al autorizador de pagos externo.
type AuthorizationRequest struct {
	SaleID string
	Tender string
	Amount decimal.Decimal
}

// Authorization resultado del autorizador. Pending=true deja la venta en
// PENDING con el stock ya reservado, a la espera de ConfirmPayment.
type Authorization struct {
	Reference string
	Pending   bool
}

// PaymentAuthorizer abstrae la pasarela de pagos. Se invoca ANTES de abrir la
// transacción de stock: ninguna operación del motor bloquea sobre I/O externo.
// Para efectivo y medios manuales la autorización es implícita y no se llama.
type PaymentAuthorizer interface {
	Authorize(ctx context.Context, req AuthorizationRequest) (*Authorization, error)
}
