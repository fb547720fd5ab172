package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pos-inventario/internal/application/sales"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

var _ sales.PaymentAuthorizer = (*SimulatedAuthorizer)(nil)

// SimulatedAuthorizer autorizador de pagos sin pasarela real. Tarjetas y
// transferencias quedan autorizadas con referencia sintética; transferencias
// quedan PENDING hasta confirmación manual (el cajero verifica el comprobante).
type SimulatedAuthorizer struct {
	log *logger.Logger
}

func NewSimulatedAuthorizer(log *logger.Logger) *SimulatedAuthorizer {
	return &SimulatedAuthorizer{log: log.Component("payments")}
}

// Authorize emite una autorización simulada. Montos no positivos se rechazan.
func (a *SimulatedAuthorizer) Authorize(ctx context.Context, req sales.AuthorizationRequest) (*sales.Authorization, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrPaymentDeclined
	}

	ref := fmt.Sprintf("SIM-%s-%d", req.Tender, time.Now().UnixNano())
	pending := req.Tender == entity.TenderTransfer

	a.log.Info().
		Str("sale_id", req.SaleID).
		Str("tender", req.Tender).
		Str("reference", ref).
		Bool("pending", pending).
		Msg("pago autorizado (simulado)")

	return &sales.Authorization{Reference: ref, Pending: pending}, nil
}
