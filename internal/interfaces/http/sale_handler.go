package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/application/sales"
	"github.com/jhoicas/pos-inventario/internal/domain"
)

// SaleHandler maneja ventas, pagos y devoluciones (protegido).
type SaleHandler struct {
	uc *sales.SaleUseCase
}

// NewSaleHandler construye el handler de ventas.
func NewSaleHandler(uc *sales.SaleUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Crear venta
// @Description  Descuenta el stock (con fan-out de bundles) y fija el costo de cada línea en una transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "tender, lines[{item_id, quantity, unit_price}]"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      402   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CreateSale(c.Context(), in, GetUserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrPaymentDeclined) {
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{Code: "PAYMENT_DECLINED", Message: "pago rechazado"})
		}
		return stockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta por ID
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(out)
}

// ConfirmPayment godoc
// @Summary      Confirmar pago de una venta pendiente
// @Description  Transición PENDING -> PAID. Cualquier otro estado devuelve 409.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/payment [post]
func (h *SaleHandler) ConfirmPayment(c *fiber.Ctx) error {
	out, err := h.uc.ConfirmPayment(c.Context(), c.Params("id"))
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(out)
}

// Refund godoc
// @Summary      Devolver una venta pagada
// @Description  Transición PAID -> REFUNDED: restaura el stock una sola vez. Repetir devuelve 409.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/refund [post]
func (h *SaleHandler) Refund(c *fiber.Ctx) error {
	out, err := h.uc.RefundSale(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(out)
}

// ProfitReport godoc
// @Summary      Reporte de utilidad de un período
// @Description  Solo ventas PAID; el costo es el fijado al momento de cada venta.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "Fecha inicial (RFC3339)"
// @Param        to    query  string  true  "Fecha final (RFC3339)"
// @Success      200   {object}  dto.ProfitReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sales/reports/profit [get]
func (h *SaleHandler) ProfitReport(c *fiber.Ctx) error {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}
	out, err := h.uc.ProfitReport(c.Context(), from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// saleError mapea los errores de la máquina de estados de ventas a HTTP.
func saleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
	case errors.Is(err, domain.ErrAlreadyRefunded):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_REFUNDED", Message: "la venta ya fue devuelta o expiró"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "la venta no está en un estado válido para esta operación"})
	default:
		return stockError(c, err)
	}
}
