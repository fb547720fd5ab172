package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain"
)

// InventoryHandler maneja recepciones, ajustes, conteos y reportes de stock (protegido).
type InventoryHandler struct {
	mutator *inventory.StockMutator
	opname  *inventory.OpnameUseCase
	costing *inventory.CostingUseCase
	reports *inventory.ReportUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	mutator *inventory.StockMutator,
	opname *inventory.OpnameUseCase,
	costing *inventory.CostingUseCase,
	reports *inventory.ReportUseCase,
) *InventoryHandler {
	return &InventoryHandler{mutator: mutator, opname: opname, costing: costing, reports: reports}
}

// Receive godoc
// @Summary      Registrar recepción de mercancía
// @Description  Crea el asiento IN, el lote y recalcula el costo promedio ponderado en una transacción.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveRequest  true  "item_id, quantity, unit_cost, reference"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.mutator.Receive(c.Context(), inventory.ReceiveInput{
		ItemID:    in.ItemID,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		Reference: in.Reference,
		Actor:     GetUserID(c),
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "recepción registrada"})
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  Delta positivo o negativo con motivo. Nunca deja el stock en negativo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustRequest  true  "item_id, delta, reason"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reason es requerido"})
	}
	if err := h.mutator.Adjust(c.Context(), in.ItemID, in.Delta, in.Reason, GetUserID(c)); err != nil {
		return stockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "ajuste registrado"})
}

// Opname godoc
// @Summary      Procesar corrida de conteo físico
// @Description  Cada artículo se procesa en su propia transacción; los fallos se reportan por artículo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpnameRequest  true  "reason, items[{item_id, counted_qty}]"
// @Success      200   {array}   dto.OpnameResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/opname [post]
func (h *InventoryHandler) Opname(c *fiber.Ctx) error {
	var in dto.OpnameRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entries := make([]inventory.CountEntry, 0, len(in.Items))
	for _, it := range in.Items {
		entries = append(entries, inventory.CountEntry{ItemID: it.ItemID, CountedQty: it.CountedQty})
	}
	results, err := h.opname.Count(c.Context(), entries, in.Reason, GetUserID(c))
	if err != nil {
		return stockError(c, err)
	}
	out := make([]dto.OpnameResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, dto.OpnameResultResponse{
			ItemID:     r.ItemID,
			Difference: r.Difference,
			RecordID:   r.RecordID,
			Skipped:    r.Skipped,
			Error:      r.Error,
		})
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial del libro de stock de un artículo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del artículo"
// @Param        from    query  string  false  "Fecha inicial (RFC3339)"
// @Param        to      query  string  false  "Fecha final (RFC3339)"
// @Param        limit   query  int     false  "Máximo de asientos"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.LedgerEntryResponse
// @Router       /api/inventory/items/{id}/history [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()

	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		to = &t
	}

	out, err := h.reports.History(c.Context(), c.Params("id"), from, to, page)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(out)
}

// Batches godoc
// @Summary      Lotes de un artículo con su saldo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {array}  dto.BatchResponse
// @Router       /api/inventory/items/{id}/batches [get]
func (h *InventoryHandler) Batches(c *fiber.Ctx) error {
	out, err := h.reports.Batches(c.Context(), c.Params("id"))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(out)
}

// Valuation godoc
// @Summary      Valorización del inventario
// @Description  Por artículo: stock, costo unitario y valor de los lotes con saldo.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationReport
// @Router       /api/inventory/valuation [get]
func (h *InventoryHandler) Valuation(c *fiber.Ctx) error {
	out, err := h.reports.Valuation(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// RecomputeCosts godoc
// @Summary      Recalcular costos agregados de bundles y recetas
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/recompute-costs [post]
func (h *InventoryHandler) RecomputeCosts(c *fiber.Ctx) error {
	n, err := h.costing.RecomputeAll(c.Context())
	if err != nil {
		if errors.Is(err, domain.ErrCyclicComposition) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CYCLIC_COMPOSITION", Message: "hay un ciclo en las composiciones"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"updated": n})
}

// stockError mapea los errores del motor de stock a HTTP.
func stockError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrInsufficientBatchStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_BATCH_STOCK", Message: "el lote no tiene saldo suficiente"})
	case errors.Is(err, domain.ErrBatchNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "BATCH_NOT_FOUND", Message: "lote no encontrado"})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente la operación"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
