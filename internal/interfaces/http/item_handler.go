package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pos-inventario/internal/application/catalog"
	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
)

// ItemHandler maneja el catálogo de artículos y sus composiciones (protegido).
type ItemHandler struct {
	uc *catalog.ItemUseCase
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *catalog.ItemUseCase) *ItemHandler {
	return &ItemHandler{uc: uc}
}

// Create godoc
// @Summary      Crear artículo
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "sku, name, type (product|ingredient), kind (simple|bundle), unit, price"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SKU == "" || in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sku y name son requeridos"})
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "SKU ya existe"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener artículo por ID
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar artículos
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        type    query  string  false  "Filtrar por tipo: product | ingredient"
// @Param        limit   query  int     false  "Máximo de resultados (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.ItemResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()
	out, err := h.uc.List(c.Context(), c.Query("type"), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar artículo (nombre, unidad, precio)
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del artículo"
// @Param        body  body  dto.UpdateItemRequest  true  "name, unit, price"
// @Success      200   {object}  dto.ItemResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar artículo
// @Description  Falla con 409 si el artículo tiene asientos, lotes o ventas que lo referencian.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      204  "sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	err := h.uc.Delete(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		if errors.Is(err, domain.ErrItemReferenced) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ITEM_REFERENCED", Message: "el artículo tiene historia y no puede eliminarse"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Availability godoc
// @Summary      Disponibilidad de un artículo
// @Description  Para bundles devuelve el mínimo derivado de sus componentes.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/availability [get]
func (h *ItemHandler) Availability(c *fiber.Ctx) error {
	qty, err := h.uc.AvailableQuantity(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"item_id": c.Params("id"), "available": qty})
}

// AddComponent godoc
// @Summary      Agregar componente a un bundle
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del bundle"
// @Param        body  body  dto.ComponentRequest  true  "component_id, quantity"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/components [post]
func (h *ItemHandler) AddComponent(c *fiber.Ctx) error {
	var in dto.ComponentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.uc.AddComponent(c.Context(), c.Params("id"), in)
	if err != nil {
		return componentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "componente agregado"})
}

// RemoveComponent godoc
// @Summary      Quitar componente de un bundle
// @Tags         items
// @Security     Bearer
// @Param        id           path  string  true  "ID del bundle"
// @Param        componentId  path  string  true  "ID del componente"
// @Success      204  "sin contenido"
// @Router       /api/items/{id}/components/{componentId} [delete]
func (h *ItemHandler) RemoveComponent(c *fiber.Ctx) error {
	if err := h.uc.RemoveComponent(c.Context(), c.Params("id"), c.Params("componentId")); err != nil {
		return componentError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListComponents godoc
// @Summary      Listar componentes de un bundle
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del bundle"
// @Success      200  {array}  entity.BundleComponent
// @Router       /api/items/{id}/components [get]
func (h *ItemHandler) ListComponents(c *fiber.Ctx) error {
	comps, err := h.uc.ListComponents(c.Context(), c.Params("id"))
	if err != nil {
		return componentError(c, err)
	}
	return c.JSON(comps)
}

// AddRecipeLine godoc
// @Summary      Agregar ingrediente a la receta de un producto
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del producto"
// @Param        body  body  dto.RecipeLineRequest  true  "ingredient_id, quantity"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/recipe [post]
func (h *ItemHandler) AddRecipeLine(c *fiber.Ctx) error {
	var in dto.RecipeLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.AddRecipeLine(c.Context(), c.Params("id"), in); err != nil {
		return componentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "línea de receta agregada"})
}

// RemoveRecipeLine godoc
// @Summary      Quitar ingrediente de una receta
// @Tags         items
// @Security     Bearer
// @Param        id            path  string  true  "ID del producto"
// @Param        ingredientId  path  string  true  "ID del ingrediente"
// @Success      204  "sin contenido"
// @Router       /api/items/{id}/recipe/{ingredientId} [delete]
func (h *ItemHandler) RemoveRecipeLine(c *fiber.Ctx) error {
	if err := h.uc.RemoveRecipeLine(c.Context(), c.Params("id"), c.Params("ingredientId")); err != nil {
		return componentError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListRecipe godoc
// @Summary      Listar la receta de un producto
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}  entity.RecipeLine
// @Router       /api/items/{id}/recipe [get]
func (h *ItemHandler) ListRecipe(c *fiber.Ctx) error {
	lines, err := h.uc.ListRecipe(c.Context(), c.Params("id"))
	if err != nil {
		return componentError(c, err)
	}
	return c.JSON(lines)
}

// componentError mapea los errores de composición a HTTP.
func componentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
	case errors.Is(err, domain.ErrCyclicComposition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CYCLIC_COMPOSITION", Message: "la composición formaría un ciclo"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
