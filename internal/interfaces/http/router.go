package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pos-inventario/internal/application/auth"
	"github.com/jhoicas/pos-inventario/internal/application/catalog"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/application/sales"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	ItemUC    *catalog.ItemUseCase
	Mutator   *inventory.StockMutator
	OpnameUC  *inventory.OpnameUseCase
	CostingUC *inventory.CostingUseCase
	ReportUC  *inventory.ReportUseCase
	SaleUC    *sales.SaleUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	almacen := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)
	venta := RequireRole(entity.RoleAdmin, entity.RoleVendedor)

	// Items: catálogo y composiciones (protegido)
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", almacen, itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", almacen, itemHandler.Update)
	items.Delete("/:id", RequireRole(entity.RoleAdmin), itemHandler.Delete)
	items.Get("/:id/availability", itemHandler.Availability)
	items.Get("/:id/components", itemHandler.ListComponents)
	items.Post("/:id/components", almacen, itemHandler.AddComponent)
	items.Delete("/:id/components/:componentId", almacen, itemHandler.RemoveComponent)
	items.Get("/:id/recipe", itemHandler.ListRecipe)
	items.Post("/:id/recipe", almacen, itemHandler.AddRecipeLine)
	items.Delete("/:id/recipe/:ingredientId", almacen, itemHandler.RemoveRecipeLine)

	// Inventory: recepciones, ajustes, conteos y reportes (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Mutator, deps.OpnameUC, deps.CostingUC, deps.ReportUC)
	invGroup.Post("/receipts", almacen, inventoryHandler.Receive)
	invGroup.Post("/adjustments", almacen, inventoryHandler.Adjust)
	invGroup.Post("/opname", almacen, inventoryHandler.Opname)
	invGroup.Get("/items/:id/history", inventoryHandler.History)
	invGroup.Get("/items/:id/batches", inventoryHandler.Batches)
	invGroup.Get("/valuation", inventoryHandler.Valuation)
	invGroup.Post("/recompute-costs", RequireRole(entity.RoleAdmin), inventoryHandler.RecomputeCosts)

	// Sales: ventas, pagos y devoluciones (protegido)
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	salesGroup.Post("/", venta, saleHandler.Create)
	salesGroup.Get("/reports/profit", saleHandler.ProfitReport)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Post("/:id/payment", venta, saleHandler.ConfirmPayment)
	salesGroup.Post("/:id/refund", venta, saleHandler.Refund)
}
