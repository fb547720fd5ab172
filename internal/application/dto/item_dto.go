package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Type  string          `json:"type"` // product | ingredient
	Kind  string          `json:"kind"` // simple | bundle
	Unit  string          `json:"unit"`
	Price decimal.Decimal `json:"price"`
}

// UpdateItemRequest body para PUT /api/items/:id. Cost y OnHand no se tocan
// por aquí: solo cambian vía mutador de stock y motor de costeo.
type UpdateItemRequest struct {
	Name  string          `json:"name"`
	Unit  string          `json:"unit"`
	Price decimal.Decimal `json:"price"`
}

// ItemResponse artículo con su disponibilidad derivada.
type ItemResponse struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Kind      string          `json:"kind"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
	OnHand    decimal.Decimal `json:"on_hand"`
	Available decimal.Decimal `json:"available"` // para bundles: derivada de componentes
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ComponentRequest body para agregar un componente a un bundle.
type ComponentRequest struct {
	ComponentID string          `json:"component_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
}

// RecipeLineRequest body para agregar una línea de receta.
type RecipeLineRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}
