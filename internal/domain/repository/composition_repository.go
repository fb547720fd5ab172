package repository

import "github.com/jhoicas/pos-inventario/internal/domain/entity"

// CompositionRepository define el puerto para los grafos de composición:
// componentes de bundle y líneas de receta.
type CompositionRepository interface {
	ListComponents(bundleID string) ([]*entity.BundleComponent, error)
	AddComponent(c *entity.BundleComponent) error
	RemoveComponent(bundleID, componentID string) error

	ListRecipe(itemID string) ([]*entity.RecipeLine, error)
	AddRecipeLine(l *entity.RecipeLine) error
	RemoveRecipeLine(itemID, ingredientID string) error

	// ListComposedItemIDs devuelve los IDs de artículos con al menos una línea
	// de composición (bundle o receta), para el recálculo masivo de costos.
	ListComposedItemIDs() ([]string, error)
}
