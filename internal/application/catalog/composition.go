package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// AddComponent agrega una línea de composición a un bundle. La detección de
// ciclos corre aquí, al escribir, para fallar rápido: el recálculo de costos
// puede entonces asumir un grafo acíclico.
func (uc *ItemUseCase) AddComponent(ctx context.Context, bundleID string, in dto.ComponentRequest) error {
	if bundleID == "" || in.ComponentID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if bundleID == in.ComponentID {
		return domain.ErrCyclicComposition
	}
	bundle, err := uc.itemRepo.GetByID(bundleID)
	if err != nil {
		return err
	}
	if bundle == nil {
		return domain.ErrNotFound
	}
	if !bundle.IsBundle() {
		return domain.ErrInvalidInput
	}
	component, err := uc.itemRepo.GetByID(in.ComponentID)
	if err != nil {
		return err
	}
	if component == nil {
		return domain.ErrNotFound
	}
	// ¿El componente alcanza al bundle descendiendo por su propia composición?
	reaches, err := uc.reaches(in.ComponentID, bundleID, map[string]bool{})
	if err != nil {
		return err
	}
	if reaches {
		return domain.ErrCyclicComposition
	}
	return uc.compRepo.AddComponent(&entity.BundleComponent{
		BundleID:    bundleID,
		ComponentID: in.ComponentID,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
	})
}

// RemoveComponent elimina una línea de composición de un bundle.
func (uc *ItemUseCase) RemoveComponent(ctx context.Context, bundleID, componentID string) error {
	if bundleID == "" || componentID == "" {
		return domain.ErrInvalidInput
	}
	return uc.compRepo.RemoveComponent(bundleID, componentID)
}

// ListComponents devuelve la composición de un bundle.
func (uc *ItemUseCase) ListComponents(ctx context.Context, bundleID string) ([]*entity.BundleComponent, error) {
	return uc.compRepo.ListComponents(bundleID)
}

// AddRecipeLine agrega una línea de receta a un artículo manufacturado. El
// ingrediente debe ser de tipo ingredient (hoja del grafo: sin receta propia),
// así que la receta no puede formar ciclos.
func (uc *ItemUseCase) AddRecipeLine(ctx context.Context, itemID string, in dto.RecipeLineRequest) error {
	if itemID == "" || in.IngredientID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	if item.IsBundle() {
		// un bundle compone por BundleComponent, no por receta
		return domain.ErrInvalidInput
	}
	ingredient, err := uc.itemRepo.GetByID(in.IngredientID)
	if err != nil {
		return err
	}
	if ingredient == nil {
		return domain.ErrNotFound
	}
	if ingredient.Type != entity.ItemTypeIngredient {
		return domain.ErrInvalidInput
	}
	return uc.compRepo.AddRecipeLine(&entity.RecipeLine{
		ItemID:       itemID,
		IngredientID: in.IngredientID,
		Quantity:     in.Quantity,
	})
}

// RemoveRecipeLine elimina una línea de receta.
func (uc *ItemUseCase) RemoveRecipeLine(ctx context.Context, itemID, ingredientID string) error {
	if itemID == "" || ingredientID == "" {
		return domain.ErrInvalidInput
	}
	return uc.compRepo.RemoveRecipeLine(itemID, ingredientID)
}

// ListRecipe devuelve la receta de un artículo manufacturado.
func (uc *ItemUseCase) ListRecipe(ctx context.Context, itemID string) ([]*entity.RecipeLine, error) {
	return uc.compRepo.ListRecipe(itemID)
}

// reaches hace DFS desde from por el grafo de bundles buscando target.
func (uc *ItemUseCase) reaches(from, target string, visited map[string]bool) (bool, error) {
	if from == target {
		return true, nil
	}
	if visited[from] {
		return false, nil
	}
	visited[from] = true
	comps, err := uc.compRepo.ListComponents(from)
	if err != nil {
		return false, err
	}
	for _, c := range comps {
		found, err := uc.reaches(c.ComponentID, target, visited)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}
