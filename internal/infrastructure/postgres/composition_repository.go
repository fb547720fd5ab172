package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.CompositionRepository = (*CompositionRepo)(nil)

// CompositionRepo implementación del puerto de composiciones (bundles y recetas).
type CompositionRepo struct {
	q Querier
}

func NewCompositionRepository(q Querier) *CompositionRepo {
	return &CompositionRepo{q: q}
}

func (r *CompositionRepo) ListComponents(bundleID string) ([]*entity.BundleComponent, error) {
	query := `
		SELECT bundle_id, component_id, quantity, unit
		FROM bundle_components
		WHERE bundle_id = $1
		ORDER BY component_id`
	rows, err := r.q.Query(context.Background(), query, bundleID)
	if err != nil {
		return nil, fmt.Errorf("list bundle components: %w", err)
	}
	defer rows.Close()
	var comps []*entity.BundleComponent
	for rows.Next() {
		var c entity.BundleComponent
		if err := rows.Scan(&c.BundleID, &c.ComponentID, &c.Quantity, &c.Unit); err != nil {
			return nil, fmt.Errorf("scan bundle component: %w", err)
		}
		comps = append(comps, &c)
	}
	return comps, rows.Err()
}

func (r *CompositionRepo) AddComponent(c *entity.BundleComponent) error {
	query := `
		INSERT INTO bundle_components (bundle_id, component_id, quantity, unit)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (bundle_id, component_id) DO UPDATE SET quantity = $3, unit = $4`
	_, err := r.q.Exec(context.Background(), query, c.BundleID, c.ComponentID, c.Quantity, c.Unit)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("add bundle component: %w", err)
	}
	return nil
}

func (r *CompositionRepo) RemoveComponent(bundleID, componentID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM bundle_components WHERE bundle_id = $1 AND component_id = $2`,
		bundleID, componentID)
	if err != nil {
		return fmt.Errorf("remove bundle component: %w", err)
	}
	return nil
}

func (r *CompositionRepo) ListRecipe(itemID string) ([]*entity.RecipeLine, error) {
	query := `
		SELECT item_id, ingredient_id, quantity
		FROM recipe_lines
		WHERE item_id = $1
		ORDER BY ingredient_id`
	rows, err := r.q.Query(context.Background(), query, itemID)
	if err != nil {
		return nil, fmt.Errorf("list recipe lines: %w", err)
	}
	defer rows.Close()
	var lines []*entity.RecipeLine
	for rows.Next() {
		var l entity.RecipeLine
		if err := rows.Scan(&l.ItemID, &l.IngredientID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

func (r *CompositionRepo) AddRecipeLine(l *entity.RecipeLine) error {
	query := `
		INSERT INTO recipe_lines (item_id, ingredient_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id, ingredient_id) DO UPDATE SET quantity = $3`
	_, err := r.q.Exec(context.Background(), query, l.ItemID, l.IngredientID, l.Quantity)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("add recipe line: %w", err)
	}
	return nil
}

func (r *CompositionRepo) RemoveRecipeLine(itemID, ingredientID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM recipe_lines WHERE item_id = $1 AND ingredient_id = $2`,
		itemID, ingredientID)
	if err != nil {
		return fmt.Errorf("remove recipe line: %w", err)
	}
	return nil
}

// ListComposedItemIDs devuelve los IDs con alguna línea de composición,
// ordenados para que el recálculo masivo sea determinista.
func (r *CompositionRepo) ListComposedItemIDs() ([]string, error) {
	query := `
		SELECT bundle_id AS id FROM bundle_components
		UNION
		SELECT item_id AS id FROM recipe_lines
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list composed item ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan composed item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
