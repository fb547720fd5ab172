package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de artículos. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, sku, name, type, kind, unit, price, cost, on_hand, created_at, updated_at`

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(
		&it.ID, &it.SKU, &it.Name, &it.Type, &it.Kind, &it.Unit,
		&it.Price, &it.Cost, &it.OnHand, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un nuevo artículo. Cost y OnHand inician en 0.
func (r *ItemRepo) Create(item *entity.Item) error {
	query := `
		INSERT INTO items (id, sku, name, type, kind, unit, price, cost, on_hand, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SKU, item.Name, item.Type, item.Kind, item.Unit,
		item.Price, item.Cost, item.OnHand, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID.
func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	it, err := scanItem(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// GetBySKU obtiene un artículo por SKU.
func (r *ItemRepo) GetBySKU(sku string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE sku = $1`
	it, err := scanItem(r.q.QueryRow(context.Background(), query, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item by sku: %w", err)
	}
	return it, nil
}

// List lista artículos, opcionalmente por tipo. limit <= 0 = sin límite.
func (r *ItemRepo) List(itemType string, limit, offset int) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	args := []any{}
	if itemType != "" {
		query += ` WHERE type = $1`
		args = append(args, itemType)
	}
	query += ` ORDER BY sku`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var items []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByKind lista artículos por clase (simple | bundle).
func (r *ItemRepo) ListByKind(kind string) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE kind = $1 ORDER BY sku`
	rows, err := r.q.Query(context.Background(), query, kind)
	if err != nil {
		return nil, fmt.Errorf("list items by kind: %w", err)
	}
	defer rows.Close()
	var items []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update actualiza identidad y precio de venta. Cost y OnHand se manejan vía
// UpdateCost/UpdateStock dentro de transacciones del mutador.
func (r *ItemRepo) Update(item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, unit = $3, price = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.Unit, item.Price, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// Delete elimina un artículo. Las FKs desde stock_ledger/batches/sale_lines
// protegen la historia: la violación 23503 se mapea a ErrItemReferenced.
func (r *ItemRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrItemReferenced
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// GetForUpdate obtiene el artículo y bloquea la fila (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	it, err := scanItem(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item for update: %w", err)
	}
	return it, nil
}

// UpdateStock escribe la cantidad disponible (solo desde el mutador, fila ya bloqueada).
func (r *ItemRepo) UpdateStock(id string, onHand decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE items SET on_hand = $2, updated_at = now() WHERE id = $1`, id, onHand)
	if err != nil {
		return fmt.Errorf("update item stock: %w", err)
	}
	return nil
}

// UpdateCost escribe el costo unitario actual (promedio o agregado).
func (r *ItemRepo) UpdateCost(id string, cost decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE items SET cost = $2, updated_at = now() WHERE id = $1`, id, cost)
	if err != nil {
		return fmt.Errorf("update item cost: %w", err)
	}
	return nil
}
