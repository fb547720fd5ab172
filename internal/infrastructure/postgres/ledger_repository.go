package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación del libro de stock. Solo INSERT y SELECT:
// el esquema no permite UPDATE ni DELETE sobre stock_ledger.
type LedgerRepo struct {
	q Querier
}

func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

func (r *LedgerRepo) Append(entry *entity.LedgerEntry) error {
	query := `
		INSERT INTO stock_ledger (id, item_id, direction, quantity, unit_price, reference, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ItemID, entry.Direction, entry.Quantity,
		entry.UnitPrice, entry.Reference, entry.CreatedBy, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// ListByReference lista los asientos de una referencia en orden de inserción.
func (r *LedgerRepo) ListByReference(reference string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT id, item_id, direction, quantity, unit_price, reference, created_by, created_at
		FROM stock_ledger
		WHERE reference = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, reference)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries by reference: %w", err)
	}
	defer rows.Close()

	var entries []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		err := rows.Scan(&e.ID, &e.ItemID, &e.Direction, &e.Quantity,
			&e.UnitPrice, &e.Reference, &e.CreatedBy, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// ListByItem lista los asientos de un artículo, más recientes primero.
// from/to acotan por created_at; limit <= 0 = sin límite.
func (r *LedgerRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT id, item_id, direction, quantity, unit_price, reference, created_by, created_at
		FROM stock_ledger
		WHERE item_id = $1`
	args := []any{itemID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND created_at < $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		err := rows.Scan(&e.ID, &e.ItemID, &e.Direction, &e.Quantity,
			&e.UnitPrice, &e.Reference, &e.CreatedBy, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
