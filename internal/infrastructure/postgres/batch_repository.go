package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación del puerto BatchRepository sobre PostgreSQL.
type BatchRepo struct {
	q Querier
}

func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, item_id, reference, quantity_in, remaining, unit_cost, received_at`

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(&b.ID, &b.ItemID, &b.Reference, &b.QuantityIn, &b.Remaining, &b.UnitCost, &b.ReceivedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BatchRepo) Create(batch *entity.Batch) error {
	query := `
		INSERT INTO batches (id, item_id, reference, quantity_in, remaining, unit_cost, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.ItemID, batch.Reference, batch.QuantityIn, batch.Remaining, batch.UnitCost, batch.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// GetByReference busca un lote por artículo y referencia de recepción.
// Si hay más de uno toma el más antiguo con saldo.
func (r *BatchRepo) GetByReference(itemID, reference string) (*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + ` FROM batches
		WHERE item_id = $1 AND reference = $2
		ORDER BY remaining > 0 DESC, received_at ASC, id ASC
		LIMIT 1`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, itemID, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch by reference: %w", err)
	}
	return b, nil
}

// ListAvailable devuelve lotes con saldo, más antiguos primero. El desempate
// por id mantiene el orden determinista entre lotes recibidos en el mismo instante.
func (r *BatchRepo) ListAvailable(itemID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + ` FROM batches
		WHERE item_id = $1 AND remaining > 0
		ORDER BY received_at ASC, id ASC`
	return r.queryBatches(query, itemID)
}

func (r *BatchRepo) ListByItem(itemID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + ` FROM batches
		WHERE item_id = $1
		ORDER BY received_at ASC, id ASC`
	return r.queryBatches(query, itemID)
}

func (r *BatchRepo) queryBatches(query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var batches []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (r *BatchRepo) UpdateRemaining(id string, remaining decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE batches SET remaining = $2 WHERE id = $1`, id, remaining)
	if err != nil {
		return fmt.Errorf("update batch remaining: %w", err)
	}
	return nil
}
