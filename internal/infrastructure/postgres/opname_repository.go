package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.OpnameRepository = (*OpnameRepo)(nil)

// OpnameRepo implementación del puerto de conciliaciones de conteo físico.
type OpnameRepo struct {
	q Querier
}

func NewOpnameRepository(q Querier) *OpnameRepo {
	return &OpnameRepo{q: q}
}

func (r *OpnameRepo) Create(record *entity.StockOpname) error {
	query := `
		INSERT INTO stock_opnames (id, item_id, system_qty, counted_qty, difference, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		record.ID, record.ItemID, record.SystemQty, record.CountedQty,
		record.Difference, record.Reason, record.CreatedBy, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert opname record: %w", err)
	}
	return nil
}

func (r *OpnameRepo) ListByItem(itemID string, limit, offset int) ([]*entity.StockOpname, error) {
	query := `
		SELECT id, item_id, system_qty, counted_qty, difference, reason, created_by, created_at
		FROM stock_opnames
		WHERE item_id = $1
		ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)
	}
	return r.queryRecords(query, itemID)
}

func (r *OpnameRepo) ListByPeriod(from, to time.Time, limit, offset int) ([]*entity.StockOpname, error) {
	query := `
		SELECT id, item_id, system_qty, counted_qty, difference, reason, created_by, created_at
		FROM stock_opnames
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)
	}
	return r.queryRecords(query, from, to)
}

func (r *OpnameRepo) queryRecords(query string, args ...any) ([]*entity.StockOpname, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list opname records: %w", err)
	}
	defer rows.Close()
	var records []*entity.StockOpname
	for rows.Next() {
		rec, err := scanOpname(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opname record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanOpname(row pgx.Row) (*entity.StockOpname, error) {
	var rec entity.StockOpname
	err := row.Scan(&rec.ID, &rec.ItemID, &rec.SystemQty, &rec.CountedQty,
		&rec.Difference, &rec.Reason, &rec.CreatedBy, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
