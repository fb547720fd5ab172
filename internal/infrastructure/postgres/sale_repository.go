package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, number, status, tender, total, cost_total, created_by, created_at, paid_at, refunded_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.Number, &s.Status, &s.Tender, &s.Total, &s.CostTotal,
		&s.CreatedBy, &s.CreatedAt, &s.PaidAt, &s.RefundedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SaleRepo) Create(sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, number, status, tender, total, cost_total, created_by, created_at, paid_at, refunded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.Number, sale.Status, sale.Tender, sale.Total, sale.CostTotal,
		sale.CreatedBy, sale.CreatedAt, sale.PaidAt, sale.RefundedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) CreateLine(line *entity.SaleLine) error {
	query := `
		INSERT INTO sale_lines (id, sale_id, item_id, quantity, unit_price, cost_at_sale, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.SaleID, line.ItemID, line.Quantity, line.UnitPrice, line.CostAtSale, line.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert sale line: %w", err)
	}
	return nil
}

func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	s, err := scanSale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

func (r *SaleRepo) GetLines(saleID string) ([]*entity.SaleLine, error) {
	query := `
		SELECT id, sale_id, item_id, quantity, unit_price, cost_at_sale, subtotal
		FROM sale_lines
		WHERE sale_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	var lines []*entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		err := rows.Scan(&l.ID, &l.SaleID, &l.ItemID, &l.Quantity, &l.UnitPrice, &l.CostAtSale, &l.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

// GetForUpdate bloquea la cabecera de la venta. Serializa confirmaciones y
// devoluciones concurrentes del mismo comprobante.
func (r *SaleRepo) GetForUpdate(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 FOR UPDATE`
	s, err := scanSale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale for update: %w", err)
	}
	return s, nil
}

func (r *SaleRepo) Update(sale *entity.Sale) error {
	query := `
		UPDATE sales SET status = $2, paid_at = $3, refunded_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.Status, sale.PaidAt, sale.RefundedAt)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	return nil
}

// ListByStatusOlderThan lista ventas en un estado creadas antes del corte
// (barrido de pendientes vencidas).
func (r *SaleRepo) ListByStatusOlderThan(status string, cutoff time.Time) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + ` FROM sales
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC`
	return r.querySales(query, status, cutoff)
}

func (r *SaleRepo) ListByPeriod(from, to time.Time, limit, offset int) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + ` FROM sales
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)
	}
	return r.querySales(query, from, to)
}

func (r *SaleRepo) querySales(query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var sales []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
