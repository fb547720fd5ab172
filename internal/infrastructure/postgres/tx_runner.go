package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repositorios atados a la tx y
// hace Commit o Rollback. Ningún estado parcial sobrevive a un error de fn.
// Los fallos de serialización y deadlocks salen como ErrConcurrencyConflict:
// la transacción ya fue revertida y el llamador puede reintentarla completa.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := inventory.Repos{
		Items:        NewItemRepository(tx),
		Batches:      NewBatchRepository(tx),
		Ledger:       NewLedgerRepository(tx),
		Compositions: NewCompositionRepository(tx),
		Sales:        NewSaleRepository(tx),
		Opnames:      NewOpnameRepository(tx),
	}
	if err := fn(repos); err != nil {
		if isConcurrencyConflict(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isConcurrencyConflict(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
