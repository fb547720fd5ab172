package inventory

import (
	"context"

	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción. Todo el motor de
// stock trabaja contra este conjunto para garantizar atomicidad.
type Repos struct {
	Items        repository.ItemRepository
	Batches      repository.BatchRepository
	Ledger       repository.LedgerRepository
	Compositions repository.CompositionRepository
	Sales        repository.SaleRepository
	Opnames      repository.OpnameRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Commit si fn retorna nil; Rollback si falla.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
