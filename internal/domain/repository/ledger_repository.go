package repository

import (
	"time"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// LedgerRepository define el puerto del libro de stock. Solo inserta y consulta:
// los asientos nunca se actualizan ni se borran.
type LedgerRepository interface {
	Append(entry *entity.LedgerEntry) error
	ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error)
	// ListByReference devuelve los asientos de una referencia (ej. el ID de una
	// venta) en orden de inserción; es la base para revertir exactamente lo
	// registrado.
	ListByReference(reference string) ([]*entity.LedgerEntry, error)
}
