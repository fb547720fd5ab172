package repository

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para lotes de recepción.
type BatchRepository interface {
	Create(batch *entity.Batch) error
	GetByID(id string) (*entity.Batch, error)
	// GetByReference busca un lote por artículo y referencia (política SPECIFIC).
	GetByReference(itemID, reference string) (*entity.Batch, error)
	// ListAvailable devuelve los lotes con Remaining > 0 ordenados por fecha de
	// recepción ascendente (el llamador invierte para LIFO).
	ListAvailable(itemID string) ([]*entity.Batch, error)
	ListByItem(itemID string) ([]*entity.Batch, error)
	UpdateRemaining(id string, remaining decimal.Decimal) error
}
