package repository

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para artículos.
// El stock y el costo solo se actualizan dentro de transacciones del mutador.
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	GetBySKU(sku string) (*entity.Item, error)
	List(itemType string, limit, offset int) ([]*entity.Item, error)
	ListByKind(kind string) ([]*entity.Item, error)
	Update(item *entity.Item) error
	// Delete falla con domain.ErrItemReferenced si existen asientos o lotes
	// que referencian el artículo (integridad referencial, no cascada).
	Delete(id string) error
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Item, error)
	UpdateStock(id string, onHand decimal.Decimal) error
	UpdateCost(id string, cost decimal.Decimal) error
}
