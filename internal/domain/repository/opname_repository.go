package repository

import (
	"time"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// OpnameRepository define el puerto de persistencia para conciliaciones de conteo físico.
type OpnameRepository interface {
	Create(record *entity.StockOpname) error
	ListByItem(itemID string, limit, offset int) ([]*entity.StockOpname, error)
	ListByPeriod(from, to time.Time, limit, offset int) ([]*entity.StockOpname, error)
}
