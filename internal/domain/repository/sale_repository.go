package repository

import (
	"time"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateLine(line *entity.SaleLine) error
	GetByID(id string) (*entity.Sale, error)
	GetLines(saleID string) ([]*entity.SaleLine, error)
	// GetForUpdate bloquea la cabecera (serializa confirmaciones/devoluciones concurrentes).
	GetForUpdate(id string) (*entity.Sale, error)
	Update(sale *entity.Sale) error
	ListByStatusOlderThan(status string, cutoff time.Time) ([]*entity.Sale, error)
	ListByPeriod(from, to time.Time, limit, offset int) ([]*entity.Sale, error)
}
