package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrUserNotFound           = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists     = errors.New("el email ya está registrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInsufficientBatchStock = errors.New("stock insuficiente en lotes")
	ErrBatchNotFound          = errors.New("lote no encontrado")
	ErrAlreadyRefunded        = errors.New("la venta ya fue devuelta")
	ErrItemReferenced         = errors.New("el artículo tiene movimientos asociados")
	ErrCyclicComposition      = errors.New("composición cíclica detectada")
	ErrConcurrencyConflict    = errors.New("conflicto de concurrencia, reintente la operación")
	ErrPaymentDeclined        = errors.New("pago rechazado por el autorizador")
)
