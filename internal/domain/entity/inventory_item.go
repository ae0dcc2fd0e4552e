package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem stock actual de un insumo. Una fila por insumo; nunca se borra automáticamente.
// Quantity puede quedar negativa tras una venta: es un estado válido y visible.
type InventoryItem struct {
	ID            string
	MaterialID    string
	Quantity      decimal.Decimal
	MinStock      decimal.Decimal // umbral de reposición
	Unit          Unit
	LastRestocked *time.Time
	UpdatedAt     time.Time
}

// BelowMinStock indica si el stock está por debajo del umbral de reposición.
func (i *InventoryItem) BelowMinStock() bool {
	return i.Quantity.LessThan(i.MinStock)
}
