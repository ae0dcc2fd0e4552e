package repository

import (
	"context"

	"github.com/jhoicas/sanse-api/internal/domain/entity"
)

// SaleRepository puerto de persistencia para Sale y sus líneas.
type SaleRepository interface {
	// Create inserta la venta y todas sus líneas.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate carga la venta con sus líneas y bloquea la fila de la venta.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Sale, error)
	// Delete borra la venta; las líneas se borran en cascada.
	Delete(ctx context.Context, id string) error
}
