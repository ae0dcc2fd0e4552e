package repository

import (
	"context"

	"github.com/jhoicas/sanse-api/internal/domain/entity"
)

// MaterialRepository define el puerto de persistencia para Material.
type MaterialRepository interface {
	Create(ctx context.Context, m *entity.Material) error
	Update(ctx context.Context, m *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	// GetBySupplierAndName búsqueda exacta por nombre dentro de un proveedor. (nil, nil) si no existe.
	GetBySupplierAndName(ctx context.Context, supplier, name string) (*entity.Material, error)
	// ListSupplierSourced insumos del proveedor con supplier_url no nulo.
	ListSupplierSourced(ctx context.Context, supplier string) ([]*entity.Material, error)
	// ListByType insumos de una categoría (por nombre de tipo, ej. "Esencia").
	ListByType(ctx context.Context, typeName string) ([]*entity.Material, error)
	List(ctx context.Context) ([]*entity.Material, error)
	// Delete devuelve un domain.ReferentialConflict si el insumo sigue referenciado.
	Delete(ctx context.Context, id string) error
}

// MaterialTypeRepository puerto para las categorías de insumo.
type MaterialTypeRepository interface {
	GetByName(ctx context.Context, name string) (*entity.MaterialType, error)
	Create(ctx context.Context, t *entity.MaterialType) error
}
