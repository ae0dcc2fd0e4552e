package repository

import (
	"context"
	"time"

	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InventoryRepository puerto de persistencia para InventoryItem.
// Las búsquedas por insumo devuelven found=false cuando el insumo no tiene inventario:
// es un estado válido (insumo no seguido), no un error.
type InventoryRepository interface {
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetByMaterial(ctx context.Context, materialID string) (item *entity.InventoryItem, found bool, err error)
	// GetByMaterialForUpdate igual que GetByMaterial pero bloquea la fila (SELECT FOR UPDATE).
	GetByMaterialForUpdate(ctx context.Context, materialID string) (item *entity.InventoryItem, found bool, err error)
	Create(ctx context.Context, item *entity.InventoryItem) error
	// Update persiste quantity, min_stock, unit y last_restocked.
	Update(ctx context.Context, item *entity.InventoryItem) error
	// AdjustQuantity suma delta (puede ser negativo) a la cantidad actual.
	AdjustQuantity(ctx context.Context, id string, delta decimal.Decimal) error
	// Restock suma delta, marca last_restocked y, si minStock no es nil, reemplaza el umbral. Una sola sentencia.
	Restock(ctx context.Context, id string, delta decimal.Decimal, minStock *decimal.Decimal, at time.Time) error
	ListLowStock(ctx context.Context) ([]*entity.InventoryItem, error)
}
