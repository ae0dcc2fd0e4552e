package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/sanse-api/internal/application/dto"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
)

// InventoryUseCase reposición manual y ajustes de stock.
type InventoryUseCase struct {
	inventory repository.InventoryRepository
	materials repository.MaterialRepository
	now       func() time.Time
}

// NewInventoryUseCase construye el caso de uso.
func NewInventoryUseCase(inventory repository.InventoryRepository, materials repository.MaterialRepository) *InventoryUseCase {
	return &InventoryUseCase{inventory: inventory, materials: materials, now: time.Now}
}

// AddStock suma stock a un insumo; crea su registro de inventario si no existía.
func (uc *InventoryUseCase) AddStock(ctx context.Context, in dto.AddStockRequest) (*dto.InventoryItemResponse, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.InvalidRequest("la cantidad debe ser mayor a 0")
	}
	if in.MinStock != nil && in.MinStock.IsNegative() {
		return nil, domain.InvalidRequest("el stock mínimo no puede ser negativo")
	}
	m, err := uc.materials.GetByID(ctx, in.MaterialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("insumo %s no encontrado", in.MaterialID)
	}

	now := uc.now()
	item, found, err := uc.inventory.GetByMaterial(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if found {
		if err := uc.inventory.Restock(ctx, item.ID, in.Quantity, in.MinStock, now); err != nil {
			return nil, err
		}
		item, err = uc.inventory.GetByID(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		return toInventoryResponse(item), nil
	}

	unit := entity.Unit(in.Unit)
	if unit == "" {
		unit = m.Unit
	}
	item = &entity.InventoryItem{
		ID:            uuid.New().String(),
		MaterialID:    m.ID,
		Quantity:      in.Quantity,
		Unit:          unit,
		LastRestocked: &now,
		UpdatedAt:     now,
	}
	if in.MinStock != nil {
		item.MinStock = *in.MinStock
	}
	if err := uc.inventory.Create(ctx, item); err != nil {
		return nil, err
	}
	return toInventoryResponse(item), nil
}

// Update fija cantidad y/o stock mínimo (conteo físico).
func (uc *InventoryUseCase) Update(ctx context.Context, id string, in dto.UpdateInventoryRequest) (*dto.InventoryItemResponse, error) {
	if in.MinStock != nil && in.MinStock.IsNegative() {
		return nil, domain.InvalidRequest("el stock mínimo no puede ser negativo")
	}
	item, err := uc.inventory.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("inventario %s no encontrado", id)
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.MinStock != nil {
		item.MinStock = *in.MinStock
	}
	item.UpdatedAt = uc.now()
	if err := uc.inventory.Update(ctx, item); err != nil {
		return nil, err
	}
	return toInventoryResponse(item), nil
}

// LowStock insumos por debajo de su stock mínimo.
func (uc *InventoryUseCase) LowStock(ctx context.Context) ([]dto.InventoryItemResponse, error) {
	list, err := uc.inventory.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryItemResponse, 0, len(list))
	for _, item := range list {
		out = append(out, *toInventoryResponse(item))
	}
	return out, nil
}
