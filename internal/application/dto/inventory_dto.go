package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddStockRequest body para POST /api/inventory. Crea el registro si el insumo no tenía inventario.
type AddStockRequest struct {
	MaterialID string           `json:"material_id" validate:"required,uuid"`
	Quantity   decimal.Decimal  `json:"quantity"`
	MinStock   *decimal.Decimal `json:"min_stock,omitempty"`
	Unit       string           `json:"unit,omitempty" validate:"omitempty,oneof=g ml u"`
}

// UpdateInventoryRequest body para PUT /api/inventory/:id.
type UpdateInventoryRequest struct {
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	MinStock *decimal.Decimal `json:"min_stock,omitempty"`
}

// InventoryItemResponse stock de un insumo. quantity puede ser negativa.
type InventoryItemResponse struct {
	ID            string          `json:"id"`
	MaterialID    string          `json:"material_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	MinStock      decimal.Decimal `json:"min_stock"`
	Unit          string          `json:"unit"`
	BelowMinStock bool            `json:"below_min_stock"`
	LastRestocked *time.Time      `json:"last_restocked,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
