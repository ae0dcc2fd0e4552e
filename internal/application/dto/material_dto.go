package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest body para POST /api/materials.
type CreateMaterialRequest struct {
	Name             string          `json:"name" validate:"required,max=200"`
	Unit             string          `json:"unit" validate:"required,oneof=g ml u"`
	PurchaseCost     decimal.Decimal `json:"purchase_cost"`
	PurchaseQuantity decimal.Decimal `json:"purchase_quantity"`
	Supplier         string          `json:"supplier,omitempty" validate:"max=100"`
	GroupName        string          `json:"group_name,omitempty"`
	Gender           string          `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE UNISEX"`
	PriceStatus      string          `json:"price_status,omitempty" validate:"omitempty,oneof=available consultar"`
	TypeID           *string         `json:"type_id,omitempty" validate:"omitempty,uuid"`
}

// UpdateMaterialRequest body para PUT /api/materials/:id. Campos nil no se modifican.
type UpdateMaterialRequest struct {
	Name             *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Unit             *string          `json:"unit,omitempty" validate:"omitempty,oneof=g ml u"`
	PurchaseCost     *decimal.Decimal `json:"purchase_cost,omitempty"`
	PurchaseQuantity *decimal.Decimal `json:"purchase_quantity,omitempty"`
	Supplier         *string          `json:"supplier,omitempty" validate:"omitempty,max=100"`
	Gender           *string          `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE UNISEX"`
	PriceStatus      *string          `json:"price_status,omitempty" validate:"omitempty,oneof=available consultar"`
}

// MaterialResponse representación de un insumo.
type MaterialResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	PurchaseCost     decimal.Decimal `json:"purchase_cost"`
	PurchaseQuantity decimal.Decimal `json:"purchase_quantity"`
	CostPerUnit      decimal.Decimal `json:"cost_per_unit"`
	CostAvailable    bool            `json:"cost_available"`
	Supplier         string          `json:"supplier"`
	SupplierURL      *string         `json:"supplier_url,omitempty"`
	GroupName        string          `json:"group_name,omitempty"`
	Gender           string          `json:"gender,omitempty"`
	PriceStatus      string          `json:"price_status"`
	TypeID           *string         `json:"type_id,omitempty"`
	LastUpdated      time.Time       `json:"last_updated"`
}

// MaterialUpdateResponse insumo actualizado y productos cuyo costo se recalculó.
type MaterialUpdateResponse struct {
	Material         MaterialResponse `json:"material"`
	RepricedProducts int              `json:"repriced_products"`
}
