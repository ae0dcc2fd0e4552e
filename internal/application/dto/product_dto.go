package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IngredientRequest línea de receta.
type IngredientRequest struct {
	MaterialID   string          `json:"material_id" validate:"required,uuid"`
	QuantityUsed decimal.Decimal `json:"quantity_used"`
}

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Name         string              `json:"name" validate:"required,max=200"`
	ProfitMargin decimal.Decimal     `json:"profit_margin"`
	Gender       string              `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE UNISEX"`
	TypeID       *string             `json:"type_id,omitempty" validate:"omitempty,uuid"`
	Ingredients  []IngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
}

// UpdateProductRequest body para PUT /api/products/:id. Ingredients no nil reemplaza la receta completa.
type UpdateProductRequest struct {
	Name         *string              `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	ProfitMargin *decimal.Decimal     `json:"profit_margin,omitempty"`
	Gender       *string              `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE UNISEX"`
	Ingredients  *[]IngredientRequest `json:"ingredients,omitempty" validate:"omitempty,min=1,dive"`
}

// IngredientResponse línea de receta con el costo vigente del insumo.
type IngredientResponse struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name,omitempty"`
	QuantityUsed decimal.Decimal `json:"quantity_used"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
}

// ProductResponse representación de un producto con su costo derivado.
type ProductResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Cost         decimal.Decimal      `json:"cost"`
	ProfitMargin decimal.Decimal      `json:"profit_margin"`
	FinalPrice   decimal.Decimal      `json:"final_price"`
	Gender       string               `json:"gender,omitempty"`
	TypeID       *string              `json:"type_id,omitempty"`
	Ingredients  []IngredientResponse `json:"ingredients"`
	Flags        []string             `json:"unavailable_materials,omitempty"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// RecalculateResponse resultado de POST /api/products/recalculate.
type RecalculateResponse struct {
	Products         int      `json:"products"`
	ResellerProducts int      `json:"reseller_products"`
	Flagged          []string `json:"flagged,omitempty"`
}

// CreateResellerProductRequest body para POST /api/reseller-products.
type CreateResellerProductRequest struct {
	ProductID    string          `json:"product_id" validate:"required,uuid"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
}

// ResellerProductResponse cotización a revendedor.
type ResellerProductResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	ProductCost  decimal.Decimal `json:"product_cost"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	Price        decimal.Decimal `json:"price"`
}
