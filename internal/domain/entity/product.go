package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa una receta compuesta de insumos.
// Cost = Σ(QuantityUsed × CostPerUnit del insumo); FinalPrice = Cost × (1 + ProfitMargin/100).
type Product struct {
	ID           string
	Name         string
	Cost         decimal.Decimal
	ProfitMargin decimal.Decimal // porcentaje
	FinalPrice   decimal.Decimal
	Gender       Gender
	TypeID       *string
	Ingredients  []ProductIngredient
	// Flags insumos de la receta sin costo disponible (consultar o sin cantidad); calculado al leer.
	Flags     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductIngredient línea de receta. Pertenece exclusivamente a un Product (borrado en cascada).
type ProductIngredient struct {
	ID           string
	ProductID    string
	MaterialID   string
	QuantityUsed decimal.Decimal
	Material     *Material // cargado por el repositorio; nil si el insumo ya no existe
}

// ResellerProduct cotización para revendedores sobre el COSTO del producto (no sobre el precio final).
type ResellerProduct struct {
	ID           string
	ProductID    string
	ProfitMargin decimal.Decimal
	Price        decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
