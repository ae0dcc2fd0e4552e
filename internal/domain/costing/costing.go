// Package costing deriva costos: costo por unidad de un insumo, costo de una receta
// y precios con margen. Funciones puras sobre datos ya cargados.
package costing

import (
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Places decimales con los que se persisten costos y precios.
const Places = 4

var hundred = decimal.NewFromInt(100)

// Round redondea a Places decimales.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// CostPerUnit = purchaseCost / purchaseQuantity.
// ok=false (costo no disponible) si el precio es "consultar", la cantidad es <= 0 o el costo es negativo.
// Nunca divide por cero.
func CostPerUnit(status entity.PriceStatus, purchaseCost, purchaseQuantity decimal.Decimal) (decimal.Decimal, bool) {
	if status == entity.PriceStatusConsultar {
		return decimal.Zero, false
	}
	if !purchaseQuantity.IsPositive() || purchaseCost.IsNegative() {
		return decimal.Zero, false
	}
	return Round(purchaseCost.Div(purchaseQuantity)), true
}

// MaterialCost costo por unidad derivado de los campos de compra del insumo.
func MaterialCost(m *entity.Material) (decimal.Decimal, bool) {
	if m == nil {
		return decimal.Zero, false
	}
	return CostPerUnit(m.PriceStatus, m.PurchaseCost, m.PurchaseQuantity)
}

// Breakdown resultado del costeo de una receta.
type Breakdown struct {
	Cost decimal.Decimal
	// Unavailable IDs de insumos cuyo costo no está disponible; aportan 0 al costo.
	Unavailable []string
}

// ProductCost = Σ(quantityUsed × costo por unidad del insumo).
// Un ingrediente sin costo disponible (o sin insumo cargado) suma 0 y se marca en Unavailable.
func ProductCost(ingredients []entity.ProductIngredient) Breakdown {
	b := Breakdown{Cost: decimal.Zero}
	for _, ing := range ingredients {
		cpu, ok := MaterialCost(ing.Material)
		if !ok {
			b.Unavailable = append(b.Unavailable, ing.MaterialID)
			continue
		}
		b.Cost = b.Cost.Add(ing.QuantityUsed.Mul(cpu))
	}
	b.Cost = Round(b.Cost)
	return b
}

// FinalPrice = cost × (1 + marginPercent/100).
func FinalPrice(cost, marginPercent decimal.Decimal) decimal.Decimal {
	return Round(cost.Mul(decimal.NewFromInt(1).Add(marginPercent.Div(hundred))))
}

// ResellerPrice usa la misma fórmula que FinalPrice pero siempre sobre el COSTO del producto,
// nunca sobre su precio final.
func ResellerPrice(cost, marginPercent decimal.Decimal) decimal.Decimal {
	return FinalPrice(cost, marginPercent)
}

// Reprice recalcula Cost, FinalPrice y Flags del producto con sus ingredientes actuales.
// El margen configurado no cambia.
func Reprice(p *entity.Product) {
	b := ProductCost(p.Ingredients)
	p.Cost = b.Cost
	p.FinalPrice = FinalPrice(b.Cost, p.ProfitMargin)
	p.Flags = b.Unavailable
}
