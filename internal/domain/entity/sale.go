package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleKind tipo de destino de una línea de venta.
type SaleKind string

const (
	SaleKindRetail   SaleKind = "RETAIL"
	SaleKindReseller SaleKind = "RESELLER"
)

// SaleTarget variante etiquetada: Retail(productID) | Reseller(resellerProductID).
type SaleTarget struct {
	Kind SaleKind
	ID   string
}

// RetailTarget línea vendida al público sobre un Product.
func RetailTarget(productID string) SaleTarget {
	return SaleTarget{Kind: SaleKindRetail, ID: productID}
}

// ResellerTarget línea vendida a revendedor sobre un ResellerProduct.
func ResellerTarget(resellerProductID string) SaleTarget {
	return SaleTarget{Kind: SaleKindReseller, ID: resellerProductID}
}

// Valid indica si el destino está bien formado.
func (t SaleTarget) Valid() bool {
	return (t.Kind == SaleKindRetail || t.Kind == SaleKindReseller) && t.ID != ""
}

// Sale venta confirmada. Inmutable salvo borrado, que revierte el inventario.
type Sale struct {
	ID        string
	Total     decimal.Decimal
	CreatedAt time.Time
	Items     []SaleItem
}

// SaleItem línea de venta. PriceAtSale queda congelado al momento de la transacción.
type SaleItem struct {
	ID          string
	SaleID      string
	Target      SaleTarget
	Quantity    decimal.Decimal
	PriceAtSale decimal.Decimal
	ProductName string
}

// Subtotal = PriceAtSale × Quantity.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.PriceAtSale.Mul(i.Quantity)
}
