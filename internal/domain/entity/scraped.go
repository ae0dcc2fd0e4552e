package entity

import "github.com/shopspring/decimal"

// ScrapedProduct producto leído del sitio del proveedor (un grupo con sus variantes de tamaño).
type ScrapedProduct struct {
	GroupName string           `json:"groupName"`
	URL       string           `json:"url"`
	Gender    Gender           `json:"gender,omitempty"`
	Variants  []ScrapedVariant `json:"variants"`
}

// ScrapedVariant variante de tamaño con su precio, ej. {"30g", 30000, available}.
type ScrapedVariant struct {
	Size        string          `json:"size"`
	Price       decimal.Decimal `json:"price"`
	PriceStatus PriceStatus     `json:"priceStatus"`
}
