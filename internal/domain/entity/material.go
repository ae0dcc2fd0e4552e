package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceStatus estado del precio informado por el proveedor.
type PriceStatus string

const (
	PriceStatusAvailable PriceStatus = "available"
	PriceStatusConsultar PriceStatus = "consultar" // precio desconocido: no participa en costeo
)

// Valid indica si el estado es uno de los conocidos.
func (s PriceStatus) Valid() bool {
	return s == PriceStatusAvailable || s == PriceStatusConsultar
}

// Gender categoría de género de una esencia o producto. Vacío = sin género.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderUnisex Gender = "UNISEX"
)

// Synthesizable indica si una esencia con este género puede generar un perfume.
func (g Gender) Synthesizable() bool {
	return g == GenderMale || g == GenderFemale || g == GenderUnisex
}

// Unit unidad de medida de un insumo.
type Unit string

const (
	UnitGram       Unit = "g"
	UnitMilliliter Unit = "ml"
	UnitPiece      Unit = "u"
)

// MaterialTypeEssence nombre de la categoría de esencias.
const MaterialTypeEssence = "Esencia"

// DefaultSupplier proveedor asignado a los insumos cargados a mano sin proveedor.
const DefaultSupplier = "Otro"

// Material representa un insumo con su costo de compra.
// CostPerUnit es derivado (PurchaseCost / PurchaseQuantity) y vale 0 cuando el costo no está disponible.
type Material struct {
	ID               string
	Name             string // único por proveedor, ej. "Alien (30g)"
	Unit             Unit
	PurchaseCost     decimal.Decimal // costo total de un lote de compra
	PurchaseQuantity decimal.Decimal // tamaño del lote en Unit
	CostPerUnit      decimal.Decimal
	Supplier         string
	SupplierURL      *string // no nil = insumo sincronizado desde el proveedor
	GroupName        string  // familia de variantes, ej. "Alien"
	Gender           Gender
	PriceStatus      PriceStatus
	TypeID           *string
	LastUpdated      time.Time
	CreatedAt        time.Time
}

// IsSupplierSourced indica si el insumo proviene de la sincronización con el proveedor.
func (m *Material) IsSupplierSourced() bool {
	return m.SupplierURL != nil && *m.SupplierURL != ""
}

// MaterialType categoría simple de insumo (ej. "Esencia").
type MaterialType struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
