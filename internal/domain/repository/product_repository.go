package repository

import (
	"context"

	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product y su receta.
// Las lecturas cargan Ingredients con su Material.
type ProductRepository interface {
	// Create inserta el producto y sus ingredientes.
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	// Update persiste nombre, margen, género, tipo, costo y precio final. No toca ingredientes.
	Update(ctx context.Context, p *entity.Product) error
	UpdatePricing(ctx context.Context, id string, cost, finalPrice decimal.Decimal) error
	// ReplaceIngredients borra la receta actual e inserta la nueva.
	ReplaceIngredients(ctx context.Context, productID string, ingredients []entity.ProductIngredient) error
	List(ctx context.Context) ([]*entity.Product, error)
	// ListByMaterial productos cuya receta usa el insumo.
	ListByMaterial(ctx context.Context, materialID string) ([]*entity.Product, error)
}

// ResellerProductRepository puerto para cotizaciones a revendedores.
type ResellerProductRepository interface {
	Create(ctx context.Context, rp *entity.ResellerProduct) error
	GetByID(ctx context.Context, id string) (*entity.ResellerProduct, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.ResellerProduct, error)
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error
}
