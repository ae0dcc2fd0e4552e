package usecase

import (
	"context"

	"github.com/jhoicas/sanse-api/internal/application/dto"
	"github.com/jhoicas/sanse-api/internal/application/pricesync"
	"github.com/jhoicas/sanse-api/internal/domain/costing"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
)

// reprice recalcula costo y precio final del producto con sus ingredientes actuales y
// arrastra el precio de sus cotizaciones a revendedor. Devuelve cuántas cotizaciones cambió.
func reprice(ctx context.Context, products repository.ProductRepository, resellers repository.ResellerProductRepository, p *entity.Product) (int, error) {
	costing.Reprice(p)
	if err := products.UpdatePricing(ctx, p.ID, p.Cost, p.FinalPrice); err != nil {
		return 0, err
	}
	return pricesync.RepriceResellers(ctx, resellers, p)
}

func toMaterialResponse(m *entity.Material) dto.MaterialResponse {
	_, ok := costing.MaterialCost(m)
	return dto.MaterialResponse{
		ID:               m.ID,
		Name:             m.Name,
		Unit:             string(m.Unit),
		PurchaseCost:     m.PurchaseCost,
		PurchaseQuantity: m.PurchaseQuantity,
		CostPerUnit:      m.CostPerUnit,
		CostAvailable:    ok,
		Supplier:         m.Supplier,
		SupplierURL:      m.SupplierURL,
		GroupName:        m.GroupName,
		Gender:           string(m.Gender),
		PriceStatus:      string(m.PriceStatus),
		TypeID:           m.TypeID,
		LastUpdated:      m.LastUpdated,
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	ings := make([]dto.IngredientResponse, 0, len(p.Ingredients))
	for _, ing := range p.Ingredients {
		r := dto.IngredientResponse{MaterialID: ing.MaterialID, QuantityUsed: ing.QuantityUsed}
		if ing.Material != nil {
			r.MaterialName = ing.Material.Name
			r.CostPerUnit, _ = costing.MaterialCost(ing.Material)
		}
		ings = append(ings, r)
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Cost:         p.Cost,
		ProfitMargin: p.ProfitMargin,
		FinalPrice:   p.FinalPrice,
		Gender:       string(p.Gender),
		TypeID:       p.TypeID,
		Ingredients:  ings,
		Flags:        p.Flags,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toInventoryResponse(i *entity.InventoryItem) *dto.InventoryItemResponse {
	return &dto.InventoryItemResponse{
		ID:            i.ID,
		MaterialID:    i.MaterialID,
		Quantity:      i.Quantity,
		MinStock:      i.MinStock,
		Unit:          string(i.Unit),
		BelowMinStock: i.BelowMinStock(),
		LastRestocked: i.LastRestocked,
		UpdatedAt:     i.UpdatedAt,
	}
}
