package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/sanse-api/internal/application/dto"
	"github.com/jhoicas/sanse-api/internal/application/pricesync"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/costing"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductUseCase recetas manuales y recálculo de costos. Cost y FinalPrice nunca se reciben del cliente.
type ProductUseCase struct {
	products repository.ProductRepository
	tx       pricesync.CatalogTxRunner
	log      zerolog.Logger
	now      func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(products repository.ProductRepository, tx pricesync.CatalogTxRunner, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{products: products, tx: tx, log: log, now: time.Now}
}

// ingredients valida la receta y enlaza cada línea con su insumo.
func ingredients(ctx context.Context, materials repository.MaterialRepository, productID string, in []dto.IngredientRequest) ([]entity.ProductIngredient, error) {
	if len(in) == 0 {
		return nil, domain.InvalidRequest("la receta no tiene ingredientes")
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]entity.ProductIngredient, 0, len(in))
	for i, r := range in {
		if !r.QuantityUsed.IsPositive() {
			return nil, domain.InvalidRequest("ingrediente %d: la cantidad debe ser mayor a 0", i+1)
		}
		if _, dup := seen[r.MaterialID]; dup {
			return nil, domain.InvalidRequest("ingrediente %d: insumo repetido", i+1)
		}
		seen[r.MaterialID] = struct{}{}
		m, err := materials.GetByID(ctx, r.MaterialID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, domain.NotFound("insumo %s no encontrado", r.MaterialID)
		}
		out = append(out, entity.ProductIngredient{
			ID:           uuid.New().String(),
			ProductID:    productID,
			MaterialID:   m.ID,
			QuantityUsed: r.QuantityUsed,
			Material:     m,
		})
	}
	return out, nil
}

func validMargin(m decimal.Decimal) error {
	if m.IsNegative() {
		return domain.InvalidRequest("el margen no puede ser negativo")
	}
	return nil
}

// Create crea un producto con su receta; costo y precio final se derivan.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validMargin(in.ProfitMargin); err != nil {
		return nil, err
	}
	now := uc.now()
	p := &entity.Product{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		ProfitMargin: in.ProfitMargin,
		Gender:       entity.Gender(in.Gender),
		TypeID:       in.TypeID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.tx.RunCatalog(ctx, func(materials repository.MaterialRepository, products repository.ProductRepository, _ repository.ResellerProductRepository) error {
		ings, err := ingredients(ctx, materials, p.ID, in.Ingredients)
		if err != nil {
			return err
		}
		p.Ingredients = ings
		costing.Reprice(p)
		return products.Create(ctx, p)
	})
	if err != nil {
		return nil, catalogError(err)
	}
	return toProductResponse(p), nil
}

// Update modifica nombre, margen o género y, si llega, reemplaza la receta completa.
// Costo, precio final y cotizaciones a revendedor se recalculan en la misma transacción.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.ProfitMargin != nil {
		if err := validMargin(*in.ProfitMargin); err != nil {
			return nil, err
		}
	}
	var out *entity.Product
	err := uc.tx.RunCatalog(ctx, func(materials repository.MaterialRepository, products repository.ProductRepository, resellers repository.ResellerProductRepository) error {
		p, err := products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NotFound("producto %s no encontrado", id)
		}
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.ProfitMargin != nil {
			p.ProfitMargin = *in.ProfitMargin
		}
		if in.Gender != nil {
			p.Gender = entity.Gender(*in.Gender)
		}
		if in.Ingredients != nil {
			ings, err := ingredients(ctx, materials, p.ID, *in.Ingredients)
			if err != nil {
				return err
			}
			if err := products.ReplaceIngredients(ctx, p.ID, ings); err != nil {
				return err
			}
			p.Ingredients = ings
		}
		p.UpdatedAt = uc.now()
		costing.Reprice(p)
		if err := products.Update(ctx, p); err != nil {
			return err
		}
		if _, err := pricesync.RepriceResellers(ctx, resellers, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, catalogError(err)
	}
	return toProductResponse(out), nil
}

// Recalculate recalcula costo y precio de todos los productos y de sus cotizaciones a revendedor,
// un producto por transacción. Devuelve los productos con insumos sin costo disponible.
func (uc *ProductUseCase) Recalculate(ctx context.Context) (*dto.RecalculateResponse, error) {
	list, err := uc.products.List(ctx)
	if err != nil {
		return nil, domain.TransactionFailure(err)
	}
	out := &dto.RecalculateResponse{}
	for _, item := range list {
		id := item.ID
		err := uc.tx.RunCatalog(ctx, func(_ repository.MaterialRepository, products repository.ProductRepository, resellers repository.ResellerProductRepository) error {
			p, err := products.GetByID(ctx, id)
			if err != nil || p == nil {
				return err
			}
			n, err := reprice(ctx, products, resellers, p)
			if err != nil {
				return err
			}
			out.Products++
			out.ResellerProducts += n
			if len(p.Flags) > 0 {
				out.Flagged = append(out.Flagged, p.Name)
			}
			return nil
		})
		if err != nil {
			uc.log.Error().Err(err).Str("product_id", id).Msg("no se pudo recalcular el producto")
			return nil, catalogError(err)
		}
	}
	uc.log.Info().Int("products", out.Products).Int("reseller_products", out.ResellerProducts).Msg("costos recalculados")
	return out, nil
}

// ResellerUseCase cotizaciones a revendedor.
type ResellerUseCase struct {
	tx  pricesync.CatalogTxRunner
	now func() time.Time
}

// NewResellerUseCase construye el caso de uso.
func NewResellerUseCase(tx pricesync.CatalogTxRunner) *ResellerUseCase {
	return &ResellerUseCase{tx: tx, now: time.Now}
}

// Create cotiza un producto para revendedor: precio = costo × (1 + margen/100), sobre el costo vigente.
func (uc *ResellerUseCase) Create(ctx context.Context, in dto.CreateResellerProductRequest) (*dto.ResellerProductResponse, error) {
	if err := validMargin(in.ProfitMargin); err != nil {
		return nil, err
	}
	var out *dto.ResellerProductResponse
	err := uc.tx.RunCatalog(ctx, func(_ repository.MaterialRepository, products repository.ProductRepository, resellers repository.ResellerProductRepository) error {
		p, err := products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NotFound("producto %s no encontrado", in.ProductID)
		}
		costing.Reprice(p)
		now := uc.now()
		rp := &entity.ResellerProduct{
			ID:           uuid.New().String(),
			ProductID:    p.ID,
			ProfitMargin: in.ProfitMargin,
			Price:        costing.ResellerPrice(p.Cost, in.ProfitMargin),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := resellers.Create(ctx, rp); err != nil {
			return err
		}
		out = &dto.ResellerProductResponse{
			ID:           rp.ID,
			ProductID:    p.ID,
			ProductCost:  p.Cost,
			ProfitMargin: rp.ProfitMargin,
			Price:        rp.Price,
		}
		return nil
	})
	if err != nil {
		return nil, catalogError(err)
	}
	return out, nil
}
