package usecase

import (
	"context"
	"errors"
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
)

// MaterialUseCase carga manual de insumos. costPerUnit siempre se deriva de costo y cantidad de compra.
type MaterialUseCase struct {
	materials repository.MaterialRepository
	tx        pricesync.CatalogTxRunner
	log       zerolog.Logger
	now       func() time.Time
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(materials repository.MaterialRepository, tx pricesync.CatalogTxRunner, log zerolog.Logger) *MaterialUseCase {
	return &MaterialUseCase{materials: materials, tx: tx, log: log, now: time.Now}
}

// Create crea un insumo. Sin proveedor se asigna "Otro".
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	if in.PurchaseCost.IsNegative() || in.PurchaseQuantity.IsNegative() {
		return nil, domain.InvalidRequest("costo y cantidad de compra no pueden ser negativos")
	}
	supplier := strings.TrimSpace(in.Supplier)
	if supplier == "" {
		supplier = entity.DefaultSupplier
	}
	status := entity.PriceStatus(in.PriceStatus)
	if status == "" {
		status = entity.PriceStatusAvailable
	}
	now := uc.now()
	m := &entity.Material{
		ID:               uuid.New().String(),
		Name:             strings.TrimSpace(in.Name),
		Unit:             entity.Unit(in.Unit),
		PurchaseCost:     in.PurchaseCost,
		PurchaseQuantity: in.PurchaseQuantity,
		Supplier:         supplier,
		GroupName:        in.GroupName,
		Gender:           entity.Gender(in.Gender),
		PriceStatus:      status,
		TypeID:           in.TypeID,
		LastUpdated:      now,
		CreatedAt:        now,
	}
	m.CostPerUnit, _ = costing.MaterialCost(m)
	if err := uc.materials.Create(ctx, m); err != nil {
		return nil, err
	}
	out := toMaterialResponse(m)
	return &out, nil
}

// Update modifica un insumo y recalcula, en la misma transacción, los productos que lo usan
// y sus cotizaciones a revendedor.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialUpdateResponse, error) {
	if (in.PurchaseCost != nil && in.PurchaseCost.IsNegative()) || (in.PurchaseQuantity != nil && in.PurchaseQuantity.IsNegative()) {
		return nil, domain.InvalidRequest("costo y cantidad de compra no pueden ser negativos")
	}
	out := &dto.MaterialUpdateResponse{}
	err := uc.tx.RunCatalog(ctx, func(materials repository.MaterialRepository, products repository.ProductRepository, resellers repository.ResellerProductRepository) error {
		m, err := materials.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NotFound("insumo %s no encontrado", id)
		}
		if in.Name != nil {
			m.Name = strings.TrimSpace(*in.Name)
		}
		if in.Unit != nil {
			m.Unit = entity.Unit(*in.Unit)
		}
		if in.PurchaseCost != nil {
			m.PurchaseCost = *in.PurchaseCost
		}
		if in.PurchaseQuantity != nil {
			m.PurchaseQuantity = *in.PurchaseQuantity
		}
		if in.Supplier != nil {
			m.Supplier = strings.TrimSpace(*in.Supplier)
			if m.Supplier == "" {
				m.Supplier = entity.DefaultSupplier
			}
		}
		if in.Gender != nil {
			m.Gender = entity.Gender(*in.Gender)
		}
		if in.PriceStatus != nil {
			m.PriceStatus = entity.PriceStatus(*in.PriceStatus)
		}
		m.CostPerUnit, _ = costing.MaterialCost(m)
		m.LastUpdated = uc.now()
		if err := materials.Update(ctx, m); err != nil {
			return err
		}

		dependents, err := products.ListByMaterial(ctx, m.ID)
		if err != nil {
			return err
		}
		for _, p := range dependents {
			if _, err := reprice(ctx, products, resellers, p); err != nil {
				return err
			}
		}
		out.Material = toMaterialResponse(m)
		out.RepricedProducts = len(dependents)
		return nil
	})
	if err != nil {
		return nil, catalogError(err)
	}
	uc.log.Info().Str("material_id", id).Int("repriced_products", out.RepricedProducts).Msg("insumo actualizado")
	return out, nil
}

// Delete elimina un insumo. Si un producto o el inventario lo referencian devuelve ReferentialConflict.
func (uc *MaterialUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.materials.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("insumo %s no encontrado", id)
		}
		return err
	}
	return nil
}

// catalogError deja pasar errores de dominio y sentinels; el resto es un fallo de transacción.
func catalogError(err error) error {
	if domain.CodeOf(err) != "" || errors.Is(err, domain.ErrDuplicate) {
		return err
	}
	return domain.TransactionFailure(err)
}
