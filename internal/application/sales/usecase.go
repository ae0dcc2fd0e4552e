package sales

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/sanse-api/internal/application/dto"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// UseCase motor de transacciones de inventario: confirma y revierte ventas.
type UseCase struct {
	tx      TxRunner
	sales   repository.SaleRepository
	metrics Recorder
	log     zerolog.Logger
	now     func() time.Time
}

// NewUseCase construye el caso de uso. metrics puede ser nil.
func NewUseCase(tx TxRunner, sales repository.SaleRepository, metrics Recorder, log zerolog.Logger) *UseCase {
	return &UseCase{tx: tx, sales: sales, metrics: metrics, log: log, now: time.Now}
}

// line línea validada, previa a resolver su producto.
type line struct {
	target   entity.SaleTarget
	quantity decimal.Decimal
	price    decimal.Decimal
	name     string
}

func validate(in dto.CreateSaleRequest) ([]line, error) {
	if len(in.Items) == 0 {
		return nil, domain.InvalidRequest("la venta no tiene líneas")
	}
	lines := make([]line, 0, len(in.Items))
	for i, it := range in.Items {
		target := entity.SaleTarget{Kind: entity.SaleKind(it.Kind), ID: it.ID}
		if !target.Valid() {
			return nil, domain.InvalidRequest("línea %d: destino inválido (%q, %q)", i+1, it.Kind, it.ID)
		}
		if !it.Quantity.IsPositive() {
			return nil, domain.InvalidRequest("línea %d: la cantidad debe ser mayor a 0", i+1)
		}
		if it.Price.IsNegative() {
			return nil, domain.InvalidRequest("línea %d: el precio no puede ser negativo", i+1)
		}
		lines = append(lines, line{target: target, quantity: it.Quantity, price: it.Price, name: it.Name})
	}
	return lines, nil
}

// resolve lleva el destino de la línea a su producto. Un revendedor apunta a su producto base.
func resolve(ctx context.Context, products repository.ProductRepository, resellers repository.ResellerProductRepository, t entity.SaleTarget) (*entity.Product, error) {
	productID := t.ID
	if t.Kind == entity.SaleKindReseller {
		rp, err := resellers.GetByID(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		if rp == nil {
			return nil, domain.NotFound("producto de revendedor %s no encontrado", t.ID)
		}
		productID = rp.ProductID
	}
	p, err := products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto %s no encontrado", productID)
	}
	return p, nil
}

// consumption acumula por insumo la cantidad consumida por quantity unidades del producto.
func consumption(into map[string]decimal.Decimal, p *entity.Product, quantity decimal.Decimal) {
	for _, ing := range p.Ingredients {
		into[ing.MaterialID] = into[ing.MaterialID].Add(ing.QuantityUsed.Mul(quantity))
	}
}

// apply suma sign × cantidad al inventario de cada insumo, en orden de ID para que dos ventas
// concurrentes bloqueen las filas en el mismo orden. Un insumo sin inventario no se sigue y se omite.
func (uc *UseCase) apply(ctx context.Context, inventory repository.InventoryRepository, amounts map[string]decimal.Decimal, sign decimal.Decimal) error {
	ids := make([]string, 0, len(amounts))
	for id := range amounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, materialID := range ids {
		item, found, err := inventory.GetByMaterialForUpdate(ctx, materialID)
		if err != nil {
			return err
		}
		if !found {
			uc.log.Debug().Str("material_id", materialID).Msg("insumo sin inventario, no se descuenta")
			continue
		}
		if err := inventory.AdjustQuantity(ctx, item.ID, amounts[materialID].Mul(sign)); err != nil {
			return err
		}
	}
	return nil
}

var (
	deduct  = decimal.NewFromInt(-1)
	restore = decimal.NewFromInt(1)
)

// Commit registra la venta y descuenta del inventario lo consumido por cada línea, en una sola transacción.
// Si algún destino no existe no se aplica nada.
func (uc *UseCase) Commit(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	lines, err := validate(in)
	if err != nil {
		uc.record("commit", "invalid")
		return nil, err
	}

	now := uc.now()
	sale := &entity.Sale{ID: uuid.New().String(), Total: decimal.Zero, CreatedAt: now}
	err = uc.tx.RunSales(ctx, func(products repository.ProductRepository, resellers repository.ResellerProductRepository, inventory repository.InventoryRepository, sales repository.SaleRepository) error {
		amounts := make(map[string]decimal.Decimal)
		for _, l := range lines {
			p, err := resolve(ctx, products, resellers, l.target)
			if err != nil {
				return err
			}
			consumption(amounts, p, l.quantity)
			name := l.name
			if name == "" {
				name = p.Name
			}
			item := entity.SaleItem{
				ID:          uuid.New().String(),
				SaleID:      sale.ID,
				Target:      l.target,
				Quantity:    l.quantity,
				PriceAtSale: l.price,
				ProductName: name,
			}
			sale.Items = append(sale.Items, item)
			sale.Total = sale.Total.Add(item.Subtotal())
		}
		if err := uc.apply(ctx, inventory, amounts, deduct); err != nil {
			return err
		}
		return sales.Create(ctx, sale)
	})
	if err != nil {
		return nil, uc.fail("commit", err)
	}
	uc.record("commit", "ok")
	uc.log.Info().Str("sale_id", sale.ID).Str("total", sale.Total.String()).Int("items", len(sale.Items)).Msg("venta registrada")
	return toSaleResponse(sale), nil
}

// Reverse elimina la venta y devuelve al inventario exactamente lo consumido por sus líneas,
// según la receta actual de cada producto.
func (uc *UseCase) Reverse(ctx context.Context, saleID string) error {
	err := uc.tx.RunSales(ctx, func(products repository.ProductRepository, resellers repository.ResellerProductRepository, inventory repository.InventoryRepository, sales repository.SaleRepository) error {
		sale, err := sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.NotFound("venta %s no encontrada", saleID)
		}
		amounts := make(map[string]decimal.Decimal)
		for _, it := range sale.Items {
			p, err := resolve(ctx, products, resellers, it.Target)
			if err != nil {
				return err
			}
			consumption(amounts, p, it.Quantity)
		}
		if err := uc.apply(ctx, inventory, amounts, restore); err != nil {
			return err
		}
		return sales.Delete(ctx, saleID)
	})
	if err != nil {
		return uc.fail("reverse", err)
	}
	uc.record("reverse", "ok")
	uc.log.Info().Str("sale_id", saleID).Msg("venta revertida")
	return nil
}

// Get obtiene una venta por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.NotFound("venta %s no encontrada", id)
	}
	return toSaleResponse(sale), nil
}

// List lista ventas de la más reciente a la más antigua.
func (uc *UseCase) List(ctx context.Context, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	list, err := uc.sales.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSaleResponse(s))
	}
	return &dto.SaleListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// fail clasifica el error: los errores de dominio pasan tal cual, el resto es un fallo de transacción.
func (uc *UseCase) fail(op string, err error) error {
	code := domain.CodeOf(err)
	if code == "" {
		uc.record(op, "tx_failure")
		uc.log.Error().Err(err).Str("operation", op).Msg("transacción de venta revertida")
		return domain.TransactionFailure(err)
	}
	uc.record(op, string(code))
	return err
}

func (uc *UseCase) record(op, outcome string) {
	if uc.metrics != nil {
		uc.metrics.IncSale(op, outcome)
	}
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ID:          it.ID,
			Kind:        string(it.Target.Kind),
			TargetID:    it.Target.ID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			PriceAtSale: it.PriceAtSale,
			Subtotal:    it.Subtotal(),
		})
	}
	return &dto.SaleResponse{ID: s.ID, Total: s.Total, CreatedAt: s.CreatedAt, Items: items}
}
