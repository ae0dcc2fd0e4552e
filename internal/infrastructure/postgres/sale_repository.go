package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la venta y sus líneas. Cada línea apunta a un producto o a una cotización, nunca a ambos.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	_, err := r.q.Exec(ctx, `INSERT INTO sales (id, total, created_at) VALUES ($1, $2, $3)`, sale.ID, sale.Total, sale.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, reseller_product_id, quantity, price_at_sale, product_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, it := range sale.Items {
		var productID, resellerID *string
		id := it.Target.ID
		if it.Target.Kind == entity.SaleKindReseller {
			resellerID = &id
		} else {
			productID = &id
		}
		if _, err := r.q.Exec(ctx, query, it.ID, sale.ID, productID, resellerID, it.Quantity, it.PriceAtSale, it.ProductName); err != nil {
			if isForeignKeyViolation(err) {
				return domain.NotFound("destino de venta %s no encontrado", id)
			}
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas. (nil, nil) si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT id, total, created_at FROM sales WHERE id = $1`, id)
}

// GetForUpdate carga la venta y bloquea su fila hasta el fin de la transacción.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT id, total, created_at FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) get(ctx context.Context, query, id string) (*entity.Sale, error) {
	var s entity.Sale
	if err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.Total, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.attachItems(ctx, []*entity.Sale{&s}); err != nil {
		return nil, err
	}
	return &s, nil
}

// List ventas de la más reciente a la más antigua.
func (r *SaleRepo) List(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, total, created_at FROM sales
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	list := make([]*entity.Sale, 0)
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.Total, &s.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *SaleRepo) attachItems(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Sale, len(sales))
	ids := make([]string, 0, len(sales))
	for _, s := range sales {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, reseller_product_id, quantity, price_at_sale, product_name
		FROM sale_items WHERE sale_id = ANY($1::uuid[])
		ORDER BY sale_id, id`, ids)
	if err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it                    entity.SaleItem
			productID, resellerID *string
		)
		if err := rows.Scan(&it.ID, &it.SaleID, &productID, &resellerID, &it.Quantity, &it.PriceAtSale, &it.ProductName); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		if resellerID != nil {
			it.Target = entity.ResellerTarget(*resellerID)
		} else if productID != nil {
			it.Target = entity.RetailTarget(*productID)
		}
		if s, ok := byID[it.SaleID]; ok {
			s.Items = append(s.Items, it)
		}
	}
	return rows.Err()
}

// Delete borra la venta; sale_items cae en cascada.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
