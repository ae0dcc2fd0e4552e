package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ProductRepository         = (*ProductRepo)(nil)
	_ repository.ResellerProductRepository = (*ResellerProductRepo)(nil)
)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
// Las lecturas cargan la receta con el insumo vigente de cada línea.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, cost, profit_margin, final_price, gender, type_id, created_at, updated_at`

func scanProduct(row scanner) (*entity.Product, error) {
	var (
		p      entity.Product
		gender string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Cost, &p.ProfitMargin, &p.FinalPrice, &gender, &p.TypeID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Gender = entity.Gender(gender)
	return &p, nil
}

// prefixed antepone destinos propios a un scanner ajeno (ingrediente + columnas del insumo).
type prefixed struct {
	row  scanner
	head []any
}

func (p prefixed) Scan(dest ...any) error {
	return p.row.Scan(append(p.head, dest...)...)
}

// Create persiste el producto y su receta.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Cost, p.ProfitMargin, p.FinalPrice, string(p.Gender), p.TypeID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return r.insertIngredients(ctx, p.ID, p.Ingredients)
}

func (r *ProductRepo) insertIngredients(ctx context.Context, productID string, ings []entity.ProductIngredient) error {
	query := `
		INSERT INTO product_ingredients (id, product_id, material_id, quantity_used)
		VALUES ($1, $2, $3, $4)`
	for _, ing := range ings {
		if _, err := r.q.Exec(ctx, query, ing.ID, productID, ing.MaterialID, ing.QuantityUsed); err != nil {
			if isForeignKeyViolation(err) {
				return domain.NotFound("insumo %s no encontrado", ing.MaterialID)
			}
			if isUniqueViolation(err) {
				return domain.InvalidRequest("insumo %s repetido en la receta", ing.MaterialID)
			}
			return fmt.Errorf("insert product ingredient: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un producto por ID con su receta.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.one(ctx, "get product", `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByName obtiene un producto por nombre exacto con su receta.
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	return r.one(ctx, "get product by name", `SELECT `+productColumns+` FROM products WHERE name = $1`, name)
}

func (r *ProductRepo) one(ctx context.Context, op, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.attachIngredients(ctx, []*entity.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepo) many(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		list = append(list, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.attachIngredients(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachIngredients carga en una sola consulta las recetas de todos los productos.
func (r *ProductRepo) attachIngredients(ctx context.Context, products []*entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Product, len(products))
	ids := make([]string, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	query := `
		SELECT pi.id, pi.product_id, pi.material_id, pi.quantity_used, ` + materialColumns + `
		FROM product_ingredients pi
		JOIN materials m ON m.id = pi.material_id
		WHERE pi.product_id = ANY($1::uuid[])
		ORDER BY pi.product_id, m.name`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list product ingredients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ing entity.ProductIngredient
		m, err := scanMaterial(prefixed{row: rows, head: []any{&ing.ID, &ing.ProductID, &ing.MaterialID, &ing.QuantityUsed}})
		if err != nil {
			return fmt.Errorf("scan product ingredient: %w", err)
		}
		ing.Material = m
		if p, ok := byID[ing.ProductID]; ok {
			p.Ingredients = append(p.Ingredients, ing)
		}
	}
	return rows.Err()
}

// Update persiste nombre, margen, género, tipo, costo y precio final. La receta no se toca.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET name = $2, profit_margin = $3, gender = $4, type_id = $5,
			cost = $6, final_price = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Name, p.ProfitMargin, string(p.Gender), p.TypeID, p.Cost, p.FinalPrice, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdatePricing persiste costo y precio final derivados.
func (r *ProductRepo) UpdatePricing(ctx context.Context, id string, cost, finalPrice decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET cost = $2, final_price = $3, updated_at = now() WHERE id = $1`, id, cost, finalPrice)
	if err != nil {
		return fmt.Errorf("update product pricing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceIngredients borra la receta actual e inserta la nueva.
func (r *ProductRepo) ReplaceIngredients(ctx context.Context, productID string, ings []entity.ProductIngredient) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM product_ingredients WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete product ingredients: %w", err)
	}
	return r.insertIngredients(ctx, productID, ings)
}

// List todos los productos por nombre.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	return r.many(ctx, "list products", `SELECT `+productColumns+` FROM products ORDER BY name`)
}

// ListByMaterial productos cuya receta usa el insumo.
func (r *ProductRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.Product, error) {
	return r.many(ctx, "list products by material", `
		SELECT `+productColumns+` FROM products
		WHERE id IN (SELECT product_id FROM product_ingredients WHERE material_id = $1)
		ORDER BY name`, materialID)
}

// ResellerProductRepo cotizaciones a revendedor.
type ResellerProductRepo struct {
	q Querier
}

// NewResellerProductRepository construye el adaptador.
func NewResellerProductRepository(q Querier) *ResellerProductRepo {
	return &ResellerProductRepo{q: q}
}

// Create persiste una cotización.
func (r *ResellerProductRepo) Create(ctx context.Context, rp *entity.ResellerProduct) error {
	query := `
		INSERT INTO reseller_products (id, product_id, profit_margin, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, rp.ID, rp.ProductID, rp.ProfitMargin, rp.Price, rp.CreatedAt, rp.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NotFound("producto %s no encontrado", rp.ProductID)
		}
		return fmt.Errorf("insert reseller product: %w", err)
	}
	return nil
}

// GetByID obtiene una cotización por ID.
func (r *ResellerProductRepo) GetByID(ctx context.Context, id string) (*entity.ResellerProduct, error) {
	var rp entity.ResellerProduct
	err := r.q.QueryRow(ctx, `
		SELECT id, product_id, profit_margin, price, created_at, updated_at
		FROM reseller_products WHERE id = $1`, id).
		Scan(&rp.ID, &rp.ProductID, &rp.ProfitMargin, &rp.Price, &rp.CreatedAt, &rp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reseller product: %w", err)
	}
	return &rp, nil
}

// ListByProduct cotizaciones de un producto.
func (r *ResellerProductRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.ResellerProduct, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, profit_margin, price, created_at, updated_at
		FROM reseller_products WHERE product_id = $1 ORDER BY created_at`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reseller products: %w", err)
	}
	defer rows.Close()
	var list []*entity.ResellerProduct
	for rows.Next() {
		var rp entity.ResellerProduct
		if err := rows.Scan(&rp.ID, &rp.ProductID, &rp.ProfitMargin, &rp.Price, &rp.CreatedAt, &rp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reseller product: %w", err)
		}
		list = append(list, &rp)
	}
	return list, rows.Err()
}

// UpdatePrice persiste el precio recalculado.
func (r *ResellerProductRepo) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE reseller_products SET price = $2, updated_at = now() WHERE id = $1`, id, price)
	if err != nil {
		return fmt.Errorf("update reseller price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
