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

var (
	_ repository.MaterialRepository     = (*MaterialRepo)(nil)
	_ repository.MaterialTypeRepository = (*MaterialTypeRepo)(nil)
)

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

const materialColumns = `m.id, m.name, m.unit, m.purchase_cost, m.purchase_quantity, m.cost_per_unit,
	m.supplier, m.supplier_url, m.group_name, m.gender, m.price_status, m.type_id, m.last_updated, m.created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMaterial(row scanner) (*entity.Material, error) {
	var (
		m                    entity.Material
		unit, gender, status string
	)
	err := row.Scan(
		&m.ID, &m.Name, &unit, &m.PurchaseCost, &m.PurchaseQuantity, &m.CostPerUnit,
		&m.Supplier, &m.SupplierURL, &m.GroupName, &gender, &status, &m.TypeID, &m.LastUpdated, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Unit = entity.Unit(unit)
	m.Gender = entity.Gender(gender)
	m.PriceStatus = entity.PriceStatus(status)
	return &m, nil
}

func (r *MaterialRepo) one(ctx context.Context, op, query string, args ...any) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

func (r *MaterialRepo) many(ctx context.Context, op, query string, args ...any) ([]*entity.Material, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Create persiste un nuevo insumo. (supplier, name) es único.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materials (id, name, unit, purchase_cost, purchase_quantity, cost_per_unit,
			supplier, supplier_url, group_name, gender, price_status, type_id, last_updated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Name, string(m.Unit), m.PurchaseCost, m.PurchaseQuantity, m.CostPerUnit,
		m.Supplier, m.SupplierURL, m.GroupName, string(m.Gender), string(m.PriceStatus), m.TypeID,
		m.LastUpdated, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// Update persiste todos los campos editables del insumo.
func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	query := `
		UPDATE materials SET name = $2, unit = $3, purchase_cost = $4, purchase_quantity = $5,
			cost_per_unit = $6, supplier = $7, supplier_url = $8, group_name = $9, gender = $10,
			price_status = $11, type_id = $12, last_updated = $13
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.Name, string(m.Unit), m.PurchaseCost, m.PurchaseQuantity, m.CostPerUnit,
		m.Supplier, m.SupplierURL, m.GroupName, string(m.Gender), string(m.PriceStatus), m.TypeID,
		m.LastUpdated,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un insumo por ID.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	return r.one(ctx, "get material", `SELECT `+materialColumns+` FROM materials m WHERE m.id = $1`, id)
}

// GetBySupplierAndName búsqueda exacta usada por la reconciliación.
func (r *MaterialRepo) GetBySupplierAndName(ctx context.Context, supplier, name string) (*entity.Material, error) {
	return r.one(ctx, "get material by name",
		`SELECT `+materialColumns+` FROM materials m WHERE m.supplier = $1 AND m.name = $2`, supplier, name)
}

// ListSupplierSourced insumos sincronizados del proveedor (supplier_url no nulo).
func (r *MaterialRepo) ListSupplierSourced(ctx context.Context, supplier string) ([]*entity.Material, error) {
	return r.many(ctx, "list supplier materials", `
		SELECT `+materialColumns+` FROM materials m
		WHERE m.supplier = $1 AND m.supplier_url IS NOT NULL AND m.supplier_url <> ''
		ORDER BY m.name`, supplier)
}

// ListByType insumos cuya categoría tiene el nombre dado.
func (r *MaterialRepo) ListByType(ctx context.Context, typeName string) ([]*entity.Material, error) {
	return r.many(ctx, "list materials by type", `
		SELECT `+materialColumns+` FROM materials m
		JOIN material_types t ON t.id = m.type_id
		WHERE t.name = $1
		ORDER BY m.name`, typeName)
}

// List todos los insumos por nombre.
func (r *MaterialRepo) List(ctx context.Context) ([]*entity.Material, error) {
	return r.many(ctx, "list materials", `SELECT `+materialColumns+` FROM materials m ORDER BY m.name`)
}

// Delete borra el insumo. Una receta o un registro de inventario que lo referencie bloquea el borrado.
func (r *MaterialRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ReferentialConflict("el insumo está en uso por productos o inventario", err)
		}
		return fmt.Errorf("delete material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MaterialTypeRepo categorías de insumo.
type MaterialTypeRepo struct {
	q Querier
}

// NewMaterialTypeRepository construye el adaptador.
func NewMaterialTypeRepository(q Querier) *MaterialTypeRepo {
	return &MaterialTypeRepo{q: q}
}

// GetByName obtiene una categoría por nombre. (nil, nil) si no existe.
func (r *MaterialTypeRepo) GetByName(ctx context.Context, name string) (*entity.MaterialType, error) {
	var t entity.MaterialType
	err := r.q.QueryRow(ctx, `SELECT id, name, created_at FROM material_types WHERE name = $1`, name).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material type: %w", err)
	}
	return &t, nil
}

// Create persiste una categoría.
func (r *MaterialTypeRepo) Create(ctx context.Context, t *entity.MaterialType) error {
	_, err := r.q.Exec(ctx, `INSERT INTO material_types (id, name, created_at) VALUES ($1, $2, $3)`, t.ID, t.Name, t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material type: %w", err)
	}
	return nil
}
