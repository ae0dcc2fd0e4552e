package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador de inventario. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `id, material_id, quantity, min_stock, unit, last_restocked, updated_at`

func scanInventory(row scanner) (*entity.InventoryItem, error) {
	var (
		i    entity.InventoryItem
		unit string
	)
	if err := row.Scan(&i.ID, &i.MaterialID, &i.Quantity, &i.MinStock, &unit, &i.LastRestocked, &i.UpdatedAt); err != nil {
		return nil, err
	}
	i.Unit = entity.Unit(unit)
	return &i, nil
}

// GetByID obtiene un registro de inventario. (nil, nil) si no existe.
func (r *InventoryRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	item, err := scanInventory(r.q.QueryRow(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

// GetByMaterial obtiene el inventario de un insumo; found=false si el insumo no se sigue.
func (r *InventoryRepo) GetByMaterial(ctx context.Context, materialID string) (*entity.InventoryItem, bool, error) {
	return r.byMaterial(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE material_id = $1`, materialID)
}

// GetByMaterialForUpdate igual que GetByMaterial pero bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryRepo) GetByMaterialForUpdate(ctx context.Context, materialID string) (*entity.InventoryItem, bool, error) {
	return r.byMaterial(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE material_id = $1 FOR UPDATE`, materialID)
}

func (r *InventoryRepo) byMaterial(ctx context.Context, query, materialID string) (*entity.InventoryItem, bool, error) {
	item, err := scanInventory(r.q.QueryRow(ctx, query, materialID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get inventory by material: %w", err)
	}
	return item, true, nil
}

// Create persiste un registro de inventario. Un insumo tiene a lo sumo un registro.
func (r *InventoryRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + inventoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.MaterialID, item.Quantity, item.MinStock, string(item.Unit), item.LastRestocked, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.NotFound("insumo %s no encontrado", item.MaterialID)
		}
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

// Update persiste cantidad, stock mínimo, unidad y última reposición.
func (r *InventoryRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items SET quantity = $2, min_stock = $3, unit = $4, last_restocked = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, item.ID, item.Quantity, item.MinStock, string(item.Unit), item.LastRestocked, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustQuantity suma delta a la cantidad en la misma sentencia (sin leer-modificar-escribir).
func (r *InventoryRepo) AdjustQuantity(ctx context.Context, id string, delta decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE inventory_items SET quantity = quantity + $2, updated_at = now() WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("adjust inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Restock repone stock y, si llega, reemplaza el stock mínimo.
func (r *InventoryRepo) Restock(ctx context.Context, id string, delta decimal.Decimal, minStock *decimal.Decimal, at time.Time) error {
	query := `
		UPDATE inventory_items
		SET quantity = quantity + $2, min_stock = COALESCE($3, min_stock), last_restocked = $4, updated_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, delta, minStock, at)
	if err != nil {
		return fmt.Errorf("restock inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListLowStock registros con quantity < min_stock.
func (r *InventoryRepo) ListLowStock(ctx context.Context) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+inventoryColumns+` FROM inventory_items
		WHERE quantity < min_stock
		ORDER BY material_id`)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.InventoryItem, 0)
	for rows.Next() {
		item, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}
