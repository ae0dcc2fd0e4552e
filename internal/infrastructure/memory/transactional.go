package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type inventoryRepo struct{ s *Store }

func (r *inventoryRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.d.inventory[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r *inventoryRepo) GetByMaterial(ctx context.Context, materialID string) (*entity.InventoryItem, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("inventory.get"); err != nil {
		return nil, false, err
	}
	for _, item := range r.s.d.inventory {
		if item.MaterialID == materialID {
			item := item
			return &item, true, nil
		}
	}
	return nil, false, nil
}

// GetByMaterialForUpdate las transacciones en memoria ya son exclusivas.
func (r *inventoryRepo) GetByMaterialForUpdate(ctx context.Context, materialID string) (*entity.InventoryItem, bool, error) {
	return r.GetByMaterial(ctx, materialID)
}

func (r *inventoryRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("inventory.create"); err != nil {
		return err
	}
	if _, ok := r.s.d.materials[item.MaterialID]; !ok {
		return domain.NotFound("insumo %s no encontrado", item.MaterialID)
	}
	for _, existing := range r.s.d.inventory {
		if existing.MaterialID == item.MaterialID {
			return domain.ErrDuplicate
		}
	}
	r.s.d.inventory[item.ID] = *item
	return nil
}

func (r *inventoryRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("inventory.update"); err != nil {
		return err
	}
	if _, ok := r.s.d.inventory[item.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.d.inventory[item.ID] = *item
	return nil
}

func (r *inventoryRepo) AdjustQuantity(ctx context.Context, id string, delta decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("inventory.adjust"); err != nil {
		return err
	}
	item, ok := r.s.d.inventory[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.Quantity = item.Quantity.Add(delta)
	r.s.d.inventory[id] = item
	return nil
}

func (r *inventoryRepo) Restock(ctx context.Context, id string, delta decimal.Decimal, minStock *decimal.Decimal, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("inventory.restock"); err != nil {
		return err
	}
	item, ok := r.s.d.inventory[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.Quantity = item.Quantity.Add(delta)
	if minStock != nil {
		item.MinStock = *minStock
	}
	item.LastRestocked = &at
	item.UpdatedAt = at
	r.s.d.inventory[id] = item
	return nil
}

func (r *inventoryRepo) ListLowStock(ctx context.Context) ([]*entity.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.InventoryItem, 0)
	for _, item := range r.s.d.inventory {
		item := item
		if item.BelowMinStock() {
			out = append(out, &item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaterialID < out[j].MaterialID })
	return out, nil
}

type saleRepo struct{ s *Store }

func (r *saleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("sales.create"); err != nil {
		return err
	}
	stored := *sale
	stored.Items = make([]entity.SaleItem, len(sale.Items))
	for i, it := range sale.Items {
		it.SaleID = sale.ID
		stored.Items[i] = it
	}
	r.s.d.sales[sale.ID] = stored
	return nil
}

func (r *saleRepo) get(id string) *entity.Sale {
	s, ok := r.s.d.sales[id]
	if !ok {
		return nil
	}
	s.Items = append([]entity.SaleItem(nil), s.Items...)
	return &s
}

func (r *saleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.get(id), nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("sales.get"); err != nil {
		return nil, err
	}
	return r.get(id), nil
}

func (r *saleRepo) List(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Sale, 0, len(r.s.d.sales))
	for id := range r.s.d.sales {
		out = append(out, r.get(id))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if offset >= len(out) {
		return []*entity.Sale{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *saleRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("sales.delete"); err != nil {
		return err
	}
	if _, ok := r.s.d.sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.d.sales, id)
	return nil
}

type expenseRepo struct{ s *Store }

func (r *expenseRepo) Create(ctx context.Context, e *entity.Expense) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("expenses.create"); err != nil {
		return err
	}
	if e.RelatedExpenseID != nil {
		if _, ok := r.s.d.expenses[*e.RelatedExpenseID]; !ok {
			return domain.NotFound("gasto %s no encontrado", *e.RelatedExpenseID)
		}
	}
	r.s.d.expenses[e.ID] = *e
	return nil
}

func (r *expenseRepo) GetByID(ctx context.Context, id string) (*entity.Expense, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("expenses.get"); err != nil {
		return nil, err
	}
	e, ok := r.s.d.expenses[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *expenseRepo) ListByPayer(ctx context.Context, userID string) ([]*entity.Expense, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("expenses.list"); err != nil {
		return nil, err
	}
	out := make([]*entity.Expense, 0)
	for _, e := range r.s.d.expenses {
		e := e
		if id, ok := e.Payer.UserID(); ok && id == userID {
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *expenseRepo) RefundedAmounts(ctx context.Context, expenseIDs []string) (map[string]decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[string]struct{}, len(expenseIDs))
	for _, id := range expenseIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[string]decimal.Decimal)
	for _, e := range r.s.d.expenses {
		if e.RelatedExpenseID == nil {
			continue
		}
		if _, ok := wanted[*e.RelatedExpenseID]; !ok {
			continue
		}
		out[*e.RelatedExpenseID] = out[*e.RelatedExpenseID].Add(e.Amount)
	}
	return out, nil
}

// LockPayer las transacciones en memoria ya son exclusivas.
func (r *expenseRepo) LockPayer(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.injected("expenses.lock")
}

func (r *expenseRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.expenses[id]; !ok {
		return domain.ErrNotFound
	}
	for _, e := range r.s.d.expenses {
		if e.RelatedExpenseID != nil && *e.RelatedExpenseID == id {
			return conflict("el gasto tiene reintegros vinculados")
		}
	}
	delete(r.s.d.expenses, id)
	return nil
}
