package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type materialTypeRepo struct{ s *Store }

func (r *materialTypeRepo) GetByName(ctx context.Context, name string) (*entity.MaterialType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("types.get"); err != nil {
		return nil, err
	}
	for _, t := range r.s.d.types {
		if t.Name == name {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (r *materialTypeRepo) Create(ctx context.Context, t *entity.MaterialType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("types.create"); err != nil {
		return err
	}
	for _, existing := range r.s.d.types {
		if existing.Name == t.Name {
			return domain.ErrDuplicate
		}
	}
	r.s.d.types[t.ID] = *t
	return nil
}

type materialRepo struct{ s *Store }

func (r *materialRepo) Create(ctx context.Context, m *entity.Material) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("materials.create"); err != nil {
		return err
	}
	for _, existing := range r.s.d.materials {
		if existing.Supplier == m.Supplier && existing.Name == m.Name {
			return domain.ErrDuplicate
		}
	}
	r.s.d.materials[m.ID] = *m
	return nil
}

func (r *materialRepo) Update(ctx context.Context, m *entity.Material) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("materials.update"); err != nil {
		return err
	}
	if _, ok := r.s.d.materials[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.d.materials[m.ID] = *m
	return nil
}

func (r *materialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.d.materials[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *materialRepo) GetBySupplierAndName(ctx context.Context, supplier, name string) (*entity.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("materials.get"); err != nil {
		return nil, err
	}
	for _, m := range r.s.d.materials {
		if m.Supplier == supplier && m.Name == name {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (r *materialRepo) ListSupplierSourced(ctx context.Context, supplier string) ([]*entity.Material, error) {
	return r.filter(func(m *entity.Material) bool {
		return m.Supplier == supplier && m.SupplierURL != nil
	}), nil
}

func (r *materialRepo) ListByType(ctx context.Context, typeName string) ([]*entity.Material, error) {
	r.s.mu.Lock()
	typeID := ""
	for _, t := range r.s.d.types {
		if t.Name == typeName {
			typeID = t.ID
		}
	}
	r.s.mu.Unlock()
	if typeID == "" {
		return []*entity.Material{}, nil
	}
	return r.filter(func(m *entity.Material) bool {
		return m.TypeID != nil && *m.TypeID == typeID
	}), nil
}

func (r *materialRepo) List(ctx context.Context) ([]*entity.Material, error) {
	return r.filter(func(*entity.Material) bool { return true }), nil
}

func (r *materialRepo) filter(keep func(*entity.Material) bool) []*entity.Material {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Material, 0)
	for _, m := range r.s.d.materials {
		m := m
		if keep(&m) {
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *materialRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("materials.delete"); err != nil {
		return err
	}
	if _, ok := r.s.d.materials[id]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range r.s.d.products {
		for _, ing := range p.Ingredients {
			if ing.MaterialID == id {
				return conflict("el insumo es ingrediente de " + p.Name)
			}
		}
	}
	for _, item := range r.s.d.inventory {
		if item.MaterialID == id {
			return conflict("el insumo tiene inventario")
		}
	}
	delete(r.s.d.materials, id)
	return nil
}

type productRepo struct{ s *Store }

// load copia el producto y enlaza cada ingrediente con su insumo vigente. Requiere mu.
func (r *productRepo) load(p entity.Product) *entity.Product {
	ings := make([]entity.ProductIngredient, len(p.Ingredients))
	for i, ing := range p.Ingredients {
		ing.Material = nil
		if m, ok := r.s.d.materials[ing.MaterialID]; ok {
			m := m
			ing.Material = &m
		}
		ings[i] = ing
	}
	p.Ingredients = ings
	return &p
}

func (r *productRepo) checkIngredients(ings []entity.ProductIngredient) error {
	for _, ing := range ings {
		if _, ok := r.s.d.materials[ing.MaterialID]; !ok {
			return domain.NotFound("insumo %s no encontrado", ing.MaterialID)
		}
	}
	return nil
}

func stripMaterials(ings []entity.ProductIngredient, productID string) []entity.ProductIngredient {
	out := make([]entity.ProductIngredient, len(ings))
	for i, ing := range ings {
		ing.Material = nil
		ing.ProductID = productID
		out[i] = ing
	}
	return out
}

func (r *productRepo) Create(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("products.create"); err != nil {
		return err
	}
	for _, existing := range r.s.d.products {
		if existing.Name == p.Name {
			return domain.ErrDuplicate
		}
	}
	if err := r.checkIngredients(p.Ingredients); err != nil {
		return err
	}
	stored := *p
	stored.Flags = nil
	stored.Ingredients = stripMaterials(p.Ingredients, p.ID)
	r.s.d.products[p.ID] = stored
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("products.get"); err != nil {
		return nil, err
	}
	p, ok := r.s.d.products[id]
	if !ok {
		return nil, nil
	}
	return r.load(p), nil
}

func (r *productRepo) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("products.get"); err != nil {
		return nil, err
	}
	for _, p := range r.s.d.products {
		if p.Name == name {
			return r.load(p), nil
		}
	}
	return nil, nil
}

func (r *productRepo) Update(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("products.update"); err != nil {
		return err
	}
	stored, ok := r.s.d.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, other := range r.s.d.products {
		if other.ID != p.ID && other.Name == p.Name {
			return domain.ErrDuplicate
		}
	}
	stored.Name = p.Name
	stored.ProfitMargin = p.ProfitMargin
	stored.Gender = p.Gender
	stored.TypeID = p.TypeID
	stored.Cost = p.Cost
	stored.FinalPrice = p.FinalPrice
	stored.UpdatedAt = p.UpdatedAt
	r.s.d.products[p.ID] = stored
	return nil
}

func (r *productRepo) UpdatePricing(ctx context.Context, id string, cost, finalPrice decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("products.pricing"); err != nil {
		return err
	}
	stored, ok := r.s.d.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Cost = cost
	stored.FinalPrice = finalPrice
	r.s.d.products[id] = stored
	return nil
}

func (r *productRepo) ReplaceIngredients(ctx context.Context, productID string, ingredients []entity.ProductIngredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("products.ingredients"); err != nil {
		return err
	}
	stored, ok := r.s.d.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := r.checkIngredients(ingredients); err != nil {
		return err
	}
	stored.Ingredients = stripMaterials(ingredients, productID)
	r.s.d.products[productID] = stored
	return nil
}

func (r *productRepo) List(ctx context.Context) ([]*entity.Product, error) {
	return r.list(func(entity.Product) bool { return true })
}

func (r *productRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.Product, error) {
	return r.list(func(p entity.Product) bool {
		for _, ing := range p.Ingredients {
			if ing.MaterialID == materialID {
				return true
			}
		}
		return false
	})
}

func (r *productRepo) list(keep func(entity.Product) bool) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("products.list"); err != nil {
		return nil, err
	}
	out := make([]*entity.Product, 0)
	for _, p := range r.s.d.products {
		if keep(p) {
			out = append(out, r.load(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type resellerRepo struct{ s *Store }

func (r *resellerRepo) Create(ctx context.Context, rp *entity.ResellerProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("resellers.create"); err != nil {
		return err
	}
	if _, ok := r.s.d.products[rp.ProductID]; !ok {
		return domain.NotFound("producto %s no encontrado", rp.ProductID)
	}
	r.s.d.resellers[rp.ID] = *rp
	return nil
}

func (r *resellerRepo) GetByID(ctx context.Context, id string) (*entity.ResellerProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rp, ok := r.s.d.resellers[id]
	if !ok {
		return nil, nil
	}
	return &rp, nil
}

func (r *resellerRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.ResellerProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.ResellerProduct, 0)
	for _, rp := range r.s.d.resellers {
		if rp.ProductID == productID {
			rp := rp
			out = append(out, &rp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *resellerRepo) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("resellers.price"); err != nil {
		return err
	}
	rp, ok := r.s.d.resellers[id]
	if !ok {
		return domain.ErrNotFound
	}
	rp.Price = price
	r.s.d.resellers[id] = rp
	return nil
}
