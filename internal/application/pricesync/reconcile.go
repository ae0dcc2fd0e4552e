package pricesync

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/costing"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// sizePattern cantidad y unidad al inicio del tamaño: "30g", "100 ml", "1,5kg".
var sizePattern = regexp.MustCompile(`(?i)^\s*(\d+(?:[.,]\d+)?)\s*(kg|g|ml|l)?`)

var thousand = decimal.NewFromInt(1000)

// ParseSize interpreta el prefijo numérico del tamaño. kg y l se normalizan a g y ml.
func ParseSize(size string) (decimal.Decimal, entity.Unit, error) {
	m := sizePattern.FindStringSubmatch(size)
	if m == nil {
		return decimal.Zero, "", domain.ParseError("tamaño ilegible %q", size)
	}
	qty, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
	if err != nil {
		return decimal.Zero, "", domain.ParseError("tamaño ilegible %q", size)
	}
	switch strings.ToLower(m[2]) {
	case "ml":
		return qty, entity.UnitMilliliter, nil
	case "l":
		return qty.Mul(thousand), entity.UnitMilliliter, nil
	case "kg":
		return qty.Mul(thousand), entity.UnitGram, nil
	default:
		return qty, entity.UnitGram, nil
	}
}

// MaterialName nombre del insumo de una variante: "Alien (30g)".
func MaterialName(groupName, size string) string {
	return strings.TrimSpace(groupName) + " (" + strings.TrimSpace(size) + ")"
}

// tuple una variante aplanada de un producto del proveedor.
type tuple struct {
	name    string
	group   string
	url     string
	gender  entity.Gender
	variant entity.ScrapedVariant
}

// flatten aplana productos en variantes. Si un nombre se repite gana la última aparición.
func flatten(scraped []entity.ScrapedProduct) []tuple {
	index := make(map[string]int)
	out := make([]tuple, 0, len(scraped))
	for _, p := range scraped {
		for _, v := range p.Variants {
			t := tuple{
				name:    MaterialName(p.GroupName, v.Size),
				group:   strings.TrimSpace(p.GroupName),
				url:     p.URL,
				gender:  p.Gender,
				variant: v,
			}
			if i, ok := index[t.name]; ok {
				out[i] = t
				continue
			}
			index[t.name] = len(out)
			out = append(out, t)
		}
	}
	return out
}

// ReconcileResult conteos de una pasada de conciliación.
type ReconcileResult struct {
	Created    int
	Updated    int
	Deleted    int
	NotDeleted int
	Skipped    int
	Warnings   []string
}

func (r *ReconcileResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Reconciler concilia las variantes del proveedor con los insumos locales.
type Reconciler struct {
	materials repository.MaterialRepository
	types     repository.MaterialTypeRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewReconciler construye el conciliador.
func NewReconciler(materials repository.MaterialRepository, types repository.MaterialTypeRepository, log zerolog.Logger) *Reconciler {
	return &Reconciler{materials: materials, types: types, log: log, now: time.Now}
}

// Reconcile crea o actualiza un insumo por variante y luego elimina los insumos del proveedor
// que no aparecieron en la corrida. Los errores son por variante o por insumo y nunca abortan la pasada;
// solo se devuelve error si el contexto se cancela.
func (r *Reconciler) Reconcile(ctx context.Context, supplier string, scraped []entity.ScrapedProduct) (*ReconcileResult, error) {
	res := &ReconcileResult{}
	tuples := flatten(scraped)
	if len(tuples) == 0 {
		r.log.Warn().Str("supplier", supplier).Msg("lista de precios vacía, no se concilia ni se eliminan insumos")
		res.warn("lista de precios vacía para %s", supplier)
		return res, nil
	}

	// Un nombre presente en la lista cuenta como tocado aunque su variante falle:
	// un dato mal leído nunca debe borrar el insumo.
	touched := make(map[string]struct{}, len(tuples))
	var essenceTypeID *string
	for _, t := range tuples {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		touched[t.name] = struct{}{}
		created, err := r.upsert(ctx, supplier, t, &essenceTypeID)
		if err != nil {
			res.Skipped++
			res.warn("%s: %v", t.name, err)
			r.log.Warn().Err(err).Str("supplier", supplier).Str("material", t.name).Msg("variante omitida")
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	r.sweep(ctx, supplier, touched, res)
	return res, ctx.Err()
}

func (r *Reconciler) upsert(ctx context.Context, supplier string, t tuple, essenceTypeID **string) (bool, error) {
	if t.group == "" {
		return false, domain.ParseError("producto sin nombre de grupo")
	}
	qty, unit, err := ParseSize(t.variant.Size)
	if err != nil {
		return false, err
	}
	price := t.variant.Price
	if price.IsNegative() {
		return false, domain.ParseError("precio negativo %s", price)
	}
	status := t.variant.PriceStatus
	if status == "" {
		status = entity.PriceStatusAvailable
		if price.IsZero() {
			status = entity.PriceStatusConsultar
		}
	}
	if !status.Valid() {
		return false, domain.ParseError("estado de precio desconocido %q", status)
	}
	if t.gender != "" && !t.gender.Synthesizable() {
		return false, domain.ParseError("género desconocido %q", t.gender)
	}
	cpu, _ := costing.CostPerUnit(status, price, qty)
	now := r.now()
	url := t.url

	existing, err := r.materials.GetBySupplierAndName(ctx, supplier, t.name)
	if err != nil {
		return false, err
	}
	if existing != nil {
		existing.PurchaseCost = price
		existing.PurchaseQuantity = qty
		existing.CostPerUnit = cpu
		existing.PriceStatus = status
		existing.GroupName = t.group
		existing.SupplierURL = &url
		existing.LastUpdated = now
		if t.gender != "" {
			existing.Gender = t.gender
		}
		return false, r.materials.Update(ctx, existing)
	}

	if *essenceTypeID == nil {
		id, err := r.essenceType(ctx)
		if err != nil {
			return false, err
		}
		*essenceTypeID = &id
	}
	typeID := **essenceTypeID
	m := &entity.Material{
		ID:               uuid.New().String(),
		Name:             t.name,
		Unit:             unit,
		PurchaseCost:     price,
		PurchaseQuantity: qty,
		CostPerUnit:      cpu,
		Supplier:         supplier,
		SupplierURL:      &url,
		GroupName:        t.group,
		Gender:           t.gender,
		PriceStatus:      status,
		TypeID:           &typeID,
		LastUpdated:      now,
		CreatedAt:        now,
	}
	return true, r.materials.Create(ctx, m)
}

// essenceType obtiene o crea la categoría "Esencia".
func (r *Reconciler) essenceType(ctx context.Context) (string, error) {
	t, err := r.types.GetByName(ctx, entity.MaterialTypeEssence)
	if err != nil {
		return "", err
	}
	if t != nil {
		return t.ID, nil
	}
	t = &entity.MaterialType{ID: uuid.New().String(), Name: entity.MaterialTypeEssence, CreatedAt: r.now()}
	if err := r.types.Create(ctx, t); err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			return "", err
		}
		// otra corrida la creó entre el Get y el Create
		t, err = r.types.GetByName(ctx, entity.MaterialTypeEssence)
		if err != nil || t == nil {
			return "", fmt.Errorf("material type %s: %w", entity.MaterialTypeEssence, err)
		}
	}
	return t.ID, nil
}

// sweep elimina los insumos del proveedor no tocados. Un borrado bloqueado se registra y se cuenta.
func (r *Reconciler) sweep(ctx context.Context, supplier string, touched map[string]struct{}, res *ReconcileResult) {
	current, err := r.materials.ListSupplierSourced(ctx, supplier)
	if err != nil {
		res.warn("no se pudo listar insumos de %s: %v", supplier, err)
		r.log.Error().Err(err).Str("supplier", supplier).Msg("barrido de huérfanos omitido")
		return
	}
	for _, m := range current {
		if _, ok := touched[m.Name]; ok {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if err := r.materials.Delete(ctx, m.ID); err != nil {
			res.NotDeleted++
			res.warn("%s no eliminado: %v", m.Name, err)
			r.log.Warn().Err(err).Str("supplier", supplier).Str("material", m.Name).
				Str("code", string(domain.CodeOf(err))).Msg("insumo huérfano no eliminado")
			continue
		}
		res.Deleted++
		r.log.Info().Str("supplier", supplier).Str("material", m.Name).Msg("insumo huérfano eliminado")
	}
}
