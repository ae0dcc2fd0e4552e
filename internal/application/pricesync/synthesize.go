package pricesync

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/costing"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ProductPrefix prefijo del nombre de los perfumes generados.
const ProductPrefix = "Perfume "

// Receta fija de un perfume.
var (
	recipeEssence = decimal.NewFromInt(15)
	recipeAlcohol = decimal.NewFromInt(80)
	recipeUnit    = decimal.NewFromInt(1)
	defaultMargin = decimal.NewFromInt(100)
)

// BaseNames nombres con que se buscan los insumos base. Cada entrada acepta alternativas;
// la comparación ignora mayúsculas y tildes y basta con que el nombre las contenga.
type BaseNames struct {
	Alcohol      []string
	Box          []string
	Labels       []string
	MaleBottle   []string
	FemaleBottle []string
}

// DefaultBaseNames nombres usados en el catálogo actual.
func DefaultBaseNames() BaseNames {
	return BaseNames{
		Alcohol:      []string{"Alcohol"},
		Box:          []string{"Caja"},
		Labels:       []string{"Etiquetas"},
		MaleBottle:   []string{"Frasco masculino", "Frascos masculinos"},
		FemaleBottle: []string{"Frascos femeninos", "Frasco femenino"},
	}
}

// bases insumos base resueltos para una pasada.
type bases struct {
	alcohol, box, labels, male, female *entity.Material
}

func (b *bases) bottleFor(g entity.Gender) *entity.Material {
	if g == entity.GenderFemale {
		return b.female
	}
	return b.male
}

// SynthesisResult conteos de una pasada de síntesis.
type SynthesisResult struct {
	Created int
	Updated int
	Failed  int
	// Missing insumos base no encontrados; si no está vacío no se generó ningún producto.
	Missing []string
	// Orphaned perfumes generados cuya esencia ya no existe. Se informan, nunca se borran.
	Orphaned []string
	// Ungendered perfumes cuya esencia existe pero ya no tiene género; no se recalculan.
	Ungendered []string
	// ResellerRepriced cotizaciones a revendedor recalculadas con el nuevo costo.
	ResellerRepriced int
	Warnings         []string
}

// Synthesizer genera y mantiene un perfume por cada esencia con género.
type Synthesizer struct {
	materials repository.MaterialRepository
	products  repository.ProductRepository
	tx        CatalogTxRunner
	names     BaseNames
	log       zerolog.Logger
	now       func() time.Time
}

// NewSynthesizer construye el motor de síntesis.
func NewSynthesizer(materials repository.MaterialRepository, products repository.ProductRepository, tx CatalogTxRunner, names BaseNames, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{materials: materials, products: products, tx: tx, names: names, log: log, now: time.Now}
}

// Synthesize crea los perfumes que faltan y recalcula costo y precio de los existentes
// (sin cambiar su receta ni su margen). Cada producto se escribe en su propia transacción.
// Un insumo base faltante no es error: se informa en Missing y no se genera nada.
func (s *Synthesizer) Synthesize(ctx context.Context) (*SynthesisResult, error) {
	res := &SynthesisResult{}
	all, err := s.materials.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	essences, err := s.materials.ListByType(ctx, entity.MaterialTypeEssence)
	if err != nil {
		return nil, fmt.Errorf("list essences: %w", err)
	}
	sort.Slice(essences, func(i, j int) bool { return essences[i].Name < essences[j].Name })

	essenceIDs := make(map[string]struct{}, len(essences))
	for _, e := range essences {
		essenceIDs[e.ID] = struct{}{}
	}
	b, missing := s.resolveBases(all, essenceIDs)
	if len(missing) > 0 {
		derr := domain.MissingDependency(missing...)
		res.Missing = missing
		res.Warnings = append(res.Warnings, derr.Message)
		s.log.Warn().Strs("missing", missing).Msg("síntesis de productos omitida")
		return res, nil
	}

	existing := make(map[string]bool, len(essences))
	for _, e := range essences {
		existing[e.Name] = e.Gender.Synthesizable()
		if !e.Gender.Synthesizable() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		created, repriced, err := s.syncProduct(ctx, e, b)
		if err != nil {
			res.Failed++
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s%s: %v", ProductPrefix, e.Name, err))
			s.log.Error().Err(err).Str("essence", e.Name).Msg("no se pudo sincronizar el producto")
			continue
		}
		res.ResellerRepriced += repriced
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	if err := s.reportOrphans(ctx, existing, res); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("no se pudieron revisar productos huérfanos: %v", err))
	}
	return res, nil
}

// syncProduct devuelve si el producto se creó y cuántas cotizaciones a revendedor se recalcularon.
func (s *Synthesizer) syncProduct(ctx context.Context, essence *entity.Material, b *bases) (bool, int, error) {
	name := ProductPrefix + essence.Name
	created := false
	repriced := 0
	err := s.tx.RunCatalog(ctx, func(_ repository.MaterialRepository, products repository.ProductRepository, resellers repository.ResellerProductRepository) error {
		existing, err := products.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			costing.Reprice(existing)
			if len(existing.Flags) > 0 {
				s.log.Warn().Str("product", name).Strs("materials", existing.Flags).Msg("ingredientes sin costo disponible")
			}
			if err := products.UpdatePricing(ctx, existing.ID, existing.Cost, existing.FinalPrice); err != nil {
				return err
			}
			n, err := RepriceResellers(ctx, resellers, existing)
			repriced = n
			return err
		}

		now := s.now()
		p := &entity.Product{
			ID:           uuid.New().String(),
			Name:         name,
			ProfitMargin: defaultMargin,
			Gender:       essence.Gender,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		p.Ingredients = []entity.ProductIngredient{
			recipeLine(p.ID, essence, recipeEssence),
			recipeLine(p.ID, b.alcohol, recipeAlcohol),
			recipeLine(p.ID, b.bottleFor(essence.Gender), recipeUnit),
			recipeLine(p.ID, b.box, recipeUnit),
			recipeLine(p.ID, b.labels, recipeUnit),
		}
		costing.Reprice(p)
		created = true
		return products.Create(ctx, p)
	})
	if err != nil {
		return false, 0, domain.TransactionFailure(err)
	}
	return created, repriced, nil
}

// RepriceResellers actualiza las cotizaciones a revendedor del producto con su costo ya derivado.
// Devuelve cuántas cotizaciones cambió.
func RepriceResellers(ctx context.Context, resellers repository.ResellerProductRepository, p *entity.Product) (int, error) {
	quotes, err := resellers.ListByProduct(ctx, p.ID)
	if err != nil {
		return 0, err
	}
	for _, rp := range quotes {
		if err := resellers.UpdatePrice(ctx, rp.ID, costing.ResellerPrice(p.Cost, rp.ProfitMargin)); err != nil {
			return 0, err
		}
	}
	return len(quotes), nil
}

func recipeLine(productID string, m *entity.Material, qty decimal.Decimal) entity.ProductIngredient {
	return entity.ProductIngredient{
		ID:           uuid.New().String(),
		ProductID:    productID,
		MaterialID:   m.ID,
		QuantityUsed: qty,
		Material:     m,
	}
}

// reportOrphans marca perfumes generados cuya esencia ya no existe. Si la esencia existe
// pero perdió el género, el producto va a Ungendered.
// essences: nombre de esencia → tiene género sintetizable.
func (s *Synthesizer) reportOrphans(ctx context.Context, essences map[string]bool, res *SynthesisResult) error {
	products, err := s.products.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		essence, ok := strings.CutPrefix(p.Name, ProductPrefix)
		if !ok {
			continue
		}
		gendered, ok := essences[essence]
		if gendered {
			continue
		}
		if ok {
			res.Ungendered = append(res.Ungendered, p.Name)
			s.log.Warn().Str("product", p.Name).Msg("esencia sin género, producto no recalculado")
			continue
		}
		res.Orphaned = append(res.Orphaned, p.Name)
		s.log.Warn().Str("product", p.Name).Msg("producto sin esencia de origen")
	}
	return nil
}

// resolveBases busca los cinco insumos base fuera de las esencias. Devuelve los nombres faltantes.
func (s *Synthesizer) resolveBases(all []*entity.Material, essenceIDs map[string]struct{}) (*bases, []string) {
	candidates := make([]*entity.Material, 0, len(all))
	for _, m := range all {
		if _, ok := essenceIDs[m.ID]; ok {
			continue
		}
		candidates = append(candidates, m)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })

	var missing []string
	find := func(label string, patterns []string) *entity.Material {
		m := matchMaterial(candidates, patterns)
		if m == nil {
			missing = append(missing, label)
		}
		return m
	}
	b := &bases{
		alcohol: find(label(s.names.Alcohol, "Alcohol"), s.names.Alcohol),
		box:     find(label(s.names.Box, "Caja"), s.names.Box),
		labels:  find(label(s.names.Labels, "Etiquetas"), s.names.Labels),
		male:    find(label(s.names.MaleBottle, "Frasco masculino"), s.names.MaleBottle),
		female:  find(label(s.names.FemaleBottle, "Frascos femeninos"), s.names.FemaleBottle),
	}
	return b, missing
}

func label(patterns []string, fallback string) string {
	if len(patterns) > 0 {
		return patterns[0]
	}
	return fallback
}

// matchMaterial prefiere coincidencia exacta (normalizada) y si no la primera que contiene el patrón.
func matchMaterial(candidates []*entity.Material, patterns []string) *entity.Material {
	var contains *entity.Material
	for _, p := range patterns {
		fp := fold(p)
		if fp == "" {
			continue
		}
		for _, m := range candidates {
			fn := fold(m.Name)
			if fn == fp {
				return m
			}
			if contains == nil && strings.Contains(fn, fp) {
				contains = m
			}
		}
	}
	return contains
}

// fold normaliza para comparar: sin tildes, sin mayúsculas, espacios colapsados.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(out)), " ")
}
