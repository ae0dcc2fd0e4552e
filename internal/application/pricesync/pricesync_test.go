package pricesync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/sanse-api/internal/application/pricesync"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/infrastructure/lock"
	"github.com/jhoicas/sanse-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const supplier = "Proveedor"

// ─── helpers ────────────────────────────────────────────────────────────────

type staticSource struct {
	products []entity.ScrapedProduct
	err      error
}

func (s *staticSource) Fetch(ctx context.Context) ([]entity.ScrapedProduct, error) {
	return s.products, s.err
}

type busyLocker struct{}

func (busyLocker) Obtain(context.Context, string) (pricesync.Releaser, error) {
	return nil, domain.ErrLockNotObtained
}

// expiredLocker entrega un bloqueo que ya se perdió, como uno de Redis cuyo TTL venció.
type expiredLocker struct{}

type expiredLock struct{ lost chan struct{} }

func (expiredLocker) Obtain(context.Context, string) (pricesync.Releaser, error) {
	l := expiredLock{lost: make(chan struct{})}
	close(l.lost)
	return l, nil
}

func (expiredLock) Release(context.Context) error { return nil }
func (l expiredLock) Lost() <-chan struct{} { return l.lost }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func variant(size, price string, status entity.PriceStatus) entity.ScrapedVariant {
	return entity.ScrapedVariant{Size: size, Price: d(price), PriceStatus: status}
}

func product(group string, gender entity.Gender, variants ...entity.ScrapedVariant) entity.ScrapedProduct {
	return entity.ScrapedProduct{GroupName: group, URL: "https://proveedor.test/" + group, Gender: gender, Variants: variants}
}

func newUseCase(store *memory.Store, source pricesync.PriceSource, locker pricesync.Locker) *pricesync.UseCase {
	log := zerolog.Nop()
	rec := pricesync.NewReconciler(store.Materials(), store.MaterialTypes(), log)
	synth := pricesync.NewSynthesizer(store.Materials(), store.Products(), store, pricesync.DefaultBaseNames(), log)
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return pricesync.NewUseCase(source, rec, synth, locker, nil, pricesync.Options{Supplier: supplier, FetchTimeout: time.Second}, log)
}

func seedMaterial(t *testing.T, store *memory.Store, name, supplierName, cost, qty string, url *string) *entity.Material {
	t.Helper()
	m := &entity.Material{
		ID:               uuid.New().String(),
		Name:             name,
		Unit:             entity.UnitPiece,
		PurchaseCost:     d(cost),
		PurchaseQuantity: d(qty),
		Supplier:         supplierName,
		SupplierURL:      url,
		PriceStatus:      entity.PriceStatusAvailable,
	}
	require.NoError(t, store.Materials().Create(context.Background(), m))
	return m
}

// seedBases crea los insumos base cargados a mano. Alcohol a 3 por ml.
func seedBases(t *testing.T, store *memory.Store, skip ...string) {
	t.Helper()
	bases := [][3]string{
		{"Alcohol", "3000", "1000"},
		{"Caja", "500", "1"},
		{"ETIQUETAS", "100", "1"},
		{"Frasco masculino", "2000", "1"},
		{"Frascos Femeninos", "2500", "1"},
	}
outer:
	for _, b := range bases {
		for _, s := range skip {
			if s == b[0] {
				continue outer
			}
		}
		seedMaterial(t, store, b[0], entity.DefaultSupplier, b[1], b[2], nil)
	}
}

func str(s string) *string { return &s }

// ─── ParseSize ──────────────────────────────────────────────────────────────

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		qty  string
		unit entity.Unit
	}{
		{"30g", "30", entity.UnitGram},
		{"100 ml", "100", entity.UnitMilliliter},
		{" 1,5kg", "1500", entity.UnitGram},
		{"2L", "2000", entity.UnitMilliliter},
		{"250", "250", entity.UnitGram},
	}
	for _, c := range cases {
		qty, unit, err := pricesync.ParseSize(c.in)
		require.NoError(t, err, c.in)
		assert.True(t, qty.Equal(d(c.qty)), "%s: cantidad %s", c.in, qty)
		assert.Equal(t, c.unit, unit, c.in)
	}

	_, _, err := pricesync.ParseSize("grande")
	require.Error(t, err)
	assert.Equal(t, domain.CodeParse, domain.CodeOf(err))
}

// ─── Reconciler ─────────────────────────────────────────────────────────────

func TestReconcile_Idempotente(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rec := pricesync.NewReconciler(store.Materials(), store.MaterialTypes(), zerolog.Nop())
	feed := []entity.ScrapedProduct{product("Alien", entity.GenderFemale, variant("30g", "30000", entity.PriceStatusAvailable))}

	first, err := rec.Reconcile(ctx, supplier, feed)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	before, err := store.Materials().GetBySupplierAndName(ctx, supplier, "Alien (30g)")
	require.NoError(t, err)
	require.NotNil(t, before)

	second, err := rec.Reconcile(ctx, supplier, feed)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created, "la segunda corrida no debe crear nada")
	assert.Equal(t, 1, second.Updated)
	assert.Zero(t, second.Deleted)

	all, err := store.Materials().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "debe existir exactamente un insumo")

	after := all[0]
	assert.Equal(t, before.ID, after.ID)
	assert.True(t, after.CostPerUnit.Equal(d("1000")), "costo por unidad 30000/30")
	assert.True(t, after.CostPerUnit.Equal(before.CostPerUnit), "el costo no cambia en la segunda corrida")
	assert.True(t, after.PurchaseQuantity.Equal(d("30")))
	assert.Equal(t, entity.UnitGram, after.Unit)
	assert.Equal(t, "Alien", after.GroupName)
	assert.Equal(t, entity.GenderFemale, after.Gender)
	require.NotNil(t, after.TypeID, "se asigna la categoría Esencia")

	typ, err := store.MaterialTypes().GetByName(ctx, entity.MaterialTypeEssence)
	require.NoError(t, err)
	require.NotNil(t, typ)
	assert.Equal(t, typ.ID, *after.TypeID)
}

func TestReconcile_ConsultarNoTieneCosto(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rec := pricesync.NewReconciler(store.Materials(), store.MaterialTypes(), zerolog.Nop())

	_, err := rec.Reconcile(ctx, supplier, []entity.ScrapedProduct{
		product("Alien", "", variant("100g", "45000", entity.PriceStatusConsultar)),
	})
	require.NoError(t, err)

	m, err := store.Materials().GetBySupplierAndName(ctx, supplier, "Alien (100g)")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, m.CostPerUnit.IsZero(), "consultar deja el costo por unidad en 0")
	assert.Equal(t, entity.PriceStatusConsultar, m.PriceStatus)
}

func TestReconcile_BarridoDeHuerfanos(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rec := pricesync.NewReconciler(store.Materials(), store.MaterialTypes(), zerolog.Nop())

	stale := seedMaterial(t, store, "Viejo (30g)", supplier, "1000", "30", str("https://proveedor.test/viejo"))
	used := seedMaterial(t, store, "Usado (30g)", supplier, "1000", "30", str("https://proveedor.test/usado"))
	manual := seedMaterial(t, store, "Manual", supplier, "10", "1", nil)
	foreign := seedMaterial(t, store, "Ajeno (30g)", "OtroProveedor", "10", "1", str("https://otro.test/ajeno"))

	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID:   uuid.New().String(),
		Name: "Receta manual",
		Ingredients: []entity.ProductIngredient{
			{ID: uuid.New().String(), MaterialID: used.ID, QuantityUsed: d("1")},
		},
	}))

	res, err := rec.Reconcile(ctx, supplier, []entity.ScrapedProduct{
		product("Alien", "", variant("30g", "30000", entity.PriceStatusAvailable)),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, res.NotDeleted, "el insumo referenciado no se puede borrar y no es fatal")

	got, _ := store.Materials().GetByID(ctx, stale.ID)
	assert.Nil(t, got, "el huérfano del proveedor se elimina")
	for _, keep := range []*entity.Material{used, manual, foreign} {
		got, _ := store.Materials().GetByID(ctx, keep.ID)
		assert.NotNil(t, got, "%s no debe eliminarse", keep.Name)
	}
}

func TestReconcile_ListaVaciaNoBorra(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rec := pricesync.NewReconciler(store.Materials(), store.MaterialTypes(), zerolog.Nop())
	m := seedMaterial(t, store, "Alien (30g)", supplier, "30000", "30", str("https://proveedor.test/alien"))

	res, err := rec.Reconcile(ctx, supplier, []entity.ScrapedProduct{})
	require.NoError(t, err)
	assert.Zero(t, res.Deleted)
	assert.NotEmpty(t, res.Warnings)

	got, _ := store.Materials().GetByID(ctx, m.ID)
	assert.NotNil(t, got)
}

func TestReconcile_TamanoIlegibleSeOmiteSinBorrar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rec := pricesync.NewReconciler(store.Materials(), store.MaterialTypes(), zerolog.Nop())
	existing := seedMaterial(t, store, "Alien (grande)", supplier, "30000", "30", str("https://proveedor.test/alien"))

	res, err := rec.Reconcile(ctx, supplier, []entity.ScrapedProduct{
		product("Alien", "", variant("grande", "1000", entity.PriceStatusAvailable), variant("30g", "30000", entity.PriceStatusAvailable)),
		product("Invictus", "", variant("50ml", "-5", entity.PriceStatusAvailable)),
	})
	require.NoError(t, err, "una variante mala nunca aborta la corrida")
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 1, res.Created)
	assert.Zero(t, res.Deleted)

	got, _ := store.Materials().GetByID(ctx, existing.ID)
	require.NotNil(t, got, "un dato mal leído no borra el insumo")
	assert.True(t, got.PurchaseCost.Equal(d("30000")), "y tampoco lo modifica")
}

func TestReconcile_DuplicadosGanaElUltimo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rec := pricesync.NewReconciler(store.Materials(), store.MaterialTypes(), zerolog.Nop())

	res, err := rec.Reconcile(ctx, supplier, []entity.ScrapedProduct{
		product("Alien", "", variant("30g", "30000", entity.PriceStatusAvailable)),
		product("Alien", "", variant("30g", "33000", entity.PriceStatusAvailable)),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)

	m, _ := store.Materials().GetBySupplierAndName(ctx, supplier, "Alien (30g)")
	require.NotNil(t, m)
	assert.True(t, m.PurchaseCost.Equal(d("33000")))
}

// ─── Synthesizer / UseCase ──────────────────────────────────────────────────

func TestRun_GeneraPerfumeConRecetaFija(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedBases(t, store)
	source := &staticSource{products: []entity.ScrapedProduct{
		product("Alien", entity.GenderMale, variant("30g", "30000", entity.PriceStatusAvailable)),
		product("Good Girl", entity.GenderFemale, variant("30g", "30000", entity.PriceStatusAvailable)),
		product("Sin Genero", "", variant("30g", "30000", entity.PriceStatusAvailable)),
	}}

	out, err := newUseCase(store, source, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Materials.Created)
	assert.Equal(t, 2, out.Products.Created, "las esencias sin género no generan perfume")
	assert.Empty(t, out.Missing)

	p, err := store.Products().GetByName(ctx, "Perfume Alien (30g)")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Cost.Equal(d("17840")), "15×1000 + 80×3 + 500 + 100 + 2000, got %s", p.Cost)
	assert.True(t, p.FinalPrice.Equal(d("35680")), "margen 100, got %s", p.FinalPrice)
	assert.True(t, p.ProfitMargin.Equal(d("100")))
	assert.Len(t, p.Ingredients, 5)

	female, err := store.Products().GetByName(ctx, "Perfume Good Girl (30g)")
	require.NoError(t, err)
	require.NotNil(t, female)
	assert.True(t, female.Cost.Equal(d("18340")), "usa el frasco femenino, got %s", female.Cost)

	none, err := store.Products().GetByName(ctx, "Perfume Sin Genero (30g)")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRun_RecalculaSinCambiarMargenNiReceta(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedBases(t, store)
	source := &staticSource{products: []entity.ScrapedProduct{
		product("Alien", entity.GenderMale, variant("30g", "30000", entity.PriceStatusAvailable)),
	}}
	uc := newUseCase(store, source, nil)
	_, err := uc.Run(ctx)
	require.NoError(t, err)

	p, _ := store.Products().GetByName(ctx, "Perfume Alien (30g)")
	require.NotNil(t, p)
	p.ProfitMargin = d("50")
	require.NoError(t, store.Products().Update(ctx, p))

	source.products = []entity.ScrapedProduct{
		product("Alien", entity.GenderMale, variant("30g", "60000", entity.PriceStatusAvailable)),
	}
	out, err := uc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Products.Created)
	assert.Equal(t, 1, out.Products.Updated)

	p, _ = store.Products().GetByName(ctx, "Perfume Alien (30g)")
	require.NotNil(t, p)
	assert.True(t, p.ProfitMargin.Equal(d("50")), "el margen configurado se conserva")
	assert.True(t, p.Cost.Equal(d("32840")), "15×2000 + 240 + 500 + 100 + 2000, got %s", p.Cost)
	assert.True(t, p.FinalPrice.Equal(d("49260")), "32840 × 1.5, got %s", p.FinalPrice)
	assert.Len(t, p.Ingredients, 5, "la receta no se reemplaza")
}

func TestRun_FaltaInsumoBaseNoGeneraNada(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedBases(t, store, "Caja", "Frascos Femeninos")
	source := &staticSource{products: []entity.ScrapedProduct{
		product("Alien", entity.GenderMale, variant("30g", "30000", entity.PriceStatusAvailable)),
	}}

	out, err := newUseCase(store, source, nil).Run(ctx)
	require.NoError(t, err, "un insumo base faltante no es fatal")
	assert.Equal(t, 1, out.Materials.Created, "la conciliación igual se aplica")
	assert.Zero(t, out.Products.Created)
	assert.ElementsMatch(t, []string{"Caja", "Frascos femeninos"}, out.Missing)
	assert.NotEmpty(t, out.Warnings)

	list, err := store.Products().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "nunca se crean recetas parciales")
}

func TestRun_InformaPerfumesHuerfanos(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedBases(t, store)
	caja, _ := store.Materials().GetBySupplierAndName(ctx, entity.DefaultSupplier, "Caja")
	require.NotNil(t, caja)
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID:           uuid.New().String(),
		Name:         "Perfume Descontinuado (30g)",
		ProfitMargin: d("100"),
		Ingredients:  []entity.ProductIngredient{{ID: uuid.New().String(), MaterialID: caja.ID, QuantityUsed: d("1")}},
	}))

	out, err := newUseCase(store, &staticSource{products: []entity.ScrapedProduct{
		product("Alien", entity.GenderMale, variant("30g", "30000", entity.PriceStatusAvailable)),
	}}, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Perfume Descontinuado (30g)"}, out.Products.Orphaned)

	p, _ := store.Products().GetByName(ctx, "Perfume Descontinuado (30g)")
	assert.NotNil(t, p, "el huérfano se informa pero no se borra")
}

func TestRun_EsenciaSinGeneroNoEsHuerfana(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedBases(t, store)
	source := &staticSource{products: []entity.ScrapedProduct{
		product("Alien", entity.GenderMale, variant("30g", "30000", entity.PriceStatusAvailable)),
	}}
	uc := newUseCase(store, source, nil)
	_, err := uc.Run(ctx)
	require.NoError(t, err)

	essence, err := store.Materials().GetBySupplierAndName(ctx, supplier, "Alien (30g)")
	require.NoError(t, err)
	require.NotNil(t, essence)
	essence.Gender = ""
	require.NoError(t, store.Materials().Update(ctx, essence))

	out, err := uc.Synthesize(ctx)
	require.NoError(t, err)
	assert.Empty(t, out.Products.Orphaned, "la esencia sigue existiendo")
	assert.Equal(t, []string{"Perfume Alien (30g)"}, out.Products.Ungendered)
}

func TestRun_RecalculaPreciosDeRevendedor(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedBases(t, store)
	source := &staticSource{products: []entity.ScrapedProduct{
		product("Alien", entity.GenderMale, variant("30g", "30000", entity.PriceStatusAvailable)),
	}}
	uc := newUseCase(store, source, nil)
	_, err := uc.Run(ctx)
	require.NoError(t, err)

	p, _ := store.Products().GetByName(ctx, "Perfume Alien (30g)")
	require.NotNil(t, p)
	quote := &entity.ResellerProduct{
		ID:           uuid.New().String(),
		ProductID:    p.ID,
		ProfitMargin: d("50"),
		Price:        d("26760"),
	}
	require.NoError(t, store.ResellerProducts().Create(ctx, quote))

	source.products = []entity.ScrapedProduct{
		product("Alien", entity.GenderMale, variant("30g", "60000", entity.PriceStatusAvailable)),
	}
	out, err := uc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Products.ResellerRepriced)

	got, err := store.ResellerProducts().GetByID(ctx, quote.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Price.Equal(d("49260")), "32840 × 1.5, got %s", got.Price)
}

func TestRun_OtraCorridaEnCurso(t *testing.T) {
	store := memory.NewStore()
	_, err := newUseCase(store, &staticSource{}, busyLocker{}).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.CodeSyncInProgress, domain.CodeOf(err))
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
}

func TestRun_BloqueoSeLiberaAlTerminar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	locker := lock.NewLocalLocker()
	uc := newUseCase(store, &staticSource{}, locker)

	_, err := uc.Run(ctx)
	require.NoError(t, err)

	r, err := locker.Obtain(ctx, pricesync.LockKey(supplier))
	require.NoError(t, err, "el bloqueo debe liberarse al terminar la corrida")
	require.NoError(t, r.Release(ctx))
}

func TestRun_BloqueoPerdidoAbortaLaCorrida(t *testing.T) {
	store := memory.NewStore()
	seedBases(t, store)
	_, err := newUseCase(store, &staticSource{products: []entity.ScrapedProduct{
		product("Alien", entity.GenderMale, variant("30g", "30000", entity.PriceStatusAvailable)),
	}}, expiredLocker{}).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.CodeTransactionFailure, domain.CodeOf(err))
	assert.ErrorIs(t, err, domain.ErrLockNotObtained)
}

func TestRun_FuenteNoDisponible(t *testing.T) {
	store := memory.NewStore()
	_, err := newUseCase(store, &staticSource{err: errors.New("connection refused")}, nil).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.CodeUpstream, domain.CodeOf(err))
}
