package costing_test

import (
	"testing"

	"github.com/jhoicas/sanse-api/internal/domain/costing"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func material(id string, cost, qty string) *entity.Material {
	return &entity.Material{
		ID:               id,
		PurchaseCost:     d(cost),
		PurchaseQuantity: d(qty),
		PriceStatus:      entity.PriceStatusAvailable,
	}
}

func ingredient(m *entity.Material, qty string) entity.ProductIngredient {
	return entity.ProductIngredient{MaterialID: m.ID, QuantityUsed: d(qty), Material: m}
}

// ─── CostPerUnit ────────────────────────────────────────────────────────────

func TestCostPerUnit_Disponible(t *testing.T) {
	cpu, ok := costing.CostPerUnit(entity.PriceStatusAvailable, d("30000"), d("30"))
	assert.True(t, ok)
	assert.True(t, cpu.Equal(d("1000")), "30000/30 debe ser 1000, got %s", cpu)
}

func TestCostPerUnit_CantidadCeroNoDivide(t *testing.T) {
	cpu, ok := costing.CostPerUnit(entity.PriceStatusAvailable, d("30000"), decimal.Zero)
	assert.False(t, ok, "cantidad 0 debe marcar costo no disponible")
	assert.True(t, cpu.IsZero())

	_, ok = costing.CostPerUnit(entity.PriceStatusAvailable, d("100"), d("-5"))
	assert.False(t, ok, "cantidad negativa debe marcar costo no disponible")
}

func TestCostPerUnit_Consultar(t *testing.T) {
	cpu, ok := costing.CostPerUnit(entity.PriceStatusConsultar, d("30000"), d("30"))
	assert.False(t, ok, "consultar nunca participa en el costeo")
	assert.True(t, cpu.IsZero())
}

func TestCostPerUnit_RedondeaCuatroDecimales(t *testing.T) {
	cpu, ok := costing.CostPerUnit(entity.PriceStatusAvailable, d("10"), d("3"))
	assert.True(t, ok)
	assert.Equal(t, "3.3333", cpu.String())
}

// ─── ProductCost / FinalPrice ───────────────────────────────────────────────

func TestProductCost_PerfumeAlien(t *testing.T) {
	alien := material("alien", "30000", "30")
	alcohol := material("alcohol", "3000", "1000")
	box := material("box", "500", "1")
	label := material("label", "100", "1")
	bottle := material("bottle", "2000", "1")

	p := &entity.Product{
		ProfitMargin: d("100"),
		Ingredients: []entity.ProductIngredient{
			ingredient(alien, "15"),
			ingredient(alcohol, "80"),
			ingredient(box, "1"),
			ingredient(label, "1"),
			ingredient(bottle, "1"),
		},
	}
	costing.Reprice(p)

	assert.True(t, p.Cost.Equal(d("17840")), "costo esperado 17840, got %s", p.Cost)
	assert.True(t, p.FinalPrice.Equal(d("35680")), "precio final esperado 35680, got %s", p.FinalPrice)
	assert.Empty(t, p.Flags)
}

func TestProductCost_InsumoSinCostoSeMarca(t *testing.T) {
	alien := material("alien", "30000", "30")
	pending := material("pending", "0", "0")
	consultar := material("consultar", "5000", "10")
	consultar.PriceStatus = entity.PriceStatusConsultar

	b := costing.ProductCost([]entity.ProductIngredient{
		ingredient(alien, "2"),
		ingredient(pending, "5"),
		ingredient(consultar, "1"),
		{MaterialID: "gone", QuantityUsed: d("1")},
	})

	assert.True(t, b.Cost.Equal(d("2000")), "los insumos sin costo suman 0, got %s", b.Cost)
	assert.Equal(t, []string{"pending", "consultar", "gone"}, b.Unavailable)
}

func TestProductCost_SinIngredientes(t *testing.T) {
	b := costing.ProductCost(nil)
	assert.True(t, b.Cost.IsZero())
	assert.Empty(t, b.Unavailable)
}

func TestResellerPrice_SobreCostoNoSobrePrecioFinal(t *testing.T) {
	cost := d("17840")
	final := costing.FinalPrice(cost, d("100"))
	reseller := costing.ResellerPrice(cost, d("30"))

	assert.True(t, reseller.Equal(d("23192")), "17840 × 1.3 = 23192, got %s", reseller)
	assert.True(t, reseller.LessThan(final))
}

func TestFinalPrice_MargenCero(t *testing.T) {
	assert.True(t, costing.FinalPrice(d("123.45"), decimal.Zero).Equal(d("123.45")))
}

func TestReprice_ConservaMargen(t *testing.T) {
	box := material("box", "500", "1")
	p := &entity.Product{ProfitMargin: d("40"), Ingredients: []entity.ProductIngredient{ingredient(box, "2")}}
	costing.Reprice(p)

	assert.True(t, p.ProfitMargin.Equal(d("40")))
	assert.True(t, p.Cost.Equal(d("1000")))
	assert.True(t, p.FinalPrice.Equal(d("1400")))
}
