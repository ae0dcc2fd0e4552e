package metrics_test

import (
	"testing"
	"time"

	"github.com/jhoicas/sanse-api/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RegistraCorridasYVentas(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveSyncRun("proveedor", "ok", 250*time.Millisecond)
	m.AddMaterials("proveedor", "created", 3)
	m.AddMaterials("proveedor", "created", 0)
	m.AddProducts("updated", 2)
	m.IncSale("commit", "ok")
	m.IncSale("commit", "ok")

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.Len(t, families, 5, "deben exportarse los cinco colectores")

	count, err := testutil.GatherAndCount(reg, "sanse_sync_runs_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(reg, "sanse_sales_operations_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count, "una sola serie commit/ok")
}

func TestMetrics_NilNoEntraEnPanico(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveSyncRun("p", "ok", time.Second)
		m.AddMaterials("p", "created", 1)
		m.AddProducts("created", 1)
		m.IncSale("commit", "ok")
	})

	inert := metrics.New(nil)
	assert.NotPanics(t, func() { inert.IncSale("commit", "ok") })
}
