// Package metrics colectores Prometheus de corridas de sincronización y ventas.
package metrics

import (
	"time"

	"github.com/jhoicas/sanse-api/internal/application/pricesync"
	"github.com/jhoicas/sanse-api/internal/application/sales"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	_ pricesync.Recorder = (*Metrics)(nil)
	_ sales.Recorder     = (*Metrics)(nil)
)

// Metrics agrupa los colectores. Un *Metrics nil o sin registrar no hace nada.
type Metrics struct {
	syncDuration *prometheus.HistogramVec
	syncRuns     *prometheus.CounterVec
	materials    *prometheus.CounterVec
	products     *prometheus.CounterVec
	sales        *prometheus.CounterVec
}

// New registra los colectores en reg. Con reg nil devuelve métricas inertes.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sanse",
			Name:      "sync_duration_seconds",
			Help:      "Duración de las corridas de sincronización de precios.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"supplier", "outcome"}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sanse",
			Name:      "sync_runs_total",
			Help:      "Corridas de sincronización por resultado.",
		}, []string{"supplier", "outcome"}),
		materials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sanse",
			Name:      "sync_materials_total",
			Help:      "Insumos creados, actualizados, eliminados u omitidos por la sincronización.",
		}, []string{"supplier", "action"}),
		products: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sanse",
			Name:      "sync_products_total",
			Help:      "Perfumes generados o recalculados por la sincronización.",
		}, []string{"action"}),
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sanse",
			Name:      "sales_operations_total",
			Help:      "Confirmaciones y reversiones de ventas por resultado.",
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(m.syncDuration, m.syncRuns, m.materials, m.products, m.sales)
	return m
}

// ObserveSyncRun registra duración y resultado de una corrida.
func (m *Metrics) ObserveSyncRun(supplier, outcome string, elapsed time.Duration) {
	if m == nil || m.syncDuration == nil {
		return
	}
	supplier, outcome = normalizeLabel(supplier), normalizeLabel(outcome)
	m.syncDuration.WithLabelValues(supplier, outcome).Observe(elapsed.Seconds())
	m.syncRuns.WithLabelValues(supplier, outcome).Inc()
}

// AddMaterials suma n insumos a la acción indicada. n <= 0 no registra nada.
func (m *Metrics) AddMaterials(supplier, action string, n int) {
	if m == nil || m.materials == nil || n <= 0 {
		return
	}
	m.materials.WithLabelValues(normalizeLabel(supplier), normalizeLabel(action)).Add(float64(n))
}

// AddProducts suma n perfumes a la acción indicada.
func (m *Metrics) AddProducts(action string, n int) {
	if m == nil || m.products == nil || n <= 0 {
		return
	}
	m.products.WithLabelValues(normalizeLabel(action)).Add(float64(n))
}

// IncSale cuenta una operación de venta.
func (m *Metrics) IncSale(operation, outcome string) {
	if m == nil || m.sales == nil {
		return
	}
	m.sales.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
