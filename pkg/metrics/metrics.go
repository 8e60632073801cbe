// Package metrics expone las métricas Prometheus del motor de categorías.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector agrupa las métricas con su propio registro (no usa el global, así los tests
// pueden crear varios). Los métodos aceptan receptor nil.
type Collector struct {
	registry *prometheus.Registry

	TreeBuildDuration *prometheus.HistogramVec
	TreeNodes         prometheus.Gauge
	DegradedLinks     *prometheus.CounterVec
	DeleteBlocked     *prometheus.CounterVec
	Writes            *prometheus.CounterVec
}

// NewCollector crea y registra las métricas bajo el namespace dado.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,
		TreeBuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "category_read_duration_seconds",
				Help:      "Duración de la reconstrucción de lecturas de categorías (consulta + armado)",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"shape"},
		),
		TreeNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "category_active_nodes",
			Help:      "Categorías activas en la última lectura",
		}),
		DegradedLinks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "category_degraded_links_total",
				Help:      "Categorías promovidas a raíz al armar el árbol (padre ausente o ciclo)",
			},
			[]string{"kind"},
		),
		DeleteBlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "category_delete_blocked_total",
				Help:      "Bajas de categorías rechazadas por la compuerta de seguridad",
			},
			[]string{"reason"},
		),
		Writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "category_writes_total",
				Help:      "Escrituras aplicadas sobre la jerarquía",
			},
			[]string{"op"},
		),
	}
	registry.MustRegister(
		c.TreeBuildDuration, c.TreeNodes, c.DegradedLinks, c.DeleteBlocked, c.Writes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveRead registra duración y tamaño de una lectura (shape = flat|tree|children).
func (c *Collector) ObserveRead(shape string, d time.Duration, nodes int) {
	if c == nil {
		return
	}
	c.TreeBuildDuration.WithLabelValues(shape).Observe(d.Seconds())
	if shape != "children" {
		c.TreeNodes.Set(float64(nodes))
	}
}

// AddDegraded suma enlaces degradados por tipo (orphan|cycle).
func (c *Collector) AddDegraded(kind string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.DegradedLinks.WithLabelValues(kind).Add(float64(n))
}

// IncDeleteBlocked cuenta una baja bloqueada.
func (c *Collector) IncDeleteBlocked(reason string) {
	if c == nil {
		return
	}
	c.DeleteBlocked.WithLabelValues(reason).Inc()
}

// IncWrite cuenta una escritura aplicada (create|update|delete).
func (c *Collector) IncWrite(op string) {
	if c == nil {
		return
	}
	c.Writes.WithLabelValues(op).Inc()
}

// Registry devuelve el registro para exponerlo o inspeccionarlo en tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler handler HTTP con el formato de exposición de Prometheus.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
