package telemetry

import (
	"net/http"

	"github.com/milk9111/platformkit/character"
	"github.com/milk9111/platformkit/sim"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "platformkit"

// Metrics is a sim.Observer exporting simulation counters to Prometheus. It
// registers on its own registry so several simulations can run in one
// process.
type Metrics struct {
	Registry *prometheus.Registry

	ticks    prometheus.Counter
	dropped  prometheus.Gauge
	events   *prometheus.CounterVec
	grounded *prometheus.GaugeVec
	airTime  *prometheus.GaugeVec

	airborne map[*character.Character]float64
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "physics_ticks_total",
			Help:      "Fixed physics ticks run.",
		}),
		dropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "physics_ticks_dropped",
			Help:      "Physics ticks skipped because a frame ran too long.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "character_events_total",
			Help:      "Character events by kind.",
		}, []string{"character", "kind"}),
		grounded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "character_grounded",
			Help:      "1 while the character stands on ground.",
		}, []string{"character"}),
		airTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "character_air_time_seconds",
			Help:      "Seconds since the character last stood on ground.",
		}, []string{"character"}),
		airborne: make(map[*character.Character]float64),
	}
	m.Registry.MustRegister(m.ticks, m.dropped, m.events, m.grounded, m.airTime)
	return m
}

func (m *Metrics) Tick(s *sim.Simulation) {
	m.ticks.Inc()
	m.dropped.Set(float64(s.Dropped()))
	for _, c := range s.Characters {
		if c.Ground.OnGround() {
			m.airborne[c] = 0
			m.grounded.WithLabelValues(c.Name).Set(1)
		} else {
			m.airborne[c] += s.FixedDelta
			m.grounded.WithLabelValues(c.Name).Set(0)
		}
		m.airTime.WithLabelValues(c.Name).Set(m.airborne[c])
	}
}

func (m *Metrics) Event(c *character.Character, evt character.Event) {
	m.events.WithLabelValues(c.Name, string(evt.Kind)).Inc()
}

// Forget drops the per-character series of c.
func (m *Metrics) Forget(c *character.Character) {
	delete(m.airborne, c)
	m.grounded.DeleteLabelValues(c.Name)
	m.airTime.DeleteLabelValues(c.Name)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
