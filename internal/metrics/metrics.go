// Package metrics exposes layer stack activity as prometheus collectors.
package metrics

import (
	"fmt"
	"io"

	"github.com/kastheco/layerstack/layer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const namespace = "layerstack"

// Close outcomes.
const (
	OutcomeClosed = "closed"
	OutcomeVetoed = "vetoed"
	OutcomeFailed = "failed"
)

// Collectors holds the metrics of one stack. Give each stack its own
// registry; two Collectors on one registry collide.
type Collectors struct {
	LayersOpen    prometheus.Gauge
	Registrations prometheus.Counter
	Closes        *prometheus.CounterVec
	Cleared       prometheus.Counter
}

// New registers a fresh set of collectors on reg.
func New(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	c := &Collectors{
		LayersOpen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layers_open",
			Help:      "Number of layers currently registered.",
		}),
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Number of layers registered.",
		}),
		Closes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "close_total",
			Help:      "Escape close attempts that reached a layer, by outcome.",
		}, []string{"outcome"}),
		Cleared: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleared_layers_total",
			Help:      "Layers dropped by Clear without callbacks.",
		}),
	}
	// Pre-create the outcome series so they export as zero.
	for _, o := range []string{OutcomeClosed, OutcomeVetoed, OutcomeFailed} {
		c.Closes.WithLabelValues(o)
	}
	return c
}

// Observe keeps the collectors in sync with stack until the returned
// function is called or the stack is closed.
func (c *Collectors) Observe(stack *layer.Stack) (stop func()) {
	c.LayersOpen.Set(float64(stack.Count()))
	return stack.Subscribe(c.handle)
}

func (c *Collectors) handle(ev layer.Event) {
	c.LayersOpen.Set(float64(ev.Count))
	switch ev.Type {
	case layer.EventRegistered:
		c.Registrations.Inc()
	case layer.EventClosed:
		c.Closes.WithLabelValues(OutcomeClosed).Inc()
	case layer.EventCloseVetoed:
		c.Closes.WithLabelValues(OutcomeVetoed).Inc()
	case layer.EventCloseFailed:
		c.Closes.WithLabelValues(OutcomeFailed).Inc()
	case layer.EventCleared:
		c.Cleared.Add(float64(ev.Cleared))
	}
}

// Write prints every metric family of g in the prometheus text format.
func Write(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
