// Package metrics counts flattening activity with Prometheus collectors.
package metrics

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/aiworkoutgenerator/workoutflat/internal/engine/normalize"
	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

const namespace = "workoutflat"

// Collector records engine events. It satisfies engine.Observer.
type Collector struct {
	FlattenTotal     *prometheus.CounterVec
	DroppedKeysTotal *prometheus.CounterVec
	InputShapeTotal  *prometheus.CounterVec

	logger *slog.Logger
}

// New registers the collectors on reg. A nil reg uses a private registry.
func New(reg prometheus.Registerer, logger *slog.Logger) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	f := promauto.With(reg)
	return &Collector{
		FlattenTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flatten_total",
				Help:      "Records produced by the flattening compiler, by domain",
			},
			[]string{"domain"},
		),
		DroppedKeysTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_keys_total",
				Help:      "Selected ids with no flat field, by domain",
			},
			[]string{"domain"},
		),
		InputShapeTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "input_shape_total",
				Help:      "Detected input shapes, by domain",
			},
			[]string{"domain", "shape"},
		),
		logger: logger,
	}
}

func (c *Collector) Flattened(d model.Domain) {
	c.FlattenTotal.WithLabelValues(string(d)).Inc()
}

func (c *Collector) Dropped(d model.Domain, keys []string) {
	c.DroppedKeysTotal.WithLabelValues(string(d)).Add(float64(len(keys)))
	c.logger.Debug("dropped unmapped keys", "domain", d, "keys", keys)
}

func (c *Collector) InputShape(d model.Domain, k normalize.Kind) {
	c.InputShapeTotal.WithLabelValues(string(d), k.String()).Inc()
}

// Dump writes every metric family gathered from g in the Prometheus text
// exposition format.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
