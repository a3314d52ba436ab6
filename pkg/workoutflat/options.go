package workoutflat

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type options struct {
	taxonomyDir string
	now         func() time.Time
	registerer  prometheus.Registerer
}

// Option configures a Flattener.
type Option func(*options)

// WithTaxonomyDir loads <domain>.yaml files from dir in place of the
// built-in taxonomies. Domains without a file keep the built-in table.
func WithTaxonomyDir(dir string) Option {
	return func(o *options) {
		o.taxonomyDir = dir
	}
}

// WithClock sets the clock used for *_last_updated. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithMetrics registers flatten, dropped-key and input-shape counters on
// reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

func defaultOptions() options {
	return options{now: time.Now}
}
