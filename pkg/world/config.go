package world

// config.go mirrors the teacher's pkg/config.go functional-options shape:
// a defaulted config struct, a handful of With* options, and validation
// performed once at construction time rather than on every call.

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// LoaderConfig bundles the loader's tunables (spec.md §4.G).
type LoaderConfig struct {
	LoadRadiusMM   int64
	UnloadRadiusMM int64
	LoadsPerTick   int
	UnloadsPerTick int
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultLoaderConfig returns reasonable defaults: a 256 m load radius, a
// 320 m unload radius (leaving a hysteresis band per spec.md §4.G), and
// modest per-tick budgets.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		LoadRadiusMM:   256_000,
		UnloadRadiusMM: 320_000,
		LoadsPerTick:   8,
		UnloadsPerTick: 8,
		MaxRetries:     5,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
	}
}

var (
	errUnloadRadius = errors.New("world: unload radius must exceed load radius")
	errBudget       = errors.New("world: loads/unloads per tick must be > 0")
)

func (c LoaderConfig) validate() error {
	if c.UnloadRadiusMM <= c.LoadRadiusMM {
		return errUnloadRadius
	}
	if c.LoadsPerTick <= 0 || c.UnloadsPerTick <= 0 {
		return errBudget
	}
	return nil
}

// Option configures a Loader at construction time.
type Option func(*loaderOptions)

type loaderOptions struct {
	registry *prometheus.Registry
	logger   *zap.Logger
}

func defaultLoaderOptions() *loaderOptions {
	return &loaderOptions{logger: zap.NewNop()}
}

// WithMetrics enables Prometheus metrics for the loader. Passing nil
// disables metrics (the default): the hot path never pays for a metric
// update no one reads.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(o *loaderOptions) { o.registry = reg }
}

// WithLogger plugs an external zap.Logger. The loader never logs on a
// per-voxel or per-tick hot path; only loads that exhaust their retries and
// save-dirty chunks that fail to persist before unload are logged.
func WithLogger(l *zap.Logger) Option {
	return func(o *loaderOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
