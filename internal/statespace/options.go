package statespace

import (
	"runtime"

	"github.com/daslerpc/mech-checker/internal/monitoring"
	"github.com/daslerpc/mech-checker/pkg/types"
)

// Options configures Build and Prune.
type Options struct {
	// Workers bounds the goroutines used for one stage. Values below one
	// mean runtime.GOMAXPROCS(0).
	Workers int

	// Strategy selects how Prune finds predecessors: StrategyScan compares
	// against every state of the previous level, StrategyGenerate tests the
	// 16 candidate predecessors for membership.
	Strategy string

	// Progress, when set, receives completed and total units of work.
	Progress monitoring.ProgressFunc
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the generate strategy on every available CPU.
func DefaultOptions() Options {
	return Options{Strategy: types.StrategyGenerate}
}

// WithWorkers bounds the worker goroutines.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithStrategy selects the predecessor lookup used by Prune.
func WithStrategy(s string) Option {
	return func(o *Options) { o.Strategy = s }
}

// WithProgress installs a progress callback.
func WithProgress(fn monitoring.ProgressFunc) Option {
	return func(o *Options) { o.Progress = fn }
}

func resolve(opts []Option) Options {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.Workers < 1 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Progress == nil {
		o.Progress = func(string, int, int) {}
	}
	return o
}
