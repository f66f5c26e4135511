package column

import (
	"context"

	"github.com/ajitpratap0/colkit/pkg/config"
)

type runConfig struct {
	ctx         context.Context
	withIndices bool
	batched     *bool
	batchSize   int
	dropLast    bool
	workers     int
	materialize bool
	collate     bool
}

// RunOption configures Map, Filter and Batch
type RunOption func(*runConfig)

func newRunConfig(opts []RunOption) runConfig {
	rc := runConfig{
		ctx:         context.Background(),
		batchSize:   1,
		materialize: true,
		collate:     true,
	}
	for _, opt := range opts {
		opt(&rc)
	}
	if rc.ctx == nil {
		rc.ctx = context.Background()
	}
	return rc
}

// WithIndices passes the absolute row indices of each chunk as the second
// argument
func WithIndices() RunOption {
	return func(rc *runConfig) { rc.withIndices = true }
}

// Batched declares whether the function takes a whole chunk. Without it the
// shape is inferred by trial calls.
func Batched(batched bool) RunOption {
	return func(rc *runConfig) { rc.batched = &batched }
}

// BatchSize sets the number of rows per chunk
func BatchSize(n int) RunOption {
	return func(rc *runConfig) { rc.batchSize = n }
}

// DropLastBatch skips a final chunk shorter than the batch size
func DropLastBatch() RunOption {
	return func(rc *runConfig) { rc.dropLast = true }
}

// Workers processes up to n chunks concurrently. Output order is unchanged.
func Workers(n int) RunOption {
	return func(rc *runConfig) { rc.workers = n }
}

// Lazy hands deferred cells to the function without loading them
func Lazy() RunOption {
	return func(rc *runConfig) { rc.materialize = false }
}

// WithContext sets the parent context for tracing and cancellation
func WithContext(ctx context.Context) RunOption {
	return func(rc *runConfig) { rc.ctx = ctx }
}

// NoCollate makes Batch yield raw rows instead of columns
func NoCollate() RunOption {
	return func(rc *runConfig) { rc.collate = false }
}

// MapDefaults converts configured defaults into run options. Options passed
// after them take precedence.
func MapDefaults(cfg config.MapConfig) []RunOption {
	opts := []RunOption{BatchSize(cfg.BatchSize), Workers(cfg.Workers)}
	if cfg.DropLastBatch {
		opts = append(opts, DropLastBatch())
	}
	if !cfg.Materialize {
		opts = append(opts, Lazy())
	}
	return opts
}
