package denorm

import (
	"time"

	"github.com/dbsmedya/gonest/internal/logger"
	"github.com/dbsmedya/gonest/internal/types"
)

// Transform nests rows according to opts.
//
// Rows must be grouped contiguously by root primary key; see extract. The result
// holds one row per root slot with the root's own columns followed by one
// []*types.Row entry per relationship, in declaration order. If a relationship
// name equals a root column, the list replaces that column's value in place.
//
// Every error matches ErrInvalidConfig and no partial result is returned.
func Transform(rows []*types.Row, opts Options) ([]*types.Row, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	acc, err := extract(rows, opts)
	if err != nil {
		return nil, err
	}
	return merge(acc, opts)
}

// Stats summarizes one Transformer run.
type Stats struct {
	InputRows       int
	RootRows        int
	Instances       map[string]int // relationship name -> instances across all root rows
	SkippedNullKeys int            // rows dropped from a relationship because its key was NULL
	Duration        time.Duration
}

// Transformer applies validated options repeatedly and logs each run.
// It holds no per-call state and is safe for concurrent use.
type Transformer struct {
	opts   Options
	logger *logger.Logger
}

// NewTransformer validates opts once. A nil logger discards output.
func NewTransformer(opts Options, log *logger.Logger) (*Transformer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Transformer{opts: opts, logger: log}, nil
}

// Options returns the options the transformer was built with.
func (t *Transformer) Options() Options {
	return t.opts
}

// Transform nests rows and reports what it did.
func (t *Transformer) Transform(rows []*types.Row) ([]*types.Row, *Stats, error) {
	start := time.Now()

	acc, err := extract(rows, t.opts)
	if err != nil {
		t.logger.Errorf("Extraction failed: %v", err)
		return nil, nil, err
	}
	out, err := merge(acc, t.opts)
	if err != nil {
		t.logger.Errorf("Merge failed: %v", err)
		return nil, nil, err
	}

	stats := &Stats{
		InputRows:       len(rows),
		RootRows:        len(out),
		Instances:       make(map[string]int, len(t.opts.Relationships)),
		SkippedNullKeys: acc.skipped,
		Duration:        time.Since(start),
	}
	for _, root := range out {
		for _, spec := range t.opts.Relationships {
			v, _ := root.Get(spec.Name)
			if items, ok := v.([]*types.Row); ok {
				stats.Instances[spec.Name] += len(items)
			}
		}
	}

	t.logger.Debugw("Nested rows",
		"input_rows", stats.InputRows,
		"root_rows", stats.RootRows,
		"skipped_null_keys", stats.SkippedNullKeys,
		"duration", stats.Duration,
	)
	for _, spec := range t.opts.Relationships {
		t.logger.WithRelationship(spec.Name).Debugf("Collected %d instances", stats.Instances[spec.Name])
	}

	return out, stats, nil
}
