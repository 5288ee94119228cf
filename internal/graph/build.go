package graph

import (
	"context"
	"io/fs"
	"path"

	"github.com/sinedied/azd-infra/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of module reads in flight.
const DefaultConcurrency = 8

// Result is the raw output of BuildGraph.
type Result struct {
	Graph   Graph
	All     []string
	Missing []string
	Outside map[string][]string
}

// Observer is told about every module the builder has processed.
type Observer func(module string, processed int)

type options struct {
	concurrency int
	observer    Observer
}

// Option configures BuildGraph and Resolve.
type Option func(*options)

// WithConcurrency sets how many module reads may run at once. Values below
// one fall back to sequential reads.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithObserver registers fn to be called once per processed module, from the
// goroutine running BuildGraph.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observer = fn
	}
}

func newOptions(opts []Option) options {
	o := options{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type loaded struct {
	content string
	err     error
}

// BuildGraph resolves seeds and everything they reference transitively.
//
// Modules are processed in first-discovery order. A module that cannot be
// loaded is recorded as missing and contributes no edges. Each distinct
// module is loaded at most once, so reference cycles terminate. Loads of one
// wavefront may run concurrently; their results are committed in queue order
// so the output does not depend on scheduling. References escaping the root
// of fsys are collected in Outside and dropped from the graph.
func BuildGraph(ctx context.Context, fsys fs.FS, d Dialect, seeds []string, opts ...Option) (*Result, error) {
	cfg := newOptions(opts)
	logger := ctxlog.FromContext(ctx)

	result := &Result{
		Graph:   make(Graph),
		All:     make([]string, 0, len(seeds)),
		Missing: make([]string, 0),
	}

	seen := make(map[string]bool, len(seeds))
	queue := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		seed = path.Clean(seed)
		if seen[seed] {
			continue
		}
		seen[seed] = true
		result.All = append(result.All, seed)
		queue = append(queue, seed)
	}
	if len(queue) == 0 {
		return nil, ErrNoSeeds
	}

	processed := 0
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		wave := queue
		queue = make([]string, 0)

		contents, err := loadWave(ctx, fsys, d, wave, cfg.concurrency)
		if err != nil {
			return nil, err
		}

		for i, module := range wave {
			processed++
			if cfg.observer != nil {
				cfg.observer(module, processed)
			}

			if contents[i].err != nil {
				logger.Debug("module not found", "module", module, "error", contents[i].err)
				result.Missing = append(result.Missing, module)
				continue
			}

			deps := make([]string, 0)
			for _, dep := range d.Extract(contents[i].content, d.Dir(module)) {
				if !fs.ValidPath(dep) {
					logger.Debug("reference outside of the template tree", "module", module, "reference", dep)
					if result.Outside == nil {
						result.Outside = make(map[string][]string)
					}
					result.Outside[dep] = append(result.Outside[dep], module)
					continue
				}
				deps = append(deps, dep)
			}
			result.Graph[module] = deps

			for _, dep := range deps {
				logger.Debug("found dependency", "module", module, "dependency", dep)
				if seen[dep] {
					continue
				}
				seen[dep] = true
				result.All = append(result.All, dep)
				queue = append(queue, dep)
			}
		}
	}

	return result, nil
}

func loadWave(ctx context.Context, fsys fs.FS, d Dialect, wave []string, limit int) ([]loaded, error) {
	contents := make([]loaded, len(wave))

	if limit <= 1 || len(wave) == 1 {
		for i, module := range wave {
			content, err := d.Load(fsys, module)
			contents[i] = loaded{content: content, err: err}
		}
		return contents, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, module := range wave {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := d.Load(fsys, module)
			contents[i] = loaded{content: content, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return contents, nil
}
