package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nexterror/logger"
	"nexterror/types"

	"golang.org/x/sync/errgroup"
)

// GatherTimeout is the maximum time allowed for all sources to answer
const GatherTimeout = 500 * time.Millisecond

// Source supplies diagnostics for documents. The editor and snapshot files are sources.
type Source interface {
	Name() string
	Diagnostics(ctx context.Context, doc types.DocumentID) ([]types.Diagnostic, error)
	AllDiagnostics(ctx context.Context) (map[types.DocumentID][]types.Diagnostic, error)
}

// Gatherer queries its sources in parallel and merges their answers in source order.
// A failing source is logged and skipped; the gatherer fails only if every source does.
type Gatherer struct {
	sources []Source
	timeout time.Duration
}

func NewGatherer(sources ...Source) *Gatherer {
	return &Gatherer{sources: sources, timeout: GatherTimeout}
}

// SetTimeout overrides GatherTimeout. Zero disables the timeout.
func (g *Gatherer) SetTimeout(d time.Duration) {
	g.timeout = d
}

func (g *Gatherer) Add(s Source) {
	g.sources = append(g.sources, s)
}

func (g *Gatherer) Diagnostics(ctx context.Context, doc types.DocumentID) ([]types.Diagnostic, error) {
	results, err := gather(ctx, g, func(ctx context.Context, s Source) ([]types.Diagnostic, error) {
		return s.Diagnostics(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	var merged []types.Diagnostic
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

func (g *Gatherer) AllDiagnostics(ctx context.Context) (map[types.DocumentID][]types.Diagnostic, error) {
	results, err := gather(ctx, g, func(ctx context.Context, s Source) (map[types.DocumentID][]types.Diagnostic, error) {
		return s.AllDiagnostics(ctx)
	})
	if err != nil {
		return nil, err
	}

	merged := make(map[types.DocumentID][]types.Diagnostic)
	for _, r := range results {
		for doc, diags := range r {
			merged[doc] = append(merged[doc], diags...)
		}
	}
	return merged, nil
}

// gather runs query against every source. Results are indexed by source,
// failed sources leave a zero value.
func gather[T any](ctx context.Context, g *Gatherer, query func(context.Context, Source) (T, error)) ([]T, error) {
	if len(g.sources) == 0 {
		return nil, nil
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	results := make([]T, len(g.sources))
	errs := make([]error, len(g.sources))

	// a plain group: one broken source must not cancel its siblings
	var eg errgroup.Group
	for i, s := range g.sources {
		eg.Go(func() error {
			r, err := query(ctx, s)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", s.Name(), err)
				return nil
			}
			results[i] = r
			return nil
		})
	}
	eg.Wait() // always nil, failures are collected in errs

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			logger.Warn("diagnostics source failed: %v", err)
		}
	}
	if failed == len(g.sources) {
		return nil, errors.Join(errs...)
	}
	return results, nil
}
