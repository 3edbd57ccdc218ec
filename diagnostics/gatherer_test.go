package diagnostics

import (
	"context"
	"errors"
	"testing"
	"time"

	"nexterror/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	name  string
	diags []types.Diagnostic
	err   error
	delay time.Duration
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) wait(ctx context.Context) error {
	if s.delay == 0 {
		return s.err
	}
	select {
	case <-time.After(s.delay):
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *stubSource) Diagnostics(ctx context.Context, doc types.DocumentID) ([]types.Diagnostic, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	var out []types.Diagnostic
	for _, d := range s.diags {
		if d.Document == doc {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *stubSource) AllDiagnostics(ctx context.Context) (map[types.DocumentID][]types.Diagnostic, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return NewSnapshot(s.name, s.diags).AllDiagnostics(ctx)
}

func diag(doc types.DocumentID, line int, sev types.Severity, msg string) types.Diagnostic {
	return types.Diagnostic{Document: doc, Position: types.Position{Line: line}, Severity: sev, Message: msg}
}

func TestGatherer_MergesInSourceOrder(t *testing.T) {
	slow := &stubSource{name: "slow", delay: 20 * time.Millisecond, diags: []types.Diagnostic{
		diag("a.go", 5, types.SeverityError, "first"),
	}}
	fast := &stubSource{name: "fast", diags: []types.Diagnostic{
		diag("a.go", 1, types.SeverityWarning, "second"),
		diag("b.go", 1, types.SeverityWarning, "other"),
	}}
	g := NewGatherer(slow, fast)

	diags, err := g.Diagnostics(context.Background(), "a.go")

	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.Equal(t, "first", diags[0].Message)
	assert.Equal(t, "second", diags[1].Message)
}

func TestGatherer_AllDiagnostics(t *testing.T) {
	g := NewGatherer(
		&stubSource{name: "one", diags: []types.Diagnostic{diag("a.go", 1, types.SeverityError, "x")}},
		&stubSource{name: "two", diags: []types.Diagnostic{
			diag("a.go", 2, types.SeverityError, "y"),
			diag("b.go", 0, types.SeverityHint, "z"),
		}},
	)

	all, err := g.AllDiagnostics(context.Background())

	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, all["a.go"], 2)
	assert.Equal(t, "x", all["a.go"][0].Message)
	assert.Len(t, all["b.go"], 1)
}

func TestGatherer_SkipsFailingSource(t *testing.T) {
	g := NewGatherer(
		&stubSource{name: "broken", err: errors.New("boom")},
		&stubSource{name: "ok", diags: []types.Diagnostic{diag("a.go", 1, types.SeverityError, "x")}},
	)

	diags, err := g.Diagnostics(context.Background(), "a.go")

	require.NoError(t, err)
	assert.Len(t, diags, 1)
}

func TestGatherer_FailsWhenAllSourcesFail(t *testing.T) {
	boom := errors.New("boom")
	g := NewGatherer(
		&stubSource{name: "one", err: boom},
		&stubSource{name: "two", err: errors.New("bang")},
	)

	_, err := g.AllDiagnostics(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "one: boom")
	assert.Contains(t, err.Error(), "two: bang")
}

func TestGatherer_Timeout(t *testing.T) {
	g := NewGatherer(
		&stubSource{name: "stuck", delay: time.Second},
		&stubSource{name: "ok", diags: []types.Diagnostic{diag("a.go", 1, types.SeverityError, "x")}},
	)
	g.SetTimeout(10 * time.Millisecond)

	start := time.Now()
	diags, err := g.Diagnostics(context.Background(), "a.go")

	require.NoError(t, err)
	assert.Len(t, diags, 1)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestGatherer_NoSources(t *testing.T) {
	g := NewGatherer()

	diags, err := g.Diagnostics(context.Background(), "a.go")
	require.NoError(t, err)
	assert.Empty(t, diags)

	all, err := g.AllDiagnostics(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
