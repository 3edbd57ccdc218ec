package navigate

import (
	"slices"

	"nexterror/types"
)

type outcome int

const (
	outcomeNotFound outcome = iota
	outcomeFound
	// outcomeUnchanged: wrapped around onto the marker the cursor already sits on.
	// Counts as found, but nothing moves.
	outcomeUnchanged
)

// ahead reports whether candidate lies at or beyond the cursor in direction dir,
// and is strictly closer than best. A nil best accepts any candidate that is ahead.
// Ties with best keep best, so the first diagnostic in provider order wins.
func ahead(dir types.Direction, cursor, candidate types.Position, best *types.Diagnostic) bool {
	sign := dir.Sign()
	if sign*candidate.Compare(cursor) < 0 {
		return false
	}
	return best == nil || sign*candidate.Compare(best.Position) < 0
}

// pick selects the diagnostic to jump to.
//
// stalledAt is the last selected position when the cursor has not left it; a
// diagnostic at that exact position is skipped so repeated invocations advance.
// When nothing lies ahead and loop is set, pick wraps to the first (Next) or last
// (Prev) diagnostic by position.
func pick(diags []types.Diagnostic, cursor types.Position, dir types.Direction, loop bool, stalledAt *types.Position) (types.Diagnostic, outcome) {
	var best *types.Diagnostic
	for i := range diags {
		d := &diags[i]
		if stalledAt != nil && d.Position.Equal(*stalledAt) {
			continue
		}
		if ahead(dir, cursor, d.Position, best) {
			best = d
		}
	}
	if best != nil {
		return *best, outcomeFound
	}

	if !loop || len(diags) == 0 {
		return types.Diagnostic{}, outcomeNotFound
	}

	wrapped := edge(diags, dir)
	if stalledAt != nil && wrapped.Position.Equal(*stalledAt) {
		return wrapped, outcomeUnchanged
	}
	return wrapped, outcomeFound
}

// edge returns the first (Next) or last (Prev) diagnostic by position.
// diags must not be empty.
func edge(diags []types.Diagnostic, dir types.Direction) types.Diagnostic {
	sorted := sortByPosition(diags)
	if dir == types.DirectionPrev {
		return sorted[len(sorted)-1]
	}
	return sorted[0]
}

// sortByPosition returns a stably sorted copy, so equal positions keep provider order
func sortByPosition(diags []types.Diagnostic) []types.Diagnostic {
	sorted := slices.Clone(diags)
	slices.SortStableFunc(sorted, func(a, b types.Diagnostic) int {
		return a.Position.Compare(b.Position)
	})
	return sorted
}
