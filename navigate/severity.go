package navigate

import (
	"context"
	"fmt"

	"nexterror/types"
)

var (
	errorsOnly   = types.SeveritiesOf(types.SeverityError)
	warningsOnly = types.SeveritiesOf(types.SeverityWarning)
)

// prioritySeverities picks warnings if any exist among diags, otherwise errors.
// Never returns a mixed set.
func prioritySeverities(diags []types.Diagnostic) types.SeveritySet {
	for _, d := range diags {
		if d.Severity == types.SeverityWarning {
			return warningsOnly
		}
	}
	return errorsOnly
}

// ActiveSeverities evaluates the warning-then-error policy for a single document
func (n *Navigator) ActiveSeverities(ctx context.Context, doc types.DocumentID) (types.SeveritySet, error) {
	diags, err := n.provider.Diagnostics(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("get diagnostics for %s: %w", doc, err)
	}
	return prioritySeverities(diags), nil
}

// ActiveSeveritiesAll evaluates the warning-then-error policy over every tracked document
func (n *Navigator) ActiveSeveritiesAll(ctx context.Context) (types.SeveritySet, error) {
	all, err := n.provider.AllDiagnostics(ctx)
	if err != nil {
		return 0, fmt.Errorf("get all diagnostics: %w", err)
	}
	for _, diags := range all {
		if prioritySeverities(diags) == warningsOnly {
			return warningsOnly, nil
		}
	}
	return errorsOnly, nil
}
