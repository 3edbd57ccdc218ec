package navigate

import (
	"context"
	"fmt"
	"slices"

	"nexterror/logger"
	"nexterror/types"
)

// InFiles navigates to the next/previous marker in the active document, falling
// back to the first (Next) or last (Prev) marker of the next document that has
// matching diagnostics. Documents are visited in ascending ID order, cyclically.
func (n *Navigator) InFiles(ctx context.Context, filter types.SeveritySet, dir types.Direction) (Result, error) {
	doc, cursor, ok, err := n.host.ActiveDocument(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("get active document: %w", err)
	}
	if !ok {
		return Result{}, nil
	}

	res, err := n.inDocument(ctx, n.state, doc, cursor, filter, dir, false)
	if err != nil || res.Found {
		return res, err
	}

	all, err := n.provider.AllDiagnostics(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("get all diagnostics: %w", err)
	}
	docs := documentsWith(all, filter)

	switch {
	case len(docs) == 0:
		return Result{}, nil
	case len(docs) == 1 && docs[0] == doc:
		// Only the active document has markers: wrap around inside it.
		return n.inDocument(ctx, n.state, doc, cursor, filter, dir, true)
	}

	target := docs[(slices.Index(docs, doc)+1)%len(docs)]
	marker := edge(types.Filter(all[target], filter), dir)

	logger.Debug("navigate: %s has no more markers, moving to %s", doc, target)
	if err := n.host.OpenDocument(ctx, target); err != nil {
		return Result{}, fmt.Errorf("open %s: %w", target, err)
	}
	if err := n.jump(ctx, n.state, target, marker.Position); err != nil {
		return Result{}, err
	}

	return Result{
		Found:     true,
		Document:  target,
		Position:  marker.Position,
		Severity:  marker.Severity,
		Moved:     true,
		CrossFile: true,
	}, nil
}

// documentsWith lists documents having at least one diagnostic in filter, sorted by ID
func documentsWith(all map[types.DocumentID][]types.Diagnostic, filter types.SeveritySet) []types.DocumentID {
	var docs []types.DocumentID
	for doc, diags := range all {
		if slices.ContainsFunc(diags, func(d types.Diagnostic) bool { return filter.Has(d.Severity) }) {
			docs = append(docs, doc)
		}
	}
	slices.Sort(docs)
	return docs
}
