package navigate

import (
	"context"

	"nexterror/types"
)

// DiagnosticProvider supplies the diagnostics currently reported by the editor.
// Implemented by diagnostics.Gatherer.
type DiagnosticProvider interface {
	// Diagnostics returns the diagnostics of a single document, in provider order
	Diagnostics(ctx context.Context, doc types.DocumentID) ([]types.Diagnostic, error)
	// AllDiagnostics returns the diagnostics of every tracked document
	AllDiagnostics(ctx context.Context) (map[types.DocumentID][]types.Diagnostic, error)
}

// Host is the editor hosting the documents.
// Implemented by editor.NvimEditor and editor.Memory.
type Host interface {
	// ActiveDocument returns the focused document and its cursor.
	// ok is false when no document is focused.
	ActiveDocument(ctx context.Context) (doc types.DocumentID, cursor types.Position, ok bool, err error)
	// SetCursor moves the cursor to pos and returns where it ended up, which
	// differs from pos when the editor clamps it
	SetCursor(ctx context.Context, pos types.Position) (types.Position, error)
	VisibleRanges(ctx context.Context) ([]types.Range, error)
	Reveal(ctx context.Context, pos types.Position) error
	// OpenDocument loads (if needed) and focuses a document
	OpenDocument(ctx context.Context, doc types.DocumentID) error
	SmoothScroll(ctx context.Context) bool
}

// Presenter displays marker details. Requests are fire-and-forget.
type Presenter interface {
	DismissPopup(ctx context.Context)
	ShowDetail(ctx context.Context)
}
