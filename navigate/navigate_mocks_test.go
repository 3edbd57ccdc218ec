package navigate

import (
	"context"
	"errors"

	"nexterror/types"
)

// --- Mock implementations ---

// call records one request made to the editor
type call struct {
	name string
	doc  types.DocumentID
	pos  types.Position
}

// fakeEditor implements Host, Presenter and DiagnosticProvider for testing
type fakeEditor struct {
	docs    map[types.DocumentID][]types.Diagnostic
	active  types.DocumentID // empty means no focused document
	cursor  types.Position
	visible []types.Range
	smooth  bool

	// lineLen, when set, clamps the cursor column to the last character of a
	// line the way Neovim does in normal mode
	lineLen map[int]int

	// Failure injection
	activeErr error
	cursorErr error
	openErr   error
	diagErr   error

	// Track method calls
	calls []call
}

func newFakeEditor(active types.DocumentID, cursor types.Position) *fakeEditor {
	return &fakeEditor{
		docs:   map[types.DocumentID][]types.Diagnostic{},
		active: active,
		cursor: cursor,
		visible: []types.Range{
			{Start: types.Position{Line: 0}, End: types.Position{Line: 10000}},
		},
	}
}

func (f *fakeEditor) add(doc types.DocumentID, line, col int, sev types.Severity) *fakeEditor {
	f.docs[doc] = append(f.docs[doc], types.Diagnostic{
		Document: doc,
		Position: types.Position{Line: line, Column: col},
		Severity: sev,
	})
	return f
}

func (f *fakeEditor) record(name string, pos types.Position) {
	f.calls = append(f.calls, call{name: name, doc: f.active, pos: pos})
}

func (f *fakeEditor) callNames() []string {
	names := make([]string, len(f.calls))
	for i, c := range f.calls {
		names[i] = c.name
	}
	return names
}

func (f *fakeEditor) Diagnostics(_ context.Context, doc types.DocumentID) ([]types.Diagnostic, error) {
	if f.diagErr != nil {
		return nil, f.diagErr
	}
	return f.docs[doc], nil
}

func (f *fakeEditor) AllDiagnostics(_ context.Context) (map[types.DocumentID][]types.Diagnostic, error) {
	if f.diagErr != nil {
		return nil, f.diagErr
	}
	return f.docs, nil
}

func (f *fakeEditor) ActiveDocument(_ context.Context) (types.DocumentID, types.Position, bool, error) {
	if f.activeErr != nil {
		return "", types.Position{}, false, f.activeErr
	}
	return f.active, f.cursor, f.active != "", nil
}

func (f *fakeEditor) SetCursor(_ context.Context, pos types.Position) (types.Position, error) {
	if f.cursorErr != nil {
		return types.Position{}, f.cursorErr
	}
	if n, ok := f.lineLen[pos.Line]; ok {
		pos.Column = min(pos.Column, max(n-1, 0))
	}
	f.cursor = pos
	f.record("set_cursor", pos)
	return pos, nil
}

func (f *fakeEditor) VisibleRanges(_ context.Context) ([]types.Range, error) {
	return f.visible, nil
}

func (f *fakeEditor) Reveal(_ context.Context, pos types.Position) error {
	f.record("reveal", pos)
	return nil
}

func (f *fakeEditor) OpenDocument(_ context.Context, doc types.DocumentID) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.active = doc
	f.cursor = types.Position{}
	f.record("open", types.Position{})
	return nil
}

func (f *fakeEditor) SmoothScroll(_ context.Context) bool { return f.smooth }

func (f *fakeEditor) DismissPopup(_ context.Context) {
	f.record("dismiss", f.cursor)
}

func (f *fakeEditor) ShowDetail(_ context.Context) {
	f.record("detail", f.cursor)
}

var errBoom = errors.New("boom")

func newTestNavigator(f *fakeEditor) *Navigator {
	return New(f, f, f, nil, Config{})
}

func pos(line, col int) types.Position {
	return types.Position{Line: line, Column: col}
}
