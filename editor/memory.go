package editor

import (
	"context"
	"fmt"
	"math"
	"sync"

	"nexterror/types"
)

// DefaultViewportHeight is the number of lines a Memory editor shows
const DefaultViewportHeight = 40

// Memory is an in-process editor with no UI, used by the headless locate command.
// It implements navigate.Host and navigate.Presenter.
type Memory struct {
	mu        sync.Mutex
	documents map[types.DocumentID]bool
	active    types.DocumentID
	cursor    types.Position
	top       int // first visible line
	height    int
	smooth    bool
	popupOpen bool
	events    []string
}

func NewMemory(height int) *Memory {
	if height <= 0 {
		height = DefaultViewportHeight
	}
	return &Memory{
		documents: make(map[types.DocumentID]bool),
		height:    height,
	}
}

// AddDocument makes doc openable
func (m *Memory) AddDocument(doc types.DocumentID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[doc] = true
}

// Focus makes doc the active document with the cursor at pos, scrolled into view
func (m *Memory) Focus(doc types.DocumentID, pos types.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[doc] = true
	m.active = doc
	m.cursor = pos
	m.scrollTo(pos.Line)
}

func (m *Memory) SetSmoothScroll(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.smooth = enabled
}

// Cursor returns the active document and cursor
func (m *Memory) Cursor() (types.DocumentID, types.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.cursor
}

// Events returns the requests received so far, oldest first
func (m *Memory) Events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...)
}

func (m *Memory) PopupOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.popupOpen
}

func (m *Memory) ActiveDocument(_ context.Context) (types.DocumentID, types.Position, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.cursor, m.active != "", nil
}

func (m *Memory) SetCursor(_ context.Context, pos types.Position) (types.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursor = pos
	m.events = append(m.events, fmt.Sprintf("cursor %s:%s", m.active, pos))
	return pos, nil
}

func (m *Memory) VisibleRanges(_ context.Context) ([]types.Range, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return []types.Range{{
		Start: types.Position{Line: m.top},
		End:   types.Position{Line: m.top + m.height - 1, Column: math.MaxInt},
	}}, nil
}

func (m *Memory) Reveal(_ context.Context, pos types.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrollTo(pos.Line)
	m.events = append(m.events, fmt.Sprintf("reveal %d", pos.Line+1))
	return nil
}

func (m *Memory) OpenDocument(_ context.Context, doc types.DocumentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.documents[doc] {
		return fmt.Errorf("no such document: %s", doc)
	}
	m.active = doc
	m.cursor = types.Position{}
	m.top = 0
	m.events = append(m.events, fmt.Sprintf("open %s", doc))
	return nil
}

func (m *Memory) SmoothScroll(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.smooth
}

func (m *Memory) DismissPopup(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.popupOpen {
		m.events = append(m.events, "dismiss")
	}
	m.popupOpen = false
}

func (m *Memory) ShowDetail(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.popupOpen = true
	m.events = append(m.events, "detail")
}

// scrollTo centers line in the viewport. Caller holds m.mu.
func (m *Memory) scrollTo(line int) {
	if line >= m.top && line < m.top+m.height {
		return
	}
	m.top = max(0, line-m.height/2)
}
