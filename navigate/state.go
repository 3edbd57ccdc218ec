package navigate

import "nexterror/types"

// State remembers the last marker selected by navigation in one session.
// The zero value is an empty state.
type State struct {
	document types.DocumentID
	position types.Position // the marker
	landed   types.Position // where the editor actually put the cursor
	set      bool
}

// NewState returns an empty navigation state
func NewState() *State {
	return &State{}
}

// Last returns the last selected document and position; ok is false when empty
func (s *State) Last() (doc types.DocumentID, pos types.Position, ok bool) {
	return s.document, s.position, s.set
}

// Remember records pos in doc as the last selected marker, with the cursor on it
func (s *State) Remember(doc types.DocumentID, pos types.Position) {
	s.remember(doc, pos, pos)
}

// Clear forgets the last selected marker
func (s *State) Clear() {
	*s = State{}
}

// remember records a jump to marker that left the cursor at landed. Editors clamp
// the cursor, e.g. to the last character of a line in normal mode.
func (s *State) remember(doc types.DocumentID, marker, landed types.Position) {
	s.document = doc
	s.position = marker
	s.landed = landed
	s.set = true
}

// forDocument clears the state if it belongs to another document and reports
// whether anything is remembered for doc.
func (s *State) forDocument(doc types.DocumentID) bool {
	if s.set && s.document != doc {
		s.Clear()
	}
	return s.set
}

// stalled reports whether the cursor still sits where the previous jump left it,
// meaning the user has not moved. It returns the marker of that jump.
func (s *State) stalled(doc types.DocumentID, cursor types.Position) (types.Position, bool) {
	if !s.forDocument(doc) || !cursor.Equal(s.landed) {
		return types.Position{}, false
	}
	return s.position, true
}
