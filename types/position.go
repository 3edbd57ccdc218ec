package types

import "fmt"

// Position is a location in a document (0-indexed line, 0-indexed column)
type Position struct {
	Line   int
	Column int
}

// Compare orders positions by line, then column.
// Returns -1 if p is before o, 0 if equal, 1 if after.
func (p Position) Compare(o Position) int {
	switch {
	case p.Line < o.Line:
		return -1
	case p.Line > o.Line:
		return 1
	case p.Column < o.Column:
		return -1
	case p.Column > o.Column:
		return 1
	default:
		return 0
	}
}

// Before reports whether p comes strictly before o
func (p Position) Before(o Position) bool { return p.Compare(o) < 0 }

// Equal reports whether p and o are the same position
func (p Position) Equal(o Position) bool { return p.Compare(o) == 0 }

// After reports whether p comes strictly after o
func (p Position) After(o Position) bool { return p.Compare(o) > 0 }

// BeforeOrEqual reports whether p comes before o or equals it
func (p Position) BeforeOrEqual(o Position) bool { return p.Compare(o) <= 0 }

// AfterOrEqual reports whether p comes after o or equals it
func (p Position) AfterOrEqual(o Position) bool { return p.Compare(o) >= 0 }

// String renders the position 1-indexed, the way editors display it
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Range is an inclusive span of positions
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether p lies within the range, both ends inclusive
func (r Range) Contains(p Position) bool {
	return r.Start.BeforeOrEqual(p) && p.BeforeOrEqual(r.End)
}
