package types

import (
	"fmt"
	"strings"
)

// DocumentID is the canonical identifier of a document (absolute path in Neovim).
// Documents are ordered by plain string comparison of their IDs.
type DocumentID string

// Severity follows LSP conventions (1 = error ... 4 = hint)
type Severity int

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
	SeverityInfo    Severity = 3
	SeverityHint    Severity = 4
)

// String returns the string representation of a severity
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// ParseSeverity parses a severity name or LSP number. Unknown input is an error.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "e", "1":
		return SeverityError, nil
	case "warning", "warn", "w", "2":
		return SeverityWarning, nil
	case "info", "information", "i", "3":
		return SeverityInfo, nil
	case "hint", "h", "4":
		return SeverityHint, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// SeveritySet is a set of severities used to filter diagnostics
type SeveritySet uint8

// SeveritiesOf builds a set from the given severities
func SeveritiesOf(severities ...Severity) SeveritySet {
	var set SeveritySet
	for _, s := range severities {
		if s >= SeverityError && s <= SeverityHint {
			set |= 1 << uint(s)
		}
	}
	return set
}

func (s SeveritySet) Has(severity Severity) bool {
	if severity < SeverityError || severity > SeverityHint {
		return false
	}
	return s&(1<<uint(severity)) != 0
}

func (s SeveritySet) String() string {
	var names []string
	for sev := SeverityError; sev <= SeverityHint; sev++ {
		if s.Has(sev) {
			names = append(names, sev.String())
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Diagnostic is a single reported issue anchored at a position.
// Message and Source are informational and never affect navigation.
type Diagnostic struct {
	Document DocumentID
	Position Position
	Severity Severity
	Message  string
	Source   string
}

// Filter returns the diagnostics whose severity is in set, preserving order
func Filter(diagnostics []Diagnostic, set SeveritySet) []Diagnostic {
	var out []Diagnostic
	for _, d := range diagnostics {
		if set.Has(d.Severity) {
			out = append(out, d)
		}
	}
	return out
}

// Direction of navigation
type Direction int

const (
	DirectionNext Direction = iota
	DirectionPrev
)

func (d Direction) String() string {
	if d == DirectionPrev {
		return "prev"
	}
	return "next"
}

// Sign is +1 for Next and -1 for Prev. Multiplying a Compare result by the
// sign turns "after" into "ahead in the direction of travel".
func (d Direction) Sign() int {
	if d == DirectionPrev {
		return -1
	}
	return 1
}
