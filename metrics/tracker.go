package metrics

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"nexterror/logger"
	"nexterror/navigate"
)

type Outcome string

const (
	OutcomeFound     Outcome = "found"
	OutcomeCrossFile Outcome = "cross_file"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeFailed    Outcome = "failed"
)

// Classify maps the result of one navigation to an outcome
func Classify(res navigate.Result, err error) Outcome {
	switch {
	case err != nil:
		return OutcomeFailed
	case !res.Found:
		return OutcomeNotFound
	case !res.Moved:
		return OutcomeUnchanged
	case res.CrossFile:
		return OutcomeCrossFile
	default:
		return OutcomeFound
	}
}

// Summary is a point-in-time copy of a tracker's counters
type Summary struct {
	SessionID string
	Started   time.Time
	Commands  map[navigate.Command]int
	Outcomes  map[Outcome]int
}

func (s Summary) Total() int {
	n := 0
	for _, c := range s.Commands {
		n += c
	}
	return n
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "session %s: %d navigations in %s", s.SessionID, s.Total(), time.Since(s.Started).Round(time.Second))
	for _, o := range slices.Sorted(maps.Keys(s.Outcomes)) {
		fmt.Fprintf(&b, " %s=%d", o, s.Outcomes[o])
	}
	return b.String()
}

// Tracker counts navigations for one editor session. Nothing leaves the process;
// the summary is written to the log when the session ends.
type Tracker struct {
	mu      sync.Mutex
	summary Summary
}

func NewTracker(sessionID string) *Tracker {
	return &Tracker{summary: Summary{
		SessionID: sessionID,
		Started:   time.Now(),
		Commands:  make(map[navigate.Command]int),
		Outcomes:  make(map[Outcome]int),
	}}
}

func (t *Tracker) Track(cmd navigate.Command, res navigate.Result, err error) {
	outcome := Classify(res, err)

	t.mu.Lock()
	t.summary.Commands[cmd]++
	t.summary.Outcomes[outcome]++
	t.mu.Unlock()

	logger.Debug("metrics: %s -> %s", cmd, outcome)
}

func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Summary{
		SessionID: t.summary.SessionID,
		Started:   t.summary.Started,
		Commands:  maps.Clone(t.summary.Commands),
		Outcomes:  maps.Clone(t.summary.Outcomes),
	}
}

func (t *Tracker) LogSummary() {
	s := t.Summary()
	if s.Total() == 0 {
		return
	}
	logger.Info("%s", s)
}
