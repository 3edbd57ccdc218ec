package engine

import (
	"nexterror/navigate"
)

type EventType string

const (
	EventNavigate EventType = "navigate"
	EventReset    EventType = "reset"
)

type Event struct {
	Type    EventType
	Session string // id of the session the event came from
	Data    any
}

// EventFromString maps a plugin notification to an event. Anything other than
// "reset" must name a navigation command.
func EventFromString(s string) (Event, error) {
	if s == string(EventReset) {
		return Event{Type: EventReset}, nil
	}
	cmd, err := navigate.ParseCommand(s)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: EventNavigate, Data: cmd}, nil
}
