package navigate

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"nexterror/logger"
	"nexterror/types"
)

// ErrUnknownCommand is returned for command names that are not registered
var ErrUnknownCommand = errors.New("unknown navigation command")

// Command names a navigation entry point
type Command string

const (
	CommandNextError          Command = "next.error"
	CommandPrevError          Command = "prev.error"
	CommandNextErrorInFiles   Command = "nextInFiles.error"
	CommandPrevErrorInFiles   Command = "prevInFiles.error"
	CommandNextWarning        Command = "next.warning"
	CommandPrevWarning        Command = "prev.warning"
	CommandNextWarningInFiles Command = "nextInFiles.warning"
	CommandPrevWarningInFiles Command = "prevInFiles.warning"
)

type scope int

const (
	scopeFile scope = iota
	scopeFiles
)

type policy int

const (
	policyErrors policy = iota
	policyWarningThenError
)

type commandSpec struct {
	scope     scope
	policy    policy
	direction types.Direction
}

var commands = map[Command]commandSpec{
	CommandNextError:          {scopeFile, policyErrors, types.DirectionNext},
	CommandPrevError:          {scopeFile, policyErrors, types.DirectionPrev},
	CommandNextErrorInFiles:   {scopeFiles, policyErrors, types.DirectionNext},
	CommandPrevErrorInFiles:   {scopeFiles, policyErrors, types.DirectionPrev},
	CommandNextWarning:        {scopeFile, policyWarningThenError, types.DirectionNext},
	CommandPrevWarning:        {scopeFile, policyWarningThenError, types.DirectionPrev},
	CommandNextWarningInFiles: {scopeFiles, policyWarningThenError, types.DirectionNext},
	CommandPrevWarningInFiles: {scopeFiles, policyWarningThenError, types.DirectionPrev},
}

// ParseCommand validates a command name
func ParseCommand(s string) (Command, error) {
	cmd := Command(s)
	if _, ok := commands[cmd]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
	return cmd, nil
}

// Commands returns every registered command name, sorted
func Commands() []Command {
	names := make([]Command, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Run executes a navigation command. In-file commands wrap around; cross-file
// commands only wrap when the active document is the sole one with markers.
func (n *Navigator) Run(ctx context.Context, cmd Command) (Result, error) {
	spec, ok := commands[cmd]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	defer logger.Trace("navigate " + string(cmd))()

	switch {
	case spec.policy == policyErrors && spec.scope == scopeFile:
		return n.InFile(ctx, errorsOnly, spec.direction, true)
	case spec.policy == policyErrors:
		return n.InFiles(ctx, errorsOnly, spec.direction)
	case spec.scope == scopeFile:
		return n.WarningThenErrorInFile(ctx, spec.direction)
	default:
		return n.WarningThenErrorInFiles(ctx, spec.direction)
	}
}

// WarningThenErrorInFile navigates warnings of the active document if it has any,
// otherwise its errors. Wraps around.
func (n *Navigator) WarningThenErrorInFile(ctx context.Context, dir types.Direction) (Result, error) {
	doc, cursor, ok, err := n.host.ActiveDocument(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("get active document: %w", err)
	}
	if !ok {
		return Result{}, nil
	}

	filter, err := n.ActiveSeverities(ctx, doc)
	if err != nil {
		return Result{}, err
	}
	return n.inDocument(ctx, n.state, doc, cursor, filter, dir, true)
}

// WarningThenErrorInFiles navigates warnings across documents if any document
// has one, otherwise errors.
func (n *Navigator) WarningThenErrorInFiles(ctx context.Context, dir types.Direction) (Result, error) {
	filter, err := n.ActiveSeveritiesAll(ctx)
	if err != nil {
		return Result{}, err
	}
	return n.InFiles(ctx, filter, dir)
}
