package navigate

import (
	"context"
	"testing"

	"nexterror/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("nextInFiles.warning")
	require.NoError(t, err)
	assert.Equal(t, CommandNextWarningInFiles, cmd)

	_, err = ParseCommand("next.hint")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestCommands_AllEightRegistered(t *testing.T) {
	assert.Len(t, Commands(), 8)
	assert.Contains(t, Commands(), CommandPrevErrorInFiles)
}

func TestRun_UnknownCommand(t *testing.T) {
	nav := newTestNavigator(newFakeEditor("main.go", pos(0, 0)))

	_, err := nav.Run(context.Background(), Command("bogus"))

	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestRun_WarningPriorityInFile(t *testing.T) {
	for _, cursor := range []types.Position{pos(0, 0), pos(3, 0), pos(5, 0), pos(9, 0)} {
		f := newFakeEditor("main.go", cursor).
			add("main.go", 2, 0, types.SeverityError).
			add("main.go", 6, 0, types.SeverityWarning)
		nav := newTestNavigator(f)

		res, err := nav.Run(context.Background(), CommandNextWarning)

		require.NoError(t, err)
		assert.Equal(t, pos(6, 0), res.Position, "cursor %s", cursor)
		assert.Equal(t, types.SeverityWarning, res.Severity)
	}
}

func TestRun_WarningThenErrorFallsBackToErrors(t *testing.T) {
	f := newFakeEditor("main.go", pos(0, 0)).
		add("main.go", 2, 0, types.SeverityError).
		add("main.go", 4, 0, types.SeverityInfo)
	nav := newTestNavigator(f)

	res, err := nav.Run(context.Background(), CommandNextWarning)

	require.NoError(t, err)
	assert.Equal(t, pos(2, 0), res.Position)
}

func TestRun_WarningPriorityAcrossFiles(t *testing.T) {
	f := newFakeEditor("a.go", pos(0, 0)).
		add("a.go", 3, 0, types.SeverityError).
		add("b.go", 8, 0, types.SeverityWarning)
	nav := newTestNavigator(f)

	res, err := nav.Run(context.Background(), CommandNextWarningInFiles)

	require.NoError(t, err)
	assert.Equal(t, types.DocumentID("b.go"), res.Document, "a warning anywhere restricts navigation to warnings")
	assert.Equal(t, pos(8, 0), res.Position)
}

func TestRun_ErrorCommandsIgnoreWarnings(t *testing.T) {
	f := newFakeEditor("a.go", pos(5, 0)).
		add("a.go", 3, 0, types.SeverityError).
		add("a.go", 4, 0, types.SeverityWarning)
	nav := newTestNavigator(f)

	res, err := nav.Run(context.Background(), CommandPrevError)

	require.NoError(t, err)
	assert.Equal(t, pos(3, 0), res.Position)
}

func TestRun_DispatchTable(t *testing.T) {
	tests := []struct {
		cmd      Command
		wantDoc  types.DocumentID
		wantLine int
	}{
		{CommandNextError, "b.go", 1},
		{CommandPrevError, "b.go", 1},
		{CommandNextErrorInFiles, "c.go", 0},
		{CommandPrevErrorInFiles, "c.go", 7},
	}

	for _, tt := range tests {
		t.Run(string(tt.cmd), func(t *testing.T) {
			f := newFakeEditor("b.go", pos(1, 0)).
				add("b.go", 1, 0, types.SeverityError).
				add("c.go", 0, 0, types.SeverityError).
				add("c.go", 7, 0, types.SeverityError)
			state := NewState()
			state.Remember("b.go", pos(1, 0)) // cursor already sits on b.go's only marker
			nav := New(f, f, f, state, Config{})

			res, err := nav.Run(context.Background(), tt.cmd)

			require.NoError(t, err)
			assert.True(t, res.Found)
			assert.Equal(t, tt.wantDoc, res.Document)
			assert.Equal(t, tt.wantLine, res.Position.Line)
		})
	}
}
