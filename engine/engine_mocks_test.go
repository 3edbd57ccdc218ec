package engine

import (
	"context"
	"sync"
	"time"

	"nexterror/metrics"
	"nexterror/navigate"
)

// mockNavigator implements Navigator for testing
type mockNavigator struct {
	mu     sync.Mutex
	state  *navigate.State
	calls  []navigate.Command
	result navigate.Result
	err    error
	block  chan struct{} // when set, Run waits on it or ctx
	panics bool
}

func newMockNavigator() *mockNavigator {
	return &mockNavigator{state: navigate.NewState()}
}

func (m *mockNavigator) Run(ctx context.Context, cmd navigate.Command) (navigate.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	block, panics := m.block, m.panics
	res, err := m.result, m.err
	m.mu.Unlock()

	if panics {
		panic("navigator exploded")
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return navigate.Result{}, ctx.Err()
		}
	}
	return res, err
}

func (m *mockNavigator) State() *navigate.State { return m.state }

func (m *mockNavigator) Calls() []navigate.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]navigate.Command(nil), m.calls...)
}

type trackedResult struct {
	cmd navigate.Command
	res navigate.Result
	err error
}

// newTestEngine starts an engine with one session wired to nav and returns its id
// and a channel of navigation results
func newTestEngine(nav Navigator, config EngineConfig) (*Engine, string, chan trackedResult) {
	results := make(chan trackedResult, 10)
	e := NewEngine(config)
	e.onResult = func(cmd navigate.Command, res navigate.Result, err error) {
		results <- trackedResult{cmd, res, err}
	}
	e.Start(context.Background())
	id := e.startSession(nav)
	return e, id, results
}

func (e *Engine) trackerFor(id string) *metrics.Tracker {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sessions[id].tracker
}

func waitResult(results chan trackedResult) (trackedResult, bool) {
	select {
	case r := <-results:
		return r, true
	case <-time.After(2 * time.Second):
		return trackedResult{}, false
	}
}
