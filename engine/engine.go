package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"nexterror/diagnostics"
	"nexterror/editor"
	"nexterror/logger"
	"nexterror/metrics"
	"nexterror/navigate"

	"github.com/google/uuid"
	"github.com/neovim/go-client/nvim"
)

// DefaultNavigationTimeout bounds one navigation including editor round-trips
const DefaultNavigationTimeout = 2 * time.Second

// eventHandlerName is the rpcnotify method the plugin sends commands on
const eventHandlerName = "nexterror_event"

var errStopped = errors.New("engine not running")

type EngineConfig struct {
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	SmoothScroll      bool

	// Snapshots are extra diagnostic sources merged after the editor's own
	Snapshots []diagnostics.Source
}

// Navigator runs navigation commands for one editor session
type Navigator interface {
	Run(ctx context.Context, cmd navigate.Command) (navigate.Result, error)
	State() *navigate.State
}

// session is everything tied to one editor connection
type session struct {
	id        string
	navigator Navigator
	tracker   *metrics.Tracker
}

type Engine struct {
	sessions  map[string]*session // by id, one per editor connection
	mu        sync.RWMutex
	eventChan chan Event

	// Main context and cancel for the engine lifecycle
	mainCtx    context.Context
	mainCancel context.CancelFunc
	stopped    bool
	stopOnce   sync.Once

	config EngineConfig

	// onResult is called after each navigation, used by tests
	onResult func(navigate.Command, navigate.Result, error)
}

func NewEngine(config EngineConfig) *Engine {
	if config.NavigationTimeout <= 0 {
		config.NavigationTimeout = DefaultNavigationTimeout
	}
	return &Engine{
		sessions:  make(map[string]*session),
		eventChan: make(chan Event, 100),
		config:    config,
	}
}

func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}

	// Create main context for engine lifecycle
	e.mainCtx, e.mainCancel = context.WithCancel(ctx)
	e.mu.Unlock()

	go e.eventLoop(e.mainCtx)
	logger.Info("engine started")
}

// Stop shuts down the event loop and ends every session
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		logger.Info("stopping engine...")

		e.stopped = true
		if e.mainCancel != nil {
			e.mainCancel()
		}
		// eventChan stays open; senders select on mainCtx instead
		for id := range e.sessions {
			e.endSessionUnsafe(id)
		}

		logger.Info("engine stopped")
	})
}

func (e *Engine) eventLoop(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event loop panic recovered: %v", r)
			e.eventLoop(e.mainCtx) // Restart the event loop
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-e.eventChan:
			if !ok {
				return
			}

			e.mu.RLock()
			stopped := e.stopped
			e.mu.RUnlock()
			if stopped {
				return
			}

			// Wrap event handling in its own recovery
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Error("event handler panic recovered for event %v: %v", event.Type, r)
					}
				}()
				e.handleEvent(ctx, event)
			}()
		}
	}
}

func (e *Engine) handleEvent(ctx context.Context, event Event) {
	e.mu.RLock()
	s := e.sessions[event.Session]
	e.mu.RUnlock()

	if s == nil {
		logger.Debug("dropping %s event: session %q is gone", event.Type, event.Session)
		return
	}

	switch event.Type {
	case EventNavigate:
		cmd, _ := event.Data.(navigate.Command)
		e.navigate(ctx, s, cmd)
	case EventReset:
		s.navigator.State().Clear()
		logger.Debug("session %s: navigation state cleared", s.id)
	}
}

// navigate runs one command without holding e.mu, so new events can queue meanwhile
func (e *Engine) navigate(ctx context.Context, s *session, cmd navigate.Command) {
	ctx, cancel := context.WithTimeout(ctx, e.config.NavigationTimeout)
	defer cancel()

	res, err := s.navigator.Run(ctx, cmd)
	if err != nil {
		logger.Error("session %s: %s failed: %v", s.id, cmd, err)
	} else if res.Found {
		logger.Debug("session %s: %s -> %s:%s (%s)", s.id, cmd, res.Document, res.Position, res.Severity)
	}

	s.tracker.Track(cmd, res, err)
	if e.onResult != nil {
		e.onResult(cmd, res, err)
	}
}

// Dispatch queues a navigation command or "reset" from session sessionID for the event loop
func (e *Engine) Dispatch(sessionID, name string) error {
	event, err := EventFromString(name)
	if err != nil {
		return err
	}
	event.Session = sessionID

	e.mu.RLock()
	stopped := e.stopped
	mainCtx := e.mainCtx
	e.mu.RUnlock()
	if stopped || mainCtx == nil {
		return errStopped
	}

	select {
	case e.eventChan <- event:
		return nil
	case <-mainCtx.Done():
		return errStopped
	}
}

// startSession registers a new session next to the existing ones. Navigation
// state never carries over from one connection to another.
func (e *Engine) startSession(nav Navigator) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := uuid.New().String()
	e.sessions[id] = &session{
		id:        id,
		navigator: nav,
		tracker:   metrics.NewTracker(id),
	}
	logger.Info("session %s started, %d active", id, len(e.sessions))
	return id
}

func (e *Engine) endSessionUnsafe(id string) {
	s, ok := e.sessions[id]
	if !ok {
		return
	}
	s.tracker.LogSummary()
	delete(e.sessions, id)
}

// SetNvim attaches a new nvim connection and starts a session for it,
// returning the session id
func (e *Engine) SetNvim(n *nvim.Nvim) (string, error) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return "", errStopped
	}
	e.mu.Unlock()

	ed := editor.New(editor.Config{SmoothScroll: e.config.SmoothScroll})
	ed.SetClient(n)

	gatherer := diagnostics.NewGatherer(ed)
	for _, s := range e.config.Snapshots {
		gatherer.Add(s)
	}

	nav := navigate.New(ed, ed, gatherer, nil, navigate.Config{SettleDelay: e.config.SettleDelay})
	id := e.startSession(nav)

	// Commands from this connection only ever reach its own session
	if err := n.RegisterHandler(eventHandlerName, func(_ *nvim.Nvim, name string) {
		if err := e.Dispatch(id, name); err != nil {
			logger.Warn("ignoring event %q: %v", name, err)
		}
	}); err != nil {
		return id, fmt.Errorf("register %s handler: %w", eventHandlerName, err)
	}
	return id, nil
}

// EndSession closes session id, logging its summary. Other sessions are left alone.
func (e *Engine) EndSession(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endSessionUnsafe(id)
}

// Sessions returns the ids of the active sessions, sorted
func (e *Engine) Sessions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Sorted(maps.Keys(e.sessions))
}
