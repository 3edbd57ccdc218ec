package navigate

import (
	"context"
	"fmt"
	"time"

	"nexterror/logger"
	"nexterror/types"
)

// DefaultSettleDelay is how long to wait after a reveal before showing details.
// A smooth-scroll animation still in flight would otherwise close the popup.
const DefaultSettleDelay = 150 * time.Millisecond

type Config struct {
	SettleDelay time.Duration
}

// Result describes the outcome of one navigation
type Result struct {
	Found     bool
	Document  types.DocumentID
	Position  types.Position
	Severity  types.Severity
	Moved     bool // false when the cursor already sat on the only reachable marker
	CrossFile bool // the jump landed in another document
}

// Navigator runs marker navigation for one session and owns that session's State
type Navigator struct {
	host      Host
	presenter Presenter
	provider  DiagnosticProvider
	state     *State
	config    Config
}

// New creates a Navigator. A nil state starts a fresh session.
func New(host Host, presenter Presenter, provider DiagnosticProvider, state *State, config Config) *Navigator {
	if state == nil {
		state = NewState()
	}
	return &Navigator{
		host:      host,
		presenter: presenter,
		provider:  provider,
		state:     state,
		config:    config,
	}
}

func (n *Navigator) State() *State { return n.state }

// InFile navigates to the next/previous marker matching filter in the active document.
// With loop set, running off either end wraps to the other end.
func (n *Navigator) InFile(ctx context.Context, filter types.SeveritySet, dir types.Direction, loop bool) (Result, error) {
	doc, cursor, ok, err := n.host.ActiveDocument(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("get active document: %w", err)
	}
	if !ok {
		return Result{}, nil
	}
	return n.inDocument(ctx, n.state, doc, cursor, filter, dir, loop)
}

func (n *Navigator) inDocument(ctx context.Context, st *State, doc types.DocumentID, cursor types.Position, filter types.SeveritySet, dir types.Direction, loop bool) (Result, error) {
	all, err := n.provider.Diagnostics(ctx, doc)
	if err != nil {
		return Result{}, fmt.Errorf("get diagnostics for %s: %w", doc, err)
	}
	diags := types.Filter(all, filter)

	var stalledAt *types.Position
	if marker, ok := st.stalled(doc, cursor); ok {
		// search from the marker itself, the editor may have clamped the cursor
		cursor = marker
		stalledAt = &marker
	}

	if len(diags) == 0 {
		return Result{}, nil
	}

	target, found := pick(diags, cursor, dir, loop, stalledAt)
	switch found {
	case outcomeNotFound:
		return Result{}, nil
	case outcomeUnchanged:
		logger.Debug("navigate: %s already on only marker at %s", doc, target.Position)
		return Result{Found: true, Document: doc, Position: target.Position, Severity: target.Severity}, nil
	}

	if err := n.jump(ctx, st, doc, target.Position); err != nil {
		return Result{}, err
	}
	return Result{
		Found:    true,
		Document: doc,
		Position: target.Position,
		Severity: target.Severity,
		Moved:    true,
	}, nil
}

// jump moves the cursor onto pos in the (already focused) document doc and
// presents the marker. The state is only updated once the cursor has moved.
func (n *Navigator) jump(ctx context.Context, st *State, doc types.DocumentID, pos types.Position) error {
	landed, err := n.host.SetCursor(ctx, pos)
	if err != nil {
		return fmt.Errorf("set cursor to %s:%s: %w", doc, pos, err)
	}
	st.remember(doc, pos, landed)
	logger.Debug("navigate: jumped to %s:%s", doc, pos)

	n.presenter.DismissPopup(ctx)

	if !n.visible(ctx, pos) {
		if err := n.host.Reveal(ctx, pos); err != nil {
			logger.Warn("navigate: reveal %s:%s: %v", doc, pos, err)
		}
		n.settle(ctx)
	}

	n.presenter.ShowDetail(ctx)
	return nil
}

// visible reports whether pos lies in any visible range. Unknown viewports count as offscreen.
func (n *Navigator) visible(ctx context.Context, pos types.Position) bool {
	ranges, err := n.host.VisibleRanges(ctx)
	if err != nil {
		logger.Warn("navigate: get visible ranges: %v", err)
		return false
	}
	for _, r := range ranges {
		if r.Contains(pos) {
			return true
		}
	}
	return false
}

// settle waits for a smooth-scroll animation to finish, if the host animates scrolling
func (n *Navigator) settle(ctx context.Context) {
	if n.config.SettleDelay <= 0 || !n.host.SmoothScroll(ctx) {
		return
	}
	timer := time.NewTimer(n.config.SettleDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
