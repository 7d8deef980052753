package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/layerstack/internal/sentry"
	"github.com/kastheco/layerstack/keys"
	"github.com/kastheco/layerstack/layer"
	"github.com/kastheco/layerstack/log"
)

// EscapeResultMsg reports the outcome of one Escape keypress.
type EscapeResultMsg struct {
	// LayerID is the top layer when the key was handled; empty when the
	// stack had no layers.
	LayerID string
	Closed  bool
	Err     error
}

// Unclaimed reports whether no layer was open to take the Escape. Only an
// unclaimed Escape should fall through to the application's own handling;
// a vetoed close still belongs to the layer on top.
func (m EscapeResultMsg) Unclaimed() bool {
	return m.LayerID == "" && !m.Closed && m.Err == nil
}

// Dispatcher turns Escape keypresses into Stack.CloseTop calls.
type Dispatcher struct {
	ctx   context.Context
	stack *layer.Stack
}

func NewDispatcher(ctx context.Context, stack *layer.Stack) *Dispatcher {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Dispatcher{ctx: ctx, stack: stack}
}

func (d *Dispatcher) Stack() *layer.Stack {
	return d.stack
}

// Handle returns the command that closes the top layer when msg is the
// Escape key. ok is false for every other message.
func (d *Dispatcher) Handle(msg tea.Msg) (cmd tea.Cmd, ok bool) {
	k, isKey := msg.(tea.KeyMsg)
	if !isKey || !keys.Matches(k, keys.KeyEscape) {
		return nil, false
	}
	return d.escape, true
}

// escape runs one close attempt. It is a tea.Cmd so a slow OnBeforeClose
// never blocks the program's update loop.
func (d *Dispatcher) escape() tea.Msg {
	return d.Escape()
}

// Escape closes the top layer synchronously.
func (d *Dispatcher) Escape() EscapeResultMsg {
	top, _ := d.stack.Top()
	closed, err := d.stack.CloseTop(d.ctx)
	if err != nil {
		log.ErrorLog.Printf("escape: closing layer %s failed: %v", top.ID, err)
		var kind string
		if top.Config != nil {
			kind = string(top.Kind())
		}
		sentry.CaptureCloseError(err, top.ID, kind)
	}
	return EscapeResultMsg{LayerID: top.ID, Closed: closed, Err: err}
}

// DirectSender feeds messages straight into a Dispatcher without a running
// tea.Program. Escape commands run synchronously and their results are kept
// in order.
type DirectSender struct {
	d       *Dispatcher
	results []EscapeResultMsg
}

func NewDirectSender(d *Dispatcher) *DirectSender {
	return &DirectSender{d: d}
}

func (s *DirectSender) Send(msg tea.Msg) {
	cmd, ok := s.d.Handle(msg)
	if !ok {
		return
	}
	if res, isResult := cmd().(EscapeResultMsg); isResult {
		s.results = append(s.results, res)
	}
}

// Results returns every escape result seen so far.
func (s *DirectSender) Results() []EscapeResultMsg {
	out := make([]EscapeResultMsg, len(s.results))
	copy(out, s.results)
	return out
}

// Last returns the most recent escape result.
func (s *DirectSender) Last() (EscapeResultMsg, bool) {
	if len(s.results) == 0 {
		return EscapeResultMsg{}, false
	}
	return s.results[len(s.results)-1], true
}
