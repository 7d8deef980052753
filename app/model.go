package app

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/layerstack/devtools"
	"github.com/kastheco/layerstack/keys"
	"github.com/kastheco/layerstack/layer"
)

// layered wraps an application model so that Escape reaches the layer
// stack before the application sees it.
type layered struct {
	inner      tea.Model
	dispatcher *Dispatcher
	debug      *devtools.LayerDebug
	// status holds the output of the last debug key, shown under the view.
	status string
}

// WithLayers wraps inner. Escape closes the top layer of stack; the inner
// model receives the Escape key only when no layer was open to take it, and
// it receives every EscapeResultMsg so it can react to closes and failures.
func WithLayers(ctx context.Context, inner tea.Model, stack *layer.Stack) tea.Model {
	return &layered{inner: inner, dispatcher: NewDispatcher(ctx, stack)}
}

// WithDebug is like WithLayers but also answers the debug key bindings
// using dbg. A nil dbg disables them.
func WithDebug(ctx context.Context, inner tea.Model, stack *layer.Stack, dbg *devtools.LayerDebug) tea.Model {
	return &layered{inner: inner, dispatcher: NewDispatcher(ctx, stack), debug: dbg}
}

func (m *layered) Init() tea.Cmd {
	return m.inner.Init()
}

func (m *layered) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, ok := m.dispatcher.Handle(msg); ok {
			return m, cmd
		}
		if m.debug != nil && m.handleDebugKey(msg) {
			return m, nil
		}
	case EscapeResultMsg:
		var cmds []tea.Cmd
		m.inner, cmds = m.forward(msg, cmds)
		if msg.Unclaimed() {
			m.inner, cmds = m.forward(tea.KeyMsg{Type: tea.KeyEsc}, cmds)
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.inner, cmd = m.inner.Update(msg)
	return m, cmd
}

func (m *layered) forward(msg tea.Msg, cmds []tea.Cmd) (tea.Model, []tea.Cmd) {
	inner, cmd := m.inner.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return inner, cmds
}

func (m *layered) handleDebugKey(msg tea.KeyMsg) bool {
	name, ok := keys.Lookup(msg)
	if !ok {
		return false
	}
	switch name {
	case keys.KeyDebugList:
		var b strings.Builder
		_ = m.debug.List(&b)
		m.status = strings.TrimRight(b.String(), "\n")
	case keys.KeyDebugTop:
		m.status = m.debug.DescribeTop()
	case keys.KeyDebugClear:
		m.debug.ClearAll()
		m.status = m.debug.DescribeTop()
	default:
		return false
	}
	return true
}

func (m *layered) View() string {
	if m.status == "" {
		return m.inner.View()
	}
	return m.inner.View() + "\n" + m.status
}
