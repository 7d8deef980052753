package app

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/layerstack/devtools"
	"github.com/kastheco/layerstack/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spy records every message the wrapped model receives.
type spy struct {
	msgs []tea.Msg
}

func (s *spy) Init() tea.Cmd { return nil }

func (s *spy) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	s.msgs = append(s.msgs, msg)
	return s, nil
}

func (s *spy) View() string { return "inner" }

func (s *spy) escapes() int {
	n := 0
	for _, m := range s.msgs {
		if k, ok := m.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
			n++
		}
	}
	return n
}

// press feeds a key through the model and runs the resulting command, the
// way tea.Program would.
func press(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	m, cmd := m.Update(msg)
	if cmd != nil {
		if out := cmd(); out != nil {
			m, _ = m.Update(out)
		}
	}
	return m
}

func TestWithLayers_EscapeGoesToStackFirst(t *testing.T) {
	s := layer.New()
	reg := closingModal(s, 1, "settings")
	inner := &spy{}
	m := WithLayers(context.Background(), inner, s)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, reg.Active())
	assert.Equal(t, 0, inner.escapes())
	require.Len(t, inner.msgs, 1)
	res, ok := inner.msgs[0].(EscapeResultMsg)
	require.True(t, ok)
	assert.True(t, res.Closed)

	// Nothing is left, so the next Escape falls through.
	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, inner.escapes())
}

func TestWithLayers_VetoedEscapeDoesNotFallThrough(t *testing.T) {
	s := layer.New()
	s.Register(&layer.ModalConfig{
		Base:          layer.Base{Priority: 1},
		OnBeforeClose: func(context.Context) (bool, error) { return false, nil },
	})
	inner := &spy{}
	m := WithLayers(context.Background(), inner, s)

	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 0, inner.escapes())
	assert.Equal(t, 1, s.Count())
}

func TestWithLayers_OtherMessagesPassThrough(t *testing.T) {
	inner := &spy{}
	m := WithLayers(context.Background(), inner, layer.New())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	press(t, m, tea.WindowSizeMsg{Width: 10, Height: 5})
	assert.Len(t, inner.msgs, 2)
	assert.Equal(t, "inner", m.View())
}

func TestWithDebug_Keys(t *testing.T) {
	s := layer.New()
	dbg := devtools.Attach(s, devtools.Options{Namespace: devtools.NewNamespace()})
	s.Register(&layer.OverlayConfig{Base: layer.Base{Priority: layer.PriorityTooltip, AriaLabel: "tip"}})

	inner := &spy{}
	m := WithDebug(context.Background(), inner, s, dbg)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Contains(t, m.View(), "overlay")
	assert.Contains(t, m.View(), `label="tip"`)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Contains(t, m.View(), "PRIORITY")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.Equal(t, 0, s.Count())
	assert.Contains(t, m.View(), "no open layers")
	assert.Empty(t, inner.msgs)
}

func TestWithLayers_DebugKeysIgnoredWithoutDebugSurface(t *testing.T) {
	inner := &spy{}
	m := WithLayers(context.Background(), inner, layer.New())
	press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Len(t, inner.msgs, 1)
}
