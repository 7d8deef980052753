package devtools

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/layerstack/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) {
	f.msgs = append(f.msgs, msg)
}

func TestAttach_ProductionReturnsNil(t *testing.T) {
	ns := NewNamespace()
	s := layer.New()
	assert.Nil(t, Attach(s, Options{Mode: ModeProduction, Namespace: ns}))
	assert.Empty(t, ns.Keys())
}

func TestAttach_RegistersAndDetachesOnClose(t *testing.T) {
	ns := NewNamespace()
	ns.Attach("other", true)
	s := layer.New()

	d := Attach(s, Options{Mode: ModeDevelopment, Namespace: ns})
	require.NotNil(t, d)

	got, ok := Lookup(ns, DefaultKey)
	require.True(t, ok)
	assert.Same(t, d, got)

	s.Close()
	_, ok = Lookup(ns, DefaultKey)
	assert.False(t, ok)
	assert.Equal(t, []string{"other"}, ns.Keys())
}

func TestAttach_CustomKey(t *testing.T) {
	ns := NewNamespace()
	a, b := layer.New(), layer.New()
	Attach(a, Options{Namespace: ns, Key: "main"})
	Attach(b, Options{Namespace: ns, Key: "popup"})
	assert.Equal(t, []string{"main", "popup"}, ns.Keys())
}

func TestLayerDebug_List(t *testing.T) {
	s := layer.New()
	d := Attach(s, Options{Namespace: NewNamespace()})

	var buf bytes.Buffer
	require.NoError(t, d.List(&buf))
	assert.Equal(t, "no open layers\n", buf.String())

	s.Register(&layer.OverlayConfig{Base: layer.Base{Priority: layer.PriorityContextMenu, AriaLabel: "menu"}, AllowClickOutside: true})
	s.Register(&layer.ModalConfig{Base: layer.Base{Priority: layer.PriorityConfirm, AriaLabel: "\x1b[31mconfirm\x1b[0m", FocusTrap: layer.FocusTrapStrict}, IsDirty: true})

	buf.Reset()
	require.NoError(t, d.List(&buf))
	out := buf.String()

	assert.Contains(t, out, "PRIORITY")
	assert.Contains(t, out, "click-outside")
	assert.Contains(t, out, "dirty")
	assert.NotContains(t, out, "\x1b[31m")
	assert.Less(t, strings.Index(out, "menu"), strings.Index(out, "confirm"))
}

func TestLayerDebug_ListDefaultsToConfiguredWriter(t *testing.T) {
	var buf bytes.Buffer
	s := layer.New()
	d := Attach(s, Options{Namespace: NewNamespace(), Out: &buf})
	require.NoError(t, d.List(nil))
	assert.Equal(t, "no open layers\n", buf.String())
}

func TestLayerDebug_DescribeTop(t *testing.T) {
	s := layer.New()
	d := Attach(s, Options{Namespace: NewNamespace()})
	assert.Equal(t, "no open layers", d.DescribeTop())

	id := s.Register(&layer.ModalConfig{
		Base:    layer.Base{Priority: 200, AriaLabel: "ConfirmDialog", FocusTrap: layer.FocusTrapStrict},
		IsDirty: true,
	})
	desc := d.DescribeTop()
	assert.True(t, strings.HasPrefix(desc, "modal "+id+" priority=200"))
	assert.Contains(t, desc, `label="ConfirmDialog"`)
	assert.Contains(t, desc, "focus=strict")
	assert.Contains(t, desc, "dirty")
	assert.True(t, strings.HasSuffix(desc, "(1 open)"))
}

func TestLayerDebug_SimulateEscape(t *testing.T) {
	s := layer.New()
	d := Attach(s, Options{Namespace: NewNamespace()})
	assert.False(t, d.SimulateEscape())

	sender := &fakeSender{}
	d = Attach(s, Options{Namespace: NewNamespace(), Sender: sender})
	assert.True(t, d.SimulateEscape())
	require.Len(t, sender.msgs, 1)
	assert.Equal(t, tea.KeyMsg{Type: tea.KeyEsc}, sender.msgs[0])
}

func TestLayerDebug_ClearAllSkipsCallbacks(t *testing.T) {
	s := layer.New()
	d := Attach(s, Options{Namespace: NewNamespace()})

	called := false
	s.Register(&layer.ModalConfig{
		Base:          layer.Base{Priority: 1, OnEscape: func(context.Context) error { called = true; return nil }},
		OnBeforeClose: func(context.Context) (bool, error) { called = true; return false, nil },
	})
	s.Register(&layer.OverlayConfig{Base: layer.Base{Priority: 2}})

	assert.Equal(t, 2, d.ClearAll())
	assert.False(t, called)
	assert.False(t, s.HasOpenLayers())
	assert.Equal(t, 0, d.ClearAll())
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "plain", sanitizeLabel("  plain "))
	assert.Equal(t, "red", sanitizeLabel("\x1b[31mred\x1b[0m"))
	long := strings.Repeat("x", 50)
	got := sanitizeLabel(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), maxLabelWidth)
}
