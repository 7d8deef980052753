package devtools

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/layerstack/layer"
	"github.com/kastheco/layerstack/log"
)

// DefaultKey is the namespace key a stack's debug surface is attached under.
const DefaultKey = "layers"

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// KeySender delivers a synthetic key message the same way a terminal
// keypress would arrive. *tea.Program satisfies it.
type KeySender interface {
	Send(msg tea.Msg)
}

// Options configures Attach.
type Options struct {
	// Mode disables the debug surface when set to ModeProduction.
	Mode string
	// Key overrides DefaultKey.
	Key string
	// Namespace defaults to Global.
	Namespace *Namespace
	// Sender receives the Escape key SimulateEscape synthesizes. Without one
	// SimulateEscape is a no-op.
	Sender KeySender
	// Out receives List output when List is called with a nil writer.
	Out io.Writer
}

// LayerDebug is the debug surface of one stack.
type LayerDebug struct {
	stack  *layer.Stack
	sender KeySender
	out    io.Writer
}

// Attach publishes a debug surface for stack under opts.Key and detaches it
// when the stack is closed. It returns nil in production mode.
func Attach(stack *layer.Stack, opts Options) *LayerDebug {
	if strings.EqualFold(opts.Mode, ModeProduction) {
		return nil
	}
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	ns := opts.Namespace
	if ns == nil {
		ns = Global
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	d := &LayerDebug{stack: stack, sender: opts.Sender, out: out}
	stack.OnTeardown(ns.Attach(key, d))
	return d
}

// Lookup returns the debug surface attached under key, if any.
func Lookup(ns *Namespace, key string) (*LayerDebug, bool) {
	if ns == nil {
		ns = Global
	}
	v, ok := ns.Get(key)
	if !ok {
		return nil, false
	}
	d, ok := v.(*LayerDebug)
	return d, ok
}

// List writes a table of every open layer to w, bottom layer first. A nil w
// writes to the writer configured at Attach time.
func (d *LayerDebug) List(w io.Writer) error {
	if w == nil {
		w = d.out
	}
	return WriteTable(w, d.stack.Layers())
}

// DescribeTop summarizes the current top layer in one line.
func (d *LayerDebug) DescribeTop() string {
	top, ok := d.stack.Top()
	if !ok {
		return "no open layers"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s priority=%d", top.Kind(), top.ID, top.Priority())
	if label := sanitizeLabel(top.AriaLabel()); label != "" {
		fmt.Fprintf(&b, " label=%q", label)
	}
	if ft := top.Base().FocusTrap; ft != "" {
		fmt.Fprintf(&b, " focus=%s", ft)
	}
	if m, ok := top.Modal(); ok && m.IsDirty {
		b.WriteString(" dirty")
	}
	fmt.Fprintf(&b, " (%d open)", d.stack.Count())
	return b.String()
}

// SimulateEscape injects an Escape keypress through the configured sender.
// It reports whether a key was sent.
func (d *LayerDebug) SimulateEscape() bool {
	if d.sender == nil {
		return false
	}
	d.sender.Send(tea.KeyMsg{Type: tea.KeyEsc})
	return true
}

// ClearAll drops every layer without running any callbacks.
func (d *LayerDebug) ClearAll() int {
	n := d.stack.Clear()
	log.InfoLog.Printf("devtools: cleared %d layer(s)", n)
	return n
}
