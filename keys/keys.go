package keys

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type KeyName int

const (
	KeyEscape KeyName = iota // Escape closes the top layer.

	KeyDebugList  // Debug: print the layer table
	KeyDebugTop   // Debug: describe the top layer
	KeyDebugClear // Debug: force-clear every layer
)

// GlobalKeyStringsMap is a global, immutable map string to keybinding.
var GlobalKeyStringsMap = map[string]KeyName{
	"esc":    KeyEscape,
	"ctrl+g": KeyDebugList,
	"ctrl+t": KeyDebugTop,
	"ctrl+x": KeyDebugClear,
}

// GlobalkeyBindings is a global, immutable map of KeyName to keybinding.
var GlobalkeyBindings = map[KeyName]key.Binding{
	KeyEscape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	KeyDebugList: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "list layers"),
	),
	KeyDebugTop: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "top layer"),
	),
	KeyDebugClear: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "clear layers"),
	),
}

// Lookup resolves a key message to its binding name.
func Lookup(msg tea.KeyMsg) (KeyName, bool) {
	name, ok := GlobalKeyStringsMap[msg.String()]
	return name, ok
}

// Matches reports whether msg triggers the named binding.
func Matches(msg tea.KeyMsg, name KeyName) bool {
	binding, ok := GlobalkeyBindings[name]
	if !ok {
		return false
	}
	return key.Matches(msg, binding)
}
