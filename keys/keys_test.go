package keys

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestEscapeMatchesEscKey(t *testing.T) {
	msg := tea.KeyMsg{Type: tea.KeyEsc}
	assert.True(t, Matches(msg, KeyEscape))

	name, ok := Lookup(msg)
	assert.True(t, ok)
	assert.Equal(t, KeyEscape, name)
}

func TestEscapeDoesNotMatchOtherKeys(t *testing.T) {
	assert.False(t, Matches(tea.KeyMsg{Type: tea.KeyEnter}, KeyEscape))
	assert.False(t, Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}, KeyEscape))
}

func TestDebugBindings(t *testing.T) {
	assert.True(t, Matches(tea.KeyMsg{Type: tea.KeyCtrlG}, KeyDebugList))
	assert.True(t, Matches(tea.KeyMsg{Type: tea.KeyCtrlT}, KeyDebugTop))
	assert.True(t, Matches(tea.KeyMsg{Type: tea.KeyCtrlX}, KeyDebugClear))
}

func TestEveryMappedKeyHasABinding(t *testing.T) {
	for str, name := range GlobalKeyStringsMap {
		binding, ok := GlobalkeyBindings[name]
		if assert.True(t, ok, "no binding for %q", str) {
			assert.Contains(t, binding.Keys(), str)
		}
	}
}

func TestGlobalKeyBindings_HelpLabels(t *testing.T) {
	if got := GlobalkeyBindings[KeyEscape].Help().Desc; got != "close" {
		t.Fatalf("KeyEscape help desc = %q, want %q", got, "close")
	}
	if got := GlobalkeyBindings[KeyDebugClear].Help().Key; got != "ctrl+x" {
		t.Fatalf("KeyDebugClear help key = %q, want %q", got, "ctrl+x")
	}
}

func TestUnknownBindingNeverMatches(t *testing.T) {
	assert.False(t, Matches(tea.KeyMsg{Type: tea.KeyEsc}, KeyName(999)))
}
