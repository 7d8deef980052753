package app

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/layerstack/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closingModal(s *layer.Stack, priority int, label string) *layer.Registration {
	reg := s.Open(&layer.ModalConfig{Base: layer.Base{Priority: priority, AriaLabel: label}})
	reg.SetOnEscape(func(context.Context) error {
		reg.Close()
		return nil
	})
	return reg
}

func TestDispatcher_IgnoresOtherMessages(t *testing.T) {
	d := NewDispatcher(context.Background(), layer.New())

	for _, msg := range []tea.Msg{
		tea.KeyMsg{Type: tea.KeyEnter},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")},
		tea.WindowSizeMsg{Width: 80, Height: 24},
	} {
		cmd, ok := d.Handle(msg)
		assert.False(t, ok)
		assert.Nil(t, cmd)
	}
}

func TestDispatcher_EscapeClosesTopOnly(t *testing.T) {
	s := layer.New()
	settings := closingModal(s, layer.PrioritySettings, "settings")
	confirm := closingModal(s, layer.PriorityConfirm, "confirm")

	d := NewDispatcher(context.Background(), s)
	cmd, ok := d.Handle(tea.KeyMsg{Type: tea.KeyEsc})
	require.True(t, ok)
	require.NotNil(t, cmd)

	res, isResult := cmd().(EscapeResultMsg)
	require.True(t, isResult)
	assert.True(t, res.Closed)
	assert.NoError(t, res.Err)
	assert.Equal(t, confirm.ID(), res.LayerID)
	assert.False(t, res.Unclaimed())

	assert.False(t, confirm.Active())
	assert.True(t, settings.Active())
}

func TestDispatcher_EmptyStackIsUnclaimed(t *testing.T) {
	d := NewDispatcher(nil, layer.New())
	res := d.Escape()
	assert.False(t, res.Closed)
	assert.True(t, res.Unclaimed())
}

func TestDispatcher_VetoIsClaimed(t *testing.T) {
	s := layer.New()
	s.Register(&layer.ModalConfig{
		Base:          layer.Base{Priority: 1},
		OnBeforeClose: func(context.Context) (bool, error) { return false, nil },
	})
	res := NewDispatcher(context.Background(), s).Escape()
	assert.False(t, res.Closed)
	assert.False(t, res.Unclaimed())
	assert.Equal(t, 1, s.Count())
}

func TestDispatcher_ReportsCallbackErrors(t *testing.T) {
	s := layer.New()
	boom := errors.New("boom")
	s.Register(&layer.OverlayConfig{Base: layer.Base{
		Priority: 1,
		OnEscape: func(context.Context) error { return boom },
	}})

	res := NewDispatcher(context.Background(), s).Escape()
	assert.False(t, res.Closed)
	assert.ErrorIs(t, res.Err, boom)
	assert.False(t, res.Unclaimed())
}

func TestDirectSender(t *testing.T) {
	s := layer.New()
	closingModal(s, 1, "a")
	closingModal(s, 2, "b")

	sender := NewDirectSender(NewDispatcher(context.Background(), s))
	_, ok := sender.Last()
	assert.False(t, ok)

	sender.Send(tea.KeyMsg{Type: tea.KeyEnter})
	sender.Send(tea.KeyMsg{Type: tea.KeyEsc})
	sender.Send(tea.KeyMsg{Type: tea.KeyEsc})
	sender.Send(tea.KeyMsg{Type: tea.KeyEsc})

	results := sender.Results()
	require.Len(t, results, 3)
	assert.True(t, results[0].Closed)
	assert.True(t, results[1].Closed)
	assert.True(t, results[2].Unclaimed())

	last, ok := sender.Last()
	require.True(t, ok)
	assert.Equal(t, results[2], last)
}
