package layer

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistration_Lifecycle(t *testing.T) {
	s := New()
	var stale, fresh atomic.Int32

	cfg := modal(PrioritySettings, "settings")
	cfg.OnEscape = counter(&stale)
	reg := s.Open(cfg)
	require.True(t, reg.Active())

	top, ok := s.Top()
	require.True(t, ok)
	assert.Equal(t, reg.ID(), top.ID)

	reg.SetOnEscape(func(ctx context.Context) error {
		fresh.Add(1)
		reg.Close()
		return nil
	})

	closed, err := s.CloseTop(context.Background())
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, int32(0), stale.Load())
	assert.Equal(t, int32(1), fresh.Load())
	assert.False(t, reg.Active())
	assert.Equal(t, 0, s.Count())

	assert.NotPanics(t, reg.Close)
}

func TestRegistration_SetOnEscapeAfterCloseIsIgnored(t *testing.T) {
	s := New()
	reg := s.Open(overlay(PriorityContextMenu, "menu"))
	reg.Close()

	var calls atomic.Int32
	reg.SetOnEscape(counter(&calls))
	assert.Equal(t, 0, s.Count())
}

func TestRegistration_InactiveAfterClear(t *testing.T) {
	s := New()
	reg := s.Open(modal(PriorityConfirm, "confirm"))
	s.Clear()
	assert.False(t, reg.Active())
	assert.NotPanics(t, reg.Close)
}

func TestNamedPrioritiesOrderSurfaces(t *testing.T) {
	s := New()
	s.Open(overlay(PriorityContextMenu, "menu"))
	s.Open(modal(PriorityHelp, "help"))
	s.Open(modal(PriorityConfirm, "confirm"))
	s.Open(modal(PriorityQuitConfirm, "quit"))

	assert.Equal(t, []string{"menu", "help", "confirm", "quit"}, labels(s.Layers()))
}
