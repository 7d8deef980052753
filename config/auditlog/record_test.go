package auditlog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kastheco/layerstack/config/auditlog"
	"github.com/kastheco/layerstack/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_JournalsStackEvents(t *testing.T) {
	logger := newLogger(t)
	s := layer.New()
	stop := auditlog.Record(s, logger, "unit")

	boom := errors.New("boom")
	s.Register(&layer.OverlayConfig{Base: layer.Base{
		Priority:  layer.PriorityTooltip,
		AriaLabel: "tip",
		OnEscape:  func(context.Context) error { return boom },
	}})
	_, err := s.CloseTop(context.Background())
	require.ErrorIs(t, err, boom)
	s.Clear()

	stop()
	s.Register(&layer.OverlayConfig{})

	events, err := logger.Query(auditlog.QueryFilter{Source: "unit"})
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	assert.Equal(t, auditlog.EventStackCleared, events[0].Kind)
	assert.Equal(t, "warn", events[0].Level)
	assert.Equal(t, "cleared 1 layer(s)", events[0].Message)

	assert.Equal(t, auditlog.EventLayerCloseFailed, events[1].Kind)
	assert.Equal(t, "error", events[1].Level)
	assert.Contains(t, events[1].Message, "boom")

	reg := events[2]
	assert.Equal(t, auditlog.EventLayerRegistered, reg.Kind)
	assert.Equal(t, "overlay", reg.LayerKind)
	assert.Equal(t, layer.PriorityTooltip, reg.Priority)
	assert.Equal(t, 1, reg.Count)
	assert.Equal(t, "opened overlay tip at priority 100", reg.Message)
}
