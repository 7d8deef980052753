package sentry

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_PassthroughToInner(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, LevelError)

	msg := []byte("escape callback failed\n")
	n, err := w.Write(msg)

	assert.NoError(t, err)
	assert.Equal(t, len(msg), n)
	assert.Equal(t, string(msg), buf.String())
}

func TestWriter_DisabledPassthroughAllLevels(t *testing.T) {
	enabled = false
	for _, lvl := range []Level{LevelInfo, LevelWarning, LevelError} {
		var buf bytes.Buffer
		w := NewWriter(&buf, lvl)

		n, err := w.Write([]byte("cleared 3 layers\n"))

		assert.NoError(t, err)
		assert.Equal(t, len("cleared 3 layers\n"), n)
		assert.Equal(t, "cleared 3 layers\n", buf.String())
	}
}

func TestWriter_BlankLineIsNotForwarded(t *testing.T) {
	enabled = false
	var buf bytes.Buffer
	w := NewWriter(&buf, LevelWarning)

	n, err := w.Write([]byte("   \n"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}
