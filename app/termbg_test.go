package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTermBg_EmitsOSC11AndRestores(t *testing.T) {
	var buf bytes.Buffer
	restore := setTermBg(&buf, colorBase)
	assert.Equal(t, "\033]11;#232136\033\\", buf.String())

	buf.Reset()
	restore()
	assert.Equal(t, "\033]111\033\\", buf.String())
}

func TestSetTermBg_EmptyColor(t *testing.T) {
	var buf bytes.Buffer
	restore := setTermBg(&buf, "")
	assert.Zero(t, buf.Len())
	assert.NotPanics(t, restore)
}

func TestSetTerminalBackground_SkipsNonTerminals(t *testing.T) {
	var buf bytes.Buffer
	restore := setTerminalBackground(&buf, colorBase)
	restore()
	assert.Zero(t, buf.Len())
}
