package app

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// colorBase is the Rosé Pine Moon base the interactive program paints behind
// its layers.
const colorBase = "#232136"

// setTerminalBackground emits OSC 11 to set the terminal's default background
// and returns a function that restores it via OSC 111, so ANSI resets fall
// back to colorBase instead of the terminal's own default. Writers that are
// not terminals are left alone.
func setTerminalBackground(w io.Writer, hexColor string) func() {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}
	return setTermBg(w, hexColor)
}

// setTermBg is the testable core.
func setTermBg(w io.Writer, hexColor string) func() {
	if hexColor == "" {
		return func() {}
	}
	fmt.Fprintf(w, "\033]11;%s\033\\", hexColor)

	return func() {
		fmt.Fprint(w, "\033]111\033\\")
	}
}
