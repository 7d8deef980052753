package app

import (
	"context"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/layerstack/devtools"
	"github.com/kastheco/layerstack/layer"
)

// Run is the main entrypoint for an interactive program whose Escape key is
// arbitrated by stack. Outside production mode the stack's debug surface is
// attached to devtools.Global and its key bindings are live.
func Run(ctx context.Context, inner tea.Model, stack *layer.Stack, mode string) error {
	restore := setTerminalBackground(os.Stdout, colorBase)
	defer restore()

	sender := &programSender{}
	dbg := devtools.Attach(stack, devtools.Options{Mode: mode, Sender: sender})

	p := tea.NewProgram(
		WithDebug(ctx, inner, stack, dbg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	sender.set(p)
	defer stack.Close()

	_, err := p.Run()
	return err
}

// programSender forwards to a program that is created after the debug
// surface needs its sender.
type programSender struct {
	mu sync.Mutex
	p  *tea.Program
}

func (s *programSender) set(p *tea.Program) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *programSender) Send(msg tea.Msg) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
