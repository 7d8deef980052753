package app

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/layerstack/layer"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#c4a7e7"))
	layerStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6e6a86")).Padding(0, 1)
	topStyle   = layerStyle.BorderForeground(lipgloss.Color("#f6c177"))
	descStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#908caa"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#eb6f92"))
)

// demo is a small interactive playground for the layer stack. Every layer it
// opens lives only in the stack; escape callbacks run off the update loop
// and touch nothing but the stack and atomics.
type demo struct {
	stack *layer.Stack
	// dirty guards the confirm dialog; it is read from OnBeforeClose.
	dirty   atomic.Bool
	message string
	quit    bool
}

// NewDemo returns the model behind `layerstack demo`.
func NewDemo(stack *layer.Stack) tea.Model {
	return &demo{stack: stack}
}

func (d *demo) Init() tea.Cmd {
	return nil
}

func (d *demo) open(cfg layer.Config) {
	reg := d.stack.Open(cfg)
	reg.SetOnEscape(func(context.Context) error {
		reg.Close()
		return nil
	})
}

func (d *demo) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EscapeResultMsg:
		switch {
		case msg.Err != nil:
			d.message = errStyle.Render(msg.Err.Error())
		case msg.Closed:
			d.message = "closed " + msg.LayerID
		case !msg.Unclaimed():
			d.message = "close vetoed: unsaved changes (w to save)"
		}
		return d, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			// Only reached when no layer was open.
			d.message = "nothing to close (q quits)"
		case "q", "ctrl+c":
			d.quit = true
			return d, tea.Quit
		case "s":
			d.open(&layer.ModalConfig{Base: layer.Base{
				Priority:          layer.PrioritySettings,
				AriaLabel:         "Settings",
				BlocksLowerLayers: true,
				CapturesFocus:     true,
				FocusTrap:         layer.FocusTrapStrict,
			}})
		case "c":
			d.dirty.Store(true)
			d.open(&layer.ModalConfig{
				Base: layer.Base{
					Priority:          layer.PriorityConfirm,
					AriaLabel:         "ConfirmDialog",
					BlocksLowerLayers: true,
					CapturesFocus:     true,
					FocusTrap:         layer.FocusTrapStrict,
				},
				IsDirty: true,
				OnBeforeClose: func(context.Context) (bool, error) {
					return !d.dirty.Load(), nil
				},
			})
		case "w":
			d.dirty.Store(false)
			d.message = "saved"
		case "m":
			d.open(&layer.OverlayConfig{
				Base:              layer.Base{Priority: layer.PriorityContextMenu, AriaLabel: "ContextMenu"},
				AllowClickOutside: true,
			})
		case "t":
			d.open(&layer.OverlayConfig{Base: layer.Base{Priority: layer.PriorityTooltip, AriaLabel: "Tooltip"}})
		}
	}
	return d, nil
}

func (d *demo) View() string {
	if d.quit {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("layerstack demo"))
	b.WriteString("\n\n")

	layers := d.stack.Layers()
	if len(layers) == 0 {
		b.WriteString(descStyle.Render("no open layers"))
		b.WriteString("\n")
	}
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		style := layerStyle
		if i == len(layers)-1 {
			style = topStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%-8s %-14s %5d", l.Kind(), l.AriaLabel(), l.Priority())))
		b.WriteString("\n")
	}

	if d.message != "" {
		b.WriteString("\n" + d.message + "\n")
	}
	b.WriteString("\n" + descStyle.Render("s settings · c confirm · m menu · t tooltip · w save · esc close · q quit"))
	return b.String()
}
