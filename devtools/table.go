package devtools

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/kastheco/layerstack/layer"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const maxLabelWidth = 32

var headers = []string{"#", "ID", "KIND", "PRIORITY", "LABEL", "FOCUS", "FLAGS"}

// sanitizeLabel strips escape sequences a caller may have smuggled into a
// label and truncates it to a printable width.
func sanitizeLabel(s string) string {
	s = strings.TrimSpace(ansi.Strip(s))
	return runewidth.Truncate(s, maxLabelWidth, "…")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func flags(l layer.Layer) string {
	base := l.Base()
	var out []string
	if base.BlocksLowerLayers {
		out = append(out, "blocks")
	}
	if base.CapturesFocus {
		out = append(out, "focus")
	}
	if m, ok := l.Modal(); ok {
		if m.IsDirty {
			out = append(out, "dirty")
		}
		if m.OnBeforeClose != nil {
			out = append(out, "guarded")
		}
		if m.ParentModalID != "" {
			out = append(out, "parent="+m.ParentModalID)
		}
	}
	if o, ok := l.Overlay(); ok && o.AllowClickOutside {
		out = append(out, "click-outside")
	}
	return strings.Join(out, ",")
}

func rows(layers []layer.Layer) [][]string {
	out := make([][]string, len(layers))
	for i, l := range layers {
		focus := string(l.Base().FocusTrap)
		if focus == "" {
			focus = "-"
		}
		out[i] = []string{
			strconv.Itoa(i),
			l.ID,
			string(l.Kind()),
			strconv.Itoa(l.Priority()),
			sanitizeLabel(l.AriaLabel()),
			focus,
			flags(l),
		}
	}
	return out
}

// WriteTable writes layers to w as a table, bottom layer first.
func WriteTable(w io.Writer, layers []layer.Layer) error {
	_, err := io.WriteString(w, renderTable(w, layers)+"\n")
	return err
}

// renderTable draws layers as a table. Terminals get a rounded, colored
// table; anything else gets plain ASCII so logs and pipes stay readable.
func renderTable(w io.Writer, layers []layer.Layer) string {
	if len(layers) == 0 {
		return "no open layers"
	}

	data := rows(layers)
	t := table.New().Headers(headers...).Rows(data...)

	if !isTerminal(w) {
		return t.Border(lipgloss.ASCIIBorder()).String()
	}

	re := lipgloss.NewRenderer(w)
	header := re.NewStyle().Foreground(colorIris).Bold(true).Padding(0, 1)
	cell := re.NewStyle().Foreground(colorText).Padding(0, 1)
	top := len(data) - 1

	return t.
		Border(lipgloss.RoundedBorder()).
		BorderStyle(re.NewStyle().Foreground(colorMuted)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case row == top:
				return cell.Foreground(colorGold)
			case col == 2 && data[row][2] == string(layer.KindOverlay):
				return cell.Foreground(colorFoam)
			case col == 6 && strings.Contains(data[row][6], "dirty"):
				return cell.Foreground(colorLove)
			case col == 0:
				return cell.Foreground(colorSubtle)
			}
			return cell
		}).
		String()
}
