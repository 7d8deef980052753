package devtools

import "github.com/charmbracelet/lipgloss"

// Rosé Pine Moon palette.
// https://rosepinetheme.com/palette/
var (
	colorMuted  = lipgloss.Color("#6e6a86")
	colorSubtle = lipgloss.Color("#908caa")
	colorText   = lipgloss.Color("#e0def4")

	colorLove = lipgloss.Color("#eb6f92") // dirty modals
	colorGold = lipgloss.Color("#f6c177") // top layer
	colorFoam = lipgloss.Color("#9ccfd8") // overlays
	colorIris = lipgloss.Color("#c4a7e7") // headers, borders
)
