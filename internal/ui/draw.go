package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Styles used by the panels.
var (
	styleDefault   = tcell.StyleDefault
	styleBar       = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBarTitle  = styleBar.Bold(true)
	styleButton    = tcell.StyleDefault.Background(tcell.ColorTeal).Foreground(tcell.ColorWhite)
	styleSurface   = tcell.StyleDefault.Background(tcell.NewRGBColor(24, 24, 32)).Foreground(tcell.ColorGray)
	stylePanel     = tcell.StyleDefault.Background(tcell.NewRGBColor(36, 36, 44)).Foreground(tcell.ColorSilver)
	stylePanelHead = stylePanel.Bold(true).Foreground(tcell.ColorWhite)
	styleSelected  = stylePanel.Reverse(true)
	styleEditable  = stylePanel.Foreground(tcell.ColorAqua)
	styleEditing   = tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	styleOverlay   = styleSurface.Foreground(tcell.ColorYellow)
	styleInfo      = tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorWhite)
	styleError     = tcell.StyleDefault.Background(tcell.ColorDarkRed).Foreground(tcell.ColorWhite)
	styleSplash    = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
)

// drawText writes text at (x, y) one grapheme cluster at a time, clipped to
// maxW cells. It returns the number of cells written.
func drawText(s tcell.Screen, x, y, maxW int, style tcell.Style, text string) int {
	n := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if w < 1 {
			w = 1
		}
		if n+w > maxW {
			break
		}
		runes := g.Runes()
		s.SetContent(x+n, y, runes[0], runes[1:], style)
		n += w
	}
	return n
}

// fill paints r with spaces in style.
func fill(s tcell.Screen, r Rect, style tcell.Style) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			s.SetContent(x, y, ' ', nil, style)
		}
	}
}

// drawBox outlines r. Cells outside the screen are dropped by tcell.
func drawBox(s tcell.Screen, r Rect, style tcell.Style) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	right, bottom := r.X+r.W-1, r.Y+r.H-1
	for x := r.X; x <= right; x++ {
		s.SetContent(x, r.Y, tcell.RuneHLine, nil, style)
		s.SetContent(x, bottom, tcell.RuneHLine, nil, style)
	}
	for y := r.Y; y <= bottom; y++ {
		s.SetContent(r.X, y, tcell.RuneVLine, nil, style)
		s.SetContent(right, y, tcell.RuneVLine, nil, style)
	}
	s.SetContent(r.X, r.Y, tcell.RuneULCorner, nil, style)
	s.SetContent(right, r.Y, tcell.RuneURCorner, nil, style)
	s.SetContent(r.X, bottom, tcell.RuneLLCorner, nil, style)
	s.SetContent(right, bottom, tcell.RuneLRCorner, nil, style)
}

// tcellColor converts a parsed log color.
func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
