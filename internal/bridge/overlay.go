package bridge

import (
	"math"
	"strconv"
)

// TopBarHeight is the fixed height of the top bar in CSS pixels.
const TopBarHeight = 30

// Bounds is the selected entity's box as reported by the engine: center and
// size as fractions of the viewport.
type Bounds struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Left returns the left edge as a viewport fraction.
func (b Bounds) Left() float64 { return b.X - b.Width/2 }

// Top returns the top edge as a viewport fraction, before the top bar offset.
func (b Bounds) Top() float64 { return b.Y - b.Height/2 }

// CSS returns the left, top, width and height style lengths used by the web
// editor for the overlay.
func (b Bounds) CSS() [4]string {
	return [4]string{
		jsNumber(b.Left()*100) + "vw",
		"calc(" + jsNumber(b.Top()*100) + "vh - " + strconv.Itoa(TopBarHeight) + "px)",
		jsNumber(b.Width*100) + "vw",
		jsNumber(b.Height*100) + "vh",
	}
}

// Rect is a cell rectangle.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Resolve maps the bounds onto a viewport of width×height cells whose top
// bar is topBar rows tall. The top edge is shifted up by topBar, matching the
// CSS offset.
func (b Bounds) Resolve(width, height, topBar int) Rect {
	return Rect{
		X:      floor(b.Left() * float64(width)),
		Y:      floor(b.Top()*float64(height)) - topBar,
		Width:  floor(b.Width * float64(width)),
		Height: floor(b.Height * float64(height)),
	}
}

func floor(f float64) int {
	return int(math.Floor(f))
}

// jsNumber formats f the way a JavaScript number converts to a string for
// ordinary magnitudes.
func jsNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Overlay is the selection bounds box. When the selection changes to a
// different entity it is hidden until the next frame boundary so stale
// bounds from the previous entity never flash.
type Overlay struct {
	bounds      Bounds
	selected    bool
	hidden      bool
	pendingShow bool
}

// SetBounds records new engine-reported bounds.
func (o *Overlay) SetBounds(b Bounds) {
	o.bounds = b
}

// Bounds returns the last reported bounds.
func (o *Overlay) Bounds() Bounds {
	return o.bounds
}

// selectionChanged hides the overlay until the next frame boundary when the
// id differs from the previous selection.
func (o *Overlay) selectionChanged(changed bool) {
	o.selected = true
	if !changed {
		return
	}
	o.hidden = true
	o.pendingShow = true
}

func (o *Overlay) clear() {
	o.selected = false
	o.hidden = false
	o.pendingShow = false
}

// FrameBoundary is called after each rendered frame. A hide requested before
// the frame is lifted so the overlay shows on the following one.
func (o *Overlay) FrameBoundary() {
	if o.pendingShow {
		o.pendingShow = false
		o.hidden = false
	}
}

// Visible reports whether the overlay should be drawn this frame.
func (o *Overlay) Visible() bool {
	return o.selected && !o.hidden
}
