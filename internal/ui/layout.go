package ui

import "github.com/dshills/runebridge/internal/config"

// Rect is a cell rectangle.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Layout is the placement of every region for one screen size.
type Layout struct {
	Width, Height int

	TopBar    Rect
	Surface   Rect
	Hierarchy Rect
	Inspector Rect
}

// computeLayout places the regions. In pop-out mode the side panels are
// hidden and the surface has the screen to itself below the top bar.
func computeLayout(width, height int, cfg config.Layout, popOut bool) Layout {
	top := clamp(cfg.TopBarHeight, 0, height)
	l := Layout{
		Width:   width,
		Height:  height,
		TopBar:  Rect{X: 0, Y: 0, W: width, H: top},
		Surface: Rect{X: 0, Y: top, W: width, H: height - top},
	}
	if popOut {
		return l
	}

	hw := clamp(cfg.HierarchyWidth, 0, width/3)
	iw := clamp(cfg.InspectorWidth, 0, width/3)
	l.Hierarchy = Rect{X: 0, Y: top, W: hw, H: height - top}
	l.Inspector = Rect{X: width - iw, Y: top, W: iw, H: height - top}
	return l
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
