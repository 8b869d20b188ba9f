// Package mouse provides the pointer model used by the inspector gesture.
//
// Terminal mouse events arrive in cell coordinates. The bridge works in
// viewport fractions so the engine sees the same deltas whatever the terminal
// size:
//
//	p := mouse.Normalize(ev.Position, width, height)
//
// # Drag Handling
//
// DragTracker follows one button from press to release. Each Move reports the
// delta since the previous event, not since the press, with Y inverted so
// screen-down maps to world-up:
//
//	var drag mouse.DragTracker
//	drag.Start(mouse.Point{X: 0.5, Y: 0.5}, mouse.ButtonLeft)
//	d, _ := drag.Move(mouse.Point{X: 0.6, Y: 0.4}) // d == {DX: 0.1, DY: 0.1}
//	drag.End()
package mouse
