package mouse

// Delta is an incremental pointer movement in viewport fractions. DY is
// positive when the pointer moves up the screen.
type Delta struct {
	DX float64
	DY float64
}

// IsZero reports whether the delta carries no movement.
func (d Delta) IsZero() bool {
	return d.DX == 0 && d.DY == 0
}

// DragTracker tracks one drag from press to release.
// The zero value is ready to use.
type DragTracker struct {
	active bool

	// button is the mouse button being held.
	button Button

	// startPos is where the drag started.
	startPos Point

	// lastPos is the position of the previous event; deltas are measured
	// from here.
	lastPos Point
}

// Start begins a new drag at p.
func (t *DragTracker) Start(p Point, button Button) {
	t.active = true
	t.button = button
	t.startPos = p
	t.lastPos = p
}

// Move reports the movement since the previous event and makes p the new
// reference point. It returns false when no drag is active.
func (t *DragTracker) Move(p Point) (Delta, bool) {
	if !t.active {
		return Delta{}, false
	}
	d := Delta{
		DX: p.X - t.lastPos.X,
		DY: -(p.Y - t.lastPos.Y),
	}
	t.lastPos = p
	return d, true
}

// End ends the current drag.
func (t *DragTracker) End() {
	*t = DragTracker{}
}

// Active returns true if a drag is in progress.
func (t *DragTracker) Active() bool {
	return t.active
}

// DragState is a snapshot of a drag.
type DragState struct {
	// Active indicates a drag is in progress.
	Active bool

	// Button is the mouse button being held.
	Button Button

	// StartPos is where the drag started.
	StartPos Point

	// LastPos is the reference point for the next delta.
	LastPos Point
}

// State returns the current drag state.
func (t *DragTracker) State() DragState {
	return DragState{
		Active:   t.active,
		Button:   t.button,
		StartPos: t.startPos,
		LastPos:  t.lastPos,
	}
}
