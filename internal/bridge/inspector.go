package bridge

import (
	"fmt"

	"github.com/dshills/runebridge/internal/input/mouse"
	"github.com/dshills/runebridge/internal/scene"
	"github.com/dshills/runebridge/internal/value"
)

// InspectState is the inspector's state.
type InspectState int

const (
	// StateIdle means nothing is selected.
	StateIdle InspectState = iota
	// StateInspecting means an entity is selected.
	StateInspecting
	// StateDragging means the move affordance is held.
	StateDragging
)

// String returns the state name.
func (s InspectState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInspecting:
		return "inspecting"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Inspector is the selection and drag-to-move state machine. The engine
// drives selection; the UI drives the drag. Property edits and moves are
// forwarded without updating local state: the next push from the engine is
// the source of truth.
type Inspector struct {
	port    *Port
	overlay *Overlay

	state  InspectState
	entity *scene.Entity
	drag   mouse.DragTracker
}

// NewInspector creates an idle inspector forwarding to port.
func NewInspector(port *Port, overlay *Overlay) *Inspector {
	return &Inspector{port: port, overlay: overlay}
}

// State returns the current state.
func (in *Inspector) State() InspectState {
	return in.state
}

// EntityID returns the inspected entity id, or "" when idle.
func (in *Inspector) EntityID() string {
	if in.entity == nil {
		return ""
	}
	return in.entity.ID
}

// Entity returns the inspected snapshot.
func (in *Inspector) Entity() *scene.Entity {
	return in.entity
}

// DragOrigin returns the reference point of the active drag.
func (in *Inspector) DragOrigin() (mouse.Point, bool) {
	if in.state != StateDragging {
		return mouse.Point{}, false
	}
	return in.drag.State().LastPos, true
}

// Select applies an engine selection push. A nil entity clears the
// selection. Selecting a different entity hides the bounds overlay until the
// next frame boundary; re-selecting the same id leaves it alone. A drag on a
// different entity is dropped.
func (in *Inspector) Select(e *scene.Entity) {
	if e == nil {
		in.entity = nil
		in.state = StateIdle
		in.drag.End()
		if in.overlay != nil {
			in.overlay.clear()
		}
		return
	}

	changed := in.entity == nil || in.entity.ID != e.ID
	in.entity = e
	if changed || in.state == StateIdle {
		in.drag.End()
		in.state = StateInspecting
	}
	if in.overlay != nil {
		in.overlay.selectionChanged(changed)
	}
}

// PointerDown starts a drag at p, a viewport-normalized position on the move
// affordance. It does nothing unless an entity is being inspected.
func (in *Inspector) PointerDown(p mouse.Point) bool {
	if in.state != StateInspecting {
		return false
	}
	in.drag.Start(p, mouse.ButtonLeft)
	in.state = StateDragging
	return true
}

// PointerMove forwards the movement since the previous pointer event to the
// engine. It does nothing unless dragging.
func (in *Inspector) PointerMove(p mouse.Point) error {
	if in.state != StateDragging {
		return nil
	}
	d, ok := in.drag.Move(p)
	if !ok {
		return nil
	}
	return in.port.MoveSelected(d.DX, d.DY)
}

// PointerUp ends a drag. It is called for releases anywhere on screen.
func (in *Inspector) PointerUp() {
	if in.state != StateDragging {
		return
	}
	in.drag.End()
	in.state = StateInspecting
}

// CommitProperty forwards an edited value for componentID/key of the
// inspected entity.
func (in *Inspector) CommitProperty(componentID, key, raw string) error {
	if in.entity == nil {
		return ErrNoSelection
	}
	c, ok := in.entity.Component(componentID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, componentID)
	}
	if scene.IsPrivate(key) {
		return fmt.Errorf("%w: %s is private", ErrNotEditable, key)
	}
	v, ok := c.Properties.Get(key)
	if !ok || !v.Editable() {
		kind := value.KindUnknown
		if ok {
			kind = v.Kind()
		}
		return fmt.Errorf("%w: %s.%s (%s)", ErrNotEditable, c.Name, key, kind)
	}
	return in.port.SetProperty(in.entity.ID, componentID, key, raw)
}
