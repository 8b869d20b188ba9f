package ui

import "github.com/dshills/runebridge/internal/attach"

// Surface is the engine render area. It is created when the first engine
// attaches and keeps its key bindings across reconnects.
type Surface struct {
	keys     Keymap
	live     bool
	focused  bool
	grabbing bool
}

var _ attach.Target[KeyHandler] = (*Surface)(nil)

// Bind adds a key handler that runs while the surface has focus.
func (s *Surface) Bind(h KeyHandler) {
	s.keys.Bind(h)
}

// Live reports whether an engine is currently rendering to the surface.
func (s *Surface) Live() bool { return s.live }

// Focused reports whether the last click landed on the surface.
func (s *Surface) Focused() bool { return s.focused }

// Grabbing reports whether the right button is held over the surface, the
// state the web editor shows as a grabbing cursor.
func (s *Surface) Grabbing() bool { return s.grabbing }

// Bindings returns the number of key handlers bound to the surface.
func (s *Surface) Bindings() int { return s.keys.Len() }
