package ui

import "github.com/gdamore/tcell/v2"

// KeyHandler handles one key event and reports whether it consumed it.
type KeyHandler func(ev *tcell.EventKey) bool

// Keymap is an ordered list of key handlers. The first handler that
// consumes an event stops the search.
type Keymap struct {
	handlers []KeyHandler
}

// Bind appends h.
func (k *Keymap) Bind(h KeyHandler) {
	if h != nil {
		k.handlers = append(k.handlers, h)
	}
}

// Handle offers ev to each handler in binding order.
func (k *Keymap) Handle(ev *tcell.EventKey) bool {
	for _, h := range k.handlers {
		if h(ev) {
			return true
		}
	}
	return false
}

// Len returns the number of bound handlers.
func (k *Keymap) Len() int {
	return len(k.handlers)
}

// Shortcut returns a handler that runs fn for key with at least the
// modifiers in mod held.
func Shortcut(key tcell.Key, mod tcell.ModMask, fn func()) KeyHandler {
	return func(ev *tcell.EventKey) bool {
		if ev.Key() != key || ev.Modifiers()&mod != mod {
			return false
		}
		fn()
		return true
	}
}
