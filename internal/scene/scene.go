// Package scene holds the read-only snapshot of engine state shown by the UI:
// the selected entity with its components, and the entity hierarchy.
//
// Snapshots are decoded from engine pushes and replaced wholesale on every
// push. The UI never builds or mutates them.
package scene

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PrivatePrefix marks engine-private property keys.
const PrivatePrefix = "_"

// IsPrivate reports whether a property key is engine-private.
// Private keys stay in the snapshot but are never offered for editing.
func IsPrivate(key string) bool {
	return strings.HasPrefix(key, PrivatePrefix)
}

// Component is one component attached to an entity.
type Component struct {
	ID         string     `json:"id"`
	Name       string     `json:"name" jsonschema:"description=Dotted type identifier"`
	Properties Properties `json:"properties"`
}

// Label returns the human-readable component name.
func (c Component) Label() string {
	return PrettyName(c.Name)
}

// EditableKeys returns the non-private property keys in wire order.
func (c Component) EditableKeys() []string {
	keys := make([]string, 0, c.Properties.Len())
	for _, k := range c.Properties.Keys() {
		if !IsPrivate(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Entity is the selected entity as pushed by the engine.
type Entity struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Components []Component `json:"components"`
	Children   []Entity    `json:"children,omitempty"`
}

// Component returns the component with the given id.
func (e *Entity) Component(id string) (*Component, bool) {
	if e == nil {
		return nil, false
	}
	for i := range e.Components {
		if e.Components[i].ID == id {
			return &e.Components[i], true
		}
	}
	return nil, false
}

// Node is one element of the hierarchy tree.
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Children []Node `json:"children,omitempty"`
}

// Hierarchy is the list of root nodes pushed by the engine.
type Hierarchy []Node

// Find returns the node with the given id, searching depth first.
func (h Hierarchy) Find(id string) (*Node, bool) {
	for i := range h {
		if h[i].ID == id {
			return &h[i], true
		}
		if n, ok := Hierarchy(h[i].Children).Find(id); ok {
			return n, true
		}
	}
	return nil, false
}

// Walk visits every node depth first in display order. depth is 0 for roots.
// Returning false from fn stops the walk.
func (h Hierarchy) Walk(fn func(n *Node, depth int) bool) {
	h.walk(0, fn)
}

func (h Hierarchy) walk(depth int, fn func(n *Node, depth int) bool) bool {
	for i := range h {
		if !fn(&h[i], depth) {
			return false
		}
		if !Hierarchy(h[i].Children).walk(depth+1, fn) {
			return false
		}
	}
	return true
}

// Len returns the total number of nodes in the tree.
func (h Hierarchy) Len() int {
	n := 0
	h.Walk(func(*Node, int) bool {
		n++
		return true
	})
	return n
}

// PrettyName derives a display label from an identifier: underscores become
// spaces, a space is inserted before each upper-case letter after the first
// character, and the first letter is upper-cased. It is display-only.
func PrettyName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)

	for i, r := range name {
		switch {
		case r == '_':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && i > 0:
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	out := b.String()
	first, size := utf8.DecodeRuneInString(out)
	if first == utf8.RuneError {
		return out
	}
	return string(unicode.ToUpper(first)) + out[size:]
}
