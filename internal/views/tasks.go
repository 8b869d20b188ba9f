package views

import (
	"fmt"
	"sync"
)

// Tasks is the multiset of in-flight loading task labels in insertion order.
type Tasks struct {
	mu     sync.Mutex
	labels []string
}

// NewTasks creates an empty task set.
func NewTasks() *Tasks {
	return &Tasks{}
}

// Add appends label. Duplicates are kept.
func (t *Tasks) Add(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.labels = append(t.labels, label)
}

// Remove deletes the first occurrence of label and reports whether one was
// found.
func (t *Tasks) Remove(label string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, l := range t.labels {
		if l == label {
			t.labels = append(t.labels[:i], t.labels[i+1:]...)
			return true
		}
	}
	return false
}

// Labels returns a copy of the current labels.
func (t *Tasks) Labels() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// Len returns the number of tasks.
func (t *Tasks) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.labels)
}

// Summary renders the one-line task summary shown in the top bar.
func (t *Tasks) Summary() string {
	return Summarize(t.Labels())
}

// Summarize renders labels as "" when empty, "<label> (<n>)" when every label
// is the same, and "<first>, and <n-1> others" otherwise. first is the
// earliest inserted label.
func Summarize(labels []string) string {
	if len(labels) == 0 {
		return ""
	}

	first := labels[0]
	for _, l := range labels[1:] {
		if l != first {
			return fmt.Sprintf("%s, and %d others", first, len(labels)-1)
		}
	}
	return fmt.Sprintf("%s (%d)", first, len(labels))
}
