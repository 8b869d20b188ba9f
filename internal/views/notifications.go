package views

import (
	"time"

	"github.com/dshills/runebridge/internal/sched"
)

// DefaultNotificationTTL is how long a notification stays on screen.
const DefaultNotificationTTL = 10 * time.Second

// NotificationKind classifies a notification.
type NotificationKind int

const (
	// NotificationInfo is a plain notification.
	NotificationInfo NotificationKind = iota
	// NotificationError is rendered with the error style.
	NotificationError
)

// errorKindCode is the wire code the engine uses for errors.
const errorKindCode = 2

// KindFromCode maps the engine's numeric kind. 2 is an error, anything else
// is informational.
func KindFromCode(code int) NotificationKind {
	if code == errorKindCode {
		return NotificationError
	}
	return NotificationInfo
}

// String returns the kind name.
func (k NotificationKind) String() string {
	if k == NotificationError {
		return "error"
	}
	return "info"
}

// Notification is one transient message.
type Notification struct {
	Kind  NotificationKind
	Title string
	Text  string
}

// Notifications is the time-limited notification queue. Each entry is
// removed one TTL after its own push.
type Notifications struct {
	q *expiring[Notification]
}

// NewNotifications creates a queue evicting after ttl. A non-positive ttl
// uses DefaultNotificationTTL.
func NewNotifications(clock sched.Scheduler, ttl time.Duration) *Notifications {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Notifications{q: newExpiring[Notification](clock, ttl)}
}

// Push appends n.
func (n *Notifications) Push(note Notification) {
	n.q.push(note)
}

// Info pushes an informational notification.
func (n *Notifications) Info(title, text string) {
	n.Push(Notification{Kind: NotificationInfo, Title: title, Text: text})
}

// Error pushes an error notification.
func (n *Notifications) Error(title, text string) {
	n.Push(Notification{Kind: NotificationError, Title: title, Text: text})
}

// Dismiss removes the notification at index i of Items before its TTL runs
// out. It reports false when i is out of range.
func (n *Notifications) Dismiss(i int) bool {
	return n.q.dismissAt(i)
}

// Items returns the visible notifications, oldest first.
func (n *Notifications) Items() []Notification {
	return n.q.snapshot()
}

// Len returns the number of visible notifications.
func (n *Notifications) Len() int {
	return n.q.len()
}

// SetTTL changes the delay used by later pushes. Visible entries keep the
// TTL they were pushed with.
func (n *Notifications) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		n.q.setTTL(ttl)
	}
}

// OnChange registers fn to run after every insertion or eviction.
func (n *Notifications) OnChange(fn func()) {
	n.q.setOnChange(fn)
}

// Close cancels all pending eviction timers.
func (n *Notifications) Close() {
	n.q.close()
}
