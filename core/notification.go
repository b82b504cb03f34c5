package core

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Notification is a message delivered to one receiver as a side effect of an
// action. Sender is nil for system-originated messages. All notifications
// emitted by the same action share a BatchID.
type Notification struct {
	ID       int       `json:"id"`
	BatchID  string    `json:"batch_id"`
	Message  string    `json:"message"`
	Sender   User      `json:"-"`
	Receiver User      `json:"-"`
	Time     time.Time `json:"time"`
	read     atomic.Bool
}

// IsRead reports whether the notification was marked read.
func (n *Notification) IsRead() bool { return n.read.Load() }

// MarkRead flags the notification as read. It is safe to call concurrently
// with store reads. No action in this module calls it; it is exposed for
// presentation shells.
func (n *Notification) MarkRead() { n.read.Store(true) }

// SenderID returns the sender's user id or 0 for system notifications.
func (n *Notification) SenderID() int {
	if IsNil(n.Sender) {
		return 0
	}

	return n.Sender.ID()
}

// NotificationStore is the append-only sink for notification fan-out.
// Implementations must be safe for concurrent reads.
type NotificationStore interface {
	// Append stores n or returns ErrCapacityExceeded leaving the store unchanged.
	Append(n *Notification) error
	Count() int
	At(i int) *Notification
	// Inbox returns the notifications received by u in insertion order.
	// Receivers are compared by identity, not by ID.
	Inbox(u User) []*Notification
}

// NewID generates a new unique identifier used to correlate the
// notifications and log lines of one operation.
func NewID() string { return uuid.NewString() }
