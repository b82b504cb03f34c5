// Package notify contains the notification fan-out side of the store. The
// NotificationStore contract and the Notification record live in the core
// package; this package provides the bounded in-memory implementation and
// the message text emitted by each action.
//
// Notifications are append-only. Nothing outside the action layer writes
// them, and no action marks them read.
package notify
