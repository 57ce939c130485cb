// Package queue - errors.go
// Comparable rejection errors returned by the Registry. None of them leave a
// partial mutation behind.
package queue

// qerr is a lightweight comparable error type.
// Using constants of this type allows errors.Is to work as expected.
type qerr string

func (e qerr) Error() string { return string(e) }

var (
	ErrQueueNotFound   = qerr("queue not found")
	ErrChannelNotFound = qerr("queue channel not found")
	ErrAlreadyOpen     = qerr("queue is already open")
	ErrAlreadyClosed   = qerr("queue is already closed")
	ErrQueueClosed     = qerr("queue is closed")
	ErrQueueEmpty      = qerr("queue is empty")
	ErrSelfJoin        = qerr("cannot join your own queue")
	ErrAlreadyQueued   = qerr("already in queue")
	ErrNotQueued       = qerr("player not in queue")
	ErrAlreadyTester   = qerr("already an active tester")
)

// ErrDisplayGone is returned by a Notifier whose display message no longer
// exists. The registry answers it by posting a fresh display.
var ErrDisplayGone = qerr("queue display message is gone")
