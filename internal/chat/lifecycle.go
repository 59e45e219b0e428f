package chat

import "sync/atomic"

// Lifecycle is the two-state process gate for message handling. The process
// starts Initializing and moves to Ready exactly once, on the gateway's
// startup handshake; it never transitions back. Messages arriving before
// Ready are dropped.
type Lifecycle struct {
	ready atomic.Bool
}

// MarkReady transitions to Ready. Later calls are no-ops.
func (l *Lifecycle) MarkReady() {
	l.ready.Store(true)
}

// Ready reports whether message handling is open.
func (l *Lifecycle) Ready() bool {
	return l.ready.Load()
}
