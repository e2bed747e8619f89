package internal

import "sync/atomic"

// ProgressSink receives completion counts from a run. Closed doubles as the
// user's cancel signal: once it reports true, no task starts and no further
// Update is sent.
type ProgressSink interface {
	Update(completed, total int)
	Close()
	Closed() bool
}

// NopSink discards progress and can still be closed to cancel a run.
type NopSink struct {
	closed atomic.Bool
}

func (s *NopSink) Update(int, int) {}

func (s *NopSink) Close() { s.closed.Store(true) }

func (s *NopSink) Closed() bool { return s.closed.Load() }
