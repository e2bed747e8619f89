package cmd

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// barSink draws run progress on a terminal bar. The bar is created on the
// first update, once the total is known.
type barSink struct {
	w           io.Writer
	description string

	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	max    int
	closed atomic.Bool
}

func newBarSink(w io.Writer, description string) *barSink {
	return &barSink{w: w, description: description}
}

func (s *barSink) Update(completed, total int) {
	if s.closed.Load() || total <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.bar == nil:
		s.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(s.w),
			progressbar.OptionSetDescription(s.description),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionThrottle(65*time.Millisecond),
		)
	case total != s.max:
		s.bar.ChangeMax(total)
	}
	s.max = total
	_ = s.bar.Set(completed)
}

// Close finishes the bar once; later calls are no-ops.
func (s *barSink) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		_ = s.bar.Finish()
	}
}

func (s *barSink) Closed() bool {
	return s.closed.Load()
}
