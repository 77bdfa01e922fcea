package workspace

import (
	"sync"
	"time"
)

// Scheduler arms a single-shot deferred action. Arming again before the
// action fires replaces the previously armed one, which is exactly the
// coalescing the debounced save and zoom settle need.
type Scheduler interface {
	Arm(delay time.Duration, fn func())
	Stop()
}

type timerScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
}

// NewTimerScheduler returns the wall-clock Scheduler used in production.
func NewTimerScheduler() Scheduler {
	return &timerScheduler{}
}

func (s *timerScheduler) Arm(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(delay, fn)
}

func (s *timerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
