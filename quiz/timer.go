package quiz

import (
	"sync"
	"time"
)

// Stopwatch counts whole seconds while running. The tick goroutine lives only
// between Start and Pause so no ticks leak into paused states; Pause is
// idempotent and doubles as cancel on session teardown.
type Stopwatch struct {
	mu      sync.Mutex
	seconds int
	stop    chan struct{}
	running bool
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{}
}

// Start begins (or resumes) the 1 Hz tick. No-op when already running.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	stop := make(chan struct{})
	s.stop = stop

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				s.seconds++
				s.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

// Pause freezes the counter and stops the tick goroutine.
func (s *Stopwatch) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stop)
	s.running = false
}

// Seconds returns the accumulated elapsed seconds.
func (s *Stopwatch) Seconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seconds
}

// Running reports whether the tick goroutine is live.
func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
