package persist

import (
	"log/slog"
	"sync"
	"time"
)

// saver is a single deferred-task slot: each Schedule call re-arms the timer,
// so a burst of mutations produces exactly one write after the quiet period.
// A failed write leaves the slot dirty; it is retried on the next cycle, not
// immediately.
type saver struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	dirty bool

	name   string
	save   func() error
	logger *slog.Logger
}

func newSaver(name string, delay time.Duration, save func() error, logger *slog.Logger) *saver {
	return &saver{
		name:   name,
		delay:  delay,
		save:   save,
		logger: logger,
	}
}

// Schedule marks the snapshot dirty and (re)arms the debounce timer.
func (s *saver) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *saver) fire() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	s.dirty = false
	s.mu.Unlock()

	if err := s.save(); err != nil {
		s.logger.Error("snapshot save failed", "snapshot", s.name, "err", err)
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
	}
}

// Flush cancels any armed timer and writes now if dirty. Used on shutdown and
// by tests to avoid wall-clock waits.
func (s *saver) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.fire()
}

// Dirty reports whether an unsaved mutation is pending.
func (s *saver) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *saver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
