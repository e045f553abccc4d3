// Package session tracks unsaved work since the last save point.
package session

import (
	"sync"
	"time"

	"github.com/erp/warehouse/internal/domain/shared"
)

// Status is a point-in-time copy of the session counters for the UI shell
type Status struct {
	HasUnsavedChanges bool      `json:"has_unsaved_changes"`
	ChangeCount       int       `json:"change_count"`
	LastSaveTime      time.Time `json:"last_save_time"`
}

// State counts changes made since the last save point. HasUnsavedChanges is derived from the
// counter, so the two can never disagree. All methods are safe for concurrent use.
type State struct {
	mu           sync.Mutex
	changeCount  int
	lastSaveTime time.Time
	now          func() time.Time
}

// Option configures a State
type Option func(*State)

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		s.now = now
	}
}

// NewState returns a clean state whose save point is the current time
func NewState(opts ...Option) *State {
	s := &State{now: shared.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSaveTime = s.now()
	return s
}

// MarkChanged records one successful mutation
func (s *State) MarkChanged() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changeCount++
	return s.changeCount
}

// DecrementChangeCount records one successful undo, clamped at zero
func (s *State) DecrementChangeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.changeCount > 0 {
		s.changeCount--
	}
	return s.changeCount
}

// MarkSaved moves the save point to now and clears the counter
func (s *State) MarkSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changeCount = 0
	s.lastSaveTime = s.now()
	return s.lastSaveTime
}

// Reset is MarkSaved for process start
func (s *State) Reset() {
	s.MarkSaved()
}

// LastSaveTime returns the current save point
func (s *State) LastSaveTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveTime
}

// ChangeCount returns the number of unsaved changes
func (s *State) ChangeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changeCount
}

// HasUnsavedChanges reports whether any change happened since the save point
func (s *State) HasUnsavedChanges() bool {
	return s.ChangeCount() > 0
}

// Status returns a consistent copy of all counters
func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		HasUnsavedChanges: s.changeCount > 0,
		ChangeCount:       s.changeCount,
		LastSaveTime:      s.lastSaveTime,
	}
}
