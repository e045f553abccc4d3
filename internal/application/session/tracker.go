// Package session implements the save-point workflow: commit, rollback and the undo-stack reset.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/warehouse/internal/application/undo"
	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/session"
	"go.uber.org/zap"
)

// RollbackPolicy selects what Rollback does with the unsaved changes
type RollbackPolicy string

const (
	// PolicyHide hides the journal entries since the save point and leaves the data as is
	PolicyHide RollbackPolicy = "hide"
	// PolicyRevert undoes every entry since the save point before hiding the rest
	PolicyRevert RollbackPolicy = "revert"
)

// ParseRollbackPolicy validates a configured policy name; empty means PolicyHide
func ParseRollbackPolicy(s string) (RollbackPolicy, error) {
	switch RollbackPolicy(s) {
	case "", PolicyHide:
		return PolicyHide, nil
	case PolicyRevert:
		return PolicyRevert, nil
	default:
		return "", fmt.Errorf("unknown rollback policy %q", s)
	}
}

// JournalHider is the part of the journal the tracker needs
type JournalHider interface {
	HideSince(ctx context.Context, ts time.Time, exclude []journal.ActionType) (int64, error)
	HideAll(ctx context.Context, exclude []journal.ActionType) (int64, error)
}

// Reverter undoes journal entries newer than a point in time
type Reverter interface {
	RevertSince(ctx context.Context, since time.Time) (*undo.RevertReport, error)
}

// Metrics receives session operations
type Metrics interface {
	RecordSessionSave(ctx context.Context, op string, hidden int64)
}

type nopMetrics struct{}

func (nopMetrics) RecordSessionSave(context.Context, string, int64) {}

// Option configures a Tracker
type Option func(*Tracker)

// WithRollbackPolicy sets the rollback policy
func WithRollbackPolicy(p RollbackPolicy) Option {
	return func(t *Tracker) {
		t.policy = p
	}
}

// WithReverter sets the component used by PolicyRevert
func WithReverter(r Reverter) Option {
	return func(t *Tracker) {
		t.reverter = r
	}
}

// WithMetrics reports session operations to m
func WithMetrics(m Metrics) Option {
	return func(t *Tracker) {
		if m != nil {
			t.metrics = m
		}
	}
}

// RollbackResult reports what a rollback did. Under PolicyRevert, Unreverted counts the entries
// hidden without their data change being undone, and Blocked names the entry that stopped the
// revert.
type RollbackResult struct {
	Reverted   int         `json:"reverted"`
	Hidden     int64       `json:"hidden"`
	Unreverted int64       `json:"unreverted"`
	Blocked    *undo.Block `json:"blocked,omitempty"`
	SavedAt    time.Time   `json:"saved_at"`
}

// Tracker owns the session state and its interaction with the journal
type Tracker struct {
	state    *session.State
	journal  JournalHider
	reverter Reverter
	policy   RollbackPolicy
	logger   *zap.Logger
	metrics  Metrics
}

// NewTracker creates a new Tracker
func NewTracker(state *session.State, journal JournalHider, logger *zap.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		state:   state,
		journal: journal,
		policy:  PolicyHide,
		logger:  logger,
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Policy returns the configured rollback policy
func (t *Tracker) Policy() RollbackPolicy {
	return t.policy
}

// MarkChanged records one successful mutation
func (t *Tracker) MarkChanged() int {
	return t.state.MarkChanged()
}

// DecrementChangeCount records one successful undo
func (t *Tracker) DecrementChangeCount() int {
	return t.state.DecrementChangeCount()
}

// Commit accepts the unsaved changes. The journal is left alone so they stay undoable.
func (t *Tracker) Commit(ctx context.Context) session.Status {
	previous := t.state.ChangeCount()
	savedAt := t.state.MarkSaved()
	t.metrics.RecordSessionSave(ctx, "commit", 0)
	t.logger.Info("session committed", zap.Int("changes", previous), zap.Time("saved_at", savedAt))
	return t.state.Status()
}

// Rollback discards the unsaved changes from the undo stack. With PolicyRevert the data changes
// are undone first, down to the first irreversible entry; that entry and everything older in
// the session are then hidden like under PolicyHide. On error the counters are left as they were.
func (t *Tracker) Rollback(ctx context.Context) (*RollbackResult, error) {
	since := t.state.LastSaveTime()
	result := &RollbackResult{}
	reverting := t.policy == PolicyRevert && t.reverter != nil

	if reverting {
		report, err := t.reverter.RevertSince(ctx, since)
		if report != nil {
			result.Reverted = report.Reverted
			result.Blocked = report.Blocked
		}
		if err != nil {
			t.logger.Error("rollback stopped while reverting changes",
				zap.Int("reverted", result.Reverted),
				zap.Time("since", since),
				zap.Error(err),
			)
			return result, err
		}
		if result.Blocked != nil {
			t.logger.Warn("rollback reached an irreversible change, hiding the rest",
				zap.Int64("entry_id", result.Blocked.EntryID),
				zap.String("action_type", string(result.Blocked.ActionType)),
				zap.Int("reverted", result.Reverted),
			)
		}
	}

	hidden, err := t.journal.HideSince(ctx, since, journal.ProtectedTypes)
	if err != nil {
		t.logger.Error("rollback failed to hide journal entries", zap.Time("since", since), zap.Error(err))
		return result, err
	}
	result.Hidden = hidden
	if reverting {
		result.Unreverted = hidden
	}
	result.SavedAt = t.state.MarkSaved()

	t.metrics.RecordSessionSave(ctx, "rollback", hidden)
	t.logger.Info("session rolled back",
		zap.String("policy", string(t.policy)),
		zap.Int("reverted", result.Reverted),
		zap.Int64("hidden", hidden),
		zap.Bool("blocked", result.Blocked != nil),
	)
	return result, nil
}

// Reset starts a fresh session without touching the journal
func (t *Tracker) Reset(ctx context.Context) session.Status {
	t.state.Reset()
	t.metrics.RecordSessionSave(ctx, "reset", 0)
	return t.state.Status()
}

// ClearUndoStack hides every undoable entry, leaving undo markers in place
func (t *Tracker) ClearUndoStack(ctx context.Context) (int64, error) {
	hidden, err := t.journal.HideAll(ctx, journal.ProtectedTypes)
	if err != nil {
		return 0, err
	}
	t.metrics.RecordSessionSave(ctx, "clear_undo_stack", hidden)
	t.logger.Info("undo stack cleared", zap.Int64("hidden", hidden))
	return hidden, nil
}

// Status returns the counters for polling
func (t *Tracker) Status() session.Status {
	return t.state.Status()
}
