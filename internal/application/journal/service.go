// Package journal records mutations and serves the undo stack.
package journal

import (
	"context"
	"time"

	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record describes one mutation to append
type Record struct {
	ActionType  journal.ActionType
	Description string
	TargetID    *uuid.UUID
	Snapshot    journal.Snapshot
}

// Metrics receives journal activity
type Metrics interface {
	RecordJournalAppend(ctx context.Context, actionType string)
}

type nopMetrics struct{}

func (nopMetrics) RecordJournalAppend(context.Context, string) {}

// Option configures a Service
type Option func(*Service)

// WithMetrics reports appends to m
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Service is the journal facade used by the command layer, the undo engine and the session tracker
type Service struct {
	repo    journal.Repository
	logger  *zap.Logger
	metrics Metrics
}

// NewService creates a new journal Service
func NewService(repo journal.Repository, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, logger: logger, metrics: nopMetrics{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append stores a visible entry stamped with the current time and returns its ID
func (s *Service) Append(ctx context.Context, rec Record) (int64, error) {
	if !rec.ActionType.IsValid() {
		return 0, shared.NewValidationError("action_type", "unknown action type").With("action_type", rec.ActionType)
	}
	entry := journal.NewEntry(rec.ActionType, rec.Description, rec.TargetID, rec.Snapshot)
	if err := s.repo.Append(ctx, entry); err != nil {
		return 0, err
	}
	s.metrics.RecordJournalAppend(ctx, string(rec.ActionType))
	s.logger.Debug("journal entry appended",
		zap.Int64("entry_id", entry.ID),
		zap.String("action_type", string(entry.ActionType)),
	)
	return entry.ID, nil
}

// ListVisible returns visible entries, newest first unless the filter asks otherwise
func (s *Service) ListVisible(ctx context.Context, filter journal.ListFilter) ([]journal.Entry, error) {
	switch filter.Order {
	case "", journal.OrderNewestFirst, journal.OrderOldestFirst:
	default:
		return nil, shared.NewValidationError("order", "order must be asc or desc").With("order", filter.Order)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, shared.NewValidationError("from", "from must not be after to")
	}
	if filter.ActionType != nil && !filter.ActionType.IsValid() {
		return nil, shared.NewValidationError("action_type", "unknown action type").With("action_type", *filter.ActionType)
	}
	if filter.Limit < 0 {
		return nil, shared.NewValidationError("limit", "limit cannot be negative")
	}
	return s.repo.ListVisible(ctx, filter)
}

// PopMostRecentVisible returns the top of the undo stack without deleting it. Undo markers
// are never on the stack. Returns nil when there is nothing to undo.
func (s *Service) PopMostRecentVisible(ctx context.Context) (*journal.Entry, error) {
	return s.repo.MostRecentVisible(ctx, journal.ProtectedTypes)
}

// HardDelete permanently removes an entry after its reversal succeeded
func (s *Service) HardDelete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// HideSince hides visible entries created at or after ts, skipping excluded types
func (s *Service) HideSince(ctx context.Context, ts time.Time, exclude []journal.ActionType) (int64, error) {
	return s.repo.HideSince(ctx, ts, exclude)
}

// HideAll hides every visible entry, skipping excluded types
func (s *Service) HideAll(ctx context.Context, exclude []journal.ActionType) (int64, error) {
	return s.repo.HideAll(ctx, exclude)
}

// PurgeBefore deletes hidden entries and undo markers created before ts
func (s *Service) PurgeBefore(ctx context.Context, ts time.Time) (int64, error) {
	n, err := s.repo.PurgeHiddenBefore(ctx, ts)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("purged journal entries", zap.Int64("count", n), zap.Time("before", ts))
	}
	return n, nil
}

// PurgeExpired applies the retention window; zero or negative days keeps everything
func (s *Service) PurgeExpired(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	return s.PurgeBefore(ctx, shared.Now().AddDate(0, 0, -retentionDays))
}
