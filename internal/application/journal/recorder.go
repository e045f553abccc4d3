package journal

import (
	"context"

	"go.uber.org/zap"
)

// ChangeCounter is the part of the session state the recorder bumps
type ChangeCounter interface {
	MarkChanged() int
}

// Recorder pairs a journal append with a change count so every mutating path does both.
// It runs after the mutation has been applied.
type Recorder struct {
	journal *Service
	counter ChangeCounter
	logger  *zap.Logger
}

// NewRecorder creates a new Recorder
func NewRecorder(journal *Service, counter ChangeCounter, logger *zap.Logger) *Recorder {
	return &Recorder{journal: journal, counter: counter, logger: logger}
}

// Record appends the entry and marks the session changed. When the append fails the mutation
// has already happened but cannot be undone: the change is not counted, a NOT_JOURNALED warning
// is attached to the request and the error is returned for the caller to log.
func (r *Recorder) Record(ctx context.Context, rec Record) (int64, error) {
	id, err := r.journal.Append(ctx, rec)
	if err != nil {
		fields := []zap.Field{
			zap.String("action_type", string(rec.ActionType)),
			zap.String("description", rec.Description),
			zap.Error(err),
		}
		if rec.TargetID != nil {
			fields = append(fields, zap.String("target_id", rec.TargetID.String()))
		}
		r.logger.Error("mutation applied but not journaled; it cannot be undone", fields...)
		AddWarning(ctx, Warning{
			Code:       WarningNotJournaled,
			Message:    "change applied but not recorded in the journal; it cannot be undone",
			ActionType: rec.ActionType,
			TargetID:   rec.TargetID,
		})
		return 0, err
	}
	r.counter.MarkChanged()
	return id, nil
}

// MutationRecorder is what the command services journal through
type MutationRecorder interface {
	Record(ctx context.Context, rec Record) (int64, error)
}

var _ MutationRecorder = (*Recorder)(nil)
