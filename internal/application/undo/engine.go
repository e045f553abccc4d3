// Package undo reverses the most recent journaled mutation.
package undo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appjournal "github.com/erp/warehouse/internal/application/journal"
	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Undo outcomes reported to metrics
const (
	OutcomeApplied  = "applied"
	OutcomeEmpty    = "empty"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Marker snapshot fields
const (
	FieldUndoneAction  = "undone_action"
	FieldUndoneEntryID = "undone_entry_id"
)

// ErrNoInverse is returned for an entry whose action type has no registered inverse
var ErrNoInverse = errors.New("no inverse registered for action type")

// Journal is the part of the journal the engine drives
type Journal interface {
	PopMostRecentVisible(ctx context.Context) (*journal.Entry, error)
	HardDelete(ctx context.Context, id int64) error
	Append(ctx context.Context, rec appjournal.Record) (int64, error)
}

// ChangeCounter is decremented once per successful undo
type ChangeCounter interface {
	DecrementChangeCount() int
}

// Metrics receives undo outcomes
type Metrics interface {
	RecordUndo(ctx context.Context, actionType, outcome string)
}

type nopMetrics struct{}

func (nopMetrics) RecordUndo(context.Context, string, string) {}

// Option configures an Engine
type Option func(*Engine)

// WithMetrics reports undo outcomes to m
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithHandler overrides or adds the inverse for one action type
func WithHandler(t journal.ActionType, h InverseHandler) Option {
	return func(e *Engine) {
		e.handlers[t] = h
	}
}

// Block describes the entry that sits on top of the stack and cannot be reversed. Nothing
// below it can be undone until the stack is cleared.
type Block struct {
	EntryID    int64              `json:"entry_id"`
	ActionType journal.ActionType `json:"action_type"`
	TargetID   *uuid.UUID         `json:"target_id,omitempty"`
	Reason     string             `json:"reason"`
}

// BlockedError is returned by an inverse handler when the recorded change can no longer be
// reversed, such as a decided transaction.
type BlockedError struct {
	Reason string
	cause  error
}

func (e *BlockedError) Error() string { return e.Reason }

func (e *BlockedError) Unwrap() error { return e.cause }

// blocked wraps a state conflict so the engine reports it as a block
func blocked(err *shared.DomainError) error {
	return &BlockedError{Reason: err.Message, cause: err}
}

// Result reports what an undo did. Blocked is set when the top entry is irreversible; the
// entry stays on the stack and Undone is false.
type Result struct {
	Undone  bool
	Entry   *journal.Entry
	Blocked *Block
}

// RevertReport summarizes a RevertSince run
type RevertReport struct {
	Reverted int
	Blocked  *Block
}

// Engine reverses journal entries newest first. Calls are serialized since there is one
// shared stack.
type Engine struct {
	mu       sync.Mutex
	journal  Journal
	counter  ChangeCounter
	handlers map[journal.ActionType]InverseHandler
	logger   *zap.Logger
	metrics  Metrics
}

// NewEngine creates a new Engine
func NewEngine(j Journal, counter ChangeCounter, stores Stores, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		journal:  j,
		counter:  counter,
		handlers: handlersFor(stores),
		logger:   logger,
		metrics:  nopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Undo reverses the most recent visible entry. An empty stack is not an error. When the reversal
// fails the entry and the counters are left untouched.
func (e *Engine) Undo(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.journal.PopMostRecentVisible(ctx)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		e.metrics.RecordUndo(ctx, "", OutcomeEmpty)
		return &Result{Undone: false}, nil
	}
	if err := e.apply(ctx, entry); err != nil {
		if b := blockOf(entry, err); b != nil {
			return &Result{Undone: false, Entry: entry, Blocked: b}, nil
		}
		return nil, err
	}
	return &Result{Undone: true, Entry: entry}, nil
}

// RevertSince undoes entries until the top of the stack is older than since or cannot be
// reversed. A block ends the run without an error; the report names the blocking entry.
// Reverted counts the entries undone, including on error.
func (e *Engine) RevertSince(ctx context.Context, since time.Time) (*RevertReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := &RevertReport{}
	for {
		entry, err := e.journal.PopMostRecentVisible(ctx)
		if err != nil {
			return report, err
		}
		if entry == nil || entry.CreatedAt.Before(since) {
			return report, nil
		}
		if err := e.apply(ctx, entry); err != nil {
			if b := blockOf(entry, err); b != nil {
				report.Blocked = b
				return report, nil
			}
			return report, err
		}
		report.Reverted++
	}
}

func blockOf(entry *journal.Entry, err error) *Block {
	var be *BlockedError
	if !errors.As(err, &be) {
		return nil
	}
	return &Block{
		EntryID:    entry.ID,
		ActionType: entry.ActionType,
		TargetID:   entry.TargetID,
		Reason:     be.Reason,
	}
}

func (e *Engine) apply(ctx context.Context, entry *journal.Entry) error {
	handler, ok := e.handlers[entry.ActionType]
	if !ok {
		e.metrics.RecordUndo(ctx, string(entry.ActionType), OutcomeFailed)
		return fmt.Errorf("%w: %s (entry %d)", ErrNoInverse, entry.ActionType, entry.ID)
	}

	if err := handler(ctx, entry); err != nil {
		outcome := OutcomeFailed
		var be *BlockedError
		if errors.As(err, &be) || shared.IsStateConflict(err) {
			outcome = OutcomeRejected
		}
		e.metrics.RecordUndo(ctx, string(entry.ActionType), outcome)
		e.logger.Warn("undo failed",
			zap.Int64("entry_id", entry.ID),
			zap.String("action_type", string(entry.ActionType)),
			zap.Error(err),
		)
		return err
	}

	if err := e.journal.HardDelete(ctx, entry.ID); err != nil {
		// Every inverse is idempotent, so the next undo re-applies it and retries the delete.
		e.metrics.RecordUndo(ctx, string(entry.ActionType), OutcomeFailed)
		e.logger.Error("undo applied but journal entry could not be removed",
			zap.Int64("entry_id", entry.ID),
			zap.Error(err),
		)
		return err
	}
	e.counter.DecrementChangeCount()

	_, err := e.journal.Append(ctx, appjournal.Record{
		ActionType:  journal.ActionUndo,
		Description: "Undo: " + entry.Description,
		TargetID:    entry.TargetID,
		Snapshot: journal.Snapshot{
			FieldUndoneAction:  string(entry.ActionType),
			FieldUndoneEntryID: entry.ID,
		},
	})
	if err != nil {
		e.logger.Warn("undo marker not recorded", zap.Int64("entry_id", entry.ID), zap.Error(err))
	}

	e.metrics.RecordUndo(ctx, string(entry.ActionType), OutcomeApplied)
	e.logger.Info("undo applied",
		zap.Int64("entry_id", entry.ID),
		zap.String("action_type", string(entry.ActionType)),
	)
	return nil
}
