package undo

import (
	"context"
	"errors"
	"testing"
	"time"

	appjournal "github.com/erp/warehouse/internal/application/journal"
	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockJournal is a mock implementation of Journal
type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) PopMostRecentVisible(ctx context.Context) (*journal.Entry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Entry), args.Error(1)
}

func (m *MockJournal) HardDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockJournal) Append(ctx context.Context, rec appjournal.Record) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

type countingCounter struct {
	decrements int
}

func (c *countingCounter) DecrementChangeCount() int {
	c.decrements++
	return 0
}

type recordingMetrics struct {
	outcomes []string
}

func (m *recordingMetrics) RecordUndo(_ context.Context, _ string, outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

func newEntry(id int64, t journal.ActionType) *journal.Entry {
	target := uuid.New()
	return &journal.Entry{ID: id, ActionType: t, Description: "desc", TargetID: &target, CreatedAt: shared.Now(), Visible: true}
}

func newTestEngine(j Journal, counter ChangeCounter, opts ...Option) *Engine {
	return NewEngine(j, counter, Stores{}, zap.NewNop(), opts...)
}

func TestEngine_Undo_EmptyStack(t *testing.T) {
	j := new(MockJournal)
	j.On("PopMostRecentVisible", mock.Anything).Return(nil, nil)
	counter := &countingCounter{}
	metrics := &recordingMetrics{}

	res, err := newTestEngine(j, counter, WithMetrics(metrics)).Undo(context.Background())

	require.NoError(t, err)
	assert.False(t, res.Undone)
	assert.Zero(t, counter.decrements)
	assert.Equal(t, []string{OutcomeEmpty}, metrics.outcomes)
	j.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}

func TestEngine_Undo_Success(t *testing.T) {
	entry := newEntry(7, journal.ActionAddCategory)
	j := new(MockJournal)
	j.On("PopMostRecentVisible", mock.Anything).Return(entry, nil)
	j.On("HardDelete", mock.Anything, int64(7)).Return(nil)
	j.On("Append", mock.Anything, mock.MatchedBy(func(rec appjournal.Record) bool {
		return rec.ActionType == journal.ActionUndo &&
			rec.TargetID == entry.TargetID &&
			rec.Snapshot[FieldUndoneAction] == string(journal.ActionAddCategory)
	})).Return(int64(8), nil)

	var handled *journal.Entry
	counter := &countingCounter{}
	engine := newTestEngine(j, counter, WithHandler(journal.ActionAddCategory, func(_ context.Context, e *journal.Entry) error {
		handled = e
		return nil
	}))

	res, err := engine.Undo(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Undone)
	assert.Same(t, entry, handled)
	assert.Equal(t, 1, counter.decrements)
	j.AssertExpectations(t)
}

func TestEngine_Undo_HandlerFailureKeepsEntry(t *testing.T) {
	entry := newEntry(3, journal.ActionUpdateProduct)
	j := new(MockJournal)
	j.On("PopMostRecentVisible", mock.Anything).Return(entry, nil)
	counter := &countingCounter{}
	metrics := &recordingMetrics{}
	engine := newTestEngine(j, counter, WithMetrics(metrics),
		WithHandler(journal.ActionUpdateProduct, func(context.Context, *journal.Entry) error {
			return shared.NewPersistenceError("update product", errors.New("disk full"))
		}))

	_, err := engine.Undo(context.Background())

	require.Error(t, err)
	assert.True(t, shared.IsPersistence(err))
	assert.Zero(t, counter.decrements)
	assert.Equal(t, []string{OutcomeFailed}, metrics.outcomes)
	j.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
	j.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestEngine_Undo_IrreversibleReportsBlock(t *testing.T) {
	entry := newEntry(4, journal.ActionApproveTransaction)
	j := new(MockJournal)
	j.On("PopMostRecentVisible", mock.Anything).Return(entry, nil)
	counter := &countingCounter{}
	metrics := &recordingMetrics{}

	res, err := newTestEngine(j, counter, WithMetrics(metrics)).Undo(context.Background())

	require.NoError(t, err)
	assert.False(t, res.Undone)
	require.NotNil(t, res.Blocked)
	assert.Equal(t, int64(4), res.Blocked.EntryID)
	assert.Equal(t, journal.ActionApproveTransaction, res.Blocked.ActionType)
	assert.Equal(t, entry.TargetID, res.Blocked.TargetID)
	assert.Equal(t, "approved transactions cannot be undone", res.Blocked.Reason)
	assert.Zero(t, counter.decrements)
	assert.Equal(t, []string{OutcomeRejected}, metrics.outcomes)
	j.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}

func TestBlockedError_KeepsStateConflictKind(t *testing.T) {
	err := irreversible("cancelled transactions cannot be undone")(context.Background(), newEntry(8, journal.ActionCancelTransaction))

	var be *BlockedError
	require.True(t, errors.As(err, &be))
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.True(t, shared.IsStateConflict(err))
}

func TestEngine_Undo_UnknownActionType(t *testing.T) {
	entry := newEntry(5, journal.ActionType("ARCHIVE_PRODUCT"))
	j := new(MockJournal)
	j.On("PopMostRecentVisible", mock.Anything).Return(entry, nil)

	_, err := newTestEngine(j, &countingCounter{}).Undo(context.Background())

	assert.ErrorIs(t, err, ErrNoInverse)
	j.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}

func TestEngine_Undo_MarkerFailureStillSucceeds(t *testing.T) {
	entry := newEntry(9, journal.ActionAddSupplier)
	j := new(MockJournal)
	j.On("PopMostRecentVisible", mock.Anything).Return(entry, nil)
	j.On("HardDelete", mock.Anything, int64(9)).Return(nil)
	j.On("Append", mock.Anything, mock.Anything).Return(int64(0), errors.New("journal unavailable"))
	counter := &countingCounter{}
	engine := newTestEngine(j, counter, WithHandler(journal.ActionAddSupplier, func(context.Context, *journal.Entry) error {
		return nil
	}))

	res, err := engine.Undo(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Undone)
	assert.Equal(t, 1, counter.decrements)
}

func TestEngine_Undo_MissingTarget(t *testing.T) {
	entry := &journal.Entry{ID: 11, ActionType: journal.ActionAddCategory, CreatedAt: shared.Now(), Visible: true}
	j := new(MockJournal)
	j.On("PopMostRecentVisible", mock.Anything).Return(entry, nil)

	_, err := newTestEngine(j, &countingCounter{}).Undo(context.Background())

	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestEngine_RevertSince_StopsAtOlderEntry(t *testing.T) {
	since := shared.Now()
	newer := newEntry(2, journal.ActionAddCategory)
	newer.CreatedAt = since.Add(time.Second)
	older := newEntry(1, journal.ActionAddCategory)
	older.CreatedAt = since.Add(-time.Second)

	j := new(MockJournal)
	j.On("PopMostRecentVisible", mock.Anything).Return(newer, nil).Once()
	j.On("PopMostRecentVisible", mock.Anything).Return(older, nil).Once()
	j.On("HardDelete", mock.Anything, int64(2)).Return(nil)
	j.On("Append", mock.Anything, mock.Anything).Return(int64(3), nil)

	calls := 0
	engine := newTestEngine(j, &countingCounter{}, WithHandler(journal.ActionAddCategory, func(context.Context, *journal.Entry) error {
		calls++
		return nil
	}))

	report, err := engine.RevertSince(context.Background(), since)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Reverted)
	assert.Nil(t, report.Blocked)
	assert.Equal(t, 1, calls)
	j.AssertNotCalled(t, "HardDelete", mock.Anything, int64(1))
}

func TestEngine_RevertSince_StopsAtIrreversibleEntry(t *testing.T) {
	since := shared.Now().Add(-time.Minute)
	added := newEntry(3, journal.ActionAddCategory)
	approved := newEntry(2, journal.ActionApproveTransaction)

	j := new(MockJournal)
	j.On("PopMostRecentVisible", mock.Anything).Return(added, nil).Once()
	j.On("PopMostRecentVisible", mock.Anything).Return(approved, nil).Once()
	j.On("HardDelete", mock.Anything, int64(3)).Return(nil)
	j.On("Append", mock.Anything, mock.Anything).Return(int64(4), nil)
	counter := &countingCounter{}
	engine := newTestEngine(j, counter, WithHandler(journal.ActionAddCategory, func(context.Context, *journal.Entry) error {
		return nil
	}))

	report, err := engine.RevertSince(context.Background(), since)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Reverted)
	require.NotNil(t, report.Blocked)
	assert.Equal(t, int64(2), report.Blocked.EntryID)
	assert.Equal(t, 1, counter.decrements)
	j.AssertNotCalled(t, "HardDelete", mock.Anything, int64(2))
	j.AssertNumberOfCalls(t, "PopMostRecentVisible", 2)
}

func TestHandlersFor_CoversEveryUndoableAction(t *testing.T) {
	handlers := handlersFor(Stores{})
	for _, at := range journal.AllActionTypes() {
		if at.IsMarker() {
			assert.NotContains(t, handlers, at)
			continue
		}
		assert.Contains(t, handlers, at, "missing inverse for %s", at)
	}
}
