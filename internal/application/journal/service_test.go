package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockJournalRepository is a mock implementation of journal.Repository
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Append(ctx context.Context, entry *journal.Entry) error {
	args := m.Called(ctx, entry)
	if args.Error(0) == nil {
		entry.ID = 42
	}
	return args.Error(0)
}

func (m *MockJournalRepository) FindByID(ctx context.Context, id int64) (*journal.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Entry), args.Error(1)
}

func (m *MockJournalRepository) ListVisible(ctx context.Context, filter journal.ListFilter) ([]journal.Entry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]journal.Entry), args.Error(1)
}

func (m *MockJournalRepository) MostRecentVisible(ctx context.Context, exclude []journal.ActionType) (*journal.Entry, error) {
	args := m.Called(ctx, exclude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Entry), args.Error(1)
}

func (m *MockJournalRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockJournalRepository) HideSince(ctx context.Context, since time.Time, exclude []journal.ActionType) (int64, error) {
	args := m.Called(ctx, since, exclude)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalRepository) HideAll(ctx context.Context, exclude []journal.ActionType) (int64, error) {
	args := m.Called(ctx, exclude)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalRepository) PurgeHiddenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type appendCounter struct {
	types []string
}

func (c *appendCounter) RecordJournalAppend(_ context.Context, actionType string) {
	c.types = append(c.types, actionType)
}

type fakeCounter struct {
	n int
}

func (c *fakeCounter) MarkChanged() int {
	c.n++
	return c.n
}

func TestService_Append(t *testing.T) {
	t.Run("stores a visible entry", func(t *testing.T) {
		repo := new(MockJournalRepository)
		metrics := &appendCounter{}
		svc := NewService(repo, zap.NewNop(), WithMetrics(metrics))
		target := uuid.New()

		repo.On("Append", mock.Anything, mock.MatchedBy(func(e *journal.Entry) bool {
			return e.ActionType == journal.ActionAddProduct &&
				e.Visible &&
				*e.TargetID == target &&
				!e.CreatedAt.IsZero() &&
				e.Snapshot().Has("name")
		})).Return(nil)

		id, err := svc.Append(context.Background(), Record{
			ActionType:  journal.ActionAddProduct,
			Description: "Added product",
			TargetID:    &target,
			Snapshot:    journal.Snapshot{"name": "Widget"},
		})

		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
		assert.Equal(t, []string{"ADD_PRODUCT"}, metrics.types)
		repo.AssertExpectations(t)
	})

	t.Run("rejects unknown action type", func(t *testing.T) {
		repo := new(MockJournalRepository)
		svc := NewService(repo, zap.NewNop())

		_, err := svc.Append(context.Background(), Record{ActionType: "RENAME_WAREHOUSE"})

		assert.True(t, shared.IsValidation(err))
		repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("propagates store failure", func(t *testing.T) {
		repo := new(MockJournalRepository)
		svc := NewService(repo, zap.NewNop())
		repo.On("Append", mock.Anything, mock.Anything).
			Return(shared.NewPersistenceError("append journal entry", errors.New("locked")))

		_, err := svc.Append(context.Background(), Record{ActionType: journal.ActionAddCategory})

		assert.True(t, shared.IsPersistence(err))
	})
}

func TestService_ListVisible_Validation(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := NewService(repo, zap.NewNop())
	ctx := context.Background()
	now := time.Now()
	earlier := now.Add(-time.Hour)
	unknown := journal.ActionType("NOPE")

	tests := []struct {
		name   string
		filter journal.ListFilter
	}{
		{"bad order", journal.ListFilter{Order: "sideways"}},
		{"inverted range", journal.ListFilter{From: &now, To: &earlier}},
		{"unknown type", journal.ListFilter{ActionType: &unknown}},
		{"negative limit", journal.ListFilter{Limit: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListVisible(ctx, tt.filter)
			assert.True(t, shared.IsValidation(err))
		})
	}
	repo.AssertNotCalled(t, "ListVisible", mock.Anything, mock.Anything)
}

func TestService_PopMostRecentVisible_ExcludesMarkers(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := NewService(repo, zap.NewNop())
	entry := &journal.Entry{ID: 5, ActionType: journal.ActionAddCategory}
	repo.On("MostRecentVisible", mock.Anything, journal.ProtectedTypes).Return(entry, nil)

	got, err := svc.PopMostRecentVisible(context.Background())

	require.NoError(t, err)
	assert.Same(t, entry, got)
	repo.AssertExpectations(t)
}

func TestService_PurgeExpired(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := NewService(repo, zap.NewNop())
	ctx := context.Background()

	n, err := svc.PurgeExpired(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	repo.AssertNotCalled(t, "PurgeHiddenBefore", mock.Anything, mock.Anything)

	repo.On("PurgeHiddenBefore", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		age := time.Since(cutoff)
		return age > 29*24*time.Hour && age < 31*24*time.Hour
	})).Return(int64(4), nil)

	n, err = svc.PurgeExpired(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestRecorder_Record(t *testing.T) {
	t.Run("appends and counts", func(t *testing.T) {
		repo := new(MockJournalRepository)
		repo.On("Append", mock.Anything, mock.Anything).Return(nil)
		counter := &fakeCounter{}
		rec := NewRecorder(NewService(repo, zap.NewNop()), counter, zap.NewNop())

		id, err := rec.Record(context.Background(), Record{ActionType: journal.ActionAddSupplier})

		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
		assert.Equal(t, 1, counter.n)
	})

	t.Run("invalid action type is neither stored nor counted", func(t *testing.T) {
		repo := new(MockJournalRepository)
		counter := &fakeCounter{}
		rec := NewRecorder(NewService(repo, zap.NewNop()), counter, zap.NewNop())

		_, err := rec.Record(context.Background(), Record{ActionType: journal.ActionType("BOGUS")})

		assert.True(t, shared.IsValidation(err))
		assert.Zero(t, counter.n)
		repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("failed append is a warning and is not counted", func(t *testing.T) {
		repo := new(MockJournalRepository)
		repo.On("Append", mock.Anything, mock.Anything).Return(errors.New("journal locked"))
		counter := &fakeCounter{}
		rec := NewRecorder(NewService(repo, zap.NewNop()), counter, zap.NewNop())
		ctx, warnings := ContextWithWarnings(context.Background())
		target := uuid.New()

		_, err := rec.Record(ctx, Record{ActionType: journal.ActionAddSupplier, TargetID: &target})

		assert.Error(t, err)
		assert.Zero(t, counter.n)
		got := warnings.List()
		require.Len(t, got, 1)
		assert.Equal(t, WarningNotJournaled, got[0].Code)
		assert.Equal(t, journal.ActionAddSupplier, got[0].ActionType)
		assert.Equal(t, &target, got[0].TargetID)
	})

	t.Run("failed append without a collector", func(t *testing.T) {
		repo := new(MockJournalRepository)
		repo.On("Append", mock.Anything, mock.Anything).Return(errors.New("journal locked"))
		counter := &fakeCounter{}
		rec := NewRecorder(NewService(repo, zap.NewNop()), counter, zap.NewNop())

		_, err := rec.Record(context.Background(), Record{ActionType: journal.ActionAddSupplier})

		assert.Error(t, err)
		assert.Zero(t, counter.n)
	})
}
