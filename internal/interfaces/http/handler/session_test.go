package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	appsession "github.com/erp/warehouse/internal/application/session"
	"github.com/erp/warehouse/internal/application/undo"
	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/session"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/erp/warehouse/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSessionHandler_Status(t *testing.T) {
	svc := new(MockSessionService)
	saved := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	svc.On("Status").Return(session.Status{HasUnsavedChanges: true, ChangeCount: 3, LastSaveTime: saved})

	w, resp := doJSON(t, newTestEngine(NewSessionHandler(svc, new(MockUndoer))), http.MethodGet, "/api/v1/session", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["has_unsaved_changes"])
	assert.Equal(t, float64(3), data["change_count"])
	assert.Equal(t, "2026-10-16T09:00:00Z", data["last_save_time"])
}

func TestSessionHandler_Commit(t *testing.T) {
	svc := new(MockSessionService)
	svc.On("Commit", mock.Anything).Return(session.Status{ChangeCount: 0})

	w, resp := doJSON(t, newTestEngine(NewSessionHandler(svc, new(MockUndoer))), http.MethodPost, "/api/v1/session/commit", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp.Data.(map[string]any)["change_count"])
	svc.AssertExpectations(t)
}

func TestSessionHandler_Rollback(t *testing.T) {
	t.Run("reports hidden entries", func(t *testing.T) {
		svc := new(MockSessionService)
		svc.On("Rollback", mock.Anything).Return(&appsession.RollbackResult{Reverted: 2, Hidden: 1}, nil)
		svc.On("Status").Return(session.Status{})

		w, resp := doJSON(t, newTestEngine(NewSessionHandler(svc, new(MockUndoer))), http.MethodPost, "/api/v1/session/rollback", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := resp.Data.(map[string]any)
		assert.Equal(t, float64(2), data["reverted"])
		assert.Equal(t, float64(1), data["hidden"])
		assert.Contains(t, data, "session")
		assert.NotContains(t, data, "blocked")
	})

	t.Run("names the entry that stopped the revert", func(t *testing.T) {
		svc := new(MockSessionService)
		svc.On("Rollback", mock.Anything).Return(&appsession.RollbackResult{
			Reverted:   1,
			Hidden:     2,
			Unreverted: 2,
			Blocked:    &undo.Block{EntryID: 5, ActionType: journal.ActionApproveTransaction, Reason: "approved transactions cannot be undone"},
		}, nil)
		svc.On("Status").Return(session.Status{})

		w, resp := doJSON(t, newTestEngine(NewSessionHandler(svc, new(MockUndoer))), http.MethodPost, "/api/v1/session/rollback", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := resp.Data.(map[string]any)
		assert.Equal(t, float64(2), data["unreverted"])
		blocked := data["blocked"].(map[string]any)
		assert.Equal(t, float64(5), blocked["entry_id"])
		assert.Equal(t, "APPROVE_TRANSACTION", blocked["action_type"])
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		svc := new(MockSessionService)
		svc.On("Rollback", mock.Anything).Return(nil, shared.NewPersistenceError("hide journal entries", errors.New("locked")))

		w, resp := doJSON(t, newTestEngine(NewSessionHandler(svc, new(MockUndoer))), http.MethodPost, "/api/v1/session/rollback", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	})
}

func TestSessionHandler_Undo(t *testing.T) {
	t.Run("returns the undone entry", func(t *testing.T) {
		svc := new(MockSessionService)
		undoer := new(MockUndoer)
		target := uuid.New()
		undoer.On("Undo", mock.Anything).Return(&undo.Result{
			Undone: true,
			Entry: &journal.Entry{
				ID:          7,
				ActionType:  journal.ActionAddCategory,
				Description: "Add category: Tools",
				TargetID:    &target,
			},
		}, nil)
		svc.On("Status").Return(session.Status{ChangeCount: 0})

		w, resp := doJSON(t, newTestEngine(NewSessionHandler(svc, undoer)), http.MethodPost, "/api/v1/session/undo", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := resp.Data.(map[string]any)
		assert.Equal(t, true, data["undone"])
		entry := data["entry"].(map[string]any)
		assert.Equal(t, float64(7), entry["id"])
		assert.Equal(t, "ADD_CATEGORY", entry["action_type"])
		assert.Equal(t, target.String(), entry["target_id"])
	})

	t.Run("empty stack is not an error", func(t *testing.T) {
		svc := new(MockSessionService)
		undoer := new(MockUndoer)
		undoer.On("Undo", mock.Anything).Return(&undo.Result{Undone: false}, nil)
		svc.On("Status").Return(session.Status{})

		w, resp := doJSON(t, newTestEngine(NewSessionHandler(svc, undoer)), http.MethodPost, "/api/v1/session/undo", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := resp.Data.(map[string]any)
		assert.Equal(t, false, data["undone"])
		assert.NotContains(t, data, "entry")
	})

	t.Run("irreversible entry reports the block", func(t *testing.T) {
		svc := new(MockSessionService)
		undoer := new(MockUndoer)
		target := uuid.New()
		entry := &journal.Entry{ID: 12, ActionType: journal.ActionApproveTransaction, Description: "Approve transaction", TargetID: &target}
		undoer.On("Undo", mock.Anything).Return(&undo.Result{
			Undone:  false,
			Entry:   entry,
			Blocked: &undo.Block{EntryID: 12, ActionType: journal.ActionApproveTransaction, TargetID: &target, Reason: "approved transactions cannot be undone"},
		}, nil)
		svc.On("Status").Return(session.Status{ChangeCount: 1})

		w, resp := doJSON(t, newTestEngine(NewSessionHandler(svc, undoer)), http.MethodPost, "/api/v1/session/undo", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := resp.Data.(map[string]any)
		assert.Equal(t, false, data["undone"])
		blocked := data["blocked"].(map[string]any)
		assert.Equal(t, float64(12), blocked["entry_id"])
		assert.Equal(t, "APPROVE_TRANSACTION", blocked["action_type"])
		assert.Equal(t, target.String(), blocked["target_id"])
		assert.Equal(t, "approved transactions cannot be undone", blocked["reason"])
		assert.Equal(t, "POST /api/v1/session/clear-undo-stack", blocked["resolution"])
	})

	t.Run("state conflict from the store is a 409", func(t *testing.T) {
		undoer := new(MockUndoer)
		undoer.On("Undo", mock.Anything).Return(nil, shared.NewStateConflictError("product was modified concurrently"))

		w, resp := doJSON(t, newTestEngine(NewSessionHandler(new(MockSessionService), undoer)), http.MethodPost, "/api/v1/session/undo", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
		assert.Equal(t, "product was modified concurrently", resp.Error.Message)
	})
}

func TestSessionHandler_ResetAndClear(t *testing.T) {
	svc := new(MockSessionService)
	svc.On("Reset", mock.Anything).Return(session.Status{})
	svc.On("ClearUndoStack", mock.Anything).Return(int64(4), nil)
	engine := newTestEngine(NewSessionHandler(svc, new(MockUndoer)))

	w, _ := doJSON(t, engine, http.MethodPost, "/api/v1/session/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/session/clear-undo-stack", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), resp.Data.(map[string]any)["hidden"])
	svc.AssertExpectations(t)
}
