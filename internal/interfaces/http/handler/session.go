package handler

import (
	"context"

	appsession "github.com/erp/warehouse/internal/application/session"
	"github.com/erp/warehouse/internal/application/undo"
	"github.com/erp/warehouse/internal/domain/session"
	"github.com/gin-gonic/gin"
)

// SessionService is the save-point workflow
type SessionService interface {
	Status() session.Status
	Commit(ctx context.Context) session.Status
	Rollback(ctx context.Context) (*appsession.RollbackResult, error)
	Reset(ctx context.Context) session.Status
	ClearUndoStack(ctx context.Context) (int64, error)
}

// Undoer reverses the most recent change
type Undoer interface {
	Undo(ctx context.Context) (*undo.Result, error)
}

// SessionHandler serves the session status, save points and undo
type SessionHandler struct {
	BaseHandler
	session SessionService
	undoer  Undoer
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(session SessionService, undoer Undoer) *SessionHandler {
	return &SessionHandler{session: session, undoer: undoer}
}

// RollbackResponse reports what a rollback discarded
type RollbackResponse struct {
	appsession.RollbackResult
	Session session.Status `json:"session"`
}

// UndoResponse reports the outcome of an undo request. Blocked is set while the top of the
// stack is irreversible; it stays set until the stack is cleared.
type UndoResponse struct {
	Undone  bool                  `json:"undone"`
	Entry   *JournalEntryResponse `json:"entry,omitempty"`
	Blocked *UndoBlockResponse    `json:"blocked,omitempty"`
	Session session.Status        `json:"session"`
}

// UndoBlockResponse names the entry that stops undo and how to get past it
type UndoBlockResponse struct {
	undo.Block
	Resolution string `json:"resolution"`
}

// undoBlockResolution is the route that removes a blocking entry from the stack
const undoBlockResolution = "POST /api/v1/session/clear-undo-stack"

// ClearUndoStackResponse reports how many entries left the undo stack
type ClearUndoStackResponse struct {
	Hidden int64 `json:"hidden"`
}

// Status godoc
// @Summary      Unsaved change counters
// @Tags         session
// @Produce      json
// @Router       /session [get]
func (h *SessionHandler) Status(c *gin.Context) {
	h.Success(c, h.session.Status())
}

// Commit godoc
// @Summary      Accept the unsaved changes
// @Tags         session
// @Produce      json
// @Router       /session/commit [post]
func (h *SessionHandler) Commit(c *gin.Context) {
	h.Success(c, h.session.Commit(c.Request.Context()))
}

// Rollback godoc
// @Summary      Discard the unsaved changes from the undo stack
// @Tags         session
// @Produce      json
// @Router       /session/rollback [post]
func (h *SessionHandler) Rollback(c *gin.Context) {
	result, err := h.session.Rollback(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RollbackResponse{RollbackResult: *result, Session: h.session.Status()})
}

// Reset godoc
// @Summary      Start a fresh session
// @Tags         session
// @Produce      json
// @Router       /session/reset [post]
func (h *SessionHandler) Reset(c *gin.Context) {
	h.Success(c, h.session.Reset(c.Request.Context()))
}

// Undo godoc
// @Summary      Undo the most recent change
// @Description  Answers 200 with undone=false when there is nothing to undo, and with
// @Description  undone=false plus blocked when the most recent change is irreversible.
// @Tags         session
// @Produce      json
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /session/undo [post]
func (h *SessionHandler) Undo(c *gin.Context) {
	result, err := h.undoer.Undo(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := UndoResponse{Undone: result.Undone, Session: h.session.Status()}
	if result.Entry != nil {
		entry := ToJournalEntryResponse(result.Entry)
		resp.Entry = &entry
	}
	if result.Blocked != nil {
		resp.Blocked = &UndoBlockResponse{Block: *result.Blocked, Resolution: undoBlockResolution}
	}
	h.Success(c, resp)
}

// ClearUndoStack godoc
// @Summary      Hide every undoable entry
// @Tags         session
// @Produce      json
// @Router       /session/clear-undo-stack [post]
func (h *SessionHandler) ClearUndoStack(c *gin.Context) {
	hidden, err := h.session.ClearUndoStack(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ClearUndoStackResponse{Hidden: hidden})
}

// RegisterRoutes mounts the session routes
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/session")
	g.GET("", h.Status)
	g.POST("/commit", h.Commit)
	g.POST("/rollback", h.Rollback)
	g.POST("/reset", h.Reset)
	g.POST("/undo", h.Undo)
	g.POST("/clear-undo-stack", h.ClearUndoStack)
}
