package handler

import (
	"context"
	"time"

	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// JournalReader lists the visible journal
type JournalReader interface {
	ListVisible(ctx context.Context, filter journal.ListFilter) ([]journal.Entry, error)
}

// JournalHandler serves the action history
type JournalHandler struct {
	BaseHandler
	journal JournalReader
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journal JournalReader) *JournalHandler {
	return &JournalHandler{journal: journal}
}

// JournalEntryResponse represents a journal entry in API responses
type JournalEntryResponse struct {
	ID          int64              `json:"id"`
	ActionType  journal.ActionType `json:"action_type"`
	Description string             `json:"description"`
	TargetID    *uuid.UUID         `json:"target_id,omitempty"`
	Snapshot    map[string]any     `json:"snapshot,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ToJournalEntryResponse converts a journal entry to its API form
func ToJournalEntryResponse(e *journal.Entry) JournalEntryResponse {
	return JournalEntryResponse{
		ID:          e.ID,
		ActionType:  e.ActionType,
		Description: e.Description,
		TargetID:    e.TargetID,
		Snapshot:    e.BeforeSnapshot,
		CreatedAt:   e.CreatedAt,
	}
}

// JournalQuery holds the query string of a journal listing
type JournalQuery struct {
	ActionType string     `form:"action_type"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Order      string     `form:"order" binding:"omitempty,oneof=asc desc"`
	Limit      int        `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// toFilter leaves semantic checks such as an unknown action type to the service
func (q JournalQuery) toFilter() journal.ListFilter {
	f := journal.ListFilter{
		From:  q.From,
		To:    q.To,
		Order: journal.Order(q.Order),
		Limit: q.Limit,
	}
	if q.ActionType != "" {
		at := journal.ActionType(q.ActionType)
		f.ActionType = &at
	}
	return f
}

// List godoc
// @Summary      List the visible action history
// @Tags         journal
// @Produce      json
// @Param        action_type query string false "Only this action type"
// @Param        from query string false "RFC 3339 lower bound"
// @Param        to query string false "RFC 3339 upper bound"
// @Param        order query string false "asc or desc" default(desc)
// @Param        limit query int false "Maximum entries"
// @Router       /journal [get]
func (h *JournalHandler) List(c *gin.Context) {
	var q JournalQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}

	entries, err := h.journal.ListVisible(c.Request.Context(), q.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToJournalEntryResponse(&entries[i])
	}
	h.SuccessList(c, out, len(out), 1, q.Limit)
}

// RegisterRoutes mounts the journal routes
func (h *JournalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/journal", h.List)
}
