package journal

import (
	"context"
	"sync"

	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/google/uuid"
)

// WarningNotJournaled marks a change that was applied but has no journal entry, so it is neither
// undoable nor counted as unsaved
const WarningNotJournaled = "NOT_JOURNALED"

// Warning is a non-fatal problem with a request that otherwise succeeded
type Warning struct {
	Code       string             `json:"code"`
	Message    string             `json:"message"`
	ActionType journal.ActionType `json:"action_type,omitempty"`
	TargetID   *uuid.UUID         `json:"target_id,omitempty"`
}

// Warnings collects the warnings raised while serving one request
type Warnings struct {
	mu    sync.Mutex
	items []Warning
}

// Add appends w
func (ws *Warnings) Add(w Warning) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.items = append(ws.items, w)
}

// List returns a copy of the collected warnings. A nil collector has none.
func (ws *Warnings) List() []Warning {
	if ws == nil {
		return nil
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if len(ws.items) == 0 {
		return nil
	}
	out := make([]Warning, len(ws.items))
	copy(out, ws.items)
	return out
}

type warningsKey struct{}

// ContextWithWarnings attaches a fresh collector to ctx
func ContextWithWarnings(ctx context.Context) (context.Context, *Warnings) {
	ws := &Warnings{}
	return context.WithValue(ctx, warningsKey{}, ws), ws
}

// WarningsFrom returns the collector attached to ctx, or nil
func WarningsFrom(ctx context.Context) *Warnings {
	ws, _ := ctx.Value(warningsKey{}).(*Warnings)
	return ws
}

// AddWarning records w on the collector attached to ctx. Without one it is dropped.
func AddWarning(ctx context.Context, w Warning) {
	if ws := WarningsFrom(ctx); ws != nil {
		ws.Add(w)
	}
}
