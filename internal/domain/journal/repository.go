package journal

import (
	"context"
	"time"
)

// Repository persists journal entries
type Repository interface {
	// Append stores the entry and fills in its ID
	Append(ctx context.Context, entry *Entry) error
	FindByID(ctx context.Context, id int64) (*Entry, error)
	// ListVisible returns visible entries matching the filter
	ListVisible(ctx context.Context, filter ListFilter) ([]Entry, error)
	// MostRecentVisible returns the newest visible entry whose type is not excluded, or nil
	MostRecentVisible(ctx context.Context, exclude []ActionType) (*Entry, error)
	Delete(ctx context.Context, id int64) error
	// HideSince hides visible entries created at or after since, skipping excluded types
	HideSince(ctx context.Context, since time.Time, exclude []ActionType) (int64, error)
	// HideAll hides every visible entry, skipping excluded types
	HideAll(ctx context.Context, exclude []ActionType) (int64, error)
	// PurgeHiddenBefore removes hidden entries created before the cutoff
	PurgeHiddenBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
