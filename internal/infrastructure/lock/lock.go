// Package lock provides per-product mutual exclusion for stock transaction approval.
package lock

import (
	"sort"

	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
)

// sortedUnique returns the ids deduplicated in ascending order. Every locker acquires in this
// order so two approvals over overlapping products cannot deadlock.
func sortedUnique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

func busyError(id uuid.UUID) error {
	return shared.NewStateConflictError("product is locked by another approval").With("product_id", id)
}
