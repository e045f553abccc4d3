package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ProductLocker serializes approvals that touch the same products. Acquire takes every lock or
// none and returns a function that releases them.
type ProductLocker interface {
	Acquire(ctx context.Context, productIDs []uuid.UUID) (release func(), err error)
}
