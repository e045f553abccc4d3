package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryLocker locks products within a single process
type InMemoryLocker struct {
	mu        sync.Mutex
	held      map[uuid.UUID]chan struct{}
	waitLimit time.Duration
}

// NewInMemoryLocker creates a locker that gives up after waitLimit; zero waits until ctx ends
func NewInMemoryLocker(waitLimit time.Duration) *InMemoryLocker {
	return &InMemoryLocker{
		held:      make(map[uuid.UUID]chan struct{}),
		waitLimit: waitLimit,
	}
}

// Acquire locks every product or none
func (l *InMemoryLocker) Acquire(ctx context.Context, productIDs []uuid.UUID) (func(), error) {
	if l.waitLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.waitLimit)
		defer cancel()
	}

	ids := sortedUnique(productIDs)
	acquired := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if err := l.lock(ctx, id); err != nil {
			l.unlock(acquired)
			return nil, err
		}
		acquired = append(acquired, id)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.unlock(acquired) })
	}, nil
}

func (l *InMemoryLocker) lock(ctx context.Context, id uuid.UUID) error {
	for {
		l.mu.Lock()
		ch, busy := l.held[id]
		if !busy {
			l.held[id] = make(chan struct{})
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return busyError(id)
		}
	}
}

func (l *InMemoryLocker) unlock(ids []uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		if ch, ok := l.held[id]; ok {
			close(ch)
			delete(l.held, id)
		}
	}
}
