package validate

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/trustscan/internal/cache"
	"github.com/ppiankov/trustscan/internal/model"
)

// MemoChecker deduplicates reachability checks within one verification
// request. The same URL is often matched by more than one citation grammar;
// it is contacted once and every citation sees the same answer.
//
// A MemoChecker must not outlive its request.
type MemoChecker struct {
	next  LinkChecker
	store cache.Store[model.LinkCheck]
	group singleflight.Group
}

// NewMemoChecker wraps next with a request-scoped memo
func NewMemoChecker(next LinkChecker) *MemoChecker {
	return NewMemoCheckerWithStore(next, cache.NewMemoryStore[model.LinkCheck](cache.NoExpiration, 0))
}

// NewMemoCheckerWithStore wraps next, memoizing answers in store
func NewMemoCheckerWithStore(next LinkChecker, store cache.Store[model.LinkCheck]) *MemoChecker {
	return &MemoChecker{next: next, store: store}
}

// Check returns the memoized result for rawURL, checking it on first use
func (m *MemoChecker) Check(ctx context.Context, rawURL string) model.LinkCheck {
	key := cache.Key("link", rawURL)
	if check, ok := m.store.Get(key); ok {
		return check
	}

	v, _, _ := m.group.Do(key, func() (any, error) {
		check := m.next.Check(ctx, rawURL)
		// Cancellation is not an answer about the URL
		if ctx.Err() == nil {
			m.store.Set(key, check, cache.NoExpiration)
		}
		return check, nil
	})
	return v.(model.LinkCheck)
}
