package refdata

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Notice is a user facing, dismissible prompt asking for explicit consent
// before a download proceeds.
type Notice struct {
	Key         string
	Message     string
	ActionLabel string

	// Action performs the deferred operation, typically a forced fetch of
	// the dataset named by Key.
	Action func(ctx context.Context) error
}

// Noticeboard collects pending notices, at most one per dataset key. Raising
// a second notice for a key replaces the outstanding one instead of
// stacking.
type Noticeboard struct {
	mu      sync.Mutex
	pending map[string]Notice
}

// NewNoticeboard creates an empty noticeboard.
func NewNoticeboard() *Noticeboard {
	return &Noticeboard{
		pending: make(map[string]Notice),
	}
}

// Raise posts a notice, replacing any outstanding notice for the same key.
func (b *Noticeboard) Raise(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[n.Key] = n
}

// Dismiss drops the outstanding notice for key, if any.
func (b *Noticeboard) Dismiss(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, key)
}

// Pending returns the outstanding notices ordered by key.
func (b *Noticeboard) Pending() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	notices := lo.Values(b.pending)
	sort.Slice(notices, func(i, j int) bool { return notices[i].Key < notices[j].Key })
	return notices
}
