package ledger

import (
	"context"
	"fmt"
	"sync"

	"macro-canary/internal/domain"
)

// Store persists delivered fingerprints across restarts. It may be absent,
// in which case the ledger lives for the process lifetime only.
type Store interface {
	LoadKnownHashes(ctx context.Context) (map[string]struct{}, error)
	InsertEvent(ctx context.Context, hash string, e domain.Event) error
}

// Ledger is the set of message fingerprints that have already been
// delivered. It only grows: an entry is added after a notification for it
// succeeded, never before, so an absent fingerprint always means "still owed
// a notification".
type Ledger struct {
	mu    sync.Mutex
	known map[string]struct{}
	store Store
}

// New creates a ledger. A nil store gives a memory-only ledger.
func New(store Store) *Ledger {
	return &Ledger{known: make(map[string]struct{}), store: store}
}

// Load seeds the in-memory set from the durable store. Called once at
// startup; the set is never reloaded mid-run.
func (l *Ledger) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	known, err := l.store.LoadKnownHashes(ctx)
	if err != nil {
		return fmt.Errorf("load known fingerprints: %w", err)
	}
	l.mu.Lock()
	for h := range known {
		l.known[h] = struct{}{}
	}
	l.mu.Unlock()
	return nil
}

// Contains reports whether a fingerprint has already been delivered.
func (l *Ledger) Contains(fp string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.known[fp]
	return ok
}

// Record marks a fingerprint as delivered. The in-memory set is updated even
// when the durable insert fails: the message already reached the channel, so
// it must not be re-sent within this process lifetime. The insert itself is
// idempotent, a fingerprint recorded twice is a no-op.
func (l *Ledger) Record(ctx context.Context, fp string, e domain.Event) error {
	l.mu.Lock()
	l.known[fp] = struct{}{}
	l.mu.Unlock()

	if l.store == nil {
		return nil
	}
	if err := l.store.InsertEvent(ctx, fp, e); err != nil {
		return fmt.Errorf("persist fingerprint: %w", err)
	}
	return nil
}

// Size returns the number of known fingerprints.
func (l *Ledger) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.known)
}
