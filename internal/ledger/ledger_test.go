package ledger

import (
	"context"
	"errors"
	"testing"

	"macro-canary/internal/domain"
)

type stubStore struct {
	known     map[string]struct{}
	loadErr   error
	insertErr error
	inserted  []string
}

func (s *stubStore) LoadKnownHashes(ctx context.Context) (map[string]struct{}, error) {
	return s.known, s.loadErr
}

func (s *stubStore) InsertEvent(ctx context.Context, hash string, e domain.Event) error {
	s.inserted = append(s.inserted, hash)
	return s.insertErr
}

func TestLoadSeedsFromStore(t *testing.T) {
	store := &stubStore{known: map[string]struct{}{"0xaa": {}, "0xbb": {}}}
	l := New(store)

	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.Contains("0xaa") || !l.Contains("0xbb") {
		t.Fatal("expected seeded fingerprints to be known")
	}
	if l.Size() != 2 {
		t.Fatalf("expected size 2, got %d", l.Size())
	}
}

func TestLoadPropagatesStoreError(t *testing.T) {
	l := New(&stubStore{loadErr: errors.New("connection refused")})
	if err := l.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
}

func TestMemoryOnlyLedger(t *testing.T) {
	l := New(nil)
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Record(context.Background(), "0xcc", domain.Event{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.Contains("0xcc") {
		t.Fatal("expected recorded fingerprint to be known")
	}
}

func TestRecordPersists(t *testing.T) {
	store := &stubStore{}
	l := New(store)

	e := domain.Event{Name: "CPI (YoY)", Currency: "USD", Actual: "2.1%"}
	if err := l.Record(context.Background(), "0xdd", e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.inserted) != 1 || store.inserted[0] != "0xdd" {
		t.Fatalf("expected one insert of 0xdd, got %v", store.inserted)
	}
}

func TestRecordKeepsMemoryOnPersistFailure(t *testing.T) {
	l := New(&stubStore{insertErr: errors.New("disk full")})

	err := l.Record(context.Background(), "0xee", domain.Event{})
	if err == nil {
		t.Fatal("expected persist error to surface")
	}
	// The notification already went out; memory must remember it regardless.
	if !l.Contains("0xee") {
		t.Fatal("fingerprint must stay recorded in memory after persist failure")
	}
}
