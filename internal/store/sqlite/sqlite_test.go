package sqlite

import (
	"context"
	"testing"

	"github.com/vovakirdan/wirechat-irc/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ev := &store.SessionEvent{SessionID: "s1", Kind: store.EventConnect, Address: "127.0.0.1"}
	if err := s.Record(ctx, ev); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if ev.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	if ev.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be filled in")
	}

	if err := s.Record(ctx, nil); err == nil {
		t.Fatalf("expected error for nil event")
	}
}

func TestListEventsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []store.SessionEvent{
		{SessionID: "s1", Kind: store.EventConnect, Address: "10.0.0.1"},
		{SessionID: "s1", Kind: store.EventRegister, Nick: "alice", Address: "10.0.0.1"},
		{SessionID: "s2", Kind: store.EventConnect, Address: "10.0.0.2"},
		{SessionID: "s2", Kind: store.EventRegister, Nick: "bob", Address: "10.0.0.2"},
		{SessionID: "s1", Kind: store.EventNick, Nick: "alicia", Detail: "alice"},
		{SessionID: "s1", Kind: store.EventQuit, Nick: "alicia", Detail: "bye"},
	}
	for i := range seed {
		if err := s.Record(ctx, &seed[i]); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	tests := []struct {
		name     string
		filter   store.EventFilter
		expected []store.EventKind
	}{
		{
			name:     "by session newest first",
			filter:   store.EventFilter{SessionID: "s1"},
			expected: []store.EventKind{store.EventQuit, store.EventNick, store.EventRegister, store.EventConnect},
		},
		{
			name:     "by nick",
			filter:   store.EventFilter{Nick: "alicia"},
			expected: []store.EventKind{store.EventQuit, store.EventNick},
		},
		{
			name:     "by kind",
			filter:   store.EventFilter{Kind: store.EventConnect},
			expected: []store.EventKind{store.EventConnect, store.EventConnect},
		},
		{
			name:     "limit",
			filter:   store.EventFilter{Limit: 2},
			expected: []store.EventKind{store.EventQuit, store.EventNick},
		},
		{
			name:     "no match",
			filter:   store.EventFilter{Nick: "zed"},
			expected: []store.EventKind{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := s.ListEvents(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListEvents failed: %v", err)
			}
			if len(events) != len(tt.expected) {
				t.Fatalf("expected %d events, got %d", len(tt.expected), len(events))
			}
			for i, ev := range events {
				if ev.Kind != tt.expected[i] {
					t.Errorf("expected %s at index %d, got %s", tt.expected[i], i, ev.Kind)
				}
			}
		})
	}
}

func TestDiscardJournal(t *testing.T) {
	ctx := context.Background()
	if err := store.Discard.Record(ctx, &store.SessionEvent{Kind: store.EventConnect}); err != nil {
		t.Fatalf("discard record: %v", err)
	}
	events, err := store.Discard.ListEvents(ctx, store.EventFilter{})
	if err != nil || len(events) != 0 {
		t.Fatalf("expected empty discard listing, got %v %v", events, err)
	}
}
