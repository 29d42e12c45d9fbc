package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"clipwatch/pkg/watcher"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store, values ...string) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, v := range values {
		source := watcher.SourceClipboard
		if i%2 == 1 {
			source = watcher.SourceSelection
		}
		_, err := s.Record(context.Background(), watcher.Change{
			Source:     source,
			Value:      v,
			Seq:        int64(i + 1),
			ObservedAt: base.Add(time.Duration(i) * time.Second),
			SessionID:  "s1",
		})
		if err != nil {
			t.Fatalf("Record(%q) error = %v", v, err)
		}
	}
}

func TestStore_RecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, "one", "two", "three")

	entries, err := s.Recent(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	want := []string{"three", "two", "one"}
	if len(entries) != len(want) {
		t.Fatalf("Recent() returned %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Content != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Content, want[i])
		}
		if e.Hash != Hash(e.Content) {
			t.Errorf("entry %d hash mismatch", i)
		}
		if e.ID == "" {
			t.Errorf("entry %d has no ID", i)
		}
	}

	sel, err := s.Recent(context.Background(), string(watcher.SourceSelection), 10)
	if err != nil {
		t.Fatalf("Recent(selection) error = %v", err)
	}
	if len(sel) != 1 || sel[0].Content != "two" {
		t.Errorf("Recent(selection) = %+v, want [two]", sel)
	}
}

func TestStore_Search(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, "hello world", "100% done", "goodbye")

	tests := []struct {
		query string
		want  int
	}{
		{query: "world", want: 1},
		{query: "%", want: 1},
		{query: "o", want: 3},
		{query: "missing", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Search(context.Background(), tt.query, 10)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Search(%q) returned %d entries, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "100%_a\\b", want: "100\\%\\_a\\\\b"},
		{in: "é%", want: "é\\%"},
		{in: "\xff\xfe%", want: "\xff\xfe\\%"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := escapeLike(tt.in); got != tt.want {
				t.Errorf("escapeLike(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStore_Prune(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, "a", "b", "c", "d")

	deleted, err := s.Prune(context.Background(), 2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() deleted %d, want 2", deleted)
	}
	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
	entries, _ := s.Recent(context.Background(), "", 10)
	if len(entries) != 2 || entries[0].Content != "d" || entries[1].Content != "c" {
		t.Errorf("remaining entries = %+v, want [d c]", entries)
	}
}

func TestHash(t *testing.T) {
	if Hash("a") == Hash("b") {
		t.Error("different content should hash differently")
	}
	if len(Hash("")) != 64 {
		t.Errorf("Hash length = %d, want 64", len(Hash("")))
	}
}
