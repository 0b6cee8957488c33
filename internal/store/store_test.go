package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)
	v, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Fatalf("missing key must read as nil, got %q", v)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "records", []byte(`[1,2,3]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, err := s.Get(ctx, "records")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(v) != `[1,2,3]` {
		t.Fatalf("got %q", v)
	}
}

func TestPutReplacesWholeValue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "records", []byte(`old`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "records", []byte(`new`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, _ := s.Get(ctx, "records")
	if string(v) != "new" {
		t.Fatalf("last full write must win, got %q", v)
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	s := openTestStore(t)
	if err := s.Delete(context.Background(), "absent"); err != nil {
		t.Fatalf("deleting a missing key must not error: %v", err)
	}
}
