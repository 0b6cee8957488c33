package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func statusServer(t *testing.T, code int, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.URL.Path != "/status" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(code)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolve_FirstHealthyWins(t *testing.T) {
	var downHits, upHits, spareHits atomic.Int32
	down := statusServer(t, http.StatusInternalServerError, &downHits)
	up := statusServer(t, http.StatusOK, &upHits)
	spare := statusServer(t, http.StatusOK, &spareHits)

	r := NewResolver("http://fallback.local", 2*time.Second)
	got := r.Resolve(context.Background(), []string{down.URL, up.URL, spare.URL})

	if got != up.URL {
		t.Fatalf("resolved %q, want %q", got, up.URL)
	}
	if downHits.Load() != 1 || upHits.Load() != 1 {
		t.Fatalf("each candidate before the healthy one gets exactly one probe: down=%d up=%d",
			downHits.Load(), upHits.Load())
	}
	if spareHits.Load() != 0 {
		t.Fatal("candidates after the healthy one must not be probed")
	}
}

func TestResolve_FailOpenToDefault(t *testing.T) {
	down := statusServer(t, http.StatusServiceUnavailable, nil)

	r := NewResolver("http://fallback.local", time.Second)
	got := r.Resolve(context.Background(), []string{down.URL, "http://127.0.0.1:1"})

	if got != "http://fallback.local" {
		t.Fatalf("resolver must fail open to the default, got %q", got)
	}
}

func TestResolve_NoCandidates(t *testing.T) {
	r := NewResolver("http://fallback.local", time.Second)
	if got := r.Resolve(context.Background(), nil); got != "http://fallback.local" {
		t.Fatalf("empty candidate list must yield the default, got %q", got)
	}
}

func TestResolve_ProbeTimeoutBounded(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	t.Cleanup(slow.Close)

	r := NewResolver("http://fallback.local", 50*time.Millisecond)
	start := time.Now()
	got := r.Resolve(context.Background(), []string{slow.URL})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("probe not bounded by its timeout, took %v", elapsed)
	}
	if got != "http://fallback.local" {
		t.Fatalf("slow candidate must not resolve, got %q", got)
	}
}
