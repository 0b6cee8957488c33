package upload

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Resolver picks a reachable grading endpoint from an ordered
// candidate list by probing each with a short-timeout health check.
type Resolver struct {
	// Default is returned when no candidate responds: resolution is
	// fail-open so the subsequent upload still runs and produces a
	// diagnosable error.
	Default string

	// ProbeTimeout bounds each individual probe.
	ProbeTimeout time.Duration

	client *http.Client
}

// NewResolver creates a Resolver with the given fail-open default.
func NewResolver(defaultAddr string, probeTimeout time.Duration) *Resolver {
	if probeTimeout <= 0 {
		probeTimeout = 3 * time.Second
	}
	return &Resolver{
		Default:      defaultAddr,
		ProbeTimeout: probeTimeout,
		client:       &http.Client{},
	}
}

// Resolve returns the first candidate whose /status probe answers 2xx.
// A single sequential pass, one probe per candidate, no retries. When
// every probe fails the configured default is returned.
func (r *Resolver) Resolve(ctx context.Context, candidates []string) string {
	for _, addr := range candidates {
		if r.probe(ctx, addr) {
			slog.Debug("endpoint resolved", "addr", addr)
			return addr
		}
		if ctx.Err() != nil {
			break
		}
	}
	slog.Warn("no endpoint candidate reachable, using default", "addr", r.Default)
	return r.Default
}

// probe issues GET {addr}/status; any 2xx counts as reachable.
func (r *Resolver) probe(ctx context.Context, addr string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, r.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, addr+"/status", nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
