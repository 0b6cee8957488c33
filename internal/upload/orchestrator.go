// Package upload coordinates the resilient submission of a homework
// image: endpoint resolution, multipart construction, the long HTTP
// call, failure classification, bounded classified backoff, and
// cooperative cancellation.
package upload

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/csh0601/snapgrade/internal/grading"
	"github.com/csh0601/snapgrade/internal/normalize"
)

// State tracks one logical submission through its lifecycle.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateUploading
	StateRetrying
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateUploading:
		return "uploading"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Config holds the orchestrator's externally supplied knobs.
type Config struct {
	// DefaultEndpoint is the statically configured server address,
	// also the resolver's fail-open fallback.
	DefaultEndpoint string

	// Candidates are probed in order on the first attempt of each
	// logical submission.
	Candidates []string

	// ProbeTimeout bounds each liveness probe. Seconds.
	ProbeTimeout time.Duration

	// RequestTimeout bounds one upload attempt. Minutes: grading a
	// photographed page can take a while server-side.
	RequestTimeout time.Duration

	Retry RetryPolicy

	// PassiveProbe lets a backoff wait end early when a lightweight
	// connectivity probe against the resolved endpoint answers.
	PassiveProbe bool

	// Messages maps an error kind to the user-facing text attached
	// to the final summarized error. Optional.
	Messages func(Kind) string
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig(defaultEndpoint string) Config {
	return Config{
		DefaultEndpoint: defaultEndpoint,
		ProbeTimeout:    3 * time.Second,
		RequestTimeout:  4 * time.Minute,
		Retry:           DefaultRetryPolicy(),
		PassiveProbe:    true,
	}
}

// Orchestrator runs logical submissions. Attempts within one
// submission are strictly sequential; the endpoint is resolved once on
// the first attempt and reused on retries. It performs no persistence:
// the caller saves the returned result.
type Orchestrator struct {
	cfg      Config
	sub      Submitter
	resolver *Resolver

	mu    sync.Mutex
	state State
}

// New creates an Orchestrator over the given Submitter.
func New(cfg Config, sub Submitter) *Orchestrator {
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	return &Orchestrator{
		cfg:      cfg,
		sub:      sub,
		resolver: NewResolver(cfg.DefaultEndpoint, cfg.ProbeTimeout),
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Submit sends the image and returns the normalized grading result.
// Cancelling ctx is terminal: no further attempt starts, and the
// returned error satisfies IsCancelled. All other failures come back
// as *Error with a classified kind once the retry bound is exhausted
// or a non-retryable kind is hit.
func (o *Orchestrator) Submit(ctx context.Context, imageRef string) (*grading.Result, error) {
	var endpoint string

	for attempt := 1; ; attempt++ {
		// Resolution runs only on the first attempt; retries of the
		// same logical submission reuse the resolved address.
		if attempt == 1 {
			o.setState(StateResolving)
			endpoint = o.resolver.Resolve(ctx, o.cfg.Candidates)
		}

		o.setState(StateUploading)
		payload, err := o.attempt(ctx, endpoint, imageRef)
		if err == nil {
			o.setState(StateSucceeded)
			res := normalize.Normalize(payload)
			if res.TaskID == "" {
				res.TaskID = uuid.New().String()
			}
			return res, nil
		}

		if ctx.Err() != nil {
			o.setState(StateCancelled)
			return nil, &Error{Kind: KindCancelled, Err: ctx.Err()}
		}

		uerr := Classify(err)
		if uerr.Kind == KindCancelled {
			o.setState(StateCancelled)
			return nil, uerr
		}

		decision := o.cfg.Retry.NextAction(uerr.Kind, attempt)
		if decision.Action == ActionAbort {
			o.setState(StateFailed)
			return nil, o.summarize(uerr)
		}

		o.setState(StateRetrying)
		slog.Info("submission attempt failed, retrying",
			"attempt", attempt, "kind", uerr.Kind, "delay", decision.Delay)
		if err := o.wait(ctx, endpoint, decision.Delay); err != nil {
			o.setState(StateCancelled)
			return nil, &Error{Kind: KindCancelled, Err: err}
		}
	}
}

// attempt runs one bounded upload attempt.
func (o *Orchestrator) attempt(ctx context.Context, endpoint, imageRef string) ([]byte, error) {
	attemptCtx := ctx
	if o.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, o.cfg.RequestTimeout)
		defer cancel()
	}
	return o.sub.Submit(attemptCtx, endpoint, imageRef)
}

// wait sleeps for the backoff delay. A passive connectivity probe may
// end the wait early when the endpoint answers again; probe failures
// are ignored. Cancellation wins over both.
func (o *Orchestrator) wait(ctx context.Context, endpoint string, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	recovered := make(chan struct{}, 1)
	if o.cfg.PassiveProbe && endpoint != "" {
		go func() {
			if o.resolver.probe(ctx, endpoint) {
				recovered <- struct{}{}
			}
		}()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	case <-recovered:
		slog.Debug("endpoint recovered during backoff", "addr", endpoint)
		return nil
	}
}

// summarize fills the user-facing message on the surfaced error.
// Server-provided messages (bad request, file type) take precedence.
func (o *Orchestrator) summarize(uerr *Error) *Error {
	if uerr.Message == "" && o.cfg.Messages != nil {
		uerr.Message = o.cfg.Messages(uerr.Kind)
	}
	return uerr
}
