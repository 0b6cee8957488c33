package upload

import (
	"math/rand"
	"time"
)

// Action is the retry policy's verdict for a failed attempt.
type Action int

const (
	// ActionRetry means wait Decision.Delay and try again.
	ActionRetry Action = iota
	// ActionAbort means surface the failure without consuming the
	// remaining attempts.
	ActionAbort
)

// Decision is the policy output for one failed attempt.
type Decision struct {
	Action Action
	Delay  time.Duration
}

// RetryPolicy computes backoff decisions. It is pure: the orchestrator
// drives it with (kind, attempt) pairs, which keeps the policy
// unit-testable without a transport.
type RetryPolicy struct {
	// MaxAttempts bounds the retry loop, counting the first attempt.
	MaxAttempts int

	// BaseWait is the first-retry delay for generic failures.
	// Network-shaped failures wait double.
	BaseWait time.Duration

	// MaxWait caps the computed delay.
	MaxWait time.Duration
}

// DefaultRetryPolicy mirrors the production client: three attempts,
// one-second base delay, ten-second ceiling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseWait:    1 * time.Second,
		MaxWait:     10 * time.Second,
	}
}

// NextAction decides what to do after attempt number attempt (1-based)
// failed with the given kind.
func (p RetryPolicy) NextAction(kind Kind, attempt int) Decision {
	if !kind.Retryable() {
		return Decision{Action: ActionAbort}
	}
	if attempt >= p.MaxAttempts {
		return Decision{Action: ActionAbort}
	}
	return Decision{Action: ActionRetry, Delay: p.backoff(kind, attempt)}
}

// backoff scales the delay with both the attempt number and the error
// kind: failures that indicate the network itself is unhealthy wait
// longer than generic ones.
func (p RetryPolicy) backoff(kind Kind, attempt int) time.Duration {
	base := p.BaseWait
	switch kind {
	case KindNetwork, KindTimeout, KindConnectionAbort, KindConnectionRefused, KindDNS:
		base *= 2
	}

	wait := time.Duration(attempt) * base
	if wait > p.MaxWait {
		wait = p.MaxWait
	}

	// ±20% jitter keeps recovering clients from retrying in lockstep.
	jitter := float64(wait) * 0.2 * (2*rand.Float64() - 1)
	wait += time.Duration(jitter)
	if wait < 0 {
		wait = 0
	}
	return wait
}
