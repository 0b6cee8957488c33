package upload

import (
	"testing"
	"time"
)

func testPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseWait:    10 * time.Millisecond,
		MaxWait:     40 * time.Millisecond,
	}
}

func TestNextAction_NonRetryableAbortsImmediately(t *testing.T) {
	p := testPolicy()
	for _, kind := range []Kind{KindBadRequest, KindFileType, KindCancelled} {
		d := p.NextAction(kind, 1)
		if d.Action != ActionAbort {
			t.Fatalf("%s on attempt 1 should abort, got retry", kind)
		}
	}
}

func TestNextAction_RetryableUntilBound(t *testing.T) {
	p := testPolicy()
	for _, kind := range []Kind{KindNetwork, KindTimeout, KindServer, KindUnknown, KindDNS} {
		if d := p.NextAction(kind, 1); d.Action != ActionRetry {
			t.Fatalf("%s on attempt 1 should retry", kind)
		}
		if d := p.NextAction(kind, 2); d.Action != ActionRetry {
			t.Fatalf("%s on attempt 2 should retry", kind)
		}
		if d := p.NextAction(kind, 3); d.Action != ActionAbort {
			t.Fatalf("%s on attempt 3 (== max) should abort", kind)
		}
	}
}

func TestNextAction_NetworkKindsWaitLonger(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseWait: 100 * time.Millisecond, MaxWait: time.Hour}

	// Jitter is ±20%, so compare against the widest possible generic
	// delay and the narrowest possible network delay.
	generic := p.NextAction(KindUnknown, 1).Delay
	network := p.NextAction(KindTimeout, 1).Delay
	if float64(network) < float64(generic) {
		// With base 100ms vs 200ms the jittered ranges don't overlap:
		// generic <= 120ms < 160ms <= network.
		t.Fatalf("network-shaped delay %v not longer than generic %v", network, generic)
	}
}

func TestNextAction_DelayGrowsWithAttempt(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 10, BaseWait: 100 * time.Millisecond, MaxWait: time.Hour}
	d1 := p.NextAction(KindServer, 1).Delay
	d4 := p.NextAction(KindServer, 4).Delay
	if d4 <= d1 {
		t.Fatalf("delay should grow with attempt: attempt1=%v attempt4=%v", d1, d4)
	}
}

func TestNextAction_DelayCapped(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 100, BaseWait: time.Second, MaxWait: 2 * time.Second}
	d := p.NextAction(KindNetwork, 50).Delay
	// Cap plus worst-case jitter.
	if d > 2*time.Second+2*time.Second/5 {
		t.Fatalf("delay %v exceeds cap with jitter", d)
	}
}

func TestKindRetryable(t *testing.T) {
	if KindBadRequest.Retryable() || KindFileType.Retryable() || KindCancelled.Retryable() {
		t.Fatal("input defects and cancellation must not be retryable")
	}
	if !KindNetwork.Retryable() || !KindServer.Retryable() || !KindUnknown.Retryable() {
		t.Fatal("transient kinds must be retryable")
	}
}
