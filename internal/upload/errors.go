package upload

import (
	"errors"
	"fmt"
)

// Kind classifies a submission failure. The retry policy keys off it:
// client-side input defects are never retried, everything else is
// transient up to the attempt bound.
type Kind string

const (
	// KindNetwork is a transport-level failure: no response reached
	// the client.
	KindNetwork Kind = "network"

	// KindTimeout means the request exceeded its deadline.
	KindTimeout Kind = "timeout"

	// KindConnectionAbort means the connection dropped mid-transfer.
	KindConnectionAbort Kind = "connection_abort"

	// KindConnectionRefused means the host actively refused the
	// connection.
	KindConnectionRefused Kind = "connection_refused"

	// KindDNS means the host could not be resolved.
	KindDNS Kind = "dns_error"

	// KindBadRequest is a 4xx with a structured error body.
	// Never retried: the input defect is client-side.
	KindBadRequest Kind = "bad_request"

	// KindFileType is the bad-request refinement for "the server
	// rejected the submitted file's type". Never retried.
	KindFileType Kind = "file_type_error"

	// KindServer is a 5xx.
	KindServer Kind = "server_error"

	// KindCancelled is caller-initiated cancellation. Not a failure:
	// it is a terminal state the caller checks for explicitly.
	KindCancelled Kind = "cancelled"

	// KindUnknown covers everything the classifier cannot place.
	KindUnknown Kind = "unknown"
)

// Retryable reports whether another attempt can change the outcome.
func (k Kind) Retryable() bool {
	switch k {
	case KindBadRequest, KindFileType, KindCancelled:
		return false
	default:
		return true
	}
}

// Error is a classified submission failure.
type Error struct {
	Kind Kind

	// Message is the user-facing text: the server-provided message
	// for bad requests, otherwise a per-kind summary filled in when
	// the attempt bound is exhausted.
	Message string

	// Status is the HTTP status code, when one was received.
	Status int

	Err error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classified kind from an error chain,
// KindUnknown if none is present.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return KindUnknown
}

// IsCancelled reports whether the error chain represents
// caller-initiated cancellation.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}
