package upload

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// Classify maps a transport error onto the failure taxonomy. The
// checks run most-specific first: context state, then typed net
// errors, then syscall-level causes, then the transport catch-all.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ue *Error
	if errors.As(err, &ue) {
		return ue
	}

	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCancelled, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: KindDNS, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return &Error{Kind: KindConnectionRefused, Err: err}
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.ErrUnexpectedEOF):
		return &Error{Kind: KindConnectionAbort, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Error{Kind: KindNetwork, Err: err}
	}

	return &Error{Kind: KindUnknown, Err: err}
}

// classifyStatus maps a non-2xx response onto the taxonomy, reading
// the structured {"error": "..."} body when one is present.
func classifyStatus(status int, body []byte) *Error {
	msg := serverMessage(body)

	switch {
	case status >= 500:
		return &Error{Kind: KindServer, Status: status, Message: msg}
	case status >= 400:
		kind := KindBadRequest
		if isFileTypeMessage(msg) {
			kind = KindFileType
		}
		return &Error{Kind: kind, Status: status, Message: msg}
	default:
		return &Error{Kind: KindUnknown, Status: status, Message: msg}
	}
}

// serverMessage extracts the error string from a JSON error body,
// falling back to the raw body when it isn't the structured shape.
func serverMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}

// isFileTypeMessage detects the server's file-type rejection. The
// server phrases it inconsistently, so match on the fragments seen in
// production responses.
func isFileTypeMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, frag := range []string{"file type", "unsupported type", "unsupported format", "image format"} {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
