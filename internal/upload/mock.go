package upload

import (
	"context"
	"sync"
)

// MockResponse is a canned response for the MockSubmitter.
type MockResponse struct {
	Payload []byte
	Err     error
}

// MockSubmitter is a deterministic Submitter for testing. It returns
// canned responses in FIFO order and records every call.
type MockSubmitter struct {
	mu        sync.Mutex
	responses []MockResponse

	// Calls records the endpoint of each Submit invocation.
	Calls []string
}

// NewMockSubmitter creates a MockSubmitter with the given canned
// responses.
func NewMockSubmitter(responses ...MockResponse) *MockSubmitter {
	return &MockSubmitter{responses: responses}
}

// Submit returns the next canned response, or a network error when
// the queue is empty.
func (m *MockSubmitter) Submit(ctx context.Context, endpoint, imageRef string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, endpoint)

	if err := ctx.Err(); err != nil {
		return nil, Classify(err)
	}

	if len(m.responses) == 0 {
		return nil, &Error{Kind: KindNetwork}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}
	return resp.Payload, nil
}

// CallCount returns the number of Submit invocations so far.
func (m *MockSubmitter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
