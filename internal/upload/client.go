package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Submitter sends one homework image to the grading endpoint and
// returns the raw response payload.
type Submitter interface {
	Submit(ctx context.Context, endpoint, imageRef string) ([]byte, error)
}

// HTTPSubmitter is the production Submitter: a multipart POST to
// {endpoint}/upload_image. The grading backend may take minutes to
// answer, so the client carries no transport timeout of its own; the
// orchestrator bounds each attempt through the context.
type HTTPSubmitter struct {
	client *http.Client
}

// NewHTTPSubmitter creates a Submitter over a dedicated HTTP client.
func NewHTTPSubmitter() *HTTPSubmitter {
	return &HTTPSubmitter{client: &http.Client{}}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, endpoint, imageRef string) ([]byte, error) {
	body, contentType, err := buildMultipart(imageRef)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/upload_image", body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		// Prefer the context's verdict: the transport wraps
		// cancellation and deadline errors inconsistently.
		if ctx.Err() != nil {
			return nil, Classify(ctx.Err())
		}
		return nil, Classify(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp.StatusCode, payload)
	}

	return payload, nil
}
