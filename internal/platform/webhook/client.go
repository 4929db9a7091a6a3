package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"adminportal/internal/requestctx"
)

const maxResponseBytes = 4 << 20

// Recorder receives per-call timings; *metrics.Collector satisfies it.
type Recorder interface {
	RecordWebhook(endpoint, result string, duration time.Duration)
}

// Endpoint names one remote collaborator. Name is used for logs and metrics.
type Endpoint struct {
	Name string
	URL  string
}

type Client struct {
	HTTP     *http.Client
	Recorder Recorder
}

func NewClient(timeout time.Duration, recorder Recorder) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: timeout},
		Recorder: recorder,
	}
}

// Post sends payload as JSON and returns the raw response body. Non-2xx
// replies become a *RejectedError when they carry a message, otherwise an
// ErrTransport failure. No retries are attempted.
func (c *Client) Post(ctx context.Context, endpoint Endpoint, payload any) ([]byte, error) {
	start := time.Now()
	body, err := c.post(ctx, endpoint, payload)
	result := "ok"
	switch {
	case IsTransport(err):
		result = "transport"
	case err != nil:
		result = "rejected"
	}
	elapsed := time.Since(start)
	if c.Recorder != nil {
		c.Recorder.RecordWebhook(endpoint.Name, result, elapsed)
	}
	if err != nil {
		slog.Warn("webhook call failed",
			"endpoint", endpoint.Name,
			"result", result,
			"durationMs", elapsed.Milliseconds(),
			"requestId", requestctx.GetRequestID(ctx),
			"err", err,
		)
	} else {
		slog.Debug("webhook call", "endpoint", endpoint.Name, "durationMs", elapsed.Milliseconds())
	}
	return body, err
}

func (c *Client) post(ctx context.Context, endpoint Endpoint, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", endpoint.Name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: build %s request: %v", ErrTransport, endpoint.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if reqID := requestctx.GetRequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, endpoint.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", ErrTransport, endpoint.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg := errorMessage(body); msg != "" {
			return nil, &RejectedError{Endpoint: endpoint.Name, Message: msg}
		}
		return nil, fmt.Errorf("%w: %s returned status %d", ErrTransport, endpoint.Name, resp.StatusCode)
	}
	return body, nil
}

func errorMessage(body []byte) string {
	element, err := firstElement(body)
	if err != nil || element == nil {
		return ""
	}
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(element, &env); err != nil {
		return ""
	}
	return strings.TrimSpace(env.Message)
}
