package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"
)

// DefaultTimeout bounds one completion round trip.
const DefaultTimeout = 15 * time.Second

// HTTPClient posts chat-completions requests with bearer auth. The wire
// shape follows the backend's own SOVA procedure: messages array,
// max_completion_tokens, choices[0].message.content on the way back.
type HTTPClient struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration

	// HC overrides the underlying client, for tests.
	HC *http.Client
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model               string        `json:"model"`
	Messages            []wireMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Temperature         float64       `json:"temperature"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *HTTPClient) Complete(ctx context.Context, req Request) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(wireRequest{
		Model: req.Model,
		Messages: []wireMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         0.7,
	})
	if err != nil {
		return "", &Error{Kind: KindEmptyBody, Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindUnreachable, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if req.ID != "" {
		httpReq.Header.Set("X-Request-Id", req.ID)
	}

	hc := c.HC
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &Error{Kind: classifyTransport(err), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{
			Kind:   KindBadStatus,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, preview(respBody)),
		}
	}

	var wr wireResponse
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return "", &Error{Kind: KindEmptyBody, Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(wr.Choices) == 0 {
		return "", &Error{Kind: KindEmptyBody, Err: errors.New("no choices in response")}
	}
	content := strings.TrimSpace(wr.Choices[0].Message.Content)
	if content == "" {
		return "", &Error{Kind: KindEmptyBody, Err: errors.New("empty completion content")}
	}
	return content, nil
}

// classifyTransport maps a request error to a failure kind. Dial-level
// refusals become KindUnreachable so the caller can stop retrying against
// a known-down endpoint.
func classifyTransport(err error) Kind {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindUnreachable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindUnreachable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	// Anything else mid-flight is retried like a timeout would be.
	return KindTimeout
}

func preview(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
