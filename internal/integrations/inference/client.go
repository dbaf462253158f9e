package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Konan-star/simplechat/internal/domain"
)

// generateRequest is the payload sent to the generation endpoint.
type generateRequest struct {
	Prompt              string               `json:"prompt"`
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
}

// generateResponse is the expected response shape from the generation endpoint.
type generateResponse struct {
	GeneratedText       string               `json:"generated_text"`
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
}

// GenerateResult carries the generated text plus any conversation history the
// endpoint chose to return alongside it.
type GenerateResult struct {
	GeneratedText       string
	ConversationHistory []domain.ChatMessage
}

// HTTPStatusError captures non-200 responses from the generation endpoint.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("inference: endpoint returned status code %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// ConnectionError captures transport-level failures reaching the endpoint,
// as opposed to HTTP responses carrying an error status.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("inference: failed to connect to endpoint %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Client is a focused HTTP client for the downstream generation endpoint.
type Client struct {
	endpointURL string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client for the given endpoint URL. An empty URL is
// accepted so the process can start without configuration; callers are
// expected to check the configured URL before invoking Generate.
func NewClient(endpointURL string, opts ...Option) *Client {
	c := &Client{
		endpointURL: strings.TrimSpace(endpointURL),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolvedHTTPClient returns the configured HTTP client, or a default with a
// 10s timeout if none was set (e.g. in tests that nil out the field).
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Generate issues a single synchronous POST to the generation endpoint and
// decodes its response. Non-200 statuses surface as *HTTPStatusError and
// transport failures as *ConnectionError; no retries are attempted.
func (c *Client) Generate(ctx context.Context, prompt string, history []domain.ChatMessage) (*GenerateResult, error) {
	if history == nil {
		history = []domain.ChatMessage{}
	}

	body, err := json.Marshal(generateRequest{
		Prompt:              prompt,
		ConversationHistory: history,
	})
	if err != nil {
		return nil, fmt.Errorf("inference: marshal request: %w", err)
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewReader(body))
	if reqErr != nil {
		return nil, fmt.Errorf("inference: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, &ConnectionError{URL: c.endpointURL, Err: doErr}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        c.endpointURL,
			Body:       string(buf),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("inference: read response body: %w", err)
	}

	var payload generateResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return nil, fmt.Errorf("inference: decode response: %w", decErr)
	}

	return &GenerateResult{
		GeneratedText:       payload.GeneratedText,
		ConversationHistory: payload.ConversationHistory,
	}, nil
}
