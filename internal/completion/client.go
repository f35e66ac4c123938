// ABOUTME: Streaming chat-completion client for the upstream provider
// ABOUTME: One request per stream, no retry - failure consistency belongs to the relay

package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Message is one entry of the history sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config holds provider connection settings.
type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	// RequestTimeout caps one whole streaming request, read included.
	// Zero means no cap; the request context governs the lifetime.
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

const (
	defaultModel     = "gpt-5.1"
	defaultMaxTokens = 2048
)

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
}

// NewClient creates a new completion client.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger.With("component", "completion"),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
	}
}

// chatRequest models the request payload for chat completions.
type chatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Stream              bool      `json:"stream"`
	MaxCompletionTokens int       `json:"max_completion_tokens,omitempty"`
}

// StreamCompletion opens one streaming completion request over the given
// history and returns a Stream of text fragments. The stream is finite and
// not restartable; the caller must accumulate fragments if it needs the full
// text. Provider errors surface as *APIError.
func (c *Client) StreamCompletion(ctx context.Context, history []Message) (Stream, error) {
	body, err := json.Marshal(chatRequest{
		Model:               c.model,
		Messages:            history,
		Stream:              true,
		MaxCompletionTokens: c.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling completion request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("opening completion stream",
		"model", c.model,
		"history_len", len(history))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.handleError(resp)
	}

	return newSSEStream(resp.Body), nil
}

// APIError is a structured error returned by the provider.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("provider error %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("provider error %d: %s", e.StatusCode, e.Message)
}

// handleError converts a non-200 response into an *APIError.
func (c *Client) handleError(resp *http.Response) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if readErr != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to read error body"}
	}

	var errResp struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Type:       errResp.Error.Type,
		Message:    errResp.Error.Message,
	}
}
