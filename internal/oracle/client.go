package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"maestro/internal/errors"
	"maestro/internal/logging"
)

// DefaultTimeout accommodates reasoning models, which can take minutes.
const DefaultTimeout = 180 * time.Second

// ClientConfig configures the HTTP oracle client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string

	// APIKey is sent as a bearer token.
	APIKey string

	// Model names the completion model.
	Model string

	// Temperature controls sampling. Zero is passed through as-is.
	Temperature float64

	// MaxTokens caps the completion length. Zero means no explicit cap.
	MaxTokens int

	// Timeout bounds a single completion call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Client is an Oracle backed by an OpenAI-compatible chat-completions
// endpoint. It is safe for concurrent use.
type Client struct {
	cfg    ClientConfig
	http   *http.Client
	logger *logging.Logger
}

// NewClient creates an HTTP oracle client. A nil logger is replaced with a
// no-op logger.
func NewClient(cfg ClientConfig, logger *logging.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("oracle", cfg.Model),
	}
}

// Name identifies the backend for logs and reports.
func (c *Client) Name() string {
	return c.cfg.Model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model               string          `json:"model"`
	Messages            []chatMessage   `json:"messages"`
	Temperature         float64         `json:"temperature,omitempty"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat-completion request and returns the raw content of
// the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Temperature:         c.cfg.Temperature,
		MaxCompletionTokens: c.cfg.MaxTokens,
	}
	if req.ForceJSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", errors.Wrap(err, "marshaling oracle request")
	}

	c.logger.Debug("sending oracle request",
		"prompt_bytes", len(req.Prompt),
		"force_json", req.ForceJSON)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "building oracle request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.NewTimeoutError("oracle completion", c.cfg.Timeout).WithCause(err)
		}
		return "", errors.Wrap(err, "oracle request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading oracle response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oracle API error (status %d): %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", errors.Wrap(errors.ErrOracleMalformedResponse, fmt.Sprintf("decoding response envelope: %v", err))
	}
	if len(parsed.Choices) == 0 {
		return "", errors.Wrap(errors.ErrOracleEmptyResponse, "response contained no choices")
	}

	content := parsed.Choices[0].Message.Content
	if content == "" {
		return "", errors.ErrOracleEmptyResponse
	}

	c.logger.Debug("oracle response received", "content_bytes", len(content))
	return content, nil
}
