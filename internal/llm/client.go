// Package llm talks to an OpenAI-compatible chat completion API such as Groq.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Ghost-141/chatbot-server/internal/domain"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a chat completion conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatModel generates the next assistant message for a conversation
type ChatModel interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Config configures a Client
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxRetries  int
	Timeout     time.Duration

	// Backoff bounds between retries. Zero values keep the client defaults.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

type Client struct {
	cfg    Config
	http   *retryablehttp.Client
	logger hclog.Logger
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewClient creates a chat completion client. Transient failures (connection
// errors, 429 and 5xx responses) are retried up to cfg.MaxRetries times.
func NewClient(cfg Config, logger hclog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	rc.Logger = logger
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}

	return &Client{
		cfg:    cfg,
		http:   rc,
		logger: logger,
	}, nil
}

func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", domain.ErrUpstream, describeFailure(resp))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", domain.ErrMalformedResponse, err)
	}

	if len(out.Choices) == 0 || out.Choices[0].Message.Content == nil {
		return "", domain.ErrMalformedResponse
	}

	c.logger.Debug("Chat completion finished",
		"model", c.cfg.Model,
		"finish_reason", out.Choices[0].FinishReason,
		"total_tokens", out.Usage.TotalTokens,
		"duration", time.Since(start),
	)

	return *out.Choices[0].Message.Content, nil
}

func describeFailure(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var er errorResponse
	if json.Unmarshal(data, &er) == nil && er.Error.Message != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, er.Error.Message)
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}
