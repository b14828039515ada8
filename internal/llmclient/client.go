// Package llmclient implements the OpenAI-compatible chat-completion wire
// protocol shared by the Detector (strict JSON plans from a small model)
// and the Fixer (free-text polish from a larger model).
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnreachable wraps any transport-level failure talking to the model
// endpoint, distinguishing it from a model that responded but badly.
var ErrUnreachable = errors.New("model endpoint unreachable")

// Config describes one model endpoint: Detector and Fixer each hold their
// own Config pointed at (possibly) different models.
type Config struct {
	APIBase          string
	Model            string
	MaxContextTokens int
	Timeout          time.Duration
	Retries          int
	Temperature      float64
	TopP             float64
	MaxOutputChars   int
}

// DefaultDetectorConfig mirrors detector/client.py's ModelClient defaults.
func DefaultDetectorConfig() Config {
	return Config{
		APIBase:          "http://127.0.0.1:1234/v1",
		Model:            "qwen-1_8b-instruct",
		MaxContextTokens: 1024,
		Timeout:          8 * time.Second,
		Retries:          1,
		Temperature:      0.2,
		TopP:             0.9,
		MaxOutputChars:   2000,
	}
}

// DefaultFixerConfig uses the same endpoint shape as the detector but
// targets a larger, more capable model by default.
func DefaultFixerConfig() Config {
	cfg := DefaultDetectorConfig()
	cfg.Model = "gpt-4o-mini"
	cfg.MaxOutputChars = 4000
	return cfg
}

// Client talks to one OpenAI-compatible /v1/chat/completions endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a Client bound to cfg.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Call sends a single chat-completion request and returns the assistant's
// reply, truncated to cfg.MaxOutputChars. It retries cfg.Retries times on
// transport failure or non-200 status before giving up with ErrUnreachable.
func (c *Client) Call(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream:      false,
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		reply, err := c.doCall(ctx, body)
		if err == nil {
			if len(reply) > c.cfg.MaxOutputChars {
				reply = reply[:c.cfg.MaxOutputChars]
			}
			return reply, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (c *Client) doCall(ctx context.Context, body []byte) (string, error) {
	url := c.cfg.APIBase + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// CheckHealth issues a lightweight GET /models against the endpoint so a
// caller can fail fast with exit code 2 before spending any retry budget
// on a dead server.
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIBase+"/models", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}
	return nil
}
