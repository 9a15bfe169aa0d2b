// Package llm is the chat-completions client. It knows nothing about
// psychiatry: it sends messages to the configured endpoint and hands back
// whatever text the first choice contains.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/psychai/psychai/internal/config"
)

// maxAttempts bounds the retry loop: one initial call plus two retries.
const maxAttempts = 3

// ProviderError is the terminal failure after the retry budget is spent.
// Status is the last upstream HTTP status, or zero for transport errors.
type ProviderError struct {
	Status int
	Detail string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm provider error (status %d): %s", e.Status, e.Detail)
	}
	return "llm provider error: " + e.Detail
}

// Message is one entry of the chat transcript sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client performs one completion round trip per Analyze call. Model,
// temperature and token budget are fixed per deployment via Config.
type Client struct {
	apiURL      string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	log         zerolog.Logger

	// retry pacing, overridable in tests
	initialInterval time.Duration
	maxInterval     time.Duration
}

func New(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		apiURL:          cfg.APIURL,
		apiKey:          cfg.GroqAPIKey,
		model:           cfg.Model,
		temperature:     cfg.Temperature,
		maxTokens:       cfg.MaxTokens,
		httpClient:      &http.Client{Timeout: cfg.RequestTimeout},
		log:             log.With().Str("component", "llm").Logger(),
		initialInterval: 2 * time.Second,
		maxInterval:     10 * time.Second,
	}
}

// Model reports the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Analyze sends the system and user messages and returns the first choice's
// content. Network failures, timeouts and non-2xx responses are retried with
// exponential backoff; once the attempt budget is exhausted the last failure
// surfaces as a *ProviderError.
func (c *Client) Analyze(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.MaxInterval = c.maxInterval

	attempt := 0
	content, err := backoff.RetryWithData(func() (string, error) {
		attempt++
		text, callErr := c.complete(ctx, payload)
		if callErr != nil {
			c.log.Warn().Err(callErr).Int("attempt", attempt).Msg("completion attempt failed")
		}
		return text, callErr
	}, backoff.WithContext(backoff.WithMaxRetries(bo, maxAttempts-1), ctx))
	if err != nil {
		var provErr *ProviderError
		if errors.As(err, &provErr) {
			return "", provErr
		}
		return "", &ProviderError{Detail: err.Error()}
	}

	return content, nil
}

func (c *Client) complete(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("build completion request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ProviderError{Status: resp.StatusCode, Detail: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ProviderError{Status: resp.StatusCode, Detail: fmt.Sprintf("malformed completion response: %v", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &ProviderError{Status: resp.StatusCode, Detail: "completion response contained no choices"}
	}

	return parsed.Choices[0].Message.Content, nil
}
