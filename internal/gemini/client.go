// Package gemini wraps the Google Gemini API for structured JSON
// generation, with retry and exponential backoff around transient and
// rate-limit failures.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Defaults for structured generation.
const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 1000 * time.Millisecond
	defaultTemperature    = 0.2 // low temperature for consistent scoring
)

// rawTextPreviewLen bounds how much of an unparseable response is carried
// in the error message.
const rawTextPreviewLen = 200

// Config configures a Client. APIKey is required; zero values elsewhere
// fall back to defaults.
type Config struct {
	APIKey         string
	Model          string
	MaxRetries     int
	InitialBackoff time.Duration
}

// TokenUsage reports the token counts of one model call.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// StructuredResponse holds a validated-JSON model payload and its token
// usage. Callers unmarshal Data into their own shapes.
type StructuredResponse struct {
	Data       json.RawMessage
	TokensUsed TokenUsage
}

// generator is the single model call, separated from the retry loop so
// tests can substitute a fake.
type generator interface {
	generate(ctx context.Context, prompt string) (string, TokenUsage, error)
}

// Client generates structured JSON responses from Gemini. The model is
// configured for JSON-only output with low-variance decoding.
type Client struct {
	genai  *genai.Client
	cfg    Config
	logger *zap.Logger

	caller generator
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewClient builds a Client from explicit configuration.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &APIError{Message: "API key is required"}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, &APIError{Message: "failed to create Gemini client", Cause: err}
	}

	model := genaiClient.GenerativeModel(cfg.Model)
	model.SetTemperature(defaultTemperature)
	model.ResponseMIMEType = "application/json"

	c := &Client{
		genai:  genaiClient,
		cfg:    cfg,
		logger: logger,
		sleep:  sleepContext,
	}
	c.caller = &modelCaller{model: model}
	return c, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	if c.genai != nil {
		return c.genai.Close()
	}
	return nil
}

// GenerateStructured runs one prompt and returns the model's JSON payload.
// Transient and rate-limit failures are retried with exponential backoff up
// to the attempt budget; invalid-JSON responses fail immediately because
// they indicate a prompt/schema mismatch, not transience.
func (c *Client) GenerateStructured(ctx context.Context, prompt string) (*StructuredResponse, error) {
	var lastErr error

	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		text, usage, err := c.caller.generate(ctx, prompt)
		if err == nil {
			cleaned := cleanJSONBlock(text)
			if !json.Valid([]byte(cleaned)) {
				return nil, &ParseError{
					Message: fmt.Sprintf("failed to parse Gemini response as JSON: %s", preview(cleaned)),
					RawText: text,
				}
			}
			return &StructuredResponse{
				Data:       json.RawMessage(cleaned),
				TokensUsed: usage,
			}, nil
		}
		lastErr = err

		if isRateLimited(err) {
			if attempt < c.cfg.MaxRetries-1 {
				if serr := c.backoff(ctx, attempt); serr != nil {
					return nil, &APIError{Message: "canceled while backing off", Cause: serr}
				}
				continue
			}
			return nil, &RateLimitError{Cause: err}
		}

		c.logger.Debug("Gemini call failed, retrying",
			zap.Int("attempt", attempt+1), zap.Error(err))
		if attempt < c.cfg.MaxRetries-1 {
			if serr := c.backoff(ctx, attempt); serr != nil {
				return nil, &APIError{Message: "canceled while backing off", Cause: serr}
			}
		}
	}

	return nil, &APIError{
		Message: fmt.Sprintf("call failed after %d attempts", c.cfg.MaxRetries),
		Cause:   lastErr,
	}
}

// backoff sleeps for InitialBackoff doubled per attempt, honoring context
// cancellation.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	return c.sleep(ctx, c.cfg.InitialBackoff*(1<<attempt))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRateLimited recognizes rate-limit failures by explicit status or by
// rate-limit wording in the error text.
func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}

func preview(text string) string {
	if len(text) > rawTextPreviewLen {
		return text[:rawTextPreviewLen]
	}
	return text
}

// cleanJSONBlock removes markdown code fences the model sometimes wraps
// around JSON even when instructed not to.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// modelCaller is the production generator backed by a genai model.
type modelCaller struct {
	model *genai.GenerativeModel
}

func (m *modelCaller) generate(ctx context.Context, prompt string) (string, TokenUsage, error) {
	resp, err := m.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", TokenUsage{}, err
	}

	text, err := extractText(resp)
	if err != nil {
		return "", TokenUsage{}, err
	}

	var usage TokenUsage
	if resp.UsageMetadata != nil {
		usage = TokenUsage{
			Prompt:     int(resp.UsageMetadata.PromptTokenCount),
			Completion: int(resp.UsageMetadata.CandidatesTokenCount),
			Total:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return text, usage, nil
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
