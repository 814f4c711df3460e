package gemini

import "fmt"

// APIError is the catch-all for model API failures after the retry budget
// is exhausted.
type APIError struct {
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Gemini API error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("Gemini API error: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// RateLimitError indicates the model API rate limit persisted through every
// retry attempt.
type RateLimitError struct {
	Cause error
}

func (e *RateLimitError) Error() string {
	return "Gemini API rate limit exceeded after retries"
}

func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// ParseError indicates a model response that does not satisfy the expected
// structure. RawText carries the offending payload for diagnostics. Parse
// errors signal a prompt/schema mismatch, not transience, and are never
// retried.
type ParseError struct {
	Message string
	RawText string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("evaluation parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("evaluation parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
