package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/repo-screener/internal/gemini"
	"github.com/jonathan/repo-screener/internal/github"
)

func TestWrap_PassesClassifiedErrorsThrough(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "github auth", err: &github.AuthError{Owner: "o", Repo: "r"}},
		{name: "github not found", err: &github.NotFoundError{Owner: "o", Repo: "r"}},
		{name: "github rate limit", err: &github.RateLimitError{}},
		{name: "github api", err: &github.APIError{Message: "boom"}},
		{name: "invalid repo url", err: &github.InvalidRepoURLError{Ref: "x"}},
		{name: "gemini api", err: &gemini.APIError{Message: "boom"}},
		{name: "gemini rate limit", err: &gemini.RateLimitError{}},
		{name: "gemini parse", err: &gemini.ParseError{Message: "bad json"}},
		{name: "pipeline error", err: &Error{Message: "invalid job description"}},
		{name: "wrapped classified", err: fmt.Errorf("context: %w", &github.AuthError{Owner: "o", Repo: "r"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.err, wrap("stage failed", tt.err))
		})
	}
}

func TestWrap_WrapsUnclassifiedErrors(t *testing.T) {
	cause := errors.New("disk on fire")
	err := wrap("extraction failed", cause)

	var pipeErr *Error
	assert.ErrorAs(t, err, &pipeErr)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "extraction failed")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "auth", err: &github.AuthError{}, want: http.StatusUnauthorized},
		{name: "not found", err: &github.NotFoundError{}, want: http.StatusNotFound},
		{name: "github rate limit", err: &github.RateLimitError{}, want: http.StatusTooManyRequests},
		{name: "gemini rate limit", err: &gemini.RateLimitError{}, want: http.StatusTooManyRequests},
		{name: "invalid repo url", err: &github.InvalidRepoURLError{}, want: http.StatusBadRequest},
		{name: "gemini api", err: &gemini.APIError{}, want: http.StatusBadGateway},
		{name: "gemini parse", err: &gemini.ParseError{}, want: http.StatusBadGateway},
		{name: "github api", err: &github.APIError{}, want: http.StatusInternalServerError},
		{name: "generic pipeline error", err: &Error{Message: "x"}, want: http.StatusInternalServerError},
		{name: "unknown error", err: errors.New("x"), want: http.StatusInternalServerError},
		{name: "wrapped auth", err: &Error{Message: "ctx", Cause: &github.AuthError{}}, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
