package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/repo-screener/internal/gemini"
	"github.com/jonathan/repo-screener/internal/github"
)

// Error wraps a failure that is not part of the typed taxonomy. The
// original cause is always preserved so callers can distinguish classified
// failures from unexpected ones.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pipeline error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pipeline error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// classified reports whether err already belongs to the typed error
// taxonomy and should propagate unchanged.
func classified(err error) bool {
	var (
		authErr       *github.AuthError
		notFoundErr   *github.NotFoundError
		ghRateErr     *github.RateLimitError
		ghAPIErr      *github.APIError
		invalidRefErr *github.InvalidRepoURLError
		modelAPIErr   *gemini.APIError
		modelRateErr  *gemini.RateLimitError
		parseErr      *gemini.ParseError
		pipelineErr   *Error
	)
	return errors.As(err, &authErr) ||
		errors.As(err, &notFoundErr) ||
		errors.As(err, &ghRateErr) ||
		errors.As(err, &ghAPIErr) ||
		errors.As(err, &invalidRefErr) ||
		errors.As(err, &modelAPIErr) ||
		errors.As(err, &modelRateErr) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &pipelineErr)
}

// wrap passes classified errors through unchanged and wraps anything else
// into a generic pipeline error with the cause attached.
func wrap(message string, err error) error {
	if classified(err) {
		return err
	}
	return &Error{Message: message, Cause: err}
}

// HTTPStatus maps an error onto the status code an HTTP layer should
// return for it. Every taxonomy code is distinguishable by the caller.
func HTTPStatus(err error) int {
	var (
		authErr       *github.AuthError
		notFoundErr   *github.NotFoundError
		ghRateErr     *github.RateLimitError
		invalidRefErr *github.InvalidRepoURLError
		modelAPIErr   *gemini.APIError
		modelRateErr  *gemini.RateLimitError
		parseErr      *gemini.ParseError
	)
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &ghRateErr), errors.As(err, &modelRateErr):
		return http.StatusTooManyRequests
	case errors.As(err, &invalidRefErr):
		return http.StatusBadRequest
	case errors.As(err, &modelAPIErr), errors.As(err, &parseErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
