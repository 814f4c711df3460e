package github

import "fmt"

// AuthError indicates the token was rejected (401/403) by the GitHub API.
type AuthError struct {
	Owner string
	Repo  string
	Cause error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("GitHub authentication failed for %s/%s: check your token", e.Owner, e.Repo)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NotFoundError indicates the repository does not exist or is not accessible
// with the supplied token.
type NotFoundError struct {
	Owner string
	Repo  string
	Cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("repository %s/%s not found or not accessible", e.Owner, e.Repo)
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// RateLimitError indicates the GitHub API rate limit was exceeded.
type RateLimitError struct {
	Cause error
}

func (e *RateLimitError) Error() string {
	return "GitHub API rate limit exceeded"
}

func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// APIError is the catch-all for GitHub API failures that are not
// authentication, not-found, or rate-limit conditions.
type APIError struct {
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("GitHub API error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("GitHub API error: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// InvalidRepoURLError indicates a repository reference that could not be
// parsed into owner and repo.
type InvalidRepoURLError struct {
	Ref string
}

func (e *InvalidRepoURLError) Error() string {
	return fmt.Sprintf("invalid GitHub repository URL: %s", e.Ref)
}
