package llm

import "errors"

var (
	// ErrNotConfigured indicates no API key or endpoint is set.
	ErrNotConfigured = errors.New("completion service not configured")

	// ErrUnavailable indicates the completion endpoint is unreachable.
	ErrUnavailable = errors.New("completion service unavailable")

	// ErrRateLimited indicates the provider kept answering 429.
	ErrRateLimited = errors.New("completion service rate limited")

	// ErrClientStatus indicates a 4xx answer. These are never retried.
	ErrClientStatus = errors.New("completion request rejected")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("completion request timed out")

	// ErrInvalidOutput indicates the response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid completion output format")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("completion retry attempts exhausted")
)
