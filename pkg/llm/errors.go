package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Op identifies which external call produced an error.
type Op string

const (
	// OpEmbedding marks failures of the embedding service call.
	OpEmbedding Op = "embedding"
	// OpGeneration marks failures of the generation service call.
	OpGeneration Op = "generation"
)

// Error is a structured failure from the embedding or generation service.
// The core never retries these internally; callers decide whether to abort
// (indexing) or surface a per-turn failure (conversation).
type Error struct {
	Op         Op     // Which service call failed
	Message    string // Human-readable message
	Retryable  bool   // Whether the operation can be retried by the caller
	Cause      error  // Underlying error
	StatusCode int    // HTTP status code if applicable
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Op))
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a new structured service error.
func NewError(op Op, message string, retryable bool, cause error) *Error {
	return &Error{
		Op:        op,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ClassifyError categorizes an error from an external AI service call.
func ClassifyError(op Op, err error) *Error {
	if err == nil {
		return nil
	}

	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	statusCode := 0
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 504} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			statusCode = code
			break
		}
	}

	classified := func(message string, retryable bool) *Error {
		e := NewError(op, message, retryable, err)
		e.StatusCode = statusCode
		return e
	}

	// Authentication errors (not retryable)
	if strings.Contains(errStr, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") {
		return classified("authentication failed", false)
	}

	// Model not found (not retryable without config change)
	if strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")) {
		return classified("model not found", false)
	}

	// Endpoint not found (not retryable without config change)
	if strings.Contains(errStr, "404") {
		return classified("endpoint not found", false)
	}

	// Connection errors (may be retryable)
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") {
		return classified("connection failed", true)
	}

	// Timeout and deadline exceeded (retryable)
	if strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "deadline exceeded") ||
		strings.Contains(lower, "context canceled") {
		return classified("request timeout", true)
	}

	// Rate limiting (retryable after backoff)
	if strings.Contains(errStr, "429") || strings.Contains(lower, "rate limit") {
		return classified("rate limited", true)
	}

	// 5xx server errors (retryable)
	if strings.Contains(errStr, "500") || strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") || strings.Contains(errStr, "504") {
		return classified("server error", true)
	}

	return classified("service error", false)
}

// IsEmbeddingError reports whether err is a failure of the embedding call.
func IsEmbeddingError(err error) bool {
	var svcErr *Error
	return errors.As(err, &svcErr) && svcErr.Op == OpEmbedding
}

// IsGenerationError reports whether err is a failure of the generation call.
func IsGenerationError(err error) bool {
	var svcErr *Error
	return errors.As(err, &svcErr) && svcErr.Op == OpGeneration
}
