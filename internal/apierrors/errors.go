// Package apierrors defines the typed error kinds described in the
// engine's error handling design: no type hierarchy, just a Kind enum
// on a single struct, an HTTP status for the caller-facing subset, and
// secret redaction before any error text is logged or returned.
package apierrors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"regexp"
)

// Kind identifies which of the documented failure modes an Error
// represents.
type Kind string

const (
	// KindConfiguration marks invalid runtime settings; fatal to the
	// request/process that loaded them.
	KindConfiguration Kind = "CONFIGURATION_ERROR"

	// KindPathValidation marks a bad input/output file path.
	KindPathValidation Kind = "PATH_VALIDATION"

	// KindFileTooLarge marks a file exceeding rcaconst.MaxFileSize.
	KindFileTooLarge Kind = "FILE_TOO_LARGE"

	// KindInvalidFormat marks a decode failure (bad encoding, bad
	// JSON/CSV shape).
	KindInvalidFormat Kind = "INVALID_FORMAT"

	// KindParse marks a single-record parse failure during ingestion.
	KindParse Kind = "PARSE_ERROR"

	// KindUnsafeRegex marks a caller-supplied pattern rejected by the
	// ReDoS validator.
	KindUnsafeRegex Kind = "UNSAFE_REGEX"

	// KindValidation marks an Event missing both service and message.
	KindValidation Kind = "VALIDATION_ERROR"

	// KindGraphBuild marks programmatic misuse of the causal graph
	// builder (duplicate node, self-loop, dangling edge). These are
	// logic errors, not data errors.
	KindGraphBuild Kind = "GRAPH_BUILD_ERROR"

	// KindNodeNotFound marks a lookup of a causal node id that does
	// not exist in the graph.
	KindNodeNotFound Kind = "NODE_NOT_FOUND"

	// KindLLMTimeout, KindLLMRateLimit and KindLLMProvider mark
	// recoverable LLM facade failures; the analyzer degrades to the
	// heuristic path once retries are exhausted.
	KindLLMTimeout   Kind = "LLM_TIMEOUT"
	KindLLMRateLimit Kind = "LLM_RATE_LIMIT"
	KindLLMProvider  Kind = "LLM_PROVIDER_ERROR"

	// KindCircuitOpen marks an immediate rejection by an open circuit
	// breaker; the caller does not consume a retry attempt.
	KindCircuitOpen Kind = "CIRCUIT_OPEN"

	// KindInternal is the catch-all for unexpected server faults.
	KindInternal Kind = "INTERNAL_ERROR"
)

// httpStatus maps each Kind to the HTTP status an API surface built on
// top of the engine should return for it.
var httpStatus = map[Kind]int{
	KindConfiguration:  http.StatusInternalServerError,
	KindPathValidation: http.StatusBadRequest,
	KindFileTooLarge:   http.StatusBadRequest,
	KindInvalidFormat:  http.StatusBadRequest,
	KindParse:          http.StatusBadRequest,
	KindUnsafeRegex:    http.StatusBadRequest,
	KindValidation:     http.StatusBadRequest,
	KindGraphBuild:     http.StatusInternalServerError,
	KindNodeNotFound:   http.StatusNotFound,
	KindLLMTimeout:     http.StatusGatewayTimeout,
	KindLLMRateLimit:   http.StatusTooManyRequests,
	KindLLMProvider:    http.StatusBadGateway,
	KindCircuitOpen:    http.StatusServiceUnavailable,
	KindInternal:       http.StatusInternalServerError,
}

// Error is the engine's single error type. Kind distinguishes the
// documented failure modes; Message is always redacted of secrets
// before being surfaced.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
}

// New creates an Error of the given kind, redacting any secret-shaped
// substrings from the formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: Redact(fmt.Sprintf(format, args...)),
		Details: make(map[string]interface{}),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus returns the HTTP status code for this error's kind.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WithDetail attaches structured context to the error and returns it
// for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.Details[key] = value
	return e
}

// Response is the sanitized, caller-facing projection of an Error.
type Response struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GetHTTPResponse returns the sanitized response body for this error.
func (e *Error) GetHTTPResponse() Response {
	return Response{Error: string(e.Kind), Message: e.Message}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// As extracts an *Error from err, if any wraps one.
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrors.As(err, &e)
	return e, ok
}

// secretPatterns matches common secret/token shapes so they never
// reach a log line or an error response.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|token|secret|password|authorization)\s*[:=]\s*\S+`),
	regexp.MustCompile(`sk-[A-Za-z0-9]{10,}`),
	regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
}

// Redact strips secret-shaped substrings from a message before it is
// ever logged or returned to a caller.
func Redact(msg string) string {
	out := msg
	for _, p := range secretPatterns {
		out = p.ReplaceAllString(out, "[REDACTED]")
	}
	return out
}
