package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Error is the unified error interface returned by provider adapters and the
// client. Retryable reports whether the provider considers the call worth
// retrying; the repair session itself never retries oracle calls, it only
// records the classification.
type Error interface {
	error
	Provider() string
	StatusCode() int
	Retryable() bool
	RetryAfter() *time.Duration
}

type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + strings.TrimSpace(e.Message)
}
func (e *ConfigurationError) Provider() string           { return "" }
func (e *ConfigurationError) StatusCode() int            { return 0 }
func (e *ConfigurationError) Retryable() bool            { return false }
func (e *ConfigurationError) RetryAfter() *time.Duration { return nil }

type httpErrorBase struct {
	provider   string
	statusCode int
	message    string
	retryable  bool
	retryAfter *time.Duration
}

func (e *httpErrorBase) Error() string {
	msg := strings.TrimSpace(e.message)
	if msg == "" {
		msg = "request failed"
	}
	return fmt.Sprintf("%s error (status=%d): %s", e.provider, e.statusCode, msg)
}
func (e *httpErrorBase) Provider() string           { return e.provider }
func (e *httpErrorBase) StatusCode() int            { return e.statusCode }
func (e *httpErrorBase) Retryable() bool            { return e.retryable }
func (e *httpErrorBase) RetryAfter() *time.Duration { return e.retryAfter }

type InvalidRequestError struct{ httpErrorBase }
type AuthenticationError struct{ httpErrorBase }
type AccessDeniedError struct{ httpErrorBase }
type NotFoundError struct{ httpErrorBase }
type RequestTimeoutError struct{ httpErrorBase }
type ContextLengthError struct{ httpErrorBase }
type QuotaExceededError struct{ httpErrorBase }
type RateLimitError struct{ httpErrorBase }
type ServerError struct{ httpErrorBase }
type TransportError struct{ httpErrorBase }
type UnknownHTTPError struct{ httpErrorBase }

func ErrorFromHTTPStatus(provider string, statusCode int, message string, retryAfter *time.Duration) error {
	base := httpErrorBase{
		provider:   strings.TrimSpace(provider),
		statusCode: statusCode,
		message:    message,
		retryAfter: retryAfter,
	}
	switch statusCode {
	case 400, 422:
		base.retryable = false
		// Ambiguous status codes: some providers tunnel quota or auth failures
		// through 400-class responses; refine from the message text.
		if err := classifyByMessage(base); err != nil {
			return err
		}
		return &InvalidRequestError{base}
	case 401:
		base.retryable = false
		return &AuthenticationError{base}
	case 403:
		base.retryable = false
		return &AccessDeniedError{base}
	case 404:
		base.retryable = false
		return &NotFoundError{base}
	case 408:
		base.retryable = true
		return &RequestTimeoutError{base}
	case 413:
		base.retryable = false
		return &ContextLengthError{base}
	case 429:
		base.retryable = true
		return &RateLimitError{base}
	case 500, 502, 503, 504:
		base.retryable = true
		return &ServerError{base}
	default:
		base.retryable = true
		return &UnknownHTTPError{base}
	}
}

func classifyByMessage(base httpErrorBase) error {
	lower := strings.ToLower(base.message)
	switch {
	case strings.Contains(lower, "context length") || strings.Contains(lower, "too many tokens"):
		return &ContextLengthError{base}
	case strings.Contains(lower, "quota") || strings.Contains(lower, "billing"):
		return &QuotaExceededError{base}
	case strings.Contains(lower, "not found") || strings.Contains(lower, "does not exist"):
		return &NotFoundError{base}
	case strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid key"):
		return &AuthenticationError{base}
	}
	return nil
}

// WrapTransportError converts a non-HTTP failure (DNS, refused connection,
// context deadline) into the unified hierarchy.
func WrapTransportError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &RequestTimeoutError{httpErrorBase{
			provider: strings.TrimSpace(provider),
			message:  "request deadline exceeded",
		}}
	}
	return &TransportError{httpErrorBase{
		provider: strings.TrimSpace(provider),
		message:  err.Error(),
	}}
}

// ParseRetryAfter parses a Retry-After header value: integer seconds or an
// HTTP-date.
func ParseRetryAfter(v string, now time.Time) *time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		d := time.Duration(secs) * time.Second
		return &d
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return &d
	}
	return nil
}

func IsAuthenticationError(err error) bool {
	var e *AuthenticationError
	return errors.As(err, &e)
}

// ClassifyReason returns a stable short label for an oracle failure, recorded
// in the session's final outcome.
func ClassifyReason(err error) string {
	if err == nil {
		return ""
	}
	var (
		cfg       *ConfigurationError
		invalid   *InvalidRequestError
		auth      *AuthenticationError
		denied    *AccessDeniedError
		notFound  *NotFoundError
		timeout   *RequestTimeoutError
		ctxLen    *ContextLengthError
		quota     *QuotaExceededError
		rate      *RateLimitError
		server    *ServerError
		transport *TransportError
	)
	switch {
	case errors.As(err, &cfg):
		return "configuration"
	case errors.As(err, &invalid):
		return "invalid_request"
	case errors.As(err, &auth):
		return "authentication"
	case errors.As(err, &denied):
		return "access_denied"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &timeout):
		return "timeout"
	case errors.As(err, &ctxLen):
		return "context_length"
	case errors.As(err, &quota):
		return "quota"
	case errors.As(err, &rate):
		return "rate_limit"
	case errors.As(err, &server):
		return "server"
	case errors.As(err, &transport):
		return "transport"
	default:
		return "unknown"
	}
}
