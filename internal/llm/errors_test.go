package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrorFromHTTPStatus(t *testing.T) {
	cases := []struct {
		status    int
		message   string
		wantType  string
		retryable bool
	}{
		{400, "bad request", "invalid_request", false},
		{400, "monthly quota exceeded", "quota", false},
		{401, "", "authentication", false},
		{403, "", "access_denied", false},
		{404, "", "not_found", false},
		{408, "", "timeout", true},
		{413, "", "context_length", false},
		{422, "context length exceeded", "context_length", false},
		{429, "", "rate_limit", true},
		{500, "", "server", true},
		{503, "", "server", true},
		{418, "", "unknown", true},
	}
	for _, tc := range cases {
		err := ErrorFromHTTPStatus("openai", tc.status, tc.message, nil)
		var le Error
		if !errors.As(err, &le) {
			t.Fatalf("status %d: not an llm.Error: %v", tc.status, err)
		}
		if le.Retryable() != tc.retryable {
			t.Fatalf("status %d: retryable = %v, want %v", tc.status, le.Retryable(), tc.retryable)
		}
		if got := ClassifyReason(err); got != tc.wantType {
			t.Fatalf("status %d %q: reason = %q, want %q", tc.status, tc.message, got, tc.wantType)
		}
	}
}

func TestWrapTransportError(t *testing.T) {
	err := WrapTransportError("anthropic", fmt.Errorf("wrap: %w", context.DeadlineExceeded))
	var te *RequestTimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("deadline not classified as timeout: %v", err)
	}

	err = WrapTransportError("anthropic", errors.New("connection refused"))
	if ClassifyReason(err) != "transport" {
		t.Fatalf("reason = %q", ClassifyReason(err))
	}
	if WrapTransportError("x", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	if d := ParseRetryAfter("30", now); d == nil || *d != 30*time.Second {
		t.Fatalf("seconds form: %v", d)
	}
	httpDate := now.Add(90 * time.Second).Format("Mon, 02 Jan 2006 15:04:05 GMT")
	if d := ParseRetryAfter(httpDate, now); d == nil || *d != 90*time.Second {
		t.Fatalf("http-date form: %v", d)
	}
	if d := ParseRetryAfter("", now); d != nil {
		t.Fatalf("empty: %v", d)
	}
	if d := ParseRetryAfter("soon", now); d != nil {
		t.Fatalf("garbage: %v", d)
	}
}

func TestClassifyReasonConfiguration(t *testing.T) {
	if got := ClassifyReason(&ConfigurationError{Message: "x"}); got != "configuration" {
		t.Fatalf("reason = %q", got)
	}
	if got := ClassifyReason(nil); got != "" {
		t.Fatalf("nil reason = %q", got)
	}
}
