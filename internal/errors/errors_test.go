package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := NewValidation("filter parameter is required")
	if !strings.Contains(err.Error(), "INVALID_INPUT") {
		t.Errorf("Expected code in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "filter parameter is required") {
		t.Errorf("Expected message text, got %q", err.Error())
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewUpstream(cause, "search request failed")

	if !stderrors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Expected cause in message, got %q", err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{NewValidation("bad"), InvalidInput},
		{NewConfiguration("missing token"), ConfigMissing},
		{NewUpstream(nil, "HTTP 502"), UpstreamFailed},
		{fmt.Errorf("plain"), InternalError},
	}

	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.want {
			t.Errorf("CodeOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
