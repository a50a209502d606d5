package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		code int
		want ErrorCategory
	}{
		{400, Irrecoverable},
		{401, Irrecoverable},
		{404, Irrecoverable},
		{408, Recoverable},
		{429, Recoverable},
		{500, Recoverable},
		{503, Recoverable},
	}
	for _, tc := range cases {
		if got := ClassifyStatus(tc.code); got != tc.want {
			t.Fatalf("ClassifyStatus(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewHTTPError(500, "", "list")) {
		t.Fatal("5xx should be retryable")
	}
	if IsRetryable(NewHTTPError(400, "", "list")) {
		t.Fatal("400 should not be retryable")
	}
	if !IsRetryable(NewNetworkError("list", fmt.Errorf("connection reset"))) {
		t.Fatal("network errors should be retryable")
	}
}

func TestUnwrapChains(t *testing.T) {
	inner := fmt.Errorf("boom")
	err := NewNetworkError("get", inner)
	if !errors.Is(err, inner) {
		t.Fatal("Unwrap should expose the underlying error")
	}
}
