package client

import (
	"testing"
	"time"
)

func TestOptionValidation(t *testing.T) {
	bad := []Option{
		WithHTTPTimeout(0),
		WithRetryCount(-1),
		WithNotifier(nil),
		WithDownloadSink(nil),
		WithDownloadDir(""),
		WithPingInterval(0),
		WithReconnectBackoff(time.Second, time.Millisecond),
		WithClientID(""),
	}
	for i, opt := range bad {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("option %d: expected panic from New with invalid option", i)
				}
			}()
			New("http://localhost:9", opt)
		}()
	}
}

func TestOptionsApplied(t *testing.T) {
	c := New("http://localhost:9/",
		WithHTTPTimeout(5*time.Second),
		WithRetryCount(4),
		WithClientID("origin-1"),
		WithReconnectBackoff(100*time.Millisecond, time.Second),
	)
	defer func() { _ = c.Close() }()

	if c.baseURL != "http://localhost:9" {
		t.Fatalf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
	if c.httpTimeout != 5*time.Second {
		t.Fatalf("httpTimeout = %v", c.httpTimeout)
	}
	if c.retryCount != 4 {
		t.Fatalf("retryCount = %d", c.retryCount)
	}
	if c.clientID != "origin-1" {
		t.Fatalf("clientID = %q", c.clientID)
	}
	if c.initialBackoff != 100*time.Millisecond || c.maxBackoff != time.Second {
		t.Fatalf("backoff = %v/%v", c.initialBackoff, c.maxBackoff)
	}
}
