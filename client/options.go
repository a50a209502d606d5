package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Client during construction in New.
// Options must be deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the per-request safety net for REST calls. Prefer
// per-request context deadlines; this bounds the total time of one request.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.httpTimeout = d
		return nil
	}
}

// WithRetryCount sets how many times recoverable GET failures are retried.
// Mutations are never retried regardless of this value.
func WithRetryCount(n int) Option {
	return func(c *Client) error {
		if n < 0 {
			return fmt.Errorf("retry count must be >= 0")
		}
		c.retryCount = n
		return nil
	}
}

// WithLogger installs a zerolog logger on every component. Default is
// zerolog.Nop().
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

// WithNotifier routes bulk-operation summary notifications to n instead of
// the log.
func WithNotifier(n Notifier) Option {
	return func(c *Client) error {
		if n == nil {
			return fmt.Errorf("notifier cannot be nil")
		}
		c.notifier = n
		return nil
	}
}

// WithDownloadSink routes export files to s. The default writes them to the
// current directory.
func WithDownloadSink(s DownloadSink) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("download sink cannot be nil")
		}
		c.sink = s
		return nil
	}
}

// WithDownloadDir is shorthand for WithDownloadSink(DirSink{Dir: dir}).
func WithDownloadDir(dir string) Option {
	return func(c *Client) error {
		if dir == "" {
			return fmt.Errorf("download dir cannot be empty")
		}
		c.sink = DirSink{Dir: dir}
		return nil
	}
}

// WithPingInterval sets how often the channel measures latency.
func WithPingInterval(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("ping interval must be > 0")
		}
		c.pingInterval = d
		return nil
	}
}

// WithReconnectBackoff bounds the channel's reconnect waits. The cap keeps
// a flapping server from turning every client into a reconnect storm.
func WithReconnectBackoff(initial, max time.Duration) Option {
	return func(c *Client) error {
		if initial <= 0 || max < initial {
			return fmt.Errorf("need 0 < initial <= max")
		}
		c.initialBackoff = initial
		c.maxBackoff = max
		return nil
	}
}

// WithClientID overrides the random origin tag carried on mutations and
// the channel handshake. Mainly useful in tests.
func WithClientID(id string) Option {
	return func(c *Client) error {
		if id == "" {
			return fmt.Errorf("client id cannot be empty")
		}
		c.clientID = id
		return nil
	}
}
