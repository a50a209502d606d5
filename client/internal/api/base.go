// Package api wraps the REST surface of the knowledge-rag backend. It is
// stateless beyond in-flight request bookkeeping; callers own caching.
package api

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	interrors "github.com/knowledge-rag/knowledge-rag-go/client/internal/errors"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// Client issues REST calls against a single base URL.
type Client struct {
	r   *resty.Client
	log zerolog.Logger
}

// Config holds construction knobs. Zero values get conservative defaults.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	Logger     zerolog.Logger
}

// New builds the REST client. Recoverable failures are retried for GET
// requests only; mutations are never silently retried.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}

	r := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if resp == nil || resp.Request == nil {
				return false
			}
			if resp.Request.Method != http.MethodGet {
				return false
			}
			if err != nil {
				return true
			}
			return interrors.ClassifyStatus(resp.StatusCode()) == interrors.Recoverable && resp.StatusCode() >= 500
		})

	return &Client{r: r, log: cfg.Logger}
}

// SetAuthToken installs a bearer token on every subsequent request.
func (c *Client) SetAuthToken(token string) { c.r.SetAuthToken(token) }

// SetClientID tags outgoing mutations so the backend can echo the origin in
// broadcast events, letting the originator recognize them.
func (c *Client) SetClientID(id string) { c.r.SetHeader("X-Client-ID", id) }

// checkStatus converts a non-2xx response into a classified error, mapping
// 404 onto types.ErrNotFound for callers that care.
func checkStatus(resp *resty.Response, operation string) error {
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() == http.StatusNotFound {
		return types.ErrNotFound
	}
	return interrors.NewHTTPError(resp.StatusCode(), resp.String(), operation)
}
