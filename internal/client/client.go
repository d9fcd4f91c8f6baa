package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

type SentryClient struct {
	HTTP   *resty.Client
	Config ClientConfig
}

type ClientConfig struct {
	BaseURL   string        // e.g. http://localhost:8000 (the /api prefix is added per call)
	Timeout   time.Duration // per request; zero means no timeout
	UserAgent string
}

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

func newAPIError(op string, resp *resty.Response) error {
	return &APIError{Op: op, StatusCode: resp.StatusCode(), Body: resp.String()}
}

// IsTransient reports whether a failed call is worth repeating on the next poll:
// transport errors and 5xx responses are, 4xx responses are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

func New(cfg ClientConfig) *SentryClient {
	r := resty.New()
	r.SetBaseURL(cfg.BaseURL)
	r.SetHeader("Accept", "application/json")

	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "sentry-console"
	}
	r.SetHeader("User-Agent", cfg.UserAgent)

	return &SentryClient{
		HTTP:   r,
		Config: cfg,
	}
}
