package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	maxResponseSize  = 5 * 1024 * 1024 // 5MB
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 3
	defaultUserAgent = "scrapekit/1.0 (+https://github.com/scrapekit-ai/scrapekit)"
)

// HTTPConfig holds HTTP driver configuration.
type HTTPConfig struct {
	// Timeout bounds a single request attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// RetryInterval is the initial backoff delay between attempts.
	RetryInterval time.Duration
	// MaxBodySize caps the accepted response size in bytes.
	MaxBodySize int64
	// UserAgent is sent unless the script sets its own.
	UserAgent string
}

// DefaultHTTPConfig returns the default HTTP driver configuration.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:       defaultTimeout,
		MaxRetries:    defaultRetries,
		RetryInterval: 500 * time.Millisecond,
		MaxBodySize:   maxResponseSize,
		UserAgent:     defaultUserAgent,
	}
}

// HTTPDriver fetches URLs over HTTP. Transport errors and 5xx responses
// are retried with exponential backoff; other failing statuses abort
// immediately.
type HTTPDriver struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPDriver creates an HTTP driver with the given configuration.
// Unset timeouts, sizes and the user agent fall back to the defaults.
// MaxRetries is taken as given, so zero disables retries.
func NewHTTPDriver(cfg HTTPConfig) *HTTPDriver {
	def := DefaultHTTPConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = def.MaxBodySize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}

	return &HTTPDriver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Get implements Driver.
func (d *HTTPDriver) Get(ctx context.Context, url string, headers map[string]string) (string, error) {
	var body string
	operation := func() error {
		b, err := d.fetch(ctx, url, headers)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.cfg.RetryInterval

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, d.cfg.MaxRetries), ctx))
	if err != nil {
		return "", err
	}
	return body, nil
}

func (d *HTTPDriver) fetch(ctx context.Context, url string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}

	req.Header.Set("User-Agent", d.cfg.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		// Transport errors are worth retrying
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("request failed with status code: %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", backoff.Permanent(fmt.Errorf("request failed with status code: %d", resp.StatusCode))
	}

	if resp.ContentLength > d.cfg.MaxBodySize {
		return "", backoff.Permanent(fmt.Errorf("response too large (exceeds %d byte limit)", d.cfg.MaxBodySize))
	}

	limited := io.LimitReader(resp.Body, d.cfg.MaxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return "", err
	}
	if int64(len(body)) > d.cfg.MaxBodySize {
		return "", backoff.Permanent(fmt.Errorf("response too large (exceeds %d byte limit)", d.cfg.MaxBodySize))
	}

	return string(body), nil
}
