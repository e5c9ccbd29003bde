package comics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	userAgent   = "KanaToon/1.0"
	maxAttempts = 2 // one retry with backoff, shared by every fetcher
)

var (
	// ErrNoLink is the precondition failure: a detail or chapter fetch was
	// asked for without a link to fetch.
	ErrNoLink = errors.New("comics: no link provided")

	// ErrEndOfCatalog signals that a library page is past the last page.
	// It is an end-of-data marker, not a failure.
	ErrEndOfCatalog = errors.New("comics: end of catalog")
)

// statusError preserves the upstream status code so callers can tell
// end-of-data 404s apart from real failures.
type statusError struct {
	status int
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("comics: status %d from %s", e.status, e.url)
}

// Client talks to the remote comics API. All listings, detail, and chapter
// fetches go through it, so the timeout, retry, rate limit, and response
// cache apply uniformly.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cache   *gocache.Cache
	log     *logrus.Entry
}

// NewClient builds a client for the given API base URL. cacheTTL <= 0
// disables response caching.
func NewClient(baseURL string, timeout, cacheTTL time.Duration) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		log:     logrus.WithField("component", "comics"),
	}
	if cacheTTL > 0 {
		c.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return c
}

// getJSON fetches baseURL+path and decodes the body into out. Responses
// are cached by URL; transport errors and 5xx responses are retried once
// with backoff. Non-2xx responses come back as *statusError.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	url := c.baseURL + path

	if c.cache != nil {
		if cached, ok := c.cache.Get(url); ok {
			return json.Unmarshal(cached.([]byte), out)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := c.fetch(ctx, url)
	if err != nil {
		return err
	}

	if c.cache != nil {
		c.cache.SetDefault(url, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("comics: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(200*attempt) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			c.log.WithField("url", url).Warn("retrying fetch")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("comics: build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("comics: request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("comics: read body: %w", err)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = &statusError{status: resp.StatusCode, url: url}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			// 4xx is not retried; the caller decides what it means.
			return nil, &statusError{status: resp.StatusCode, url: url}
		}

		return body, nil
	}

	return nil, lastErr
}

// notFound reports whether err is a 404-class upstream response.
func notFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.status >= 400 && se.status < 500
}
