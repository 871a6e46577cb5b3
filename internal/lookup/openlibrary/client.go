// Package openlibrary implements lookup.Provider against the Open Library API.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"

	"github.com/listenupapp/readlog/internal/dedup"
	"github.com/listenupapp/readlog/internal/lookup"
	"github.com/listenupapp/readlog/internal/ratelimit"
)

// DefaultBaseURL is the public Open Library endpoint.
const DefaultBaseURL = "https://openlibrary.org"

const (
	defaultRPS        = 5.0
	defaultBurst      = 5
	defaultTimeout    = 10 * time.Second
	defaultRetryDelay = 250 * time.Millisecond
	userAgent         = "readlog/1.0 (+https://github.com/listenupapp/readlog)"

	searchFields = "title,author_name,isbn,number_of_pages_median,subject,first_sentence"
)

// Options configures a Client. Zero values take defaults.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	RetryDelay        time.Duration
}

// Client is a rate-limited, retrying Open Library client.
type Client struct {
	http       *resty.Client
	limiter    *ratelimit.KeyedRateLimiter
	limiterKey string
	attempts   uint
	retryDelay time.Duration
	logger     *slog.Logger
}

var _ lookup.Provider = (*Client)(nil)

// New creates a client. A nil logger discards.
func New(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}

	key := opts.BaseURL
	if u, err := url.Parse(opts.BaseURL); err == nil && u.Host != "" {
		key = u.Host
	}

	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
			SetTimeout(opts.Timeout).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", userAgent),
		limiter:    ratelimit.New(opts.RequestsPerSecond, opts.Burst),
		limiterKey: key,
		attempts:   uint(opts.MaxRetries) + 1,
		retryDelay: opts.RetryDelay,
		logger:     logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// LookupByISBN fetches the edition record for isbn.
func (c *Client) LookupByISBN(ctx context.Context, isbn string) (*lookup.Metadata, error) {
	isbn = dedup.NormalizeISBN(isbn)
	if isbn == "" {
		return nil, nil
	}
	bibkey := "ISBN:" + isbn

	body, found, err := c.get(ctx, "/api/books", map[string]string{
		"bibkeys": bibkey,
		"format":  "json",
		"jscmd":   "data",
	})
	if err != nil {
		return nil, wrapError("lookupISBN", isbn, err)
	}
	if !found {
		return nil, nil
	}

	var resp map[string]rawEdition
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("lookupISBN", isbn, fmt.Errorf("%w: %v", ErrDecode, err))
	}
	ed, ok := resp[bibkey]
	if !ok {
		return nil, nil
	}
	return ed.toMetadata(isbn), nil
}

// SearchByTitleAuthor returns the best search hit for a title and author.
// A known isbn narrows the query.
func (c *Client) SearchByTitleAuthor(ctx context.Context, title, author, isbn string) (*lookup.Metadata, error) {
	params := map[string]string{
		"title":  strings.TrimSpace(title),
		"limit":  "1",
		"fields": searchFields,
	}
	if a := strings.TrimSpace(author); a != "" {
		params["author"] = a
	}
	if n := dedup.NormalizeISBN(isbn); n != "" {
		params["isbn"] = n
	}
	query := title + "|" + author

	body, found, err := c.get(ctx, "/search.json", params)
	if err != nil {
		return nil, wrapError("search", query, err)
	}
	if !found {
		return nil, nil
	}

	var resp rawSearch
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("search", query, fmt.Errorf("%w: %v", ErrDecode, err))
	}
	if len(resp.Docs) == 0 {
		return nil, nil
	}
	return resp.Docs[0].toMetadata(), nil
}

// get performs a rate-limited GET with retries on 429 and 5xx.
// found is false for a 404.
func (c *Client) get(ctx context.Context, path string, params map[string]string) (body []byte, found bool, err error) {
	err = retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx, c.limiterKey); err != nil {
				return retry.Unrecoverable(fmt.Errorf("rate limit wait: %w", err))
			}

			c.logger.Debug("openlibrary request", "path", path)

			resp, err := c.http.R().
				SetContext(ctx).
				SetQueryParams(params).
				Get(path)
			if err != nil {
				if ctx.Err() != nil {
					return retry.Unrecoverable(ctx.Err())
				}
				return fmt.Errorf("execute request: %w", err)
			}

			switch code := resp.StatusCode(); {
			case code == http.StatusOK:
				body, found = resp.Body(), true
				return nil
			case code == http.StatusNotFound:
				body, found = nil, false
				return nil
			case code == http.StatusTooManyRequests:
				return ErrRateLimited
			case code == http.StatusBadRequest:
				return retry.Unrecoverable(ErrBadRequest)
			case code >= 500:
				return ErrServer
			default:
				return retry.Unrecoverable(fmt.Errorf("unexpected status %d", code))
			}
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("openlibrary retry", "path", path, "attempt", n+1, "error", err)
		}),
	)
	return body, found, err
}
