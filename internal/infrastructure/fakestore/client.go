// Package fakestore is the HTTP client for the remote catalog API
// (fakestoreapi.com compatible).
package fakestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/catalog-flipbook/internal/apperr"
	"github.com/example/catalog-flipbook/internal/config"
	"github.com/example/catalog-flipbook/internal/domain/product"
)

// errRetryable marks a status that is worth another attempt.
var errRetryable = errors.New("retryable status")

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the base retry delay; attempt n waits base*2^(n-1).
func WithBackoff(base time.Duration) Option {
	return func(c *Client) { c.backoff = base }
}

func NewClient(baseURL string, rps, maxRetries int, timeout time.Duration, opts ...Option) *Client {
	if rps <= 0 {
		rps = 1
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client from the source settings.
func NewFromConfig(cfg config.SourceConfig, opts ...Option) *Client {
	return NewClient(cfg.GetCatalogAPIURL(), cfg.GetCatalogRPS(), cfg.GetCatalogMaxRetries(), cfg.GetCatalogTimeout(), opts...)
}

// Products fetches GET /products.
func (c *Client) Products(ctx context.Context) ([]product.Product, error) {
	return c.getProducts(ctx, "/products")
}

// Categories fetches GET /products/categories.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var res []string
	if err := c.get(ctx, "/products/categories", &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ProductsByCategory fetches GET /products/category/{category}.
func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]product.Product, error) {
	return c.getProducts(ctx, "/products/category/"+url.PathEscape(category))
}

// getProducts decodes each array element on its own. An element that does
// not fit the record shape comes back without id and price, so normalization
// skips and counts it instead of losing the whole batch.
func (c *Client) getProducts(ctx context.Context, path string) ([]product.Product, error) {
	var raw []json.RawMessage
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}

	res := make([]product.Product, len(raw))
	for i, el := range raw {
		if err := json.Unmarshal(el, &res[i]); err != nil {
			res[i] = product.Product{}
		}
	}
	return res, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token via POST /auth/login.
// Rejected credentials yield an Unauthorized error; anything else that fails
// is a Network error.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", apperr.Internal("encode login request", err)
	}

	var res loginResponse
	err = c.do(ctx, http.MethodPost, "/auth/login", body, func(status int) error {
		if status == http.StatusUnauthorized || status == http.StatusBadRequest {
			return apperr.Unauthorized("invalid credentials").WithOp("fakestore.Login")
		}
		return nil
	}, &res)
	if err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", apperr.Network("login response has no token", nil).WithOp("fakestore.Login")
	}
	return res.Token, nil
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, target)
}

// do runs one request with throttling and retries. classify may turn a
// non-2xx status into a specific error before the generic handling applies.
func (c *Client) do(ctx context.Context, method, path string, body []byte, classify func(int) error, target any) error {
	op := "fakestore " + method + " " + path

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: base, 2*base, 4*base...
			backoff := c.backoff * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return apperr.Network("request cancelled", ctx.Err()).WithOp(op)
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return apperr.Network("rate limiter", err).WithOp(op)
		}

		err := c.attempt(ctx, method, path, body, classify, target)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errRetryable) && !isTransport(err) {
			return err
		}
		lastErr = err
	}
	return apperr.Network(fmt.Sprintf("after %d retries", c.maxRetries), lastErr).WithOp(op)
}

type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransport(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}

func (c *Client) attempt(ctx context.Context, method, path string, body []byte, classify func(int) error, target any) error {
	op := "fakestore " + method + " " + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperr.Internal("build request", err).WithOp(op)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		if classify != nil {
			if err := classify(resp.StatusCode); err != nil {
				return err
			}
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("%w: unexpected status code: %d", errRetryable, resp.StatusCode)
		}
		return apperr.Network(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil).WithOp(op)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperr.Malformed("decode response", err).WithOp(op)
	}
	return nil
}
