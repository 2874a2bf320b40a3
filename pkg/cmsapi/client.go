package cmsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

// TokenSource supplies the bearer token of the current session.
type TokenSource interface {
	Token() string
}

// Client provides methods to call the CMS backend.
type Client struct {
	httpClient *http.Client
	config     Config
	tokens     TokenSource
	logger     *slog.Logger
	requestID  atomic.Int64
}

// NewClient creates a new CMS API client. tokens may be nil for clients that
// only make public calls.
func NewClient(config Config, tokens TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.GraphQLPath == "" {
		config.GraphQLPath = DefaultGraphQLPath
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
		tokens: tokens,
		logger: logger.With("component", "cmsapi-client"),
	}
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// CallOption adjusts a single call.
type CallOption func(*callOptions)

type callOptions struct {
	public bool
}

// Public marks a call as public: no Authorization header is sent.
func Public() CallOption {
	return func(o *callOptions) { o.public = true }
}

// request describes one HTTP exchange.
type request struct {
	method     string
	url        string
	body       []byte
	public     bool
	idempotent bool
}

// response is the raw HTTP answer.
type response struct {
	status int
	body   []byte
}

// nextID generates a unique request ID for log correlation.
func (c *Client) nextID() string {
	return fmt.Sprintf("req-%d", c.requestID.Add(1))
}

// resolve turns a path into an absolute URL against BaseURL.
func (c *Client) resolve(path string, query url.Values) (string, error) {
	var u string
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		u = path
	} else {
		if c.config.BaseURL == "" {
			return "", ErrNoBaseURL
		}
		u = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + query.Encode()
	}
	return u, nil
}

// call executes req, retrying idempotent requests on transient failures,
// and hands each answer to decode.
func (c *Client) call(ctx context.Context, op string, req request, decode func(*response) error) error {
	id := c.nextID()
	logger := c.logger.With("op", op, "method", req.method, "url", req.url, "request_id", id)

	attempts := 1
	if req.idempotent {
		attempts += c.config.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			logger.Debug("retrying after delay", "attempt", attempt, "delay", delay)

			select {
			case <-ctx.Done():
				return WrapError(op, ctx.Err())
			case <-time.After(delay):
			}
		}

		logger.Debug("sending request", "attempt", attempt)
		resp, err := c.doRequest(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return WrapError(op, ctx.Err())
			}
			lastErr = err
			logger.Debug("request failed, will retry", "error", err, "attempt", attempt)
			continue
		}

		if err := decode(resp); err != nil {
			if IsRetryable(err) {
				lastErr = err
				logger.Debug("transient failure", "status", resp.status, "attempt", attempt)
				continue
			}
			logger.Debug("request rejected", "status", resp.status, "error", err)
			return WrapError(op, err)
		}

		logger.Debug("request successful", "status", resp.status)
		return nil
	}

	if attempts == 1 {
		return WrapError(op, lastErr)
	}
	return WrapError(op, fmt.Errorf("all retries exhausted: %w", lastErr))
}

// doRequest performs a single HTTP request.
func (c *Client) doRequest(ctx context.Context, req request) (*response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header.Set("Accept", "*/*")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.public && c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &response{status: httpResp.StatusCode, body: respBody}, nil
}

func buildOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	return data, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
