package cmsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/me/storecms/pkg/model"
)

// Get fetches path and decodes the `data` member of the REST envelope into
// out. `success: false` fails with an *APIError carrying the server message.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any, opts ...CallOption) error {
	op := "GET " + path
	o := buildOptions(opts)

	u, err := c.resolve(path, query)
	if err != nil {
		return WrapError(op, err)
	}

	req := request{
		method:     http.MethodGet,
		url:        u,
		public:     o.public,
		idempotent: true,
	}
	return c.call(ctx, op, req, func(resp *response) error {
		return decodeEnvelope(resp, out)
	})
}

// Do sends a write request with an optional JSON body and decodes the raw
// response into out when out is non-nil. Non-2xx answers fail with an
// *HTTPError carrying the body. Writes are never retried.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any, out any, opts ...CallOption) error {
	op := method + " " + path
	o := buildOptions(opts)

	data, err := marshalBody(body)
	if err != nil {
		return WrapError(op, err)
	}
	u, err := c.resolve(path, query)
	if err != nil {
		return WrapError(op, err)
	}

	req := request{
		method:     method,
		url:        u,
		body:       data,
		public:     o.public,
		idempotent: method == http.MethodGet,
	}
	return c.call(ctx, op, req, func(resp *response) error {
		if !isSuccess(resp.status) {
			return &HTTPError{StatusCode: resp.status, Body: string(resp.body)}
		}
		if out == nil || len(resp.body) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.body, out); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return nil
	})
}

func decodeEnvelope(resp *response, out any) error {
	if !isSuccess(resp.status) {
		return &HTTPError{StatusCode: resp.status, Body: string(resp.body)}
	}

	var env model.Envelope[json.RawMessage]
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Status == http.StatusForbidden {
		return &HTTPError{StatusCode: env.Status, Body: env.Message}
	}
	if !env.Success {
		return &APIError{Message: env.Message}
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: missing data member", ErrMalformedResponse)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
