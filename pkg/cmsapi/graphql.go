package cmsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/me/storecms/pkg/model"
)

// GraphQL posts query with variables and decodes the `data` member into out.
// A non-empty `errors` array fails the call with a *GraphQLError. Queries are
// retried on transient failures; mutations are not.
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any, out any, opts ...CallOption) error {
	op := "graphql " + operationName(query)
	o := buildOptions(opts)

	body, err := marshalBody(model.GraphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return WrapError(op, err)
	}
	u, err := c.resolve(c.config.GraphQLPath, nil)
	if err != nil {
		return WrapError(op, err)
	}

	req := request{
		method:     http.MethodPost,
		url:        u,
		body:       body,
		public:     o.public,
		idempotent: isQuery(query),
	}
	return c.call(ctx, op, req, func(resp *response) error {
		return decodeGraphQL(resp, out)
	})
}

// decodeGraphQL validates a GraphQL envelope. Errors reported in the body win
// over the HTTP status because proxies answer 502 with an errors array.
func decodeGraphQL(resp *response, out any) error {
	if resp.status == http.StatusForbidden {
		return &HTTPError{StatusCode: resp.status, Body: string(resp.body)}
	}
	if !gjson.ValidBytes(resp.body) {
		if !isSuccess(resp.status) {
			return &HTTPError{StatusCode: resp.status, Body: string(resp.body)}
		}
		return fmt.Errorf("%w: body is not JSON", ErrMalformedResponse)
	}

	if msgs := gjson.GetBytes(resp.body, "errors.#.message").Array(); len(msgs) > 0 {
		gqlErr := &GraphQLError{}
		for _, m := range msgs {
			gqlErr.Messages = append(gqlErr.Messages, m.String())
		}
		return gqlErr
	}
	if !isSuccess(resp.status) {
		return &HTTPError{StatusCode: resp.status, Body: string(resp.body)}
	}

	data := gjson.GetBytes(resp.body, "data")
	if !data.Exists() {
		return fmt.Errorf("%w: missing data member", ErrMalformedResponse)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(data.Raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// isQuery reports whether a document is a read-only query. Anonymous
// documents starting with `{` are queries too.
func isQuery(doc string) bool {
	doc = strings.TrimSpace(doc)
	return strings.HasPrefix(doc, "query") || strings.HasPrefix(doc, "{")
}

// operationName extracts the operation name for logs and error context.
func operationName(doc string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(doc), func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == '(' || r == '{'
	})
	if len(fields) >= 2 && (fields[0] == "query" || fields[0] == "mutation") && !strings.HasPrefix(fields[1], "$") {
		return fields[1]
	}
	return "anonymous"
}
