package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/me/storecms/pkg/model"
)

const maxQueryBody = 1 << 20

const unexpectedPayload = "Upstream returned unexpected payload. Ensure your backend responds with { data, errors }."

type upstreamRequest struct {
	Query     string          `json:"query"`
	Variables json.RawMessage `json:"variables,omitempty"`
}

// handleGraphQL forwards a {query, variables} body to the backend GraphQL
// endpoint and relays the answer only when it has the GraphQL shape.
func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if s.api.URL == "" {
		respondGraphQLError(w, http.StatusInternalServerError, "API_URL is not configured on the server")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxQueryBody))
	if err != nil {
		respondGraphQLError(w, http.StatusBadRequest, "Invalid GraphQL query")
		return
	}
	q := gjson.GetBytes(body, "query")
	if !gjson.ValidBytes(body) || q.Type != gjson.String || q.Str == "" {
		respondGraphQLError(w, http.StatusBadRequest, "Invalid GraphQL query")
		return
	}

	base, err := parseAPIURL(s.api.URL)
	if err != nil {
		respondGraphQLError(w, http.StatusInternalServerError, "Invalid API_URL: "+s.api.URL)
		return
	}
	upstream := joinUpstream(base, s.api.GraphQLPath)
	if host := strings.ToLower(r.Host); host != "" && host == strings.ToLower(base.Host) {
		s.logger.Warn("API URL points at this server; requests may recurse", "host", host, "api_url", s.api.URL)
	}

	payload := upstreamRequest{Query: q.Str}
	if v := gjson.GetBytes(body, "variables"); v.Exists() && v.Type != gjson.Null {
		payload.Variables = json.RawMessage(v.Raw)
	}

	status, out, err := s.forward(r.Context(), upstream, s.authorization(r), payload)
	if err != nil {
		s.logger.Error("upstream graphql error", "upstream", upstream, "error", err,
			"request_id", RequestIDFromContext(r.Context()))
		respondGraphQLError(w, http.StatusBadGateway, err.Error())
		return
	}

	res := gjson.ParseBytes(out)
	shaped := gjson.ValidBytes(out) && res.IsObject()
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		respondGraphQLError(w, status, upstreamErrorMessage(res, status))
	case status >= 400:
		respondGraphQLError(w, http.StatusBadGateway, upstreamErrorMessage(res, status))
	case !shaped:
		respondGraphQLError(w, http.StatusBadGateway, unexpectedPayload)
	case res.Get("errors").IsArray() && len(res.Get("errors").Array()) > 0:
		writeRaw(w, http.StatusBadGateway, fmt.Appendf(nil, `{"errors":%s}`, res.Get("errors").Raw))
	case res.Get("data").Exists():
		writeRaw(w, http.StatusOK, out)
	default:
		respondGraphQLError(w, http.StatusBadGateway, unexpectedPayload)
	}
}

// forward posts payload upstream within the configured timeout. Only
// transport failures are returned as errors.
func (s *Server) forward(ctx context.Context, upstream, auth string, payload upstreamRequest) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode upstream request: %w", err)
	}
	if s.config.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.UpstreamTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, upstream, bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := s.upstream.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read upstream response: %w", err)
	}
	return resp.StatusCode, out, nil
}

// authorization prefers the caller's Authorization header and falls back to
// the token cookie.
func (s *Server) authorization(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return h
	}
	name := s.config.TokenCookie
	if name == "" {
		name = "token"
	}
	if c, err := r.Cookie(name); err == nil && c.Value != "" {
		return "Bearer " + c.Value
	}
	return ""
}

func parseAPIURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API URL %q has no scheme or host", raw)
	}
	return u, nil
}

// joinUpstream joins the API origin, its base path and the GraphQL path with
// single slashes.
func joinUpstream(base *url.URL, graphqlPath string) string {
	parts := []string{base.Scheme + "://" + base.Host}
	if p := strings.Trim(base.Path, "/"); p != "" {
		parts = append(parts, p)
	}
	if p := strings.TrimLeft(strings.TrimSpace(graphqlPath), "/"); p != "" {
		parts = append(parts, p)
	}
	return strings.Join(parts, "/")
}

func upstreamErrorMessage(res gjson.Result, status int) string {
	if msg := res.Get("errors.0.message").String(); msg != "" {
		return msg
	}
	if msg := res.Get("message").String(); msg != "" {
		return msg
	}
	return fmt.Sprintf("upstream responded %d %s", status, http.StatusText(status))
}

type graphQLErrors struct {
	Errors []model.GraphQLError `json:"errors"`
}

func respondGraphQLError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(graphQLErrors{Errors: []model.GraphQLError{{Message: msg}}})
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
