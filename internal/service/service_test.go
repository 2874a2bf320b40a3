package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/me/storecms/pkg/cmsapi"
)

var operationField = regexp.MustCompile(`\{\s*(\w+)\s*[({]`)

// gqlCall is one GraphQL request seen by the fake backend.
type gqlCall struct {
	Field     string
	Variables map[string]any
}

// fakeBackend answers GraphQL calls by their top-level field and REST calls
// by method and path.
type fakeBackend struct {
	t *testing.T

	mu      sync.Mutex
	gql     map[string]func(vars map[string]any) (any, string)
	rest    map[string]func(r *http.Request) (int, any)
	calls   []gqlCall
	restLog []string
}

func newFakeBackend(t *testing.T) (*fakeBackend, Deps) {
	t.Helper()
	b := &fakeBackend{
		t:    t,
		gql:  make(map[string]func(map[string]any) (any, string)),
		rest: make(map[string]func(*http.Request) (int, any)),
	}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	cfg := cmsapi.DefaultConfig().WithBaseURL(srv.URL).WithRetries(0, time.Millisecond)
	return b, Deps{API: cmsapi.NewClient(cfg, nil, nil)}
}

// onGraphQL registers a handler returning the field value, or an error
// message when the second result is not empty.
func (b *fakeBackend) onGraphQL(field string, h func(vars map[string]any) (any, string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gql[field] = h
}

func (b *fakeBackend) onREST(methodPath string, h func(r *http.Request) (int, any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rest[methodPath] = h
}

func (b *fakeBackend) fields() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	for i, c := range b.calls {
		out[i] = c.Field
	}
	return out
}

func (b *fakeBackend) callsTo(field string) []gqlCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []gqlCall
	for _, c := range b.calls {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == cmsapi.DefaultGraphQLPath {
		b.serveGraphQL(w, r)
		return
	}

	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	h, ok := b.rest[key]
	b.restLog = append(b.restLog, key+"?"+r.URL.RawQuery)
	b.mu.Unlock()
	if !ok {
		b.t.Errorf("unexpected REST call %s", key)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	status, body := h(r)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (b *fakeBackend) serveGraphQL(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	doc := gjson.GetBytes(raw, "query").String()
	m := operationField.FindStringSubmatch(doc)
	if m == nil {
		b.t.Errorf("cannot find operation field in %q", doc)
		return
	}
	field := m[1]

	var vars map[string]any
	if v := gjson.GetBytes(raw, "variables"); v.Exists() {
		json.Unmarshal([]byte(v.Raw), &vars)
	}

	b.mu.Lock()
	b.calls = append(b.calls, gqlCall{Field: field, Variables: vars})
	h, ok := b.gql[field]
	b.mu.Unlock()
	if !ok {
		b.t.Errorf("unexpected GraphQL field %s", field)
		json.NewEncoder(w).Encode(map[string]any{"errors": []map[string]string{{"message": "unknown field " + field}}})
		return
	}

	value, errMsg := h(vars)
	if errMsg != "" {
		json.NewEncoder(w).Encode(map[string]any{"errors": []map[string]string{{"message": errMsg}}})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{field: value}})
}

func returns(v any) func(map[string]any) (any, string) {
	return func(map[string]any) (any, string) { return v, "" }
}
