package collection

import (
	"fmt"
	"maps"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Request is the fully built description of one fetch.
type Request struct {
	// Params holds the non-empty filter parameters.
	Params map[string]any
	// Page is the zero-based page.
	Page int
	// Limit is the page size.
	Limit int
}

// ServerPage returns the one-based page sent to backends.
func (r Request) ServerPage() int { return oneBased(r.Page) }

// oneBased converts a zero-based page, saturating at math.MaxInt.
func oneBased(page int) int {
	if page >= math.MaxInt {
		return math.MaxInt
	}
	return max(page, 0) + 1
}

// String returns the parameter as text, or "" when absent.
func (r Request) String(key string) string {
	v, ok := r.Params[key]
	if !ok {
		return ""
	}
	return formatValue(v)
}

// Bool returns a boolean parameter. ok is false when the parameter is absent
// or not a boolean.
func (r Request) Bool(key string) (value, ok bool) {
	switch v := r.Params[key].(type) {
	case bool:
		return v, true
	case *bool:
		if v != nil {
			return *v, true
		}
	case string:
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b, true
		}
	}
	return false, false
}

// Keyword returns the trimmed, lower-cased `keyword` parameter.
func (r Request) Keyword() string {
	return strings.ToLower(strings.TrimSpace(r.String("keyword")))
}

// Values encodes the parameters followed by one-based `page` and `limit`.
func (r Request) Values() url.Values {
	q := url.Values{}
	for k, v := range r.Params {
		q.Set(k, formatValue(v))
	}
	q.Set("page", strconv.Itoa(r.ServerPage()))
	q.Set("limit", strconv.Itoa(r.Limit))
	return q
}

// buildRequest snapshots params, dropping nil and empty values.
func buildRequest(params map[string]any, p Pagination) Request {
	clean := make(map[string]any, len(params))
	for k, v := range params {
		if isEmpty(v) {
			continue
		}
		clean[k] = v
	}
	return Request{Params: clean, Page: p.Page, Limit: p.Limit}
}

// mergeParams shallow-merges partial into dst. Nil and empty values keep
// their key; they are skipped when the request is built.
func mergeParams(dst, partial map[string]any) {
	maps.Copy(dst, partial)
}

// ExpandPath substitutes `{name}` placeholders in path with the escaped
// value of name.
func ExpandPath(path string, params map[string]string) string {
	for name, value := range params {
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
	}
	return path
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case *string:
		return x == nil || *x == ""
	case *bool:
		return x == nil
	case *int:
		return x == nil
	}
	return false
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case *string:
		return *x
	case *bool:
		return strconv.FormatBool(*x)
	case *int:
		return strconv.Itoa(*x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
