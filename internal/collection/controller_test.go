package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/me/storecms/pkg/cmsapi"
	"github.com/me/storecms/pkg/model"
)

// call is one fetch held by the scripted fetcher until the test replies.
type call struct {
	req   Request
	reply chan reply
}

type reply struct {
	res Result[[]string]
	err error
}

func (c *call) respond(items []string, info *model.PageInfo) {
	c.reply <- reply{res: Result[[]string]{Data: items, Page: info}}
}

func (c *call) fail(err error) {
	c.reply <- reply{err: err}
}

// scriptedFetcher parks every fetch until the test answers it, so responses
// can be released in any order. It ignores cancellation like a backend that
// finishes the request anyway.
type scriptedFetcher struct {
	calls chan *call
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{calls: make(chan *call, 16)}
}

func (f *scriptedFetcher) Fetch(_ context.Context, req Request) (Result[[]string], error) {
	c := &call{req: req, reply: make(chan reply, 1)}
	f.calls <- c
	r := <-c.reply
	return r.res, r.err
}

func (f *scriptedFetcher) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch")
		return nil
	}
}

type settle struct {
	seq     uint64
	applied bool
}

type fakeSession struct {
	mu      sync.Mutex
	cleared int
}

func (s *fakeSession) Clear() {
	s.mu.Lock()
	s.cleared++
	s.mu.Unlock()
}

func (s *fakeSession) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}

type fakeNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *fakeNavigator) Navigate(path string) {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
}

func (n *fakeNavigator) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

type harness struct {
	ctrl    *Controller[[]string]
	fetcher *scriptedFetcher
	settled chan settle
	session *fakeSession
	nav     *fakeNavigator
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		fetcher: newScriptedFetcher(),
		settled: make(chan settle, 16),
		session: &fakeSession{},
		nav:     &fakeNavigator{},
	}
	opts.Session = h.session
	opts.Navigator = h.nav
	h.ctrl = newController[[]string](h.fetcher, opts, func(seq uint64, applied bool) {
		h.settled <- settle{seq, applied}
	})
	h.ctrl.fetch()
	t.Cleanup(h.ctrl.Close)
	return h
}

func (h *harness) waitSettled(t *testing.T) settle {
	t.Helper()
	select {
	case s := <-h.settled:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch to settle")
		return settle{}
	}
}

func (h *harness) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.ctrl.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func items(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return out
}

func pageInfo(current, perPage, total int) *model.PageInfo {
	info := model.NewPageInfo(current, perPage, total)
	return &info
}

func TestController_InitialFetchPagination(t *testing.T) {
	h := newHarness(t, Options{Limit: 10})

	c := h.fetcher.next(t)
	if c.req.Page != 0 || c.req.Limit != 10 {
		t.Errorf("request page/limit = %d/%d, want 0/10", c.req.Page, c.req.Limit)
	}
	if got := c.req.Values().Get("page"); got != "1" {
		t.Errorf("outgoing page = %q, want 1", got)
	}
	if !h.ctrl.State().Loading {
		t.Error("Loading = false while fetch outstanding")
	}

	c.respond(items("p", 10), pageInfo(1, 10, 45))
	h.wait(t)

	s := h.ctrl.State()
	want := Pagination{Page: 0, Limit: 10, Total: 45}
	if s.Pagination != want {
		t.Errorf("pagination = %+v, want %+v", s.Pagination, want)
	}
	if len(s.Data) != 10 {
		t.Errorf("len(data) = %d, want 10", len(s.Data))
	}
	if s.Loading || s.Err != nil || !s.HasData {
		t.Errorf("state = loading %v, err %v, hasData %v", s.Loading, s.Err, s.HasData)
	}
}

func TestController_PageTranslation(t *testing.T) {
	tests := []struct {
		name       string
		localPage  int
		serverPage int
		wantLocal  int
	}{
		{"first", 0, 1, 0},
		{"third", 2, 3, 2},
		{"server moved back", 4, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Options{Limit: 5})
			h.fetcher.next(t).respond(nil, pageInfo(1, 5, 50))
			h.wait(t)

			h.ctrl.ChangePage(tt.localPage)
			c := h.fetcher.next(t)
			if c.req.ServerPage() != tt.localPage+1 {
				t.Errorf("ServerPage = %d, want %d", c.req.ServerPage(), tt.localPage+1)
			}
			c.respond(items("x", 5), pageInfo(tt.serverPage, 5, 50))
			h.wait(t)

			if got := h.ctrl.State().Pagination.Page; got != tt.wantLocal {
				t.Errorf("local page = %d, want %d", got, tt.wantLocal)
			}
		})
	}
}

func TestController_ChangeLimit(t *testing.T) {
	h := newHarness(t, Options{})
	h.fetcher.next(t).respond(nil, pageInfo(1, 10, 0))
	h.wait(t)

	h.ctrl.ChangeLimit(25)
	c := h.fetcher.next(t)
	if c.req.Limit != 25 {
		t.Errorf("limit = %d, want 25", c.req.Limit)
	}
	c.respond(nil, &model.PageInfo{CurrentPage: 1, TotalItems: 3})
	h.wait(t)
	if got := h.ctrl.State().Pagination.Limit; got != 25 {
		t.Errorf("limit = %d, want 25 when server omits per_page", got)
	}

	h.ctrl.ChangeLimit(0)
	if h.ctrl.State().Loading {
		t.Error("ChangeLimit(0) started a fetch")
	}
}

func TestController_EmptyParamsSkipped(t *testing.T) {
	h := newHarness(t, Options{})
	h.fetcher.next(t).respond(nil, nil)
	h.wait(t)

	h.ctrl.SetParams(map[string]any{"keyword": "", "category": nil, "is_active": true})
	c := h.fetcher.next(t)
	q := c.req.Values()
	if q.Has("keyword") || q.Has("category") {
		t.Errorf("query = %q, want no keyword/category", q.Encode())
	}
	if q.Get("is_active") != "true" {
		t.Errorf("is_active = %q, want true", q.Get("is_active"))
	}
	if _, ok := h.ctrl.Params()["keyword"]; !ok {
		t.Error("merged empty key should stay in stored params")
	}
	c.respond(nil, nil)
}

func TestController_LatestRequestWins(t *testing.T) {
	h := newHarness(t, Options{})
	h.fetcher.next(t).respond(items("all", 3), pageInfo(1, 10, 3))
	h.waitSettled(t)

	h.ctrl.SetParams(map[string]any{"keyword": "shirt"})
	first := h.fetcher.next(t)
	h.ctrl.SetParams(map[string]any{"keyword": "shirt-red"})
	second := h.fetcher.next(t)
	if first.req.String("keyword") != "shirt" || second.req.String("keyword") != "shirt-red" {
		t.Fatalf("keywords = %q, %q", first.req.String("keyword"), second.req.String("keyword"))
	}

	// Newer answers first; the stale answer arrives after it has applied.
	second.respond([]string{"shirt-red"}, pageInfo(1, 10, 1))
	if s := h.waitSettled(t); !s.applied {
		t.Fatal("latest response was not applied")
	}
	first.respond([]string{"shirt", "shirt-red"}, pageInfo(1, 10, 2))
	if s := h.waitSettled(t); s.applied {
		t.Fatal("stale response was applied")
	}

	s := h.ctrl.State()
	if len(s.Data) != 1 || s.Data[0] != "shirt-red" {
		t.Errorf("data = %v, want [shirt-red]", s.Data)
	}
	if s.Pagination.Total != 1 {
		t.Errorf("total = %d, want 1", s.Pagination.Total)
	}
}

func TestController_StaleBeforeLatestKeepsLoading(t *testing.T) {
	h := newHarness(t, Options{})
	h.fetcher.next(t).respond(nil, nil)
	h.waitSettled(t)

	h.ctrl.ChangePage(1)
	first := h.fetcher.next(t)
	h.ctrl.ChangePage(2)
	second := h.fetcher.next(t)

	first.respond([]string{"page-2"}, pageInfo(2, 10, 30))
	h.waitSettled(t)
	if !h.ctrl.State().Loading {
		t.Error("Loading = false while the latest fetch is outstanding")
	}

	second.respond([]string{"page-3"}, pageInfo(3, 10, 30))
	h.wait(t)
	s := h.ctrl.State()
	if s.Data[0] != "page-3" || s.Pagination.Page != 2 {
		t.Errorf("state = %v page %d, want [page-3] page 2", s.Data, s.Pagination.Page)
	}
}

func TestController_ForbiddenClearsSession(t *testing.T) {
	h := newHarness(t, Options{})
	h.fetcher.next(t).respond([]string{"a"}, pageInfo(1, 10, 1))
	h.wait(t)
	before := h.ctrl.State()

	h.ctrl.ChangePage(3)
	h.fetcher.next(t).fail(cmsapi.WrapError("GET /x", &cmsapi.HTTPError{StatusCode: 403}))
	h.wait(t)

	if h.session.count() != 1 {
		t.Errorf("session cleared %d times, want 1", h.session.count())
	}
	if got := h.nav.visited(); len(got) != 1 || got[0] != LoginPath {
		t.Errorf("navigated to %v, want [%s]", got, LoginPath)
	}
	s := h.ctrl.State()
	if s.Loading {
		t.Error("Loading = true after 403")
	}
	if s.Err != nil {
		t.Errorf("Err = %v, want nil", s.Err)
	}
	if len(s.Data) != 1 || s.Data[0] != "a" || s.Pagination.Total != before.Pagination.Total {
		t.Errorf("state changed after 403: %+v", s)
	}
}

func TestController_SupersededForbiddenClearsSession(t *testing.T) {
	h := newHarness(t, Options{})
	stale := h.fetcher.next(t)
	h.ctrl.SetParams(map[string]any{"keyword": "x"})
	latest := h.fetcher.next(t)

	stale.fail(&cmsapi.HTTPError{StatusCode: 403})
	if s := h.waitSettled(t); s.applied {
		t.Error("superseded 403 was applied")
	}
	if h.session.count() != 1 {
		t.Errorf("session cleared %d times, want 1", h.session.count())
	}
	if got := h.nav.visited(); len(got) != 1 || got[0] != LoginPath {
		t.Errorf("navigated to %v, want [%s]", got, LoginPath)
	}

	// The latest fetch failing on transport must not bring the token back.
	latest.fail(errors.New("connection reset"))
	h.wait(t)
	if h.session.count() != 1 {
		t.Errorf("session cleared %d times, want 1", h.session.count())
	}
	if s := h.ctrl.State(); s.Err == nil || s.HasData {
		t.Errorf("state = %+v, want transport error and no data", s)
	}
}

func TestController_ForbiddenAfterCloseDoesNotNavigate(t *testing.T) {
	h := newHarness(t, Options{})
	c := h.fetcher.next(t)
	h.ctrl.Close()

	c.fail(&cmsapi.HTTPError{StatusCode: 403})
	if s := h.waitSettled(t); s.applied {
		t.Error("403 after Close was applied")
	}
	if h.session.count() != 1 {
		t.Errorf("session cleared %d times, want 1", h.session.count())
	}
	if got := h.nav.visited(); len(got) != 0 {
		t.Errorf("navigated to %v after Close", got)
	}
}

func TestController_ErrorKeepsDataAndClearsOnRetry(t *testing.T) {
	h := newHarness(t, Options{})
	h.fetcher.next(t).respond([]string{"kept"}, pageInfo(1, 10, 1))
	h.wait(t)

	h.ctrl.SetParams(map[string]any{"keyword": "boom"})
	h.fetcher.next(t).fail(&cmsapi.APIError{Message: "invalid keyword"})
	h.wait(t)

	s := h.ctrl.State()
	if cmsapi.Message(s.Err) != "invalid keyword" {
		t.Errorf("Err = %v, want invalid keyword", s.Err)
	}
	if len(s.Data) != 1 || s.Data[0] != "kept" {
		t.Errorf("data = %v, want [kept]", s.Data)
	}

	h.ctrl.SetParams(map[string]any{"keyword": ""})
	c := h.fetcher.next(t)
	if s := h.ctrl.State(); s.Err != nil || !s.Loading {
		t.Errorf("at fetch start: err %v loading %v, want nil/true", s.Err, s.Loading)
	}
	c.respond([]string{"fresh"}, nil)
	h.wait(t)
	if s := h.ctrl.State(); s.Err != nil {
		t.Errorf("Err = %v after success, want nil", s.Err)
	}
}

func TestController_Refetch(t *testing.T) {
	h := newHarness(t, Options{})
	h.fetcher.next(t).respond([]string{"old"}, nil)
	h.wait(t)

	type out struct {
		data []string
		err  error
	}
	done := make(chan out, 1)
	go func() {
		data, err := h.ctrl.Refetch(context.Background())
		done <- out{data, err}
	}()
	h.fetcher.next(t).respond([]string{"new"}, nil)

	select {
	case got := <-done:
		if got.err != nil || len(got.data) != 1 || got.data[0] != "new" {
			t.Errorf("Refetch = %v, %v; want [new], nil", got.data, got.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Refetch did not return")
	}
}

func TestController_RefetchReturnsError(t *testing.T) {
	h := newHarness(t, Options{})
	h.fetcher.next(t).respond(nil, nil)
	h.wait(t)

	wantErr := errors.New("network down")
	errc := make(chan error, 1)
	go func() {
		_, err := h.ctrl.Refetch(context.Background())
		errc <- err
	}()
	h.fetcher.next(t).fail(wantErr)
	if err := <-errc; !errors.Is(err, wantErr) {
		t.Errorf("Refetch error = %v, want %v", err, wantErr)
	}
}

func TestController_SubscribeSeesLoadingTransitions(t *testing.T) {
	h := newHarness(t, Options{})
	h.fetcher.next(t).respond(nil, nil)
	h.wait(t)

	feed, stop := h.ctrl.Subscribe()
	defer stop()

	h.ctrl.ChangePage(1)
	if s := <-feed; !s.Loading {
		t.Error("first event Loading = false, want true")
	}
	h.fetcher.next(t).respond([]string{"b"}, pageInfo(2, 10, 11))
	select {
	case s := <-feed:
		if s.Loading || s.Pagination.Page != 1 {
			t.Errorf("settled event = %+v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no settled event")
	}
}

func TestController_CloseEndsEverything(t *testing.T) {
	h := newHarness(t, Options{})
	c := h.fetcher.next(t)
	feed, _ := h.ctrl.Subscribe()

	h.ctrl.Close()
	if _, ok := <-feed; ok {
		// The buffered snapshot may still be there; the next receive must see closure.
		if _, ok := <-feed; ok {
			t.Error("subscription not closed")
		}
	}
	if err := h.ctrl.Wait(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Wait = %v, want ErrClosed", err)
	}

	c.respond([]string{"late"}, nil)
	if s := h.waitSettled(t); s.applied {
		t.Error("result applied after Close")
	}
	h.ctrl.SetParams(map[string]any{"keyword": "ignored"})
	select {
	case <-h.fetcher.calls:
		t.Error("fetch issued after Close")
	default:
	}
}

func TestNew_IssuesInitialFetch(t *testing.T) {
	var mu sync.Mutex
	var reqs []Request
	f := FuncFetcher[int](func(_ context.Context, req Request) (Result[int], error) {
		mu.Lock()
		reqs = append(reqs, req)
		mu.Unlock()
		return Result[int]{Data: 42}, nil
	})
	ctrl := New[int](f, Options{Page: 2, Limit: 5, Params: map[string]any{"slug": "hat"}})
	defer ctrl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ctrl.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	s := ctrl.State()
	if s.Data != 42 || !s.HasData {
		t.Errorf("data = %d, hasData %v", s.Data, s.HasData)
	}
	if s.Pagination.Page != 2 {
		t.Errorf("single-entity fetch changed page to %d", s.Pagination.Page)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(reqs) != 1 || reqs[0].String("slug") != "hat" || reqs[0].Page != 2 || reqs[0].Limit != 5 {
		t.Errorf("requests = %+v", reqs)
	}
}
