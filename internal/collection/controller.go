package collection

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"

	"github.com/me/storecms/internal/logging"
	"github.com/me/storecms/pkg/cmsapi"
)

// ErrClosed is returned by Wait and Refetch on a closed controller.
var ErrClosed = errors.New("collection: controller closed")

// Options configures a Controller.
type Options struct {
	// Page is the initial zero-based page.
	Page int
	// Limit is the initial page size. Defaults to DefaultLimit.
	Limit int
	// Params are the initial filter parameters.
	Params map[string]any

	// Session is cleared when a fetch is rejected with 403. Optional.
	Session Session
	// Navigator receives LoginPath after a 403. It is never called once
	// Close has returned, and it must not call Close itself. Optional.
	Navigator Navigator

	Logger *slog.Logger
}

// Controller owns the request/response cycle of one remote endpoint.
//
// Every fetch is stamped with a sequence number. Starting a fetch cancels
// the context of the previous one, and a result whose sequence number is not
// the latest issued is dropped, so a superseded response never overwrites
// state. Failures land in State.Err; mutators never return them.
type Controller[T any] struct {
	fetcher Fetcher[T]
	session Session
	nav     Navigator
	logger  *slog.Logger

	// settled, when set, observes every completed fetch. Tests only.
	settled func(seq uint64, applied bool)

	base     context.Context
	shutdown context.CancelFunc

	// navMu orders Navigate calls against Close.
	navMu sync.Mutex

	mu     sync.Mutex
	params map[string]any
	state  State[T]
	seq    uint64
	cancel context.CancelFunc
	idle   chan struct{}
	subs   map[chan State[T]]struct{}
	closed bool
}

// New creates a controller and issues its initial fetch.
func New[T any](fetcher Fetcher[T], opts Options) *Controller[T] {
	c := newController(fetcher, opts, nil)
	c.fetch()
	return c
}

func newController[T any](fetcher Fetcher[T], opts Options, settled func(uint64, bool)) *Controller[T] {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	params := make(map[string]any, len(opts.Params))
	maps.Copy(params, opts.Params)

	idle := make(chan struct{})
	close(idle)

	base, shutdown := context.WithCancel(context.Background())
	return &Controller[T]{
		fetcher:  fetcher,
		session:  opts.Session,
		nav:      opts.Navigator,
		logger:   logging.Component(opts.Logger, "collection"),
		settled:  settled,
		base:     base,
		shutdown: shutdown,
		params:   params,
		state: State[T]{
			Pagination: Pagination{Page: max(opts.Page, 0), Limit: limit},
		},
		idle: idle,
		subs: make(map[chan State[T]]struct{}),
	}
}

// SetParams shallow-merges partial into the parameters and re-fetches.
func (c *Controller[T]) SetParams(partial map[string]any) {
	c.mu.Lock()
	mergeParams(c.params, partial)
	c.mu.Unlock()
	c.fetch()
}

// ChangePage moves to the zero-based page n and re-fetches.
func (c *Controller[T]) ChangePage(n int) {
	c.mu.Lock()
	c.state.Pagination.Page = max(n, 0)
	c.mu.Unlock()
	c.fetch()
}

// ChangeLimit sets the page size and re-fetches. Non-positive sizes are
// ignored.
func (c *Controller[T]) ChangeLimit(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	c.state.Pagination.Limit = n
	c.mu.Unlock()
	c.fetch()
}

// Refetch re-issues the current query and waits until the latest fetch has
// settled. It returns the current data and the fetch error, if any.
func (c *Controller[T]) Refetch(ctx context.Context) (T, error) {
	c.fetch()
	if err := c.Wait(ctx); err != nil {
		var zero T
		return zero, err
	}
	s := c.State()
	return s.Data, s.Err
}

// Wait blocks until no fetch is outstanding, the controller is closed or ctx
// ends.
func (c *Controller[T]) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	select {
	case <-idle:
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return ErrClosed
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns a snapshot of the controller state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Params returns a copy of the stored parameters, empty values included.
func (c *Controller[T]) Params() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.params)
}

// Subscribe returns a feed of state changes and a function that ends the
// subscription. The feed keeps only the newest undelivered state and is
// closed by Close.
func (c *Controller[T]) Subscribe() (<-chan State[T], func()) {
	ch := make(chan State[T], 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subs[ch]; ok {
				delete(c.subs, ch)
				close(ch)
			}
		})
	}
}

// Close cancels any in-flight fetch and closes every subscription.
func (c *Controller[T]) Close() {
	c.navMu.Lock()
	defer c.navMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.shutdown()
	c.state.Loading = false
	c.markIdle()
	for ch := range c.subs {
		close(ch)
	}
	clear(c.subs)
}

// fetch starts a new fetch that supersedes any outstanding one.
func (c *Controller[T]) fetch() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel
	c.seq++
	seq := c.seq

	if !c.state.Loading {
		c.idle = make(chan struct{})
	}
	c.state.Loading = true
	c.state.Err = nil
	req := buildRequest(c.params, c.state.Pagination)
	c.publish()
	c.mu.Unlock()

	c.logger.Debug("fetch started", "seq", seq, "page", req.Page, "limit", req.Limit, "params", req.Params)
	go c.run(ctx, cancel, seq, req)
}

func (c *Controller[T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, req Request) {
	defer cancel()
	res, err := c.fetcher.Fetch(ctx, req)

	if err != nil && cmsapi.IsForbidden(err) {
		c.rejectSession(seq)
	}

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("dropping superseded result", "seq", seq)
		c.done(seq, false)
		return
	}

	switch {
	case err != nil && cmsapi.IsForbidden(err):
		// Data and pagination stay as they were.
	case err != nil:
		c.state.Err = err
		c.logger.Debug("fetch failed", "seq", seq, "error", err)
	default:
		c.apply(res)
	}
	c.state.Loading = false
	c.cancel = nil
	c.markIdle()
	c.publish()
	c.mu.Unlock()

	c.done(seq, true)
}

// apply stores a successful result. Called with mu held.
func (c *Controller[T]) apply(res Result[T]) {
	c.state.Data = res.Data
	c.state.HasData = true
	if res.Page == nil {
		return
	}
	p := &c.state.Pagination
	p.Total = res.Page.TotalItems
	p.Page = max(res.Page.CurrentPage-1, 0)
	if res.Page.PerPage > 0 {
		p.Limit = res.Page.PerPage
	}
}

// rejectSession clears the session after a 403 from any fetch, superseded
// or not, and sends the caller to LoginPath unless the controller is closed.
func (c *Controller[T]) rejectSession(seq uint64) {
	if c.session != nil {
		c.session.Clear()
	}
	c.navMu.Lock()
	defer c.navMu.Unlock()
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		c.logger.Debug("session rejected after close", "seq", seq)
		return
	}
	c.logger.Warn("session rejected, redirecting to login", "seq", seq)
	if c.nav != nil {
		c.nav.Navigate(LoginPath)
	}
}

// markIdle releases Wait callers. Called with mu held.
func (c *Controller[T]) markIdle() {
	select {
	case <-c.idle:
	default:
		close(c.idle)
	}
}

// publish delivers the current state to subscribers without blocking,
// replacing any undelivered older state. Called with mu held.
func (c *Controller[T]) publish() {
	for ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- c.state
	}
}

func (c *Controller[T]) done(seq uint64, applied bool) {
	if c.settled != nil {
		c.settled(seq, applied)
	}
}
