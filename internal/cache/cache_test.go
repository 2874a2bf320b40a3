package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestGetOrFetch_SharesInFlightLoad(t *testing.T) {
	c := New[[]string](time.Minute)
	var loads atomic.Int32
	release := make(chan struct{})

	load := func(context.Context) ([]string, error) {
		loads.Add(1)
		<-release
		return []string{"shirts", "hats"}, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan []string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrFetch(context.Background(), "categories", load)
			if err != nil {
				t.Errorf("GetOrFetch: %v", err)
				return
			}
			results <- v
		}()
	}

	// Give the callers time to join before the load finishes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	if n := loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
	for v := range results {
		if len(v) != 2 {
			t.Errorf("result = %v", v)
		}
	}
}

func TestGetOrFetch_TTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := New[int](time.Minute, WithClock(clock.Now))
	n := 0
	load := func(context.Context) (int, error) {
		n++
		return n, nil
	}

	ctx := context.Background()
	if v, _ := c.GetOrFetch(ctx, "k", load); v != 1 {
		t.Fatalf("first = %d, want 1", v)
	}
	clock.Advance(30 * time.Second)
	if v, _ := c.GetOrFetch(ctx, "k", load); v != 1 {
		t.Errorf("cached = %d, want 1", v)
	}
	clock.Advance(31 * time.Second)
	if v, _ := c.GetOrFetch(ctx, "k", load); v != 2 {
		t.Errorf("after expiry = %d, want 2", v)
	}
}

func TestGetOrFetch_ErrorsNotCached(t *testing.T) {
	c := New[string](0)
	boom := errors.New("boom")
	calls := 0
	load := func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "ok", nil
	}

	if _, err := c.GetOrFetch(context.Background(), "k", load); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after failure, want 0", c.Len())
	}
	if v, err := c.GetOrFetch(context.Background(), "k", load); err != nil || v != "ok" {
		t.Errorf("retry = %q, %v", v, err)
	}
}

func TestGetOrFetch_WaiterCancelDoesNotAbortLoad(t *testing.T) {
	c := New[string](0)
	release := make(chan struct{})
	loadErr := make(chan error, 1)
	load := func(ctx context.Context) (string, error) {
		<-release
		loadErr <- ctx.Err()
		return "value", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrFetch(ctx, "k", load)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	close(release)
	if err := <-loadErr; err != nil {
		t.Errorf("load ctx err = %v, want nil", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v, ok := c.Get("k"); ok {
			if v != "value" {
				t.Errorf("cached = %q", v)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("detached load was not stored")
}

func TestInvalidate_DropsInFlightResult(t *testing.T) {
	c := New[int](0)
	release := make(chan struct{})
	done := make(chan int, 1)
	go func() {
		v, _ := c.GetOrFetch(context.Background(), "k", func(context.Context) (int, error) {
			<-release
			return 1, nil
		})
		done <- v
	}()
	time.Sleep(20 * time.Millisecond)
	c.Invalidate("k")
	close(release)

	if v := <-done; v != 1 {
		t.Errorf("waiter got %d, want 1", v)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("load that started before Invalidate was stored")
	}
}

func TestPurge(t *testing.T) {
	c := New[int](0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) hit after Purge")
	}
}

func TestPurge_LaterCallerStartsFreshLoad(t *testing.T) {
	c := New[string](0)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan string, 1)
	go func() {
		v, _ := c.GetOrFetch(context.Background(), "k", func(context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
		done <- v
	}()
	<-started
	c.Purge()

	v, err := c.GetOrFetch(context.Background(), "k", func(context.Context) (string, error) {
		return "new", nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	if v != "new" {
		t.Errorf("GetOrFetch after Purge = %q, want new", v)
	}

	close(release)
	if v := <-done; v != "old" {
		t.Errorf("earlier waiter got %q, want old", v)
	}
	if got, _ := c.Get("k"); got != "new" {
		t.Errorf("stored %q, want new", got)
	}
}
