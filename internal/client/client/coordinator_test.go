package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/quzhan/internal/common"
)

type fakeHolder struct {
	mu       sync.Mutex
	token    string
	replaced []string
	cleared  int
}

func (h *fakeHolder) Token() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

func (h *fakeHolder) ReplaceToken(_ context.Context, token string) error {
	h.mu.Lock()
	h.token = token
	h.replaced = append(h.replaced, token)
	h.mu.Unlock()
	return nil
}

func (h *fakeHolder) ClearUserSession(context.Context) error {
	h.mu.Lock()
	h.token = ""
	h.cleared++
	h.mu.Unlock()
	return nil
}

type countingNav struct {
	calls atomic.Int32
	path  atomic.Value
}

func (n *countingNav) Navigate(_ context.Context, path string) {
	n.calls.Add(1)
	n.path.Store(path)
}

func expiredTrigger() *APIError {
	return &APIError{
		HTTPStatus:   http.StatusUnauthorized,
		BusinessCode: common.Ptr(common.CodeAccessTokenExpired),
		Message:      "expired",
		URL:          "http://gw/x",
	}
}

func (c *Coordinator) waiting() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// gatedRefresh blocks until release is closed.
func gatedRefresh(calls *atomic.Int32, release <-chan struct{}, token string, err error) RefreshFunc {
	return func(ctx context.Context) (string, error) {
		calls.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		return token, err
	}
}

func TestCoordinator_SingleRefresh(t *testing.T) {
	for _, n := range []int{1, 5, 50} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			holder := &fakeHolder{token: "old"}
			nav := &countingNav{}
			var calls atomic.Int32
			release := make(chan struct{})

			c := NewCoordinator(gatedRefresh(&calls, release, "new", nil), holder,
				NewRedirectPolicy(holder, nav, "/login", nil), time.Second, nil)

			results := make([]string, n)
			var g errgroup.Group
			for i := range n {
				g.Go(func() error {
					tok, err := c.Acquire(context.Background(), "old", expiredTrigger())
					results[i] = tok
					return err
				})
			}

			require.Eventually(t, func() bool {
				return calls.Load() == 1 && c.waiting() == n-1
			}, time.Second, time.Millisecond)
			assert.True(t, c.Refreshing())
			close(release)

			require.NoError(t, g.Wait())
			assert.EqualValues(t, 1, calls.Load())
			for _, tok := range results {
				assert.Equal(t, "new", tok)
			}
			assert.Equal(t, []string{"new"}, holder.replaced)
			assert.False(t, c.Refreshing())
			assert.Zero(t, nav.calls.Load())
		})
	}
}

func TestCoordinator_StaleTokenShortcut(t *testing.T) {
	holder := &fakeHolder{token: "fresh"}
	var calls atomic.Int32
	c := NewCoordinator(func(context.Context) (string, error) {
		calls.Add(1)
		return "other", nil
	}, holder, NewRedirectPolicy(holder, nil, "/login", nil), time.Second, nil)

	tok, err := c.Acquire(context.Background(), "old", expiredTrigger())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.Zero(t, calls.Load())
}

func TestCoordinator_RefreshExpired(t *testing.T) {
	holder := &fakeHolder{token: "old"}
	nav := &countingNav{}
	var calls atomic.Int32
	release := make(chan struct{})

	refreshErr := &APIError{
		HTTPStatus:   http.StatusOK,
		BusinessCode: common.Ptr(common.CodeRefreshTokenExpired),
		Message:      "refresh expired",
	}
	redirect := NewRedirectPolicy(holder, nav, "/login", nil)
	c := NewCoordinator(gatedRefresh(&calls, release, "", refreshErr), holder, redirect, time.Second, nil)

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Acquire(context.Background(), "old", expiredTrigger())
		}()
	}

	require.Eventually(t, func() bool { return c.waiting() == n-1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	assert.EqualValues(t, 1, nav.calls.Load())
	assert.Equal(t, "/login", nav.path.Load())
	assert.Equal(t, 1, holder.cleared)
	assert.Empty(t, holder.Token())

	var leaders int
	for _, err := range errs {
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
		if errors.Is(err, ErrRefreshFailed) {
			leaders++
			assert.True(t, apiErr.HasCode(common.CodeRefreshTokenExpired))
		} else {
			assert.True(t, apiErr.HasCode(common.CodeAccessTokenExpired))
		}
	}
	assert.Equal(t, 1, leaders)

	// A request sent with the old token whose expiry arrives after the
	// failed refresh must not start another one.
	_, err := c.Acquire(context.Background(), "old", expiredTrigger())
	var late *APIError
	require.ErrorAs(t, err, &late)
	assert.True(t, late.HasCode(common.CodeAccessTokenExpired))
	assert.NotErrorIs(t, err, ErrRefreshFailed)
	assert.EqualValues(t, 1, calls.Load())
	assert.EqualValues(t, 1, nav.calls.Load())
}

func TestCoordinator_EmptyTokenStillRefreshes(t *testing.T) {
	holder := &fakeHolder{}
	var calls atomic.Int32
	c := NewCoordinator(func(context.Context) (string, error) {
		calls.Add(1)
		return "new", nil
	}, holder, NewRedirectPolicy(holder, nil, "/login", nil), time.Second, nil)

	tok, err := c.Acquire(context.Background(), "", expiredTrigger())
	require.NoError(t, err)
	assert.Equal(t, "new", tok)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCoordinator_ServerErrorDoesNotRedirect(t *testing.T) {
	holder := &fakeHolder{token: "old"}
	nav := &countingNav{}
	c := NewCoordinator(func(context.Context) (string, error) {
		return "", &APIError{HTTPStatus: http.StatusBadGateway, Message: "upstream"}
	}, holder, NewRedirectPolicy(holder, nav, "/login", nil), time.Second, nil)

	_, err := c.Acquire(context.Background(), "old", expiredTrigger())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.HTTPStatus)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.Zero(t, nav.calls.Load())
	assert.Equal(t, "old", holder.Token())
	assert.False(t, c.Refreshing())
}

func TestCoordinator_CancelledWaiter(t *testing.T) {
	holder := &fakeHolder{token: "old"}
	var calls atomic.Int32
	release := make(chan struct{})
	c := NewCoordinator(gatedRefresh(&calls, release, "new", nil), holder,
		NewRedirectPolicy(holder, nil, "/login", nil), time.Second, nil)

	leaderDone := make(chan string)
	go func() {
		tok, _ := c.Acquire(context.Background(), "old", expiredTrigger())
		leaderDone <- tok
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	waiterErr := make(chan error)
	go func() {
		_, err := c.Acquire(ctx, "old", expiredTrigger())
		waiterErr <- err
	}()
	require.Eventually(t, func() bool { return c.waiting() == 1 }, time.Second, time.Millisecond)

	cancel()
	err := <-waiterErr
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusNoResponse, Classify("", nil, err).HTTPStatus)

	close(release)
	assert.Equal(t, "new", <-leaderDone)
	assert.False(t, c.Refreshing())
}

func TestCoordinator_LeaderCancellationDoesNotAbortRefresh(t *testing.T) {
	holder := &fakeHolder{token: "old"}
	c := NewCoordinator(func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "new", nil
	}, holder, NewRedirectPolicy(holder, nil, "/login", nil), time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tok, err := c.Acquire(ctx, "old", expiredTrigger())
	require.NoError(t, err)
	assert.Equal(t, "new", tok)
	assert.Equal(t, "new", holder.Token())
}

func TestRedirectPolicy_Idempotent(t *testing.T) {
	holder := &fakeHolder{token: "tok"}
	nav := &countingNav{}
	p := NewRedirectPolicy(holder, nav, "/login", nil)

	var wg sync.WaitGroup
	var performed atomic.Int32
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.Trigger(context.Background(), errors.New("boom")) {
				performed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, performed.Load())
	assert.EqualValues(t, 1, nav.calls.Load())
	assert.Equal(t, 1, holder.cleared)

	p.SetToken("")
	assert.False(t, p.Trigger(context.Background(), nil))

	p.SetToken("fresh")
	assert.True(t, p.Trigger(context.Background(), nil))
	assert.EqualValues(t, 2, nav.calls.Load())
}
