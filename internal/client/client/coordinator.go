package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/quzhan/internal/common"
	"github.com/dmitrijs2005/quzhan/internal/logging"
)

// RefreshFunc obtains a new access token. It must not go through the
// intercepted path.
type RefreshFunc func(ctx context.Context) (string, error)

// TokenHolder is the session as seen by the coordinator.
type TokenHolder interface {
	Token() string
	// ReplaceToken stores token, keeps the user and propagates the token to
	// every sink before returning.
	ReplaceToken(ctx context.Context, token string) error
}

// Coordinator makes sure at most one refresh is in flight. It is Idle when
// refreshing is false; while Refreshing, callers queue as waiters and are
// released in FIFO order once the refresh settles.
type Coordinator struct {
	mu         sync.Mutex
	refreshing bool
	waiters    []chan string

	refresh  RefreshFunc
	tokens   TokenHolder
	redirect *RedirectPolicy
	timeout  time.Duration
	logger   logging.Logger
}

func NewCoordinator(refresh RefreshFunc, tokens TokenHolder, redirect *RedirectPolicy, timeout time.Duration, logger logging.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Coordinator{refresh: refresh, tokens: tokens, redirect: redirect, timeout: timeout, logger: logger}
}

// Acquire returns the token to replay a request that failed with an expired
// access token. staleToken is the token that request carried; trigger is
// its error.
//
// If a newer token is already current no refresh is made; if the session was
// cleared since the request was sent, trigger is returned. If a refresh is in
// flight the caller waits for it. Otherwise the caller leads a refresh.
// Waiters of a failed refresh get trigger back; the leader gets an error
// describing the refresh failure.
func (c *Coordinator) Acquire(ctx context.Context, staleToken string, trigger *APIError) (string, error) {
	c.mu.Lock()
	if !c.refreshing {
		if current := c.tokens.Token(); current != staleToken {
			c.mu.Unlock()
			if current == "" {
				// A refresh already failed and the session is gone.
				c.logger.Debug(ctx, "session cleared since the request was sent, not refreshing")
				return "", trigger
			}
			c.logger.Debug(ctx, "token already refreshed, reusing it")
			return current, nil
		}
		c.refreshing = true
		c.mu.Unlock()
		return c.lead(ctx, trigger)
	}

	// Buffered so the drain never blocks on a waiter that gave up.
	ch := make(chan string, 1)
	c.waiters = append(c.waiters, ch)
	queued := len(c.waiters)
	c.mu.Unlock()

	c.logger.Debug(ctx, "refresh in progress, waiting", "position", queued)

	select {
	case token := <-ch:
		if token == "" {
			return "", trigger
		}
		return token, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Refreshing reports whether a refresh is in flight.
func (c *Coordinator) Refreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}

func (c *Coordinator) lead(ctx context.Context, trigger *APIError) (string, error) {
	// A started refresh always runs to completion.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	c.logger.Info(ctx, "access token expired, refreshing", "url", trigger.URL)

	token, err := c.refresh(rctx)
	if err == nil && token == "" {
		err = errors.New("refresh returned an empty access token")
	}

	if err == nil {
		if uerr := c.tokens.ReplaceToken(rctx, token); uerr != nil {
			c.logger.Warn(ctx, "persisting refreshed token failed", "error", uerr)
		}
		n := c.finish(token)
		c.logger.Info(ctx, "token refreshed", "released_waiters", n)
		return token, nil
	}

	if refreshTokenExpired(err) {
		c.redirect.Trigger(rctx, err)
	}
	n := c.finish("")
	c.logger.Warn(ctx, "token refresh failed", "error", err, "rejected_waiters", n)
	return "", refreshFailure(trigger, err)
}

// finish returns to Idle and releases the waiters in FIFO order.
func (c *Coordinator) finish(token string) int {
	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- token
	}
	return len(waiters)
}

func refreshTokenExpired(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.HasCode(common.CodeRefreshTokenExpired) || apiErr.HTTPStatus == http.StatusUnauthorized
}

// refreshFailure describes a failed refresh in terms of the request that
// triggered it.
func refreshFailure(trigger *APIError, err error) *APIError {
	out := &APIError{
		HTTPStatus:   trigger.HTTPStatus,
		BusinessCode: trigger.BusinessCode,
		URL:          trigger.URL,
		Err:          fmt.Errorf("%w: %w", ErrRefreshFailed, err),
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		out.Message = "token refresh failed: " + err.Error()
		return out
	}

	out.Message = "token refresh failed: " + apiErr.Message
	out.Data = apiErr.Data
	if apiErr.BusinessCode != nil {
		out.BusinessCode = apiErr.BusinessCode
	}
	switch {
	case apiErr.HasCode(common.CodeRefreshTokenExpired):
		out.HTTPStatus = http.StatusUnauthorized
	case apiErr.HTTPStatus < 200 || apiErr.HTTPStatus >= 300:
		out.HTTPStatus = apiErr.HTTPStatus
	}
	return out
}
