package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/quzhan/internal/logging"
)

// Navigator sends the user to a route, typically the login entry point.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) { f(ctx, path) }

// SessionClearer forgets the logged-in user and the stored token.
type SessionClearer interface {
	ClearUserSession(ctx context.Context) error
}

// RedirectPolicy clears the session and navigates to the login path on
// unrecoverable credential failures. Concurrent triggers collapse into one
// clear and one navigation; the policy is re-armed when a fresh token is set.
type RedirectPolicy struct {
	mu    sync.Mutex
	fired bool

	session   SessionClearer
	nav       Navigator
	loginPath string
	logger    logging.Logger
}

func NewRedirectPolicy(session SessionClearer, nav Navigator, loginPath string, logger logging.Logger) *RedirectPolicy {
	if logger == nil {
		logger = logging.Nop()
	}
	if nav == nil {
		nav = NavigatorFunc(func(context.Context, string) {})
	}
	return &RedirectPolicy{session: session, nav: nav, loginPath: loginPath, logger: logger}
}

func (p *RedirectPolicy) LoginPath() string { return p.loginPath }

// Trigger performs the redirect unless it already happened since the last
// re-arm. It reports whether this call performed it.
func (p *RedirectPolicy) Trigger(ctx context.Context, cause error) bool {
	p.mu.Lock()
	if p.fired {
		p.mu.Unlock()
		p.logger.Debug(ctx, "redirect already performed, ignoring", "cause", cause)
		return false
	}
	p.fired = true
	p.mu.Unlock()

	p.logger.Warn(ctx, "credentials unusable, clearing session and redirecting", "path", p.loginPath, "cause", cause)
	if err := p.session.ClearUserSession(ctx); err != nil {
		p.logger.Error(ctx, "clearing session failed", "error", err)
	}
	p.nav.Navigate(ctx, p.loginPath)
	return true
}

// Rearm allows the next Trigger to redirect again.
func (p *RedirectPolicy) Rearm() {
	p.mu.Lock()
	p.fired = false
	p.mu.Unlock()
}

// SetToken re-arms the policy when a non-empty token is set, making it a
// session.TokenSink.
func (p *RedirectPolicy) SetToken(token string) {
	if token != "" {
		p.Rearm()
	}
}
