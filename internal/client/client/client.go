package client

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/client/session"
	"github.com/dmitrijs2005/quzhan/internal/common"
	"github.com/dmitrijs2005/quzhan/internal/logging"
)

// RefreshTokenPath is the user-hub endpoint minting a new access token from
// the refresh cookie.
const RefreshTokenPath = "/api/v1/user-hub/auth/refresh-token"

// Session is what the client needs from the session state.
type Session interface {
	TokenHolder
	SessionClearer
	Register(sinks ...session.TokenSink)
}

type Options struct {
	BaseURL   string
	Platform  string
	Timeout   time.Duration
	LoginPath string
	// BasicUsername and BasicPassword, when both set, authenticate requests
	// sent without an access token.
	BasicUsername string
	BasicPassword string
	// HTTPClient is copied; a cookie jar is attached when it has none.
	HTTPClient *http.Client
	Navigator  Navigator
	Logger     logging.Logger
}

// Client sends requests through the refresh-and-replay interceptor.
type Client struct {
	Services *Services

	dispatcher  *Dispatcher
	coordinator *Coordinator
	redirect    *RedirectPolicy
	logger      logging.Logger
}

// New wires the dispatcher, the coordinator and the redirect policy around
// sess and registers the service configurations and the policy as token
// sinks of sess.
func New(sess Session, opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	var hc http.Client
	if opts.HTTPClient != nil {
		hc = *opts.HTTPClient
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		hc.Jar = jar
	}

	c := &Client{
		Services:   NewServices(opts.BaseURL, opts.Platform),
		dispatcher: NewDispatcher(&hc, opts.Timeout, logger.With("component", "dispatcher")),
		logger:     logger,
	}
	c.redirect = NewRedirectPolicy(sess, opts.Navigator, opts.LoginPath, logger.With("component", "redirect"))
	c.coordinator = NewCoordinator(c.refreshToken, sess, c.redirect, c.dispatcher.timeout, logger.With("component", "refresh"))

	token := sess.Token()
	for _, svc := range c.Services.All() {
		svc.SetToken(token)
		if opts.BasicUsername != "" && opts.BasicPassword != "" {
			svc.SetBasicAuth(opts.BasicUsername, opts.BasicPassword)
		}
		sess.Register(svc)
	}
	sess.Register(c.redirect)

	return c, nil
}

func (c *Client) Dispatcher() *Dispatcher { return c.dispatcher }

// Do sends req to svc and decodes the envelope data into out (which may be
// nil). An expired access token is refreshed and the request replayed once;
// an invalid credential triggers the redirect policy. Every error returned
// is an *APIError.
func (c *Client) Do(ctx context.Context, svc *ServiceConfig, req *Request, out any) error {
	r, err := req.replayable()
	if err != nil {
		return Classify(svc.settings().baseURL+req.Path, nil, err)
	}
	req = r

	token := svc.Token()
	resp, err := c.dispatcher.send(ctx, svc, req, token)
	if err == nil {
		return decodeData(resp, out)
	}

	apiErr := Classify("", resp, err)
	switch {
	case apiErr.HasCode(common.CodeCredentialInvalid):
		c.redirect.Trigger(ctx, apiErr)
		return apiErr
	case !apiErr.HasCode(common.CodeAccessTokenExpired):
		return apiErr
	}

	newToken, err := c.coordinator.Acquire(ctx, token, apiErr)
	if err != nil {
		// A cancelled waiter surfaces as a no-response failure.
		return Classify(apiErr.URL, nil, err)
	}

	c.logger.Debug(ctx, "replaying request with refreshed token", "url", apiErr.URL)

	resp, err = c.dispatcher.send(ctx, svc, req, newToken)
	if err != nil {
		replayErr := Classify("", resp, err)
		if replayErr.HasCode(common.CodeCredentialInvalid) {
			c.redirect.Trigger(ctx, replayErr)
		}
		return replayErr
	}
	return decodeData(resp, out)
}

// refreshToken calls the refresh endpoint on the raw path. The refresh
// token travels in the cookie jar.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	resp, err := c.dispatcher.Send(ctx, c.Services.UserHub, &Request{
		Method: http.MethodPost,
		Path:   RefreshTokenPath,
		Body:   struct{}{},
	})
	if err != nil {
		return "", err
	}

	var pair models.TokenPair
	if err := decodeData(resp, &pair); err != nil {
		return "", err
	}
	if pair.AccessToken == "" {
		return "", &APIError{
			HTTPStatus: resp.StatusCode,
			Message:    "refresh response carried no access token",
			URL:        resp.URL,
		}
	}
	return pair.AccessToken, nil
}
