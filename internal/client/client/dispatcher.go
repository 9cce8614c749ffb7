package client

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/quzhan/internal/common"
	"github.com/dmitrijs2005/quzhan/internal/logging"
)

// DefaultTimeout bounds each outbound call when none is configured.
const DefaultTimeout = 10 * time.Second

// Dispatcher sends requests with the standard headers and classifies their
// outcome. It never touches session state.
type Dispatcher struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     logging.Logger
}

func NewDispatcher(httpClient *http.Client, timeout time.Duration, logger logging.Logger) *Dispatcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Dispatcher{httpClient: httpClient, timeout: timeout, logger: logger}
}

// Send issues req against svc with the token currently held by svc. On
// failure the error is always an *APIError; the *Response is returned
// whenever one was received.
func (d *Dispatcher) Send(ctx context.Context, svc *ServiceConfig, req *Request) (*Response, error) {
	return d.send(ctx, svc, req, svc.Token())
}

func (d *Dispatcher) send(ctx context.Context, svc *ServiceConfig, req *Request, token string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	set := svc.settings()
	target := set.baseURL + req.Path

	httpReq, err := req.build(ctx, set, token)
	if err != nil {
		apiErr := Classify(target, nil, err)
		d.logger.Warn(ctx, "request not sent", "service", svc.Name(), "path", req.Path, "error", err)
		return nil, apiErr
	}
	target = httpReq.URL.String()

	d.logger.Debug(ctx, "sending request",
		"service", svc.Name(),
		"method", httpReq.Method,
		"url", target,
		"request_id", httpReq.Header.Get(common.RequestIDHeaderName),
		"with_token", token != "",
	)

	httpResp, err := d.httpClient.Do(httpReq)
	if err != nil {
		d.logger.Warn(ctx, "no response", "url", target, "error", err)
		return nil, Classify(target, nil, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		d.logger.Warn(ctx, "reading response body failed", "url", target, "error", err)
		return nil, Classify(target, nil, err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		URL:        target,
	}

	if apiErr := Classify(target, resp, nil); apiErr != nil {
		d.logger.Debug(ctx, "request failed", "url", target, "status", apiErr.HTTPStatus, "error", apiErr.Message)
		return resp, apiErr
	}
	return resp, nil
}
