package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/quzhan/internal/common"
)

// Pseudo HTTP statuses for failures without a response.
const (
	StatusNoResponse = -1
	StatusNotSent    = -2
)

const msgNoResponse = "no response from server or network problem, please try again later"

// Response is a received HTTP response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        string
}

// APIError is the normalized form of every failed call.
type APIError struct {
	HTTPStatus   int
	BusinessCode *int
	Message      string
	URL          string
	// Data is the response body when it was valid JSON.
	Data json.RawMessage
	Err  error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	switch {
	case e.BusinessCode != nil:
		fmt.Fprintf(&b, " (status %d, code %d)", e.HTTPStatus, *e.BusinessCode)
	default:
		fmt.Fprintf(&b, " (status %d)", e.HTTPStatus)
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// Is maps the error onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.HTTPStatus == StatusNoResponse
	case ErrUnauthorized:
		return e.HTTPStatus == http.StatusUnauthorized ||
			e.HTTPStatus == http.StatusForbidden ||
			e.HasCode(common.CodeCredentialInvalid) ||
			e.HasCode(common.CodeAccessTokenExpired) ||
			e.HasCode(common.CodeRefreshTokenExpired)
	}
	return false
}

// HasCode reports whether the business code equals code.
func (e *APIError) HasCode(code int) bool {
	return e.BusinessCode != nil && *e.BusinessCode == code
}

// envelope is the JSON wrapper every gateway response uses.
type envelope struct {
	Code    *int            `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// parseEnvelope decodes body leniently; ok is false for non-JSON bodies.
func parseEnvelope(body []byte) (env envelope, ok bool) {
	if len(body) == 0 {
		return env, false
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}, false
	}
	return env, true
}

// Classify turns the outcome of one call into an *APIError, or nil on
// success. err takes precedence over resp. A 2xx response whose envelope
// carries a non-zero code is a failure.
func Classify(url string, resp *Response, err error) *APIError {
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		var ns *notSentError
		if errors.As(err, &ns) {
			return &APIError{HTTPStatus: StatusNotSent, Message: ns.Error(), URL: url, Err: ns.err}
		}
		return &APIError{HTTPStatus: StatusNoResponse, Message: msgNoResponse, URL: url, Err: err}
	}

	if resp == nil {
		return &APIError{HTTPStatus: StatusNotSent, Message: "request produced no response and no error", URL: url}
	}

	env, isJSON := parseEnvelope(resp.Body)
	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	if success && (env.Code == nil || *env.Code == common.CodeOK) {
		return nil
	}

	e := &APIError{
		HTTPStatus:   resp.StatusCode,
		BusinessCode: env.Code,
		Message:      env.Message,
		URL:          url,
	}
	if isJSON {
		e.Data = json.RawMessage(resp.Body)
	}
	if e.Message == "" {
		if success {
			e.Message = fmt.Sprintf("request failed with code %d", *env.Code)
		} else {
			e.Message = fmt.Sprintf("request failed with status code %d", resp.StatusCode)
		}
	}
	return e
}

// decodeData unmarshals the envelope's data (or the whole body when it is
// not an envelope) into out.
func decodeData(resp *Response, out any) error {
	if out == nil || len(resp.Body) == 0 {
		return nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body, &probe); err == nil {
		if _, enveloped := probe["code"]; enveloped {
			data, ok := probe["data"]
			if !ok || string(data) == "null" {
				return nil
			}
			return wrapDecode(resp, json.Unmarshal(data, out))
		}
	}
	return wrapDecode(resp, json.Unmarshal(resp.Body, out))
}

func wrapDecode(resp *Response, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		HTTPStatus: resp.StatusCode,
		Message:    "decode response: " + err.Error(),
		URL:        resp.URL,
		Err:        err,
	}
}
