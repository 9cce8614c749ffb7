package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/quzhan/internal/common"
	"github.com/dmitrijs2005/quzhan/internal/filex"
)

// Request describes one call to a backend.
//
// Path may contain {name} placeholders filled from PathParams. Query values
// that are nil or nil pointers are skipped; slices repeat the key and maps
// expand to key[sub]. FormData turns the body into multipart/form-data;
// values may be strings, numbers, *filex.Upload or slices of those.
type Request struct {
	Method     string
	Path       string
	PathParams map[string]any
	Query      map[string]any
	Headers    map[string]string
	Body       any
	MediaType  string
	FormData   map[string]any
}

// notSentError marks failures that happened before anything was sent.
type notSentError struct {
	err error
}

func (e *notSentError) Error() string { return e.err.Error() }
func (e *notSentError) Unwrap() error { return e.err }

func notSent(format string, args ...any) error {
	return &notSentError{err: fmt.Errorf(format, args...)}
}

// replayable returns a copy of r whose body can be encoded more than once.
func (r *Request) replayable() (*Request, error) {
	rd, ok := r.Body.(io.Reader)
	if !ok {
		return r, nil
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, notSent("read request body: %w", err)
	}
	cp := *r
	cp.Body = data
	return &cp, nil
}

func (r *Request) resolvePath() (string, error) {
	path := r.Path
	for name, v := range r.PathParams {
		placeholder := "{" + name + "}"
		if !strings.Contains(path, placeholder) {
			continue
		}
		path = strings.ReplaceAll(path, placeholder, url.PathEscape(fmt.Sprint(v)))
	}
	if i := strings.Index(path, "{"); i >= 0 && strings.Contains(path[i:], "}") {
		return "", fmt.Errorf("unresolved path parameter in %q", path)
	}
	return path, nil
}

func (r *Request) encodeQuery() string {
	if len(r.Query) == 0 {
		return ""
	}
	q := url.Values{}
	for _, k := range slices.Sorted(maps.Keys(r.Query)) {
		appendQuery(q, k, r.Query[k])
	}
	return q.Encode()
}

func appendQuery(q url.Values, key string, v any) {
	if v == nil {
		return
	}
	if b, ok := v.([]byte); ok {
		q.Add(key, string(b))
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return
		}
		appendQuery(q, key, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			appendQuery(q, key, rv.Index(i).Interface())
		}
	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})
		for _, mk := range keys {
			appendQuery(q, fmt.Sprintf("%s[%v]", key, mk.Interface()), rv.MapIndex(mk).Interface())
		}
	default:
		q.Add(key, scalarString(rv))
	}
}

// scalarString formats by kind so named types with a String method are
// still sent as their underlying value.
func scalarString(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.String:
		return rv.String()
	default:
		return fmt.Sprint(rv.Interface())
	}
}

// encodeBody returns the body reader and its content type. Multipart wins
// over everything; otherwise an explicit MediaType wins over the type
// inferred from the body.
func (r *Request) encodeBody() (io.Reader, string, error) {
	if r.FormData != nil {
		return r.encodeMultipart()
	}
	if r.Body == nil {
		return nil, r.MediaType, nil
	}

	var (
		body     io.Reader
		inferred string
	)
	switch b := r.Body.(type) {
	case []byte:
		body, inferred = bytes.NewReader(b), "application/octet-stream"
	case *filex.Upload:
		if b == nil {
			return nil, r.MediaType, nil
		}
		body, inferred = bytes.NewReader(b.Data), "application/octet-stream"
	case io.Reader:
		body, inferred = b, "application/octet-stream"
	case string:
		body, inferred = strings.NewReader(b), "text/plain"
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		body, inferred = bytes.NewReader(data), "application/json"
	}

	if r.MediaType != "" {
		return body, r.MediaType, nil
	}
	return body, inferred, nil
}

func (r *Request) encodeMultipart() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, k := range slices.Sorted(maps.Keys(r.FormData)) {
		if err := writeFormValue(w, k, r.FormData[k]); err != nil {
			return nil, "", fmt.Errorf("encode form field %q: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFormValue(w *multipart.Writer, key string, v any) error {
	switch val := v.(type) {
	case nil:
		return nil
	case *filex.Upload:
		if val == nil {
			return nil
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, key, val.Name))
		ct := val.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return err
		}
		_, err = part.Write(val.Data)
		return err
	case []*filex.Upload:
		for _, u := range val {
			if err := writeFormValue(w, key, u); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for _, s := range val {
			if err := w.WriteField(key, s); err != nil {
				return err
			}
		}
		return nil
	case string:
		return w.WriteField(key, val)
	default:
		return w.WriteField(key, fmt.Sprint(val))
	}
}

// build turns r into an *http.Request for the given service settings.
// Any error returned is a *notSentError.
func (r *Request) build(ctx context.Context, set serviceSettings, token string) (*http.Request, error) {
	path, err := r.resolvePath()
	if err != nil {
		return nil, &notSentError{err: err}
	}

	u, err := url.Parse(strings.TrimRight(set.baseURL, "/") + path)
	if err != nil {
		return nil, notSent("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, notSent("invalid base url %q", set.baseURL)
	}
	if q := r.encodeQuery(); q != "" {
		u.RawQuery = q
	}

	body, contentType, err := r.encodeBody()
	if err != nil {
		return nil, &notSentError{err: err}
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, notSent("new request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range set.headers {
		req.Header.Set(k, v)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	switch {
	case token != "":
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	case set.username != "" && set.password != "":
		req.SetBasicAuth(set.username, set.password)
	}

	if contentType != "" && body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	return req, nil
}
