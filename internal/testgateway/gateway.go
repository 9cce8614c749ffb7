package testgateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/common"
)

// Business codes used by the fake besides the reserved auth codes.
const (
	CodeBadRequest   = 40001
	CodeBadLogin     = 40002
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeInternal     = 50001
	DefaultAccessTTL = 15 * time.Minute
)

type account struct {
	id           string
	account      string
	phone        string
	passwordHash []byte
	profile      models.AccountDetail
}

type post struct {
	detail      models.PostDetail
	status      models.PostStatus
	auditReason string
	createdAt   time.Time
}

// Seen is one request observed by the gateway.
type Seen struct {
	Method    string
	Path      string
	Token     string
	Platform  string
	RequestID string
}

type Gateway struct {
	secret     []byte
	accessTTL  time.Duration
	now        func() time.Time
	bcryptCost int

	mu        sync.Mutex
	users     map[string]*account // by id
	accounts  map[string]string   // account name or phone -> id
	refreshes map[string]string   // refresh token -> user id
	captchas  map[string]string   // phone -> code
	posts     map[int64]*post
	nextPost  int64
	nextUser  int64
	searches  map[string]int64
	seen      []Seen

	refreshCalls atomic.Int64
	refreshDelay atomic.Int64
	refreshFault atomic.Pointer[fault]
}

type fault struct {
	status int
	code   int
}

type Option func(*Gateway)

// WithAccessTTL sets the lifetime of issued access tokens.
func WithAccessTTL(d time.Duration) Option {
	return func(g *Gateway) { g.accessTTL = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

func WithSecret(secret []byte) Option {
	return func(g *Gateway) { g.secret = secret }
}

func New(opts ...Option) *Gateway {
	g := &Gateway{
		secret:     []byte("testgateway-secret"),
		accessTTL:  DefaultAccessTTL,
		now:        time.Now,
		bcryptCost: bcrypt.MinCost,
		users:      map[string]*account{},
		accounts:   map[string]string{},
		refreshes:  map[string]string{},
		captchas:   map[string]string{},
		posts:      map[int64]*post{},
		searches:   map[string]int64{},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Handler routes the user-hub, post-service and post-search APIs.
func (g *Gateway) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(g.observe)

	uh := r.PathPrefix("/api/v1/user-hub").Subrouter()
	uh.HandleFunc("/account/login", g.accountLogin).Methods(http.MethodPost)
	uh.HandleFunc("/phone/login", g.phoneLogin).Methods(http.MethodPost)
	uh.HandleFunc("/account/register", g.register).Methods(http.MethodPost)
	uh.HandleFunc("/auth/send-captcha", g.sendCaptcha).Methods(http.MethodPost)
	uh.HandleFunc("/auth/refresh-token", g.refreshToken).Methods(http.MethodPost)
	uh.HandleFunc("/auth/logout", g.authed(g.logout)).Methods(http.MethodPost)
	uh.HandleFunc("/profile", g.authed(g.getProfile)).Methods(http.MethodGet)
	uh.HandleFunc("/profile", g.authed(g.updateProfile)).Methods(http.MethodPut)
	uh.HandleFunc("/profile/avatar", g.authed(g.uploadAvatar)).Methods(http.MethodPost)

	ps := r.PathPrefix("/api/v1/post").Subrouter()
	ps.HandleFunc("/posts", g.authed(g.createPost)).Methods(http.MethodPost)
	ps.HandleFunc("/posts/timeline", g.timeline).Methods(http.MethodGet)
	ps.HandleFunc("/posts/mine", g.authed(g.minePosts)).Methods(http.MethodGet)
	ps.HandleFunc("/posts/by-author", g.byAuthor).Methods(http.MethodGet)
	ps.HandleFunc("/posts/{id:[0-9]+}", g.authed(g.getPost)).Methods(http.MethodGet)
	ps.HandleFunc("/posts/{id:[0-9]+}", g.authed(g.deletePost)).Methods(http.MethodDelete)
	ps.HandleFunc("/hot-posts", g.hotPosts).Methods(http.MethodGet)
	ps.HandleFunc("/hot-posts/{id:[0-9]+}", g.authed(g.getPost)).Methods(http.MethodGet)

	ps.HandleFunc("/admin/posts", g.admin(g.adminList)).Methods(http.MethodGet)
	ps.HandleFunc("/admin/posts/audit", g.admin(g.adminAudit)).Methods(http.MethodPost)
	ps.HandleFunc("/admin/posts/{id:[0-9]+}/official-tag", g.admin(g.adminTag)).Methods(http.MethodPut)
	ps.HandleFunc("/admin/posts/{id:[0-9]+}", g.admin(g.adminDelete)).Methods(http.MethodDelete)

	ss := r.PathPrefix("/api/v1/search").Subrouter()
	ss.HandleFunc("/search", g.search).Methods(http.MethodGet)
	ss.HandleFunc("/hot-terms", g.hotTerms).Methods(http.MethodGet)

	return r
}

// AddUser registers an account directly and returns its id.
func (g *Gateway) AddUser(name, password string, role models.Role) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.bcryptCost)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addUserLocked(name, "", hash, role), nil
}

func (g *Gateway) addUserLocked(name, phone string, hash []byte, role models.Role) string {
	g.nextUser++
	id := "u" + strconv.FormatInt(g.nextUser, 10)
	created := g.now().UTC().Format(time.RFC3339)
	r := role
	active := 0
	a := &account{
		id:           id,
		account:      name,
		phone:        phone,
		passwordHash: hash,
		profile: models.AccountDetail{
			UserID:    id,
			Nickname:  name,
			UserRole:  &r,
			Status:    &active,
			CreatedAt: created,
			UpdatedAt: created,
		},
	}
	g.users[id] = a
	if name != "" {
		g.accounts[name] = id
	}
	if phone != "" {
		g.accounts[phone] = id
	}
	return id
}

// IssueAccessToken mints an access token for userID valid for ttl.
func (g *Gateway) IssueAccessToken(userID string, ttl time.Duration) (string, error) {
	g.mu.Lock()
	a, ok := g.users[userID]
	g.mu.Unlock()
	if !ok {
		return "", common.ErrorNotFound
	}
	return GenerateToken(userID, int(*a.profile.UserRole), g.secret, ttl, g.now())
}

// IssueRefreshToken creates a refresh token for userID, as a login would.
func (g *Gateway) IssueRefreshToken(userID string) (string, error) {
	tok, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}
	g.mu.Lock()
	g.refreshes[tok] = userID
	g.mu.Unlock()
	return tok, nil
}

// RevokeRefreshTokens invalidates every refresh token.
func (g *Gateway) RevokeRefreshTokens() {
	g.mu.Lock()
	g.refreshes = map[string]string{}
	g.mu.Unlock()
}

// Captcha returns the last code sent to phone.
func (g *Gateway) Captcha(phone string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.captchas[phone]
}

// RefreshCalls counts calls to the refresh endpoint.
func (g *Gateway) RefreshCalls() int64 { return g.refreshCalls.Load() }

// SetRefreshDelay slows down the refresh endpoint.
func (g *Gateway) SetRefreshDelay(d time.Duration) { g.refreshDelay.Store(int64(d)) }

// FailRefresh makes the refresh endpoint answer with status and code.
// A zero status clears the fault.
func (g *Gateway) FailRefresh(status, code int) {
	if status == 0 {
		g.refreshFault.Store(nil)
		return
	}
	g.refreshFault.Store(&fault{status: status, code: code})
}

// Seen returns the requests observed for path, in arrival order.
func (g *Gateway) Seen(path string) []Seen {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []Seen
	for _, s := range g.seen {
		if s.Path == path {
			out = append(out, s)
		}
	}
	return out
}

func (g *Gateway) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := Seen{
			Method:    r.Method,
			Path:      r.URL.Path,
			Token:     bearer(r),
			Platform:  r.Header.Get(common.PlatformHeaderName),
			RequestID: r.Header.Get(common.RequestIDHeaderName),
		}
		g.mu.Lock()
		g.seen = append(g.seen, s)
		g.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) string {
	h := r.Header.Get(common.AuthorizationHeaderName)
	tok, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(tok)
}

type authedHandler func(w http.ResponseWriter, r *http.Request, a *account)

// authed answers 401 with 40101 for a missing or malformed token and 40102
// for an expired one.
func (g *Gateway) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := bearer(r)
		if tok == "" {
			writeEnvelope(w, http.StatusUnauthorized, common.CodeCredentialInvalid, "missing or malformed token", nil)
			return
		}

		claims, err := ParseToken(tok, g.secret, g.now())
		switch {
		case errors.Is(err, common.ErrTokenExpired):
			writeEnvelope(w, http.StatusUnauthorized, common.CodeAccessTokenExpired, "access token expired", nil)
			return
		case err != nil:
			writeEnvelope(w, http.StatusUnauthorized, common.CodeCredentialInvalid, "invalid token", nil)
			return
		}

		g.mu.Lock()
		a, ok := g.users[claims.Subject]
		g.mu.Unlock()
		if !ok {
			writeEnvelope(w, http.StatusUnauthorized, common.CodeCredentialInvalid, "unknown user", nil)
			return
		}
		h(w, r, a)
	}
}

func (g *Gateway) admin(h authedHandler) http.HandlerFunc {
	return g.authed(func(w http.ResponseWriter, r *http.Request, a *account) {
		if !isAdmin(a) {
			writeEnvelope(w, http.StatusForbidden, CodeForbidden, "admin role required", nil)
			return
		}
		h(w, r, a)
	})
}

func writeEnvelope(w http.ResponseWriter, status, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": message,
		"data":    data,
	})
}

func writeOK(w http.ResponseWriter, data any) {
	writeEnvelope(w, http.StatusOK, common.CodeOK, "success", data)
}

func badRequest(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusBadRequest, CodeBadRequest, message, nil)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
