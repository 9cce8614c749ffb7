package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/client/tokenstore"
	"github.com/dmitrijs2005/quzhan/internal/logging"
)

var (
	ErrMissingUserID    = errors.New("account detail has no user id")
	ErrUserWithoutToken = errors.New("cannot set a user without a token")
)

// TokenSink receives every access token change. "" means no token.
type TokenSink interface {
	SetToken(token string)
}

// Fetcher loads the current account from the backend.
type Fetcher func(ctx context.Context) (*models.AccountDetail, error)

// State is the observable session. User != nil implies Token != "".
type State struct {
	User        *models.User `json:"user"`
	Token       string       `json:"token"`
	Initialized bool         `json:"initialized"`
}

type Session struct {
	// writeMu serialises mutations together with their side effects so the
	// token store, the sinks and the snapshot never see changes out of order.
	writeMu sync.Mutex

	mu    sync.RWMutex
	state State
	sinks []TokenSink

	store   tokenstore.Store
	persist Persister
	logger  logging.Logger
}

type Option func(*Session)

// WithPersister enables snapshot persistence.
func WithPersister(p Persister) Option {
	return func(s *Session) { s.persist = p }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func New(store tokenstore.Store, opts ...Option) *Session {
	s := &Session{store: store, logger: logging.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register adds sinks that receive every token change.
func (s *Session) Register(sinks ...TokenSink) {
	s.mu.Lock()
	s.sinks = append(s.sinks, sinks...)
	s.mu.Unlock()
}

func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *Session) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Initialized
}

// SetUserAndToken updates the session.
//
// A given non-empty token is stored, propagated and marks the session
// initialized. A nil token keeps the current one and only updates the user. With no token at all and a
// nil user the session is cleared. A user without any token is rejected.
func (s *Session) SetUserAndToken(ctx context.Context, user *models.User, token *string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	effective := s.state.Token
	if token != nil {
		effective = *token
	}

	switch {
	case effective != "":
		s.state = State{User: user, Token: effective, Initialized: true}
	case user == nil:
		s.state = State{Initialized: true}
	default:
		s.mu.Unlock()
		return ErrUserWithoutToken
	}
	st := s.state
	s.mu.Unlock()

	// A user-only update leaves the stored token and the sinks alone.
	return s.commit(ctx, st, token != nil || st.Token == "")
}

// ReplaceToken swaps the token and keeps the current user.
func (s *Session) ReplaceToken(ctx context.Context, token string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if token == "" {
		s.state = State{Initialized: true}
	} else {
		s.state = State{User: s.state.User, Token: token, Initialized: true}
	}
	st := s.state
	s.mu.Unlock()

	s.logger.Debug(ctx, "session token replaced", "has_user", st.User != nil)
	return s.commit(ctx, st, true)
}

// ClearUserSession forgets the user and the token and marks the session
// initialized.
func (s *Session) ClearUserSession(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.state = State{Initialized: true}
	st := s.state
	s.mu.Unlock()

	s.logger.Info(ctx, "session cleared")
	return s.commit(ctx, st, true)
}

func (s *Session) SetInitialized(ctx context.Context, initialized bool) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.state.Initialized = initialized
	st := s.state
	s.mu.Unlock()

	return s.commit(ctx, st, false)
}

// LoadUserInfo revalidates the session against the backend.
//
// The token is taken from memory, falling back to the token store. Without a
// token, or when fetch fails or returns an account without a user id, the
// session is cleared. Initialized is true when LoadUserInfo returns, whatever
// the outcome.
func (s *Session) LoadUserInfo(ctx context.Context, fetch Fetcher) (err error) {
	defer func() {
		if s.Initialized() {
			return
		}
		s.logger.Warn(ctx, "session still uninitialized after load, forcing")
		if ierr := s.SetInitialized(ctx, true); ierr != nil && err == nil {
			err = ierr
		}
	}()

	token := s.Token()
	if token == "" {
		stored, ok, serr := s.store.Get(ctx)
		if serr != nil {
			s.logger.Warn(ctx, "token store unreadable", "error", serr)
		}
		if ok {
			token = stored
			s.adoptToken(stored)
		}
	}

	if token == "" {
		s.logger.Debug(ctx, "no token found, clearing session")
		return s.ClearUserSession(ctx)
	}

	s.propagate(token)

	detail, err := fetch(ctx)
	if err == nil && (detail == nil || detail.UserID == "") {
		err = ErrMissingUserID
	}
	if err != nil {
		s.logger.Warn(ctx, "loading account failed, clearing session", "error", err)
		if cerr := s.ClearUserSession(ctx); cerr != nil {
			return errors.Join(err, cerr)
		}
		return fmt.Errorf("load user info: %w", err)
	}

	// The fetch may have refreshed the token; keep whichever is current.
	if current := s.Token(); current != "" {
		token = current
	}
	return s.SetUserAndToken(ctx, detail.ToUser(), &token)
}

// adoptToken makes a token found in the store the session token without
// touching the user or the initialized flag.
func (s *Session) adoptToken(token string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.state.Token == "" {
		s.state.Token = token
	}
	s.mu.Unlock()
}

// Rehydrate restores the persisted snapshot with Initialized forced to false.
// It reports whether a snapshot was found.
func (s *Session) Rehydrate(ctx context.Context) (bool, error) {
	if s.persist == nil {
		return false, nil
	}

	st, ok, err := s.persist.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("rehydrate session: %w", err)
	}
	if !ok {
		return false, nil
	}

	st.Initialized = false
	if st.Token == "" {
		st.User = nil
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	s.propagate(st.Token)
	s.logger.Debug(ctx, "session rehydrated", "has_token", st.Token != "", "has_user", st.User != nil)
	return true, nil
}

// commit applies st to the token store, the sinks and the snapshot. Sinks
// are updated before the error from the store is returned so in-memory
// configuration never lags behind the session.
func (s *Session) commit(ctx context.Context, st State, tokenChanged bool) error {
	var errs []error

	if tokenChanged {
		var err error
		if st.Token == "" {
			err = s.store.Clear(ctx)
		} else {
			err = s.store.Set(ctx, st.Token)
		}
		if err != nil {
			errs = append(errs, err)
		}
		s.propagate(st.Token)
	}

	if s.persist != nil {
		if err := s.persist.Save(ctx, st); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *Session) propagate(token string) {
	s.mu.RLock()
	sinks := append([]TokenSink(nil), s.sinks...)
	s.mu.RUnlock()

	for _, sink := range sinks {
		sink.SetToken(token)
	}
}
