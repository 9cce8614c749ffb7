package session

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/quzhan/internal/client/tokenstore"
	"github.com/dmitrijs2005/quzhan/internal/common"

	_ "modernc.org/sqlite"
)

type recordingSink struct {
	mu     sync.Mutex
	tokens []string
}

func (r *recordingSink) SetToken(token string) {
	r.mu.Lock()
	r.tokens = append(r.tokens, token)
	r.mu.Unlock()
}

func (r *recordingSink) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tokens) == 0 {
		return "<none>"
	}
	return r.tokens[len(r.tokens)-1]
}

type countingStore struct {
	tokenstore.Store
	sets int
}

func (c *countingStore) Set(ctx context.Context, token string) error {
	c.sets++
	return c.Store.Set(ctx, token)
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return db
}

func detailFetcher(d *models.AccountDetail, err error) Fetcher {
	return func(context.Context) (*models.AccountDetail, error) { return d, err }
}

func TestSetUserAndToken(t *testing.T) {
	ctx := context.Background()

	t.Run("token given stores and propagates", func(t *testing.T) {
		store := tokenstore.NewMemoryStore()
		sink1, sink2 := &recordingSink{}, &recordingSink{}
		s := New(store)
		s.Register(sink1, sink2)

		require.NoError(t, s.SetUserAndToken(ctx, &models.User{UserID: "u1"}, common.Ptr("t1")))

		st := s.Snapshot()
		assert.Equal(t, "u1", st.User.UserID)
		assert.Equal(t, "t1", st.Token)
		assert.True(t, st.Initialized)

		tok, ok, _ := store.Get(ctx)
		assert.True(t, ok)
		assert.Equal(t, "t1", tok)
		assert.Equal(t, "t1", sink1.last())
		assert.Equal(t, "t1", sink2.last())
	})

	t.Run("token omitted keeps token and updates user", func(t *testing.T) {
		store := &countingStore{Store: tokenstore.NewMemoryStore()}
		sink := &recordingSink{}
		s := New(store)
		s.Register(sink)
		require.NoError(t, s.SetUserAndToken(ctx, &models.User{UserID: "u1"}, common.Ptr("t1")))

		require.NoError(t, s.SetUserAndToken(ctx, &models.User{UserID: "u1", Nickname: "new"}, nil))

		assert.Equal(t, "new", s.User().Nickname)
		assert.Equal(t, "t1", s.Token())
		assert.Equal(t, 1, store.sets)
		assert.Equal(t, []string{"t1"}, sink.tokens)
	})

	t.Run("nil user and no token clears", func(t *testing.T) {
		store := tokenstore.NewMemoryStore()
		sink := &recordingSink{}
		s := New(store)
		s.Register(sink)
		require.NoError(t, s.SetUserAndToken(ctx, &models.User{UserID: "u1"}, common.Ptr("t1")))

		require.NoError(t, s.SetUserAndToken(ctx, nil, common.Ptr("")))

		assert.Equal(t, State{Initialized: true}, s.Snapshot())
		_, ok, _ := store.Get(ctx)
		assert.False(t, ok)
		assert.Equal(t, "", sink.last())
	})

	t.Run("user without any token is rejected", func(t *testing.T) {
		s := New(tokenstore.NewMemoryStore())

		err := s.SetUserAndToken(ctx, &models.User{UserID: "u1"}, nil)

		require.ErrorIs(t, err, ErrUserWithoutToken)
		assert.Nil(t, s.User())
		assert.False(t, s.Initialized())
	})
}

func TestReplaceToken_KeepsUser(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	s := New(tokenstore.NewMemoryStore())
	s.Register(sink)
	require.NoError(t, s.SetUserAndToken(ctx, &models.User{UserID: "u1"}, common.Ptr("old")))

	require.NoError(t, s.ReplaceToken(ctx, "new"))

	assert.Equal(t, "u1", s.User().UserID)
	assert.Equal(t, "new", s.Token())
	assert.Equal(t, "new", sink.last())
}

func TestClearUserSession(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	sink := &recordingSink{}
	s := New(store)
	s.Register(sink)
	require.NoError(t, s.SetUserAndToken(ctx, &models.User{UserID: "u1"}, common.Ptr("t")))

	require.NoError(t, s.ClearUserSession(ctx))

	assert.Equal(t, State{Initialized: true}, s.Snapshot())
	_, ok, _ := store.Get(ctx)
	assert.False(t, ok)
	assert.Equal(t, "", sink.last())
}

func TestLoadUserInfo_AlwaysInitializes(t *testing.T) {
	ctx := context.Background()
	role := models.RoleUser

	tests := []struct {
		name       string
		storeToken string
		fetch      Fetcher
		wantUser   bool
		wantErr    error
	}{
		{
			name:       "no token",
			storeToken: "",
			fetch:      detailFetcher(nil, errors.New("must not be called")),
		},
		{
			name:       "fetch succeeds",
			storeToken: "tok",
			fetch:      detailFetcher(&models.AccountDetail{UserID: "u1", UserRole: &role}, nil),
			wantUser:   true,
		},
		{
			name:       "fetch fails",
			storeToken: "tok",
			fetch:      detailFetcher(nil, errors.New("boom")),
		},
		{
			name:       "missing user id",
			storeToken: "tok",
			fetch:      detailFetcher(&models.AccountDetail{Nickname: "x"}, nil),
			wantErr:    ErrMissingUserID,
		},
		{
			name:       "nil detail",
			storeToken: "tok",
			fetch:      detailFetcher(nil, nil),
			wantErr:    ErrMissingUserID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tokenstore.NewMemoryStore()
			if tt.storeToken != "" {
				require.NoError(t, store.Set(ctx, tt.storeToken))
			}
			s := New(store)
			require.False(t, s.Initialized())

			err := s.LoadUserInfo(ctx, tt.fetch)

			assert.True(t, s.Initialized())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantUser {
				require.NoError(t, err)
				require.NotNil(t, s.User())
				assert.Equal(t, "u1", s.User().UserID)
				assert.Equal(t, models.RoleUser, s.User().EffectiveRole())
				assert.Equal(t, tt.storeToken, s.Token())
			} else {
				assert.Nil(t, s.User())
				assert.Empty(t, s.Token())
				_, ok, _ := store.Get(ctx)
				assert.False(t, ok)
			}
		})
	}
}

func TestLoadUserInfo_SyncsSinksBeforeFetch(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "stored"))
	sink := &recordingSink{}
	s := New(store)
	s.Register(sink)

	var seen, current string
	err := s.LoadUserInfo(ctx, func(context.Context) (*models.AccountDetail, error) {
		seen = sink.last()
		current = s.Token()
		return &models.AccountDetail{UserID: "u1"}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "stored", seen)
	assert.Equal(t, "stored", current)
	assert.Equal(t, "stored", s.Token())
}

func TestLoadUserInfo_KeepsTokenRefreshedDuringFetch(t *testing.T) {
	ctx := context.Background()
	s := New(tokenstore.NewMemoryStore())
	require.NoError(t, s.SetUserAndToken(ctx, nil, common.Ptr("old")))

	err := s.LoadUserInfo(ctx, func(ctx context.Context) (*models.AccountDetail, error) {
		require.NoError(t, s.ReplaceToken(ctx, "new"))
		return &models.AccountDetail{UserID: "u1"}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "new", s.Token())
}

func TestRehydrate_ForcesRevalidation(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := metadata.NewSQLiteRepository(db)
	store := tokenstore.NewSQLiteStore(repo)

	first := New(store, WithPersister(NewSQLitePersister(db)))
	require.NoError(t, first.SetUserAndToken(ctx, &models.User{UserID: "u1"}, common.Ptr("tok")))
	require.True(t, first.Initialized())

	// simulated restart
	sink := &recordingSink{}
	second := New(store, WithPersister(NewSQLitePersister(db)))
	second.Register(sink)

	found, err := second.Rehydrate(ctx)
	require.NoError(t, err)
	require.True(t, found)

	assert.False(t, second.Initialized())
	assert.Equal(t, "u1", second.User().UserID)
	assert.Equal(t, "tok", second.Token())
	assert.Equal(t, "tok", sink.last())

	require.NoError(t, second.LoadUserInfo(ctx, detailFetcher(&models.AccountDetail{UserID: "u1"}, nil)))
	assert.True(t, second.Initialized())
}

func TestRehydrate_NoSnapshot(t *testing.T) {
	ctx := context.Background()

	found, err := New(tokenstore.NewMemoryStore()).Rehydrate(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	db := openDB(t)
	found, err = New(tokenstore.NewMemoryStore(), WithPersister(NewSQLitePersister(db))).Rehydrate(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRehydrate_DropsUserWithoutToken(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	require.NoError(t, metadata.StoreJSON(ctx, metadata.NewSQLiteRepository(db), StorageKey,
		State{User: &models.User{UserID: "ghost"}, Initialized: true}))

	s := New(tokenstore.NewMemoryStore(), WithPersister(NewSQLitePersister(db)))
	_, err := s.Rehydrate(ctx)
	require.NoError(t, err)

	assert.Nil(t, s.User())
	assert.False(t, s.Initialized())
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := tok.SignedString([]byte("any-key"))
	require.NoError(t, err)

	info, err := InspectToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", info.Subject)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(exp.Add(time.Second)))

	_, err = InspectToken("")
	require.Error(t, err)
	_, err = InspectToken("opaque-token")
	require.Error(t, err)
}
