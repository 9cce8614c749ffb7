package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/dmitrijs2005/quzhan/internal/client/client"
	"github.com/dmitrijs2005/quzhan/internal/client/config"
	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/client/pager"
	"github.com/dmitrijs2005/quzhan/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/quzhan/internal/client/services"
	"github.com/dmitrijs2005/quzhan/internal/client/session"
	"github.com/dmitrijs2005/quzhan/internal/client/tokenstore"
	"github.com/dmitrijs2005/quzhan/internal/logging"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	session *session.Session
	client  *client.Client

	authService    services.AuthService
	profileService services.ProfileService
	postService    services.PostService
	adminService   services.AdminService
	searchService  services.SearchService

	timeline *pager.Cursor
	mine     *pager.Pages
	hotNext  *int64

	relogin atomic.Bool
	reader  *bufio.Reader
}

// NewApp opens the local database and wires the client stack. The session
// is restored by Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stderr, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	app, err := newApp(c, db, logger, bufio.NewReader(os.Stdin))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, db *sql.DB, logger logging.Logger, reader *bufio.Reader) (*App, error) {
	store := tokenstore.NewSQLiteStore(metadata.NewSQLiteRepository(db))
	sess := session.New(store,
		session.WithPersister(session.NewSQLitePersister(db)),
		session.WithLogger(logger.With("component", "session")),
	)

	a := &App{config: c, logger: logger, db: db, session: sess, reader: reader}

	apiClient, err := client.New(sess, client.Options{
		BaseURL:   c.BaseURL,
		Platform:  c.Platform,
		Timeout:   c.RequestTimeout,
		LoginPath: c.LoginPath,
		Navigator: client.NavigatorFunc(a.navigate),
		Logger:    logger,

		BasicUsername: c.BasicUsername,
		BasicPassword: c.BasicPassword,
	})
	if err != nil {
		return nil, err
	}

	a.client = apiClient
	a.authService = services.NewAuthService(apiClient, sess, logger.With("component", "auth"))
	a.profileService = services.NewProfileService(apiClient, sess)
	a.postService = services.NewPostService(apiClient)
	a.adminService = services.NewAdminService(apiClient)
	a.searchService = services.NewSearchService(apiClient)
	a.timeline = pager.NewCursor(c.PageSize, a.fetchTimeline)
	a.mine = pager.NewPages(c.PageSize, a.fetchMine)
	return a, nil
}

// Run restores the previous session, revalidates it and blocks in the REPL
// until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	printlnFn("Welcome to quzhan CLI (type 'help' for commands)")
	a.restore(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

// restore rehydrates the persisted session and always revalidates it, so a
// stale snapshot is never trusted.
func (a *App) restore(ctx context.Context) {
	if _, err := a.session.Rehydrate(ctx); err != nil {
		a.logger.Warn(ctx, "restoring session failed", "error", err)
	}
	if err := a.authService.LoadUserInfo(ctx); err != nil {
		a.logger.Info(ctx, "stored session is no longer valid", "error", err)
	}
	if u := a.session.User(); u != nil {
		printlnFn(fmt.Sprintf("Welcome back, %s", displayName(u)))
	}
}

// navigate is the redirect target of the client: the session is already
// cleared, so flag the next prompt to log in.
func (a *App) navigate(ctx context.Context, path string) {
	a.logger.Debug(ctx, "redirect requested", "path", path)
	printlnFn("Your session has expired, please log in again.")
	a.relogin.Store(true)
}

func (a *App) consumeRelogin() bool {
	return a.relogin.Swap(false)
}

func (a *App) isLoggedIn() bool {
	return a.session.User() != nil && a.session.Token() != ""
}

func (a *App) getStatus() string {
	u := a.session.User()
	if u == nil {
		return ""
	}
	s := displayName(u)
	if u.EffectiveRole() == models.RoleAdmin {
		s += " admin"
	}
	return fmt.Sprintf("(%s)", s)
}
