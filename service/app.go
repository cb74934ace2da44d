package service

import (
	"context"
	"fmt"
	"time"

	"inkwell/app/auth"
	"inkwell/app/config"
	"inkwell/app/controllers"
	"inkwell/app/friends"
	"inkwell/app/logging"
	"inkwell/app/markdown"
	"inkwell/app/render"
	"inkwell/app/repositories"
	"inkwell/app/repositories/mock"
	"inkwell/app/reposync"
	"inkwell/app/routes"
	"inkwell/app/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// App holds everything built from a Config. Commands share it; the server
// mounts it behind the router.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    repositories.KVStore
	Content  *repositories.ContentStore
	Markdown markdown.Renderer
	Renderer *render.Renderer
	Gate     *auth.Gate
	Jar      *auth.CookieJar
	Syncer   *reposync.Syncer
	Feeds    *friends.Aggregator

	now func() time.Time
}

// OpenStore opens the key-value backend named by cfg.Driver.
func OpenStore(cfg config.StorageConfig, logger zerolog.Logger) (repositories.KVStore, error) {
	switch cfg.Driver {
	case config.DriverBadger:
		return repositories.NewBadgerStore(cfg.Path, logger)
	case config.DriverSQLite:
		return repositories.NewSQLiteStore(cfg.Path)
	case config.DriverMemory:
		return mock.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NewApp opens the store and builds the renderer, auth gate and sync
// client. Close releases the store.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := OpenStore(cfg.Storage, logging.Component(logger, "storage"))
	if err != nil {
		return nil, err
	}
	app, err := newApp(cfg, logger, store, time.Now)
	if err != nil {
		store.Close()
		return nil, err
	}
	return app, nil
}

func newApp(cfg *config.Config, logger zerolog.Logger, store repositories.KVStore, now func() time.Time) (*App, error) {
	md, err := markdown.New(cfg.Blog.MarkdownEngine, cfg.Blog.HighlightStyle)
	if err != nil {
		return nil, err
	}
	renderer, err := render.New(md, render.Options{PostsPerPage: cfg.Blog.PostsPerPage, BaseURL: cfg.Server.BaseURL})
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokens(cfg.Auth.SessionSecret, now)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.SessionSecret == "" {
		logger.Warn().Msg("auth.session_secret is empty; sessions end when the process restarts")
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Content:  repositories.NewContentStore(store, logger, now),
		Markdown: md,
		Renderer: renderer,
		Gate: auth.NewGate(store, auth.Options{
			MaxAttempts: cfg.Auth.MaxAttempts,
			Lockout:     cfg.Auth.Lockout,
			SessionTTL:  cfg.Auth.SessionTTL,
			RememberTTL: cfg.Auth.RememberTTL,
		}, logger, now),
		Jar: auth.NewCookieJar(tokens, cfg.Auth.CookieName, cfg.Auth.SecureCookie),
		Feeds: friends.NewAggregator(friends.Options{
			Timeout:  cfg.Friends.FeedTimeout,
			Retry:    cfg.Friends.Retry,
			MaxItems: cfg.Friends.MaxItemsPerFeed,
		}, logger),
		now: now,
	}

	var api reposync.FileAPI
	if cfg.GitHub.Configured() {
		api = reposync.NewGitHubClient(reposync.ClientOptions{
			Token:   cfg.GitHub.Token,
			Owner:   cfg.GitHub.Owner,
			Repo:    cfg.GitHub.Repo,
			Branch:  cfg.GitHub.Branch,
			APIBase: cfg.GitHub.APIBase,
			Timeout: cfg.GitHub.Timeout,
		})
	}
	app.Syncer = reposync.NewSyncer(api, reposync.Options{Owner: cfg.GitHub.Owner, PostsDir: cfg.GitHub.PostsDir}, logger)
	return app, nil
}

// Admin returns the admin service asking confirmer at every gate.
func (a *App) Admin(confirmer services.Confirmer) *services.AdminService {
	return services.NewAdminService(a.Content, a.Syncer, confirmer, a.Logger, a.now)
}

// Router builds the HTTP handler for the blog and admin.
func (a *App) Router() *mux.Router {
	admin := a.Admin(nil)
	return routes.SetupRoutes(routes.Controllers{
		Blog: controllers.NewBlogController(a.Content, a.Renderer, a.Markdown, a.Feeds, controllers.BlogOptions{
			SearchMode:  a.Config.Blog.SearchMode,
			SearchLimit: a.Config.Blog.SearchLimit,
		}, a.Logger),
		Auth:  controllers.NewAuthController(a.Gate, a.Jar, a.Renderer, a.Content, a.Logger),
		Admin: controllers.NewAdminController(admin, a.Renderer, a.Logger),
		Gate:  a.Gate,
		Jar:   a.Jar,
	}, routes.Options{CORSOrigins: a.Config.Server.CORSOrigins, Logger: a.Logger})
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// RunAppServer serves the blog and admin until ctx ends or the process is
// interrupted.
func RunAppServer(ctx context.Context, app *App) error {
	cfg := app.Config.Server
	s := newServer(cfg.Addr, app.Router(), cfg.ReadTimeout, cfg.WriteTimeout, app.Logger)
	return serve(ctx, s, cfg.ShutdownTimeout)
}
