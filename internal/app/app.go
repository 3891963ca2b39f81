// Package app assembles the long-lived pieces of a shiplabel process
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/shiplabel-dev/shiplabel/internal/auth"
	"github.com/shiplabel-dev/shiplabel/internal/client"
	"github.com/shiplabel-dev/shiplabel/internal/config"
	"github.com/shiplabel-dev/shiplabel/internal/credentials"
	"github.com/shiplabel-dev/shiplabel/internal/notify"
	"github.com/shiplabel-dev/shiplabel/internal/router"
	"github.com/shiplabel-dev/shiplabel/internal/session"
	"github.com/shiplabel-dev/shiplabel/internal/storage"
)

// App is one process's view of the session and the API
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Storage   storage.Storage
	Store     *session.Store
	Persistor *session.Persistor
	Jar       *credentials.Jar
	Client    *client.Client
	Auth      *auth.Service
	Router    *router.Router
	Notifier  notify.Notifier
}

// Options configures New
type Options struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Notifier notify.Notifier

	// Storage overrides the configured backend
	Storage storage.Storage

	// Credentials overrides where cookies are kept. Defaults to the OS keyring, or to memory
	// when the storage backend is memory.
	Credentials credentials.Store
}

// New wires an App from opts
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLog(opts.Logger)
	}

	st := opts.Storage
	if st == nil {
		var err error
		st, err = storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
	}

	store, persistor, err := session.Open(st, opts.Logger.With().Str("component", "session").Logger())
	if err != nil {
		closeStorage(st)
		return nil, fmt.Errorf("failed to rehydrate session: %w", err)
	}

	credStore := opts.Credentials
	if credStore == nil {
		credStore = credentials.Default
		if cfg.Storage.Backend == storage.BackendMemory {
			credStore = credentials.NewMemoryStore()
		}
	}

	jar, err := credentials.NewJar(cfg.APIURL, credStore, opts.Logger)
	if err != nil {
		closeStorage(st)
		return nil, err
	}

	apiClient := client.New(cfg.APIURL, opts.Logger.With().Str("component", "client").Logger())
	apiClient.SetHTTPClient(&http.Client{Jar: jar, Timeout: cfg.HTTP.Timeout})

	authService := auth.NewService(apiClient, store, notifier, opts.Logger.With().Str("component", "auth").Logger())
	authService.SetCredentials(jar)

	return &App{
		Config:    cfg,
		Logger:    opts.Logger,
		Storage:   st,
		Store:     store,
		Persistor: persistor,
		Jar:       jar,
		Client:    apiClient,
		Auth:      authService,
		Router:    router.New(),
		Notifier:  notifier,
	}, nil
}

// Session returns the current session snapshot
func (a *App) Session() session.State {
	return a.Store.Snapshot()
}

// Resolve resolves a navigation against the current session
func (a *App) Resolve(path string) router.Resolution {
	return a.Router.Resolve(path, a.Store.Snapshot())
}

// Forget removes the persisted session and the stored cookies without contacting the API.
// The in-memory session of this process is left as it is.
func (a *App) Forget() error {
	return errors.Join(a.Persistor.Purge(), a.Jar.Clear())
}

// Close releases the storage backend
func (a *App) Close() error {
	return closeStorage(a.Storage)
}

func closeStorage(st storage.Storage) error {
	if c, ok := st.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying a
func WithContext(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the App stored in ctx, or nil
func FromContext(ctx context.Context) *App {
	a, _ := ctx.Value(contextKey{}).(*App)
	return a
}
