package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/photoshare/core/api"
	"github.com/dmitrymomot/photoshare/core/config"
	"github.com/dmitrymomot/photoshare/core/imageloc"
	"github.com/dmitrymomot/photoshare/core/kv"
	"github.com/dmitrymomot/photoshare/core/logger"
	"github.com/dmitrymomot/photoshare/core/navigation"
	"github.com/dmitrymomot/photoshare/core/photos"
	"github.com/dmitrymomot/photoshare/core/session"
	kvpebble "github.com/dmitrymomot/photoshare/integration/kv/pebble"
	kvredis "github.com/dmitrymomot/photoshare/integration/kv/redis"
	"github.com/dmitrymomot/photoshare/pkg/feature"
)

// ErrUnknownBackend is returned for a PHOTOSHARE_KV_BACKEND value other than
// memory, pebble or redis.
var ErrUnknownBackend = errors.New("client: unknown kv backend")

// App is the assembled client: session, API client, photo store, feature
// flags, navigation and image resolver sharing one configuration.
type App struct {
	config     Config
	logger     *slog.Logger
	kv         kv.Store
	httpClient *http.Client
	registerer prometheus.Registerer

	api      *api.Client
	session  *session.Manager
	photos   *photos.Store
	flags    *feature.Flags
	nav      *navigation.Policy
	images   *imageloc.Resolver
	checks   []func(context.Context) error
	closers  []func() error
	unsubs   []func()
}

// AppOption customizes NewApp.
type AppOption func(*App) error

// NewApp loads the configuration and builds the client graph. Storage
// backends that need a connection are opened with ctx.
func NewApp(ctx context.Context, opts ...AppOption) (*App, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	app := &App{config: cfg}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.logger == nil {
		app.logger = logger.New(
			logger.WithLevel(logger.ParseLevel(app.config.LogLevel)),
			logger.WithFormat(logger.Format(strings.ToLower(app.config.LogFormat))),
			logger.WithAttrs(logger.Component("photoshare")),
		)
	}

	if err := app.build(ctx); err != nil {
		return nil, errors.Join(err, app.Close())
	}
	return app, nil
}

func (app *App) build(ctx context.Context) error {
	if app.kv == nil {
		store, err := app.openStore(ctx)
		if err != nil {
			return err
		}
		app.kv = store
	}

	apiOpts := []api.Option{
		api.WithLogger(app.logger.With(logger.Component("api"))),
		api.WithTokenSource(func() (string, bool) { return app.session.CurrentToken() }),
		api.WithAuthErrorHook(func(ctx context.Context, err *api.Error) {
			app.session.HandleAuthError(ctx, err)
		}),
	}
	if app.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(app.httpClient))
	}
	if app.registerer != nil {
		apiOpts = append(apiOpts, api.WithMetrics(app.registerer))
	}
	client, err := api.NewFromConfig(app.config.API, apiOpts...)
	if err != nil {
		return fmt.Errorf("client: api: %w", err)
	}
	app.api = client

	app.session = session.New(client,
		session.WithStore(app.kv),
		session.WithConfig(app.config.Session),
		session.WithLogger(app.logger.With(logger.Component("session"))),
	)
	app.photos = photos.New(client,
		photos.WithConfig(app.config.Photos),
		photos.WithLogger(app.logger.With(logger.Component("photos"))),
	)
	app.flags = feature.New()
	app.nav = navigation.New(app.flags, app.photos,
		navigation.WithLogger(app.logger.With(logger.Component("navigation"))),
	)
	app.unsubs = append(app.unsubs, app.nav.Close)

	imgOpts := []imageloc.Option{imageloc.WithLogger(app.logger.With(logger.Component("images")))}
	if app.httpClient != nil {
		imgOpts = append(imgOpts, imageloc.WithHTTPClient(app.httpClient))
	}
	images, err := imageloc.New(app.config.Images, imgOpts...)
	if err != nil {
		return fmt.Errorf("client: images: %w", err)
	}
	app.images = images

	// Nothing cached for the previous user may outlive the session.
	app.unsubs = append(app.unsubs, app.session.Subscribe(func(s session.Session) {
		if s.IsActive() {
			return
		}
		app.photos.Reset()
		app.nav.Navigate(navigation.Route{})
	}))
	return nil
}

func (app *App) openStore(ctx context.Context) (kv.Store, error) {
	switch strings.ToLower(app.config.KVBackend) {
	case "", BackendMemory:
		return kv.NewMemory(), nil
	case BackendPebble:
		store, err := kvpebble.Open(app.config.KVPath)
		if err != nil {
			return nil, fmt.Errorf("client: open pebble store: %w", err)
		}
		app.closers = append(app.closers, store.Close)
		return store, nil
	case BackendRedis:
		rc, err := kvredis.Connect(ctx, app.config.Redis)
		if err != nil {
			return nil, fmt.Errorf("client: connect redis: %w", err)
		}
		app.closers = append(app.closers, rc.Close)
		app.checks = append(app.checks, kvredis.Healthcheck(rc))
		return kvredis.NewStore(rc, kvredis.WithPrefix(app.config.RedisPrefix)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, app.config.KVBackend)
}

// Start restores the persisted session.
func (app *App) Start(ctx context.Context) (session.Session, error) {
	return app.session.Restore(ctx)
}

// OpenPhotos navigates to the photo list of userID and loads it. The route
// may move on to the first photo once the photos arrive.
func (app *App) OpenPhotos(ctx context.Context, userID string) (photos.Snapshot, error) {
	app.nav.Navigate(navigation.List(userID))
	return app.photos.LoadPhotosForUser(ctx, userID)
}

// Healthcheck runs the checks of the storage backend.
func (app *App) Healthcheck(ctx context.Context) error {
	var errs []error
	for _, check := range app.checks {
		errs = append(errs, check(ctx))
	}
	return errors.Join(errs...)
}

// Close stops the subscriptions and releases the storage backend.
func (app *App) Close() error {
	for _, unsub := range app.unsubs {
		unsub()
	}
	app.unsubs = nil

	var errs []error
	for _, closeFn := range slices.Backward(app.closers) {
		errs = append(errs, closeFn())
	}
	app.closers = nil
	return errors.Join(errs...)
}

func (app *App) Config() Config                 { return app.config }
func (app *App) Logger() *slog.Logger           { return app.logger }
func (app *App) API() *api.Client               { return app.api }
func (app *App) Session() *session.Manager      { return app.session }
func (app *App) Photos() *photos.Store          { return app.photos }
func (app *App) Flags() *feature.Flags          { return app.flags }
func (app *App) Navigation() *navigation.Policy { return app.nav }
func (app *App) Images() *imageloc.Resolver     { return app.images }

func WithConfig(cfg Config) AppOption {
	return func(app *App) error {
		app.config = cfg
		return nil
	}
}

func WithLogger(logger *slog.Logger) AppOption {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

func WithKVStore(store kv.Store) AppOption {
	return func(app *App) error {
		if store == nil {
			return errors.New("kv store cannot be nil")
		}
		app.kv = store
		return nil
	}
}

func WithHTTPClient(c *http.Client) AppOption {
	return func(app *App) error {
		if c == nil {
			return errors.New("http client cannot be nil")
		}
		app.httpClient = c
		return nil
	}
}

func WithMetrics(reg prometheus.Registerer) AppOption {
	return func(app *App) error {
		if reg == nil {
			return errors.New("metrics registerer cannot be nil")
		}
		app.registerer = reg
		return nil
	}
}
