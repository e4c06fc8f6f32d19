package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/expensesheets/internal/client/config"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote/gotrue"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote/objects"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote/postgres"
	"github.com/dmitrijs2005/expensesheets/internal/client/repositories/cache"
	"github.com/dmitrijs2005/expensesheets/internal/client/services"
	"github.com/dmitrijs2005/expensesheets/internal/logging"
)

// Backends are the adapters an App runs on.
type Backends struct {
	Auth    remote.Auth
	Data    remote.Data
	Objects remote.Objects
	Cache   services.SessionCache
	HTTP    *http.Client
}

type App struct {
	config *config.Config
	logger logging.Logger

	auth    *services.Coordinator
	refs    *services.ReferenceCache
	board   *services.SheetBoard
	lines   *services.LineManager
	onboard *services.Onboarding
	stats   *services.Stats

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	idMu     sync.Mutex
	identity string

	closers []func() error
}

// NewApp opens the local cache and connects the remote adapters described
// by c. Close releases them.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := cache.Open(ctx, c.CachePath)
	if err != nil {
		logger.Error(ctx, "error initializing cache", "path", c.CachePath, "error", err)
		return nil, err
	}
	store := services.NewSessionStore(cache.NewSQLiteRepository(db), []byte(c.CacheSecret))

	httpClient := &http.Client{Timeout: c.RequestTimeout}
	auth := gotrue.New(c.AuthURL, c.APIKey, gotrue.WithHTTPClient(httpClient), gotrue.WithLogger(logger))

	data, err := postgres.Open(ctx, c.DatabaseDSN, auth, postgres.WithLogger(logger))
	if err != nil {
		_ = db.Close()
		logger.Error(ctx, "error connecting to data service", "error", err)
		return nil, err
	}

	b := Backends{Auth: auth, Data: data, Cache: store, HTTP: httpClient}

	s3, err := objects.NewS3Store(ctx, objects.Config{
		Endpoint:      c.StorageEndpoint,
		Region:        c.StorageRegion,
		AccessKey:     c.StorageAccessKey,
		SecretKey:     c.StorageSecretKey,
		PublicBaseURL: c.PublicStorageURL,
	})
	if err != nil {
		logger.Warn(ctx, "attachment storage disabled", "error", err)
	} else {
		b.Objects = s3
	}

	a := newApp(c, b, logger, os.Stdin, os.Stdout)
	a.closers = append(a.closers, data.Close, db.Close)
	return a, nil
}

func newApp(c *config.Config, b Backends, logger logging.Logger, in io.Reader, out io.Writer) *App {
	if logger == nil {
		logger = logging.Discard()
	}

	a := &App{
		config: c,
		logger: logger,
		reader: bufio.NewReader(in),
		out:    out,
		now:    time.Now,
	}

	a.auth = services.NewCoordinator(b.Auth, b.Data, b.Cache, logger)
	a.refs = services.NewReferenceCache(b.Data, logger)
	a.board = services.NewSheetBoard(b.Data, a.auth, logger)
	a.onboard = services.NewOnboarding(b.Data, b.Data, a.auth)
	a.stats = services.NewStats(b.Data, b.Data, a.auth)

	opts := []services.LineOption{
		services.WithBucket(c.StorageBucket),
		services.WithProgress(a.progress),
		services.WithStatusNames(a.refs),
		services.OnStatusChange(a.board.ApplyStatus),
	}
	if b.HTTP != nil {
		opts = append(opts, services.WithDownloadClient(b.HTTP))
	}
	a.lines = services.NewLineManager(b.Data, b.Data, b.Objects, logger, opts...)

	return a
}

// Run starts the session, runs the REPL and releases resources on return.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) route() services.Route {
	return a.auth.Route()
}

// command bounds one command's remote calls by the configured timeout.
func (a *App) command(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// syncIdentity drops per-user state when the signed-in identity changes and
// keeps the reference tables in step with it.
func (a *App) syncIdentity(ctx context.Context) {
	id := a.auth.Identity()
	key := id.Key()

	a.idMu.Lock()
	changed := key != a.identity
	a.identity = key
	a.idMu.Unlock()

	if changed {
		a.board.Reset()
		a.lines.Deactivate()
		a.onboard.Reset()
	}
	if err := a.refs.Sync(ctx, id); err != nil {
		a.logger.Warn(ctx, "reference tables partially loaded", "error", err)
	}
}

// watchIdentity applies identity changes published by the coordinator,
// e.g. a sign-out after a rejected token refresh.
func (a *App) watchIdentity(ctx context.Context, updates <-chan services.Identity) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			a.syncIdentity(ctx)
		}
	}
}
