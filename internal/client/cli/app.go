package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/term"

	"github.com/snaplet/snaplet/internal/client/api"
	"github.com/snaplet/snaplet/internal/client/auth"
	"github.com/snaplet/snaplet/internal/client/camera"
	"github.com/snaplet/snaplet/internal/client/config"
	"github.com/snaplet/snaplet/internal/client/deeplink"
	"github.com/snaplet/snaplet/internal/client/localdb"
	"github.com/snaplet/snaplet/internal/client/repositories/prefs"
	"github.com/snaplet/snaplet/internal/client/screens/bootstrap"
	"github.com/snaplet/snaplet/internal/client/screens/friendrequest"
	"github.com/snaplet/snaplet/internal/client/screens/home"
	"github.com/snaplet/snaplet/internal/client/screens/login"
	"github.com/snaplet/snaplet/internal/client/session"
	"github.com/snaplet/snaplet/internal/client/workers"
	"github.com/snaplet/snaplet/internal/cryptox"
	"github.com/snaplet/snaplet/internal/filex"
	"github.com/snaplet/snaplet/internal/logging"

	_ "modernc.org/sqlite"
)

const (
	keyFileName     = "snaplet.key"
	capturesDirName = "captures"
)

// ErrNotLoggedIn is returned by commands that need the home screen.
var ErrNotLoggedIn = errors.New("log in first")

// App owns every long-lived component of the shell.
type App struct {
	cfg      *config.Config
	log      logging.Logger
	db       *sql.DB
	store    *session.Store
	api      *api.HTTPClient
	auth     *auth.Coordinator
	bus      *deeplink.Bus
	links    *deeplink.Handler
	pool     *workers.Pool
	grants   *camera.Grants
	still    *camera.StillCamera
	captures string

	boot  *bootstrap.Controller
	login *login.Controller

	reader   *bufio.Reader
	out      io.Writer
	password func() ([]byte, error)

	ctx    context.Context
	cancel context.CancelFunc
	bg     sync.WaitGroup

	mu         sync.Mutex
	home       *home.Controller
	friend     *friendrequest.Controller
	homeCancel context.CancelFunc
}

// NewApp opens local storage under cfg.DataDir and starts the controllers.
// in and out carry the REPL; a terminal in gets an echo-free password prompt.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	captures, err := filex.EnsureSubDir(dir, capturesDirName)
	if err != nil {
		return nil, err
	}

	key, err := cryptox.LoadOrCreateKey(filepath.Join(dir, keyFileName))
	if err != nil {
		return nil, err
	}
	sealer, err := cryptox.NewSealer(key)
	if err != nil {
		return nil, err
	}

	db, err := localdb.Open(ctx, filepath.Join(dir, localdb.FileName))
	if err != nil {
		return nil, err
	}

	store := session.NewStore(prefs.NewSealed(prefs.NewSQLiteRepository(db), sealer), log)
	client, err := api.NewHTTPClient(api.Options{
		BaseURL:           cfg.APIBaseURL,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.RequestBurst,
		Tokens:            store,
		Logger:            log,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	appCtx, cancel := context.WithCancel(ctx)
	bus := deeplink.NewBus(log)
	coordinator := auth.NewCoordinator(client, store, log)
	pool := workers.New(cfg.WorkerPoolSize)

	a := &App{
		cfg:      cfg,
		log:      log.With("module", "shell"),
		db:       db,
		store:    store,
		api:      client,
		auth:     coordinator,
		bus:      bus,
		links:    deeplink.NewHandler(bus, cfg.DeepLinkScheme, cfg.DeepLinkHost, log),
		pool:     pool,
		grants:   camera.NewGrants(),
		still:    camera.NewStillCamera(),
		captures: captures,
		reader:   bufio.NewReader(in),
		out:      out,
		ctx:      appCtx,
		cancel:   cancel,
	}
	a.password = a.readPasswordLine
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		a.password = func() ([]byte, error) { return GetPassword(out) }
	}

	store.Start(appCtx)
	a.boot = bootstrap.New(appCtx, store, coordinator, pool, log)
	a.login = login.New(appCtx, coordinator, store, pool, log)

	a.background(a.navigate)
	a.background(a.pumpLogin)
	return a, nil
}

func (a *App) background(fn func()) {
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		fn()
	}()
}

func (a *App) readPasswordLine() ([]byte, error) {
	s, err := GetSimpleText(a.reader, "Enter password", a.out)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Run starts the REPL and blocks until the user exits or ctx ends.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to snaplet (type 'help' for commands)")
	runREPL(ctx, a, a.promptStatus, a.reader)
}

// Close stops the controllers and releases local storage.
func (a *App) Close() error {
	a.cancel()
	a.bg.Wait()
	a.leaveHome()
	a.login.Close()
	a.boot.Close()
	a.bus.Close()
	a.pool.Wait()
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.currentHome() != nil
}

func (a *App) currentHome() *home.Controller {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.home
}

func (a *App) currentFriend() *friendrequest.Controller {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.friend
}

func (a *App) promptStatus() string {
	s := a.boot.State()
	switch {
	case s.IsLoading:
		return "(starting)"
	case s.StartDestination == bootstrap.HomeGraph:
		return "(home)"
	default:
		return "(auth)"
	}
}
