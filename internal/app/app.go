// Package app wires the bridge, the engine link, the call journal and the
// terminal UI into one process and manages its lifecycle.
//
// Everything that reads or writes bridge state runs on a single sched.Loop:
// inbound engine calls, terminal input, view timers and config reloads are
// all posted to it.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/runebridge/internal/boot"
	"github.com/dshills/runebridge/internal/bridge"
	"github.com/dshills/runebridge/internal/config"
	"github.com/dshills/runebridge/internal/journal"
	"github.com/dshills/runebridge/internal/logging"
	"github.com/dshills/runebridge/internal/sched"
	"github.com/dshills/runebridge/internal/transport/ws"
	"github.com/dshills/runebridge/internal/ui"
)

// Options configures the application.
type Options struct {
	// Config is the loaded configuration. Defaults to config.Default().
	Config *config.Config

	// Load is handed to the config reloader. Its Path is watched.
	Load config.Options

	// AssetPath overrides the engine asset root. It wins over the config
	// file and the page URL.
	AssetPath string

	// Screen is the terminal. Defaults to a new tcell screen.
	Screen tcell.Screen

	// Marker guards bridge installation. Defaults to boot.Process.
	Marker *boot.Marker

	// Reexec is the hard reset run when the bridge is installed twice.
	// Defaults to boot.Reexec.
	Reexec func() error

	Logger *logging.Logger
}

// Application owns every runebridge component.
type Application struct {
	mu sync.Mutex

	opts    Options
	cfg     *config.Config
	log     *logging.Logger
	metrics *Metrics

	loop     *sched.Loop
	journal  *journal.Journal
	link     *ws.Link
	bridge   *bridge.Bridge
	screen   tcell.Screen
	ui       *ui.UI
	listener net.Listener
	server   *http.Server
	reloader *config.Reloader

	assetSent bool

	running  atomic.Bool
	stopOnce sync.Once
	serveErr error
}

// New initializes every component. Nothing runs until Run.
func New(opts Options) (*Application, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNull()
	}

	app := &Application{
		opts:    opts,
		cfg:     opts.Config,
		log:     opts.Logger.WithComponent("app"),
		metrics: NewMetrics(),
	}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Run serves the engine endpoint and runs the event loop. It blocks until
// ctx is cancelled or Shutdown is called, then releases every component.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.shutdown()

	go app.serve()
	go app.pumpInput()

	app.post(func() {
		if err := app.ui.Start(); err != nil {
			app.log.Warn("surface poll not started: %v", err)
		}
		app.ui.Draw()
	})
	app.log.Info("waiting for engine on ws://%s%s", app.Addr(), app.cfg.Server.Path)

	err := app.loop.Run(ctx)
	if errors.Is(err, sched.ErrLoopClosed) || errors.Is(err, context.Canceled) {
		err = nil
	}

	app.mu.Lock()
	serveErr := app.serveErr
	app.mu.Unlock()
	if serveErr != nil {
		return serveErr
	}
	return err
}

func (app *Application) serve() {
	err := app.server.Serve(app.listener)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}
	app.mu.Lock()
	app.serveErr = &ComponentError{Component: "server", Action: "serve", Err: err}
	app.mu.Unlock()
	app.log.Error("engine endpoint stopped: %v", err)
	app.Shutdown()
}

// Shutdown stops the event loop. Run returns once the current task ends.
func (app *Application) Shutdown() {
	app.loop.Close()
}

// shutdown releases components in reverse initialization order.
func (app *Application) shutdown() {
	app.stopOnce.Do(func() {
		app.loop.Close()
		for _, c := range []string{"config", "server", "ui", "screen", "bridge", "link", "journal"} {
			if err := app.release(c); err != nil {
				app.log.Warn("%v", &ComponentError{Component: c, Action: "close", Err: err})
			}
		}
	})
}

// IsRunning reports whether Run is in progress.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Addr returns the address the engine endpoint listens on.
func (app *Application) Addr() string {
	return app.listener.Addr().String()
}

// Loop returns the event loop.
func (app *Application) Loop() *sched.Loop { return app.loop }

// Bridge returns the bridge.
func (app *Application) Bridge() *bridge.Bridge { return app.bridge }

// UI returns the terminal front end.
func (app *Application) UI() *ui.UI { return app.ui }

// Link returns the engine link.
func (app *Application) Link() *ws.Link { return app.link }

// Journal returns the call journal, or nil when it is disabled.
func (app *Application) Journal() *journal.Journal { return app.journal }

// Metrics returns the traffic counters.
func (app *Application) Metrics() *Metrics { return app.metrics }

// Config returns the configuration in effect. Call it on the loop.
func (app *Application) Config() *config.Config { return app.cfg }
