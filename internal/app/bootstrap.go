package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/runebridge/internal/attach"
	"github.com/dshills/runebridge/internal/boot"
	"github.com/dshills/runebridge/internal/bridge"
	"github.com/dshills/runebridge/internal/config"
	"github.com/dshills/runebridge/internal/journal"
	"github.com/dshills/runebridge/internal/transport/ws"
	"github.com/dshills/runebridge/internal/ui"
)

// StatsPath serves the metrics snapshot next to the engine endpoint.
const StatsPath = "/stats"

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{app: app, initOrder: make([]string, 0, 8)}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initLoop,
		b.initJournal,
		b.initLink,
		b.initBridge,
		b.initScreen,
		b.initUI,
		b.initServer,
		b.initReloader,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

func (b *bootstrapper) initLoop() error {
	b.app.loop = b.app.newLoop()
	b.initOrder = append(b.initOrder, "loop")
	return nil
}

func (b *bootstrapper) initJournal() error {
	cfg := b.app.cfg.Journal
	if !cfg.Enabled {
		return nil
	}
	j, err := journal.Open(context.Background(), cfg.Path, journal.Options{Logger: b.app.opts.Logger})
	if err != nil {
		return &InitError{Component: "journal", Err: err}
	}
	b.app.journal = j
	b.app.metrics.SetNext(j)
	b.initOrder = append(b.initOrder, "journal")
	return nil
}

func (b *bootstrapper) initLink() error {
	cfg := b.app.cfg.Server
	b.app.link = ws.NewLink(ws.Config{
		ReadLimit:    cfg.ReadLimit,
		WriteTimeout: cfg.WriteTimeout.Std(),
		Logger:       b.app.opts.Logger,
	}, b.app.loop)
	b.initOrder = append(b.initOrder, "link")
	return nil
}

// initBridge installs the bridge behind the boot guard. A second install in
// the same process runs the reload action and aborts startup.
func (b *bootstrapper) initBridge() error {
	app := b.app
	reexec := app.opts.Reexec
	if reexec == nil {
		reexec = boot.Reexec
	}
	guard := boot.NewGuard(app.opts.Marker, reexec, app.opts.Logger)

	outcome, err := guard.Enter(func() error {
		br, err := bridge.New(bridge.Options{
			Engine:          app.link,
			Scheduler:       app.loop,
			Logger:          app.opts.Logger,
			Recorder:        app.metrics,
			NotificationTTL: app.cfg.Views.NotificationTTL.Std(),
			LogTTL:          app.cfg.Views.LogTTL.Std(),
		})
		if err != nil {
			return err
		}
		br.Handlers().Seal()
		app.link.Bind(br)
		app.bridge = br
		return nil
	})
	if err != nil {
		return &InitError{Component: "bridge", Err: err}
	}
	if outcome == boot.Reloaded {
		return &InitError{Component: "bridge", Err: ErrReloaded}
	}
	b.initOrder = append(b.initOrder, "bridge")
	return nil
}

func (b *bootstrapper) initScreen() error {
	screen := b.app.opts.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return &InitError{Component: "screen", Err: err}
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	screen.EnableMouse()
	b.app.screen = screen
	b.initOrder = append(b.initOrder, "screen")
	return nil
}

func (b *bootstrapper) initUI() error {
	app := b.app
	log := app.opts.Logger
	app.ui = ui.New(app.screen, app.bridge, app.loop, ui.Options{
		Layout: app.cfg.Layout,
		Attach: attach.Options{
			Interval:    app.cfg.Bridge.AttachInterval.Std(),
			MaxAttempts: app.cfg.Bridge.AttachMaxAttempts,
			Logger:      log,
			OnSettled: func(s attach.State) {
				if s == attach.StateExhausted {
					app.log.Warn("engine surface never appeared, surface shortcuts stay unbound")
				}
			},
		},
		Post:     app.post,
		OnReload: app.reloadConfig,
		OnQuit:   app.Shutdown,
		Logger:   log,
	})
	app.link.OnAttach(app.engineAttached)
	app.link.OnDetach(app.engineDetached)
	b.initOrder = append(b.initOrder, "ui")
	return nil
}

func (b *bootstrapper) initServer() error {
	app := b.app
	cfg := app.cfg.Server

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, app.link)
	mux.Handle(StatsPath, app.metrics)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return &InitError{Component: "server", Err: err}
	}
	app.listener = ln
	app.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	b.initOrder = append(b.initOrder, "server")
	return nil
}

// initReloader starts watching the config file. A watcher that cannot start
// leaves Ctrl+R as the only way to reload.
func (b *bootstrapper) initReloader() error {
	app := b.app
	app.reloader = config.NewReloader(app.opts.Load, app.cfg, app.opts.Logger)
	if _, err := app.reloader.OnChange(func(c *config.Config) {
		app.post(func() { app.applyConfig(c) })
	}); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if err := app.reloader.Start(); err != nil {
		app.log.Warn("config watch disabled: %v", err)
	}
	b.initOrder = append(b.initOrder, "config")
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.app.release(b.initOrder[i])
	}
}

// release tears down one component. It is shared by bootstrap cleanup and
// shutdown.
func (app *Application) release(component string) error {
	switch component {
	case "config":
		if app.reloader != nil {
			return app.reloader.Close()
		}
	case "server":
		if app.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := app.server.Shutdown(ctx)
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			if app.listener != nil {
				_ = app.listener.Close()
			}
			return err
		}
	case "ui":
		if app.ui != nil {
			app.ui.Close()
		}
	case "screen":
		if app.screen != nil {
			app.screen.Fini()
		}
	case "bridge":
		if app.bridge != nil {
			app.bridge.Close()
		}
	case "link":
		if app.link != nil {
			return app.link.Close()
		}
	case "journal":
		if app.journal != nil {
			return app.journal.Close()
		}
	case "loop":
		if app.loop != nil {
			app.loop.Close()
		}
	}
	return nil
}
