package config

import (
	"sync"
	"time"

	"github.com/dshills/runebridge/internal/config/watcher"
	"github.com/dshills/runebridge/internal/event"
	"github.com/dshills/runebridge/internal/logging"
)

// Reloader re-reads the configuration file when it changes and publishes
// the new Config.
type Reloader struct {
	mu       sync.Mutex
	opts     Options
	current  *Config
	changes  *event.Registry[*Config]
	watcher  *watcher.Watcher
	debounce time.Duration
	log      *logging.Logger
	closed   bool
}

// NewReloader creates a reloader seeded with the Config that Load returned
// for opts.
func NewReloader(opts Options, initial *Config, log *logging.Logger) *Reloader {
	if initial == nil {
		initial = Default()
	}
	r := &Reloader{
		opts:     opts,
		current:  initial,
		debounce: watcher.DefaultDebounce,
		log:      log.WithComponent("config"),
	}
	r.changes = event.NewRegistry[*Config]("config", event.WithFaultHandler(func(err error) {
		r.log.Error("config subscriber failed: %v", err)
	}))
	return r
}

// Current returns the Config in effect.
func (r *Reloader) Current() *Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// OnChange subscribes fn to reloaded configurations.
func (r *Reloader) OnChange(fn func(*Config)) (*event.Subscription, error) {
	return r.changes.SubscribeFunc(fn)
}

// Start begins watching the configuration file. It is a no-op when Options
// has no path.
func (r *Reloader) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrReloaderClosed
	}
	if r.opts.Path == "" || r.watcher != nil {
		return nil
	}

	w, err := watcher.New(func(ev watcher.Event) {
		r.log.WithField("op", ev.Op.String()).Debug("config file changed: %s", ev.Path)
		_ = r.Reload()
	}, watcher.WithDebounce(r.debounce), watcher.WithErrorHandler(func(err error) {
		r.log.Warn("config watcher: %v", err)
	}))
	if err != nil {
		return err
	}
	if err := w.Watch(r.opts.Path); err != nil {
		_ = w.Close()
		return err
	}
	r.watcher = w
	return nil
}

// Reload loads the configuration again. On success the new Config replaces
// the current one and is published; on failure the current one is kept.
func (r *Reloader) Reload() error {
	cfg, err := Load(r.opts)
	if err != nil {
		r.log.Error("config reload failed, keeping previous settings: %v", err)
		return err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrReloaderClosed
	}
	r.current = cfg
	r.mu.Unlock()

	r.log.Info("configuration reloaded")
	r.changes.Publish(cfg)
	return nil
}

// Close stops watching and drops all subscribers.
func (r *Reloader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	w := r.watcher
	r.watcher = nil
	r.mu.Unlock()

	r.changes.Clear()
	if w != nil {
		return w.Close()
	}
	return nil
}
