// Package boot guards bridge installation against re-entry.
//
// The first Enter installs the bridge and sets a process-wide marker. Any
// later Enter finds the marker and performs a hard reset through the reload
// action instead of binding a second set of listeners and a second engine
// session.
package boot

import (
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/dshills/runebridge/internal/logging"
)

// ErrNoReload is returned when re-entry is detected and the guard has no
// reload action.
var ErrNoReload = errors.New("boot: re-entry with no reload action")

// Marker is a set-once flag recording that the bridge has been installed.
type Marker struct {
	mu  sync.Mutex
	set bool
}

// Process is the marker shared by the whole process.
var Process = &Marker{}

// IsSet reports whether the marker has been set.
func (m *Marker) IsSet() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set
}

// claim sets the marker and reports whether this call set it.
func (m *Marker) claim() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.set {
		return false
	}
	m.set = true
	return true
}

// Outcome is the result of Enter.
type Outcome int

const (
	// Installed means install ran.
	Installed Outcome = iota
	// Reloaded means the marker was already set and the reload action ran.
	Reloaded
)

// String returns the outcome name.
func (o Outcome) String() string {
	if o == Reloaded {
		return "reloaded"
	}
	return "installed"
}

// Guard runs installation at most once per marker.
type Guard struct {
	marker *Marker
	reload func() error
	log    *logging.Logger
}

// NewGuard creates a guard over marker. reload is the hard reset performed
// on re-entry.
func NewGuard(marker *Marker, reload func() error, log *logging.Logger) *Guard {
	if marker == nil {
		marker = Process
	}
	return &Guard{marker: marker, reload: reload, log: log.WithComponent("boot")}
}

// Enter installs the bridge on first entry and reloads on any later one.
// The marker stays set when install fails: a partial install is still reset
// by reload rather than bound twice.
func (g *Guard) Enter(install func() error) (Outcome, error) {
	if g.marker.claim() {
		g.log.Debug("installing bridge")
		if err := install(); err != nil {
			return Installed, fmt.Errorf("boot: install: %w", err)
		}
		return Installed, nil
	}

	g.log.Warn("bridge already installed, reloading")
	if g.reload == nil {
		return Reloaded, ErrNoReload
	}
	if err := g.reload(); err != nil {
		return Reloaded, fmt.Errorf("boot: reload: %w", err)
	}
	return Reloaded, nil
}

// AssetPathParam is the page URL query parameter carrying the asset path
// override.
const AssetPathParam = "asset_path"

// AssetPath picks the asset path override: the explicit flag value wins,
// then the asset_path query parameter of pageURL. ok is false when neither
// is set.
func AssetPath(flagValue, pageURL string) (path string, ok bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if pageURL == "" {
		return "", false
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}
	p := u.Query().Get(AssetPathParam)
	return p, p != ""
}
