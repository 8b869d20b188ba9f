package config

import (
	"strings"
	"time"

	"github.com/dshills/runebridge/internal/attach"
	"github.com/dshills/runebridge/internal/views"
)

// Config is the complete runebridge configuration.
type Config struct {
	Server  Server  `toml:"server" yaml:"server" json:"server"`
	Bridge  Bridge  `toml:"bridge" yaml:"bridge" json:"bridge"`
	Views   Views   `toml:"views" yaml:"views" json:"views"`
	Layout  Layout  `toml:"layout" yaml:"layout" json:"layout"`
	Journal Journal `toml:"journal" yaml:"journal" json:"journal"`
	Logging Logging `toml:"logging" yaml:"logging" json:"logging"`
}

// Server configures the engine websocket endpoint.
type Server struct {
	// Addr is the listen address.
	Addr string `toml:"addr" yaml:"addr" json:"addr"`

	// Path is the HTTP path the engine connects to.
	Path string `toml:"path" yaml:"path" json:"path"`

	// ReadLimit caps the size of one inbound message in bytes.
	ReadLimit int64 `toml:"read_limit" yaml:"read_limit" json:"read_limit"`

	// WriteTimeout bounds each outbound write.
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
}

// Bridge configures boot and the deferred attachment queue.
type Bridge struct {
	AttachInterval    Duration `toml:"attach_interval" yaml:"attach_interval" json:"attach_interval"`
	AttachMaxAttempts int      `toml:"attach_max_attempts" yaml:"attach_max_attempts" json:"attach_max_attempts"`

	// AssetPath overrides the engine asset root before start.
	AssetPath string `toml:"asset_path" yaml:"asset_path" json:"asset_path"`

	// PageURL is consulted for an asset_path query parameter when AssetPath
	// is empty.
	PageURL string `toml:"page_url" yaml:"page_url" json:"page_url"`
}

// Views configures the aggregation views.
type Views struct {
	NotificationTTL Duration `toml:"notification_ttl" yaml:"notification_ttl" json:"notification_ttl"`
	LogTTL          Duration `toml:"log_ttl" yaml:"log_ttl" json:"log_ttl"`
}

// Layout configures the terminal front end.
type Layout struct {
	// TopBarHeight is the number of rows above the engine surface. Overlay
	// rectangles are shifted up by this amount.
	TopBarHeight   int  `toml:"top_bar_height" yaml:"top_bar_height" json:"top_bar_height"`
	HierarchyWidth int  `toml:"hierarchy_width" yaml:"hierarchy_width" json:"hierarchy_width"`
	InspectorWidth int  `toml:"inspector_width" yaml:"inspector_width" json:"inspector_width"`
	PopOut         bool `toml:"pop_out" yaml:"pop_out" json:"pop_out"`
}

// Journal configures the boundary call journal.
type Journal struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Path    string `toml:"path" yaml:"path" json:"path"`
}

// Logging configures the logger.
type Logging struct {
	Level string `toml:"level" yaml:"level" json:"level"`

	// File receives log output. The terminal UI owns stderr, so serve
	// discards log lines when File is empty.
	File string `toml:"file" yaml:"file" json:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:         "127.0.0.1:7420",
			Path:         "/engine",
			ReadLimit:    1 << 20,
			WriteTimeout: Duration(5 * time.Second),
		},
		Bridge: Bridge{
			AttachInterval:    Duration(attach.DefaultInterval),
			AttachMaxAttempts: attach.DefaultMaxAttempts,
		},
		Views: Views{
			NotificationTTL: Duration(views.DefaultNotificationTTL),
			LogTTL:          Duration(views.DefaultLogTTL),
		},
		Layout: Layout{
			TopBarHeight:   1,
			HierarchyWidth: 24,
			InspectorWidth: 32,
		},
		Journal: Journal{
			Enabled: true,
			Path:    "runebridge.db",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// Validate checks every setting and returns the first failure as a
// FieldError.
func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return invalid("server.addr", "must not be empty")
	case !strings.HasPrefix(c.Server.Path, "/"):
		return invalid("server.path", "must start with /, got %q", c.Server.Path)
	case c.Server.ReadLimit <= 0:
		return invalid("server.read_limit", "must be positive, got %d", c.Server.ReadLimit)
	case c.Server.WriteTimeout <= 0:
		return invalid("server.write_timeout", "must be positive, got %s", c.Server.WriteTimeout)
	case c.Bridge.AttachInterval <= 0:
		return invalid("bridge.attach_interval", "must be positive, got %s", c.Bridge.AttachInterval)
	case c.Bridge.AttachMaxAttempts <= 0:
		return invalid("bridge.attach_max_attempts", "must be positive, got %d", c.Bridge.AttachMaxAttempts)
	case c.Views.NotificationTTL <= 0:
		return invalid("views.notification_ttl", "must be positive, got %s", c.Views.NotificationTTL)
	case c.Views.LogTTL <= 0:
		return invalid("views.log_ttl", "must be positive, got %s", c.Views.LogTTL)
	case c.Layout.TopBarHeight < 0:
		return invalid("layout.top_bar_height", "must not be negative, got %d", c.Layout.TopBarHeight)
	case c.Layout.HierarchyWidth < 0:
		return invalid("layout.hierarchy_width", "must not be negative, got %d", c.Layout.HierarchyWidth)
	case c.Layout.InspectorWidth < 0:
		return invalid("layout.inspector_width", "must not be negative, got %d", c.Layout.InspectorWidth)
	case c.Journal.Enabled && c.Journal.Path == "":
		return invalid("journal.path", "must be set when the journal is enabled")
	case !validLevels[strings.ToLower(strings.TrimSpace(c.Logging.Level))]:
		return invalid("logging.level", "unknown level %q", c.Logging.Level)
	}
	return nil
}
