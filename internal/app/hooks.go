package app

import (
	"github.com/dshills/runebridge/internal/boot"
	"github.com/dshills/runebridge/internal/config"
	"github.com/dshills/runebridge/internal/logging"
)

// engineAttached runs on the loop when an engine connects. The asset path
// override goes out before anything else the UI sends, to the first engine
// that accepts it.
func (app *Application) engineAttached() {
	app.metrics.RecordAttach()

	if path, ok := app.assetPath(); ok && !app.assetSent {
		app.log.Info("overriding asset path: %s", path)
		if err := app.bridge.Port().OverrideAssetPath(path); err != nil {
			app.log.Warn("asset path override failed: %v", err)
		} else {
			app.assetSent = true
		}
	}
	app.ui.EngineAttached()
}

// engineDetached runs on the loop when the engine disconnects.
func (app *Application) engineDetached() {
	app.metrics.RecordDetach()
	app.ui.EngineDetached()
}

// assetPath resolves the override: flag, then config, then the page URL
// query parameter.
func (app *Application) assetPath() (string, bool) {
	explicit := app.opts.AssetPath
	if explicit == "" {
		explicit = app.cfg.Bridge.AssetPath
	}
	return boot.AssetPath(explicit, app.cfg.Bridge.PageURL)
}

// reloadConfig is bound to Ctrl+R. A failed reload keeps the current
// settings and tells the user why.
func (app *Application) reloadConfig() {
	if err := app.reloader.Reload(); err != nil {
		app.bridge.Notifications().Error("Config reload failed", err.Error())
	}
}

// applyConfig applies the settings that can change at runtime. Server and
// journal settings take effect on the next start.
func (app *Application) applyConfig(c *config.Config) {
	prev := app.cfg
	app.cfg = c

	app.opts.Logger.SetLevel(logging.ParseLevel(c.Logging.Level))
	app.bridge.Notifications().SetTTL(c.Views.NotificationTTL.Std())
	app.bridge.LogFeed().SetTTL(c.Views.LogTTL.Std())
	app.ui.SetLayout(c.Layout)

	if prev.Server != c.Server || prev.Journal != c.Journal {
		app.log.Info("server and journal changes apply after restart")
	}
}
