// Package config holds runebridge settings and the layered loader that
// produces them.
//
// Settings come from four layers, later layers overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. RUNEBRIDGE_* environment variables
//  4. Command line flags, applied by the caller after Load
//
// A Reloader watches the file and publishes each successfully reloaded
// Config to its subscribers. A file that fails to parse or validate is
// logged and the previous Config stays in effect.
package config
