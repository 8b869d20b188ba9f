package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dshills/runebridge/internal/config/loader"
)

// EnvPrefix is the prefix for configuration environment variables.
const EnvPrefix = "RUNEBRIDGE_"

// Options controls Load.
type Options struct {
	// Path is the configuration file. Empty skips the file layer; a path
	// that does not exist is not an error.
	Path string

	// FS reads the file. Defaults to the OS file system.
	FS loader.FileSystem

	// Environ supplies environment variables. Defaults to os.Environ.
	// Set SkipEnv to ignore the environment entirely.
	Environ func() []string
	SkipEnv bool
}

// Load builds a Config from defaults, the file and the environment, then
// validates it.
func Load(opts Options) (*Config, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = loader.DefaultFS()
	}

	var layers []map[string]any

	if opts.Path != "" {
		data, err := loader.ForFile(fsys, opts.Path).Load()
		if err != nil {
			return nil, err
		}
		if data != nil {
			layers = append(layers, data)
		}
	}

	if !opts.SkipEnv {
		env := loader.NewEnvLoader(EnvPrefix)
		if opts.Environ != nil {
			env.WithEnviron(opts.Environ)
		}
		data, err := env.Load()
		if err != nil {
			return nil, err
		}
		layers = append(layers, data)
	}

	merged := make(map[string]any)
	for _, layer := range layers {
		merged = loader.DeepMerge(merged, layer)
	}

	cfg, err := decode(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode applies a merged settings map over the defaults. The map is
// round-tripped through YAML so TOML, YAML and environment values share one
// decoder.
func decode(settings map[string]any) (*Config, error) {
	cfg := Default()
	if len(settings) == 0 {
		return cfg, nil
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encoding merged settings: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("re-reading merged settings: %w", err)
	}
	if err := node.Decode(cfg); err != nil {
		return nil, &ParseError{Path: "<merged>", Message: err.Error(), Err: err}
	}
	return cfg, nil
}
