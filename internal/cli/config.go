package cli

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	mmerrors "github.com/matzehuels/mmd2png/pkg/errors"
)

// fileConfig mirrors the optional TOML config file:
//
//	scale       = 2
//	background  = "transparent"
//	renderer    = "node_modules/.bin/mmdc"
//	output_dir  = "docs/images"
//	recursive   = true
//	incremental = true
type fileConfig struct {
	Scale       int    `toml:"scale"`
	Background  string `toml:"background"`
	Renderer    string `toml:"renderer"`
	OutputDir   string `toml:"output_dir"`
	Recursive   bool   `toml:"recursive"`
	Incremental bool   `toml:"incremental"`
}

// configPath returns the config file to load and whether it must exist.
// An explicit path is required; the project-root default is optional.
func configPath(explicit, root string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	return filepath.Join(root, configFileName), false
}

// loadConfig decodes the config file at path. A missing optional file yields
// a zero config and no error.
func loadConfig(path string, required bool) (fileConfig, toml.MetaData, error) {
	var cfg fileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err == nil {
		return cfg, md, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !required {
		return fileConfig{}, toml.MetaData{}, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, md, mmerrors.Wrap(mmerrors.ErrCodeInvalidConfig, err, "config file not found: %s", path)
	}
	return cfg, md, mmerrors.Wrap(mmerrors.ErrCodeInvalidConfig, err, "parse config %s", path)
}

// applyConfig copies values from cfg into opts for every key the file
// defines whose flag was not given on the command line. Flags win.
func applyConfig(flags *pflag.FlagSet, cfg fileConfig, md toml.MetaData, opts *convertOpts, logger *log.Logger) {
	set := func(flag, key string, apply func()) {
		if md.IsDefined(key) && !flags.Changed(flag) {
			apply()
			logger.Debug("config value applied", "key", key)
		}
	}
	set("scale", "scale", func() { opts.scale = cfg.Scale })
	set("background", "background", func() { opts.background = cfg.Background })
	set("renderer", "renderer", func() { opts.renderer = cfg.Renderer })
	set("output-dir", "output_dir", func() { opts.outputDir = cfg.OutputDir })
	set("recursive", "recursive", func() { opts.recursive = cfg.Recursive })
	set("incremental", "incremental", func() { opts.incremental = cfg.Incremental })

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		logger.Warn("unknown config keys ignored", "keys", strings.Join(keys, ", "))
	}
}
