package main

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/goopsie/ftexTools/pkg/archive"
	"github.com/goopsie/ftexTools/pkg/ftex"
)

// Config holds the defaults that can come from a YAML file. Command-line
// flags override anything set here.
type Config struct {
	ColorSpace       string `yaml:"color_space"`
	Workers          int    `yaml:"workers"`
	TexconvPath      string `yaml:"texconv_path"`
	PreserveOriginal bool   `yaml:"preserve_original"`
	BackupArchive    bool   `yaml:"backup_archive"`
	KeepDDS          bool   `yaml:"keep_dds"`
}

func defaultConfig() Config {
	return Config{
		Workers:          runtime.NumCPU(),
		TexconvPath:      defaultTexconvPath,
		PreserveOriginal: true,
	}
}

// loadConfig reads path over the defaults. An empty path returns the
// defaults unchanged.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if _, err := ftex.ParseColorSpace(c.ColorSpace); err != nil {
		return err
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// BackupMode maps the preserve and archive switches to an archive mode.
func (c Config) BackupMode() archive.Mode {
	switch {
	case !c.PreserveOriginal:
		return archive.ModeNone
	case c.BackupArchive:
		return archive.ModeCompress
	default:
		return archive.ModeRename
	}
}
