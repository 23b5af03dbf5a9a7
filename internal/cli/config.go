package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/canopyviz/canopy/pkg/pipeline"
)

// Config holds user defaults read from ~/.config/canopy/config.toml.
// Every field is optional; zero values defer to the built-in defaults, and
// command-line flags override anything set here.
//
// Example config:
//
//	node_width = 160
//	sibling_gap = 32
//	resolve = true
//
//	[serve]
//	addr = ":8080"
//	redis_url = "redis://localhost:6379/0"
type Config struct {
	NodeWidth       float64 `toml:"node_width"`
	NodeHeight      float64 `toml:"node_height"`
	LevelGap        float64 `toml:"level_gap"`
	SiblingGap      float64 `toml:"sibling_gap"`
	VerticalSpacing float64 `toml:"vertical_spacing"`
	Margin          float64 `toml:"margin"`
	Resolve         bool    `toml:"resolve"`

	Serve ServeConfig `toml:"serve"`
}

// ServeConfig holds defaults for the serve command.
type ServeConfig struct {
	Addr     string `toml:"addr"`
	RedisURL string `toml:"redis_url"`
}

// configPath returns the config file path using XDG standard
// (~/.config/canopy/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the user config file. A missing file is not an error and
// yields the zero config.
func loadConfig() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Config{}, nil
	}
	return loadConfigFile(path)
}

func loadConfigFile(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// pipelineOptions maps config values onto pipeline options. Flags bound on
// top of the returned struct take precedence over the config file.
func (cfg Config) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		NodeWidth:       cfg.NodeWidth,
		NodeHeight:      cfg.NodeHeight,
		LevelGap:        cfg.LevelGap,
		SiblingGap:      cfg.SiblingGap,
		VerticalSpacing: cfg.VerticalSpacing,
		Margin:          cfg.Margin,
		Resolve:         cfg.Resolve,
	}
}
