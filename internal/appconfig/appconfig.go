// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path to the configuration file used in previous versions.
	legacyConfigPath = "config.json"
	// defaultSampleTarget is the per-file sample cap used when the config omits one.
	defaultSampleTarget = 10
	// defaultSeed feeds the sampling random source when the config omits a seed.
	defaultSeed = 42
	// defaultSourceDir is where the upstream bundler leaves the full-size bundle.
	defaultSourceDir = "www"
	// defaultOutputDir is the publishable bundle directory static hosts serve from.
	defaultOutputDir = "docs"
	// defaultPreviewAddr is the listen address for the preview server.
	defaultPreviewAddr = ":8374"
)

// Config represents the top-level application configuration.
type Config struct {
	Samples    int    `json:"samples"`
	Seed       int64  `json:"seed"`
	Source     string `json:"source,omitempty"`
	Output     string `json:"output,omitempty"`
	Addr       string `json:"addr,omitempty"`
	Debug      bool   `json:"debug"`
	LogFile    string `json:"logFile,omitempty"`
	ConfigPath string `json:"-"`
}

// SampleTarget returns the per-file sample cap, applying the default
// when the config leaves it unset. A negative value passes through
// unchanged so the build can reject it with a proper error instead of
// silently sampling at the default.
func (c Config) SampleTarget() int {
	if c.Samples == 0 {
		return defaultSampleTarget
	}
	return c.Samples
}

// RandomSeed returns the seed for the sampling random source. A zero
// seed selects the default.
func (c Config) RandomSeed() int64 {
	if c.Seed == 0 {
		return defaultSeed
	}
	return c.Seed
}

// SourceDirPath returns the source bundle directory, applying a default if not set.
func (c Config) SourceDirPath() string {
	if dir := strings.TrimSpace(c.Source); dir != "" {
		return dir
	}
	return defaultSourceDir
}

// OutputDirPath returns the output bundle directory, applying a default if not set.
func (c Config) OutputDirPath() string {
	if dir := strings.TrimSpace(c.Output); dir != "" {
		return dir
	}
	return defaultOutputDir
}

// PreviewAddr returns the preview server listen address, applying a default if not set.
func (c Config) PreviewAddr() string {
	if addr := strings.TrimSpace(c.Addr); addr != "" {
		return addr
	}
	return defaultPreviewAddr
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "winnow.log"
}

// ResolveConfigPath returns the path a loader should read: the given
// path as-is, except that a missing default path falls back to the
// legacy location when a file exists there.
func ResolveConfigPath(path string) string {
	if path == "" {
		path = DefaultConfigPath
	}
	if path != DefaultConfigPath {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if _, err := os.Stat(legacyConfigPath); err == nil {
		return legacyConfigPath
	}
	return path
}

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	resolved := ResolveConfigPath(path)

	config, err := loadFromPath(resolved)
	if err == nil {
		config.ConfigPath = resolved
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if resolved == DefaultConfigPath {
			return Config{}, fmt.Errorf("no configuration file found (searched %q and %q)", DefaultConfigPath, legacyConfigPath)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", resolved)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", resolved, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}
