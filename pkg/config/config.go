// Package config loads the engine's own configuration: where the category
// directories live, which paths profile discovery excludes, and how the
// logger behaves. Values are layered defaults -> optional strata.yaml ->
// STRATA_* environment variables, and a config file may pull in other
// config files through an `import:` list.
package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/cockroachdb/errors"

	errUtils "github.com/strata-config/strata/errors"
)

const (
	configName = "strata"
	configType = "yaml"
	envPrefix  = "STRATA"
)

// Configuration is the engine configuration.
type Configuration struct {
	// BasePath is the root under which the category directories live.
	BasePath string `mapstructure:"base_path"`

	// Import lists further config files merged underneath this one.
	Import []string `mapstructure:"import"`

	Directories Directories `mapstructure:"directories"`

	// Exclude holds the discovery exclusion globs for settings profiles.
	// Empty means the built-in defaults.
	Exclude []string `mapstructure:"exclude"`

	Logs Logs `mapstructure:"logs"`
}

// Directories names the per-category directories under BasePath.
type Directories struct {
	Settings string `mapstructure:"settings"`
	State    string `mapstructure:"state"`
	Output   string `mapstructure:"output"`
}

// Logs configures the logger.
type Logs struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// SettingsDir returns the absolute-ish settings directory.
func (c *Configuration) SettingsDir() string {
	return filepath.Join(c.BasePath, c.Directories.Settings)
}

// StateDir returns the state directory.
func (c *Configuration) StateDir() string {
	return filepath.Join(c.BasePath, c.Directories.State)
}

// OutputDir returns the output directory.
func (c *Configuration) OutputDir() string {
	return filepath.Join(c.BasePath, c.Directories.Output)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_path", ".")
	v.SetDefault("directories.settings", "settings")
	v.SetDefault("directories.state", "state")
	v.SetDefault("directories.output", "output")
	v.SetDefault("logs.level", "info")
	v.SetDefault("logs.file", "")

	return v
}

// Load reads the configuration. With an empty path the config file is
// searched in the working directory and is optional; with an explicit path
// it must exist.
//
// The config file is read with a bare viper so that only values the file
// actually sets take part in the import merge; defaults and environment
// variables are layered afterwards.
func Load(path string) (Configuration, error) {
	raw := viper.New()
	raw.SetConfigType(configType)

	if path != "" {
		raw.SetConfigFile(path)
		if err := raw.ReadInConfig(); err != nil {
			return Configuration{}, errors.Wrapf(errUtils.ErrLoadConfig, "%v", err)
		}
	} else {
		raw.SetConfigName(configName)
		raw.AddConfigPath(".")
		if err := raw.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Configuration{}, errors.Wrapf(errUtils.ErrLoadConfig, "%v", err)
			}
		}
	}

	settings, err := settingsWithImports(raw)
	if err != nil {
		return Configuration{}, err
	}

	v := newViper()
	if err := v.MergeConfigMap(settings); err != nil {
		return Configuration{}, errors.Wrapf(errUtils.ErrLoadConfig, "%v", err)
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return Configuration{}, errors.Wrapf(errUtils.ErrLoadConfig, "%v", err)
	}
	return cfg, nil
}

// Default returns the configuration without consulting any config file.
func Default() Configuration {
	var cfg Configuration
	_ = newViper().Unmarshal(&cfg)
	return cfg
}
