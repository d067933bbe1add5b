package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// AppFileName is the optional application settings file looked up in the
// working directory.
const AppFileName = "sheet-export.yaml"

// EnvPrefix prefixes environment overrides, e.g. SHEETEXPORT_LOG_LEVEL.
const EnvPrefix = "SHEETEXPORT_"

// ProfileFileName is the profile store file inside the data directory.
const ProfileFileName = "profil.json"

// AppConfig holds the CLI application settings: where things live and how
// loud to be.
type AppConfig struct {
	DataDir  string `koanf:"data_dir"`
	Settings string `koanf:"settings"`
	Profiles string `koanf:"profiles"`
	Model    string `koanf:"model"`
	LogLevel string `koanf:"log_level"`
	Env      string `koanf:"env"`
	// UpdateURL is the release manifest checked by the update command.
	UpdateURL string `koanf:"update_url"`
}

// DefaultDataDir returns the per-user plugin data directory.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(dir, "sheet-exporter")
}

// LoadApp loads application settings. A .env file in the working directory,
// if any, is loaded into the environment first.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadApp(cfgFile string, flags *pflag.FlagSet) (*AppConfig, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"data_dir":   DefaultDataDir(),
		"settings":   "",
		"profiles":   "",
		"model":      "",
		"log_level":  "info",
		"env":        "development",
		"update_url": "",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(AppFileName); err == nil {
			cfgFile = AppFileName
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// SHEETEXPORT_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Settings == "" {
		cfg.Settings = filepath.Join(cfg.DataDir, "settings.yaml")
	}
	if cfg.Profiles == "" {
		cfg.Profiles = filepath.Join(cfg.DataDir, ProfileFileName)
	}

	return &cfg, nil
}
