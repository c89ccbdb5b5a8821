package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/reftext/pkg/cache"
	"github.com/matzehuels/reftext/pkg/errors"
)

// Store backends selectable in the config file.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
	backendNone  = "none"
)

// defaultStoreTTL keeps stored documents for 30 days.
const defaultStoreTTL = 30 * 24 * time.Hour

// Config is the contents of config.toml.
type Config struct {
	// Indent is the default indentation for fmt, from-json and store output.
	Indent string      `toml:"indent"`
	Store  StoreConfig `toml:"store"`
}

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	Backend   string   `toml:"backend"`
	TTL       duration `toml:"ttl"`
	Namespace string   `toml:"namespace"`

	// Dir overrides the file backend directory.
	Dir string `toml:"dir"`

	Redis cache.RedisConfig `toml:"redis"`
	Mongo cache.MongoConfig `toml:"mongo"`
}

// duration decodes TOML strings such as "720h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func defaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Backend: backendFile,
			TTL:     duration{defaultStoreTTL},
		},
	}
}

// loadConfig reads the config file at path on top of the defaults. A
// missing file is not an error unless required is set.
func loadConfig(path string, required bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !required {
			return defaultConfig(), nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	return cfg, cfg.validate()
}

func (cfg Config) validate() error {
	switch cfg.Store.Backend {
	case backendFile, backendRedis, backendMongo, backendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q (want file, redis, mongo or none)", cfg.Store.Backend)
	}
	if cfg.Store.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "store ttl cannot be negative")
	}
	return errors.ValidateNamespace(cfg.Store.Namespace)
}

// configPath returns the config file location using the XDG standard
// (~/.config/reftext/config.toml).
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
