// Package config provides the configuration loader for snapkeep.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable that points at the configuration file.
const EnvConfigFile = "SNAPKEEP_CONFIG"

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file and the process environment.
type FileConfigLoader struct {
	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// NewLoader creates a loader reading the process environment.
func NewLoader() *FileConfigLoader {
	return &FileConfigLoader{Getenv: os.Getenv}
}

// Load reads the YAML file at path over the defaults, then applies environment overrides.
// A missing file is not an error; the defaults and environment still apply.
func (l *FileConfigLoader) Load(path string) (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is provided by the operator
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
			}
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve loads the configuration from the location loader reports.
func Resolve(loader ports.ConfigLoader) (*domain.Config, error) {
	path := loader.Path()
	cfg, err := loader.Load(path)
	if err != nil {
		return nil, zerr.With(err, "config", path)
	}
	return cfg, nil
}

// Path resolves the configuration file location from the environment.
func (l *FileConfigLoader) Path() string {
	if p := l.getenv(EnvConfigFile); p != "" {
		return p
	}
	return domain.DefaultConfigFile
}

func (l *FileConfigLoader) getenv(key string) string {
	if l.Getenv == nil {
		return os.Getenv(key)
	}
	return l.Getenv(key)
}

func (l *FileConfigLoader) applyEnv(cfg *domain.Config) error {
	overrides := []struct {
		key string
		dst *string
	}{
		{"RABBITMQ_URL", &cfg.Broker.URL},
		{"SNAPKEEP_BROKER_DRIVER", &cfg.Broker.Driver},
		{"SNAPKEEP_WRITE_QUEUE", &cfg.Broker.WriteQueue},
		{"REDIS_URL", &cfg.Cache.URL},
		{"SNAPKEEP_CACHE_TIER", &cfg.Cache.Tier},
		{"DATABASE_PATH", &cfg.Store.Path},
		{"DATABASE_ROOT_DATA_PATH", &cfg.Store.RootDataPath},
		{"ENTRY_RECIPE", &cfg.Store.EntryRecipe},
		{"OUTRY_RECIPE", &cfg.Store.OutryRecipe},
		{"SPOT_TIME_FRAME", &cfg.Store.SpotTimeFrame},
		{"SNAPKEEP_HASH", &cfg.Hash.Algorithm},
		{"SNAPKEEP_LOG_LEVEL", &cfg.Log.Level},
	}
	for _, s := range overrides {
		if v := l.getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	if uat, ok := l.flagEnv("IS_UAT"); ok {
		cfg.Store.UAT = uat
	}

	// Staging is checked first and wins when both flags are set.
	staging, _ := l.flagEnv("IS_STAGING")
	production, _ := l.flagEnv("IS_PRODUCTION")
	switch {
	case staging:
		cfg.Store.Mode = domain.ModeStaging
	case production:
		cfg.Store.Mode = domain.ModeProduction
	}

	if v := l.getenv("SNAPKEEP_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, err.Error()), "key", "SNAPKEEP_POLL_INTERVAL")
		}
		cfg.Broker.PollInterval = d
	}
	return nil
}

// flagEnv reads a deployment flag. Only "TRUE", in any case, turns a flag on;
// any other non-empty value turns it off. ok is false when the variable is unset.
func (l *FileConfigLoader) flagEnv(key string) (value, ok bool) {
	v := l.getenv(key)
	if v == "" {
		return false, false
	}
	return strings.EqualFold(v, "TRUE"), true
}
