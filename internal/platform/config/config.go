// Package config resuelve la configuración del cliente PetVerse.
//
// Prioridad (las fuentes posteriores pisan a las anteriores):
//  1. Defaults
//  2. Archivo YAML (equivalente a la config de build)
//  3. Variables de entorno PETVERSE_*
//
// La base URL tiene además un fallback por plataforma cuando nadie la define.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix = "PETVERSE_"

	// EnvAPIURL tiene prioridad sobre cualquier otra fuente de base URL.
	EnvAPIURL = "PETVERSE_API_URL"

	DefaultAndroidBaseURL = "http://10.0.2.2:8000"
	DefaultIOSBaseURL     = "http://192.168.20.75:8000"
	DefaultWebBaseURL     = "http://192.168.20.75:8000"
)

type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StoreBadger   StoreBackend = "badger"
	StorePostgres StoreBackend = "postgres"
)

type Config struct {
	Platform string      `koanf:"platform"`
	API      APIConfig   `koanf:"api"`
	Store    StoreConfig `koanf:"store"`
	Log      LogConfig   `koanf:"log"`
}

type APIConfig struct {
	BaseURL string        `koanf:"base_url"`
	URL     string        `koanf:"url"` // alias que llega desde PETVERSE_API_URL
	Timeout time.Duration `koanf:"timeout"`
}

type StoreConfig struct {
	Backend     StoreBackend `koanf:"backend"`
	BadgerDir   string       `koanf:"badger_dir"`
	PostgresDSN string       `koanf:"postgres_dsn"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default devuelve la config base, sin base URL (se resuelve en Load).
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Platform: runtime.GOOS,
		API: APIConfig{
			Timeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Backend:   StoreBadger,
			BadgerDir: filepath.Join(home, ".petverse", "secure"),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// DefaultConfigPath es ~/.petverse/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".petverse", "config.yaml")
}

type loadOptions struct {
	file string
}

type Option func(*loadOptions)

// WithConfigFile usa ese archivo. Si no existe, se ignora.
func WithConfigFile(path string) Option {
	return func(o *loadOptions) { o.file = path }
}

// Load arma la Config final y resuelve API.BaseURL.
func Load(opts ...Option) (Config, error) {
	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")

	if path := strings.TrimSpace(o.file); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	// PETVERSE_STORE_BADGER_DIR -> store.badger_dir (solo el primer "_" separa sección)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.API.BaseURL = ResolveBaseURL(cfg.API.URL, cfg.API.BaseURL, cfg.Platform)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, found := strings.Cut(s, "_")
	if !found {
		return section
	}
	return section + "." + rest
}

// ResolveBaseURL: env > valor configurado > fallback de plataforma.
func ResolveBaseURL(envURL, configured, platform string) string {
	if v := strings.TrimSpace(envURL); v != "" {
		return v
	}
	if v := strings.TrimSpace(configured); v != "" {
		return v
	}
	return PlatformFallback(platform)
}

func PlatformFallback(platform string) string {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "android":
		return DefaultAndroidBaseURL
	case "web", "js", "wasm":
		return DefaultWebBaseURL
	default:
		return DefaultIOSBaseURL
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api base url must not be empty")
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be > 0")
	}
	switch c.Store.Backend {
	case StoreMemory:
	case StoreBadger:
		if strings.TrimSpace(c.Store.BadgerDir) == "" {
			return errors.New("store.badger_dir must not be empty for badger backend")
		}
	case StorePostgres:
		if strings.TrimSpace(c.Store.PostgresDSN) == "" {
			return errors.New("store.postgres_dsn must not be empty for postgres backend")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	return nil
}
