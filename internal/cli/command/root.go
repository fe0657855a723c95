// Package command define la CLI petverse sobre urfave/cli/v2.
//
// Cada invocación arma su runtime en Before (config, secure storage, sesión)
// y lo libera en After.
package command

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"petverse/internal/adapters/securestore/badgerstore"
	pg "petverse/internal/adapters/storage/postgres"
	"petverse/internal/client/pets"
	"petverse/internal/client/records"
	"petverse/internal/client/users"
	"petverse/internal/platform/config"
	"petverse/internal/platform/httpclient"
	"petverse/internal/platform/logger"
	"petverse/internal/platform/metrics"
	"petverse/internal/ports/securestore"
	"petverse/internal/session"
	"petverse/internal/tokenstore"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

const metadataKey = "runtime"

// App crea la aplicación CLI.
func App() *cli.App {
	return &cli.App{
		Name:                      "petverse",
		Usage:                     "PetVerse client: session, pets and clinical records",
		Version:                   fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:                     globalFlags(),
		Metadata:                  map[string]any{},
		DisableSliceFlagSeparator: true,
		Commands: []*cli.Command{
			LoginCommand(),
			LoginGoogleCommand(),
			RegisterCommand(),
			WhoamiCommand(),
			LogoutCommand(),
			PetsCommand(),
			SettingsCommand(),
			AddressCommand(),
			RecordsCommand(),
		},
		Before: before,
		After:  after,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML config file",
			EnvVars: []string{"PETVERSE_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:  "api-url",
			Usage: "Backend base URL (overrides config and PETVERSE_API_URL)",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "Secure storage backend: memory, badger, postgres",
		},
		&cli.StringFlag{
			Name:  "badger-dir",
			Usage: "Directory of the badger secure storage",
		},
		&cli.StringFlag{
			Name:  "postgres-dsn",
			Usage: "DSN of the postgres secure storage",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write client request metrics (Prometheus text format) to this file on exit",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Debug logs on stderr",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Config      string
	APIURL      string
	Store       string
	BadgerDir   string
	PostgresDSN string
	MetricsFile string
	Verbose     bool
}

func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:      c.String("config"),
		APIURL:      c.String("api-url"),
		Store:       c.String("store"),
		BadgerDir:   c.String("badger-dir"),
		PostgresDSN: c.String("postgres-dsn"),
		MetricsFile: c.String("metrics-file"),
		Verbose:     c.Bool("verbose"),
	}
}

// Runtime agrupa lo que comparten los subcomandos de una invocación.
type Runtime struct {
	Config   config.Config
	Log      logger.Logger
	HTTP     *httpclient.Client
	Session  *session.Service
	Users    *users.Client
	Pets     *pets.Client
	Records  *records.Client
	Registry *prometheus.Registry

	closers []func() error
}

func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

func GetRuntime(c *cli.Context) *Runtime {
	if rt, ok := c.App.Metadata[metadataKey].(*Runtime); ok {
		return rt
	}
	return nil
}

func before(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	cfg, err := loadConfig(flags)
	if err != nil {
		return cli.Exit("error: "+err.Error(), exitUsage)
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if flags.Verbose {
		level = logger.Debug
	}
	log := logger.New(logger.Options{
		Level:  level,
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    "petverse",
		Output: c.App.ErrWriter,
	})

	rt, err := NewRuntime(c.Context, cfg, log)
	if err != nil {
		return cli.Exit("error: "+err.Error(), exitFailure)
	}
	c.App.Metadata[metadataKey] = rt
	return nil
}

func after(c *cli.Context) error {
	rt := GetRuntime(c)
	if rt == nil {
		return nil
	}
	delete(c.App.Metadata, metadataKey)

	var errs []error
	if path := strings.TrimSpace(c.String("metrics-file")); path != "" {
		if err := prometheus.WriteToTextfile(path, rt.Registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := rt.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		rt.Log.Warn("shutdown", map[string]any{"error": err.Error()})
	}
	return nil
}

// loadConfig aplica los flags sobre lo que resolvió config.Load.
func loadConfig(flags *GlobalFlags) (config.Config, error) {
	cfg, err := config.Load(config.WithConfigFile(flags.Config))
	if err != nil {
		return config.Config{}, err
	}
	if v := strings.TrimSpace(flags.APIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(flags.Store); v != "" {
		cfg.Store.Backend = config.StoreBackend(strings.ToLower(v))
	}
	if v := strings.TrimSpace(flags.BadgerDir); v != "" {
		cfg.Store.BadgerDir = v
	}
	if v := strings.TrimSpace(flags.PostgresDSN); v != "" {
		cfg.Store.PostgresDSN = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// NewRuntime abre el secure storage elegido y arma clientes y sesión.
func NewRuntime(ctx context.Context, cfg config.Config, log logger.Logger) (*Runtime, error) {
	log = logger.OrNop(log)
	rt := &Runtime{Config: cfg, Log: log, Registry: prometheus.NewRegistry()}

	storage, closeFn, err := openStorage(ctx, cfg.Store, log)
	if err != nil {
		return nil, err
	}
	if closeFn != nil {
		rt.closers = append(rt.closers, closeFn)
	}

	hc, err := httpclient.NewWithBaseURL(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	hc.Logger = log
	hc.Observer = metrics.NewClientMetrics(rt.Registry)

	tokens := tokenstore.New(storage, tokenstore.WithLogger(log))

	rt.HTTP = hc
	rt.Session = session.New(hc, tokens, log)
	rt.Users = users.NewClient(hc)
	rt.Pets = pets.NewClient(hc)
	rt.Records = records.NewClient(hc)
	return rt, nil
}

func openStorage(ctx context.Context, cfg config.StoreConfig, log logger.Logger) (securestore.Storage, func() error, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		// sin persistencia: cada invocación arranca sin sesión
		return securestore.Unavailable{}, nil, nil

	case config.StoreBadger:
		s, err := badgerstore.Open(badgerstore.Config{Dir: cfg.BadgerDir}, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.StorePostgres:
		db, err := pg.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		store := pg.NewCredentialStore(db)
		if err := store.EnsureTable(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, closeDB(db), nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func closeDB(db *sql.DB) func() error {
	return func() error { return db.Close() }
}
