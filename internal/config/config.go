// Package config loads server settings.
//
// Sources are applied in order, later ones winning:
// defaults, TOML file, environment, CLI flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAddr            = ":3000"
	DefaultStaticDir       = "static"
	DefaultConfigFile      = "todos.toml"
	DefaultRequestTimeout  = 3 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultStoreBackend    = StoreBackendMemory
	DefaultStoreDSN        = "file::memory:"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Store backends.
const (
	StoreBackendMemory = "memory"
	StoreBackendSQLite = "sqlite"
)

type Config struct {
	Addr            string
	StaticDir       string
	Seed            bool
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	Store           StoreConfig
	Log             LogConfig
}

type StoreConfig struct {
	Backend string
	DSN     string
}

type LogConfig struct {
	Level  string
	Format string
}

func Default() Config {
	return Config{
		Addr:            DefaultAddr,
		StaticDir:       DefaultStaticDir,
		Seed:            true,
		RequestTimeout:  DefaultRequestTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		Store: StoreConfig{
			Backend: DefaultStoreBackend,
			DSN:     DefaultStoreDSN,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load builds the config from all sources. fs receives the CLI flags; args
// are usually os.Args[1:].
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Default()

	var configPath string
	fs.StringVar(&configPath, "config", "", "path to a TOML config file (env TODOS_CONFIG)")
	addr := fs.String("addr", "", "listen address")
	staticDir := fs.String("static-dir", "", "directory served under /static/")
	seed := fs.String("seed", "", "start with the seed todos (true|false)")
	backend := fs.String("store", "", "store backend (memory|sqlite)")
	logLevel := fs.String("log-level", "", "log level (debug|info|warn|error)")
	logFormat := fs.String("log-format", "", "log format (text|json|logfmt)")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parsing flags: %w", err)
	}

	if configPath == "" {
		configPath = os.Getenv("TODOS_CONFIG")
	}
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigFile
	}
	if err := loadFile(&cfg, configPath, explicit); err != nil {
		return Config{}, err
	}

	if err := loadEnv(&cfg); err != nil {
		return Config{}, err
	}

	if *addr != "" {
		cfg.Addr = *addr
	}
	if *staticDir != "" {
		cfg.StaticDir = *staticDir
	}
	if *seed != "" {
		v, err := strconv.ParseBool(*seed)
		if err != nil {
			return Config{}, fmt.Errorf("-seed: %w", err)
		}
		cfg.Seed = v
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile decodes path over cfg. A missing file is only an error when the
// path was given explicitly.
func loadFile(cfg *Config, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	var raw fileConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return fmt.Errorf("decoding config file %s: %w", path, err)
	}
	return raw.apply(cfg)
}

// fileConfig mirrors Config with pointer fields so absent keys keep defaults.
type fileConfig struct {
	Addr            *string `toml:"addr"`
	StaticDir       *string `toml:"static_dir"`
	Seed            *bool   `toml:"seed"`
	RequestTimeout  *string `toml:"request_timeout"`
	ShutdownTimeout *string `toml:"shutdown_timeout"`
	Store           struct {
		Backend *string `toml:"backend"`
		DSN     *string `toml:"dsn"`
	} `toml:"store"`
	Log struct {
		Level  *string `toml:"level"`
		Format *string `toml:"format"`
	} `toml:"log"`
}

func (f fileConfig) apply(cfg *Config) error {
	setString(&cfg.Addr, f.Addr)
	setString(&cfg.StaticDir, f.StaticDir)
	if f.Seed != nil {
		cfg.Seed = *f.Seed
	}
	if f.RequestTimeout != nil {
		d, err := time.ParseDuration(*f.RequestTimeout)
		if err != nil {
			return fmt.Errorf("request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if f.ShutdownTimeout != nil {
		d, err := time.ParseDuration(*f.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("shutdown_timeout: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	setString(&cfg.Store.Backend, f.Store.Backend)
	setString(&cfg.Store.DSN, f.Store.DSN)
	setString(&cfg.Log.Level, f.Log.Level)
	setString(&cfg.Log.Format, f.Log.Format)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func loadEnv(cfg *Config) error {
	if v := os.Getenv("TODOS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TODOS_STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv("TODOS_SEED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TODOS_SEED: %w", err)
		}
		cfg.Seed = b
	}
	if v := os.Getenv("TODOS_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TODOS_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("TODOS_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TODOS_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if v := os.Getenv("TODOS_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("TODOS_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("TODOS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TODOS_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be positive")
	}
	switch c.Store.Backend {
	case StoreBackendMemory:
	case StoreBackendSQLite:
		if !IsMemoryDSN(c.Store.DSN) {
			return fmt.Errorf("store dsn %q is not an in-memory database", c.Store.DSN)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// IsMemoryDSN reports whether a SQLite DSN names an in-memory database.
// The list resets on every restart, so file databases are refused. An empty
// DSN means the default.
func IsMemoryDSN(dsn string) bool {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:") {
		return true
	}
	if !strings.HasPrefix(dsn, "file:") {
		return false
	}
	_, query, ok := strings.Cut(dsn, "?")
	if !ok {
		return false
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return false
	}
	return values.Get("mode") == "memory"
}
