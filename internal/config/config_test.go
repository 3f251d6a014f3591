package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"TODOS_CONFIG",
	"TODOS_ADDR",
	"TODOS_STATIC_DIR",
	"TODOS_SEED",
	"TODOS_REQUEST_TIMEOUT",
	"TODOS_SHUTDOWN_TIMEOUT",
	"TODOS_STORE_BACKEND",
	"TODOS_STORE_DSN",
	"TODOS_LOG_LEVEL",
	"TODOS_LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todos.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func load(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	return Load(flag.NewFlagSet("test", flag.ContinueOnError), args)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := load(t)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Fatalf("got %+v\nwant %+v", cfg, want)
	}
	if cfg.Addr != ":3000" {
		t.Errorf("Addr: got %q, want :3000", cfg.Addr)
	}
	if !cfg.Seed {
		t.Errorf("Seed: got false, want true")
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
addr = ":8081"
seed = false
request_timeout = "750ms"

[store]
backend = "sqlite"

[log]
level = "debug"
format = "json"
`)

	cfg, err := load(t, "-config", path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" {
		t.Errorf("Addr: got %q", cfg.Addr)
	}
	if cfg.Seed {
		t.Errorf("Seed: got true, want false")
	}
	if cfg.RequestTimeout != 750*time.Millisecond {
		t.Errorf("RequestTimeout: got %s", cfg.RequestTimeout)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("Store.Backend: got %q", cfg.Store.Backend)
	}
	if cfg.Store.DSN != DefaultStoreDSN {
		t.Errorf("Store.DSN: got %q, want default", cfg.Store.DSN)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log: got %+v", cfg.Log)
	}
	if cfg.StaticDir != DefaultStaticDir {
		t.Errorf("StaticDir: got %q, want default", cfg.StaticDir)
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `addr = ":9999"`)
	t.Setenv("TODOS_CONFIG", path)

	cfg, err := load(t)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("Addr: got %q", cfg.Addr)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	if _, err := load(t, "-config", filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
addr = ":1111"
static_dir = "from-file"

[log]
level = "warn"
`)
	t.Setenv("TODOS_ADDR", ":2222")
	t.Setenv("TODOS_LOG_LEVEL", "error")

	cfg, err := load(t, "-config", path, "-addr", ":3333")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"flag beats env and file", cfg.Addr, ":3333"},
		{"env beats file", cfg.Log.Level, "error"},
		{"file beats default", cfg.StaticDir, "from-file"},
		{"default when unset", cfg.Log.Format, DefaultLogFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODOS_SEED", "false")
	t.Setenv("TODOS_SHUTDOWN_TIMEOUT", "10s")
	t.Setenv("TODOS_STORE_BACKEND", "sqlite")
	t.Setenv("TODOS_STORE_DSN", "file:test?mode=memory")

	cfg, err := load(t)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed {
		t.Errorf("Seed: got true")
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout: got %s", cfg.ShutdownTimeout)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.DSN != "file:test?mode=memory" {
		t.Errorf("Store: got %+v", cfg.Store)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"bad seed env", map[string]string{"TODOS_SEED": "maybe"}, nil},
		{"bad seed flag", nil, []string{"-seed", "maybe"}},
		{"bad timeout", map[string]string{"TODOS_REQUEST_TIMEOUT": "soon"}, nil},
		{"unknown backend", nil, []string{"-store", "postgres"}},
		{"file dsn", map[string]string{"TODOS_STORE_DSN": "todos.db"}, []string{"-store", "sqlite"}},
		{"unknown log format", nil, []string{"-log-format", "xml"}},
		{"unknown log level", nil, []string{"-log-level", "loud"}},
		{"unknown flag", nil, []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			if _, err := Load(fs, tt.args); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty addr", func(c *Config) { c.Addr = " " }, true},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"negative shutdown timeout", func(c *Config) { c.ShutdownTimeout = -time.Second }, true},
		{"logfmt", func(c *Config) { c.Log.Format = "logfmt" }, false},
		{"upper-case level", func(c *Config) { c.Log.Level = "DEBUG" }, false},
		{"sqlite default dsn", func(c *Config) { c.Store.Backend = StoreBackendSQLite }, false},
		{"sqlite file dsn", func(c *Config) {
			c.Store.Backend = StoreBackendSQLite
			c.Store.DSN = "file:todos.db"
		}, true},
		{"memory ignores dsn", func(c *Config) { c.Store.DSN = "todos.db" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestIsMemoryDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want bool
	}{
		{"", true},
		{":memory:", true},
		{"file::memory:", true},
		{"file::memory:?cache=shared", true},
		{"file:todos?mode=memory&cache=shared", true},
		{"file:todos.db?mode=rwc", false},
		{"file:todos.db", false},
		{"todos.db", false},
		{"/tmp/todos.db?mode=memory", false},
		{"file:todos?mode=%zz", false},
	}

	for _, tt := range tests {
		if got := IsMemoryDSN(tt.dsn); got != tt.want {
			t.Errorf("IsMemoryDSN(%q)=%v want %v", tt.dsn, got, tt.want)
		}
	}
}
