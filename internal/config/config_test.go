package config

import (
	"os"
	"path/filepath"
	"testing"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL",
	"CORS_ORIGIN", "JWT_KEY", "SEED_DEMO", "WS_SEND_BUFFER",
}

// clearEnv unsets every variable Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("expected port 3000, got %q", cfg.Port)
	}
	if cfg.DBDriver != DriverSQLite {
		t.Errorf("expected driver %q, got %q", DriverSQLite, cfg.DBDriver)
	}
	if cfg.SeedDemo {
		t.Error("expected demo seeding to be off")
	}
	if cfg.AuthEnabled() {
		t.Error("expected auth to be disabled")
	}
	if cfg.Addr() != ":3000" {
		t.Errorf("expected addr :3000, got %q", cfg.Addr())
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("CORS_ORIGIN", "http://localhost:5173")
	t.Setenv("JWT_KEY", "secret")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("WS_SEND_BUFFER", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" || cfg.DBPath != "/tmp/x.db" || cfg.CORSOrigin != "http://localhost:5173" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !cfg.AuthEnabled() || !cfg.SeedDemo || cfg.WSSendBuffer != 8 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_YAMLFileThenEnvironment(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "tasker.yaml")
	content := "port: \"9000\"\ndb_driver: postgres\ndatabase_url: postgres://localhost/tasker\nseed_demo: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DBDriver != DriverPostgres || cfg.DatabaseURL != "postgres://localhost/tasker" {
		t.Errorf("expected postgres settings from file, got %+v", cfg)
	}
	if !cfg.SeedDemo {
		t.Error("expected seed_demo from file")
	}
	if cfg.Port != "9100" {
		t.Errorf("expected env to override file port, got %q", cfg.Port)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)

	if err := os.WriteFile(".env", []byte("PORT=4000\nJWT_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("JWT_KEY")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "4000" || cfg.JWTKey != "from-dotenv" {
		t.Errorf("expected values from .env, got %+v", cfg)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "seed flag", key: "SEED_DEMO", val: "maybe"},
		{name: "buffer size", key: "WS_SEND_BUFFER", val: "lots"},
		{name: "driver", key: "DB_DRIVER", val: "mysql"},
		{name: "missing file", key: "CONFIG_FILE", val: "/does/not/exist.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}, wantErr: false},
		{name: "empty port", modify: func(c *Config) { c.Port = "" }, wantErr: true},
		{name: "postgres without url", modify: func(c *Config) { c.DBDriver = DriverPostgres }, wantErr: true},
		{name: "postgres with url", modify: func(c *Config) {
			c.DBDriver = DriverPostgres
			c.DatabaseURL = "postgres://localhost/tasker"
		}, wantErr: false},
		{name: "sqlite without path", modify: func(c *Config) { c.DBPath = "" }, wantErr: true},
		{name: "zero buffer", modify: func(c *Config) { c.WSSendBuffer = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
