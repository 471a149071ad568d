package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gusamyky/ftpfs/internal/bytesize"
	"github.com/gusamyky/ftpfs/pkg/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func TestLoad_DefaultsApplied(t *testing.T) {
	configPath := writeConfig(t, `
logging:
  level: "INFO"

database:
  type: sqlite
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Expected default port %d, got %d", DefaultPort, cfg.Server.Port)
	}
	if cfg.Server.MaxConnections != DefaultMaxConnections {
		t.Errorf("Expected default max_connections %d, got %d", DefaultMaxConnections, cfg.Server.MaxConnections)
	}
	if cfg.Server.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("Expected default idle_timeout %v, got %v", DefaultIdleTimeout, cfg.Server.IdleTimeout)
	}
	if cfg.Server.MaxUploadSize != DefaultMaxUploadSize {
		t.Errorf("Expected default max_upload_size %v, got %v", DefaultMaxUploadSize, cfg.Server.MaxUploadSize)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.Type != store.DatabaseTypeSQLite {
		t.Errorf("Expected sqlite database, got %q", cfg.Database.Type)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config so the
	// server can run without one for quick testing.
	nonExistentPath := filepath.Join(t.TempDir(), "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Expected default port %d, got %d", DefaultPort, cfg.Server.Port)
	}
}

func TestLoad_HumanReadableSizes(t *testing.T) {
	configPath := writeConfig(t, `
server:
  port: 3030
  max_upload_size: 5Mi
  socket_buffer_size: 8Ki
  idle_timeout: 90s
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 3030 {
		t.Errorf("Expected port 3030, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadSize != 5*bytesize.MiB {
		t.Errorf("Expected max_upload_size 5Mi, got %v", cfg.Server.MaxUploadSize)
	}
	if cfg.Server.SocketBufferSize != 8*bytesize.KiB {
		t.Errorf("Expected socket_buffer_size 8Ki, got %v", cfg.Server.SocketBufferSize)
	}
	if cfg.Server.IdleTimeout != 90*time.Second {
		t.Errorf("Expected idle_timeout 90s, got %v", cfg.Server.IdleTimeout)
	}
}

func TestLoad_IntegerSizes(t *testing.T) {
	// Raw integers are accepted as byte counts.
	configPath := writeConfig(t, `
server:
  max_upload_size: 1048576
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server.MaxUploadSize != bytesize.MiB {
		t.Errorf("Expected 1MiB, got %v", cfg.Server.MaxUploadSize)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "server: [not a map\n")

	if _, err := Load(configPath); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(cfg *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			mutate:  func(cfg *Config) { cfg.Logging.Level = "TRACE" },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "zero max connections",
			mutate:  func(cfg *Config) { cfg.Server.MaxConnections = -1 },
			wantErr: true,
		},
		{
			name:    "negative idle timeout",
			mutate:  func(cfg *Config) { cfg.Server.IdleTimeout = -time.Second },
			wantErr: true,
		},
		{
			name: "metrics enabled without valid port",
			mutate: func(cfg *Config) {
				cfg.Metrics.Enabled = true
				cfg.Metrics.Port = -1
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Server.Port = 4040
	cfg.Logging.Level = "DEBUG"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Saved config missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if loaded.Server.Port != 4040 {
		t.Errorf("Expected port 4040, got %d", loaded.Server.Port)
	}
	if loaded.Logging.Level != "DEBUG" {
		t.Errorf("Expected level DEBUG, got %q", loaded.Logging.Level)
	}
}

func TestInitConfigToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	written, err := InitConfigToPath(path, false)
	if err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}
	if written != path {
		t.Errorf("Expected path %q, got %q", path, written)
	}

	// A second init without --force must refuse to overwrite.
	if _, err := InitConfigToPath(path, false); err == nil {
		t.Error("Expected error when config already exists")
	}
	if _, err := InitConfigToPath(path, true); err != nil {
		t.Errorf("Force overwrite failed: %v", err)
	}

	// The sample must load and validate cleanly.
	if _, err := Load(path); err != nil {
		t.Errorf("Sample config failed to load: %v", err)
	}
}
