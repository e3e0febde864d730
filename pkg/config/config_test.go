// pkg/config/config_test.go
package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/transito-gt/tablero/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.DataDir != "./data" {
		t.Fatalf("data dir = %q", cfg.DataDir)
	}
	if cfg.CleanDir != "./data_clean" {
		t.Fatalf("clean dir = %q", cfg.CleanDir)
	}
	if cfg.ModelsPath != "./models/resumen_modelos.json" {
		t.Fatalf("models path = %q", cfg.ModelsPath)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("logging defaults = %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TABLERO_DATA_DIR", "/srv/cuadros")
	t.Setenv("TABLERO_LOG_LEVEL", "debug")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/srv/cuadros" {
		t.Fatalf("env override ignored: %q", cfg.DataDir)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablero.yaml")
	content := "data_dir: /var/lib/tablero/raw\nworker_pool_size: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/var/lib/tablero/raw" {
		t.Fatalf("file value ignored: %q", cfg.DataDir)
	}
	if cfg.WorkerPoolSize != 3 {
		t.Fatalf("worker pool size = %d", cfg.WorkerPoolSize)
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := config.NewLogger("info", format)
		if err != nil {
			t.Fatalf("new %s logger: %v", format, err)
		}
		_ = logger.Sync()
	}

	if _, err := config.NewLogger("chatty", "json"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
