package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestSetupDefaults(t *testing.T) {
	cfg, err := Setup("", nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.LogLevel != "info" || cfg.DefaultMode != "pvp" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.HeartbeatInterval != 15*time.Second || cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
}

func TestSetupMissingFileIsIgnored(t *testing.T) {
	if _, err := Setup(filepath.Join(t.TempDir(), "missing.env"), nil); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestSetupPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.env")
	content := "ADDR=:7000\nLOG_LEVEL=debug\nHEARTBEAT_INTERVAL=3s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TTT_LOG_LEVEL", "warn")
	t.Setenv("TTT_SHUTDOWN_TIMEOUT", "2s")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	if err := flags.Parse([]string{"--mode=ai"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Setup(path, flags)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("file should set addr, got %q", cfg.Addr)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("env should beat file, got %q", cfg.LogLevel)
	}
	if cfg.HeartbeatInterval != 3*time.Second || cfg.ShutdownTimeout != 2*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.DefaultMode != "ai" {
		t.Fatalf("flag should set mode, got %q", cfg.DefaultMode)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger(Config{LogLevel: "debug", LogDevelopment: true}); err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if _, err := NewLogger(Config{LogLevel: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
