package logx

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestNewRunIDIsUUIDv4(t *testing.T) {
	id := NewRunID()
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.Version() != 4 {
		t.Fatalf("expected uuid v4 run id, got %q", id)
	}
	if NewRunID() == id {
		t.Fatalf("expected a fresh run id per call")
	}
}

func TestRunIDContextRoundTrip(t *testing.T) {
	if got := RunIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty run id, got %q", got)
	}
	ctx := WithRunID(context.Background(), "abc")
	if got := RunIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected run id %q, got %q", "abc", got)
	}
	if LoggerWithRunID(ctx) == nil {
		t.Fatalf("expected logger")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv(envLogLevel, "DEBUG")
	t.Setenv(envLogFormat, "json")
	t.Setenv(envLogOutput, "bogus")
	t.Setenv(envLogFileMaxSizeMB, "-3")

	cfg := LoadConfig("sandbox-runner")
	if cfg.Level != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Format)
	}
	if cfg.Output != defaultOutput {
		t.Fatalf("expected fallback output %q, got %q", defaultOutput, cfg.Output)
	}
	if cfg.MaxSizeMB != defaultMaxSizeMB {
		t.Fatalf("expected fallback max size, got %d", cfg.MaxSizeMB)
	}
}

func TestParseLevelDefaultsToWarn(t *testing.T) {
	if got := ParseLevel("whatever"); got != slog.LevelWarn {
		t.Fatalf("expected warn, got %v", got)
	}
}

func TestInitWithFileOutput(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := LoadConfig("sandbox-runner")
	cfg.Output = "file"
	cfg.FilePath = filepath.Join(t.TempDir(), "nested", "runner.log")

	logger, closeFn, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	logger.Warn("hello")
	if err := closeFn(); err != nil {
		t.Fatalf("close error = %v", err)
	}
}
