package logger

import (
	"context"
	"errors"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	// Console format (default)
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize console logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	// JSON format
	err = Init(Options{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	if !DebugEnabled() {
		t.Error("debug level should be enabled")
	}

	logger = Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerInitRejectsUnknownFormat(t *testing.T) {
	if err := Init(Options{Level: "info", Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if err := Init(Options{Level: "loud", Format: "console"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerBasic(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	logger := Get()
	ctx := context.Background()
	logger.Info(ctx, "test message", String("k", "v"), Int("n", 1), Bool("b", true))
	logger.Warn(ctx, "warn message", Error(errors.New("boom")))
	logger.With(String("run_id", "abc")).Debug(ctx, "debug message")
}

func TestLoggerNamed(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	namedLogger.Info(context.Background(), "test message")
}

func TestSetLevelString(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "", "warn", "warning", "error", " INFO "} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("level %q: unexpected error %v", lvl, err)
		}
	}
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
	_ = SetLevelString("info")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Named("x").Info(context.Background(), "dropped")
}
