package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	WithComponent(logger, "replay").Info("drained", slog.Int("sent", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO replay: drained") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "sent=3") {
		t.Fatalf("expected sent attr in %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Warn("enqueue failed", slog.String("reason", "disk full"))

	if !strings.Contains(buf.String(), `reason="disk full"`) {
		t.Fatalf("expected quoted value in %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if ParseLevel("bogus") != slog.LevelInfo {
		t.Fatal("expected info fallback")
	}
	if ParseLevel("debug") != slog.LevelDebug {
		t.Fatal("expected debug")
	}
}

func TestNewReturnsAdjustableLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kai.log")
	logger, levelVar, err := New(Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Debug("before")
	levelVar.Set(slog.LevelDebug)
	logger.Debug("after")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "before") {
		t.Fatalf("debug line before lowering the level should be filtered: %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Fatalf("debug line after lowering the level missing: %q", out)
	}
}

func TestConsoleHandlerClonesShareWriterLock(t *testing.T) {
	var buf bytes.Buffer
	base := newConsoleHandler(&buf, new(slog.LevelVar)).(*consoleHandler)
	clone := base.WithAttrs([]slog.Attr{slog.String("component", "replay")}).(*consoleHandler)

	if base.mu != clone.mu {
		t.Fatal("derived handlers must serialize writes through the same lock")
	}
}
