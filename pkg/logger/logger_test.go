package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitConfiguresGlobalLogger(t *testing.T) {
	t.Cleanup(func() {
		Replace(nil)
	})

	if err := Init(Options{Level: "debug"}); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	logger := Logger()
	if logger == nil {
		t.Fatal("expected Logger to return non-nil logger")
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected logger to enable debug level")
	}
}

func TestInitFallsBackToInfoOnBadLevel(t *testing.T) {
	t.Cleanup(func() {
		Replace(nil)
	})

	if err := Init(Options{Level: "loud", Format: "console"}); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	core := Logger().Core()
	if core.Enabled(zap.DebugLevel) {
		t.Fatal("expected debug to be disabled")
	}
	if !core.Enabled(zap.InfoLevel) {
		t.Fatal("expected info to be enabled")
	}
}

func TestWithModuleAddsField(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	t.Cleanup(func() {
		Replace(nil)
	})
	Replace(zap.New(core))

	logger := WithModule("drinks")
	logger.Info("module test")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if module := entries[0].ContextMap()["module"]; module != "drinks" {
		t.Fatalf("expected module field to be \"drinks\", got %v", module)
	}
}
