package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLoggerRejectsLevel(t *testing.T) {
	if _, err := newLogger("chatty", ""); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	logger, err := newLogger("debug", path)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Info("hello")
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Log file not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("Log file is empty")
	}
}
