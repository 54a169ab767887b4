package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitAndLoggingToFile(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "nested", "winnow.log")

	if err := Init(logPath); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
	})

	LogEvent("sampled %s: %d -> %d", "model.json", 3546, 10)
	_ = Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "sampled model.json: 3546 -> 10") {
		t.Fatalf("expected LogEvent content, got: %s", data)
	}
}

func TestInitWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	if err := Init(""); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
		log.SetOutput(os.Stderr)
	})

	// Init replaces the captured writer with stdout only.
	LogEvent("stdout only")
	if buf.Len() != 0 {
		t.Fatalf("expected no output in replaced writer, got: %s", buf.String())
	}
}

func TestCloseWithoutInit(t *testing.T) {
	if err := Close(); err != nil {
		t.Fatalf("Close without open file: %v", err)
	}
}
