package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello")
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Error("expected log output to contain message")
	}

	if NewLogger(nil) == nil {
		t.Error("expected logger with nil writer to default to stderr")
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trackdown.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create file logger: %v", err)
	}

	logger.Info("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !bytes.Contains(data, []byte("written to file")) {
		t.Error("expected log file to contain message")
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()

	if len(a) != 36 {
		t.Errorf("expected 36-character uuid, got %d", len(a))
	}
	if a == b {
		t.Error("expected unique ids")
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("failed to generate state: %v", err)
	}
	b, _ := GenerateState()

	if len(a) != 32 {
		t.Errorf("expected 32 hex characters, got %d", len(a))
	}
	if a == b {
		t.Error("expected unique state tokens")
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]int{"count": 3}

	compact, err := MarshalJSON(data, false)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	pretty, err := MarshalJSON(data, true)
	if err != nil {
		t.Fatalf("failed to marshal pretty: %v", err)
	}

	if bytes.Contains(compact, []byte("\n")) {
		t.Error("compact output should not contain newlines")
	}
	if !bytes.Contains(pretty, []byte("\n")) {
		t.Error("pretty output should contain newlines")
	}
}

func TestVerifyAndReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("contents"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	data, err := VerifyAndReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != "contents" {
		t.Errorf("unexpected contents: %s", data)
	}

	if _, err := VerifyAndReadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := VerifyAndReadFile(dir); err == nil {
		t.Error("expected error for directory")
	}
}
