package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(body)), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Matching.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("expected default max attempts %d, got %d", defaultMaxAttempts, cfg.Matching.MaxAttempts)
	}
	if !cfg.Matching.Precheck || !cfg.UI.Confirm || !cfg.UI.Progress || !cfg.Output.Debug {
		t.Fatalf("expected boolean defaults to be enabled: %+v", cfg)
	}
	if cfg.Output.Format != FormatText {
		t.Fatalf("expected text format, got %q", cfg.Output.Format)
	}
}

func TestLoadParsesYamlOverDefaults(t *testing.T) {
	path := writeConfig(t, `
version: 1
matching:
  max_attempts: 250
  seed: 12345
output:
  dir: results
  format: JSON
ui:
  confirm: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Matching.MaxAttempts != 250 || cfg.Matching.Seed != 12345 {
		t.Fatalf("matching not parsed: %+v", cfg.Matching)
	}
	if !cfg.Matching.Precheck {
		t.Fatalf("omitted precheck should keep its default")
	}
	if cfg.Output.Format != FormatJSON {
		t.Fatalf("format = %q, want json", cfg.Output.Format)
	}
	if want := filepath.Join(filepath.Dir(path), "results"); cfg.Output.Dir != want {
		t.Fatalf("output dir = %q, want %q", cfg.Output.Dir, want)
	}
	if cfg.UI.Confirm || !cfg.UI.Progress {
		t.Fatalf("ui not parsed: %+v", cfg.UI)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := map[string]string{
		"attempts": "matching:\n  max_attempts: 0\n",
		"parallel": "matching:\n  parallel: -1\n",
		"format":   "output:\n  format: xml\n",
		"version":  "version: -2\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	if _, err := Load(writeConfig(t, "matching: [unterminated")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "matching:\n  max_attempts: 10\n")
	t.Setenv("SANTA_MAX_ATTEMPTS", "42")
	t.Setenv("SANTA_PRECHECK", "false")
	t.Setenv("SANTA_OUTPUT_FORMAT", "json")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Matching.MaxAttempts != 42 {
		t.Fatalf("max attempts = %d, want 42", cfg.Matching.MaxAttempts)
	}
	if cfg.Matching.Precheck {
		t.Fatalf("precheck should be disabled by env")
	}
	if cfg.Output.Format != FormatJSON {
		t.Fatalf("format = %q, want json", cfg.Output.Format)
	}
}

func TestInitDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	path, created, err := Init(dir)
	if err != nil || !created {
		t.Fatalf("Init: created=%v err=%v", created, err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("default file should load: %v", err)
	}
	if cfg.Matching.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("unexpected attempts in default file: %d", cfg.Matching.MaxAttempts)
	}
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, created, err := Init(dir); err != nil || created {
		t.Fatalf("second Init: created=%v err=%v", created, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "version: 1\n" {
		t.Fatalf("Init overwrote an existing file")
	}
}

func TestOutputDirFallsBackToRoster(t *testing.T) {
	cfg := Default()
	if got := cfg.OutputDir(filepath.Join("lists", "family.txt")); got != "lists" {
		t.Fatalf("output dir = %q, want lists", got)
	}
	cfg.Output.Dir = "/tmp/out"
	if got := cfg.OutputDir("family.txt"); got != "/tmp/out" {
		t.Fatalf("output dir = %q", got)
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := map[string]string{"": FormatText, " JSON ": FormatJSON, "Text": FormatText, "xml": "xml"}
	for in, want := range tests {
		if got := NormalizeFormat(in); got != want {
			t.Fatalf("NormalizeFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
