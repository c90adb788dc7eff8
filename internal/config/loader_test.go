package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolatedLoader(paths ...string) *Loader {
	l := NewLoader()
	l.configPaths = paths
	l.warn = func(string, ...interface{}) {}
	return l
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	loader := isolatedLoader(filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	if cfg.Service.BaseURL != "http://localhost:5001" {
		t.Errorf("Expected default base URL, got %s", cfg.Service.BaseURL)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	writeFile(t, configPath, `version: "1.0"
service:
  base_url: "http://predictor:8080"
  timeout: 15s
output:
  default_format: "json"
  verbose: true
regions:
  Japan: "にほん"
`)

	cfg, err := NewLoader().LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	if cfg.Service.BaseURL != "http://predictor:8080" {
		t.Errorf("Expected base URL from file, got %s", cfg.Service.BaseURL)
	}
	if cfg.Service.Timeout != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", cfg.Service.Timeout)
	}
	if cfg.Service.PredictPath != "/predict" {
		t.Errorf("Expected unset keys to keep defaults, got %s", cfg.Service.PredictPath)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("Expected output format json, got %s", cfg.Output.DefaultFormat)
	}
	if !cfg.Output.Verbose {
		t.Error("Expected verbose to be true")
	}
	if !cfg.Output.ShowPreview {
		t.Error("Expected show_preview default to survive a file that omits it")
	}
	if cfg.Regions["Japan"] != "にほん" {
		t.Errorf("Expected region override, got %q", cfg.Regions["Japan"])
	}
}

func TestLoadConfigPriority(t *testing.T) {
	dir := t.TempDir()
	high := filepath.Join(dir, "high.yaml")
	low := filepath.Join(dir, "low.yaml")

	writeFile(t, low, `service:
  base_url: "http://low:1"
  field_name: "upload"
regions:
  Asia: "亜細亜"
`)
	writeFile(t, high, `service:
  base_url: "http://high:2"
regions:
  Europe: "欧州"
`)

	cfg, err := isolatedLoader(high, low).LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Service.BaseURL != "http://high:2" {
		t.Errorf("Expected higher priority file to win, got %s", cfg.Service.BaseURL)
	}
	if cfg.Service.FieldName != "upload" {
		t.Errorf("Expected lower priority value to survive, got %s", cfg.Service.FieldName)
	}
	if cfg.Regions["Asia"] != "亜細亜" || cfg.Regions["Europe"] != "欧州" {
		t.Errorf("Expected regions merged across files, got %v", cfg.Regions)
	}
}

func TestLoadConfigBrokenFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	writeFile(t, broken, "service: [unclosed\n")

	var warnings []string
	loader := isolatedLoader(broken)
	loader.warn = func(format string, args ...interface{}) {
		warnings = append(warnings, format)
	}

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("Expected broken search-path file to be skipped, got %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("Expected one warning, got %d", len(warnings))
	}
	if cfg.Service.BaseURL != "http://localhost:5001" {
		t.Errorf("Expected defaults, got %s", cfg.Service.BaseURL)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid-config.yaml")
	writeFile(t, configPath, `service:
  base_url: "http://localhost:5001
  timeout: 5s
`)

	if _, err := NewLoader().LoadConfig(configPath); err == nil {
		t.Error("Expected error loading invalid YAML config, but got none")
	}
}

func TestLoadConfigValidationFailure(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, configPath, "output:\n  default_format: xml\n")

	_, err := NewLoader().LoadConfig(configPath)
	if err == nil || !strings.Contains(err.Error(), "configuration validation failed") {
		t.Errorf("Expected validation failure, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("REGIONLENS_SERVICE_BASE_URL", "https://api.example.com")
	t.Setenv("REGIONLENS_SERVICE_TIMEOUT", "2s")
	t.Setenv("REGIONLENS_SERVICE_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("REGIONLENS_OUTPUT_VERBOSE", "true")
	t.Setenv("REGIONLENS_OUTPUT_PREVIEW_WIDTH", "48")
	t.Setenv("REGIONLENS_WATCH_EXTENSIONS", ".jpg, .webp ,")

	cfg := DefaultConfig()
	if err := NewLoader().applyEnvOverrides(cfg); err != nil {
		t.Fatalf("Failed to apply env overrides: %v", err)
	}

	if cfg.Service.BaseURL != "https://api.example.com" {
		t.Errorf("Expected base URL override, got %s", cfg.Service.BaseURL)
	}
	if cfg.Service.Timeout != 2*time.Second {
		t.Errorf("Expected timeout 2s, got %v", cfg.Service.Timeout)
	}
	if cfg.Service.MaxUploadBytes != 1024 {
		t.Errorf("Expected max upload 1024, got %d", cfg.Service.MaxUploadBytes)
	}
	if !cfg.Output.Verbose {
		t.Error("Expected verbose to be true")
	}
	if cfg.Output.PreviewWidth != 48 {
		t.Errorf("Expected preview width 48, got %d", cfg.Output.PreviewWidth)
	}

	expectedExts := []string{".jpg", ".webp"}
	if len(cfg.Watch.Extensions) != len(expectedExts) {
		t.Fatalf("Expected %v, got %v", expectedExts, cfg.Watch.Extensions)
	}
	for i, ext := range expectedExts {
		if cfg.Watch.Extensions[i] != ext {
			t.Errorf("Expected extension %s, got %s", ext, cfg.Watch.Extensions[i])
		}
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"invalid int", "REGIONLENS_OUTPUT_PREVIEW_WIDTH", "wide"},
		{"invalid int64", "REGIONLENS_SERVICE_MAX_UPLOAD_BYTES", "lots"},
		{"invalid bool", "REGIONLENS_OUTPUT_VERBOSE", "not-a-bool"},
		{"invalid duration", "REGIONLENS_SERVICE_TIMEOUT", "not-a-duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			if err := NewLoader().applyEnvOverrides(DefaultConfig()); err == nil {
				t.Error("Expected error for invalid env var value, but got none")
			}
		})
	}
}

func TestParseHelpers(t *testing.T) {
	var d time.Duration
	if err := parseDuration("30s", &d); err != nil || d != 30*time.Second {
		t.Errorf("parseDuration: got %v, %v", d, err)
	}

	var n int
	if err := parseInt("42", &n); err != nil || n != 42 {
		t.Errorf("parseInt: got %d, %v", n, err)
	}

	var b bool
	if err := parseBool("true", &b); err != nil || !b {
		t.Errorf("parseBool: got %v, %v", b, err)
	}

	if err := parseInt("x", &n); err == nil {
		t.Error("Expected error for invalid int")
	}
}

func TestFileExists(t *testing.T) {
	if fileExists("/path/that/does/not/exist") {
		t.Error("Expected file to not exist, but fileExists returned true")
	}

	dir := t.TempDir()
	if fileExists(dir) {
		t.Error("Expected directories to be ignored")
	}

	tempFile := filepath.Join(dir, "test-file")
	writeFile(t, tempFile, "test")
	if !fileExists(tempFile) {
		t.Error("Expected file to exist, but fileExists returned false")
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{name: "valid yaml file", path: "config.yaml"},
		{name: "valid yml file", path: "config.yml"},
		{name: "path traversal attempt", path: "../../../etc/regionlens.yaml", wantErr: true, errMsg: "path traversal not allowed"},
		{name: "non-yaml file", path: "config.txt", wantErr: true, errMsg: "config file must have .yaml or .yml extension"},
		{name: "proc filesystem access", path: "/proc/version.yaml", wantErr: true, errMsg: "access to system files not allowed"},
		{name: "relative path with valid extension", path: "./configs/app.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error message to contain '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
