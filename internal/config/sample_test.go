package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSampleConfigsAreValid(t *testing.T) {
	samples := map[string]string{
		"full":    SampleConfig(),
		"minimal": MinimalSampleConfig(),
	}

	for name, sample := range samples {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sample.yaml")
			writeFile(t, path, sample)

			cfg, err := NewLoader().LoadConfig(path)
			if err != nil {
				t.Fatalf("Sample config failed to load: %v", err)
			}
			if cfg.Service.FieldName != "image" {
				t.Errorf("Expected field name image, got %s", cfg.Service.FieldName)
			}
		})
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := WriteSample(path, true, false); err != nil {
		t.Fatalf("Failed to write sample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read sample: %v", err)
	}
	if string(data) != MinimalSampleConfig() {
		t.Error("Expected minimal sample content")
	}

	err = WriteSample(path, false, false)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected refusal to overwrite, got %v", err)
	}

	if err := WriteSample(path, false, true); err != nil {
		t.Fatalf("Expected forced overwrite to succeed: %v", err)
	}
}

func TestMarshalRoundTripsThroughLoader(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Service.BaseURL = "http://elsewhere:9000"

	data, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded Config
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Marshalled config is not valid YAML: %v", err)
	}
	if decoded.Service.BaseURL != "http://elsewhere:9000" {
		t.Errorf("Expected base URL to survive, got %s", decoded.Service.BaseURL)
	}
}
