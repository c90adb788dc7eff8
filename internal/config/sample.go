package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# RegionLens configuration
version: "1.0"

# Prediction service
service:
  base_url: "http://localhost:5001"
  predict_path: "/predict"
  # Multipart part carrying the image
  field_name: "image"
  # 0 waits indefinitely
  timeout: 0s
  # Files larger than this are rejected before upload; 0 disables the check
  max_upload_bytes: 20971520

output:
  # text | json | markdown | csv
  default_format: "text"
  # auto | always | never
  color_mode: "auto"
  verbose: false
  # default | high-contrast | minimal
  theme: "default"
  show_preview: true
  preview_width: 32

watch:
  extensions: [".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff"]
  debounce: 500ms

# Display names shown next to predicted regions. Entries here replace or
# extend the built-in table.
regions:
  Japan: "日本"
`
}

// MinimalSampleConfig returns the smallest useful configuration file
func MinimalSampleConfig() string {
	return `service:
  base_url: "http://localhost:5001"
output:
  default_format: "text"
`
}

// WriteSample writes a sample configuration to path. It refuses to
// overwrite an existing file unless force is set.
func WriteSample(path string, minimal, force bool) error {
	if err := validateConfigPath(path); err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}
	if fileExists(path) && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	content := SampleConfig()
	if minimal {
		content = MinimalSampleConfig()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders a configuration as YAML
func Marshal(c *Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
