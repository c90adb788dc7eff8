package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/RegionLens/internal/predict"
	"github.com/yildizm/RegionLens/internal/regions"
	"github.com/yildizm/RegionLens/internal/ui"
)

// Config holds the complete application configuration
type Config struct {
	Version string            `yaml:"version" json:"version"`
	Service ServiceConfig     `yaml:"service" json:"service"`
	Output  OutputConfig      `yaml:"output" json:"output"`
	Watch   WatchConfig       `yaml:"watch" json:"watch"`
	Regions map[string]string `yaml:"regions,omitempty" json:"regions,omitempty"`
}

// ServiceConfig configures the prediction service endpoint
type ServiceConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`                 // service origin
	PredictPath    string        `yaml:"predict_path" json:"predict_path"`         // path of the predict endpoint
	FieldName      string        `yaml:"field_name" json:"field_name"`             // multipart part name
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`                   // 0 waits indefinitely
	MaxUploadBytes int64         `yaml:"max_upload_bytes" json:"max_upload_bytes"` // 0 disables the limit
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`
	Theme         string `yaml:"theme" json:"theme"` // default|high-contrast|minimal
	ShowPreview   bool   `yaml:"show_preview" json:"show_preview"`
	PreviewWidth  int    `yaml:"preview_width" json:"preview_width"`
}

// WatchConfig configures directory watching
type WatchConfig struct {
	Extensions []string      `yaml:"extensions" json:"extensions"`
	Debounce   time.Duration `yaml:"debounce" json:"debounce"`
}

// Valid option values
var (
	ValidFormats    = []string{"text", "json", "markdown", "csv"}
	ValidColorModes = []string{"auto", "always", "never"}
	ValidThemes     = ui.GetAvailableThemes()
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	client := predict.DefaultConfig()

	return &Config{
		Version: "1.0",
		Service: ServiceConfig{
			BaseURL:        client.BaseURL,
			PredictPath:    client.PredictPath,
			FieldName:      client.FieldName,
			Timeout:        client.Timeout,
			MaxUploadBytes: client.MaxUploadBytes,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
			Theme:         "default",
			ShowPreview:   true,
			PreviewWidth:  32,
		},
		Watch: WatchConfig{
			Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff"},
			Debounce:   500 * time.Millisecond,
		},
		Regions: map[string]string{},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.ToClientConfig().Validate(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateWatchConfig(); err != nil {
		return err
	}
	return c.validateRegions()
}

// ToClientConfig converts the service section for the predict client
func (c *Config) ToClientConfig() *predict.Config {
	return &predict.Config{
		BaseURL:        c.Service.BaseURL,
		PredictPath:    c.Service.PredictPath,
		FieldName:      c.Service.FieldName,
		Timeout:        c.Service.Timeout,
		MaxUploadBytes: c.Service.MaxUploadBytes,
	}
}

// RegionTable returns the default region table with configured overrides applied
func (c *Config) RegionTable() *regions.Table {
	return regions.Default().WithOverrides(c.Regions)
}

func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" && !contains(ValidFormats, c.Output.DefaultFormat) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.DefaultFormat, strings.Join(ValidFormats, ", "))
	}
	if c.Output.ColorMode != "" && !contains(ValidColorModes, c.Output.ColorMode) {
		return fmt.Errorf("invalid color mode: %s (must be one of: %s)", c.Output.ColorMode, strings.Join(ValidColorModes, ", "))
	}
	if c.Output.Theme != "" && !contains(ValidThemes, c.Output.Theme) {
		return fmt.Errorf("invalid theme: %s (must be one of: %s)", c.Output.Theme, strings.Join(ValidThemes, ", "))
	}
	if c.Output.PreviewWidth < 0 {
		return fmt.Errorf("preview_width must be non-negative")
	}
	return nil
}

func (c *Config) validateWatchConfig() error {
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must be non-negative")
	}
	for _, ext := range c.Watch.Extensions {
		if strings.TrimSpace(ext) == "" {
			return fmt.Errorf("watch extensions must not contain empty entries")
		}
	}
	return nil
}

func (c *Config) validateRegions() error {
	for name, display := range c.Regions {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("region names must not be empty")
		}
		if strings.TrimSpace(display) == "" {
			return fmt.Errorf("display name for region %q must not be empty", name)
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
