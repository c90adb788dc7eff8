package predict

import (
	"net/url"
	"strings"
	"time"
)

// Config holds prediction client configuration
type Config struct {
	// BaseURL is the prediction service root
	BaseURL string `json:"base_url"`

	// PredictPath is appended to BaseURL
	PredictPath string `json:"predict_path"`

	// FieldName is the multipart part carrying the image
	FieldName string `json:"field_name"`

	// Timeout for a single request; zero disables it
	Timeout time.Duration `json:"timeout"`

	// MaxUploadBytes caps the size of a selected file; zero disables the cap
	MaxUploadBytes int64 `json:"max_upload_bytes"`
}

// DefaultConfig returns the default client configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://localhost:5001",
		PredictPath:    "/predict",
		FieldName:      "image",
		Timeout:        0,
		MaxUploadBytes: 20 << 20,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return NewConfigurationError("base_url", "base URL is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return NewConfigurationError("base_url", "invalid base URL: "+err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewConfigurationError("base_url", "base URL must use http or https")
	}
	if u.Host == "" {
		return NewConfigurationError("base_url", "base URL must include a host")
	}

	if !strings.HasPrefix(c.PredictPath, "/") {
		return NewConfigurationError("predict_path", "predict path must start with '/'")
	}

	if strings.TrimSpace(c.FieldName) == "" {
		return NewConfigurationError("field_name", "field name is required")
	}

	if c.Timeout < 0 {
		return NewConfigurationError("timeout", "timeout must be non-negative")
	}

	if c.MaxUploadBytes < 0 {
		return NewConfigurationError("max_upload_bytes", "max upload bytes must be non-negative")
	}

	return nil
}
