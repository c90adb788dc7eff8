package predict

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokyo.jpg")
	if err := os.WriteFile(path, []byte("jpeg bytes"), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	file, err := LoadFile(path, 0)
	if err != nil {
		t.Fatalf("Failed to load file: %v", err)
	}

	if file.Name != "tokyo.jpg" {
		t.Errorf("Expected base name tokyo.jpg, got %s", file.Name)
	}
	if file.ContentType != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", file.ContentType)
	}
	if file.Size() != int64(len("jpeg bytes")) {
		t.Errorf("Unexpected size %d", file.Size())
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.png")
	if err := os.WriteFile(big, make([]byte, 2048), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		maxBytes   int64
		validation bool
	}{
		{name: "empty path", path: "", validation: true},
		{name: "directory", path: dir, validation: true},
		{name: "too large", path: big, maxBytes: 1024, validation: true},
		{name: "missing", path: filepath.Join(dir, "nope.png"), validation: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(tt.path, tt.maxBytes)
			if err == nil {
				t.Fatal("Expected error")
			}
			if IsValidationError(err) != tt.validation {
				t.Errorf("Expected validation=%v, got %v", tt.validation, err)
			}
		})
	}
}

func TestNewFileSniffsUnknownExtension(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	file := NewFile("/tmp/upload.bin-unknown", png)

	if file.ContentType != "image/png" {
		t.Errorf("Expected sniffed image/png, got %s", file.ContentType)
	}
	if file.Name != "upload.bin-unknown" {
		t.Errorf("Expected base name, got %s", file.Name)
	}

	empty := NewFile("blob", nil)
	if empty.ContentType != "application/octet-stream" {
		t.Errorf("Expected octet-stream for empty data, got %s", empty.ContentType)
	}
}

func TestIsImageName(t *testing.T) {
	exts := []string{".jpg", "jpeg", ".PNG"}

	tests := []struct {
		name     string
		expected bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"photo.png", true},
		{"photo.gif", false},
		{"README", false},
		{".jpg.swp", false},
	}

	for _, tt := range tests {
		if got := IsImageName(tt.name, exts); got != tt.expected {
			t.Errorf("IsImageName(%q) = %v, expected %v", tt.name, got, tt.expected)
		}
	}
}
