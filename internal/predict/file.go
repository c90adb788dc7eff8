package predict

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// sniffLen is the prefix http.DetectContentType inspects
const sniffLen = 512

// NewFile builds a File from in-memory data, deriving the content type from
// the extension and falling back to content sniffing
func NewFile(name string, data []byte) *File {
	return &File{
		Name:        filepath.Base(name),
		ContentType: detectContentType(name, data),
		Data:        data,
	}
}

// LoadFile reads a file from disk for submission.
// maxBytes of zero disables the size check.
func LoadFile(path string, maxBytes int64) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoFile
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return nil, NewError(ErrTypeValidation, fmt.Sprintf("%s is a directory, not an image file", cleanPath))
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, NewError(ErrTypeValidation, fmt.Sprintf("file is %s, larger than the %s limit",
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(maxBytes))))
	}

	// #nosec G304 - path is chosen by the user on purpose
	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := io.Reader(f)
	if maxBytes > 0 {
		// the file may grow between Stat and Read
		reader = io.LimitReader(f, maxBytes+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, NewError(ErrTypeValidation, fmt.Sprintf("file is larger than the %s limit", humanize.Bytes(uint64(maxBytes))))
	}

	return NewFile(cleanPath, data), nil
}

// IsImageName reports whether the filename has one of the given extensions.
// Extensions are compared case-insensitively and may omit the leading dot.
func IsImageName(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if e == ext {
			return true
		}
	}
	return false
}

func detectContentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	return http.DetectContentType(data)
}
