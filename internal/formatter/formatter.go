package formatter

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/yildizm/RegionLens/internal/regions"
	"github.com/yildizm/RegionLens/internal/session"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(snap *session.Snapshot) ([]byte, error)
}

// Supported format names
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// New returns the formatter for a format name. A nil table uses the
// built-in region names.
func New(format string, table *regions.Table, color bool) (Formatter, error) {
	if table == nil {
		table = regions.Default()
	}

	switch strings.ToLower(format) {
	case FormatText, "terminal", "":
		return NewTerminal(table, color), nil
	case FormatJSON:
		return NewJSON(table), nil
	case FormatMarkdown, "md":
		return NewMarkdown(table), nil
	case FormatCSV:
		return NewCSV(table, true), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// humanSize renders a byte count, or "" when there is no file
func humanSize(n int64) string {
	if n <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(n))
}

// regionDisplay returns the localized name for a predicted label, or ""
func regionDisplay(table *regions.Table, label string) string {
	if label == "" {
		return ""
	}
	display, _ := table.Lookup(label)
	return display
}
