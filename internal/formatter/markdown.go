package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/RegionLens/internal/regions"
	"github.com/yildizm/RegionLens/internal/session"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	table *regions.Table
	now   func() time.Time
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown(table *regions.Table) Formatter {
	return &markdownFormatter{table: table, now: time.Now}
}

func (f *markdownFormatter) Format(snap *session.Snapshot) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Region Prediction\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", f.now().Format("2006-01-02 15:04:05"))

	if snap.FileName != "" {
		b.WriteString("## Image\n\n")
		b.WriteString("| Field | Value |\n")
		b.WriteString("|-------|-------|\n")
		fmt.Fprintf(&b, "| Name | `%s` |\n", escapeMarkdownCell(snap.FileName))
		fmt.Fprintf(&b, "| Size | %s |\n", humanSize(snap.FileSize))
		fmt.Fprintf(&b, "| Type | %s |\n\n", snap.ContentType)
	}

	switch {
	case snap.Confidence != nil:
		b.WriteString("## Result\n\n")
		b.WriteString("| Region | Confidence |\n")
		b.WriteString("|--------|------------|\n")
		fmt.Fprintf(&b, "| %s | %s |\n\n", escapeMarkdownCell(f.table.Label(snap.Prediction)), snap.ConfidencePercent())
		fmt.Fprintf(&b, "_Elapsed: %s_\n", snap.Elapsed.Round(time.Millisecond))
	case snap.Error != "":
		b.WriteString("## Error\n\n")
		fmt.Fprintf(&b, "> %s\n", snap.Error)
		if snap.ErrorType != "" {
			fmt.Fprintf(&b, "\nKind: `%s`\n", snap.ErrorType)
		}
	default:
		fmt.Fprintf(&b, "State: **%s**\n", snap.State)
	}

	return []byte(b.String()), nil
}

func escapeMarkdownCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
