package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yildizm/RegionLens/internal/regions"
	"github.com/yildizm/RegionLens/internal/session"
)

// CSVHeaders are the columns written by the CSV formatter
var CSVHeaders = []string{
	"File",
	"Size",
	"State",
	"Region",
	"Display Name",
	"Confidence",
	"Error",
	"Elapsed MS",
}

// csvFormatter formats a prediction as a CSV row
type csvFormatter struct {
	table  *regions.Table
	header bool
}

// NewCSV creates a new CSV formatter. With header unset only the data row
// is written, for appending to an existing stream.
func NewCSV(table *regions.Table, header bool) Formatter {
	return &csvFormatter{table: table, header: header}
}

func (f *csvFormatter) Format(snap *session.Snapshot) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	if f.header {
		if err := writer.Write(CSVHeaders); err != nil {
			return nil, fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	confidence := ""
	if snap.Confidence != nil {
		confidence = strconv.FormatFloat(*snap.Confidence, 'f', 4, 64)
	}

	record := []string{
		snap.FileName,
		strconv.FormatInt(snap.FileSize, 10),
		snap.State,
		snap.Prediction,
		regionDisplay(f.table, snap.Prediction),
		confidence,
		escapeCSVString(snap.Error),
		strconv.FormatInt(snap.Elapsed.Milliseconds(), 10),
	}

	if err := writer.Write(record); err != nil {
		return nil, fmt.Errorf("failed to write CSV record: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}

// escapeCSVString flattens newlines and truncates long messages to 200 runes
func escapeCSVString(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")

	if utf8.RuneCountInString(s) > 200 {
		s = string([]rune(s)[:197]) + "..."
	}

	return s
}
