package formatter

import (
	"encoding/json"

	"github.com/yildizm/RegionLens/internal/regions"
	"github.com/yildizm/RegionLens/internal/session"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct {
	table *regions.Table
}

// NewJSON creates a new JSON formatter
func NewJSON(table *regions.Table) Formatter {
	return &jsonFormatter{table: table}
}

// JSONOutput is the document written by the JSON formatter
type JSONOutput struct {
	State      string            `json:"state"`
	File       *FileOutput       `json:"file,omitempty"`
	Prediction *PredictionOutput `json:"prediction,omitempty"`
	Error      *ErrorOutput      `json:"error,omitempty"`
	ElapsedMS  int64             `json:"elapsed_ms,omitempty"`
}

// FileOutput describes the submitted image
type FileOutput struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	SizeHuman   string `json:"size_human"`
	ContentType string `json:"content_type"`
}

// PredictionOutput is a successful prediction
type PredictionOutput struct {
	Region            string  `json:"region"`
	DisplayName       string  `json:"display_name,omitempty"`
	Label             string  `json:"label"`
	Confidence        float64 `json:"confidence"`
	ConfidencePercent string  `json:"confidence_percent"`
}

// ErrorOutput is a failed prediction
type ErrorOutput struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

func (f *jsonFormatter) Format(snap *session.Snapshot) ([]byte, error) {
	return json.MarshalIndent(newJSONOutput(f.table, snap), "", "  ")
}

func newJSONOutput(table *regions.Table, snap *session.Snapshot) *JSONOutput {
	out := &JSONOutput{
		State:     snap.State,
		ElapsedMS: snap.Elapsed.Milliseconds(),
	}

	if snap.FileName != "" {
		out.File = &FileOutput{
			Name:        snap.FileName,
			Size:        snap.FileSize,
			SizeHuman:   humanSize(snap.FileSize),
			ContentType: snap.ContentType,
		}
	}

	if snap.Confidence != nil {
		out.Prediction = &PredictionOutput{
			Region:            snap.Prediction,
			DisplayName:       regionDisplay(table, snap.Prediction),
			Label:             table.Label(snap.Prediction),
			Confidence:        *snap.Confidence,
			ConfidencePercent: snap.ConfidencePercent(),
		}
	}

	if snap.Error != "" {
		out.Error = &ErrorOutput{Message: snap.Error, Type: snap.ErrorType}
	}

	return out
}
