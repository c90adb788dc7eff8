package predict

import (
	"fmt"
)

// File is an image selected for submission
type File struct {
	// Name is the base filename sent in the multipart part
	Name string `json:"name"`

	// ContentType is the declared MIME type of the part
	ContentType string `json:"content_type"`

	// Data holds the raw file bytes
	Data []byte `json:"-"`
}

// Size returns the file size in bytes
func (f *File) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// Prediction is a successful response from the prediction service
type Prediction struct {
	// Label is the predicted region name
	Label string `json:"prediction"`

	// Confidence is a probability-like score in [0,1]
	Confidence float64 `json:"confidence"`
}

// Percent formats the confidence for display
func (p Prediction) Percent() string {
	return FormatConfidence(p.Confidence)
}

// FormatConfidence renders a [0,1] score as a percentage with two decimals
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.2f%%", confidence*100)
}

// predictResponse is the wire form of a success body; pointers detect missing fields
type predictResponse struct {
	Prediction *string  `json:"prediction"`
	Confidence *float64 `json:"confidence"`
}

// ErrorResponse is the optional body of a failed response
type ErrorResponse struct {
	Error string `json:"error"`
}
