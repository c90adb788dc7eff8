package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/yildizm/RegionLens/internal/logger"
)

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 1 << 20

// Client submits images to the prediction service
type Client struct {
	config   *Config
	client   *http.Client
	endpoint *url.URL
	log      *logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithLogger sets the client logger
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		c.log = log.WithComponent("predict")
	}
}

// New creates a new prediction client
func New(config *Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, NewConfigurationError("base_url", "invalid base URL: "+err.Error())
	}

	c := &Client{
		config:   config,
		client:   &http.Client{Timeout: config.Timeout},
		endpoint: baseURL.JoinPath(config.PredictPath),
		log:      logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the full predict URL
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Predict uploads the file and returns the service's prediction.
// Exactly one request is made; failures are never retried.
func (c *Client) Predict(ctx context.Context, file *File) (*Prediction, error) {
	if file == nil {
		return nil, ErrNoFile
	}

	body, contentType, err := encodeMultipart(c.config.FieldName, file)
	if err != nil {
		return nil, NewErrorWithCause(ErrTypeTransport, "failed to encode request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), body)
	if err != nil {
		return nil, NewErrorWithCause(ErrTypeTransport, "failed to create request", err)
	}
	req.Header.Set("Content-Type", contentType)

	c.log.DebugWithFields("dispatching prediction request", []logger.Field{
		logger.F("endpoint", c.endpoint.String()),
		logger.F("file", file.Name),
		logger.F("bytes", file.Size()),
	})

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, NewErrorWithCause(ErrTypeTransport, "request timed out", err)
		}
		return nil, NewErrorWithCause(ErrTypeTransport, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Type: ErrTypeTransport, Message: "failed to read response", StatusCode: resp.StatusCode, Cause: err}
	}

	c.log.DebugWithFields("prediction response received", []logger.Field{
		logger.F("status", resp.StatusCode),
		logger.Duration(time.Since(start)),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, data)
	}

	return decodePrediction(resp.StatusCode, data)
}

// statusError classifies a non-2xx response
func statusError(statusCode int, body []byte) error {
	var errorResp ErrorResponse
	if json.Unmarshal(body, &errorResp) == nil && errorResp.Error != "" {
		return NewStatusError(ErrTypeService, statusCode, errorResp.Error)
	}
	return NewStatusError(ErrTypeTransport, statusCode, fmt.Sprintf("request failed with status %d", statusCode))
}

// decodePrediction parses a success body and enforces the response contract
func decodePrediction(statusCode int, body []byte) (*Prediction, error) {
	var wire predictResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &Error{Type: ErrTypeParse, Message: "failed to decode response", StatusCode: statusCode, Cause: err}
	}

	if wire.Prediction == nil {
		return nil, NewStatusError(ErrTypeParse, statusCode, "response is missing 'prediction'")
	}
	if wire.Confidence == nil {
		return nil, NewStatusError(ErrTypeParse, statusCode, "response is missing 'confidence'")
	}

	confidence := *wire.Confidence
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return nil, NewStatusError(ErrTypeParse, statusCode, fmt.Sprintf("confidence %v is outside [0,1]", confidence))
	}

	return &Prediction{Label: *wire.Prediction, Confidence: confidence}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeMultipart builds a form body with a single file part that keeps the
// file's declared content type
func encodeMultipart(fieldName string, file *File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(fieldName), quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
