package stubservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yildizm/RegionLens/internal/logger"
	"github.com/yildizm/RegionLens/internal/predict"
)

// Response messages matching the reference service
const (
	MsgNoFilePart     = "No file part"
	MsgNoSelectedFile = "No selected file"
	MsgNotLoaded      = "Model or class names not loaded"
)

// Options configures the stub service
type Options struct {
	// Addr is the listen address, e.g. ":5001"
	Addr string

	// FieldName is the multipart part carrying the image
	FieldName string

	// MaxUploadBytes caps the request body
	MaxUploadBytes int64

	// Latency delays every prediction, to exercise loading states
	Latency time.Duration
}

// DefaultOptions returns options matching the client defaults
func DefaultOptions() Options {
	client := predict.DefaultConfig()
	return Options{
		Addr:           ":5001",
		FieldName:      client.FieldName,
		MaxUploadBytes: client.MaxUploadBytes,
	}
}

// Server is a local prediction service speaking the same contract as the
// production model server
type Server struct {
	opts       Options
	classifier Classifier
	metrics    *Metrics
	log        *logger.Logger
	router     chi.Router
}

// New creates a server
func New(classifier Classifier, opts Options, log *logger.Logger) *Server {
	if opts.FieldName == "" {
		opts.FieldName = DefaultOptions().FieldName
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		opts:       opts,
		classifier: classifier,
		metrics:    NewMetrics(),
		log:        log.WithComponent("stub"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/predict", s.handlePredict)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router = r
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler { return s.router }

// Metrics returns the service collectors
func (s *Server) Metrics() *Metrics { return s.metrics }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on an existing listener until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { s.metrics.Duration.Observe(time.Since(start).Seconds()) }()

	data, filename, status, msg := s.readUpload(w, r)
	if status != 0 {
		s.fail(w, status, msg, reasonFor(status, msg))
		return
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err.Error(), "decode")
		return
	}

	if s.opts.Latency > 0 {
		select {
		case <-time.After(s.opts.Latency):
		case <-r.Context().Done():
			s.metrics.Errors.WithLabelValues("cancelled").Inc()
			return
		}
	}

	result, err := s.classifier.Classify(r.Context(), img)
	if err != nil {
		if errors.Is(err, ErrNotLoaded) {
			s.fail(w, http.StatusInternalServerError, MsgNotLoaded, "not_loaded")
			return
		}
		s.fail(w, http.StatusInternalServerError, err.Error(), "classify")
		return
	}

	prediction := predict.Prediction{Label: result.Label, Confidence: result.Confidence}
	s.metrics.Predictions.WithLabelValues(prediction.Label).Inc()
	s.log.DebugWithFields("prediction served", []logger.Field{
		logger.F("file", filename),
		logger.F("region", prediction.Label),
		logger.F("confidence", prediction.Percent()),
	})

	writeJSON(w, http.StatusOK, prediction)
}

// readUpload extracts the image part. A non-zero status reports why the
// request was rejected.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, int, string) {
	if s.opts.MaxUploadBytes > 0 {
		// Leave room for multipart framing
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+1<<20)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", http.StatusRequestEntityTooLarge, "File too large"
		}
		return nil, "", http.StatusBadRequest, MsgNoFilePart
	}

	file, header, err := r.FormFile(s.opts.FieldName)
	if err != nil {
		// A part without a filename is parsed as a plain value
		if _, ok := r.MultipartForm.Value[s.opts.FieldName]; ok {
			return nil, "", http.StatusBadRequest, MsgNoSelectedFile
		}
		return nil, "", http.StatusBadRequest, MsgNoFilePart
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		return nil, "", http.StatusBadRequest, MsgNoSelectedFile
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", http.StatusBadRequest, fmt.Sprintf("failed to read upload: %v", err)
	}
	return data, header.Filename, 0, ""
}

func (s *Server) fail(w http.ResponseWriter, status int, msg, reason string) {
	s.metrics.Errors.WithLabelValues(reason).Inc()
	writeJSON(w, status, predict.ErrorResponse{Error: msg})
}

func reasonFor(status int, msg string) string {
	switch {
	case status == http.StatusRequestEntityTooLarge:
		return "too_large"
	case msg == MsgNoSelectedFile:
		return "no_selected_file"
	case msg == MsgNoFilePart:
		return "no_file_part"
	default:
		return "bad_request"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs each request through the component logger
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.InfoWithFields("%s %s", []logger.Field{
			logger.F("status", ww.Status()),
			logger.F("bytes", ww.BytesWritten()),
			logger.Duration(time.Since(start)),
			logger.F("request_id", middleware.GetReqID(r.Context())),
		}, r.Method, r.URL.Path)
	})
}
