package session

import (
	"context"
	"errors"
	"time"

	"github.com/yildizm/RegionLens/internal/logger"
	"github.com/yildizm/RegionLens/internal/predict"
)

var (
	// ErrBusy is returned when submit is triggered while an attempt is outstanding
	ErrBusy = errors.New("a prediction request is already in flight")

	// ErrClosed is returned when the view has been torn down
	ErrClosed = errors.New("view is closed")
)

// View is the upload/predict/display state holder.
//
// A View is owned by a single goroutine: the bubbletea Update loop or a CLI
// command. Only Attempt.Run is meant to execute elsewhere.
type View struct {
	status Status
	closed bool
	log    *logger.Logger
}

// Option configures a View
type Option func(*View)

// WithLogger sets the view logger
func WithLogger(log *logger.Logger) Option {
	return func(v *View) {
		v.log = log.WithComponent("session")
	}
}

// New creates a view in the Idle state
func New(opts ...Option) *View {
	v := &View{
		status: Idle{},
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Status returns the current state variant
func (v *View) Status() Status {
	return v.status
}

// Kind returns the kind of the current state
func (v *View) Kind() Kind {
	return v.status.Kind()
}

// SelectedFile returns the selected file, or nil
func (v *View) SelectedFile() *predict.File {
	return fileOf(v.status)
}

// Prediction returns the predicted label when the view is in Success
func (v *View) Prediction() (string, bool) {
	if s, ok := v.status.(Success); ok {
		return s.Result.Label, true
	}
	return "", false
}

// Confidence returns the confidence when the view is in Success
func (v *View) Confidence() (float64, bool) {
	if s, ok := v.status.(Success); ok {
		return s.Result.Confidence, true
	}
	return 0, false
}

// Err returns the error when the view is in Failed
func (v *View) Err() error {
	if f, ok := v.status.(Failed); ok {
		return f.Err
	}
	return nil
}

// ErrorMessage returns the user-facing error message, or ""
func (v *View) ErrorMessage() string {
	return predict.DisplayMessage(v.Err())
}

// Loading reports whether an attempt is outstanding
func (v *View) Loading() bool {
	return v.status.Kind() == KindSubmitting
}

// CanSubmit reports whether the submit control is enabled
func (v *View) CanSubmit() bool {
	return !v.closed && !v.Loading()
}

// Closed reports whether the view has been torn down
func (v *View) Closed() bool {
	return v.closed
}

// Select replaces the selected file and drops any result or error.
// A nil file returns the view to Idle. Selecting while Submitting abandons
// the outstanding attempt rather than waiting for it: its context is
// cancelled, the view moves to Ready at once so submit is enabled again, and
// the abandoned attempt's later Resolve is ignored.
func (v *View) Select(file *predict.File) {
	if v.closed {
		return
	}

	if s, ok := v.status.(Submitting); ok {
		s.Attempt.Cancel()
		v.log.DebugWithFields("abandoned attempt on reselect", []logger.Field{logger.Attempt(s.Attempt.ID)})
	}

	if file == nil {
		v.transition(Idle{})
		return
	}
	v.transition(Ready{File: file})
}

// Submit starts an attempt for the selected file.
//
// With no file the view moves to Failed with a validation error and no
// attempt is created. While an attempt is outstanding Submit returns ErrBusy
// and changes nothing.
func (v *View) Submit(ctx context.Context) (*Attempt, error) {
	if v.closed {
		return nil, ErrClosed
	}
	if v.Loading() {
		return nil, ErrBusy
	}

	file := v.SelectedFile()
	if file == nil {
		v.transition(Failed{Err: predict.ErrNoFile})
		return nil, predict.ErrNoFile
	}

	attempt := newAttempt(ctx, file)
	v.transition(Submitting{File: file, Attempt: attempt})
	v.log.DebugWithFields("attempt dispatched", []logger.Field{
		logger.Attempt(attempt.ID),
		logger.F("file", file.Name),
	})
	return attempt, nil
}

// Resolve commits an outcome. It reports false, changing nothing, when the
// view is closed or the outcome belongs to an attempt that is no longer current.
func (v *View) Resolve(o Outcome) bool {
	if v.closed {
		return false
	}

	s, ok := v.status.(Submitting)
	if !ok || s.Attempt.ID != o.AttemptID {
		v.log.DebugWithFields("dropped stale outcome", []logger.Field{logger.Attempt(o.AttemptID)})
		return false
	}
	s.Attempt.Cancel()

	switch {
	case o.Err != nil:
		v.transition(Failed{File: s.File, Err: o.Err, Elapsed: o.Elapsed})
	case o.Prediction == nil:
		v.transition(Failed{File: s.File, Err: predict.NewError(predict.ErrTypeParse, "empty prediction"), Elapsed: o.Elapsed})
	default:
		v.transition(Success{File: s.File, Result: *o.Prediction, Elapsed: o.Elapsed})
	}
	return true
}

// SubmitAndWait submits and runs the attempt on the calling goroutine.
// The returned error is the validation or attempt error, if any.
func (v *View) SubmitAndWait(ctx context.Context, p Predictor) error {
	attempt, err := v.Submit(ctx)
	if err != nil {
		return err
	}
	v.Resolve(attempt.Run(p))
	if v.closed {
		return ErrClosed
	}
	return v.Err()
}

// Close tears the view down. Any outstanding attempt is cancelled and its
// eventual outcome is ignored.
func (v *View) Close() {
	if v.closed {
		return
	}
	if s, ok := v.status.(Submitting); ok {
		s.Attempt.Cancel()
	}
	v.closed = true
}

func (v *View) transition(next Status) {
	prev := v.status
	v.status = next
	if prev.Kind() != next.Kind() {
		v.log.Debug("state %s -> %s", prev.Kind(), next.Kind())
	}
}

// Snapshot captures the view for rendering
func (v *View) Snapshot() *Snapshot {
	snap := &Snapshot{
		State:   v.status.Kind().String(),
		Loading: v.Loading(),
	}

	if file := v.SelectedFile(); file != nil {
		snap.FileName = file.Name
		snap.FileSize = file.Size()
		snap.ContentType = file.ContentType
	}

	switch s := v.status.(type) {
	case Success:
		snap.Prediction = s.Result.Label
		confidence := s.Result.Confidence
		snap.Confidence = &confidence
		snap.Elapsed = s.Elapsed
	case Failed:
		snap.Error = predict.DisplayMessage(s.Err)
		snap.ErrorType = string(predict.TypeOf(s.Err))
		snap.Elapsed = s.Elapsed
	case Submitting:
		snap.AttemptID = s.Attempt.ID
	}

	return snap
}

// Snapshot is a read-only copy of a view's displayable state
type Snapshot struct {
	State       string
	FileName    string
	FileSize    int64
	ContentType string
	Prediction  string
	Confidence  *float64
	Error       string
	ErrorType   string
	Loading     bool
	AttemptID   string
	Elapsed     time.Duration
}

// ConfidencePercent renders the confidence, or "" when there is none
func (s *Snapshot) ConfidencePercent() string {
	if s.Confidence == nil {
		return ""
	}
	return predict.FormatConfidence(*s.Confidence)
}
