package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yildizm/RegionLens/internal/predict"
)

// Predictor submits a file to the prediction service
type Predictor interface {
	Predict(ctx context.Context, file *predict.File) (*predict.Prediction, error)
}

// PredictorFunc adapts a function to the Predictor interface
type PredictorFunc func(ctx context.Context, file *predict.File) (*predict.Prediction, error)

// Predict calls f(ctx, file)
func (f PredictorFunc) Predict(ctx context.Context, file *predict.File) (*predict.Prediction, error) {
	return f(ctx, file)
}

// Attempt is a single submission. Its ID is the token checked by
// View.Resolve before any result is committed.
type Attempt struct {
	ID        string
	File      *predict.File
	StartedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func newAttempt(parent context.Context, file *predict.File) *Attempt {
	ctx, cancel := context.WithCancel(parent)
	return &Attempt{
		ID:        uuid.New().String(),
		File:      file,
		StartedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Context returns the attempt's context; it is cancelled when the attempt is abandoned
func (a *Attempt) Context() context.Context {
	return a.ctx
}

// Cancel abandons the attempt
func (a *Attempt) Cancel() {
	a.cancel()
}

// Run performs the request. It may be called from any goroutine; the
// returned Outcome must be handed back to the owning View.
func (a *Attempt) Run(p Predictor) Outcome {
	result, err := p.Predict(a.ctx, a.File)
	return Outcome{
		AttemptID:  a.ID,
		Prediction: result,
		Err:        err,
		Elapsed:    time.Since(a.StartedAt),
	}
}

// Outcome is the resolution of an attempt
type Outcome struct {
	AttemptID  string
	Prediction *predict.Prediction
	Err        error
	Elapsed    time.Duration
}
