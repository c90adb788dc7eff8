package session

import (
	"time"

	"github.com/yildizm/RegionLens/internal/predict"
)

// Kind identifies the variant held by a Status
type Kind int

const (
	KindIdle Kind = iota
	KindReady
	KindSubmitting
	KindSuccess
	KindFailed
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindReady:
		return "ready"
	case KindSubmitting:
		return "submitting"
	case KindSuccess:
		return "success"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the state of an upload view. Exactly one variant is held at a
// time, so a result and an error can never be shown together.
type Status interface {
	Kind() Kind
	status()
}

// Idle means no file has been selected
type Idle struct{}

// Ready holds a selected file with no request in flight
type Ready struct {
	File *predict.File
}

// Submitting holds the one outstanding attempt
type Submitting struct {
	File    *predict.File
	Attempt *Attempt
}

// Success holds the prediction from the last attempt
type Success struct {
	File    *predict.File
	Result  predict.Prediction
	Elapsed time.Duration
}

// Failed holds the error from the last attempt or validation. File is nil
// when submit was triggered without a selection.
type Failed struct {
	File    *predict.File
	Err     error
	Elapsed time.Duration
}

func (Idle) Kind() Kind       { return KindIdle }
func (Ready) Kind() Kind      { return KindReady }
func (Submitting) Kind() Kind { return KindSubmitting }
func (Success) Kind() Kind    { return KindSuccess }
func (Failed) Kind() Kind     { return KindFailed }

func (Idle) status()       {}
func (Ready) status()      {}
func (Submitting) status() {}
func (Success) status()    {}
func (Failed) status()     {}

// fileOf returns the file carried by a status, if any
func fileOf(s Status) *predict.File {
	switch st := s.(type) {
	case Ready:
		return st.File
	case Submitting:
		return st.File
	case Success:
		return st.File
	case Failed:
		return st.File
	default:
		return nil
	}
}
