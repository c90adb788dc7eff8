package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/yildizm/RegionLens/internal/predict"
)

type fakePredictor struct {
	calls  atomic.Int32
	result *predict.Prediction
	err    error
}

func (f *fakePredictor) Predict(ctx context.Context, file *predict.File) (*predict.Prediction, error) {
	f.calls.Add(1)
	return f.result, f.err
}

func imageFile(name string) *predict.File {
	return &predict.File{Name: name, ContentType: "image/jpeg", Data: []byte("bytes of " + name)}
}

func assertCleared(t *testing.T, v *View) {
	t.Helper()
	if _, ok := v.Prediction(); ok {
		t.Error("Expected no prediction")
	}
	if _, ok := v.Confidence(); ok {
		t.Error("Expected no confidence")
	}
	if msg := v.ErrorMessage(); msg != "" {
		t.Errorf("Expected no error message, got %q", msg)
	}
}

func TestNewViewIsIdle(t *testing.T) {
	v := New()

	if v.Kind() != KindIdle {
		t.Errorf("Expected idle, got %s", v.Kind())
	}
	if v.SelectedFile() != nil {
		t.Error("Expected no selected file")
	}
	if v.Loading() {
		t.Error("Expected not loading")
	}
	if !v.CanSubmit() {
		t.Error("Expected submit to be enabled")
	}
}

func TestSelectClearsResultsAndErrors(t *testing.T) {
	predictor := &fakePredictor{result: &predict.Prediction{Label: "Asia", Confidence: 0.87}}
	v := New()

	// Failed state from validation
	if _, err := v.Submit(context.Background()); !predict.IsValidationError(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	v.Select(imageFile("a.jpg"))
	assertCleared(t, v)
	if v.Kind() != KindReady {
		t.Errorf("Expected ready, got %s", v.Kind())
	}

	// Success state
	if err := v.SubmitAndWait(context.Background(), predictor); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v.Kind() != KindSuccess {
		t.Fatalf("Expected success, got %s", v.Kind())
	}
	v.Select(imageFile("b.jpg"))
	assertCleared(t, v)
	if v.SelectedFile().Name != "b.jpg" {
		t.Errorf("Expected b.jpg selected, got %s", v.SelectedFile().Name)
	}

	// Service failure
	predictor.result = nil
	predictor.err = predict.NewStatusError(predict.ErrTypeService, 400, "unsupported format")
	_ = v.SubmitAndWait(context.Background(), predictor)
	v.Select(imageFile("c.jpg"))
	assertCleared(t, v)
}

func TestSelectSameFileTwiceIsIdempotent(t *testing.T) {
	file := imageFile("same.jpg")

	once := New()
	once.Select(file)

	twice := New()
	twice.Select(file)
	twice.Select(file)

	if once.Kind() != twice.Kind() {
		t.Errorf("Expected same kind, got %s and %s", once.Kind(), twice.Kind())
	}
	if once.SelectedFile() != twice.SelectedFile() {
		t.Error("Expected same selected file")
	}
	assertCleared(t, twice)
}

func TestSubmitWithoutFile(t *testing.T) {
	predictor := &fakePredictor{}
	v := New()

	err := v.SubmitAndWait(context.Background(), predictor)
	if !errors.Is(err, predict.ErrNoFile) {
		t.Fatalf("Expected ErrNoFile, got %v", err)
	}

	if predictor.calls.Load() != 0 {
		t.Errorf("Expected no network call, got %d", predictor.calls.Load())
	}
	if v.Kind() != KindFailed {
		t.Errorf("Expected failed, got %s", v.Kind())
	}
	if v.ErrorMessage() != predict.MsgNoFile {
		t.Errorf("Expected %q, got %q", predict.MsgNoFile, v.ErrorMessage())
	}

	// Repeating stays in the same error sub-state
	_ = v.SubmitAndWait(context.Background(), predictor)
	if v.ErrorMessage() != predict.MsgNoFile || predictor.calls.Load() != 0 {
		t.Error("Repeated submit without file should not reach the network")
	}
}

func TestSubmitSuccess(t *testing.T) {
	predictor := &fakePredictor{result: &predict.Prediction{Label: "Asia", Confidence: 0.87}}
	v := New()
	v.Select(imageFile("temple.jpg"))

	attempt, err := v.Submit(context.Background())
	if err != nil {
		t.Fatalf("Unexpected submit error: %v", err)
	}

	if !v.Loading() || v.CanSubmit() {
		t.Error("Expected loading with submit disabled while in flight")
	}
	assertCleared(t, v)

	if !v.Resolve(attempt.Run(predictor)) {
		t.Fatal("Expected outcome to be committed")
	}

	if v.Kind() != KindSuccess {
		t.Fatalf("Expected success, got %s", v.Kind())
	}
	label, ok := v.Prediction()
	if !ok || label != "Asia" {
		t.Errorf("Expected prediction Asia, got %q", label)
	}
	confidence, ok := v.Confidence()
	if !ok || confidence != 0.87 {
		t.Errorf("Expected confidence 0.87, got %v", confidence)
	}
	if v.Snapshot().ConfidencePercent() != "87.00%" {
		t.Errorf("Expected 87.00%%, got %s", v.Snapshot().ConfidencePercent())
	}
	if v.Loading() {
		t.Error("Expected loading cleared")
	}
	if v.ErrorMessage() != "" {
		t.Errorf("Expected no error, got %q", v.ErrorMessage())
	}
}

func TestSubmitServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		_, _ = w.Write([]byte(`{"error": "unsupported format"}`))
	}))
	defer server.Close()

	config := predict.DefaultConfig()
	config.BaseURL = server.URL
	client, err := predict.New(config)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	v := New()
	v.Select(imageFile("scan.tiff"))
	_ = v.SubmitAndWait(context.Background(), client)

	if v.Kind() != KindFailed {
		t.Fatalf("Expected failed, got %s", v.Kind())
	}
	if v.ErrorMessage() != "unsupported format" {
		t.Errorf("Expected server message, got %q", v.ErrorMessage())
	}
	if _, ok := v.Prediction(); ok {
		t.Error("Expected no prediction alongside an error")
	}
	if v.SelectedFile() == nil {
		t.Error("Expected file to stay selected after failure")
	}
}

func TestSubmitNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	config := predict.DefaultConfig()
	config.BaseURL = server.URL
	server.Close()

	client, err := predict.New(config)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	v := New()
	v.Select(imageFile("offline.jpg"))
	_ = v.SubmitAndWait(context.Background(), client)

	if v.Kind() != KindFailed {
		t.Fatalf("Expected failed, got %s", v.Kind())
	}
	if v.ErrorMessage() == "" {
		t.Error("Expected a non-empty generic error message")
	}
	if v.Snapshot().ErrorType != string(predict.ErrTypeTransport) {
		t.Errorf("Expected transport error type, got %s", v.Snapshot().ErrorType)
	}
}

func TestSubmitWhileInFlightIsNoop(t *testing.T) {
	predictor := &fakePredictor{result: &predict.Prediction{Label: "Europe", Confidence: 0.6}}
	v := New()
	v.Select(imageFile("alps.jpg"))

	first, err := v.Submit(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	second, err := v.Submit(context.Background())
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("Expected ErrBusy, got %v", err)
	}
	if second != nil {
		t.Error("Expected no second attempt")
	}

	s, ok := v.Status().(Submitting)
	if !ok || s.Attempt.ID != first.ID {
		t.Fatal("Expected the first attempt to remain current")
	}

	v.Resolve(first.Run(predictor))
	if predictor.calls.Load() != 1 {
		t.Errorf("Expected exactly one request, got %d", predictor.calls.Load())
	}

	// After resolution submit is allowed again
	if _, err := v.Submit(context.Background()); err != nil {
		t.Errorf("Expected submit to be allowed after resolution, got %v", err)
	}
}

func TestResubmitFromSuccessAndFailed(t *testing.T) {
	predictor := &fakePredictor{err: predict.NewError(predict.ErrTypeTransport, "request failed")}
	v := New()
	v.Select(imageFile("x.jpg"))

	_ = v.SubmitAndWait(context.Background(), predictor)
	if v.Kind() != KindFailed {
		t.Fatalf("Expected failed, got %s", v.Kind())
	}

	predictor.err = nil
	predictor.result = &predict.Prediction{Label: "Africa", Confidence: 0.9}
	if err := v.SubmitAndWait(context.Background(), predictor); err != nil {
		t.Fatalf("Expected retry by user to succeed, got %v", err)
	}
	if v.ErrorMessage() != "" {
		t.Errorf("Expected error cleared, got %q", v.ErrorMessage())
	}

	attempt, err := v.Submit(context.Background())
	if err != nil {
		t.Fatalf("Expected submit from success, got %v", err)
	}
	if _, ok := v.Prediction(); ok {
		t.Error("Expected prediction cleared at start of new attempt")
	}
	attempt.Cancel()
}

func TestReselectDuringFlightAbandonsAttempt(t *testing.T) {
	v := New()
	v.Select(imageFile("first.jpg"))

	attempt, err := v.Submit(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v.Select(imageFile("second.jpg"))

	if v.Kind() != KindReady {
		t.Fatalf("Expected ready after reselect, got %s", v.Kind())
	}
	if attempt.Context().Err() == nil {
		t.Error("Expected abandoned attempt to be cancelled")
	}
	if v.Loading() || !v.CanSubmit() {
		t.Error("Expected submit to be enabled again without waiting for the abandoned attempt")
	}

	// The stale outcome must not be committed against the new selection
	applied := v.Resolve(Outcome{
		AttemptID:  attempt.ID,
		Prediction: &predict.Prediction{Label: "Japan", Confidence: 0.99},
	})
	if applied {
		t.Error("Expected stale outcome to be dropped")
	}
	if v.SelectedFile().Name != "second.jpg" || v.Kind() != KindReady {
		t.Error("Stale outcome changed the view")
	}
}

func TestCloseMakesResolutionNoop(t *testing.T) {
	v := New()
	v.Select(imageFile("late.jpg"))

	attempt, err := v.Submit(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v.Close()

	if attempt.Context().Err() == nil {
		t.Error("Expected in-flight attempt to be cancelled on close")
	}

	done := make(chan bool)
	go func() {
		outcome := attempt.Run(PredictorFunc(func(ctx context.Context, file *predict.File) (*predict.Prediction, error) {
			return &predict.Prediction{Label: "Asia", Confidence: 1}, nil
		}))
		done <- v.Resolve(outcome)
	}()

	if <-done {
		t.Error("Expected resolution against a closed view to be a no-op")
	}
	if _, err := v.Submit(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}

	// Selecting on a closed view is ignored
	v.Select(imageFile("ignored.jpg"))
	if v.SelectedFile().Name != "late.jpg" {
		t.Error("Expected closed view to ignore selection")
	}
	v.Close()
}

func TestResolveNilPredictionFails(t *testing.T) {
	v := New()
	v.Select(imageFile("nil.jpg"))
	attempt, _ := v.Submit(context.Background())

	v.Resolve(Outcome{AttemptID: attempt.ID})

	if v.Kind() != KindFailed {
		t.Fatalf("Expected failed, got %s", v.Kind())
	}
	if !predict.IsParseError(v.Err()) {
		t.Errorf("Expected parse error, got %v", v.Err())
	}
}

func TestSelectNilReturnsToIdle(t *testing.T) {
	v := New()
	v.Select(imageFile("a.jpg"))
	v.Select(nil)

	if v.Kind() != KindIdle {
		t.Errorf("Expected idle, got %s", v.Kind())
	}
	assertCleared(t, v)
}

func TestSnapshot(t *testing.T) {
	v := New()
	snap := v.Snapshot()
	if snap.State != "idle" || snap.FileName != "" || snap.Confidence != nil {
		t.Errorf("Unexpected idle snapshot: %+v", snap)
	}

	v.Select(imageFile("s.jpg"))
	attempt, _ := v.Submit(context.Background())
	snap = v.Snapshot()
	if !snap.Loading || snap.AttemptID != attempt.ID || snap.State != "submitting" {
		t.Errorf("Unexpected submitting snapshot: %+v", snap)
	}

	v.Resolve(Outcome{AttemptID: attempt.ID, Prediction: &predict.Prediction{Label: "Oceania", Confidence: 0.5}})
	snap = v.Snapshot()
	if snap.Prediction != "Oceania" || snap.ConfidencePercent() != "50.00%" || snap.Error != "" {
		t.Errorf("Unexpected success snapshot: %+v", snap)
	}
	if snap.FileName != "s.jpg" || snap.FileSize != int64(len("bytes of s.jpg")) {
		t.Errorf("Unexpected file info in snapshot: %+v", snap)
	}
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{
		KindIdle:       "idle",
		KindReady:      "ready",
		KindSubmitting: "submitting",
		KindSuccess:    "success",
		KindFailed:     "failed",
		Kind(42):       "unknown",
	}
	for kind, expected := range kinds {
		if kind.String() != expected {
			t.Errorf("Expected %s, got %s", expected, kind.String())
		}
	}
}

func TestAttemptSendsSelectedFile(t *testing.T) {
	v := New()
	defer v.Close()
	v.Select(imageFile("kyoto.jpg"))

	var got *predict.File
	predictor := PredictorFunc(func(ctx context.Context, file *predict.File) (*predict.Prediction, error) {
		got = file
		return &predict.Prediction{Label: "Japan", Confidence: 0.92}, nil
	})

	if err := v.SubmitAndWait(context.Background(), predictor); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got == nil || got.Name != "kyoto.jpg" {
		t.Errorf("Expected kyoto.jpg to be submitted, got %+v", got)
	}
	if label, ok := v.Prediction(); !ok || label != "Japan" {
		t.Errorf("Expected Japan, got %q", label)
	}
}
