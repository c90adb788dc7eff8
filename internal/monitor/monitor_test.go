package monitor

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yildizm/RegionLens/internal/emoji"
	"github.com/yildizm/RegionLens/internal/session"
)

func TestCounter(t *testing.T) {
	var counter Counter

	if counter.Get() != 0 {
		t.Errorf("Expected initial value 0, got %d", counter.Get())
	}

	counter.Inc()
	counter.Add(5)
	if counter.Get() != 6 {
		t.Errorf("Expected value 6, got %d", counter.Get())
	}
}

func TestLatency(t *testing.T) {
	var l Latency

	if l.Avg() != 0 || l.Min() != 0 {
		t.Error("Expected zero values before any measurement")
	}

	l.Record(30 * time.Millisecond)
	l.Record(10 * time.Millisecond)
	l.Record(20 * time.Millisecond)

	if l.Count() != 3 {
		t.Errorf("Expected 3 measurements, got %d", l.Count())
	}
	if l.Min() != 10*time.Millisecond {
		t.Errorf("Expected min 10ms, got %v", l.Min())
	}
	if l.Max() != 30*time.Millisecond {
		t.Errorf("Expected max 30ms, got %v", l.Max())
	}
	if l.Avg() != 20*time.Millisecond {
		t.Errorf("Expected avg 20ms, got %v", l.Avg())
	}
}

func TestLatencyConcurrent(t *testing.T) {
	var l Latency
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Record(time.Millisecond)
		}()
	}
	wg.Wait()

	if l.Count() != 50 {
		t.Errorf("Expected 50 measurements, got %d", l.Count())
	}
}

func success(region string, confidence float64, elapsed time.Duration) *session.Snapshot {
	return &session.Snapshot{
		State:      session.KindSuccess.String(),
		Prediction: region,
		Confidence: &confidence,
		Elapsed:    elapsed,
	}
}

func failure(errType string, elapsed time.Duration) *session.Snapshot {
	return &session.Snapshot{
		State:     session.KindFailed.String(),
		Error:     "boom",
		ErrorType: errType,
		Elapsed:   elapsed,
	}
}

func TestSessionStatsReport(t *testing.T) {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	now := start
	stats := newSessionStats(func() time.Time { return now })

	stats.Record(success("Japan", 0.9, 100*time.Millisecond))
	stats.Record(success("Europe", 0.7, 300*time.Millisecond))
	stats.Record(success("Japan", 0.8, 200*time.Millisecond))
	stats.Record(failure("service", 50*time.Millisecond))
	stats.Record(&session.Snapshot{State: session.KindReady.String()})
	stats.Record(nil)

	now = start.Add(time.Minute)
	r := stats.Report()

	if r.Total != 4 || r.Succeeded != 3 || r.Failed != 1 {
		t.Errorf("Unexpected counts: total=%d ok=%d failed=%d", r.Total, r.Succeeded, r.Failed)
	}
	if r.Duration != time.Minute {
		t.Errorf("Expected 1m duration, got %v", r.Duration)
	}
	if r.MinLatency != 50*time.Millisecond || r.MaxLatency != 300*time.Millisecond {
		t.Errorf("Unexpected latency range: %v..%v", r.MinLatency, r.MaxLatency)
	}
	if diff := r.AvgConfidence - 0.8; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected avg confidence 0.8, got %f", r.AvgConfidence)
	}
	if len(r.Regions) != 2 || r.Regions[0].Region != "Japan" || r.Regions[0].Count != 2 {
		t.Errorf("Expected Japan first with 2, got %+v", r.Regions)
	}
	if r.Errors["service"] != 1 {
		t.Errorf("Expected one service error, got %v", r.Errors)
	}
	if r.Health != HealthStatusWarning {
		t.Errorf("Expected warning health, got %s", r.Health)
	}
}

func TestHealthFor(t *testing.T) {
	tests := []struct {
		name          string
		total, failed int64
		want          HealthStatus
	}{
		{"empty run", 0, 0, HealthStatusGood},
		{"no failures", 10, 0, HealthStatusGood},
		{"some failures", 10, 2, HealthStatusWarning},
		{"half failed", 10, 5, HealthStatusCritical},
		{"all failed", 3, 3, HealthStatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := healthFor(tt.total, tt.failed); got != tt.want {
				t.Errorf("healthFor(%d, %d) = %s, want %s", tt.total, tt.failed, got, tt.want)
			}
		})
	}
}

func TestReportText(t *testing.T) {
	emoji.SetEmojiDisabled(true)
	defer emoji.SetEmojiDisabled(false)

	stats := NewSessionStats()
	stats.Record(success("Japan", 0.5, 10*time.Millisecond))
	stats.Record(failure("", 0))

	text := stats.Report().Text(nil, false)
	for _, want := range []string{"Session summary (critical)", "日本 (Japan)", "unknown", "50.00%"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected report to contain %q\n%s", want, text)
		}
	}
}

func TestReportJSON(t *testing.T) {
	stats := NewSessionStats()
	stats.Record(success("Oceania", 0.6, time.Millisecond))

	data, err := stats.Report().JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON: %v", err)
	}
	if decoded.Total != 1 || decoded.Health != HealthStatusGood {
		t.Errorf("Unexpected report: %+v", decoded)
	}
}
