// Package monitor aggregates the outcomes of a series of predictions, such as
// a watch run, into a summary report.
package monitor

import (
	"sort"
	"sync"
	"time"

	"github.com/yildizm/RegionLens/internal/session"
)

// SessionStats collects finished attempts. Snapshots that are not Success or
// Failed are ignored.
type SessionStats struct {
	Succeeded Counter
	Failed    Counter
	latency   Latency

	mu            sync.Mutex
	started       time.Time
	now           func() time.Time
	regions       map[string]int
	errors        map[string]int
	confidenceSum float64
}

// NewSessionStats creates an empty collector starting now
func NewSessionStats() *SessionStats {
	return newSessionStats(time.Now)
}

func newSessionStats(now func() time.Time) *SessionStats {
	return &SessionStats{
		started: now(),
		now:     now,
		regions: make(map[string]int),
		errors:  make(map[string]int),
	}
}

// Record adds a finished attempt
func (s *SessionStats) Record(snap *session.Snapshot) {
	if snap == nil {
		return
	}

	switch snap.State {
	case session.KindSuccess.String():
		s.Succeeded.Inc()
		s.latency.Record(snap.Elapsed)

		s.mu.Lock()
		s.regions[snap.Prediction]++
		if snap.Confidence != nil {
			s.confidenceSum += *snap.Confidence
		}
		s.mu.Unlock()

	case session.KindFailed.String():
		s.Failed.Inc()
		if snap.Elapsed > 0 {
			s.latency.Record(snap.Elapsed)
		}

		errType := snap.ErrorType
		if errType == "" {
			errType = "unknown"
		}
		s.mu.Lock()
		s.errors[errType]++
		s.mu.Unlock()
	}
}

// Total returns the number of recorded attempts
func (s *SessionStats) Total() int64 {
	return s.Succeeded.Get() + s.Failed.Get()
}

// Report summarizes everything recorded so far
func (s *SessionStats) Report() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &Report{
		Duration:   s.now().Sub(s.started),
		Total:      s.Succeeded.Get() + s.Failed.Get(),
		Succeeded:  s.Succeeded.Get(),
		Failed:     s.Failed.Get(),
		AvgLatency: s.latency.Avg(),
		MinLatency: s.latency.Min(),
		MaxLatency: s.latency.Max(),
		Errors:     make(map[string]int, len(s.errors)),
	}

	if r.Succeeded > 0 {
		r.AvgConfidence = s.confidenceSum / float64(r.Succeeded)
	}

	for name, n := range s.regions {
		r.Regions = append(r.Regions, RegionCount{Region: name, Count: n})
	}
	sort.Slice(r.Regions, func(i, j int) bool {
		if r.Regions[i].Count != r.Regions[j].Count {
			return r.Regions[i].Count > r.Regions[j].Count
		}
		return r.Regions[i].Region < r.Regions[j].Region
	})

	for errType, n := range s.errors {
		r.Errors[errType] = n
	}

	r.Health = healthFor(r.Total, r.Failed)
	return r
}
