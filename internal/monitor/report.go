package monitor

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/RegionLens/internal/emoji"
	"github.com/yildizm/RegionLens/internal/predict"
	"github.com/yildizm/RegionLens/internal/regions"
)

// HealthStatus represents how well the service answered during a run
type HealthStatus string

const (
	HealthStatusGood     HealthStatus = "good"
	HealthStatusWarning  HealthStatus = "warning"
	HealthStatusCritical HealthStatus = "critical"
)

// RegionCount is the number of predictions for one region
type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// Report summarizes a run of predictions
type Report struct {
	Duration      time.Duration  `json:"duration"`
	Total         int64          `json:"total"`
	Succeeded     int64          `json:"succeeded"`
	Failed        int64          `json:"failed"`
	AvgLatency    time.Duration  `json:"avg_latency"`
	MinLatency    time.Duration  `json:"min_latency"`
	MaxLatency    time.Duration  `json:"max_latency"`
	AvgConfidence float64        `json:"avg_confidence"`
	Regions       []RegionCount  `json:"regions,omitempty"`
	Errors        map[string]int `json:"errors,omitempty"`
	Health        HealthStatus   `json:"health"`
}

// healthFor grades a run by its failure ratio
func healthFor(total, failed int64) HealthStatus {
	switch {
	case total == 0 || failed == 0:
		return HealthStatusGood
	case failed*2 >= total:
		return HealthStatusCritical
	default:
		return HealthStatusWarning
	}
}

// JSON renders the report as indented JSON
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// Text renders the report as a tree for the terminal
func (r *Report) Text(table *regions.Table, color bool) string {
	if table == nil {
		table = regions.Default()
	}

	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()

	var b strings.Builder
	fmt.Fprintf(&b, "%s Session summary (%s)\n", healthEmoji(r.Health), r.Health)

	items := []termfmt.TreeItem{
		{Label: "Predictions", Value: fmt.Sprintf("%d", r.Total)},
		{Label: "Succeeded", Value: fmt.Sprintf("%d", r.Succeeded)},
		{Label: "Failed", Value: fmt.Sprintf("%d", r.Failed)},
		{Label: "Latency", Value: fmt.Sprintf("avg %s, min %s, max %s",
			round(r.AvgLatency), round(r.MinLatency), round(r.MaxLatency))},
		{Label: "Avg confidence", Value: predict.FormatConfidence(r.AvgConfidence)},
		{Label: "Duration", Value: round(r.Duration).String(), Last: len(r.Regions) == 0 && len(r.Errors) == 0},
	}

	if len(r.Regions) > 0 {
		children := make([]termfmt.TreeItem, 0, len(r.Regions))
		for i, rc := range r.Regions {
			children = append(children, termfmt.TreeItem{
				Label: table.Label(rc.Region),
				Value: fmt.Sprintf("%d", rc.Count),
				Last:  i == len(r.Regions)-1,
			})
		}
		items = append(items, termfmt.TreeItem{Label: "Regions", Children: children, Last: len(r.Errors) == 0})
	}

	if len(r.Errors) > 0 {
		types := make([]string, 0, len(r.Errors))
		for t := range r.Errors {
			types = append(types, t)
		}
		sort.Strings(types)

		children := make([]termfmt.TreeItem, 0, len(types))
		for i, t := range types {
			children = append(children, termfmt.TreeItem{
				Label: t,
				Value: fmt.Sprintf("%d", r.Errors[t]),
				Last:  i == len(types)-1,
			})
		}
		items = append(items, termfmt.TreeItem{Label: "Errors", Children: children, Last: true})
	}

	b.WriteString(termfmt.TreeViewWithOptions(items, opts))
	b.WriteString("\n")
	return b.String()
}

func healthEmoji(h HealthStatus) string {
	switch h {
	case HealthStatusCritical:
		return emoji.GetEmoji("error")
	case HealthStatusWarning:
		return emoji.GetEmoji("warning")
	default:
		return emoji.GetEmoji("success")
	}
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}
