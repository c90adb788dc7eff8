package formatter

import (
	"strings"
	"time"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/RegionLens/internal/emoji"
	"github.com/yildizm/RegionLens/internal/predict"
	"github.com/yildizm/RegionLens/internal/regions"
	"github.com/yildizm/RegionLens/internal/session"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts  *termfmt.TerminalOptions
	table *regions.Table
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(table *regions.Table, color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return &terminalFormatter{opts: opts, table: table}
}

func (f *terminalFormatter) Format(snap *session.Snapshot) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)

	f.writeImage(&b, snap)

	switch snap.State {
	case session.KindSuccess.String():
		f.writePrediction(&b, snap)
	case session.KindFailed.String():
		f.writeError(&b, snap)
	case session.KindSubmitting.String():
		b.WriteString(emoji.GetEmoji("waiting") + " Predicting...\n")
	default:
		b.WriteString(emoji.GetEmoji("info") + " " + predict.MsgNoFile + "\n")
	}

	return []byte(b.String()), nil
}

func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "RegionLens Prediction"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

func (f *terminalFormatter) writeImage(b *strings.Builder, snap *session.Snapshot) {
	if snap.FileName == "" {
		return
	}

	b.WriteString(emoji.GetEmoji("camera") + " Image\n")

	items := []termfmt.TreeItem{
		{Label: "Name", Value: snap.FileName},
		{Label: "Size", Value: humanSize(snap.FileSize)},
		{Label: "Type", Value: snap.ContentType, Last: true},
	}

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writePrediction(b *strings.Builder, snap *session.Snapshot) {
	b.WriteString(emoji.GetEmoji("globe") + " Prediction\n")

	confidence := 0.0
	if snap.Confidence != nil {
		confidence = *snap.Confidence
	}

	items := []termfmt.TreeItem{
		{Label: "Region", Value: f.table.Label(snap.Prediction)},
		{
			Label: "Confidence",
			Value: snap.ConfidencePercent(),
			Children: []termfmt.TreeItem{
				{Label: termfmt.CreateConfidenceBar(confidence, f.opts), Value: "", Last: true},
			},
		},
		{Label: "Elapsed", Value: snap.Elapsed.Round(time.Millisecond).String(), Last: true},
	}

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")
}

func (f *terminalFormatter) writeError(b *strings.Builder, snap *session.Snapshot) {
	b.WriteString(emoji.GetEmoji("error") + " Prediction failed\n")

	items := []termfmt.TreeItem{{Label: "Message", Value: snap.Error}}
	if snap.ErrorType != "" {
		items = append(items, termfmt.TreeItem{Label: "Kind", Value: snap.ErrorType})
	}
	items[len(items)-1].Last = true

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")
}
