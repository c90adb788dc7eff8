package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/RegionLens/internal/predict"
	"github.com/yildizm/RegionLens/internal/preview"
	"github.com/yildizm/RegionLens/internal/session"
)

// fileLoadedMsg carries the result of reading a selected path
type fileLoadedMsg struct {
	seq     int
	path    string
	file    *predict.File
	preview *preview.Preview
	err     error
}

// predictionDoneMsg carries a finished attempt back to the Update loop
type predictionDoneMsg struct {
	outcome session.Outcome
}

type tickMsg struct {
	id int
}

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func tick(id int) tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

// loadFileCmd reads the file off the Update loop and renders its preview
func loadFileCmd(seq int, path string, opts Options) tea.Cmd {
	return func() tea.Msg {
		file, err := predict.LoadFile(path, opts.MaxUploadBytes)
		if err != nil {
			return fileLoadedMsg{seq: seq, path: path, err: err}
		}

		msg := fileLoadedMsg{seq: seq, path: path, file: file}
		if opts.ShowPreview {
			// A file that cannot be decoded is still submitted; the service decides
			if p, err := preview.Build(file, opts.PreviewWidth, opts.Color); err == nil {
				msg.preview = p
			}
		}
		return msg
	}
}

// runAttemptCmd performs the request off the Update loop
func runAttemptCmd(attempt *session.Attempt, predictor session.Predictor) tea.Cmd {
	return func() tea.Msg {
		return predictionDoneMsg{outcome: attempt.Run(predictor)}
	}
}
