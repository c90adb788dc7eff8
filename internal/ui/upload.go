package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/yildizm/RegionLens/internal/emoji"
	"github.com/yildizm/RegionLens/internal/logger"
	"github.com/yildizm/RegionLens/internal/predict"
	"github.com/yildizm/RegionLens/internal/preview"
	"github.com/yildizm/RegionLens/internal/regions"
	"github.com/yildizm/RegionLens/internal/session"
)

// Options configures the upload screen
type Options struct {
	// InitialPath is loaded as soon as the program starts
	InitialPath string

	MaxUploadBytes int64
	ShowPreview    bool
	PreviewWidth   int
	Color          bool
}

type focusArea int

const (
	focusPath focusArea = iota
	focusSubmit
)

// UploadModel is the interactive upload, predict and display screen
type UploadModel struct {
	ctx       context.Context
	view      *session.View
	predictor session.Predictor
	table     *regions.Table
	opts      Options
	log       *logger.Logger
	styles    *Styles

	width  int
	height int

	// Path input state
	input    []rune
	focus    focusArea
	inputErr string
	loadSeq  int
	loading  bool
	preview  *preview.Preview

	// Spinner state
	tickID       int
	spinnerFrame int

	quitting bool
}

// NewUploadModel creates the upload screen over a fresh view
func NewUploadModel(ctx context.Context, predictor session.Predictor, table *regions.Table, opts Options, log *logger.Logger) *UploadModel {
	if log == nil {
		log = logger.Nop()
	}
	if table == nil {
		table = regions.Default()
	}

	return &UploadModel{
		ctx:       ctx,
		view:      session.New(session.WithLogger(log)),
		predictor: predictor,
		table:     table,
		opts:      opts,
		log:       log.WithComponent("ui"),
		styles:    GetStyles(opts.Color),
		input:     []rune(opts.InitialPath),
	}
}

// Session returns the underlying state holder
func (m *UploadModel) Session() *session.View {
	return m.view
}

// Init loads the initial path, if any
func (m *UploadModel) Init() tea.Cmd {
	if m.opts.InitialPath == "" {
		return nil
	}
	return m.loadPath()
}

// Update handles messages
func (m *UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case fileLoadedMsg:
		m.handleFileLoaded(msg)
	case predictionDoneMsg:
		m.handlePredictionDone(msg)
	case tickMsg:
		return m.handleTick(msg)
	}

	return m, nil
}

func (m *UploadModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m.quit()
	case "tab", "shift+tab":
		if m.focus == focusPath {
			m.focus = focusSubmit
		} else {
			m.focus = focusPath
		}
		return m, nil
	case "ctrl+s":
		return m, m.submit()
	case "ctrl+u":
		m.input = m.input[:0]
		m.inputErr = ""
		m.preview = nil
		m.view.Select(nil)
		return m, nil
	}

	if m.focus == focusSubmit {
		switch msg.String() {
		case "enter", " ":
			return m, m.submit()
		case "q":
			return m.quit()
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		return m, m.loadPath()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m *UploadModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.view.Close()
	return m, tea.Quit
}

// loadPath reads the typed path. A new selection replaces the old one only
// once the file has been read successfully.
func (m *UploadModel) loadPath() tea.Cmd {
	path := strings.TrimSpace(string(m.input))
	path = strings.Trim(path, `"'`)
	if path == "" {
		m.inputErr = predict.MsgNoFile
		return nil
	}

	m.loadSeq++
	m.loading = true
	m.inputErr = ""
	return loadFileCmd(m.loadSeq, path, m.opts)
}

func (m *UploadModel) handleFileLoaded(msg fileLoadedMsg) {
	if msg.seq != m.loadSeq {
		return
	}
	m.loading = false

	if msg.err != nil {
		m.inputErr = predict.DisplayMessage(msg.err)
		m.log.WarnWithFields("failed to load file", []logger.Field{logger.F("path", msg.path), logger.Error(msg.err)})
		return
	}

	m.view.Select(msg.file)
	m.preview = msg.preview
	m.focus = focusSubmit
}

func (m *UploadModel) submit() tea.Cmd {
	attempt, err := m.view.Submit(m.ctx)
	if err != nil {
		// Busy and closed are no-ops; a missing file is now shown by the view
		return nil
	}

	m.tickID++
	m.spinnerFrame = 0
	return tea.Batch(runAttemptCmd(attempt, m.predictor), tick(m.tickID))
}

func (m *UploadModel) handlePredictionDone(msg predictionDoneMsg) {
	if !m.view.Resolve(msg.outcome) {
		return
	}
	if err := m.view.Err(); err != nil {
		m.log.WarnWithFields("prediction failed", []logger.Field{logger.Attempt(msg.outcome.AttemptID), logger.Error(err)})
	} else {
		m.log.InfoWithFields("prediction received", []logger.Field{logger.Attempt(msg.outcome.AttemptID), logger.Duration(msg.outcome.Elapsed)})
	}
}

func (m *UploadModel) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.id != m.tickID || !m.view.Loading() {
		return m, nil
	}
	m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerChars)
	return m, tick(m.tickID)
}

// View renders the upload screen
func (m *UploadModel) View() string {
	if m.quitting {
		return ""
	}

	s := m.styles
	sections := []string{
		s.Title.Render(emoji.GetEmoji("globe") + " RegionLens"),
		s.Subtitle.Render("Predict the region a photo was taken in"),
		"",
		m.renderInput(),
	}

	if m.inputErr != "" {
		sections = append(sections, s.Error.Render(emoji.GetEmoji("warning")+" "+m.inputErr))
	}

	if file := m.view.SelectedFile(); file != nil {
		sections = append(sections, m.renderFile(file))
	}

	sections = append(sections, "", m.renderButton())

	if result := m.renderOutcome(); result != "" {
		sections = append(sections, "", result)
	}

	sections = append(sections, "", m.renderRegions(), "", m.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *UploadModel) renderInput() string {
	text := string(m.input)
	style := m.styles.Input
	if m.focus == focusPath {
		text += "█"
		style = m.styles.InputFocused
	}
	if text == "" {
		text = m.styles.Muted.Render("path/to/photo.jpg")
	}

	label := m.styles.Label.Render(emoji.GetEmoji("camera") + " Image")
	if m.loading {
		label += m.styles.Muted.Render("  reading...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, style.Render(text))
}

func (m *UploadModel) renderFile(file *predict.File) string {
	if m.preview != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Muted.Render(m.preview.Summary()),
			m.preview.String(),
		)
	}
	return m.styles.Muted.Render(fmt.Sprintf("%s · %s · %s", file.Name, file.ContentType, humanize.Bytes(uint64(file.Size()))))
}

func (m *UploadModel) renderButton() string {
	switch {
	case m.view.Loading():
		return m.styles.ButtonDisabled.Render(spinnerChars[m.spinnerFrame] + " Predicting...")
	case m.focus == focusSubmit:
		return m.styles.ButtonFocused.Render(emoji.GetEmoji("upload") + " Predict")
	default:
		return m.styles.Button.Render(emoji.GetEmoji("upload") + " Predict")
	}
}

func (m *UploadModel) renderOutcome() string {
	if label, ok := m.view.Prediction(); ok {
		confidence, _ := m.view.Confidence()
		result := predict.Prediction{Label: label, Confidence: confidence}
		lines := []string{
			m.styles.Success.Render(emoji.GetEmoji("success") + " Prediction"),
			fmt.Sprintf("%s Region:     %s", emoji.GetEmoji("pin"), m.table.Label(result.Label)),
			fmt.Sprintf("%s Confidence: %s", emoji.GetEmoji("score"), result.Percent()),
		}
		return m.styles.ResultBox.Render(strings.Join(lines, "\n"))
	}

	if msg := m.view.ErrorMessage(); msg != "" {
		return m.styles.ErrorBox.Render(m.styles.Error.Render(emoji.GetEmoji("error") + " " + msg))
	}
	return ""
}

func (m *UploadModel) renderRegions() string {
	all := m.table.All()
	names := make([]string, 0, len(all))
	for _, r := range all {
		names = append(names, r.String())
	}

	body := m.styles.Label.Render("Regions") + "\n" + strings.Join(names, " · ")
	if m.width > 4 {
		return m.styles.Panel.Width(m.width - 4).Render(body)
	}
	return m.styles.Panel.Render(body)
}

func (m *UploadModel) renderHelp() string {
	return m.styles.Muted.Render("enter: load/predict · tab: switch focus · ctrl+s: predict · ctrl+u: clear · esc: quit")
}
