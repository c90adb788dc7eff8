package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/RegionLens/internal/logger"
	"github.com/yildizm/RegionLens/internal/regions"
	"github.com/yildizm/RegionLens/internal/session"
)

// Run runs the upload screen until the user quits or ctx is cancelled
func Run(ctx context.Context, predictor session.Predictor, table *regions.Table, opts Options, log *logger.Logger) error {
	model := NewUploadModel(ctx, predictor, table, opts, log)
	defer model.Session().Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
