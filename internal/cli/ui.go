package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yildizm/RegionLens/internal/ui"
)

var (
	uiLogFile   string
	uiNoPreview bool
)

func newUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui [image]",
		Short: "Open the interactive upload screen",
		Long: `Open the interactive screen: type an image path, submit it, and see the
predicted region with its confidence.

The terminal belongs to the screen while it runs, so log output is discarded
unless --log-file is given.

Examples:
  regionlens ui
  regionlens ui ~/Pictures/kyoto.jpg
  regionlens ui --log-file regionlens.log -v`,
		Args: cobra.MaximumNArgs(1),
		RunE: runUI,
	}

	addServiceFlags(cmd)
	cmd.Flags().StringVar(&uiLogFile, "log-file", "", "write logs to this file while the screen is open")
	cmd.Flags().BoolVar(&uiNoPreview, "no-preview", false, "do not render image previews")

	return cmd
}

func runUI(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	if err := applyServiceFlags(cmd, cfg); err != nil {
		return err
	}

	log := newLogger(cmd)
	logOut, closeLog, err := openLogFile(uiLogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	log.SetOutput(logOut)

	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	if cfg.Output.Theme != "" && !ui.SetThemeByName(cfg.Output.Theme) {
		return fmt.Errorf("unknown theme: %s", cfg.Output.Theme)
	}

	opts := ui.Options{
		MaxUploadBytes: cfg.Service.MaxUploadBytes,
		ShowPreview:    cfg.Output.ShowPreview && !uiNoPreview,
		PreviewWidth:   cfg.Output.PreviewWidth,
		Color:          colorEnabled(os.Stdout),
	}
	if len(args) == 1 {
		opts.InitialPath = args[0]
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	return ui.Run(ctx, client, cfg.RegionTable(), opts, log)
}

// openLogFile opens path for appending, or returns a discarding writer
func openLogFile(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}

	// #nosec G304 - path is chosen by the user on purpose
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
	}, nil
}
