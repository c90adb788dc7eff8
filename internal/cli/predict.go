package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/RegionLens/internal/config"
	"github.com/yildizm/RegionLens/internal/formatter"
	"github.com/yildizm/RegionLens/internal/predict"
	"github.com/yildizm/RegionLens/internal/preview"
	"github.com/yildizm/RegionLens/internal/session"
)

var (
	serviceURL     string
	serviceTimeout time.Duration
	predictPreview bool
	predictOutput  string
)

// addServiceFlags registers the flags that override the service section
func addServiceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serviceURL, "url", "", "prediction service base URL (overrides config)")
	cmd.Flags().DurationVar(&serviceTimeout, "timeout", 0, "request timeout, 0 waits indefinitely (overrides config)")
}

// applyServiceFlags copies explicitly set service flags onto cfg
func applyServiceFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("url") {
		cfg.Service.BaseURL = serviceURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Service.Timeout = serviceTimeout
	}
	if err := cfg.ToClientConfig().Validate(); err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}
	return nil
}

func newPredictCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict <image>",
		Short: "Predict the region of a single image",
		Long: `Upload one image to the prediction service and print the result.

The command exits with a non-zero status when the prediction fails, so it can
be used from scripts. Use --output to pick text, json, markdown or csv.

Examples:
  regionlens predict photo.jpg
  regionlens predict --output json photo.jpg
  regionlens predict --url http://gpu-box:5001 --timeout 30s photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: runPredict,
	}

	addServiceFlags(cmd)
	cmd.Flags().BoolVar(&predictPreview, "preview", false, "print an image preview before the result (text output only)")
	cmd.Flags().StringVar(&predictOutput, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	if err := applyServiceFlags(cmd, cfg); err != nil {
		return err
	}

	log := newLogger(cmd)
	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := predictOutput == "" && colorEnabled(out)
	format := getOutputFormat()
	f, err := formatter.New(format, cfg.RegionTable(), color)
	if err != nil {
		return err
	}

	file, err := predict.LoadFile(args[0], cfg.Service.MaxUploadBytes)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	view := session.New(session.WithLogger(log))
	defer view.Close()

	view.Select(file)
	if err := view.SubmitAndWait(ctx, client); err != nil {
		log.Debug("prediction failed: %v", err)
	}

	var buf bytes.Buffer
	if predictPreview && (format == "" || format == formatter.FormatText) {
		writePreview(&buf, file, cfg, color)
	}

	output, err := f.Format(view.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	buf.Write(output)
	ensureNewline(&buf)

	if err := writeOutput(out, buf.Bytes(), predictOutput); err != nil {
		return err
	}

	if view.Kind() == session.KindFailed {
		return fmt.Errorf("prediction failed: %s", view.ErrorMessage())
	}
	return nil
}

// writePreview renders the image preview; undecodable images are skipped
func writePreview(w io.Writer, file *predict.File, cfg *config.Config, color bool) {
	p, err := preview.Build(file, cfg.Output.PreviewWidth, color)
	if err != nil {
		return
	}
	fmt.Fprintln(w, p.Summary())
	fmt.Fprintln(w, p.String())
	fmt.Fprintln(w)
}

// signalContext derives a context cancelled by Ctrl+C or SIGTERM
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func ensureNewline(buf *bytes.Buffer) {
	if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
}

// writeOutput writes to path when set, otherwise to w
func writeOutput(w io.Writer, data []byte, path string) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", path)
	}
	return nil
}
