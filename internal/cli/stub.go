package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/RegionLens/internal/logger"
	"github.com/yildizm/RegionLens/internal/stubservice"
)

var (
	stubAddr    string
	stubClasses string
	stubLatency time.Duration
	stubField   string
)

func newStubServerCommand() *cobra.Command {
	defaults := stubservice.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "stub-server",
		Short: "Run a local stand-in for the prediction service",
		Long: `Run a local HTTP service that speaks the prediction contract:
POST /predict with a multipart image part, answering with
{"prediction": ..., "confidence": ...}.

Predictions are deterministic per image content. Class names default to the
built-in region table and can be read from a class_names.txt style file, one
name per line. GET /healthz and GET /metrics are also served.

Examples:
  regionlens stub-server
  regionlens stub-server --addr :8080 --latency 2s
  regionlens stub-server --classes class_names.txt`,
		Args: cobra.NoArgs,
		RunE: runStubServer,
	}

	cmd.Flags().StringVar(&stubAddr, "addr", defaults.Addr, "listen address")
	cmd.Flags().StringVar(&stubClasses, "classes", "", "class names file, one per line (default: region table)")
	cmd.Flags().DurationVar(&stubLatency, "latency", 0, "artificial delay before every prediction")
	cmd.Flags().StringVar(&stubField, "field", defaults.FieldName, "multipart part carrying the image")

	return cmd
}

func runStubServer(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	log := newLogger(cmd)

	classes := cfg.RegionTable().Names()
	if stubClasses != "" {
		loaded, err := stubservice.LoadClasses(stubClasses)
		if err != nil {
			return err
		}
		// An empty file is served as "not loaded", like a missing model
		classes = loaded
	}

	classifier := stubservice.NewHashClassifier(classes)

	opts := stubservice.DefaultOptions()
	opts.Addr = stubAddr
	opts.FieldName = stubField
	opts.Latency = stubLatency
	opts.MaxUploadBytes = cfg.Service.MaxUploadBytes

	log.InfoWithFields("starting stub service", []logger.Field{
		logger.F("addr", opts.Addr),
		logger.F("classes", len(classifier.Classes())),
		logger.F("latency", opts.Latency),
	})

	fmt.Fprintf(cmd.OutOrStdout(), "%s Stub service on %s (%d classes), press Ctrl+C to stop\n",
		GetEmoji("server"), opts.Addr, len(classifier.Classes()))

	ctx, stop := signalContext(cmd)
	defer stop()

	server := stubservice.New(classifier, opts, log)
	return server.ListenAndServe(ctx)
}
