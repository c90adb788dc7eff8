package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/yildizm/RegionLens/internal/config"
	"github.com/yildizm/RegionLens/internal/emoji"
	"github.com/yildizm/RegionLens/internal/logger"
	"github.com/yildizm/RegionLens/internal/predict"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string

	// globalConfig is loaded once per invocation before any subcommand runs
	globalConfig *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "regionlens",
		Short: "Predict where a photo was taken",
		Long: `RegionLens uploads a photo to a region prediction service and shows
the predicted region together with the model's confidence.

Use the interactive screen to pick an image and submit it, or run single
predictions from scripts. A local stub service is included for development.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)

			if cmd.Annotations[skipConfigAnnotation] != "" {
				globalConfig = nil
				return nil
			}
			return loadGlobalConfig()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (text, json, markdown, csv)")

	// Add subcommands
	rootCmd.AddCommand(newUICommand())
	rootCmd.AddCommand(newPredictCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newRegionsCommand())
	rootCmd.AddCommand(newStubServerCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Long:        "Display version number, build commit, date, and runtime information",
		Args:        cobra.NoArgs,
		Annotations: skipConfig(),
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "RegionLens %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func loadGlobalConfig() error {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	globalConfig = cfg
	return nil
}

// GetGlobalConfig returns the configuration for the running command, falling
// back to defaults when none was loaded
func GetGlobalConfig() *config.Config {
	if globalConfig == nil {
		return config.DefaultConfig()
	}
	return globalConfig
}

// Global helpers
func isVerbose() bool {
	return verbose || GetGlobalConfig().Output.Verbose
}

func getOutputFormat() string {
	if outputFmt != "" {
		return outputFmt
	}
	return GetGlobalConfig().Output.DefaultFormat
}

// colorEnabled resolves --no-color, NO_COLOR and the configured color mode
// against whether w is a terminal
func colorEnabled(w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}

	switch GetGlobalConfig().Output.ColorMode {
	case "always":
		return true
	case "never":
		return false
	}

	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// newLogger returns the command logger writing to the command's stderr
func newLogger(cmd *cobra.Command) *logger.Logger {
	log := logger.NewWithCallback("cli", isVerbose)
	log.SetOutput(cmd.ErrOrStderr())
	return log
}

// newClient builds a prediction client from the loaded configuration
func newClient(cfg *config.Config, log *logger.Logger) (*predict.Client, error) {
	client, err := predict.New(cfg.ToClientConfig(), predict.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("invalid service configuration: %w", err)
	}
	log.Debug("prediction service endpoint %s", client.Endpoint())
	return client, nil
}
