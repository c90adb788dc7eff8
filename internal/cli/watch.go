package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yildizm/RegionLens/internal/config"
	"github.com/yildizm/RegionLens/internal/formatter"
	"github.com/yildizm/RegionLens/internal/logger"
	"github.com/yildizm/RegionLens/internal/monitor"
	"github.com/yildizm/RegionLens/internal/predict"
	"github.com/yildizm/RegionLens/internal/regions"
	"github.com/yildizm/RegionLens/internal/session"
)

var (
	watchExisting bool
	watchDebounce time.Duration
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Predict images as they appear in a folder",
		Long: `Watch a folder and submit every new or rewritten image to the prediction
service, one request at a time. Results are printed as they arrive.

Rapid successive writes to the same file are collapsed into one prediction.
Press Ctrl+C to stop watching; a session summary is printed to stderr.

Examples:
  regionlens watch ~/Pictures/inbox
  regionlens watch --existing --output csv ./photos > results.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	addServiceFlags(cmd)
	cmd.Flags().BoolVar(&watchExisting, "existing", false, "also predict images already in the folder")
	cmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before a changed file is submitted (overrides config)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	cfg := GetGlobalConfig()
	if err := applyServiceFlags(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("debounce") {
		cfg.Watch.Debounce = watchDebounce
	}

	log := newLogger(cmd)
	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	fw, err := newFolderWatcher(client, cfg, getOutputFormat(), cmd.OutOrStdout(), log)
	if err != nil {
		return err
	}
	defer fw.view.Close()

	watcher, cleanup, err := setupDirWatcher(dir, log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signalContext(cmd)
	defer stop()

	if watchExisting {
		if err := fw.processExisting(ctx, dir); err != nil && ctx.Err() == nil {
			return err
		}
	}

	err = fw.run(ctx, watcher)
	if fw.stats.Total() > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), "\n"+fw.stats.Report().Text(fw.table, colorEnabled(cmd.ErrOrStderr())))
	}
	return err
}

// folderWatcher feeds files from a folder through a single view
type folderWatcher struct {
	view       *session.View
	predictor  session.Predictor
	table      *regions.Table
	format     string
	color      bool
	out        io.Writer
	log        *logger.Logger
	maxBytes   int64
	extensions []string
	queue      *pendingQueue
	stats      *monitor.SessionStats
	rows       int
}

func newFolderWatcher(predictor session.Predictor, cfg *config.Config, format string, out io.Writer, log *logger.Logger) (*folderWatcher, error) {
	// Fail on an unknown format before anything is submitted
	if _, err := formatter.New(format, nil, false); err != nil {
		return nil, err
	}

	return &folderWatcher{
		view:       session.New(session.WithLogger(log)),
		predictor:  predictor,
		table:      cfg.RegionTable(),
		format:     format,
		color:      colorEnabled(out),
		out:        out,
		log:        log.WithComponent("watch"),
		maxBytes:   cfg.Service.MaxUploadBytes,
		extensions: cfg.Watch.Extensions,
		queue:      newPendingQueue(cfg.Watch.Debounce),
		stats:      monitor.NewSessionStats(),
	}, nil
}

// formatter returns the row formatter; CSV writes its header only once
func (fw *folderWatcher) formatter() formatter.Formatter {
	if strings.EqualFold(fw.format, formatter.FormatCSV) {
		return formatter.NewCSV(fw.table, fw.rows == 0)
	}
	f, _ := formatter.New(fw.format, fw.table, fw.color)
	return f
}

// process selects and submits one file and prints the outcome
func (fw *folderWatcher) process(ctx context.Context, path string) error {
	file, err := predict.LoadFile(path, fw.maxBytes)
	if err != nil {
		fw.log.WarnWithFields("skipping file", []logger.Field{logger.F("path", path), logger.Error(err)})
		return nil
	}

	fw.view.Select(file)
	if err := fw.view.SubmitAndWait(ctx, fw.predictor); err != nil {
		fw.log.DebugWithFields("prediction failed", []logger.Field{logger.F("path", path), logger.Error(err)})
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	snap := fw.view.Snapshot()
	fw.stats.Record(snap)

	output, err := fw.formatter().Format(snap)
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}

	buf := bytes.NewBuffer(output)
	ensureNewline(buf)
	if _, err := fw.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	fw.rows++
	return nil
}

// processExisting submits the images already present, in name order
func (fw *folderWatcher) processExisting(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !predict.IsImageName(entry.Name(), fw.extensions) {
			continue
		}
		if err := fw.process(ctx, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// handleEvent queues image files that were created or written
func (fw *folderWatcher) handleEvent(event fsnotify.Event, now time.Time) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !predict.IsImageName(event.Name, fw.extensions) {
		return
	}
	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return
	}
	fw.queue.Touch(event.Name, now)
}

// run runs the main watch loop until ctx is cancelled
func (fw *folderWatcher) run(ctx context.Context, watcher *fsnotify.Watcher) error {
	ticker := time.NewTicker(tickInterval(fw.queue.debounce))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fw.log.Debug("stopping watch, %d file(s) pending", fw.queue.Len())
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			fw.handleEvent(event, time.Now())

		case now := <-ticker.C:
			for _, path := range fw.queue.Due(now) {
				if err := fw.process(ctx, path); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			fw.log.Warn("watcher error: %v", err)
		}
	}
}

func tickInterval(debounce time.Duration) time.Duration {
	interval := debounce / 2
	if interval < 50*time.Millisecond {
		interval = 50 * time.Millisecond
	}
	return interval
}

// pendingQueue collapses bursts of events per path and releases a path once
// it has been quiet for the debounce period
type pendingQueue struct {
	debounce time.Duration
	items    map[string]time.Time
}

func newPendingQueue(debounce time.Duration) *pendingQueue {
	return &pendingQueue{
		debounce: debounce,
		items:    make(map[string]time.Time),
	}
}

// Touch records activity on path at now
func (q *pendingQueue) Touch(path string, now time.Time) {
	q.items[path] = now
}

// Due removes and returns the paths quiet since now-debounce, oldest first
func (q *pendingQueue) Due(now time.Time) []string {
	var due []string
	for path, last := range q.items {
		if now.Sub(last) >= q.debounce {
			due = append(due, path)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		ti, tj := q.items[due[i]], q.items[due[j]]
		if ti.Equal(tj) {
			return due[i] < due[j]
		}
		return ti.Before(tj)
	})

	for _, path := range due {
		delete(q.items, path)
	}
	return due
}

// Len returns the number of pending paths
func (q *pendingQueue) Len() int {
	return len(q.items)
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher, log *logger.Logger) {
	if err := watcher.Close(); err != nil {
		log.Warn("failed to close watcher: %v", err)
	}
}

// setupDirWatcher validates dir and starts watching it
func setupDirWatcher(dir string, log *logger.Logger) (*fsnotify.Watcher, func(), error) {
	if err := validateWatchDirPath(dir); err != nil {
		return nil, nil, fmt.Errorf("invalid directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Clean(dir)); err != nil {
		cleanupWatcher(watcher, log)
		return nil, nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	log.Info("watching %s, press Ctrl+C to stop", dir)
	return watcher, func() { cleanupWatcher(watcher, log) }, nil
}

// validateWatchDirPath validates that a path is a directory that can be watched
func validateWatchDirPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty directory path")
	}

	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is a file, must be a directory", path)
	}
	return nil
}
