package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"timbre/internal/components"
	"timbre/internal/logging"
	"timbre/internal/pipeline"
	"timbre/internal/runstore"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var inputFlag string
	var outputFlag string
	var viewFlag string
	var allPathsFlag bool
	var metaFlag bool

	cmd := &cobra.Command{
		Use:   "run [component ...]",
		Short: "Execute the configured pipeline over the input path",
		Long: "Execute the pipeline over the configured input path. Components given as " +
			"arguments override the configured pipeline list.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(inputFlag) != "" {
				cfg.InputPath = inputFlag
			}
			if len(args) > 0 {
				cfg.Pipeline.Components = args
			}
			if len(cfg.Pipeline.Components) == 0 {
				return fmt.Errorf("no components configured: set [pipeline] components or pass them as arguments")
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logOutput := io.Writer(os.Stderr)
			logFile, err := os.OpenFile(filepath.Join(cfg.LogDir, "timbre.log"),
				os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				defer logFile.Close()
				logOutput = io.MultiWriter(os.Stderr, logFile)
			}
			logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: logOutput})
			if err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another run is already in progress (lock %s)", cfg.LockPath())
			}
			defer func() { _ = lock.Unlock() }()

			store, err := runstore.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			run, err := store.CreateRun(ctx, cfg.Pipeline.Components)
			if err != nil {
				return err
			}
			runLogger := logger.With(logging.String(logging.FieldRunID, run.ID))
			recorder := runstore.NewRunRecorder(store, run.ID)

			composer, err := pipeline.Compose(cfg, components.Builtin(), runLogger, recorder)
			if err != nil {
				_ = store.FailRun(context.Background(), run.ID, err)
				return err
			}

			runLogger.Info("run started",
				logging.String("input", cfg.InputPath),
				logging.String("components", strings.Join(cfg.Pipeline.Components, ", ")))
			result, runErr := composer.Process(ctx, nil)
			if runErr != nil {
				_ = store.FailRun(context.Background(), run.ID, runErr)
				return runErr
			}
			if err := store.CompleteRun(ctx, run.ID, result.Frame.Len()); err != nil {
				runLogger.Warn("recording run completion failed", logging.Error(err))
			}

			if strings.TrimSpace(outputFlag) != "" {
				exported := result.Frame
				if viewFlag != "" {
					exported, err = viewFrame(result, viewFlag, allPathsFlag, metaFlag)
					if err != nil {
						return err
					}
				}
				if err := writeFrameCSV(outputFlag, exported); err != nil {
					return err
				}
				runLogger.Info("result written", logging.String("path", outputFlag))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s completed: %d rows, %d columns\n",
				run.ID, result.Frame.Len(), len(result.Frame.Columns()))
			events, err := store.StageEvents(ctx, run.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderStageEvents(events))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Input file or directory, overriding input_path")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the final table as CSV to this path")
	cmd.Flags().StringVar(&viewFlag, "view", "", "Restrict the export to a view: features, classification, or full")
	cmd.Flags().BoolVar(&allPathsFlag, "all-paths", false, "Include the full paths column lineage in the export")
	cmd.Flags().BoolVar(&metaFlag, "meta", false, "Include segment and timing meta columns in the export")
	return cmd
}

func renderStageEvents(events []runstore.StageEvent) string {
	rows := make([][]string, 0, len(events))
	for _, event := range events {
		if event.Status == "started" {
			continue
		}
		detail := event.Error
		if event.Status == "completed" {
			detail = formatElapsed(event.ElapsedSeconds)
		}
		rows = append(rows, []string{
			event.ComponentType,
			event.ComponentName,
			event.Status,
			strconv.Itoa(event.RowCount),
			detail,
		})
	}
	return renderTable([]string{"Stage", "Component", "Status", "Rows", "Detail"}, rows, 3)
}

func formatElapsed(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Millisecond).String()
}
