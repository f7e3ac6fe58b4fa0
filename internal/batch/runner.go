package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"timbre/internal/frame"
	"timbre/internal/logging"
)

// ItemFunc processes one input key and returns a fragment of zero or more
// rows, all carrying the declared output columns including the join key in
// the caller-visible item value. It returns an error for a recoverable
// per-item failure.
type ItemFunc func(ctx context.Context, item string) (*frame.Frame, error)

// Runner iterates a per-item function over input keys with failure
// isolation, latent progress logging, and periodic checkpointing.
type Runner struct {
	// Logger receives progress and per-item error records. Nil is safe.
	Logger *slog.Logger
	// Description labels the interactive progress bar.
	Description string
	// LogEvery is the latent-log interval in items; defaults to 10. The
	// final item is always logged.
	LogEvery int
	// CheckpointEvery triggers Checkpoint after every P items; zero or a
	// nil Checkpoint disables checkpointing.
	CheckpointEvery int
	// Checkpoint receives the accumulated partial result.
	Checkpoint func(partial *frame.Frame)
	// ShowProgress draws an interactive bar when stderr is a terminal.
	ShowProgress bool
}

// Run applies fn to every item in order and returns the accumulated rows.
// The only error it returns is context cancellation; per-item failures are
// logged and skipped.
func (r *Runner) Run(ctx context.Context, items []string, fn ItemFunc) (*frame.Frame, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logEvery := r.LogEvery
	if logEvery <= 0 {
		logEvery = 10
	}

	var bar *progressbar.ProgressBar
	if r.ShowProgress && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(items),
			progressbar.OptionSetDescription(r.Description),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	acc := frame.New()
	total := len(items)
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return acc, fmt.Errorf("batch interrupted at %d/%d: %w", i, total, err)
		}

		fragment, err := fn(ctx, item)
		if err != nil {
			logger.Error("item processing failed",
				logging.String(logging.FieldItem, item),
				logging.String(logging.FieldPosition, fmt.Sprintf("%d/%d", i+1, total)),
				logging.Error(err),
			)
		} else {
			acc.Append(fragment)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
		if i%logEvery == 0 || i == total-1 {
			logger.Info("processed item",
				logging.String(logging.FieldItem, item),
				logging.String(logging.FieldPosition, fmt.Sprintf("%d/%d", i+1, total)),
			)
		}
		if r.CheckpointEvery > 0 && r.Checkpoint != nil && i > 0 && i%r.CheckpointEvery == 0 {
			r.Checkpoint(acc)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return acc, nil
}
