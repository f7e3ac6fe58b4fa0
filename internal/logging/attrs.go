package logging

import (
	"context"
	"log/slog"
	"time"
)

const (
	// FieldComponent tags records with the owning component subject,
	// rendered as "component_type - component_name".
	FieldComponent = "component"
	// FieldRunID carries the pipeline run identifier.
	FieldRunID = "run_id"
	// FieldRecords carries a record count.
	FieldRecords = "records"
	// FieldItem carries the identity of the item being processed.
	FieldItem = "item"
	// FieldPosition carries the "i/N" position within a batch.
	FieldPosition = "position"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags a logger with the component subject. A nil base
// falls back to the no-op logger so components stay safe in tests.
func NewComponentLogger(logger *slog.Logger, componentType, componentName string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, componentType+" - "+componentName))
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
