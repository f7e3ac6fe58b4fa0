package stage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks wiring mistakes by the pipeline author:
	// missing required keys, an empty paths column, a component run out of
	// order. Never retried.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnavailable marks a component whose required capability (an
	// external binary, an optional dependency) is missing.
	ErrUnavailable = errors.New("component unavailable")
	// ErrExternalTool marks failures of external processes such as ffmpeg.
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks malformed inputs detected before processing.
	ErrValidation = errors.New("validation error")
)

// Wrap tags an error with a classification marker and component context.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{component, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "component failure"
	}
	return strings.Join(parts, ": ")
}
