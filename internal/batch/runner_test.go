package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"timbre/internal/frame"
	"timbre/internal/logging"
)

func TestRunIsolatesItemFailures(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	runner := &Runner{Logger: logger}
	items := []string{"a", "bad", "c"}
	acc, err := runner.Run(context.Background(), items, func(_ context.Context, item string) (*frame.Frame, error) {
		if item == "bad" {
			return nil, errors.New("boom")
		}
		f := frame.New()
		f.AppendRow(frame.Row{"item": item})
		return f, nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := acc.Strings("item"); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("rows = %v", got)
	}
	if !strings.Contains(buf.String(), "item processing failed") {
		t.Fatalf("failure not logged: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "item=bad") {
		t.Fatalf("failed item not identified: %q", buf.String())
	}
}

func TestRunPreservesOrderAcrossFanOut(t *testing.T) {
	runner := &Runner{}
	items := []string{"x", "y"}
	acc, err := runner.Run(context.Background(), items, func(_ context.Context, item string) (*frame.Frame, error) {
		f := frame.New()
		for i := 0; i < 2; i++ {
			f.AppendRow(frame.Row{"segment": fmt.Sprintf("%s_%d", item, i)})
		}
		return f, nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{"x_0", "x_1", "y_0", "y_1"}
	if got := acc.Strings("segment"); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v", got)
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &Runner{}
	calls := 0
	acc, err := runner.Run(ctx, []string{"a", "b", "c"}, func(_ context.Context, item string) (*frame.Frame, error) {
		calls++
		if item == "a" {
			cancel()
		}
		f := frame.New()
		f.AppendRow(frame.Row{"item": item})
		return f, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, cancellation must stop the loop", calls)
	}
	if acc.Len() != 1 {
		t.Fatalf("partial rows = %d", acc.Len())
	}
}

func TestRunCheckpoints(t *testing.T) {
	var checkpoints []int
	runner := &Runner{
		CheckpointEvery: 2,
		Checkpoint: func(partial *frame.Frame) {
			checkpoints = append(checkpoints, partial.Len())
		},
	}
	items := []string{"a", "b", "c", "d", "e"}
	if _, err := runner.Run(context.Background(), items, func(_ context.Context, item string) (*frame.Frame, error) {
		f := frame.New()
		f.AppendRow(frame.Row{"item": item})
		return f, nil
	}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !reflect.DeepEqual(checkpoints, []int{3, 5}) {
		t.Fatalf("checkpoints = %v", checkpoints)
	}
}
