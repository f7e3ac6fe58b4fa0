package runstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one pipeline invocation.
type Run struct {
	ID         string
	Status     string
	Components []string
	RowCount   int
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StageEvent is one recorded stage transition within a run.
type StageEvent struct {
	ID             int64
	RunID          string
	ComponentType  string
	ComponentName  string
	Status         string
	RowCount       int
	ElapsedSeconds float64
	Error          string
	CreatedAt      time.Time
}

// timeLayout keeps fixed-width fractional seconds so lexical ordering in
// SQL matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const componentListSeparator = ","

// CreateRun opens a new ledger entry for the given component list.
func (s *Store) CreateRun(ctx context.Context, components []string) (*Run, error) {
	now := time.Now().UTC()
	run := &Run{
		ID:         uuid.NewString(),
		Status:     StatusRunning,
		Components: components,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, components, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Status, strings.Join(components, componentListSeparator),
		now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run finished with its final row count.
func (s *Store) CompleteRun(ctx context.Context, runID string, rowCount int) error {
	return s.updateRun(ctx, runID, StatusCompleted, rowCount, "")
}

// FailRun marks a run failed with the terminal error.
func (s *Store) FailRun(ctx context.Context, runID string, runErr error) error {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	return s.updateRun(ctx, runID, StatusFailed, 0, message)
}

func (s *Store) updateRun(ctx context.Context, runID, status string, rowCount int, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, row_count = ?, error = ?, updated_at = ? WHERE id = ?`,
		status, rowCount, message, time.Now().UTC().Format(timeLayout), runID)
	if err != nil {
		return fmt.Errorf("update run %s: %w", runID, err)
	}
	return nil
}

// GetRun loads one run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, components, row_count, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, components, row_count, error, created_at, updated_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (*Run, error) {
	var (
		run        Run
		components string
		createdAt  string
		updatedAt  string
	)
	if err := scanner.Scan(&run.ID, &run.Status, &components, &run.RowCount, &run.Error, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if components != "" {
		run.Components = strings.Split(components, componentListSeparator)
	}
	run.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	run.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &run, nil
}

// RecordStageEvent appends one stage transition to a run.
func (s *Store) RecordStageEvent(ctx context.Context, event StageEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stage_events (run_id, component_type, component_name, status, row_count, elapsed_seconds, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.RunID, event.ComponentType, event.ComponentName, event.Status,
		event.RowCount, event.ElapsedSeconds, event.Error,
		time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record stage event: %w", err)
	}
	return nil
}

// StageEvents returns a run's stage transitions in insertion order.
func (s *Store) StageEvents(ctx context.Context, runID string) ([]StageEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, component_type, component_name, status, row_count, elapsed_seconds, error, created_at
		 FROM stage_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("stage events for %s: %w", runID, err)
	}
	defer rows.Close()

	var events []StageEvent
	for rows.Next() {
		var (
			event     StageEvent
			createdAt string
		)
		if err := rows.Scan(&event.ID, &event.RunID, &event.ComponentType, &event.ComponentName,
			&event.Status, &event.RowCount, &event.ElapsedSeconds, &event.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("stage events for %s: %w", runID, err)
		}
		event.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		events = append(events, event)
	}
	return events, rows.Err()
}
