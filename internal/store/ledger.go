package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// ErrNotFound means the run ID has no row in the ledger.
var ErrNotFound = errors.New("run not found in ledger")

// Job is one submitted circuit: everything needed to reconstruct its
// handle and shape its outcome table after a restart.
type Job struct {
	RunID       uuid.UUID
	Device      string
	CircuitName string
	Shots       int
	Bits        []circuit.Bit
	Postprocess string
	CreatedAt   time.Time
}

// ResultRecord is a fetched terminal result.
type ResultRecord struct {
	RunID     uuid.UUID
	Status    string
	Message   string
	Table     [][]int
	FetchedAt time.Time
}

// RecordJob inserts a submitted job. Run IDs are unique; inserting the
// same ID twice fails.
func (s *Store) RecordJob(ctx context.Context, job *Job) error {
	bits, err := json.Marshal(job.Bits)
	if err != nil {
		return fmt.Errorf("encode bits: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (run_id, device, circuit_name, shots, bits, postprocess)
		VALUES (?, ?, ?, ?, ?, ?)`,
		job.RunID.String(), job.Device, job.CircuitName, job.Shots, string(bits), job.Postprocess,
	)
	if err != nil {
		return fmt.Errorf("record job %s: %w", job.RunID, err)
	}
	return nil
}

// Job fetches one submitted job by run ID.
func (s *Store) Job(ctx context.Context, runID uuid.UUID) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, device, circuit_name, shots, bits, postprocess, created_at
		FROM jobs WHERE run_id = ?`, runID.String())
	return scanJob(row)
}

// Jobs lists the submitted jobs for a device, newest first. An empty
// device lists every job.
func (s *Store) Jobs(ctx context.Context, device string) ([]*Job, error) {
	query := `
		SELECT run_id, device, circuit_name, shots, bits, postprocess, created_at
		FROM jobs`
	args := []any{}
	if device != "" {
		query += ` WHERE device = ?`
		args = append(args, device)
	}
	query += ` ORDER BY created_at DESC, run_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// RecordResult stores a terminal result for a previously recorded job.
// Re-recording the same run ID replaces the row; terminal results never
// change, so this is idempotent in practice.
func (s *Store) RecordResult(ctx context.Context, rec *ResultRecord) error {
	outcomes := ""
	if rec.Table != nil {
		raw, err := json.Marshal(rec.Table)
		if err != nil {
			return fmt.Errorf("encode outcomes: %w", err)
		}
		outcomes = string(raw)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO results (run_id, status, message, outcomes)
		VALUES (?, ?, ?, ?)`,
		rec.RunID.String(), rec.Status, rec.Message, outcomes,
	)
	if err != nil {
		return fmt.Errorf("record result %s: %w", rec.RunID, err)
	}
	return nil
}

// Result fetches a stored terminal result, or ErrNotFound if none was
// recorded yet.
func (s *Store) Result(ctx context.Context, runID uuid.UUID) (*ResultRecord, error) {
	var (
		rec      ResultRecord
		id       string
		outcomes string
		fetched  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, status, message, outcomes, fetched_at
		FROM results WHERE run_id = ?`, runID.String(),
	).Scan(&id, &rec.Status, &rec.Message, &outcomes, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch result %s: %w", runID, err)
	}

	rec.RunID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", id, err)
	}
	if outcomes != "" {
		if err := json.Unmarshal([]byte(outcomes), &rec.Table); err != nil {
			return nil, fmt.Errorf("decode outcomes for %s: %w", runID, err)
		}
	}
	rec.FetchedAt, err = parseTimestamp(fetched)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job     Job
		id      string
		bits    string
		created string
	)
	err := row.Scan(&id, &job.Device, &job.CircuitName, &job.Shots, &bits, &job.Postprocess, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}

	job.RunID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(bits), &job.Bits); err != nil {
		return nil, fmt.Errorf("decode bits for %s: %w", job.RunID, err)
	}
	job.CreatedAt, err = parseTimestamp(created)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04:05.999Z", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}
