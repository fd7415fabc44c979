package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, s2.Close())
}

func TestRecordJob_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job := &Job{
		RunID:       uuid.New(),
		Device:      "garnet",
		CircuitName: "bell",
		Shots:       100,
		Bits:        []circuit.Bit{0, 1},
		Postprocess: `{"flip_bits":[1]}`,
	}
	require.NoError(t, s.RecordJob(ctx, job))

	got, err := s.Job(ctx, job.RunID)
	require.NoError(t, err)
	assert.Equal(t, job.RunID, got.RunID)
	assert.Equal(t, "garnet", got.Device)
	assert.Equal(t, "bell", got.CircuitName)
	assert.Equal(t, 100, got.Shots)
	assert.Equal(t, []circuit.Bit{0, 1}, got.Bits)
	assert.Equal(t, `{"flip_bits":[1]}`, got.Postprocess)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRecordJob_DuplicateRunID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job := &Job{RunID: uuid.New(), Device: "garnet", CircuitName: "a", Shots: 1, Bits: []circuit.Bit{0}}
	require.NoError(t, s.RecordJob(ctx, job))
	assert.Error(t, s.RecordJob(ctx, job))
}

func TestJob_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Job(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobs_FiltersByDevice(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, device := range []string{"garnet", "garnet", "spark"} {
		job := &Job{RunID: uuid.New(), Device: device, CircuitName: "c", Shots: 1, Bits: []circuit.Bit{0}}
		require.NoError(t, s.RecordJob(ctx, job))
	}

	garnet, err := s.Jobs(ctx, "garnet")
	require.NoError(t, err)
	assert.Len(t, garnet, 2)

	all, err := s.Jobs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecordResult_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job := &Job{RunID: uuid.New(), Device: "garnet", CircuitName: "bell", Shots: 2, Bits: []circuit.Bit{0, 1}}
	require.NoError(t, s.RecordJob(ctx, job))

	rec := &ResultRecord{
		RunID:  job.RunID,
		Status: "COMPLETED",
		Table:  [][]int{{0, 0}, {0, 1}},
	}
	require.NoError(t, s.RecordResult(ctx, rec))

	got, err := s.Result(ctx, job.RunID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", got.Status)
	assert.Equal(t, [][]int{{0, 0}, {0, 1}}, got.Table)
	assert.False(t, got.FetchedAt.IsZero())
}

func TestRecordResult_FailureWithoutTable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job := &Job{RunID: uuid.New(), Device: "garnet", CircuitName: "bell", Shots: 1, Bits: []circuit.Bit{0}}
	require.NoError(t, s.RecordJob(ctx, job))

	rec := &ResultRecord{RunID: job.RunID, Status: "ERROR", Message: "calibration expired"}
	require.NoError(t, s.RecordResult(ctx, rec))

	got, err := s.Result(ctx, job.RunID)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", got.Status)
	assert.Equal(t, "calibration expired", got.Message)
	assert.Nil(t, got.Table)
}

func TestResult_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Result(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestLedger_SurvivesReopen exercises the restart path: handles recorded
// in one process are readable from a fresh Store on the same file.
func TestLedger_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	job := &Job{
		RunID:       uuid.New(),
		Device:      "garnet",
		CircuitName: "bell",
		Shots:       10,
		Bits:        []circuit.Bit{0, 1},
		Postprocess: `{"flip_bits":[]}`,
	}
	require.NoError(t, s1.RecordJob(ctx, job))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Job(ctx, job.RunID)
	require.NoError(t, err)
	assert.Equal(t, job.RunID, got.RunID)
	assert.Equal(t, job.Postprocess, got.Postprocess)
}
