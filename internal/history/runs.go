package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusEmpty     Status = "empty"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run is one ledger row.
type Run struct {
	ID            string
	SourceDir     string
	OutputDir     string
	Status        Status
	StartedAt     time.Time
	FinishedAt    time.Time
	CapacityBytes int64
	FileCount     int
	SplitCount    int
	WarningCount  int
	ErrorMessage  string
	Archives      []Archive
	// ArchiveCount is filled by Recent without loading Archives.
	ArchiveCount int
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Archive is one container produced by a run.
type Archive struct {
	Seq         int
	Name        string
	Path        string
	SizeBytes   int64
	MemberCount int
	VolumeCount int
	Oversized   bool
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Record stores a finished run and its archives in one transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx,
			`INSERT INTO runs (
                id, source_dir, output_dir, status, started_at, finished_at,
                capacity_bytes, file_count, split_count, warning_count, error_message
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.SourceDir,
			run.OutputDir,
			string(run.Status),
			run.StartedAt.UTC().Format(timeLayout),
			nullableTime(run.FinishedAt),
			run.CapacityBytes,
			run.FileCount,
			run.SplitCount,
			run.WarningCount,
			nullableString(run.ErrorMessage),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, archive := range run.Archives {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO archives (
                    run_id, seq, name, path, size_bytes, member_count, volume_count, oversized
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				run.ID,
				archive.Seq,
				archive.Name,
				archive.Path,
				archive.SizeBytes,
				archive.MemberCount,
				archive.VolumeCount,
				boolToInt(archive.Oversized),
			)
			if err != nil {
				return fmt.Errorf("insert archive %s: %w", archive.Name, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit record tx: %w", err)
		}
		return nil
	})
}

const runColumns = `r.id, r.source_dir, r.output_dir, r.status, r.started_at, r.finished_at,
    r.capacity_bytes, r.file_count, r.split_count, r.warning_count, r.error_message,
    (SELECT COUNT(1) FROM archives a WHERE a.run_id = r.id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		status     string
		startedAt  string
		finishedAt sql.NullString
		errMsg     sql.NullString
	)
	if err := row.Scan(
		&run.ID, &run.SourceDir, &run.OutputDir, &status, &startedAt, &finishedAt,
		&run.CapacityBytes, &run.FileCount, &run.SplitCount, &run.WarningCount, &errMsg,
		&run.ArchiveCount,
	); err != nil {
		return Run{}, err
	}
	run.Status = Status(status)
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	run.ErrorMessage = errMsg.String
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs r ORDER BY r.started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get returns a run with its archives, or nil when the id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, name, path, size_bytes, member_count, volume_count, oversized
         FROM archives WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query archives: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			archive   Archive
			oversized int
		)
		if err := rows.Scan(&archive.Seq, &archive.Name, &archive.Path, &archive.SizeBytes,
			&archive.MemberCount, &archive.VolumeCount, &oversized); err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		archive.Oversized = oversized != 0
		run.Archives = append(run.Archives, archive)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archives: %w", err)
	}
	return &run, nil
}

// Prune deletes runs that started before cutoff and returns how many were removed.
// Archive rows are removed explicitly since foreign key enforcement is per connection.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	stamp := cutoff.UTC().Format(timeLayout)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM archives WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, stamp); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, stamp)
		if err != nil {
			return err
		}
		if removed, err = res.RowsAffected(); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	ts, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
