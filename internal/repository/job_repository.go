package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/locvowork/xlsxsplit/internal/domain"
	"github.com/locvowork/xlsxsplit/internal/repository/builder"
)

const jobsTable = "split_jobs"

const jobsSchema = `
CREATE TABLE IF NOT EXISTS split_jobs (
	id           UUID PRIMARY KEY,
	file_name    TEXT NOT NULL,
	mode         TEXT NOT NULL,
	sheets       TEXT[] NOT NULL DEFAULT '{}',
	key_columns  TEXT[] NOT NULL DEFAULT '{}',
	prefix       TEXT NOT NULL DEFAULT '',
	suffix       TEXT NOT NULL DEFAULT '',
	group_count  INTEGER NOT NULL DEFAULT 0,
	entry_count  INTEGER NOT NULL DEFAULT 0,
	input_bytes  BIGINT NOT NULL DEFAULT 0,
	output_bytes BIGINT NOT NULL DEFAULT 0,
	duration_ms  BIGINT NOT NULL DEFAULT 0,
	status       TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS split_jobs_created_at_idx ON split_jobs (created_at DESC);`

var jobColumns = []string{
	"id", "file_name", "mode", "sheets", "key_columns", "prefix", "suffix",
	"group_count", "entry_count", "input_bytes", "output_bytes", "duration_ms",
	"status", "error", "created_at",
}

type jobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new instance of SplitJobRepository
func NewJobRepository(db *sql.DB) domain.SplitJobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, jobsSchema); err != nil {
		return fmt.Errorf("failed to create %s: %w", jobsTable, err)
	}
	return nil
}

func (r *jobRepository) Create(ctx context.Context, job *domain.SplitJob) error {
	query, args := insertJobQuery(job)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert split job: %w", err)
	}
	return nil
}

func (r *jobRepository) Finish(ctx context.Context, job *domain.SplitJob) error {
	query, args := finishJobQuery(job)
	var id string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("split job %s: %w", job.ID, err)
	}
	if err != nil {
		return fmt.Errorf("failed to update split job: %w", err)
	}
	return nil
}

func (r *jobRepository) List(ctx context.Context, filter domain.SplitJobFilter) ([]domain.SplitJob, error) {
	query, args, err := listJobsQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list split jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.SplitJob
	for rows.Next() {
		var j domain.SplitJob
		if err := rows.Scan(
			&j.ID, &j.FileName, &j.Mode, pq.Array(&j.Sheets), pq.Array(&j.KeyColumns),
			&j.Prefix, &j.Suffix, &j.GroupCount, &j.EntryCount, &j.InputBytes,
			&j.OutputBytes, &j.DurationMS, &j.Status, &j.Error, &j.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan split job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query, args := builder.NewSQLBuilder().
		Delete(jobsTable).
		Where("created_at < ?", cutoff).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune split jobs: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func insertJobQuery(j *domain.SplitJob) (string, []interface{}) {
	return builder.NewSQLBuilder().
		Insert(jobsTable, jobColumns...).
		Values(
			j.ID, j.FileName, j.Mode, pq.Array(j.Sheets), pq.Array(j.KeyColumns),
			j.Prefix, j.Suffix, j.GroupCount, j.EntryCount, j.InputBytes,
			j.OutputBytes, j.DurationMS, j.Status, j.Error, j.CreatedAt,
		).
		Build()
}

func finishJobQuery(j *domain.SplitJob) (string, []interface{}) {
	return builder.NewSQLBuilder().
		Update(jobsTable).
		Set("status", j.Status).
		Set("error", j.Error).
		Set("group_count", j.GroupCount).
		Set("entry_count", j.EntryCount).
		Set("output_bytes", j.OutputBytes).
		Set("duration_ms", j.DurationMS).
		Where("id = ?", j.ID).
		Returning("id").
		Build()
}

func listJobsQuery(filter domain.SplitJobFilter) (string, []interface{}, error) {
	b := builder.NewSQLBuilder()
	b.Select(jobColumns...).
		From(jobsTable).
		OrderBy("created_at DESC").
		OrderBy("id")

	if filter.Status != "" {
		b.Where("status = ?", filter.Status)
	}
	if len(filter.Modes) > 0 {
		b.Where("mode = ANY(?)", pq.Array(filter.Modes))
	}
	if filter.Limit > 0 {
		b.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		b.Offset(filter.Offset)
	}
	return b.BuildSafe()
}
