package repository

import (
	"database/sql/driver"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/xlsxsplit/internal/domain"
)

func TestInsertJobQuery(t *testing.T) {
	job := &domain.SplitJob{
		ID:         "4f6b9b2e-7a43-4f7e-9f53-0f1b5b9d2a10",
		FileName:   "sales.xlsx",
		Mode:       "union",
		Sheets:     []string{"Jan", "Feb"},
		KeyColumns: []string{"Region"},
		Status:     domain.JobStatusRunning,
		CreatedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	query, args := insertJobQuery(job)
	assert.True(t, strings.HasPrefix(query, "INSERT INTO split_jobs (id, file_name, mode, sheets, key_columns,"))
	assert.Contains(t, query, "$15)")
	require.Len(t, args, len(jobColumns))

	sheets, ok := args[3].(driver.Valuer)
	require.True(t, ok, "sheets must be passed as a postgres array")
	v, err := sheets.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"Jan","Feb"}`, v)
}

func TestFinishJobQuery(t *testing.T) {
	query, args := finishJobQuery(&domain.SplitJob{ID: "abc", Status: domain.JobStatusFailed, Error: "boom"})
	assert.Equal(t,
		"UPDATE split_jobs SET status = $1, error = $2, group_count = $3, entry_count = $4, output_bytes = $5, duration_ms = $6 WHERE id = $7 RETURNING id",
		query)
	assert.Equal(t, "abc", args[6])
}

func TestListJobsQuery(t *testing.T) {
	query, args, err := listJobsQuery(domain.SplitJobFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(query, "FROM split_jobs ORDER BY created_at DESC, id"))
	assert.Empty(t, args)

	query, args, err = listJobsQuery(domain.SplitJobFilter{
		Status: domain.JobStatusSucceeded,
		Modes:  []string{"single", "per-sheet"},
		Limit:  20,
		Offset: 40,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(query,
		"FROM split_jobs WHERE status = $1 AND mode = ANY($2) ORDER BY created_at DESC, id LIMIT 20 OFFSET 40"))
	require.Len(t, args, 2)
	assert.Equal(t, domain.JobStatusSucceeded, args[0])
}
