package domain

import "time"

// Job statuses.
const (
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

// SplitJob represents one split invocation in the split_jobs table.
// The produced artifact itself is never stored.
type SplitJob struct {
	ID          string    `json:"id" db:"id"`
	FileName    string    `json:"file_name" db:"file_name"`
	Mode        string    `json:"mode" db:"mode"`
	Sheets      []string  `json:"sheets" db:"sheets"`
	KeyColumns  []string  `json:"key_columns" db:"key_columns"`
	Prefix      string    `json:"prefix" db:"prefix"`
	Suffix      string    `json:"suffix" db:"suffix"`
	GroupCount  int       `json:"group_count" db:"group_count"`
	EntryCount  int       `json:"entry_count" db:"entry_count"`
	InputBytes  int64     `json:"input_bytes" db:"input_bytes"`
	OutputBytes int64     `json:"output_bytes" db:"output_bytes"`
	DurationMS  int64     `json:"duration_ms" db:"duration_ms"`
	Status      string    `json:"status" db:"status"`
	Error       string    `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
