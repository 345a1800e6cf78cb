package domain

import (
	"context"
	"time"
)

// SplitJobFilter defines criteria for listing split jobs
type SplitJobFilter struct {
	Status string
	Modes  []string
	Limit  int
	Offset int
}

// SplitJobRepository defines the interface for split job history access
type SplitJobRepository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, job *SplitJob) error
	Finish(ctx context.Context, job *SplitJob) error
	List(ctx context.Context, filter SplitJobFilter) ([]SplitJob, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}
