package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/xlsxsplit/internal/config"
	"github.com/locvowork/xlsxsplit/internal/domain"
	"github.com/locvowork/xlsxsplit/internal/logger"
	"github.com/locvowork/xlsxsplit/pkg/sheetsplit"
)

var (
	ErrUnknownProfile  = errors.New("unknown split profile")
	ErrHistoryDisabled = errors.New("split history is disabled")
)

// SplitInput is one uploaded workbook plus the split parameters.
type SplitInput struct {
	FileName string
	Data     []byte
	Request  sheetsplit.Request
	// Profile, when set, fills the request fields left empty.
	Profile string
}

// SheetInfo summarises one source sheet.
type SheetInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// Inspection describes an uploaded workbook before it is split.
type Inspection struct {
	Sheets        []SheetInfo    `json:"sheets"`
	CommonColumns []string       `json:"common_columns"`
	Estimates     map[string]int `json:"estimates,omitempty"`
}

// SplitService handles split requests and their history
type SplitService struct {
	jobs      domain.SplitJobRepository
	splitFile *config.SplitFile
	assembler *sheetsplit.Assembler
	opts      []sheetsplit.Option
	now       func() time.Time
}

// NewSplitService creates a new SplitService instance. jobs may be nil, in
// which case no history is recorded.
func NewSplitService(jobs domain.SplitJobRepository, splitFile *config.SplitFile, opts ...sheetsplit.Option) *SplitService {
	opts = append([]sheetsplit.Option{sheetsplit.WithPresentation(splitFile.PresentationOrDefault())}, opts...)
	return &SplitService{
		jobs:      jobs,
		splitFile: splitFile,
		assembler: sheetsplit.NewAssembler(opts...),
		opts:      opts,
		now:       time.Now,
	}
}

// Profiles returns the configured profile names.
func (s *SplitService) Profiles() []string {
	if s.splitFile == nil {
		return nil
	}
	names := make([]string, len(s.splitFile.Profiles))
	for i, p := range s.splitFile.Profiles {
		names[i] = p.Name
	}
	return names
}

// ResolveRequest applies the named profile, if any, to req.
func (s *SplitService) ResolveRequest(req sheetsplit.Request, profile string) (sheetsplit.Request, error) {
	if profile == "" {
		return req, nil
	}
	p, ok := s.splitFile.Profile(profile)
	if !ok {
		return req, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
	return p.ApplyTo(req)
}

// Split loads the workbook, assembles the artifact and records the job.
func (s *SplitService) Split(ctx context.Context, in SplitInput) (*sheetsplit.Artifact, error) {
	req, err := s.ResolveRequest(in.Request, in.Profile)
	if err != nil {
		return nil, err
	}

	started := s.now()
	job := &domain.SplitJob{
		ID:         uuid.NewString(),
		FileName:   in.FileName,
		Mode:       string(req.Mode),
		Sheets:     req.Sheets,
		KeyColumns: req.KeyColumns,
		Prefix:     req.Prefix,
		Suffix:     req.Suffix,
		InputBytes: int64(len(in.Data)),
		Status:     domain.JobStatusRunning,
		CreatedAt:  started,
	}
	ctx = logger.WithLogger(ctx, map[string]interface{}{"job_id": job.ID, "file": in.FileName})
	s.record(ctx, job, false)

	art, err := s.split(ctx, in.Data, req)

	job.DurationMS = s.now().Sub(started).Milliseconds()
	if err != nil {
		job.Status = domain.JobStatusFailed
		job.Error = err.Error()
	} else {
		job.Status = domain.JobStatusSucceeded
		job.GroupCount = art.GroupCount
		job.EntryCount = len(art.Entries)
		job.OutputBytes = int64(len(art.Data))
	}
	s.record(ctx, job, true)

	if err != nil {
		return nil, err
	}
	logger.InfoLog(ctx, "split %s into %d entries in %dms", in.FileName, job.EntryCount, job.DurationMS)
	return art, nil
}

func (s *SplitService) split(ctx context.Context, data []byte, req sheetsplit.Request) (*sheetsplit.Artifact, error) {
	wb, err := sheetsplit.Load(data, s.opts...)
	if err != nil {
		return nil, err
	}
	return s.assembler.Assemble(ctx, wb, req)
}

// record stores the job when history is enabled. Failures are logged only.
func (s *SplitService) record(ctx context.Context, job *domain.SplitJob, finished bool) {
	if s.jobs == nil {
		return
	}
	var err error
	if finished {
		err = s.jobs.Finish(ctx, job)
	} else {
		err = s.jobs.Create(ctx, job)
	}
	if err != nil {
		logger.WarnLog(ctx, "failed to record split job %s: %v", job.ID, err)
	}
}

// Inspect lists the sheets of a workbook, the columns shared by the selected
// sheets and, when key columns are given, the output count of every mode.
func (s *SplitService) Inspect(ctx context.Context, data []byte, sheets, keys []string) (*Inspection, error) {
	wb, err := sheetsplit.Load(data, s.opts...)
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		sheets = wb.SheetNames()
	}

	out := &Inspection{}
	for _, name := range wb.SheetNames() {
		sh, _ := wb.Sheet(name)
		out.Sheets = append(out.Sheets, SheetInfo{Name: name, Columns: sh.Header, Rows: len(sh.Rows)})
	}

	out.CommonColumns, err = sheetsplit.CommonColumns(wb, sheets)
	if err != nil {
		return nil, err
	}

	if len(keys) > 0 {
		out.Estimates = make(map[string]int, len(sheetsplit.Modes))
		for _, mode := range sheetsplit.Modes {
			n, err := sheetsplit.EstimateCount(wb, sheetsplit.Request{Sheets: sheets, KeyColumns: keys, Mode: mode})
			if err != nil {
				return nil, err
			}
			out.Estimates[string(mode)] = n
		}
	}
	logger.DebugLog(ctx, "inspected %d sheets", len(out.Sheets))
	return out, nil
}

// Jobs lists recorded split jobs, newest first.
func (s *SplitService) Jobs(ctx context.Context, filter domain.SplitJobFilter) ([]domain.SplitJob, error) {
	if s.jobs == nil {
		return nil, ErrHistoryDisabled
	}
	return s.jobs.List(ctx, filter)
}

// PruneJobs deletes jobs older than retention.
func (s *SplitService) PruneJobs(ctx context.Context, retention time.Duration) (int, error) {
	if s.jobs == nil {
		return 0, ErrHistoryDisabled
	}
	n, err := s.jobs.DeleteBefore(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	logger.InfoLog(ctx, "pruned %d split jobs older than %s", n, retention)
	return n, nil
}
