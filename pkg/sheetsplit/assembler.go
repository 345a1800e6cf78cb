package sheetsplit

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/locvowork/xlsxsplit/pkg/dataflow"
)

// Mode selects the partitioning strategy of a split.
type Mode string

const (
	// ModeSingleWorkbook writes one sheet per (source sheet, group) into a single workbook.
	ModeSingleWorkbook Mode = "single"
	// ModeUnionArchive writes one workbook per group found in any selected
	// sheet, holding one sheet per source sheet that has rows for it.
	ModeUnionArchive Mode = "union"
	// ModePerSheetArchive writes one single-sheet workbook per (source sheet, group).
	ModePerSheetArchive Mode = "per-sheet"
)

// Modes lists the supported modes in a stable order.
var Modes = []Mode{ModeSingleWorkbook, ModeUnionArchive, ModePerSheetArchive}

// ParseMode validates a mode name. The empty string selects ModeSingleWorkbook.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeSingleWorkbook, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Request is one split invocation.
type Request struct {
	Sheets     []string
	KeyColumns []string
	Prefix     string
	Suffix     string
	Mode       Mode
}

type ArtifactKind string

const (
	KindWorkbook ArtifactKind = "workbook"
	KindArchive  ArtifactKind = "archive"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeZip  = "application/zip"
)

// Entry describes one generated sheet (workbook artifacts) or one archive
// member (archive artifacts).
type Entry struct {
	Name   string   `json:"name"`
	Sheets []string `json:"sheets"` // source sheets contributing rows
	Rows   int      `json:"rows"`   // data rows, headers excluded
}

// Artifact is the result of a split.
type Artifact struct {
	Kind        ArtifactKind
	FileName    string
	ContentType string
	Data        []byte
	Entries     []Entry
	// GroupCount is the number of groups discovered for the request.
	GroupCount int
}

// Assembler runs splits. It keeps no state between calls and is safe for
// concurrent use.
type Assembler struct {
	cfg       *config
	sanitizer NameSanitizer
}

func NewAssembler(opts ...Option) *Assembler {
	cfg := newConfig(opts)
	return &Assembler{cfg: cfg, sanitizer: NameSanitizer{Fallback: cfg.fallbackName}}
}

// Split loads data and assembles the requested artifact.
func Split(ctx context.Context, data []byte, req Request, opts ...Option) (*Artifact, error) {
	a := NewAssembler(opts...)
	wb, err := load(data, a.cfg)
	if err != nil {
		return nil, err
	}
	return a.Assemble(ctx, wb, req)
}

// Assemble partitions the selected sheets of wb according to req.Mode.
func (a *Assembler) Assemble(ctx context.Context, wb *Workbook, req Request) (*Artifact, error) {
	sheets, err := a.validate(wb, req)
	if err != nil {
		return nil, err
	}

	log := zerolog.Ctx(ctx).With().
		Str("mode", string(req.Mode)).
		Strs("sheets", req.Sheets).
		Strs("keys", req.KeyColumns).
		Logger()
	ctx = log.WithContext(ctx)

	var art *Artifact
	switch req.Mode {
	case ModeSingleWorkbook:
		art, err = a.singleWorkbook(ctx, sheets, req)
	case ModeUnionArchive:
		art, err = a.unionArchive(ctx, sheets, req)
	case ModePerSheetArchive:
		art, err = a.perSheetArchive(ctx, sheets, req)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("file", art.FileName).
		Int("groups", art.GroupCount).
		Int("entries", len(art.Entries)).
		Int("bytes", len(art.Data)).
		Msg("split assembled")
	return art, nil
}

func (a *Assembler) validate(wb *Workbook, req Request) ([]*Sheet, error) {
	if _, err := ParseMode(string(req.Mode)); err != nil || req.Mode == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}
	sheets, err := wb.resolveSheets(req.Sheets)
	if err != nil {
		return nil, err
	}
	if len(req.KeyColumns) == 0 {
		return nil, ErrNoKeyColumns
	}
	for _, s := range sheets {
		if s.IsEmpty() {
			continue
		}
		if _, err := keyColumns(s, req.KeyColumns); err != nil {
			return nil, err
		}
	}
	return sheets, nil
}

func (a *Assembler) singleWorkbook(ctx context.Context, sheets []*Sheet, req Request) (*Artifact, error) {
	f := excelize.NewFile()
	defer f.Close()

	w := newSheetWriter(f, a.cfg.presentation)
	names := newNameRegistry(a.cfg.collision)
	art := &Artifact{
		Kind:        KindWorkbook,
		FileName:    a.cfg.resultBase + ".xlsx",
		ContentType: ContentTypeXLSX,
	}

	for _, s := range sheets {
		keys, err := DiscoverGroups(s, req.KeyColumns)
		if err != nil {
			return nil, err
		}
		art.GroupCount += len(keys)

		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rows, err := FilterRows(s, req.KeyColumns, key)
			if err != nil {
				return nil, newSplitError(s.Name, "filter", err)
			}
			if len(rows) == 0 {
				continue
			}
			name, err := names.claim(a.sanitizer.Sanitize(req.Prefix, req.Suffix, key, s.Name))
			if err != nil {
				return nil, newSplitError(s.Name, "copy", err)
			}
			if err := w.add(ctx, name, s, rows); err != nil {
				return nil, newSplitError(s.Name, "copy", err)
			}
			art.Entries = append(art.Entries, Entry{Name: name, Sheets: []string{s.Name}, Rows: len(rows)})
		}
	}

	if w.count == 0 {
		return nil, ErrNoOutput
	}
	f.SetActiveSheet(0)
	data, err := serialize(f)
	if err != nil {
		return nil, newSplitError("", "write", err)
	}
	art.Data = data
	return art, nil
}

// groupTask is one archive member to build.
type groupTask struct {
	index  int
	key    GroupKey
	name   string // sanitized, before collision handling
	sheets []*Sheet
	// single writes the rows into SingleSheetName instead of the source name.
	single bool
}

type groupResult struct {
	index int
	name  string
	entry Entry
	data  []byte
}

func (a *Assembler) unionArchive(ctx context.Context, sheets []*Sheet, req Request) (*Artifact, error) {
	keys, err := unionGroups(sheets, req.KeyColumns)
	if err != nil {
		return nil, err
	}

	tasks := make([]groupTask, len(keys))
	for i, key := range keys {
		tasks[i] = groupTask{
			index:  i,
			key:    key,
			name:   a.sanitizer.Sanitize(req.Prefix, req.Suffix, key, ""),
			sheets: sheets,
		}
	}

	art, err := a.archive(ctx, tasks, req.KeyColumns)
	if err != nil {
		return nil, err
	}
	art.FileName = a.cfg.unionBase + ".zip"
	art.GroupCount = len(keys)
	return art, nil
}

func (a *Assembler) perSheetArchive(ctx context.Context, sheets []*Sheet, req Request) (*Artifact, error) {
	var tasks []groupTask
	for _, s := range sheets {
		keys, err := DiscoverGroups(s, req.KeyColumns)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			tasks = append(tasks, groupTask{
				index:  len(tasks),
				key:    key,
				name:   a.sanitizer.Sanitize(req.Prefix, req.Suffix, key, s.Name),
				sheets: []*Sheet{s},
				single: true,
			})
		}
	}

	art, err := a.archive(ctx, tasks, req.KeyColumns)
	if err != nil {
		return nil, err
	}
	art.FileName = a.cfg.resultBase + ".zip"
	art.GroupCount = len(tasks)
	return art, nil
}

// archive builds the workbooks of tasks concurrently and writes them into a
// zip in task order. Tasks whose workbook ends up empty are skipped.
func (a *Assembler) archive(ctx context.Context, tasks []groupTask, labels []string) (*Artifact, error) {
	if len(tasks) == 0 {
		return nil, ErrNoOutput
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
	)
	built := dataflow.Map(ctx, dataflow.From(ctx, tasks...), func(t groupTask) (groupResult, error) {
		return a.buildGroup(ctx, t, labels)
	}, dataflow.WithWorkers(a.cfg.workers), dataflow.WithErrorHandler(func(err error) bool {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
		return true
	}))

	results, err := dataflow.Collect(ctx, built)
	mu.Lock()
	buildErr := firstErr
	mu.Unlock()
	if buildErr != nil {
		return nil, buildErr
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].index < results[j].index
	})

	names := newNameRegistry(a.cfg.collision)
	art := &Artifact{Kind: KindArchive, ContentType: ContentTypeZip}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, r := range results {
		if r.data == nil {
			continue
		}
		name, err := names.claim(r.name)
		if err != nil {
			return nil, newSplitError("", "write", err)
		}
		name += ".xlsx"
		fw, err := zw.Create(name)
		if err != nil {
			return nil, newSplitError("", "write", err)
		}
		if _, err := fw.Write(r.data); err != nil {
			return nil, newSplitError("", "write", err)
		}
		r.entry.Name = name
		art.Entries = append(art.Entries, r.entry)
	}
	if err := zw.Close(); err != nil {
		return nil, newSplitError("", "write", err)
	}
	if len(art.Entries) == 0 {
		return nil, ErrNoOutput
	}
	art.Data = buf.Bytes()
	return art, nil
}

// buildGroup writes the rows of one group into a fresh workbook. A result
// without data means no selected sheet had rows for the group.
func (a *Assembler) buildGroup(ctx context.Context, t groupTask, labels []string) (groupResult, error) {
	res := groupResult{index: t.index, name: t.name}

	f := excelize.NewFile()
	defer f.Close()
	w := newSheetWriter(f, a.cfg.presentation)

	for _, s := range t.sheets {
		rows, err := FilterRows(s, labels, t.key)
		if err != nil {
			return res, newSplitError(s.Name, "filter", err)
		}
		if len(rows) == 0 {
			continue
		}
		target := s.Name
		if t.single {
			target = SingleSheetName
		}
		if err := w.add(ctx, target, s, rows); err != nil {
			return res, newSplitError(s.Name, "copy", err)
		}
		res.entry.Sheets = append(res.entry.Sheets, s.Name)
		res.entry.Rows += len(rows)
	}

	if w.count == 0 {
		zerolog.Ctx(ctx).Debug().Str("group", t.key.String()).Msg("group has no rows in selected sheets")
		return res, nil
	}
	f.SetActiveSheet(0)
	data, err := serialize(f)
	if err != nil {
		return res, newSplitError("", "write", err)
	}
	res.data = data
	return res, nil
}

// sheetWriter adds sheets to a fresh file, reusing its default sheet for
// the first one.
type sheetWriter struct {
	file   *excelize.File
	copier *StyleCopier
	count  int
}

func newSheetWriter(f *excelize.File, p Presentation) *sheetWriter {
	return &sheetWriter{file: f, copier: NewStyleCopier(f, p)}
}

func (w *sheetWriter) add(ctx context.Context, name string, src *Sheet, rows []Row) error {
	if w.count == 0 {
		if first := w.file.GetSheetName(0); first != name {
			if err := w.file.SetSheetName(first, name); err != nil {
				return err
			}
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return err
	}
	w.count++
	return w.copier.Copy(ctx, name, src, rows)
}

func serialize(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
