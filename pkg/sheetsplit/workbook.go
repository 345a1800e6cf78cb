package sheetsplit

// Row is one data row of a sheet. Cells line up positionally with the header;
// a nil cell is empty.
type Row []interface{}

// Sheet is one tabular unit of the source workbook.
type Sheet struct {
	Name   string
	Header []string
	Rows   []Row
	// Style holds the presentation captured from the source sheet. May be nil.
	Style *StyleSource
}

// ColumnIndex returns the 0-based position of the header label, or -1.
func (s *Sheet) ColumnIndex(label string) int {
	for i, h := range s.Header {
		if h == label {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the sheet carries no data rows.
func (s *Sheet) IsEmpty() bool {
	return len(s.Header) == 0 || len(s.Rows) == 0
}

// Workbook is the in-memory source workbook, keyed by sheet name in source order.
type Workbook struct {
	sheets []*Sheet
	byName map[string]*Sheet
}

// NewWorkbook builds a workbook from already parsed sheets.
func NewWorkbook(sheets ...*Sheet) *Workbook {
	wb := &Workbook{byName: make(map[string]*Sheet, len(sheets))}
	for _, s := range sheets {
		wb.add(s)
	}
	return wb
}

func (w *Workbook) add(s *Sheet) {
	w.sheets = append(w.sheets, s)
	w.byName[s.Name] = s
}

// SheetNames returns the sheet names in source order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the named sheet.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	s, ok := w.byName[name]
	return s, ok
}

// resolveSheets looks up the selected sheets, preserving selection order.
// Selecting a sheet twice is an error.
func (w *Workbook) resolveSheets(names []string) ([]*Sheet, error) {
	if len(names) == 0 {
		return nil, ErrNoSheets
	}
	sheets := make([]*Sheet, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		s, ok := w.byName[name]
		if !ok {
			return nil, newSplitError(name, "discover", ErrSheetNotFound)
		}
		if seen[name] {
			return nil, newSplitError(name, "discover", ErrDuplicateSheet)
		}
		seen[name] = true
		sheets = append(sheets, s)
	}
	return sheets, nil
}

// NumFormat is the number format of a source cell. ID is the built-in format
// id, Custom the format code when the cell uses a custom format.
type NumFormat struct {
	ID     int
	Custom string
}

// IsDefault reports whether the format is the "General" format.
func (n NumFormat) IsDefault() bool {
	return n.ID == 0 && (n.Custom == "" || n.Custom == "General")
}

type cellPos struct {
	row, col int
}

// StyleSource keeps the presentation of a source sheet: custom column widths,
// custom row heights and non-default number formats. Rows and columns are
// 1-based, as in Excel.
type StyleSource struct {
	// RowCount is the number of rows in the source sheet, header included.
	RowCount int

	colWidths  map[int]float64
	rowHeights map[int]float64
	numFmts    map[cellPos]NumFormat
}

// NewStyleSource returns an empty style source for a sheet with rowCount rows.
func NewStyleSource(rowCount int) *StyleSource {
	return &StyleSource{
		RowCount:   rowCount,
		colWidths:  make(map[int]float64),
		rowHeights: make(map[int]float64),
		numFmts:    make(map[cellPos]NumFormat),
	}
}

func (s *StyleSource) SetColWidth(col int, width float64) {
	s.colWidths[col] = width
}

func (s *StyleSource) SetRowHeight(row int, height float64) {
	s.rowHeights[row] = height
}

func (s *StyleSource) SetNumFormat(row, col int, nf NumFormat) {
	s.numFmts[cellPos{row, col}] = nf
}

// ColWidth returns the custom width of a column.
func (s *StyleSource) ColWidth(col int) (float64, bool) {
	if s == nil {
		return 0, false
	}
	w, ok := s.colWidths[col]
	return w, ok
}

// RowHeight returns the custom height of a row.
func (s *StyleSource) RowHeight(row int) (float64, bool) {
	if s == nil {
		return 0, false
	}
	h, ok := s.rowHeights[row]
	return h, ok
}

// NumFormat returns the non-default number format recorded for a cell.
func (s *StyleSource) NumFormat(row, col int) (NumFormat, bool) {
	if s == nil {
		return NumFormat{}, false
	}
	nf, ok := s.numFmts[cellPos{row, col}]
	return nf, ok
}

// formatRows is how many leading rows have their number formats copied.
func (s *StyleSource) formatRows() int {
	if s == nil {
		return 0
	}
	if s.RowCount < FormatRowLimit {
		return s.RowCount
	}
	return FormatRowLimit
}
