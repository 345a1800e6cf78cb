package sheetsplit

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Load parses raw xlsx bytes into a Workbook. The first row of every sheet
// becomes the header. Any failure yields a *LoadError and no workbook.
func Load(data []byte, opts ...Option) (*Workbook, error) {
	return load(data, newConfig(opts))
}

func load(data []byte, cfg *config) (*Workbook, error) {
	size := int64(len(data))
	if cfg.maxInputSize > 0 && size > cfg.maxInputSize {
		return nil, &LoadError{Size: size, Limit: cfg.maxInputSize, Err: ErrInputTooLarge}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Size: size, Limit: cfg.maxInputSize, Err: fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)}
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, &LoadError{Size: size, Limit: cfg.maxInputSize, Err: fmt.Errorf("%w: no worksheets", ErrInvalidWorkbook)}
	}

	// a nil map sends readSheet to excelize's per-cell lookups
	layouts, _ := scanLayouts(data)

	wb := NewWorkbook()
	for _, name := range names {
		sheet, err := readSheet(f, name, layouts[name])
		if err != nil {
			return nil, &LoadError{Size: size, Limit: cfg.maxInputSize, Err: fmt.Errorf("%w: sheet %q: %v", ErrInvalidWorkbook, name, err)}
		}
		wb.add(sheet)
	}
	return wb, nil
}

func readSheet(f *excelize.File, name string, layout *sheetLayout) (*Sheet, error) {
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	sheet := &Sheet{Name: name, Style: NewStyleSource(len(raw))}
	if len(raw) == 0 {
		return sheet, nil
	}

	width := 0
	for _, r := range raw {
		if len(r) > width {
			width = len(r)
		}
	}

	sheet.Header = make([]string, width)
	copy(sheet.Header, raw[0])

	sheet.Rows = make([]Row, 0, len(raw)-1)
	for i, r := range raw[1:] {
		row := make(Row, width)
		for c, v := range r {
			if v == "" {
				continue
			}
			typ, err := cellType(f, name, layout, i+2, c+1)
			if err != nil {
				return nil, err
			}
			row[c] = typedValue(v, typ)
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	if err := captureStyle(f, name, width, layout, sheet.Style); err != nil {
		return nil, err
	}
	return sheet, nil
}

// cellType reads the type from the scanned layout. Without one it asks
// excelize, which scans the sheet's rows on every call.
func cellType(f *excelize.File, sheet string, layout *sheetLayout, row, col int) (excelize.CellType, error) {
	if layout != nil {
		return layout.cellType(row, col), nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return excelize.CellTypeUnset, err
	}
	return f.GetCellType(sheet, cell)
}

// typedValue converts a raw cell value to int64, float64, bool or string.
func typedValue(raw string, typ excelize.CellType) interface{} {
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i
		}
		if fl, err := strconv.ParseFloat(raw, 64); err == nil {
			return fl
		}
		return raw
	default:
		return raw
	}
}

type dimensions struct {
	colWidth  float64
	rowHeight float64
}

var (
	dimsOnce    sync.Once
	defaultDims dimensions
)

// defaultDimensions returns the column width and row height excelize
// reports for a sheet without custom dimensions.
func defaultDimensions() dimensions {
	dimsOnce.Do(func() {
		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		defaultDims.colWidth, _ = f.GetColWidth(sheet, "A")
		defaultDims.rowHeight, _ = f.GetRowHeight(sheet, 1)
	})
	return defaultDims
}

func rowHeight(f *excelize.File, sheet string, layout *sheetLayout, row int, fallback float64) (float64, error) {
	if layout != nil {
		return layout.rowHeight(row, fallback), nil
	}
	return f.GetRowHeight(sheet, row)
}

func captureStyle(f *excelize.File, sheet string, width int, layout *sheetLayout, style *StyleSource) error {
	dims := defaultDimensions()

	for c := 1; c <= width; c++ {
		col, err := excelize.ColumnNumberToName(c)
		if err != nil {
			return err
		}
		w, err := f.GetColWidth(sheet, col)
		if err != nil {
			return err
		}
		if w != dims.colWidth {
			style.SetColWidth(c, w)
		}
	}

	for r := 1; r <= style.RowCount; r++ {
		h, err := rowHeight(f, sheet, layout, r, dims.rowHeight)
		if err != nil {
			return err
		}
		if h != dims.rowHeight {
			style.SetRowHeight(r, h)
		}
	}

	formats := make(map[int]NumFormat)
	for r := 1; r <= style.formatRows(); r++ {
		for c := 1; c <= width; c++ {
			cell, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return err
			}
			id, err := f.GetCellStyle(sheet, cell)
			if err != nil || id == 0 {
				continue
			}
			nf, ok := formats[id]
			if !ok {
				st, err := f.GetStyle(id)
				if err != nil {
					// unreadable style: treat as General for this cell
					continue
				}
				nf = NumFormat{ID: st.NumFmt}
				if st.CustomNumFmt != nil {
					nf.Custom = *st.CustomNumFmt
				}
				formats[id] = nf
			}
			if !nf.IsDefault() {
				style.SetNumFormat(r, c, nf)
			}
		}
	}
	return nil
}
