package sheetsplit

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

type styleRole int

const (
	roleHeader styleRole = iota
	roleEven
	roleOdd
)

type styleKey struct {
	role styleRole
	nf   NumFormat
}

// StyleCopier writes rows into sheets of one output file and reproduces the
// presentation of their source sheets. Styles are shared across the sheets
// of the file. A StyleCopier is not safe for concurrent use.
type StyleCopier struct {
	file   *excelize.File
	pres   Presentation
	styles map[styleKey]int
	// newStyle registers a style with the file.
	newStyle func(*excelize.Style) (int, error)
}

// NewStyleCopier returns a copier writing into f.
func NewStyleCopier(f *excelize.File, p Presentation) *StyleCopier {
	return &StyleCopier{
		file:     f,
		pres:     p,
		styles:   make(map[styleKey]int),
		newStyle: f.NewStyle,
	}
}

// Copy writes the header of src followed by rows into the existing sheet,
// then copies column widths, row heights and number formats from src and
// applies the header and zebra styling. Values are written as they are.
func (c *StyleCopier) Copy(ctx context.Context, sheet string, src *Sheet, rows []Row) error {
	if err := c.writeRows(sheet, src.Header, rows); err != nil {
		return err
	}

	width := len(src.Header)
	for col := 1; col <= width; col++ {
		w, ok := src.Style.ColWidth(col)
		if !ok {
			continue
		}
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := c.file.SetColWidth(sheet, name, name, w); err != nil {
			return fmt.Errorf("set width of column %s: %w", name, err)
		}
	}

	written := len(rows) + 1
	for r := 1; r <= written; r++ {
		h, ok := src.Style.RowHeight(r)
		if !ok {
			continue
		}
		if err := c.file.SetRowHeight(sheet, r, h); err != nil {
			return fmt.Errorf("set height of row %d: %w", r, err)
		}
	}

	if width == 0 {
		return nil
	}
	for r := 1; r <= written; r++ {
		if err := c.styleRow(ctx, sheet, src.Style, r, width); err != nil {
			return err
		}
	}
	return nil
}

func (c *StyleCopier) writeRows(sheet string, header []string, rows []Row) error {
	if len(header) > 0 {
		values := make([]interface{}, len(header))
		for i, h := range header {
			values[i] = h
		}
		if err := c.file.SetSheetRow(sheet, "A1", &values); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for i, row := range rows {
		values := []interface{}(row)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := c.file.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}

// styleRow styles one output row. The zebra colour follows the output row
// number; number formats are taken from the same position in the source.
func (c *StyleCopier) styleRow(ctx context.Context, sheet string, src *StyleSource, r, width int) error {
	role := roleHeader
	if r > 1 {
		role = roleOdd
		if r%2 == 0 {
			role = roleEven
		}
	}

	plain, err := c.style(role, NumFormat{})
	if err != nil {
		return fmt.Errorf("create row style: %w", err)
	}

	first, _ := excelize.CoordinatesToCellName(1, r)
	last, _ := excelize.CoordinatesToCellName(width, r)
	if err := c.file.SetCellStyle(sheet, first, last, plain); err != nil {
		return fmt.Errorf("style row %d: %w", r, err)
	}
	if r > src.formatRows() {
		return nil
	}

	for col := 1; col <= width; col++ {
		nf, ok := src.NumFormat(r, col)
		if !ok {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(col, r)
		id, err := c.style(role, nf)
		if err == nil {
			err = c.file.SetCellStyle(sheet, cell, cell, id)
		}
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).
				Str("sheet", sheet).
				Str("cell", cell).
				Msg("skip number format")
		}
	}
	return nil
}

func (c *StyleCopier) style(role styleRole, nf NumFormat) (int, error) {
	key := styleKey{role: role, nf: nf}
	if id, ok := c.styles[key]; ok {
		return id, nil
	}

	var tmpl StyleTemplate
	switch role {
	case roleHeader:
		tmpl = c.pres.Header
	case roleEven:
		tmpl = c.pres.EvenRow
	default:
		tmpl = c.pres.OddRow
	}

	id, err := c.newStyle(tmpl.toStyle(nf))
	if err != nil {
		return 0, err
	}
	c.styles[key] = id
	return id, nil
}
