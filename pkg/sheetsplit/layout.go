package sheetsplit

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const defaultWorkbookPart = "xl/workbook.xml"

// sheetLayout holds what one pass over a worksheet part yields: the type of
// every cell carrying a t attribute and the explicit row heights.
type sheetLayout struct {
	types   map[int][]excelize.CellType // 1-based row -> column types
	heights map[int]float64
	// defaultHeight is the sheet's custom default row height, 0 when unset.
	defaultHeight float64
}

func newSheetLayout() *sheetLayout {
	return &sheetLayout{
		types:   make(map[int][]excelize.CellType),
		heights: make(map[int]float64),
	}
}

// cellType returns what excelize's GetCellType reports for the cell.
func (l *sheetLayout) cellType(row, col int) excelize.CellType {
	cols := l.types[row]
	if col < 1 || col > len(cols) {
		return excelize.CellTypeUnset
	}
	return cols[col-1]
}

// rowHeight returns what excelize's GetRowHeight reports for the row, with
// fallback standing in for the application default.
func (l *sheetLayout) rowHeight(row int, fallback float64) float64 {
	if h, ok := l.heights[row]; ok {
		return h
	}
	if l.defaultHeight > 0 {
		return l.defaultHeight
	}
	return fallback
}

func (l *sheetLayout) setType(row, col int, typ excelize.CellType) {
	cols := l.types[row]
	if len(cols) < col {
		cols = append(cols, make([]excelize.CellType, col-len(cols))...)
	}
	cols[col-1] = typ
	l.types[row] = cols
}

var cellTypes = map[string]excelize.CellType{
	"b":         excelize.CellTypeBool,
	"d":         excelize.CellTypeDate,
	"e":         excelize.CellTypeError,
	"inlineStr": excelize.CellTypeInlineString,
	"n":         excelize.CellTypeNumber,
	"s":         excelize.CellTypeSharedString,
	"str":       excelize.CellTypeFormula,
}

type xmlRelationships struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xmlWorkbookSheets struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sheets>sheet"`
}

// scanLayouts reads every worksheet part of an xlsx package once and returns
// the layouts keyed by sheet name. Sheets whose part cannot be located are
// left out.
func scanLayouts(data []byte) (map[string]*sheetLayout, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, zf := range zr.File {
		files[strings.TrimPrefix(zf.Name, "/")] = zf
	}

	wbPart := defaultWorkbookPart
	var root xmlRelationships
	if err := readXMLPart(files, "_rels/.rels", &root); err == nil {
		for _, rel := range root.Relationships {
			if strings.HasSuffix(rel.Type, "/officeDocument") {
				wbPart = resolvePart("", rel.Target)
				break
			}
		}
	}

	var wb xmlWorkbookSheets
	if err := readXMLPart(files, wbPart, &wb); err != nil {
		return nil, err
	}
	var rels xmlRelationships
	relsPart := path.Join(path.Dir(wbPart), "_rels", path.Base(wbPart)+".rels")
	if err := readXMLPart(files, relsPart, &rels); err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		targets[rel.ID] = resolvePart(path.Dir(wbPart), rel.Target)
	}

	layouts := make(map[string]*sheetLayout, len(wb.Sheets))
	for _, s := range wb.Sheets {
		zf, ok := files[targets[s.RID]]
		if !ok {
			continue
		}
		l, err := scanSheet(zf)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", s.Name, err)
		}
		layouts[s.Name] = l
	}
	return layouts, nil
}

func resolvePart(dir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(dir, target)
}

func readXMLPart(files map[string]*zip.File, name string, v interface{}) error {
	zf, ok := files[name]
	if !ok {
		return fmt.Errorf("missing part %s", name)
	}
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

// scanSheet streams one worksheet part up to the end of its sheetData.
// Rows and cells without an r attribute follow their predecessor.
func scanSheet(zf *zip.File) (*sheetLayout, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	l := newSheetLayout()
	dec := xml.NewDecoder(rc)
	row, col := 0, 0
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			return l, nil
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "sheetFormatPr":
				var custom bool
				var height float64
				for _, a := range el.Attr {
					switch a.Name.Local {
					case "customHeight":
						custom = a.Value == "1" || a.Value == "true"
					case "defaultRowHeight":
						height, _ = strconv.ParseFloat(a.Value, 64)
					}
				}
				if custom {
					l.defaultHeight = height
				}
			case "row":
				row, col = row+1, 0
				ht := ""
				for _, a := range el.Attr {
					switch a.Name.Local {
					case "r":
						if n, err := strconv.Atoi(a.Value); err == nil {
							row = n
						}
					case "ht":
						ht = a.Value
					}
				}
				if h, err := strconv.ParseFloat(ht, 64); err == nil {
					l.heights[row] = h
				}
			case "c":
				col++
				typ := excelize.CellTypeUnset
				for _, a := range el.Attr {
					switch a.Name.Local {
					case "r":
						if c, r, err := excelize.CellNameToCoordinates(a.Value); err == nil {
							col, row = c, r
						}
					case "t":
						typ = cellTypes[a.Value]
					}
				}
				if typ != excelize.CellTypeUnset {
					l.setType(row, col, typ)
				}
			}
		case xml.EndElement:
			if el.Name.Local == "sheetData" {
				return l, nil
			}
		}
	}
}
