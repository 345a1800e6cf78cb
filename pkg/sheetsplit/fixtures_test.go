package sheetsplit

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fixtureSheet struct {
	name string
	rows [][]interface{}
	// prepare runs after the rows are written, to add widths, heights or styles.
	prepare func(t *testing.T, f *excelize.File, sheet string)
}

// xlsxBytes renders fixture sheets into an xlsx file.
func xlsxBytes(t *testing.T, sheets ...fixtureSheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(s.name, cell, &values))
		}
		if s.prepare != nil {
			s.prepare(t, f, s.name)
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func sheetOf(name string, header []string, rows ...Row) *Sheet {
	return &Sheet{Name: name, Header: header, Rows: rows}
}

// regionWorkbook holds the two monthly sheets used across the assembler tests.
func regionWorkbook() *Workbook {
	header := []string{"Region", "Name", "Amount"}
	return NewWorkbook(
		sheetOf("Jan", header,
			Row{"East", "Ann", int64(10)},
			Row{"West", "Bob", int64(20)},
			Row{"East", "Cid", int64(30)},
		),
		sheetOf("Feb", header,
			Row{"West", "Dan", int64(40)},
			Row{"North", "Eve", int64(50)},
		),
	)
}

func openXLSX(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// unzip returns the archive members in archive order.
func unzip(t *testing.T, data []byte) ([]string, map[string][]byte) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	files := make(map[string][]byte, len(zr.File))
	for _, zf := range zr.File {
		rc, err := zf.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		names = append(names, zf.Name)
		files[zf.Name] = b
	}
	return names, files
}

func entryNames(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
