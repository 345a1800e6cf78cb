package sheetsplit

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAssemble_SingleWorkbook(t *testing.T) {
	wb := NewWorkbook(sheetOf("Jan", []string{"Region", "Name", "Amount"},
		Row{"East", "Ann", int64(10)},
		Row{"West", "Bob", int64(20)},
		Row{"East", "Cid", int64(30)},
	))

	art, err := NewAssembler().Assemble(context.Background(), wb, Request{
		Sheets:     []string{"Jan"},
		KeyColumns: []string{"Region"},
		Mode:       ModeSingleWorkbook,
	})
	require.NoError(t, err)

	assert.Equal(t, KindWorkbook, art.Kind)
	assert.Equal(t, "split_result.xlsx", art.FileName)
	assert.Equal(t, ContentTypeXLSX, art.ContentType)
	assert.Equal(t, 2, art.GroupCount)
	assert.Equal(t, []Entry{
		{Name: "East-Jan", Sheets: []string{"Jan"}, Rows: 2},
		{Name: "West-Jan", Sheets: []string{"Jan"}, Rows: 1},
	}, art.Entries)

	f := openXLSX(t, art.Data)
	assert.Equal(t, []string{"East-Jan", "West-Jan"}, f.GetSheetList())

	east, err := f.GetRows("East-Jan")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Region", "Name", "Amount"},
		{"East", "Ann", "10"},
		{"East", "Cid", "30"},
	}, east)

	west, err := f.GetRows("West-Jan")
	require.NoError(t, err)
	assert.Len(t, west, 2)

	header := cellStyle(t, f, "East-Jan", "A1")
	require.NotNil(t, header.Font)
	assert.True(t, header.Font.Bold)
	assert.True(t, strings.HasSuffix(fillColor(t, f, "East-Jan", "A1"), "E0E0E0"))
	assert.True(t, strings.HasSuffix(fillColor(t, f, "East-Jan", "A2"), "E6F3FF"))
	assert.True(t, strings.HasSuffix(fillColor(t, f, "East-Jan", "A3"), "FFFFFF"))
}

func TestAssemble_SingleWorkbookCountLaw(t *testing.T) {
	wb := regionWorkbook()
	req := Request{
		Sheets:     []string{"Feb", "Jan"},
		KeyColumns: []string{"Region"},
		Prefix:     "Q1",
		Mode:       ModeSingleWorkbook,
	}

	art, err := NewAssembler().Assemble(context.Background(), wb, req)
	require.NoError(t, err)

	want := 0
	for _, name := range req.Sheets {
		s, _ := wb.Sheet(name)
		keys, err := DiscoverGroups(s, req.KeyColumns)
		require.NoError(t, err)
		want += len(keys)
	}
	assert.Len(t, art.Entries, want)

	// selection order, then insertion order within each sheet
	assert.Equal(t, []string{"Q1-West-Feb", "Q1-North-Feb", "Q1-East-Jan", "Q1-West-Jan"}, entryNames(art.Entries))
	assert.Equal(t, entryNames(art.Entries), openXLSX(t, art.Data).GetSheetList())
}

func TestAssemble_UnionArchive(t *testing.T) {
	wb := regionWorkbook()

	art, err := NewAssembler().Assemble(context.Background(), wb, Request{
		Sheets:     []string{"Jan", "Feb"},
		KeyColumns: []string{"Region"},
		Mode:       ModeUnionArchive,
	})
	require.NoError(t, err)

	assert.Equal(t, KindArchive, art.Kind)
	assert.Equal(t, "merged_split_result.zip", art.FileName)
	assert.Equal(t, ContentTypeZip, art.ContentType)
	assert.Equal(t, 3, art.GroupCount)

	names, files := unzip(t, art.Data)
	assert.Equal(t, []string{"East.xlsx", "North.xlsx", "West.xlsx"}, names)
	assert.Equal(t, names, entryNames(art.Entries))

	expect := map[string][]string{
		"East.xlsx":  {"Jan"},
		"North.xlsx": {"Feb"},
		"West.xlsx":  {"Jan", "Feb"},
	}
	for name, sheets := range expect {
		f := openXLSX(t, files[name])
		assert.Equal(t, sheets, f.GetSheetList(), name)

		region := strings.TrimSuffix(name, ".xlsx")
		for _, sheet := range sheets {
			rows, err := f.GetRows(sheet)
			require.NoError(t, err)
			require.Greater(t, len(rows), 1)
			for _, r := range rows[1:] {
				assert.Equal(t, region, r[0], "%s/%s leaks another group", name, sheet)
			}
		}
	}

	west := openXLSX(t, files["West.xlsx"])
	jan, err := west.GetRows("Jan")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Region", "Name", "Amount"}, {"West", "Bob", "20"}}, jan)
}

func TestAssemble_UnionBound(t *testing.T) {
	wb := regionWorkbook()
	labels := []string{"Region"}

	maxCount, sum := 0, 0
	for _, name := range []string{"Jan", "Feb"} {
		s, _ := wb.Sheet(name)
		keys, err := DiscoverGroups(s, labels)
		require.NoError(t, err)
		if len(keys) > maxCount {
			maxCount = len(keys)
		}
		sum += len(keys)
	}

	union, err := DiscoverUnion(wb, []string{"Jan", "Feb"}, labels)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(union), maxCount)
	assert.LessOrEqual(t, len(union), sum)
}

func TestAssemble_PerSheetArchive(t *testing.T) {
	wb := regionWorkbook()

	art, err := NewAssembler().Assemble(context.Background(), wb, Request{
		Sheets:     []string{"Jan", "Feb"},
		KeyColumns: []string{"Region"},
		Suffix:     "v2",
		Mode:       ModePerSheetArchive,
	})
	require.NoError(t, err)

	assert.Equal(t, "split_result.zip", art.FileName)
	assert.Equal(t, 4, art.GroupCount)

	names, files := unzip(t, art.Data)
	assert.Equal(t, []string{
		"East-v2-Jan.xlsx",
		"West-v2-Jan.xlsx",
		"West-v2-Feb.xlsx",
		"North-v2-Feb.xlsx",
	}, names)

	for _, name := range names {
		f := openXLSX(t, files[name])
		assert.Equal(t, []string{SingleSheetName}, f.GetSheetList())
	}

	rows, err := openXLSX(t, files["East-v2-Jan.xlsx"]).GetRows(SingleSheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestAssemble_ArchiveOrderWithWorkers(t *testing.T) {
	var rows []Row
	var want []string
	for i := 49; i >= 0; i-- {
		g := fmt.Sprintf("G%02d", i)
		rows = append(rows, Row{g, int64(i)}, Row{g, int64(i + 100)})
		want = append(want, g+"-Data.xlsx")
	}
	wb := NewWorkbook(sheetOf("Data", []string{"Group", "Value"}, rows...))

	art, err := NewAssembler(WithWorkers(8)).Assemble(context.Background(), wb, Request{
		Sheets:     []string{"Data"},
		KeyColumns: []string{"Group"},
		Mode:       ModePerSheetArchive,
	})
	require.NoError(t, err)

	names, _ := unzip(t, art.Data)
	assert.Equal(t, want, names)
	for _, e := range art.Entries {
		assert.Equal(t, 2, e.Rows)
	}
}

func TestAssemble_NameCollisions(t *testing.T) {
	wb := NewWorkbook(sheetOf("Jan", []string{"Code"},
		Row{"A/B"},
		Row{"A:B"},
		Row{"A?B"},
	))
	req := Request{Sheets: []string{"Jan"}, KeyColumns: []string{"Code"}, Mode: ModeSingleWorkbook}

	art, err := NewAssembler().Assemble(context.Background(), wb, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"A_B-Jan", "A_B-Jan (2)", "A_B-Jan (3)"}, entryNames(art.Entries))

	req.Mode = ModeUnionArchive
	art, err = NewAssembler().Assemble(context.Background(), wb, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"A_B.xlsx", "A_B (2).xlsx", "A_B (3).xlsx"}, entryNames(art.Entries))

	_, err = NewAssembler(WithCollisionPolicy(CollisionError)).Assemble(context.Background(), wb, req)
	assert.ErrorIs(t, err, ErrNameCollision)
}

func TestAssemble_SkipsEmptySheets(t *testing.T) {
	wb := NewWorkbook(
		sheetOf("Jan", []string{"Region"}, Row{"East"}),
		sheetOf("Blank", nil),
	)

	for _, mode := range Modes {
		art, err := NewAssembler().Assemble(context.Background(), wb, Request{
			Sheets:     []string{"Blank", "Jan"},
			KeyColumns: []string{"Region"},
			Mode:       mode,
		})
		require.NoError(t, err, mode)
		assert.Len(t, art.Entries, 1, mode)
	}
}

func TestAssemble_Errors(t *testing.T) {
	wb := regionWorkbook()
	ctx := context.Background()
	base := Request{Sheets: []string{"Jan"}, KeyColumns: []string{"Region"}, Mode: ModeSingleWorkbook}

	tests := []struct {
		name   string
		modify func(r *Request)
		want   error
	}{
		{"unknown mode", func(r *Request) { r.Mode = "zip-all" }, ErrUnknownMode},
		{"empty mode", func(r *Request) { r.Mode = "" }, ErrUnknownMode},
		{"no sheets", func(r *Request) { r.Sheets = nil }, ErrNoSheets},
		{"unknown sheet", func(r *Request) { r.Sheets = []string{"Mar"} }, ErrSheetNotFound},
		{"no keys", func(r *Request) { r.KeyColumns = nil }, ErrNoKeyColumns},
		{"unknown key", func(r *Request) { r.KeyColumns = []string{"City"} }, ErrColumnNotFound},
		{"repeated sheet", func(r *Request) { r.Sheets = []string{"Jan", "Feb", "Jan"} }, ErrDuplicateSheet},
		{"repeated key", func(r *Request) { r.KeyColumns = []string{"Region", "Region"} }, ErrDuplicateColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.modify(&req)
			_, err := NewAssembler().Assemble(ctx, wb, req)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsRequestError(err))
		})
	}
}

func TestAssemble_RepeatedSheetRejectedInEveryMode(t *testing.T) {
	for _, mode := range Modes {
		art, err := NewAssembler().Assemble(context.Background(), regionWorkbook(), Request{
			Sheets:     []string{"Jan", "Jan"},
			KeyColumns: []string{"Region"},
			Mode:       mode,
		})
		assert.Nil(t, art, mode)
		assert.ErrorIs(t, err, ErrDuplicateSheet, mode)

		var splitErr *SplitError
		require.ErrorAs(t, err, &splitErr)
		assert.Equal(t, "Jan", splitErr.Sheet)
	}
}

func TestAssemble_UncleanFallbackName(t *testing.T) {
	wb := NewWorkbook(sheetOf("Jan", []string{"Region"}, Row{"::"}, Row{"East"}))

	for _, mode := range Modes {
		art, err := NewAssembler(WithFallbackName("a/b")).Assemble(context.Background(), wb, Request{
			Sheets:     []string{"Jan"},
			KeyColumns: []string{"Region"},
			Mode:       mode,
		})
		require.NoError(t, err, mode)
		assert.NotEmpty(t, art.Entries, mode)
		if mode == ModeUnionArchive {
			assert.Equal(t, []string{"a_b.xlsx", "East.xlsx"}, entryNames(art.Entries))
		}
	}
}

func TestAssemble_NoOutput(t *testing.T) {
	wb := NewWorkbook(sheetOf("Jan", []string{"Region", "Name"},
		Row{nil, "Ann"},
		Row{nil, "Bob"},
	))

	for _, mode := range Modes {
		_, err := NewAssembler().Assemble(context.Background(), wb, Request{
			Sheets:     []string{"Jan"},
			KeyColumns: []string{"Region"},
			Mode:       mode,
		})
		assert.ErrorIs(t, err, ErrNoOutput, mode)
	}
}

func TestAssemble_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, mode := range Modes {
		_, err := NewAssembler().Assemble(ctx, regionWorkbook(), Request{
			Sheets:     []string{"Jan", "Feb"},
			KeyColumns: []string{"Region"},
			Mode:       mode,
		})
		assert.ErrorIs(t, err, context.Canceled, mode)
	}
}

func TestSplit_FromBytes(t *testing.T) {
	data := xlsxBytes(t, fixtureSheet{
		name: "Jan",
		rows: [][]interface{}{
			{"Region", "Name", "Amount"},
			{"East", "Ann", 1.5},
			{"West", "Bob", 2},
			{"East", "Cid", 3},
		},
		prepare: func(t *testing.T, f *excelize.File, sheet string) {
			require.NoError(t, f.SetColWidth(sheet, "B", "B", 25))
			id, err := f.NewStyle(&excelize.Style{NumFmt: 2})
			require.NoError(t, err)
			require.NoError(t, f.SetCellStyle(sheet, "C2", "C4", id))
		},
	})

	art, err := Split(context.Background(), data, Request{
		Sheets:     []string{"Jan"},
		KeyColumns: []string{"Region"},
		Prefix:     "Q1",
		Mode:       ModeSingleWorkbook,
	}, WithResultNames("regions", ""))
	require.NoError(t, err)
	assert.Equal(t, "regions.xlsx", art.FileName)

	f := openXLSX(t, art.Data)
	assert.Equal(t, []string{"Q1-East-Jan", "Q1-West-Jan"}, f.GetSheetList())

	w, err := f.GetColWidth("Q1-East-Jan", "B")
	require.NoError(t, err)
	assert.Equal(t, 25.0, w)
	assert.Equal(t, 2, cellStyle(t, f, "Q1-East-Jan", "C3").NumFmt)

	v, err := f.GetCellValue("Q1-East-Jan", "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1.5", v)

	_, err = Split(context.Background(), data, Request{}, WithMaxInputSize(10))
	assert.ErrorIs(t, err, ErrInputTooLarge)
}
