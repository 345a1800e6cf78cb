package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{{"Team", "Score"}, {"Red", 1}, {"Blue", 2}, {"Red", 3}}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		values := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}

	path := filepath.Join(dir, "scores.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSplitCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeWorkbook(t, dir)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "split", input, "-s", "Sheet1", "-k", "Team", "-m", "per-sheet", "-o", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Red-Sheet1\t2 rows")
	assert.Contains(t, out, "Blue-Sheet1\t1 rows")

	_, err = os.Stat(filepath.Join(outDir, "split_result.zip"))
	assert.NoError(t, err)
}

func TestSplitCommand_Profile(t *testing.T) {
	dir := t.TempDir()
	input := writeWorkbook(t, dir)
	profiles := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, os.WriteFile(profiles, []byte(`
profiles:
  - name: teams
    sheets: [Sheet1]
    key_columns: [Team]
    suffix: "2024"
`), 0644))

	out, err := execute(t, "split", input, "--profiles", profiles, "-p", "teams", "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Red-2024-Sheet1")

	f, err := excelize.OpenFile(filepath.Join(dir, "split_result.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Red-2024-Sheet1", "Blue-2024-Sheet1"}, f.GetSheetList())
}

func TestSplitCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeWorkbook(t, dir)

	_, err := execute(t, "split", filepath.Join(dir, "missing.xlsx"), "-k", "Team", "-s", "Sheet1")
	assert.Error(t, err)

	_, err = execute(t, "split", input, "-k", "Player", "-s", "Sheet1", "-o", dir)
	assert.Error(t, err)

	_, err = execute(t, "split")
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	input := writeWorkbook(t, t.TempDir())

	out, err := execute(t, "inspect", input, "-k", "Team")
	require.NoError(t, err)

	var info struct {
		Sheets        []struct{ Name string } `json:"sheets"`
		CommonColumns []string                `json:"common_columns"`
		Estimates     map[string]int          `json:"estimates"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Len(t, info.Sheets, 1)
	assert.Equal(t, "Sheet1", info.Sheets[0].Name)
	assert.Equal(t, []string{"Team", "Score"}, info.CommonColumns)
	assert.Equal(t, 2, info.Estimates["union"])
}
