package tabular_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ipamo/vmware-reporter/internal/tabular"
	"github.com/ipamo/vmware-reporter/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmware/govmomi/units"
	"github.com/xuri/excelize/v2"
)

func sampleTable() *tabular.Table {
	return &tabular.Table{
		Title:   "Virtual machines",
		Headers: []string{"name", "ref", "memory", "created", "template"},
		Rows: [][]any{
			{"web01", "vm-12", units.ByteSize(2147483648), time.Date(2024, 5, 17, 8, 30, 0, 0, time.UTC), false},
			{"db01", "vm-13", units.ByteSize(1610612736), time.Date(2023, 11, 2, 16, 45, 10, 0, time.UTC), true},
			{"empty", "vm-14", nil, time.Time{}, nil},
		},
	}
}

func TestSplitTarget(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		target string

		wantPath  string
		wantSheet string
	}{
		"Workbook with sheet":        {target: "report.xlsx:vms", wantPath: "report.xlsx", wantSheet: "vms"},
		"Workbook without sheet":     {target: "report.xlsx", wantPath: "report.xlsx"},
		"Sheet name with spaces":     {target: "data/report.xlsx:Virtual machines", wantPath: "data/report.xlsx", wantSheet: "Virtual machines"},
		"Extension case insensitive": {target: "REPORT.XLSX:vms", wantPath: "REPORT.XLSX", wantSheet: "vms"},
		"Plain file":                 {target: "report.csv", wantPath: "report.csv"},
		"Colon without workbook":     {target: "report.csv:sheet", wantPath: "report.csv:sheet"},
		"Colon in a directory name":  {target: "a:b/c.csv", wantPath: "a:b/c.csv"},
		"Empty sheet suffix":         {target: "report.xlsx:", wantPath: "report.xlsx"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path, sheet := tabular.SplitTarget(tc.target)
			assert.Equal(t, tc.wantPath, path, "Unexpected path")
			assert.Equal(t, tc.wantSheet, sheet, "Unexpected sheet")
		})
	}
}

func TestSheetName(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		title string

		want string
	}{
		"Plain title":             {title: "Virtual machines", want: "Virtual machines"},
		"Forbidden characters":    {title: "a/b:c", want: "a b c"},
		"Empty title":             {title: "", want: "Sheet1"},
		"Surrounding spaces":      {title: "  spaced  ", want: "spaced"},
		"Truncated to the format": {title: strings.Repeat("x", 40), want: strings.Repeat("x", 31)},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tabular.SheetName(tc.title), "Unexpected sheet name")
		})
	}
}

func TestWriteConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, tabular.Write(sampleTable(), "-", tabular.WithWriter(&buf)), "Write should not fail")

	out := buf.String()
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 5, "Title, header and three rows expected")
	assert.Equal(t, "# Virtual machines", lines[0], "The title line should come first")
	assert.Contains(t, lines[1], "name", "The header row should name the columns")
	assert.Contains(t, lines[1], "template", "The header row should name the columns")
	assert.Contains(t, out, "2.0GB", "Sizes should be humanized on the console")
	assert.Contains(t, out, "1.5GB", "Sizes should be humanized on the console")
	assert.Contains(t, out, "2024-05-17T08:30:00Z", "Times should be in RFC 3339")
}

func TestWriteConsoleCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, tabular.Write(sampleTable(), "-", tabular.WithWriter(&buf), tabular.WithCSV()), "Write should not fail")

	want := testutils.LoadWithUpdateFromGolden(t, buf.String())
	assert.Equal(t, want, buf.String(), "Unexpected CSV output")
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		filename string
	}{
		"CSV file":  {filename: "report.csv"},
		"JSON file": {filename: "report.json"},
		"YAML file": {filename: "report.yml"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "out", tc.filename)
			require.NoError(t, tabular.Write(sampleTable(), path), "Write should not fail")

			got, err := os.ReadFile(path)
			require.NoError(t, err, "The report file should exist")
			want := testutils.LoadWithUpdateFromGolden(t, string(got))
			assert.Equal(t, want, string(got), "Unexpected report content")
		})
	}
}

func TestWriteWorkbook(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "report.xlsx")

	require.NoError(t, tabular.Write(sampleTable(), path+":vms"), "Write should create the workbook")
	hosts := &tabular.Table{Title: "Hosts", Headers: []string{"name"}, Rows: [][]any{{"esx01"}}}
	require.NoError(t, tabular.Write(hosts, path+":hosts"), "Write should add a sheet to the workbook")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err, "The workbook should open")
	defer f.Close()

	assert.ElementsMatch(t, []string{"vms", "hosts"}, f.GetSheetList(), "Unexpected sheets")
	rows, err := f.GetRows("vms")
	require.NoError(t, err, "The vms sheet should be readable")
	require.Len(t, rows, 4, "Header and three rows expected")
	assert.Equal(t, []string{"name", "ref", "memory", "created", "template"}, rows[0], "Unexpected header row")
	assert.Equal(t, "web01", rows[1][0], "Unexpected first cell")
	assert.Equal(t, "2147483648", rows[1][2], "Sizes should be raw byte counts in workbooks")
	assert.NotEmpty(t, rows[1][3], "The date cell should be set")
}

func TestWriteWorkbookReplacesSheet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, tabular.Write(sampleTable(), path+":vms"), "Setup: could not create the workbook")
	hosts := &tabular.Table{Title: "Hosts", Headers: []string{"name"}, Rows: [][]any{{"esx01"}}}
	require.NoError(t, tabular.Write(hosts, path+":hosts"), "Setup: could not add a sheet")

	smaller := &tabular.Table{Title: "Virtual machines", Headers: []string{"name"}, Rows: [][]any{{"only"}}}
	require.NoError(t, tabular.Write(smaller, path+":vms"), "Write should replace the sheet")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err, "The workbook should open")
	defer f.Close()

	assert.ElementsMatch(t, []string{"vms", "hosts"}, f.GetSheetList(), "Other sheets should survive the rewrite")
	rows, err := f.GetRows("vms")
	require.NoError(t, err, "The vms sheet should be readable")
	require.Len(t, rows, 2, "The sheet should hold the new content only")
	assert.Equal(t, "only", rows[1][0], "Unexpected cell")
}

func TestWriteWorkbookDefaultSheet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plain.xlsx")
	require.NoError(t, tabular.Write(sampleTable(), path), "Write should not fail")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err, "The workbook should open")
	defer f.Close()

	assert.Equal(t, []string{"Virtual machines"}, f.GetSheetList(), "The sheet should be named after the title")
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	err := tabular.Write(sampleTable(), filepath.Join(t.TempDir(), "report.txt"))
	require.ErrorIs(t, err, tabular.ErrUnknownFormat, "An unsupported extension should be rejected")
}
