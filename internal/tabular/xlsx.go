package tabular

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/vmware/govmomi/units"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook writes the table as one sheet of an .xlsx workbook. An
// existing workbook keeps its other sheets, a sheet with the same name is
// replaced.
func writeWorkbook(path, sheet string, t *Table) (err error) {
	f, created, err := openWorkbook(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if sheet == "" {
		sheet = SheetName(t.Title)
	}
	if _, err := ensureEmptySheet(f, sheet); err != nil {
		return err
	}
	if created && sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for r, row := range t.Rows {
		cells := make([]any, len(t.Headers))
		for i := range t.Headers {
			cells[i] = workbookCell(cellAt(row, i))
		}
		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, start, &cells); err != nil {
			return err
		}
	}

	if len(t.Headers) > 0 {
		end, err := excelize.CoordinatesToCellName(len(t.Headers), len(t.Rows)+1)
		if err != nil {
			return err
		}
		if err := f.AutoFilter(sheet, "A1:"+end, nil); err != nil {
			return err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
	}

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	return f.SaveAs(path)
}

func openWorkbook(path string) (f *excelize.File, created bool, err error) {
	f, err = excelize.OpenFile(path)
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}
	return excelize.NewFile(), true, nil
}

// ensureEmptySheet creates the sheet, replacing a previous one with the same
// name. A scratch sheet keeps the workbook valid while the old sheet goes.
func ensureEmptySheet(f *excelize.File, sheet string) (int, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return 0, err
	}
	if idx < 0 {
		return f.NewSheet(sheet)
	}

	const scratch = "__rebuild__"
	if _, err := f.NewSheet(scratch); err != nil {
		return 0, err
	}
	if err := f.DeleteSheet(sheet); err != nil {
		return 0, err
	}
	idx, err = f.NewSheet(sheet)
	if err != nil {
		return 0, err
	}
	if err := f.DeleteSheet(scratch); err != nil {
		return 0, err
	}
	return idx, nil
}

// SheetName derives a valid sheet name from a table title, replacing the
// characters the format forbids and keeping at most 31 characters.
func SheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return ' '
		}
		return r
	}, title)
	name = strings.TrimSpace(name)
	if name == "" {
		return "Sheet1"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}

func workbookCell(v any) any {
	switch v := v.(type) {
	case units.ByteSize:
		return int64(v)
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return v
	default:
		return v
	}
}
