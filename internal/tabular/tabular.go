// Package tabular renders report tables to the console and to CSV, JSON,
// YAML and XLSX files. The format is selected by the target extension.
package tabular

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipamo/vmware-reporter/internal/fileutils"
	"github.com/ubuntu/decorate"
)

// ErrUnknownFormat is returned when the target extension maps to no writer.
var ErrUnknownFormat = errors.New("unsupported output format")

// consoleTarget selects the standard output instead of a file.
const consoleTarget = "-"

// Table is an ordered set of rows under named columns. Cells may be strings,
// numbers, booleans, times, units.ByteSize values or nil.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]any
}

type options struct {
	stdout io.Writer
	csv    bool
}

// Option is an optional argument of Write.
type Option func(*options)

// WithCSV renders console output as CSV instead of aligned columns.
func WithCSV() Option {
	return func(o *options) {
		o.csv = true
	}
}

// WithWriter redirects console output, for tests.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// Write renders the table to the target. "-" renders to the standard output,
// anything else is a file path whose extension picks the format. A ":sheet"
// suffix after an .xlsx path addresses a sheet inside the workbook. Parent
// directories are created as needed.
func Write(t *Table, target string, args ...Option) (err error) {
	defer decorate.OnError(&err, "could not write table %q", t.Title)

	opts := options{stdout: os.Stdout}
	for _, arg := range args {
		arg(&opts)
	}

	if target == consoleTarget {
		if opts.csv {
			return writeCSV(opts.stdout, t)
		}
		return writeConsole(opts.stdout, t)
	}

	path, sheet := SplitTarget(target)
	if err := fileutils.CreateParents(path); err != nil {
		return err
	}

	var buf bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		err = writeCSV(&buf, t)
	case ".json":
		err = writeJSON(&buf, t)
	case ".yml", ".yaml":
		err = writeYAML(&buf, t)
	case ".xlsx":
		if err := writeWorkbook(path, sheet, t); err != nil {
			return err
		}
		slog.Info("Wrote table", "title", t.Title, "path", path, "sheet", sheet)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return err
	}

	if err := fileutils.AtomicWrite(path, buf.Bytes()); err != nil {
		return err
	}
	slog.Info("Wrote table", "title", t.Title, "path", path)
	return nil
}

// SplitTarget separates an .xlsx workbook path from the sheet name riding
// after the last colon. Targets without a sheet suffix are returned as-is.
func SplitTarget(target string) (path, sheet string) {
	i := strings.LastIndex(target, ":")
	if i < 0 {
		return target, ""
	}
	if !strings.HasSuffix(strings.ToLower(target[:i]), ".xlsx") {
		return target, ""
	}
	return target[:i], target[i+1:]
}
