package tabular

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/vmware/govmomi/units"
	"gopkg.in/yaml.v3"
)

// writeConsole renders aligned columns with humanized sizes, preceded by a
// title line.
func writeConsole(w io.Writer, t *Table) error {
	if t.Title != "" {
		if _, err := fmt.Fprintf(w, "# %s\n", t.Title); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	for i, header := range t.Headers {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, header)
	}
	fmt.Fprintln(tw)
	for _, row := range t.Rows {
		for i := range t.Headers {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cellString(cellAt(row, i), true))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func writeCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	record := make([]string, len(t.Headers))
	for _, row := range t.Rows {
		for i := range t.Headers {
			record[i] = cellString(cellAt(row, i), false)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeJSON renders an array of objects whose keys follow the column order.
func writeJSON(w io.Writer, t *Table) error {
	rows := make([]json.RawMessage, 0, len(t.Rows))
	for _, row := range t.Rows {
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, header := range t.Headers {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(header)
			if err != nil {
				return err
			}
			value, err := json.Marshal(cellValue(cellAt(row, i)))
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
		buf.WriteByte('}')
		rows = append(rows, json.RawMessage(buf.Bytes()))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// writeYAML renders a sequence of mappings whose keys follow the column order.
func writeYAML(w io.Writer, t *Table) error {
	root := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range t.Rows {
		item := &yaml.Node{Kind: yaml.MappingNode}
		for i, header := range t.Headers {
			var key, value yaml.Node
			key.SetString(header)
			if v := cellValue(cellAt(row, i)); v == nil {
				value = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
			} else if err := value.Encode(v); err != nil {
				return err
			}
			item.Content = append(item.Content, &key, &value)
		}
		root.Content = append(root.Content, item)
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func cellAt(row []any, i int) any {
	if i >= len(row) {
		return nil
	}
	return row[i]
}

// cellValue maps a cell to its serializable form for JSON and YAML.
func cellValue(v any) any {
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

// cellString renders a cell as text. Humanized output applies to sizes only.
func cellString(v any, human bool) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case units.ByteSize:
		if human {
			return v.String()
		}
		return strconv.FormatInt(int64(v), 10)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
