package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Table is a pre-built table.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table with tab-aligned columns.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// TableFormatter renders data as a two-column table. Nested maps are
// flattened into dotted keys and rows are sorted by key.
type TableFormatter struct{}

func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case *Table:
		return v.Render(w)
	case Table:
		return v.Render(w)
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	}

	normalized, err := normalize(data)
	if err != nil {
		return err
	}

	switch v := normalized.(type) {
	case map[string]any:
		t := &Table{Headers: []string{"KEY", "VALUE"}}
		flatten("", v, t)
		return t.Render(w)
	case []any:
		t := &Table{Headers: []string{"VALUE"}}
		for _, item := range v {
			t.AddRow(scalar(item))
		}
		return t.Render(w)
	default:
		_, err := fmt.Fprintln(w, scalar(v))
		return err
	}
}

func flatten(prefix string, m map[string]any, t *Table) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := m[k].(map[string]any); ok && len(nested) > 0 {
			flatten(key, nested, t)
			continue
		}
		t.AddRow(key, scalar(m[k]))
	}
}

func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "undefined"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = scalar(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		if len(x) == 0 {
			return "{}"
		}
	}
	return fmt.Sprint(v)
}
