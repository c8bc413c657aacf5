// Package output renders cached records and messages as text, tables or JSON.
package output

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"
	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/config"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	return parseFormat(config.GetString("output.format"))
}

func parseFormat(s string) OutputFormat {
	switch s {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// Column is one rendered column of a record list
type Column struct {
	Header string
	Value  func(cache.Record) string
}

// Printer writes in one format
type Printer struct {
	Out    io.Writer
	Format OutputFormat
}

// New returns a printer on color.Output in the configured format
func New() *Printer {
	return &Printer{Out: color.Output, Format: GetOutputFormat()}
}

// Records prints a list of records. JSON output carries the raw fields;
// text and table output use columns.
func (p *Printer) Records(title string, recs []cache.Record, columns []Column) error {
	switch p.Format {
	case FormatJSON:
		items := make([]map[string]any, len(recs))
		for i, r := range recs {
			items[i] = r.Fields
		}
		return p.json(title, items)
	case FormatTable:
		headers := make([]string, len(columns))
		for i, c := range columns {
			headers[i] = c.Header
		}
		p.table(headers, rows(recs, columns))
		return nil
	default:
		if title != "" {
			color.New(color.Bold).Fprintln(p.Out, title)
		}
		if len(recs) == 0 {
			fmt.Fprintln(p.Out, "  (nothing here)")
			return nil
		}
		p.table(nil, rows(recs, columns))
		return nil
	}
}

// Record prints one record. Only the named fields are shown in text and
// table output, in order; with no names every field is shown sorted.
func (p *Printer) Record(title string, rec cache.Record, fields ...string) error {
	if p.Format == FormatJSON {
		return p.json(title, rec.Fields)
	}

	if len(fields) == 0 {
		for k := range rec.Fields {
			fields = append(fields, k)
		}
		sort.Strings(fields)
	}
	kv := make([][]string, 0, len(fields))
	for _, f := range fields {
		if v, ok := rec.Fields[f]; ok && v != nil {
			kv = append(kv, []string{f, fmt.Sprint(v)})
		}
	}

	if p.Format == FormatTable {
		p.table([]string{"Field", "Value"}, kv)
		return nil
	}
	if title != "" {
		color.New(color.Bold).Fprintln(p.Out, title)
	}
	bold := color.New(color.Bold)
	for _, row := range kv {
		bold.Fprint(p.Out, "  "+row[0]+": ")
		fmt.Fprintln(p.Out, row[1])
	}
	return nil
}

// Value prints any value, as JSON in json mode and with %v otherwise
func (p *Printer) Value(title string, v any) error {
	if p.Format == FormatJSON {
		return p.json(title, v)
	}
	if title != "" {
		color.New(color.Bold).Fprint(p.Out, title+": ")
	}
	fmt.Fprintln(p.Out, v)
	return nil
}

// Table prints rows under headers regardless of format, except JSON which
// prints the rows as objects keyed by header.
func (p *Printer) Table(headers []string, data [][]string) error {
	if p.Format == FormatJSON {
		items := make([]map[string]string, len(data))
		for i, row := range data {
			items[i] = make(map[string]string, len(headers))
			for j, h := range headers {
				if j < len(row) {
					items[i][h] = row[j]
				}
			}
		}
		return p.json("", items)
	}
	p.table(headers, data)
	return nil
}

// Success prints a success message
func (p *Printer) Success(msg string, args ...any) {
	p.message(color.FgGreen, "", msg, args...)
}

// Info prints an info message
func (p *Printer) Info(msg string, args ...any) {
	p.message(color.FgCyan, "", msg, args...)
}

// Warning prints a warning message
func (p *Printer) Warning(msg string, args ...any) {
	p.message(color.FgYellow, "Warning: ", msg, args...)
}

// Error prints an error message
func (p *Printer) Error(msg string, args ...any) {
	p.message(color.FgRed, "Error: ", msg, args...)
}

func (p *Printer) message(attr color.Attribute, prefix, msg string, args ...any) {
	// status lines never mix into JSON output
	if p.Format == FormatJSON {
		return
	}
	color.New(attr).Fprintf(p.Out, prefix+msg+"\n", args...)
}

func (p *Printer) json(title string, v any) error {
	var out any = v
	if title != "" {
		out = map[string]any{title: v}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Out, string(data))
	return err
}

func (p *Printer) table(headers []string, data [][]string) {
	w := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	if len(headers) > 0 {
		for i, h := range headers {
			bold.Fprint(w, h)
			if i < len(headers)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}

	for _, row := range data {
		for i, cell := range row {
			fmt.Fprint(w, cell)
			if i < len(row)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}

	w.Flush()
}

func rows(recs []cache.Record, columns []Column) [][]string {
	out := make([][]string, len(recs))
	for i, r := range recs {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = c.Value(r)
		}
		out[i] = row
	}
	return out
}

// FormatAsJSON converts data to a compact JSON string
func FormatAsJSON(data any) (string, error) {
	return json.MarshalToString(data)
}

// FormatAsPrettyJSON converts data to an indented JSON string
func FormatAsPrettyJSON(data any) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
