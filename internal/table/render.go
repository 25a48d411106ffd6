package table

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SignalColumn is the one column with dedicated styling
const SignalColumn = "Signal"

// Signal marker classes
const (
	ClassBuy  = "signal-buy"
	ClassSell = "signal-sell"
	ClassHold = "signal-hold"
)

// NoDataHTML is rendered for an empty record list
const NoDataHTML template.HTML = `<p class="no-data">No data available.</p>`

// Cell is a rendered table cell. Class is set only for Signal markers.
type Cell struct {
	Text  string
	Class string
}

var tableTemplate = template.Must(template.New("table").Parse(`<table class="analysis-table">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{if .Class}}<span class="signal {{.Class}}">{{.Text}}</span>{{else}}{{.Text}}{{end}}</td>{{end}}</tr>
{{end}}</tbody>
</table>`))

var errorTemplate = template.Must(template.New("error").Parse(`<p class="load-error">Error loading output data: {{.}}</p>`))

// Render renders records as an HTML table. Columns come from the first record;
// cells missing from later records are empty and extra columns are dropped.
func Render(records []Record) (template.HTML, error) {
	if len(records) == 0 {
		return NoDataHTML, nil
	}

	columns := records[0].Columns()
	rows := make([][]Cell, 0, len(records))
	for _, rec := range records {
		row := make([]Cell, 0, len(columns))
		for _, col := range columns {
			v, ok := rec.Get(col)
			if !ok {
				row = append(row, Cell{})
				continue
			}
			row = append(row, FormatCell(col, v))
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	err := tableTemplate.Execute(&buf, struct {
		Columns []string
		Rows    [][]Cell
	}{columns, rows})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// RenderFile parses data and renders it. On a parse error the returned HTML is
// the inline error message, and the error is returned as well so callers can count it.
func RenderFile(data []byte) (template.HTML, error) {
	records, err := Parse(data)
	if err != nil {
		return ErrorHTML(err), err
	}
	html, err := Render(records)
	if err != nil {
		return ErrorHTML(err), err
	}
	return html, nil
}

// ErrorHTML renders err as an inline error paragraph
func ErrorHTML(err error) template.HTML {
	var buf bytes.Buffer
	if execErr := errorTemplate.Execute(&buf, err.Error()); execErr != nil {
		return `<p class="load-error">Error loading output data.</p>`
	}
	return template.HTML(buf.String())
}

// FormatCell applies the cell rules in order: null, Signal marker, number, plain text
func FormatCell(column string, v Value) Cell {
	switch {
	case v.Kind == KindNull:
		return Cell{}
	case column == SignalColumn && v.Kind == KindString:
		return Cell{Text: v.Text, Class: SignalClass(v.Text)}
	case v.Kind == KindNumber:
		return Cell{Text: formatNumber(v.Text)}
	default:
		return Cell{Text: v.Text}
	}
}

// SignalClass maps a signal label to its marker class
func SignalClass(signal string) string {
	upper := strings.ToUpper(signal)
	switch {
	case strings.Contains(upper, "BUY"):
		return ClassBuy
	case strings.Contains(upper, "SELL"):
		return ClassSell
	default:
		return ClassHold
	}
}

// maxFixedExponent bounds the decimal exponent passed to StringFixed, which
// builds a power of ten of that magnitude.
const maxFixedExponent = 400

// formatNumber renders a JSON number with two decimals. Literals outside the
// float64 range are shown as written.
func formatNumber(literal string) string {
	d, err := decimal.NewFromString(literal)
	if err == nil && d.Exponent() >= -maxFixedExponent && d.Exponent() <= maxFixedExponent {
		return d.StringFixed(2)
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return literal
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
