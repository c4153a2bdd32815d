package shopping

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

// Format selects the document layout of a report
type Format string

const (
	FormatText Format = "txt"
	FormatHTML Format = "html"
)

// ParseFormat maps a query value to a Format. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", s)
	}
}

// Filename is the proposed attachment name for the format
func (f Format) Filename() string {
	if f == FormatHTML {
		return "list.html"
	}
	return "list.txt"
}

// ContentType is the MIME type of the rendered document
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

type row struct {
	Number int
	Name   string
	Amount string
	Unit   string
}

// layout writes the fixed wrapper and the rows of one format
type layout interface {
	header(b *strings.Builder)
	row(b *strings.Builder, r row)
	footer(b *strings.Builder)
}

func layoutFor(f Format) layout {
	if f == FormatHTML {
		return htmlLayout{}
	}
	return textLayout{}
}

const textRule = "----------------------------------------\n"

type textLayout struct{}

func (textLayout) header(b *strings.Builder) {
	b.WriteString("Shopping list\n")
	b.WriteString(textRule)
}

func (textLayout) row(b *strings.Builder, r row) {
	b.WriteString(strconv.Itoa(r.Number))
	b.WriteString(". ")
	b.WriteString(r.Name)
	b.WriteString(" - ")
	b.WriteString(r.Amount)
	b.WriteString(" ")
	b.WriteString(r.Unit)
	b.WriteString("\n")
}

func (textLayout) footer(b *strings.Builder) {
	b.WriteString(textRule)
}

const htmlHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Shopping list</title>
<style>
table { border-collapse: collapse; font-family: sans-serif; }
th, td { border: 1px solid #999; padding: 4px 8px; }
th { background: #eee; }
td.amount { text-align: right; }
</style>
</head>
<body>
<h1>Shopping list</h1>
<table>
<thead><tr><th>#</th><th>Ingredient</th><th>Amount</th><th>Unit</th></tr></thead>
<tbody>
`

const htmlFooter = `</tbody>
</table>
</body>
</html>
`

type htmlLayout struct{}

func (htmlLayout) header(b *strings.Builder) { b.WriteString(htmlHeader) }

func (htmlLayout) row(b *strings.Builder, r row) {
	b.WriteString("<tr><td>")
	b.WriteString(strconv.Itoa(r.Number))
	b.WriteString("</td><td>")
	b.WriteString(template.HTMLEscapeString(r.Name))
	b.WriteString(`</td><td class="amount">`)
	b.WriteString(r.Amount)
	b.WriteString("</td><td>")
	b.WriteString(template.HTMLEscapeString(r.Unit))
	b.WriteString("</td></tr>\n")
}

func (htmlLayout) footer(b *strings.Builder) { b.WriteString(htmlFooter) }
