package shopping

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// FormatError reports a line that cannot be rendered
type FormatError struct {
	Index  int // position in the input slice
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("shopping list line %d: %s %s", e.Index, e.Reason, e.Field)
}

// checkField rejects blank values and values with control characters,
// which would break the one-row-per-line text layout.
func checkField(index int, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &FormatError{Index: index, Field: field, Reason: "missing"}
	}
	if strings.IndexFunc(value, unicode.IsControl) >= 0 {
		return &FormatError{Index: index, Field: field, Reason: "control character in"}
	}
	return nil
}

// Report is a rendered shopping list ready to be delivered as an attachment
type Report struct {
	Body        []byte
	Filename    string
	ContentType string
	Attachment  bool
	Rows        int
}

// Render turns aggregated lines into a single document. Lines keep their
// order and are numbered from 1. Lines with a non-positive total are
// skipped. Either the full document or an error is returned.
func Render(lines []Line, format Format) (*Report, error) {
	l := layoutFor(format)

	var b strings.Builder
	l.header(&b)
	n := 0
	for i, line := range lines {
		if line.TotalAmount <= 0 {
			continue
		}
		if err := checkField(i, "name", line.Name); err != nil {
			return nil, err
		}
		if err := checkField(i, "measurement_unit", line.MeasurementUnit); err != nil {
			return nil, err
		}
		n++
		l.row(&b, row{
			Number: n,
			Name:   line.Name,
			Amount: strconv.Itoa(line.TotalAmount),
			Unit:   line.MeasurementUnit,
		})
	}
	l.footer(&b)

	return &Report{
		Body:        []byte(b.String()),
		Filename:    format.Filename(),
		ContentType: format.ContentType(),
		Attachment:  true,
		Rows:        n,
	}, nil
}
