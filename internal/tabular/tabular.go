// Package tabular serializes report results to CSV text and back.
//
// Output follows RFC 4180 as written by encoding/csv: a cell is quoted
// when it contains a comma, a quote, CR or LF, or starts with a space, and
// embedded quotes are doubled. Lines are separated by LF and the text has
// no trailing newline, so a header-only report is exactly the header line.
// A line holding a single empty cell is written as "" so it is not read
// back as a blank line. Cell text is written byte for byte, CR and CRLF
// included; Parse undoes the CRLF folding encoding/csv applies on read.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned by Parse for text without a header line.
var ErrEmpty = errors.New("tabular: no header line")

// Serialize renders headers and rows as CSV text.
//
// Rows are written in the order given. Every line has exactly
// len(headers) cells: short rows are padded with empty cells and long
// rows are truncated. An empty rows slice yields the header line alone.
func Serialize(rows [][]string, headers []string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	writeRecord(&buf, w, headers)
	for _, row := range rows {
		writeRecord(&buf, w, fit(row, len(headers)))
	}
	w.Flush()

	return strings.TrimSuffix(buf.String(), "\n")
}

// writeRecord writes one line. Writes to a bytes.Buffer cannot fail.
func writeRecord(buf *bytes.Buffer, w *csv.Writer, record []string) {
	if len(record) == 1 && record[0] == "" {
		w.Flush()
		buf.WriteString("\"\"\n")
		return
	}
	_ = w.Write(record)
}

func fit(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

// Parse reads text produced by Serialize back into headers and rows.
// Every record must have as many cells as the header line.
func Parse(text string) ([]string, [][]string, error) {
	if text == "" {
		return nil, nil, ErrEmpty
	}
	// Serialize never ends a line with CR, so every CRLF sits inside a
	// quoted cell. Doubling the CR survives the reader's CRLF-to-LF fold.
	r := csv.NewReader(strings.NewReader(strings.ReplaceAll(text, "\r\n", "\r\r\n")))
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("tabular: parse: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrEmpty
	}
	rows := records[1:]
	if rows == nil {
		rows = [][]string{}
	}
	return records[0], rows, nil
}
