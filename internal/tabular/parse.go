// Package tabular turns uploaded roster exports into a rectangular table of
// trimmed strings.
//
// Only flat delimited text is accepted. The delimiter is chosen by file
// extension. Text is split into lines first and each line into cells, so a
// stray quote in one record can never swallow the records after it. Parsing
// is the only fatal stage of an import: every failure is reported as a
// *ParseError.
package tabular

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Sentinel causes carried by ParseError.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrBinaryContent       = errors.New("binary content is not delimited text")
	ErrEmptyFile           = errors.New("empty file")
)

// ParseError is returned for any file that cannot be read as a table.
type ParseError struct {
	FileName string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.FileName, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MalformedRow records a data row that carried more non-blank cells than the
// header, or whose line ended inside a quoted cell. Extra cells are dropped
// from ParsedTable.Rows; an unclosed quote keeps the rest of its line in the
// cell it opened.
type MalformedRow struct {
	Row           int  `json:"row"`      // 1-indexed position in ParsedTable.Rows
	Cells         int  `json:"cells"`    // Cell count in the file
	Expected      int  `json:"expected"` // Header cell count
	UnclosedQuote bool `json:"unclosedQuote,omitempty"`
}

// ParsedTable is the result of Parse. Every row has exactly len(Headers) cells.
type ParsedTable struct {
	Headers   []string       `json:"headers"`
	Rows      [][]string     `json:"rows"`
	TotalRows int            `json:"totalRows"` // Rows that survived blank filtering
	Delimiter rune           `json:"-"`
	Malformed []MalformedRow `json:"malformed,omitempty"`
}

// delimiters maps accepted file extensions to their delimiter.
var delimiters = map[string]rune{
	"":     ',',
	".csv": ',',
	".txt": ',',
	".tsv": '\t',
	".tab": '\t',
}

// DelimiterFor returns the delimiter used for fileName, or
// ErrUnsupportedFileType.
func DelimiterFor(fileName string) (rune, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	d, ok := delimiters[ext]
	if !ok {
		return 0, fmt.Errorf("%w %q (expected .csv, .tsv or .txt)", ErrUnsupportedFileType, ext)
	}
	return d, nil
}

// Parse reads data as delimited text. The first non-blank line is the
// header row; blank lines are dropped; data rows are padded or truncated
// to the header width.
func Parse(data []byte, fileName string) (*ParsedTable, error) {
	delim, err := DelimiterFor(fileName)
	if err != nil {
		return nil, &ParseError{FileName: fileName, Err: err}
	}

	data = stripBOM(data)
	if isBinary(data) {
		return nil, &ParseError{FileName: fileName, Err: ErrBinaryContent}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{FileName: fileName, Err: ErrEmptyFile}
	}
	data = sanitizeUTF8(data)

	table := &ParsedTable{Delimiter: delim}

	for _, line := range strings.Split(string(data), "\n") {
		record, unclosed := splitLine(strings.TrimSuffix(line, "\r"), delim)
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if isEmptyRow(record) {
			continue
		}

		if table.Headers == nil {
			table.Headers = record
			continue
		}

		row, overflow := fitRow(record, len(table.Headers))
		table.Rows = append(table.Rows, row)
		if overflow || unclosed {
			table.Malformed = append(table.Malformed, MalformedRow{
				Row:           len(table.Rows),
				Cells:         len(record),
				Expected:      len(table.Headers),
				UnclosedQuote: unclosed,
			})
		}
	}

	if table.Headers == nil {
		return nil, &ParseError{FileName: fileName, Err: ErrEmptyFile}
	}

	table.TotalRows = len(table.Rows)
	return table, nil
}

// splitLine splits one line into cells. A double quote toggles the quoted
// state and is not kept; inside a quoted run "" stands for one literal quote.
// The delimiter ends a cell only outside a quoted run. A cell written as
// ="value", which spreadsheet tools use to keep leading zeros, loses the
// '='. unclosed reports a line that ended while still quoted.
func splitLine(line string, delim rune) (cells []string, unclosed bool) {
	var cell strings.Builder
	quoted := false

	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])

		switch {
		case r == '"' && quoted && strings.HasPrefix(line[i+size:], `"`):
			cell.WriteByte('"')
			size++
		case r == '"':
			quoted = !quoted
		case r == '=' && !quoted && strings.HasPrefix(line[i+size:], `"`) && strings.TrimSpace(cell.String()) == "":
			// formula prefix, dropped
		case r == delim && !quoted:
			cells = append(cells, cell.String())
			cell.Reset()
		default:
			cell.WriteString(line[i : i+size])
		}
		i += size
	}

	return append(cells, cell.String()), quoted
}

// fitRow pads or truncates record to width cells. overflow is true when a
// truncated cell was not blank.
func fitRow(record []string, width int) (row []string, overflow bool) {
	if len(record) == width {
		return record, false
	}
	if len(record) < width {
		row = make([]string, width)
		copy(row, record)
		return row, false
	}
	for _, extra := range record[width:] {
		if extra != "" {
			overflow = true
			break
		}
	}
	return record[:width:width], overflow
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
