package tabular

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		data        string
		wantHeaders []string
		wantRows    [][]string
	}{
		{
			name:        "simple csv",
			fileName:    "clients.csv",
			data:        "Name,Email\nAlice,alice@example.com\nBob,bob@example.com\n",
			wantHeaders: []string{"Name", "Email"},
			wantRows:    [][]string{{"Alice", "alice@example.com"}, {"Bob", "bob@example.com"}},
		},
		{
			name:        "quoted delimiter stays in cell",
			fileName:    "clients.csv",
			data:        "Name,Email\n\"Smith, Jane\",jane@example.com\n",
			wantHeaders: []string{"Name", "Email"},
			wantRows:    [][]string{{"Smith, Jane", "jane@example.com"}},
		},
		{
			name:        "escaped quote inside quoted cell",
			fileName:    "clients.csv",
			data:        "Name,Notes\nAlice,\"says \"\"hi\"\"\"\n",
			wantHeaders: []string{"Name", "Notes"},
			wantRows:    [][]string{{"Alice", `says "hi"`}},
		},
		{
			name:        "quote inside unquoted name",
			fileName:    "clients.csv",
			data:        "Name,Email\n\"Bob\" Smith,bob@x.com\nAlice,a@x.com\n",
			wantHeaders: []string{"Name", "Email"},
			wantRows:    [][]string{{"Bob Smith", "bob@x.com"}, {"Alice", "a@x.com"}},
		},
		{
			name:        "tab separated",
			fileName:    "export.TSV",
			data:        "Name\tPhone\nAlice\t555-1234\n",
			wantHeaders: []string{"Name", "Phone"},
			wantRows:    [][]string{{"Alice", "555-1234"}},
		},
		{
			name:        "cells and headers are trimmed",
			fileName:    "clients.txt",
			data:        "  Name ,  Email\n  Alice  , alice@example.com \n",
			wantHeaders: []string{"Name", "Email"},
			wantRows:    [][]string{{"Alice", "alice@example.com"}},
		},
		{
			name:        "blank rows dropped",
			fileName:    "clients.csv",
			data:        "Name,Email\n\n  ,  \nAlice,a@example.com\n,\n",
			wantHeaders: []string{"Name", "Email"},
			wantRows:    [][]string{{"Alice", "a@example.com"}},
		},
		{
			name:        "leading blank records skipped before header",
			fileName:    "clients.csv",
			data:        "\n,,\nName,Email\nAlice,a@example.com\n",
			wantHeaders: []string{"Name", "Email"},
			wantRows:    [][]string{{"Alice", "a@example.com"}},
		},
		{
			name:        "short rows padded",
			fileName:    "clients.csv",
			data:        "Name,Email,Phone\nAlice\n",
			wantHeaders: []string{"Name", "Email", "Phone"},
			wantRows:    [][]string{{"Alice", "", ""}},
		},
		{
			name:        "byte order mark stripped",
			fileName:    "clients.csv",
			data:        "\xEF\xBB\xBFName\nAlice\n",
			wantHeaders: []string{"Name"},
			wantRows:    [][]string{{"Alice"}},
		},
		{
			name:        "crlf line endings",
			fileName:    "clients.csv",
			data:        "Name,Email\r\nAlice,a@example.com\r\n",
			wantHeaders: []string{"Name", "Email"},
			wantRows:    [][]string{{"Alice", "a@example.com"}},
		},
		{
			name:        "excel formula wrapper unwrapped",
			fileName:    "clients.csv",
			data:        "Name,Phone\nAlice,=\"00123\"\n",
			wantHeaders: []string{"Name", "Phone"},
			wantRows:    [][]string{{"Alice", "00123"}},
		},
		{
			name:        "header only",
			fileName:    "clients.csv",
			data:        "Name,Email\n",
			wantHeaders: []string{"Name", "Email"},
			wantRows:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse([]byte(tt.data), tt.fileName)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeaders, table.Headers)
			assert.Equal(t, tt.wantRows, table.Rows)
			assert.Equal(t, len(tt.wantRows), table.TotalRows)
			assert.Empty(t, table.Malformed)
		})
	}
}

func TestParse_RowsMatchHeaderWidth(t *testing.T) {
	data := "A,B,C\n1\n1,2\n1,2,3\n1,2,3,\n"
	table, err := Parse([]byte(data), "f.csv")
	require.NoError(t, err)

	require.Equal(t, 4, table.TotalRows)
	for i, row := range table.Rows {
		assert.Len(t, row, len(table.Headers), "row %d", i+1)
	}
	// Trailing blank cell beyond the header is not an overflow.
	assert.Empty(t, table.Malformed)
}

func TestParse_OverflowReported(t *testing.T) {
	data := "Name,Email\nAlice,a@example.com,extra\nBob,b@example.com\n"
	table, err := Parse([]byte(data), "f.csv")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"Alice", "a@example.com"}, {"Bob", "b@example.com"}}, table.Rows)
	require.Len(t, table.Malformed, 1)
	assert.Equal(t, MalformedRow{Row: 1, Cells: 3, Expected: 2}, table.Malformed[0])
}

func TestParse_QuoteNeverSpansLines(t *testing.T) {
	data := "Name,Email\n\"Bob,bob@x.com\nAlice,a@x.com\nCarol,c@x.com\n"
	table, err := Parse([]byte(data), "f.csv")
	require.NoError(t, err)

	require.Equal(t, 3, table.TotalRows)
	assert.Equal(t, []string{"Bob,bob@x.com", ""}, table.Rows[0])
	assert.Equal(t, []string{"Alice", "a@x.com"}, table.Rows[1])
	assert.Equal(t, []string{"Carol", "c@x.com"}, table.Rows[2])

	require.Len(t, table.Malformed, 1)
	assert.Equal(t, MalformedRow{Row: 1, Cells: 1, Expected: 2, UnclosedQuote: true}, table.Malformed[0])
}

func TestParse_QuotedNewlineSplitsRecord(t *testing.T) {
	data := "Name,Notes\nAlice,\"line one\nline two\"\nBob,ok\n"
	table, err := Parse([]byte(data), "f.csv")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"Alice", "line one"}, {"line two", ""}, {"Bob", "ok"}}, table.Rows)
	require.Len(t, table.Malformed, 2)
	assert.True(t, table.Malformed[0].UnclosedQuote)
	assert.Equal(t, 2, table.Malformed[1].Row)
	assert.True(t, table.Malformed[1].UnclosedQuote)
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		delim        rune
		want         []string
		wantUnclosed bool
	}{
		{"plain", "a,b,c", ',', []string{"a", "b", "c"}, false},
		{"empty line", "", ',', []string{""}, false},
		{"trailing delimiter", "a,", ',', []string{"a", ""}, false},
		{"quoted delimiter", `"Smith, Jane",x`, ',', []string{"Smith, Jane", "x"}, false},
		{"doubled quote", `"a ""b"" c"`, ',', []string{`a "b" c`}, false},
		{"quote mid cell", `"Bob" Smith,bob@x.com`, ',', []string{"Bob Smith", "bob@x.com"}, false},
		{"unclosed quote", `"Bob,bob@x.com`, ',', []string{"Bob,bob@x.com"}, true},
		{"tab delimiter keeps commas", "a,b\tc", '\t', []string{"a,b", "c"}, false},
		{"spreadsheet text formula", `Alice,="00123"`, ',', []string{"Alice", "00123"}, false},
		{"padded formula", ` =" 555-0100 "`, ',', []string{"  555-0100 "}, false},
		{"empty formula", `=""`, ',', []string{""}, false},
		{"bare formula kept", "=SUM(A1)", ',', []string{"=SUM(A1)"}, false},
		{"equals mid cell kept", `a="b"`, ',', []string{"a=b"}, false},
		{"multibyte text", "Zoë,Ünal", ',', []string{"Zoë", "Ünal"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unclosed := splitLine(tt.line, tt.delim)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantUnclosed, unclosed)
		})
	}
}

func TestParse_InvalidUTF8Replaced(t *testing.T) {
	table, err := Parse([]byte("Name\nJos\xe9\n"), "f.csv")
	require.NoError(t, err)
	assert.Equal(t, "Jos\uFFFD", table.Rows[0][0])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     string
		wantErr  error
	}{
		{"spreadsheet extension", "clients.xlsx", "Name\nAlice\n", ErrUnsupportedFileType},
		{"json extension", "clients.json", `[{"name":"Alice"}]`, ErrUnsupportedFileType},
		{"zip renamed to csv", "clients.csv", "PK\x03\x04rest-of-archive", ErrBinaryContent},
		{"nul bytes", "clients.csv", "Name\x00\nAlice\n", ErrBinaryContent},
		{"empty", "clients.csv", "", ErrEmptyFile},
		{"whitespace only", "clients.csv", "  \n\t\n", ErrEmptyFile},
		{"only blank cells", "clients.csv", ",,\n , \n", ErrEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse([]byte(tt.data), tt.fileName)
			require.Error(t, err)
			assert.Nil(t, table)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.fileName, perr.FileName)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDelimiterFor(t *testing.T) {
	tests := []struct {
		fileName string
		want     rune
		wantErr  bool
	}{
		{"a.csv", ',', false},
		{"a.CSV", ',', false},
		{"a.txt", ',', false},
		{"a", ',', false},
		{"a.tsv", '\t', false},
		{"a.tab", '\t', false},
		{"a.xls", 0, true},
		{"a.numbers", 0, true},
		{"a.parquet", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			got, err := DelimiterFor(tt.fileName)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFileType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{FileName: "a.csv", Err: ErrEmptyFile}
	assert.Equal(t, "parse a.csv: empty file", err.Error())
	assert.ErrorIs(t, err, ErrEmptyFile)
}
