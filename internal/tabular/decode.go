package tabular

import (
	"bytes"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Signatures of container formats that are commonly renamed to .csv by users.
var binarySignatures = [][]byte{
	{'P', 'K', 0x03, 0x04},                           // zip (xlsx, numbers)
	{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, // OLE2 (xls)
	{0x1F, 0x8B},                                     // gzip
	{'%', 'P', 'D', 'F'},                             // pdf
}

// stripBOM removes a leading UTF-8 byte order mark, which Excel on Windows
// writes by default.
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// isBinary reports whether data looks like a binary file rather than text.
func isBinary(data []byte) bool {
	for _, sig := range binarySignatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}

	// Only sniff the head; a NUL anywhere in the first block is enough.
	head := data
	if len(head) > 8192 {
		head = head[:8192]
	}
	return bytes.IndexByte(head, 0) >= 0
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with U+FFFD so that exports
// saved in a legacy code page still parse.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
			data = data[1:]
		} else {
			buf.Write(data[:size])
			data = data[size:]
		}
	}

	return buf.Bytes()
}
