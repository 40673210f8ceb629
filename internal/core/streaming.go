package core

// streaming.go prepares raw CSV bytes for the csv reader.
//
// Spreadsheet tools save CSV in a few encodings. decodeText handles them in
// one pass without buffering the whole input again:
//   - A UTF-8 BOM is dropped
//   - A UTF-16 (LE or BE) BOM switches to transcoding from UTF-16
//   - Remaining invalid UTF-8 bytes are replaced with '?'

import (
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeText wraps r so that it yields valid UTF-8 without a BOM.
func decodeText(r io.Reader) io.Reader {
	bom := transform.NewReader(r, unicode.BOMOverride(transform.Nop))
	return newUTF8Sanitizer(bom)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?'. The replacement is a
// single byte so the data never grows and can be rewritten in place.
type utf8Sanitizer struct {
	reader io.Reader

	// bytes of a multi-byte sequence split across reads
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	if isASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place and returns how many bytes are ready.
// Unless atEOF, a trailing partial sequence is held back for the next read.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	if utf8.Valid(data) {
		return len(data)
	}

	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])

		if !atEOF && r == utf8.RuneError && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}
