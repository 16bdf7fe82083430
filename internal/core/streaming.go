package core

// streaming.go provides reader wrappers applied to every feed before parsing.
//
//   - SanitizeReader: strips a leading byte order mark and replaces invalid
//     UTF-8 with U+FFFD, so spreadsheet exports from Windows parse cleanly
//   - LimitedReader: counts bytes and fails once a size limit is exceeded

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SanitizeReader wraps r so that the CSV tokenizer always sees valid UTF-8.
// A UTF-16 BOM switches decoding to UTF-16.
func SanitizeReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// LimitedReader tracks bytes read and returns ErrFeedTooLarge once more
// than Max bytes have been read. Max <= 0 disables the limit.
type LimitedReader struct {
	reader    io.Reader
	Max       int64
	BytesRead int64
}

// NewLimitedReader creates a limited reader.
func NewLimitedReader(r io.Reader, max int64) *LimitedReader {
	return &LimitedReader{reader: r, Max: max}
}

// Read implements io.Reader.
func (r *LimitedReader) Read(p []byte) (int, error) {
	if r.Max > 0 && r.BytesRead > r.Max {
		return 0, ErrFeedTooLarge
	}
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Max > 0 && r.BytesRead > r.Max {
		return n, ErrFeedTooLarge
	}
	return n, err
}
