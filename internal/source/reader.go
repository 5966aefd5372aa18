package source

// reader.go prepares text sources for parsing without loading the whole file
// into memory:
//
//   - a UTF-8 BOM (0xEF 0xBB 0xBF) written by Windows programs is removed
//   - UTF-16 files with a BOM, as saved by Excel's "Unicode Text", are decoded
//   - invalid UTF-8 sequences become U+FFFD instead of failing the parse

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// newTextReader wraps r so it yields clean UTF-8 with any BOM stripped.
func newTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// countingReader tracks bytes read for load logging.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
