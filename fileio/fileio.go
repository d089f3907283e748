// Package fileio supplies byte streams for SeaFlow files, transparently
// decompressing gzip. Compression is detected from the file name alone,
// matching the fleet's convention of a trailing .gz suffix.
package fileio

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/ctberthiaume/seaflowpy/evt"
)

// Open returns a reader for the file at path, decompressing when the leaf
// name ends in .gz. Closing the returned reader closes the underlying file.
func Open(path string) (io.ReadCloser, error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, openErr
	}

	r, wrapErr := OpenReader(path, f)
	if wrapErr != nil {
		_ = f.Close()
		return nil, wrapErr
	}

	return r, nil
}

// OpenReader applies the same compression policy as Open to an already-open
// stream, e.g. an object store response body or an in-memory buffer. The
// path is used only to detect compression. If r is an io.Closer, closing the
// returned reader closes it as well.
func OpenReader(path string, r io.Reader) (io.ReadCloser, error) {
	if !isGzipPath(path) {
		return &streamReader{reader: r, closer: closerOf(r)}, nil
	}

	gz, gzErr := gzip.NewReader(r)
	if gzErr != nil {
		return nil, gzErr
	}

	return &streamReader{reader: gz, closer: gz, inner: closerOf(r)}, nil
}

// ReadEVT opens the EVT file at path and decodes its event matrix.
func ReadEVT(path string) (*evt.Matrix, error) {
	r, openErr := Open(path)
	if openErr != nil {
		return nil, openErr
	}
	defer func() { _ = r.Close() }()

	return evt.Decode(r)
}

func isGzipPath(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

func closerOf(r io.Reader) io.Closer {
	if c, ok := r.(io.Closer); ok {
		return c
	}

	return nil
}

// streamReader layers an optional gzip closer over the source stream so
// that one Close releases both.
type streamReader struct {
	reader io.Reader
	closer io.Closer
	inner  io.Closer
}

func (s *streamReader) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *streamReader) Close() error {
	var firstErr error

	if s.closer != nil {
		firstErr = s.closer.Close()
	}

	if s.inner != nil && s.inner != s.closer {
		if closeErr := s.inner.Close(); firstErr == nil {
			firstErr = closeErr
		}
	}

	return firstErr
}
