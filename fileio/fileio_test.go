package fileio

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctberthiaume/seaflowpy/evt"
)

// oneRowEVT builds a minimal valid EVT stream with a single particle row.
func oneRowEVT(t *testing.T) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(1)))

	cells := make([]uint16, len(evt.Columns)+2)
	for i := range cells {
		cells[i] = uint16(i)
	}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, cells))

	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	gz := gzip.NewWriter(buf)
	_, err := gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path
}

func Test_Open_PlainFile(t *testing.T) {
	data := []byte("plain bytes")
	path := writeFile(t, "42.evt", data)

	r, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	read, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, read)
}

func Test_Open_GzipFile(t *testing.T) {
	data := []byte("compressed bytes")
	path := writeFile(t, "42.evt.gz", gzipBytes(t, data))

	r, err := Open(path)
	require.NoError(t, err)

	read, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, read)

	assert.NoError(t, r.Close())
}

func Test_Open_GzipSuffixWithoutGzipContent(t *testing.T) {
	path := writeFile(t, "42.evt.gz", []byte("not gzip"))

	_, err := Open(path)
	assert.Error(t, err)
}

func Test_Open_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.evt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func Test_OpenReader_DetectsCompressionFromPathOnly(t *testing.T) {
	data := []byte("stream bytes")

	r, err := OpenReader("2018_082/2018-03-23T00-00-00+00-00.gz", bytes.NewReader(gzipBytes(t, data)))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	read, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, read)
}

func Test_OpenReader_PlainStream(t *testing.T) {
	data := []byte("stream bytes")

	r, err := OpenReader("42.evt", bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	read, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, read)
}

func Test_ReadEVT_Plain(t *testing.T) {
	path := writeFile(t, "1.evt", oneRowEVT(t))

	matrix, err := ReadEVT(path)
	require.NoError(t, err)

	assert.Equal(t, 1, matrix.RowCount())
}

func Test_ReadEVT_Gzip(t *testing.T) {
	path := writeFile(t, "1.evt.gz", gzipBytes(t, oneRowEVT(t)))

	matrix, err := ReadEVT(path)
	require.NoError(t, err)

	assert.Equal(t, 1, matrix.RowCount())
}

func Test_ReadEVT_PropagatesDecodeErrors(t *testing.T) {
	path := writeFile(t, "1.evt", nil)

	_, err := ReadEVT(path)
	assert.ErrorIs(t, err, evt.ErrEmptyFile)
}
