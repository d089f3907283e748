package evt

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildEVT assembles an EVT byte stream: a little-endian uint32 row count
// header followed by the given uint16 cells in wire order.
func buildEVT(rowCount uint32, cells []uint16) []byte {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, rowCount)
	_ = binary.Write(buf, binary.LittleEndian, cells)

	return buf.Bytes()
}

// wireRow builds one row of wire cells: two framing values followed by the
// ten channel measurements.
func wireRow(measurements ...uint16) []uint16 {
	row := []uint16{10, 0}
	return append(row, measurements...)
}

func Test_Decode_SingleRow(t *testing.T) {
	cells := wireRow(1, 2, 3, 4, 5, 6, 7, 8, 9, 65535)
	data := buildEVT(1, cells)

	matrix, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 1, matrix.RowCount())
	assert.Equal(t, len(Columns), matrix.ColumnCount())

	expected := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 65535}
	assert.Equal(t, expected, matrix.Values[0])
}

func Test_Decode_MultipleRows(t *testing.T) {
	var cells []uint16
	cells = append(cells, wireRow(1, 1, 1, 1, 1, 1, 1, 1, 1, 1)...)
	cells = append(cells, wireRow(2, 2, 2, 2, 2, 2, 2, 2, 2, 2)...)
	cells = append(cells, wireRow(3, 3, 3, 3, 3, 3, 3, 3, 3, 3)...)
	data := buildEVT(3, cells)

	matrix, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	require.Equal(t, 3, matrix.RowCount())
	for row := 0; row < 3; row++ {
		for _, v := range matrix.Values[row] {
			assert.Equal(t, float64(row+1), v)
		}
	}
}

func Test_Decode_StripsFramingValues(t *testing.T) {
	// The two leading wire cells never appear in the output no matter
	// what they contain.
	cells := append([]uint16{12345, 54321}, make([]uint16, len(Columns))...)
	data := buildEVT(1, cells)

	matrix, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, make([]float64, len(Columns)), matrix.Values[0])
}

func Test_Decode_EmptyStream(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func Test_Decode_TruncatedHeader(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{0x01, 0x00, 0x00}))
	assert.ErrorIs(t, err, ErrTruncatedHeader)
}

func Test_Decode_ZeroRowCount(t *testing.T) {
	_, err := Decode(bytes.NewReader(buildEVT(0, nil)))
	assert.ErrorIs(t, err, ErrNoData)
}

func Test_Decode_ShortPayload(t *testing.T) {
	// One declared row needs 24 payload bytes; supply only 6.
	data := buildEVT(1, []uint16{1, 2, 3})

	_, err := Decode(bytes.NewReader(data))

	var byteCountErr ByteCountError
	require.ErrorAs(t, err, &byteCountErr)
	assert.Equal(t, int64(24), byteCountErr.Expected)
	assert.Equal(t, int64(6), byteCountErr.Found)
}

func Test_Decode_TrailingBytes(t *testing.T) {
	cells := wireRow(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	data := append(buildEVT(1, cells), 0xAA, 0xBB)

	_, err := Decode(bytes.NewReader(data))

	var byteCountErr ByteCountError
	require.ErrorAs(t, err, &byteCountErr)
	assert.Equal(t, int64(24), byteCountErr.Expected)
	assert.Equal(t, int64(26), byteCountErr.Found)
}

func Test_Decode_RowCountLiesAboutPayload(t *testing.T) {
	// Header declares two rows but the stream carries one. The error
	// reports exact byte counts, not a guess at row counts.
	cells := wireRow(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	data := buildEVT(2, cells)

	_, err := Decode(bytes.NewReader(data))

	var byteCountErr ByteCountError
	require.ErrorAs(t, err, &byteCountErr)
	assert.Equal(t, int64(48), byteCountErr.Expected)
	assert.Equal(t, int64(24), byteCountErr.Found)
}

func Test_Decode_Deterministic(t *testing.T) {
	cells := wireRow(9, 8, 7, 6, 5, 4, 3, 2, 1, 0)
	data := buildEVT(1, cells)

	first, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	second, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, first.Values, second.Values)
}
