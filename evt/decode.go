package evt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrEmptyFile = errors.New("file is empty")
var ErrTruncatedHeader = errors.New("file has invalid particle count header")
var ErrNoData = errors.New("file has no particle data")
var ErrTruncatedPayload = errors.New("file could not be read")

// ByteCountError reports a disagreement between the payload size declared by
// the row count header and the bytes actually present in the file.
type ByteCountError struct {
	Expected int64
	Found    int64
}

func (e ByteCountError) Error() string {
	return fmt.Sprintf("file has incorrect number of data bytes, expected %d, found %d", e.Expected, e.Found)
}

// Matrix holds the decoded particle measurements of one EVT file,
// one row per particle and one column per measurement channel in Columns.
// It is only constructed on a fully successful decode and never modified
// afterwards.
type Matrix struct {
	Values [][]float64
}

// RowCount returns the number of particle rows.
func (m *Matrix) RowCount() int {
	return len(m.Values)
}

// ColumnCount returns the number of measurement channels per row.
func (m *Matrix) ColumnCount() int {
	return len(Columns)
}

const drainChunkSize = 8192

// Decode reads one EVT byte stream and returns its measurement matrix.
//
// The header-declared row count is the sole basis for sizing the read; size
// is never inferred from stream length because known-corrupt files carry
// wrong trailing padding. The stream is read to exhaustion and the decode
// fails with a ByteCountError unless the payload byte count matches the
// header exactly, with no trailing data.
//
// Measurement values keep the uint16 domain [0, 65535] reinterpreted as
// float64; no scaling or transform is applied at this layer.
func Decode(r io.Reader) (*Matrix, error) {
	rowCount, headerErr := readHeader(r)
	if headerErr != nil {
		return nil, headerErr
	}

	if rowCount == 0 {
		return nil, ErrNoData
	}

	wireColumns := len(Columns) + framingColumns
	expectedBytes := int64(rowCount) * int64(wireColumns) * 2

	payload, payloadErr := readPayload(r, expectedBytes)
	if payloadErr != nil {
		return nil, payloadErr
	}

	extraBytes, drainErr := drain(r)
	if drainErr != nil {
		return nil, drainErr
	}

	foundBytes := int64(len(payload)) + extraBytes
	if foundBytes != expectedBytes {
		return nil, ByteCountError{Expected: expectedBytes, Found: foundBytes}
	}

	return decodeRows(payload, int(rowCount), wireColumns), nil
}

// readHeader reads the leading uint32 particle count.
func readHeader(r io.Reader) (uint32, error) {
	header := make([]byte, 4)

	n, readErr := io.ReadFull(r, header)
	if readErr != nil {
		if n == 0 {
			return 0, ErrEmptyFile
		}

		if errors.Is(readErr, io.ErrUnexpectedEOF) {
			return 0, ErrTruncatedHeader
		}

		return 0, errors.Join(ErrTruncatedHeader, readErr)
	}

	return binary.LittleEndian.Uint32(header), nil
}

// readPayload reads up to expectedBytes of row data. A short read is not an
// error here; the byte count check after draining the stream reports it
// with exact numbers.
func readPayload(r io.Reader, expectedBytes int64) ([]byte, error) {
	payload := make([]byte, expectedBytes)

	n, readErr := io.ReadFull(r, payload)
	if readErr != nil && !errors.Is(readErr, io.EOF) && !errors.Is(readErr, io.ErrUnexpectedEOF) {
		return nil, errors.Join(ErrTruncatedPayload, readErr)
	}

	return payload[:n], nil
}

// drain reads the stream to exhaustion and counts any bytes found beyond
// the declared payload. A valid file has none.
func drain(r io.Reader) (int64, error) {
	chunk := make([]byte, drainChunkSize)
	extraBytes := int64(0)

	for {
		n, readErr := r.Read(chunk)
		extraBytes += int64(n)

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return extraBytes, nil
			}

			return 0, errors.Join(ErrTruncatedPayload, readErr)
		}

		if n == 0 {
			return extraBytes, nil
		}
	}
}

// decodeRows reinterprets the payload as little-endian uint16s in row-major
// order, strips the leading framing values from every row, and converts the
// remaining cells to float64.
func decodeRows(payload []byte, rowCount int, wireColumns int) *Matrix {
	values := make([][]float64, rowCount)

	for row := 0; row < rowCount; row++ {
		rowStart := row * wireColumns * 2
		cells := make([]float64, len(Columns))

		for col := 0; col < len(Columns); col++ {
			offset := rowStart + (framingColumns+col)*2
			cells[col] = float64(binary.LittleEndian.Uint16(payload[offset : offset+2]))
		}

		values[row] = cells
	}

	return &Matrix{Values: values}
}
