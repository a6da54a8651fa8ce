// Package record implements the on-disk record codec (spec §4.2): a fixed
// L-byte zero-padded label followed by 4·D little-endian float32 bytes, with
// no header, footer, or magic bytes.
package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrLabelTooLong is returned when a label's byte length exceeds L.
var ErrLabelTooLong = errors.New("record: label too long")

// ErrDimensionMismatch is returned when a vector's length is not exactly D.
var ErrDimensionMismatch = errors.New("record: dimension mismatch")

// ErrNonFinite is returned when a vector entry is NaN or ±Inf.
var ErrNonFinite = errors.New("record: non-finite vector entry")

// Layout describes the fixed geometry of every record in one store file.
type Layout struct {
	LabelSize  int // L
	Dimensions int // D
}

// Size returns the fixed on-disk size of one record: L + 4·D bytes.
func (l Layout) Size() int {
	return l.LabelSize + 4*l.Dimensions
}

// Record is one decoded vector entry.
type Record struct {
	Label  string
	Vector []float32
}

// Encode writes r into a Layout.Size()-byte buffer. Returns
// ErrLabelTooLong, ErrDimensionMismatch, or ErrNonFinite without writing a
// partial record.
func Encode(l Layout, r Record) ([]byte, error) {
	if len(r.Label) > l.LabelSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrLabelTooLong, len(r.Label), l.LabelSize)
	}
	if len(r.Vector) != l.Dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, l.Dimensions, len(r.Vector))
	}
	for i, f := range r.Vector {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil, fmt.Errorf("%w: at index %d", ErrNonFinite, i)
		}
	}

	buf := make([]byte, l.Size())
	copy(buf, r.Label)
	// Bytes beyond the label are already zero from make(); this satisfies
	// the zero-padding invariant.

	off := l.LabelSize
	for _, f := range r.Vector {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
		off += 4
	}
	return buf, nil
}

// Decode is the inverse of Encode. Non-finite entries in stored bytes are
// not sanitized — data at rest is trusted per spec §4.2 — but a buffer of
// the wrong length is rejected.
func Decode(l Layout, buf []byte) (Record, error) {
	if len(buf) != l.Size() {
		return Record{}, fmt.Errorf("%w: buffer is %d bytes, want %d", ErrDimensionMismatch, len(buf), l.Size())
	}

	labelBytes := buf[:l.LabelSize]
	end := len(labelBytes)
	for end > 0 && labelBytes[end-1] == 0 {
		end--
	}
	label := string(labelBytes[:end])

	vec := make([]float32, l.Dimensions)
	off := l.LabelSize
	for i := range vec {
		bits := binary.LittleEndian.Uint32(buf[off:])
		vec[i] = math.Float32frombits(bits)
		off += 4
	}

	return Record{Label: label, Vector: vec}, nil
}
