package frame

import (
	"encoding/binary"
	"math"
)

// Size is the fixed size of a frame, including tag and checksum.
const Size = 15

// Tag bytes.
const (
	TagHigh byte = '!'
	TagLow  byte = 'G'
)

// Field offsets.
const (
	OffsetX        = 2
	OffsetY        = 6
	OffsetZ        = 10
	OffsetChecksum = Size - 1
)

// Frame is a complete frame as received from the wire.
type Frame [Size]byte

// Reading is the decoded content of a valid frame.
type Reading struct {
	X float32
	Y float32
	Z float32
}

// Checksum calculates the checksum over the bytes preceding the checksum byte.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum
}

// Checksum returns the checksum calculated from the content of the frame.
// It doesn't read the checksum byte itself.
func (f Frame) Checksum() byte {
	return Checksum(f[:OffsetChecksum])
}

// Bytes returns a copy of the frame as a slice.
func (f Frame) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, f[:])
	return b
}

// Encode builds a frame with a valid tag and checksum.
func Encode(r Reading) (f Frame) {
	f[0], f[1] = TagHigh, TagLow
	binary.LittleEndian.PutUint32(f[OffsetX:], math.Float32bits(r.X))
	binary.LittleEndian.PutUint32(f[OffsetY:], math.Float32bits(r.Y))
	binary.LittleEndian.PutUint32(f[OffsetZ:], math.Float32bits(r.Z))
	f[OffsetChecksum] = f.Checksum()
	return
}

// Decode extracts the reading. It doesn't validate the frame, any bit
// pattern is a legal float32 and NaN/Inf are passed through.
func Decode(f Frame) Reading {
	return Reading{
		X: float32At(f, OffsetX),
		Y: float32At(f, OffsetY),
		Z: float32At(f, OffsetZ),
	}
}

// Validate checks the tag and the checksum.
// A nil error means the frame is accepted.
func Validate(f Frame) error {
	if f[0] != TagHigh || f[1] != TagLow {
		return &RejectError{Frame: f, Err: ErrBadTag}
	}
	if f.Checksum() != f[OffsetChecksum] {
		return &RejectError{Frame: f, Err: ErrBadChecksum}
	}
	return nil
}

func float32At(f Frame, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(f[off : off+4]))
}
