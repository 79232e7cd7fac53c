package frame

import "io"

// SyncState is the progress of the synchronizer.
type SyncState int

const (
	// AwaitingTagHigh means the synchronizer is hunting for '!'.
	AwaitingTagHigh SyncState = iota
	// AwaitingTagLow means '!' was seen and 'G' is expected next.
	AwaitingTagLow
	// CollectingBody means the tag matched and body bytes are being collected.
	CollectingBody
)

// String implements fmt.Stringer.
func (s SyncState) String() string {
	switch s {
	case AwaitingTagHigh:
		return "AwaitingTagHigh"
	case AwaitingTagLow:
		return "AwaitingTagLow"
	case CollectingBody:
		return "CollectingBody"
	}
	return "Unknown"
}

// Synchronizer assembles frames from a byte stream.
// The zero value is ready to use.
type Synchronizer struct {
	state     SyncState
	count     int
	buf       Frame
	discarded uint64
}

// State gets the current state and the number of bytes collected so far.
func (s *Synchronizer) State() (SyncState, int) {
	return s.state, s.count
}

// Discarded returns the total number of bytes dropped while hunting for a tag.
func (s *Synchronizer) Discarded() uint64 {
	return s.discarded
}

// Reset drops any partial frame.
func (s *Synchronizer) Reset() {
	s.discarded += uint64(s.count)
	s.state, s.count = AwaitingTagHigh, 0
}

// Feed consumes one byte. It returns the frame and true when the byte
// completes a frame.
func (s *Synchronizer) Feed(b byte) (Frame, bool) {
	switch s.state {
	case AwaitingTagLow:
		if b == TagLow {
			s.buf[1] = b
			s.state, s.count = CollectingBody, 2
			return Frame{}, false
		}
		// '!' is dropped, but b may start a new frame.
		s.Reset()
		return s.Feed(b)
	case CollectingBody:
		s.buf[s.count] = b
		if s.count++; s.count < Size {
			return Frame{}, false
		}
		s.state, s.count = AwaitingTagHigh, 0
		return s.buf, true
	default:
		if b == TagHigh {
			s.buf[0] = b
			s.state, s.count = AwaitingTagLow, 1
		} else {
			s.discarded++
		}
	}
	return Frame{}, false
}

// Next pulls bytes from r until a frame is complete.
// Partial progress is kept when r returns an error.
func (s *Synchronizer) Next(r io.ByteReader) (Frame, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return Frame{}, err
		}
		if f, ok := s.Feed(b); ok {
			return f, nil
		}
	}
}
