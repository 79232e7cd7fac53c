// Package source provides byte sources feeding the frame synchronizer.
package source

import (
	"errors"
	"io"
)

// ByteSource supplies one byte at a time and may block.
// It is a lazy, infinite and non-restartable sequence of bytes which ends
// only with an error (e.g. io.EOF or a closed port).
type ByteSource interface {
	io.ByteReader
}

// ErrReadOnly indicates the stream can't be written.
var ErrReadOnly = errors.New("read-only stream")

const defaultBufSize = 64

// Stream adapts a transport to ByteSource.
// Reads from the transport are buffered, and empty reads
// (e.g. a serial read timeout) are retried until data or an error arrives.
type Stream struct {
	name string
	r    io.Reader
	w    io.Writer
	c    io.Closer

	buf []byte
	pos int
	end int
	err error
}

// NewStream wraps r. Writes and Close are forwarded when r supports them.
func NewStream(name string, r io.Reader) *Stream {
	s := &Stream{name: name, r: r, buf: make([]byte, defaultBufSize)}
	if w, ok := r.(io.Writer); ok {
		s.w = w
	}
	if c, ok := r.(io.Closer); ok {
		s.c = c
	}
	return s
}

// Name returns the name of the stream, usually the source URL.
func (s *Stream) Name() string {
	return s.name
}

// ReadByte implements io.ByteReader.
func (s *Stream) ReadByte() (byte, error) {
	for s.pos >= s.end {
		if s.err != nil {
			return 0, s.err
		}
		n, err := s.r.Read(s.buf)
		s.pos, s.end, s.err = 0, n, err
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

// Write implements io.Writer, used to send commands to the radio module.
func (s *Stream) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, ErrReadOnly
	}
	return s.w.Write(p)
}

// Close implements io.Closer.
func (s *Stream) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}
