package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/gyrodrive/pkg/ble/frame"
	"github.com/robotalks/gyrodrive/pkg/ble/source"
	"github.com/robotalks/gyrodrive/pkg/motion"
)

var capturedFrame = frame.Frame{
	0x21, 0x47, 0x96, 0xE9, 0x71, 0x3D, 0x93, 0xA8,
	0x18, 0x3D, 0xC7, 0xA8, 0x08, 0x3B, 0x28,
}

type actuation struct {
	cmds    motion.Commands
	reading frame.Reading
}

type recordingActuator struct {
	calls []actuation
	err   error
}

func (a *recordingActuator) Actuate(_ context.Context, cmds motion.Commands, r frame.Reading) error {
	a.calls = append(a.calls, actuation{cmds, r})
	return a.err
}

type event struct {
	kind string
	data interface{}
}

type recordingObserver struct {
	events []event
}

func (o *recordingObserver) FrameAccepted(out Outcome) {
	o.events = append(o.events, event{"accepted", out.Commands})
}

func (o *recordingObserver) FrameRejected(err *frame.RejectError) {
	o.events = append(o.events, event{"rejected", err.Err})
}

func (o *recordingObserver) ActuateFailed(out Outcome) {
	o.events = append(o.events, event{"failed", out.Err})
}

func (o *recordingObserver) BytesDiscarded(n uint64) {
	o.events = append(o.events, event{"discarded", n})
}

type stream struct {
	data []byte
}

func (s *stream) bytes(b ...byte) *stream {
	s.data = append(s.data, b...)
	return s
}

func (s *stream) frame(f frame.Frame) *stream {
	return s.bytes(f[:]...)
}

func (s *stream) reading(x, y float32) *stream {
	return s.frame(frame.Encode(frame.Reading{X: x, Y: y}))
}

func (s *stream) reader() *bytes.Reader {
	return bytes.NewReader(s.data)
}

func TestReceiverGarbageBeforeFrame(t *testing.T) {
	act, ob := &recordingActuator{}, &recordingObserver{}
	r := NewReceiver((&stream{}).bytes(0xFF, 0xFF).frame(capturedFrame).reader(), act)
	r.Observer = ob

	out, err := r.Step(context.Background())
	require.NoError(t, err)
	require.True(t, out.Accepted())
	require.NoError(t, out.Err)
	require.Equal(t, capturedFrame, out.Frame)
	require.Equal(t, motion.Of(motion.Stop), out.Commands)
	require.InDelta(t, 0.05906, out.Reading.X, 1e-5)
	require.Equal(t, []actuation{{motion.Of(motion.Stop), out.Reading}}, act.calls)
	require.Equal(t, []event{
		{"discarded", uint64(2)},
		{"accepted", motion.Of(motion.Stop)},
	}, ob.events)
	require.Equal(t, Stats{Accepted: 1, Discarded: 2}, r.Stats())

	_, err = r.Step(context.Background())
	require.Equal(t, io.EOF, err)
}

func TestReceiverBadChecksumResumes(t *testing.T) {
	corrupted := capturedFrame
	corrupted[frame.OffsetChecksum]++
	act, ob := &recordingActuator{}, &recordingObserver{}
	r := NewReceiver((&stream{}).frame(corrupted).reading(0, 0.5).reader(), act)
	r.Observer = ob

	out, err := r.Step(context.Background())
	require.NoError(t, err)
	require.False(t, out.Accepted())
	require.True(t, errors.Is(out.Err, frame.ErrBadChecksum))
	require.Empty(t, act.calls)

	out, err = r.Step(context.Background())
	require.NoError(t, err)
	require.True(t, out.Accepted())
	require.Equal(t, motion.Of(motion.Forward), out.Commands)
	require.Equal(t, []event{
		{"rejected", frame.ErrBadChecksum},
		{"accepted", motion.Of(motion.Forward)},
	}, ob.events)
	require.Equal(t, Stats{Accepted: 1, BadChecksum: 1}, r.Stats())
}

func TestReceiverProcessBadTag(t *testing.T) {
	f := frame.Encode(frame.Reading{})
	f[1] = 'A'
	f[frame.OffsetChecksum] = frame.Checksum(f[:frame.OffsetChecksum])
	act := &recordingActuator{}
	r := NewReceiver(nil, act)
	out := r.Process(context.Background(), f)
	require.False(t, out.Accepted())
	require.True(t, errors.Is(out.Err, frame.ErrBadTag))
	require.Empty(t, act.calls)
	require.Equal(t, Stats{BadTag: 1}, r.Stats())
}

func TestReceiverRunToEOF(t *testing.T) {
	s := (&stream{}).
		reading(0, 0.5).
		bytes('!', 'x').
		reading(0.5, 0).
		reading(-0.3, -0.3).
		reading(0.1, 0.1)
	act := &recordingActuator{}
	r := NewReceiver(s.reader(), act)
	require.NoError(t, r.Run(context.Background()))

	var got []motion.Commands
	for _, c := range act.calls {
		got = append(got, c.cmds)
	}
	require.Equal(t, []motion.Commands{
		motion.Of(motion.Forward),
		motion.Of(motion.Right),
		motion.Of(motion.Backward, motion.Left),
		motion.Of(motion.Stop),
	}, got)
	require.Equal(t, Stats{Accepted: 4, Discarded: 2}, r.Stats())
}

func TestReceiverActuatorErrorContinues(t *testing.T) {
	boom := errors.New("boom")
	act, ob := &recordingActuator{err: boom}, &recordingObserver{}
	r := NewReceiver((&stream{}).reading(0.5, 0).reading(-0.5, 0).reader(), act)
	r.Observer = ob
	require.NoError(t, r.Run(context.Background()))
	require.Len(t, act.calls, 2)
	require.Equal(t, Stats{Accepted: 2, ActuatorErrors: 2}, r.Stats())
	require.Equal(t, event{"failed", boom}, ob.events[1])
}

func TestReceiverDeadband(t *testing.T) {
	conf := NewConfig()
	conf.Deadband = 0.6
	act := &recordingActuator{}
	r := conf.NewReceiver((&stream{}).reading(0.5, -0.5).reading(0.7, 0).reader(), act)
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, motion.Of(motion.Stop), act.calls[0].cmds)
	require.Equal(t, motion.Of(motion.Right), act.calls[1].cmds)
}

func TestReceiverRunClosesSourceOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	act := &recordingActuator{}
	r := NewReceiver(source.NewStream("pipe", pr), act)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	f := frame.Encode(frame.Reading{Y: -1})
	_, err := pw.Write(f[:])
	require.NoError(t, err)
	require.Eventually(t, func() bool { return r.Stats().Accepted == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("receiver not stopped")
	}
	_, err = pw.Write([]byte{0})
	require.Equal(t, io.ErrClosedPipe, err)
}

func TestReceiverRunSourceError(t *testing.T) {
	broken := errors.New("port gone")
	r := NewReceiver(source.NewStream("broken", io.MultiReader(
		bytes.NewReader([]byte{0x01}),
		failingReader{err: broken},
	)), &recordingActuator{})
	require.Equal(t, broken, r.Run(context.Background()))
	require.Equal(t, uint64(1), r.Stats().Discarded)
}

type failingReader struct {
	err error
}

func (r failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestReceiverPendingAfterEOF(t *testing.T) {
	r := NewReceiver((&stream{}).reading(0, 0).bytes('!', 'G', 0x01, 0x02).reader(), nil)
	state, n := r.Pending()
	require.Equal(t, frame.AwaitingTagHigh, state)
	require.Zero(t, n)
	require.NoError(t, r.Run(context.Background()))
	state, n = r.Pending()
	require.Equal(t, frame.CollectingBody, state)
	require.Equal(t, 4, n)
}

func TestReceiverPendingWhileRunning(t *testing.T) {
	pr, pw := io.Pipe()
	r := NewReceiver(source.NewStream("pipe", pr), nil)
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(context.Background()) }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			f := frame.Encode(frame.Reading{X: float32(i)})
			pw.Write(f[:])
		}
		pw.Write([]byte{'!'})
		pw.Close()
	}()
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
			r.Pending()
		}
	}
	require.NoError(t, <-errCh)
	state, n := r.Pending()
	require.Equal(t, frame.AwaitingTagLow, state)
	require.Equal(t, 1, n)
	require.Equal(t, uint64(3), r.Stats().Accepted)
}

func TestReceiverName(t *testing.T) {
	require.Equal(t, "receiver", NewReceiver(bytes.NewReader(nil), nil).Name())
	require.Equal(t, "receiver:pipe", NewReceiver(source.NewStream("pipe", bytes.NewReader(nil)), nil).Name())
}
