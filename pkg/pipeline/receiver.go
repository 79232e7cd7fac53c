// Package pipeline runs the frame receiver: it pulls bytes from a source,
// assembles and validates frames, classifies readings and drives actuators.
package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/robotalks/gyrodrive/internal/syncutil"
	"github.com/robotalks/gyrodrive/pkg/actuator"
	"github.com/robotalks/gyrodrive/pkg/ble/frame"
	"github.com/robotalks/gyrodrive/pkg/ble/source"
	fx "github.com/robotalks/gyrodrive/pkg/framework"
	"github.com/robotalks/gyrodrive/pkg/motion"
)

// Outcome is the result of processing one assembled frame.
type Outcome struct {
	Frame    frame.Frame
	Reading  frame.Reading
	Commands motion.Commands
	// Err is a *frame.RejectError when the frame is rejected, or the
	// actuator error otherwise.
	Err error
}

// Accepted indicates the frame passed validation.
func (o *Outcome) Accepted() bool {
	var rejected *frame.RejectError
	return !errors.As(o.Err, &rejected)
}

// Stats are the counters of a Receiver.
type Stats struct {
	Accepted       uint64
	BadTag         uint64
	BadChecksum    uint64
	Discarded      uint64
	ActuatorErrors uint64
}

// Receiver is the single pull loop turning bytes into actuator commands.
type Receiver struct {
	Source     source.ByteSource
	Classifier *motion.Classifier
	Actuator   actuator.Actuator
	// Observer is optional.
	Observer Observer

	sync      frame.Synchronizer
	reported  uint64
	statsLock    syncutil.Mutex
	stats        Stats
	pendingState frame.SyncState
	pendingCount int
}

// NewReceiver creates a Receiver with the default classifier.
func NewReceiver(src source.ByteSource, act actuator.Actuator) *Receiver {
	return &Receiver{
		Source:     src,
		Classifier: motion.NewClassifier(),
		Actuator:   act,
	}
}

// Name implements framework.Named.
func (r *Receiver) Name() string {
	if named, ok := r.Source.(fx.Named); ok {
		return "receiver:" + named.Name()
	}
	return "receiver"
}

// Stats returns a snapshot of counters.
func (r *Receiver) Stats() Stats {
	r.statsLock.Lock()
	defer r.statsLock.Unlock()
	return r.stats
}

// Pending returns the state of the partially assembled frame as of the
// last Step. It is safe to call while Run is in progress.
func (r *Receiver) Pending() (frame.SyncState, int) {
	r.statsLock.Lock()
	defer r.statsLock.Unlock()
	return r.pendingState, r.pendingCount
}

// Step blocks until the next frame is assembled and processes it.
// The returned error is from the byte source only.
func (r *Receiver) Step(ctx context.Context) (Outcome, error) {
	f, err := r.sync.Next(r.Source)
	state, count := r.sync.State()
	r.count(func(*Stats) { r.pendingState, r.pendingCount = state, count })
	r.reportDiscarded()
	if err != nil {
		return Outcome{}, err
	}
	return r.Process(ctx, f), nil
}

// Process validates, classifies and actuates an assembled frame.
func (r *Receiver) Process(ctx context.Context, f frame.Frame) Outcome {
	out := Outcome{Frame: f}
	if err := frame.Validate(f); err != nil {
		out.Err = err
		var rejected *frame.RejectError
		errors.As(err, &rejected)
		r.count(func(s *Stats) {
			if errors.Is(err, frame.ErrBadTag) {
				s.BadTag++
			} else {
				s.BadChecksum++
			}
		})
		if r.Observer != nil {
			r.Observer.FrameRejected(rejected)
		}
		return out
	}
	out.Reading = frame.Decode(f)
	out.Commands = r.classifier().ClassifyReading(out.Reading)
	r.count(func(s *Stats) { s.Accepted++ })
	if r.Observer != nil {
		r.Observer.FrameAccepted(out)
	}
	if r.Actuator != nil {
		if out.Err = r.Actuator.Actuate(ctx, out.Commands, out.Reading); out.Err != nil {
			r.count(func(s *Stats) { s.ActuatorErrors++ })
			if r.Observer != nil {
				r.Observer.ActuateFailed(out)
			}
		}
	}
	return out
}

// Run processes frames until the source fails or ctx is done.
// A source implementing io.Closer is closed when Run returns.
func (r *Receiver) Run(ctx context.Context) error {
	loop := func() error {
		for {
			if _, err := r.Step(ctx); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		}
	}
	if closer, ok := r.Source.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, loop)
	}
	return fx.RunWithContext(ctx, loop)
}

func (r *Receiver) classifier() *motion.Classifier {
	if r.Classifier == nil {
		r.Classifier = motion.NewClassifier()
	}
	return r.Classifier
}

func (r *Receiver) reportDiscarded() {
	discarded := r.sync.Discarded()
	n := discarded - r.reported
	if n == 0 {
		return
	}
	r.reported = discarded
	r.count(func(s *Stats) { s.Discarded += n })
	if r.Observer != nil {
		r.Observer.BytesDiscarded(n)
	}
}

func (r *Receiver) count(fn func(*Stats)) {
	r.statsLock.Lock()
	fn(&r.stats)
	r.statsLock.Unlock()
}
