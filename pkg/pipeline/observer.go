package pipeline

import (
	"github.com/golang/glog"

	"github.com/robotalks/gyrodrive/pkg/ble/frame"
)

// Observer receives the events of a Receiver.
// The methods are called from the receive loop and must not block.
type Observer interface {
	FrameAccepted(Outcome)
	FrameRejected(*frame.RejectError)
	ActuateFailed(Outcome)
	// BytesDiscarded reports bytes dropped while hunting for a frame tag.
	BytesDiscarded(n uint64)
}

// Observers dispatches events to multiple Observers.
type Observers []Observer

// FrameAccepted implements Observer.
func (o Observers) FrameAccepted(out Outcome) {
	for _, ob := range o {
		ob.FrameAccepted(out)
	}
}

// FrameRejected implements Observer.
func (o Observers) FrameRejected(err *frame.RejectError) {
	for _, ob := range o {
		ob.FrameRejected(err)
	}
}

// ActuateFailed implements Observer.
func (o Observers) ActuateFailed(out Outcome) {
	for _, ob := range o {
		ob.ActuateFailed(out)
	}
}

// BytesDiscarded implements Observer.
func (o Observers) BytesDiscarded(n uint64) {
	for _, ob := range o {
		ob.BytesDiscarded(n)
	}
}

// LogObserver logs events with glog.
type LogObserver struct{}

// FrameAccepted implements Observer.
func (LogObserver) FrameAccepted(out Outcome) {
	if glog.V(3) {
		glog.Infof("frame [% X]", out.Frame[:])
	}
	if glog.V(2) {
		glog.Infof("x=%.5f y=%.5f z=%.5f -> %v",
			out.Reading.X, out.Reading.Y, out.Reading.Z, out.Commands)
	}
}

// FrameRejected implements Observer.
func (LogObserver) FrameRejected(err *frame.RejectError) {
	glog.V(1).Info(err)
}

// ActuateFailed implements Observer.
func (LogObserver) ActuateFailed(out Outcome) {
	glog.Errorf("actuate %v failed: %v", out.Commands, out.Err)
}

// BytesDiscarded implements Observer.
func (LogObserver) BytesDiscarded(n uint64) {
	glog.V(1).Infof("discarded %d bytes before frame tag", n)
}
