// Package actuator defines the sink of classified motion commands and the
// generic actuators: logging and fan-out.
package actuator

import (
	"context"

	"github.com/robotalks/gyrodrive/pkg/ble/frame"
	fx "github.com/robotalks/gyrodrive/pkg/framework"
	"github.com/robotalks/gyrodrive/pkg/motion"
)

// Actuator consumes the command set of every accepted frame.
// The reading is the decoded tilt the commands were derived from.
// An Actuator decides how simultaneous axis commands are combined.
type Actuator interface {
	Actuate(ctx context.Context, cmds motion.Commands, r frame.Reading) error
}

// Func is the func form of Actuator.
type Func func(ctx context.Context, cmds motion.Commands, r frame.Reading) error

// Actuate implements Actuator.
func (f Func) Actuate(ctx context.Context, cmds motion.Commands, r frame.Reading) error {
	return f(ctx, cmds, r)
}

// Mux dispatches commands to multiple Actuators.
type Mux struct {
	Actuators []Actuator
}

// NewMux creates a Mux.
func NewMux(actuators ...Actuator) *Mux {
	return &Mux{Actuators: actuators}
}

// Actuate implements Actuator. Every actuator is invoked even if some fail.
func (m *Mux) Actuate(ctx context.Context, cmds motion.Commands, r frame.Reading) error {
	var errs fx.AggregatedError
	for _, a := range m.Actuators {
		errs.Add(a.Actuate(ctx, cmds, r))
	}
	return errs.Aggregate()
}

// Add adds more actuators.
func (m *Mux) Add(actuators ...Actuator) *Mux {
	m.Actuators = append(m.Actuators, actuators...)
	return m
}

// Runnables returns the actuators which need to run in background,
// e.g. to keep a connection.
func (m *Mux) Runnables() []fx.Runnable {
	var runnables []fx.Runnable
	for _, a := range m.Actuators {
		if r, ok := a.(fx.Runnable); ok {
			if named, ok := a.(fx.Named); ok {
				r = fx.NamedRun(named.Name(), r)
			}
			runnables = append(runnables, r)
		}
	}
	return runnables
}
