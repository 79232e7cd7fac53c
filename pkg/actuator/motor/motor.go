// Package motor drives a two-wheel differential base from motion commands.
package motor

import (
	"context"
	"fmt"
	"math"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/robotalks/gyrodrive/internal/syncutil"
	"github.com/robotalks/gyrodrive/pkg/ble/frame"
	fx "github.com/robotalks/gyrodrive/pkg/framework"
	"github.com/robotalks/gyrodrive/pkg/motion"
)

// Defaults.
const (
	DefaultDuty       = 0.2
	DefaultFrequency  = 100 * physic.Hertz
	DefaultBlendRatio = 0.5
)

// OutputPin is the subset of gpio.PinIO a wheel needs.
type OutputPin interface {
	Out(gpio.Level) error
	PWM(gpio.Duty, physic.Frequency) error
	String() string
}

// Wheel is a motor with a direction pin and a speed (PWM) pin.
// Direction is low for forward unless Invert is set.
type Wheel struct {
	Dir    OutputPin
	Speed  OutputPin
	Invert bool
}

func (w *Wheel) drive(speed float64, freq physic.Frequency) error {
	forward := speed >= 0
	if w.Invert {
		forward = !forward
	}
	level := gpio.Low
	if !forward {
		level = gpio.High
	}
	if err := w.Dir.Out(level); err != nil {
		return fmt.Errorf("direction pin %s: %w", w.Dir, err)
	}
	if err := w.Speed.PWM(dutyOf(speed), freq); err != nil {
		return fmt.Errorf("speed pin %s: %w", w.Speed, err)
	}
	return nil
}

func dutyOf(speed float64) gpio.Duty {
	return gpio.Duty(math.Round(math.Min(math.Abs(speed), 1) * float64(gpio.DutyMax)))
}

// Policy defines how a drive command combines with a simultaneous turn.
type Policy int

// Policies
const (
	// PolicyTurn lets the turn win: the base spins in place.
	PolicyTurn Policy = iota
	// PolicyBlend keeps driving and slows down the inner wheel.
	PolicyBlend
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case PolicyTurn:
		return "turn"
	case PolicyBlend:
		return "blend"
	}
	return "unknown"
}

// ParsePolicy parses the name of a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "turn", "":
		return PolicyTurn, nil
	case "blend":
		return PolicyBlend, nil
	}
	return PolicyTurn, fmt.Errorf("unknown motor policy %q", name)
}

// Driver is the Actuator for a differential base.
type Driver struct {
	Left  Wheel
	Right Wheel
	// Sleep is optional. It's driven high while moving.
	Sleep      OutputPin
	Duty       float64
	Frequency  physic.Frequency
	Policy     Policy
	BlendRatio float64

	lock   syncutil.Mutex
	last   motion.Commands
	driven bool
}

// NewDriver creates a Driver with default settings.
func NewDriver(left, right Wheel) *Driver {
	return &Driver{
		Left:       left,
		Right:      right,
		Duty:       DefaultDuty,
		Frequency:  DefaultFrequency,
		BlendRatio: DefaultBlendRatio,
	}
}

// Plan computes the signed speed of each wheel relative to full duty.
// Positive is forward.
func (d *Driver) Plan(cmds motion.Commands) (left, right float64) {
	var drive float64
	switch {
	case cmds.Has(motion.Stop):
		return 0, 0
	case cmds.Has(motion.Forward):
		drive = 1
	case cmds.Has(motion.Backward):
		drive = -1
	}
	turnRight, turnLeft := cmds.Has(motion.Right), cmds.Has(motion.Left)
	switch {
	case drive != 0 && d.Policy == PolicyBlend && turnRight:
		return drive, drive * d.BlendRatio
	case drive != 0 && d.Policy == PolicyBlend && turnLeft:
		return drive * d.BlendRatio, drive
	case turnRight:
		return 1, -1
	case turnLeft:
		return -1, 1
	}
	return drive, drive
}

// Actuate implements Actuator. Pins are only driven when the commands change.
func (d *Driver) Actuate(_ context.Context, cmds motion.Commands, _ frame.Reading) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.driven && cmds == d.last {
		return nil
	}
	left, right := d.Plan(cmds)
	glog.V(1).Infof("motor %v: left %.2f right %.2f", cmds, left*d.Duty, right*d.Duty)
	if err := d.apply(left*d.Duty, right*d.Duty); err != nil {
		d.driven = false
		return err
	}
	d.last, d.driven = cmds, true
	return nil
}

func (d *Driver) apply(left, right float64) error {
	moving := left != 0 || right != 0
	if d.Sleep != nil && moving {
		if err := d.Sleep.Out(gpio.High); err != nil {
			return fmt.Errorf("sleep pin %s: %w", d.Sleep, err)
		}
	}
	var errs fx.AggregatedError
	errs.Add(d.Left.drive(left, d.Frequency), d.Right.drive(right, d.Frequency))
	if d.Sleep != nil && !moving {
		errs.Add(d.Sleep.Out(gpio.Low))
	}
	return errs.Aggregate()
}

// Close stops both wheels.
func (d *Driver) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.driven = false
	return d.apply(0, 0)
}

// Name implements framework.Named.
func (d *Driver) Name() string {
	return "motor"
}
