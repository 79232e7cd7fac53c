package motion

import (
	"math"

	"github.com/robotalks/gyrodrive/pkg/ble/frame"
)

// DefaultDeadband is the neutral range around zero on each axis.
const DefaultDeadband = 0.2

// Classifier maps readings to commands.
type Classifier struct {
	// Deadband is applied symmetrically on X and Y. Readings are widened
	// to float64 before comparing, so 0.2 means the real number 0.2.
	Deadband float64
}

// NewClassifier creates a Classifier with the default deadband.
func NewClassifier() *Classifier {
	return &Classifier{Deadband: DefaultDeadband}
}

// Classify uses the default deadband.
func Classify(x, y, z float32) Commands {
	return Classifier{Deadband: DefaultDeadband}.Classify(x, y, z)
}

// ClassifyReading classifies a decoded reading.
func (c Classifier) ClassifyReading(r frame.Reading) Commands {
	return c.Classify(r.X, r.Y, r.Z)
}

// Classify maps x (left/right) and y (forward/backward) to commands.
// z is not used. The two axes are independent, so a diagonal tilt asserts
// one command from each. Stop is only ever returned alone.
func (c Classifier) Classify(x, y, _ float32) Commands {
	d, fx, fy := c.Deadband, float64(x), float64(y)
	if math.Abs(fx) <= d && math.Abs(fy) <= d {
		return Commands(Stop)
	}
	var s Commands
	if fy > d {
		s |= Commands(Forward)
	} else if fy < -d {
		s |= Commands(Backward)
	}
	if fx > d {
		s |= Commands(Right)
	} else if fx < -d {
		s |= Commands(Left)
	}
	// only reachable with NaN on the axes.
	if s == 0 {
		return Commands(Stop)
	}
	return s
}
