package actuator

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/gyrodrive/pkg/ble/frame"
	"github.com/robotalks/gyrodrive/pkg/motion"
)

var commandMessages = map[motion.Command]string{
	motion.Forward:  "Moving Forward",
	motion.Backward: "Moving Backward",
	motion.Left:     "Turning Left",
	motion.Right:    "Turning Right",
	motion.Stop:     "Stopped",
}

// Log reports motion commands as console lines, e.g. "Motor: Moving Forward".
type Log struct {
	// Prefix is prepended to every line.
	Prefix string
	// EveryFrame logs every frame instead of only changes.
	EveryFrame bool
	// Printf defaults to glog.Infof.
	Printf func(format string, args ...interface{})

	last    motion.Commands
	started bool
}

// NewLog creates a Log actuator reporting changes.
func NewLog() *Log {
	return &Log{Prefix: "Motor: "}
}

// Actuate implements Actuator.
func (l *Log) Actuate(_ context.Context, cmds motion.Commands, _ frame.Reading) error {
	if !l.EveryFrame && l.started && cmds == l.last {
		return nil
	}
	l.last, l.started = cmds, true
	printf := l.Printf
	if printf == nil {
		printf = glog.Infof
	}
	for _, cmd := range cmds.List() {
		printf("%s%s", l.Prefix, commandMessages[cmd])
	}
	return nil
}

// Name implements framework.Named.
func (l *Log) Name() string {
	return "log"
}
