// Package motion maps gyro readings to discrete motion commands.
package motion

import "strings"

// Command is a single motion command.
type Command uint8

// Commands
const (
	Forward Command = 1 << iota
	Backward
	Left
	Right
	Stop
)

// AllCommands lists every command in display order.
var AllCommands = []Command{Forward, Backward, Left, Right, Stop}

// String implements fmt.Stringer.
func (c Command) String() string {
	switch c {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Left:
		return "left"
	case Right:
		return "right"
	case Stop:
		return "stop"
	}
	return "unknown"
}

// Commands is a set of commands asserted by one classification.
type Commands uint8

// Of builds a set.
func Of(cmds ...Command) Commands {
	var s Commands
	for _, c := range cmds {
		s |= Commands(c)
	}
	return s
}

// Has checks if c is in the set.
func (s Commands) Has(c Command) bool {
	return s&Commands(c) != 0
}

// IsStop indicates the set is exactly Stop.
func (s Commands) IsStop() bool {
	return s == Commands(Stop)
}

// List returns the commands in display order.
func (s Commands) List() []Command {
	var cmds []Command
	for _, c := range AllCommands {
		if s.Has(c) {
			cmds = append(cmds, c)
		}
	}
	return cmds
}

// Strings returns the names of the commands in display order.
func (s Commands) Strings() []string {
	cmds := s.List()
	names := make([]string, len(cmds))
	for n, c := range cmds {
		names[n] = c.String()
	}
	return names
}

// String implements fmt.Stringer, e.g. "forward+right".
func (s Commands) String() string {
	if s == 0 {
		return "none"
	}
	return strings.Join(s.Strings(), "+")
}

// Parse parses the form produced by String.
func Parse(str string) (Commands, bool) {
	if str == "none" {
		return 0, true
	}
	var s Commands
	for _, name := range strings.Split(str, "+") {
		var found bool
		for _, c := range AllCommands {
			if c.String() == name {
				s, found = s|Commands(c), true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return s, true
}
