// Package msgs defines the messages published for motion commands.
package msgs

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/gyrodrive/pkg/ble/frame"
	"github.com/robotalks/gyrodrive/pkg/motion"
)

// MotionState is published whenever the classified commands change.
type MotionState struct {
	Commands  []string `protobuf:"bytes,1,rep,name=commands,proto3" json:"commands,omitempty"`
	X         float32  `protobuf:"fixed32,2,opt,name=x,proto3" json:"x,omitempty"`
	Y         float32  `protobuf:"fixed32,3,opt,name=y,proto3" json:"y,omitempty"`
	Z         float32  `protobuf:"fixed32,4,opt,name=z,proto3" json:"z,omitempty"`
	Seq       uint64   `protobuf:"varint,5,opt,name=seq,proto3" json:"seq,omitempty"`
	Timestamp int64    `protobuf:"varint,6,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// NewMotionState creates a MotionState.
func NewMotionState(cmds motion.Commands, r frame.Reading) *MotionState {
	return &MotionState{
		Commands: cmds.Strings(),
		X:        r.X,
		Y:        r.Y,
		Z:        r.Z,
	}
}

// ProtoMessage implements proto.Message.
func (m *MotionState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MotionState) Reset() { *m = MotionState{} }

// String implements proto.Message.
func (m *MotionState) String() string { return proto.CompactTextString(m) }

// MotionCommands converts Commands back to a set, unknown names are skipped.
func (m *MotionState) MotionCommands() motion.Commands {
	var s motion.Commands
	for _, name := range m.Commands {
		if c, ok := motion.Parse(name); ok {
			s |= c
		}
	}
	return s
}

// Reading returns the reading carried by the message.
func (m *MotionState) Reading() frame.Reading {
	return frame.Reading{X: m.X, Y: m.Y, Z: m.Z}
}

// Encode encodes the message to bytes.
func (m *MotionState) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// DecodeMotionState decodes bytes into MotionState.
func DecodeMotionState(data []byte) (*MotionState, error) {
	var m MotionState
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// RobotMeta is published (retained) as JSON when the robot connects.
type RobotMeta struct {
	Description string            `json:"description,omitempty"`
	Source      string            `json:"source,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}
