// Package sh provides the interactive shell of the frame simulator.
package sh

import (
	"bytes"
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/gyrodrive/pkg/ble/frame"
	"github.com/robotalks/gyrodrive/pkg/motion"
	"github.com/robotalks/gyrodrive/pkg/pipeline"
)

const shellKey = "$shell"

var (
	evalOnly bool

	commands = []*ishell.Cmd{
		&TiltCmd,
		&StopCmd,
		&NoiseCmd,
		&CorruptCmd,
		&RawCmd,
		&DecodeCmd,
	}
)

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// Shell writes simulated gyro frames to Out.
type Shell struct {
	Interactive bool
	// Hex prints frames as hex lines instead of writing raw bytes.
	Hex      bool
	Out      io.Writer
	Deadband float64

	Shell *ishell.Shell
	rand  *rand.Rand
}

// New creates a Shell writing to out.
func New(out io.Writer, hexOutput bool) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Hex:         hexOutput,
		Out:         out,
		Deadband:    motion.DefaultDeadband,
		Shell:       ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("gyro > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Write sends bytes to Out.
func (s *Shell) Write(data []byte) error {
	if s.Hex {
		_, err := fmt.Fprintf(s.Out, "% X\n", data)
		return err
	}
	_, err := s.Out.Write(data)
	return err
}

// Tilt sends a valid frame.
func (s *Shell) Tilt(r frame.Reading) (frame.Frame, error) {
	f := frame.Encode(r)
	return f, s.Write(f[:])
}

// Corrupt sends a frame with a wrong checksum.
func (s *Shell) Corrupt(r frame.Reading) (frame.Frame, error) {
	f := frame.Encode(r)
	f[frame.OffsetChecksum]++
	return f, s.Write(f[:])
}

// Noise sends n random bytes. The frame tag is never generated so the
// following frame is still recognized.
func (s *Shell) Noise(n int) ([]byte, error) {
	if s.rand == nil {
		s.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	data := make([]byte, n)
	for i := range data {
		for {
			data[i] = byte(s.rand.Intn(256))
			if data[i] != frame.TagHigh {
				break
			}
		}
	}
	return data, s.Write(data)
}

// Decode runs the bytes through the receive pipeline and describes the
// outcome of every frame.
func (s *Shell) Decode(data []byte) []string {
	r := pipeline.NewReceiver(bytes.NewReader(data), nil)
	r.Classifier.Deadband = s.Deadband
	var lines []string
	for {
		out, err := r.Step(context.Background())
		if err != nil {
			break
		}
		lines = append(lines, DescribeOutcome(out))
	}
	stats := r.Stats()
	if stats.Discarded > 0 {
		lines = append(lines, fmt.Sprintf("discarded %d bytes", stats.Discarded))
	}
	if state, n := r.Pending(); n > 0 {
		lines = append(lines, fmt.Sprintf("incomplete: %v with %d bytes", state, n))
	}
	return lines
}

// DescribeOutcome formats an Outcome for display.
func DescribeOutcome(out pipeline.Outcome) string {
	if !out.Accepted() {
		return out.Err.Error()
	}
	return fmt.Sprintf("accepted x=%.5f y=%.5f z=%.5f -> %v",
		out.Reading.X, out.Reading.Y, out.Reading.Z, out.Commands)
}

// ParseReading parses "X Y [Z]".
func ParseReading(args []string) (frame.Reading, error) {
	if len(args) < 2 || len(args) > 3 {
		return frame.Reading{}, fmt.Errorf("X Y [Z] expected")
	}
	var vals [3]float32
	for n, arg := range args {
		v, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return frame.Reading{}, fmt.Errorf("invalid value %q", arg)
		}
		vals[n] = float32(v)
	}
	return frame.Reading{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// ParseHex parses hex bytes, separated by spaces or not.
func ParseHex(args []string) ([]byte, error) {
	var sb strings.Builder
	for _, arg := range args {
		for _, tok := range strings.Fields(strings.ReplaceAll(arg, ":", " ")) {
			tok = strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
			sb.WriteString(tok)
		}
	}
	return hex.DecodeString(sb.String())
}

// Run runs the shell, or processes args as a single command.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

func readingCmd(send func(*Shell, frame.Reading) (frame.Frame, error)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		r, err := ParseReading(c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		s := ShellFrom(c)
		f, err := send(s, r)
		if err != nil {
			c.Err(err)
			return
		}
		if !s.Hex {
			c.Printf("sent [% X]\n", f[:])
		}
	}
}

var (
	// TiltCmd sends a frame.
	TiltCmd = ishell.Cmd{
		Name:    "tilt",
		Aliases: []string{"t"},
		Help:    "X Y [Z]",
		Func:    readingCmd((*Shell).Tilt),
	}

	// StopCmd sends a neutral frame.
	StopCmd = ishell.Cmd{
		Name:    "stop",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if _, err := ShellFrom(c).Tilt(frame.Reading{}); err != nil {
				c.Err(err)
			}
		},
	}

	// NoiseCmd sends random bytes.
	NoiseCmd = ishell.Cmd{
		Name: "noise",
		Help: "N",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("N expected"))
				return
			}
			n, err := strconv.Atoi(c.Args[0])
			if err != nil || n <= 0 {
				c.Err(fmt.Errorf("invalid count %q", c.Args[0]))
				return
			}
			if _, err := ShellFrom(c).Noise(n); err != nil {
				c.Err(err)
			}
		},
	}

	// CorruptCmd sends a frame with a bad checksum.
	CorruptCmd = ishell.Cmd{
		Name: "corrupt",
		Help: "X Y [Z]",
		Func: readingCmd((*Shell).Corrupt),
	}

	// RawCmd sends arbitrary bytes.
	RawCmd = ishell.Cmd{
		Name: "raw",
		Help: "HEX...",
		Func: func(c *ishell.Context) {
			data, err := ParseHex(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if err := ShellFrom(c).Write(data); err != nil {
				c.Err(err)
			}
		},
	}

	// DecodeCmd decodes bytes locally without sending.
	DecodeCmd = ishell.Cmd{
		Name:    "decode",
		Aliases: []string{"d"},
		Help:    "HEX...",
		Func: func(c *ishell.Context) {
			data, err := ParseHex(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			lines := ShellFrom(c).Decode(data)
			if len(lines) == 0 {
				c.Println("no frame")
			}
			for _, line := range lines {
				c.Println(line)
			}
		},
	}
)
