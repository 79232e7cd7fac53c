package source

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
)

// Config specifies where bytes come from.
type Config struct {
	// URL of the source, one of
	//   serial:///dev/ttyUSB0?baud=9600
	//   /dev/ttyUSB0
	//   ws://host:port/path
	//   file:///path/to/capture.bin
	//   - (stdin)
	URL string
	// BaudRate is used for serial ports without baud in URL.
	BaudRate int
	// Origin is used for websocket sources.
	Origin string
}

var defaultConfig = Config{
	URL:      "serial:///dev/ttyUSB0",
	BaudRate: DefaultBaudRate,
	Origin:   DefaultOrigin,
}

func init() {
	if val := os.Getenv("GYRO_SOURCE"); val != "" {
		defaultConfig.URL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.URL, "source", defaultConfig.URL, "Byte source URL: serial port, ws:// relay, file:// capture or - for stdin.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Serial baud rate.")
	flag.StringVar(&defaultConfig.Origin, "ws-origin", defaultConfig.Origin, "Origin header for websocket sources.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Kind is the transport kind of a source URL.
type Kind string

// Kinds
const (
	KindSerial    Kind = "serial"
	KindWebSocket Kind = "websocket"
	KindFile      Kind = "file"
	KindStdin     Kind = "stdin"
)

// Target is the parsed source URL.
type Target struct {
	Kind     Kind
	Path     string
	BaudRate int
}

// Parse parses the source URL.
func (c *Config) Parse() (Target, error) {
	if c.URL == "" {
		return Target{}, fmt.Errorf("source URL is required")
	}
	if c.URL == "-" {
		return Target{Kind: KindStdin, Path: c.URL}, nil
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return Target{}, fmt.Errorf("invalid source URL: %w", err)
	}
	switch u.Scheme {
	case "":
		return Target{Kind: KindSerial, Path: u.Path, BaudRate: c.BaudRate}, nil
	case "serial":
		t := Target{Kind: KindSerial, Path: u.Host + u.Path, BaudRate: c.BaudRate}
		if val := u.Query().Get("baud"); val != "" {
			if t.BaudRate, err = strconv.Atoi(val); err != nil || t.BaudRate <= 0 {
				return Target{}, fmt.Errorf("invalid baud rate: %q", val)
			}
		}
		if t.Path == "" {
			return Target{}, fmt.Errorf("serial port is required")
		}
		return t, nil
	case "ws", "wss":
		return Target{Kind: KindWebSocket, Path: c.URL}, nil
	case "file":
		return Target{Kind: KindFile, Path: u.Host + u.Path}, nil
	}
	return Target{}, fmt.Errorf("unknown source URL scheme: %q", u.Scheme)
}

// NewSource opens the source.
func (c *Config) NewSource() (*Stream, error) {
	t, err := c.Parse()
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case KindSerial:
		return OpenSerial(t.Path, t.BaudRate)
	case KindWebSocket:
		return DialWebSocket(t.Path, c.Origin)
	case KindFile:
		f, err := os.Open(t.Path)
		if err != nil {
			return nil, err
		}
		return NewStream(c.URL, f), nil
	default:
		return NewStream("stdin", os.Stdin), nil
	}
}

// MustNewSource opens the source and fails on error.
func (c *Config) MustNewSource() *Stream {
	s, err := c.NewSource()
	if err != nil {
		log.Fatalln(err)
	}
	return s
}
