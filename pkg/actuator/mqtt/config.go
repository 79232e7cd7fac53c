package mqtt

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/gyrodrive/pkg/motion/msgs"
)

// Config defines the configurations of MQTT publishing.
type Config struct {
	// BrokerURL is like mqtt://host:port/topic-prefix/, empty to disable.
	BrokerURL   string
	RobotID     string
	Description string
}

var defaultConfig = Config{
	Description: "gyro controlled robot",
}

func init() {
	if val := os.Getenv("GYRO_MQTT_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
	defaultConfig.RobotID = MachineID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BrokerURL, "mqtt", defaultConfig.BrokerURL, "MQTT broker URL, e.g. mqtt://localhost:1883/gyro/")
	flag.StringVar(&defaultConfig.RobotID, "robot-id", defaultConfig.RobotID, "Robot ID used in MQTT topics.")
	flag.StringVar(&defaultConfig.Description, "robot-desc", defaultConfig.Description, "Robot description published as meta.")
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

// Enabled indicates a broker is configured.
func (c *Config) Enabled() bool {
	return c.BrokerURL != ""
}

// NewPublisher creates the Publisher, sourceURL is published in meta.
func (c *Config) NewPublisher(sourceURL string) (*Publisher, error) {
	if c.RobotID == "" {
		return nil, fmt.Errorf("robot ID is required")
	}
	opts, topicPrefix, err := ClientOptionsFromURL(c.BrokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+MetaTopic(c.RobotID), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("gyrodrive:" + c.RobotID)
	}
	meta := msgs.RobotMeta{Description: c.Description, Source: sourceURL}
	return NewPublisher(NewQueue(opts, topicPrefix), c.RobotID, meta), nil
}

// MustNewPublisher creates the Publisher and fails on error.
func (c *Config) MustNewPublisher(sourceURL string) *Publisher {
	p, err := c.NewPublisher(sourceURL)
	if err != nil {
		log.Fatalln(err)
	}
	return p
}

// MachineID returns an ID of this machine scoped to gyrodrive,
// or the host name when the machine ID is not available.
func MachineID() string {
	if id, err := machineid.ProtectedID("gyrodrive"); err == nil {
		return id[:12]
	}
	host, _ := os.Hostname()
	return host
}
