package pipeline

import (
	"flag"
	"os"

	"github.com/robotalks/gyrodrive/pkg/actuator"
	"github.com/robotalks/gyrodrive/pkg/ble/source"
	"github.com/robotalks/gyrodrive/pkg/motion"
)

// Config defines the configurations of the receiver.
type Config struct {
	Deadband float64
	// MetricsAddr enables the Prometheus endpoint when not empty.
	MetricsAddr string
}

var defaultConfig = Config{
	Deadband: motion.DefaultDeadband,
}

func init() {
	if addr := os.Getenv("GYRO_METRICS_ADDR"); addr != "" {
		defaultConfig.MetricsAddr = addr
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.Deadband, "deadband", defaultConfig.Deadband, "Neutral range of X and Y around zero.")
	flag.StringVar(&defaultConfig.MetricsAddr, "metrics-addr", defaultConfig.MetricsAddr, "Address to serve Prometheus metrics, e.g. :9100.")
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

// NewReceiver creates the Receiver.
func (c *Config) NewReceiver(src source.ByteSource, act actuator.Actuator) *Receiver {
	r := NewReceiver(src, act)
	r.Classifier.Deadband = c.Deadband
	return r
}
