package module

import (
	"flag"
	"fmt"
	"io"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Config defines the configurations for the module.
type Config struct {
	// ResetOnStart resets the module before receiving frames.
	ResetOnStart bool
	// ModePin is the name of the GPIO connected to MOD, empty to use "+++".
	ModePin    string
	ModeDelay  time.Duration
	ResetDelay time.Duration
	Banner     string
}

var defaultConfig = Config{
	ModeDelay:  DefaultModeDelay,
	ResetDelay: DefaultResetDelay,
	Banner:     "BLE UART Ready\r\n",
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&defaultConfig.ResetOnStart, "ble-reset", defaultConfig.ResetOnStart, "Reset the BLE module on start.")
	flag.StringVar(&defaultConfig.ModePin, "ble-mod-pin", defaultConfig.ModePin, "GPIO name of the BLE module MOD pin, empty to switch mode with +++.")
	flag.DurationVar(&defaultConfig.ModeDelay, "ble-mode-delay", defaultConfig.ModeDelay, "Delay after switching the BLE module mode.")
	flag.DurationVar(&defaultConfig.ResetDelay, "ble-reset-delay", defaultConfig.ResetDelay, "Delay after resetting the BLE module.")
	flag.StringVar(&defaultConfig.Banner, "ble-banner", defaultConfig.Banner, "Text sent to the peer once the BLE module is ready.")
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

// NewModule creates the Module writing to w.
// GPIO drivers must be initialized (host.Init) when ModePin is set.
func (c *Config) NewModule(w io.Writer) (*Module, error) {
	m := New(w, nil)
	m.ModeDelay, m.ResetDelay, m.Banner = c.ModeDelay, c.ResetDelay, c.Banner
	if c.ModePin != "" {
		pin := gpioreg.ByName(c.ModePin)
		if pin == nil {
			return nil, fmt.Errorf("unknown GPIO %q for MOD pin", c.ModePin)
		}
		m.ModePin = pin
	}
	return m, nil
}
