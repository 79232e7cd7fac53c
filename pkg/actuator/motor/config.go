package motor

import (
	"flag"
	"fmt"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
)

// Config defines the configurations for the motor driver.
type Config struct {
	LeftDir     string
	LeftPWM     string
	LeftInvert  bool
	RightDir    string
	RightPWM    string
	RightInvert bool
	SleepPin    string
	Duty        float64
	Frequency   physic.Frequency
	Policy      string
	BlendRatio  float64
}

var defaultConfig = Config{
	Duty:       DefaultDuty,
	Frequency:  DefaultFrequency,
	Policy:     PolicyTurn.String(),
	BlendRatio: DefaultBlendRatio,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.LeftDir, "motor-left-dir", defaultConfig.LeftDir, "GPIO of the left wheel direction.")
	flag.StringVar(&defaultConfig.LeftPWM, "motor-left-pwm", defaultConfig.LeftPWM, "GPIO of the left wheel PWM.")
	flag.BoolVar(&defaultConfig.LeftInvert, "motor-left-invert", defaultConfig.LeftInvert, "Invert the left wheel direction.")
	flag.StringVar(&defaultConfig.RightDir, "motor-right-dir", defaultConfig.RightDir, "GPIO of the right wheel direction.")
	flag.StringVar(&defaultConfig.RightPWM, "motor-right-pwm", defaultConfig.RightPWM, "GPIO of the right wheel PWM.")
	flag.BoolVar(&defaultConfig.RightInvert, "motor-right-invert", defaultConfig.RightInvert, "Invert the right wheel direction.")
	flag.StringVar(&defaultConfig.SleepPin, "motor-sleep", defaultConfig.SleepPin, "GPIO of the motor driver sleep (enable) line, optional.")
	flag.Float64Var(&defaultConfig.Duty, "motor-duty", defaultConfig.Duty, "PWM duty cycle when moving, 0 to 1.")
	flag.Var(&defaultConfig.Frequency, "motor-freq", "PWM frequency.")
	flag.StringVar(&defaultConfig.Policy, "motor-policy", defaultConfig.Policy, "How to combine driving and turning: turn or blend.")
	flag.Float64Var(&defaultConfig.BlendRatio, "motor-blend-ratio", defaultConfig.BlendRatio, "Inner wheel speed ratio for the blend policy.")
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

// Enabled indicates the wheel pins are configured.
func (c *Config) Enabled() bool {
	return c.LeftDir != "" || c.LeftPWM != "" || c.RightDir != "" || c.RightPWM != ""
}

// NewDriver creates the Driver with pins looked up by lookup.
func (c *Config) NewDriver(lookup func(name string) (OutputPin, error)) (*Driver, error) {
	if c.Duty < 0 || c.Duty > 1 {
		return nil, fmt.Errorf("motor duty %v out of range [0, 1]", c.Duty)
	}
	policy, err := ParsePolicy(c.Policy)
	if err != nil {
		return nil, err
	}
	names := []string{c.LeftDir, c.LeftPWM, c.RightDir, c.RightPWM}
	pins := make([]OutputPin, len(names))
	for n, name := range names {
		if name == "" {
			return nil, fmt.Errorf("motor pins incomplete, all of left/right dir/pwm are required")
		}
		if pins[n], err = lookup(name); err != nil {
			return nil, err
		}
	}
	d := NewDriver(
		Wheel{Dir: pins[0], Speed: pins[1], Invert: c.LeftInvert},
		Wheel{Dir: pins[2], Speed: pins[3], Invert: c.RightInvert})
	d.Duty, d.Frequency, d.Policy, d.BlendRatio = c.Duty, c.Frequency, policy, c.BlendRatio
	if c.SleepPin != "" {
		if d.Sleep, err = lookup(c.SleepPin); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// LookupGPIO finds a pin in the periph GPIO registry.
// host.Init must be called before.
func LookupGPIO(name string) (OutputPin, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown GPIO %q", name)
	}
	return pin, nil
}
