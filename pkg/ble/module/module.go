// Package module controls the BLE UART bridge module (Bluefruit LE UART Friend
// and compatibles) beyond the data stream: resetting it and switching modes.
package module

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
)

// Commands sent to the module in command mode.
const (
	CmdReset      = "ATZ\r\n"
	CmdSwitchMode = "+++\r\n"
)

// Default delays, as required by the module after switching mode and reset.
const (
	DefaultModeDelay  = time.Second
	DefaultResetDelay = 3 * time.Second
)

// Pin is the subset of gpio.PinOut used to drive the MOD pin.
type Pin interface {
	Out(gpio.Level) error
}

// Module is a BLE UART bridge module attached to W.
type Module struct {
	// W writes to the module's UART.
	W io.Writer
	// ModePin is the MOD pin, high for command mode. When nil, mode is
	// switched in-band with "+++".
	ModePin    Pin
	ModeDelay  time.Duration
	ResetDelay time.Duration
	// Banner is written once the module is back in data mode.
	Banner string

	sleep func(context.Context, time.Duration) error
}

// New creates a Module with default delays.
func New(w io.Writer, modePin Pin) *Module {
	return &Module{
		W:          w,
		ModePin:    modePin,
		ModeDelay:  DefaultModeDelay,
		ResetDelay: DefaultResetDelay,
	}
}

// Reset switches the module to command mode, resets it and switches back
// to data mode.
// The MOD pin is driven back low if the reset fails midway.
func (m *Module) Reset(ctx context.Context) (err error) {
	glog.Info("resetting BLE module")
	if err := m.commandMode(true); err != nil {
		return err
	}
	defer func() {
		if err != nil && m.ModePin != nil {
			if perr := m.ModePin.Out(gpio.Low); perr != nil {
				glog.Warningf("release MOD pin: %v", perr)
			}
		}
	}()
	if err := m.wait(ctx, m.ModeDelay); err != nil {
		return err
	}
	if err := m.send(CmdReset); err != nil {
		return err
	}
	if err := m.wait(ctx, m.ResetDelay); err != nil {
		return err
	}
	if err := m.commandMode(false); err != nil {
		return err
	}
	if m.Banner != "" {
		if err := m.send(m.Banner); err != nil {
			return err
		}
	}
	glog.Info("BLE module ready")
	return nil
}

func (m *Module) commandMode(on bool) error {
	if m.ModePin == nil {
		if !on {
			// ATZ comes back up in data mode.
			return nil
		}
		return m.send(CmdSwitchMode)
	}
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := m.ModePin.Out(level); err != nil {
		return fmt.Errorf("set MOD pin %v: %w", level, err)
	}
	return nil
}

func (m *Module) send(cmd string) error {
	glog.V(2).Infof("BLE module <- %q", cmd)
	if _, err := io.WriteString(m.W, cmd); err != nil {
		return fmt.Errorf("write %q: %w", cmd, err)
	}
	return nil
}

func (m *Module) wait(ctx context.Context, d time.Duration) error {
	if m.sleep != nil {
		return m.sleep(ctx, d)
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
