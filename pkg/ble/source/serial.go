package source

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the factory setting of the BLE UART module.
const DefaultBaudRate = 9600

// OpenSerial opens a serial port with 8N1 framing.
func OpenSerial(portName string, baudRate int) (*Stream, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	return NewStream(portName, port), nil
}

// Ports lists the serial ports available on the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
