package device

import "time"

// Device defines the interface to the controller hardware front-end (real or
// mocked): the two-channel thermistor ADC behind the mux, the collector
// circulation relay, and the status LED.
type Device interface {
	Connect() error
	Close() error

	// ReadADC samples the 10-bit ADC on the given mux channel (0 or 1).
	ReadADC(channel int) (uint16, error)

	// SetRelay closes (true) or opens (false) the circulation relay.
	SetRelay(closed bool) error
	// Relay reports the last commanded relay state.
	Relay() bool

	// Blink flashes the status LED at the given interval until Steady is
	// called. Fire-and-forget: indicator failures are never surfaced.
	Blink(interval time.Duration)
	// Steady stops blinking and sets the LED on or off.
	Steady(on bool)

	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
