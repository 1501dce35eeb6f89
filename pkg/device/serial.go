package device

import (
	"bufio"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the baud rate of the controller MCU.
	DefaultBaudRate = 115200

	// readTimeout bounds a single request/response exchange with the MCU.
	readTimeout = 2 * time.Second

	// adcMax is the full-scale code of the MCU's 10-bit ADC.
	adcMax = 1023
)

// Serial drives the controller hardware over a serial line using a
// line-oriented request/response protocol:
//
//	adc <channel>      -> "<code>"
//	relay <0|1>        -> "ok"
//	led on|off         -> "ok"
//	led blink <ms>     -> "ok"
//
// All exchanges are synchronous; the mutex serializes concurrent callers.
type Serial struct {
	port     string
	baudRate int

	mu        sync.Mutex
	conn      serial.Port
	reader    *bufio.Reader
	connected bool
	relay     bool
}

// New creates a Serial device on the given port.
func New(port string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &Serial{port: port, baudRate: baudRate}
}

// Ports returns the names of the available serial ports.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Connect opens the serial port and puts the hardware in its initial state:
// relay open, LED on.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{BaudRate: d.baudRate}
	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	d.conn = port
	d.reader = bufio.NewReader(port)
	d.connected = true

	// Initial hardware state: relay open, LED on.
	for _, cmd := range []string{"relay 0", "led on"} {
		if _, err := d.exchange(cmd); err != nil {
			port.Close()
			d.conn = nil
			d.reader = nil
			d.connected = false
			return fmt.Errorf("failed to initialize device: %w", err)
		}
	}
	d.relay = false
	return nil
}

// Close closes the serial port.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}
	if err := d.conn.Close(); err != nil {
		log.Printf("Error closing serial port: %v", err)
	}
	d.conn = nil
	d.reader = nil
	d.connected = false
	return nil
}

// ReadADC samples the ADC on the given mux channel.
func (d *Serial) ReadADC(channel int) (uint16, error) {
	if channel != 0 && channel != 1 {
		return 0, fmt.Errorf("invalid ADC channel %d", channel)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	line, err := d.exchange(fmt.Sprintf("adc %d", channel))
	if err != nil {
		return 0, err
	}

	code, err := strconv.ParseUint(line, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid ADC response %q: %w", line, err)
	}
	if code > adcMax {
		return 0, fmt.Errorf("ADC code out of range: %d (max %d)", code, adcMax)
	}
	return uint16(code), nil
}

// SetRelay commands the circulation relay.
func (d *Serial) SetRelay(closed bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := "relay 0"
	if closed {
		cmd = "relay 1"
	}
	if _, err := d.exchange(cmd); err != nil {
		return err
	}
	d.relay = closed
	return nil
}

// Relay reports the last commanded relay state.
func (d *Serial) Relay() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.relay
}

// Blink flashes the status LED at the given interval.
func (d *Serial) Blink(interval time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.exchange(fmt.Sprintf("led blink %d", interval.Milliseconds())); err != nil {
		log.Printf("led blink: %v", err)
	}
}

// Steady stops blinking and sets the LED on or off.
func (d *Serial) Steady(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := "led off"
	if on {
		cmd = "led on"
	}
	if _, err := d.exchange(cmd); err != nil {
		log.Printf("led steady: %v", err)
	}
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// exchange writes one command line and reads one response line. Callers hold
// the mutex.
func (d *Serial) exchange(cmd string) (string, error) {
	if !d.connected {
		return "", fmt.Errorf("not connected")
	}

	if _, err := d.conn.Write([]byte(cmd + "\n")); err != nil {
		return "", fmt.Errorf("failed to send %q: %w", cmd, err)
	}

	line, err := d.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("no response to %q: %w", cmd, err)
	}

	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "err") {
		return "", fmt.Errorf("mcu rejected %q: %s", cmd, line)
	}
	return line, nil
}
