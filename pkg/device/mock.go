package device

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// MockConfig configures the simulated hardware.
type MockConfig struct {
	CollectorCode float64 // Baseline ADC code on channel 0 (collector)
	StoreCode     float64 // Baseline ADC code on channel 1 (store)
	Noise         float64 // Uniform noise amplitude in ADC counts
	CouplingRate  float64 // Per-read drift of collector toward store while circulating
}

// Mock simulates the controller hardware for testing and development. The
// collector channel drifts toward the store channel while the relay is
// closed, which is enough to exercise the hysteresis loop end to end.
type Mock struct {
	cfg MockConfig

	mu        sync.Mutex
	connected bool
	relay     bool
	collector float64
	store     float64
	blinking  bool
	ledOn     bool
	rng       *rand.Rand
}

// NewMock creates a new mocked device instance.
func NewMock(cfg MockConfig) *Mock {
	if cfg.CollectorCode == 0 {
		cfg.CollectorCode = 420 // ~45C with the shipped calibration
	}
	if cfg.StoreCode == 0 {
		cfg.StoreCode = 560 // ~24C
	}
	if cfg.Noise == 0 {
		cfg.Noise = 2
	}
	if cfg.CouplingRate == 0 {
		cfg.CouplingRate = 0.5
	}
	return &Mock{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	m.connected = true
	m.relay = false
	m.ledOn = true
	m.collector = m.cfg.CollectorCode
	m.store = m.cfg.StoreCode
	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// ReadADC returns a simulated sample for the channel.
func (m *Mock) ReadADC(channel int) (uint16, error) {
	if channel != 0 && channel != 1 {
		return 0, fmt.Errorf("invalid ADC channel %d", channel)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return 0, fmt.Errorf("not connected")
	}

	// Circulation pulls the collector reading toward the store reading.
	if m.relay {
		m.collector += (m.store - m.collector) * m.cfg.CouplingRate / 100
	}

	base := m.collector
	if channel == 1 {
		base = m.store
	}
	code := base + (m.rng.Float64()*2-1)*m.cfg.Noise

	// Keep the simulation off the degenerate 0/1023 edges.
	if code < 1 {
		code = 1
	}
	if code > adcMax-1 {
		code = adcMax - 1
	}
	return uint16(code + 0.5), nil
}

// SetRelay sets the simulated relay state.
func (m *Mock) SetRelay(closed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}
	m.relay = closed
	return nil
}

// Relay reports the simulated relay state.
func (m *Mock) Relay() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.relay
}

// Blink records that the LED is blinking.
func (m *Mock) Blink(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blinking = true
}

// Steady records the LED state.
func (m *Mock) Steady(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blinking = false
	m.ledOn = on
}

// IsConnected returns whether the mock is "connected".
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}
