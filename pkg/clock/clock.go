// Package clock keeps the device clock synchronized with an NTP server.
// Telemetry timestamps are always UTC; the configured GMT offset is used only
// for human-readable diagnostics.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/beevik/ntp"
)

// Clock tracks the offset between the local clock and NTP time.
type Clock struct {
	mu     sync.Mutex
	offset time.Duration
	synced bool
}

// New returns an unsynchronized Clock; Now falls back to the local clock
// until the first successful Sync.
func New() *Clock {
	return &Clock{}
}

// Sync queries the NTP server and stores the measured clock offset.
func (c *Clock) Sync(server string) error {
	resp, err := ntp.Query(server)
	if err != nil {
		return fmt.Errorf("ntp query %s: %w", server, err)
	}
	if err := resp.Validate(); err != nil {
		return fmt.Errorf("ntp response from %s: %w", server, err)
	}

	c.mu.Lock()
	c.offset = resp.ClockOffset
	c.synced = true
	c.mu.Unlock()
	return nil
}

// Synced reports whether at least one Sync has succeeded.
func (c *Clock) Synced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.synced
}

// Now returns the NTP-corrected current time in UTC.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	offset := c.offset
	c.mu.Unlock()
	return time.Now().Add(offset).UTC()
}

// FormatLocal renders t in the device's configured GMT offset for diagnostic
// output.
func FormatLocal(t time.Time, gmtOffset int) string {
	zone := time.FixedZone(fmt.Sprintf("GMT%+d", gmtOffset), gmtOffset*3600)
	return t.In(zone).Format("15:04:05 1/2/2006")
}
