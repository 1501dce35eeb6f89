package cloud

import (
	"fmt"
	"log"
	"time"
)

// LogPath is the root key of the telemetry namespace in the remote store.
// Entries live at numeric child keys 0..capacity-1.
const LogPath = "log"

const (
	appendAttempts = 3
	retryDelay     = 100 * time.Millisecond
)

// Record is one telemetry log entry. The JSON field names match the remote
// layout: "0" and "1" are the two thermistor channels.
type Record struct {
	Time   int64   `json:"time"` // UTC epoch seconds
	Temp0  float64 `json:"0"`
	Temp1  float64 `json:"1"`
	Active bool    `json:"active"`
}

// Log appends timestamped observations to a fixed-capacity circular log in
// the remote store.
//
// The slot cursor lives only in process memory: every restart begins again at
// slot 0, overwriting old entries until capacity new samples accumulate. That
// is the device's established behavior, kept as-is.
type Log struct {
	namespace string
	capacity  int
	slot      uint32
}

// NewLog creates a log writing under namespace with the given capacity.
// The caller must have validated capacity >= 1 (see Settings.Validate).
func NewLog(namespace string, capacity int) *Log {
	return &Log{namespace: namespace, capacity: capacity}
}

// Slot returns the slot the next append will target.
func (l *Log) Slot() uint32 {
	return l.slot
}

// SetCapacity adjusts the wrap point after a config refresh. The cursor is
// folded into the new range so the next append stays in bounds. As with
// NewLog, the caller must have validated capacity >= 1.
func (l *Log) SetCapacity(capacity int) {
	l.capacity = capacity
	l.slot %= uint32(capacity)
}

// Append writes one record to the current slot, retrying up to 3 attempts
// with a constant 100ms delay between them. The indicator blinks for the
// duration of each attempt. On the first success the cursor advances modulo
// capacity and no further attempt is made. If every attempt fails the sample
// is dropped and the cursor stays put, so the next successful append reuses
// the same slot — failed writes never consume log capacity.
//
// Append blocks for the full duration of its attempts, including the
// inter-attempt delays; callers must not overlap calls.
func (l *Log) Append(c Client, ind Indicator, timestamp time.Time, temp0, temp1 float64, active bool) {
	rec := Record{
		Time:   timestamp.Unix(),
		Temp0:  temp0,
		Temp1:  temp1,
		Active: active,
	}
	path := fmt.Sprintf("%s/%d", l.namespace, l.slot)

	for attempt := 1; attempt <= appendAttempts; attempt++ {
		ind.Blink(19 * time.Millisecond)
		err := c.Set(path, rec)
		ind.Steady(true)

		if err == nil {
			l.slot = (l.slot + 1) % uint32(l.capacity)
			return
		}

		log.Printf("telemetry %s (attempt %d/%d): %v", path, attempt, appendAttempts, err)
		if attempt < appendAttempts {
			time.Sleep(retryDelay)
		}
	}
	// Exhausted: the sample is dropped, the slot will be reused.
}
