package cloud

import (
	"fmt"
	"math"
	"time"
)

// Client is the remote key-value store boundary. Paths are slash-separated
// keys relative to the database root. Every call reports failure through its
// error return; callers must never infer success from anything else.
type Client interface {
	// Get retrieves the JSON object stored at path.
	Get(path string) (Object, error)
	// Set overwrites the value stored at path.
	Set(path string, value any) error
}

// Ensure REST implements Client.
var _ Client = (*REST)(nil)

// Ensure Mock implements Client.
var _ Client = (*Mock)(nil)

// Indicator signals network activity to the operator, typically by blinking
// the device status LED. Purely observational: nothing here depends on it.
type Indicator interface {
	Blink(interval time.Duration)
	Steady(on bool)
}

// NopIndicator is an Indicator that does nothing.
type NopIndicator struct{}

func (NopIndicator) Blink(time.Duration) {}
func (NopIndicator) Steady(bool)         {}

// Object is a decoded JSON object fetched from the remote store. The typed
// extractors return an error for a missing or mistyped key so that callers
// can handle each field independently.
type Object map[string]any

// Float extracts a numeric value.
func (o Object) Float(key string) (float64, error) {
	v, ok := o[key]
	if !ok {
		return 0, fmt.Errorf("missing key %q", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("key %q: expected number, got %T", key, v)
	}
	return f, nil
}

// Int extracts an integral numeric value. JSON numbers decode as float64;
// a fractional value is rejected rather than truncated.
func (o Object) Int(key string) (int, error) {
	f, err := o.Float(key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("key %q: expected integer, got %v", key, f)
	}
	return int(f), nil
}

// String extracts a string value.
func (o Object) String(key string) (string, error) {
	v, ok := o[key]
	if !ok {
		return "", fmt.Errorf("missing key %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("key %q: expected string, got %T", key, v)
	}
	return s, nil
}
