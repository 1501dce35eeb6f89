package cloud

import (
	"fmt"
	"log"
	"time"
)

// ConfigPath is the root key of the configuration namespace in the remote
// store.
const ConfigPath = "config"

// Remote child keys under ConfigPath.
const (
	keySeriesResistor      = "seriesResistor"
	keyResistanceAt0       = "resistanceAt0"
	keyTemperatureAt0      = "temperatureAt0"
	keyBCoefficient        = "bCoefficient"
	keyPollingMilliseconds = "pollingMilliseconds"
	keyMaxEntries          = "maxEntries"
	keyNTPServer           = "ntpServer"
	keyGMTOffset           = "gmtOffset"
	keyMinTOn              = "minTOn"
	keyDeltaTOn            = "deltaTOn"
	keyDeltaTOff           = "deltaTOff"
	keyOversample          = "oversample"
)

// Settings holds the tunable parameters mirrored from the remote store, so
// they can be changed without reflashing or redeploying the device. The
// compiled-in defaults let the device boot and operate before the remote
// namespace is populated.
type Settings struct {
	// SeriesResistor is the fixed resistance in Ohms of the upper divider
	// leg (R1 in the schematic).
	SeriesResistor float64

	// ResistanceAt0 is the measured thermistor resistance in Ohms at the
	// known temperature TemperatureAt0.
	ResistanceAt0 float64

	// TemperatureAt0 is the temperature in Celsius at which ResistanceAt0
	// was measured.
	TemperatureAt0 float64

	// BCoefficient is the thermistor's B coefficient in the B parameter
	// equation.
	BCoefficient float64

	// PollingMilliseconds is the period of the engage/disengage decision
	// loop, which is also the telemetry logging period.
	PollingMilliseconds int

	// MaxEntries is the capacity of the circular telemetry log. The default
	// is 0: the remote store must supply a real capacity before telemetry
	// can be logged (see Validate).
	MaxEntries int

	// NTPServer synchronizes the device clock.
	NTPServer string

	// GMTOffset is used only when printing local-time diagnostics; all
	// logged timestamps are UTC.
	GMTOffset int

	// MinTOn is the minimum absolute collector temperature in Celsius
	// required to engage, preventing circulation in near-freezing conditions.
	MinTOn float64

	// DeltaTOn is the minimum collector-to-store differential required to
	// engage. Set sufficiently above DeltaTOff that the collector doesn't
	// immediately disengage once circulation starts.
	DeltaTOn float64

	// DeltaTOff is the minimum differential required to stay engaged.
	DeltaTOff float64

	// Oversample is the number of raw ADC samples averaged per reading to
	// smooth transient noise.
	Oversample int
}

// Defaults returns the compiled-in settings, matching the values the device
// shipped with.
func Defaults() Settings {
	return Settings{
		SeriesResistor:      8170,
		ResistanceAt0:       9555.55,
		TemperatureAt0:      25,
		BCoefficient:        3380,
		PollingMilliseconds: 5 * 1000,
		MaxEntries:          0,
		NTPServer:           "pool.ntp.org",
		GMTOffset:           0,
		MinTOn:              10,
		DeltaTOn:            10,
		DeltaTOff:           1,
		Oversample:          16,
	}
}

// field binds a remote key to a typed setter on Settings. The table replaces
// the usual reflection tricks: each entry extracts its own key and applies it
// independently, so one bad field never blocks the others.
type field struct {
	key   string
	apply func(Object, *Settings) error
}

func floatField(key string, dst func(*Settings) *float64) field {
	return field{key, func(o Object, s *Settings) error {
		v, err := o.Float(key)
		if err != nil {
			return err
		}
		*dst(s) = v
		return nil
	}}
}

func intField(key string, dst func(*Settings) *int) field {
	return field{key, func(o Object, s *Settings) error {
		v, err := o.Int(key)
		if err != nil {
			return err
		}
		*dst(s) = v
		return nil
	}}
}

func stringField(key string, dst func(*Settings) *string) field {
	return field{key, func(o Object, s *Settings) error {
		v, err := o.String(key)
		if err != nil {
			return err
		}
		*dst(s) = v
		return nil
	}}
}

func fields() []field {
	return []field{
		floatField(keySeriesResistor, func(s *Settings) *float64 { return &s.SeriesResistor }),
		floatField(keyTemperatureAt0, func(s *Settings) *float64 { return &s.TemperatureAt0 }),
		floatField(keyResistanceAt0, func(s *Settings) *float64 { return &s.ResistanceAt0 }),
		floatField(keyBCoefficient, func(s *Settings) *float64 { return &s.BCoefficient }),
		intField(keyPollingMilliseconds, func(s *Settings) *int { return &s.PollingMilliseconds }),
		intField(keyMaxEntries, func(s *Settings) *int { return &s.MaxEntries }),
		stringField(keyNTPServer, func(s *Settings) *string { return &s.NTPServer }),
		intField(keyGMTOffset, func(s *Settings) *int { return &s.GMTOffset }),
		floatField(keyDeltaTOn, func(s *Settings) *float64 { return &s.DeltaTOn }),
		floatField(keyDeltaTOff, func(s *Settings) *float64 { return &s.DeltaTOff }),
		floatField(keyMinTOn, func(s *Settings) *float64 { return &s.MinTOn }),
		intField(keyOversample, func(s *Settings) *int { return &s.Oversample }),
	}
}

// Refresh pulls the configuration namespace and applies it field by field.
// Returns true iff every field was retrieved and applied.
//
// If the namespace fetch itself fails, no field is touched. Otherwise each
// field is applied independently: a missing or mistyped field keeps its
// previous value while the rest still update. The loop never short-circuits,
// so a transient per-key problem costs exactly that key. This fail-open
// design keeps a long-running unattended device operating on last-known-good
// values over an unreliable link.
func (s *Settings) Refresh(c Client, ind Indicator) bool {
	ind.Blink(25 * time.Millisecond)
	defer ind.Steady(true)

	obj, err := c.Get(ConfigPath)
	if err != nil {
		log.Printf("config refresh: %v", err)
		return false
	}

	ok := true
	for _, f := range fields() {
		if err := f.apply(obj, s); err != nil {
			log.Printf("config refresh: %s: %v (keeping previous value)", f.key, err)
			ok = false
		}
	}
	return ok
}

// Validate rejects settings the rest of the system cannot safely run with.
// In particular MaxEntries is the telemetry log capacity: the slot cursor
// advances modulo capacity, so a capacity below 1 must be rejected here, at
// load time — Append does not guard it.
func (s Settings) Validate() error {
	if s.MaxEntries < 1 {
		return fmt.Errorf("maxEntries must be >= 1, got %d", s.MaxEntries)
	}
	if s.PollingMilliseconds <= 0 {
		return fmt.Errorf("pollingMilliseconds must be positive, got %d", s.PollingMilliseconds)
	}
	if s.Oversample < 1 {
		return fmt.Errorf("oversample must be >= 1, got %d", s.Oversample)
	}
	if s.GMTOffset < -11 || s.GMTOffset > 13 {
		return fmt.Errorf("gmtOffset must be within [-11, 13], got %d", s.GMTOffset)
	}
	if s.SeriesResistor <= 0 {
		return fmt.Errorf("seriesResistor must be positive, got %v", s.SeriesResistor)
	}
	if s.ResistanceAt0 <= 0 {
		return fmt.Errorf("resistanceAt0 must be positive, got %v", s.ResistanceAt0)
	}
	if s.BCoefficient <= 0 {
		return fmt.Errorf("bCoefficient must be positive, got %v", s.BCoefficient)
	}
	return nil
}

// PollingInterval returns the decision-loop period as a Duration.
func (s Settings) PollingInterval() time.Duration {
	return time.Duration(s.PollingMilliseconds) * time.Millisecond
}
