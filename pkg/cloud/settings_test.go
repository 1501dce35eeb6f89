package cloud

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyIndicator records indicator calls.
type spyIndicator struct {
	blinks []time.Duration
	steady []bool
}

func (s *spyIndicator) Blink(interval time.Duration) { s.blinks = append(s.blinks, interval) }
func (s *spyIndicator) Steady(on bool)               { s.steady = append(s.steady, on) }

// fullConfigObject returns a remote config namespace with all twelve keys,
// every value distinct from the compiled-in defaults.
func fullConfigObject() Object {
	return Object{
		"seriesResistor":      8000.0,
		"resistanceAt0":       9000.0,
		"temperatureAt0":      24.0,
		"bCoefficient":        3400.0,
		"pollingMilliseconds": 10000.0,
		"maxEntries":          288.0,
		"ntpServer":           "time.example.org",
		"gmtOffset":           2.0,
		"minTOn":              12.0,
		"deltaTOn":            8.0,
		"deltaTOff":           2.0,
		"oversample":          8.0,
	}
}

func TestDefaults(t *testing.T) {
	s := Defaults()

	assert.Equal(t, 8170.0, s.SeriesResistor)
	assert.Equal(t, 9555.55, s.ResistanceAt0)
	assert.Equal(t, 25.0, s.TemperatureAt0)
	assert.Equal(t, 3380.0, s.BCoefficient)
	assert.Equal(t, 5000, s.PollingMilliseconds)
	assert.Equal(t, 0, s.MaxEntries)
	assert.Equal(t, "pool.ntp.org", s.NTPServer)
	assert.Equal(t, 0, s.GMTOffset)
	assert.Equal(t, 10.0, s.MinTOn)
	assert.Equal(t, 10.0, s.DeltaTOn)
	assert.Equal(t, 1.0, s.DeltaTOff)
	assert.Equal(t, 16, s.Oversample)
}

func TestRefresh_AllFields(t *testing.T) {
	m := NewMock()
	m.Objects[ConfigPath] = fullConfigObject()

	s := Defaults()
	ok := s.Refresh(m, NopIndicator{})

	require.True(t, ok)
	assert.Equal(t, 8000.0, s.SeriesResistor)
	assert.Equal(t, 9000.0, s.ResistanceAt0)
	assert.Equal(t, 24.0, s.TemperatureAt0)
	assert.Equal(t, 3400.0, s.BCoefficient)
	assert.Equal(t, 10000, s.PollingMilliseconds)
	assert.Equal(t, 288, s.MaxEntries)
	assert.Equal(t, "time.example.org", s.NTPServer)
	assert.Equal(t, 2, s.GMTOffset)
	assert.Equal(t, 12.0, s.MinTOn)
	assert.Equal(t, 8.0, s.DeltaTOn)
	assert.Equal(t, 2.0, s.DeltaTOff)
	assert.Equal(t, 8, s.Oversample)
}

func TestRefresh_MissingFieldKeepsPreviousValue(t *testing.T) {
	obj := fullConfigObject()
	delete(obj, "ntpServer")

	m := NewMock()
	m.Objects[ConfigPath] = obj

	s := Defaults()
	ok := s.Refresh(m, NopIndicator{})

	// The refresh as a whole is reported stale...
	assert.False(t, ok)
	// ...the missing field keeps its last-known-good value...
	assert.Equal(t, "pool.ntp.org", s.NTPServer)
	// ...and the other eleven still updated.
	assert.Equal(t, 8000.0, s.SeriesResistor)
	assert.Equal(t, 9000.0, s.ResistanceAt0)
	assert.Equal(t, 24.0, s.TemperatureAt0)
	assert.Equal(t, 3400.0, s.BCoefficient)
	assert.Equal(t, 10000, s.PollingMilliseconds)
	assert.Equal(t, 288, s.MaxEntries)
	assert.Equal(t, 2, s.GMTOffset)
	assert.Equal(t, 12.0, s.MinTOn)
	assert.Equal(t, 8.0, s.DeltaTOn)
	assert.Equal(t, 2.0, s.DeltaTOff)
	assert.Equal(t, 8, s.Oversample)
}

func TestRefresh_MistypedFieldKeepsPreviousValue(t *testing.T) {
	obj := fullConfigObject()
	obj["maxEntries"] = "lots"

	m := NewMock()
	m.Objects[ConfigPath] = obj

	s := Defaults()
	ok := s.Refresh(m, NopIndicator{})

	assert.False(t, ok)
	assert.Equal(t, 0, s.MaxEntries)
	assert.Equal(t, 8, s.Oversample) // later fields still applied
}

func TestRefresh_FetchFailureTouchesNothing(t *testing.T) {
	m := NewMock()
	m.GetErrs[ConfigPath] = errors.New("connection reset")

	s := Defaults()
	ok := s.Refresh(m, NopIndicator{})

	assert.False(t, ok)
	assert.Equal(t, Defaults(), s)
}

func TestRefresh_IndicatorSignals(t *testing.T) {
	m := NewMock()
	m.Objects[ConfigPath] = fullConfigObject()

	ind := &spyIndicator{}
	s := Defaults()
	s.Refresh(m, ind)

	require.Len(t, ind.blinks, 1)
	assert.Equal(t, 25*time.Millisecond, ind.blinks[0])
	require.Len(t, ind.steady, 1)
	assert.True(t, ind.steady[0])
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.MaxEntries = 288

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "valid", mutate: func(s *Settings) {}, wantErr: ""},
		{name: "zero capacity", mutate: func(s *Settings) { s.MaxEntries = 0 }, wantErr: "maxEntries"},
		{name: "negative capacity", mutate: func(s *Settings) { s.MaxEntries = -3 }, wantErr: "maxEntries"},
		{name: "zero polling", mutate: func(s *Settings) { s.PollingMilliseconds = 0 }, wantErr: "pollingMilliseconds"},
		{name: "zero oversample", mutate: func(s *Settings) { s.Oversample = 0 }, wantErr: "oversample"},
		{name: "gmt offset too low", mutate: func(s *Settings) { s.GMTOffset = -12 }, wantErr: "gmtOffset"},
		{name: "gmt offset too high", mutate: func(s *Settings) { s.GMTOffset = 14 }, wantErr: "gmtOffset"},
		{name: "zero series resistor", mutate: func(s *Settings) { s.SeriesResistor = 0 }, wantErr: "seriesResistor"},
		{name: "zero reference resistance", mutate: func(s *Settings) { s.ResistanceAt0 = 0 }, wantErr: "resistanceAt0"},
		{name: "zero b coefficient", mutate: func(s *Settings) { s.BCoefficient = 0 }, wantErr: "bCoefficient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestPollingInterval(t *testing.T) {
	s := Settings{PollingMilliseconds: 5000}
	assert.Equal(t, 5*time.Second, s.PollingInterval())
}
