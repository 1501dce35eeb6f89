package thermistor

import (
	"fmt"
	"math"
)

const (
	// kelvinOffset is 0 degrees Celsius expressed in Kelvin.
	kelvinOffset = 273.15

	// adcFullScale is the full-scale code of the 10-bit ADC.
	adcFullScale = 1023.0
)

// Reading is the result of converting one raw ADC sample: the raw code, the
// thermistor resistance solved from the voltage divider, and the temperature
// from the B-parameter equation.
type Reading struct {
	ADC        float64 // Raw ADC code [0..1023]
	Resistance float64 // Thermistor resistance (Ohms)
	Celsius    float64 // Temperature (degrees Celsius)
}

// Fahrenheit returns the reading's temperature in degrees Fahrenheit.
func (r Reading) Fahrenheit() float64 {
	return r.Celsius*1.8 + 32.0
}

// String formats the reading for diagnostic output.
func (r Reading) String() string {
	return fmt.Sprintf("adc = %.0f r = %.1f C = %.2f F = %.2f", r.ADC, r.Resistance, r.Celsius, r.Fahrenheit())
}

// Model converts raw ADC samples to temperature. The thermistor is assumed to
// be installed as the lower leg (R2) of a resistive divider, so Ohm's law
// recovers its current resistance from the ADC code, and the B-parameter
// equation (simplified Steinhart-Hart) maps resistance to temperature.
//
// All four calibration constants are fixed at construction; replace the whole
// Model to recalibrate. A Model is never observable partially calibrated.
type Model struct {
	rs float64 // Series resistor in the divider (Ohms)
	r0 float64 // Thermistor resistance at the reference temperature (Ohms)
	t0 float64 // Reference temperature (Kelvin)
	b  float64 // B coefficient
}

// New builds a Model from the four calibration constants. temperatureAt0 is
// given in Celsius and stored internally in Kelvin.
func New(seriesResistor, resistanceAt0, temperatureAt0, bCoefficient float64) Model {
	return Model{
		rs: seriesResistor,
		r0: resistanceAt0,
		t0: temperatureAt0 + kelvinOffset,
		b:  bCoefficient,
	}
}

// Convert maps a raw ADC code to a Reading.
//
// Caller contract: adc must not be 0 (the full-scale ratio degenerates) and
// must not be 1023 (the divider denominator becomes zero and the resistance
// diverges). Neither edge is guarded here; the resulting IEEE Inf/NaN values
// propagate to the caller. Oversampling upstream makes exact 0/1023 rare.
func (m Model) Convert(adc float64) Reading {
	resistance := m.resistance(adc)
	return Reading{
		ADC:        adc,
		Resistance: resistance,
		Celsius:    m.celsius(resistance),
	}
}

// resistance solves the voltage divider for the thermistor leg.
func (m Model) resistance(adc float64) float64 {
	return m.rs / ((adcFullScale / adc) - 1.0)
}

// celsius applies the B-parameter equation:
//
//	1/T = ln(R/R0)/B + 1/T0
func (m Model) celsius(resistance float64) float64 {
	invT := math.Log(resistance/m.r0)/m.b + 1.0/m.t0
	return 1.0/invT - kelvinOffset
}
