// Package control holds the engage/disengage decision logic for the solar
// collector. Pure functions over temperatures and thresholds: no I/O, no
// clocks, no state beyond what the caller passes in.
package control

// Thresholds are the hysteresis parameters, typically mirrored from the
// remote configuration.
type Thresholds struct {
	// MinTOn is the minimum absolute collector temperature to engage,
	// preventing circulation in near-freezing conditions.
	MinTOn float64

	// DeltaTOn is the collector-to-store differential required to engage.
	// Keep it well above DeltaTOff so the collector doesn't immediately
	// disengage once circulation starts pulling its temperature down.
	DeltaTOn float64

	// DeltaTOff is the differential below which an engaged collector
	// disengages.
	DeltaTOff float64
}

// Decide returns the next relay state given the current one and the two
// temperatures in Celsius. Engaging requires both the absolute minimum and
// the on-differential; once engaged, only falling below the off-differential
// releases.
func Decide(engaged bool, collectorC, storeC float64, th Thresholds) bool {
	delta := collectorC - storeC
	if engaged {
		return delta >= th.DeltaTOff
	}
	return collectorC >= th.MinTOn && delta >= th.DeltaTOn
}
