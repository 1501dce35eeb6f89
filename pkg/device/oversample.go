package device

import "fmt"

// Oversample reads n consecutive samples from the channel and returns their
// mean as a float64 ADC code. Averaging upstream of the temperature
// conversion smooths transient noise and makes the degenerate 0/1023 codes
// rare. n below 1 is treated as 1.
func Oversample(d Device, channel, n int) (float64, error) {
	if n < 1 {
		n = 1
	}

	var sum uint32
	for i := 0; i < n; i++ {
		code, err := d.ReadADC(channel)
		if err != nil {
			return 0, fmt.Errorf("oversample channel %d: %w", channel, err)
		}
		sum += uint32(code)
	}
	return float64(sum) / float64(n), nil
}
