package stats

import (
	"math"
	"strings"
)

const sparkRamp = "▁▂▃▄▅▆▇█"

// MovingAverage computes a trailing mean over window values.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		count := i + 1
		if i >= window {
			sum -= values[i-window]
			count = window
		}
		out[i] = sum / float64(count)
	}
	return out
}

// Sparkline renders values on a fixed 0..100 scale as block characters.
func Sparkline(values []float64) string {
	ramp := []rune(sparkRamp)
	var b strings.Builder
	for _, v := range values {
		v = math.Max(0, math.Min(100, v))
		idx := int(math.Round(v / 100 * float64(len(ramp)-1)))
		b.WriteRune(ramp[idx])
	}
	return b.String()
}
