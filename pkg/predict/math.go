package predict

import (
	"math"
	"strings"
)

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// toConfidence truncates a raw score toward zero and clamps it to 0..100
func toConfidence(raw float64) int {
	if math.IsNaN(raw) {
		return 0
	}
	c := math.Trunc(raw)
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return int(c)
}

// lineBelow returns the highest half-point line at least buffer under value,
// e.g. 235 with 7.5 gives 227.5 and 110.9 with 4.5 gives 105.5
func lineBelow(value, buffer float64) float64 {
	return math.Floor(value-buffer-0.5) + 0.5
}

// lineAbove mirrors lineBelow, e.g. 205 with 7.5 gives 212.5
func lineAbove(value, buffer float64) float64 {
	return math.Ceil(value+buffer+0.5) - 0.5
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// pctOf returns part as a percentage of whole, 0 when whole is 0
func pctOf(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
