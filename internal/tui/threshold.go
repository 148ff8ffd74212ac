package tui

import (
	"math"
	"strconv"
)

// Threshold is a similarity threshold in tenths, so 6 means 0.6. Every
// constructor and edit clamps to [MinThreshold, MaxThreshold].
type Threshold int

const (
	MinThreshold     Threshold = 1
	MaxThreshold     Threshold = 10
	DefaultThreshold Threshold = 6
)

// ThresholdFromFloat rounds f to the nearest tenth and clamps it. NaN maps
// to DefaultThreshold.
func ThresholdFromFloat(f float64) Threshold {
	switch {
	case math.IsNaN(f):
		return DefaultThreshold
	case f <= MinThreshold.Float():
		return MinThreshold
	case f >= MaxThreshold.Float():
		return MaxThreshold
	}
	return clampThreshold(int(math.Round(f * 10)))
}

func clampThreshold(n int) Threshold {
	if n < int(MinThreshold) {
		return MinThreshold
	}
	if n > int(MaxThreshold) {
		return MaxThreshold
	}
	return Threshold(n)
}

// Step moves the threshold by delta tenths.
func (t Threshold) Step(delta int) Threshold {
	return clampThreshold(int(t) + delta)
}

func (t Threshold) Float() float64 {
	return float64(clampThreshold(int(t))) / 10
}

func (t Threshold) String() string {
	return strconv.FormatFloat(t.Float(), 'f', 1, 64)
}
