// Package domain holds the threshold preference contract
package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	// KeyThreshold is the persisted preference key
	KeyThreshold = "threshold"
	// DefaultThreshold applies when nothing usable is stored
	DefaultThreshold = 50
	// MinThreshold and MaxThreshold bound the slider
	MinThreshold = 0
	MaxThreshold = 100
)

// Threshold is the wire shape for GET and PUT /prefs/threshold
type Threshold struct {
	Threshold *int `json:"threshold" validate:"required,min=0,max=100" example:"50"`
}

// Clamp bounds v into the slider range
func Clamp(v int) int {
	if v < MinThreshold {
		return MinThreshold
	}
	if v > MaxThreshold {
		return MaxThreshold
	}
	return v
}

// ParseThreshold decodes a stored value
// non numeric input yields DefaultThreshold, fractions round, out of range clamps
func ParseThreshold(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) {
		return DefaultThreshold
	}
	if math.IsInf(f, 1) {
		return MaxThreshold
	}
	if math.IsInf(f, -1) {
		return MinThreshold
	}
	f = math.Round(f)
	if f < MinThreshold {
		return MinThreshold
	}
	if f > MaxThreshold {
		return MaxThreshold
	}
	return int(f)
}

// FormatThreshold encodes v the way it is stored
func FormatThreshold(v int) string { return strconv.Itoa(Clamp(v)) }
