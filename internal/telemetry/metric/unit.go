package metric

import "strings"

// Unit is the measurement unit of a metric attribute.
type Unit int

// Measurement units. Every unit belongs to exactly one base-unit family.
const (
	UnitNone Unit = iota
	UnitPercentage

	UnitBytes
	UnitKilobytes
	UnitMegabytes
	UnitGigabytes
	UnitTerabytes
	UnitPetabytes

	UnitBits
	UnitKilobits
	UnitMegabits
	UnitGigabits
	UnitTerabits
	UnitPetabits

	UnitNanoseconds
	UnitMicroseconds
	UnitMilliseconds
	UnitSeconds
	UnitMinutes
	UnitHours
	UnitDays
	UnitEpochMilliseconds
	UnitEpochSeconds

	UnitJiffies

	UnitCelsius
	UnitFahrenheit
	UnitKelvin
)

// Base unit names used as exported name suffixes.
const (
	BaseNone       = "none"
	BasePercent    = "percent"
	BaseBytes      = "bytes"
	BaseBits       = "bits"
	BaseSeconds    = "seconds"
	BaseJiffies    = "jiffies"
	BaseCelsius    = "celsius"
	BaseFahrenheit = "fahrenheit"
	BaseKelvin     = "kelvin"
)

type unitInfo struct {
	name   string
	base   string
	factor float64
}

var units = map[Unit]unitInfo{
	UnitNone:       {"none", BaseNone, 1},
	UnitPercentage: {"percentage", BasePercent, 1},

	UnitBytes:     {"bytes", BaseBytes, 1},
	UnitKilobytes: {"kilobytes", BaseBytes, 1 << 10},
	UnitMegabytes: {"megabytes", BaseBytes, 1 << 20},
	UnitGigabytes: {"gigabytes", BaseBytes, 1 << 30},
	UnitTerabytes: {"terabytes", BaseBytes, 1 << 40},
	UnitPetabytes: {"petabytes", BaseBytes, 1 << 50},

	UnitBits:     {"bits", BaseBits, 1},
	UnitKilobits: {"kilobits", BaseBits, 1e3},
	UnitMegabits: {"megabits", BaseBits, 1e6},
	UnitGigabits: {"gigabits", BaseBits, 1e9},
	UnitTerabits: {"terabits", BaseBits, 1e12},
	UnitPetabits: {"petabits", BaseBits, 1e15},

	UnitNanoseconds:       {"nanoseconds", BaseSeconds, 1e-9},
	UnitMicroseconds:      {"microseconds", BaseSeconds, 1e-6},
	UnitMilliseconds:      {"milliseconds", BaseSeconds, 1e-3},
	UnitSeconds:           {"seconds", BaseSeconds, 1},
	UnitMinutes:           {"minutes", BaseSeconds, 60},
	UnitHours:             {"hours", BaseSeconds, 3600},
	UnitDays:              {"days", BaseSeconds, 86400},
	UnitEpochMilliseconds: {"epoch-milliseconds", BaseSeconds, 1e-3},
	UnitEpochSeconds:      {"epoch-seconds", BaseSeconds, 1},

	UnitJiffies: {"jiffies", BaseJiffies, 1},

	// Temperatures are not converted into one another.
	UnitCelsius:    {"celsius", BaseCelsius, 1},
	UnitFahrenheit: {"fahrenheit", BaseFahrenheit, 1},
	UnitKelvin:     {"kelvin", BaseKelvin, 1},
}

// String returns the unit name as used in management descriptions.
func (u Unit) String() string {
	if info, ok := units[u]; ok {
		return info.name
	}
	return "none"
}

// BaseUnit returns the base unit name of the unit's family.
func (u Unit) BaseUnit() string {
	if info, ok := units[u]; ok {
		return info.base
	}
	return BaseNone
}

// ScaleToBase converts a value expressed in u to the base unit.
func (u Unit) ScaleToBase(v float64) float64 {
	info, ok := units[u]
	if !ok || info.factor == 1 {
		return v
	}
	return v * info.factor
}

// ParseUnit maps a unit name (case-insensitive) to a Unit.
func ParseUnit(s string) (Unit, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return UnitNone, true
	}
	for u, info := range units {
		if info.name == s {
			return u, true
		}
	}
	return UnitNone, false
}
