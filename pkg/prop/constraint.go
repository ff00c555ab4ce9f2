package prop

import (
	"math"
	"time"
)

// IntConstraint is an interface to represent integer value constraint.
type IntConstraint interface {
	Compare(int) (float64, bool)
}

// DurationConstraint is an interface to represent duration value constraint.
type DurationConstraint interface {
	Compare(time.Duration) (float64, bool)
}

// distance is the relative distance between a and ideal, in [0, 1].
func distance(a, ideal float64) float64 {
	if a == ideal {
		return 0
	}
	return math.Abs(a-ideal) / math.Max(math.Abs(a), math.Abs(ideal))
}

// ranged scores a against [min, max] with a preferred value. Zero bounds and
// a zero ideal are unset.
func ranged(a, min, max, ideal float64) (float64, bool) {
	if (min != 0 && a < min) || (max != 0 && a > max) {
		return 1.0, false
	}
	switch {
	case ideal == 0 || a == ideal:
		return 0.0, true
	case a < ideal:
		if min == 0 {
			return 0.0, true
		}
		return (ideal - a) / (ideal - min), true
	default:
		if max == 0 {
			return 0.0, true
		}
		return (a - ideal) / (max - ideal), true
	}
}

// Int prefers the value but accepts any other.
type Int int

func (i Int) Compare(a int) (float64, bool) {
	return distance(float64(a), float64(i)), true
}

// IntExact only accepts the value.
type IntExact int

func (i IntExact) Compare(a int) (float64, bool) {
	if int(i) == a {
		return 0.0, true
	}
	return 1.0, false
}

// IntOneOf accepts any of the listed values.
type IntOneOf []int

func (i IntOneOf) Compare(a int) (float64, bool) {
	for _, v := range i {
		if v == a {
			return 0.0, true
		}
	}
	return 1.0, false
}

// IntRanged accepts values within [Min, Max] and prefers Ideal.
type IntRanged struct {
	Min   int
	Max   int
	Ideal int
}

func (i IntRanged) Compare(a int) (float64, bool) {
	return ranged(float64(a), float64(i.Min), float64(i.Max), float64(i.Ideal))
}

// Duration prefers the value but accepts any other.
type Duration time.Duration

func (d Duration) Compare(a time.Duration) (float64, bool) {
	return distance(float64(a), float64(d)), true
}

// DurationRanged accepts durations within [Min, Max] and prefers Ideal.
type DurationRanged struct {
	Min   time.Duration
	Max   time.Duration
	Ideal time.Duration
}

func (d DurationRanged) Compare(a time.Duration) (float64, bool) {
	return ranged(float64(a), float64(d.Min), float64(d.Max), float64(d.Ideal))
}
