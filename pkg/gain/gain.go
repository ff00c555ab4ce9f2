// Package gain implements fixed-point (Q15) amplitude scaling for 16-bit PCM.
package gain

import "math"

// FracBits is the number of fractional bits in a Q15 value.
const FracBits = 15

// Q15 is a linear amplitude multiplier scaled by 1<<FracBits.
type Q15 int32

const (
	// Unity is exactly 1.0, so multiplying by it is lossless.
	Unity Q15 = 1 << FracBits
	// Max is the largest gain FromDecibels will produce, a little under +18 dB.
	Max Q15 = 1<<18 - 1
	// Min is silence. Negative gains are not representable.
	Min Q15 = 0
)

// FromDecibels converts a decibel trim into a Q15 multiplier,
// round(10^(db/20) * Unity), clamped to [Min, Max].
func FromDecibels(db float64) Q15 {
	if math.IsNaN(db) {
		return Unity
	}
	q := math.Round(math.Pow(10, db/20) * float64(Unity))
	if q < float64(Min) {
		return Min
	}
	if q > float64(Max) {
		return Max
	}
	return Q15(q)
}

// Decibels returns the trim that g represents. Min maps to -Inf.
func (g Q15) Decibels() float64 {
	return 20 * math.Log10(float64(g)/float64(Unity))
}

// Mul multiplies s by g with an arithmetic right shift and clamps the result
// to the int16 range.
func Mul(s int16, g Q15) int16 {
	t := (int64(s) * int64(g)) >> FracBits
	if t > math.MaxInt16 {
		return math.MaxInt16
	}
	if t < math.MinInt16 {
		return math.MinInt16
	}
	return int16(t)
}

// Apply scales every sample of buf by g in place.
func Apply(buf []int16, g Q15) {
	if g == Unity {
		return
	}
	for i, s := range buf {
		buf[i] = Mul(s, g)
	}
}
