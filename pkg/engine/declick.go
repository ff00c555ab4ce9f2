package engine

// scale multiplies s by num/den, truncating toward zero.
func scale(s int16, num, den int) int16 {
	return int16(int32(s) * int32(num) / int32(den))
}

// declick ramps the samples on both sides of every seam in dst. A sample d
// positions away from a seam is scaled by (d+1)/(w+1), so the samples next to
// the seam are always attenuated. The width w is at most width and never
// reaches past the frame edges or into the half of a segment that belongs to
// the neighbouring seam.
func declick(dst []int16, seams []int, width int) {
	if width <= 0 {
		return
	}
	for i, seam := range seams {
		left := seam
		if i > 0 {
			left = (seam - seams[i-1]) / 2
		}
		right := len(dst) - seam
		if i+1 < len(seams) {
			right = (seams[i+1] - seam) / 2
		}
		w := min(width, left, right)

		for d := 0; d < w; d++ {
			dst[seam-1-d] = scale(dst[seam-1-d], d+1, w+1)
			dst[seam+d] = scale(dst[seam+d], d+1, w+1)
		}
	}
}

// rampOut fades the last width samples of dst down toward the frame end.
func rampOut(dst []int16, width int) {
	w := min(width, len(dst))
	for d := 0; d < w; d++ {
		i := len(dst) - 1 - d
		dst[i] = scale(dst[i], d+1, w+1)
	}
}

// rampIn fades the first width samples of dst up from the frame start.
func rampIn(dst []int16, width int) {
	w := min(width, len(dst))
	for d := 0; d < w; d++ {
		dst[d] = scale(dst[d], d+1, w+1)
	}
}
