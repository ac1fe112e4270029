package roll

import "math"

// Saturating arithmetic on the unsigned coordinates of the roll. None of these
// ever wrap around: results are pinned to the given bound instead.

func clampAdd(a, b, max uint32) uint32 {
	if b > max || a > max-b {
		return max
	}
	return a + b
}

func clampSub(a, b, min uint32) uint32 {
	if b > a || a-b < min {
		return min
	}
	return a - b
}

func clampMul(a, b, max uint32) uint32 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > max/b {
		return max
	}
	return a * b
}

func clamp(v, min, max uint32) uint32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// scaleStep splits increment*num/den into a whole part and a remainder over
// den. The product is computed in 64 bits and saturated.
func scaleStep(increment, num, den uint32) (whole, frac uint32) {
	p := uint64(increment) * uint64(num)
	w := p / uint64(den)
	if w > math.MaxUint32 {
		w = math.MaxUint32
	}
	return uint32(w), uint32(p % uint64(den))
}
