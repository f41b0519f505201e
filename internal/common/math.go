package common

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampByte limits v to a color channel.
func ClampByte(v int) uint8 {
	return uint8(Clamp(v, 0, 255))
}
