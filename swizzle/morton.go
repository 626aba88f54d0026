// Package swizzle converts row-major compressed blocks and RGBA pixels into the Morton
// (Z-order) block layout the hardware samples swizzled textures from.
package swizzle

// Morton1 gathers the even-position bits of d into the low half of the result
func Morton1(d uint64) uint64 {
	d &= 0x5555555555555555
	d = (d | (d >> 1)) & 0x3333333333333333
	d = (d | (d >> 2)) & 0x0F0F0F0F0F0F0F0F
	d = (d | (d >> 4)) & 0x00FF00FF00FF00FF
	d = (d | (d >> 8)) & 0x0000FFFF0000FFFF
	d = (d | (d >> 16)) & 0x00000000FFFFFFFF
	return d
}

// Decode de-interleaves a Morton index: the even bits of d form x and the odd bits form y
func Decode(d uint64) (x, y uint64) {
	return Morton1(d), Morton1(d >> 1)
}

// Encode interleaves x into the even bits and y into the odd bits of a Morton index
func Encode(x, y uint64) uint64 {
	return spread(x) | spread(y)<<1
}

func spread(v uint64) uint64 {
	v &= 0x00000000FFFFFFFF
	v = (v | (v << 16)) & 0x0000FFFF0000FFFF
	v = (v | (v << 8)) & 0x00FF00FF00FF00FF
	v = (v | (v << 4)) & 0x0F0F0F0F0F0F0F0F
	v = (v | (v << 2)) & 0x3333333333333333
	v = (v | (v << 1)) & 0x5555555555555555
	return v
}
