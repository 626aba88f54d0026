// Package dxt encodes 4x4 blocks of RGBA8 pixels as BC1 (DXT1) or BC3 (DXT5) and decodes
// them back. Color endpoints come from the principal axis of the block's colors and are
// refined by least squares; solid blocks use precomputed optimal endpoint pairs.
package dxt

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Quality selects how much work the encoder spends on each block
type Quality uint8

const (
	// Normal runs one endpoint refinement pass
	Normal Quality = iota
	// HighQuality runs a second refinement pass and keeps whichever result is closer
	HighQuality
)

func (q Quality) String() string {
	if q == HighQuality {
		return "HighQuality"
	}
	return "Normal"
}

// Compressor adapts CompressBlock to the gxm.BlockCompressor interface
type Compressor struct{}

func (Compressor) CompressBlock(dst []byte, block *[64]byte, alpha bool, highQuality bool) {
	quality := Normal
	if highQuality {
		quality = HighQuality
	}
	CompressBlock(dst, block, alpha, quality)
}

// BlockSize returns the encoded size of one block: 16 bytes with alpha, 8 without
func BlockSize(alpha bool) int {
	if alpha {
		return 16
	}
	return 8
}

var (
	tablesOnce sync.Once
	// optimal5 and optimal6 map an 8-bit channel value to the (c0, c1) endpoint pair whose
	// 2/3 interpolant comes closest to it
	optimal5 [256][2]uint8
	optimal6 [256][2]uint8
)

func buildTables() {
	var expand5 [32]int
	var expand6 [64]int
	for i := 0; i < 32; i++ {
		expand5[i] = (i << 3) | (i >> 2)
	}
	for i := 0; i < 64; i++ {
		expand6[i] = (i << 2) | (i >> 4)
	}

	prepareOptimalTable(&optimal5, expand5[:])
	prepareOptimalTable(&optimal6, expand6[:])
}

func prepareOptimalTable(table *[256][2]uint8, expand []int) {
	for i := 0; i < 256; i++ {
		bestErr := math.MaxInt
		for mn := range expand {
			for mx := range expand {
				mine := expand[mn]
				maxe := expand[mx]
				err := abs(lerp13(maxe, mine) - i)
				// Interpolation is only required to be within 3% of exact, so penalize wide pairs
				err += abs(maxe-mine) * 3 / 100
				if err < bestErr {
					table[i] = [2]uint8{uint8(mx), uint8(mn)}
					bestErr = err
				}
			}
		}
	}
}

// CompressBlock encodes block, 16 RGBA8 pixels in row-major order, into dst. With alpha it
// writes a 16-byte BC3 block, otherwise an 8-byte BC1 block.
func CompressBlock(dst []byte, block *[64]byte, alpha bool, quality Quality) {
	tablesOnce.Do(buildTables)

	if alpha {
		compressAlphaBlock(dst[:8], block)
		dst = dst[8:]
	}

	refinements := 1
	if quality == HighQuality {
		refinements = 2
	}

	compressColorBlock(dst[:8], block, refinements)
}

func compressColorBlock(dst []byte, block *[64]byte, refinements int) {
	var max16, min16 uint16
	var mask uint32

	if isSolid(block) {
		r, g, b := block[0], block[1], block[2]
		mask = 0xaaaaaaaa
		max16 = uint16(optimal5[r][0])<<11 | uint16(optimal6[g][0])<<5 | uint16(optimal5[b][0])
		min16 = uint16(optimal5[r][1])<<11 | uint16(optimal6[g][1])<<5 | uint16(optimal5[b][1])
	} else {
		max16, min16 = principalEndpoints(block)
		mask = matchColors(block, max16, min16)
		bestErr := colorError(block, max16, min16, mask)

		for i := 0; i < refinements; i++ {
			lastMask := mask
			refMax, refMin := refineEndpoints(block, mask)
			if refMax == max16 && refMin == min16 {
				break
			}

			refMask := matchColors(block, refMax, refMin)
			refErr := colorError(block, refMax, refMin, refMask)
			if refErr > bestErr {
				break
			}

			max16, min16, mask, bestErr = refMax, refMin, refMask, refErr
			if mask == lastMask {
				break
			}
		}
	}

	if max16 < min16 {
		max16, min16 = min16, max16
		mask ^= 0x55555555
	}

	binary.LittleEndian.PutUint16(dst[0:], max16)
	binary.LittleEndian.PutUint16(dst[2:], min16)
	binary.LittleEndian.PutUint32(dst[4:], mask)
}

func isSolid(block *[64]byte) bool {
	for i := 4; i < 64; i += 4 {
		if block[i] != block[0] || block[i+1] != block[1] || block[i+2] != block[2] || block[i+3] != block[3] {
			return false
		}
	}
	return true
}

// principalEndpoints picks the two pixels at the extremes of the block's principal color axis
func principalEndpoints(block *[64]byte) (uint16, uint16) {
	var mu, mn, mx [3]int
	for ch := 0; ch < 3; ch++ {
		mn[ch], mx[ch] = 255, 0
		sum := 0
		for i := 0; i < 16; i++ {
			v := int(block[i*4+ch])
			sum += v
			mn[ch] = min(mn[ch], v)
			mx[ch] = max(mx[ch], v)
		}
		mu[ch] = (sum + 8) >> 4
	}

	var cov mgl64.Mat3
	for i := 0; i < 16; i++ {
		d := mgl64.Vec3{
			float64(int(block[i*4]) - mu[0]),
			float64(int(block[i*4+1]) - mu[1]),
			float64(int(block[i*4+2]) - mu[2]),
		}
		cov = cov.Add(outer(d))
	}
	cov = cov.Mul(1.0 / 255)

	// Power iteration from the bounding box diagonal
	v := mgl64.Vec3{float64(mx[0] - mn[0]), float64(mx[1] - mn[1]), float64(mx[2] - mn[2])}
	for iter := 0; iter < 4; iter++ {
		v = cov.Mul3x1(v)
	}

	var axis [3]int
	magnitude := math.Max(math.Abs(v.X()), math.Max(math.Abs(v.Y()), math.Abs(v.Z())))
	if magnitude < 4 {
		// Too little spread to trust the axis, fall back to luminance
		axis = [3]int{299, 587, 114}
	} else {
		v = v.Mul(512 / magnitude)
		axis = [3]int{int(v.X()), int(v.Y()), int(v.Z())}
	}

	minDot, maxDot := math.MaxInt, math.MinInt
	var minPixel, maxPixel int
	for i := 0; i < 16; i++ {
		dot := int(block[i*4])*axis[0] + int(block[i*4+1])*axis[1] + int(block[i*4+2])*axis[2]
		if dot < minDot {
			minDot = dot
			minPixel = i
		}
		if dot > maxDot {
			maxDot = dot
			maxPixel = i
		}
	}

	return to565(block[maxPixel*4:]), to565(block[minPixel*4:])
}

func outer(d mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3{
		d[0] * d[0], d[1] * d[0], d[2] * d[0],
		d[0] * d[1], d[1] * d[1], d[2] * d[1],
		d[0] * d[2], d[1] * d[2], d[2] * d[2],
	}
}

// refineEndpoints solves for the endpoint pair that best reproduces the block given its
// current palette indices
func refineEndpoints(block *[64]byte, mask uint32) (uint16, uint16) {
	// weight of c0, in thirds, for each palette index
	weights := [4]int{3, 0, 2, 1}

	if (mask ^ (mask << 2)) < 4 {
		// Every pixel uses the same index and the system is singular: match the average instead
		var sum [3]int
		for i := 0; i < 16; i++ {
			for ch := 0; ch < 3; ch++ {
				sum[ch] += int(block[i*4+ch])
			}
		}
		r, g, b := (sum[0]+8)>>4, (sum[1]+8)>>4, (sum[2]+8)>>4

		max16 := uint16(optimal5[r][0])<<11 | uint16(optimal6[g][0])<<5 | uint16(optimal5[b][0])
		min16 := uint16(optimal5[r][1])<<11 | uint16(optimal6[g][1])<<5 | uint16(optimal5[b][1])
		return max16, min16
	}

	var xx, yy, xy int
	var at1, at2 [3]int
	for i := 0; i < 16; i++ {
		index := (mask >> (2 * i)) & 3
		w1 := weights[index]
		w2 := 3 - w1

		xx += w1 * w1
		yy += w2 * w2
		xy += w1 * w2
		for ch := 0; ch < 3; ch++ {
			v := int(block[i*4+ch])
			at1[ch] += w1 * v
			at2[ch] += w2 * v
		}
	}

	det := float64(xx*yy - xy*xy)
	if det == 0 {
		return principalEndpoints(block)
	}

	frb := 3 * 31 / 255.0 / det
	fg := frb * 63 / 31

	solve := func(ch int, f float64, limit int) (int, int) {
		hi := clamp(int(float64(at1[ch]*yy-at2[ch]*xy)*f+0.5), 0, limit)
		lo := clamp(int(float64(at2[ch]*xx-at1[ch]*xy)*f+0.5), 0, limit)
		return hi, lo
	}

	rHi, rLo := solve(0, frb, 31)
	gHi, gLo := solve(1, fg, 63)
	bHi, bLo := solve(2, frb, 31)

	return uint16(rHi<<11 | gHi<<5 | bHi), uint16(rLo<<11 | gLo<<5 | bLo)
}

// palette expands a pair of endpoints into the four colors of a 4-color block
func palette(c0, c1 uint16) [4][3]int {
	var colors [4][3]int
	colors[0] = from565(c0)
	colors[1] = from565(c1)
	for ch := 0; ch < 3; ch++ {
		colors[2][ch] = lerp13(colors[0][ch], colors[1][ch])
		colors[3][ch] = lerp13(colors[1][ch], colors[0][ch])
	}
	return colors
}

func matchColors(block *[64]byte, max16, min16 uint16) uint32 {
	if max16 == min16 {
		return 0
	}

	colors := palette(max16, min16)
	var mask uint32
	for i := 0; i < 16; i++ {
		best, bestDist := 0, math.MaxInt
		for index, c := range colors {
			dist := colorDistance(block[i*4:], c)
			if dist < bestDist {
				best, bestDist = index, dist
			}
		}
		mask |= uint32(best) << (2 * i)
	}
	return mask
}

func colorError(block *[64]byte, max16, min16 uint16, mask uint32) int {
	colors := palette(max16, min16)
	total := 0
	for i := 0; i < 16; i++ {
		total += colorDistance(block[i*4:], colors[(mask>>(2*i))&3])
	}
	return total
}

func colorDistance(pixel []byte, c [3]int) int {
	dr := int(pixel[0]) - c[0]
	dg := int(pixel[1]) - c[1]
	db := int(pixel[2]) - c[2]
	return dr*dr + dg*dg + db*db
}

func compressAlphaBlock(dst []byte, block *[64]byte) {
	mn, mx := block[3], block[3]
	for i := 1; i < 16; i++ {
		a := block[i*4+3]
		mn = min(mn, a)
		mx = max(mx, a)
	}

	dst[0] = mx
	dst[1] = mn

	var bits uint64
	if mx != mn {
		alphas := alphaPalette(mx, mn)
		for i := 0; i < 16; i++ {
			a := int(block[i*4+3])
			best, bestDist := 0, math.MaxInt
			for index, candidate := range alphas {
				dist := abs(candidate - a)
				if dist < bestDist {
					best, bestDist = index, dist
				}
			}
			bits |= uint64(best) << (3 * i)
		}
	}

	for i := 0; i < 6; i++ {
		dst[2+i] = byte(bits >> (8 * i))
	}
}

// alphaPalette expands a pair of alpha endpoints into the eight alphas of a BC3 alpha block
func alphaPalette(a0, a1 uint8) [8]int {
	var alphas [8]int
	alphas[0], alphas[1] = int(a0), int(a1)
	if a0 > a1 {
		for i := 1; i < 7; i++ {
			alphas[i+1] = ((7-i)*int(a0) + i*int(a1)) / 7
		}
	} else {
		for i := 1; i < 5; i++ {
			alphas[i+1] = ((5-i)*int(a0) + i*int(a1)) / 5
		}
		alphas[6] = 0
		alphas[7] = 255
	}
	return alphas
}

func to565(pixel []byte) uint16 {
	return uint16(mul8Bit(int(pixel[0]), 31))<<11 | uint16(mul8Bit(int(pixel[1]), 63))<<5 | uint16(mul8Bit(int(pixel[2]), 31))
}

func from565(v uint16) [3]int {
	r := int(v>>11) & 0x1f
	g := int(v>>5) & 0x3f
	b := int(v) & 0x1f
	return [3]int{(r << 3) | (r >> 2), (g << 2) | (g >> 4), (b << 3) | (b >> 2)}
}

// mul8Bit returns a*b/255, rounded
func mul8Bit(a, b int) int {
	t := a*b + 128
	return (t + (t >> 8)) >> 8
}

func lerp13(a, b int) int {
	return (2*a + b) / 3
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
