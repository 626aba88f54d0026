package dxt

import "encoding/binary"

// DecodeBlock decodes one BC1 block (8 bytes) or, with alpha, one BC3 block (16 bytes) from
// src into 16 row-major RGBA8 pixels
func DecodeBlock(dst *[64]byte, src []byte, alpha bool) {
	if alpha {
		alphas := alphaPalette(src[0], src[1])
		var bits uint64
		for i := 0; i < 6; i++ {
			bits |= uint64(src[2+i]) << (8 * i)
		}
		for i := 0; i < 16; i++ {
			dst[i*4+3] = uint8(alphas[(bits>>(3*i))&7])
		}
		src = src[8:]
	}

	c0 := binary.LittleEndian.Uint16(src[0:])
	c1 := binary.LittleEndian.Uint16(src[2:])
	mask := binary.LittleEndian.Uint32(src[4:])

	colors := palette(c0, c1)
	colorAlpha := [4]uint8{255, 255, 255, 255}
	if !alpha && c0 <= c1 {
		// Three-color mode: index 2 is the midpoint and index 3 is transparent black
		for ch := 0; ch < 3; ch++ {
			colors[2][ch] = (colors[0][ch] + colors[1][ch]) / 2
			colors[3][ch] = 0
		}
		colorAlpha[3] = 0
	}

	for i := 0; i < 16; i++ {
		index := (mask >> (2 * i)) & 3
		dst[i*4] = uint8(colors[index][0])
		dst[i*4+1] = uint8(colors[index][1])
		dst[i*4+2] = uint8(colors[index][2])
		if !alpha {
			dst[i*4+3] = colorAlpha[index]
		}
	}
}
