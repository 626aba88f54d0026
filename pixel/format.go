// Package pixel defines the uncompressed pixel encodings textures are uploaded in and
// stored as, and a table of transcoders between them.
package pixel

import (
	"encoding/binary"
	"image/color"
)

// Format is an uncompressed pixel encoding
type Format uint8

const (
	Undefined Format = iota
	// RGBA8 stores bytes R, G, B, A
	RGBA8
	// BGRA8 stores bytes B, G, R, A
	BGRA8
	// RGB8 stores bytes R, G, B
	RGB8
	// BGR8 stores bytes B, G, R
	BGR8
	// RGBA4444 is a little-endian uint16 with R in bits 0-3, G 4-7, B 8-11, A 12-15
	RGBA4444
	// RGBA5551 is a little-endian uint16 with R in bits 0-4, G 5-9, B 10-14, A in bit 15
	RGBA5551
	// RGB565 is a little-endian uint16 with R in bits 0-4, G 5-10, B 11-15
	RGB565
	// L8 is a single luminance byte
	L8
	// A8 is a single alpha byte
	A8
	// LA8 stores bytes L, A
	LA8
	// Precompressed marks data that is already encoded as hardware compressed blocks
	Precompressed

	formatCount
)

type codec struct {
	name   string
	size   int
	decode func(src []byte) color.NRGBA
	encode func(dst []byte, c color.NRGBA)
}

var codecs = [formatCount]codec{
	Undefined:     {name: "Undefined"},
	Precompressed: {name: "Precompressed"},
	RGBA8: {
		name: "RGBA8", size: 4,
		decode: func(src []byte) color.NRGBA { return color.NRGBA{R: src[0], G: src[1], B: src[2], A: src[3]} },
		encode: func(dst []byte, c color.NRGBA) { dst[0], dst[1], dst[2], dst[3] = c.R, c.G, c.B, c.A },
	},
	BGRA8: {
		name: "BGRA8", size: 4,
		decode: func(src []byte) color.NRGBA { return color.NRGBA{R: src[2], G: src[1], B: src[0], A: src[3]} },
		encode: func(dst []byte, c color.NRGBA) { dst[0], dst[1], dst[2], dst[3] = c.B, c.G, c.R, c.A },
	},
	RGB8: {
		name: "RGB8", size: 3,
		decode: func(src []byte) color.NRGBA { return color.NRGBA{R: src[0], G: src[1], B: src[2], A: 0xff} },
		encode: func(dst []byte, c color.NRGBA) { dst[0], dst[1], dst[2] = c.R, c.G, c.B },
	},
	BGR8: {
		name: "BGR8", size: 3,
		decode: func(src []byte) color.NRGBA { return color.NRGBA{R: src[2], G: src[1], B: src[0], A: 0xff} },
		encode: func(dst []byte, c color.NRGBA) { dst[0], dst[1], dst[2] = c.B, c.G, c.R },
	},
	RGBA4444: {
		name: "RGBA4444", size: 2,
		decode: func(src []byte) color.NRGBA {
			v := binary.LittleEndian.Uint16(src)
			return color.NRGBA{
				R: expand4(v), G: expand4(v >> 4), B: expand4(v >> 8), A: expand4(v >> 12),
			}
		},
		encode: func(dst []byte, c color.NRGBA) {
			v := uint16(c.R>>4) | uint16(c.G>>4)<<4 | uint16(c.B>>4)<<8 | uint16(c.A>>4)<<12
			binary.LittleEndian.PutUint16(dst, v)
		},
	},
	RGBA5551: {
		name: "RGBA5551", size: 2,
		decode: func(src []byte) color.NRGBA {
			v := binary.LittleEndian.Uint16(src)
			return color.NRGBA{
				R: expand5(v), G: expand5(v >> 5), B: expand5(v >> 10), A: uint8(v>>15) * 0xff,
			}
		},
		encode: func(dst []byte, c color.NRGBA) {
			v := uint16(c.R>>3) | uint16(c.G>>3)<<5 | uint16(c.B>>3)<<10 | uint16(c.A>>7)<<15
			binary.LittleEndian.PutUint16(dst, v)
		},
	},
	RGB565: {
		name: "RGB565", size: 2,
		decode: func(src []byte) color.NRGBA {
			v := binary.LittleEndian.Uint16(src)
			return color.NRGBA{R: expand5(v), G: expand6(v >> 5), B: expand5(v >> 11), A: 0xff}
		},
		encode: func(dst []byte, c color.NRGBA) {
			binary.LittleEndian.PutUint16(dst, uint16(c.R>>3)|uint16(c.G>>2)<<5|uint16(c.B>>3)<<11)
		},
	},
	L8: {
		name: "L8", size: 1,
		decode: func(src []byte) color.NRGBA { return color.NRGBA{R: src[0], G: src[0], B: src[0], A: 0xff} },
		encode: func(dst []byte, c color.NRGBA) { dst[0] = c.R },
	},
	A8: {
		name: "A8", size: 1,
		decode: func(src []byte) color.NRGBA { return color.NRGBA{A: src[0]} },
		encode: func(dst []byte, c color.NRGBA) { dst[0] = c.A },
	},
	LA8: {
		name: "LA8", size: 2,
		decode: func(src []byte) color.NRGBA { return color.NRGBA{R: src[0], G: src[0], B: src[0], A: src[1]} },
		encode: func(dst []byte, c color.NRGBA) { dst[0], dst[1] = c.R, c.A },
	},
}

func (f Format) String() string {
	if f >= formatCount {
		return "Unknown"
	}
	return codecs[f].name
}

// BytesPerPixel returns the size of one pixel, or 0 for Undefined and Precompressed
func (f Format) BytesPerPixel() int {
	if f >= formatCount {
		return 0
	}
	return codecs[f].size
}

// IsEncodable returns true if pixels can be decoded from and encoded to this format
func (f Format) IsEncodable() bool {
	return f < formatCount && codecs[f].decode != nil
}

// Decode reads one pixel from src
func (f Format) Decode(src []byte) color.NRGBA {
	return codecs[f].decode(src)
}

// Encode writes one pixel into dst
func (f Format) Encode(dst []byte, c color.NRGBA) {
	codecs[f].encode(dst, c)
}

// ParseFormat returns the format with the provided name, as produced by Format.String
func ParseFormat(name string) (Format, bool) {
	for i := Format(0); i < formatCount; i++ {
		if codecs[i].name == name {
			return i, true
		}
	}
	return Undefined, false
}

func expand4(v uint16) uint8 {
	n := uint8(v & 0xf)
	return n<<4 | n
}

func expand5(v uint16) uint8 {
	n := uint8(v & 0x1f)
	return n<<3 | n>>2
}

func expand6(v uint16) uint8 {
	n := uint8(v & 0x3f)
	return n<<2 | n>>4
}
