// Package texfmt holds the pure sizing and layout arithmetic for texture formats: bytes per
// pixel, row strides, and the size and offset of every level of a mip chain.
package texfmt

import (
	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/memutils"
	"github.com/gxmkit/texarsenal/pixel"
	"github.com/gxmkit/texarsenal/swizzle"
)

// ErrUnsupportedFormat is returned when a format has no mapping for the requested purpose
var ErrUnsupportedFormat = errors.New("unsupported texture format")

// BytesPerPixel returns the storage size of one texel of an uncompressed format. Unknown
// formats are treated as 4 bytes per texel.
func BytesPerPixel(format gxm.TextureFormat) int {
	switch format.Base() {
	case gxm.BaseFormatU8, gxm.BaseFormatS8, gxm.BaseFormatP8:
		return 1
	case gxm.BaseFormatU4U4U4U4, gxm.BaseFormatU8U3U3U2, gxm.BaseFormatU1U5U5U5,
		gxm.BaseFormatU5U6U5, gxm.BaseFormatS5S5U6, gxm.BaseFormatU8U8, gxm.BaseFormatS8S8:
		return 2
	case gxm.BaseFormatU8U8U8, gxm.BaseFormatS8S8S8:
		return 3
	default:
		return 4
	}
}

// Alignment returns the byte alignment the format's storage requires
func Alignment(format gxm.TextureFormat) int {
	if format.Base() == gxm.BaseFormatUBC3 {
		return 16
	}
	return 8
}

// IsCompressed returns true for block-compressed formats
func IsCompressed(format gxm.TextureFormat) bool {
	switch format.Base() {
	case gxm.BaseFormatPVRT2BPP, gxm.BaseFormatPVRT4BPP, gxm.BaseFormatPVRTII2BPP, gxm.BaseFormatPVRTII4BPP,
		gxm.BaseFormatUBC1, gxm.BaseFormatUBC2, gxm.BaseFormatUBC3:
		return true
	default:
		return false
	}
}

// IsPaletted returns true for formats whose texels index into a palette
func IsPaletted(format gxm.TextureFormat) bool {
	base := format.Base()
	return base == gxm.BaseFormatP8 || base == gxm.BaseFormatP4
}

// HasAlphaBlocks returns true for compressed formats whose blocks carry interpolated alpha
func HasAlphaBlocks(format gxm.TextureFormat) bool {
	return Alignment(format) == 16
}

// BlockVariantOf returns how pre-compressed blocks of format are laid out when swizzled.
// It returns false for formats that are copied flat without swizzling.
func BlockVariantOf(format gxm.TextureFormat) (swizzle.Variant, bool) {
	switch format.Base() {
	case gxm.BaseFormatPVRT2BPP, gxm.BaseFormatPVRT4BPP:
		return 0, false
	case gxm.BaseFormatUBC3:
		return swizzle.VariantBC3, true
	case gxm.BaseFormatPVRTII2BPP:
		return swizzle.VariantPVRTII2BPP, true
	default:
		return swizzle.VariantBC1, true
	}
}

// LevelSize returns the number of bytes one width x height level of a compressed format
// occupies, or 0 for formats that are not compressed
func LevelSize(width, height int, format gxm.TextureFormat) int {
	switch format.Base() {
	case gxm.BaseFormatPVRT2BPP:
		return memutils.CeilDiv(max(width, 8)*max(height, 8)*2, 8)
	case gxm.BaseFormatPVRT4BPP:
		return memutils.CeilDiv(max(width, 8)*max(height, 8)*4, 8)
	case gxm.BaseFormatPVRTII2BPP:
		return memutils.CeilDiv(width, 8) * memutils.CeilDiv(height, 4) * 8
	case gxm.BaseFormatPVRTII4BPP, gxm.BaseFormatUBC1:
		return memutils.CeilDiv(width, 4) * memutils.CeilDiv(height, 4) * 8
	case gxm.BaseFormatUBC3:
		return memutils.CeilDiv(width, 4) * memutils.CeilDiv(height, 4) * 16
	default:
		return 0
	}
}

// ExpectedImageSize returns the number of bytes a caller must supply to upload one
// width x height level of pre-compressed data
func ExpectedImageSize(width, height int, format gxm.TextureFormat) int {
	return LevelSize(width, height, format)
}

// MipchainSize returns the total size of levels 0 through level of a compressed chain,
// where width x height are the dimensions of level. Dimensions double toward level 0.
// A negative level yields 0.
func MipchainSize(level, width, height int, format gxm.TextureFormat) int {
	size := 0
	for current := level; current >= 0; current-- {
		size += LevelSize(width, height, format)
		width *= 2
		height *= 2
	}
	return size
}

// MipOffset returns the byte offset at which level begins within a compressed chain, where
// width x height are the dimensions of level
func MipOffset(level, width, height int, format gxm.TextureFormat) int {
	return MipchainSize(level-1, width*2, height*2, format)
}

// MipDimensions halves baseWidth x baseHeight level times
func MipDimensions(level, baseWidth, baseHeight int) (int, int) {
	width, height := baseWidth, baseHeight
	for current := 0; current < level; current++ {
		width /= 2
		height /= 2
	}
	return width, height
}

// PaddedDimensions rounds both dimensions up to the next power of two
func PaddedDimensions(width, height int) (int, int) {
	return int(memutils.NearestPow2(uint32(width))), int(memutils.NearestPow2(uint32(height)))
}

// LinearStride returns the row pitch, in bytes, of a linear texture: the width rounded up to
// a multiple of 8 texels
func LinearStride(width int, format gxm.TextureFormat) int {
	return memutils.AlignUp(width, 8) * BytesPerPixel(format)
}

// LinearImageSize returns the size of a single-level linear texture
func LinearImageSize(width, height int, format gxm.TextureFormat) int {
	return LinearStride(width, format) * height
}

// LinearChainLevels returns the size of every level of a linear mip chain for a width x height
// base level. Sizes are computed over the power-of-two padded base with rows at least 8 texels
// wide. A negative levels builds the longest chain in which both dimensions of every level
// exceed one texel.
func LinearChainLevels(width, height, levels int, format gxm.TextureFormat) []int {
	w, h := PaddedDimensions(width, height)
	bpp := BytesPerPixel(format)

	var sizes []int
	for (levels < 0 && w > 1 && h > 1) || len(sizes) < levels {
		sizes = append(sizes, max(w, 8)*h*bpp)
		w /= 2
		h /= 2
	}
	return sizes
}

// CompressedChainLevels returns the size of every level of a compressed chain that can be
// generated by downscaling a width x height base, which must be a multiple of 16 in both
// dimensions. Levels continue while the downscaled dimensions remain multiples of 16.
func CompressedChainLevels(width, height int, format gxm.TextureFormat) []int {
	w, h := PaddedDimensions(width, height)

	var sizes []int
	for w > 1 && h > 1 {
		sizes = append(sizes, LevelSize(w, h, format))
		w /= 2
		h /= 2
		width /= 2
		height /= 2
		if width%16 != 0 || height%16 != 0 {
			break
		}
	}
	return sizes
}

var pixelFormats = map[gxm.TextureFormat]pixel.Format{
	gxm.FormatU8U8U8U8ABGR: pixel.RGBA8,
	gxm.FormatU8U8U8U8ARGB: pixel.BGRA8,
	gxm.FormatU8U8U8BGR:    pixel.RGB8,
	gxm.FormatU8U8U8RGB:    pixel.BGR8,
	gxm.FormatU4U4U4U4ABGR: pixel.RGBA4444,
	gxm.FormatU1U5U5U5ABGR: pixel.RGBA5551,
	gxm.FormatU5U6U5BGR:    pixel.RGB565,
	gxm.FormatU81RRR:       pixel.L8,
	gxm.FormatU8R000:       pixel.A8,
	gxm.FormatU8U8GRRR:     pixel.LA8,
	// Palette indices are stored one byte per texel
	gxm.FormatP8ABGR: pixel.L8,
}

// PixelFormatOf returns the pixel encoding texels of an uncompressed format are stored in
func PixelFormatOf(format gxm.TextureFormat) (pixel.Format, error) {
	pixelFormat, ok := pixelFormats[format]
	if !ok {
		return pixel.Undefined, errors.Wrapf(ErrUnsupportedFormat, "no pixel encoding for %s", format)
	}
	return pixelFormat, nil
}

// TransferFormatOf returns the transfer unit format used to downscale texels of format
func TransferFormatOf(format gxm.TextureFormat) (gxm.TransferFormat, error) {
	switch format.Base() {
	case gxm.BaseFormatU8U8U8U8:
		return gxm.TransferFormatU8U8U8U8ABGR, nil
	case gxm.BaseFormatU8U8U8:
		return gxm.TransferFormatU8U8U8BGR, nil
	case gxm.BaseFormatU4U4U4U4:
		return gxm.TransferFormatU4U4U4U4ABGR, nil
	case gxm.BaseFormatU1U5U5U5:
		return gxm.TransferFormatU1U5U5U5ABGR, nil
	case gxm.BaseFormatU5U6U5:
		return gxm.TransferFormatU5U6U5BGR, nil
	case gxm.BaseFormatU8:
		return gxm.TransferFormatU8R, nil
	case gxm.BaseFormatU8U8:
		return gxm.TransferFormatU8U8GR, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedFormat, "%s cannot be downscaled by the transfer unit", format)
	}
}
