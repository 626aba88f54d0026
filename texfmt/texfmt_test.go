package texfmt_test

import (
	"testing"

	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/pixel"
	"github.com/gxmkit/texarsenal/swizzle"
	"github.com/gxmkit/texarsenal/texfmt"
	"github.com/stretchr/testify/require"
)

var compressedFormats = []gxm.TextureFormat{
	gxm.FormatPVRT2BPPABGR,
	gxm.FormatPVRT2BPP1BGR,
	gxm.FormatPVRT4BPPABGR,
	gxm.FormatPVRT4BPP1BGR,
	gxm.FormatPVRTII2BPPABGR,
	gxm.FormatPVRTII4BPPABGR,
	gxm.FormatUBC1ABGR,
	gxm.FormatUBC11BGR,
	gxm.FormatUBC3ABGR,
}

func TestBytesPerPixel(t *testing.T) {
	require.Equal(t, 4, texfmt.BytesPerPixel(gxm.FormatU8U8U8U8ABGR))
	require.Equal(t, 3, texfmt.BytesPerPixel(gxm.FormatU8U8U8BGR))
	require.Equal(t, 2, texfmt.BytesPerPixel(gxm.FormatU5U6U5BGR))
	require.Equal(t, 2, texfmt.BytesPerPixel(gxm.FormatU8U8GRRR))
	require.Equal(t, 1, texfmt.BytesPerPixel(gxm.FormatP8ABGR))
	require.Equal(t, 1, texfmt.BytesPerPixel(gxm.FormatU81RRR))
	require.Equal(t, 4, texfmt.BytesPerPixel(gxm.TextureFormat(gxm.BaseFormatF32)))
	require.Equal(t, 4, texfmt.BytesPerPixel(gxm.TextureFormat(0x1f000000)))
}

func TestAlignment(t *testing.T) {
	require.Equal(t, 16, texfmt.Alignment(gxm.FormatUBC3ABGR))
	require.Equal(t, 8, texfmt.Alignment(gxm.FormatUBC1ABGR))
	require.Equal(t, 8, texfmt.Alignment(gxm.FormatU8U8U8U8ABGR))
	require.True(t, texfmt.HasAlphaBlocks(gxm.FormatUBC3ABGR))
	require.False(t, texfmt.HasAlphaBlocks(gxm.FormatUBC11BGR))
}

func TestFormatClasses(t *testing.T) {
	for _, format := range compressedFormats {
		require.True(t, texfmt.IsCompressed(format), format.String())
		require.False(t, texfmt.IsPaletted(format), format.String())
	}

	require.False(t, texfmt.IsCompressed(gxm.FormatU8U8U8U8ABGR))
	require.True(t, texfmt.IsPaletted(gxm.FormatP8ABGR))
}

func TestLevelSize(t *testing.T) {
	testCases := []struct {
		format   gxm.TextureFormat
		width    int
		height   int
		expected int
	}{
		{gxm.FormatPVRT2BPPABGR, 16, 16, 64},
		{gxm.FormatPVRT2BPP1BGR, 2, 2, 16},
		{gxm.FormatPVRT4BPPABGR, 16, 16, 128},
		{gxm.FormatPVRT4BPP1BGR, 4, 16, 64},
		{gxm.FormatPVRTII2BPPABGR, 16, 16, 64},
		{gxm.FormatPVRTII2BPPABGR, 12, 6, 32},
		{gxm.FormatPVRTII4BPPABGR, 16, 16, 128},
		{gxm.FormatUBC1ABGR, 16, 16, 128},
		{gxm.FormatUBC1ABGR, 2, 2, 8},
		{gxm.FormatUBC11BGR, 6, 10, 48},
		{gxm.FormatUBC3ABGR, 16, 16, 256},
		{gxm.FormatUBC3ABGR, 1, 1, 16},
		{gxm.FormatU8U8U8U8ABGR, 16, 16, 0},
	}

	for _, testCase := range testCases {
		require.Equal(t, testCase.expected, texfmt.LevelSize(testCase.width, testCase.height, testCase.format),
			"%s %dx%d", testCase.format, testCase.width, testCase.height)
		require.Equal(t, testCase.expected, texfmt.ExpectedImageSize(testCase.width, testCase.height, testCase.format))
	}
}

func TestMipOffsetOfBaseLevel(t *testing.T) {
	for _, format := range compressedFormats {
		for _, side := range []int{1, 4, 8, 64, 256} {
			require.Zero(t, texfmt.MipOffset(0, side, side, format), "%s %d", format, side)
			require.Zero(t, texfmt.MipchainSize(-1, side, side, format))
			require.NotZero(t, texfmt.MipchainSize(0, side, side, format))
		}
	}
}

func TestMipchain(t *testing.T) {
	// Level 1 of a 16x16 BC1 chain is 8x8
	require.Equal(t, 32+128, texfmt.MipchainSize(1, 8, 8, gxm.FormatUBC1ABGR))
	require.Equal(t, 128, texfmt.MipOffset(1, 8, 8, gxm.FormatUBC1ABGR))
	require.Equal(t, 128+32, texfmt.MipOffset(2, 4, 4, gxm.FormatUBC1ABGR))

	for level := 1; level < 5; level++ {
		w, h := texfmt.MipDimensions(level, 64, 32)
		offset := texfmt.MipOffset(level, w, h, gxm.FormatUBC3ABGR)
		pw, ph := texfmt.MipDimensions(level-1, 64, 32)
		previous := texfmt.MipOffset(level-1, pw, ph, gxm.FormatUBC3ABGR)
		require.Equal(t, texfmt.LevelSize(pw, ph, gxm.FormatUBC3ABGR), offset-previous, "level %d", level)
	}
}

func TestMipDimensions(t *testing.T) {
	w, h := texfmt.MipDimensions(2, 100, 60)
	require.Equal(t, 25, w)
	require.Equal(t, 15, h)

	w, h = texfmt.MipDimensions(0, 7, 3)
	require.Equal(t, 7, w)
	require.Equal(t, 3, h)

	w, h = texfmt.PaddedDimensions(100, 64)
	require.Equal(t, 128, w)
	require.Equal(t, 64, h)
}

func TestLinearLayout(t *testing.T) {
	require.Equal(t, 32, texfmt.LinearStride(4, gxm.FormatU8U8U8U8ABGR))
	require.Equal(t, 48, texfmt.LinearStride(9, gxm.FormatU8U8U8BGR))
	require.Equal(t, 128, texfmt.LinearImageSize(4, 4, gxm.FormatU8U8U8U8ABGR))

	require.Equal(t, []int{256, 128, 64}, texfmt.LinearChainLevels(8, 8, -1, gxm.FormatU8U8U8U8ABGR))
	require.Equal(t, []int{96, 48}, texfmt.LinearChainLevels(5, 3, 2, gxm.FormatU8U8U8BGR))
	require.Empty(t, texfmt.LinearChainLevels(1, 64, -1, gxm.FormatU8U8U8U8ABGR))
}

func TestCompressedChainLevels(t *testing.T) {
	require.Equal(t, []int{512, 128}, texfmt.CompressedChainLevels(32, 32, gxm.FormatUBC1ABGR))
	require.Equal(t, []int{4096}, texfmt.CompressedChainLevels(64, 48, gxm.FormatUBC3ABGR))
	require.Equal(t, []int{2048, 512, 128}, texfmt.CompressedChainLevels(64, 64, gxm.FormatUBC1ABGR))
}

func TestBlockVariantOf(t *testing.T) {
	variant, ok := texfmt.BlockVariantOf(gxm.FormatUBC3ABGR)
	require.True(t, ok)
	require.Equal(t, swizzle.VariantBC3, variant)

	variant, ok = texfmt.BlockVariantOf(gxm.FormatPVRTII2BPPABGR)
	require.True(t, ok)
	require.Equal(t, swizzle.VariantPVRTII2BPP, variant)

	variant, ok = texfmt.BlockVariantOf(gxm.FormatUBC11BGR)
	require.True(t, ok)
	require.Equal(t, swizzle.VariantBC1, variant)

	_, ok = texfmt.BlockVariantOf(gxm.FormatPVRT4BPPABGR)
	require.False(t, ok)
}

func TestFormatMappings(t *testing.T) {
	pixelFormat, err := texfmt.PixelFormatOf(gxm.FormatU8U8U8U8ABGR)
	require.NoError(t, err)
	require.Equal(t, pixel.RGBA8, pixelFormat)

	_, err = texfmt.PixelFormatOf(gxm.FormatUBC1ABGR)
	require.ErrorIs(t, err, texfmt.ErrUnsupportedFormat)

	transferFormat, err := texfmt.TransferFormatOf(gxm.FormatU8U8U8RGB)
	require.NoError(t, err)
	require.Equal(t, gxm.TransferFormatU8U8U8BGR, transferFormat)

	_, err = texfmt.TransferFormatOf(gxm.FormatP8ABGR)
	require.ErrorIs(t, err, texfmt.ErrUnsupportedFormat)
}
