package pixel_test

import (
	"image/color"
	"testing"

	"github.com/gxmkit/texarsenal/pixel"
	"github.com/stretchr/testify/require"
)

func TestBytesPerPixel(t *testing.T) {
	require.Equal(t, 4, pixel.RGBA8.BytesPerPixel())
	require.Equal(t, 3, pixel.BGR8.BytesPerPixel())
	require.Equal(t, 2, pixel.RGB565.BytesPerPixel())
	require.Equal(t, 1, pixel.A8.BytesPerPixel())
	require.Equal(t, 0, pixel.Precompressed.BytesPerPixel())
	require.False(t, pixel.Precompressed.IsEncodable())
}

func TestParseFormat(t *testing.T) {
	format, ok := pixel.ParseFormat("RGBA5551")
	require.True(t, ok)
	require.Equal(t, pixel.RGBA5551, format)

	_, ok = pixel.ParseFormat("RGBA16F")
	require.False(t, ok)
}

func TestRGBToRGBA(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	dst := make([]byte, 8)

	require.NoError(t, pixel.Transcode(dst, pixel.RGBA8, src, pixel.RGB8, 2))
	require.Equal(t, []byte{1, 2, 3, 0xff, 4, 5, 6, 0xff}, dst)
}

func TestSwapRedBlue(t *testing.T) {
	src := []byte{10, 20, 30, 40}
	dst := make([]byte, 4)

	require.NoError(t, pixel.Transcode(dst, pixel.BGRA8, src, pixel.RGBA8, 1))
	require.Equal(t, []byte{30, 20, 10, 40}, dst)
}

func TestPackedFormatsPreserveRepresentableColors(t *testing.T) {
	// Every channel is a value each packed format can represent exactly
	c := color.NRGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}
	src := []byte{c.R, c.G, c.B, c.A}

	for _, format := range []pixel.Format{pixel.RGBA4444, pixel.RGBA5551, pixel.RGB565} {
		packed := make([]byte, format.BytesPerPixel())
		require.NoError(t, pixel.Transcode(packed, format, src, pixel.RGBA8, 1), format.String())

		back := make([]byte, 4)
		require.NoError(t, pixel.Transcode(back, pixel.RGBA8, packed, format, 1), format.String())
		require.Equal(t, src, back, format.String())
	}
}

func TestLuminanceAlpha(t *testing.T) {
	dst := make([]byte, 4)
	require.NoError(t, pixel.Transcode(dst, pixel.RGBA8, []byte{0x80, 0x40}, pixel.LA8, 1))
	require.Equal(t, []byte{0x80, 0x80, 0x80, 0x40}, dst)

	alpha := make([]byte, 1)
	require.NoError(t, pixel.Transcode(alpha, pixel.A8, dst, pixel.RGBA8, 1))
	require.Equal(t, []byte{0x40}, alpha)
}

func TestMissingTranscoder(t *testing.T) {
	_, ok := pixel.Lookup(pixel.RGBA8, pixel.RGBA8)
	require.False(t, ok)

	err := pixel.Transcode(make([]byte, 4), pixel.RGBA8, make([]byte, 4), pixel.Precompressed, 1)
	require.Error(t, err)
}

func TestTranscodeRejectsShortBuffers(t *testing.T) {
	err := pixel.Transcode(make([]byte, 4), pixel.RGBA8, make([]byte, 3), pixel.RGB8, 2)
	require.Error(t, err)
}
