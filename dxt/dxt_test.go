package dxt_test

import (
	"testing"

	"github.com/gxmkit/texarsenal/dxt"
	"github.com/stretchr/testify/require"
)

func solidBlock(r, g, b, a byte) *[64]byte {
	var block [64]byte
	for i := 0; i < 16; i++ {
		block[i*4], block[i*4+1], block[i*4+2], block[i*4+3] = r, g, b, a
	}
	return &block
}

func gradientBlock() *[64]byte {
	var block [64]byte
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := (y*4 + x) * 4
			block[i] = byte(x * 80)
			block[i+1] = byte(y * 80)
			block[i+2] = byte(255 - x*40)
			block[i+3] = byte(255 - y*60)
		}
	}
	return &block
}

func requireClose(t *testing.T, expected, actual *[64]byte, tolerance int, channels int) {
	t.Helper()
	for i := 0; i < 16; i++ {
		for ch := 0; ch < channels; ch++ {
			diff := int(expected[i*4+ch]) - int(actual[i*4+ch])
			if diff < 0 {
				diff = -diff
			}
			require.LessOrEqual(t, diff, tolerance, "pixel %d channel %d: expected %d, got %d", i, ch, expected[i*4+ch], actual[i*4+ch])
		}
	}
}

func requireAlphaClose(t *testing.T, expected, actual *[64]byte, tolerance int) {
	t.Helper()
	for i := 0; i < 16; i++ {
		diff := int(expected[i*4+3]) - int(actual[i*4+3])
		if diff < 0 {
			diff = -diff
		}
		require.LessOrEqual(t, diff, tolerance, "alpha of pixel %d: expected %d, got %d", i, expected[i*4+3], actual[i*4+3])
	}
}

func squaredError(expected, actual *[64]byte, channels int) int {
	total := 0
	for i := 0; i < 16; i++ {
		for ch := 0; ch < channels; ch++ {
			diff := int(expected[i*4+ch]) - int(actual[i*4+ch])
			total += diff * diff
		}
	}
	return total
}

var solidColors = [][4]byte{
	{0, 0, 0, 255},
	{255, 255, 255, 255},
	{128, 64, 200, 255},
	{13, 250, 99, 255},
	{77, 77, 77, 255},
	{255, 0, 0, 255},
}

func TestSolidRoundTripBC1(t *testing.T) {
	for _, quality := range []dxt.Quality{dxt.Normal, dxt.HighQuality} {
		for _, c := range solidColors {
			block := solidBlock(c[0], c[1], c[2], c[3])
			encoded := make([]byte, dxt.BlockSize(false))
			dxt.CompressBlock(encoded, block, false, quality)

			var decoded [64]byte
			dxt.DecodeBlock(&decoded, encoded, false)
			requireClose(t, block, &decoded, 4, 4)
		}
	}
}

func TestSolidRoundTripBC3(t *testing.T) {
	for _, quality := range []dxt.Quality{dxt.Normal, dxt.HighQuality} {
		for _, c := range solidColors {
			block := solidBlock(c[0], c[1], c[2], c[1])
			encoded := make([]byte, dxt.BlockSize(true))
			dxt.CompressBlock(encoded, block, true, quality)

			var decoded [64]byte
			dxt.DecodeBlock(&decoded, encoded, true)
			requireClose(t, block, &decoded, 4, 3)
			// A single alpha value is stored exactly
			requireAlphaClose(t, block, &decoded, 0)
		}
	}
}

func TestGradientQuality(t *testing.T) {
	block := gradientBlock()

	normal := make([]byte, 16)
	dxt.CompressBlock(normal, block, true, dxt.Normal)
	high := make([]byte, 16)
	dxt.CompressBlock(high, block, true, dxt.HighQuality)

	var normalDecoded, highDecoded [64]byte
	dxt.DecodeBlock(&normalDecoded, normal, true)
	dxt.DecodeBlock(&highDecoded, high, true)

	normalErr := squaredError(block, &normalDecoded, 3)
	highErr := squaredError(block, &highDecoded, 3)
	require.LessOrEqual(t, highErr, normalErr)

	// Alpha endpoints are exact, every other alpha lands within half a palette step
	requireAlphaClose(t, block, &highDecoded, 255/7/2+1)
	require.Equal(t, byte(255), normal[0])
	require.Equal(t, byte(255-3*60), normal[1])
}

func TestCompressorAdapter(t *testing.T) {
	block := solidBlock(10, 20, 30, 40)

	direct := make([]byte, 16)
	dxt.CompressBlock(direct, block, true, dxt.HighQuality)

	adapted := make([]byte, 16)
	dxt.Compressor{}.CompressBlock(adapted, block, true, true)
	require.Equal(t, direct, adapted)
}

func TestDecodeKnownBlock(t *testing.T) {
	// c0 is pure red, c1 pure blue; indices alternate 0, 1, 2, 3 along each row
	encoded := []byte{0x00, 0xf8, 0x1f, 0x00, 0xe4, 0xe4, 0xe4, 0xe4}

	var decoded [64]byte
	dxt.DecodeBlock(&decoded, encoded, false)

	require.Equal(t, []byte{255, 0, 0, 255}, decoded[0:4])
	require.Equal(t, []byte{0, 0, 255, 255}, decoded[4:8])
	require.Equal(t, []byte{170, 0, 85, 255}, decoded[8:12])
	require.Equal(t, []byte{85, 0, 170, 255}, decoded[12:16])
}

func TestDecodeThreeColorMode(t *testing.T) {
	// c0 <= c1 selects three colors plus transparent black at index 3
	encoded := []byte{0x1f, 0x00, 0x00, 0xf8, 0xe4, 0xe4, 0xe4, 0xe4}

	var decoded [64]byte
	dxt.DecodeBlock(&decoded, encoded, false)

	require.Equal(t, []byte{0, 0, 255, 255}, decoded[0:4])
	require.Equal(t, []byte{255, 0, 0, 255}, decoded[4:8])
	require.Equal(t, []byte{127, 0, 127, 255}, decoded[8:12])
	require.Equal(t, []byte{0, 0, 0, 0}, decoded[12:16])
}
