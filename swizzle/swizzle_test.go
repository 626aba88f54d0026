package swizzle_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/gxmkit/texarsenal/gxm/mocks"
	"github.com/gxmkit/texarsenal/swizzle"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDecodeFirstQuad(t *testing.T) {
	expected := [][2]uint64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 0}, {3, 0}}
	for d, coords := range expected {
		x, y := swizzle.Decode(uint64(d))
		require.Equal(t, coords[0], x, "x of %d", d)
		require.Equal(t, coords[1], y, "y of %d", d)
	}
}

func TestMortonReinterleave(t *testing.T) {
	for d := uint64(0); d < 1<<16; d++ {
		require.Equal(t, d, swizzle.Encode(swizzle.Morton1(d), swizzle.Morton1(d>>1)))
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100000; i++ {
		d := uint64(rng.Uint32())
		x, y := swizzle.Decode(d)
		require.Less(t, x, uint64(1<<16))
		require.Less(t, y, uint64(1<<16))
		require.Equal(t, d, swizzle.Encode(x, y))
	}

	require.Equal(t, uint64(0xffffffff), swizzle.Encode(swizzle.Decode(0xffffffff)))
}

func numberedBlocks(count, blockSize int) []byte {
	src := make([]byte, count*blockSize)
	for i := 0; i < count; i++ {
		for j := 0; j < blockSize; j++ {
			src[i*blockSize+j] = byte(i)
		}
	}
	return src
}

func blockIDs(data []byte, blockSize int) []byte {
	var ids []byte
	for i := 0; i < len(data); i += blockSize {
		ids = append(ids, data[i])
	}
	return ids
}

func TestSwizzleFullTexture(t *testing.T) {
	src := numberedBlocks(4, 8)
	dst := make([]byte, 32)

	err := swizzle.SwizzleRegion(dst, src, 8, 8, 0, 0, 8, 8, swizzle.VariantBC1)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 2, 1, 3}, blockIDs(dst, 8))
}

func TestSwizzleBC3BlockSize(t *testing.T) {
	src := numberedBlocks(16, 16)
	dst := make([]byte, 256)

	err := swizzle.SwizzleRegion(dst, src, 16, 16, 0, 0, 16, 16, swizzle.VariantBC3)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 4, 1, 5, 8, 12, 9, 13, 2, 6, 3, 7, 10, 14, 11, 15}, blockIDs(dst, 16))
}

func TestSwizzleSubRegion(t *testing.T) {
	src := numberedBlocks(1, 8)
	dst := bytes.Repeat([]byte{0xee}, 32)

	err := swizzle.SwizzleRegion(dst, src, 8, 8, 4, 0, 4, 4, swizzle.VariantBC1)
	require.NoError(t, err)
	require.Equal(t, []byte{0xee, 0xee, 0, 0xee}, blockIDs(dst, 8))
}

func TestSwizzleNonSquare(t *testing.T) {
	src := numberedBlocks(2, 8)
	dst := make([]byte, 16)

	err := swizzle.SwizzleRegion(dst, src, 8, 4, 0, 0, 8, 4, swizzle.VariantBC1)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1}, blockIDs(dst, 8))
}

func TestSwizzleTallTexture(t *testing.T) {
	// An 8x16 texture is 2 block columns by 4 block rows; the rest of the 16x16 grid is absent
	src := numberedBlocks(8, 8)
	dst := make([]byte, 64)

	err := swizzle.SwizzleRegion(dst, src, 8, 16, 0, 0, 8, 16, swizzle.VariantBC1)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 2, 1, 3, 4, 6, 5, 7}, blockIDs(dst, 8))

	partial := bytes.Repeat([]byte{0xee}, 64)
	err = swizzle.SwizzleRegion(partial, numberedBlocks(2, 8), 8, 16, 0, 12, 8, 4, swizzle.VariantBC1)
	require.NoError(t, err)
	require.Equal(t, []byte{0xee, 0xee, 0xee, 0xee, 0xee, 0, 0xee, 1}, blockIDs(partial, 8))
}

func TestSwizzleWideBlocks(t *testing.T) {
	require.Equal(t, 8, swizzle.VariantPVRTII2BPP.BlockWidth())
	require.Equal(t, 8, swizzle.VariantPVRTII2BPP.BlockSize())

	// A 16x8 texture holds 2x2 blocks of 8x4 texels
	src := numberedBlocks(4, 8)
	dst := make([]byte, 32)

	err := swizzle.SwizzleRegion(dst, src, 16, 8, 0, 0, 16, 8, swizzle.VariantPVRTII2BPP)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 2, 1, 3}, blockIDs(dst, 8))
}

func TestSwizzleTexturesSmallerThanABlock(t *testing.T) {
	for name, tc := range map[string]struct {
		width, height int
		variant       swizzle.Variant
	}{
		"BC1 2x2":        {2, 2, swizzle.VariantBC1},
		"BC1 1x1":        {1, 1, swizzle.VariantBC1},
		"BC3 2x2":        {2, 2, swizzle.VariantBC3},
		"BC3 1x1":        {1, 1, swizzle.VariantBC3},
		"PVRTII2BPP 4x4": {4, 4, swizzle.VariantPVRTII2BPP},
	} {
		t.Run(name, func(t *testing.T) {
			src := bytes.Repeat([]byte{0x5a}, tc.variant.BlockSize())
			dst := make([]byte, tc.variant.BlockSize())

			err := swizzle.SwizzleRegion(dst, src, tc.width, tc.height, 0, 0, tc.width, tc.height, tc.variant)
			require.NoError(t, err)
			require.Equal(t, src, dst)
		})
	}
}

func TestSwizzleShortTexture(t *testing.T) {
	// 8x2 is one row of two blocks
	dst := make([]byte, 16)
	err := swizzle.SwizzleRegion(dst, numberedBlocks(2, 8), 8, 2, 0, 0, 8, 2, swizzle.VariantBC1)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1}, blockIDs(dst, 8))
}

func TestSwizzleRejectsShortBuffers(t *testing.T) {
	err := swizzle.SwizzleRegion(make([]byte, 8), numberedBlocks(4, 8), 8, 8, 0, 0, 8, 8, swizzle.VariantBC1)
	require.Error(t, err)

	err = swizzle.SwizzleRegion(make([]byte, 32), numberedBlocks(2, 8), 8, 8, 0, 0, 8, 8, swizzle.VariantBC1)
	require.Error(t, err)

	err = swizzle.SwizzleRegion(make([]byte, 32), numberedBlocks(4, 8), 8, 8, 2, 0, 4, 4, swizzle.VariantBC1)
	require.Error(t, err)
}

func TestCompressMortonOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	compressor := mocks.NewMockBlockCompressor(ctrl)

	// Each pixel's red channel holds its row-major block index
	const w, h = 8, 8
	src := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src[(y*w+x)*4] = byte((y/4)*2 + x/4)
		}
	}

	compressor.EXPECT().CompressBlock(gomock.Any(), gomock.Any(), true, false).
		Times(4).
		Do(func(dst []byte, block *[64]byte, alpha, highQuality bool) {
			require.Len(t, dst, 16)
			dst[0] = block[0]
		})

	dst := make([]byte, 64)
	err := swizzle.Compress(dst, src, w, h, w, h, true, false, compressor)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 2, 1, 3}, blockIDs(dst, 16))
}

func TestCompressClampsEdges(t *testing.T) {
	ctrl := gomock.NewController(t)
	compressor := mocks.NewMockBlockCompressor(ctrl)

	// A 6x6 image padded to 8x8: the bottom right block reads rows and columns 4-5 only
	const w, h = 6, 6
	src := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src[(y*w+x)*4] = byte(y*16 + x)
		}
	}

	var blocks [][64]byte
	compressor.EXPECT().CompressBlock(gomock.Any(), gomock.Any(), false, true).
		Times(4).
		Do(func(dst []byte, block *[64]byte, alpha, highQuality bool) {
			require.Len(t, dst, 8)
			blocks = append(blocks, *block)
		})

	err := swizzle.Compress(make([]byte, 32), src, w, h, 8, 8, false, true, compressor)
	require.NoError(t, err)
	require.Len(t, blocks, 4)

	last := blocks[3]
	for by := 0; by < 4; by++ {
		for bx := 0; bx < 4; bx++ {
			y := min(4+by, 5)
			x := min(4+bx, 5)
			require.Equal(t, byte(y*16+x), last[(by*4+bx)*4], "pixel (%d, %d)", bx, by)
		}
	}
}

func TestCompressSkipsPaddedBlocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	compressor := mocks.NewMockBlockCompressor(ctrl)

	// A 4x4 image in a 8x8 grid compresses one block; the other three are still reserved
	compressor.EXPECT().CompressBlock(gomock.Any(), gomock.Any(), false, false).
		Times(1).
		Do(func(dst []byte, block *[64]byte, alpha, highQuality bool) {
			dst[0] = 0x7f
		})

	dst := make([]byte, 32)
	err := swizzle.Compress(dst, make([]byte, 64), 4, 4, 8, 8, false, false, compressor)
	require.NoError(t, err)
	require.Equal(t, []byte{0x7f, 0, 0, 0}, blockIDs(dst, 8))
}

func TestCompressImagesSmallerThanABlock(t *testing.T) {
	for _, size := range []int{1, 2} {
		ctrl := gomock.NewController(t)
		compressor := mocks.NewMockBlockCompressor(ctrl)

		src := bytes.Repeat([]byte{9, 8, 7, 255}, size*size)
		compressor.EXPECT().CompressBlock(gomock.Any(), gomock.Any(), true, true).
			Times(1).
			Do(func(dst []byte, block *[64]byte, alpha, highQuality bool) {
				require.Len(t, dst, 16)
				// Every texel of the block clamps to the image
				require.Equal(t, bytes.Repeat([]byte{9, 8, 7, 255}, 16), block[:])
				dst[0] = 0x42
			})

		dst := make([]byte, 16)
		err := swizzle.Compress(dst, src, size, size, size, size, true, true, compressor)
		require.NoError(t, err)
		require.Equal(t, byte(0x42), dst[0], "%dx%d", size, size)
	}
}
