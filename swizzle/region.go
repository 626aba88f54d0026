package swizzle

import (
	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/memutils"
)

// Variant is the block geometry of a swizzled compressed format
type Variant uint8

const (
	// VariantBC1 is 8 bytes per 4x4 block
	VariantBC1 Variant = iota
	// VariantBC3 is 16 bytes per 4x4 block
	VariantBC3
	// VariantPVRTII2BPP is 8 bytes per 8x4 block
	VariantPVRTII2BPP
)

func (v Variant) String() string {
	switch v {
	case VariantBC1:
		return "BC1"
	case VariantBC3:
		return "BC3"
	case VariantPVRTII2BPP:
		return "PVRTII2BPP"
	default:
		return "Unknown"
	}
}

// BlockSize returns the number of bytes in one block
func (v Variant) BlockSize() int {
	if v == VariantBC3 {
		return 16
	}
	return 8
}

// BlockWidth returns the number of texels across one block. Blocks are always 4 texels tall.
func (v Variant) BlockWidth() int {
	if v == VariantPVRTII2BPP {
		return 8
	}
	return 4
}

// SwizzleRegion copies the row-major blocks of a region_w x region_h texel region in src into
// their Morton positions in dst, a texture of texW x texH texels (both powers of two). Blocks
// of the texture outside the region keep their position in dst but are left untouched, and
// positions of the square Morton grid outside the texture take no space.
func SwizzleRegion(dst, src []byte, texW, texH, regionX, regionY, regionW, regionH int, variant Variant) error {
	blockSize := variant.BlockSize()
	blockWidth := variant.BlockWidth()

	if regionX%blockWidth != 0 || regionY%4 != 0 {
		return errors.Newf("region origin (%d, %d) is not aligned to %s blocks", regionX, regionY, variant)
	}

	regionColumns := (regionW + blockWidth - 1) / blockWidth
	blockCount := mortonBlockCount(memutils.CeilDiv(texW, blockWidth), memutils.CeilDiv(texH, 4))

	offset := 0
	for d := uint64(0); d < blockCount; d++ {
		// Even bits index block rows, odd bits block columns
		x, y := Decode(d)
		row := int(x) * 4
		column := int(y) * blockWidth

		if row >= texH || column >= texW {
			continue
		}
		if row < regionY || row >= regionY+regionH || column < regionX || column >= regionX+regionW {
			offset += blockSize
			continue
		}

		srcOffset := ((row-regionY)/4*regionColumns + (column-regionX)/blockWidth) * blockSize
		if srcOffset+blockSize > len(src) {
			return errors.Newf("source holds %d bytes, block at (%d, %d) needs %d", len(src), column, row, srcOffset+blockSize)
		}
		if offset+blockSize > len(dst) {
			return errors.Newf("destination holds %d bytes, block at (%d, %d) needs %d", len(dst), column, row, offset+blockSize)
		}

		copy(dst[offset:offset+blockSize], src[srcOffset:srcOffset+blockSize])
		offset += blockSize
	}

	return nil
}

// Compress block-compresses w x h RGBA8 pixels from src, stored row-major with no padding,
// into dst in Morton block order over an alignedW x alignedH grid. Pixels past the right
// or bottom edge of the image are filled by clamping to the edge.
func Compress(dst, src []byte, w, h, alignedW, alignedH int, alpha, highQuality bool, compressor gxm.BlockCompressor) error {
	if len(src) < w*h*4 {
		return errors.Newf("source holds %d bytes, a %dx%d image needs %d", len(src), w, h, w*h*4)
	}

	blockSize := 8
	if alpha {
		blockSize = 16
	}

	blockCount := mortonBlockCount(memutils.CeilDiv(alignedW, 4), memutils.CeilDiv(alignedH, 4))

	var block [64]byte
	offset := 0
	for d := uint64(0); d < blockCount; d++ {
		x, y := Decode(d)
		row := int(x) * 4
		column := int(y) * 4

		if row >= alignedH || column >= alignedW {
			continue
		}
		if row >= h || column >= w {
			offset += blockSize
			continue
		}

		if offset+blockSize > len(dst) {
			return errors.Newf("destination holds %d bytes, block at (%d, %d) needs %d", len(dst), column, row, offset+blockSize)
		}

		extractBlock(&block, src, w, h, column, row)
		compressor.CompressBlock(dst[offset:offset+blockSize], &block, alpha, highQuality)
		offset += blockSize
	}

	return nil
}

// mortonBlockCount returns the number of positions in the square power-of-two Morton grid
// covering columns x rows blocks. A texture smaller than one block still occupies one.
func mortonBlockCount(columns, rows int) uint64 {
	side := uint64(memutils.NearestPow2(uint32(max(columns, rows, 1))))
	return side * side
}

func extractBlock(block *[64]byte, src []byte, w, h, column, row int) {
	for by := 0; by < 4; by++ {
		sy := min(row+by, h-1)
		for bx := 0; bx < 4; bx++ {
			sx := min(column+bx, w-1)
			copy(block[(by*4+bx)*4:(by*4+bx)*4+4], src[(sy*w+sx)*4:])
		}
	}
}
