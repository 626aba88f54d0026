package tam

import (
	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/pixel"
	"github.com/gxmkit/texarsenal/swizzle"
	"github.com/gxmkit/texarsenal/texfmt"
	"golang.org/x/exp/slog"
)

// maxMipLevels is the longest chain the hardware can describe
const maxMipLevels = 13

// CompressedImage is one level of a compressed texture upload
type CompressedImage struct {
	// Level is the mip level being uploaded; level 0 is the base
	Level  int
	Width  int
	Height int
	Format gxm.TextureFormat
	// ImageSize, when nonzero, must equal the number of bytes Format requires for a
	// Width x Height level
	ImageSize int
	// Data is nil to zero the level. When Source is pixel.Precompressed it holds the level's
	// hardware blocks in row-major order; otherwise it holds Width x Height pixels encoded as
	// Source, which are block-compressed.
	Data   []byte
	Source pixel.Format
}

// AllocCompressedTexture uploads one level of a swizzled compressed texture. Uploading level
// 0 replaces any storage tex held. Uploading a later level reuses the storage if its chain
// already covers the level and otherwise grows it, carrying every existing level across.
func (m *Manager) AllocCompressedTexture(tex *Texture, img CompressedImage) error {
	return m.lastError.record(m.allocCompressedTexture(tex, img))
}

func (m *Manager) validateCompressedImage(img CompressedImage) error {
	format := img.Format
	if !texfmt.IsCompressed(format) {
		return errors.Wrapf(ErrInvalidValue, "%s is not a compressed format", format)
	}
	if img.Width < 1 || img.Height < 1 {
		return errors.Wrapf(ErrInvalidValue, "invalid texture dimensions %dx%d", img.Width, img.Height)
	}
	if img.Level < 0 || img.Level >= maxMipLevels {
		return errors.Wrapf(ErrInvalidValue, "mip level %d is outside 0..%d", img.Level, maxMipLevels-1)
	}

	expected := texfmt.ExpectedImageSize(img.Width, img.Height, format)
	if img.ImageSize != 0 && img.ImageSize != expected {
		return errors.Wrapf(ErrInvalidValue, "%dx%d %s needs %d bytes, image size is %d", img.Width, img.Height, format, expected, img.ImageSize)
	}

	if img.Data == nil {
		return nil
	}

	if img.Source == pixel.Precompressed {
		if len(img.Data) < expected {
			return errors.Wrapf(ErrInvalidValue, "%dx%d %s needs %d bytes, got %d", img.Width, img.Height, format, expected, len(img.Data))
		}
		return nil
	}

	if base := format.Base(); base != gxm.BaseFormatUBC1 && base != gxm.BaseFormatUBC3 {
		return errors.Wrapf(ErrInvalidOperation, "pixels can only be compressed to BC1 or BC3, not %s", format)
	}
	if !img.Source.IsEncodable() {
		return errors.Wrapf(ErrInvalidOperation, "cannot compress %s pixels", img.Source)
	}
	if _, ok := pixel.Lookup(img.Source, pixel.RGBA8); !ok && img.Source != pixel.RGBA8 {
		return errors.Wrapf(ErrInvalidOperation, "no conversion from %s to RGBA8", img.Source)
	}
	if needed := img.Width * img.Height * img.Source.BytesPerPixel(); len(img.Data) < needed {
		return errors.Wrapf(ErrInvalidValue, "%dx%d %s pixels need %d bytes, got %d", img.Width, img.Height, img.Source, needed, len(img.Data))
	}
	return nil
}

func (m *Manager) allocCompressedTexture(tex *Texture, img CompressedImage) error {
	err := m.validateCompressedImage(img)
	if err != nil {
		return err
	}

	format := img.Format
	reusable := tex.Valid() &&
		tex.Descriptor.Layout == gxm.LayoutSwizzledArbitrary &&
		tex.Descriptor.Format == format
	if tex.Valid() && (img.Level == 0 || !reusable) {
		err = m.freeTexture(tex)
		if err != nil {
			return err
		}
	}

	paddedWidth, paddedHeight := texfmt.PaddedDimensions(img.Width, img.Height)
	chainSize := texfmt.MipchainSize(img.Level, paddedWidth, paddedHeight, format)
	levelOffset := texfmt.MipOffset(img.Level, paddedWidth, paddedHeight, format)
	levelSize := texfmt.LevelSize(paddedWidth, paddedHeight, format)

	// The first upload of a later level implies the base dimensions
	baseWidth, baseHeight := img.Width<<img.Level, img.Height<<img.Level
	mipCount := img.Level + 1

	block := tex.block
	grown := false
	switch {
	case block == nil:
		block, err = m.alloc.AllocateAligned(chainSize, uint(texfmt.Alignment(format)), m.textureDomain())
		if err != nil {
			return err
		}
		clear(block.Bytes())

	case img.Level < tex.Descriptor.MipCount:
		baseWidth, baseHeight = tex.Descriptor.Width, tex.Descriptor.Height
		mipCount = tex.Descriptor.MipCount

	default:
		baseWidth, baseHeight = tex.Descriptor.Width, tex.Descriptor.Height
		block, err = m.alloc.AllocateAligned(chainSize, uint(texfmt.Alignment(format)), m.textureDomain())
		if err != nil {
			return err
		}
		clear(block.Bytes())
		copy(block.Bytes(), tex.block.Bytes())
		grown = true
	}

	// Releases a block this call allocated when a later step fails
	abandon := func() {
		if block != tex.block {
			m.release(block)
		}
	}

	region, err := block.View(levelOffset, levelSize)
	if err != nil {
		abandon()
		return errors.Mark(err, ErrInvalidValue)
	}

	err = m.writeCompressedLevel(region.Bytes(), img, paddedWidth, paddedHeight)
	if err != nil {
		abandon()
		return err
	}

	desc, err := m.device.InitSwizzledTexture(block.Memory(), format, baseWidth, baseHeight, mipCount)
	if err != nil {
		abandon()
		return errors.Mark(errors.Wrapf(err, "hardware rejected %dx%d %s with %d levels", baseWidth, baseHeight, format, mipCount), ErrInvalidValue)
	}

	if grown {
		m.release(tex.block)
	}
	tex.block = block
	tex.Descriptor = desc
	tex.paletted = false

	m.logger.Debug("Manager::AllocCompressedTexture",
		slog.String("Format", format.String()),
		slog.Int("Level", img.Level),
		slog.Int("Width", img.Width),
		slog.Int("Height", img.Height),
		slog.Int("MipCount", mipCount),
		slog.Bool("Grown", grown),
	)
	return nil
}

func (m *Manager) writeCompressedLevel(dst []byte, img CompressedImage, paddedWidth, paddedHeight int) error {
	switch {
	case img.Data == nil:
		clear(dst)
		return nil

	case img.Source == pixel.Precompressed:
		variant, swizzled := texfmt.BlockVariantOf(img.Format)
		if !swizzled {
			copy(dst, img.Data)
			return nil
		}
		err := swizzle.SwizzleRegion(dst, img.Data, paddedWidth, paddedHeight, 0, 0, img.Width, img.Height, variant)
		return mark(err, ErrInvalidValue)

	default:
		return m.compressPixels(dst, img.Data, img.Source, img.Width, img.Height, paddedWidth, paddedHeight, img.Format)
	}
}

// compressPixels block-compresses width x height pixels encoded as source into dst
func (m *Manager) compressPixels(dst, data []byte, source pixel.Format, width, height, paddedWidth, paddedHeight int, format gxm.TextureFormat) error {
	rgba := data
	if source != pixel.RGBA8 {
		buffer, done, err := m.scratch(width * height * 4)
		if err != nil {
			return err
		}
		defer done()

		err = pixel.Transcode(buffer, pixel.RGBA8, data, source, width*height)
		if err != nil {
			return errors.Mark(err, ErrInvalidOperation)
		}
		rgba = buffer
	}

	err := swizzle.Compress(dst, rgba, width, height, paddedWidth, paddedHeight, texfmt.HasAlphaBlocks(format), m.highQuality(), m.compressor)
	return mark(err, ErrInvalidValue)
}
