package tam

import (
	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/memutils"
	"github.com/gxmkit/texarsenal/pixel"
	"github.com/gxmkit/texarsenal/swizzle"
	"github.com/gxmkit/texarsenal/texfmt"
	"golang.org/x/exp/slog"
)

// GenerateMipmaps grows a linear texture's chain to levels levels and fills the new levels
// by repeatedly halving the one above. A negative levels builds the longest chain the
// texture allows. Nothing happens if the texture already has that many levels.
//
// The downscales are submitted with fragment synchronization: they complete before the next
// rendering pass, not before GenerateMipmaps returns.
func (m *Manager) GenerateMipmaps(tex *Texture, levels int) error {
	return m.lastError.record(m.generateMipmaps(tex, levels))
}

func (m *Manager) generateMipmaps(tex *Texture, levels int) error {
	if !tex.Valid() {
		return errors.Wrap(ErrInvalidOperation, "texture has no storage")
	}

	desc := tex.Descriptor
	if desc.Layout != gxm.LayoutLinear {
		return errors.Wrapf(ErrInvalidOperation, "%s textures are not generated by downscaling linear levels", desc.Format)
	}

	transfer, err := texfmt.TransferFormatOf(desc.Format)
	if err != nil {
		return mark(err, ErrInvalidOperation)
	}

	sizes := texfmt.LinearChainLevels(desc.Width, desc.Height, -1, desc.Format)
	if levels < 0 || levels > len(sizes) {
		levels = len(sizes)
	}
	levels = min(levels, maxMipLevels)
	if levels <= desc.MipCount {
		return nil
	}
	sizes = sizes[:levels]

	total := 0
	for _, size := range sizes {
		total += size
	}

	// Downscales queued by an earlier call may still target the current chain
	if desc.MipCount > 1 {
		err = m.device.WaitTransfers()
		if err != nil {
			return errors.Mark(errors.Wrap(err, "failed waiting for earlier downscales"), ErrInternal)
		}
	}

	bpp := texfmt.BytesPerPixel(desc.Format)
	downscale := func(chain []byte) error {
		width, height := desc.Width&^1, desc.Height&^1
		stride := texfmt.LinearStride(desc.Width, desc.Format)

		offset := 0
		for level := 0; level < levels-1; level++ {
			next := offset + sizes[level]
			dstStride := memutils.AlignUp(width/2, 8) * bpp

			err := m.device.Downscale(gxm.DownscaleJob{
				Format:    transfer,
				Src:       chain[offset:next],
				SrcWidth:  width,
				SrcHeight: height,
				SrcStride: stride,
				Dst:       chain[next : next+sizes[level+1]],
				DstStride: dstStride,
				Flags:     gxm.TransferFragmentSync,
			})
			if err != nil {
				return errors.Mark(errors.Wrapf(err, "failed to downscale level %d", level), ErrInternal)
			}

			offset = next
			stride = dstStride
			width /= 2
			height /= 2
		}
		return nil
	}

	chainDesc := desc
	chainDesc.MipCount = levels
	err = m.replaceChain(tex, total, texfmt.LinearImageSize(desc.Width, desc.Height, desc.Format), chainDesc, downscale)
	if err != nil {
		return err
	}

	m.logger.Debug("Manager::GenerateMipmaps",
		slog.String("Format", desc.Format.String()),
		slog.Int("Width", desc.Width),
		slog.Int("Height", desc.Height),
		slog.Int("MipCount", levels),
	)
	return nil
}

// GenerateCompressedMipmaps rebuilds the chain of a BC1 or BC3 texture from data, the base
// level's width x height pixels encoded as source. Level 0 keeps its existing blocks; each
// later level is downscaled from the one above and compressed in place. Both dimensions of
// the texture must be multiples of 16.
func (m *Manager) GenerateCompressedMipmaps(tex *Texture, data []byte, source pixel.Format) error {
	return m.lastError.record(m.generateCompressedMipmaps(tex, data, source))
}

func (m *Manager) generateCompressedMipmaps(tex *Texture, data []byte, source pixel.Format) error {
	if !tex.Valid() {
		return errors.Wrap(ErrInvalidOperation, "texture has no storage")
	}

	desc := tex.Descriptor
	if base := desc.Format.Base(); desc.Layout != gxm.LayoutSwizzledArbitrary || (base != gxm.BaseFormatUBC1 && base != gxm.BaseFormatUBC3) {
		return errors.Wrapf(ErrInvalidOperation, "mipmaps are only compressed to BC1 or BC3, not %s", desc.Format)
	}
	if desc.Width%16 != 0 || desc.Height%16 != 0 {
		return errors.Wrapf(ErrInvalidOperation, "%dx%d is not a multiple of 16 in both dimensions", desc.Width, desc.Height)
	}
	if !source.IsEncodable() {
		return errors.Wrapf(ErrInvalidOperation, "cannot downscale %s pixels", source)
	}
	if _, ok := pixel.Lookup(source, pixel.RGBA8); !ok && source != pixel.RGBA8 {
		return errors.Wrapf(ErrInvalidOperation, "no conversion from %s to RGBA8", source)
	}

	width, height := desc.Width, desc.Height
	if needed := width * height * source.BytesPerPixel(); len(data) < needed {
		return errors.Wrapf(ErrInvalidValue, "%dx%d %s pixels need %d bytes, got %d", width, height, source, needed, len(data))
	}

	sizes := texfmt.CompressedChainLevels(width, height, desc.Format)
	levels := min(len(sizes), maxMipLevels)
	if levels <= 1 {
		return nil
	}
	sizes = sizes[:levels]

	total := 0
	for _, size := range sizes {
		total += size
	}

	front, releaseFront, err := m.scratch(width * height * 4)
	if err != nil {
		return err
	}
	defer releaseFront()

	back, releaseBack, err := m.scratch(width * height * 4)
	if err != nil {
		return err
	}
	defer releaseBack()

	err = pixel.Transcode(front, pixel.RGBA8, data, source, width*height)
	if err != nil {
		return mark(err, ErrInvalidOperation)
	}

	alpha := texfmt.HasAlphaBlocks(desc.Format)
	compress := func(chain []byte) error {
		paddedWidth, paddedHeight := texfmt.PaddedDimensions(width, height)

		offset := sizes[0]
		for level := 1; level < levels; level++ {
			err := m.device.Downscale(gxm.DownscaleJob{
				Format:    gxm.TransferFormatU8U8U8U8ABGR,
				Src:       front,
				SrcWidth:  width,
				SrcHeight: height,
				SrcStride: width * 4,
				Dst:       back,
				DstStride: width / 2 * 4,
			})
			if err != nil {
				return errors.Mark(errors.Wrapf(err, "failed to downscale level %d", level-1), ErrInternal)
			}

			// The compressor reads the downscaled pixels next
			err = m.device.WaitTransfers()
			if err != nil {
				return errors.Mark(errors.Wrap(err, "failed waiting for downscale"), ErrInternal)
			}

			width, height = width/2, height/2
			paddedWidth, paddedHeight = paddedWidth/2, paddedHeight/2

			err = swizzle.Compress(chain[offset:offset+sizes[level]], back, width, height, paddedWidth, paddedHeight, alpha, m.highQuality(), m.compressor)
			if err != nil {
				return mark(err, ErrInvalidValue)
			}

			offset += sizes[level]
			front, back = back, front
		}
		return nil
	}

	chainDesc := desc
	chainDesc.MipCount = levels
	err = m.replaceChain(tex, total, sizes[0], chainDesc, compress)
	if err != nil {
		return err
	}

	m.logger.Debug("Manager::GenerateCompressedMipmaps",
		slog.String("Format", desc.Format.String()),
		slog.Int("Width", desc.Width),
		slog.Int("Height", desc.Height),
		slog.Int("MipCount", levels),
	)
	return nil
}
