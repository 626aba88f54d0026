package tam

import (
	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/texfmt"
)

// PaletteSize is the number of bytes every palette occupies: 256 entries of 4 bytes
const PaletteSize = 256 * 4

// Texture is a texture object's storage and sampling state. The zero value is an invalid
// texture with no storage.
type Texture struct {
	// Descriptor is the hardware's view of the storage, reinitialized whenever it changes
	Descriptor gxm.TextureDescriptor
	// Palette is the palette sampled by paletted formats
	Palette *Palette

	MinFilter gxm.TextureFilter
	MagFilter gxm.TextureFilter
	MipFilter gxm.MipFilter
	UMode     gxm.AddressMode
	VMode     gxm.AddressMode
	LodBias   int

	block    *Block
	paletted bool
}

// Valid reports whether the texture currently owns storage
func (t *Texture) Valid() bool { return t.block != nil }

// Block is the texture's storage, or nil if it is invalid
func (t *Texture) Block() *Block { return t.block }

// Domain is the memory domain the texture's storage lives in
func (t *Texture) Domain() gxm.MemoryDomain {
	if t.block == nil {
		return gxm.DomainHost
	}
	return t.block.Domain()
}

// UsesPalette reports whether the texture's format reads its colors through Palette
func (t *Texture) UsesPalette() bool { return t.paletted }

// Level returns the region of the texture's storage that holds mip level
func (t *Texture) Level(level int) (View, error) {
	if t.block == nil {
		return View{}, errors.Wrap(ErrInvalidOperation, "texture has no storage")
	}
	if level < 0 || level >= t.Descriptor.MipCount {
		return View{}, errors.Wrapf(ErrInvalidValue, "level %d is outside a chain of %d levels", level, t.Descriptor.MipCount)
	}

	offset, size := levelRegion(t.Descriptor, level)
	return t.block.View(offset, size)
}

// levelRegion locates a level within the storage described by desc
func levelRegion(desc gxm.TextureDescriptor, level int) (offset, size int) {
	if desc.Layout == gxm.LayoutSwizzledArbitrary {
		paddedWidth, paddedHeight := texfmt.PaddedDimensions(desc.Width, desc.Height)
		levelWidth, levelHeight := texfmt.MipDimensions(level, paddedWidth, paddedHeight)
		return texfmt.MipOffset(level, levelWidth, levelHeight, desc.Format), texfmt.LevelSize(levelWidth, levelHeight, desc.Format)
	}

	if desc.MipCount == 1 {
		return 0, texfmt.LinearImageSize(desc.Width, desc.Height, desc.Format)
	}

	sizes := texfmt.LinearChainLevels(desc.Width, desc.Height, desc.MipCount, desc.Format)
	for _, size := range sizes[:level] {
		offset += size
	}
	return offset, sizes[level]
}

// Palette is 256 RGBA entries sampled by paletted textures
type Palette struct {
	block *Block
}

// Bytes exposes the palette's entries, or nil once it has been freed
func (p *Palette) Bytes() []byte {
	if p.block == nil {
		return nil
	}
	return p.block.Bytes()
}

// Block is the palette's storage, or nil once it has been freed
func (p *Palette) Block() *Block { return p.block }
