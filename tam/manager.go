// Package tam manages the memory and texture storage of a GXM-class GPU: a tiered allocator
// over the device's memory domains, a per-frame scratch pool, and the lifecycle of texture,
// palette and shader instruction storage.
package tam

import (
	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/dxt"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/pixel"
	"github.com/gxmkit/texarsenal/texfmt"
	"golang.org/x/exp/slog"
)

// CreateOptions contains optional settings when creating a Manager
type CreateOptions struct {
	// Flags indicates specific manager behaviors to activate or deactivate
	Flags CreateFlags
	// ScratchPoolSize is the capacity of the scratch pool. Zero creates no pool: transient
	// buffers then always come from the host heap.
	ScratchPoolSize int
	// BlockCompressor encodes 4x4 blocks when textures are compressed from pixels. It defaults
	// to dxt.Compressor.
	BlockCompressor gxm.BlockCompressor
}

// Manager is the entry point for texture and palette storage. Failures are returned and also
// recorded in a last-error slot, which keeps the first failure until it is consumed. It is
// not safe for concurrent use.
type Manager struct {
	logger     *slog.Logger
	device     gxm.Device
	flags      CreateFlags
	alloc      *Allocator
	pool       *ScratchPool
	compressor gxm.BlockCompressor

	lastError errorSlot
}

// New creates a Manager that allocates from device
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, device gxm.Device, options CreateOptions) (*Manager, error) {
	manager := &Manager{
		logger:     logger,
		device:     device,
		flags:      options.Flags,
		alloc:      NewAllocator(logger, device, options.Flags),
		compressor: options.BlockCompressor,
	}

	if manager.compressor == nil {
		manager.compressor = dxt.Compressor{}
	}

	if options.ScratchPoolSize > 0 {
		pool, err := NewScratchPool(manager.alloc, options.ScratchPoolSize)
		if err != nil {
			return nil, err
		}
		manager.pool = pool
	}

	logger.Debug("Manager::New",
		slog.String("Flags", options.Flags.String()),
		slog.Int("ScratchPoolSize", options.ScratchPoolSize),
	)
	return manager, nil
}

// Allocator is the tiered allocator the manager draws storage from
func (m *Manager) Allocator() *Allocator { return m.alloc }

// Pool is the manager's scratch pool, or nil if it was created without one
func (m *Manager) Pool() *ScratchPool { return m.pool }

// LastError returns the first error recorded since the slot was last consumed, without
// clearing it
func (m *Manager) LastError() error { return m.lastError.err }

// ConsumeError returns the code of the recorded error and clears the slot
func (m *Manager) ConsumeError() ErrorCode {
	return CodeOf(m.lastError.consume())
}

// Destroy releases the scratch pool and reports every block that is still allocated
func (m *Manager) Destroy() error {
	var err error
	if m.pool != nil {
		err = m.pool.Destroy()
		m.pool = nil
	}

	leaked := 0
	m.alloc.visitLive(func(block *Block) {
		leaked++
		m.logger.Error("Manager::Destroy found a block that was never freed",
			slog.String("Domain", block.Domain().String()),
			slog.Uint64("Address", block.Address()),
			slog.Int("Size", block.Size()),
		)
	})

	if leaked > 0 {
		err = errors.CombineErrors(err, errors.Newf("%d blocks were never freed", leaked))
	}
	return err
}

func (m *Manager) textureDomain() gxm.MemoryDomain {
	if m.flags&CreateUseVRAM != 0 {
		return gxm.DomainVRAM
	}
	return gxm.DomainRAM
}

func (m *Manager) highQuality() bool {
	return m.flags&CreateFastTextureCompression == 0
}

// release frees a block on a path that has nothing left to report a failure to
func (m *Manager) release(block *Block) {
	if err := m.alloc.Free(block); err != nil {
		m.logger.Error("failed to release block", slog.Any("error", err))
	}
}

// scratch returns size bytes of transient memory, from the scratch pool while it has room
// and from the host heap otherwise. The returned function gives the memory back.
func (m *Manager) scratch(size int) ([]byte, func(), error) {
	if m.pool != nil {
		if view, ok := m.pool.Memalign(size, defaultAlignment); ok {
			return view.Bytes(), func() {}, nil
		}
	}

	block, err := m.alloc.AllocateStaging(size)
	if err != nil {
		return nil, nil, err
	}
	return block.Bytes(), func() { m.release(block) }, nil
}

// AllocTexture gives tex fresh linear storage for a width x height texture of an
// uncompressed format, releasing whatever storage it held. data holds width x height pixels
// encoded as source, copied directly when source is the format's own encoding and
// transcoded otherwise. A nil data leaves the texture zeroed.
func (m *Manager) AllocTexture(tex *Texture, width, height int, format gxm.TextureFormat, data []byte, source pixel.Format) error {
	return m.lastError.record(m.allocTexture(tex, width, height, format, data, source))
}

func (m *Manager) allocTexture(tex *Texture, width, height int, format gxm.TextureFormat, data []byte, source pixel.Format) error {
	if texfmt.IsCompressed(format) {
		return errors.Wrapf(ErrInvalidValue, "%s textures must be allocated compressed", format)
	}
	if width < 1 || height < 1 {
		return errors.Wrapf(ErrInvalidValue, "invalid texture dimensions %dx%d", width, height)
	}

	storage, err := texfmt.PixelFormatOf(format)
	if err != nil {
		return errors.Mark(err, ErrInvalidValue)
	}

	var transcode pixel.Transcoder
	if data != nil {
		if !source.IsEncodable() {
			return errors.Wrapf(ErrInvalidOperation, "cannot read %s pixels", source)
		}
		if needed := width * height * source.BytesPerPixel(); len(data) < needed {
			return errors.Wrapf(ErrInvalidValue, "%dx%d %s pixels need %d bytes, got %d", width, height, source, needed, len(data))
		}
		if source != storage {
			var ok bool
			transcode, ok = pixel.Lookup(source, storage)
			if !ok {
				return errors.Wrapf(ErrInvalidOperation, "no conversion from %s to %s", source, format)
			}
		}
	}

	err = m.freeTexture(tex)
	if err != nil {
		return err
	}

	block, err := m.alloc.AllocateAligned(texfmt.LinearImageSize(width, height, format), uint(texfmt.Alignment(format)), m.textureDomain())
	if err != nil {
		return err
	}

	dst := block.Bytes()
	clear(dst)

	if data != nil {
		stride := texfmt.LinearStride(width, format)
		rowSize := width * storage.BytesPerPixel()
		srcStride := width * source.BytesPerPixel()

		for y := 0; y < height; y++ {
			row := dst[y*stride : y*stride+rowSize]
			if transcode == nil {
				copy(row, data[y*srcStride:])
			} else {
				transcode(row, data[y*srcStride:], width)
			}
		}
	}

	desc, err := m.device.InitLinearTexture(block.Memory(), format, width, height, 1)
	if err != nil {
		m.release(block)
		return errors.Mark(errors.Wrapf(err, "hardware rejected %dx%d %s", width, height, format), ErrInvalidValue)
	}

	tex.block = block
	tex.Descriptor = desc
	tex.paletted = texfmt.IsPaletted(format)

	m.logger.Debug("Manager::AllocTexture",
		slog.String("Format", format.String()),
		slog.Int("Width", width),
		slog.Int("Height", height),
		slog.String("Domain", block.Domain().String()),
		slog.Bool("Transcoded", transcode != nil),
	)
	return nil
}

// FreeTexture releases the texture's storage and invalidates it. Freeing an invalid texture
// does nothing.
func (m *Manager) FreeTexture(tex *Texture) error {
	return m.lastError.record(m.freeTexture(tex))
}

func (m *Manager) freeTexture(tex *Texture) error {
	if tex.block == nil {
		return nil
	}

	err := m.alloc.Free(tex.block)
	tex.block = nil
	tex.Descriptor = gxm.TextureDescriptor{}
	tex.paletted = false
	return err
}

// AllocPalette creates a palette. With nil data every entry is zero; otherwise data holds
// width entries of bpe bytes each, which must be 4, and the remaining entries are zero.
func (m *Manager) AllocPalette(data []byte, width, bpe int) (*Palette, error) {
	palette, err := m.allocPalette(data, width, bpe)
	return palette, m.lastError.record(err)
}

func (m *Manager) allocPalette(data []byte, width, bpe int) (*Palette, error) {
	if data != nil {
		if bpe != 4 {
			return nil, errors.Wrapf(ErrInvalidValue, "palette entries must be 4 bytes, not %d", bpe)
		}
		if width < 1 || width*bpe > PaletteSize {
			return nil, errors.Wrapf(ErrInvalidValue, "palette of %d entries does not fit 256", width)
		}
		if len(data) < width*bpe {
			return nil, errors.Wrapf(ErrInvalidValue, "%d palette entries need %d bytes, got %d", width, width*bpe, len(data))
		}
	}

	block, err := m.alloc.Allocate(PaletteSize, m.textureDomain())
	if err != nil {
		return nil, err
	}

	entries := block.Bytes()
	clear(entries)
	if data != nil {
		copy(entries, data[:width*bpe])
	}

	return &Palette{block: block}, nil
}

// FreePalette releases the palette's storage. Freeing nil does nothing.
func (m *Manager) FreePalette(palette *Palette) error {
	if palette == nil || palette.block == nil {
		return nil
	}

	err := m.alloc.Free(palette.block)
	palette.block = nil
	return m.lastError.record(err)
}
