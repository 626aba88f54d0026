// Package soft implements gxm.Device on the host. Memory domains are arenas over mapped
// regions, texture descriptors are validated the way the hardware validates them, and the
// transfer unit is a box filter that runs when transfers are waited on.
package soft

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/texfmt"
	"golang.org/x/exp/slog"
)

// ErrInvalidTexture is returned when a texture descriptor rejects its format, dimensions,
// mip count, or backing memory
var ErrInvalidTexture = errors.New("invalid texture descriptor")

// ErrInvalidTransfer is returned when a transfer job is malformed
var ErrInvalidTransfer = errors.New("invalid transfer")

const uscodeAlignment = 16

// Device is a host implementation of gxm.Device. It is not safe for concurrent use.
type Device struct {
	logger *slog.Logger
	config Config

	domains [gxm.DomainCount]*domainHeap
	host    *hostHeap

	pending []gxm.DownscaleJob

	submittedCount int
	completedCount int

	vertexUSSE     *swiss.Map[uint64, uint32]
	fragmentUSSE   *swiss.Map[uint64, uint32]
	nextUSSEOffset uint32
}

var _ gxm.Device = &Device{}

// New creates a Device with the domains described by config
func New(logger *slog.Logger, config Config) (*Device, error) {
	if config.MaxTextureDimension == 0 {
		config.MaxTextureDimension = defaultMaxTextureDimension
	}

	device := &Device{
		logger:       logger,
		config:       config,
		vertexUSSE:   swiss.NewMap[uint64, uint32](8),
		fragmentUSSE: swiss.NewMap[uint64, uint32](8),
	}

	// Domains sit at distinct, widely spaced device addresses
	base := uint64(0x1000_0000)
	for domain := gxm.DomainVRAM; int(domain) < gxm.DomainCount; domain++ {
		size := config.HeapSizes[domain]
		if domain == gxm.DomainHost || size == 0 {
			continue
		}
		if size < 0 {
			device.Close()
			return nil, errors.Newf("%s domain has negative size %d", domain, size)
		}

		heap, err := newDomainHeap(domain, base, size)
		if err != nil {
			device.Close()
			return nil, err
		}

		device.domains[domain] = heap
		base += 0x1000_0000 * uint64(1+(size>>28))
		logger.Debug("Device::New", slog.String("domain", domain.String()), slog.Int("size", size))
	}

	if config.HostLimit != 0 {
		device.host = newHostHeap(config.HostLimit)
	}

	return device, nil
}

// Close releases the mapped memory behind every domain. Memory handed out by the device
// must not be used afterward.
func (d *Device) Close() error {
	var err error
	for domain, heap := range d.domains {
		if heap == nil {
			continue
		}
		err = errors.CombineErrors(err, heap.release())
		d.domains[domain] = nil
	}
	return err
}

func (d *Device) Heap(domain gxm.MemoryDomain) gxm.Heap {
	if domain == gxm.DomainHost {
		if d.host == nil {
			return nil
		}
		return d.host
	}

	if domain < 0 || int(domain) >= gxm.DomainCount || d.domains[domain] == nil {
		return nil
	}
	return d.domains[domain]
}

// CheckCorruption validates the guard bytes around every live allocation in every domain.
// It only detects anything when built with the debug_mem_utils tag.
func (d *Device) CheckCorruption() error {
	for _, heap := range d.domains {
		if heap == nil {
			continue
		}
		if err := heap.CheckCorruption(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) validateDescriptor(data gxm.Memory, format gxm.TextureFormat, width, height, mipCount int) error {
	if data.IsNil() {
		return errors.Wrap(ErrInvalidTexture, "texture has no backing memory")
	}
	if width < 1 || height < 1 || width > d.config.MaxTextureDimension || height > d.config.MaxTextureDimension {
		return errors.Wrapf(ErrInvalidTexture, "dimensions %dx%d are outside 1..%d", width, height, d.config.MaxTextureDimension)
	}
	if mipCount < 1 || mipCount > maxMipCount {
		return errors.Wrapf(ErrInvalidTexture, "mip count %d is outside 1..%d", mipCount, maxMipCount)
	}
	if data.Address%uint64(texfmt.Alignment(format)) != 0 {
		return errors.Wrapf(ErrInvalidTexture, "address 0x%x is not aligned for %s", data.Address, format)
	}
	return nil
}

func (d *Device) InitLinearTexture(data gxm.Memory, format gxm.TextureFormat, width, height, mipCount int) (gxm.TextureDescriptor, error) {
	if err := d.validateDescriptor(data, format, width, height, mipCount); err != nil {
		return gxm.TextureDescriptor{}, err
	}
	if texfmt.IsCompressed(format) {
		return gxm.TextureDescriptor{}, errors.Wrapf(ErrInvalidTexture, "%s cannot be stored linearly", format)
	}
	if needed := texfmt.LinearImageSize(width, height, format); data.Size() < needed {
		return gxm.TextureDescriptor{}, errors.Wrapf(ErrInvalidTexture, "%dx%d %s needs %d bytes, memory holds %d", width, height, format, needed, data.Size())
	}

	return gxm.TextureDescriptor{
		Format:   format,
		Width:    width,
		Height:   height,
		MipCount: mipCount,
		Layout:   gxm.LayoutLinear,
		Address:  data.Address,
	}, nil
}

func (d *Device) InitSwizzledTexture(data gxm.Memory, format gxm.TextureFormat, width, height, mipCount int) (gxm.TextureDescriptor, error) {
	if err := d.validateDescriptor(data, format, width, height, mipCount); err != nil {
		return gxm.TextureDescriptor{}, err
	}
	if !texfmt.IsCompressed(format) {
		return gxm.TextureDescriptor{}, errors.Wrapf(ErrInvalidTexture, "%s is not a compressed format", format)
	}

	paddedWidth, paddedHeight := texfmt.PaddedDimensions(width, height)
	if needed := texfmt.LevelSize(paddedWidth, paddedHeight, format); data.Size() < needed {
		return gxm.TextureDescriptor{}, errors.Wrapf(ErrInvalidTexture, "%dx%d %s needs %d bytes, memory holds %d", width, height, format, needed, data.Size())
	}

	return gxm.TextureDescriptor{
		Format:   format,
		Width:    width,
		Height:   height,
		MipCount: mipCount,
		Layout:   gxm.LayoutSwizzledArbitrary,
		Address:  data.Address,
	}, nil
}

func (d *Device) mapUSSE(mapped *swiss.Map[uint64, uint32], kind string, mem gxm.Memory) (uint32, error) {
	if mem.IsNil() {
		return 0, errors.Newf("cannot map empty memory as %s USSE memory", kind)
	}
	if _, ok := mapped.Get(mem.Address); ok {
		return 0, errors.Newf("0x%x is already mapped as %s USSE memory", mem.Address, kind)
	}

	offset := d.nextUSSEOffset
	d.nextUSSEOffset += uint32((mem.Size() + uscodeAlignment - 1) &^ (uscodeAlignment - 1))
	mapped.Put(mem.Address, offset)
	return offset, nil
}

func (d *Device) unmapUSSE(mapped *swiss.Map[uint64, uint32], kind string, mem gxm.Memory) error {
	if _, ok := mapped.Get(mem.Address); !ok {
		return errors.Newf("0x%x is not mapped as %s USSE memory", mem.Address, kind)
	}
	mapped.Delete(mem.Address)
	return nil
}

func (d *Device) MapVertexUSSE(mem gxm.Memory) (uint32, error) {
	return d.mapUSSE(d.vertexUSSE, "vertex", mem)
}

func (d *Device) UnmapVertexUSSE(mem gxm.Memory) error {
	return d.unmapUSSE(d.vertexUSSE, "vertex", mem)
}

func (d *Device) MapFragmentUSSE(mem gxm.Memory) (uint32, error) {
	return d.mapUSSE(d.fragmentUSSE, "fragment", mem)
}

func (d *Device) UnmapFragmentUSSE(mem gxm.Memory) error {
	return d.unmapUSSE(d.fragmentUSSE, "fragment", mem)
}

// MappedUSSECount returns how many regions are mapped as vertex and fragment USSE memory
func (d *Device) MappedUSSECount() (vertex, fragment int) {
	return d.vertexUSSE.Count(), d.fragmentUSSE.Count()
}
