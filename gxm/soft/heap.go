package soft

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/memutils"
	"github.com/gxmkit/texarsenal/memutils/arena"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

const hostAddressBase uint64 = 0x8000_0000_0000

// domainHeap serves one memory domain out of a single mapped region, tracking its
// suballocations with an arena
type domainHeap struct {
	domain gxm.MemoryDomain
	base   uint64
	data   []byte
	arena  *arena.Arena
}

var _ gxm.Heap = &domainHeap{}

func newDomainHeap(domain gxm.MemoryDomain, base uint64, size int) (*domainHeap, error) {
	data, err := mapRegion(size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to map %d bytes for the %s domain", size, domain)
	}

	return &domainHeap{
		domain: domain,
		base:   base,
		data:   data,
		arena:  arena.New(size),
	}, nil
}

func (h *domainHeap) Domain() gxm.MemoryDomain { return h.domain }
func (h *domainHeap) Capacity() int            { return h.arena.Size() }
func (h *domainHeap) FreeBytes() int           { return h.arena.SumFreeSize() }

func (h *domainHeap) Allocate(size int, alignment uint) (gxm.Memory, error) {
	offset, ok, err := h.arena.Alloc(size, alignment)
	if err != nil {
		return gxm.Memory{}, err
	}
	if !ok {
		return gxm.Memory{}, errors.Wrapf(gxm.ErrHeapExhausted, "%s domain cannot hold %d bytes (%d free)", h.domain, size, h.arena.SumFreeSize())
	}

	memutils.WriteMagicValue(h.data, offset+size)
	return gxm.Memory{
		Address: h.base + uint64(offset),
		Bytes:   h.data[offset : offset+size : offset+size],
	}, nil
}

func (h *domainHeap) Free(mem gxm.Memory) error {
	if mem.Address < h.base || mem.Address >= h.base+uint64(len(h.data)) {
		return errors.Newf("address 0x%x does not belong to the %s domain", mem.Address, h.domain)
	}

	offset := int(mem.Address - h.base)
	if requested, ok := h.arena.RequestedSize(offset); ok && !memutils.ValidateMagicValue(h.data, offset+requested) {
		return errors.Newf("memory corruption detected after 0x%x in the %s domain", mem.Address, h.domain)
	}

	return errors.Wrapf(h.arena.Free(offset), "%s domain", h.domain)
}

// CheckCorruption validates the guard bytes of every live allocation in the domain
func (h *domainHeap) CheckCorruption() error {
	return h.arena.CheckCorruption(h.data)
}

func (h *domainHeap) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	h.arena.AddDetailedStatistics(stats)
}

func (h *domainHeap) PrintDetailedMap(json jwriter.ObjectState) {
	json.Name("BaseAddress").Int(int(h.base))
	h.arena.PrintDetailedMap(json)
}

func (h *domainHeap) release() error {
	if h.data == nil {
		return nil
	}
	err := unmapRegion(h.data)
	h.data = nil
	return err
}

// hostHeap is the general-purpose heap: every allocation is its own Go slice
type hostHeap struct {
	limit       int
	used        int
	nextAddress uint64
	live        *swiss.Map[uint64, int]
}

var _ gxm.Heap = &hostHeap{}

func newHostHeap(limit int) *hostHeap {
	return &hostHeap{
		limit:       limit,
		nextAddress: hostAddressBase,
		live:        swiss.NewMap[uint64, int](16),
	}
}

func (h *hostHeap) Domain() gxm.MemoryDomain { return gxm.DomainHost }

func (h *hostHeap) Capacity() int {
	return h.limit
}

func (h *hostHeap) FreeBytes() int {
	if h.limit < 0 {
		return -1
	}
	return h.limit - h.used
}

func (h *hostHeap) Allocate(size int, alignment uint) (gxm.Memory, error) {
	if size < 1 {
		return gxm.Memory{}, errors.Newf("invalid allocation size: %d", size)
	}
	if alignment == 0 {
		alignment = 1
	}
	if err := memutils.CheckPow2(alignment, "alignment"); err != nil {
		return gxm.Memory{}, err
	}

	if h.limit >= 0 && h.used+size > h.limit {
		return gxm.Memory{}, errors.Wrapf(gxm.ErrHeapExhausted, "host heap cannot hold %d bytes (%d of %d used)", size, h.used, h.limit)
	}

	address := uint64(memutils.AlignUp(int(h.nextAddress), alignment))
	h.nextAddress = address + uint64(size)
	h.used += size
	h.live.Put(address, size)

	return gxm.Memory{Address: address, Bytes: make([]byte, size)}, nil
}

func (h *hostHeap) Free(mem gxm.Memory) error {
	size, ok := h.live.Get(mem.Address)
	if !ok {
		return errors.Newf("address 0x%x is not a live host allocation", mem.Address)
	}

	h.live.Delete(mem.Address)
	h.used -= size
	return nil
}
