package tam

import (
	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/memutils"
)

// ScratchPool is a bump allocator over one block, meant for data that lives for one frame.
// Allocations are never freed individually: Reset reclaims all of them at once. It is not
// safe for concurrent use.
type ScratchPool struct {
	alloc    *Allocator
	block    *Block
	offset   int
	capacity int
}

// NewScratchPool reserves capacity bytes from alloc, preferring shared memory
func NewScratchPool(alloc *Allocator, capacity int) (*ScratchPool, error) {
	block, err := alloc.Allocate(capacity, gxm.DomainRAM)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reserve the scratch pool")
	}

	return &ScratchPool{
		alloc:    alloc,
		block:    block,
		capacity: capacity,
	}, nil
}

// Malloc returns size bytes at the current offset, with no alignment guarantee. It returns
// false if the pool cannot hold them.
func (p *ScratchPool) Malloc(size int) (View, bool) {
	return p.reserve(p.offset, size)
}

// Memalign is Malloc with the returned offset rounded up to alignment. It returns false if
// alignment is not a power of two. Zero means no alignment.
func (p *ScratchPool) Memalign(size int, alignment uint) (View, bool) {
	if alignment == 0 {
		alignment = 1
	}
	if memutils.CheckPow2(alignment, "alignment") != nil {
		return View{}, false
	}
	return p.reserve(memutils.AlignUp(p.offset, alignment), size)
}

func (p *ScratchPool) reserve(offset, size int) (View, bool) {
	if p.block == nil || size < 0 || offset+size >= p.capacity {
		return View{}, false
	}

	view, err := p.block.View(offset, size)
	if err != nil {
		panic(err)
	}
	p.offset = offset + size
	return view, true
}

// FreeSpace is the number of bytes past the current offset
func (p *ScratchPool) FreeSpace() int {
	return p.capacity - p.offset
}

func (p *ScratchPool) Capacity() int { return p.capacity }

// Domain is the memory domain the pool's block came from
func (p *ScratchPool) Domain() gxm.MemoryDomain { return p.block.Domain() }

// Reset reclaims every allocation made from the pool
func (p *ScratchPool) Reset() {
	p.offset = 0
}

// Destroy returns the pool's block to the allocator
func (p *ScratchPool) Destroy() error {
	if p.block == nil {
		return nil
	}

	err := p.alloc.Free(p.block)
	p.block = nil
	p.offset = 0
	p.capacity = 0
	return err
}
