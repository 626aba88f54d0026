package tam

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/memutils"
	"golang.org/x/exp/slog"
)

const defaultAlignment uint = 16

// Budget reports how much of one memory domain is in use
type Budget struct {
	Statistics memutils.Statistics
	// Usage is the number of bytes held by live blocks
	Usage int
	// Budget is the capacity of the domain: 0 if the device lacks it and -1 if it is unbounded
	Budget int
}

// Allocator hands out memory from the device's domains, falling back to later domains when
// the preferred one is exhausted. It is not safe for concurrent use.
type Allocator struct {
	logger *slog.Logger
	device gxm.Device

	hostFallback bool
	usseDomain   gxm.MemoryDomain

	blockCount [gxm.DomainCount]int
	blockBytes [gxm.DomainCount]int
	live       *swiss.Map[*Block, struct{}]
}

// NewAllocator creates an Allocator over the heaps of device. The CreateDisableHostFallback
// and CreateUseVRAMForUSSE flags affect it.
func NewAllocator(logger *slog.Logger, device gxm.Device, flags CreateFlags) *Allocator {
	allocator := &Allocator{
		logger:       logger,
		device:       device,
		hostFallback: flags&CreateDisableHostFallback == 0,
		usseDomain:   gxm.DomainRAM,
		live:         swiss.NewMap[*Block, struct{}](64),
	}

	if flags&CreateUseVRAMForUSSE != 0 {
		allocator.usseDomain = gxm.DomainVRAM
	}
	return allocator
}

// Allocate reserves size bytes, trying preferred first and then each later domain in order.
// The host heap is tried last unless host fallback is disabled. The returned block reports
// the domain that actually served it.
func (a *Allocator) Allocate(size int, preferred gxm.MemoryDomain) (*Block, error) {
	return a.AllocateAligned(size, defaultAlignment, preferred)
}

// AllocateAligned is Allocate with an explicit power-of-two alignment
func (a *Allocator) AllocateAligned(size int, alignment uint, preferred gxm.MemoryDomain) (*Block, error) {
	if size < 1 {
		return nil, errors.Wrapf(ErrInvalidValue, "invalid allocation size: %d", size)
	}
	if preferred < 0 || int(preferred) >= gxm.DomainCount {
		return nil, errors.Wrapf(ErrInvalidValue, "unknown memory domain %d", preferred)
	}
	err := memutils.CheckPow2(alignment, "alignment")
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidValue)
	}

	for domain := preferred; int(domain) < gxm.DomainCount; domain++ {
		if domain == gxm.DomainHost && preferred != gxm.DomainHost && !a.hostFallback {
			break
		}

		block, err := a.allocateFrom(domain, size, alignment)
		if err != nil {
			return nil, err
		}
		if block == nil {
			continue
		}

		if domain != preferred {
			a.logger.Warn("Allocator::Allocate fell back",
				slog.String("Preferred", preferred.String()),
				slog.String("Domain", domain.String()),
				slog.Int("Size", size),
			)
		}
		return block, nil
	}

	return nil, errors.Wrapf(ErrOutOfMemory, "no domain from %s onward can hold %d bytes", preferred, size)
}

// AllocateStaging reserves size bytes of host memory for transient copies. It never falls
// back to a device domain.
func (a *Allocator) AllocateStaging(size int) (*Block, error) {
	if size < 1 {
		return nil, errors.Wrapf(ErrInvalidValue, "invalid allocation size: %d", size)
	}

	block, err := a.allocateFrom(gxm.DomainHost, size, defaultAlignment)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, errors.Wrapf(ErrOutOfMemory, "host heap cannot hold %d staging bytes", size)
	}
	return block, nil
}

// allocateFrom returns a nil block when the domain is absent or exhausted
func (a *Allocator) allocateFrom(domain gxm.MemoryDomain, size int, alignment uint) (*Block, error) {
	heap := a.device.Heap(domain)
	if heap == nil {
		return nil, nil
	}

	mem, err := heap.Allocate(size, alignment)
	if errors.Is(err, gxm.ErrHeapExhausted) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to allocate %d bytes from the %s domain", size, domain), ErrInternal)
	}

	block := &Block{mem: mem, domain: domain}
	a.blockCount[domain]++
	a.blockBytes[domain] += size
	a.live.Put(block, struct{}{})

	a.logger.Debug("Allocator::Allocate",
		slog.String("Domain", domain.String()),
		slog.Int("Size", size),
		slog.Uint64("Address", mem.Address),
	)
	return block, nil
}

// Free returns block to the domain it was allocated from. Freeing nil does nothing.
func (a *Allocator) Free(block *Block) error {
	if block == nil {
		return nil
	}
	if block.freed {
		return errors.Wrapf(ErrInternal, "block at 0x%x was already freed", block.Address())
	}

	heap := a.device.Heap(block.domain)
	if heap == nil {
		return errors.Wrapf(ErrInternal, "block at 0x%x belongs to the absent %s domain", block.Address(), block.domain)
	}

	err := heap.Free(block.mem)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to free block at 0x%x", block.Address()), ErrInternal)
	}

	block.freed = true
	a.blockCount[block.domain]--
	a.blockBytes[block.domain] -= block.Size()
	a.live.Delete(block)

	a.logger.Debug("Allocator::Free",
		slog.String("Domain", block.domain.String()),
		slog.Int("Size", block.Size()),
		slog.Uint64("Address", block.Address()),
	)
	return nil
}

// LiveBlockCount is the number of blocks allocated and not yet freed, across all domains
func (a *Allocator) LiveBlockCount() int {
	return a.live.Count()
}

// visitLive calls visit for every block that has not been freed
func (a *Allocator) visitLive(visit func(block *Block)) {
	a.live.Iter(func(block *Block, _ struct{}) bool {
		visit(block)
		return false
	})
}

// Budgets reports the usage of every domain
func (a *Allocator) Budgets() [gxm.DomainCount]Budget {
	var budgets [gxm.DomainCount]Budget

	for domain := gxm.DomainVRAM; int(domain) < gxm.DomainCount; domain++ {
		budget := &budgets[domain]
		budget.Statistics.BlockCount = a.blockCount[domain]
		budget.Statistics.AllocationCount = a.blockCount[domain]
		budget.Statistics.BlockBytes = a.blockBytes[domain]
		budget.Statistics.AllocationBytes = a.blockBytes[domain]
		budget.Usage = a.blockBytes[domain]

		if heap := a.device.Heap(domain); heap != nil {
			budget.Budget = heap.Capacity()
		}
	}

	return budgets
}
