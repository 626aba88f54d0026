package arena

import (
	"github.com/gxmkit/texarsenal/memutils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
)

// Validate walks the physical region chain and the free lists and returns an error if any
// of the arena's bookkeeping disagrees with itself
func (a *Arena) Validate() error {
	if a.tail.nextPhysical != nil {
		return errors.New("the tail region is not the last physical region")
	}
	if a.tail.taken {
		return errors.New("the tail region is marked as allocated")
	}

	var offset, allocCount, freeCount, freeBytes int
	var prev *region
	for r := a.head; r != nil; prev, r = r, r.nextPhysical {
		if r.prevPhysical != prev {
			return errors.Errorf("region at offset %d has a broken back link", r.offset)
		}
		if r.offset != offset {
			return errors.Errorf("region at offset %d was expected at offset %d", r.offset, offset)
		}
		offset += r.size

		if r.taken {
			allocCount++
			found, ok := a.taken.Get(r.offset)
			if !ok || found != r {
				return errors.Errorf("allocated region at offset %d is missing from the allocation map", r.offset)
			}
			if r.requested+memutils.DebugMargin != r.size {
				return errors.Errorf("allocated region at offset %d has size %d for a %d byte request", r.offset, r.size, r.requested)
			}
			continue
		}

		if r == a.tail {
			continue
		}

		if prev != nil && !prev.taken {
			return errors.Errorf("free region at offset %d was not merged with the free region before it", r.offset)
		}
		if r.size == 0 {
			return errors.Errorf("listed free region at offset %d is empty", r.offset)
		}
		freeCount++
		freeBytes += r.size

		if !a.isListed(r) {
			return errors.Errorf("free region at offset %d is not in its free list", r.offset)
		}
	}

	if offset != a.size {
		return errors.Errorf("regions cover %d bytes of a %d byte arena", offset, a.size)
	}
	if allocCount != a.allocCount || allocCount != a.taken.Count() {
		return errors.Errorf("counted %d allocations but the arena tracks %d", allocCount, a.allocCount)
	}
	if freeCount != a.freeRegionCount {
		return errors.Errorf("counted %d free regions but the arena tracks %d", freeCount, a.freeRegionCount)
	}
	if freeBytes != a.freeRegionsBytes {
		return errors.Errorf("counted %d free bytes but the arena tracks %d", freeBytes, a.freeRegionsBytes)
	}

	return nil
}

func (a *Arena) isListed(target *region) bool {
	memoryClass := a.sizeToMemoryClass(target.size)
	index := a.listIndex(memoryClass, a.sizeToSecondIndex(target.size, memoryClass))
	for r := a.freeList[index]; r != nil; r = r.nextFree {
		if r == target {
			return true
		}
	}

	return false
}

// CheckCorruption verifies the guard bytes behind every live allocation in data, which must
// be the memory this arena manages. It always succeeds unless built with debug_mem_utils.
func (a *Arena) CheckCorruption(data []byte) error {
	for r := a.head; r != nil; r = r.nextPhysical {
		if r.taken && !memutils.ValidateMagicValue(data, r.offset+r.requested) {
			return errors.Errorf("memory corruption detected after the allocation at offset %d", r.offset)
		}
	}

	return nil
}

// RequestedSize returns the size that was asked for when the allocation at offset was made
func (a *Arena) RequestedSize(offset int) (int, bool) {
	r, ok := a.taken.Get(offset)
	if !ok {
		return 0, false
	}
	return r.requested, true
}

// VisitRegions calls visit for every region in physical order, allocated or not
func (a *Arena) VisitRegions(visit func(offset, size int, allocated bool) error) error {
	for r := a.head; r != nil; r = r.nextPhysical {
		if r.size == 0 {
			continue
		}
		if err := visit(r.offset, r.size, r.taken); err != nil {
			return err
		}
	}

	return nil
}

func (a *Arena) AddStatistics(stats *memutils.Statistics) {
	stats.BlockCount++
	stats.AllocationCount += a.allocCount
	stats.BlockBytes += a.size
	stats.AllocationBytes += a.size - a.SumFreeSize()
}

func (a *Arena) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.BlockCount++
	stats.BlockBytes += a.size

	for r := a.head; r != nil; r = r.nextPhysical {
		if r.taken {
			stats.AddAllocation(r.size)
		} else if r.size > 0 {
			stats.AddUnusedRange(r.size)
		}
	}
}

// PrintDetailedMap writes every region of the arena into json as a "Regions" array
func (a *Arena) PrintDetailedMap(json jwriter.ObjectState) {
	json.Name("TotalBytes").Int(a.size)
	json.Name("UnusedBytes").Int(a.SumFreeSize())
	json.Name("Allocations").Int(a.allocCount)
	json.Name("UnusedRanges").Int(a.freeRegionCount + min(a.tail.size, 1))

	regions := json.Name("Regions").Array()
	defer regions.End()

	for r := a.head; r != nil; r = r.nextPhysical {
		if r.size == 0 {
			continue
		}

		obj := regions.Object()
		obj.Name("Offset").Int(r.offset)
		obj.Name("Size").Int(r.size)
		if r.taken {
			obj.Name("Type").String("ALLOCATION")
			obj.Name("Requested").Int(r.requested)
		} else {
			obj.Name("Type").String("FREE")
		}
		obj.End()
	}
}
