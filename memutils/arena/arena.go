// Package arena tracks the suballocations of one contiguous range of bytes using a
// two-level segregated fit (TLSF) free list. It never touches the bytes themselves: the
// consumer owns the backing memory and uses the offsets that Arena hands out.
package arena

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/dolthub/swiss"
	"github.com/gxmkit/texarsenal/memutils"
	"github.com/pkg/errors"
)

const (
	smallBufferSize        = 256
	secondLevelIndex uint8 = 5
	memoryClassShift       = 7
	maxMemoryClasses       = 65 - memoryClassShift
)

// ErrNotAllocated is returned from Free when the offset does not belong to a live allocation
var ErrNotAllocated = errors.New("offset does not map to a live allocation")

type region struct {
	offset int
	size   int
	// requested is the size the consumer asked for; size may be larger by DebugMargin
	requested int
	taken     bool

	prevPhysical *region
	nextPhysical *region
	prevFree     *region
	nextFree     *region
}

// Arena is a TLSF offset allocator over [0, Size()). The last physical region is always
// a free "tail" region (possibly empty) that absorbs frees adjacent to it, so that the
// free lists only contain holes in the middle of the range.
//
// Arena is not safe for concurrent use.
type Arena struct {
	size int

	allocCount       int
	freeRegionCount  int
	freeRegionsBytes int

	isFreeBitmap      uint32
	innerIsFreeBitmap [maxMemoryClasses]uint32
	freeList          []*region

	head  *region
	tail  *region
	taken *swiss.Map[int, *region]
}

var _ memutils.Validatable = &Arena{}

// New creates an Arena managing size bytes
func New(size int) *Arena {
	a := &Arena{
		size:  size,
		taken: swiss.NewMap[int, *region](42),
	}

	a.tail = &region{size: size}
	a.head = a.tail

	memoryClass := a.sizeToMemoryClass(size)
	sli := a.sizeToSecondIndex(size, memoryClass)

	listSize := 1
	if memoryClass != 0 {
		listSize = int(memoryClass-1)*int(uint(1)<<secondLevelIndex) + int(sli+1)
	}
	a.freeList = make([]*region, listSize+4)

	return a
}

// Size returns the number of bytes the arena was created with
func (a *Arena) Size() int { return a.size }

// SumFreeSize returns the number of bytes not currently allocated
func (a *Arena) SumFreeSize() int { return a.freeRegionsBytes + a.tail.size }

// AllocationCount returns the number of live allocations
func (a *Arena) AllocationCount() int { return a.allocCount }

// IsEmpty returns true if the arena has no live allocations
func (a *Arena) IsEmpty() bool { return a.allocCount == 0 }

// Alloc reserves size bytes aligned to alignment, which must be a power of two. It returns
// false if no free region can hold the request.
func (a *Arena) Alloc(size int, alignment uint) (int, bool, error) {
	if size < 1 {
		return 0, false, errors.Errorf("invalid allocation size: %d", size)
	}
	if alignment == 0 {
		alignment = 1
	}
	err := memutils.CheckPow2(alignment, "alignment")
	if err != nil {
		return 0, false, err
	}

	memutils.DebugValidate(a)

	need := size + memutils.DebugMargin
	if need > a.SumFreeSize() {
		return 0, false, nil
	}

	target, offset := a.findRegion(need, alignment)
	if target == nil {
		return 0, false, nil
	}

	a.commit(target, offset, need, size)
	return offset, true, nil
}

func (a *Arena) findRegion(need int, alignment uint) (*region, int) {
	if a.freeRegionCount == 0 {
		if offset, ok := a.fits(a.tail, need, alignment); ok {
			return a.tail, offset
		}
		return nil, 0
	}

	// Round up to the next list so that any region found there is guaranteed to be large enough
	sizeForNextList := need
	smallSizeStep := smallBufferSize / 4
	if need > smallBufferSize {
		mostSignificantBit := 63 - bits.LeadingZeros64(uint64(need))
		sizeForNextList += int(uint(1) << (mostSignificantBit - int(secondLevelIndex)))
	} else if need > smallBufferSize-smallSizeStep {
		sizeForNextList = smallBufferSize + 1
	} else {
		sizeForNextList += smallSizeStep
	}

	nextListBlock, nextListIndex := a.findFreeList(sizeForNextList)
	for candidate := nextListBlock; candidate != nil; candidate = candidate.nextFree {
		if offset, ok := a.fits(candidate, need, alignment); ok {
			return candidate, offset
		}
	}

	if offset, ok := a.fits(a.tail, need, alignment); ok {
		return a.tail, offset
	}

	prevListBlock, _ := a.findFreeList(need)
	for candidate := prevListBlock; candidate != nil; candidate = candidate.nextFree {
		if offset, ok := a.fits(candidate, need, alignment); ok {
			return candidate, offset
		}
	}

	if nextListBlock == nil {
		return nil, 0
	}

	// Alignment defeated the fast paths, walk every larger list
	for listIndex := nextListIndex + 1; listIndex < len(a.freeList); listIndex++ {
		for candidate := a.freeList[listIndex]; candidate != nil; candidate = candidate.nextFree {
			if offset, ok := a.fits(candidate, need, alignment); ok {
				return candidate, offset
			}
		}
	}

	return nil, 0
}

func (a *Arena) fits(r *region, need int, alignment uint) (int, bool) {
	alignedOffset := memutils.AlignUp(r.offset, alignment)
	if r.size < need+alignedOffset-r.offset {
		return 0, false
	}
	return alignedOffset, true
}

func (a *Arena) commit(r *region, offset, need, requested int) {
	if r != a.tail {
		a.removeFree(r)
	}

	missingAlignment := offset - r.offset
	if missingAlignment != 0 {
		prev := r.prevPhysical
		if prev != nil && !prev.taken {
			a.removeFree(prev)
			prev.size += missingAlignment
			a.insertFree(prev)
		} else {
			padding := &region{
				offset:       r.offset,
				size:         missingAlignment,
				prevPhysical: prev,
				nextPhysical: r,
			}
			if prev != nil {
				prev.nextPhysical = padding
			} else {
				a.head = padding
			}
			r.prevPhysical = padding
			a.insertFree(padding)
		}

		r.offset += missingAlignment
		r.size -= missingAlignment
	}

	if r.size < need {
		panic(fmt.Sprintf("region at offset %d is too small for a %d byte allocation", r.offset, need))
	}

	if r.size > need || r == a.tail {
		remainder := &region{
			offset:       r.offset + need,
			size:         r.size - need,
			prevPhysical: r,
			nextPhysical: r.nextPhysical,
		}
		if r.nextPhysical != nil {
			r.nextPhysical.prevPhysical = remainder
		}
		r.nextPhysical = remainder
		r.size = need

		if r == a.tail {
			a.tail = remainder
		} else {
			a.insertFree(remainder)
		}
	}

	r.taken = true
	r.requested = requested
	a.taken.Put(r.offset, r)
	a.allocCount++
}

// Free releases the allocation that starts at offset
func (a *Arena) Free(offset int) error {
	r, ok := a.taken.Get(offset)
	if !ok {
		return errors.Wrapf(ErrNotAllocated, "offset %d", offset)
	}

	a.taken.Delete(offset)
	a.allocCount--
	r.taken = false
	r.requested = 0

	prev := r.prevPhysical
	if prev != nil && !prev.taken {
		a.removeFree(prev)
		r = a.merge(prev, r)
	}

	next := r.nextPhysical
	if next == a.tail {
		a.tail = a.merge(r, next)
		return nil
	}

	if !next.taken {
		a.removeFree(next)
		r = a.merge(r, next)
	}

	a.insertFree(r)
	return nil
}

// merge folds second into first, which must be physically adjacent, and returns first
func (a *Arena) merge(first, second *region) *region {
	if first.nextPhysical != second {
		panic("cannot merge separate physical regions")
	}

	first.size += second.size
	first.nextPhysical = second.nextPhysical
	if second.nextPhysical != nil {
		second.nextPhysical.prevPhysical = first
	}

	return first
}

// Clear instantly frees all allocations
func (a *Arena) Clear() {
	a.allocCount = 0
	a.freeRegionCount = 0
	a.freeRegionsBytes = 0
	a.isFreeBitmap = 0
	a.innerIsFreeBitmap = [maxMemoryClasses]uint32{}
	a.freeList = make([]*region, len(a.freeList))
	a.taken = swiss.NewMap[int, *region](42)

	a.tail = &region{size: a.size}
	a.head = a.tail
}

func (a *Arena) sizeToMemoryClass(size int) uint8 {
	if size > smallBufferSize {
		mostSignificantBit := uint8(63 - bits.LeadingZeros64(uint64(size)))
		return mostSignificantBit - memoryClassShift
	}

	return 0
}

func (a *Arena) sizeToSecondIndex(size int, memoryClass uint8) uint16 {
	if memoryClass != 0 {
		mask := uint(1) << secondLevelIndex
		indexVal := uint(size) >> (memoryClass + memoryClassShift - secondLevelIndex)
		return uint16(indexVal ^ mask)
	}

	return uint16((size - 1) / 64)
}

func (a *Arena) listIndex(memoryClass uint8, secondIndex uint16) int {
	if memoryClass == 0 {
		return int(secondIndex)
	}

	return int(uint32(memoryClass-1)*uint32(uint(1)<<secondLevelIndex)+uint32(secondIndex)) + 4
}

func (a *Arena) findFreeList(size int) (*region, int) {
	memoryClass := a.sizeToMemoryClass(size)
	innerFreeMap := a.innerIsFreeBitmap[memoryClass] & (math.MaxUint32 << a.sizeToSecondIndex(size, memoryClass))

	if innerFreeMap == 0 {
		freeMap := a.isFreeBitmap & (math.MaxUint32 << (memoryClass + 1))
		if freeMap == 0 {
			return nil, 0
		}

		memoryClass = uint8(bits.TrailingZeros32(freeMap))
		innerFreeMap = a.innerIsFreeBitmap[memoryClass]
		if innerFreeMap == 0 {
			panic("free bitmap is in an invalid state")
		}
	}

	index := a.listIndex(memoryClass, uint16(bits.TrailingZeros32(innerFreeMap)))
	if a.freeList[index] == nil {
		panic(fmt.Sprintf("free list index %d was flagged as populated but is empty", index))
	}

	return a.freeList[index], index
}

func (a *Arena) insertFree(r *region) {
	if r == a.tail {
		panic("the tail region is never listed")
	}

	memoryClass := a.sizeToMemoryClass(r.size)
	secondIndex := a.sizeToSecondIndex(r.size, memoryClass)
	index := a.listIndex(memoryClass, secondIndex)

	r.prevFree = nil
	r.nextFree = a.freeList[index]
	a.freeList[index] = r
	if r.nextFree != nil {
		r.nextFree.prevFree = r
	} else {
		a.innerIsFreeBitmap[memoryClass] |= 1 << secondIndex
		a.isFreeBitmap |= 1 << memoryClass
	}

	a.freeRegionCount++
	a.freeRegionsBytes += r.size
}

func (a *Arena) removeFree(r *region) {
	if r.nextFree != nil {
		r.nextFree.prevFree = r.prevFree
	}

	if r.prevFree != nil {
		r.prevFree.nextFree = r.nextFree
	} else {
		memoryClass := a.sizeToMemoryClass(r.size)
		secondIndex := a.sizeToSecondIndex(r.size, memoryClass)
		index := a.listIndex(memoryClass, secondIndex)

		if a.freeList[index] != r {
			panic("region was not at the head of its free list")
		}

		a.freeList[index] = r.nextFree
		if r.nextFree == nil {
			a.innerIsFreeBitmap[memoryClass] &^= 1 << secondIndex
			if a.innerIsFreeBitmap[memoryClass] == 0 {
				a.isFreeBitmap &^= 1 << memoryClass
			}
		}
	}

	r.prevFree = nil
	r.nextFree = nil
	a.freeRegionCount--
	a.freeRegionsBytes -= r.size
}
