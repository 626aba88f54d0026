package tam

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// USSEKind selects which shader unit a block of instruction memory is mapped for
type USSEKind uint8

const (
	USSEVertex USSEKind = iota
	USSEFragment
)

func (k USSEKind) String() string {
	switch k {
	case USSEVertex:
		return "Vertex"
	case USSEFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// USSEBlock is a block of memory mapped as shader instruction memory
type USSEBlock struct {
	alloc  *Allocator
	block  *Block
	kind   USSEKind
	offset uint32
}

// Offset is the block's offset within the unit's instruction address space
func (b *USSEBlock) Offset() uint32 { return b.offset }

func (b *USSEBlock) Kind() USSEKind { return b.kind }

// Block is the memory behind the mapping, or nil once it has been freed
func (b *USSEBlock) Block() *Block { return b.block }

// AllocVertexUSSE allocates size bytes and maps them as vertex instruction memory
func (a *Allocator) AllocVertexUSSE(size int) (*USSEBlock, error) {
	return a.allocUSSE(USSEVertex, size)
}

// AllocFragmentUSSE allocates size bytes and maps them as fragment instruction memory
func (a *Allocator) AllocFragmentUSSE(size int) (*USSEBlock, error) {
	return a.allocUSSE(USSEFragment, size)
}

func (a *Allocator) allocUSSE(kind USSEKind, size int) (*USSEBlock, error) {
	block, err := a.Allocate(size, a.usseDomain)
	if err != nil {
		return nil, err
	}

	var offset uint32
	if kind == USSEVertex {
		offset, err = a.device.MapVertexUSSE(block.Memory())
	} else {
		offset, err = a.device.MapFragmentUSSE(block.Memory())
	}
	if err != nil {
		freeErr := a.Free(block)
		return nil, errors.CombineErrors(errors.Mark(errors.Wrapf(err, "failed to map %d bytes as %s USSE memory", size, kind), ErrInternal), freeErr)
	}

	a.logger.Debug("Allocator::allocUSSE",
		slog.String("Kind", kind.String()),
		slog.String("Domain", block.Domain().String()),
		slog.Int("Size", size),
		slog.Int("Offset", int(offset)),
	)
	return &USSEBlock{alloc: a, block: block, kind: kind, offset: offset}, nil
}

// Free unmaps the block and returns its memory to the domain it came from
func (b *USSEBlock) Free() error {
	if b.block == nil {
		return errors.Wrap(ErrInternal, "USSE block was already freed")
	}

	var err error
	if b.kind == USSEVertex {
		err = b.alloc.device.UnmapVertexUSSE(b.block.Memory())
	} else {
		err = b.alloc.device.UnmapFragmentUSSE(b.block.Memory())
	}
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to unmap %s USSE memory", b.kind), ErrInternal)
	}

	err = b.alloc.Free(b.block)
	b.block = nil
	return err
}
