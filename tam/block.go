package tam

import (
	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
)

// Block is a region of memory handed out by an Allocator. It has exactly one owner, which
// must return it to the Allocator once.
type Block struct {
	mem    gxm.Memory
	domain gxm.MemoryDomain
	freed  bool
}

// Address is the device address of the first byte of the block
func (b *Block) Address() uint64 { return b.mem.Address }

// Bytes exposes the block's memory
func (b *Block) Bytes() []byte { return b.mem.Bytes }

func (b *Block) Size() int { return b.mem.Size() }

// Domain is the memory domain the block was actually allocated from, which may be later in
// the fallback order than the domain that was requested
func (b *Block) Domain() gxm.MemoryDomain { return b.domain }

// Memory returns the block as the device sees it
func (b *Block) Memory() gxm.Memory { return b.mem }

// View returns a window of length bytes starting offset bytes into the block
func (b *Block) View(offset, length int) (View, error) {
	if offset < 0 || length < 0 || offset+length > b.Size() {
		return View{}, errors.Newf("view [%d, %d) is outside a block of %d bytes", offset, offset+length, b.Size())
	}

	return View{block: b, offset: offset, length: length}, nil
}

// View is a bounds-checked window over part of a Block
type View struct {
	block  *Block
	offset int
	length int
}

func (v View) IsNil() bool { return v.block == nil }
func (v View) Offset() int { return v.offset }
func (v View) Len() int    { return v.length }

// Address is the device address of the first byte of the view
func (v View) Address() uint64 {
	return v.block.Address() + uint64(v.offset)
}

func (v View) Bytes() []byte {
	if v.block == nil {
		return nil
	}
	return v.block.Bytes()[v.offset : v.offset+v.length : v.offset+v.length]
}
