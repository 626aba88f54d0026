package gxm

//go:generate mockgen -source device.go -destination ./mocks/mocks.go -package mocks

// TextureLayout is the order texels are stored in memory
type TextureLayout uint8

const (
	// LayoutLinear stores rows one after another, each padded to the stride alignment
	LayoutLinear TextureLayout = iota
	// LayoutSwizzledArbitrary stores compressed blocks in Morton order over a power-of-two
	// padded grid, for textures of any dimension
	LayoutSwizzledArbitrary
)

func (l TextureLayout) String() string {
	switch l {
	case LayoutLinear:
		return "Linear"
	case LayoutSwizzledArbitrary:
		return "SwizzledArbitrary"
	default:
		return "Unknown"
	}
}

// TextureDescriptor is the hardware's view of a texture: where its texels live and how to read them
type TextureDescriptor struct {
	Format TextureFormat
	Width  int
	Height int
	// MipCount is the number of levels stored, including the base level
	MipCount int
	Layout   TextureLayout
	Address  uint64
}

// DownscaleJob halves a region of pixels with a box filter. Src holds SrcHeight rows of
// SrcStride bytes; Dst receives SrcHeight/2 rows of DstStride bytes.
type DownscaleJob struct {
	Format    TransferFormat
	Src       []byte
	SrcWidth  int
	SrcHeight int
	SrcStride int
	Dst       []byte
	DstStride int
	Flags     TransferFlags
}

// Heap is a domain-tagged raw memory allocator
type Heap interface {
	Domain() MemoryDomain
	// Allocate reserves size bytes aligned to alignment. It returns an error wrapping
	// ErrHeapExhausted when the heap cannot hold the request.
	Allocate(size int, alignment uint) (Memory, error)
	// Free releases memory previously returned by Allocate
	Free(mem Memory) error
	// Capacity is the total number of bytes the heap manages, or -1 if it is unbounded
	Capacity() int
	FreeBytes() int
}

// Device is the set of hardware services the texture manager consumes
type Device interface {
	// Heap returns the heap that serves domain, or nil if the device has no such domain
	Heap(domain MemoryDomain) Heap

	InitLinearTexture(data Memory, format TextureFormat, width, height, mipCount int) (TextureDescriptor, error)
	InitSwizzledTexture(data Memory, format TextureFormat, width, height, mipCount int) (TextureDescriptor, error)

	// Downscale submits a transfer to the transfer unit. The transfer may execute after
	// Downscale returns; WaitTransfers blocks until every submitted transfer has completed.
	Downscale(job DownscaleJob) error
	WaitTransfers() error

	MapVertexUSSE(mem Memory) (uint32, error)
	UnmapVertexUSSE(mem Memory) error
	MapFragmentUSSE(mem Memory) (uint32, error)
	UnmapFragmentUSSE(mem Memory) error
}

// BlockCompressor encodes one 4x4 block of RGBA8 pixels, stored row-major in block, into dst.
// It writes 16 bytes when alpha is true (alpha-interpolated) and 8 bytes otherwise.
type BlockCompressor interface {
	CompressBlock(dst []byte, block *[64]byte, alpha bool, highQuality bool)
}

// TextureFilter selects how texels are sampled
type TextureFilter uint8

const (
	FilterPoint TextureFilter = iota
	FilterLinear
)

// MipFilter selects how mip levels are blended
type MipFilter uint8

const (
	MipFilterDisabled MipFilter = iota
	MipFilterNearest
	MipFilterLinear
)

// AddressMode selects how texture coordinates outside [0, 1] are resolved
type AddressMode uint8

const (
	AddressRepeat AddressMode = iota
	AddressMirror
	AddressClamp
)
