package tam

import "github.com/gxmkit/texarsenal/memutils"

// CreateFlags indicate specific manager behaviors to activate or deactivate
type CreateFlags int32

var createFlagsMapping = memutils.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	createFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return createFlagsMapping.FlagsToString(f)
}

const (
	// CreateUseVRAM places textures and palettes in dedicated video memory before trying
	// shared memory
	CreateUseVRAM CreateFlags = 1 << iota
	// CreateUseVRAMForUSSE places shader instruction memory in dedicated video memory before
	// trying shared memory
	CreateUseVRAMForUSSE
	// CreateDisableHostFallback prevents allocations from falling back to the host heap once
	// every device domain is exhausted. Staging buffers still come from the host heap.
	CreateDisableHostFallback
	// CreateFastTextureCompression selects the faster, lower fidelity block compressor heuristic
	CreateFastTextureCompression
)

func init() {
	CreateUseVRAM.Register("CreateUseVRAM")
	CreateUseVRAMForUSSE.Register("CreateUseVRAMForUSSE")
	CreateDisableHostFallback.Register("CreateDisableHostFallback")
	CreateFastTextureCompression.Register("CreateFastTextureCompression")
}
