package soft

import "github.com/gxmkit/texarsenal/gxm"

const (
	defaultMaxTextureDimension = 4096
	maxMipCount                = 13
)

// Config sizes the memory domains and limits of a soft Device
type Config struct {
	// HeapSizes is the capacity in bytes of each arena-backed domain. A zero entry leaves
	// the domain absent. The DomainHost entry is ignored: see HostLimit.
	HeapSizes [gxm.DomainCount]int
	// HostLimit caps the bytes the host heap will hand out at once. A negative value leaves it
	// unbounded and zero disables the host heap.
	HostLimit int
	// MaxTextureDimension is the largest width or height a texture descriptor accepts. Zero
	// uses the hardware limit of 4096.
	MaxTextureDimension int
}

// DefaultConfig mirrors the memory layout of a handheld with 128MB of dedicated video memory
func DefaultConfig() Config {
	var config Config
	config.HeapSizes[gxm.DomainVRAM] = 128 * 1024 * 1024
	config.HeapSizes[gxm.DomainRAM] = 64 * 1024 * 1024
	config.HeapSizes[gxm.DomainSlow] = 32 * 1024 * 1024
	config.HostLimit = -1
	config.MaxTextureDimension = defaultMaxTextureDimension
	return config
}
