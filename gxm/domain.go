// Package gxm describes the hardware services the texture manager is built on: domain-tagged
// memory heaps, texture descriptor initialization, the downscale transfer unit, and
// instruction (USSE) memory mapping. Package soft provides a host implementation.
package gxm

import (
	"github.com/cockroachdb/errors"
)

// MemoryDomain identifies one of several physically distinct memory pools. Domains are ordered:
// allocation fallback only ever proceeds from a domain to the ones after it.
type MemoryDomain int32

const (
	// DomainVRAM is fast memory dedicated to the GPU
	DomainVRAM MemoryDomain = iota
	// DomainRAM is fast memory shared between the CPU and GPU
	DomainRAM
	// DomainSlow is slower, larger memory used when the fast domains are exhausted
	DomainSlow
	// DomainHost is the general-purpose host heap, the last resort for any allocation
	DomainHost

	// DomainCount is the number of memory domains
	DomainCount int = iota
)

var domainNames = [DomainCount]string{
	DomainVRAM: "VRAM",
	DomainRAM:  "RAM",
	DomainSlow: "SLOW",
	DomainHost: "HOST",
}

func (d MemoryDomain) String() string {
	if d < 0 || int(d) >= DomainCount {
		return "Unknown"
	}
	return domainNames[d]
}

// ParseMemoryDomain returns the domain with the provided name, as produced by MemoryDomain.String
func ParseMemoryDomain(name string) (MemoryDomain, error) {
	for i, domainName := range domainNames {
		if domainName == name {
			return MemoryDomain(i), nil
		}
	}

	return 0, errors.Newf("unknown memory domain %q", name)
}

// ErrHeapExhausted is returned from Heap.Allocate when the heap cannot satisfy the request
var ErrHeapExhausted = errors.New("memory heap exhausted")

// Memory is a range of bytes owned by one Heap. Address is the device-visible address
// of Bytes[0].
type Memory struct {
	Address uint64
	Bytes   []byte
}

// Size returns the number of bytes in the range
func (m Memory) Size() int { return len(m.Bytes) }

// IsNil returns true if the range does not refer to any memory
func (m Memory) IsNil() bool { return m.Bytes == nil }
