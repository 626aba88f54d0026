package memutils

import (
	"math/bits"
	"strings"
)

// FlagStringMapping renders bitflag types as a pipe-separated list of registered flag names
type FlagStringMapping[T ~int32 | ~uint32] struct {
	names map[T]string
}

func NewFlagStringMapping[T ~int32 | ~uint32]() FlagStringMapping[T] {
	return FlagStringMapping[T]{names: make(map[T]string)}
}

func (m FlagStringMapping[T]) Register(flag T, name string) {
	m.names[flag] = name
}

func (m FlagStringMapping[T]) FlagsToString(flags T) string {
	if flags == 0 {
		return "None"
	}

	var sb strings.Builder
	remaining := uint32(flags)
	for remaining != 0 {
		bit := T(uint32(1) << bits.TrailingZeros32(remaining))
		remaining &^= uint32(bit)

		if sb.Len() > 0 {
			sb.WriteByte('|')
		}

		name, ok := m.names[bit]
		if !ok {
			name = "Unknown"
		}
		sb.WriteString(name)
	}

	return sb.String()
}
