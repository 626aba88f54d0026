//go:build debug_mem_utils

package memutils

const (
	// DebugMargin is the number of bytes of guard data placed after every allocation in an
	// arena managed by memutils/arena
	DebugMargin int = 16
	// corruptionDetectionMagicValue is a 4-byte pattern written across the guard bytes
	corruptionDetectionMagicValue uint32 = 0x7F84E666
)

// WriteMagicValue writes an easy-to-identify marker across DebugMargin bytes of data at offset.
// This method no-ops unless the debug_mem_utils build tag is present.
func WriteMagicValue(data []byte, offset int) {
	for i := 0; i < DebugMargin; i += 4 {
		putMagic(data[offset+i:])
	}
}

// ValidateMagicValue verifies that the marker written by WriteMagicValue is still present.
// It returns true if the value is still present and false otherwise.
// This method no-ops unless the debug_mem_utils build tag is present.
func ValidateMagicValue(data []byte, offset int) bool {
	for i := 0; i < DebugMargin; i += 4 {
		b := data[offset+i:]
		value := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		if value != corruptionDetectionMagicValue {
			return false
		}
	}

	return true
}

func putMagic(b []byte) {
	b[0] = byte(corruptionDetectionMagicValue)
	b[1] = byte(corruptionDetectionMagicValue >> 8)
	b[2] = byte(corruptionDetectionMagicValue >> 16)
	b[3] = byte(corruptionDetectionMagicValue >> 24)
}

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_mem_utils build tag is present
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics if it is not.
// This method no-ops unless the debug_mem_utils build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
	err := CheckPow2[T](value, name)
	if err != nil {
		panic(err)
	}
}
