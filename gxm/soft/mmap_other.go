//go:build !(linux || darwin || freebsd)

package soft

func mapRegion(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func unmapRegion(data []byte) error {
	return nil
}
