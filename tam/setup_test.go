package tam_test

import (
	"io"
	"testing"

	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/gxm/soft"
	"github.com/gxmkit/texarsenal/tam"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type ManagerSetup struct {
	Config  soft.Config
	Options tam.CreateOptions
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard))
}

// smallConfig has a 64KB VRAM domain, a 256KB RAM domain, no slow domain and a 1MB host heap
func smallConfig() soft.Config {
	var config soft.Config
	config.HeapSizes[gxm.DomainVRAM] = 64 * 1024
	config.HeapSizes[gxm.DomainRAM] = 256 * 1024
	config.HostLimit = 1024 * 1024
	return config
}

func readyDevice(t *testing.T, config soft.Config) *soft.Device {
	device, err := soft.New(testLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, device.Close())
	})
	return device
}

func readyManager(t *testing.T, setup ManagerSetup) (*soft.Device, *tam.Manager) {
	device := readyDevice(t, setup.Config)

	manager, err := tam.New(testLogger(), device, setup.Options)
	require.NoError(t, err)
	return device, manager
}

func patterned(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	return data
}

func solidPixels(width, height int, px ...byte) []byte {
	data := make([]byte, 0, width*height*len(px))
	for i := 0; i < width*height; i++ {
		data = append(data, px...)
	}
	return data
}
