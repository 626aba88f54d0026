package tam_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/gxm/mocks"
	"github.com/gxmkit/texarsenal/gxm/soft"
	"github.com/gxmkit/texarsenal/pixel"
	"github.com/gxmkit/texarsenal/tam"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func requireLinearLevel(t *testing.T, tex *tam.Texture, level, width, height int, px []byte) {
	t.Helper()

	view, err := tex.Level(level)
	require.NoError(t, err)

	stride := max(8, width) * len(px)
	data := view.Bytes()
	for y := 0; y < height; y++ {
		require.Equal(t, solidPixels(width, 1, px...), data[y*stride:y*stride+width*len(px)], "level %d row %d", level, y)
	}
}

func TestGenerateMipmaps(t *testing.T) {
	device, manager := readyManager(t, ManagerSetup{Config: smallConfig()})

	px := []byte{10, 20, 30, 255}
	var tex tam.Texture
	require.NoError(t, manager.AllocTexture(&tex, 8, 8, gxm.FormatU8U8U8U8ABGR, solidPixels(8, 8, px...), pixel.RGBA8))

	require.NoError(t, manager.GenerateMipmaps(&tex, -1))
	require.Equal(t, 3, tex.Descriptor.MipCount)
	require.Len(t, tex.Block().Bytes(), 256+128+64)
	require.Equal(t, 1, manager.Allocator().LiveBlockCount())

	requireLinearLevel(t, &tex, 0, 8, 8, px)

	// The downscales run on the transfer unit's schedule
	submitted, completed := device.TransferCounts()
	require.Equal(t, 2, submitted)
	require.Zero(t, completed)
	level, err := tex.Level(1)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 128), level.Bytes())

	require.NoError(t, device.WaitTransfers())
	requireLinearLevel(t, &tex, 1, 4, 4, px)
	requireLinearLevel(t, &tex, 2, 2, 2, px)

	// Already covered
	block := tex.Block()
	require.NoError(t, manager.GenerateMipmaps(&tex, -1))
	require.NoError(t, manager.GenerateMipmaps(&tex, 2))
	require.Same(t, block, tex.Block())
}

func TestGenerateMipmapsPartialChain(t *testing.T) {
	device, manager := readyManager(t, ManagerSetup{Config: smallConfig()})

	px := []byte{90, 60, 30}
	var tex tam.Texture
	require.NoError(t, manager.AllocTexture(&tex, 16, 16, gxm.FormatU8U8U8BGR, solidPixels(16, 16, px...), pixel.RGB8))

	require.NoError(t, manager.GenerateMipmaps(&tex, 2))
	require.Equal(t, 2, tex.Descriptor.MipCount)

	// Growing the chain completes the downscale still queued against the old one
	require.NoError(t, manager.GenerateMipmaps(&tex, 20))
	require.Equal(t, 4, tex.Descriptor.MipCount)
	submitted, completed := device.TransferCounts()
	require.Equal(t, 4, submitted)
	require.Equal(t, 1, completed)

	require.NoError(t, device.WaitTransfers())
	requireLinearLevel(t, &tex, 0, 16, 16, px)
	requireLinearLevel(t, &tex, 1, 8, 8, px)
	requireLinearLevel(t, &tex, 2, 4, 4, px)
	requireLinearLevel(t, &tex, 3, 2, 2, px)
}

func TestGenerateMipmapsOddWidth(t *testing.T) {
	device, manager := readyManager(t, ManagerSetup{Config: smallConfig()})

	px := []byte{7}
	var tex tam.Texture
	require.NoError(t, manager.AllocTexture(&tex, 9, 6, gxm.FormatU81RRR, solidPixels(9, 6, px...), pixel.L8))

	// The base pads to 16x8, which halves twice before a dimension reaches one texel
	require.NoError(t, manager.GenerateMipmaps(&tex, -1))
	require.Equal(t, 3, tex.Descriptor.MipCount)
	require.NoError(t, device.WaitTransfers())

	level, err := tex.Level(1)
	require.NoError(t, err)
	require.Equal(t, solidPixels(4, 1, px...), level.Bytes()[:4])
}

func TestGenerateMipmapsInPlace(t *testing.T) {
	config := smallConfig()
	config.HostLimit = 0
	device, manager := readyManager(t, ManagerSetup{Config: config})

	px := []byte{1, 2, 3, 4}
	var tex tam.Texture
	require.NoError(t, manager.AllocTexture(&tex, 8, 8, gxm.FormatU8U8U8U8ABGR, solidPixels(8, 8, px...), pixel.RGBA8))

	require.NoError(t, manager.GenerateMipmaps(&tex, -1))
	require.Equal(t, 1, manager.Allocator().LiveBlockCount())
	require.Equal(t, 256*1024-448, device.Heap(gxm.DomainRAM).FreeBytes())

	require.NoError(t, device.WaitTransfers())
	requireLinearLevel(t, &tex, 0, 8, 8, px)
	requireLinearLevel(t, &tex, 1, 4, 4, px)
}

func outOfMemoryConfig(hostLimit int) soft.Config {
	var config soft.Config
	config.HeapSizes[gxm.DomainRAM] = 1200
	config.HostLimit = hostLimit
	return config
}

func TestGenerateMipmapsOutOfMemoryRestores(t *testing.T) {
	for name, hostLimit := range map[string]int{"External": 1024 * 1024, "PendingFree": 0} {
		t.Run(name, func(t *testing.T) {
			_, manager := readyManager(t, ManagerSetup{
				Config:  outOfMemoryConfig(hostLimit),
				Options: tam.CreateOptions{Flags: tam.CreateDisableHostFallback},
			})

			data := patterned(16 * 16 * 4)
			var tex tam.Texture
			require.NoError(t, manager.AllocTexture(&tex, 16, 16, gxm.FormatU8U8U8U8ABGR, data, pixel.RGBA8))
			desc := tex.Descriptor

			err := manager.GenerateMipmaps(&tex, -1)
			require.ErrorIs(t, err, tam.ErrOutOfMemory)
			require.Equal(t, tam.ErrorOutOfMemory, manager.ConsumeError())

			require.True(t, tex.Valid())
			require.Equal(t, desc.MipCount, tex.Descriptor.MipCount)
			require.Equal(t, desc.Width, tex.Descriptor.Width)
			require.Equal(t, tex.Block().Address(), tex.Descriptor.Address)
			require.Equal(t, data, tex.Block().Bytes())
			require.Equal(t, 1, manager.Allocator().LiveBlockCount())
		})
	}
}

func TestGenerateMipmapsRejections(t *testing.T) {
	_, manager := readyManager(t, ManagerSetup{Config: smallConfig()})

	var tex tam.Texture
	require.ErrorIs(t, manager.GenerateMipmaps(&tex, -1), tam.ErrInvalidOperation)

	require.NoError(t, manager.AllocTexture(&tex, 8, 8, gxm.FormatP8ABGR, nil, pixel.Undefined))
	require.ErrorIs(t, manager.GenerateMipmaps(&tex, -1), tam.ErrInvalidOperation)
	require.Equal(t, 1, tex.Descriptor.MipCount)

	var compressed tam.Texture
	require.NoError(t, manager.AllocCompressedTexture(&compressed, tam.CompressedImage{
		Width: 16, Height: 16, Format: gxm.FormatUBC1ABGR,
	}))
	require.ErrorIs(t, manager.GenerateMipmaps(&compressed, -1), tam.ErrInvalidOperation)
	require.Equal(t, tam.ErrorInvalidOperation, manager.ConsumeError())
}

func TestGenerateCompressedMipmaps(t *testing.T) {
	_, manager := readyManager(t, ManagerSetup{Config: smallConfig()})

	px := [4]byte{30, 160, 220, 255}
	data := solidPixels(32, 32, px[:]...)

	var tex tam.Texture
	require.NoError(t, manager.AllocCompressedTexture(&tex, tam.CompressedImage{
		Width: 32, Height: 32, Format: gxm.FormatUBC1ABGR, Data: data, Source: pixel.RGBA8,
	}))
	base := append([]byte(nil), tex.Block().Bytes()...)

	require.NoError(t, manager.GenerateCompressedMipmaps(&tex, data, pixel.RGBA8))
	require.Equal(t, 2, tex.Descriptor.MipCount)
	require.Len(t, tex.Block().Bytes(), 512+128)

	level0, err := tex.Level(0)
	require.NoError(t, err)
	require.Equal(t, base, level0.Bytes())

	level1, err := tex.Level(1)
	require.NoError(t, err)
	require.Len(t, level1.Bytes(), 128)
	requireSolidBlocks(t, level1.Bytes(), false, px, 8)

	// Only the texture's chain outlives the call
	require.Equal(t, 1, manager.Allocator().LiveBlockCount())
}

func TestGenerateCompressedMipmapsRejections(t *testing.T) {
	_, manager := readyManager(t, ManagerSetup{Config: smallConfig()})

	var tex tam.Texture
	require.NoError(t, manager.AllocCompressedTexture(&tex, tam.CompressedImage{
		Width: 100, Height: 100, Format: gxm.FormatUBC1ABGR,
	}))
	desc := tex.Descriptor
	block := tex.Block()

	err := manager.GenerateCompressedMipmaps(&tex, solidPixels(100, 100, 1, 2, 3, 4), pixel.RGBA8)
	require.ErrorIs(t, err, tam.ErrInvalidOperation)
	require.Equal(t, desc, tex.Descriptor)
	require.Same(t, block, tex.Block())

	var pvrt tam.Texture
	require.NoError(t, manager.AllocCompressedTexture(&pvrt, tam.CompressedImage{
		Width: 32, Height: 32, Format: gxm.FormatPVRT4BPPABGR,
	}))
	err = manager.GenerateCompressedMipmaps(&pvrt, solidPixels(32, 32, 1, 2, 3, 4), pixel.RGBA8)
	require.ErrorIs(t, err, tam.ErrInvalidOperation)

	var bc3 tam.Texture
	require.NoError(t, manager.AllocCompressedTexture(&bc3, tam.CompressedImage{
		Width: 32, Height: 32, Format: gxm.FormatUBC3ABGR,
	}))
	err = manager.GenerateCompressedMipmaps(&bc3, make([]byte, 10), pixel.RGBA8)
	require.ErrorIs(t, err, tam.ErrInvalidValue)
	require.Equal(t, 1, bc3.Descriptor.MipCount)

	// A 16x16 base has no level below it that stays a multiple of 16
	var small tam.Texture
	require.NoError(t, manager.AllocCompressedTexture(&small, tam.CompressedImage{
		Width: 16, Height: 16, Format: gxm.FormatUBC1ABGR,
	}))
	require.NoError(t, manager.GenerateCompressedMipmaps(&small, solidPixels(16, 16, 1, 2, 3, 4), pixel.RGBA8))
	require.Equal(t, 1, small.Descriptor.MipCount)
}

func TestGenerateCompressedMipmapsWaitsBeforeCompressing(t *testing.T) {
	ctrl := gomock.NewController(t)
	device := mocks.NewMockDevice(ctrl)
	backing := readyDevice(t, smallConfig())

	device.EXPECT().Heap(gomock.Any()).DoAndReturn(backing.Heap).AnyTimes()
	device.EXPECT().InitSwizzledTexture(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(backing.InitSwizzledTexture).AnyTimes()

	// 64x64 has two levels below it that are multiples of 16
	gomock.InOrder(
		device.EXPECT().Downscale(gomock.Any()).DoAndReturn(backing.Downscale),
		device.EXPECT().WaitTransfers().DoAndReturn(backing.WaitTransfers),
		device.EXPECT().Downscale(gomock.Any()).DoAndReturn(backing.Downscale),
		device.EXPECT().WaitTransfers().DoAndReturn(backing.WaitTransfers),
	)

	manager, err := tam.New(testLogger(), device, tam.CreateOptions{})
	require.NoError(t, err)

	px := [4]byte{250, 250, 10, 255}
	data := solidPixels(64, 64, px[:]...)
	var tex tam.Texture
	require.NoError(t, manager.AllocCompressedTexture(&tex, tam.CompressedImage{
		Width: 64, Height: 64, Format: gxm.FormatUBC1ABGR, Data: data, Source: pixel.RGBA8,
	}))

	require.NoError(t, manager.GenerateCompressedMipmaps(&tex, data, pixel.RGBA8))
	require.Equal(t, 3, tex.Descriptor.MipCount)

	level2, err := tex.Level(2)
	require.NoError(t, err)
	require.Len(t, level2.Bytes(), 128)
	requireSolidBlocks(t, level2.Bytes(), false, px, 8)
}

// failingTransferDevice passes every call to a soft device except the failAt'th Downscale,
// which is rejected
func failingTransferDevice(t *testing.T, failAt int) (*mocks.MockDevice, *soft.Device) {
	ctrl := gomock.NewController(t)
	device := mocks.NewMockDevice(ctrl)
	backing := readyDevice(t, smallConfig())

	device.EXPECT().Heap(gomock.Any()).DoAndReturn(backing.Heap).AnyTimes()
	device.EXPECT().InitLinearTexture(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(backing.InitLinearTexture).AnyTimes()
	device.EXPECT().InitSwizzledTexture(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(backing.InitSwizzledTexture).AnyTimes()
	device.EXPECT().WaitTransfers().DoAndReturn(backing.WaitTransfers).AnyTimes()

	calls := 0
	device.EXPECT().Downscale(gomock.Any()).DoAndReturn(func(job gxm.DownscaleJob) error {
		calls++
		if calls == failAt {
			return errors.New("transfer queue rejected the job")
		}
		return backing.Downscale(job)
	}).AnyTimes()

	return device, backing
}

func TestGenerateMipmapsTransferFailureKeepsTexture(t *testing.T) {
	device, backing := failingTransferDevice(t, 2)
	manager, err := tam.New(testLogger(), device, tam.CreateOptions{})
	require.NoError(t, err)

	data := patterned(16 * 16 * 4)
	var tex tam.Texture
	require.NoError(t, manager.AllocTexture(&tex, 16, 16, gxm.FormatU8U8U8U8ABGR, data, pixel.RGBA8))

	err = manager.GenerateMipmaps(&tex, -1)
	require.ErrorIs(t, err, tam.ErrInternal)
	require.Equal(t, tam.ErrorInternal, manager.ConsumeError())

	require.True(t, tex.Valid())
	require.Equal(t, 1, tex.Descriptor.MipCount)
	require.Equal(t, tex.Block().Address(), tex.Descriptor.Address)
	require.Equal(t, data, tex.Block().Bytes())
	require.Equal(t, 1, manager.Allocator().LiveBlockCount())

	// The downscale accepted before the failure finished before its chain was released
	submitted, completed := backing.TransferCounts()
	require.Equal(t, 1, submitted)
	require.Equal(t, 1, completed)
}

func TestGenerateCompressedMipmapsTransferFailureKeepsTexture(t *testing.T) {
	device, _ := failingTransferDevice(t, 2)
	manager, err := tam.New(testLogger(), device, tam.CreateOptions{})
	require.NoError(t, err)

	var tex tam.Texture
	require.NoError(t, manager.AllocCompressedTexture(&tex, tam.CompressedImage{
		Width: 64, Height: 64, Format: gxm.FormatUBC1ABGR,
		Data: numberedBlocks(256, 8, 0), Source: pixel.Precompressed,
	}))
	before := append([]byte(nil), tex.Block().Bytes()...)

	err = manager.GenerateCompressedMipmaps(&tex, solidPixels(64, 64, 1, 2, 3, 255), pixel.RGBA8)
	require.ErrorIs(t, err, tam.ErrInternal)

	require.True(t, tex.Valid())
	require.Equal(t, 1, tex.Descriptor.MipCount)
	require.Equal(t, before, tex.Block().Bytes())
	require.Equal(t, 1, manager.Allocator().LiveBlockCount())
}
