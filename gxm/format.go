package gxm

import "fmt"

// TextureFormat is a hardware texture format: a base format in the top byte plus a
// component swizzle in bits 12-15
type TextureFormat uint32

// TextureBaseFormat is the storage layout portion of a TextureFormat
type TextureBaseFormat uint32

const baseFormatMask TextureFormat = 0x9f000000

const (
	BaseFormatU8       TextureBaseFormat = 0x00000000
	BaseFormatS8       TextureBaseFormat = 0x01000000
	BaseFormatU4U4U4U4 TextureBaseFormat = 0x02000000
	BaseFormatU8U3U3U2 TextureBaseFormat = 0x03000000
	BaseFormatU1U5U5U5 TextureBaseFormat = 0x04000000
	BaseFormatU5U6U5   TextureBaseFormat = 0x05000000
	BaseFormatS5S5U6   TextureBaseFormat = 0x06000000
	BaseFormatU8U8     TextureBaseFormat = 0x07000000
	BaseFormatS8S8     TextureBaseFormat = 0x08000000
	BaseFormatU8U8U8U8 TextureBaseFormat = 0x0c000000
	BaseFormatS8S8S8S8 TextureBaseFormat = 0x0d000000
	BaseFormatF32      TextureBaseFormat = 0x12000000
	BaseFormatU32      TextureBaseFormat = 0x13000000
	BaseFormatS32      TextureBaseFormat = 0x14000000

	BaseFormatPVRT2BPP   TextureBaseFormat = 0x80000000
	BaseFormatPVRT4BPP   TextureBaseFormat = 0x81000000
	BaseFormatPVRTII2BPP TextureBaseFormat = 0x82000000
	BaseFormatPVRTII4BPP TextureBaseFormat = 0x83000000
	BaseFormatUBC1       TextureBaseFormat = 0x85000000
	BaseFormatUBC2       TextureBaseFormat = 0x86000000
	BaseFormatUBC3       TextureBaseFormat = 0x87000000

	BaseFormatP4     TextureBaseFormat = 0x94000000
	BaseFormatP8     TextureBaseFormat = 0x95000000
	BaseFormatU8U8U8 TextureBaseFormat = 0x98000000
	BaseFormatS8S8S8 TextureBaseFormat = 0x99000000
)

const (
	swizzle4ABGR   TextureFormat = 0x0000
	swizzle4ARGB   TextureFormat = 0x1000
	swizzle4RGBA   TextureFormat = 0x2000
	swizzle4BGRA   TextureFormat = 0x3000
	swizzle4OneBGR TextureFormat = 0x4000

	swizzle3BGR TextureFormat = 0x0000
	swizzle3RGB TextureFormat = 0x1000

	swizzle2GRRR TextureFormat = 0x2000

	swizzle1R000   TextureFormat = 0x6000
	swizzle1OneRRR TextureFormat = 0x5000
)

const (
	FormatU8U8U8U8ABGR = TextureFormat(BaseFormatU8U8U8U8) | swizzle4ABGR
	FormatU8U8U8U8ARGB = TextureFormat(BaseFormatU8U8U8U8) | swizzle4ARGB
	FormatU8U8U8U8RGBA = TextureFormat(BaseFormatU8U8U8U8) | swizzle4RGBA
	FormatU8U8U8U8BGRA = TextureFormat(BaseFormatU8U8U8U8) | swizzle4BGRA
	FormatU8U8U8BGR    = TextureFormat(BaseFormatU8U8U8) | swizzle3BGR
	FormatU8U8U8RGB    = TextureFormat(BaseFormatU8U8U8) | swizzle3RGB
	FormatU4U4U4U4ABGR = TextureFormat(BaseFormatU4U4U4U4) | swizzle4ABGR
	FormatU1U5U5U5ABGR = TextureFormat(BaseFormatU1U5U5U5) | swizzle4ABGR
	FormatU5U6U5BGR    = TextureFormat(BaseFormatU5U6U5) | swizzle3BGR
	FormatU8R000       = TextureFormat(BaseFormatU8) | swizzle1R000
	FormatU81RRR       = TextureFormat(BaseFormatU8) | swizzle1OneRRR
	FormatU8U8GRRR     = TextureFormat(BaseFormatU8U8) | swizzle2GRRR
	FormatP8ABGR       = TextureFormat(BaseFormatP8) | swizzle4ABGR

	FormatPVRT2BPPABGR   = TextureFormat(BaseFormatPVRT2BPP) | swizzle4ABGR
	FormatPVRT2BPP1BGR   = TextureFormat(BaseFormatPVRT2BPP) | swizzle4OneBGR
	FormatPVRT4BPPABGR   = TextureFormat(BaseFormatPVRT4BPP) | swizzle4ABGR
	FormatPVRT4BPP1BGR   = TextureFormat(BaseFormatPVRT4BPP) | swizzle4OneBGR
	FormatPVRTII2BPPABGR = TextureFormat(BaseFormatPVRTII2BPP) | swizzle4ABGR
	FormatPVRTII4BPPABGR = TextureFormat(BaseFormatPVRTII4BPP) | swizzle4ABGR
	FormatUBC1ABGR       = TextureFormat(BaseFormatUBC1) | swizzle4ABGR
	FormatUBC11BGR       = TextureFormat(BaseFormatUBC1) | swizzle4OneBGR
	FormatUBC3ABGR       = TextureFormat(BaseFormatUBC3) | swizzle4ABGR
)

var formatNames = map[TextureFormat]string{
	FormatU8U8U8U8ABGR:   "U8U8U8U8_ABGR",
	FormatU8U8U8U8ARGB:   "U8U8U8U8_ARGB",
	FormatU8U8U8U8RGBA:   "U8U8U8U8_RGBA",
	FormatU8U8U8U8BGRA:   "U8U8U8U8_BGRA",
	FormatU8U8U8BGR:      "U8U8U8_BGR",
	FormatU8U8U8RGB:      "U8U8U8_RGB",
	FormatU4U4U4U4ABGR:   "U4U4U4U4_ABGR",
	FormatU1U5U5U5ABGR:   "U1U5U5U5_ABGR",
	FormatU5U6U5BGR:      "U5U6U5_BGR",
	FormatU8R000:         "U8_R000",
	FormatU81RRR:         "U8_1RRR",
	FormatU8U8GRRR:       "U8U8_GRRR",
	FormatP8ABGR:         "P8_ABGR",
	FormatPVRT2BPPABGR:   "PVRT2BPP_ABGR",
	FormatPVRT2BPP1BGR:   "PVRT2BPP_1BGR",
	FormatPVRT4BPPABGR:   "PVRT4BPP_ABGR",
	FormatPVRT4BPP1BGR:   "PVRT4BPP_1BGR",
	FormatPVRTII2BPPABGR: "PVRTII2BPP_ABGR",
	FormatPVRTII4BPPABGR: "PVRTII4BPP_ABGR",
	FormatUBC1ABGR:       "UBC1_ABGR",
	FormatUBC11BGR:       "UBC1_1BGR",
	FormatUBC3ABGR:       "UBC3_ABGR",
}

// Base returns the storage layout of the format, without its swizzle
func (f TextureFormat) Base() TextureBaseFormat {
	return TextureBaseFormat(f & baseFormatMask)
}

func (f TextureFormat) String() string {
	name, ok := formatNames[f]
	if ok {
		return name
	}
	return fmt.Sprintf("TextureFormat(0x%08x)", uint32(f))
}

// ParseTextureFormat returns the format with the provided name, as produced by TextureFormat.String
func ParseTextureFormat(name string) (TextureFormat, bool) {
	for format, formatName := range formatNames {
		if formatName == name {
			return format, true
		}
	}
	return 0, false
}

// TextureFormats lists every named texture format
func TextureFormats() []TextureFormat {
	formats := make([]TextureFormat, 0, len(formatNames))
	for format := range formatNames {
		formats = append(formats, format)
	}
	return formats
}

// TransferFormat is the pixel layout the transfer unit reads and writes
type TransferFormat uint32

const (
	TransferFormatU8R TransferFormat = iota + 1
	TransferFormatU8U8GR
	TransferFormatU4U4U4U4ABGR
	TransferFormatU1U5U5U5ABGR
	TransferFormatU5U6U5BGR
	TransferFormatU8U8U8BGR
	TransferFormatU8U8U8U8ABGR
)

var transferFormatSizes = map[TransferFormat]int{
	TransferFormatU8R:          1,
	TransferFormatU8U8GR:       2,
	TransferFormatU4U4U4U4ABGR: 2,
	TransferFormatU1U5U5U5ABGR: 2,
	TransferFormatU5U6U5BGR:    2,
	TransferFormatU8U8U8BGR:    3,
	TransferFormatU8U8U8U8ABGR: 4,
}

// BytesPerPixel returns the size of one pixel in the format, or 0 for unknown formats
func (f TransferFormat) BytesPerPixel() int {
	return transferFormatSizes[f]
}

// TransferFlags alter how a transfer is ordered against rendering
type TransferFlags uint32

const (
	// TransferFragmentSync orders the transfer before the next fragment processing pass. The
	// transfer is not guaranteed to have completed when Downscale returns.
	TransferFragmentSync TransferFlags = 1 << iota
)
