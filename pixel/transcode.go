package pixel

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
)

// Transcoder converts count pixels from src into dst. Both slices must hold at least count
// pixels of their respective formats.
type Transcoder func(dst, src []byte, count int)

type formatPair struct {
	src Format
	dst Format
}

var transcoders = swiss.NewMap[formatPair, Transcoder](uint32(formatCount * formatCount))

func init() {
	for src := Format(0); src < formatCount; src++ {
		for dst := Format(0); dst < formatCount; dst++ {
			if src == dst || !src.IsEncodable() || !dst.IsEncodable() {
				continue
			}
			transcoders.Put(formatPair{src, dst}, generic(src, dst))
		}
	}

	transcoders.Put(formatPair{RGB8, RGBA8}, rgbToRGBA)
	transcoders.Put(formatPair{RGBA8, BGRA8}, swapRedBlue)
	transcoders.Put(formatPair{BGRA8, RGBA8}, swapRedBlue)
}

// Lookup returns the transcoder from src to dst. Identical formats do not have a
// transcoder: the data can be copied directly.
func Lookup(src, dst Format) (Transcoder, bool) {
	return transcoders.Get(formatPair{src, dst})
}

// Transcode converts count pixels from src, encoded as srcFormat, into dst as dstFormat
func Transcode(dst []byte, dstFormat Format, src []byte, srcFormat Format, count int) error {
	if srcFormat == dstFormat && srcFormat.IsEncodable() {
		copy(dst[:count*dstFormat.BytesPerPixel()], src)
		return nil
	}

	transcoder, ok := Lookup(srcFormat, dstFormat)
	if !ok {
		return errors.Newf("no transcoder from %s to %s", srcFormat, dstFormat)
	}

	if len(src) < count*srcFormat.BytesPerPixel() || len(dst) < count*dstFormat.BytesPerPixel() {
		return errors.Newf("cannot transcode %d pixels between buffers of %d and %d bytes", count, len(src), len(dst))
	}

	transcoder(dst, src, count)
	return nil
}

func generic(src, dst Format) Transcoder {
	read := codecs[src]
	write := codecs[dst]
	return func(dstBytes, srcBytes []byte, count int) {
		for i := 0; i < count; i++ {
			write.encode(dstBytes[i*write.size:], read.decode(srcBytes[i*read.size:]))
		}
	}
}

func rgbToRGBA(dst, src []byte, count int) {
	for i := 0; i < count; i++ {
		dst[i*4] = src[i*3]
		dst[i*4+1] = src[i*3+1]
		dst[i*4+2] = src[i*3+2]
		dst[i*4+3] = 0xff
	}
}

func swapRedBlue(dst, src []byte, count int) {
	for i := 0; i < count*4; i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], src[i+3]
	}
}
