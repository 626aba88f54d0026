package soft

import (
	"image"

	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/pixel"
	"golang.org/x/exp/slog"
	"golang.org/x/image/draw"
)

var transferPixelFormats = map[gxm.TransferFormat]pixel.Format{
	gxm.TransferFormatU8R:          pixel.L8,
	gxm.TransferFormatU8U8GR:       pixel.LA8,
	gxm.TransferFormatU4U4U4U4ABGR: pixel.RGBA4444,
	gxm.TransferFormatU1U5U5U5ABGR: pixel.RGBA5551,
	gxm.TransferFormatU5U6U5BGR:    pixel.RGB565,
	gxm.TransferFormatU8U8U8BGR:    pixel.RGB8,
	gxm.TransferFormatU8U8U8U8ABGR: pixel.RGBA8,
}

// Downscale validates the job and queues it. Queued jobs run in submission order the next
// time WaitTransfers is called.
func (d *Device) Downscale(job gxm.DownscaleJob) error {
	format, ok := transferPixelFormats[job.Format]
	if !ok {
		return errors.Wrapf(ErrInvalidTransfer, "unknown transfer format %d", job.Format)
	}

	bpp := format.BytesPerPixel()
	dstWidth, dstHeight := job.SrcWidth/2, job.SrcHeight/2
	switch {
	case dstWidth < 1 || dstHeight < 1:
		return errors.Wrapf(ErrInvalidTransfer, "cannot downscale a %dx%d region", job.SrcWidth, job.SrcHeight)
	case job.SrcStride < job.SrcWidth*bpp || job.DstStride < dstWidth*bpp:
		return errors.Wrapf(ErrInvalidTransfer, "strides %d and %d are too narrow for a %d pixel row", job.SrcStride, job.DstStride, job.SrcWidth)
	case len(job.Src) < (job.SrcHeight-1)*job.SrcStride+job.SrcWidth*bpp:
		return errors.Wrapf(ErrInvalidTransfer, "source holds %d bytes, too few for %dx%d", len(job.Src), job.SrcWidth, job.SrcHeight)
	case len(job.Dst) < (dstHeight-1)*job.DstStride+dstWidth*bpp:
		return errors.Wrapf(ErrInvalidTransfer, "destination holds %d bytes, too few for %dx%d", len(job.Dst), dstWidth, dstHeight)
	}

	d.pending = append(d.pending, job)
	d.submittedCount++
	return nil
}

// WaitTransfers runs every queued transfer
func (d *Device) WaitTransfers() error {
	pending := d.pending
	d.pending = nil

	for _, job := range pending {
		if err := d.runDownscale(job); err != nil {
			return err
		}
		d.completedCount++
	}

	return nil
}

// TransferCounts returns how many transfers have been submitted and how many have completed
func (d *Device) TransferCounts() (submitted, completed int) {
	return d.submittedCount, d.completedCount
}

func (d *Device) runDownscale(job gxm.DownscaleJob) error {
	format := transferPixelFormats[job.Format]
	dstWidth, dstHeight := job.SrcWidth/2, job.SrcHeight/2

	src := image.NewRGBA(image.Rect(0, 0, job.SrcWidth, job.SrcHeight))
	for y := 0; y < job.SrcHeight; y++ {
		err := pixel.Transcode(src.Pix[y*src.Stride:], pixel.RGBA8, job.Src[y*job.SrcStride:], format, job.SrcWidth)
		if err != nil {
			return err
		}
	}

	// A bilinear sample at exactly half scale lands between four source pixels with equal
	// weights, which is the 2x2 box filter the transfer unit applies
	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	for y := 0; y < dstHeight; y++ {
		err := pixel.Transcode(job.Dst[y*job.DstStride:], format, dst.Pix[y*dst.Stride:], pixel.RGBA8, dstWidth)
		if err != nil {
			return err
		}
	}

	d.logger.Debug("Device::Downscale",
		slog.Int("width", job.SrcWidth),
		slog.Int("height", job.SrcHeight),
		slog.String("format", format.String()),
	)
	return nil
}
