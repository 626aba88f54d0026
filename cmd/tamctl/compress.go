package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/pixel"
	"github.com/gxmkit/texarsenal/tam"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

var (
	compressFormat  string
	compressMipmaps bool
	compressFast    bool
	compressPool    int
)

func init() {
	cmd := newCompressCmd()
	cmd.Flags().StringVar(&compressFormat, "format", gxm.FormatUBC1ABGR.String(), "Target format, UBC1_ABGR or UBC3_ABGR")
	cmd.Flags().BoolVar(&compressMipmaps, "mipmaps", false, "Generate the compressed mip chain (dimensions must be multiples of 16)")
	cmd.Flags().BoolVar(&compressFast, "fast", false, "Use the faster, lower quality block encoder")
	cmd.Flags().IntVar(&compressPool, "pool", 1024*1024, "Scratch pool size in bytes, 0 for none")
	rootCmd.AddCommand(cmd)
}

func newCompressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress <input.png> <output>",
		Short: "Compress a PNG into a swizzled block-compressed texture",
		Long: `The compress command decodes a PNG image, block-compresses it into swizzled
BC1 or BC3 storage, and writes the texture's raw storage to the output file.
With --mipmaps the full compressed chain is generated and written.

Example:
  tamctl compress albedo.png albedo.bc1
  tamctl compress decal.png decal.bc3 --format UBC3_ABGR --mipmaps`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompress(cmd.OutOrStdout(), args)
		},
	}
	return cmd
}

type CompressResult struct {
	Input    string
	Output   string
	Format   string
	Width    int
	Height   int
	MipCount int
	Bytes    int
	Domain   string
}

// decodePNG returns the image's pixels as unpadded, non-premultiplied RGBA8
func decodePNG(path string) (*image.NRGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image")
	}
	defer file.Close()

	src, err := png.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}

	bounds := src.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(img, img.Bounds(), src, bounds.Min, draw.Src)
	return img, nil
}

func runCompress(out io.Writer, args []string) error {
	inputPath, outputPath := args[0], args[1]

	format, err := parseFormat(compressFormat)
	if err != nil {
		return err
	}

	img, err := decodePNG(inputPath)
	if err != nil {
		return err
	}
	width, height := img.Rect.Dx(), img.Rect.Dy()

	flags := managerFlags()
	if compressFast {
		flags |= tam.CreateFastTextureCompression
	}

	manager, closeManager, err := openManager(newLogger(), tam.CreateOptions{Flags: flags, ScratchPoolSize: compressPool})
	if err != nil {
		return err
	}

	var tex tam.Texture
	err = manager.AllocCompressedTexture(&tex, tam.CompressedImage{
		Width:  width,
		Height: height,
		Format: format,
		Data:   img.Pix,
		Source: pixel.RGBA8,
	})
	if err == nil && compressMipmaps {
		err = manager.GenerateCompressedMipmaps(&tex, img.Pix, pixel.RGBA8)
	}
	if err == nil {
		err = os.WriteFile(outputPath, tex.Block().Bytes(), 0o644)
	}

	result := CompressResult{
		Input:    inputPath,
		Output:   outputPath,
		Format:   format.String(),
		Width:    width,
		Height:   height,
		MipCount: tex.Descriptor.MipCount,
		Domain:   tex.Domain().String(),
	}
	if tex.Valid() {
		result.Bytes = tex.Block().Size()
	}

	err = errors.CombineErrors(err, manager.FreeTexture(&tex))
	err = errors.CombineErrors(err, closeManager())
	if err != nil {
		return errors.Wrapf(err, "failed to compress %s (%s)", inputPath, tam.CodeOf(err))
	}

	if jsonOut {
		return printJSON(out, result)
	}
	fmt.Fprintf(out, "%s: %dx%d %s, %d levels, %d bytes in %s\n",
		result.Output, result.Width, result.Height, result.Format, result.MipCount, result.Bytes, result.Domain)
	return nil
}
