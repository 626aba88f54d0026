package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/texfmt"
	"github.com/spf13/cobra"
)

const maxLayoutLevels = 13

var (
	layoutLevels int
)

func init() {
	cmd := newLayoutCmd()
	cmd.Flags().IntVar(&layoutLevels, "levels", -1, "Number of mip levels, negative for the full chain")
	rootCmd.AddCommand(cmd)
}

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout <format> <width> <height>",
		Short: "Show where every mip level of a texture is stored",
		Long: `The layout command prints the dimensions, byte offset and size of each level
of a texture's mip chain. Compressed formats use the swizzled layout; every other
format uses the linear layout with rows padded to 8 texels.

Example:
  tamctl layout UBC1_ABGR 256 256
  tamctl layout U8U8U8U8_ABGR 100 60 --levels 3 --json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd.OutOrStdout(), args)
		},
	}
	return cmd
}

type LevelLayout struct {
	Level  int
	Width  int
	Height int
	Offset int
	Size   int
}

type TextureLayout struct {
	Format    string
	Width     int
	Height    int
	Layout    string
	Alignment int
	TotalSize int
	Levels    []LevelLayout
}

func parseDimensions(widthArg, heightArg string) (int, int, error) {
	width, err := strconv.Atoi(widthArg)
	if err != nil || width < 1 {
		return 0, 0, errors.Newf("invalid width %q", widthArg)
	}
	height, err := strconv.Atoi(heightArg)
	if err != nil || height < 1 {
		return 0, 0, errors.Newf("invalid height %q", heightArg)
	}
	return width, height, nil
}

func parseFormat(name string) (gxm.TextureFormat, error) {
	format, ok := gxm.ParseTextureFormat(name)
	if !ok {
		return 0, errors.Newf("unknown texture format %q", name)
	}
	return format, nil
}

func runLayout(out io.Writer, args []string) error {
	format, err := parseFormat(args[0])
	if err != nil {
		return err
	}
	width, height, err := parseDimensions(args[1], args[2])
	if err != nil {
		return err
	}

	layout := buildLayout(format, width, height, layoutLevels)
	if jsonOut {
		return printJSON(out, layout)
	}

	fmt.Fprintf(out, "%s %dx%d, %s layout, %d byte alignment\n", layout.Format, layout.Width, layout.Height, layout.Layout, layout.Alignment)
	table := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "LEVEL\tSIZE\tOFFSET\tBYTES")
	for _, level := range layout.Levels {
		fmt.Fprintf(table, "%d\t%dx%d\t%d\t%d\n", level.Level, level.Width, level.Height, level.Offset, level.Size)
	}
	if err := table.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Total: %d bytes\n", layout.TotalSize)
	return nil
}

func buildLayout(format gxm.TextureFormat, width, height, levels int) TextureLayout {
	layout := TextureLayout{
		Format:    format.String(),
		Width:     width,
		Height:    height,
		Alignment: texfmt.Alignment(format),
	}

	if texfmt.IsCompressed(format) {
		layout.Layout = gxm.LayoutSwizzledArbitrary.String()

		paddedWidth, paddedHeight := texfmt.PaddedDimensions(width, height)
		for level := 0; level < maxLayoutLevels; level++ {
			levelWidth, levelHeight := texfmt.MipDimensions(level, paddedWidth, paddedHeight)
			if levels >= 0 && level >= levels {
				break
			}
			if levels < 0 && (levelWidth < 2 || levelHeight < 2) {
				break
			}

			layout.Levels = append(layout.Levels, LevelLayout{
				Level:  level,
				Width:  levelWidth,
				Height: levelHeight,
				Offset: texfmt.MipOffset(level, levelWidth, levelHeight, format),
				Size:   texfmt.LevelSize(levelWidth, levelHeight, format),
			})
			layout.TotalSize = texfmt.MipchainSize(level, levelWidth, levelHeight, format)
		}
		return layout
	}

	layout.Layout = gxm.LayoutLinear.String()
	if levels == 1 {
		size := texfmt.LinearImageSize(width, height, format)
		layout.Levels = []LevelLayout{{Width: width, Height: height, Size: size}}
		layout.TotalSize = size
		return layout
	}

	offset := 0
	for level, size := range texfmt.LinearChainLevels(width, height, levels, format) {
		if level == maxLayoutLevels {
			break
		}
		levelWidth, levelHeight := texfmt.MipDimensions(level, width, height)
		layout.Levels = append(layout.Levels, LevelLayout{
			Level:  level,
			Width:  max(levelWidth, 1),
			Height: max(levelHeight, 1),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}
	layout.TotalSize = offset
	return layout
}
