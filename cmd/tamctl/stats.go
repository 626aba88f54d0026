package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/pixel"
	"github.com/gxmkit/texarsenal/tam"
	"github.com/gxmkit/texarsenal/texfmt"
	"github.com/spf13/cobra"
)

var (
	statsTextures []string
	statsDetailed bool
	statsMipmaps  bool
)

func init() {
	cmd := newStatsCmd()
	cmd.Flags().StringArrayVarP(&statsTextures, "texture", "t", nil, "Texture to allocate, as WIDTHxHEIGHT:FORMAT (repeatable)")
	cmd.Flags().BoolVar(&statsDetailed, "detailed", false, "Include the free and allocated ranges of each domain")
	cmd.Flags().BoolVar(&statsMipmaps, "mipmaps", false, "Give uncompressed textures their full mip chain")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how a set of textures occupies the memory domains",
		Long: `The stats command allocates each requested texture on a simulated device and
prints the usage of every memory domain as JSON. Domain sizes come from the
global --vram, --ram, --slow and --host-limit flags.

Example:
  tamctl stats -t 1024x1024:UBC3_ABGR -t 512x512:U8U8U8U8_ABGR
  tamctl stats -t 4096x4096:U8U8U8U8_ABGR --vram 16384 --detailed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.OutOrStdout())
		},
	}
	return cmd
}

type textureRequest struct {
	Width  int
	Height int
	Format gxm.TextureFormat
}

func parseTextureRequest(arg string) (textureRequest, error) {
	dims, formatName, ok := strings.Cut(arg, ":")
	if !ok {
		return textureRequest{}, errors.Newf("texture %q is not WIDTHxHEIGHT:FORMAT", arg)
	}
	widthArg, heightArg, ok := strings.Cut(dims, "x")
	if !ok {
		return textureRequest{}, errors.Newf("texture %q is not WIDTHxHEIGHT:FORMAT", arg)
	}

	width, height, err := parseDimensions(widthArg, heightArg)
	if err != nil {
		return textureRequest{}, err
	}
	format, err := parseFormat(formatName)
	if err != nil {
		return textureRequest{}, err
	}
	return textureRequest{Width: width, Height: height, Format: format}, nil
}

func allocRequest(manager *tam.Manager, tex *tam.Texture, request textureRequest) error {
	if texfmt.IsCompressed(request.Format) {
		return manager.AllocCompressedTexture(tex, tam.CompressedImage{
			Width:  request.Width,
			Height: request.Height,
			Format: request.Format,
		})
	}

	err := manager.AllocTexture(tex, request.Width, request.Height, request.Format, nil, pixel.Undefined)
	if err != nil || !statsMipmaps {
		return err
	}
	return manager.GenerateMipmaps(tex, -1)
}

func runStats(out io.Writer) error {
	requests := make([]textureRequest, 0, len(statsTextures))
	for _, arg := range statsTextures {
		request, err := parseTextureRequest(arg)
		if err != nil {
			return err
		}
		requests = append(requests, request)
	}

	manager, closeManager, err := openManager(newLogger(), tam.CreateOptions{Flags: managerFlags()})
	if err != nil {
		return err
	}

	textures := make([]tam.Texture, len(requests))
	for i, request := range requests {
		err = allocRequest(manager, &textures[i], request)
		if err != nil {
			err = errors.Wrapf(err, "texture %d (%dx%d %s): %s", i, request.Width, request.Height, request.Format, tam.CodeOf(err))
			break
		}
	}

	var report string
	if err == nil {
		report = manager.Allocator().BuildStatsString(statsDetailed)
	}

	for i := range textures {
		err = errors.CombineErrors(err, manager.FreeTexture(&textures[i]))
	}
	err = errors.CombineErrors(err, closeManager())
	if err != nil {
		return err
	}

	if jsonOut {
		_, err = fmt.Fprintln(out, report)
		return err
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, []byte(report), "", "  "); err != nil {
		return errors.Wrap(err, "allocator produced malformed statistics")
	}
	_, err = fmt.Fprintln(out, indented.String())
	return err
}
