package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/gxm/soft"
	"github.com/gxmkit/texarsenal/tam"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var (
	// Global flags
	verbose bool
	jsonOut bool

	vramKB      int
	ramKB       int
	slowKB      int
	hostLimitKB int

	useVRAM     bool
	noHostSpill bool
)

var rootCmd = &cobra.Command{
	Use:   "tamctl",
	Short: "Plan and build GPU texture storage",
	Long: `tamctl lays out mip chains, compresses images into swizzled block-compressed
textures, and reports how textures occupy the memory domains of a simulated device.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

func init() {
	defaults := soft.DefaultConfig()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log allocator activity to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	rootCmd.PersistentFlags().IntVar(&vramKB, "vram", defaults.HeapSizes[gxm.DomainVRAM]/1024, "VRAM domain size in KB, 0 for none")
	rootCmd.PersistentFlags().IntVar(&ramKB, "ram", defaults.HeapSizes[gxm.DomainRAM]/1024, "RAM domain size in KB, 0 for none")
	rootCmd.PersistentFlags().IntVar(&slowKB, "slow", defaults.HeapSizes[gxm.DomainSlow]/1024, "Slow domain size in KB, 0 for none")
	rootCmd.PersistentFlags().IntVar(&hostLimitKB, "host-limit", -1, "Host heap limit in KB, negative for unbounded")

	rootCmd.PersistentFlags().BoolVar(&useVRAM, "use-vram", false, "Prefer VRAM for texture storage")
	rootCmd.PersistentFlags().BoolVar(&noHostSpill, "no-host-fallback", false, "Never place textures in the host heap")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard))
	}
	return slog.New(slog.HandlerOptions{Level: slog.LevelDebug}.NewTextHandler(os.Stderr))
}

func deviceConfig() soft.Config {
	config := soft.DefaultConfig()
	config.HeapSizes[gxm.DomainVRAM] = vramKB * 1024
	config.HeapSizes[gxm.DomainRAM] = ramKB * 1024
	config.HeapSizes[gxm.DomainSlow] = slowKB * 1024
	config.HostLimit = hostLimitKB
	if hostLimitKB > 0 {
		config.HostLimit = hostLimitKB * 1024
	}
	return config
}

func managerFlags() tam.CreateFlags {
	var flags tam.CreateFlags
	if useVRAM {
		flags |= tam.CreateUseVRAM
	}
	if noHostSpill {
		flags |= tam.CreateDisableHostFallback
	}
	return flags
}

// openManager creates a simulated device and a manager over it. The returned function
// destroys both.
func openManager(logger *slog.Logger, options tam.CreateOptions) (*tam.Manager, func() error, error) {
	device, err := soft.New(logger, deviceConfig())
	if err != nil {
		return nil, nil, err
	}

	manager, err := tam.New(logger, device, options)
	if err != nil {
		device.Close()
		return nil, nil, err
	}

	return manager, func() error {
		destroyErr := manager.Destroy()
		closeErr := device.Close()
		if destroyErr != nil {
			return destroyErr
		}
		return closeErr
	}, nil
}

// printJSON outputs data as JSON
func printJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
