package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smazurov/pixynode/internal/device"
	"github.com/smazurov/pixynode/internal/logging"
	"github.com/smazurov/pixynode/pkg/pixy/blocks"
	"github.com/spf13/cobra"
)

// CreateBlocksCmd creates the blocks command.
func CreateBlocksCmd() *cobra.Command {
	var backend string
	var count int
	var interval time.Duration
	var timeout time.Duration
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Print detected blocks",
		Long: `Polls the camera's detection buffer and prints every non-empty read. ` +
			`Runs until interrupted, or until --count reads with blocks have been printed.`,
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			initLogging(configPath, verbose)
			logger := logging.GetLogger("blocks")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cam, err := openCamera(ctx, backend, timeout, logger)
			if err != nil {
				logger.Error("Failed to open camera", "device", backend, "error", err)
				os.Exit(1)
			}

			if err := runBlocks(ctx, cam, os.Stdout, count, interval); err != nil {
				logger.Error("Block read failed", "error", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&backend, "device", "d", device.BackendSim, "Device backend")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Stop after this many frames with blocks (0 = forever)")
	cmd.Flags().DurationVarP(&interval, "interval", "i", device.DefaultPollInterval, "Delay between reads")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Give up waiting for the device after this long")
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.toml", "Configuration file for logging levels")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// runBlocks polls cam and closes it once polling ends.
func runBlocks(ctx context.Context, cam *device.Camera, w io.Writer, count int, interval time.Duration) error {
	defer cam.Close()
	return pollBlocks(ctx, cam, w, count, interval)
}

// pollBlocks reads until ctx is done or count frames with blocks have been
// written to w. Reads that return nothing are skipped silently.
func pollBlocks(ctx context.Context, r device.BlockReader, w io.Writer, count int, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	printed := 0
	for {
		found, err := r.ReadBlocks()
		if err != nil {
			return err
		}
		if len(found) > 0 {
			writeBlocks(w, printed, found)
			printed++
			if count > 0 && printed >= count {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func writeBlocks(w io.Writer, n int, found []blocks.Block) {
	fmt.Fprintf(w, "frame %d:\n", n)
	for _, b := range found {
		fmt.Fprintf(w, "  %s\n", b)
	}
}
