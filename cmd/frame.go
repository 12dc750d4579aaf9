package cmd

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smazurov/pixynode/internal/device"
	"github.com/smazurov/pixynode/internal/logging"
	"github.com/smazurov/pixynode/pkg/pixy/frame"
	"github.com/spf13/cobra"
)

// CreateFrameCmd creates the frame command.
func CreateFrameCmd() *cobra.Command {
	var backend string
	var output string
	var order string
	var x, y, width, height uint16
	var timeout time.Duration
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Capture one frame to a PNG file",
		Long: `Grabs a raw Bayer frame, demosaics it and writes the result as PNG. ` +
			`The image is two pixels smaller than the requested window in each dimension.`,
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			initLogging(configPath, verbose)
			logger := logging.GetLogger("frame")

			channels, err := frame.ParseChannelOrder(order)
			if err != nil {
				logger.Error("Invalid channel order", "order", order, "error", err)
				os.Exit(1)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cam, err := openCamera(ctx, backend, timeout, logger)
			if err != nil {
				logger.Error("Failed to open camera", "device", backend, "error", err)
				os.Exit(1)
			}

			req := frame.Request{Mode: frame.ModeBayer, X: x, Y: y, Width: width, Height: height}
			if err := runFrame(cam, os.Stdout, req, channels, output); err != nil {
				logger.Error("Frame capture failed", "output", output, "error", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&backend, "device", "d", device.BackendSim, "Device backend")
	cmd.Flags().StringVarP(&output, "output", "o", "frame.png", "Output PNG file")
	cmd.Flags().StringVar(&order, "order", "rgb", "Channel order (rgb or rbg)")
	cmd.Flags().Uint16Var(&x, "x", 0, "Window left edge")
	cmd.Flags().Uint16Var(&y, "y", 0, "Window top edge")
	cmd.Flags().Uint16Var(&width, "width", frame.MaxWidth, "Window width")
	cmd.Flags().Uint16Var(&height, "height", frame.MaxHeight, "Window height")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Give up waiting for the device after this long")
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.toml", "Configuration file for logging levels")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// runFrame captures one frame into output, prints a summary and closes cam.
func runFrame(cam *device.Camera, w io.Writer, req frame.Request, order frame.ChannelOrder, output string) error {
	defer cam.Close()

	capture, err := cam.CaptureFrame(req, order)
	if err != nil {
		return fmt.Errorf("capture frame: %w", err)
	}
	if err := writePNG(output, capture); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	b := capture.Image.Bounds()
	fmt.Fprintf(w, "%s: %dx%d %s (raw %dx%d, render %s)\n",
		output, b.Dx(), b.Dy(), capture.Format, capture.RawWidth, capture.RawHeight, capture.RenderTime)
	return nil
}

func writePNG(path string, capture device.Capture) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, capture.Image); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
