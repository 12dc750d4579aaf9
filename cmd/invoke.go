package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/smazurov/pixynode/internal/api"
	"github.com/smazurov/pixynode/internal/api/models"
	"github.com/smazurov/pixynode/internal/device"
	"github.com/smazurov/pixynode/internal/logging"
	"github.com/smazurov/pixynode/pkg/pixy"
	"github.com/smazurov/pixynode/pkg/pixy/chirp"
	"github.com/spf13/cobra"
)

// CreateInvokeCmd creates the invoke command.
func CreateInvokeCmd() *cobra.Command {
	var backend string
	var returns []string
	var timeout time.Duration
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "invoke NAME [TYPE:VALUE...]",
		Short: "Invoke a named device command",
		Long: `Sends one command with typed arguments and prints the status and requested result slots. ` +
			`Types are u8, i8, u16, i16, u32 and i32. Example: invoke cam_setBrightness i8:90`,
		Args: cobra.MinimumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			initLogging(configPath, verbose)
			logger := logging.GetLogger("invoke")

			name := args[0]
			values, err := parseArgs(args[1:])
			if err != nil {
				logger.Error("Invalid argument", "error", err)
				os.Exit(1)
			}
			slots, err := parseReturns(returns)
			if err != nil {
				logger.Error("Invalid return type", "error", err)
				os.Exit(1)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cam, err := openCamera(ctx, backend, timeout, logger)
			if err != nil {
				logger.Error("Failed to open camera", "device", backend, "error", err)
				os.Exit(1)
			}

			if err := runInvoke(cam, os.Stdout, name, values, slots); err != nil {
				logger.Error("Command failed", "command", name, "error", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&backend, "device", "d", device.BackendSim, "Device backend")
	cmd.Flags().StringSliceVarP(&returns, "returns", "r", []string{"i32"}, "Result slot types, in order")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Give up waiting for the device after this long")
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.toml", "Configuration file for logging levels")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// runInvoke sends one command, prints the response and closes cam.
func runInvoke(cam *device.Camera, w io.Writer, name string, values []chirp.Value, slots []chirp.Type) error {
	defer cam.Close()

	resp, err := cam.Invoke(name, values, slots...)
	writeResponse(w, name, resp)
	return err
}

// parseArgs parses TYPE:VALUE arguments. Values accept Go integer syntax,
// so 0x404040 and -45 both work.
func parseArgs(args []string) ([]chirp.Value, error) {
	values := make([]chirp.Value, 0, len(args))
	for i, arg := range args {
		typ, raw, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, fmt.Errorf("argument %d %q: expected TYPE:VALUE", i, arg)
		}
		n, err := strconv.ParseInt(raw, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d %q: %w", i, arg, err)
		}
		v, err := api.ToValue(models.TypedValue{Type: typ, Value: n})
		if err != nil {
			return nil, fmt.Errorf("argument %d %q: %w", i, arg, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func parseReturns(names []string) ([]chirp.Type, error) {
	slots := make([]chirp.Type, 0, len(names))
	for _, name := range names {
		t, err := chirp.ParseType(name)
		if err != nil {
			return nil, err
		}
		slots = append(slots, t)
	}
	return slots, nil
}

func writeResponse(w io.Writer, name string, resp chirp.Response) {
	fmt.Fprintf(w, "%s: status %d (%s)\n", name, resp.Status, pixy.StatusText(resp.Status))
	for i, v := range resp.Values {
		fmt.Fprintf(w, "  [%d] %s %d\n", i, v.Type(), v.Int64())
	}
}
