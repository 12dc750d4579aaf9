package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/pixynode/cmd"
	"github.com/smazurov/pixynode/internal/api"
	"github.com/smazurov/pixynode/internal/config"
	"github.com/smazurov/pixynode/internal/device"
	"github.com/smazurov/pixynode/internal/events"
	"github.com/smazurov/pixynode/internal/led"
	"github.com/smazurov/pixynode/internal/logging"
	"github.com/smazurov/pixynode/internal/metrics/exporters"
	"github.com/smazurov/pixynode/internal/systemd"
)

// SettingsSourceFile marks settings applied from the settings profile.
const SettingsSourceFile = "file"

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Device settings
	Device            string `help:"Device backend (sim)" default:"sim" toml:"device.backend" env:"DEVICE_BACKEND"`
	ConnectIntervalMs int    `help:"Delay between device init attempts in milliseconds" default:"1000" toml:"device.connect_interval_ms" env:"DEVICE_CONNECT_INTERVAL_MS"`
	PollIntervalMs    int    `help:"Block poll interval in milliseconds" default:"20" toml:"device.poll_interval_ms" env:"DEVICE_POLL_INTERVAL_MS"`

	// Camera settings profile
	SettingsFile string `help:"Camera settings profile, applied at startup and on change" default:"camera.toml" toml:"camera.settings_file" env:"CAMERA_SETTINGS_FILE"`

	// Metrics settings
	MetricsPrometheusEnabled bool `help:"Enable Prometheus" default:"true" toml:"metrics.prometheus_enabled" env:"METRICS_PROMETHEUS_ENABLED"`
	MetricsStatsIntervalMs   int  `help:"Device stats event interval in milliseconds" default:"1000" toml:"metrics.stats_interval_ms" env:"METRICS_STATS_INTERVAL_MS"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// LED settings
	LEDBackend string `help:"Detection indicator LED (pixy, board, none)" default:"pixy" toml:"led.backend" env:"LED_BACKEND"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingCamera string `help:"Camera logging level" default:"info" toml:"logging.camera" env:"LOGGING_CAMERA"`
	LoggingChirp  string `help:"Command protocol logging level" default:"info" toml:"logging.chirp" env:"LOGGING_CHIRP"`
	LoggingPoller string `help:"Block poller logging level" default:"info" toml:"logging.poller" env:"LOGGING_POLLER"`
	LoggingAPI    string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingLED    string `help:"LED logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingConfig string `help:"Config watcher logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func main() {
	var cli humacli.CLI

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"camera": opts.LoggingCamera,
				"chirp":  opts.LoggingChirp,
				"poller": opts.LoggingPoller,
				"api":    opts.LoggingAPI,
				"led":    opts.LoggingLED,
				"config": opts.LoggingConfig,
			},
		})

		logger := logging.GetLogger("main")

		eventBus := events.New()
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(api.LogEntryEvent(entry))
		})

		svc, err := device.Open(opts.Device)
		if err != nil {
			logger.Error("Failed to open device", "device", opts.Device, "error", err)
			os.Exit(1)
		}
		camera := device.NewCamera(svc,
			device.WithPublisher(eventBus),
			device.WithLogger(logging.GetLogger("camera")),
		)

		var ledManager *led.Manager
		if opts.LEDBackend != led.BackendNone {
			ledLogger := logging.GetLogger("led")
			ledManager = led.NewManager(led.New(opts.LEDBackend, camera, ledLogger), eventBus, ledLogger)
		}

		poller := device.NewPoller(camera, eventBus, millis(opts.PollIntervalMs), logging.GetLogger("poller"))
		statsExporter := exporters.NewSSEExporter(eventBus, millis(opts.MetricsStatsIntervalMs))
		notifier := systemd.NewNotifier(logger)

		applySettings := func(source string, s config.Settings) {
			if s.IsEmpty() {
				return
			}
			applyErr := device.ApplySettings(camera, s)
			api.PublishSettingsApplied(eventBus, source, applyErr)
			if applyErr != nil {
				logger.Warn("Camera settings partially applied", "source", source, "error", applyErr)
				return
			}
			logger.Info("Camera settings applied", "source", source)
		}

		var watcher *config.Watcher[config.Settings]
		if opts.SettingsFile != "" {
			watcher = config.NewConfigWatcher(opts.SettingsFile, config.LoadSettings, logging.GetLogger("config"),
				config.WithDebounce[config.Settings](500*time.Millisecond))
			watcher.OnReload(func(s config.Settings) {
				notifier.Reloading()
				applySettings(SettingsSourceFile, s)
				notifier.Ready()
			})
		}

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Camera:       camera,
			EventBus:     eventBus,
			LEDManager:   ledManager,
			SettingsFile: opts.SettingsFile,
		}
		if opts.MetricsPrometheusEnabled {
			apiOpts.PrometheusHandler = exporters.HTTPHandler()
		}
		server := api.NewServer(apiOpts)

		ctx, cancel := context.WithCancel(context.Background())
		connected := make(chan struct{})

		hooks.OnStart(func() {
			statsExporter.Start(ctx)
			notifier.StartWatchdog(ctx)

			// The API serves health and metrics while the device is still absent.
			go func() {
				defer close(connected)

				if connErr := device.Connect(ctx, svc, millis(opts.ConnectIntervalMs), logger); connErr != nil {
					return
				}
				notifier.Status("device connected")

				if opts.SettingsFile != "" {
					s, loadErr := config.LoadSettings(opts.SettingsFile)
					if loadErr != nil {
						logger.Warn("Failed to load camera settings", "path", opts.SettingsFile, "error", loadErr)
					} else {
						applySettings(SettingsSourceFile, s)
					}
					if startErr := watcher.Start(); startErr != nil {
						logger.Warn("Failed to watch camera settings", "path", opts.SettingsFile, "error", startErr)
					}
				}

				if ledManager != nil {
					ledManager.Start()
				}
				poller.Start(ctx)
			}()

			notifier.Ready()
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			notifier.Stopping()
			logger.Info("Shutting down server")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			cancel()
			<-connected

			poller.Stop()
			if watcher != nil {
				watcher.Stop()
			}
			if ledManager != nil {
				ledManager.Stop()
			}
			statsExporter.Stop()
			camera.Close()
		})
	})

	cli.Root().AddCommand(cmd.CreateBlocksCmd())
	cli.Root().AddCommand(cmd.CreateFrameCmd())
	cli.Root().AddCommand(cmd.CreateInvokeCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	cli.Run()
}
