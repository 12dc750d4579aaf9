// Package metrics provides Prometheus metrics for the camera client.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pixynode",
		Subsystem: "chirp",
		Name:      "commands_total",
		Help:      "Commands dispatched to the device, by result",
	}, []string{"command", "result"})

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pixynode",
		Subsystem: "chirp",
		Name:      "command_duration_seconds",
		Help:      "Round-trip time of device commands",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"command"})

	commandStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pixynode",
		Subsystem: "chirp",
		Name:      "last_status",
		Help:      "Status code returned by the last call of each command",
	}, []string{"command"})

	blocksDetected = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pixynode",
		Subsystem: "blocks",
		Name:      "detected",
		Help:      "Blocks in the last successful read, by kind",
	}, []string{"kind"})

	blockReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pixynode",
		Subsystem: "blocks",
		Name:      "reads_total",
		Help:      "Block buffer reads, by result",
	}, []string{"result"})

	frameRenderSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pixynode",
		Subsystem: "frame",
		Name:      "render_seconds",
		Help:      "Time spent demosaicing one frame",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10),
	})

	deviceConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pixynode",
		Subsystem: "device",
		Name:      "connected",
		Help:      "1 when the device service is initialized",
	})

	// Local mirror for the SSE exporter.
	stats   Stats
	statsMu sync.RWMutex
)

// Stats is a point-in-time summary of device activity.
type Stats struct {
	Connected       bool
	Commands        uint64
	CommandFailures uint64
	BlockReads      uint64
	BlockFailures   uint64
	LastBlockCount  int
	LastRender      time.Duration
}

// ObserveCommand records one dispatched command.
func ObserveCommand(command string, status int32, elapsed time.Duration) {
	result := "ok"
	if status < 0 {
		result = "error"
	}
	commandsTotal.WithLabelValues(command, result).Inc()
	commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
	commandStatus.WithLabelValues(command).Set(float64(status))

	statsMu.Lock()
	stats.Commands++
	if status < 0 {
		stats.CommandFailures++
	}
	statsMu.Unlock()
}

// ObserveBlocks records a successful block read.
func ObserveBlocks(normal, colorCode, unknown int) {
	blocksDetected.WithLabelValues("normal").Set(float64(normal))
	blocksDetected.WithLabelValues("color_code").Set(float64(colorCode))
	blocksDetected.WithLabelValues("unknown").Set(float64(unknown))
	blockReadsTotal.WithLabelValues("ok").Inc()

	statsMu.Lock()
	stats.BlockReads++
	stats.LastBlockCount = normal + colorCode + unknown
	statsMu.Unlock()
}

// ObserveBlockFailure records a failed block read.
func ObserveBlockFailure(status int) {
	blockReadsTotal.WithLabelValues("error").Inc()
	commandStatus.WithLabelValues("get_blocks").Set(float64(status))

	statsMu.Lock()
	stats.BlockReads++
	stats.BlockFailures++
	statsMu.Unlock()
}

// ObserveFrameRender records the demosaic time of one frame.
func ObserveFrameRender(d time.Duration) {
	frameRenderSeconds.Observe(d.Seconds())

	statsMu.Lock()
	stats.LastRender = d
	statsMu.Unlock()
}

// SetDeviceConnected records whether the device service is usable.
func SetDeviceConnected(connected bool) {
	v := 0.0
	if connected {
		v = 1
	}
	deviceConnected.Set(v)

	statsMu.Lock()
	stats.Connected = connected
	statsMu.Unlock()
}

// Snapshot returns a copy of the current stats.
func Snapshot() Stats {
	statsMu.RLock()
	defer statsMu.RUnlock()
	return stats
}
