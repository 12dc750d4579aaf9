package exporters

import (
	"context"
	"sync"
	"time"

	"github.com/smazurov/pixynode/internal/events"
	"github.com/smazurov/pixynode/internal/metrics"
)

// EventPublisher interface for publishing events.
type EventPublisher interface {
	Publish(ev events.Event)
}

// SSEExporter periodically publishes device stats for SSE clients.
type SSEExporter struct {
	eventBus EventPublisher
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewSSEExporter creates a new SSE exporter.
func NewSSEExporter(eventBus EventPublisher, interval time.Duration) *SSEExporter {
	if interval <= 0 {
		interval = time.Second
	}
	return &SSEExporter{
		eventBus: eventBus,
		interval: interval,
	}
}

// Start begins the export loop.
func (s *SSEExporter) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the exporter and waits for the goroutine to finish.
func (s *SSEExporter) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SSEExporter) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.eventBus.Publish(StatsEvent(metrics.Snapshot()))
		}
	}
}

// StatsEvent converts a stats snapshot to its event form.
func StatsEvent(st metrics.Stats) events.DeviceStatsEvent {
	return events.DeviceStatsEvent{
		Connected:       st.Connected,
		Commands:        st.Commands,
		CommandFailures: st.CommandFailures,
		BlockReads:      st.BlockReads,
		BlockFailures:   st.BlockFailures,
		LastBlockCount:  st.LastBlockCount,
		LastRenderMS:    float64(st.LastRender.Microseconds()) / 1000,
	}
}
