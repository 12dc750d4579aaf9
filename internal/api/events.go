package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/pixynode/internal/events"
	"github.com/smazurov/pixynode/internal/metrics"
	"github.com/smazurov/pixynode/internal/metrics/exporters"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of block detections, captured frames, command failures, applied settings and device stats",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"blocks-detected":  events.BlocksDetectedEvent{},
		"frame-captured":   events.FrameCapturedEvent{},
		"command-failed":   events.CommandFailedEvent{},
		"settings-applied": events.SettingsAppliedEvent{},
		"device-stats":     events.DeviceStatsEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Detections arrive at up to 50 Hz, so give the channel some slack.
		eventCh := make(chan any, 64)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.BlocksDetectedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.FrameCapturedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CommandFailedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.SettingsAppliedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.DeviceStatsEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Current stats double as the connection confirmation
		if err := send.Data(exporters.StatsEvent(metrics.Snapshot())); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
