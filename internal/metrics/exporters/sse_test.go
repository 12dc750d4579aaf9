package exporters

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/pixynode/internal/events"
	"github.com/smazurov/pixynode/internal/metrics"
)

type mockEventBus struct {
	mu        sync.Mutex
	events    []events.Event
	published chan struct{}
}

func newMockEventBus() *mockEventBus {
	return &mockEventBus{
		published: make(chan struct{}, 100),
	}
}

func (m *mockEventBus) Publish(ev events.Event) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	select {
	case m.published <- struct{}{}:
	default:
	}
}

func (m *mockEventBus) getEvents() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]events.Event, len(m.events))
	copy(result, m.events)
	return result
}

func TestSSEExporterPublishesStats(t *testing.T) {
	metrics.SetDeviceConnected(true)
	metrics.ObserveBlocks(2, 1, 0)

	mock := newMockEventBus()
	exporter := NewSSEExporter(mock, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	exporter.Start(ctx)

	select {
	case <-mock.published:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for stats publish")
	}

	cancel()
	exporter.Stop()

	stats, ok := mock.getEvents()[0].(events.DeviceStatsEvent)
	if !ok {
		t.Fatalf("Expected DeviceStatsEvent, got %T", mock.getEvents()[0])
	}
	if !stats.Connected {
		t.Error("Expected connected=true")
	}
	if stats.LastBlockCount != 3 {
		t.Errorf("LastBlockCount = %d, want 3", stats.LastBlockCount)
	}
}

func TestStatsEventRenderMillis(t *testing.T) {
	ev := StatsEvent(metrics.Stats{LastRender: 2500 * time.Microsecond})
	if ev.LastRenderMS != 2.5 {
		t.Errorf("LastRenderMS = %v, want 2.5", ev.LastRenderMS)
	}
}

func TestSSEExporterStopIdempotent(t *testing.T) {
	mock := newMockEventBus()
	exporter := NewSSEExporter(mock, 10*time.Millisecond)

	exporter.Start(context.Background())
	time.Sleep(30 * time.Millisecond)

	exporter.Stop()
	exporter.Stop()

	countAfterStop := len(mock.getEvents())
	time.Sleep(30 * time.Millisecond)
	if got := len(mock.getEvents()); got != countAfterStop {
		t.Errorf("events published after stop: got %d, want %d", got, countAfterStop)
	}
}

func TestSSEExporterStopBeforeStart(t *testing.T) {
	mock := newMockEventBus()
	exporter := NewSSEExporter(mock, 10*time.Millisecond)

	exporter.Stop()

	exporter.Start(t.Context())
	time.Sleep(50 * time.Millisecond)
	exporter.Stop()

	if len(mock.getEvents()) == 0 {
		t.Error("expected events after Start(), got none")
	}
}

func TestNewSSEExporterDefaultInterval(t *testing.T) {
	if e := NewSSEExporter(newMockEventBus(), 0); e.interval != time.Second {
		t.Errorf("interval = %v, want 1s", e.interval)
	}
}
