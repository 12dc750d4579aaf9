package device

import (
	"context"
	"testing"
	"time"

	"github.com/smazurov/pixynode/internal/events"
	"github.com/smazurov/pixynode/pkg/pixy"
	"github.com/smazurov/pixynode/pkg/pixy/blocks"
)

func TestPollOncePublishes(t *testing.T) {
	cam, dev, _ := newTestCamera(t)
	dev.SetBlocks(
		blocks.Record{Type: blocks.TypeNormal, Signature: 1, X: 100, Y: 50, Width: 20, Height: 10},
		blocks.Record{Type: blocks.TypeColorCode, Signature: 10, Angle: -30},
		blocks.Record{Type: 9},
	)

	bus := &recorder{}
	p := NewPoller(cam, bus, time.Hour, quietLogger())
	if err := p.PollOnce(); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}

	evs := bus.all()
	if len(evs) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(evs))
	}
	ev, ok := evs[0].(events.BlocksDetectedEvent)
	if !ok {
		t.Fatalf("Expected BlocksDetectedEvent, got %T", evs[0])
	}
	if ev.Count != 3 || len(ev.Blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", ev.Count)
	}

	kinds := []string{ev.Blocks[0].Kind, ev.Blocks[1].Kind, ev.Blocks[2].Kind}
	want := []string{"NORMAL", "COLOR_CODE", "???"}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("block %d: expected kind %s, got %s", i, want[i], kinds[i])
		}
	}
	if ev.Blocks[0].Angle != nil {
		t.Error("Expected no angle on a normal block")
	}
	if ev.Blocks[1].Angle == nil || *ev.Blocks[1].Angle != -30 {
		t.Errorf("Expected angle -30, got %v", ev.Blocks[1].Angle)
	}
}

func TestPollOnceEmpty(t *testing.T) {
	cam, _, _ := newTestCamera(t)
	bus := &recorder{}
	p := NewPoller(cam, bus, time.Hour, quietLogger())

	if err := p.PollOnce(); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	ev := bus.all()[0].(events.BlocksDetectedEvent)
	if ev.Count != 0 || ev.Blocks == nil {
		t.Errorf("Expected empty non-nil block list, got %+v", ev)
	}
}

func TestPollOnceFailure(t *testing.T) {
	cam, dev, camEvents := newTestCamera(t)
	dev.SetBlockStatus(int(pixy.StatusUSBBusy))

	bus := &recorder{}
	p := NewPoller(cam, bus, time.Hour, quietLogger())

	for i := 0; i < 3; i++ {
		if err := p.PollOnce(); err == nil {
			t.Fatal("Expected error")
		}
	}
	if len(bus.all()) != 0 {
		t.Errorf("Expected no detections on failure, got %d", len(bus.all()))
	}
	if !p.failing {
		t.Error("Expected poller in failing state")
	}
	if len(camEvents.all()) != 3 {
		t.Errorf("Expected 3 failure events from the camera, got %d", len(camEvents.all()))
	}

	dev.SetBlockStatus(0)
	if err := p.PollOnce(); err != nil {
		t.Fatalf("PollOnce after recovery: %v", err)
	}
	if p.failing {
		t.Error("Expected poller to recover")
	}
}

func TestPollerStartStop(t *testing.T) {
	cam, dev, _ := newTestCamera(t)
	dev.SetBlocks(blocks.Record{Type: blocks.TypeNormal, Signature: 1})

	bus := events.New()
	received := make(chan events.BlocksDetectedEvent, 16)
	unsub := bus.Subscribe(func(e events.BlocksDetectedEvent) {
		select {
		case received <- e:
		default:
		}
	})
	defer unsub()

	p := NewPoller(cam, bus, 5*time.Millisecond, quietLogger())
	p.Start(context.Background())

	select {
	case ev := <-received:
		if ev.Count != 1 {
			t.Errorf("Expected 1 block, got %d", ev.Count)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for poll")
	}

	p.Stop()
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	cam, _, _ := newTestCamera(t)
	ctx, cancel := context.WithCancel(context.Background())

	p := NewPoller(cam, &recorder{}, time.Millisecond, quietLogger())
	p.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Poller did not stop after cancel")
	}
}

func TestNewPollerDefaults(t *testing.T) {
	p := NewPoller(nil, nil, 0, nil)
	if p.interval != DefaultPollInterval {
		t.Errorf("Expected %v, got %v", DefaultPollInterval, p.interval)
	}
	if p.logger == nil {
		t.Error("Expected default logger")
	}
}
