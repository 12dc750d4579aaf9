package device

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/pixynode/internal/events"
	"github.com/smazurov/pixynode/internal/metrics"
	"github.com/smazurov/pixynode/pkg/pixy"
	"github.com/smazurov/pixynode/pkg/pixy/blocks"
)

// DefaultPollInterval matches the device's 50 Hz detection rate.
const DefaultPollInterval = 20 * time.Millisecond

// BlockReader returns the current detections.
type BlockReader interface {
	ReadBlocks() ([]blocks.Block, error)
}

// Poller reads the detection buffer on a fixed interval and publishes
// every successful read on the bus.
type Poller struct {
	reader   BlockReader
	bus      Publisher
	interval time.Duration
	logger   *slog.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	failing bool
}

// NewPoller creates a poller. A non-positive interval uses DefaultPollInterval.
func NewPoller(reader BlockReader, bus Publisher, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		reader:   reader,
		bus:      bus,
		interval: interval,
		logger:   logger,
	}
}

// Start begins polling until ctx is done or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.run(ctx)
	p.logger.Info("Block poller started", "interval", p.interval)
}

// Stop cancels polling and waits for the loop to exit.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.PollOnce()
		}
	}
}

// PollOnce performs a single read. Failures are counted and logged once
// per failing streak; the camera publishes the failure event itself.
func (p *Poller) PollOnce() error {
	found, err := p.reader.ReadBlocks()
	if err != nil {
		// Capacity violations carry no status and are recorded as 0.
		code, _ := pixy.StatusCode(err)
		metrics.ObserveBlockFailure(int(code))
		if !p.failing {
			p.logger.Warn("Block read failed", "error", err)
			p.failing = true
		}
		return err
	}

	if p.failing {
		p.logger.Info("Block reads recovered")
		p.failing = false
	}

	var normal, colorCode, unknown int
	for _, b := range found {
		switch b.Kind {
		case blocks.KindNormal:
			normal++
		case blocks.KindColorCode:
			colorCode++
		default:
			unknown++
		}
	}
	metrics.ObserveBlocks(normal, colorCode, unknown)

	p.bus.Publish(events.BlocksDetectedEvent{
		Count:     len(found),
		Blocks:    BlockInfos(found),
		Timestamp: time.Now().Format(time.RFC3339Nano),
	})
	return nil
}

// BlockInfos converts decoded blocks to their event form.
func BlockInfos(found []blocks.Block) []events.BlockInfo {
	out := make([]events.BlockInfo, 0, len(found))
	for _, b := range found {
		info := events.BlockInfo{
			Kind:      b.Kind.String(),
			Type:      b.Type,
			Signature: b.Signature,
			X:         b.X,
			Y:         b.Y,
			Width:     b.Width,
			Height:    b.Height,
		}
		if angle, ok := b.Angle(); ok {
			info.Angle = &angle
		}
		out = append(out, info)
	}
	return out
}
