package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/pixynode/internal/events"
)

// Palette maps colour signatures 1..7 to LED colours.
var Palette = [...]Color{
	{255, 0, 0},
	{255, 128, 0},
	{255, 255, 0},
	{0, 255, 0},
	{0, 255, 255},
	{0, 0, 255},
	{255, 0, 255},
}

// colorCodeColor is shown while the largest block is a colour code.
var colorCodeColor = Color{255, 255, 255}

// Manager colours the LED after the largest detected block.
type Manager struct {
	controller  Controller
	eventBus    *events.Bus
	unsubscribe func()
	logger      *slog.Logger

	mu      sync.Mutex
	current Color
	started bool
}

// NewManager creates a manager that reacts to block detections.
func NewManager(controller Controller, eventBus *events.Bus, logger *slog.Logger) *Manager {
	return &Manager{
		controller: controller,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Start switches the LED off and begins listening for detections.
func (m *Manager) Start() {
	m.apply(Off, true)
	m.unsubscribe = m.eventBus.Subscribe(func(e events.BlocksDetectedEvent) {
		m.handleEvent(e)
	})
	m.logger.Info("LED manager started", "backend", m.controller.Name())
}

// Stop unsubscribes and switches the LED off.
func (m *Manager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.apply(Off, true)
	m.logger.Info("LED manager stopped")
}

func (m *Manager) handleEvent(e events.BlocksDetectedEvent) {
	m.apply(ColorFor(e.Blocks), false)
}

// apply writes c unless it is already showing.
func (m *Manager) apply(c Color, force bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started && !force && c == m.current {
		return
	}
	if err := m.controller.SetColor(c); err != nil {
		m.logger.Warn("Failed to set LED", "backend", m.controller.Name(), "error", err)
		return
	}
	m.current = c
	m.started = true
}

// Current returns the last colour written.
func (m *Manager) Current() Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// GetController returns the underlying LED controller for direct API access
func (m *Manager) GetController() Controller {
	return m.controller
}

// ColorFor picks the colour for a detection set: the palette entry of the
// largest block's signature, white for a colour code and off when empty.
func ColorFor(blocks []events.BlockInfo) Color {
	var largest *events.BlockInfo
	var area uint32
	for i := range blocks {
		a := uint32(blocks[i].Width) * uint32(blocks[i].Height)
		if largest == nil || a > area {
			largest, area = &blocks[i], a
		}
	}

	switch {
	case largest == nil:
		return Off
	case largest.Kind == "COLOR_CODE":
		return colorCodeColor
	case largest.Signature >= 1 && int(largest.Signature) <= len(Palette):
		return Palette[largest.Signature-1]
	default:
		return colorCodeColor
	}
}
