package events

// Event type constants for kelindar/event.
const (
	TypeBlocksDetected uint32 = iota + 1
	TypeFrameCaptured
	TypeCommandFailed
	TypeSettingsApplied
	TypeLogEntry
	TypeDeviceStats
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// BlockInfo is the wire form of one detection.
type BlockInfo struct {
	Kind      string `json:"kind" example:"NORMAL" doc:"NORMAL, COLOR_CODE or ???"`
	Type      uint16 `json:"type" example:"0" doc:"Raw record discriminator"`
	Signature uint16 `json:"signature" example:"1" doc:"Colour signature"`
	X         uint16 `json:"x" example:"160" doc:"Centre x"`
	Y         uint16 `json:"y" example:"100" doc:"Centre y"`
	Width     uint16 `json:"width" example:"24" doc:"Block width"`
	Height    uint16 `json:"height" example:"18" doc:"Block height"`
	Angle     *int16 `json:"angle,omitempty" example:"45" doc:"Orientation, colour codes only"`
}

// BlocksDetectedEvent is published after every successful block read.
type BlocksDetectedEvent struct {
	Count     int         `json:"count" example:"2" doc:"Number of valid blocks"`
	Blocks    []BlockInfo `json:"blocks" doc:"Classified blocks"`
	Timestamp string      `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Read timestamp"`
}

// Type returns the event type identifier for BlocksDetectedEvent.
func (e BlocksDetectedEvent) Type() uint32 { return TypeBlocksDetected }

// FrameCapturedEvent represents a frame that was captured and demosaiced.
type FrameCapturedEvent struct {
	Format    string  `json:"format" example:"BA81" doc:"FourCC of the raw frame"`
	Width     int     `json:"width" example:"318" doc:"Output image width"`
	Height    int     `json:"height" example:"198" doc:"Output image height"`
	RenderMS  float64 `json:"render_ms" example:"3.2" doc:"Demosaic time in milliseconds"`
	Timestamp string  `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Capture timestamp"`
}

// Type returns the event type identifier for FrameCapturedEvent.
func (e FrameCapturedEvent) Type() uint32 { return TypeFrameCaptured }

// CommandFailedEvent represents a device call that returned a failure status.
type CommandFailedEvent struct {
	Command   string `json:"command" example:"cam_setAWB" doc:"Command or operation name"`
	Status    int32  `json:"status" example:"-1" doc:"Device status code, 0 when not a status failure"`
	Error     string `json:"error" example:"USB Error: I/O" doc:"Error description"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Failure timestamp"`
}

// Type returns the event type identifier for CommandFailedEvent.
func (e CommandFailedEvent) Type() uint32 { return TypeCommandFailed }

// SettingsAppliedEvent is published after camera settings were written.
type SettingsAppliedEvent struct {
	Source    string   `json:"source" example:"api" doc:"api or file"`
	Errors    []string `json:"errors,omitempty" doc:"Fields that failed to apply"`
	Timestamp string   `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SettingsAppliedEvent.
func (e SettingsAppliedEvent) Type() uint32 { return TypeSettingsApplied }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"api" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
	Line       string         `json:"line" doc:"Entry formatted for display"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// DeviceStatsEvent is a periodic summary of device activity.
type DeviceStatsEvent struct {
	Connected       bool    `json:"connected" doc:"Device service initialized"`
	Commands        uint64  `json:"commands" example:"1200" doc:"Commands dispatched"`
	CommandFailures uint64  `json:"command_failures" example:"3" doc:"Commands that returned a negative status"`
	BlockReads      uint64  `json:"block_reads" example:"5000" doc:"Block buffer reads"`
	BlockFailures   uint64  `json:"block_failures" example:"0" doc:"Failed block reads"`
	LastBlockCount  int     `json:"last_block_count" example:"2" doc:"Blocks in the last successful read"`
	LastRenderMS    float64 `json:"last_render_ms" example:"3.1" doc:"Last demosaic time in milliseconds"`
}

// Type returns the event type identifier for DeviceStatsEvent.
func (e DeviceStatsEvent) Type() uint32 { return TypeDeviceStats }
