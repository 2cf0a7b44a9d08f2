package backend

import (
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend represents a complete emulator platform (rendering + input + sound cue)
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, SDL window, etc.)
// - Translating platform-specific input events to Actions
// - Handling backend-specific features (snapshots, debug panels)
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling Update.
	Init(config Config) error

	// Update renders the frame and returns the input events collected since the
	// last call. The emulator loop dispatches them, backends never touch the keypad.
	Update(frame *video.FrameBuffer, status Status) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// ActionHandler is implemented by backends that react to emulator actions
// themselves, such as snapshots or toggling a debug panel.
type ActionHandler interface {
	HandleAction(act action.Action)
}

// DebugDataProvider exposes machine state to debug displays.
type DebugDataProvider interface {
	ExtractDebugData() *debug.CompleteDebugData
}

// Config holds configuration for backends
type Config struct {
	Title         string
	Scale         int
	ShowDebug     bool              // Backends may ignore unsupported features
	DebugProvider DebugDataProvider // Optional, used by debug panels
}

// Status carries per-frame machine signals alongside the frame.
type Status struct {
	// Beep is true while the sound timer is running.
	Beep bool
	// Changed is true when the frame was redrawn since the last Update.
	Changed bool
	Paused  bool
}

// InputEvent is a platform input translated to an emulator action.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}
