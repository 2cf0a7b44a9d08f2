package chip8

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

// debugWindow is how many bytes around PC are captured for the disassembly panel.
const debugWindow = 64

// Emulator is the root struct and entry point for running the interpreter.
type Emulator struct {
	mem    *memory.RAM
	cpu    *cpu.CPU
	keypad *input.Keypad
	inputs *input.Manager

	rom []byte

	paused        bool
	stepRequested bool
	resync        bool
	quit          bool

	// accumulated over the last frame
	changed bool
	beep    bool

	frameCount       uint64
	instructionCount uint64

	actionHandler func(action.Action)
}

type options struct {
	rng    cpu.RandomSource
	quirks cpu.Quirks
}

// Option configures an Emulator.
type Option func(*options)

// WithSeed makes the random instruction reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.rng = cpu.NewRandomSource(seed) }
}

// WithRandomSource injects the source used by the random instruction.
func WithRandomSource(rng cpu.RandomSource) Option {
	return func(o *options) { o.rng = rng }
}

// WithQuirks selects interpreter quirks.
func WithQuirks(q cpu.Quirks) Option {
	return func(o *options) { o.quirks = q }
}

// New creates an emulator with empty program memory.
func New(opts ...Option) *Emulator {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Emulator{
		mem:    memory.New(),
		keypad: input.NewKeypad(),
	}
	e.cpu = cpu.New(e.mem, e.keypad, o.rng)
	e.cpu.SetQuirks(o.quirks)
	e.inputs = input.NewManager(e.keypad)
	e.registerActions()

	return e
}

// NewWithFile creates an emulator and loads the ROM at path into it.
func NewWithFile(path string, opts ...Option) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM: %w", err)
	}

	e := New(opts...)
	if err := e.LoadROM(data); err != nil {
		return nil, fmt.Errorf("failed to load ROM %s: %w", path, err)
	}

	return e, nil
}

// LoadROM resets the machine and loads the program at the start address.
// On error the machine is left untouched.
func (e *Emulator) LoadROM(data []byte) error {
	if len(data) == 0 {
		return memory.ErrEmptyROM
	}

	e.rom = append([]byte(nil), data...)
	e.Reset()

	if len(data) > addr.MemorySize-int(addr.ProgramStart) {
		slog.Warn("ROM larger than program memory, truncated",
			"size", len(data), "max", addr.MemorySize-int(addr.ProgramStart))
	}
	slog.Info("Loaded ROM", "bytes", len(data))
	return nil
}

// Reset restores the power-on state and reloads the last ROM.
func (e *Emulator) Reset() {
	e.mem.Reset()
	if len(e.rom) > 0 {
		// the ROM was validated on load
		_, _ = e.mem.Load(e.rom)
	}
	e.cpu.Reset()
	e.keypad.Reset()

	e.changed = false
	e.beep = false
	e.stepRequested = false
	e.frameCount = 0
	e.instructionCount = 0
}

// Step executes a single instruction.
func (e *Emulator) Step() (cpu.Output, error) {
	out, err := e.cpu.Step()
	if err != nil {
		return out, err
	}
	e.instructionCount++
	e.changed = e.changed || out.Changed
	e.beep = out.Beep
	return out, nil
}

// RunUntilFrame runs one frame worth of instructions. Changed reports whether
// any of them touched the screen, Beep whether the tone is still on at the end.
func (e *Emulator) RunUntilFrame() error {
	e.changed = false
	for i := 0; i < timing.CyclesPerFrame; i++ {
		if _, err := e.Step(); err != nil {
			return err
		}
	}
	e.frameCount++
	return nil
}

func (e *Emulator) GetCurrentFrame() *video.FrameBuffer {
	return e.cpu.Screen()
}

// Beep reports whether the sound timer was running at the end of the last cycle.
func (e *Emulator) Beep() bool { return e.beep }

// Changed reports whether the screen changed during the last frame.
func (e *Emulator) Changed() bool { return e.changed }

func (e *Emulator) Paused() bool { return e.paused }

func (e *Emulator) CPU() *cpu.CPU         { return e.cpu }
func (e *Emulator) Memory() *memory.RAM   { return e.mem }
func (e *Emulator) Keypad() *input.Keypad { return e.keypad }

func (e *Emulator) GetInstructionCount() uint64 { return e.instructionCount }
func (e *Emulator) GetFrameCount() uint64       { return e.frameCount }

// HandleAction feeds a single action through the input manager.
func (e *Emulator) HandleAction(act action.Action, pressed bool) {
	if pressed {
		e.inputs.Trigger(act, event.Press)
	} else {
		e.inputs.Trigger(act, event.Release)
	}
}

// ExtractDebugData snapshots registers and the memory around PC.
func (e *Emulator) ExtractDebugData() *debug.CompleteDebugData {
	state := debug.Capture(e.cpu)

	start := int(state.PC) - debugWindow/2
	if start < 0 {
		start = 0
	}
	length := debugWindow
	if start+length > addr.MemorySize {
		length = addr.MemorySize - start
	}

	var snapshot *debug.MemorySnapshot
	if length > 0 {
		if window, err := e.mem.Slice(uint16(start), length, "debug"); err == nil {
			snapshot = &debug.MemorySnapshot{
				StartAddr: uint16(start),
				Bytes:     append([]byte(nil), window...),
			}
		}
	}

	debuggerState := debug.DebuggerRunning
	if e.paused {
		debuggerState = debug.DebuggerPaused
		if e.stepRequested {
			debuggerState = debug.DebuggerStepInstruction
		}
	}

	return &debug.CompleteDebugData{
		CPU:           state,
		Memory:        snapshot,
		DebuggerState: debuggerState,
	}
}

func (e *Emulator) registerActions() {
	e.inputs.On(action.EmulatorPauseToggle, event.Press, e.togglePause)
	e.inputs.On(action.EmulatorStepInstruction, event.Press, func() {
		if e.paused {
			e.stepRequested = true
		}
	})
	e.inputs.On(action.EmulatorReset, event.Press, func() {
		slog.Info("Resetting machine")
		e.Reset()
	})
	e.inputs.On(action.EmulatorQuit, event.Press, func() {
		e.quit = true
	})

	// presenter specific actions
	for _, act := range []action.Action{
		action.EmulatorSnapshot,
		action.EmulatorDebugToggle,
		action.DebugLogLevelIncrease,
		action.DebugLogLevelDecrease,
	} {
		e.inputs.On(act, event.Press, func() {
			if e.actionHandler != nil {
				e.actionHandler(act)
			}
		})
	}
}

func (e *Emulator) togglePause() {
	e.paused = !e.paused
	if e.paused {
		slog.Info("Paused", "pc", fmt.Sprintf("0x%03X", e.cpu.PC()))
	} else {
		e.resync = true
		slog.Info("Resumed")
	}
}
