package debug

import (
	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/cpu"
)

// CPUState contains all CPU register information for debugging
type CPUState struct {
	V          [addr.RegisterCount]uint8
	I          uint16
	PC         uint16
	SP         uint8
	Stack      []uint16
	DelayTimer uint8
	SoundTimer uint8
	Cycles     uint64

	// Opcode is the last executed instruction word, Instruction its mnemonic.
	Opcode      uint16
	Instruction string
}

// Capture copies the current register state out of the CPU.
func Capture(c *cpu.CPU) *CPUState {
	state := &CPUState{
		V:          c.Registers(),
		I:          c.I(),
		PC:         c.PC(),
		SP:         c.SP(),
		Stack:      c.Stack(),
		DelayTimer: c.DelayTimer(),
		SoundTimer: c.SoundTimer(),
		Cycles:     c.Cycles(),
		Opcode:     c.CurrentOpcode(),
	}
	if state.Cycles > 0 {
		state.Instruction = cpu.Decode(state.Opcode).String()
	}
	return state
}

// MemorySnapshot contains a snapshot of memory for disassembly
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerPaused:
		return "paused"
	case DebuggerStepInstruction:
		return "step"
	}
	return "running"
}

// CompleteDebugData contains all debug information needed by debug displays
type CompleteDebugData struct {
	CPU           *CPUState
	Memory        *MemorySnapshot
	DebuggerState DebuggerState
}
