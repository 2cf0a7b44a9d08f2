package chip8

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/disasm"
	"github.com/valerio/go-chip8/chip8/timing"
)

// Run drives the machine until the backend or the user asks to quit. Each
// iteration runs a frame of instructions, presents it and dispatches the
// input events the backend collected. Interpreter faults stop the loop and
// are returned.
func (e *Emulator) Run(b backend.Backend, limiter timing.Limiter) error {
	if handler, ok := b.(backend.ActionHandler); ok {
		e.actionHandler = handler.HandleAction
		defer func() { e.actionHandler = nil }()
	}

	e.quit = false
	limiter.Reset()

	for !e.quit {
		switch {
		case !e.paused:
			if err := e.RunUntilFrame(); err != nil {
				return err
			}
		case e.stepRequested:
			e.stepRequested = false
			e.changed = false
			out, err := e.Step()
			if err != nil {
				return err
			}
			e.logStep(out.Changed)
		default:
			e.changed = false
		}

		events, err := b.Update(e.GetCurrentFrame(), backend.Status{
			Beep:    e.beep && !e.paused,
			Changed: e.changed,
			Paused:  e.paused,
		})
		if err != nil {
			return fmt.Errorf("backend update failed: %w", err)
		}

		for _, evt := range events {
			e.inputs.Trigger(evt.Action, evt.Type)
		}

		if e.resync {
			e.resync = false
			limiter.Reset()
		}
		limiter.WaitForNextFrame()
	}

	slog.Info("Emulation stopped", "frames", e.frameCount, "instructions", e.instructionCount)
	return nil
}

// logStep reports the instruction just executed and the one PC now points at.
func (e *Emulator) logStep(changed bool) {
	attrs := []any{
		"opcode", fmt.Sprintf("0x%04X", e.cpu.CurrentOpcode()),
		"executed", cpu.Decode(e.cpu.CurrentOpcode()).String(),
		"changed", changed,
	}
	if line, err := disasm.DisassembleAt(e.cpu.PC(), e.mem); err == nil {
		attrs = append(attrs, "next", disasm.FormatLine(line))
	} else {
		attrs = append(attrs, "pc", fmt.Sprintf("0x%03X", e.cpu.PC()), "next_error", err)
	}
	slog.Debug("Stepped", attrs...)
}
