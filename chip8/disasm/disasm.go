package disasm

import (
	"fmt"
	"math"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/memory"
)

// Line represents a single disassembled instruction
type Line struct {
	Address uint16
	Word    uint16
	Text    string
}

// Disassemble decodes a ROM image two bytes at a time, as if loaded at base.
// A trailing odd byte is not an instruction and is left out. The walk stops at
// the first instruction whose address would not fit in 16 bits.
func Disassemble(rom []byte, base uint16) []Line {
	lines := make([]Line, 0, len(rom)/addr.InstructionSize)
	for i := 0; i+1 < len(rom); i += addr.InstructionSize {
		if int(base)+i+1 > math.MaxUint16 {
			break
		}
		word := bit.Combine(rom[i], rom[i+1])
		lines = append(lines, Line{
			Address: base + uint16(i),
			Word:    word,
			Text:    cpu.Decode(word).String(),
		})
	}
	return lines
}

// DisassembleAt disassembles the instruction at the given program counter
func DisassembleAt(pc uint16, mem *memory.RAM) (Line, error) {
	word, err := mem.ReadWord(pc)
	if err != nil {
		return Line{}, err
	}
	return Line{Address: pc, Word: word, Text: cpu.Decode(word).String()}, nil
}

// FormatLine renders a line as address, the two raw bytes and the mnemonic.
func FormatLine(l Line) string {
	return fmt.Sprintf("%04X %02X %02X %s", l.Address, bit.High(l.Word), bit.Low(l.Word), l.Text)
}
