package debug

import (
	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/disasm"
)

type DisasmLine struct {
	Address     uint16
	Instruction string
	IsCurrent   bool
}

// CreateDisassembly returns up to maxLines instructions from the snapshot, centred on pc
// when it falls inside the snapshot.
func CreateDisassembly(snapshot *MemorySnapshot, pc uint16, maxLines int) []DisasmLine {
	if snapshot == nil || maxLines <= 0 {
		return nil
	}

	// keep instructions aligned with pc
	start := snapshot.StartAddr
	if pc >= start && (pc-start)%addr.InstructionSize != 0 {
		start++
	}
	offset := int(start - snapshot.StartAddr)
	if offset > len(snapshot.Bytes) {
		return nil
	}
	decoded := disasm.Disassemble(snapshot.Bytes[offset:], start)

	all := make([]DisasmLine, len(decoded))
	pcIndex := -1
	for i, l := range decoded {
		all[i] = DisasmLine{Address: l.Address, Instruction: l.Text, IsCurrent: l.Address == pc}
		if l.Address == pc {
			pcIndex = i
		}
	}

	if pcIndex < 0 {
		if len(all) >= maxLines {
			all = all[:maxLines-1]
		}
		return append(all, DisasmLine{
			Address:     pc,
			Instruction: "[PC outside snapshot range]",
			IsCurrent:   true,
		})
	}

	startIdx := pcIndex - maxLines/2
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := startIdx + maxLines
	if endIdx > len(all) {
		endIdx = len(all)
		startIdx = endIdx - maxLines
		if startIdx < 0 {
			startIdx = 0
		}
	}
	return all[startIdx:endIdx]
}
