package cpu

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/bit"
)

// Op identifies an instruction family.
type Op uint8

const (
	OpUnknown Op = iota
	OpNop
	OpClear
	OpReturn
	OpJump
	OpCall
	OpSkipEqualImm
	OpSkipNotEqualImm
	OpSkipEqualReg
	OpLoadImm
	OpAddImm
	OpMove
	OpOr
	OpAnd
	OpXor
	OpAdd
	OpSub
	OpShiftRight
	OpSubReverse
	OpShiftLeft
	OpSkipNotEqualReg
	OpLoadIndex
	OpJumpOffset
	OpRandom
	OpDraw
	OpSkipKey
	OpSkipNotKey
	OpReadDelay
	OpWaitKey
	OpSetDelay
	OpSetSound
	OpAddIndex
	OpFontChar
	OpStoreBCD
	OpDumpRegisters
	OpLoadRegisters
)

var opNames = [...]string{
	OpUnknown:         "???",
	OpNop:             "NOP",
	OpClear:           "CLS",
	OpReturn:          "RTS",
	OpJump:            "JMP",
	OpCall:            "CALL",
	OpSkipEqualImm:    "SKIP.EQ",
	OpSkipNotEqualImm: "SKIP.NE",
	OpSkipEqualReg:    "SKIP.EQ",
	OpLoadImm:         "MVI",
	OpAddImm:          "ADI",
	OpMove:            "MOV.",
	OpOr:              "OR.",
	OpAnd:             "AND.",
	OpXor:             "XOR.",
	OpAdd:             "ADD.",
	OpSub:             "SUB.",
	OpShiftRight:      "SHR.",
	OpSubReverse:      "SUBB.",
	OpShiftLeft:       "SHL.",
	OpSkipNotEqualReg: "SKIP.NE",
	OpLoadIndex:       "MVI",
	OpJumpOffset:      "JMP",
	OpRandom:          "RNDMSK",
	OpDraw:            "SPRITE",
	OpSkipKey:         "SKIPKEY.Y",
	OpSkipNotKey:      "SKIPKEY.N",
	OpReadDelay:       "MOV",
	OpWaitKey:         "KEY",
	OpSetDelay:        "MOV",
	OpSetSound:        "MOV",
	OpAddIndex:        "ADI",
	OpFontChar:        "SPRITECHAR",
	OpStoreBCD:        "MOVBCD",
	OpDumpRegisters:   "MOVM",
	OpLoadRegisters:   "MOVM",
}

// String returns the mnemonic of the instruction family.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return opNames[OpUnknown]
}

// Nibbles is an instruction word split into four 4 bit fields, most significant first.
type Nibbles [4]uint8

// Word recombines the nibbles into the original instruction word.
func (n Nibbles) Word() uint16 {
	return bit.CombineNibbles(n[0], n[1], n[2], n[3])
}

// Instruction is a decoded instruction word with all of its operand fields extracted.
// Which fields are meaningful depends on Op.
type Instruction struct {
	Op   Op
	Word uint16
	X    uint8  // second nibble, primary register
	Y    uint8  // third nibble, secondary register
	N    uint8  // last nibble, sprite height
	NN   uint8  // low byte, immediate
	NNN  uint16 // low 12 bits, address
}

// Nibbles returns the four fields of the instruction word.
func (in Instruction) Nibbles() Nibbles {
	return Nibbles{bit.Nibble(0, in.Word), in.X, in.Y, in.N}
}

// Decode turns an instruction word into an Instruction. Every word decodes;
// words outside the instruction set are tagged OpUnknown.
func Decode(word uint16) Instruction {
	in := Instruction{
		Word: word,
		X:    bit.Nibble(1, word),
		Y:    bit.Nibble(2, word),
		N:    bit.Nibble(3, word),
		NN:   bit.Low(word),
		NNN:  word & 0x0FFF,
	}
	in.Op = decodeOp(bit.Nibble(0, word), in)
	return in
}

func decodeOp(family uint8, in Instruction) Op {
	switch family {
	case 0x0:
		switch in.NNN {
		case 0x000:
			return OpNop
		case 0x0E0:
			return OpClear
		case 0x0EE:
			return OpReturn
		}
	case 0x1:
		return OpJump
	case 0x2:
		return OpCall
	case 0x3:
		return OpSkipEqualImm
	case 0x4:
		return OpSkipNotEqualImm
	case 0x5:
		if in.N == 0x0 {
			return OpSkipEqualReg
		}
	case 0x6:
		return OpLoadImm
	case 0x7:
		return OpAddImm
	case 0x8:
		switch in.N {
		case 0x0:
			return OpMove
		case 0x1:
			return OpOr
		case 0x2:
			return OpAnd
		case 0x3:
			return OpXor
		case 0x4:
			return OpAdd
		case 0x5:
			return OpSub
		case 0x6:
			return OpShiftRight
		case 0x7:
			return OpSubReverse
		case 0xE:
			return OpShiftLeft
		}
	case 0x9:
		if in.N == 0x0 {
			return OpSkipNotEqualReg
		}
	case 0xA:
		return OpLoadIndex
	case 0xB:
		return OpJumpOffset
	case 0xC:
		return OpRandom
	case 0xD:
		return OpDraw
	case 0xE:
		switch in.NN {
		case 0x9E:
			return OpSkipKey
		case 0xA1:
			return OpSkipNotKey
		}
	case 0xF:
		switch in.NN {
		case 0x07:
			return OpReadDelay
		case 0x0A:
			return OpWaitKey
		case 0x15:
			return OpSetDelay
		case 0x18:
			return OpSetSound
		case 0x1E:
			return OpAddIndex
		case 0x29:
			return OpFontChar
		case 0x33:
			return OpStoreBCD
		case 0x55:
			return OpDumpRegisters
		case 0x65:
			return OpLoadRegisters
		}
	}

	return OpUnknown
}

// String returns the instruction in assembly-like notation.
func (in Instruction) String() string {
	name := in.Op.String()

	switch in.Op {
	case OpNop, OpClear, OpReturn:
		return name
	case OpJump, OpCall:
		return fmt.Sprintf("%s $%03X", name, in.NNN)
	case OpSkipEqualImm, OpSkipNotEqualImm, OpLoadImm, OpAddImm:
		return fmt.Sprintf("%s V%X,#$%02X", name, in.X, in.NN)
	case OpSkipEqualReg, OpSkipNotEqualReg, OpMove, OpOr, OpAnd, OpXor, OpAdd, OpShiftRight, OpShiftLeft:
		return fmt.Sprintf("%s V%X,V%X", name, in.X, in.Y)
	case OpSub:
		return fmt.Sprintf("%s V%X,V%X,V%X", name, in.X, in.X, in.Y)
	case OpSubReverse:
		return fmt.Sprintf("%s V%X,V%X,V%X", name, in.X, in.Y, in.X)
	case OpLoadIndex:
		return fmt.Sprintf("%s I,#$%03X", name, in.NNN)
	case OpJumpOffset:
		return fmt.Sprintf("%s $%03X(V0)", name, in.NNN)
	case OpRandom:
		return fmt.Sprintf("%s V%X,#$%02X", name, in.X, in.NN)
	case OpDraw:
		return fmt.Sprintf("%s V%X,V%X,#$%X", name, in.X, in.Y, in.N)
	case OpSkipKey, OpSkipNotKey, OpWaitKey:
		return fmt.Sprintf("%s V%X", name, in.X)
	case OpReadDelay:
		return fmt.Sprintf("%s V%X,DELAY", name, in.X)
	case OpSetDelay:
		return fmt.Sprintf("%s DELAY,V%X", name, in.X)
	case OpSetSound:
		return fmt.Sprintf("%s SOUND,V%X", name, in.X)
	case OpAddIndex:
		return fmt.Sprintf("%s I,V%X", name, in.X)
	case OpFontChar:
		return fmt.Sprintf("%s I,V%X", name, in.X)
	case OpStoreBCD:
		return fmt.Sprintf("%s (I),V%X", name, in.X)
	case OpDumpRegisters:
		return fmt.Sprintf("%s (I),V0-V%X", name, in.X)
	case OpLoadRegisters:
		return fmt.Sprintf("%s V0-V%X,(I)", name, in.X)
	}

	return fmt.Sprintf("DATA $%04X", in.Word)
}
