package addr

// memory map
const (
	// MemorySize is the total addressable memory, in bytes.
	MemorySize = 0x1000
	// FontStart is where the built-in hex font is placed.
	FontStart uint16 = 0x000
	// FontGlyphSize is the number of bytes (rows) of a single font glyph.
	FontGlyphSize = 5
	// FontSize is the total size of the built-in font (16 glyphs).
	FontSize = 16 * FontGlyphSize
	// ProgramStart is the load address of ROMs, and the initial PC and I.
	ProgramStart uint16 = 0x200
)

// registers and stack
const (
	// RegisterCount is the number of general purpose V registers.
	RegisterCount = 16
	// FlagRegister is VF, overwritten by carry/borrow/shift/collision results.
	FlagRegister = 0xF
	// StackDepth is the maximum number of nested calls.
	StackDepth = 16
	// IndexOverflowMark is the I value above which add-to-index raises VF.
	IndexOverflowMark uint16 = 0x0F00
)

const (
	// InstructionSize is the width of every instruction, in bytes.
	InstructionSize = 2
	// KeyCount is the number of keys on the hex keypad.
	KeyCount = 16
)
