package memory

import (
	"errors"
	"fmt"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/bit"
)

// ErrEmptyROM is returned when loading a ROM without any data.
var ErrEmptyROM = errors.New("rom is empty")

// Font holds the built-in hexadecimal glyphs (0-F), 5 rows each.
var Font = [addr.FontSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// AccessError reports a read or write outside of the addressable memory.
type AccessError struct {
	Op      string
	Address int
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("memory %s out of range: 0x%04X (size 0x%04X)", e.Op, e.Address, addr.MemorySize)
}

// RAM is the 4KB memory of the machine. The font occupies the first 80 bytes,
// programs are loaded at addr.ProgramStart.
type RAM struct {
	data [addr.MemorySize]byte
}

// New returns memory with the font loaded and everything else zeroed.
func New() *RAM {
	m := &RAM{}
	m.Reset()
	return m
}

// Reset restores memory to its freshly constructed state.
func (m *RAM) Reset() {
	m.data = [addr.MemorySize]byte{}
	copy(m.data[addr.FontStart:], Font[:])
}

// Load copies the ROM verbatim at addr.ProgramStart. Data that does not fit is dropped.
// Returns the number of bytes actually written.
func (m *RAM) Load(rom []byte) (int, error) {
	if len(rom) == 0 {
		return 0, ErrEmptyROM
	}

	n := copy(m.data[addr.ProgramStart:], rom)
	return n, nil
}

// Read returns the byte at the given address.
func (m *RAM) Read(address uint16) (byte, error) {
	if int(address) >= addr.MemorySize {
		return 0, &AccessError{Op: "read", Address: int(address)}
	}
	return m.data[address], nil
}

// ReadWord returns the big-endian 16 bit word at address and address+1.
func (m *RAM) ReadWord(address uint16) (uint16, error) {
	if int(address)+1 >= addr.MemorySize {
		return 0, &AccessError{Op: "read", Address: int(address) + 1}
	}
	return bit.Combine(m.data[address], m.data[address+1]), nil
}

// Write sets the byte at the given address.
func (m *RAM) Write(address uint16, value byte) error {
	if int(address) >= addr.MemorySize {
		return &AccessError{Op: "write", Address: int(address)}
	}
	m.data[address] = value
	return nil
}

// Slice returns a view over [start, start+length). The returned slice aliases memory,
// writes through it are visible to the machine.
func (m *RAM) Slice(start uint16, length int, op string) ([]byte, error) {
	end := int(start) + length
	if length < 0 || end > addr.MemorySize {
		return nil, &AccessError{Op: op, Address: end - 1}
	}
	return m.data[start:end], nil
}

// Bytes returns a copy of the whole memory, for debugging and tests.
func (m *RAM) Bytes() []byte {
	out := make([]byte, addr.MemorySize)
	copy(out, m.data[:])
	return out
}
