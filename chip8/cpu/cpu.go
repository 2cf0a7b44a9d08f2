package cpu

import (
	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

// KeySource provides the state of the 16 key hex keypad.
type KeySource interface {
	// IsPressed reports whether the key is currently held. Keys outside 0x0-0xF are never pressed.
	IsPressed(key uint8) bool
	// FirstPressed returns the lowest held key, if any.
	FirstPressed() (key uint8, ok bool)
}

// Quirks selects between behaviours that differ across interpreters.
type Quirks struct {
	// StallOnKeyWait keeps PC on the wait-for-key instruction until a key is held,
	// instead of always moving on to the next instruction.
	StallOnKeyWait bool
}

// Output is the result of a single cycle, handed to the presenter.
type Output struct {
	// Frame is the live frame buffer, presenters must not modify it.
	Frame *video.FrameBuffer
	// Changed is true when the cycle cleared the screen or drew a sprite.
	Changed bool
	// Beep is true while the sound timer is running.
	Beep bool
}

// CPU holds the complete machine state and executes instructions against it.
type CPU struct {
	v          [addr.RegisterCount]uint8
	i          uint16
	pc         uint16
	sp         uint8
	stack      [addr.StackDepth]uint16
	delayTimer uint8
	soundTimer uint8

	screen  *video.FrameBuffer
	changed bool

	// metadata
	currentOpcode uint16
	cycles        uint64

	mem    *memory.RAM
	keys   KeySource
	rng    RandomSource
	quirks Quirks
}

// New returns a CPU wired to the given memory and collaborators, with PC and I at the program start.
// A nil RandomSource falls back to a time seeded one.
func New(mem *memory.RAM, keys KeySource, rng RandomSource) *CPU {
	if rng == nil {
		rng = NewTimeSeededRandomSource()
	}

	c := &CPU{
		mem:    mem,
		keys:   keys,
		rng:    rng,
		screen: video.NewFrameBuffer(),
	}
	c.Reset()
	return c
}

// SetQuirks changes the behaviour of quirk-dependent instructions.
func (c *CPU) SetQuirks(q Quirks) {
	c.quirks = q
}

// Reset zeroes all registers, timers, the stack and the screen. Memory is left alone.
func (c *CPU) Reset() {
	c.v = [addr.RegisterCount]uint8{}
	c.stack = [addr.StackDepth]uint16{}
	c.sp = 0
	c.i = addr.ProgramStart
	c.pc = addr.ProgramStart
	c.delayTimer = 0
	c.soundTimer = 0
	c.changed = false
	c.currentOpcode = 0
	c.cycles = 0
	c.screen.Clear()
}

// Fetch reads the instruction word at PC without advancing it.
func (c *CPU) Fetch() (uint16, error) {
	return c.mem.ReadWord(c.pc)
}

// Step runs a single cycle: fetch, decode and execute one instruction, then tick both timers.
// On error the machine state is left as it was before the cycle.
func (c *CPU) Step() (Output, error) {
	c.changed = false

	word, err := c.Fetch()
	if err != nil {
		return c.output(), &StepError{PC: c.pc, Opcode: 0, Err: err}
	}

	instr := Decode(word)
	pc := c.pc
	if err := c.Execute(instr); err != nil {
		return c.output(), &StepError{PC: pc, Opcode: word, Err: err}
	}

	c.currentOpcode = word
	c.cycles++
	c.tickTimers()

	return c.output(), nil
}

// tickTimers counts both timers down by one, stopping at zero.
func (c *CPU) tickTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}

func (c *CPU) output() Output {
	return Output{
		Frame:   c.screen,
		Changed: c.changed,
		Beep:    c.soundTimer > 0,
	}
}

// Debug getter methods for state display
func (c *CPU) PC() uint16            { return c.pc }
func (c *CPU) I() uint16             { return c.i }
func (c *CPU) SP() uint8             { return c.sp }
func (c *CPU) V(n uint8) uint8       { return c.v[n&0xF] }
func (c *CPU) DelayTimer() uint8     { return c.delayTimer }
func (c *CPU) SoundTimer() uint8     { return c.soundTimer }
func (c *CPU) Cycles() uint64        { return c.cycles }
func (c *CPU) CurrentOpcode() uint16 { return c.currentOpcode }
func (c *CPU) Screen() *video.FrameBuffer {
	return c.screen
}

// Registers returns a copy of V0-VF.
func (c *CPU) Registers() [addr.RegisterCount]uint8 {
	return c.v
}

// Stack returns the active return addresses, oldest first.
func (c *CPU) Stack() []uint16 {
	out := make([]uint16, c.sp)
	copy(out, c.stack[:c.sp])
	return out
}
