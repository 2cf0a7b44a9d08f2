package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/memory"
)

func step(t *testing.T, c *CPU, n int) Output {
	t.Helper()

	var out Output
	for i := 0; i < n; i++ {
		var err error
		out, err = c.Step()
		require.NoError(t, err, "cycle %d", i)
	}
	return out
}

func TestNew(t *testing.T) {
	c, _, _ := newTestCPU(t)

	assert.Equal(t, addr.ProgramStart, c.PC())
	assert.Equal(t, addr.ProgramStart, c.I())
	assert.Equal(t, uint8(0), c.SP())
	assert.Equal(t, [addr.RegisterCount]uint8{}, c.Registers())
	assert.Empty(t, c.Stack())
	assert.Zero(t, c.Screen().LitPixels())
}

func TestStep_loadThenAddImmediateWraps(t *testing.T) {
	c, _, _ := newTestCPU(t, 0x63F0, 0x7320)

	step(t, c, 2)

	assert.Equal(t, uint8(0x10), c.V(3))
	assert.Equal(t, uint8(0), c.V(addr.FlagRegister))
	assert.Equal(t, uint16(0x204), c.PC())
	assert.Equal(t, uint64(2), c.Cycles())
	assert.Equal(t, uint16(0x7320), c.CurrentOpcode())
}

func TestStep_callThenReturn(t *testing.T) {
	c, mem, _ := newTestCPU(t, 0x2300)
	require.NoError(t, mem.Write(0x300, 0x00))
	require.NoError(t, mem.Write(0x301, 0xEE))

	step(t, c, 1)
	assert.Equal(t, uint16(0x300), c.PC())

	step(t, c, 1)
	assert.Equal(t, uint16(0x202), c.PC())
	assert.Empty(t, c.Stack())
}

func TestStep_storeBCDProgram(t *testing.T) {
	c, mem, _ := newTestCPU(t,
		0x600A, // MVI V0,#$0A
		0xA050, // MVI I,#$050
		0xF033, // MOVBCD (I),V0
	)

	step(t, c, 3)

	digits, err := mem.Slice(0x050, 3, "test")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 0}, digits)
}

func TestStep_timers(t *testing.T) {
	t.Run("delay counts down and stops at zero", func(t *testing.T) {
		c, _, _ := newTestCPU(t)
		c.delayTimer = 2

		step(t, c, 1)
		assert.Equal(t, uint8(1), c.DelayTimer())
		step(t, c, 1)
		assert.Equal(t, uint8(0), c.DelayTimer())
		step(t, c, 1)
		assert.Equal(t, uint8(0), c.DelayTimer())
	})

	t.Run("beep follows the sound timer", func(t *testing.T) {
		c, _, _ := newTestCPU(t)
		c.soundTimer = 2

		out := step(t, c, 1)
		assert.True(t, out.Beep)
		assert.Equal(t, uint8(1), c.SoundTimer())

		out = step(t, c, 1)
		assert.False(t, out.Beep)
		assert.Equal(t, uint8(0), c.SoundTimer())
	})

	t.Run("set timer then tick in the same cycle", func(t *testing.T) {
		c, _, _ := newTestCPU(t, 0x6005, 0xF015, 0xF018)

		step(t, c, 3)

		assert.Equal(t, uint8(3), c.DelayTimer())
		assert.Equal(t, uint8(4), c.SoundTimer())
	})
}

func TestStep_changedFlag(t *testing.T) {
	c, _, _ := newTestCPU(t, 0x00E0, 0x6001, 0xD005)
	c.i = 0

	out := step(t, c, 1)
	assert.True(t, out.Changed, "clear screen")
	assert.Same(t, c.Screen(), out.Frame)

	out = step(t, c, 1)
	assert.False(t, out.Changed, "reset at the start of every cycle")

	out = step(t, c, 1)
	assert.True(t, out.Changed, "sprite draw")
	assert.Equal(t, 14, out.Frame.LitPixels())
}

func TestStep_errors(t *testing.T) {
	t.Run("stack underflow", func(t *testing.T) {
		c, _, _ := newTestCPU(t, 0x00EE)
		c.delayTimer = 5

		_, err := c.Step()

		assert.ErrorIs(t, err, ErrStackUnderflow)
		var stepErr *StepError
		require.True(t, errors.As(err, &stepErr))
		assert.Equal(t, uint16(0x200), stepErr.PC)
		assert.Equal(t, uint16(0x00EE), stepErr.Opcode)
		assert.Equal(t, uint8(5), c.DelayTimer(), "timers do not tick on a failed cycle")
		assert.Equal(t, uint64(0), c.Cycles())
	})

	t.Run("stack overflow from runaway recursion", func(t *testing.T) {
		c, _, _ := newTestCPU(t, 0x2200)

		step(t, c, addr.StackDepth)
		_, err := c.Step()

		assert.ErrorIs(t, err, ErrStackOverflow)
		assert.Len(t, c.Stack(), addr.StackDepth)
	})

	t.Run("sprite read past the end of memory", func(t *testing.T) {
		c, _, _ := newTestCPU(t, 0xD015)
		c.i = addr.MemorySize - 2
		c.v[addr.FlagRegister] = 7

		_, err := c.Step()

		var accessErr *memory.AccessError
		require.True(t, errors.As(err, &accessErr))
		assert.Equal(t, "draw", accessErr.Op)
		assert.Equal(t, uint16(0x200), c.PC())
		assert.Equal(t, uint8(7), c.V(addr.FlagRegister))
		assert.Zero(t, c.Screen().LitPixels())
	})

	t.Run("bcd past the end of memory", func(t *testing.T) {
		c, _, _ := newTestCPU(t, 0xF033)
		c.i = addr.MemorySize - 1

		_, err := c.Step()

		var accessErr *memory.AccessError
		require.True(t, errors.As(err, &accessErr))
		assert.Equal(t, "bcd", accessErr.Op)
	})

	t.Run("register dump past the end of memory", func(t *testing.T) {
		c, _, _ := newTestCPU(t, 0xFF55)
		c.i = addr.MemorySize - 8

		_, err := c.Step()

		var accessErr *memory.AccessError
		require.True(t, errors.As(err, &accessErr))
		assert.Equal(t, "register dump", accessErr.Op)
	})

	t.Run("register load past the end of memory", func(t *testing.T) {
		c, _, _ := newTestCPU(t, 0xFF65)
		c.i = addr.MemorySize - 8
		for n := range c.v {
			c.v[n] = uint8(0xA0 + n)
		}
		before := c.Registers()

		_, err := c.Step()

		var accessErr *memory.AccessError
		require.True(t, errors.As(err, &accessErr))
		assert.Equal(t, "register load", accessErr.Op)
		assert.Equal(t, before, c.Registers())
		assert.Equal(t, uint16(0x200), c.PC())
	})

	t.Run("add to index past 0xFFFF", func(t *testing.T) {
		c, _, _ := newTestCPU(t, 0xF01E)
		c.i = 0xFFF0
		c.v[0] = 0xFF
		c.v[addr.FlagRegister] = 3

		_, err := c.Step()

		var accessErr *memory.AccessError
		require.True(t, errors.As(err, &accessErr))
		assert.Equal(t, "index", accessErr.Op)
		assert.Equal(t, 0x100EF, accessErr.Address)
		assert.Equal(t, uint16(0xFFF0), c.I())
		assert.Equal(t, uint8(3), c.V(addr.FlagRegister))
		assert.Equal(t, uint16(0x200), c.PC())
	})

	t.Run("repeated add to index stops instead of wrapping", func(t *testing.T) {
		// MVI V0,#$FF; MVI I,#$FFF; loop: ADI I,V0; JMP loop
		c, _, _ := newTestCPU(t, 0x60FF, 0xAFFF, 0xF01E, 0x1204)

		var err error
		for n := 0; n < 1000 && err == nil; n++ {
			_, err = c.Step()
		}

		var accessErr *memory.AccessError
		require.True(t, errors.As(err, &accessErr))
		assert.Equal(t, "index", accessErr.Op)
		assert.Greater(t, int(c.I())+0xFF, 0xFFFF)
	})

	t.Run("fetch outside memory after jump with offset", func(t *testing.T) {
		c, _, _ := newTestCPU(t, 0x60FF, 0xBFFF)

		step(t, c, 2)
		assert.Equal(t, uint16(0x10FE), c.PC())

		_, err := c.Step()
		var accessErr *memory.AccessError
		require.True(t, errors.As(err, &accessErr))
		assert.Equal(t, "read", accessErr.Op)
	})
}

func TestStep_writesReachFontArea(t *testing.T) {
	// the font lives in ordinary RAM, stores below the program start are not rejected
	c, mem, _ := newTestCPU(t, 0x60AA, 0xA000, 0xF055, 0x6199, 0xA005, 0xF133)

	step(t, c, 6)

	font, err := mem.Slice(addr.FontStart, addr.FontSize, "test")
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAA), font[0], "register dump overwrote glyph 0")
	assert.Equal(t, []byte{1, 5, 3}, font[5:8], "bcd of 0x99 overwrote glyph 1")
	assert.Equal(t, memory.Font[8:], font[8:])
}

func TestReset(t *testing.T) {
	c, _, _ := newTestCPU(t, 0x6A42, 0x2300)
	step(t, c, 2)
	c.screen.XorPixel(1, 1, true)
	c.soundTimer = 9

	c.Reset()

	assert.Equal(t, addr.ProgramStart, c.PC())
	assert.Equal(t, uint8(0), c.V(0xA))
	assert.Empty(t, c.Stack())
	assert.Equal(t, uint8(0), c.SoundTimer())
	assert.Zero(t, c.Screen().LitPixels())
}

func TestRandomSource_seeded(t *testing.T) {
	a, b := NewRandomSource(42), NewRandomSource(42)
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Uint8(), b.Uint8())
	}

	seq := NewSequenceSource(1, 2)
	assert.Equal(t, []uint8{1, 2, 1}, []uint8{seq.Uint8(), seq.Uint8(), seq.Uint8()})
	assert.Equal(t, uint8(0), NewSequenceSource().Uint8())
}
