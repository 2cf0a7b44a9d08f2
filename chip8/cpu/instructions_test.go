package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/memory"
)

type fakeKeys struct {
	pressed [addr.KeyCount]bool
}

func (k *fakeKeys) IsPressed(key uint8) bool {
	return int(key) < len(k.pressed) && k.pressed[key]
}

func (k *fakeKeys) FirstPressed() (uint8, bool) {
	for i, p := range k.pressed {
		if p {
			return uint8(i), true
		}
	}
	return 0, false
}

func newTestCPU(t *testing.T, program ...uint16) (*CPU, *memory.RAM, *fakeKeys) {
	t.Helper()

	mem := memory.New()
	if len(program) > 0 {
		rom := make([]byte, 0, len(program)*2)
		for _, word := range program {
			rom = append(rom, bit.High(word), bit.Low(word))
		}
		_, err := mem.Load(rom)
		require.NoError(t, err)
	}

	keys := &fakeKeys{}
	return New(mem, keys, NewSequenceSource(0xFF)), mem, keys
}

func TestExecute(t *testing.T) {
	const start = addr.ProgramStart

	testCases := []struct {
		desc   string
		word   uint16
		setup  func(c *CPU)
		wantPC uint16
		check  func(t *testing.T, c *CPU)
	}{
		{
			desc:   "jump is absolute",
			word:   0x1345,
			wantPC: 0x345,
		},
		{
			desc:   "skip equal immediate taken",
			word:   0x3A42,
			setup:  func(c *CPU) { c.v[0xA] = 0x42 },
			wantPC: start + 4,
		},
		{
			desc:   "skip equal immediate not taken",
			word:   0x3A42,
			setup:  func(c *CPU) { c.v[0xA] = 0x41 },
			wantPC: start + 2,
		},
		{
			desc:   "skip not equal immediate taken",
			word:   0x4A42,
			setup:  func(c *CPU) { c.v[0xA] = 0x41 },
			wantPC: start + 4,
		},
		{
			desc:   "skip not equal immediate not taken",
			word:   0x4A42,
			setup:  func(c *CPU) { c.v[0xA] = 0x42 },
			wantPC: start + 2,
		},
		{
			desc:   "skip registers equal taken",
			word:   0x5120,
			setup:  func(c *CPU) { c.v[1], c.v[2] = 7, 7 },
			wantPC: start + 4,
		},
		{
			desc:   "skip registers equal not taken",
			word:   0x5120,
			setup:  func(c *CPU) { c.v[1], c.v[2] = 7, 8 },
			wantPC: start + 2,
		},
		{
			desc:   "skip registers not equal taken",
			word:   0x9120,
			setup:  func(c *CPU) { c.v[1], c.v[2] = 7, 8 },
			wantPC: start + 4,
		},
		{
			desc:   "skip registers not equal not taken",
			word:   0x9120,
			setup:  func(c *CPU) { c.v[1], c.v[2] = 7, 7 },
			wantPC: start + 2,
		},
		{
			desc:   "load immediate",
			word:   0x6C99,
			wantPC: start + 2,
			check:  func(t *testing.T, c *CPU) { assert.Equal(t, uint8(0x99), c.v[0xC]) },
		},
		{
			desc:   "add immediate wraps without touching the flag",
			word:   0x7320,
			setup:  func(c *CPU) { c.v[3], c.v[addr.FlagRegister] = 0xF0, 0x55 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint8(0x10), c.v[3])
				assert.Equal(t, uint8(0x55), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "move",
			word:   0x8120,
			setup:  func(c *CPU) { c.v[2] = 0x3C },
			wantPC: start + 2,
			check:  func(t *testing.T, c *CPU) { assert.Equal(t, uint8(0x3C), c.v[1]) },
		},
		{
			desc:   "or",
			word:   0x8121,
			setup:  func(c *CPU) { c.v[1], c.v[2] = 0b1100, 0b0101 },
			wantPC: start + 2,
			check:  func(t *testing.T, c *CPU) { assert.Equal(t, uint8(0b1101), c.v[1]) },
		},
		{
			desc:   "and",
			word:   0x8122,
			setup:  func(c *CPU) { c.v[1], c.v[2] = 0b1100, 0b0101 },
			wantPC: start + 2,
			check:  func(t *testing.T, c *CPU) { assert.Equal(t, uint8(0b0100), c.v[1]) },
		},
		{
			desc:   "xor",
			word:   0x8123,
			setup:  func(c *CPU) { c.v[1], c.v[2] = 0b1100, 0b0101 },
			wantPC: start + 2,
			check:  func(t *testing.T, c *CPU) { assert.Equal(t, uint8(0b1001), c.v[1]) },
		},
		{
			desc:   "add sets carry on overflow",
			word:   0x8124,
			setup:  func(c *CPU) { c.v[1], c.v[2] = 0xFF, 0x01 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint8(0x00), c.v[1])
				assert.Equal(t, uint8(1), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "add clears carry",
			word:   0x8124,
			setup:  func(c *CPU) { c.v[1], c.v[2], c.v[addr.FlagRegister] = 0x01, 0x01, 1 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint8(0x02), c.v[1])
				assert.Equal(t, uint8(0), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "sub wraps and clears flag",
			word:   0x8125,
			setup:  func(c *CPU) { c.v[1], c.v[2] = 3, 5 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint8(0xFE), c.v[1])
				assert.Equal(t, uint8(0), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "sub sets flag when no borrow",
			word:   0x8125,
			setup:  func(c *CPU) { c.v[1], c.v[2] = 5, 3 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint8(2), c.v[1])
				assert.Equal(t, uint8(1), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "sub of equal values clears flag",
			word:   0x8125,
			setup:  func(c *CPU) { c.v[1], c.v[2], c.v[addr.FlagRegister] = 4, 4, 1 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint8(0), c.v[1])
				assert.Equal(t, uint8(0), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "sub reverse mirrors sub",
			word:   0x8127,
			setup:  func(c *CPU) { c.v[1], c.v[2] = 3, 5 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint8(2), c.v[1])
				assert.Equal(t, uint8(1), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "sub reverse wraps",
			word:   0x8127,
			setup:  func(c *CPU) { c.v[1], c.v[2] = 5, 3 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint8(0xFE), c.v[1])
				assert.Equal(t, uint8(0), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "shift right keeps the low bit",
			word:   0x8106,
			setup:  func(c *CPU) { c.v[1] = 0b10000001 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint8(0b01000000), c.v[1])
				assert.Equal(t, uint8(1), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "shift left keeps the high bit",
			word:   0x810E,
			setup:  func(c *CPU) { c.v[1] = 0b10000001 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint8(0b00000010), c.v[1])
				assert.Equal(t, uint8(1), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "shift left without high bit clears flag",
			word:   0x810E,
			setup:  func(c *CPU) { c.v[1], c.v[addr.FlagRegister] = 0b01000000, 1 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint8(0b10000000), c.v[1])
				assert.Equal(t, uint8(0), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "load index",
			word:   0xA123,
			wantPC: start + 2,
			check:  func(t *testing.T, c *CPU) { assert.Equal(t, uint16(0x123), c.i) },
		},
		{
			desc:   "jump with offset replaces PC",
			word:   0xB300,
			setup:  func(c *CPU) { c.v[0] = 0x10 },
			wantPC: 0x310,
		},
		{
			desc:   "random is masked",
			word:   0xC30F,
			setup:  func(c *CPU) { c.rng = NewSequenceSource(0xAB) },
			wantPC: start + 2,
			check:  func(t *testing.T, c *CPU) { assert.Equal(t, uint8(0x0B), c.v[3]) },
		},
		{
			desc:   "read delay timer",
			word:   0xF407,
			setup:  func(c *CPU) { c.delayTimer = 0x3C },
			wantPC: start + 2,
			check:  func(t *testing.T, c *CPU) { assert.Equal(t, uint8(0x3C), c.v[4]) },
		},
		{
			desc:   "set delay timer",
			word:   0xF415,
			setup:  func(c *CPU) { c.v[4] = 0x20 },
			wantPC: start + 2,
			check:  func(t *testing.T, c *CPU) { assert.Equal(t, uint8(0x20), c.delayTimer) },
		},
		{
			desc:   "set sound timer",
			word:   0xF418,
			setup:  func(c *CPU) { c.v[4] = 0x21 },
			wantPC: start + 2,
			check:  func(t *testing.T, c *CPU) { assert.Equal(t, uint8(0x21), c.soundTimer) },
		},
		{
			desc:   "add to index at the mark does not flag",
			word:   0xF11E,
			setup:  func(c *CPU) { c.i, c.v[1], c.v[addr.FlagRegister] = 0x0EFF, 1, 1 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint16(0x0F00), c.i)
				assert.Equal(t, uint8(0), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "add to index past the mark flags",
			word:   0xF11E,
			setup:  func(c *CPU) { c.i, c.v[1] = 0x0EFF, 2 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, uint16(0x0F01), c.i)
				assert.Equal(t, uint8(1), c.v[addr.FlagRegister])
			},
		},
		{
			desc:   "font character address",
			word:   0xF229,
			setup:  func(c *CPU) { c.v[2] = 0xA },
			wantPC: start + 2,
			check:  func(t *testing.T, c *CPU) { assert.Equal(t, uint16(50), c.i) },
		},
		{
			desc:   "unknown opcode only advances PC",
			word:   0x5121,
			setup:  func(c *CPU) { c.v[1] = 9 },
			wantPC: start + 2,
			check: func(t *testing.T, c *CPU) {
				assert.Equal(t, [addr.RegisterCount]uint8{0, 9}, c.v)
				assert.Equal(t, uint16(addr.ProgramStart), c.i)
			},
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _, _ := newTestCPU(t)
			if tC.setup != nil {
				tC.setup(c)
			}

			require.NoError(t, c.Execute(Decode(tC.word)))

			assert.Equal(t, tC.wantPC, c.pc, "PC")
			if tC.check != nil {
				tC.check(t, c)
			}
		})
	}
}

func TestCPU_clearScreen(t *testing.T) {
	c, _, _ := newTestCPU(t)
	c.screen.XorPixel(5, 5, true)

	require.NoError(t, c.Execute(Decode(0x00E0)))

	assert.Zero(t, c.screen.LitPixels())
	assert.True(t, c.changed)
	assert.Equal(t, addr.ProgramStart+2, c.pc)
}

func TestCPU_callReturn(t *testing.T) {
	c, _, _ := newTestCPU(t)

	require.NoError(t, c.Execute(Decode(0x2300)))
	assert.Equal(t, uint16(0x300), c.pc)
	assert.Equal(t, uint8(1), c.sp)
	assert.Equal(t, []uint16{0x202}, c.Stack())

	require.NoError(t, c.Execute(Decode(0x00EE)))
	assert.Equal(t, uint16(0x202), c.pc)
	assert.Equal(t, uint8(0), c.sp)
}

func TestCPU_stackLimits(t *testing.T) {
	t.Run("overflow", func(t *testing.T) {
		c, _, _ := newTestCPU(t)
		for i := 0; i < addr.StackDepth; i++ {
			require.NoError(t, c.Execute(Decode(0x2400)))
		}

		err := c.Execute(Decode(0x2400))
		assert.ErrorIs(t, err, ErrStackOverflow)
		assert.Equal(t, uint8(addr.StackDepth), c.sp)
		assert.Equal(t, uint16(0x400), c.pc)
	})

	t.Run("underflow", func(t *testing.T) {
		c, _, _ := newTestCPU(t)

		err := c.Execute(Decode(0x00EE))
		assert.ErrorIs(t, err, ErrStackUnderflow)
		assert.Equal(t, uint8(0), c.sp)
		assert.Equal(t, addr.ProgramStart, c.pc)
	})
}

func TestCPU_draw(t *testing.T) {
	c, _, _ := newTestCPU(t)
	// glyph "0" from the font, at (10, 4)
	c.i = 0
	c.v[0], c.v[1] = 10, 4
	c.v[addr.FlagRegister] = 1

	require.NoError(t, c.Execute(Decode(0xD015)))

	assert.Equal(t, uint8(0), c.v[addr.FlagRegister])
	assert.True(t, c.changed)
	// 0xF0 top row: 4 lit pixels followed by 4 dark ones
	for col := uint(0); col < 8; col++ {
		assert.Equal(t, col < 4, c.screen.IsSet(10+col, 4), "column %d", col)
	}
	// 0x90 second row: outer pixels only
	assert.True(t, c.screen.IsSet(10, 5))
	assert.False(t, c.screen.IsSet(11, 5))
	assert.True(t, c.screen.IsSet(13, 5))
	assert.Equal(t, 14, c.screen.LitPixels())
}

func TestCPU_drawTwiceRestoresScreen(t *testing.T) {
	c, _, _ := newTestCPU(t)
	c.i = 5 * 0xB
	c.v[0], c.v[1] = 20, 10
	c.screen.XorPixel(0, 0, true)
	before := c.screen.Clone()

	require.NoError(t, c.Execute(Decode(0xD015)))
	assert.Equal(t, uint8(0), c.v[addr.FlagRegister])
	assert.False(t, c.screen.Equal(before))

	c.changed = false
	require.NoError(t, c.Execute(Decode(0xD015)))
	assert.Equal(t, uint8(1), c.v[addr.FlagRegister])
	assert.True(t, c.changed)
	assert.True(t, c.screen.Equal(before))
}

func TestCPU_drawWrapsAroundEdges(t *testing.T) {
	c, mem, _ := newTestCPU(t)
	require.NoError(t, mem.Write(0x300, 0xFF))
	c.i = 0x300
	c.v[0], c.v[1] = 60, 31

	require.NoError(t, c.Execute(Decode(0xD011)))

	for x := uint(60); x < 64; x++ {
		assert.True(t, c.screen.IsSet(x, 31))
	}
	for x := uint(0); x < 4; x++ {
		assert.True(t, c.screen.IsSet(x, 31))
	}
	assert.Equal(t, 8, c.screen.LitPixels())
}

func TestCPU_keys(t *testing.T) {
	testCases := []struct {
		desc    string
		word    uint16
		key     uint8
		pressed bool
		wantPC  uint16
	}{
		{desc: "skip if pressed, held", word: 0xE19E, key: 5, pressed: true, wantPC: 0x204},
		{desc: "skip if pressed, not held", word: 0xE19E, key: 5, pressed: false, wantPC: 0x202},
		{desc: "skip if not pressed, held", word: 0xE1A1, key: 5, pressed: true, wantPC: 0x202},
		{desc: "skip if not pressed, not held", word: 0xE1A1, key: 5, pressed: false, wantPC: 0x204},
		{desc: "out of range key is never pressed", word: 0xE19E, key: 0x20, pressed: true, wantPC: 0x202},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _, keys := newTestCPU(t)
			keys.pressed[tC.key&0xF] = tC.pressed
			c.v[1] = tC.key

			require.NoError(t, c.Execute(Decode(tC.word)))
			assert.Equal(t, tC.wantPC, c.pc)
		})
	}
}

func TestCPU_waitKey(t *testing.T) {
	t.Run("stores lowest held key", func(t *testing.T) {
		c, _, keys := newTestCPU(t)
		keys.pressed[7] = true
		keys.pressed[3] = true

		require.NoError(t, c.Execute(Decode(0xF40A)))
		assert.Equal(t, uint8(3), c.v[4])
		assert.Equal(t, uint16(0x202), c.pc)
	})

	t.Run("advances without a key", func(t *testing.T) {
		c, _, _ := newTestCPU(t)
		c.v[4] = 0x42

		require.NoError(t, c.Execute(Decode(0xF40A)))
		assert.Equal(t, uint8(0x42), c.v[4])
		assert.Equal(t, uint16(0x202), c.pc)
	})

	t.Run("stalls without a key when configured", func(t *testing.T) {
		c, _, keys := newTestCPU(t)
		c.SetQuirks(Quirks{StallOnKeyWait: true})

		require.NoError(t, c.Execute(Decode(0xF40A)))
		assert.Equal(t, uint16(0x200), c.pc)

		keys.pressed[0xC] = true
		require.NoError(t, c.Execute(Decode(0xF40A)))
		assert.Equal(t, uint8(0xC), c.v[4])
		assert.Equal(t, uint16(0x202), c.pc)
	})
}

func TestCPU_memoryTransfers(t *testing.T) {
	t.Run("bcd", func(t *testing.T) {
		c, mem, _ := newTestCPU(t)
		c.i = 0x300
		c.v[2] = 254

		require.NoError(t, c.Execute(Decode(0xF233)))

		view, err := mem.Slice(0x300, 3, "test")
		require.NoError(t, err)
		assert.Equal(t, []byte{2, 5, 4}, view)
		assert.Equal(t, uint16(0x300), c.i)
	})

	t.Run("register dump", func(t *testing.T) {
		c, mem, _ := newTestCPU(t)
		c.i = 0x300
		c.v[0], c.v[1], c.v[2], c.v[3] = 1, 2, 3, 4

		require.NoError(t, c.Execute(Decode(0xF255)))

		view, err := mem.Slice(0x300, 4, "test")
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3, 0}, view)
		assert.Equal(t, uint16(0x300), c.i)
	})

	t.Run("register load", func(t *testing.T) {
		c, mem, _ := newTestCPU(t)
		for i, b := range []byte{9, 8, 7, 6} {
			require.NoError(t, mem.Write(0x300+uint16(i), b))
		}
		c.i = 0x300

		require.NoError(t, c.Execute(Decode(0xF265)))

		assert.Equal(t, [addr.RegisterCount]uint8{9, 8, 7}, c.v)
		assert.Equal(t, uint16(0x300), c.i)
	})
}
