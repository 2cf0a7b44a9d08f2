package cpu

import (
	"math"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/memory"
)

// next moves PC past the current instruction.
func (c *CPU) next() {
	c.pc += addr.InstructionSize
}

// skipIf moves PC past the following instruction when condition holds.
func (c *CPU) skipIf(condition bool) {
	if condition {
		c.pc += 2 * addr.InstructionSize
		return
	}
	c.next()
}

func (c *CPU) setFlag(condition bool) {
	if condition {
		c.v[addr.FlagRegister] = 1
		return
	}
	c.v[addr.FlagRegister] = 0
}

func (c *CPU) pushStack(value uint16) error {
	if int(c.sp) >= addr.StackDepth {
		return ErrStackOverflow
	}
	c.stack[c.sp] = value
	c.sp++
	return nil
}

func (c *CPU) popStack() (uint16, error) {
	if c.sp == 0 {
		return 0, ErrStackUnderflow
	}
	c.sp--
	return c.stack[c.sp], nil
}

func (c *CPU) call(address uint16) error {
	if err := c.pushStack(c.pc + addr.InstructionSize); err != nil {
		return err
	}
	c.pc = address
	return nil
}

func (c *CPU) ret() error {
	address, err := c.popStack()
	if err != nil {
		return err
	}
	c.pc = address
	return nil
}

// add sets Vx to Vx+Vy, VF is raised on overflow. The flag is written last.
func (c *CPU) add(x, y uint8) {
	result, overflow := bit.CheckedAdd(c.v[x], c.v[y])
	c.v[x] = result
	c.setFlag(overflow)
}

// sub sets Vx to Vx-Vy, VF is raised when Vx > Vy.
func (c *CPU) sub(x, y uint8) {
	result, greater := bit.CheckedSub(c.v[x], c.v[y])
	c.setFlag(greater)
	c.v[x] = result
}

// subReverse sets Vx to Vy-Vx, VF is raised when Vy > Vx.
func (c *CPU) subReverse(x, y uint8) {
	result, greater := bit.CheckedSub(c.v[y], c.v[x])
	c.setFlag(greater)
	c.v[x] = result
}

func (c *CPU) shiftRight(x uint8) {
	value := c.v[x]
	c.v[addr.FlagRegister] = bit.GetBitValue(0, value)
	c.v[x] = value >> 1
}

func (c *CPU) shiftLeft(x uint8) {
	value := c.v[x]
	c.v[addr.FlagRegister] = bit.GetBitValue(7, value)
	c.v[x] = value << 1
}

// draw XORs an 8 pixel wide, n rows tall sprite read from I onto the screen at (Vx, Vy).
// VF is set when any lit pixel gets turned off.
func (c *CPU) draw(x, y, n uint8) error {
	sprite, err := c.mem.Slice(c.i, int(n), "draw")
	if err != nil {
		return err
	}

	originX, originY := uint(c.v[x]), uint(c.v[y])
	collision := false
	for row, line := range sprite {
		for col := uint(0); col < 8; col++ {
			on := bit.IsSet(uint8(7-col), line)
			if c.screen.XorPixel(originX+col, originY+uint(row), on) {
				collision = true
			}
		}
	}

	c.setFlag(collision)
	c.changed = true
	return nil
}

func (c *CPU) keyPressed(key uint8) bool {
	if c.keys == nil || key >= addr.KeyCount {
		return false
	}
	return c.keys.IsPressed(key)
}

// waitKey stores the lowest held key in Vx. Without a held key Vx is untouched.
func (c *CPU) waitKey(x uint8) {
	if c.keys != nil {
		if key, ok := c.keys.FirstPressed(); ok {
			c.v[x] = key
			c.next()
			return
		}
	}

	if c.quirks.StallOnKeyWait {
		return
	}
	c.next()
}

// addIndex adds Vx to I. A sum past 0xFFFF cannot be held by I and is reported
// instead of wrapping back into low memory.
func (c *CPU) addIndex(x uint8) error {
	sum := int(c.i) + int(c.v[x])
	if sum > math.MaxUint16 {
		return &memory.AccessError{Op: "index", Address: sum}
	}
	c.i = uint16(sum)
	c.setFlag(c.i > addr.IndexOverflowMark)
	return nil
}

// storeBCD writes the hundreds, tens and ones digits of Vx at I, I+1 and I+2.
func (c *CPU) storeBCD(x uint8) error {
	digits, err := c.mem.Slice(c.i, 3, "bcd")
	if err != nil {
		return err
	}

	value := c.v[x]
	digits[0] = value / 100
	digits[1] = (value % 100) / 10
	digits[2] = value % 10
	return nil
}

// dumpRegisters writes V0..Vx to memory starting at I. I is not modified.
func (c *CPU) dumpRegisters(x uint8) error {
	dst, err := c.mem.Slice(c.i, int(x)+1, "register dump")
	if err != nil {
		return err
	}
	copy(dst, c.v[:int(x)+1])
	return nil
}

// loadRegisters fills V0..Vx from memory starting at I. I is not modified.
func (c *CPU) loadRegisters(x uint8) error {
	src, err := c.mem.Slice(c.i, int(x)+1, "register load")
	if err != nil {
		return err
	}
	copy(c.v[:int(x)+1], src)
	return nil
}
