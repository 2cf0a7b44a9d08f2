package cpu

import "github.com/valerio/go-chip8/chip8/addr"

// Execute applies a decoded instruction to the machine state. Unknown instructions
// only advance PC. On error the state is left unchanged.
func (c *CPU) Execute(in Instruction) error {
	x, y := in.X, in.Y

	switch in.Op {
	case OpClear:
		c.screen.Clear()
		c.changed = true
	case OpReturn:
		return c.ret()
	case OpJump:
		c.pc = in.NNN
		return nil
	case OpCall:
		return c.call(in.NNN)
	case OpSkipEqualImm:
		c.skipIf(c.v[x] == in.NN)
		return nil
	case OpSkipNotEqualImm:
		c.skipIf(c.v[x] != in.NN)
		return nil
	case OpSkipEqualReg:
		c.skipIf(c.v[x] == c.v[y])
		return nil
	case OpLoadImm:
		c.v[x] = in.NN
	case OpAddImm:
		// no carry flag for the immediate form
		c.v[x] += in.NN
	case OpMove:
		c.v[x] = c.v[y]
	case OpOr:
		c.v[x] |= c.v[y]
	case OpAnd:
		c.v[x] &= c.v[y]
	case OpXor:
		c.v[x] ^= c.v[y]
	case OpAdd:
		c.add(x, y)
	case OpSub:
		c.sub(x, y)
	case OpShiftRight:
		c.shiftRight(x)
	case OpSubReverse:
		c.subReverse(x, y)
	case OpShiftLeft:
		c.shiftLeft(x)
	case OpSkipNotEqualReg:
		c.skipIf(c.v[x] != c.v[y])
		return nil
	case OpLoadIndex:
		c.i = in.NNN
	case OpJumpOffset:
		c.pc = in.NNN + uint16(c.v[0])
		return nil
	case OpRandom:
		c.v[x] = in.NN & c.rng.Uint8()
	case OpDraw:
		if err := c.draw(x, y, in.N); err != nil {
			return err
		}
	case OpSkipKey:
		c.skipIf(c.keyPressed(c.v[x]))
		return nil
	case OpSkipNotKey:
		c.skipIf(!c.keyPressed(c.v[x]))
		return nil
	case OpReadDelay:
		c.v[x] = c.delayTimer
	case OpWaitKey:
		c.waitKey(x)
		return nil
	case OpSetDelay:
		c.delayTimer = c.v[x]
	case OpSetSound:
		c.soundTimer = c.v[x]
	case OpAddIndex:
		if err := c.addIndex(x); err != nil {
			return err
		}
	case OpFontChar:
		c.i = addr.FontStart + uint16(c.v[x])*addr.FontGlyphSize
	case OpStoreBCD:
		if err := c.storeBCD(x); err != nil {
			return err
		}
	case OpDumpRegisters:
		if err := c.dumpRegisters(x); err != nil {
			return err
		}
	case OpLoadRegisters:
		if err := c.loadRegisters(x); err != nil {
			return err
		}
	default:
		// OpNop, OpUnknown: data or unused opcode space, skip over it.
	}

	c.next()
	return nil
}
