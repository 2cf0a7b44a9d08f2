package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrStackOverflow is returned by a call when all stack slots are in use.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned by a return without a matching call.
	ErrStackUnderflow = errors.New("stack underflow")
)

// StepError wraps a fault raised while executing the instruction at PC.
type StepError struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("cpu fault at 0x%03X (opcode 0x%04X %s): %v", e.PC, e.Opcode, Decode(e.Opcode), e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
