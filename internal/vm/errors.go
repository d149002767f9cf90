package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrMemoryOverflow means a ROM does not fit into the program area.
	ErrMemoryOverflow = errors.New("memory overflow")

	// ErrStackOverflow means a call was made with all 16 stack slots in use.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow means a return was executed with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
)

// InvalidOpcodeError is returned when an opcode matches none of the
// recognized instruction encodings.
type InvalidOpcodeError struct {
	Opcode uint16
}

func (e InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode 0x%04X", e.Opcode)
}

// InvalidAddressError is returned when a fetch, read or write falls outside
// the legal memory window for the operation.
type InvalidAddressError struct {
	Addr uint16
}

func (e InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid memory address 0x%04X", e.Addr)
}

// InvalidVRegisterError is returned on a V register index above 0xF.
// Opcode encoding constrains register operands to 4 bits, so this guard
// should be unreachable; it is kept explicit rather than assumed.
type InvalidVRegisterError struct {
	Index uint8
}

func (e InvalidVRegisterError) Error() string {
	return fmt.Sprintf("invalid v-register v%X", e.Index)
}

// InvalidKeyError is returned on a keypad index above 0xF.
type InvalidKeyError struct {
	Index uint8
}

func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key index 0x%02X", e.Index)
}

// InvalidDigitError is returned on a digit sprite lookup for a value
// that has no glyph.
type InvalidDigitError struct {
	Value uint8
}

func (e InvalidDigitError) Error() string {
	return fmt.Sprintf("no digit sprite for value 0x%02X", e.Value)
}
