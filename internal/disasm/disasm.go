// Package disasm renders a CHIP-8 ROM as an assembly-style listing.
// Opcodes are read big-endian two bytes at a time starting at the program
// load address; words that match no instruction encoding are emitted as
// data directives rather than failing the run, since ROMs routinely embed
// sprite data between code.
package disasm

import (
	"errors"
	"fmt"
	"io"

	"chip8/internal/vm"
)

// Print writes the listing for rom to w, one line per word:
//
//	0x0200  00e0  cls
//	0x0202  a22a  mvi 0x22a
//	0x0204  f899  .dw 0xf899
func Print(w io.Writer, rom []byte) error {
	for i := 0; i+1 < len(rom); i += 2 {
		addr := int(vm.ProgramStart) + i
		word := uint16(rom[i])<<8 | uint16(rom[i+1])

		ins, err := vm.Decode(word)
		if err != nil {
			var opcodeErr vm.InvalidOpcodeError
			if !errors.As(err, &opcodeErr) {
				return err
			}
			if _, err := fmt.Fprintf(w, "0x%04x  %04x  .dw 0x%04x\n", addr, word, word); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, "0x%04x  %04x  %s\n", addr, word, ins); err != nil {
			return err
		}
	}

	if len(rom)%2 != 0 {
		addr := int(vm.ProgramStart) + len(rom) - 1
		b := rom[len(rom)-1]
		if _, err := fmt.Fprintf(w, "0x%04x  %02x    .db 0x%02x\n", addr, b, b); err != nil {
			return err
		}
	}

	return nil
}
