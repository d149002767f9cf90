package vm

import "fmt"

// Op identifies one of the recognized instruction families.
type Op uint8

const (
	// OpSys is the legacy 0NNN "call native routine" encoding.
	// It is decoded but intentionally does nothing.
	OpSys Op = iota
	OpClearScreen
	OpReturn
	OpJump
	OpCall
	OpSkipEqualImm
	OpSkipNotEqualImm
	OpSkipEqual
	OpLoadImm
	OpAddImm
	OpMove
	OpOr
	OpAnd
	OpXor
	OpAdd
	OpSub
	OpShiftRight
	OpSubN
	OpShiftLeft
	OpSkipNotEqual
	OpLoadIndex
	OpJumpOffset
	OpRand
	OpDraw
	OpSkipKeyPressed
	OpSkipKeyReleased
	OpLoadDelay
	OpWaitKey
	OpSetDelay
	OpSetSound
	OpAddIndex
	OpLoadDigit
	OpStoreBCD
	OpStoreRegs
	OpLoadRegs
)

// Instruction is a decoded opcode: the operation plus every operand field
// the encoding carries. Handlers read only the fields their family defines.
type Instruction struct {
	Op     Op
	Opcode uint16

	X   uint8  // second nibble, register index
	Y   uint8  // third nibble, register index
	N   uint8  // fourth nibble, sprite height
	KK  uint8  // low byte, immediate
	NNN uint16 // low 12 bits, address
}

// Decode splits opcode into nibbles and maps it to an instruction.
// It is total over the recognized encodings and touches no machine state;
// anything unrecognized fails with InvalidOpcodeError.
func Decode(opcode uint16) (Instruction, error) {
	ins := Instruction{
		Opcode: opcode,
		X:      uint8(opcode >> 8 & 0x0F),
		Y:      uint8(opcode >> 4 & 0x0F),
		N:      uint8(opcode & 0x0F),
		KK:     uint8(opcode),
		NNN:    opcode & 0x0FFF,
	}

	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode & 0x00FF {
		case 0x00E0:
			ins.Op = OpClearScreen
		case 0x00EE:
			ins.Op = OpReturn
		default:
			ins.Op = OpSys
		}

	case 0x1000:
		ins.Op = OpJump

	case 0x2000:
		ins.Op = OpCall

	case 0x3000:
		ins.Op = OpSkipEqualImm

	case 0x4000:
		ins.Op = OpSkipNotEqualImm

	case 0x5000:
		if ins.N != 0 {
			return Instruction{}, InvalidOpcodeError{Opcode: opcode}
		}
		ins.Op = OpSkipEqual

	case 0x6000:
		ins.Op = OpLoadImm

	case 0x7000:
		ins.Op = OpAddImm

	case 0x8000:
		switch ins.N {
		case 0x0:
			ins.Op = OpMove
		case 0x1:
			ins.Op = OpOr
		case 0x2:
			ins.Op = OpAnd
		case 0x3:
			ins.Op = OpXor
		case 0x4:
			ins.Op = OpAdd
		case 0x5:
			ins.Op = OpSub
		case 0x6:
			ins.Op = OpShiftRight
		case 0x7:
			ins.Op = OpSubN
		case 0xE:
			ins.Op = OpShiftLeft
		default:
			return Instruction{}, InvalidOpcodeError{Opcode: opcode}
		}

	case 0x9000:
		if ins.N != 0 {
			return Instruction{}, InvalidOpcodeError{Opcode: opcode}
		}
		ins.Op = OpSkipNotEqual

	case 0xA000:
		ins.Op = OpLoadIndex

	case 0xB000:
		ins.Op = OpJumpOffset

	case 0xC000:
		ins.Op = OpRand

	case 0xD000:
		ins.Op = OpDraw

	case 0xE000:
		switch opcode & 0x00FF {
		case 0x009E:
			ins.Op = OpSkipKeyPressed
		case 0x00A1:
			ins.Op = OpSkipKeyReleased
		default:
			return Instruction{}, InvalidOpcodeError{Opcode: opcode}
		}

	case 0xF000:
		switch opcode & 0x00FF {
		case 0x0007:
			ins.Op = OpLoadDelay
		case 0x000A:
			ins.Op = OpWaitKey
		case 0x0015:
			ins.Op = OpSetDelay
		case 0x0018:
			ins.Op = OpSetSound
		case 0x001E:
			ins.Op = OpAddIndex
		case 0x0029:
			ins.Op = OpLoadDigit
		case 0x0033:
			ins.Op = OpStoreBCD
		case 0x0055:
			ins.Op = OpStoreRegs
		case 0x0065:
			ins.Op = OpLoadRegs
		default:
			return Instruction{}, InvalidOpcodeError{Opcode: opcode}
		}
	}

	return ins, nil
}

// String renders the instruction mnemonic, used for debug traces and for
// disassembly listings.
func (ins Instruction) String() string {
	switch ins.Op {
	case OpSys:
		return fmt.Sprintf("sys 0x%03x", ins.NNN)
	case OpClearScreen:
		return "cls"
	case OpReturn:
		return "rts"
	case OpJump:
		return fmt.Sprintf("jmp 0x%03x", ins.NNN)
	case OpCall:
		return fmt.Sprintf("jsr 0x%03x", ins.NNN)
	case OpSkipEqualImm:
		return fmt.Sprintf("skeq v%x, %d", ins.X, ins.KK)
	case OpSkipNotEqualImm:
		return fmt.Sprintf("skne v%x, %d", ins.X, ins.KK)
	case OpSkipEqual:
		return fmt.Sprintf("skeq v%x, v%x", ins.X, ins.Y)
	case OpLoadImm:
		return fmt.Sprintf("mov v%x, %d", ins.X, ins.KK)
	case OpAddImm:
		return fmt.Sprintf("add v%x, %d", ins.X, ins.KK)
	case OpMove:
		return fmt.Sprintf("mov v%x, v%x", ins.X, ins.Y)
	case OpOr:
		return fmt.Sprintf("or v%x, v%x", ins.X, ins.Y)
	case OpAnd:
		return fmt.Sprintf("and v%x, v%x", ins.X, ins.Y)
	case OpXor:
		return fmt.Sprintf("xor v%x, v%x", ins.X, ins.Y)
	case OpAdd:
		return fmt.Sprintf("add v%x, v%x", ins.X, ins.Y)
	case OpSub:
		return fmt.Sprintf("sub v%x, v%x", ins.X, ins.Y)
	case OpShiftRight:
		return fmt.Sprintf("shr v%x", ins.X)
	case OpSubN:
		return fmt.Sprintf("rsb v%x, v%x", ins.X, ins.Y)
	case OpShiftLeft:
		return fmt.Sprintf("shl v%x", ins.X)
	case OpSkipNotEqual:
		return fmt.Sprintf("skne v%x, v%x", ins.X, ins.Y)
	case OpLoadIndex:
		return fmt.Sprintf("mvi 0x%03x", ins.NNN)
	case OpJumpOffset:
		return fmt.Sprintf("jmi 0x%03x", ins.NNN)
	case OpRand:
		return fmt.Sprintf("rand v%x, %d", ins.X, ins.KK)
	case OpDraw:
		return fmt.Sprintf("sprite v%x, v%x, %d", ins.X, ins.Y, ins.N)
	case OpSkipKeyPressed:
		return fmt.Sprintf("skpr v%x", ins.X)
	case OpSkipKeyReleased:
		return fmt.Sprintf("skup v%x", ins.X)
	case OpLoadDelay:
		return fmt.Sprintf("gdelay v%x", ins.X)
	case OpWaitKey:
		return fmt.Sprintf("key v%x", ins.X)
	case OpSetDelay:
		return fmt.Sprintf("sdelay v%x", ins.X)
	case OpSetSound:
		return fmt.Sprintf("ssound v%x", ins.X)
	case OpAddIndex:
		return fmt.Sprintf("adi v%x", ins.X)
	case OpLoadDigit:
		return fmt.Sprintf("font v%x", ins.X)
	case OpStoreBCD:
		return fmt.Sprintf("bcd v%x", ins.X)
	case OpStoreRegs:
		return fmt.Sprintf("str v0-v%x", ins.X)
	case OpLoadRegs:
		return fmt.Sprintf("ldr v0-v%x", ins.X)
	default:
		return fmt.Sprintf("unknown 0x%04X", ins.Opcode)
	}
}
