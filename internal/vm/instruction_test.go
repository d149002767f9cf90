package vm

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecode_RecognizedOpcodes(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		want   Instruction
	}{
		{"sys", 0x0123, Instruction{Op: OpSys}},
		{"cls", 0x00E0, Instruction{Op: OpClearScreen}},
		{"rts", 0x00EE, Instruction{Op: OpReturn}},
		{"jmp", 0x1228, Instruction{Op: OpJump}},
		{"jsr", 0x2345, Instruction{Op: OpCall}},
		{"skeq imm", 0x3A42, Instruction{Op: OpSkipEqualImm}},
		{"skne imm", 0x4A42, Instruction{Op: OpSkipNotEqualImm}},
		{"skeq reg", 0x5AB0, Instruction{Op: OpSkipEqual}},
		{"mov imm", 0x6122, Instruction{Op: OpLoadImm}},
		{"add imm", 0x73FF, Instruction{Op: OpAddImm}},
		{"mov reg", 0x8AB0, Instruction{Op: OpMove}},
		{"or", 0x8AB1, Instruction{Op: OpOr}},
		{"and", 0x8AB2, Instruction{Op: OpAnd}},
		{"xor", 0x8AB3, Instruction{Op: OpXor}},
		{"add reg", 0x8AB4, Instruction{Op: OpAdd}},
		{"sub", 0x8AB5, Instruction{Op: OpSub}},
		{"shr", 0x8A06, Instruction{Op: OpShiftRight}},
		{"rsb", 0x8AB7, Instruction{Op: OpSubN}},
		{"shl", 0x8A0E, Instruction{Op: OpShiftLeft}},
		{"skne reg", 0x9AB0, Instruction{Op: OpSkipNotEqual}},
		{"mvi", 0xABCD, Instruction{Op: OpLoadIndex}},
		{"jmi", 0xB234, Instruction{Op: OpJumpOffset}},
		{"rand", 0xC10F, Instruction{Op: OpRand}},
		{"sprite", 0xD12A, Instruction{Op: OpDraw}},
		{"skpr", 0xE39E, Instruction{Op: OpSkipKeyPressed}},
		{"skup", 0xE3A1, Instruction{Op: OpSkipKeyReleased}},
		{"gdelay", 0xF407, Instruction{Op: OpLoadDelay}},
		{"key", 0xF40A, Instruction{Op: OpWaitKey}},
		{"sdelay", 0xF415, Instruction{Op: OpSetDelay}},
		{"ssound", 0xF418, Instruction{Op: OpSetSound}},
		{"adi", 0xF41E, Instruction{Op: OpAddIndex}},
		{"font", 0xF429, Instruction{Op: OpLoadDigit}},
		{"bcd", 0xF433, Instruction{Op: OpStoreBCD}},
		{"str", 0xF455, Instruction{Op: OpStoreRegs}},
		{"ldr", 0xF465, Instruction{Op: OpLoadRegs}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := Decode(tt.opcode)
			assert.NoError(t, err)
			assert.Equal(t, tt.want.Op, ins.Op)

			// Operand fields always mirror the opcode nibbles.
			assert.Equal(t, tt.opcode, ins.Opcode)
			assert.Equal(t, uint8(tt.opcode>>8&0x0F), ins.X)
			assert.Equal(t, uint8(tt.opcode>>4&0x0F), ins.Y)
			assert.Equal(t, uint8(tt.opcode&0x0F), ins.N)
			assert.Equal(t, uint8(tt.opcode), ins.KK)
			assert.Equal(t, tt.opcode&0x0FFF, ins.NNN)
		})
	}
}

func TestDecode_InvalidOpcodes(t *testing.T) {
	opcodes := []uint16{
		0x5AB1, // skeq reg with non-zero tail
		0x5ABF,
		0x8AB8, // unassigned 8XY_ variants
		0x8AB9,
		0x8ABA,
		0x8ABD,
		0x8ABF,
		0x9AB1, // skne reg with non-zero tail
		0xE000,
		0xE39D,
		0xE3FF,
		0xF000,
		0xF408,
		0xF42A,
		0xF456,
		0xF466,
		0xFFFF,
	}

	for _, opcode := range opcodes {
		_, err := Decode(opcode)

		var opcodeErr InvalidOpcodeError
		assert.True(t, errors.As(err, &opcodeErr))
		assert.Equal(t, opcode, opcodeErr.Opcode)
	}
}

func TestDecode_LegacySysVariant(t *testing.T) {
	// 0NNN with a trailing byte other than E0/EE is the legacy native call.
	for _, opcode := range []uint16{0x0000, 0x0123, 0x0ABC} {
		ins, err := Decode(opcode)
		assert.NoError(t, err)
		assert.Equal(t, OpSys, ins.Op)
	}
}

func TestInstruction_String(t *testing.T) {
	tests := []struct {
		opcode uint16
		want   string
	}{
		{0x00E0, "cls"},
		{0x00EE, "rts"},
		{0x1228, "jmp 0x228"},
		{0x2345, "jsr 0x345"},
		{0x3A42, "skeq va, 66"},
		{0x6122, "mov v1, 34"},
		{0x8AB4, "add va, vb"},
		{0x8A06, "shr va"},
		{0xABCD, "mvi 0xbcd"},
		{0xC10F, "rand v1, 15"},
		{0xD12A, "sprite v1, v2, 10"},
		{0xF40A, "key v4"},
		{0xF455, "str v0-v4"},
		{0x0123, "sys 0x123"},
	}

	for _, tt := range tests {
		ins, err := Decode(tt.opcode)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, ins.String())
	}
}
