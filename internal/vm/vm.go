// Package vm implements the CHIP-8 execution core: a 4KB machine with 16
// 8-bit registers, a 16-level call stack, two countdown timers, a 16-key
// pad and a 64x32 monochrome framebuffer. The host drives it one Tick at a
// time and owns all pacing, rendering and input translation.
package vm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
)

const (
	MemorySize    = 4096
	StackSize     = 16
	RegisterCount = 16
	ScreenWidth   = 64
	ScreenHeight  = 32
	KeyCount      = 16

	ProgramStart    = uint16(0x200)
	InstructionSize = 2
)

// RandomSource yields uniformly distributed bytes for the rand instruction.
// It is injected at construction so tests can substitute a deterministic one.
type RandomSource interface {
	Byte() uint8
}

type mathRandom struct{}

func (mathRandom) Byte() uint8 {
	return uint8(rand.Intn(256))
}

// MathRandom returns a RandomSource backed by math/rand.
func MathRandom() RandomSource {
	return mathRandom{}
}

// Status is the observable outcome of a single tick.
type Status struct {
	Waiting bool // latched on a wait-for-key instruction, no fetch happened
	Buzzing bool // sound timer is running
}

type VM struct {
	memory    []uint8 // Memory (4k)
	registers []uint8 // V registers (V0-VF)

	stack []uint16 // Stack
	sp    uint8    // Stack pointer

	pc    uint16 // Program counter
	index uint16 // Index register

	delayTimer uint8 // Delay timer
	soundTimer uint8 // Sound timer

	gfx    Framebuffer // Graphics buffer
	keypad []bool      // Keypad

	waiting    bool  // Latched by the wait-for-key instruction
	waitingReg uint8 // Destination register for the awaited key

	rng RandomSource
}

// New returns a zeroed machine with the font installed and PC at the
// program start. No ROM is loaded yet.
func New(rng RandomSource) *VM {
	vm := &VM{
		memory:    make([]uint8, MemorySize),
		registers: make([]uint8, RegisterCount),
		stack:     make([]uint16, StackSize),
		keypad:    make([]bool, KeyCount),
		rng:       rng,
	}
	vm.Reset()

	return vm
}

// Reset wipes all machine state unconditionally: registers, stack, timers,
// keypad, framebuffer and all 4096 memory bytes. The interpreter font is
// re-installed in the reserved low region; it is baseline machine state, not
// loaded content. A reset must precede loading a new ROM.
func (vm *VM) Reset() {
	vm.pc = ProgramStart
	vm.index = 0
	vm.sp = 0

	vm.gfx = Framebuffer{}

	slog.Debug("clear stack", "n", len(vm.stack))
	for i := range vm.stack {
		vm.stack[i] = 0
	}

	slog.Debug("clear keypad", "n", len(vm.keypad))
	for i := range vm.keypad {
		vm.keypad[i] = false
	}

	slog.Debug("clear registers", "n", len(vm.registers))
	for i := range vm.registers {
		vm.registers[i] = 0
	}

	slog.Debug("clear memory", "n", len(vm.memory))
	for i := range vm.memory {
		vm.memory[i] = 0
	}

	slog.Debug("load font", "at", fmt.Sprintf("0x%04x", fontBase), "n", len(chip8Font))
	copy(vm.memory[fontBase:], chip8Font)

	vm.delayTimer = 0
	vm.soundTimer = 0

	vm.waiting = false
	vm.waitingReg = 0
}

// LoadROM copies a raw, untagged ROM image into memory starting at 0x200.
// Opcodes inside it are stored big-endian.
func (vm *VM) LoadROM(rom []byte) error {
	if len(rom) > MemorySize-int(ProgramStart) {
		return ErrMemoryOverflow
	}

	slog.Info("load rom", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(rom))
	copy(vm.memory[ProgramStart:], rom)

	return nil
}

// Tick runs one machine step: both timers decrement once (saturating at 0),
// then one instruction is fetched, decoded and executed. While the machine is
// latched waiting for a key only the timers run. A failing tick leaves state
// as of the failed step and is not retryable.
func (vm *VM) Tick() (Status, error) {
	// Timers run before dispatch, on every tick.
	if vm.delayTimer > 0 {
		vm.delayTimer--
	}
	if vm.soundTimer > 0 {
		vm.soundTimer--
	}

	if vm.waiting {
		return Status{Waiting: true, Buzzing: vm.soundTimer > 0}, nil
	}

	opcode, err := vm.fetch()
	if err != nil {
		return Status{}, err
	}

	ins, err := Decode(opcode)
	if err != nil {
		return Status{}, err
	}

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%04x", vm.pc-InstructionSize),
			"opcode", fmt.Sprintf("0x%04x", opcode),
			"instr", ins.String(),
		)
	}

	if err := vm.execute(ins); err != nil {
		return Status{}, err
	}

	return Status{Buzzing: vm.soundTimer > 0}, nil
}

// fetch reads the two opcode bytes at PC big-endian and advances PC past
// them. Both bytes must lie inside the 4096-byte memory.
func (vm *VM) fetch() (uint16, error) {
	if int(vm.pc)+1 >= MemorySize {
		return 0, InvalidAddressError{Addr: vm.pc}
	}

	hi := vm.memory[vm.pc]
	lo := vm.memory[vm.pc+1]
	vm.pc += InstructionSize

	return uint16(hi)<<8 | uint16(lo), nil
}

// SetKey records the pressed state of keypad key index. If the machine is
// latched waiting for a key and the key transitions to pressed, index is
// stored into the latched destination register and the latch clears; the
// first qualifying transition wins, so simultaneous presses resolve in host
// event-delivery order. Keys already held when the latch engaged, and repeat
// events for held keys, do not satisfy the wait.
func (vm *VM) SetKey(index uint8, pressed bool) error {
	if index >= KeyCount {
		return InvalidKeyError{Index: index}
	}

	wasPressed := vm.keypad[index]
	vm.keypad[index] = pressed

	if vm.waiting && pressed && !wasPressed {
		vm.registers[vm.waitingReg] = index
		vm.waiting = false
	}

	return nil
}

// Framebuffer returns a snapshot of the display. Mutating the copy has no
// effect on the machine.
func (vm *VM) Framebuffer() Framebuffer {
	return vm.gfx
}
