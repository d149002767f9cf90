package vm

// execute dispatches one decoded instruction. PC has already been advanced
// past the fetched opcode, so skip handlers add another instruction size and
// branch handlers overwrite it outright.
func (vm *VM) execute(ins Instruction) error {
	// Decoding constrains operands to 4 bits; the guard stays anyway.
	if ins.X >= RegisterCount {
		return InvalidVRegisterError{Index: ins.X}
	}
	if ins.Y >= RegisterCount {
		return InvalidVRegisterError{Index: ins.Y}
	}

	switch ins.Op {
	case OpSys:
		// Legacy "call native routine" encoding. Inert.

	case OpClearScreen:
		vm.gfx = Framebuffer{}

	case OpReturn:
		if vm.sp == 0 {
			return ErrStackUnderflow
		}
		vm.sp--
		vm.pc = vm.stack[vm.sp]

	case OpJump:
		vm.pc = ins.NNN

	case OpCall:
		if vm.sp == StackSize {
			return ErrStackOverflow
		}
		vm.stack[vm.sp] = vm.pc
		vm.sp++
		vm.pc = ins.NNN

	case OpSkipEqualImm:
		if vm.registers[ins.X] == ins.KK {
			vm.pc += InstructionSize
		}

	case OpSkipNotEqualImm:
		if vm.registers[ins.X] != ins.KK {
			vm.pc += InstructionSize
		}

	case OpSkipEqual:
		if vm.registers[ins.X] == vm.registers[ins.Y] {
			vm.pc += InstructionSize
		}

	case OpLoadImm:
		vm.registers[ins.X] = ins.KK

	case OpAddImm:
		// Wrapping add, no flag.
		vm.registers[ins.X] += ins.KK

	case OpMove:
		vm.registers[ins.X] = vm.registers[ins.Y]

	case OpOr:
		vm.registers[ins.X] |= vm.registers[ins.Y]

	case OpAnd:
		vm.registers[ins.X] &= vm.registers[ins.Y]

	case OpXor:
		vm.registers[ins.X] ^= vm.registers[ins.Y]

	case OpAdd:
		x, y := vm.registers[ins.X], vm.registers[ins.Y]
		vm.registers[ins.X] = x + y
		vm.setFlag(uint16(x)+uint16(y) > 0xFF)

	case OpSub:
		x, y := vm.registers[ins.X], vm.registers[ins.Y]
		vm.registers[ins.X] = x - y
		vm.setFlag(x >= y) // VF = 1 when no borrow

	case OpShiftRight:
		x := vm.registers[ins.X]
		vm.registers[ins.X] = x >> 1
		vm.setFlag(x&0x01 != 0)

	case OpSubN:
		x, y := vm.registers[ins.X], vm.registers[ins.Y]
		vm.registers[ins.X] = y - x
		vm.setFlag(y >= x)

	case OpShiftLeft:
		x := vm.registers[ins.X]
		vm.registers[ins.X] = x << 1
		vm.setFlag(x&0x80 != 0)

	case OpSkipNotEqual:
		if vm.registers[ins.X] != vm.registers[ins.Y] {
			vm.pc += InstructionSize
		}

	case OpLoadIndex:
		vm.index = ins.NNN

	case OpJumpOffset:
		vm.pc = ins.NNN + uint16(vm.registers[ins.X])

	case OpRand:
		vm.registers[ins.X] = vm.rng.Byte() & ins.KK

	case OpDraw:
		return vm.draw(ins)

	case OpSkipKeyPressed:
		pressed, err := vm.keyPressed(ins.X)
		if err != nil {
			return err
		}
		if pressed {
			vm.pc += InstructionSize
		}

	case OpSkipKeyReleased:
		pressed, err := vm.keyPressed(ins.X)
		if err != nil {
			return err
		}
		if !pressed {
			vm.pc += InstructionSize
		}

	case OpLoadDelay:
		vm.registers[ins.X] = vm.delayTimer

	case OpWaitKey:
		vm.waiting = true
		vm.waitingReg = ins.X

	case OpSetDelay:
		vm.delayTimer = vm.registers[ins.X]

	case OpSetSound:
		vm.soundTimer = vm.registers[ins.X]

	case OpAddIndex:
		sum := vm.index + uint16(vm.registers[ins.X])
		vm.setFlag(sum > 0x0FFF)
		vm.index = sum & 0x0FFF

	case OpLoadDigit:
		addr, err := fontAddr(vm.registers[ins.X])
		if err != nil {
			return err
		}
		vm.index = addr

	case OpStoreBCD:
		if err := vm.checkWritable(vm.index, 3); err != nil {
			return err
		}
		x := vm.registers[ins.X]
		vm.memory[vm.index] = x / 100
		vm.memory[vm.index+1] = x / 10 % 10
		vm.memory[vm.index+2] = x % 10

	case OpStoreRegs:
		n := uint16(ins.X) + 1
		if err := vm.checkWritable(vm.index, n); err != nil {
			return err
		}
		copy(vm.memory[vm.index:vm.index+n], vm.registers[:n])

	case OpLoadRegs:
		n := uint16(ins.X) + 1
		if err := vm.checkWritable(vm.index, n); err != nil {
			return err
		}
		copy(vm.registers[:n], vm.memory[vm.index:vm.index+n])

	default:
		return InvalidOpcodeError{Opcode: ins.Opcode}
	}

	return nil
}

// draw reads the N sprite rows at I and XOR-blits them at (VX, VY).
// VF reports the accumulated collision.
func (vm *VM) draw(ins Instruction) error {
	n := uint16(ins.N)
	if int(vm.index)+int(n) > MemorySize {
		return InvalidAddressError{Addr: vm.index}
	}

	sprite := vm.memory[vm.index : vm.index+n]
	x := int(vm.registers[ins.X])
	y := int(vm.registers[ins.Y])

	vm.setFlag(blit(sprite, x, y, &vm.gfx))

	return nil
}

// keyPressed reads the keypad flag selected by register x, rejecting key
// numbers the pad does not have.
func (vm *VM) keyPressed(x uint8) (bool, error) {
	key := vm.registers[x]
	if key >= KeyCount {
		return false, InvalidKeyError{Index: key}
	}

	return vm.keypad[key], nil
}

// checkWritable validates that the n bytes starting at addr stay inside the
// memory window open to register save/load traffic: the reserved interpreter
// region below 0x200 is off limits.
func (vm *VM) checkWritable(addr, n uint16) error {
	if addr < ProgramStart {
		return InvalidAddressError{Addr: addr}
	}
	if int(addr)+int(n) > MemorySize {
		return InvalidAddressError{Addr: addr + n - 1}
	}

	return nil
}

func (vm *VM) setFlag(cond bool) {
	if cond {
		vm.registers[0xF] = 1
	} else {
		vm.registers[0xF] = 0
	}
}
