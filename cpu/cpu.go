// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements a cycle-stepped MOS 6502 CPU emulator. An
// external clock drives the CPU one cycle at a time through Tick; all
// architectural side effects of an instruction become visible on its
// final (retirement) cycle.
package cpu

import (
	"errors"
	"fmt"
)

// Model selects the emulated silicon revision: the original NMOS 6502,
// quirks included, or the 65C02 with its fixes and extensions.
type Model byte

const (
	// Original NMOS 6502, including the JMP (indirect) page-boundary bug.
	Original Model = iota

	// CMOS65C02 fixes the NMOS quirks and adds the documented 65C02
	// instruction extensions.
	CMOS65C02
)

// Interrupt identifies an interrupt request kind.
type Interrupt byte

const (
	// IRQ is the maskable interrupt request. It is ignored while the
	// interrupt-disable flag is set.
	IRQ Interrupt = iota

	// NMI is the non-maskable interrupt request.
	NMI
)

// Interrupt vectors
const (
	vectorNMI   = 0xfffa
	vectorReset = 0xfffc
	vectorIRQ   = 0xfffe
	vectorBRK   = 0xfffe
)

// ErrDecimalMode is returned when an instruction requires binary-coded
// decimal arithmetic, which this emulator does not implement. ADC and SBC
// return it when the decimal flag is set, and SED returns it always.
var ErrDecimalMode = errors.New("decimal mode arithmetic not supported")

// An OpcodeError is returned when the CPU fetches an opcode that has no
// populated slot in the instruction set.
type OpcodeError struct {
	Opcode byte   // the offending opcode value
	Addr   uint16 // the address the opcode was fetched from
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode $%02X at $%04X", e.Opcode, e.Addr)
}

// CPU represents a single 6502 CPU. The CPU does not hold a reference to
// its memory; the driver passes the memory into Reset and each Tick,
// retaining ownership between calls.
type CPU struct {
	Model   Model           // silicon revision
	Reg     Registers       // CPU registers
	InstSet *InstructionSet // instruction set for the model
	LastPC  uint16          // address of the instruction in flight

	// Decode state, reborn at every instruction retirement.
	inst        *Instruction
	operand     [2]byte
	cycleIndex  int  // cycles already spent on the current instruction
	totalCycles int  // base + extra cycles; 0 until operands are fetched
	fetchNext   bool // the next tick must fetch a new opcode

	cycles     uint64 // total ticks since reset
	pendingIRQ bool
	pendingNMI bool
	haltErr    error

	debugger  *Debugger
	storeByte func(cpu *CPU, mem Memory, addr uint16, v byte)
}

// New creates an emulated 6502 CPU of the requested model. The CPU is not
// usable until Reset has been called with its memory.
func New(model Model) *CPU {
	cpu := &CPU{
		Model:     model,
		InstSet:   GetInstructionSet(model),
		storeByte: (*CPU).storeByteNormal,
	}
	cpu.Reg.Init()
	cpu.fetchNext = true
	return cpu
}

// Reset (re)initializes the CPU from the reset vector at $FFFC/D. The
// stack pointer starts at $FD, all flags except interrupt-disable are
// cleared, and the decode state is discarded.
func (cpu *CPU) Reset(mem Memory) {
	cpu.Reg.Init()
	cpu.Reg.PC = mem.LoadAddress(vectorReset)
	cpu.LastPC = cpu.Reg.PC
	cpu.clearDecodeState()
	cpu.cycles = 0
	cpu.pendingIRQ = false
	cpu.pendingNMI = false
	cpu.haltErr = nil
}

// Cycles returns the total number of ticks executed since reset.
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// CycleIndex returns the number of cycles already spent on the
// instruction in flight. It is zero whenever the CPU sits at an
// instruction boundary.
func (cpu *CPU) CycleIndex() int {
	if cpu.fetchNext {
		return 0
	}
	return cpu.cycleIndex
}

// Halted returns the error that halted the CPU, or nil if the CPU is
// still runnable.
func (cpu *CPU) Halted() error {
	return cpu.haltErr
}

// SetPC updates the CPU program counter to 'addr' and discards any
// partially decoded instruction.
func (cpu *CPU) SetPC(addr uint16) {
	cpu.Reg.PC = addr
	cpu.clearDecodeState()
}

// GetInstruction returns the instruction opcode at the requested address.
func (cpu *CPU) GetInstruction(mem Memory, addr uint16) *Instruction {
	opcode := mem.LoadByte(addr)
	return cpu.InstSet.Lookup(opcode)
}

// RequestInterrupt latches an interrupt request of the given kind. An IRQ
// is refused while the interrupt-disable flag is set; an NMI is always
// accepted. The request is serviced at the next instruction boundary;
// an instruction in flight is never preempted.
func (cpu *CPU) RequestInterrupt(kind Interrupt) {
	switch kind {
	case IRQ:
		if !cpu.Reg.InterruptDisable() {
			cpu.pendingIRQ = true
		}
	case NMI:
		cpu.pendingNMI = true
	}
}

// Tick advances the CPU by exactly one cycle: an opcode fetch, an operand
// byte fetch, or one cycle of instruction execution. On the final cycle of
// an instruction, its side effects are committed and the CPU is armed to
// fetch the next opcode. A non-nil error halts the CPU until the next
// Reset.
func (cpu *CPU) Tick(mem Memory) error {
	if cpu.haltErr != nil {
		return cpu.haltErr
	}

	cpu.cycles++

	if cpu.fetchNext {
		cpu.serviceInterrupt(mem)

		opcode := mem.LoadByte(cpu.Reg.PC)
		inst := cpu.InstSet.Lookup(opcode)
		if inst.Length == 0 {
			cpu.haltErr = &OpcodeError{Opcode: opcode, Addr: cpu.Reg.PC}
			return cpu.haltErr
		}

		cpu.LastPC = cpu.Reg.PC
		cpu.Reg.PC++
		cpu.inst = inst
		cpu.cycleIndex = 1
		cpu.totalCycles = 0
		cpu.fetchNext = false
		return nil
	}

	inst := cpu.inst
	if cpu.cycleIndex < int(inst.Length) {
		cpu.operand[cpu.cycleIndex-1] = mem.LoadByte(cpu.Reg.PC)
		cpu.Reg.PC++
	}
	cpu.cycleIndex++

	// Once all operand bytes are in, fix the instruction's total cycle
	// count. The extra-cycle predicate reads pre-execution state, so it
	// must run before the execute action can mutate anything.
	if cpu.totalCycles == 0 && cpu.cycleIndex >= int(inst.Length) {
		operand := cpu.operand[:inst.Length-1]
		cpu.totalCycles = int(inst.Cycles) + cpu.extraCycles(inst, operand, mem)
	}

	if cpu.totalCycles != 0 && cpu.cycleIndex >= cpu.totalCycles {
		operand := cpu.operand[:inst.Length-1]
		err := inst.fn(cpu, inst, operand, mem)
		cpu.clearDecodeState()
		if err != nil {
			cpu.haltErr = err
			return err
		}
		if cpu.debugger != nil {
			cpu.debugger.onUpdatePC(cpu, cpu.Reg.PC)
		}
	}
	return nil
}

// Step runs the CPU until the instruction in flight (or, at a boundary,
// the next instruction) has retired. It is the unit of progress used by
// debuggers; the cycle cost is whatever the ticks add up to.
func (cpu *CPU) Step(mem Memory) error {
	for {
		if err := cpu.Tick(mem); err != nil {
			return err
		}
		if cpu.fetchNext {
			return nil
		}
	}
}

// AttachDebugger attaches a debugger to the CPU. The debugger receives
// notifications whenever the CPU retires an instruction or stores a byte
// to memory.
func (cpu *CPU) AttachDebugger(debugger *Debugger) {
	cpu.debugger = debugger
	cpu.storeByte = (*CPU).storeByteDebugger
}

// DetachDebugger detaches the current debugger from the CPU.
func (cpu *CPU) DetachDebugger() {
	cpu.debugger = nil
	cpu.storeByte = (*CPU).storeByteNormal
}

func (cpu *CPU) clearDecodeState() {
	cpu.inst = nil
	cpu.operand[0] = 0
	cpu.operand[1] = 0
	cpu.cycleIndex = 0
	cpu.totalCycles = 0
	cpu.fetchNext = true
}

// Service a latched interrupt at an instruction boundary. An NMI outranks
// a simultaneously pending IRQ.
func (cpu *CPU) serviceInterrupt(mem Memory) {
	switch {
	case cpu.pendingNMI:
		cpu.pendingNMI = false
		cpu.handleInterrupt(false, vectorNMI, mem)
	case cpu.pendingIRQ:
		cpu.pendingIRQ = false
		if !cpu.Reg.InterruptDisable() {
			cpu.handleInterrupt(false, vectorIRQ, mem)
		}
	}
}

// Handle an interrupt by storing the program counter and status flags on
// the stack. Then switch the program counter to the vectored address.
func (cpu *CPU) handleInterrupt(brk bool, addr uint16, mem Memory) {
	cpu.pushAddress(mem, cpu.Reg.PC)
	cpu.push(mem, cpu.Reg.SavePS(brk))

	cpu.Reg.SetInterruptDisable(true)
	if cpu.Model == CMOS65C02 {
		cpu.Reg.SetDecimal(false)
	}

	cpu.Reg.PC = mem.LoadAddress(addr)
}

// Compute the extra cycles consumed by the instruction in flight beyond
// its base cycle count: branch-taken and page-crossing penalties. The
// predicate runs with all operand bytes fetched and before the execute
// action has mutated any state.
func (cpu *CPU) extraCycles(inst *Instruction, operand []byte, mem Memory) int {
	switch inst.Mode {
	case ABX:
		if inst.BPCycles > 0 {
			if _, crossed := offsetAddress(operandToAddress(operand), cpu.Reg.X); crossed {
				return 1
			}
		}
	case ABY:
		if inst.BPCycles > 0 {
			if _, crossed := offsetAddress(operandToAddress(operand), cpu.Reg.Y); crossed {
				return 1
			}
		}
	case IDY:
		if inst.BPCycles > 0 {
			base := loadZeroPagePointer(mem, operand[0])
			if _, crossed := offsetAddress(base, cpu.Reg.Y); crossed {
				return 1
			}
		}
	case IND:
		// The 65C02 spends an extra cycle fixing up a JMP (indirect)
		// whose pointer straddles a page boundary.
		if cpu.Model == CMOS65C02 && operand[0] == 0xff {
			return 1
		}
	case REL:
		if inst.test != nil && !inst.test(&cpu.Reg) {
			return 0
		}
		// Taken branches cost one cycle, two if the destination sits on
		// a different page than the branch instruction.
		dest := branchTarget(cpu.Reg.PC, operand[0])
		if (dest & 0xff00) != (cpu.LastPC & 0xff00) {
			return 2
		}
		return 1
	}
	return 0
}

// Return the destination of a branch: 'pc' (already advanced past the
// branch operand) plus the sign-extended offset.
func branchTarget(pc uint16, offset byte) uint16 {
	if offset < 0x80 {
		return pc + uint16(offset)
	}
	return pc - uint16(0x100-uint16(offset))
}

// Load a byte value using the requested addressing mode and the operand
// to determine where to load it from.
func (cpu *CPU) load(mem Memory, mode Mode, operand []byte) byte {
	switch mode {
	case IMM:
		return operand[0]
	case ZPG:
		return mem.LoadByte(operandToAddress(operand))
	case ZPX:
		return mem.LoadByte(offsetZeroPage(operandToAddress(operand), cpu.Reg.X))
	case ZPY:
		return mem.LoadByte(offsetZeroPage(operandToAddress(operand), cpu.Reg.Y))
	case ABS:
		return mem.LoadByte(operandToAddress(operand))
	case ABX:
		addr, _ := offsetAddress(operandToAddress(operand), cpu.Reg.X)
		return mem.LoadByte(addr)
	case ABY:
		addr, _ := offsetAddress(operandToAddress(operand), cpu.Reg.Y)
		return mem.LoadByte(addr)
	case IDX:
		zpaddr := offsetZeroPage(operandToAddress(operand), cpu.Reg.X)
		return mem.LoadByte(loadZeroPagePointer(mem, byte(zpaddr)))
	case IDY:
		addr, _ := offsetAddress(loadZeroPagePointer(mem, operand[0]), cpu.Reg.Y)
		return mem.LoadByte(addr)
	case ZPI:
		return mem.LoadByte(loadZeroPagePointer(mem, operand[0]))
	case ACC:
		return cpu.Reg.A
	default:
		panic("invalid addressing mode")
	}
}

// Load a 16-bit address value using the requested addressing mode and the
// instruction operand.
func (cpu *CPU) loadAddress(mem Memory, mode Mode, operand []byte) uint16 {
	switch mode {
	case ABS:
		return operandToAddress(operand)
	case IND:
		return mem.LoadAddress(operandToAddress(operand))
	default:
		panic("invalid addressing mode")
	}
}

// Store a byte value using the specified addressing mode and the operand
// to determine where to store it.
func (cpu *CPU) store(mem Memory, mode Mode, operand []byte, v byte) {
	switch mode {
	case ZPG:
		cpu.storeByte(cpu, mem, operandToAddress(operand), v)
	case ZPX:
		cpu.storeByte(cpu, mem, offsetZeroPage(operandToAddress(operand), cpu.Reg.X), v)
	case ZPY:
		cpu.storeByte(cpu, mem, offsetZeroPage(operandToAddress(operand), cpu.Reg.Y), v)
	case ABS:
		cpu.storeByte(cpu, mem, operandToAddress(operand), v)
	case ABX:
		addr, _ := offsetAddress(operandToAddress(operand), cpu.Reg.X)
		cpu.storeByte(cpu, mem, addr, v)
	case ABY:
		addr, _ := offsetAddress(operandToAddress(operand), cpu.Reg.Y)
		cpu.storeByte(cpu, mem, addr, v)
	case IDX:
		zpaddr := offsetZeroPage(operandToAddress(operand), cpu.Reg.X)
		cpu.storeByte(cpu, mem, loadZeroPagePointer(mem, byte(zpaddr)), v)
	case IDY:
		addr, _ := offsetAddress(loadZeroPagePointer(mem, operand[0]), cpu.Reg.Y)
		cpu.storeByte(cpu, mem, addr, v)
	case ZPI:
		cpu.storeByte(cpu, mem, loadZeroPagePointer(mem, operand[0]), v)
	case ACC:
		cpu.Reg.A = v
	default:
		panic("invalid addressing mode")
	}
}

// Store the byte value 'v' at the address 'addr'.
func (cpu *CPU) storeByteNormal(mem Memory, addr uint16, v byte) {
	mem.StoreByte(addr, v)
}

// Store the byte value 'v' at the address 'addr', notifying the debugger.
func (cpu *CPU) storeByteDebugger(mem Memory, addr uint16, v byte) {
	cpu.debugger.onDataStore(cpu, addr, v)
	mem.StoreByte(addr, v)
}

// Push a value 'v' onto the stack.
func (cpu *CPU) push(mem Memory, v byte) {
	cpu.storeByte(cpu, mem, stackAddress(cpu.Reg.SP), v)
	cpu.Reg.SP--
}

// Push the address 'addr' onto the stack, high byte first.
func (cpu *CPU) pushAddress(mem Memory, addr uint16) {
	cpu.push(mem, byte(addr>>8))
	cpu.push(mem, byte(addr))
}

// Pop a value from the stack and return it.
func (cpu *CPU) pop(mem Memory) byte {
	cpu.Reg.SP++
	return mem.LoadByte(stackAddress(cpu.Reg.SP))
}

// Pop a 16-bit address off the stack, low byte first.
func (cpu *CPU) popAddress(mem Memory) uint16 {
	lo := cpu.pop(mem)
	hi := cpu.pop(mem)
	return uint16(lo) | (uint16(hi) << 8)
}

// Update the Zero and Sign flags based on the value of 'v'.
func (cpu *CPU) updateNZ(v byte) {
	cpu.Reg.SetZero(v == 0)
	cpu.Reg.SetSign((v & 0x80) != 0)
}

// Add with carry
func (cpu *CPU) adc(inst *Instruction, operand []byte, mem Memory) error {
	if cpu.Reg.Decimal() {
		return fmt.Errorf("ADC: %w", ErrDecimalMode)
	}

	acc := uint32(cpu.Reg.A)
	add := uint32(cpu.load(mem, inst.Mode, operand))
	carry := boolToUint32(cpu.Reg.Carry())

	sum := acc + add + carry
	v := byte(sum)

	cpu.Reg.SetCarry(sum > 0xff)
	cpu.Reg.SetOverflow(((acc^uint32(v))&(add^uint32(v))&0x80) != 0)

	cpu.Reg.A = v
	cpu.updateNZ(v)
	return nil
}

// Subtract with carry
func (cpu *CPU) sbc(inst *Instruction, operand []byte, mem Memory) error {
	if cpu.Reg.Decimal() {
		return fmt.Errorf("SBC: %w", ErrDecimalMode)
	}

	// Subtraction is addition of the one's complement.
	acc := uint32(cpu.Reg.A)
	sub := uint32(cpu.load(mem, inst.Mode, operand)) ^ 0xff
	carry := boolToUint32(cpu.Reg.Carry())

	sum := acc + sub + carry
	v := byte(sum)

	cpu.Reg.SetCarry(sum > 0xff)
	cpu.Reg.SetOverflow(((acc^uint32(v))&(sub^uint32(v))&0x80) != 0)

	cpu.Reg.A = v
	cpu.updateNZ(v)
	return nil
}

// Boolean AND
func (cpu *CPU) and(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.A &= cpu.load(mem, inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.A)
	return nil
}

// Arithmetic Shift Left
func (cpu *CPU) asl(inst *Instruction, operand []byte, mem Memory) error {
	v := cpu.load(mem, inst.Mode, operand)
	cpu.Reg.SetCarry((v & 0x80) == 0x80)
	v <<= 1
	cpu.updateNZ(v)
	cpu.store(mem, inst.Mode, operand, v)
	return nil
}

// Conditional branch. The flag test was already consulted by the
// extra-cycle predicate; it must see the same register state here.
func (cpu *CPU) branch(inst *Instruction, operand []byte, mem Memory) error {
	if inst.test == nil || inst.test(&cpu.Reg) {
		cpu.Reg.PC = branchTarget(cpu.Reg.PC, operand[0])
	}
	return nil
}

// Bit Test
func (cpu *CPU) bit(inst *Instruction, operand []byte, mem Memory) error {
	v := cpu.load(mem, inst.Mode, operand)
	cpu.Reg.SetZero((v & cpu.Reg.A) == 0)
	cpu.Reg.SetSign((v & 0x80) != 0)
	cpu.Reg.SetOverflow((v & 0x40) != 0)
	return nil
}

// Break
func (cpu *CPU) brk(inst *Instruction, operand []byte, mem Memory) error {
	// The padding byte after BRK is skipped before the return address
	// is pushed; the stacked status has the break bit set.
	cpu.Reg.PC++
	cpu.handleInterrupt(true, vectorBRK, mem)
	return nil
}

// Clear Carry flag
func (cpu *CPU) clc(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.SetCarry(false)
	return nil
}

// Clear Decimal flag
func (cpu *CPU) cld(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.SetDecimal(false)
	return nil
}

// Clear InterruptDisable flag
func (cpu *CPU) cli(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.SetInterruptDisable(false)
	return nil
}

// Clear Overflow flag
func (cpu *CPU) clv(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.SetOverflow(false)
	return nil
}

// Compare to accumulator
func (cpu *CPU) cmp(inst *Instruction, operand []byte, mem Memory) error {
	v := cpu.load(mem, inst.Mode, operand)
	cpu.Reg.SetCarry(cpu.Reg.A >= v)
	cpu.updateNZ(cpu.Reg.A - v)
	return nil
}

// Compare to X register
func (cpu *CPU) cpx(inst *Instruction, operand []byte, mem Memory) error {
	v := cpu.load(mem, inst.Mode, operand)
	cpu.Reg.SetCarry(cpu.Reg.X >= v)
	cpu.updateNZ(cpu.Reg.X - v)
	return nil
}

// Compare to Y register
func (cpu *CPU) cpy(inst *Instruction, operand []byte, mem Memory) error {
	v := cpu.load(mem, inst.Mode, operand)
	cpu.Reg.SetCarry(cpu.Reg.Y >= v)
	cpu.updateNZ(cpu.Reg.Y - v)
	return nil
}

// Decrement memory (or accumulator) value
func (cpu *CPU) dec(inst *Instruction, operand []byte, mem Memory) error {
	v := cpu.load(mem, inst.Mode, operand) - 1
	cpu.updateNZ(v)
	cpu.store(mem, inst.Mode, operand, v)
	return nil
}

// Decrement X register
func (cpu *CPU) dex(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.X--
	cpu.updateNZ(cpu.Reg.X)
	return nil
}

// Decrement Y register
func (cpu *CPU) dey(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.Y--
	cpu.updateNZ(cpu.Reg.Y)
	return nil
}

// Boolean XOR
func (cpu *CPU) eor(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.A ^= cpu.load(mem, inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.A)
	return nil
}

// Increment memory (or accumulator) value
func (cpu *CPU) inc(inst *Instruction, operand []byte, mem Memory) error {
	v := cpu.load(mem, inst.Mode, operand) + 1
	cpu.updateNZ(v)
	cpu.store(mem, inst.Mode, operand, v)
	return nil
}

// Increment X register
func (cpu *CPU) inx(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.X++
	cpu.updateNZ(cpu.Reg.X)
	return nil
}

// Increment Y register
func (cpu *CPU) iny(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.Y++
	cpu.updateNZ(cpu.Reg.Y)
	return nil
}

// Jump to memory address (Original NMOS). JMP (indirect) loads the high
// byte of the target from a page-wrapped address when the pointer ends in
// $FF; LoadAddress reproduces that.
func (cpu *CPU) jmpn(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.PC = cpu.loadAddress(mem, inst.Mode, operand)
	return nil
}

// Jump to memory address (65C02)
func (cpu *CPU) jmpc(inst *Instruction, operand []byte, mem Memory) error {
	switch inst.Mode {
	case IND:
		if operand[0] == 0xff {
			// The 65C02 fixes the NMOS address-wrap bug: a JMP ($12FF)
			// loads its high byte from $1300, not $1200.
			addr0 := uint16(operand[1])<<8 | 0xff
			lo := mem.LoadByte(addr0)
			hi := mem.LoadByte(addr0 + 1)
			cpu.Reg.PC = uint16(lo) | uint16(hi)<<8
			return nil
		}
		cpu.Reg.PC = mem.LoadAddress(operandToAddress(operand))
	case ABX:
		addr, _ := offsetAddress(operandToAddress(operand), cpu.Reg.X)
		cpu.Reg.PC = mem.LoadAddress(addr)
	default:
		cpu.Reg.PC = cpu.loadAddress(mem, inst.Mode, operand)
	}
	return nil
}

// Jump to subroutine. The pushed return address is the address of the
// last byte of the JSR instruction (return minus one).
func (cpu *CPU) jsr(inst *Instruction, operand []byte, mem Memory) error {
	addr := cpu.loadAddress(mem, inst.Mode, operand)
	cpu.pushAddress(mem, cpu.Reg.PC-1)
	cpu.Reg.PC = addr
	return nil
}

// Load Accumulator
func (cpu *CPU) lda(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.A = cpu.load(mem, inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.A)
	return nil
}

// Load the X register
func (cpu *CPU) ldx(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.X = cpu.load(mem, inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.X)
	return nil
}

// Load the Y register
func (cpu *CPU) ldy(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.Y = cpu.load(mem, inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.Y)
	return nil
}

// Logical Shift Right
func (cpu *CPU) lsr(inst *Instruction, operand []byte, mem Memory) error {
	v := cpu.load(mem, inst.Mode, operand)
	cpu.Reg.SetCarry((v & 1) == 1)
	v >>= 1
	cpu.updateNZ(v)
	cpu.store(mem, inst.Mode, operand, v)
	return nil
}

// No-operation
func (cpu *CPU) nop(inst *Instruction, operand []byte, mem Memory) error {
	return nil
}

// Boolean OR
func (cpu *CPU) ora(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.A |= cpu.load(mem, inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.A)
	return nil
}

// Push Accumulator
func (cpu *CPU) pha(inst *Instruction, operand []byte, mem Memory) error {
	cpu.push(mem, cpu.Reg.A)
	return nil
}

// Push Processor flags
func (cpu *CPU) php(inst *Instruction, operand []byte, mem Memory) error {
	cpu.push(mem, cpu.Reg.SavePS(true))
	return nil
}

// Push X register (65C02 only)
func (cpu *CPU) phx(inst *Instruction, operand []byte, mem Memory) error {
	cpu.push(mem, cpu.Reg.X)
	return nil
}

// Push Y register (65C02 only)
func (cpu *CPU) phy(inst *Instruction, operand []byte, mem Memory) error {
	cpu.push(mem, cpu.Reg.Y)
	return nil
}

// Pull (pop) Accumulator
func (cpu *CPU) pla(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.A = cpu.pop(mem)
	cpu.updateNZ(cpu.Reg.A)
	return nil
}

// Pull (pop) Processor flags
func (cpu *CPU) plp(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.RestorePS(cpu.pop(mem))
	return nil
}

// Pull (pop) X register (65C02 only)
func (cpu *CPU) plx(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.X = cpu.pop(mem)
	cpu.updateNZ(cpu.Reg.X)
	return nil
}

// Pull (pop) Y register (65C02 only)
func (cpu *CPU) ply(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.Y = cpu.pop(mem)
	cpu.updateNZ(cpu.Reg.Y)
	return nil
}

// Rotate Left
func (cpu *CPU) rol(inst *Instruction, operand []byte, mem Memory) error {
	tmp := cpu.load(mem, inst.Mode, operand)
	v := (tmp << 1) | boolToByte(cpu.Reg.Carry())
	cpu.Reg.SetCarry((tmp & 0x80) != 0)
	cpu.updateNZ(v)
	cpu.store(mem, inst.Mode, operand, v)
	return nil
}

// Rotate Right
func (cpu *CPU) ror(inst *Instruction, operand []byte, mem Memory) error {
	tmp := cpu.load(mem, inst.Mode, operand)
	v := (tmp >> 1) | (boolToByte(cpu.Reg.Carry()) << 7)
	cpu.Reg.SetCarry((tmp & 1) != 0)
	cpu.updateNZ(v)
	cpu.store(mem, inst.Mode, operand, v)
	return nil
}

// Return from Interrupt
func (cpu *CPU) rti(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.RestorePS(cpu.pop(mem))
	cpu.Reg.PC = cpu.popAddress(mem)
	return nil
}

// Return from Subroutine. The full 16-bit pulled address is incremented,
// not just its high byte.
func (cpu *CPU) rts(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.PC = cpu.popAddress(mem) + 1
	return nil
}

// Set Carry flag
func (cpu *CPU) sec(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.SetCarry(true)
	return nil
}

// Set Decimal flag. Decimal arithmetic is not implemented, so entering
// decimal mode is fatal rather than silently wrong.
func (cpu *CPU) sed(inst *Instruction, operand []byte, mem Memory) error {
	return fmt.Errorf("SED: %w", ErrDecimalMode)
}

// Set InterruptDisable flag
func (cpu *CPU) sei(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.SetInterruptDisable(true)
	return nil
}

// Store Accumulator
func (cpu *CPU) sta(inst *Instruction, operand []byte, mem Memory) error {
	cpu.store(mem, inst.Mode, operand, cpu.Reg.A)
	return nil
}

// Store X register
func (cpu *CPU) stx(inst *Instruction, operand []byte, mem Memory) error {
	cpu.store(mem, inst.Mode, operand, cpu.Reg.X)
	return nil
}

// Store Y register
func (cpu *CPU) sty(inst *Instruction, operand []byte, mem Memory) error {
	cpu.store(mem, inst.Mode, operand, cpu.Reg.Y)
	return nil
}

// Store Zero (65C02 only)
func (cpu *CPU) stz(inst *Instruction, operand []byte, mem Memory) error {
	cpu.store(mem, inst.Mode, operand, 0)
	return nil
}

// Transfer Accumulator to X register
func (cpu *CPU) tax(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.X = cpu.Reg.A
	cpu.updateNZ(cpu.Reg.X)
	return nil
}

// Transfer Accumulator to Y register
func (cpu *CPU) tay(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.Y = cpu.Reg.A
	cpu.updateNZ(cpu.Reg.Y)
	return nil
}

// Test and Reset Bits (65C02 only)
func (cpu *CPU) trb(inst *Instruction, operand []byte, mem Memory) error {
	v := cpu.load(mem, inst.Mode, operand)
	cpu.Reg.SetZero((v & cpu.Reg.A) == 0)
	cpu.store(mem, inst.Mode, operand, v&(cpu.Reg.A^0xff))
	return nil
}

// Test and Set Bits (65C02 only)
func (cpu *CPU) tsb(inst *Instruction, operand []byte, mem Memory) error {
	v := cpu.load(mem, inst.Mode, operand)
	cpu.Reg.SetZero((v & cpu.Reg.A) == 0)
	cpu.store(mem, inst.Mode, operand, v|cpu.Reg.A)
	return nil
}

// Transfer stack pointer to X register
func (cpu *CPU) tsx(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.X = cpu.Reg.SP
	cpu.updateNZ(cpu.Reg.X)
	return nil
}

// Transfer X register to Accumulator
func (cpu *CPU) txa(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.A = cpu.Reg.X
	cpu.updateNZ(cpu.Reg.A)
	return nil
}

// Transfer X register to the stack pointer
func (cpu *CPU) txs(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.SP = cpu.Reg.X
	return nil
}

// Transfer Y register to the Accumulator
func (cpu *CPU) tya(inst *Instruction, operand []byte, mem Memory) error {
	cpu.Reg.A = cpu.Reg.Y
	cpu.updateNZ(cpu.Reg.A)
	return nil
}

// Undefined 65C02 opcode: eats its cycles, nothing else.
func (cpu *CPU) unused(inst *Instruction, operand []byte, mem Memory) error {
	return nil
}
