package cpu_test

import (
	"errors"
	"testing"

	"github.com/weirdfoo/My6502/cpu"
)

// Build a CPU and memory with the reset vector pointing at 'origin' and
// the machine code 'code' stored there. The CPU comes back already reset.
func loadCPU(model cpu.Model, origin uint16, code ...byte) (*cpu.CPU, *cpu.FlatMemory) {
	mem := cpu.NewFlatMemory()
	mem.StoreAddress(0xfffc, origin)
	mem.StoreBytes(origin, code)

	c := cpu.New(model)
	c.Reset(mem)
	return c, mem
}

func tickCPU(t *testing.T, c *cpu.CPU, mem *cpu.FlatMemory, ticks int) {
	t.Helper()
	for i := 0; i < ticks; i++ {
		if err := c.Tick(mem); err != nil {
			t.Fatalf("Tick failed: %v", err)
		}
	}
}

func stepCPU(t *testing.T, c *cpu.CPU, mem *cpu.FlatMemory, steps int) {
	t.Helper()
	for i := 0; i < steps; i++ {
		if err := c.Step(mem); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}
}

func expectPC(t *testing.T, c *cpu.CPU, pc uint16) {
	t.Helper()
	if c.Reg.PC != pc {
		t.Errorf("PC incorrect. exp: $%04X, got: $%04X", pc, c.Reg.PC)
	}
}

func expectCycles(t *testing.T, c *cpu.CPU, cycles uint64) {
	t.Helper()
	if c.Cycles() != cycles {
		t.Errorf("Cycles incorrect. exp: %d, got: %d", cycles, c.Cycles())
	}
}

func expectACC(t *testing.T, c *cpu.CPU, acc byte) {
	t.Helper()
	if c.Reg.A != acc {
		t.Errorf("Accumulator incorrect. exp: $%02X, got: $%02X", acc, c.Reg.A)
	}
}

func expectSP(t *testing.T, c *cpu.CPU, sp byte) {
	t.Helper()
	if c.Reg.SP != sp {
		t.Errorf("Stack pointer incorrect. exp: $%02X, got: $%02X", sp, c.Reg.SP)
	}
}

func expectMem(t *testing.T, mem *cpu.FlatMemory, addr uint16, v byte) {
	t.Helper()
	got := mem.LoadByte(addr)
	if got != v {
		t.Errorf("Memory at $%04X incorrect. exp: $%02X, got: $%02X", addr, v, got)
	}
}

func expectFlag(t *testing.T, name string, got, exp bool) {
	t.Helper()
	if got != exp {
		t.Errorf("Flag %s incorrect. exp: %v, got: %v", name, exp, got)
	}
}

func TestReset(t *testing.T) {
	c, _ := loadCPU(cpu.Original, 0x6000)

	expectPC(t, c, 0x6000)
	expectSP(t, c, 0xfd)
	expectCycles(t, c, 0)
	if c.Reg.P != cpu.InterruptDisableBit {
		t.Errorf("P incorrect after reset. exp: $%02X, got: $%02X",
			byte(cpu.InterruptDisableBit), c.Reg.P)
	}
	if c.Reg.A != 0 || c.Reg.X != 0 || c.Reg.Y != 0 {
		t.Errorf("Registers not zeroed after reset")
	}
	if c.CycleIndex() != 0 {
		t.Errorf("CycleIndex incorrect after reset. exp: 0, got: %d", c.CycleIndex())
	}
}

// Scenario: LDA #$99 from the reset vector takes exactly 2 ticks.
func TestImmediateLoad(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x6000, 0xa9, 0x99) // LDA #$99

	tickCPU(t, c, mem, 2)

	expectPC(t, c, 0x6002)
	expectACC(t, c, 0x99)
	expectCycles(t, c, 2)
	expectFlag(t, "N", c.Reg.Sign(), true)
	expectFlag(t, "Z", c.Reg.Zero(), false)
}

// The dispatcher advances exactly one step per tick, and side effects
// appear only on the retirement cycle.
func TestCycleGranularity(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x6000, 0xad, 0x00, 0x20) // LDA $2000
	mem.StoreByte(0x2000, 0x7f)

	tickCPU(t, c, mem, 1)
	if c.CycleIndex() != 1 {
		t.Errorf("CycleIndex after opcode fetch. exp: 1, got: %d", c.CycleIndex())
	}
	expectPC(t, c, 0x6001)

	tickCPU(t, c, mem, 1)
	if c.CycleIndex() != 2 {
		t.Errorf("CycleIndex after operand fetch. exp: 2, got: %d", c.CycleIndex())
	}
	expectPC(t, c, 0x6002)

	tickCPU(t, c, mem, 1)
	if c.CycleIndex() != 3 {
		t.Errorf("CycleIndex after second operand fetch. exp: 3, got: %d", c.CycleIndex())
	}
	expectPC(t, c, 0x6003)
	expectACC(t, c, 0x00) // not retired yet

	tickCPU(t, c, mem, 1)
	if c.CycleIndex() != 0 {
		t.Errorf("CycleIndex after retirement. exp: 0, got: %d", c.CycleIndex())
	}
	expectACC(t, c, 0x7f)
	expectCycles(t, c, 4)
}

func TestAccumulatorStores(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000,
		0xa9, 0x5e, // LDA #$5E
		0x85, 0x15, // STA $15
		0x8d, 0x00, 0x15) // STA $1500

	stepCPU(t, c, mem, 3)

	expectPC(t, c, 0x1007)
	expectCycles(t, c, 9)
	expectACC(t, c, 0x5e)
	expectMem(t, mem, 0x15, 0x5e)
	expectMem(t, mem, 0x1500, 0x5e)
}

// Scenario: a taken branch to a different page than the branch
// instruction costs two extra cycles.
func TestBranchTakenPageCross(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x80fe, 0xf0, 0x04) // BEQ +4
	c.Reg.SetZero(true)

	stepCPU(t, c, mem, 1)

	expectPC(t, c, 0x8104)
	expectCycles(t, c, 4)
}

func TestBranchTakenSamePage(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000, 0xd0, 0x04) // BNE +4
	c.Reg.SetZero(false)

	stepCPU(t, c, mem, 1)

	expectPC(t, c, 0x1006)
	expectCycles(t, c, 3)
}

func TestBranchNotTaken(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000, 0xf0, 0x04) // BEQ +4
	c.Reg.SetZero(false)

	stepCPU(t, c, mem, 1)

	expectPC(t, c, 0x1002)
	expectCycles(t, c, 2)
}

func TestBranchBackward(t *testing.T) {
	// BNE -3 loops back to the DEX until Z is set.
	c, mem := loadCPU(cpu.Original, 0x1000,
		0xa2, 0x02, // LDX #$02
		0xca,       // DEX
		0xd0, 0xfd) // BNE -3
	stepCPU(t, c, mem, 5) // LDX, DEX, BNE, DEX, BNE

	expectPC(t, c, 0x1005)
	expectFlag(t, "Z", c.Reg.Zero(), true)
}

// Scenario: the NMOS JMP (indirect) page-boundary bug, fixed on the
// 65C02.
func TestJmpIndirectBug(t *testing.T) {
	setup := func(model cpu.Model) (*cpu.CPU, *cpu.FlatMemory) {
		c, mem := loadCPU(model, 0x6000, 0x6c, 0xff, 0x30) // JMP ($30FF)
		mem.StoreByte(0x30ff, 0x40)
		mem.StoreByte(0x3000, 0x80)
		mem.StoreByte(0x3100, 0x50)
		return c, mem
	}

	c, mem := setup(cpu.Original)
	stepCPU(t, c, mem, 1)
	expectPC(t, c, 0x8040)
	expectCycles(t, c, 5)

	c, mem = setup(cpu.CMOS65C02)
	stepCPU(t, c, mem, 1)
	expectPC(t, c, 0x5040)
	expectCycles(t, c, 6)
}

func TestJmpAbsolute(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x6000, 0x4c, 0x34, 0x12) // JMP $1234

	stepCPU(t, c, mem, 1)

	expectPC(t, c, 0x1234)
	expectCycles(t, c, 3)
}

// Scenario: zero-page indexed addressing wraps within the zero page.
func TestZeroPageIndexedWrap(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x6000, 0xb5, 0xf5) // LDA $F5,X
	c.Reg.X = 0x10
	mem.StoreByte(0x05, 0x42)
	mem.StoreByte(0x105, 0x99) // must not be read

	stepCPU(t, c, mem, 1)

	expectACC(t, c, 0x42)
	expectCycles(t, c, 4)
}

// The two bytes of a zero-page indirect pointer are fetched modulo 256.
func TestIndirectPointerWrap(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x6000, 0xa1, 0xff) // LDA ($FF,X)
	c.Reg.X = 0
	mem.StoreByte(0xff, 0x34)
	mem.StoreByte(0x00, 0x12)
	mem.StoreByte(0x1234, 0x55)

	stepCPU(t, c, mem, 1)

	expectACC(t, c, 0x55)
}

// Scenario: BRK pushes PC+2 and P with the break bit set, then RTI
// restores them.
func TestBrkRti(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1234, 0x00) // BRK
	mem.StoreAddress(0xfffe, 0xabcd)
	mem.StoreByte(0xabcd, 0x40) // RTI
	c.Reg.P = 0x20

	stepCPU(t, c, mem, 1)

	expectPC(t, c, 0xabcd)
	expectCycles(t, c, 7)
	expectSP(t, c, 0xfa)
	expectMem(t, mem, 0x1fd, 0x12)
	expectMem(t, mem, 0x1fc, 0x36)
	expectMem(t, mem, 0x1fb, 0x30) // B=1 on the stacked copy
	expectFlag(t, "I", c.Reg.InterruptDisable(), true)

	stepCPU(t, c, mem, 1)

	expectPC(t, c, 0x1236)
	expectSP(t, c, 0xfd)
	if c.Reg.P != 0x20 {
		t.Errorf("P incorrect after RTI. exp: $20, got: $%02X", c.Reg.P)
	}
}

// Scenario: (indirect),Y crossing a page boundary costs an extra cycle.
func TestIndirectYPageCross(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x6000, 0xb1, 0x80) // LDA ($80),Y
	c.Reg.Y = 0x05
	mem.StoreByte(0x80, 0xfe)
	mem.StoreByte(0x81, 0x30)
	mem.StoreByte(0x3103, 0x77)

	stepCPU(t, c, mem, 1)

	expectACC(t, c, 0x77)
	expectCycles(t, c, 6)
}

func TestAbsoluteXPageCross(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000,
		0xa2, 0xff, // LDX #$FF
		0xbd, 0x02, 0x10) // LDA $1002,X
	mem.StoreByte(0x1101, 0x55)

	stepCPU(t, c, mem, 2)

	expectPC(t, c, 0x1005)
	expectCycles(t, c, 7) // 2 + 4 + 1 page cross
	expectACC(t, c, 0x55)
}

func TestStoreNoPageCrossPenalty(t *testing.T) {
	// STA abs,X always takes 5 cycles; no variable penalty.
	c, mem := loadCPU(cpu.Original, 0x1000, 0x9d, 0x80, 0x10) // STA $1080,X
	c.Reg.A = 0x33
	c.Reg.X = 0xff

	stepCPU(t, c, mem, 1)

	expectCycles(t, c, 5)
	expectMem(t, mem, 0x117f, 0x33)
}

func TestStack(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000,
		0xa9, 0x11, 0x48, // LDA #$11, PHA
		0xa9, 0x12, 0x48, // LDA #$12, PHA
		0xa9, 0x13, 0x48, // LDA #$13, PHA
		0x68, 0x8d, 0x00, 0x20, // PLA, STA $2000
		0x68, 0x8d, 0x01, 0x20, // PLA, STA $2001
		0x68, 0x8d, 0x02, 0x20) // PLA, STA $2002

	stepCPU(t, c, mem, 6)
	expectSP(t, c, 0xfa)
	expectACC(t, c, 0x13)
	expectMem(t, mem, 0x1fd, 0x11)
	expectMem(t, mem, 0x1fc, 0x12)
	expectMem(t, mem, 0x1fb, 0x13)

	stepCPU(t, c, mem, 6)
	expectACC(t, c, 0x11)
	expectSP(t, c, 0xfd)
	expectMem(t, mem, 0x2000, 0x13)
	expectMem(t, mem, 0x2001, 0x12)
	expectMem(t, mem, 0x2002, 0x11)
}

// Pushing with SP at $00 wraps to $FF; the stack never leaves page 1.
func TestStackWrap(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000,
		0xa2, 0x00, // LDX #$00
		0x9a,       // TXS
		0xa9, 0x77, // LDA #$77
		0x48) // PHA

	stepCPU(t, c, mem, 4)

	expectSP(t, c, 0xff)
	expectMem(t, mem, 0x100, 0x77)
}

// PHA/PLA round-trip restores A and sets Z and N from the pulled value.
func TestPhaPlaRoundTrip(t *testing.T) {
	for _, v := range []byte{0x00, 0x01, 0x7f, 0x80, 0xff} {
		c, mem := loadCPU(cpu.Original, 0x1000,
			0x48,       // PHA
			0xa9, 0x55, // LDA #$55
			0x68) // PLA
		c.Reg.A = v

		stepCPU(t, c, mem, 3)

		expectACC(t, c, v)
		expectFlag(t, "Z", c.Reg.Zero(), v == 0)
		expectFlag(t, "N", c.Reg.Sign(), v >= 0x80)
	}
}

// PHP/PLP round-trip restores P bitwise, except bits 4 and 5 follow the
// hardware rules: bit 5 reads 1 on the stacked copy, bit 4 reads 1 on a
// PHP push and is discarded on restore.
func TestPhpPlpRoundTrip(t *testing.T) {
	for _, v := range []byte{0x00, 0x01, 0x20, 0xc3, 0xff} {
		c, mem := loadCPU(cpu.Original, 0x1000, 0x08, 0x28) // PHP, PLP
		c.Reg.P = v

		stepCPU(t, c, mem, 1)
		stacked := mem.LoadByte(0x1fd)
		if stacked&cpu.ReservedBit == 0 {
			t.Errorf("stacked P bit 5 not set: $%02X", stacked)
		}
		if stacked&cpu.BreakBit == 0 {
			t.Errorf("stacked P bit 4 not set by PHP: $%02X", stacked)
		}

		stepCPU(t, c, mem, 1)
		exp := (v | cpu.ReservedBit) &^ byte(cpu.BreakBit)
		if c.Reg.P != exp {
			t.Errorf("P incorrect after PLP. exp: $%02X, got: $%02X", exp, c.Reg.P)
		}
	}
}

// JSR/RTS round-trip returns to the instruction after the JSR.
func TestJsrRts(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x4000,
		0x20, 0x00, 0x50, // JSR $5000
		0xa9, 0x01) // LDA #$01
	mem.StoreByte(0x5000, 0x60) // RTS

	stepCPU(t, c, mem, 1)
	expectPC(t, c, 0x5000)
	expectCycles(t, c, 6)
	expectSP(t, c, 0xfb)
	expectMem(t, mem, 0x1fd, 0x40) // return-1 high
	expectMem(t, mem, 0x1fc, 0x02) // return-1 low

	stepCPU(t, c, mem, 2)
	expectPC(t, c, 0x4005)
	expectACC(t, c, 0x01)
	expectSP(t, c, 0xfd)
}

func TestAdcBasics(t *testing.T) {
	cases := []struct {
		a, m  byte
		carry bool
		expA  byte
		expC  bool
		expV  bool
	}{
		{0x01, 0x01, false, 0x02, false, false},
		{0x01, 0x01, true, 0x03, false, false},
		{0xff, 0x01, false, 0x00, true, false},
		{0x7f, 0x01, false, 0x80, false, true},
		{0x80, 0xff, false, 0x7f, true, true},
		{0x80, 0x80, false, 0x00, true, true},
	}
	for _, tc := range cases {
		c, mem := loadCPU(cpu.Original, 0x1000, 0x69, tc.m) // ADC #m
		c.Reg.A = tc.a
		c.Reg.SetCarry(tc.carry)

		stepCPU(t, c, mem, 1)

		expectACC(t, c, tc.expA)
		expectFlag(t, "C", c.Reg.Carry(), tc.expC)
		expectFlag(t, "V", c.Reg.Overflow(), tc.expV)
		expectFlag(t, "Z", c.Reg.Zero(), tc.expA == 0)
		expectFlag(t, "N", c.Reg.Sign(), tc.expA >= 0x80)
	}
}

func TestSbcBasics(t *testing.T) {
	cases := []struct {
		a, m  byte
		carry bool
		expA  byte
		expC  bool
		expV  bool
	}{
		{0x05, 0x03, true, 0x02, true, false},
		{0x05, 0x05, true, 0x00, true, false},
		{0x05, 0x06, true, 0xff, false, false},
		{0x80, 0x01, true, 0x7f, true, true},
		{0x05, 0x03, false, 0x01, true, false},
	}
	for _, tc := range cases {
		c, mem := loadCPU(cpu.Original, 0x1000, 0xe9, tc.m) // SBC #m
		c.Reg.A = tc.a
		c.Reg.SetCarry(tc.carry)

		stepCPU(t, c, mem, 1)

		expectACC(t, c, tc.expA)
		expectFlag(t, "C", c.Reg.Carry(), tc.expC)
		expectFlag(t, "V", c.Reg.Overflow(), tc.expV)
	}
}

// ADC M followed by SBC M restores A and C whenever the addition's carry
// out complements the initial carry; the chained carry otherwise shifts
// the result by one, as on hardware.
func TestAdcSbcInverse(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000)

	for a := 0; a < 256; a++ {
		for m := 0; m < 256; m += 3 {
			for _, carry := range []bool{false, true} {
				sum := a + m
				if carry {
					sum++
				}
				carryOut := sum > 0xff
				if carryOut == carry {
					continue
				}

				mem.StoreBytes(0x1000, []byte{0x69, byte(m), 0xe9, byte(m)})
				c.SetPC(0x1000)
				c.Reg.A = byte(a)
				c.Reg.SetCarry(carry)

				stepCPU(t, c, mem, 2)

				if c.Reg.A != byte(a) {
					t.Fatalf("ADC/SBC $%02X did not restore A=$%02X (C=%v): got $%02X",
						m, a, carry, c.Reg.A)
				}
				if c.Reg.Carry() != carry {
					t.Fatalf("ADC/SBC $%02X did not restore C=%v for A=$%02X",
						m, carry, a)
				}
			}
		}
	}
}

// After CMP: Z iff A==M, C iff A>=M (unsigned).
func TestCmp(t *testing.T) {
	for _, tc := range []struct{ a, m byte }{
		{0x00, 0x00}, {0x01, 0x00}, {0x00, 0x01},
		{0x80, 0x7f}, {0x7f, 0x80}, {0xff, 0xff}, {0x40, 0xc0},
	} {
		c, mem := loadCPU(cpu.Original, 0x1000, 0xc9, tc.m) // CMP #m
		c.Reg.A = tc.a

		stepCPU(t, c, mem, 1)

		expectFlag(t, "Z", c.Reg.Zero(), tc.a == tc.m)
		expectFlag(t, "C", c.Reg.Carry(), tc.a >= tc.m)
		expectFlag(t, "N", c.Reg.Sign(), (tc.a-tc.m)&0x80 != 0)
	}
}

func TestBit(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000, 0x24, 0x10) // BIT $10
	c.Reg.A = 0x0f
	mem.StoreByte(0x10, 0xc0)

	stepCPU(t, c, mem, 1)

	expectFlag(t, "Z", c.Reg.Zero(), true)     // $0F & $C0 == 0
	expectFlag(t, "N", c.Reg.Sign(), true)     // bit 7 of operand
	expectFlag(t, "V", c.Reg.Overflow(), true) // bit 6 of operand
}

func TestShiftsAndRotates(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000,
		0xa9, 0x81, // LDA #$81
		0x0a,       // ASL -> A=$02, C=1
		0x2a,       // ROL -> A=$05, C=0
		0x4a,       // LSR -> A=$02, C=1
		0x6a) // ROR -> A=$81, C=0

	stepCPU(t, c, mem, 2)
	expectACC(t, c, 0x02)
	expectFlag(t, "C", c.Reg.Carry(), true)

	stepCPU(t, c, mem, 1)
	expectACC(t, c, 0x05)
	expectFlag(t, "C", c.Reg.Carry(), false)

	stepCPU(t, c, mem, 1)
	expectACC(t, c, 0x02)
	expectFlag(t, "C", c.Reg.Carry(), true)

	stepCPU(t, c, mem, 1)
	expectACC(t, c, 0x81)
	expectFlag(t, "C", c.Reg.Carry(), false)
}

func TestMemoryShift(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000, 0x06, 0x40) // ASL $40
	mem.StoreByte(0x40, 0xc1)

	stepCPU(t, c, mem, 1)

	expectMem(t, mem, 0x40, 0x82)
	expectFlag(t, "C", c.Reg.Carry(), true)
	expectFlag(t, "N", c.Reg.Sign(), true)
	expectCycles(t, c, 5)
}

func TestIncDec(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000,
		0xe6, 0x20, // INC $20
		0xc6, 0x21, // DEC $21
		0xe8,       // INX
		0x88) // DEY
	mem.StoreByte(0x20, 0xff)
	mem.StoreByte(0x21, 0x00)

	stepCPU(t, c, mem, 4)

	expectMem(t, mem, 0x20, 0x00)
	expectMem(t, mem, 0x21, 0xff)
	if c.Reg.X != 1 {
		t.Errorf("X incorrect. exp: 1, got: %d", c.Reg.X)
	}
	if c.Reg.Y != 0xff {
		t.Errorf("Y incorrect. exp: $FF, got: $%02X", c.Reg.Y)
	}
}

func TestTransfers(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000,
		0xa9, 0x80, // LDA #$80
		0xaa,       // TAX
		0xa8,       // TAY
		0xba,       // TSX
		0x8a) // TXA

	stepCPU(t, c, mem, 3)
	if c.Reg.X != 0x80 || c.Reg.Y != 0x80 {
		t.Errorf("TAX/TAY incorrect. X=$%02X Y=$%02X", c.Reg.X, c.Reg.Y)
	}
	expectFlag(t, "N", c.Reg.Sign(), true)

	stepCPU(t, c, mem, 2)
	expectACC(t, c, 0xfd) // TSX then TXA picks up SP
}

func TestFlagInstructions(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000,
		0x38,       // SEC
		0x18,       // CLC
		0x78,       // SEI
		0x58,       // CLI
		0xd8) // CLD

	stepCPU(t, c, mem, 1)
	expectFlag(t, "C", c.Reg.Carry(), true)
	stepCPU(t, c, mem, 1)
	expectFlag(t, "C", c.Reg.Carry(), false)
	stepCPU(t, c, mem, 1)
	expectFlag(t, "I", c.Reg.InterruptDisable(), true)
	stepCPU(t, c, mem, 1)
	expectFlag(t, "I", c.Reg.InterruptDisable(), false)
	stepCPU(t, c, mem, 1)
	expectFlag(t, "D", c.Reg.Decimal(), false)
}

func TestClvAfterOverflow(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000,
		0xa9, 0x7f, // LDA #$7F
		0x69, 0x01, // ADC #$01 -> V=1
		0xb8) // CLV

	stepCPU(t, c, mem, 2)
	expectFlag(t, "V", c.Reg.Overflow(), true)

	stepCPU(t, c, mem, 1)
	expectFlag(t, "V", c.Reg.Overflow(), false)
}

// SED is fatal: decimal arithmetic is unsupported.
func TestSedTrap(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000, 0xf8) // SED

	err := c.Step(mem)
	if !errors.Is(err, cpu.ErrDecimalMode) {
		t.Fatalf("SED error incorrect. exp: ErrDecimalMode, got: %v", err)
	}

	// The CPU stays halted.
	if err2 := c.Tick(mem); !errors.Is(err2, cpu.ErrDecimalMode) {
		t.Errorf("halted CPU ticked. err: %v", err2)
	}
	if c.Halted() == nil {
		t.Errorf("Halted() returned nil after fatal error")
	}
}

// ADC and SBC trap when the decimal flag is set.
func TestDecimalArithmeticTrap(t *testing.T) {
	for _, code := range [][]byte{
		{0x69, 0x01}, // ADC #$01
		{0xe9, 0x01}, // SBC #$01
	} {
		c, mem := loadCPU(cpu.Original, 0x1000, code...)
		c.Reg.SetDecimal(true)

		err := c.Step(mem)
		if !errors.Is(err, cpu.ErrDecimalMode) {
			t.Errorf("opcode $%02X with D=1. exp: ErrDecimalMode, got: %v", code[0], err)
		}
	}
}

// Fetching an unpopulated opcode slot is fatal on the Original model and
// reports the opcode and its address.
func TestInvalidOpcode(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x1000, 0x02)

	err := c.Tick(mem)
	var oerr *cpu.OpcodeError
	if !errors.As(err, &oerr) {
		t.Fatalf("error type incorrect. exp: *OpcodeError, got: %v", err)
	}
	if oerr.Opcode != 0x02 || oerr.Addr != 0x1000 {
		t.Errorf("OpcodeError contents incorrect: %v", oerr)
	}
}

// The same opcode is a predictable no-op on the 65C02.
func TestUnusedOpcode65C02(t *testing.T) {
	c, mem := loadCPU(cpu.CMOS65C02, 0x1000, 0x02, 0x00, 0xea) // (2-byte nop), NOP

	stepCPU(t, c, mem, 1)

	expectPC(t, c, 0x1002)
	if c.Halted() != nil {
		t.Fatalf("65C02 halted on a defined no-op: %v", c.Halted())
	}
}

// 65C02 extensions: BRA, STZ, PHX/PLX, INC A.
func TestCMOSExtensions(t *testing.T) {
	c, mem := loadCPU(cpu.CMOS65C02, 0x1000,
		0xa9, 0x41, // LDA #$41
		0x1a,       // INC A
		0x85, 0x40, // STA $40
		0x64, 0x40, // STZ $40
		0xda,       // PHX
		0x80, 0x01, // BRA +1
		0x00,       // (skipped)
		0xfa) // PLX

	c.Reg.X = 0x99
	stepCPU(t, c, mem, 6)
	expectMem(t, mem, 0x40, 0x00)
	expectPC(t, c, 0x100b)
	c.Reg.X = 0
	stepCPU(t, c, mem, 1)
	if c.Reg.X != 0x99 {
		t.Errorf("PLX incorrect. exp: $99, got: $%02X", c.Reg.X)
	}
	expectACC(t, c, 0x42)
}

// An IRQ is refused while the interrupt-disable flag is set.
func TestIrqMasked(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x5000, 0xea, 0xea) // NOP, NOP
	mem.StoreAddress(0xfffe, 0x8000)

	// I is set after reset.
	c.RequestInterrupt(cpu.IRQ)
	stepCPU(t, c, mem, 2)

	expectPC(t, c, 0x5002)
}

func TestIrqEntry(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x5000,
		0x58, // CLI
		0xea, // NOP
		0xea) // NOP
	mem.StoreAddress(0xfffe, 0x8000)
	mem.StoreByte(0x8000, 0xea)

	stepCPU(t, c, mem, 1) // CLI
	c.RequestInterrupt(cpu.IRQ)
	stepCPU(t, c, mem, 1) // services IRQ, then executes from the vector

	expectPC(t, c, 0x8001)
	expectSP(t, c, 0xfa)
	expectMem(t, mem, 0x1fd, 0x50) // pushed PC high
	expectMem(t, mem, 0x1fc, 0x01) // pushed PC low
	expectMem(t, mem, 0x1fb, 0x20) // pushed P: B=0, bit 5=1
	expectFlag(t, "I", c.Reg.InterruptDisable(), true)
}

func TestNmiEntry(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x5000, 0xea, 0xea) // NOP, NOP
	mem.StoreAddress(0xfffa, 0x9000)
	mem.StoreByte(0x9000, 0xea)

	// NMI is accepted even with I set.
	c.RequestInterrupt(cpu.NMI)
	stepCPU(t, c, mem, 1)

	expectPC(t, c, 0x9001)
	expectFlag(t, "I", c.Reg.InterruptDisable(), true)
}

// An instruction in flight is never preempted; the interrupt waits for
// the boundary.
func TestInterruptNotPreempting(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x5000, 0xad, 0x00, 0x20) // LDA $2000
	mem.StoreAddress(0xfffa, 0x9000)
	mem.StoreByte(0x2000, 0x11)

	tickCPU(t, c, mem, 2) // mid-instruction
	c.RequestInterrupt(cpu.NMI)
	tickCPU(t, c, mem, 2) // finish the LDA

	expectACC(t, c, 0x11)
	expectPC(t, c, 0x5003)

	tickCPU(t, c, mem, 1) // next boundary: NMI serviced, opcode fetched
	if (c.Reg.PC & 0xff00) != 0x9000 {
		t.Errorf("NMI not serviced at boundary. PC=$%04X", c.Reg.PC)
	}
	expectMem(t, mem, 0x1fd, 0x50)
	expectMem(t, mem, 0x1fc, 0x03)
}

func TestNmiOutranksIrq(t *testing.T) {
	c, mem := loadCPU(cpu.Original, 0x5000, 0x58, 0xea) // CLI, NOP
	mem.StoreAddress(0xfffa, 0x9000)
	mem.StoreAddress(0xfffe, 0x8000)
	mem.StoreByte(0x9000, 0xea)

	stepCPU(t, c, mem, 1) // CLI
	c.RequestInterrupt(cpu.IRQ)
	c.RequestInterrupt(cpu.NMI)
	stepCPU(t, c, mem, 1)

	if (c.Reg.PC & 0xff00) != 0x9000 {
		t.Errorf("NMI did not outrank IRQ. PC=$%04X", c.Reg.PC)
	}
}

// Universal invariant: PC advances by the instruction length for any
// instruction that neither branches, jumps, nor returns.
func TestPCAdvance(t *testing.T) {
	progs := []struct {
		code []byte
		size uint16
	}{
		{[]byte{0xea}, 1},             // NOP
		{[]byte{0xa9, 0x00}, 2},       // LDA #
		{[]byte{0xad, 0x00, 0x20}, 3}, // LDA abs
		{[]byte{0x48}, 1},             // PHA
		{[]byte{0xc9, 0x10}, 2},       // CMP #
	}
	for _, p := range progs {
		c, mem := loadCPU(cpu.Original, 0x1000, p.code...)
		stepCPU(t, c, mem, 1)
		expectPC(t, c, 0x1000+p.size)
	}
}
