package cpu_test

import (
	"testing"

	"github.com/weirdfoo/My6502/cpu"
)

func TestRegisterInit(t *testing.T) {
	var r cpu.Registers
	r.A, r.X, r.Y, r.SP, r.PC, r.P = 1, 2, 3, 4, 5, 0xff
	r.Init()

	if r.A != 0 || r.X != 0 || r.Y != 0 {
		t.Errorf("registers not zeroed: A=%d X=%d Y=%d", r.A, r.X, r.Y)
	}
	if r.SP != 0xfd {
		t.Errorf("SP incorrect. exp: $FD, got: $%02X", r.SP)
	}
	if r.PC != 0 {
		t.Errorf("PC incorrect. exp: 0, got: $%04X", r.PC)
	}
	if r.P != cpu.InterruptDisableBit {
		t.Errorf("P incorrect. exp: $%02X, got: $%02X", byte(cpu.InterruptDisableBit), r.P)
	}
}

func TestFlagAccessors(t *testing.T) {
	var r cpu.Registers

	checks := []struct {
		name string
		set  func(bool)
		get  func() bool
		bit  byte
	}{
		{"C", r.SetCarry, r.Carry, cpu.CarryBit},
		{"Z", r.SetZero, r.Zero, cpu.ZeroBit},
		{"I", r.SetInterruptDisable, r.InterruptDisable, cpu.InterruptDisableBit},
		{"D", r.SetDecimal, r.Decimal, cpu.DecimalBit},
		{"V", r.SetOverflow, r.Overflow, cpu.OverflowBit},
		{"N", r.SetSign, r.Sign, cpu.SignBit},
	}

	for _, ck := range checks {
		ck.set(true)
		if !ck.get() {
			t.Errorf("flag %s not set", ck.name)
		}
		if r.P&ck.bit == 0 {
			t.Errorf("flag %s did not set bit $%02X in P", ck.name, ck.bit)
		}
		ck.set(false)
		if ck.get() || r.P != 0 {
			t.Errorf("flag %s not cleared. P=$%02X", ck.name, r.P)
		}
	}
}

// The stacked status byte always reads bit 5 as 1, and bit 4 tracks the
// brk argument.
func TestSavePS(t *testing.T) {
	var r cpu.Registers
	r.P = cpu.CarryBit | cpu.SignBit

	if ps := r.SavePS(false); ps != cpu.CarryBit|cpu.SignBit|cpu.ReservedBit {
		t.Errorf("SavePS(false) incorrect: $%02X", ps)
	}
	if ps := r.SavePS(true); ps != cpu.CarryBit|cpu.SignBit|cpu.ReservedBit|cpu.BreakBit {
		t.Errorf("SavePS(true) incorrect: $%02X", ps)
	}

	// The break bit never leaks from the internal P.
	r.P = 0xff
	if ps := r.SavePS(false); ps&cpu.BreakBit != 0 {
		t.Errorf("break bit leaked: $%02X", ps)
	}
}

// Restoring a status byte discards bit 4 and forces bit 5.
func TestRestorePS(t *testing.T) {
	var r cpu.Registers

	r.RestorePS(0x30)
	if r.P != 0x20 {
		t.Errorf("RestorePS($30) incorrect: $%02X", r.P)
	}

	r.RestorePS(0xcf)
	if r.P != 0xef&^byte(cpu.BreakBit) {
		t.Errorf("RestorePS($CF) incorrect: $%02X", r.P)
	}
}
