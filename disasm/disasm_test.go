package disasm_test

import (
	"testing"

	"github.com/weirdfoo/My6502/cpu"
	"github.com/weirdfoo/My6502/disasm"
)

func disassemble(t *testing.T, model cpu.Model, addr uint16, code ...byte) (string, uint16) {
	t.Helper()
	mem := cpu.NewFlatMemory()
	mem.StoreBytes(addr, code)
	return disasm.Disassemble(cpu.GetInstructionSet(model), mem, addr)
}

func TestDisassemble(t *testing.T) {
	cases := []struct {
		code []byte
		exp  string
		next uint16
	}{
		{[]byte{0xa9, 0x99}, "LDA #$99", 0x1002},
		{[]byte{0xad, 0x34, 0x12}, "LDA $1234", 0x1003},
		{[]byte{0xbd, 0x00, 0x20}, "LDA $2000,X", 0x1003},
		{[]byte{0xb1, 0x80}, "LDA ($80),Y", 0x1002},
		{[]byte{0xa1, 0x40}, "LDA ($40,X)", 0x1002},
		{[]byte{0x6c, 0xff, 0x30}, "JMP ($30FF)", 0x1003},
		{[]byte{0x4a}, "LSR ", 0x1001},
	}
	for _, tc := range cases {
		line, next := disassemble(t, cpu.Original, 0x1000, tc.code...)
		if line != tc.exp {
			t.Errorf("disassembly incorrect. exp: %q, got: %q", tc.exp, line)
		}
		if next != tc.next {
			t.Errorf("next address incorrect for %q. exp: $%04X, got: $%04X",
				tc.exp, tc.next, next)
		}
	}
}

// Branch operands resolve to their absolute destination.
func TestDisassembleBranch(t *testing.T) {
	line, next := disassemble(t, cpu.Original, 0x1000, 0xf0, 0x04) // BEQ +4
	if line != "BEQ $1006" {
		t.Errorf("branch disassembly incorrect: %q", line)
	}
	if next != 0x1002 {
		t.Errorf("next address incorrect: $%04X", next)
	}

	line, _ = disassemble(t, cpu.Original, 0x1000, 0xd0, 0xfe) // BNE -2
	if line != "BNE $1000" {
		t.Errorf("backward branch disassembly incorrect: %q", line)
	}
}

// Unpopulated slots disassemble to a placeholder on the Original model
// but are defined no-ops on the 65C02.
func TestDisassembleUnknown(t *testing.T) {
	line, next := disassemble(t, cpu.Original, 0x1000, 0x02)
	if line != "??? $02" {
		t.Errorf("unknown opcode disassembly incorrect: %q", line)
	}
	if next != 0x1001 {
		t.Errorf("next address incorrect: $%04X", next)
	}

	line, next = disassemble(t, cpu.CMOS65C02, 0x1000, 0x02)
	if line != "??? $00" || next != 0x1002 {
		t.Errorf("65C02 filler disassembly incorrect: %q next=$%04X", line, next)
	}
}
