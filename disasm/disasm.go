// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a 6502 instruction set
// disassembler.
package disasm

import (
	"fmt"

	"github.com/weirdfoo/My6502/cpu"
)

// Disassembler formatting for addressing modes
var modeFormat = map[cpu.Mode]string{
	cpu.IMM: "#$%s",
	cpu.IMP: "%s",
	cpu.REL: "$%s",
	cpu.ZPG: "$%s",
	cpu.ZPX: "$%s,X",
	cpu.ZPY: "$%s,Y",
	cpu.ABS: "$%s",
	cpu.ABX: "$%s,X",
	cpu.ABY: "$%s,Y",
	cpu.IND: "($%s)",
	cpu.IDX: "($%s,X)",
	cpu.IDY: "($%s),Y",
	cpu.ZPI: "($%s)",
	cpu.ACC: "%s",
}

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of the byte slice.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Disassemble the machine code in memory 'm' at address 'addr' using the
// instruction set 'set'. Return a 'line' string representing the
// disassembled instruction and a 'next' address that starts the following
// line of machine code.
func Disassemble(set *cpu.InstructionSet, m cpu.Memory, addr uint16) (line string, next uint16) {
	opcode := m.LoadByte(addr)
	inst := set.Lookup(opcode)
	if inst.Length == 0 {
		return fmt.Sprintf("??? $%02X", opcode), addr + 1
	}

	operand := make([]byte, inst.Length-1)
	m.LoadBytes(addr+1, operand)
	if inst.Mode == cpu.REL {
		// Convert relative offset to absolute address.
		braddr := int(addr) + int(inst.Length) + int(operand[0])
		if operand[0] > 0x7f {
			braddr -= 256
		}
		operand = []byte{byte(braddr & 0xff), byte(braddr >> 8)}
	}
	format := "%s " + modeFormat[inst.Mode]
	line = fmt.Sprintf(format, inst.Name, hexString(operand))
	next = addr + uint16(inst.Length)
	return line, next
}
