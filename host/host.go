// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive monitor around the emulated
// 6502: a 64K memory, a cycle-stepped CPU, a built-in debugger, a
// disassembler, and a command-line interface to drive them.
//
// Within the host it is possible to load machine code into memory, step
// through it by instruction or by single clock cycle, run it paced at a
// configurable clock frequency, set address and data breakpoints, request
// interrupts, dump memory, disassemble code, and inspect or modify CPU
// registers and memory.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/beevik/cmd"

	"github.com/weirdfoo/My6502/clock"
	"github.com/weirdfoo/My6502/cpu"
	"github.com/weirdfoo/My6502/disasm"
)

type state byte

const (
	stateProcessingCommands state = iota
	stateRunning
	stateBreakpoint
)

// A Host represents a fully emulated 6502 system: 64K of memory, a
// cycle-stepped CPU, a built-in debugger, and other useful tools.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	mem         *cpu.FlatMemory
	cpu         *cpu.CPU
	debugger    *cpu.Debugger
	lastCmd     *cmd.Selection
	state       state
	settings    *settings
}

// New creates a new 6502 host environment emulating the requested CPU
// model.
func New(model cpu.Model) *Host {
	h := &Host{
		state:    stateProcessingCommands,
		settings: newSettings(),
	}

	// Create the emulated memory and CPU.
	h.mem = cpu.NewFlatMemory()
	h.cpu = cpu.New(model)
	h.cpu.Reset(h.mem)

	// Create a CPU debugger and attach it to the CPU.
	h.debugger = cpu.NewDebugger(newDebugHandler(h))
	h.cpu.AttachDebugger(h.debugger)

	return h
}

// CPU returns the host's emulated CPU.
func (h *Host) CPU() *cpu.CPU {
	return h.cpu
}

// Mem returns the host's emulated memory.
func (h *Host) Mem() *cpu.FlatMemory {
	return h.mem
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed
// while the host waits for the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	if interactive {
		h.println()
		h.displayPC()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c cmd.Selection
		if line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case errors.Is(err, cmd.ErrNotFound):
				h.println("Command not found.")
				continue
			case errors.Is(err, cmd.ErrAmbiguous):
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		h.lastCmd = &c

		handler := c.Command.Data.(func(*Host, cmd.Selection) error)
		err = handler(h, c)
		if err != nil {
			break
		}
	}

	h.flush()
}

// Break interrupts a running CPU.
func (h *Host) Break() {
	h.println()

	if h.state == stateRunning {
		h.displayPC()
	}
	if h.state == stateProcessingCommands {
		h.prompt()
	}
	h.state = stateProcessingCommands
}

func (h *Host) print(args ...interface{}) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...interface{}) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...interface{}) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

// Display a disassembly of the instruction at the program counter,
// followed by the register contents and cycle counter.
func (h *Host) displayPC() {
	if h.interactive {
		h.println(h.disassembleCurrent())
	}
}

func (h *Host) disassembleCurrent() string {
	line, next := disasm.Disassemble(h.cpu.InstSet, h.mem, h.cpu.Reg.PC)

	b := make([]byte, next-h.cpu.Reg.PC)
	h.mem.LoadBytes(h.cpu.Reg.PC, b)

	return fmt.Sprintf("%04X- %-8s  %-14s %s C=%d",
		h.cpu.Reg.PC, codeString(b), line, h.registerString(), h.cpu.Cycles())
}

// Format the register file: A, X, Y, SP, and the status flags with set
// flags in upper case.
func (h *Host) registerString() string {
	r := &h.cpu.Reg
	flags := []byte("nv-bdizc")
	for i, bit := 0, byte(0x80); i < 8; i, bit = i+1, bit>>1 {
		if (r.P&bit) != 0 && flags[i] != '-' {
			flags[i] = flags[i] - 'a' + 'A'
		}
	}
	return fmt.Sprintf("A=%02X X=%02X Y=%02X SP=%02X P=%s", r.A, r.X, r.Y, r.SP, flags)
}

func (h *Host) displayHelpText(path string) {
	for _, ch := range cmdHelps {
		if ch.path == path {
			h.printf("Syntax: %s\n", ch.usage)
			return
		}
	}
}

func (h *Host) onBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {
	h.state = stateBreakpoint
	h.printf("Breakpoint hit at $%04X.\n", b.Address)
	h.displayPC()
}

func (h *Host) onDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint) {
	h.state = stateBreakpoint
	h.printf("Data breakpoint hit on address $%04X.\n", b.Address)
	h.displayPC()
}

func (h *Host) parseAddr(s string) (uint16, error) {
	switch s {
	case ".":
		return h.cpu.Reg.PC, nil
	default:
		return parseNum(s)
	}
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	switch {
	case len(c.Args) == 0:
		h.println("Commands:")
		for _, ch := range cmdHelps {
			if ch.brief != "" && !strings.Contains(ch.path, " ") {
				h.printf("    %-16s %s\n", ch.path, ch.brief)
			}
		}
		h.println("\nSubcommands:")
		for _, ch := range cmdHelps {
			if ch.brief != "" && strings.Contains(ch.path, " ") {
				h.printf("    %-26s %s\n", ch.path, ch.brief)
			}
		}
	default:
		name := strings.Join(c.Args, " ")
		for _, ch := range cmdHelps {
			if ch.path == name {
				if ch.usage != "" {
					h.printf("Syntax: %s\n\n", ch.usage)
				}
				switch {
				case ch.descr != "":
					h.printf("Description:\n   %s\n\n", ch.descr)
				case ch.brief != "":
					h.printf("Description:\n   %s.\n\n", ch.brief)
				}
				return nil
			}
		}
		h.printf("No help found for '%s'.\n", name)
	}
	return nil
}

func (h *Host) cmdBreakpointList(c cmd.Selection) error {
	h.println("Addr  Enabled")
	h.println("----- -------")
	for _, b := range h.debugger.GetBreakpoints() {
		h.printf("$%04X %v\n", b.Address, !b.Disabled)
	}
	return nil
}

func (h *Host) cmdBreakpointAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText("breakpoint add")
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.debugger.AddBreakpoint(addr)
	h.printf("Breakpoint added at $%04X.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText("breakpoint remove")
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if h.debugger.GetBreakpoint(addr) == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}

	h.debugger.RemoveBreakpoint(addr)
	h.printf("Breakpoint at $%04X removed.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointEnable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText("breakpoint enable")
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}

	b.Disabled = false
	h.printf("Breakpoint at $%04X enabled.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointDisable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText("breakpoint disable")
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}

	b.Disabled = true
	h.printf("Breakpoint at $%04X disabled.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointList(c cmd.Selection) error {
	h.println("Addr  Enabled  Value")
	h.println("----- -------  -----")
	for _, b := range h.debugger.GetDataBreakpoints() {
		if b.Conditional {
			h.printf("$%04X %-5v    $%02X\n", b.Address, !b.Disabled, b.Value)
		} else {
			h.printf("$%04X %-5v    <none>\n", b.Address, !b.Disabled)
		}
	}
	return nil
}

func (h *Host) cmdDataBreakpointAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText("databreakpoint add")
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if len(c.Args) > 1 {
		value, err := parseNum(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.debugger.AddConditionalDataBreakpoint(addr, byte(value))
		h.printf("Conditional data breakpoint added at $%04X for value $%02X.\n", addr, value)
	} else {
		h.debugger.AddDataBreakpoint(addr)
		h.printf("Data breakpoint added at $%04X.\n", addr)
	}

	return nil
}

func (h *Host) cmdDataBreakpointRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText("databreakpoint remove")
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if h.debugger.GetDataBreakpoint(addr) == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}

	h.debugger.RemoveDataBreakpoint(addr)
	h.printf("Data breakpoint at $%04X removed.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointEnable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText("databreakpoint enable")
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}

	b.Disabled = false
	h.printf("Data breakpoint at $%04X enabled.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointDisable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText("databreakpoint disable")
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}

	b.Disabled = true
	h.printf("Data breakpoint at $%04X disabled.\n", addr)
	return nil
}

func (h *Host) cmdDisassemble(c cmd.Selection) error {
	if len(c.Args) == 0 {
		c.Args = []string{"$"}
	}

	var addr uint16
	switch c.Args[0] {
	case "$":
		addr = h.settings.NextDisasmAddr
		if addr == 0 {
			addr = h.cpu.Reg.PC
		}
	default:
		a, err := h.parseAddr(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	lines := h.settings.DisasmLinesToDisplay
	if len(c.Args) > 1 {
		l, err := parseNum(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = int(l)
	}

	for i := 0; i < lines; i++ {
		d, next := disasm.Disassemble(h.cpu.InstSet, h.mem, addr)

		b := make([]byte, next-addr)
		h.mem.LoadBytes(addr, b)

		h.printf("%04X- %-8s  %s\n", addr, codeString(b), d)
		addr = next
	}

	h.settings.NextDisasmAddr = addr
	h.lastCmd.Args = []string{"$", fmt.Sprintf("%d", lines)}
	return nil
}

func (h *Host) cmdInterrupt(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText("interrupt")
		return nil
	}

	switch strings.ToLower(c.Args[0]) {
	case "irq":
		h.cpu.RequestInterrupt(cpu.IRQ)
		h.println("IRQ requested.")
	case "nmi":
		h.cpu.RequestInterrupt(cpu.NMI)
		h.println("NMI requested.")
	default:
		h.printf("Unknown interrupt kind '%s'.\n", c.Args[0])
	}
	return nil
}

func (h *Host) cmdLoad(c cmd.Selection) error {
	if len(c.Args) < 2 {
		h.displayHelpText("load")
		return nil
	}

	filename := c.Args[0]
	addr, err := h.parseAddr(c.Args[1])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b, err := os.ReadFile(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filename, err)
		return nil
	}
	if len(b) > 0x10000-int(addr) {
		h.printf("File '%s' does not fit at $%04X.\n", filename, addr)
		return nil
	}

	h.mem.StoreBytes(addr, b)
	h.printf("Loaded '%s' to $%04X..$%04X.\n", filename, addr, int(addr)+len(b)-1)
	return nil
}

func (h *Host) cmdMemoryDump(c cmd.Selection) error {
	if len(c.Args) == 0 {
		c.Args = []string{"$"}
	}

	var addr uint16
	switch c.Args[0] {
	case "$":
		addr = h.settings.NextMemDumpAddr
		if addr == 0 {
			addr = h.cpu.Reg.PC
		}
	default:
		a, err := h.parseAddr(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	bytes := uint16(h.settings.MemDumpBytes)
	if len(c.Args) >= 2 {
		var err error
		bytes, err = parseNum(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	h.dumpMemory(addr, bytes)

	h.settings.NextMemDumpAddr = addr + bytes
	h.lastCmd.Args = []string{"$", fmt.Sprintf("%d", bytes)}
	return nil
}

// Dump 'bytes' bytes of memory starting at 'addr0', 16 to a line with a
// printable-character gutter. The dump clamps at the end of the address
// space rather than wrapping.
func (h *Host) dumpMemory(addr0 uint16, bytes uint16) {
	if bytes == 0 {
		return
	}

	addr1 := addr0 + bytes - 1
	if addr1 < addr0 {
		addr1 = 0xffff
	}

	buf := []byte("0000-   00 00 00 00 00 00 00 00  00 00 00 00 00 00 00 00   0123456789012345")

	for base := addr0 &^ 15; ; base += 16 {
		addrToBuf(base, buf[0:4])
		for i := 0; i < 16; i++ {
			j1 := 8 + 3*i
			if i >= 8 {
				j1++
			}
			j2 := 59 + i

			a := base + uint16(i)
			if a >= addr0 && a <= addr1 {
				m := h.mem.LoadByte(a)
				byteToBuf(m, buf[j1:j1+2])
				buf[j2] = toPrintableChar(m)
			} else {
				buf[j1] = ' '
				buf[j1+1] = ' '
				buf[j2] = ' '
			}
		}
		h.println(string(buf))

		next := base + 16
		if next == 0 || next > addr1 {
			break
		}
	}
}

func (h *Host) cmdMemorySet(c cmd.Selection) error {
	if len(c.Args) < 2 {
		h.displayHelpText("memory set")
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	for i, s := range c.Args[1:] {
		v, err := parseNum(s)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.mem.StoreByte(addr+uint16(i), byte(v))
	}

	h.printf("Set %d bytes at $%04X.\n", len(c.Args)-1, addr)
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errors.New("exiting program")
}

func (h *Host) cmdRegister(c cmd.Selection) error {
	if len(c.Args) < 2 {
		h.println(h.disassembleCurrent())
		return nil
	}

	key := strings.ToLower(c.Args[0])
	v, err := parseNum(c.Args[1])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	r := &h.cpu.Reg
	sz := 1
	switch key {
	case "a":
		r.A = byte(v)
	case "x":
		r.X = byte(v)
	case "y":
		r.Y = byte(v)
	case "sp":
		r.SP = byte(v)
	case ".", "pc":
		key = "pc"
		h.cpu.SetPC(v)
		sz = 2
	case "n", "sign":
		r.SetSign(intToBool(int(v)))
		sz = 0
	case "z", "zero":
		r.SetZero(intToBool(int(v)))
		sz = 0
	case "c", "carry":
		r.SetCarry(intToBool(int(v)))
		sz = 0
	case "i", "interruptdisable":
		r.SetInterruptDisable(intToBool(int(v)))
		sz = 0
	case "d", "decimal":
		r.SetDecimal(intToBool(int(v)))
		sz = 0
	case "v", "overflow":
		r.SetOverflow(intToBool(int(v)))
		sz = 0
	default:
		h.printf("Unknown register '%s'.\n", c.Args[0])
		return nil
	}

	switch sz {
	case 0:
		h.printf("Flag %s set to %v.\n", strings.ToUpper(key), intToBool(int(v)))
	case 1:
		h.printf("Register %s set to $%02X.\n", strings.ToUpper(key), byte(v))
	case 2:
		h.printf("Register %s set to $%04X.\n", strings.ToUpper(key), v)
	}

	h.println(h.disassembleCurrent())
	return nil
}

func (h *Host) cmdReset(c cmd.Selection) error {
	h.cpu.Reset(h.mem)
	h.printf("CPU reset. PC=$%04X.\n", h.cpu.Reg.PC)
	h.displayPC()
	return nil
}

func (h *Host) cmdRun(c cmd.Selection) error {
	if len(c.Args) > 0 {
		pc, err := h.parseAddr(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.cpu.SetPC(pc)
	}

	h.printf("Running from $%04X at %d Hz. Press ctrl-C to break.\n",
		h.cpu.Reg.PC, h.settings.ClockHz)

	clk := clock.New(uint64(h.settings.ClockHz))
	clk.Start()

	h.state = stateRunning
	for h.state == stateRunning {
		clk.WaitForNextCycle()
		if err := h.cpu.Tick(h.mem); err != nil {
			h.printf("CPU halted: %v\n", err)
			break
		}
		clk.NextCycle()
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayHelpText("set")

	default:
		key, value := strings.ToLower(c.Args[0]), strings.Join(c.Args[1:], " ")

		var err error
		if h.settings.Kind(key) == reflect.Invalid {
			err = fmt.Errorf("setting '%s' not found", key)
		} else {
			var v uint16
			v, err = parseNum(value)
			if err == nil {
				err = h.settings.Set(key, int(v))
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

func (h *Host) cmdStep(c cmd.Selection) error {
	count := 1
	if len(c.Args) > 0 {
		n, err := parseNum(c.Args[0])
		if err == nil {
			count = int(n)
		}
	}

	h.state = stateRunning
	for i := count - 1; i >= 0 && h.state == stateRunning; i-- {
		if err := h.cpu.Step(h.mem); err != nil {
			h.printf("CPU halted: %v\n", err)
			break
		}
		switch {
		case i == h.settings.StepLinesToDisplay:
			h.println("...")
		case i < h.settings.StepLinesToDisplay:
			h.displayPC()
		}
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdTable(c cmd.Selection) error {
	h.println("   0 1 2 3 4 5 6 7 8 9 A B C D E F")
	for hi := 0; hi < 16; hi++ {
		row := make([]byte, 0, 3+2*16)
		row = append(row, hexString[hi], ':', ' ')
		for lo := 0; lo < 16; lo++ {
			inst := h.cpu.InstSet.Lookup(byte(hi<<4 | lo))
			if inst.Length > 0 {
				row = append(row, 'X', ' ')
			} else {
				row = append(row, '.', ' ')
			}
		}
		h.println(string(row))
	}
	return nil
}

func (h *Host) cmdTick(c cmd.Selection) error {
	count := 1
	if len(c.Args) > 0 {
		n, err := parseNum(c.Args[0])
		if err == nil {
			count = int(n)
		}
	}

	for i := 0; i < count; i++ {
		if err := h.cpu.Tick(h.mem); err != nil {
			h.printf("CPU halted: %v\n", err)
			break
		}
	}

	h.printf("Cycle %d; instruction cycle %d.\n", h.cpu.Cycles(), h.cpu.CycleIndex())
	h.displayPC()
	return nil
}
