package host

import "github.com/beevik/cmd"

var cmds *cmd.Tree

// A parallel help index kept alongside the command tree, so the help
// command does not depend on the tree's internals.
type commandHelp struct {
	path  string
	brief string
	usage string
	descr string
}

var cmdHelps []commandHelp

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "my6502"})

	addCommand := func(t *cmd.Tree, path string, d cmd.CommandDescriptor) {
		t.AddCommand(d)
		cmdHelps = append(cmdHelps, commandHelp{
			path:  path,
			brief: d.Brief,
			usage: d.Usage,
			descr: d.Description,
		})
	}

	addCommand(root, "help", cmd.CommandDescriptor{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
		Data:        (*Host).cmdHelp,
	})

	// Breakpoint commands
	bp := root.AddSubtree(cmd.TreeDescriptor{Name: "breakpoint", Brief: "Breakpoint commands"})
	addCommand(bp, "breakpoint list", cmd.CommandDescriptor{
		Name:        "list",
		Brief:       "List breakpoints",
		Description: "List all current breakpoints.",
		Usage:       "breakpoint list",
		Data:        (*Host).cmdBreakpointList,
	})
	addCommand(bp, "breakpoint add", cmd.CommandDescriptor{
		Name:  "add",
		Brief: "Add a breakpoint",
		Description: "Add a breakpoint at the specified address." +
			" The breakpoint starts enabled.",
		Usage: "breakpoint add <address>",
		Data:  (*Host).cmdBreakpointAdd,
	})
	addCommand(bp, "breakpoint remove", cmd.CommandDescriptor{
		Name:        "remove",
		Brief:       "Remove a breakpoint",
		Description: "Remove a breakpoint at the specified address.",
		Usage:       "breakpoint remove <address>",
		Data:        (*Host).cmdBreakpointRemove,
	})
	addCommand(bp, "breakpoint enable", cmd.CommandDescriptor{
		Name:        "enable",
		Brief:       "Enable a breakpoint",
		Description: "Enable a previously added breakpoint.",
		Usage:       "breakpoint enable <address>",
		Data:        (*Host).cmdBreakpointEnable,
	})
	addCommand(bp, "breakpoint disable", cmd.CommandDescriptor{
		Name:  "disable",
		Brief: "Disable a breakpoint",
		Description: "Disable a previously added breakpoint. This" +
			" prevents the breakpoint from being hit when running the" +
			" CPU.",
		Usage: "breakpoint disable <address>",
		Data:  (*Host).cmdBreakpointDisable,
	})

	// Data breakpoint commands
	db := root.AddSubtree(cmd.TreeDescriptor{Name: "databreakpoint", Brief: "Data breakpoint commands"})
	addCommand(db, "databreakpoint list", cmd.CommandDescriptor{
		Name:        "list",
		Brief:       "List data breakpoints",
		Description: "List all current data breakpoints.",
		Usage:       "databreakpoint list",
		Data:        (*Host).cmdDataBreakpointList,
	})
	addCommand(db, "databreakpoint add", cmd.CommandDescriptor{
		Name:  "add",
		Brief: "Add a data breakpoint",
		Description: "Add a new data breakpoint at the specified" +
			" memory address. When the CPU stores data at this address, the" +
			" breakpoint will stop the CPU. Optionally, a byte" +
			" value may be specified, and the CPU will stop only" +
			" when this value is stored. The data breakpoint starts" +
			" enabled.",
		Usage: "databreakpoint add <address> [<value>]",
		Data:  (*Host).cmdDataBreakpointAdd,
	})
	addCommand(db, "databreakpoint remove", cmd.CommandDescriptor{
		Name:  "remove",
		Brief: "Remove a data breakpoint",
		Description: "Remove a previously added data breakpoint at" +
			" the specified memory address.",
		Usage: "databreakpoint remove <address>",
		Data:  (*Host).cmdDataBreakpointRemove,
	})
	addCommand(db, "databreakpoint enable", cmd.CommandDescriptor{
		Name:        "enable",
		Brief:       "Enable a data breakpoint",
		Description: "Enable a previously added data breakpoint.",
		Usage:       "databreakpoint enable <address>",
		Data:        (*Host).cmdDataBreakpointEnable,
	})
	addCommand(db, "databreakpoint disable", cmd.CommandDescriptor{
		Name:        "disable",
		Brief:       "Disable a data breakpoint",
		Description: "Disable a previously added data breakpoint.",
		Usage:       "databreakpoint disable <address>",
		Data:        (*Host).cmdDataBreakpointDisable,
	})

	addCommand(root, "disassemble", cmd.CommandDescriptor{
		Name:  "disassemble",
		Brief: "Disassemble code",
		Description: "Disassemble machine code starting at the requested" +
			" address. The number of instruction lines to disassemble may be" +
			" specified as an option. If no address is specified, the" +
			" disassembly continues from where the last disassembly left off.",
		Usage: "disassemble [<address>] [<lines>]",
		Data:  (*Host).cmdDisassemble,
	})
	addCommand(root, "interrupt", cmd.CommandDescriptor{
		Name:  "interrupt",
		Brief: "Request an interrupt",
		Description: "Latch an interrupt request of the given kind (irq or" +
			" nmi). The request is serviced at the next instruction" +
			" boundary. An irq request is ignored while the CPU's" +
			" interrupt-disable flag is set.",
		Usage: "interrupt irq|nmi",
		Data:  (*Host).cmdInterrupt,
	})
	addCommand(root, "load", cmd.CommandDescriptor{
		Name:  "load",
		Brief: "Load a binary file",
		Description: "Load the contents of a raw binary file into the" +
			" emulated system's memory at the specified address.",
		Usage: "load <filename> <address>",
		Data:  (*Host).cmdLoad,
	})

	// Memory commands
	me := root.AddSubtree(cmd.TreeDescriptor{Name: "memory", Brief: "Memory commands"})
	addCommand(me, "memory dump", cmd.CommandDescriptor{
		Name:  "dump",
		Brief: "Dump memory at address",
		Description: "Dump the contents of memory starting from the" +
			" specified address. The number of bytes to dump may be" +
			" specified as an option. If no address is specified, the" +
			" memory dump continues from where the last dump left off.",
		Usage: "memory dump [<address>] [<bytes>]",
		Data:  (*Host).cmdMemoryDump,
	})
	addCommand(me, "memory set", cmd.CommandDescriptor{
		Name:  "set",
		Brief: "Set memory at address",
		Description: "Set the contents of memory starting from the specified" +
			" address. The values to assign should be a series of" +
			" space-separated byte values.",
		Usage: "memory set <address> <byte> [<byte> ...]",
		Data:  (*Host).cmdMemorySet,
	})

	addCommand(root, "quit", cmd.CommandDescriptor{
		Name:        "quit",
		Brief:       "Quit the program",
		Description: "Quit the program.",
		Usage:       "quit",
		Data:        (*Host).cmdQuit,
	})
	addCommand(root, "register", cmd.CommandDescriptor{
		Name:  "register",
		Brief: "View or change register values",
		Description: "When used without arguments, this command displays the" +
			" current contents of the CPU registers. When used with arguments," +
			" this command changes the value of a register or one of the CPU's" +
			" status flags. Allowed register names include A, X, Y, PC and SP." +
			" Allowed status flag names include N (Sign), Z (Zero), C (Carry)," +
			" I (InterruptDisable), D (Decimal) and V (Overflow).",
		Usage: "register [<name> <value>]",
		Data:  (*Host).cmdRegister,
	})
	addCommand(root, "reset", cmd.CommandDescriptor{
		Name:  "reset",
		Brief: "Reset the CPU",
		Description: "Reset the CPU: reload the program counter from the" +
			" reset vector at $FFFC, reinitialize the stack pointer and" +
			" flags, and discard any partially decoded instruction.",
		Usage: "reset",
		Data:  (*Host).cmdReset,
	})
	addCommand(root, "run", cmd.CommandDescriptor{
		Name:  "run",
		Brief: "Run the CPU",
		Description: "Run the CPU at the configured clock frequency until a" +
			" breakpoint is hit, the CPU halts on a fatal error, or the" +
			" user types Ctrl-C. An optional start address may be given.",
		Usage: "run [<address>]",
		Data:  (*Host).cmdRun,
	})
	addCommand(root, "set", cmd.CommandDescriptor{
		Name:  "set",
		Brief: "Set a configuration variable",
		Description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		Usage: "set [<var> <value>]",
		Data:  (*Host).cmdSet,
	})
	addCommand(root, "step", cmd.CommandDescriptor{
		Name:  "step",
		Brief: "Step by instruction",
		Description: "Step the CPU by one instruction, ticking it through" +
			" all of the instruction's cycles. The number of instructions to" +
			" step may be specified as an option.",
		Usage: "step [<count>]",
		Data:  (*Host).cmdStep,
	})
	addCommand(root, "table", cmd.CommandDescriptor{
		Name:  "table",
		Brief: "Display opcode coverage",
		Description: "Display a 16x16 matrix marking which of the 256 opcode" +
			" slots are populated for the emulated CPU model.",
		Usage: "table",
		Data:  (*Host).cmdTable,
	})
	addCommand(root, "tick", cmd.CommandDescriptor{
		Name:  "tick",
		Brief: "Step by cycle",
		Description: "Advance the CPU by a single clock cycle: an opcode" +
			" fetch, an operand fetch, or one cycle of execution. The number" +
			" of cycles may be specified as an option.",
		Usage: "tick [<count>]",
		Data:  (*Host).cmdTick,
	})

	// Add command shortcuts.
	root.AddShortcut("b", "breakpoint")
	root.AddShortcut("ba", "breakpoint add")
	root.AddShortcut("br", "breakpoint remove")
	root.AddShortcut("bl", "breakpoint list")
	root.AddShortcut("be", "breakpoint enable")
	root.AddShortcut("bd", "breakpoint disable")
	root.AddShortcut("db", "databreakpoint")
	root.AddShortcut("dbl", "databreakpoint list")
	root.AddShortcut("dba", "databreakpoint add")
	root.AddShortcut("dbr", "databreakpoint remove")
	root.AddShortcut("dbe", "databreakpoint enable")
	root.AddShortcut("dbd", "databreakpoint disable")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("i", "interrupt")
	root.AddShortcut("m", "memory dump")
	root.AddShortcut("ms", "memory set")
	root.AddShortcut("r", "register")
	root.AddShortcut("s", "step")
	root.AddShortcut("t", "tick")
	root.AddShortcut("?", "help")
	root.AddShortcut(".", "register")

	cmds = root
}
