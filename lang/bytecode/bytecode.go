// Package bytecode defines Reko's compiled program representation: a
// two-word (opcode + optional immediate), 64-bit fixed-width instruction
// encoding, grouped into per-function code arrays, plus a disassembler.
// The opcode set and program shape are grounded on
// original_source/src/compiler.rs's emit_* helpers and Program struct, with
// the disassembly textual style grounded on
// _examples/mna-nenuphar/lang/compiler/asm.go's Dasm.
package bytecode

import (
	"fmt"
	"strings"
)

// Opcode identifies one VM instruction. Opcodes with an immediate operand
// occupy two consecutive uint64 words in a Function's Code; all others
// occupy one.
type Opcode uint8

const (
	NoOp Opcode = iota

	PushBool
	PushInt
	PushStr

	Dup
	Over
	Drop
	Swap

	PrintBool
	PrintInt
	PrintStr
	PrintPtr

	Call
	Return

	Add
	Subtract
	Multiply
	Divide

	And
	Or
	Not

	Eq
	Neq
	Lt
	Gt

	Assign
	Load
	LoadStr

	Jump
	JumpTrue
	JumpFalse

	Bind
	Unbind
	PushBind
	PushVar
	MakeVar
)

var opcodeNames = [...]string{
	NoOp:      "NoOp",
	PushBool:  "PushBool",
	PushInt:   "PushInt",
	PushStr:   "PushStr",
	Dup:       "Dup",
	Over:      "Over",
	Drop:      "Drop",
	Swap:      "Swap",
	PrintBool: "PrintBool",
	PrintInt:  "PrintInt",
	PrintStr:  "PrintStr",
	PrintPtr:  "PrintPtr",
	Call:      "Call",
	Return:    "Return",
	Add:       "Add",
	Subtract:  "Subtract",
	Multiply:  "Multiply",
	Divide:    "Divide",
	And:       "And",
	Or:        "Or",
	Not:       "Not",
	Eq:        "Eq",
	Neq:       "Neq",
	Lt:        "Lt",
	Gt:        "Gt",
	Assign:    "Assign",
	Load:      "Load",
	LoadStr:   "LoadStr",
	Jump:      "Jump",
	JumpTrue:  "JumpTrue",
	JumpFalse: "JumpFalse",
	Bind:      "Bind",
	Unbind:    "Unbind",
	PushBind:  "PushBind",
	PushVar:   "PushVar",
	MakeVar:   "MakeVar",
}

func (op Opcode) String() string {
	if int(op) >= 0 && int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// HasImmediate reports whether op is followed by one uint64 immediate word.
func HasImmediate(op Opcode) bool {
	switch op {
	case PushBool, PushInt, PushStr, Call, Jump, JumpTrue, JumpFalse,
		Bind, Unbind, PushBind, PushVar, MakeVar:
		return true
	default:
		return false
	}
}

// Function is one compiled function: its name (for disassembly and
// tracebacks) and its flat instruction stream.
type Function struct {
	Name string
	Code []uint64
}

// Program is a whole compiled Reko program, ready for lang/vm. Function 0 is
// always the global initializer (spec.md §5.2): it runs once before
// EntryIndex, has no Return, and terminates when its instruction pointer
// reaches the end of its Code.
type Program struct {
	EntryIndex    int
	VariableCount int
	Functions     []*Function
	Strings       []string
}

// NewProgram returns a Program pre-populated with the function-0 global
// initializer, matching original_source/src/compiler.rs's Compiler::new.
func NewProgram() *Program {
	return &Program{
		Functions: []*Function{{Name: "<init>"}},
	}
}

// AddFunction appends an empty function and returns its index.
func (p *Program) AddFunction(name string) int {
	p.Functions = append(p.Functions, &Function{Name: name})
	return len(p.Functions) - 1
}

// AddStringConstant interns s into the program's string table, returning its
// index. Repeated identical strings share one slot.
func (p *Program) AddStringConstant(s string) int {
	for i, existing := range p.Strings {
		if existing == s {
			return i
		}
	}
	p.Strings = append(p.Strings, s)
	return len(p.Strings) - 1
}

// Disassemble renders p as human-readable text, one line per instruction,
// grouped by function. The format is for inspection (the `disasm` CLI
// subcommand) and is not meant to be reassembled.
func Disassemble(p *Program) string {
	var b strings.Builder
	fmt.Fprintf(&b, "program: entry=%d variables=%d strings=%d\n", p.EntryIndex, p.VariableCount, len(p.Strings))
	for i, s := range p.Strings {
		fmt.Fprintf(&b, "  string %d = %q\n", i, s)
	}
	for fi, fn := range p.Functions {
		fmt.Fprintf(&b, "function %d %s\n", fi, fn.Name)
		code := fn.Code
		for ip := 0; ip < len(code); {
			op := Opcode(code[ip])
			if HasImmediate(op) {
				fmt.Fprintf(&b, "  %6d  %-10s %d\n", ip, op, int64(code[ip+1]))
				ip += 2
			} else {
				fmt.Fprintf(&b, "  %6d  %-10s\n", ip, op)
				ip++
			}
		}
	}
	return b.String()
}
