// Package vm executes a compiled lang/bytecode.Program. The execution model
// is grounded on original_source/src/evaluator.rs's Evaluator: a data stack,
// a return stack of (instruction pointer, function) frames, a flat bind
// stack, and a dense variable-cell array. Function 0 (the global
// initializer) runs to completion by falling off the end of its code before
// the program's entry function starts, per spec.md §5.2; the main loop then
// runs until a Return executes with an empty return stack.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/rekolang/reko/lang/bytecode"
)

// Sentinel error kinds, per spec.md §7.
var (
	// ErrStackUnderflow: an instruction popped more values than were present.
	ErrStackUnderflow = errors.New("vm: stack underflow")
	// ErrDivideByZero: Divide executed with a zero divisor.
	ErrDivideByZero = errors.New("vm: divide by zero")
	// ErrStepLimitExceeded: the VM executed MaxSteps instructions without
	// halting.
	ErrStepLimitExceeded = errors.New("vm: step limit exceeded")
	// ErrInvalidProgram: the program references an out-of-range function,
	// string, variable slot or bind-stack index, contains an unknown opcode,
	// or hands PrintStr a string that is not valid UTF-8.
	ErrInvalidProgram = errors.New("vm: invalid program")
)

// Value holds one of the four runtime value shapes: bool, int64,
// string, and ptr (a variable-cell index). The Kind implied by context
// always matches how the checker typed the corresponding stack slot, so
// Value itself carries no explicit tag (mirroring evaluator.rs's untagged
// Value enum, where the interpreter never needs to inspect a Value's kind
// at runtime because the type checker already proved it).
type Value struct {
	Bool bool
	Int  int64
	Str  string
	Ptr  int
}

type frame struct {
	ip int
	fn int
}

// VM is one execution of a Program. Stdout receives PrintBool/PrintInt/
// PrintStr/PrintPtr output; MaxSteps, if non-zero, bounds total instruction
// count (spec.md §5.3's non-goal "no infinite-loop detection" still allows
// an optional caller-supplied fuel).
type VM struct {
	Stdout   io.Writer
	MaxSteps int64
	// Trace, if set, receives one line per executed instruction before it
	// runs: "fn:ip opcode [imm]".
	Trace io.Writer
	// StackWarnDepth, if non-zero, makes the VM write one diagnostic line to
	// Warn the first time the data stack crosses this depth. It is purely
	// informational and never halts execution.
	StackWarnDepth int
	Warn           io.Writer

	prog *bytecode.Program

	data      []Value
	ret       []frame
	bindStack []Value
	variables []Value

	fn     int
	ip     int
	steps  int64
	warned bool
}

// New returns a VM ready to Run prog.
func New(prog *bytecode.Program, stdout io.Writer) *VM {
	return &VM{
		Stdout:    stdout,
		prog:      prog,
		variables: make([]Value, prog.VariableCount),
	}
}

// Run executes the global initializer (function 0) to completion, then the
// program's entry function, until the call stack empties. It returns ctx's
// error if ctx is canceled between instructions.
func (m *VM) Run(ctx context.Context) error {
	if err := m.runFunctionToEnd(ctx, 0); err != nil {
		return fmt.Errorf("global initializer: %w", err)
	}
	if m.prog.EntryIndex == 0 {
		// no main function: the global initializer is the entry and has
		// already run once.
		return nil
	}

	m.fn = m.prog.EntryIndex
	m.ip = 0
	m.ret = nil
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		halted, err := m.step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// runFunctionToEnd runs fn from ip 0 until its instruction pointer reaches
// the end of its code, used only for the global initializer, which has no
// trailing Return (spec.md §5.2).
func (m *VM) runFunctionToEnd(ctx context.Context, fn int) error {
	m.fn = fn
	m.ip = 0
	for m.fn != fn || m.ip < len(m.prog.Functions[fn].Code) {
		if err := ctx.Err(); err != nil {
			return err
		}
		halted, err := m.step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
	return nil
}

func (m *VM) currentCode() []uint64 {
	return m.prog.Functions[m.fn].Code
}

// step executes one instruction. It returns halted=true when a Return
// executes with an empty return stack, terminating the program.
func (m *VM) step() (halted bool, err error) {
	if m.MaxSteps != 0 && m.steps >= m.MaxSteps {
		return false, ErrStepLimitExceeded
	}
	m.steps++

	code := m.currentCode()
	op := bytecode.Opcode(code[m.ip])
	var imm int64
	if bytecode.HasImmediate(op) {
		imm = int64(code[m.ip+1])
	}
	if m.Trace != nil {
		if bytecode.HasImmediate(op) {
			fmt.Fprintf(m.Trace, "%d:%d %s %d\n", m.fn, m.ip, op, imm)
		} else {
			fmt.Fprintf(m.Trace, "%d:%d %s\n", m.fn, m.ip, op)
		}
	}

	switch op {
	case bytecode.PushBool:
		m.push(Value{Bool: imm != 0})
		m.ip += 2
	case bytecode.PushInt:
		m.push(Value{Int: imm})
		m.ip += 2
	case bytecode.PushStr:
		if int(imm) < 0 || int(imm) >= len(m.prog.Strings) {
			return false, fmt.Errorf("%w: string constant %d out of range", ErrInvalidProgram, imm)
		}
		m.push(Value{Str: m.prog.Strings[imm]})
		m.ip += 2

	case bytecode.Dup:
		v, err := m.top()
		if err != nil {
			return false, err
		}
		m.push(v)
		m.ip++
	case bytecode.Over:
		if len(m.data) < 2 {
			return false, ErrStackUnderflow
		}
		m.push(m.data[len(m.data)-2])
		m.ip++
	case bytecode.Drop:
		if _, err := m.pop(); err != nil {
			return false, err
		}
		m.ip++
	case bytecode.Swap:
		a, err := m.pop()
		if err != nil {
			return false, err
		}
		b, err := m.pop()
		if err != nil {
			return false, err
		}
		m.push(a)
		m.push(b)
		m.ip++

	case bytecode.PrintBool:
		v, err := m.pop()
		if err != nil {
			return false, err
		}
		fmt.Fprintf(m.Stdout, "%t\n", v.Bool)
		m.ip++
	case bytecode.PrintInt:
		v, err := m.pop()
		if err != nil {
			return false, err
		}
		fmt.Fprintf(m.Stdout, "%d\n", v.Int)
		m.ip++
	case bytecode.PrintStr:
		v, err := m.pop()
		if err != nil {
			return false, err
		}
		if !utf8.ValidString(v.Str) {
			return false, fmt.Errorf("%w: invalid UTF-8 in PrintStr operand", ErrInvalidProgram)
		}
		fmt.Fprintf(m.Stdout, "%s\n", v.Str)
		m.ip++
	case bytecode.PrintPtr:
		v, err := m.pop()
		if err != nil {
			return false, err
		}
		fmt.Fprintf(m.Stdout, "<ptr %d>\n", v.Ptr)
		m.ip++

	case bytecode.Add, bytecode.Subtract, bytecode.Multiply, bytecode.Divide:
		if err := m.binaryArith(op); err != nil {
			return false, err
		}
		m.ip++
	case bytecode.And, bytecode.Or:
		if err := m.binaryBool(op); err != nil {
			return false, err
		}
		m.ip++
	case bytecode.Not:
		v, err := m.pop()
		if err != nil {
			return false, err
		}
		m.push(Value{Bool: !v.Bool})
		m.ip++

	case bytecode.Eq, bytecode.Neq:
		b, err := m.pop()
		if err != nil {
			return false, err
		}
		a, err := m.pop()
		if err != nil {
			return false, err
		}
		eq := a == b
		if op == bytecode.Neq {
			eq = !eq
		}
		m.push(Value{Bool: eq})
		m.ip++
	case bytecode.Lt, bytecode.Gt:
		b, err := m.pop()
		if err != nil {
			return false, err
		}
		a, err := m.pop()
		if err != nil {
			return false, err
		}
		result := a.Int < b.Int
		if op == bytecode.Gt {
			result = a.Int > b.Int
		}
		m.push(Value{Bool: result})
		m.ip++

	case bytecode.Assign:
		ptr, err := m.pop()
		if err != nil {
			return false, err
		}
		val, err := m.pop()
		if err != nil {
			return false, err
		}
		if ptr.Ptr < 0 || ptr.Ptr >= len(m.variables) {
			return false, fmt.Errorf("%w: variable slot %d out of range", ErrInvalidProgram, ptr.Ptr)
		}
		m.variables[ptr.Ptr] = val
		m.ip++
	case bytecode.Load, bytecode.LoadStr:
		ptr, err := m.pop()
		if err != nil {
			return false, err
		}
		if ptr.Ptr < 0 || ptr.Ptr >= len(m.variables) {
			return false, fmt.Errorf("%w: variable slot %d out of range", ErrInvalidProgram, ptr.Ptr)
		}
		m.push(m.variables[ptr.Ptr])
		m.ip++

	case bytecode.PushVar:
		if imm < 0 || int(imm) >= len(m.variables) {
			return false, fmt.Errorf("%w: variable slot %d out of range", ErrInvalidProgram, imm)
		}
		m.push(Value{Ptr: int(imm)})
		m.ip += 2
	case bytecode.MakeVar:
		v, err := m.pop()
		if err != nil {
			return false, err
		}
		if imm < 0 || int(imm) >= len(m.variables) {
			return false, fmt.Errorf("%w: variable slot %d out of range", ErrInvalidProgram, imm)
		}
		m.variables[imm] = v
		m.ip += 2

	case bytecode.Bind:
		n := int(imm)
		if len(m.data) < n {
			return false, ErrStackUnderflow
		}
		m.bindStack = append(m.bindStack, m.data[len(m.data)-n:]...)
		m.data = m.data[:len(m.data)-n]
		m.ip += 2
	case bytecode.Unbind:
		n := int(imm)
		if len(m.bindStack) < n {
			return false, ErrStackUnderflow
		}
		m.bindStack = m.bindStack[:len(m.bindStack)-n]
		m.ip += 2
	case bytecode.PushBind:
		if imm < 0 || int(imm) >= len(m.bindStack) {
			return false, fmt.Errorf("%w: bind index %d out of range", ErrInvalidProgram, imm)
		}
		m.push(m.bindStack[imm])
		m.ip += 2

	case bytecode.Jump:
		m.ip = m.ip + 1 + int(imm)
	case bytecode.JumpTrue, bytecode.JumpFalse:
		v, err := m.pop()
		if err != nil {
			return false, err
		}
		take := v.Bool
		if op == bytecode.JumpFalse {
			take = !v.Bool
		}
		if take {
			m.ip = m.ip + 1 + int(imm)
		} else {
			m.ip += 2
		}

	case bytecode.Call:
		target := int(imm)
		if target < 0 || target >= len(m.prog.Functions) {
			return false, fmt.Errorf("%w: function %d out of range", ErrInvalidProgram, target)
		}
		m.ret = append(m.ret, frame{ip: m.ip + 2, fn: m.fn})
		m.fn = target
		m.ip = 0

	case bytecode.Return:
		if len(m.ret) == 0 {
			return true, nil
		}
		top := m.ret[len(m.ret)-1]
		m.ret = m.ret[:len(m.ret)-1]
		m.fn = top.fn
		m.ip = top.ip

	default:
		return false, fmt.Errorf("%w: unknown opcode %v", ErrInvalidProgram, op)
	}
	return false, nil
}

func (m *VM) push(v Value) {
	m.data = append(m.data, v)
	if m.StackWarnDepth > 0 && !m.warned && len(m.data) == m.StackWarnDepth+1 && m.Warn != nil {
		m.warned = true
		fmt.Fprintf(m.Warn, "warning: data stack depth exceeded %d\n", m.StackWarnDepth)
	}
}

func (m *VM) pop() (Value, error) {
	if len(m.data) == 0 {
		return Value{}, ErrStackUnderflow
	}
	v := m.data[len(m.data)-1]
	m.data = m.data[:len(m.data)-1]
	return v, nil
}

func (m *VM) top() (Value, error) {
	if len(m.data) == 0 {
		return Value{}, ErrStackUnderflow
	}
	return m.data[len(m.data)-1], nil
}

func (m *VM) binaryArith(op bytecode.Opcode) error {
	b, err := m.pop()
	if err != nil {
		return err
	}
	a, err := m.pop()
	if err != nil {
		return err
	}
	var result int64
	switch op {
	case bytecode.Add:
		result = a.Int + b.Int
	case bytecode.Subtract:
		result = a.Int - b.Int
	case bytecode.Multiply:
		result = a.Int * b.Int
	case bytecode.Divide:
		if b.Int == 0 {
			return ErrDivideByZero
		}
		result = a.Int / b.Int
	}
	m.push(Value{Int: result})
	return nil
}

func (m *VM) binaryBool(op bytecode.Opcode) error {
	b, err := m.pop()
	if err != nil {
		return err
	}
	a, err := m.pop()
	if err != nil {
		return err
	}
	var result bool
	if op == bytecode.And {
		result = a.Bool && b.Bool
	} else {
		result = a.Bool || b.Bool
	}
	m.push(Value{Bool: result})
	return nil
}
