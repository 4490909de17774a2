package vm_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rekolang/reko/lang/bytecode"
	"github.com/rekolang/reko/lang/vm"
)

func TestRunAddPrint(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushInt), 2,
		uint64(bytecode.PushInt), 3,
		uint64(bytecode.Add),
		uint64(bytecode.PrintInt),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "5\n", out.String())
}

func TestRunIfElse(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	// if true then 1 else 2 end, print
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushBool), 1, // 0,1
		uint64(bytecode.JumpFalse), 5, // 2,3 -> target 2+1+5=8
		uint64(bytecode.PushInt), 1, // 4,5
		uint64(bytecode.Jump), 3, // 6,7 -> target 6+1+3=10
		uint64(bytecode.PushInt), 2, // 8,9
		uint64(bytecode.PrintInt), // 10
		uint64(bytecode.Return),   // 11
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "1\n", out.String())
}

func TestRunWhileLoop(t *testing.T) {
	prog := bytecode.NewProgram()
	prog.VariableCount = 1
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	// var-backed counter: push 0, make var 0
	// while pushvar 0; load; dup; 3; lt do
	//   pushvar 0; load; dup; print; 1; add; pushvar 0; assign
	// end
	code := []uint64{
		uint64(bytecode.PushInt), 0,
		uint64(bytecode.MakeVar), 0,
		// loop condition start at ip=4
		uint64(bytecode.PushVar), 0,
		uint64(bytecode.Load),
		uint64(bytecode.PushInt), 3,
		uint64(bytecode.Lt),
		uint64(bytecode.JumpFalse), 0, // placeholder, patched below
		uint64(bytecode.PushVar), 0,
		uint64(bytecode.Load),
		uint64(bytecode.PrintInt),
		uint64(bytecode.PushVar), 0,
		uint64(bytecode.Load),
		uint64(bytecode.PushInt), 1,
		uint64(bytecode.Add),
		uint64(bytecode.PushVar), 0,
		uint64(bytecode.Assign),
		uint64(bytecode.Jump), 0, // placeholder, patched below
		uint64(bytecode.Return),
	}
	jumpFalseIdx := indexOfOpcode(code, bytecode.JumpFalse, 0)
	jumpIdx := indexOfOpcode(code, bytecode.Jump, 0)
	returnIdx := indexOfOpcode(code, bytecode.Return, 0)
	condStart := indexOfOpcode(code, bytecode.PushVar, 0)
	// target of JumpFalse is the Return instruction.
	code[jumpFalseIdx+1] = uint64(int64(returnIdx - jumpFalseIdx - 1))
	// target of Jump is back to condition start.
	code[jumpIdx+1] = uint64(int64(condStart - jumpIdx - 1))

	prog.Functions[idx].Code = code

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "0\n1\n2\n", out.String())
}

func indexOfOpcode(code []uint64, op bytecode.Opcode, occurrence int) int {
	seen := 0
	for i, w := range code {
		if bytecode.Opcode(w) == op {
			if seen == occurrence {
				return i
			}
			seen++
		}
	}
	return -1
}

func TestRunCallReturn(t *testing.T) {
	prog := bytecode.NewProgram()
	mainIdx := prog.AddFunction("main")
	addIdx := prog.AddFunction("add")
	prog.EntryIndex = mainIdx
	prog.Functions[mainIdx].Code = []uint64{
		uint64(bytecode.PushInt), 2,
		uint64(bytecode.PushInt), 3,
		uint64(bytecode.Call), uint64(addIdx),
		uint64(bytecode.PrintInt),
		uint64(bytecode.Return),
	}
	prog.Functions[addIdx].Code = []uint64{
		uint64(bytecode.Add),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "5\n", out.String())
}

func TestRunDivideByZero(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushInt), 1,
		uint64(bytecode.PushInt), 0,
		uint64(bytecode.Divide),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	err := m.Run(context.Background())
	require.ErrorIs(t, err, vm.ErrDivideByZero)
}

func TestRunStackUnderflow(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.Drop),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	err := m.Run(context.Background())
	require.ErrorIs(t, err, vm.ErrStackUnderflow)
}

func TestGlobalInitializerRunsBeforeEntry(t *testing.T) {
	prog := bytecode.NewProgram()
	prog.VariableCount = 1
	prog.Functions[0].Code = []uint64{
		uint64(bytecode.PushInt), 42,
		uint64(bytecode.MakeVar), 0,
	}
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushVar), 0,
		uint64(bytecode.Load),
		uint64(bytecode.PrintInt),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "42\n", out.String())
}

func TestRunDup(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushInt), 7,
		uint64(bytecode.Dup),
		uint64(bytecode.PrintInt),
		uint64(bytecode.PrintInt),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "7\n7\n", out.String())
}

func TestRunOver(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	// 1 2 over -> 1 2 1, print each in pop order: 1 2 1
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushInt), 1,
		uint64(bytecode.PushInt), 2,
		uint64(bytecode.Over),
		uint64(bytecode.PrintInt),
		uint64(bytecode.PrintInt),
		uint64(bytecode.PrintInt),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "1\n2\n1\n", out.String())
}

func TestRunSwap(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	// 1 2 swap -> 2 1, print pops top-first: 1 then 2
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushInt), 1,
		uint64(bytecode.PushInt), 2,
		uint64(bytecode.Swap),
		uint64(bytecode.PrintInt),
		uint64(bytecode.PrintInt),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "1\n2\n", out.String())
}

func TestRunAndOrNot(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushBool), 1,
		uint64(bytecode.PushBool), 0,
		uint64(bytecode.And),
		uint64(bytecode.PrintBool), // false

		uint64(bytecode.PushBool), 1,
		uint64(bytecode.PushBool), 0,
		uint64(bytecode.Or),
		uint64(bytecode.PrintBool), // true

		uint64(bytecode.PushBool), 0,
		uint64(bytecode.Not),
		uint64(bytecode.PrintBool), // true

		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "false\ntrue\ntrue\n", out.String())
}

func TestRunEqNeqGt(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushInt), 3,
		uint64(bytecode.PushInt), 3,
		uint64(bytecode.Eq),
		uint64(bytecode.PrintBool), // true

		uint64(bytecode.PushInt), 3,
		uint64(bytecode.PushInt), 4,
		uint64(bytecode.Neq),
		uint64(bytecode.PrintBool), // true

		uint64(bytecode.PushInt), 5,
		uint64(bytecode.PushInt), 2,
		uint64(bytecode.Gt),
		uint64(bytecode.PrintBool), // true

		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "true\ntrue\ntrue\n", out.String())
}

func TestRunPrintBool(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushBool), 1,
		uint64(bytecode.PrintBool),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "true\n", out.String())
}

func TestRunPrintStr(t *testing.T) {
	prog := bytecode.NewProgram()
	strIdx := prog.AddStringConstant("hello")
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushStr), uint64(strIdx),
		uint64(bytecode.PrintStr),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "hello\n", out.String())
}

func TestRunPrintStrInvalidUTF8IsFatal(t *testing.T) {
	prog := bytecode.NewProgram()
	strIdx := prog.AddStringConstant(string([]byte{0xff, 0xfe}))
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushStr), uint64(strIdx),
		uint64(bytecode.PrintStr),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	err := m.Run(context.Background())
	require.ErrorIs(t, err, vm.ErrInvalidProgram)
	require.Empty(t, out.String())
}

func TestRunPrintPtr(t *testing.T) {
	prog := bytecode.NewProgram()
	prog.VariableCount = 1
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushVar), 0,
		uint64(bytecode.PrintPtr),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "<ptr 0>\n", out.String())
}

func TestRunLoadStr(t *testing.T) {
	prog := bytecode.NewProgram()
	prog.VariableCount = 1
	strIdx := prog.AddStringConstant("reko")
	// global initializer: push "reko", store into variable 0
	prog.Functions[0].Code = []uint64{
		uint64(bytecode.PushStr), uint64(strIdx),
		uint64(bytecode.MakeVar), 0,
	}
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushVar), 0,
		uint64(bytecode.LoadStr),
		uint64(bytecode.PrintStr),
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "reko\n", out.String())
}

func TestRunBindUnbindPushBind(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	// 10 20 bind(2); pushbind(0); pushbind(1); print print; unbind(2)
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushInt), 10,
		uint64(bytecode.PushInt), 20,
		uint64(bytecode.Bind), 2,
		uint64(bytecode.PushBind), 0,
		uint64(bytecode.PrintInt), // 10
		uint64(bytecode.PushBind), 1,
		uint64(bytecode.PrintInt), // 20
		uint64(bytecode.Unbind), 2,
		uint64(bytecode.Return),
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "10\n20\n", out.String())
}

func TestRunStackWarnDepthIsDiagnosticOnly(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.PushInt), 1,
		uint64(bytecode.PushInt), 2,
		uint64(bytecode.PushInt), 3,
		uint64(bytecode.Drop),
		uint64(bytecode.Drop),
		uint64(bytecode.Drop),
		uint64(bytecode.Return),
	}

	var out, warn bytes.Buffer
	m := vm.New(prog, &out)
	m.StackWarnDepth = 2
	m.Warn = &warn
	require.NoError(t, m.Run(context.Background()))
	require.Contains(t, warn.String(), "warning")
}

func TestMaxSteps(t *testing.T) {
	prog := bytecode.NewProgram()
	idx := prog.AddFunction("main")
	prog.EntryIndex = idx
	prog.Functions[idx].Code = []uint64{
		uint64(bytecode.Jump), uint64(int64(-1)), // infinite loop: jump to itself
	}

	var out bytes.Buffer
	m := vm.New(prog, &out)
	m.MaxSteps = 100
	err := m.Run(context.Background())
	require.ErrorIs(t, err, vm.ErrStepLimitExceeded)
}
