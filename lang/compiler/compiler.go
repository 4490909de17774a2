// Package compiler lowers typed IR (lang/typecheck) into lang/bytecode
// programs. Lowering is a deliberate two-pass design: a first pass walks
// every Def chunk to assign each function a stable index before any code is
// emitted, so forward and mutually-recursive calls resolve; a second pass
// emits code per spec.md §5's lowering algorithm. This generalizes
// original_source/src/compiler.rs's single-pass Compiler, which assigns
// indices as it compiles and therefore cannot resolve a call to a function
// not yet compiled.
package compiler

import (
	"fmt"

	"github.com/rekolang/reko/lang/bytecode"
	"github.com/rekolang/reko/lang/typecheck"
)

// Compile lowers a full sequence of typed chunks (in declaration order) into
// a bytecode.Program. variableCount is the value returned alongside the
// typed chunks by typecheck.Check.
func Compile(chunks []typecheck.Chunk, variableCount int) (*bytecode.Program, error) {
	prog := bytecode.NewProgram()
	prog.VariableCount = variableCount

	c := &compiler{prog: prog, funcIndex: make(map[string]int)}
	for _, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		if chunk[0].Kind == typecheck.Def {
			c.funcIndex[chunk[0].Name] = prog.AddFunction(chunk[0].Name)
		}
	}
	if idx, ok := c.funcIndex["main"]; ok {
		prog.EntryIndex = idx
	}

	for _, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		switch chunk[0].Kind {
		case typecheck.Def:
			if err := c.compileFunction(chunk); err != nil {
				return nil, err
			}
		case typecheck.Var:
			if err := c.compileVariable(chunk); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected top-level typed item kind %v", chunk[0].Kind)
		}
	}
	return prog, nil
}

// compiler holds the state shared across a whole program's lowering pass.
type compiler struct {
	prog      *bytecode.Program
	funcIndex map[string]int

	// fn is the index of the function currently being emitted into; fn==0
	// while emitting top-level Var initializers (the global initializer,
	// spec.md §5.2).
	fn int
}

func (c *compiler) emit(op bytecode.Opcode) {
	c.prog.Functions[c.fn].Code = append(c.prog.Functions[c.fn].Code, uint64(op))
}

func (c *compiler) emitImm(op bytecode.Opcode, imm int64) {
	c.prog.Functions[c.fn].Code = append(c.prog.Functions[c.fn].Code, uint64(op), uint64(imm))
}

// here returns the index of the next instruction word to be emitted, i.e.
// the length of the current function's code.
func (c *compiler) here() int {
	return len(c.prog.Functions[c.fn].Code)
}

// patch overwrites the immediate operand of the jump instruction whose
// opcode word sits at idx with a relative offset to the current end of
// code, per spec.md §5's "patch(idx) = len(code) - idx - 1" rule.
func (c *compiler) patch(idx int) {
	code := c.prog.Functions[c.fn].Code
	code[idx+1] = uint64(int64(len(code) - idx - 1))
}

func (c *compiler) compileFunction(chunk typecheck.Chunk) error {
	idx, ok := c.funcIndex[chunk[0].Name]
	if !ok {
		return fmt.Errorf("internal error: function %q missing from pre-pass index", chunk[0].Name)
	}
	c.fn = idx
	cur := &itemCursor{items: chunk[1:]}
	if err := c.compileBlock(cur); err != nil {
		return fmt.Errorf("function %s: %w", chunk[0].Name, err)
	}
	c.emit(bytecode.Return)
	return nil
}

// compileVariable lowers a Var chunk's initializer directly into function
// 0, the global initializer, matching spec.md §5.2.
func (c *compiler) compileVariable(chunk typecheck.Chunk) error {
	c.fn = 0
	cur := &itemCursor{items: chunk[1:]}
	if err := c.compileBlock(cur); err != nil {
		return fmt.Errorf("variable initializer: %w", err)
	}
	return nil
}

// itemCursor is a shared, mutable position into a Chunk's items, used so
// compileIf/compileWhile can recurse into nested control flow while sharing
// one stream with their caller.
type itemCursor struct {
	items []typecheck.Item
	pos   int
}

func (cur *itemCursor) next() (typecheck.Item, bool) {
	if cur.pos >= len(cur.items) {
		return typecheck.Item{}, false
	}
	it := cur.items[cur.pos]
	cur.pos++
	return it, true
}

// compileBlock emits items until it consumes a top-level End (which it also
// consumes but does not emit code for, since End is a checker/lowering
// marker, not a VM opcode).
func (c *compiler) compileBlock(cur *itemCursor) error {
	for {
		item, ok := cur.next()
		if !ok {
			return nil
		}
		if item.Kind == typecheck.End {
			return nil
		}
		switch item.Kind {
		case typecheck.If:
			if err := c.compileIf(cur); err != nil {
				return err
			}
		case typecheck.While:
			if err := c.compileWhile(cur); err != nil {
				return err
			}
		default:
			if err := c.compileItem(item); err != nil {
				return err
			}
		}
	}
}

// compileIf lowers If/Then/Elif*/Else?/End, per spec.md §5's jump-patching
// algorithm grounded on original_source/src/compiler.rs's compile_if:
// the condition is already on the stack when Then arrives; JumpFalse to the
// next branch, and an unconditional Jump from the end of each taken branch
// to the join point.
func (c *compiler) compileIf(cur *itemCursor) error {
	var jumpsToEnd []int
	branchJumpFalse := -1

	for {
		item, ok := cur.next()
		if !ok {
			return fmt.Errorf("unterminated if")
		}
		switch item.Kind {
		case typecheck.Then:
			idx := c.here()
			c.emitImm(bytecode.JumpFalse, -1)
			branchJumpFalse = idx

		case typecheck.Elif, typecheck.Else:
			endIdx := c.here()
			c.emitImm(bytecode.Jump, -1)
			jumpsToEnd = append(jumpsToEnd, endIdx)
			if branchJumpFalse >= 0 {
				c.patch(branchJumpFalse)
				branchJumpFalse = -1
			}
			if item.Kind == typecheck.Elif {
				// The elif's own condition follows as ordinary items, and
				// its Then emits the next JumpFalse; nothing further here.
				continue
			}

		case typecheck.End:
			if branchJumpFalse >= 0 {
				c.patch(branchJumpFalse)
			}
			for _, idx := range jumpsToEnd {
				c.patch(idx)
			}
			return nil

		default:
			if err := c.dispatchNested(item, cur); err != nil {
				return err
			}
		}
	}
}

// compileWhile lowers While/Do/End, per spec.md §5's loop algorithm
// grounded on original_source/src/compiler.rs's compile_while: a back-edge
// Jump to the loop's condition, and a forward JumpFalse out of the loop
// patched once End is reached.
func (c *compiler) compileWhile(cur *itemCursor) error {
	condStart := c.here()
	exitJump := -1

	for {
		item, ok := cur.next()
		if !ok {
			return fmt.Errorf("unterminated while")
		}
		switch item.Kind {
		case typecheck.Do:
			idx := c.here()
			c.emitImm(bytecode.JumpFalse, -1)
			exitJump = idx

		case typecheck.End:
			backIdx := c.here()
			c.emitImm(bytecode.Jump, -1)
			code := c.prog.Functions[c.fn].Code
			code[backIdx+1] = uint64(int64(condStart - backIdx - 1))
			if exitJump >= 0 {
				c.patch(exitJump)
			}
			return nil

		default:
			if err := c.dispatchNested(item, cur); err != nil {
				return err
			}
		}
	}
}

// dispatchNested handles an item encountered inside an if/while body: either
// a nested control-flow construct or a plain expression item.
func (c *compiler) dispatchNested(item typecheck.Item, cur *itemCursor) error {
	switch item.Kind {
	case typecheck.If:
		return c.compileIf(cur)
	case typecheck.While:
		return c.compileWhile(cur)
	default:
		return c.compileItem(item)
	}
}

func (c *compiler) compileItem(item typecheck.Item) error {
	switch item.Kind {
	case typecheck.PushBool:
		b := int64(0)
		if item.Bool {
			b = 1
		}
		c.emitImm(bytecode.PushBool, b)
	case typecheck.PushInt:
		c.emitImm(bytecode.PushInt, item.Int)
	case typecheck.PushStr:
		idx := c.prog.AddStringConstant(item.Str)
		c.emitImm(bytecode.PushStr, int64(idx))

	case typecheck.Dup:
		c.emit(bytecode.Dup)
	case typecheck.Over:
		c.emit(bytecode.Over)
	case typecheck.Drop:
		c.emit(bytecode.Drop)
	case typecheck.Swap:
		c.emit(bytecode.Swap)

	case typecheck.PrintBool:
		c.emit(bytecode.PrintBool)
	case typecheck.PrintInt:
		c.emit(bytecode.PrintInt)
	case typecheck.PrintStr:
		c.emit(bytecode.PrintStr)
	case typecheck.PrintPtr:
		c.emit(bytecode.PrintPtr)

	case typecheck.Add:
		c.emit(bytecode.Add)
	case typecheck.Subtract:
		c.emit(bytecode.Subtract)
	case typecheck.Multiply:
		c.emit(bytecode.Multiply)
	case typecheck.Divide:
		c.emit(bytecode.Divide)

	case typecheck.And:
		c.emit(bytecode.And)
	case typecheck.Or:
		c.emit(bytecode.Or)
	case typecheck.Not:
		c.emit(bytecode.Not)

	case typecheck.Eq:
		c.emit(bytecode.Eq)
	case typecheck.Neq:
		c.emit(bytecode.Neq)
	case typecheck.Lt:
		c.emit(bytecode.Lt)
	case typecheck.Gt:
		c.emit(bytecode.Gt)

	case typecheck.Assign:
		c.emit(bytecode.Assign)
	case typecheck.Load:
		c.emit(bytecode.Load)
	case typecheck.LoadStr:
		c.emit(bytecode.LoadStr)

	case typecheck.PushVar:
		c.emitImm(bytecode.PushVar, item.Int)
	case typecheck.MakeVar:
		c.emitImm(bytecode.MakeVar, item.Int)

	case typecheck.Bind:
		c.emitImm(bytecode.Bind, item.Int)
	case typecheck.Unbind:
		c.emitImm(bytecode.Unbind, item.Int)
	case typecheck.PushBind:
		c.emitImm(bytecode.PushBind, item.Int)

	case typecheck.Call:
		idx, ok := c.funcIndex[item.Name]
		if !ok {
			return fmt.Errorf("call to unindexed function %q", item.Name)
		}
		c.emitImm(bytecode.Call, int64(idx))

	default:
		return fmt.Errorf("unexpected typed item kind %v at statement position", item.Kind)
	}
	return nil
}
