// Package typecheck implements the stack-discipline type checker: the CORE
// component that consumes untyped IR chunks (lang/ir) and produces typed IR
// chunks (lang/typecheck.Chunk) for lang/compiler. The checking algorithm is
// grounded on original_source/src/typer.rs, generalized where that source
// left an operation unimplemented (Var declarations, PushStr, and the
// Assign/Load/Bind/Unbind/PushBind/PushVar/MakeVar family) per spec.md §4.2
// and §4.1, which are authoritative over the original's stubs.
package typecheck

import (
	"fmt"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"

	"github.com/rekolang/reko/lang/ir"
)

// Checker holds the working state of one type-checking pass: declared
// structs, function signatures, named variables, and the stack of per-scope
// type stacks, matching spec.md §3/§4.2's "Working state" description.
type Checker struct {
	structs   *swiss.Map[string, StructType]
	functions *swiss.Map[string, FunctionType]
	variables *swiss.Map[string, Variable]
	nextSlot  int

	typeStacks [][]ir.TypeSig
	bindStack  []ir.TypeSig
}

// NewChecker returns an empty Checker ready to check a program's chunks.
func NewChecker() *Checker {
	return &Checker{
		structs:   swiss.NewMap[string, StructType](8),
		functions: swiss.NewMap[string, FunctionType](8),
		variables: swiss.NewMap[string, Variable](8),
	}
}

// VariableCount returns one plus the maximum variable slot index allocated,
// or zero if none were declared, per spec.md §3's Invariants.
func (c *Checker) VariableCount() int { return c.nextSlot }

// Check type-checks every chunk in order and returns the typed chunks ready
// for lowering. Struct chunks are checked but contribute no typed output
// (spec.md §6 "Struct chunks contribute only to the checker's type
// environment").
func Check(chunks []ir.Chunk) ([]Chunk, int, error) {
	c := NewChecker()
	var out []Chunk
	for _, chunk := range chunks {
		typed, err := c.checkChunk(chunk)
		if err != nil {
			return nil, 0, err
		}
		if len(typed) > 0 {
			out = append(out, typed)
		}
	}
	return out, c.VariableCount(), nil
}

// cursor is a shared, mutable position into a Chunk's items, mirroring the
// `&mut IRIter` passed through original_source/src/typer.rs's recursive
// descent.
type cursor struct {
	items []ir.Item
	pos   int
}

func (cur *cursor) next() (ir.Item, bool) {
	if cur.pos >= len(cur.items) {
		return ir.Item{}, false
	}
	it := cur.items[cur.pos]
	cur.pos++
	return it, true
}

func (cur *cursor) peek() (ir.Item, bool) {
	if cur.pos >= len(cur.items) {
		return ir.Item{}, false
	}
	return cur.items[cur.pos], true
}

func (c *Checker) typeStack() *[]ir.TypeSig {
	return &c.typeStacks[len(c.typeStacks)-1]
}

func (c *Checker) pushScope(initial []ir.TypeSig) {
	c.typeStacks = append(c.typeStacks, append([]ir.TypeSig(nil), initial...))
}

func (c *Checker) popScope() []ir.TypeSig {
	top := c.typeStacks[len(c.typeStacks)-1]
	c.typeStacks = c.typeStacks[:len(c.typeStacks)-1]
	return top
}

func (c *Checker) pop() (ir.TypeSig, error) {
	ts := c.typeStack()
	if len(*ts) == 0 {
		return ir.TypeSig{}, fmt.Errorf("%w: stack underflow", CheckerShapeError)
	}
	v := (*ts)[len(*ts)-1]
	*ts = (*ts)[:len(*ts)-1]
	return v, nil
}

func (c *Checker) push(t ir.TypeSig) {
	ts := c.typeStack()
	*ts = append(*ts, t)
}

func typeStacksEqual(a, b []ir.TypeSig) bool {
	return slices.EqualFunc(a, b, func(x, y ir.TypeSig) bool { return x.Equal(y) })
}

// checkChunk type-checks one top-level declaration chunk (its first item is
// Def, Var, or Struct, per spec.md §6's chunk discipline).
func (c *Checker) checkChunk(chunk ir.Chunk) (Chunk, error) {
	cur := &cursor{items: chunk}
	head, ok := cur.next()
	if !ok {
		return nil, fmt.Errorf("%w: empty chunk", CheckerShapeError)
	}

	switch head.Kind {
	case ir.Def:
		var out Chunk
		if err := c.checkFunction(&out, head.Name, cur); err != nil {
			return nil, err
		}
		return out, nil
	case ir.Var:
		var out Chunk
		if err := c.checkVariable(&out, head.Name, cur); err != nil {
			return nil, err
		}
		return out, nil
	case ir.Struct:
		if err := c.checkStruct(head.Name, cur); err != nil {
			return nil, err
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: expected def, var or struct, got %v", LoweringInvariantViolation, head.Kind)
	}
}

// checkExpression dispatches one untyped IR item to its typed-IR rule.
func (c *Checker) checkExpression(out *Chunk, item ir.Item, cur *cursor) error {
	switch item.Kind {
	case ir.PushBool:
		*out = append(*out, Item{Kind: PushBool, Bool: item.Bool})
		c.push(ir.Bool_())
	case ir.PushInt:
		*out = append(*out, Item{Kind: PushInt, Int: item.Int})
		c.push(ir.Int_())
	case ir.PushStr:
		*out = append(*out, Item{Kind: PushStr, Str: item.Str})
		c.push(ir.Str_())

	case ir.End:
		return fmt.Errorf("%w: unexpected end", LoweringInvariantViolation)
	case ir.Then:
		return fmt.Errorf("%w: unexpected then", LoweringInvariantViolation)
	case ir.Elif:
		return fmt.Errorf("%w: unexpected elif", LoweringInvariantViolation)
	case ir.Else:
		return fmt.Errorf("%w: unexpected else", LoweringInvariantViolation)
	case ir.Do:
		return fmt.Errorf("%w: unexpected do", LoweringInvariantViolation)

	case ir.If:
		return c.checkIf(out, cur)
	case ir.While:
		return c.checkWhile(out, cur)
	case ir.Def:
		return c.checkFunction(out, item.Name, cur)
	case ir.Var:
		return c.checkVariable(out, item.Name, cur)
	case ir.Struct:
		return c.checkStruct(item.Name, cur)

	case ir.Dup:
		top, err := c.pop()
		if err != nil {
			return fmt.Errorf("%w: cannot dup nonexistent data", CheckerShapeError)
		}
		c.push(top)
		c.push(top)
		*out = append(*out, Item{Kind: Dup})
	case ir.Over:
		ts := c.typeStack()
		if len(*ts) < 2 {
			return fmt.Errorf("%w: over requires at least 2 items on the stack, found %d", CheckerShapeError, len(*ts))
		}
		second := (*ts)[len(*ts)-2]
		c.push(second)
		*out = append(*out, Item{Kind: Over})
	case ir.Drop:
		if _, err := c.pop(); err != nil {
			return fmt.Errorf("%w: cannot drop nonexistent data", CheckerShapeError)
		}
		*out = append(*out, Item{Kind: Drop})
	case ir.Swap:
		a, err := c.pop()
		if err != nil {
			return fmt.Errorf("%w: cannot swap nonexistent data", CheckerShapeError)
		}
		b, err := c.pop()
		if err != nil {
			return fmt.Errorf("%w: cannot swap nonexistent data", CheckerShapeError)
		}
		c.push(a)
		c.push(b)
		*out = append(*out, Item{Kind: Swap})

	case ir.Print:
		top, err := c.pop()
		if err != nil {
			return fmt.Errorf("%w: cannot print nonexistent data", CheckerShapeError)
		}
		switch top.Kind {
		case ir.Bool:
			*out = append(*out, Item{Kind: PrintBool})
		case ir.Int:
			*out = append(*out, Item{Kind: PrintInt})
		case ir.Str:
			*out = append(*out, Item{Kind: PrintStr})
		case ir.Ptr:
			*out = append(*out, Item{Kind: PrintPtr})
		default:
			return fmt.Errorf("%w: cannot print a %v", TypeMismatch, top)
		}

	case ir.Add, ir.Subtract, ir.Multiply, ir.Divide:
		if err := c.checkIntBinop(out, item.Kind); err != nil {
			return err
		}
	case ir.And, ir.Or:
		if err := c.checkBoolBinop(out, item.Kind); err != nil {
			return err
		}
	case ir.Not:
		top, err := c.pop()
		if err != nil {
			return fmt.Errorf("%w: cannot negate nonexistent data", CheckerShapeError)
		}
		if top.Kind != ir.Bool {
			return fmt.Errorf("%w: not requires bool, found %v", TypeMismatch, top)
		}
		c.push(ir.Bool_())
		*out = append(*out, Item{Kind: Not})

	case ir.Eq, ir.Neq:
		b, err := c.pop()
		if err != nil {
			return fmt.Errorf("%w: cannot check nonexistent data for equality", CheckerShapeError)
		}
		a, err := c.pop()
		if err != nil {
			return fmt.Errorf("%w: cannot check nonexistent data for equality", CheckerShapeError)
		}
		if !a.Equal(b) {
			return fmt.Errorf("%w: operands of equality have different types: %v vs %v", TypeMismatch, a, b)
		}
		c.push(ir.Bool_())
		k := Eq
		if item.Kind == ir.Neq {
			k = Neq
		}
		*out = append(*out, Item{Kind: k})

	case ir.Lt, ir.Gt:
		b, err := c.pop()
		if err != nil {
			return fmt.Errorf("%w: cannot compare nonexistent data", CheckerShapeError)
		}
		a, err := c.pop()
		if err != nil {
			return fmt.Errorf("%w: cannot compare nonexistent data", CheckerShapeError)
		}
		if a.Kind != ir.Int || b.Kind != ir.Int {
			return fmt.Errorf("%w: comparison requires int operands, found %v and %v", TypeMismatch, a, b)
		}
		c.push(ir.Bool_())
		k := Lt
		if item.Kind == ir.Gt {
			k = Gt
		}
		*out = append(*out, Item{Kind: k})

	case ir.Assign:
		ptr, err := c.pop()
		if err != nil {
			return fmt.Errorf("%w: cannot assign with nonexistent data", CheckerShapeError)
		}
		if ptr.Kind != ir.Ptr {
			return fmt.Errorf("%w: assign target must be a pointer, found %v", TypeMismatch, ptr)
		}
		val, err := c.pop()
		if err != nil {
			return fmt.Errorf("%w: cannot assign with nonexistent data", CheckerShapeError)
		}
		if ptr.Elem == nil || !ptr.Elem.Equal(val) {
			return fmt.Errorf("%w: cannot assign %v to %v", TypeMismatch, val, ptr)
		}
		*out = append(*out, Item{Kind: Assign})

	case ir.Load:
		ptr, err := c.pop()
		if err != nil {
			return fmt.Errorf("%w: cannot load nonexistent data", CheckerShapeError)
		}
		if ptr.Kind != ir.Ptr || ptr.Elem == nil {
			return fmt.Errorf("%w: load target must be a pointer, found %v", TypeMismatch, ptr)
		}
		if ptr.Elem.Kind == ir.Str {
			*out = append(*out, Item{Kind: LoadStr})
		} else {
			*out = append(*out, Item{Kind: Load})
		}
		c.push(*ptr.Elem)

	case ir.Ident:
		return c.checkIdent(out, item.Name)

	case ir.Call:
		return c.checkCall(out, item.Name)

	default:
		return fmt.Errorf("%w: unexpected item kind %v", LoweringInvariantViolation, item.Kind)
	}
	return nil
}

func (c *Checker) checkIntBinop(out *Chunk, kind ir.Kind) error {
	b, err := c.pop()
	if err != nil {
		return fmt.Errorf("%w: cannot operate on nonexistent data", CheckerShapeError)
	}
	a, err := c.pop()
	if err != nil {
		return fmt.Errorf("%w: cannot operate on nonexistent data", CheckerShapeError)
	}
	if a.Kind != ir.Int || b.Kind != ir.Int {
		return fmt.Errorf("%w: arithmetic requires int operands, found %v and %v", TypeMismatch, a, b)
	}
	c.push(ir.Int_())
	var k Kind
	switch kind {
	case ir.Add:
		k = Add
	case ir.Subtract:
		k = Subtract
	case ir.Multiply:
		k = Multiply
	case ir.Divide:
		k = Divide
	}
	*out = append(*out, Item{Kind: k})
	return nil
}

func (c *Checker) checkBoolBinop(out *Chunk, kind ir.Kind) error {
	b, err := c.pop()
	if err != nil {
		return fmt.Errorf("%w: cannot operate on nonexistent data", CheckerShapeError)
	}
	a, err := c.pop()
	if err != nil {
		return fmt.Errorf("%w: cannot operate on nonexistent data", CheckerShapeError)
	}
	if a.Kind != ir.Bool || b.Kind != ir.Bool {
		return fmt.Errorf("%w: logical operator requires bool operands, found %v and %v", TypeMismatch, a, b)
	}
	c.push(ir.Bool_())
	k := And
	if kind == ir.Or {
		k = Or
	}
	*out = append(*out, Item{Kind: k})
	return nil
}

// checkIdent resolves a bare identifier against the function table first
// (a call) and then the variable table (a PushVar), per SPEC_FULL.md §2.2's
// resolution of the single ir.Ident kind.
func (c *Checker) checkIdent(out *Chunk, name string) error {
	if _, ok := c.functions.Get(name); ok {
		return c.checkCall(out, name)
	}
	v, ok := c.variables.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q is not a declared function or variable", UnboundIdentifier, name)
	}
	c.push(ir.PtrOf(v.Type))
	*out = append(*out, Item{Kind: PushVar, Int: int64(v.Slot)})
	return nil
}

func (c *Checker) checkCall(out *Chunk, name string) error {
	fn, ok := c.functions.Get(name)
	if !ok {
		return fmt.Errorf("%w: call to undeclared function %q", UnboundIdentifier, name)
	}
	ts := c.typeStack()
	if !endsWith(*ts, fn.Parameters) {
		return fmt.Errorf("%w: incorrect types for call to %q: have %v, want suffix %v", TypeMismatch, name, *ts, fn.Parameters)
	}
	*ts = (*ts)[:len(*ts)-len(fn.Parameters)]
	*ts = append(*ts, fn.Returns...)
	*out = append(*out, Item{Kind: Call, Name: name})
	return nil
}

func endsWith(stack, suffix []ir.TypeSig) bool {
	if len(suffix) > len(stack) {
		return false
	}
	base := len(stack) - len(suffix)
	for i, t := range suffix {
		if !stack[base+i].Equal(t) {
			return false
		}
	}
	return true
}

// flatten replaces any struct-typed signature by its declared field-type
// sequence, per spec.md §3/§9 "struct flattening": structs are never boxed,
// they are pure type-checker bookkeeping.
func (c *Checker) flatten(sigs []ir.TypeSig) ([]ir.TypeSig, error) {
	var out []ir.TypeSig
	for _, s := range sigs {
		if s.Kind != ir.Struct {
			out = append(out, s)
			continue
		}
		st, ok := c.structs.Get(s.Name)
		if !ok {
			return nil, fmt.Errorf("%w: undeclared struct %q", UnboundIdentifier, s.Name)
		}
		out = append(out, st.Fields...)
	}
	return out, nil
}

// checkFunction implements spec.md §4.2's "Function declarations": register
// the signature before checking the body (so a function can call itself),
// check the body against a fresh type stack seeded with the parameter types,
// and require the final stack to equal the return types exactly. Chunks are
// checked in file order, so a call to a function declared later in the file
// is an UnboundIdentifier; mutual recursion between two functions is not
// accepted.
func (c *Checker) checkFunction(out *Chunk, name string, cur *cursor) error {
	*out = append(*out, Item{Kind: Def, Name: name})

	// The header (FunctionArgument/DashDash items) has no explicit
	// terminator: buildDef strips the "do" token before building the body, so
	// the boundary is wherever items stop being FunctionArgument/DashDash.
	var params, returns []ir.TypeSig
	parsingReturns := false
	for {
		item, ok := cur.peek()
		if !ok {
			return fmt.Errorf("%w: unexpected end of chunk in def %s header", LoweringInvariantViolation, name)
		}
		if item.Kind != ir.FunctionArgument && item.Kind != ir.DashDash {
			break
		}
		cur.next()
		if item.Kind == ir.DashDash {
			parsingReturns = true
			continue
		}
		flat, err := c.flatten([]ir.TypeSig{item.Type})
		if err != nil {
			return err
		}
		if parsingReturns {
			returns = append(returns, flat...)
		} else {
			params = append(params, flat...)
		}
	}

	fn := FunctionType{Name: name, Parameters: params, Returns: returns}
	c.functions.Put(name, fn)

	c.pushScope(params)
	for {
		item, ok := cur.next()
		if !ok {
			return fmt.Errorf("%w: unterminated def %s", LoweringInvariantViolation, name)
		}
		if item.Kind == ir.End {
			break
		}
		if err := c.checkExpression(out, item, cur); err != nil {
			return err
		}
	}
	final := c.popScope()

	if !typeStacksEqual(final, returns) {
		return fmt.Errorf("%w: function %q doesn't match its return types: declared %v, produced %v", TypeMismatch, name, returns, final)
	}
	*out = append(*out, Item{Kind: End})
	return nil
}

// checkVariable implements spec.md §4.2's "Variable declarations": a fresh
// empty type stack, the initializer must leave exactly one value, and the
// variable takes that value's type with the next dense slot index.
func (c *Checker) checkVariable(out *Chunk, name string, cur *cursor) error {
	*out = append(*out, Item{Kind: Var})
	c.pushScope(nil)
	for {
		item, ok := cur.next()
		if !ok {
			return fmt.Errorf("%w: unterminated var %s", LoweringInvariantViolation, name)
		}
		if item.Kind == ir.End {
			break
		}
		if err := c.checkExpression(out, item, cur); err != nil {
			return err
		}
	}
	final := c.popScope()
	if len(final) != 1 {
		return fmt.Errorf("%w: var %s initializer must leave exactly one value, left %d", CheckerShapeError, name, len(final))
	}

	slot := c.nextSlot
	c.nextSlot++
	c.variables.Put(name, Variable{Name: name, Type: final[0], Slot: slot})

	*out = append(*out, Item{Kind: MakeVar, Int: int64(slot)})
	return nil
}

// checkStruct implements spec.md §4.2's struct declarations: collect the
// flattened field types and register them. Struct chunks generate no typed
// output (spec.md §6).
func (c *Checker) checkStruct(name string, cur *cursor) error {
	var fields []ir.TypeSig
	for {
		item, ok := cur.next()
		if !ok {
			return fmt.Errorf("%w: unterminated struct %s", LoweringInvariantViolation, name)
		}
		if item.Kind == ir.End {
			break
		}
		if item.Kind != ir.StructField {
			return fmt.Errorf("%w: unexpected %v in struct %s", LoweringInvariantViolation, item.Kind, name)
		}
		flat, err := c.flatten([]ir.TypeSig{item.Type})
		if err != nil {
			return err
		}
		fields = append(fields, flat...)
	}
	c.structs.Put(name, StructType{Name: name, Fields: fields})
	return nil
}

// checkIf implements spec.md §4.2's control-flow rule for if/elif/else/end.
func (c *Checker) checkIf(out *Chunk, cur *cursor) error {
	var before []ir.TypeSig
	var branchSnapshot []ir.TypeSig
	haveBranch := false

	*out = append(*out, Item{Kind: If})

	for {
		item, ok := cur.next()
		if !ok {
			return fmt.Errorf("%w: unterminated if", LoweringInvariantViolation)
		}
		switch item.Kind {
		case ir.Then:
			cond, err := c.pop()
			if err != nil {
				return fmt.Errorf("%w: no value on stack for condition of if", CheckerShapeError)
			}
			if cond.Kind != ir.Bool {
				return fmt.Errorf("%w: condition of if must be bool, found %v", TypeMismatch, cond)
			}
			// the body starts executing from the stack shape left right
			// after the condition is consumed, so a branchless if's
			// "unchanged" check must compare against this point, not the
			// state before the condition was popped.
			before = append([]ir.TypeSig(nil), (*c.typeStack())...)
			*out = append(*out, Item{Kind: Then})

		case ir.Elif:
			if haveBranch {
				if !typeStacksEqual(*c.typeStack(), branchSnapshot) {
					return fmt.Errorf("%w: branches of if leave different type stacks: %v vs %v", BranchMismatch, branchSnapshot, *c.typeStack())
				}
			} else {
				branchSnapshot = append([]ir.TypeSig(nil), (*c.typeStack())...)
				haveBranch = true
			}
			// each branch is checked independently against the stack shape
			// the whole if started from, not against the previous branch's
			// accumulated effect.
			*c.typeStack() = append([]ir.TypeSig(nil), before...)
			*out = append(*out, Item{Kind: Elif})

		case ir.Else:
			if haveBranch {
				if !typeStacksEqual(*c.typeStack(), branchSnapshot) {
					return fmt.Errorf("%w: branches of if leave different type stacks: %v vs %v", BranchMismatch, branchSnapshot, *c.typeStack())
				}
			} else {
				branchSnapshot = append([]ir.TypeSig(nil), (*c.typeStack())...)
				haveBranch = true
			}
			*c.typeStack() = append([]ir.TypeSig(nil), before...)
			*out = append(*out, Item{Kind: Else})

		case ir.End:
			if haveBranch {
				if !typeStacksEqual(*c.typeStack(), branchSnapshot) {
					return fmt.Errorf("%w: branches of if leave different type stacks: %v vs %v", BranchMismatch, branchSnapshot, *c.typeStack())
				}
			} else if !typeStacksEqual(*c.typeStack(), before) {
				return fmt.Errorf("%w: if ends with altered type stack: before %v, after %v", BranchMismatch, before, *c.typeStack())
			}
			*out = append(*out, Item{Kind: End})
			return nil

		default:
			if err := c.checkExpression(out, item, cur); err != nil {
				return err
			}
		}
	}
}

// checkWhile implements spec.md §4.2's control-flow rule for while/do/end.
func (c *Checker) checkWhile(out *Chunk, cur *cursor) error {
	before := append([]ir.TypeSig(nil), (*c.typeStack())...)

	*out = append(*out, Item{Kind: While})

	for {
		item, ok := cur.next()
		if !ok {
			return fmt.Errorf("%w: unterminated while", LoweringInvariantViolation)
		}
		switch item.Kind {
		case ir.Do:
			cond, err := c.pop()
			if err != nil {
				return fmt.Errorf("%w: while loop requires a condition but no data is present", CheckerShapeError)
			}
			if cond.Kind != ir.Bool {
				return fmt.Errorf("%w: while loop condition must be bool, found %v", TypeMismatch, cond)
			}
			*out = append(*out, Item{Kind: Do})

		case ir.End:
			*out = append(*out, Item{Kind: End})
			if !typeStacksEqual(*c.typeStack(), before) {
				return fmt.Errorf("%w: while loop ends with altered type stack: before %v, after %v", BranchMismatch, before, *c.typeStack())
			}
			return nil

		default:
			if err := c.checkExpression(out, item, cur); err != nil {
				return err
			}
		}
	}
}

// Bind drains the top n entries of the current type stack (bottom-first)
// onto the bind stack, per spec.md §3/§4.1. It is exercised only by
// hand-built typed IR (see SPEC_FULL.md §3.6); no frontend token produces
// it.
func (c *Checker) Bind(out *Chunk, n int) error {
	ts := c.typeStack()
	if len(*ts) < n {
		return fmt.Errorf("%w: bind(%d) requires %d items on the stack, found %d", CheckerShapeError, n, n, len(*ts))
	}
	popped := (*ts)[len(*ts)-n:]
	c.bindStack = append(c.bindStack, popped...)
	*ts = (*ts)[:len(*ts)-n]
	*out = append(*out, Item{Kind: Bind, Int: int64(n)})
	return nil
}

// Unbind truncates n entries from the top of the bind stack.
func (c *Checker) Unbind(out *Chunk, n int) error {
	if len(c.bindStack) < n {
		return fmt.Errorf("%w: unbind(%d) requires %d items on the bind stack, found %d", CheckerShapeError, n, n, len(c.bindStack))
	}
	c.bindStack = c.bindStack[:len(c.bindStack)-n]
	*out = append(*out, Item{Kind: Unbind, Int: int64(n)})
	return nil
}

// PushBind pushes bind_stack[i] (zero being the bottom) onto the type
// stack.
func (c *Checker) PushBind(out *Chunk, i int) error {
	if i < 0 || i >= len(c.bindStack) {
		return fmt.Errorf("%w: bind index %d out of range (bind stack has %d entries)", CheckerShapeError, i, len(c.bindStack))
	}
	c.push(c.bindStack[i])
	*out = append(*out, Item{Kind: PushBind, Int: int64(i)})
	return nil
}
