package typecheck

import (
	"fmt"

	"github.com/rekolang/reko/lang/ir"
)

// Kind enumerates the typed IR item kinds produced by the checker. It keeps
// ir.Kind's operations except the items the checker consumes
// (FunctionArgument, DashDash, Struct, StructField, Print, Ident), and adds
// the checker-elaborated operations
// (PrintBool/PrintInt/PrintStr/PrintPtr, LoadStr) and the operations that
// only ever appear in typed IR (Bind, Unbind, PushBind, PushVar, MakeVar),
// per spec.md §4.1's five typed-IR groups.
type Kind int

const (
	PushBool Kind = iota
	PushInt
	PushStr

	Def
	Var
	If
	Then
	Elif
	Else
	While
	Do
	End

	Dup
	Over
	Drop
	Swap

	PrintBool
	PrintInt
	PrintStr
	PrintPtr

	Add
	Subtract
	Multiply
	Divide

	Eq
	Neq
	Lt
	Gt
	And
	Or
	Not

	Assign
	Load
	LoadStr

	Call

	Bind
	Unbind
	PushBind
	PushVar
	MakeVar
)

var kindNames = [...]string{
	PushBool: "PushBool", PushInt: "PushInt", PushStr: "PushStr",
	Def: "Def", Var: "Var", If: "If", Then: "Then", Elif: "Elif", Else: "Else",
	While: "While", Do: "Do", End: "End",
	Dup: "Dup", Over: "Over", Drop: "Drop", Swap: "Swap",
	PrintBool: "PrintBool", PrintInt: "PrintInt", PrintStr: "PrintStr", PrintPtr: "PrintPtr",
	Add: "Add", Subtract: "Subtract", Multiply: "Multiply", Divide: "Divide",
	Eq: "Eq", Neq: "Neq", Lt: "Lt", Gt: "Gt", And: "And", Or: "Or", Not: "Not",
	Assign: "Assign", Load: "Load", LoadStr: "LoadStr",
	Call: "Call",
	Bind: "Bind", Unbind: "Unbind", PushBind: "PushBind", PushVar: "PushVar", MakeVar: "MakeVar",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Item is one element of a typed Chunk. Which field carries the operand
// depends on Kind, mirroring ir.Item:
//
//	PushBool                     -> Bool
//	PushInt                      -> Int
//	PushStr                      -> Str
//	Call                         -> Name (resolved function name)
//	Bind, Unbind                 -> Int (count)
//	PushBind, PushVar, MakeVar   -> Int (bind-stack index / variable slot)
type Item struct {
	Kind Kind
	Bool bool
	Int  int64
	Str  string
	Name string
}

// Chunk is one declaration's typed IR, ready for lang/compiler.
type Chunk []Item

// FunctionType is a function's flattened signature, struct parameters and
// returns already expanded to their field types.
type FunctionType struct {
	Name       string
	Parameters []ir.TypeSig
	Returns    []ir.TypeSig
}

// StructType is a declared structure's flattened field-type sequence.
type StructType struct {
	Name   string
	Fields []ir.TypeSig
}

// Variable is a checked variable declaration: its inferred type and its
// dense slot index in the VM's variable-cell array.
type Variable struct {
	Name string
	Type ir.TypeSig
	Slot int
}
