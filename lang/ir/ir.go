// Package ir defines the untyped intermediate representation that is the
// wire contract between the frontend (tokenizer, chunkifier, surface parser)
// and the type checker. A Chunk is one top-level declaration's stream of
// Items, as described by the chunk discipline in the language
// specification: every chunk begins with Def, Var, or Struct.
package ir

import "fmt"

// TypeKind identifies the shape of a TypeSig.
type TypeKind int

const (
	Bool TypeKind = iota
	Int
	Str
	Ptr
	Struct
)

func (k TypeKind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Str:
		return "str"
	case Ptr:
		return "ptr"
	case Struct:
		return "struct"
	default:
		return fmt.Sprintf("TypeKind(%d)", int(k))
	}
}

// TypeSig is one of Bool | Int | Str | Ptr(TypeSig) | Struct(name), matching
// the TypeSig grammar in the language specification. Elem is only set for
// Ptr; Name is only set for Struct.
type TypeSig struct {
	Kind TypeKind
	Elem *TypeSig
	Name string
}

func Bool_() TypeSig  { return TypeSig{Kind: Bool} }
func Int_() TypeSig   { return TypeSig{Kind: Int} }
func Str_() TypeSig   { return TypeSig{Kind: Str} }
func PtrOf(t TypeSig) TypeSig { return TypeSig{Kind: Ptr, Elem: &t} }
func StructOf(name string) TypeSig { return TypeSig{Kind: Struct, Name: name} }

// Equal reports whether t and o denote the same type signature.
func (t TypeSig) Equal(o TypeSig) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Ptr:
		if t.Elem == nil || o.Elem == nil {
			return t.Elem == o.Elem
		}
		return t.Elem.Equal(*o.Elem)
	case Struct:
		return t.Name == o.Name
	default:
		return true
	}
}

func (t TypeSig) String() string {
	switch t.Kind {
	case Ptr:
		if t.Elem == nil {
			return "ptr<?>"
		}
		return fmt.Sprintf("ptr<%s>", t.Elem.String())
	case Struct:
		return fmt.Sprintf("struct %s", t.Name)
	default:
		return t.Kind.String()
	}
}

// Kind enumerates the untyped IR item kinds consumed by the type checker.
// This is the full input contract of the CORE, as defined in the
// specification's external interfaces section, plus Ident (see SPEC_FULL.md
// §5 for why Ident exists: the spec's prose assumes a variable-reference
// kind that its own kind enumeration omits).
type Kind int

const (
	PushBool Kind = iota
	PushInt
	PushStr

	End
	If
	Elif
	Else
	Then
	While
	Do

	Def
	FunctionArgument
	DashDash

	Var
	Struct
	StructField

	Dup
	Over
	Drop
	Swap
	Print

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
	Call

	// Ident is a bare identifier reference, resolved by the checker against
	// the function table first and then the variable table. See
	// SPEC_FULL.md §2.2/§5.
	Ident
)

var kindNames = [...]string{
	PushBool:         "PushBool",
	PushInt:          "PushInt",
	PushStr:          "PushStr",
	End:              "End",
	If:               "If",
	Elif:             "Elif",
	Else:             "Else",
	Then:             "Then",
	While:            "While",
	Do:               "Do",
	Def:              "Def",
	FunctionArgument: "FunctionArgument",
	DashDash:         "DashDash",
	Var:              "Var",
	Struct:           "Struct",
	StructField:      "StructField",
	Dup:              "Dup",
	Over:             "Over",
	Drop:             "Drop",
	Swap:             "Swap",
	Print:            "Print",
	Add:              "Add",
	Subtract:         "Subtract",
	Multiply:         "Multiply",
	Divide:           "Divide",
	Eq:               "Eq",
	Neq:              "Neq",
	Lt:               "Lt",
	Gt:               "Gt",
	And:              "And",
	Or:               "Or",
	Not:              "Not",
	Assign:           "Assign",
	Load:             "Load",
	Call:             "Call",
	Ident:            "Ident",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Item is one element of a Chunk. Which of Bool/Int/Str/Name/Type carries
// the operand depends on Kind:
//
//	PushBool            -> Bool
//	PushInt             -> Int
//	PushStr             -> Str
//	Def, Var, Struct    -> Name (declaration name)
//	Call, Ident         -> Name (referenced identifier)
//	FunctionArgument    -> Type
//	StructField         -> Type
type Item struct {
	Kind Kind
	Bool bool
	Int  int64
	Str  string
	Name string
	Type TypeSig
}

// Chunk is one top-level declaration's stream of Items.
type Chunk []Item
