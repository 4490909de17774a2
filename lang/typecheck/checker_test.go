package typecheck

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rekolang/reko/lang/ir"
)

func intArg() ir.Item { return ir.Item{Kind: ir.FunctionArgument, Type: ir.Int_()} }
func boolArg() ir.Item { return ir.Item{Kind: ir.FunctionArgument, Type: ir.Bool_()} }

func TestCheckSimpleFunction(t *testing.T) {
	// def add int int -- int do + end
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "add"},
			intArg(), intArg(),
			{Kind: ir.DashDash},
			intArg(),
			{Kind: ir.Add},
			{Kind: ir.End},
		},
	}

	typed, varCount, err := Check(chunks)
	require.NoError(t, err)
	require.Equal(t, 0, varCount)
	require.Len(t, typed, 1)
	require.Equal(t, Chunk{
		{Kind: Def, Name: "add"},
		{Kind: Add},
		{Kind: End},
	}, typed[0])
}

func TestCheckRecursiveCall(t *testing.T) {
	// def loop int -- do drop if false then 1 loop end end
	// self-recursive, proves the function's own signature is registered
	// before its body is checked.
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "loop"},
			intArg(),
			{Kind: ir.DashDash},
			{Kind: ir.Drop},
			{Kind: ir.If},
			{Kind: ir.PushBool, Bool: false},
			{Kind: ir.Then},
			{Kind: ir.PushInt, Int: 1},
			{Kind: ir.Ident, Name: "loop"},
			{Kind: ir.End},
			{Kind: ir.End},
		},
	}
	_, _, err := Check(chunks)
	require.NoError(t, err)
}

func TestCheckCallToEarlierDeclaredFunction(t *testing.T) {
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "isEven"},
			intArg(),
			{Kind: ir.DashDash},
			boolArg(),
			{Kind: ir.Drop},
			{Kind: ir.PushBool, Bool: true},
			{Kind: ir.End},
		},
		{
			{Kind: ir.Def, Name: "callsIsEven"},
			intArg(),
			{Kind: ir.DashDash},
			boolArg(),
			{Kind: ir.Ident, Name: "isEven"},
			{Kind: ir.End},
		},
	}
	typed, _, err := Check(chunks)
	require.NoError(t, err)
	require.Len(t, typed, 2)
}

func TestCheckForwardReferenceBeforeDeclaration(t *testing.T) {
	// "b" is checked before "a" is declared. The checker registers a
	// function's own signature before checking its own body, but chunks are
	// checked strictly in order, so a forward reference to a chunk appearing
	// LATER in the file is unresolved.
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "b"},
			{Kind: ir.DashDash},
			{Kind: ir.Ident, Name: "a"},
			{Kind: ir.End},
		},
		{
			{Kind: ir.Def, Name: "a"},
			{Kind: ir.DashDash},
			{Kind: ir.End},
		},
	}
	_, _, err := Check(chunks)
	require.ErrorIs(t, err, UnboundIdentifier)
}

func TestCheckUnboundIdentifier(t *testing.T) {
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "main"},
			{Kind: ir.DashDash},
			{Kind: ir.Ident, Name: "nope"},
			{Kind: ir.End},
		},
	}
	_, _, err := Check(chunks)
	require.ErrorIs(t, err, UnboundIdentifier)
}

func TestCheckStackUnderflow(t *testing.T) {
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "main"},
			{Kind: ir.DashDash},
			{Kind: ir.Add},
			{Kind: ir.End},
		},
	}
	_, _, err := Check(chunks)
	require.ErrorIs(t, err, CheckerShapeError)
}

func TestCheckTypeMismatchOnArithmetic(t *testing.T) {
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "main"},
			{Kind: ir.DashDash},
			{Kind: ir.PushInt, Int: 1},
			{Kind: ir.PushBool, Bool: true},
			{Kind: ir.Add},
			{Kind: ir.End},
		},
	}
	_, _, err := Check(chunks)
	require.ErrorIs(t, err, TypeMismatch)
}

func TestCheckIfBranchMismatch(t *testing.T) {
	// if true then 1 else end -- leaves an int on one arm, nothing on the other
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "main"},
			{Kind: ir.DashDash},
			{Kind: ir.If},
			{Kind: ir.PushBool, Bool: true},
			{Kind: ir.Then},
			{Kind: ir.PushInt, Int: 1},
			{Kind: ir.Else},
			{Kind: ir.End},
		},
	}
	_, _, err := Check(chunks)
	require.ErrorIs(t, err, BranchMismatch)
}

func TestCheckIfBalancedBranches(t *testing.T) {
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "main"},
			{Kind: ir.DashDash},
			intArg(),
			{Kind: ir.If},
			{Kind: ir.PushBool, Bool: true},
			{Kind: ir.Then},
			{Kind: ir.PushInt, Int: 1},
			{Kind: ir.Else},
			{Kind: ir.PushInt, Int: 2},
			{Kind: ir.End},
			{Kind: ir.End},
		},
	}
	typed, _, err := Check(chunks)
	require.NoError(t, err)
	require.Len(t, typed, 1)
}

func TestCheckIfElifElseEachBranchCheckedFromSharedBaseline(t *testing.T) {
	// if true then 1 elif false then 2 else 3 end -- every arm must be
	// checked against the same pre-branch stack, not the previous arm's
	// leftover effect.
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "main"},
			{Kind: ir.DashDash},
			intArg(),
			{Kind: ir.If},
			{Kind: ir.PushBool, Bool: true},
			{Kind: ir.Then},
			{Kind: ir.PushInt, Int: 1},
			{Kind: ir.Elif},
			{Kind: ir.PushBool, Bool: false},
			{Kind: ir.Then},
			{Kind: ir.PushInt, Int: 2},
			{Kind: ir.Else},
			{Kind: ir.PushInt, Int: 3},
			{Kind: ir.End},
			{Kind: ir.End},
		},
	}
	_, _, err := Check(chunks)
	require.NoError(t, err)
}

func TestCheckWhileLoopPreservesStackShape(t *testing.T) {
	// while false do end -- an empty body type-checks since the loop's
	// invariant (stack before the condition == stack after the body) holds
	// trivially.
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "main"},
			{Kind: ir.DashDash},
			{Kind: ir.While},
			{Kind: ir.PushBool, Bool: false},
			{Kind: ir.Do},
			{Kind: ir.End},
			{Kind: ir.End},
		},
	}
	_, _, err := Check(chunks)
	require.NoError(t, err)
}

func TestCheckWhileLoopAlteredShapeRejected(t *testing.T) {
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "main"},
			{Kind: ir.DashDash},
			{Kind: ir.While},
			{Kind: ir.PushBool, Bool: false},
			{Kind: ir.Do},
			{Kind: ir.PushInt, Int: 1},
			{Kind: ir.End},
			{Kind: ir.End},
		},
	}
	_, _, err := Check(chunks)
	require.ErrorIs(t, err, BranchMismatch)
}

func TestCheckVariableDeclarationAndLoad(t *testing.T) {
	chunks := []ir.Chunk{
		{
			{Kind: ir.Var, Name: "counter"},
			{Kind: ir.PushInt, Int: 0},
			{Kind: ir.End},
		},
		{
			{Kind: ir.Def, Name: "main"},
			{Kind: ir.DashDash},
			intArg(),
			{Kind: ir.Ident, Name: "counter"},
			{Kind: ir.Load},
			{Kind: ir.End},
		},
	}
	typed, varCount, err := Check(chunks)
	require.NoError(t, err)
	require.Equal(t, 1, varCount)
	require.Len(t, typed, 2)
	require.Equal(t, Chunk{{Kind: Var}, {Kind: PushInt, Int: 0}, {Kind: MakeVar, Int: 0}}, typed[0])
	require.Equal(t, Chunk{
		{Kind: Def, Name: "main"},
		{Kind: PushVar, Int: 0},
		{Kind: Load},
		{Kind: End},
	}, typed[1])
}

func TestCheckVariableInitializerMustLeaveExactlyOneValue(t *testing.T) {
	chunks := []ir.Chunk{
		{
			{Kind: ir.Var, Name: "bad"},
			{Kind: ir.PushInt, Int: 1},
			{Kind: ir.PushInt, Int: 2},
			{Kind: ir.End},
		},
	}
	_, _, err := Check(chunks)
	require.ErrorIs(t, err, CheckerShapeError)
}

func TestCheckStructFlattening(t *testing.T) {
	chunks := []ir.Chunk{
		{
			{Kind: ir.Struct, Name: "point"},
			{Kind: ir.StructField, Type: ir.Int_()},
			{Kind: ir.StructField, Type: ir.Int_()},
			{Kind: ir.End},
		},
		{
			{Kind: ir.Def, Name: "sum"},
			{Kind: ir.FunctionArgument, Type: ir.StructOf("point")},
			{Kind: ir.DashDash},
			intArg(),
			{Kind: ir.Add},
			{Kind: ir.End},
		},
	}
	typed, _, err := Check(chunks)
	require.NoError(t, err)
	// the struct chunk contributes no typed output
	require.Len(t, typed, 1)
	require.Equal(t, "sum", typed[0][0].Name)
}

func TestCheckLoadStrElaboratesToLoadStr(t *testing.T) {
	chunks := []ir.Chunk{
		{
			{Kind: ir.Var, Name: "name"},
			{Kind: ir.PushStr, Str: "reko"},
			{Kind: ir.End},
		},
		{
			{Kind: ir.Def, Name: "main"},
			{Kind: ir.DashDash},
			{Kind: ir.FunctionArgument, Type: ir.Str_()},
			{Kind: ir.Ident, Name: "name"},
			{Kind: ir.Load},
			{Kind: ir.End},
		},
	}
	typed, _, err := Check(chunks)
	require.NoError(t, err)
	require.Equal(t, LoadStr, typed[1][2].Kind)
}

func TestCheckAssignRequiresMatchingPointeeType(t *testing.T) {
	chunks := []ir.Chunk{
		{
			{Kind: ir.Var, Name: "n"},
			{Kind: ir.PushInt, Int: 0},
			{Kind: ir.End},
		},
		{
			{Kind: ir.Def, Name: "main"},
			{Kind: ir.DashDash},
			{Kind: ir.PushBool, Bool: true},
			{Kind: ir.Ident, Name: "n"},
			{Kind: ir.Assign},
			{Kind: ir.End},
		},
	}
	_, _, err := Check(chunks)
	require.ErrorIs(t, err, TypeMismatch)
}

func TestCheckPrintElaboratesByPoppedType(t *testing.T) {
	chunks := []ir.Chunk{
		{
			{Kind: ir.Def, Name: "main"},
			{Kind: ir.DashDash},
			{Kind: ir.PushInt, Int: 1},
			{Kind: ir.Print},
			{Kind: ir.PushStr, Str: "x"},
			{Kind: ir.Print},
			{Kind: ir.PushBool, Bool: true},
			{Kind: ir.Print},
			{Kind: ir.End},
		},
	}
	typed, _, err := Check(chunks)
	require.NoError(t, err)
	kinds := []Kind{typed[0][2].Kind, typed[0][4].Kind, typed[0][6].Kind}
	require.Equal(t, []Kind{PrintInt, PrintStr, PrintBool}, kinds)
}

func TestCheckEmptyChunkRejected(t *testing.T) {
	chunks := []ir.Chunk{{}}
	_, _, err := Check(chunks)
	require.ErrorIs(t, err, CheckerShapeError)
}

func TestBindUnbindPushBind(t *testing.T) {
	c := NewChecker()
	c.pushScope([]ir.TypeSig{ir.Int_(), ir.Bool_()})

	var out Chunk
	require.NoError(t, c.Bind(&out, 2))
	require.Len(t, c.bindStack, 2)
	require.Empty(t, *c.typeStack())

	require.NoError(t, c.PushBind(&out, 0))
	require.Equal(t, ir.Int_(), (*c.typeStack())[0])

	require.NoError(t, c.Unbind(&out, 2))
	require.Empty(t, c.bindStack)

	require.Equal(t, Chunk{
		{Kind: Bind, Int: 2},
		{Kind: PushBind, Int: 0},
		{Kind: Unbind, Int: 2},
	}, out)
}

func TestBindInsufficientStackIsShapeError(t *testing.T) {
	c := NewChecker()
	c.pushScope(nil)
	var out Chunk
	err := c.Bind(&out, 1)
	require.ErrorIs(t, err, CheckerShapeError)
}

func TestPushBindOutOfRange(t *testing.T) {
	c := NewChecker()
	c.pushScope(nil)
	var out Chunk
	err := c.PushBind(&out, 0)
	require.ErrorIs(t, err, CheckerShapeError)
}
