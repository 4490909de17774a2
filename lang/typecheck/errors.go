package typecheck

import "errors"

// Sentinel error kinds, per spec.md §7. Wrap these with fmt.Errorf("%w: ...")
// so callers can errors.Is against a specific failure kind.
var (
	// CheckerShapeError: stack underflow or arity mismatch at a typed
	// operation.
	CheckerShapeError = errors.New("stack shape error")
	// TypeMismatch: operand of wrong type, mismatched Eq/Neq operands,
	// non-pointer Assign/Load target, function return-stack mismatch.
	TypeMismatch = errors.New("type mismatch")
	// BranchMismatch: arms of an if (or a loop body) leave the type stack in
	// non-equal states.
	BranchMismatch = errors.New("branch mismatch")
	// UnboundIdentifier: a call or variable reference names an undeclared
	// function or variable.
	UnboundIdentifier = errors.New("unbound identifier")
	// LoweringInvariantViolation: unexpected structural item (End/Then/Elif/
	// Else/Do) at expression position; indicates a checker bug, since the
	// checker should have already rejected the malformed chunk.
	LoweringInvariantViolation = errors.New("lowering invariant violation")
)
