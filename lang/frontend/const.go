package frontend

import (
	"fmt"

	"github.com/rekolang/reko/lang/scanner"
	"github.com/rekolang/reko/lang/token"
)

// constVal is the result of folding one `const` chunk: exactly one of Bool,
// Int, or Str is meaningful, selected by Kind.
type constVal struct {
	Kind token.Token // INT, TRUE/FALSE (bool), or STR
	Bool bool
	Int  int64
	Str  string
}

// foldConsts evaluates every `const` chunk's body to a single value, grounded
// on original_source/src/evaluator.rs's constant_evaluate: a tiny stack
// machine supporting literals, Add/Subtract/Multiply/Divide (int-only), and
// Eq. Subtract/Divide use the operand order of spec.md §4.4's VM table (pop
// b, pop a, push a⊕b) rather than evaluator.rs's own operand naming, which
// is inverted relative to the VM and would otherwise fold non-commutative
// expressions to a different value than running them at runtime would
// produce (see DESIGN.md).
func foldConsts(chunks []tokChunk) (map[string]constVal, error) {
	consts := make(map[string]constVal)
	for _, tc := range chunks {
		if tc.kind != token.CONST {
			continue
		}
		if len(tc.toks) == 0 || tc.toks[0].Token != token.DO {
			return nil, fmt.Errorf("const %s: expected do", tc.name)
		}
		v, err := evalConstBody(tc.toks[1:], consts)
		if err != nil {
			return nil, fmt.Errorf("const %s: %w", tc.name, err)
		}
		consts[tc.name] = v
	}
	return consts, nil
}

func evalConstBody(toks []scanner.TokenAndValue, consts map[string]constVal) (constVal, error) {
	var stack []constVal

	pop := func() (constVal, error) {
		if len(stack) == 0 {
			return constVal{}, fmt.Errorf("stack underflow")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for _, tv := range toks {
		switch tv.Token {
		case token.INT:
			stack = append(stack, constVal{Kind: token.INT, Int: tv.Value.Int})
		case token.STR:
			stack = append(stack, constVal{Kind: token.STR, Str: tv.Value.Str})
		case token.TRUE:
			stack = append(stack, constVal{Kind: token.TRUE, Bool: true})
		case token.FALSE:
			stack = append(stack, constVal{Kind: token.TRUE, Bool: false})
		case token.IDENT:
			cv, ok := consts[tv.Value.Raw]
			if !ok {
				return constVal{}, fmt.Errorf("unbound identifier %q in const expression", tv.Value.Raw)
			}
			stack = append(stack, cv)
		case token.PLUS, token.MINUS, token.STAR, token.SLASH:
			b, err := pop()
			if err != nil {
				return constVal{}, err
			}
			a, err := pop()
			if err != nil {
				return constVal{}, err
			}
			if a.Kind != token.INT || b.Kind != token.INT {
				return constVal{}, fmt.Errorf("arithmetic is only an integer operation")
			}
			var r int64
			switch tv.Token {
			case token.PLUS:
				r = a.Int + b.Int
			case token.MINUS:
				r = a.Int - b.Int
			case token.STAR:
				r = a.Int * b.Int
			case token.SLASH:
				if b.Int == 0 {
					return constVal{}, fmt.Errorf("division by zero")
				}
				r = a.Int / b.Int
			}
			stack = append(stack, constVal{Kind: token.INT, Int: r})
		case token.EQEQ:
			b, err := pop()
			if err != nil {
				return constVal{}, err
			}
			a, err := pop()
			if err != nil {
				return constVal{}, err
			}
			if a.Kind != b.Kind {
				return constVal{}, fmt.Errorf("cannot evaluate equality between values of different types")
			}
			var eq bool
			switch a.Kind {
			case token.TRUE:
				eq = a.Bool == b.Bool
			case token.INT:
				eq = a.Int == b.Int
			case token.STR:
				eq = a.Str == b.Str
			}
			stack = append(stack, constVal{Kind: token.TRUE, Bool: eq})
		default:
			return constVal{}, fmt.Errorf("unsupported operation %v in const expression", tv.Token)
		}
	}

	if len(stack) > 1 {
		return constVal{}, fmt.Errorf("unhandled data in constant evaluation")
	}
	if len(stack) == 0 {
		return constVal{}, fmt.Errorf("const does not evaluate to any value")
	}
	return stack[0], nil
}
