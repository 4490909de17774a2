package frontend

import (
	"fmt"

	"github.com/rekolang/reko/lang/ir"
	"github.com/rekolang/reko/lang/scanner"
	"github.com/rekolang/reko/lang/token"
)

// build converts one tokChunk into an ir.Chunk, substituting any identifier
// that names a folded const for its literal value.
func build(tc tokChunk, consts map[string]constVal) (ir.Chunk, error) {
	switch tc.kind {
	case token.DEF:
		return buildDef(tc, consts)
	case token.VAR:
		return buildVar(tc, consts)
	case token.STRUCT:
		return buildStruct(tc)
	default:
		return nil, fmt.Errorf("unexpected chunk kind %v", tc.kind)
	}
}

// buildDef lowers `def <name> <argtype>* -- <rettype>* do <body> end`.
func buildDef(tc tokChunk, consts map[string]constVal) (ir.Chunk, error) {
	chunk := ir.Chunk{{Kind: ir.Def, Name: tc.name}}

	i := 0
	seenDashDash := false
	for ; i < len(tc.toks); i++ {
		if tc.toks[i].Token == token.DASHDASH {
			chunk = append(chunk, ir.Item{Kind: ir.DashDash})
			seenDashDash = true
			continue
		}
		if tc.toks[i].Token == token.DO {
			i++
			break
		}
		sig, n, err := parseTypeSig(tc.toks, i)
		if err != nil {
			return nil, fmt.Errorf("def %s: %w", tc.name, err)
		}
		chunk = append(chunk, ir.Item{Kind: ir.FunctionArgument, Type: sig})
		i += n - 1
	}
	if !seenDashDash {
		return nil, fmt.Errorf("def %s: missing -- separator", tc.name)
	}

	body, err := buildBody(tc.toks[i:], consts)
	if err != nil {
		return nil, fmt.Errorf("def %s: %w", tc.name, err)
	}
	chunk = append(chunk, body...)
	chunk = append(chunk, ir.Item{Kind: ir.End})
	return chunk, nil
}

// buildVar lowers `var <name> do <initializer> end`. The variable's type is
// inferred by the checker from the initializer's resulting type, per
// spec.md §4.2.
func buildVar(tc tokChunk, consts map[string]constVal) (ir.Chunk, error) {
	if len(tc.toks) == 0 || tc.toks[0].Token != token.DO {
		return nil, fmt.Errorf("var %s: expected do", tc.name)
	}
	chunk := ir.Chunk{{Kind: ir.Var, Name: tc.name}}
	body, err := buildBody(tc.toks[1:], consts)
	if err != nil {
		return nil, fmt.Errorf("var %s: %w", tc.name, err)
	}
	chunk = append(chunk, body...)
	chunk = append(chunk, ir.Item{Kind: ir.End})
	return chunk, nil
}

// buildStruct lowers `struct <name> <type>* end`; each listed type becomes a
// StructField(type) item, unnamed, matching original_source/src/typer.rs's
// typecheck_struct (field names never enter the typed model).
func buildStruct(tc tokChunk) (ir.Chunk, error) {
	chunk := ir.Chunk{{Kind: ir.Struct, Name: tc.name}}
	for i := 0; i < len(tc.toks); {
		sig, n, err := parseTypeSig(tc.toks, i)
		if err != nil {
			return nil, fmt.Errorf("struct %s: %w", tc.name, err)
		}
		chunk = append(chunk, ir.Item{Kind: ir.StructField, Type: sig})
		i += n
	}
	chunk = append(chunk, ir.Item{Kind: ir.End})
	return chunk, nil
}

// parseTypeSig parses one TypeSig starting at toks[i]: `bool`, `int`, `str`,
// `ptr <TypeSig>`, or a bare identifier naming a declared struct. It returns
// the number of tokens consumed.
func parseTypeSig(toks []scanner.TokenAndValue, i int) (ir.TypeSig, int, error) {
	if i >= len(toks) || toks[i].Token != token.IDENT {
		return ir.TypeSig{}, 0, fmt.Errorf("expected a type name")
	}
	switch toks[i].Value.Raw {
	case "bool":
		return ir.Bool_(), 1, nil
	case "int":
		return ir.Int_(), 1, nil
	case "str":
		return ir.Str_(), 1, nil
	case "ptr":
		elem, n, err := parseTypeSig(toks, i+1)
		if err != nil {
			return ir.TypeSig{}, 0, fmt.Errorf("ptr: %w", err)
		}
		return ir.PtrOf(elem), n + 1, nil
	default:
		return ir.StructOf(toks[i].Value.Raw), 1, nil
	}
}

// buildBody translates a run of expression/control-flow tokens into ir.Items,
// substituting const identifiers along the way. Structural tokens
// (if/then/elif/else/end/while/do) pass through one-to-one; everything else
// maps to the matching operator or stack-shuffle kind.
func buildBody(toks []scanner.TokenAndValue, consts map[string]constVal) (ir.Chunk, error) {
	var out ir.Chunk
	for _, tv := range toks {
		switch tv.Token {
		case token.INT:
			out = append(out, ir.Item{Kind: ir.PushInt, Int: tv.Value.Int})
		case token.STR:
			out = append(out, ir.Item{Kind: ir.PushStr, Str: tv.Value.Str})
		case token.TRUE:
			out = append(out, ir.Item{Kind: ir.PushBool, Bool: true})
		case token.FALSE:
			out = append(out, ir.Item{Kind: ir.PushBool, Bool: false})

		case token.IF:
			out = append(out, ir.Item{Kind: ir.If})
		case token.THEN:
			out = append(out, ir.Item{Kind: ir.Then})
		case token.ELIF:
			out = append(out, ir.Item{Kind: ir.Elif})
		case token.ELSE:
			out = append(out, ir.Item{Kind: ir.Else})
		case token.END:
			out = append(out, ir.Item{Kind: ir.End})
		case token.WHILE:
			out = append(out, ir.Item{Kind: ir.While})
		case token.DO:
			out = append(out, ir.Item{Kind: ir.Do})

		case token.DUP:
			out = append(out, ir.Item{Kind: ir.Dup})
		case token.OVER:
			out = append(out, ir.Item{Kind: ir.Over})
		case token.DROP:
			out = append(out, ir.Item{Kind: ir.Drop})
		case token.SWAP:
			out = append(out, ir.Item{Kind: ir.Swap})
		case token.PRINT:
			out = append(out, ir.Item{Kind: ir.Print})

		case token.PLUS:
			out = append(out, ir.Item{Kind: ir.Add})
		case token.MINUS:
			out = append(out, ir.Item{Kind: ir.Subtract})
		case token.STAR:
			out = append(out, ir.Item{Kind: ir.Multiply})
		case token.SLASH:
			out = append(out, ir.Item{Kind: ir.Divide})

		case token.EQEQ:
			out = append(out, ir.Item{Kind: ir.Eq})
		case token.BANGEQ:
			out = append(out, ir.Item{Kind: ir.Neq})
		case token.LT:
			out = append(out, ir.Item{Kind: ir.Lt})
		case token.GT:
			out = append(out, ir.Item{Kind: ir.Gt})
		case token.AND:
			out = append(out, ir.Item{Kind: ir.And})
		case token.OR:
			out = append(out, ir.Item{Kind: ir.Or})
		case token.NOT:
			out = append(out, ir.Item{Kind: ir.Not})

		case token.EQ:
			out = append(out, ir.Item{Kind: ir.Assign})
		case token.LOAD:
			out = append(out, ir.Item{Kind: ir.Load})

		case token.IDENT:
			if cv, ok := consts[tv.Value.Raw]; ok {
				out = append(out, constItem(cv))
				continue
			}
			out = append(out, ir.Item{Kind: ir.Ident, Name: tv.Value.Raw})

		default:
			return nil, fmt.Errorf("unexpected token %v in body", tv.Token)
		}
	}
	return out, nil
}

func constItem(cv constVal) ir.Item {
	switch cv.Kind {
	case token.INT:
		return ir.Item{Kind: ir.PushInt, Int: cv.Int}
	case token.STR:
		return ir.Item{Kind: ir.PushStr, Str: cv.Str}
	default:
		return ir.Item{Kind: ir.PushBool, Bool: cv.Bool}
	}
}
