package frontend

import (
	"fmt"

	"github.com/rekolang/reko/lang/scanner"
	"github.com/rekolang/reko/lang/token"
)

// tokChunk is one top-level declaration's raw token stream: its opening
// keyword (def/var/struct/const), its declared name, and the header + body
// tokens up to (but not including) the balancing `end`.
type tokChunk struct {
	kind token.Token // DEF, VAR, STRUCT, or CONST
	name string
	toks []scanner.TokenAndValue

	isConst bool
}

// opensNestedEnd reports whether tok opens a construct balanced by its own
// `end`, so that the chunkifier does not mistake an inner `end` for the
// chunk's own terminator. def/while/if all nest; var/struct/const chunks
// cannot themselves contain a nested def/var/struct/const (the surface
// grammar has no block-scoped declarations), but they can contain if/while.
func opensNestedEnd(tok token.Token) bool {
	switch tok {
	case token.DEF, token.IF, token.WHILE:
		return true
	}
	return false
}

// chunkify splits a token stream into top-level declaration chunks,
// balancing `end` the way spec.md §1 describes the "chunkifier" doing.
func chunkify(toks []scanner.TokenAndValue) ([]tokChunk, error) {
	var chunks []tokChunk

	i := 0
	for i < len(toks) && toks[i].Token != token.EOF {
		head := toks[i]
		switch head.Token {
		case token.DEF, token.VAR, token.STRUCT, token.CONST:
		case token.INCLUDE:
			return nil, fmt.Errorf("include is not supported (line %d)", line(head))
		default:
			return nil, fmt.Errorf("expected def, var, struct or const at top level, got %v (line %d)", head.Token, line(head))
		}

		if i+1 >= len(toks) || toks[i+1].Token != token.IDENT {
			return nil, fmt.Errorf("expected a name after %v (line %d)", head.Token, line(head))
		}
		name := toks[i+1].Value.Raw

		depth := 0
		j := i + 2
		for ; j < len(toks); j++ {
			t := toks[j].Token
			if t == token.EOF {
				return nil, fmt.Errorf("unterminated %v %s: missing end", head.Token, name)
			}
			if opensNestedEnd(t) {
				depth++
				continue
			}
			if t == token.END {
				if depth == 0 {
					break
				}
				depth--
			}
		}

		chunks = append(chunks, tokChunk{
			kind:    head.Token,
			name:    name,
			toks:    toks[i+2 : j],
			isConst: head.Token == token.CONST,
		})
		i = j + 1 // skip the closing `end`
	}

	return chunks, nil
}

func line(tv scanner.TokenAndValue) int {
	l, _ := tv.Value.Pos.LineCol()
	return l
}
