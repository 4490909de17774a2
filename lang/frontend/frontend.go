// Package frontend turns a token stream into the untyped IR chunks that
// the type checker consumes. It owns everything spec.md §1 calls an
// "external collaborator" of the core: chunking the token stream by
// balancing `end`, building ir.Item sequences from chunk tokens, and folding
// `const` declarations away before the checker ever sees them.
package frontend

import (
	"fmt"

	"github.com/rekolang/reko/lang/ir"
	"github.com/rekolang/reko/lang/scanner"
	"github.com/rekolang/reko/lang/token"
)

// Parse tokenizes and chunkifies src, folds const declarations, and returns
// the untyped IR chunks ready for lang/typecheck. def/var/struct chunks are
// returned in source order; const chunks never appear in the result.
func Parse(src []byte) ([]ir.Chunk, error) {
	toks, err := scanner.ScanAll(src)
	if err != nil {
		return nil, fmt.Errorf("frontend: %w", err)
	}

	tokChunks, err := chunkify(toks)
	if err != nil {
		return nil, fmt.Errorf("frontend: %w", err)
	}

	consts, err := foldConsts(tokChunks)
	if err != nil {
		return nil, fmt.Errorf("frontend: %w", err)
	}

	var out []ir.Chunk
	for _, tc := range tokChunks {
		if tc.kind == token.CONST {
			continue
		}
		chunk, err := build(tc, consts)
		if err != nil {
			return nil, fmt.Errorf("frontend: %w", err)
		}
		out = append(out, chunk)
	}
	return out, nil
}
