package maincmd

import (
	"fmt"
	"os"

	"github.com/rekolang/reko/lang/bytecode"
	"github.com/rekolang/reko/lang/compiler"
	"github.com/rekolang/reko/lang/frontend"
	"github.com/rekolang/reko/lang/typecheck"
)

// buildProgram runs the full pipeline (tokenize -> chunkify/const-fold ->
// typecheck -> lower) over a single source file.
func buildProgram(path string) (*bytecode.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	chunks, err := frontend.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	typed, varCount, err := typecheck.Check(chunks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prog, err := compiler.Compile(typed, varCount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}
