package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/rekolang/reko/lang/bytecode"
)

// Disasm compiles the given file and prints its bytecode in human-readable
// form.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return printError(stdio, fmt.Errorf("disasm: exactly one file must be provided"))
	}
	prog, err := buildProgram(args[0])
	if err != nil {
		return printError(stdio, err)
	}
	fmt.Fprint(stdio.Stdout, bytecode.Disassemble(prog))
	return nil
}
