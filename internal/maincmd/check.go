package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

// Check runs the frontend, the type checker and lowering over each file and
// reports success or the first error encountered, without running the
// program.
func (c *Cmd) Check(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		return printError(stdio, fmt.Errorf("check: at least one file must be provided"))
	}
	for _, path := range args {
		if _, err := buildProgram(path); err != nil {
			return printError(stdio, err)
		}
		fmt.Fprintf(stdio.Stdout, "%s: ok\n", path)
	}
	return nil
}
