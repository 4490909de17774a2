package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/rekolang/reko/lang/scanner"
)

// Tokenize runs the scanner phase alone and prints the resulting tokens, one
// per line, in the form "line:col kind [value]".
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		return printError(stdio, fmt.Errorf("tokenize: at least one file must be provided"))
	}
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			return printError(stdio, err)
		}
		toks, err := scanner.ScanAll(src)
		for _, tv := range toks {
			line, col := tv.Value.Pos.LineCol()
			fmt.Fprintf(stdio.Stdout, "%d:%d %s", line, col, tv.Token)
			if tv.Value.Raw != "" {
				fmt.Fprintf(stdio.Stdout, " %s", tv.Value.Raw)
			}
			fmt.Fprintln(stdio.Stdout)
		}
		if err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}
