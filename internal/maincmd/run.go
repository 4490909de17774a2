package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/rekolang/reko/internal/config"
	"github.com/rekolang/reko/lang/vm"
)

// Run compiles the given file and executes it on the VM.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return printError(stdio, fmt.Errorf("run: exactly one file must be provided"))
	}
	prog, err := buildProgram(args[0])
	if err != nil {
		return printError(stdio, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return printError(stdio, err)
	}
	if c.flags["max-steps"] {
		cfg.MaxSteps = c.MaxSteps
	}
	if c.flags["stack-warn-depth"] {
		cfg.StackWarnDepth = c.StackWarnDepth
	}

	m := vm.New(prog, stdio.Stdout)
	m.MaxSteps = cfg.MaxSteps
	m.StackWarnDepth = cfg.StackWarnDepth
	m.Warn = stdio.Stderr
	if cfg.Trace {
		m.Trace = stdio.Stderr
	}
	if err := m.Run(ctx); err != nil {
		return printError(stdio, err)
	}
	return nil
}
