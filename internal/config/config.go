// Package config loads runtime configuration for the reko CLI from
// environment variables, following the ambient configuration style used
// across the example pack (struct fields tagged for a declarative env
// loader rather than hand-rolled os.Getenv calls).
package config

import "github.com/caarlos0/env/v6"

// Config holds the knobs that shape one invocation of the VM: tracing and
// safety limits that are more often set once in a shell profile than typed
// per-run. MaxSteps and StackWarnDepth can also be overridden by the
// --max-steps and --stack-warn-depth command-line flags.
type Config struct {
	// MaxSteps bounds total VM instruction execution; 0 means unbounded.
	MaxSteps int64 `env:"REKO_MAX_STEPS" envDefault:"0"`
	// StackWarnDepth, when non-zero, makes the VM print a diagnostic to
	// stderr the first time the data stack crosses this depth. It never
	// halts execution; it exists to surface runaway recursion or
	// accumulation during development.
	StackWarnDepth int `env:"REKO_STACK_WARN_DEPTH" envDefault:"0"`
	// Trace, when true, makes `reko run` print each executed instruction to
	// stderr before executing it.
	Trace bool `env:"REKO_TRACE" envDefault:"false"`
}

// Load reads Config from the process environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
