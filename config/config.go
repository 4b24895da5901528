// Package config carries the ambient compiler/evaluator options: the fixed
// word width used to encode the Panic Channel's integer fields, the
// peephole optimizer's rewrite depth, and whether dead-gate pruning and
// verbose diagnostics are enabled. It is grounded on the teacher's
// example/config package: a small struct loaded through
// github.com/spf13/viper, with documented defaults and an environment
// variable prefix, rather than a raw flag struct.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the environment-variable prefix viper binds against
// (e.g. CIRCUITC_PANIC_WORD_WIDTH).
const EnvPrefix = "CIRCUITC"

// Options are the knobs spec §4.1/§4.3/§4.5 leave implementation-defined.
type Options struct {
	// PanicWordWidth is W from spec §3: the fixed width, in bits, of every
	// integer field in the PanicLayout (reason, start/end line/column).
	// The spec allows 32 or 64; the default matches the teacher's
	// preference for native machine words.
	PanicWordWidth int

	// MaxOptimizationDepth bounds the builder's contextual peephole
	// rewriter (spec §4.1). The spec fixes this at 4; it is still
	// exposed as an option so tests can probe shallower/deeper rewriting.
	MaxOptimizationDepth int

	// PruneDeadGates enables the finalizer's reachability sweep (spec
	// §4.5). Disabling it is only useful for debugging the builder's
	// raw output.
	PruneDeadGates bool

	// Verbose turns on diagnostic logging (optimization ratios, circuit
	// statistics) that spec §4.5/§9 mark as diagnostic-only.
	Verbose bool
}

// Default returns the spec-mandated defaults: a 64-bit panic word, a
// rewrite depth of 4, pruning on, quiet by default.
func Default() *Options {
	return &Options{
		PanicWordWidth:       64,
		MaxOptimizationDepth: 4,
		PruneDeadGates:       true,
		Verbose:              false,
	}
}

// Load builds Options from a viper instance that has already read a config
// file and/or the process environment under the CIRCUITC_ prefix. Any value
// viper has not been given falls back to Default().
func Load(v *viper.Viper) *Options {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	opts := Default()
	if v.IsSet("panic_word_width") {
		opts.PanicWordWidth = v.GetInt("panic_word_width")
	}
	if v.IsSet("max_optimization_depth") {
		opts.MaxOptimizationDepth = v.GetInt("max_optimization_depth")
	}
	if v.IsSet("prune_dead_gates") {
		opts.PruneDeadGates = v.GetBool("prune_dead_gates")
	}
	if v.IsSet("verbose") {
		opts.Verbose = v.GetBool("verbose")
	}
	return opts
}
