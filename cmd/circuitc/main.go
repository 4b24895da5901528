// Command circuitc is a developer CLI over the compilation pipeline: it
// compiles an already-typed, JSON-encoded ast.Program into a circuit.Circuit
// and can evaluate that circuit against JSON-encoded party inputs. It never
// lexes or parses source text — the front end that turns a source language
// into an ast.Program is out of scope for this module.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/getamis/circuitc/ast"
	"github.com/getamis/circuitc/circuit"
	"github.com/getamis/circuitc/config"
	"github.com/getamis/circuitc/logger"
	"github.com/getamis/circuitc/lower"
	"github.com/getamis/sirius/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "circuitc",
		Short: "compile and evaluate boolean circuits for secure multi-party computation",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (viper-compatible)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.AddCommand(newCompileCmd(), newEvalCmd())
	return root
}

func loadOptions() *config.Options {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		_ = v.ReadInConfig()
	}
	opts := config.Load(v)
	if verbose {
		opts.Verbose = true
	}
	if opts.Verbose {
		logger.SetLogger(log.New("cmd", "circuitc"))
	}
	return opts
}

func newCompileCmd() *cobra.Command {
	var programPath, outPath string
	var bristol bool
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "lower a JSON-encoded typed program into a finalized circuit",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(programPath)
			if err != nil {
				return fmt.Errorf("reading program: %w", err)
			}
			var program ast.Program
			if err := json.Unmarshal(data, &program); err != nil {
				return fmt.Errorf("parsing program JSON: %w", err)
			}

			c, err := lower.Compile(&program, loadOptions())
			if err != nil {
				return fmt.Errorf("compiling: %w", err)
			}

			var out []byte
			if bristol {
				out = []byte(c.MarshalBristol())
			} else {
				out, err = c.Marshal()
				if err != nil {
					return fmt.Errorf("marshaling circuit: %w", err)
				}
			}
			if outPath == "" {
				_, err = os.Stdout.Write(out)
				return err
			}
			return os.WriteFile(outPath, out, 0o644)
		},
	}
	cmd.Flags().StringVar(&programPath, "program", "", "path to a JSON-encoded ast.Program (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output path (default: stdout)")
	cmd.Flags().BoolVar(&bristol, "bristol", false, "emit Bristol Fashion text instead of the native binary encoding")
	cmd.MarkFlagRequired("program")
	return cmd
}

func newEvalCmd() *cobra.Command {
	var circuitPath, inputsPath string
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "evaluate a compiled circuit against concrete party inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			loadOptions()
			circData, err := os.ReadFile(circuitPath)
			if err != nil {
				return fmt.Errorf("reading circuit: %w", err)
			}
			c, err := circuit.Unmarshal(circData)
			if err != nil {
				return fmt.Errorf("decoding circuit: %w", err)
			}

			inputData, err := os.ReadFile(inputsPath)
			if err != nil {
				return fmt.Errorf("reading inputs: %w", err)
			}
			var inputs [][]bool
			if err := json.Unmarshal(inputData, &inputs); err != nil {
				return fmt.Errorf("parsing inputs JSON: %w", err)
			}

			outcome, err := c.Eval(inputs)
			if err != nil {
				return fmt.Errorf("evaluating: %w", err)
			}
			enc := json.NewEncoder(os.Stdout)
			return enc.Encode(outcome)
		},
	}
	cmd.Flags().StringVar(&circuitPath, "circuit", "", "path to a Marshal-encoded circuit (required)")
	cmd.Flags().StringVar(&inputsPath, "inputs", "", "path to a JSON array of per-party boolean input arrays (required)")
	cmd.MarkFlagRequired("circuit")
	cmd.MarkFlagRequired("inputs")
	return cmd
}
