// Command wacc compiles a single C-like source file to a WASM 1.0 binary
// module.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theSherwood/wacc/internal/ast"
	"github.com/theSherwood/wacc/internal/compiler"
	"github.com/theSherwood/wacc/internal/ir"
)

func main() {
	os.Exit(doMain(os.Args[1:], os.Stdout, os.Stderr))
}

// doMain is separated out for unit testing, mirroring cmd/wazero's own
// doMain(stdOut, stdErr) pattern.
func doMain(args []string, stdOut, stdErr io.Writer) int {
	var printAST bool
	var printIR bool
	var outPath string
	var verbose bool
	code := 0

	root := &cobra.Command{
		Use:           "wacc <source.c>",
		Short:         "Compile a C-like source file to a WASM 1.0 binary module",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			code, err = run(args[0], printAST, printIR, outPath, verbose, stdOut, stdErr)
			return err
		},
	}
	root.SetOut(stdOut)
	root.SetErr(stdErr)
	root.SetArgs(args)

	root.Flags().BoolVar(&printAST, "print-ast", false, "print the parsed AST to stdout")
	root.Flags().BoolVar(&printIR, "print-ir", false, "print the generated IR to stdout")
	root.Flags().StringVar(&outPath, "out", "out.wasm", "path to write the compiled WASM module")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "trace each pipeline stage to stderr")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stdErr, err)
		return 1
	}
	return code
}

// run executes the pipeline and returns the process exit code: 0 on a
// clean compile (even with warnings), 1 if diagnostics halted the
// pipeline or the file could not be read or written.
func run(path string, printAST, printIR bool, outPath string, verbose bool, stdOut, stdErr io.Writer) (int, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return 1, fmt.Errorf("reading %s: %w", path, err)
	}

	trace := func(format string, args ...any) {
		if verbose {
			fmt.Fprintf(stdErr, "wacc: "+format+"\n", args...)
		}
	}

	target := compiler.StageEmit
	switch {
	case printAST:
		target = compiler.StageParse
	case printIR:
		target = compiler.StageIR
	}

	trace("lexing and parsing %s", path)
	res := compiler.CompileTo(path, string(source), target)

	if !res.OK {
		trace("pipeline halted with %d diagnostic(s)", res.Diags.Len())
		res.Diags.Print(stdOut)
		return 1, nil
	}

	if printAST {
		ast.Print(stdOut, res.Program)
		return 0, nil
	}

	trace("semantic analysis and IR generation succeeded")

	if printIR {
		ir.Print(stdOut, res.Module)
		return 0, nil
	}

	trace("emitting %s", outPath)
	if err := os.WriteFile(outPath, res.Wasm, 0o644); err != nil {
		return 1, fmt.Errorf("writing %s: %w", outPath, err)
	}

	res.Diags.Print(stdOut)
	return 0, nil
}
