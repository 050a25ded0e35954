// Package compiler wires the lexer, parser, semantic analyzer, IR
// generator, and emitter into a single pipeline: each stage runs to
// completion against one shared Arena and Diagnostic list, and a fatal
// diagnostic in a stage halts the pipeline before the next stage starts.
package compiler

import (
	"github.com/theSherwood/wacc/internal/arena"
	"github.com/theSherwood/wacc/internal/ast"
	"github.com/theSherwood/wacc/internal/diag"
	"github.com/theSherwood/wacc/internal/emitter"
	"github.com/theSherwood/wacc/internal/ir"
	"github.com/theSherwood/wacc/internal/lexer"
	"github.com/theSherwood/wacc/internal/parser"
	"github.com/theSherwood/wacc/internal/sema"
)

// Result holds everything a caller might want to inspect after Compile
// runs, whether or not it succeeded.
type Result struct {
	Program *ast.Program
	Module  *ir.Module
	Wasm    []byte
	Diags   *diag.List
	OK      bool
}

// Stage names a point in the pipeline at which CompileTo may stop, for
// the CLI's --print-ast/--print-ir flags: --print-ast stops right after
// parsing, before semantic analysis, IR generation, or emission ever run;
// --print-ir stops right after IR generation, before emission runs.
// Neither later stage is reached at all, not merely skipped after
// running.
type Stage int

const (
	StageParse Stage = iota
	StageSema
	StageIR
	StageEmit
)

// Compile runs the full pipeline over source, identified as file in
// diagnostics. It always returns a non-nil Result; OK is false if any stage
// reported a fatal diagnostic, in which case later stages did not run and
// their Result fields are left zero.
func Compile(file, source string) *Result {
	return CompileTo(file, source, StageEmit)
}

// CompileTo runs the pipeline only as far as target, stopping before any
// later stage even starts. A fatal diagnostic at any stage still reached
// halts the pipeline the same way Compile does.
func CompileTo(file, source string, target Stage) *Result {
	a := arena.New()
	diags := diag.NewList(a)
	res := &Result{Diags: diags}

	lex := lexer.New(file, source, diags)
	p := parser.New(file, source, lex, diags, a)
	prog := p.ParseProgram()
	res.Program = prog
	if diags.HasFatal() {
		return res
	}
	if target == StageParse {
		res.OK = true
		return res
	}

	an := sema.New(file, source, diags)
	an.Analyze(prog)
	if diags.HasFatal() {
		return res
	}
	if target == StageSema {
		res.OK = true
		return res
	}

	mod := ir.Generate(prog, a)
	res.Module = mod
	if diags.HasFatal() {
		return res
	}
	if target == StageIR {
		res.OK = true
		return res
	}

	res.Wasm = emitter.Emit(mod)
	res.OK = true
	return res
}
