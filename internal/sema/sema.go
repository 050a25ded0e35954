// Package sema implements the semantic analyzer: name resolution and
// flow-sensitive legality checks over the AST. It never mutates the tree
// it walks.
package sema

import (
	"github.com/theSherwood/wacc/internal/ast"
	"github.com/theSherwood/wacc/internal/diag"
	"github.com/theSherwood/wacc/internal/symtab"
	"github.com/theSherwood/wacc/internal/types"
)

// Analyzer walks a program, reporting semantic diagnostics.
type Analyzer struct {
	file    string
	source  string
	diags   *diag.List
	scope   *symtab.Scope
	inLoop  bool
	nextIdx int
}

// New constructs an Analyzer reporting into diags.
func New(file, source string, diags *diag.List) *Analyzer {
	return &Analyzer{file: file, source: source, diags: diags}
}

func (a *Analyzer) report(id int, pos ast.Position, message, suggestion string) {
	a.diags.Append(diag.Diagnostic{
		ID:         id,
		Severity:   diag.Semantic,
		Location:   diag.Location{File: a.file, Line: pos.Line, Column: pos.Column},
		Message:    message,
		Suggestion: suggestion,
		Context:    diag.SourceLine(a.source, pos.Line),
	})
}

// Analyze checks prog and reports true iff no semantic errors were found.
func (a *Analyzer) Analyze(prog *ast.Program) bool {
	before := a.diags.Len()
	a.scope = symtab.NewScope(nil)
	a.analyzeFunction(prog.Function)
	return a.diags.Len() == before
}

func (a *Analyzer) analyzeFunction(fn *ast.Function) {
	for _, stmt := range fn.Body {
		a.analyzeStatement(stmt)
	}
}

func (a *Analyzer) pushScope() {
	a.scope = symtab.NewScope(a.scope)
}

func (a *Analyzer) popScope() {
	a.scope = a.scope.Parent()
}

func (a *Analyzer) analyzeStatement(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		if _, redefined := a.scope.LookupCurrentScope(s.Name); redefined {
			a.report(diag.SemRedefinition, s.Position, "redefinition of '"+s.Name+"'", "choose a different name or remove the earlier declaration")
		}
		if s.Init != nil {
			a.analyzeExpression(s.Init)
		}
		a.scope.Declare(s.Name, symtab.Binding{Type: types.I32Type, LocalIndex: a.nextIdx})
		a.nextIdx++

	case *ast.ReturnStmt:
		a.analyzeExpression(s.Value)

	case *ast.ExprStmt:
		a.analyzeExpression(s.Value)

	case *ast.IfStmt:
		a.analyzeExpression(s.Cond)
		a.analyzeStatement(s.Then)
		if s.Else != nil {
			a.analyzeStatement(s.Else)
		}

	case *ast.WhileStmt:
		a.analyzeExpression(s.Cond)
		wasInLoop := a.inLoop
		a.inLoop = true
		a.analyzeStatement(s.Body)
		a.inLoop = wasInLoop

	case *ast.DoWhileStmt:
		wasInLoop := a.inLoop
		a.inLoop = true
		a.analyzeStatement(s.Body)
		a.inLoop = wasInLoop
		a.analyzeExpression(s.Cond)

	case *ast.BreakStmt:
		if !a.inLoop {
			a.report(diag.SemBreakOutsideLoop, s.Position, "'break' outside a loop", "only use 'break' inside while/do-while")
		}

	case *ast.ContinueStmt:
		if !a.inLoop {
			a.report(diag.SemContinueOutsideLoop, s.Position, "'continue' outside a loop", "only use 'continue' inside while/do-while")
		}

	case *ast.CompoundStmt:
		a.pushScope()
		for _, child := range s.Stmts {
			a.analyzeStatement(child)
		}
		a.popScope()
	}
}

func (a *Analyzer) analyzeExpression(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		// no references to resolve

	case *ast.VarRef:
		if _, ok := a.scope.Lookup(e.Name); !ok {
			a.report(diag.SemUndefinedVariable, e.Position, "use of undeclared variable '"+e.Name+"'", "declare the variable before using it")
		}

	case *ast.UnaryOp:
		a.analyzeExpression(e.Operand)

	case *ast.BinaryOp:
		a.analyzeExpression(e.Left)
		a.analyzeExpression(e.Right)

	case *ast.Assignment:
		if _, ok := a.scope.Lookup(e.Target); !ok {
			a.report(diag.SemUndefinedVariable, e.Position, "assignment to undeclared variable '"+e.Target+"'", "declare the variable before assigning to it")
		}
		a.analyzeExpression(e.Value)

	case *ast.TernaryExpr:
		a.analyzeExpression(e.Cond)
		a.analyzeExpression(e.Then)
		a.analyzeExpression(e.Else)
	}
}
