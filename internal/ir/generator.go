package ir

import (
	"github.com/theSherwood/wacc/internal/arena"
	"github.com/theSherwood/wacc/internal/ast"
	"github.com/theSherwood/wacc/internal/symtab"
	"github.com/theSherwood/wacc/internal/types"
)

// Generator lowers a semantically valid AST into an IR Module. It assumes
// the semantic analyzer has already rejected undeclared names,
// redefinitions, and misplaced break/continue.
type Generator struct {
	regions      *arena.Pool[Region]
	scope        *symtab.Scope
	nextRegionID int
	nextLocal    int
}

// New constructs a Generator allocating regions from a.
func New(a *arena.Arena) *Generator {
	return &Generator{regions: arena.NewPool[Region](a, 64)}
}

func (g *Generator) newRegion(kind RegionKind) *Region {
	r := g.regions.New()
	r.ID = g.nextRegionID
	r.Kind = kind
	g.nextRegionID++
	return r
}

func (g *Generator) pushScope() { g.scope = symtab.NewScope(g.scope) }
func (g *Generator) popScope()  { g.scope = g.scope.Parent() }

// Generate lowers prog into a single-function Module — this language
// subset supports exactly one function per program.
func Generate(prog *ast.Program, a *arena.Arena) *Module {
	g := New(a)
	return &Module{Functions: []*Function{g.generateFunction(prog.Function)}}
}

func (g *Generator) generateFunction(fn *ast.Function) *Function {
	g.scope = symtab.NewScope(nil)
	body := g.newRegion(RegionFunction)
	body.Parent = nil

	for _, stmt := range fn.Body {
		g.generateStatement(body, stmt)
	}

	return &Function{Name: fn.Name, ReturnI32: true, NumLocals: g.nextLocal, Body: body}
}

func (g *Generator) emit(r *Region, instr Instruction) {
	r.Instructions = append(r.Instructions, instr)
}

func (g *Generator) generateStatement(r *Region, stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		g.generateExpression(r, s.Value)
		g.emit(r, Return())

	case *ast.VarDecl:
		idx := g.nextLocal
		g.nextLocal++
		g.scope.Declare(s.Name, symtab.Binding{Type: types.I32Type, LocalIndex: idx})
		if s.Init != nil {
			g.generateExpression(r, s.Init)
			g.emit(r, LocalSet(idx))
		}

	case *ast.ExprStmt:
		g.generateExpression(r, s.Value)
		g.emit(r, Drop())

	case *ast.IfStmt:
		ifRegion := g.newRegion(RegionIf)
		ifRegion.Parent = r
		g.generateExpression(ifRegion, s.Cond)

		ifRegion.Then = g.newRegion(RegionBlock)
		ifRegion.Then.Parent = ifRegion
		g.generateStatement(ifRegion.Then, s.Then)

		if s.Else != nil {
			ifRegion.Else = g.newRegion(RegionBlock)
			ifRegion.Else.Parent = ifRegion
			g.generateStatement(ifRegion.Else, s.Else)
		}

		g.emit(r, RegionRef(ifRegion))

	case *ast.WhileStmt:
		loop := g.newRegion(RegionLoop)
		loop.Parent = r
		loop.IsDoWhile = false

		loop.Condition = g.newRegion(RegionBlock)
		loop.Condition.Parent = loop
		g.generateExpression(loop.Condition, s.Cond)

		loop.Body = g.newRegion(RegionBlock)
		loop.Body.Parent = loop
		g.generateStatement(loop.Body, s.Body)

		g.emit(r, RegionRef(loop))

	case *ast.DoWhileStmt:
		loop := g.newRegion(RegionLoop)
		loop.Parent = r
		loop.IsDoWhile = true

		loop.Body = g.newRegion(RegionBlock)
		loop.Body.Parent = loop
		g.generateStatement(loop.Body, s.Body)

		loop.Condition = g.newRegion(RegionBlock)
		loop.Condition.Parent = loop
		g.generateExpression(loop.Condition, s.Cond)

		g.emit(r, RegionRef(loop))

	case *ast.BreakStmt:
		g.emit(r, Break())

	case *ast.ContinueStmt:
		g.emit(r, Continue())

	case *ast.CompoundStmt:
		g.pushScope()
		for _, child := range s.Stmts {
			g.generateStatement(r, child)
		}
		g.popScope()
	}
}

// generateExpression lowers expr into r's instruction list, leaving
// exactly one i32 value on the logical evaluation stack.
func (g *Generator) generateExpression(r *Region, expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		g.emit(r, ConstI32(e.Value))

	case *ast.VarRef:
		b, _ := g.scope.Lookup(e.Name)
		g.emit(r, LocalGet(b.LocalIndex))

	case *ast.UnaryOp:
		switch e.Op {
		case ast.Neg:
			g.generateExpression(r, e.Operand)
			g.emit(r, ConstI32(-1))
			g.emit(r, Mul())
		case ast.LogicalNot:
			g.generateExpression(r, e.Operand)
			g.emit(r, Eqz())
		case ast.BitwiseNot:
			g.generateExpression(r, e.Operand)
			g.emit(r, ConstI32(-1))
			g.emit(r, Xor())
		}

	case *ast.BinaryOp:
		g.generateBinaryOp(r, e)

	case *ast.Assignment:
		b, _ := g.scope.Lookup(e.Target)
		g.generateExpression(r, e.Value)
		g.emit(r, LocalSet(b.LocalIndex))
		g.emit(r, LocalGet(b.LocalIndex))

	case *ast.TernaryExpr:
		g.generateTernary(r, e)
	}
}

// generateBinaryOp desugars short-circuit && and || into ternaries before
// lowering, so the emitted WASM if naturally short-circuits.
func (g *Generator) generateBinaryOp(r *Region, e *ast.BinaryOp) {
	switch e.Op {
	case ast.LogicalAnd:
		// a && b  ==  a ? !!b : 0 — the computed side is normalized to a
		// strict 0/1 with a double eqz, since && always yields a boolean
		// result even when the right operand is some other nonzero value.
		g.generateTernaryValues(r, e.Left, e.Right, nil, true, false)
		return
	case ast.LogicalOr:
		// a || b  ==  a ? 1 : !!b
		g.generateTernaryValues(r, e.Left, nil, e.Right, false, true)
		return
	}

	g.generateExpression(r, e.Left)
	g.generateExpression(r, e.Right)

	switch e.Op {
	case ast.Add:
		g.emit(r, Add())
	case ast.Sub:
		g.emit(r, Sub())
	case ast.Mul:
		g.emit(r, Mul())
	case ast.Div:
		g.emit(r, DivS())
	case ast.Rem:
		g.emit(r, RemS())
	case ast.Eq:
		g.emit(r, Eq())
	case ast.NotEq:
		g.emit(r, NotEq())
	case ast.Lt:
		g.emit(r, LtS())
	case ast.Gt:
		g.emit(r, GtS())
	case ast.LtEq:
		g.emit(r, LeS())
	case ast.GtEq:
		g.emit(r, GeS())
	}
}

// generateTernaryValues lowers `cond ? then : els`, substituting a
// const.i32 1 or 0 when then/els is nil (the && / || desugaring above).
// normThen/normEls force their respective computed branch through a
// double eqz (!!x), which the genuine ternary never wants but the
// && / || desugaring needs so the result stays a strict 0/1.
func (g *Generator) generateTernaryValues(r *Region, cond, then, els ast.Expr, normThen, normEls bool) {
	ifRegion := g.newRegion(RegionIf)
	ifRegion.Parent = r
	ifRegion.Expression = true
	g.generateExpression(ifRegion, cond)

	ifRegion.Then = g.newRegion(RegionBlock)
	ifRegion.Then.Parent = ifRegion
	if then != nil {
		g.generateExpression(ifRegion.Then, then)
		if normThen {
			g.emit(ifRegion.Then, Eqz())
			g.emit(ifRegion.Then, Eqz())
		}
	} else {
		g.emit(ifRegion.Then, ConstI32(1))
	}

	ifRegion.Else = g.newRegion(RegionBlock)
	ifRegion.Else.Parent = ifRegion
	if els != nil {
		g.generateExpression(ifRegion.Else, els)
		if normEls {
			g.emit(ifRegion.Else, Eqz())
			g.emit(ifRegion.Else, Eqz())
		}
	} else {
		g.emit(ifRegion.Else, ConstI32(0))
	}

	g.emit(r, RegionRef(ifRegion))
}

func (g *Generator) generateTernary(r *Region, e *ast.TernaryExpr) {
	g.generateTernaryValues(r, e.Cond, e.Then, e.Else, false, false)
}
