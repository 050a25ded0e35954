package ast

import "github.com/theSherwood/wacc/internal/arena"

// Pools holds one arena-backed pool per concrete node type so the parser
// never allocates AST nodes on the Go heap directly.
type Pools struct {
	programs      *arena.Pool[Program]
	functions     *arena.Pool[Function]
	returns       *arena.Pool[ReturnStmt]
	varDecls      *arena.Pool[VarDecl]
	exprStmts     *arena.Pool[ExprStmt]
	ifs           *arena.Pool[IfStmt]
	whiles        *arena.Pool[WhileStmt]
	doWhiles      *arena.Pool[DoWhileStmt]
	breaks        *arena.Pool[BreakStmt]
	continues     *arena.Pool[ContinueStmt]
	compounds     *arena.Pool[CompoundStmt]
	intLiterals   *arena.Pool[IntLiteral]
	unaryOps      *arena.Pool[UnaryOp]
	binaryOps     *arena.Pool[BinaryOp]
	varRefs       *arena.Pool[VarRef]
	assignments   *arena.Pool[Assignment]
	ternaries     *arena.Pool[TernaryExpr]
}

// chunkCap is small: a single source file rarely has more than a few
// hundred nodes of any one kind.
const chunkCap = 64

// NewPools creates a Pools backed by a.
func NewPools(a *arena.Arena) *Pools {
	return &Pools{
		programs:    arena.NewPool[Program](a, chunkCap),
		functions:   arena.NewPool[Function](a, chunkCap),
		returns:     arena.NewPool[ReturnStmt](a, chunkCap),
		varDecls:    arena.NewPool[VarDecl](a, chunkCap),
		exprStmts:   arena.NewPool[ExprStmt](a, chunkCap),
		ifs:         arena.NewPool[IfStmt](a, chunkCap),
		whiles:      arena.NewPool[WhileStmt](a, chunkCap),
		doWhiles:    arena.NewPool[DoWhileStmt](a, chunkCap),
		breaks:      arena.NewPool[BreakStmt](a, chunkCap),
		continues:   arena.NewPool[ContinueStmt](a, chunkCap),
		compounds:   arena.NewPool[CompoundStmt](a, chunkCap),
		intLiterals: arena.NewPool[IntLiteral](a, chunkCap),
		unaryOps:    arena.NewPool[UnaryOp](a, chunkCap),
		binaryOps:   arena.NewPool[BinaryOp](a, chunkCap),
		varRefs:     arena.NewPool[VarRef](a, chunkCap),
		assignments: arena.NewPool[Assignment](a, chunkCap),
		ternaries:   arena.NewPool[TernaryExpr](a, chunkCap),
	}
}

func (p *Pools) NewProgram(pos Position) *Program {
	n := p.programs.New()
	n.Position = pos
	return n
}

func (p *Pools) NewFunction(pos Position, name string) *Function {
	n := p.functions.New()
	n.Position, n.Name = pos, name
	return n
}

func (p *Pools) NewReturnStmt(pos Position, value Expr) *ReturnStmt {
	n := p.returns.New()
	n.Position, n.Value = pos, value
	return n
}

func (p *Pools) NewVarDecl(pos Position, name string, init Expr) *VarDecl {
	n := p.varDecls.New()
	n.Position, n.Name, n.Init = pos, name, init
	return n
}

func (p *Pools) NewExprStmt(pos Position, value Expr) *ExprStmt {
	n := p.exprStmts.New()
	n.Position, n.Value = pos, value
	return n
}

func (p *Pools) NewIfStmt(pos Position, cond Expr, then, els Stmt) *IfStmt {
	n := p.ifs.New()
	n.Position, n.Cond, n.Then, n.Else = pos, cond, then, els
	return n
}

func (p *Pools) NewWhileStmt(pos Position, cond Expr, body Stmt) *WhileStmt {
	n := p.whiles.New()
	n.Position, n.Cond, n.Body = pos, cond, body
	return n
}

func (p *Pools) NewDoWhileStmt(pos Position, body Stmt, cond Expr) *DoWhileStmt {
	n := p.doWhiles.New()
	n.Position, n.Body, n.Cond = pos, body, cond
	return n
}

func (p *Pools) NewBreakStmt(pos Position) *BreakStmt {
	n := p.breaks.New()
	n.Position = pos
	return n
}

func (p *Pools) NewContinueStmt(pos Position) *ContinueStmt {
	n := p.continues.New()
	n.Position = pos
	return n
}

func (p *Pools) NewCompoundStmt(pos Position, stmts []Stmt) *CompoundStmt {
	n := p.compounds.New()
	n.Position, n.Stmts = pos, stmts
	return n
}

func (p *Pools) NewIntLiteral(pos Position, value int32) *IntLiteral {
	n := p.intLiterals.New()
	n.Position, n.Value = pos, value
	return n
}

func (p *Pools) NewUnaryOp(pos Position, op UnaryOperator, operand Expr) *UnaryOp {
	n := p.unaryOps.New()
	n.Position, n.Op, n.Operand = pos, op, operand
	return n
}

func (p *Pools) NewBinaryOp(pos Position, op BinaryOperator, left, right Expr) *BinaryOp {
	n := p.binaryOps.New()
	n.Position, n.Op, n.Left, n.Right = pos, op, left, right
	return n
}

func (p *Pools) NewVarRef(pos Position, name string) *VarRef {
	n := p.varRefs.New()
	n.Position, n.Name = pos, name
	return n
}

func (p *Pools) NewAssignment(pos Position, target string, value Expr) *Assignment {
	n := p.assignments.New()
	n.Position, n.Target, n.Value = pos, target, value
	return n
}

func (p *Pools) NewTernaryExpr(pos Position, cond, then, els Expr) *TernaryExpr {
	n := p.ternaries.New()
	n.Position, n.Cond, n.Then, n.Else = pos, cond, then, els
	return n
}
