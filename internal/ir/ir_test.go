package ir

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theSherwood/wacc/internal/arena"
	"github.com/theSherwood/wacc/internal/diag"
	"github.com/theSherwood/wacc/internal/lexer"
	"github.com/theSherwood/wacc/internal/parser"
)

func generate(t *testing.T, source string) *Module {
	t.Helper()
	a := arena.New()
	diags := diag.NewList(a)
	lex := lexer.New("t.c", source, diags)
	p := parser.New("t.c", source, lex, diags, a)
	prog := p.ParseProgram()
	require.NotNil(t, prog)
	require.Equal(t, 0, diags.Len())
	return Generate(prog, a)
}

func opSeq(instrs []Instruction) []Opcode {
	out := make([]Opcode, len(instrs))
	for i, instr := range instrs {
		out[i] = instr.Op
	}
	return out
}

func TestGenerate_SimpleReturn(t *testing.T) {
	mod := generate(t, "int main() { return 42; }")
	require.Len(t, mod.Functions, 1)
	fn := mod.Functions[0]
	require.Equal(t, "main", fn.Name)
	require.Equal(t, []Opcode{OpConstI32, OpReturn}, opSeq(fn.Body.Instructions))
	require.Equal(t, int32(42), fn.Body.Instructions[0].Operands[0].ConstValue)
}

func TestGenerate_VariableDeclarationAllocatesLocalIndex(t *testing.T) {
	mod := generate(t, "int main() { int a = 3; int b = 4; return a; }")
	fn := mod.Functions[0]
	require.Equal(t, 2, fn.NumLocals)
	// a=3 -> const, local.set(0); b=4 -> const, local.set(1); return a -> local.get(0), return
	require.Equal(t, []Opcode{OpConstI32, OpLocalSet, OpConstI32, OpLocalSet, OpLocalGet, OpReturn}, opSeq(fn.Body.Instructions))
	require.Equal(t, 0, fn.Body.Instructions[1].Operands[0].LocalIndex)
	require.Equal(t, 1, fn.Body.Instructions[3].Operands[0].LocalIndex)
}

func TestGenerate_UnaryNegIsConstMinusOneMul(t *testing.T) {
	mod := generate(t, "int main() { return -5; }")
	fn := mod.Functions[0]
	require.Equal(t, []Opcode{OpConstI32, OpConstI32, OpMul, OpReturn}, opSeq(fn.Body.Instructions))
}

func TestGenerate_BitwiseNotIsConstMinusOneXor(t *testing.T) {
	mod := generate(t, "int main() { return ~5; }")
	fn := mod.Functions[0]
	require.Equal(t, []Opcode{OpConstI32, OpConstI32, OpXor, OpReturn}, opSeq(fn.Body.Instructions))
}

func TestGenerate_LogicalNotIsEqz(t *testing.T) {
	mod := generate(t, "int main() { return !5; }")
	fn := mod.Functions[0]
	require.Equal(t, []Opcode{OpConstI32, OpEqz, OpReturn}, opSeq(fn.Body.Instructions))
}

func TestGenerate_AssignmentReEmitsLocalGetAsExpressionValue(t *testing.T) {
	mod := generate(t, "int main() { int a = 0; return a = 5; }")
	fn := mod.Functions[0]
	// return (a = 5): const 5, local.set(0), local.get(0), return
	instrs := fn.Body.Instructions
	require.Equal(t, OpLocalSet, instrs[len(instrs)-3].Op)
	require.Equal(t, OpLocalGet, instrs[len(instrs)-2].Op)
	require.Equal(t, OpReturn, instrs[len(instrs)-1].Op)
}

func TestGenerate_IfStatementCreatesIfRegionInline(t *testing.T) {
	mod := generate(t, "int main() { int x = 10; if (x > 5) return 1; else return 0; }")
	fn := mod.Functions[0]
	last := fn.Body.Instructions[len(fn.Body.Instructions)-1]
	require.Equal(t, OpRegion, last.Op)
	ifRegion := last.Operands[0].Region
	require.Equal(t, RegionIf, ifRegion.Kind)
	require.False(t, ifRegion.Expression)
	require.NotNil(t, ifRegion.Then)
	require.NotNil(t, ifRegion.Else)
}

func TestGenerate_WhileLoopBuildsConditionAndBodyRegions(t *testing.T) {
	mod := generate(t, "int main() { int i = 0; while (i < 5) { i = i + 1; } return i; }")
	fn := mod.Functions[0]
	var loopRegion *Region
	for _, instr := range fn.Body.Instructions {
		if instr.Op == OpRegion && instr.Operands[0].Region.Kind == RegionLoop {
			loopRegion = instr.Operands[0].Region
		}
	}
	require.NotNil(t, loopRegion)
	require.False(t, loopRegion.IsDoWhile)
	require.NotNil(t, loopRegion.Condition)
	require.NotNil(t, loopRegion.Body)
}

func TestGenerate_DoWhileLoopFlagsIsDoWhile(t *testing.T) {
	mod := generate(t, "int main() { int i = 0; do { i = i + 1; } while (i < 5); return i; }")
	fn := mod.Functions[0]
	var loopRegion *Region
	for _, instr := range fn.Body.Instructions {
		if instr.Op == OpRegion && instr.Operands[0].Region.Kind == RegionLoop {
			loopRegion = instr.Operands[0].Region
		}
	}
	require.NotNil(t, loopRegion)
	require.True(t, loopRegion.IsDoWhile)
}

func TestGenerate_LogicalAndDesugarsToExpressionIf(t *testing.T) {
	mod := generate(t, "int main() { return 1 && 0; }")
	fn := mod.Functions[0]
	var ifRegion *Region
	for _, instr := range fn.Body.Instructions {
		if instr.Op == OpRegion {
			ifRegion = instr.Operands[0].Region
		}
	}
	require.NotNil(t, ifRegion)
	require.True(t, ifRegion.Expression)
	// else branch is the desugared constant 0 (a && b = a ? !!b : 0)
	require.Equal(t, []Opcode{OpConstI32}, opSeq(ifRegion.Else.Instructions))
	require.Equal(t, int32(0), ifRegion.Else.Instructions[0].Operands[0].ConstValue)
}

func TestGenerate_LogicalOrDesugarsToExpressionIf(t *testing.T) {
	mod := generate(t, "int main() { return 1 || 2; }")
	fn := mod.Functions[0]
	var ifRegion *Region
	for _, instr := range fn.Body.Instructions {
		if instr.Op == OpRegion {
			ifRegion = instr.Operands[0].Region
		}
	}
	require.NotNil(t, ifRegion)
	// then branch is the desugared constant 1 (a || b = a ? 1 : !!b)
	require.Equal(t, []Opcode{OpConstI32}, opSeq(ifRegion.Then.Instructions))
	require.Equal(t, int32(1), ifRegion.Then.Instructions[0].Operands[0].ConstValue)
}

func TestGenerate_LogicalAndNormalizesComputedSideToBoolean(t *testing.T) {
	// a && b lowers to a ? !!b : 0; the computed side (the "then" branch
	// here, since then = b) must come out as a double eqz, not b's raw
	// value, or `1 && 0 || 2` (spec.md §8 scenario 6) would not return 1.
	mod := generate(t, "int main() { int x = 0; return 1 && x; }")
	fn := mod.Functions[0]
	var ifRegion *Region
	for _, instr := range fn.Body.Instructions {
		if instr.Op == OpRegion {
			ifRegion = instr.Operands[0].Region
		}
	}
	require.NotNil(t, ifRegion)
	require.Equal(t, []Opcode{OpLocalGet, OpEqz, OpEqz}, opSeq(ifRegion.Then.Instructions))
}

func TestGenerate_LogicalOrNormalizesComputedSideToBoolean(t *testing.T) {
	mod := generate(t, "int main() { int x = 2; return 0 || x; }")
	fn := mod.Functions[0]
	var ifRegion *Region
	for _, instr := range fn.Body.Instructions {
		if instr.Op == OpRegion {
			ifRegion = instr.Operands[0].Region
		}
	}
	require.NotNil(t, ifRegion)
	require.Equal(t, []Opcode{OpLocalGet, OpEqz, OpEqz}, opSeq(ifRegion.Else.Instructions))
}

func TestGenerate_TernaryDoesNotNormalizeBranches(t *testing.T) {
	// unlike && / ||, a genuine ternary passes its branch values through
	// raw: `x ? 5 : 9` must leave 5 or 9 on the stack, not !!5 / !!9.
	mod := generate(t, "int main() { int x = 1; return x ? 5 : 9; }")
	fn := mod.Functions[0]
	var ifRegion *Region
	for _, instr := range fn.Body.Instructions {
		if instr.Op == OpRegion {
			ifRegion = instr.Operands[0].Region
		}
	}
	require.NotNil(t, ifRegion)
	require.Equal(t, []Opcode{OpConstI32}, opSeq(ifRegion.Then.Instructions))
	require.Equal(t, int32(5), ifRegion.Then.Instructions[0].Operands[0].ConstValue)
	require.Equal(t, []Opcode{OpConstI32}, opSeq(ifRegion.Else.Instructions))
	require.Equal(t, int32(9), ifRegion.Else.Instructions[0].Operands[0].ConstValue)
}

func TestGenerate_BreakAndContinueEmitDedicatedOpcodes(t *testing.T) {
	mod := generate(t, "int main() { while (1) { break; continue; } return 0; }")
	fn := mod.Functions[0]
	var loopRegion *Region
	for _, instr := range fn.Body.Instructions {
		if instr.Op == OpRegion && instr.Operands[0].Region.Kind == RegionLoop {
			loopRegion = instr.Operands[0].Region
		}
	}
	require.Equal(t, []Opcode{OpBreak, OpContinue}, opSeq(loopRegion.Body.Instructions))
}

func TestPrint_RendersIfThenElseAndLoopHeaders(t *testing.T) {
	mod := generate(t, "int main() { int i = 0; while (i < 5) { i = i + 1; } return i; }")
	var buf bytes.Buffer
	Print(&buf, mod)

	out := buf.String()
	require.Contains(t, out, "function main")
	require.Contains(t, out, "loop:")
	require.Contains(t, out, "condition:")
	require.Contains(t, out, "body:")
}

func TestPrint_DoWhileOrdersBodyBeforeCondition(t *testing.T) {
	mod := generate(t, "int main() { int i = 0; do { i = i + 1; } while (i < 5); return i; }")
	var buf bytes.Buffer
	Print(&buf, mod)

	out := buf.String()
	require.Contains(t, out, "loop (do-while):")
	bodyIdx := indexOf(out, "body:")
	condIdx := indexOf(out, "condition:")
	require.Less(t, bodyIdx, condIdx)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
