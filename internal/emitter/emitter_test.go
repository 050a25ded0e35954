package emitter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theSherwood/wacc/internal/arena"
	"github.com/theSherwood/wacc/internal/diag"
	"github.com/theSherwood/wacc/internal/ir"
	"github.com/theSherwood/wacc/internal/lexer"
	"github.com/theSherwood/wacc/internal/parser"
	"github.com/theSherwood/wacc/internal/sema"
)

func compileToIR(t *testing.T, source string) *ir.Module {
	t.Helper()
	a := arena.New()
	diags := diag.NewList(a)
	lex := lexer.New("t.c", source, diags)
	p := parser.New("t.c", source, lex, diags, a)
	prog := p.ParseProgram()
	require.NotNil(t, prog)
	an := sema.New("t.c", source, diags)
	require.True(t, an.Analyze(prog))
	require.Equal(t, 0, diags.Len())
	return ir.Generate(prog, a)
}

func TestEmit_ModuleHeaderAndSections(t *testing.T) {
	mod := compileToIR(t, "int main() { return 42; }")
	out := Emit(mod)

	require.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d}, out[0:4], "magic")
	require.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, out[4:8], "version")

	// Type section: id 1, size 5, [1 functype () -> (i32)]
	require.Equal(t, byte(sectionType), out[8])
	require.Equal(t, []byte{
		0x01,       // one type
		0x60,       // functype tag
		0x00,       // zero params
		0x01, 0x7f, // one result, i32
	}, out[10:15])
}

func TestEmit_SimpleReturnProducesExpectedCodeBytes(t *testing.T) {
	mod := compileToIR(t, "int main() { return 42; }")
	out := Emit(mod)

	// locals(0) const.i32 42 return epilogue(const.i32 0 return) end
	expectedBody := []byte{
		0x00,       // zero local groups
		0x41, 0x2a, // const.i32 42
		0x0f,             // return
		0x41, 0x00, 0x0f, // epilogue: const.i32 0; return
		0x0b, // end
	}
	require.Contains(t, string(out), string(expectedBody))
}

func TestEmit_VariableDeclarationEmitsLocalsGroup(t *testing.T) {
	mod := compileToIR(t, "int main() { int a = 3; int b = 4; return a + b; }")
	out := Emit(mod)

	// locals declaration: 1 group of 2 i32 locals
	localsDecl := []byte{0x01, 0x02, 0x7f}
	require.Contains(t, string(out), string(localsDecl))
}

func TestEmit_IfElseEmitsStructuredControlFlow(t *testing.T) {
	mod := compileToIR(t, "int main() { int x = 10; if (x > 5) return 1; else return 0; }")
	out := Emit(mod)

	require.Contains(t, string(out), string([]byte{opIf, blockVoid}))
	require.Contains(t, string(out), string([]byte{opElse}))
}

func TestEmit_TernaryUsesI32BlockType(t *testing.T) {
	mod := compileToIR(t, "int main() { return 1 ? 2 : 3; }")
	out := Emit(mod)

	require.Contains(t, string(out), string([]byte{opIf, blockI32}))
}

func TestEmit_WhileLoopWrapsBlockAroundLoopWithConditionalExit(t *testing.T) {
	mod := compileToIR(t, "int main() { int i = 0; while (i < 5) { i = i + 1; } return i; }")
	out := Emit(mod)
	s := out

	blockIdx := indexOfByte2(s, opBlock, blockVoid)
	require.GreaterOrEqual(t, blockIdx, 0)
	loopIdx := indexOfByte2(s, opLoop, blockVoid)
	require.Greater(t, loopIdx, blockIdx)

	// condition lowering followed by eqz, br_if 1 (exit to the enclosing block)
	eqzIdx := indexOfByte(s[loopIdx:], opI32Eqz)
	require.GreaterOrEqual(t, eqzIdx, 0)
	require.Equal(t, byte(opBrIf), s[loopIdx+eqzIdx+1])
}

func TestEmit_DoWhileLoopPlacesConditionAfterBody(t *testing.T) {
	mod := compileToIR(t, "int main() { int i = 0; do { i = i + 1; } while (i < 5); return i; }")
	out := Emit(mod)

	// do-while body has no leading eqz/br_if exit check, only a trailing br_if back
	require.NotContains(t, string(out), string([]byte{opI32Eqz, opBrIf}))
	require.Contains(t, string(out), string([]byte{opBrIf}))
}

func TestEmit_BreakAndContinueResolveToEnclosingLoopLabels(t *testing.T) {
	mod := compileToIR(t, "int main() { while (1) { break; continue; } return 0; }")
	out := Emit(mod)

	// break -> br depth 1 (block is one level out from the loop body when
	// both loop and block are open); continue -> br depth 0 (innermost loop)
	brIdx := indexOfByte(out, opBr)
	require.GreaterOrEqual(t, brIdx, 0)
	require.Equal(t, byte(1), out[brIdx+1])

	nextBrIdx := indexOfByte(out[brIdx+2:], opBr)
	require.GreaterOrEqual(t, nextBrIdx, 0)
	require.Equal(t, byte(0), out[brIdx+2+nextBrIdx+1])
}

func TestEmit_ExportsMainFunction(t *testing.T) {
	mod := compileToIR(t, "int main() { return 0; }")
	out := Emit(mod)

	require.Contains(t, string(out), "main")
}

func indexOfByte(s []byte, b byte) int {
	for i, v := range s {
		if v == b {
			return i
		}
	}
	return -1
}

func indexOfByte2(s []byte, a, b byte) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == a && s[i+1] == b {
			return i
		}
	}
	return -1
}
