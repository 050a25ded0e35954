// Package ir defines a stack-oriented intermediate representation: a
// region tree mirroring WASM's structured control flow directly, and a
// flat instruction list per region.
package ir

// RegionKind is the closed set of region tags.
type RegionKind int

const (
	RegionBlock RegionKind = iota
	RegionFunction
	RegionIf
	RegionLoop
)

// Opcode is the closed set of IR instruction opcodes.
type Opcode int

const (
	OpConstI32 Opcode = iota
	OpLocalGet
	OpLocalSet
	OpAdd
	OpSub
	OpMul
	OpDivS
	OpRemS
	OpEq
	OpNotEq
	OpLtS
	OpGtS
	OpLeS
	OpGeS
	OpAnd
	OpOr
	OpXor
	OpEqz
	OpDrop
	OpReturn
	OpBreak
	OpContinue
	OpRegion // a nested region, emitted inline where it appears in the instruction list
)

// OperandKind tags what an Operand carries.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandConst
	OperandLocalIndex
	OperandLabel
	OperandRegion
)

// Operand is a single tagged operand to an Instruction.
type Operand struct {
	Kind       OperandKind
	ConstValue int32
	LocalIndex int
	Label      int
	Region     *Region
}

// Instruction is one IR opcode with up to three operands and a result
// type flag (true if it leaves a value on the logical evaluation stack).
type Instruction struct {
	Op          Opcode
	Operands    [3]Operand
	NumOperands int
	HasResult   bool
}

// Region is a node in the control-flow region tree. Instructions holds
// the region's own flat instruction list, in execution order; a nested
// control construct appears inline as an OpRegion instruction carrying
// the child Region as its operand, so a single ordered list preserves the
// source's statement order even though some "instructions" are really
// sub-regions. The Parent pointer is a weak back-reference, never used to
// drive deallocation.
type Region struct {
	ID           int
	Kind         RegionKind
	Instructions []Instruction
	Parent       *Region

	// Expression marks a region (always an if-region, from ternary
	// lowering) as leaving one i32 value on the stack rather than none.
	Expression bool

	// If-region data.
	Then *Region
	Else *Region

	// Loop-region data.
	Condition *Region
	Body      *Region
	IsDoWhile bool
}

// RegionRef builds an instruction that inlines a nested region at this
// point in the enclosing region's instruction sequence.
func RegionRef(r *Region) Instruction {
	return Instruction{Op: OpRegion, Operands: [3]Operand{{Kind: OperandRegion, Region: r}}, NumOperands: 1}
}

// Function is the compiled unit: name, declared return type, locals, and
// a root function-region. Only i32 locals are produced by this
// implementation.
type Function struct {
	Name       string
	ReturnI32  bool
	NumLocals  int
	Body       *Region
}

// Module is an ordered sequence of functions; this language subset only
// ever produces exactly one.
type Module struct {
	Functions []*Function
}

func simple(op Opcode, hasResult bool) Instruction {
	return Instruction{Op: op, HasResult: hasResult}
}

// ConstI32 builds a const.i32 instruction.
func ConstI32(n int32) Instruction {
	return Instruction{Op: OpConstI32, Operands: [3]Operand{{Kind: OperandConst, ConstValue: n}}, NumOperands: 1, HasResult: true}
}

// LocalGet builds a local.get instruction.
func LocalGet(idx int) Instruction {
	return Instruction{Op: OpLocalGet, Operands: [3]Operand{{Kind: OperandLocalIndex, LocalIndex: idx}}, NumOperands: 1, HasResult: true}
}

// LocalSet builds a local.set instruction.
func LocalSet(idx int) Instruction {
	return Instruction{Op: OpLocalSet, Operands: [3]Operand{{Kind: OperandLocalIndex, LocalIndex: idx}}, NumOperands: 1, HasResult: false}
}

// Arithmetic/comparison/logical instruction constructors, each consuming
// two stack values and leaving one.
func Add() Instruction   { return simple(OpAdd, true) }
func Sub() Instruction   { return simple(OpSub, true) }
func Mul() Instruction   { return simple(OpMul, true) }
func DivS() Instruction  { return simple(OpDivS, true) }
func RemS() Instruction  { return simple(OpRemS, true) }
func Eq() Instruction    { return simple(OpEq, true) }
func NotEq() Instruction { return simple(OpNotEq, true) }
func LtS() Instruction   { return simple(OpLtS, true) }
func GtS() Instruction   { return simple(OpGtS, true) }
func LeS() Instruction   { return simple(OpLeS, true) }
func GeS() Instruction   { return simple(OpGeS, true) }
func And() Instruction   { return simple(OpAnd, true) }
func Or() Instruction    { return simple(OpOr, true) }
func Xor() Instruction   { return simple(OpXor, true) }
func Eqz() Instruction   { return simple(OpEqz, true) }
func Drop() Instruction  { return simple(OpDrop, false) }
func Return() Instruction {
	return simple(OpReturn, false)
}

// Break builds a break instruction targeting the nearest enclosing loop.
func Break() Instruction { return simple(OpBreak, false) }

// Continue builds a continue instruction targeting the nearest enclosing
// loop's condition.
func Continue() Instruction { return simple(OpContinue, false) }
