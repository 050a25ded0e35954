// Package types models the compiler's type system: a discriminated record
// of kind, WASM value type, size, and alignment. Only I32 is wired through
// lowering and emission; the rest are reserved placeholders the grammar
// anticipates (pointers, arrays, structs) but never requires.
package types

// Kind is the closed set of type tags.
type Kind int

const (
	Void Kind = iota
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Pointer
	Array
	Struct
	Function
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Pointer:
		return "pointer"
	case Array:
		return "array"
	case Struct:
		return "struct"
	case Function:
		return "function"
	default:
		return "unknown"
	}
}

// ValueType is the WASM value type a Kind lowers to.
type ValueType int

const (
	NoValueType ValueType = iota
	ValI32
	ValI64
	ValF32
	ValF64
	ValFuncref
	ValExternref
)

func (v ValueType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValFuncref:
		return "funcref"
	case ValExternref:
		return "externref"
	default:
		return "none"
	}
}

// Type is a discriminated record describing a source-level type: its kind,
// the WASM value type it lowers to, and its size/alignment in bytes.
type Type struct {
	Kind      Kind
	ValueType ValueType
	Size      int
	Align     int
}

// I32Type is the only type the implementation is required to lower.
var I32Type = Type{Kind: I32, ValueType: ValI32, Size: 4, Align: 4}

// Reserved placeholder types, carried for fidelity to the source grammar's
// Type enum but never produced by the parser or consumed by the emitter.
var (
	VoidType    = Type{Kind: Void, ValueType: NoValueType, Size: 0, Align: 1}
	I8Type      = Type{Kind: I8, ValueType: ValI32, Size: 1, Align: 1}
	I16Type     = Type{Kind: I16, ValueType: ValI32, Size: 2, Align: 2}
	I64Type     = Type{Kind: I64, ValueType: ValI64, Size: 8, Align: 8}
	U8Type      = Type{Kind: U8, ValueType: ValI32, Size: 1, Align: 1}
	U16Type     = Type{Kind: U16, ValueType: ValI32, Size: 2, Align: 2}
	U32Type     = Type{Kind: U32, ValueType: ValI32, Size: 4, Align: 4}
	U64Type     = Type{Kind: U64, ValueType: ValI64, Size: 8, Align: 8}
	F32Type     = Type{Kind: F32, ValueType: ValF32, Size: 4, Align: 4}
	F64Type     = Type{Kind: F64, ValueType: ValF64, Size: 8, Align: 8}
	PointerType = Type{Kind: Pointer, ValueType: ValI32, Size: 4, Align: 4}
)
