// Package emitter serializes an IR module into a WASM 1.0 binary module.
// The byte layout is fixed: magic+version, then Type/Function/Export/Code
// sections, each framed as id || uLEB128(size) || content.
package emitter

import (
	"bytes"
	"encoding/binary"

	"github.com/theSherwood/wacc/internal/ir"
	"github.com/theSherwood/wacc/internal/leb128"
)

const (
	wasmMagic   uint32 = 0x6d736100
	wasmVersion uint32 = 0x00000001

	sectionType     byte = 1
	sectionFunction byte = 3
	sectionExport   byte = 7
	sectionCode     byte = 10

	valTypeI32 byte = 0x7f
	blockVoid  byte = 0x40
	blockI32   byte = 0x7f

	opLocalGet = 0x20
	opLocalSet = 0x21
	opI32Const = 0x41
	opI32Eqz   = 0x45
	opI32Eq    = 0x46
	opI32Ne    = 0x47
	opI32LtS   = 0x48
	opI32GtS   = 0x4a
	opI32LeS   = 0x4c
	opI32GeS   = 0x4e
	opI32Add   = 0x6a
	opI32Sub   = 0x6b
	opI32Mul   = 0x6c
	opI32DivS  = 0x6d
	opI32RemS  = 0x6f
	opI32And   = 0x71
	opI32Or    = 0x72
	opI32Xor   = 0x73
	opReturn   = 0x0f
	opDrop     = 0x1a
	opBlock    = 0x02
	opLoop     = 0x03
	opIf       = 0x04
	opElse     = 0x05
	opBr       = 0x0c
	opBrIf     = 0x0d
	opEnd      = 0x0b

	exportKindFunc byte = 0x00
	funcTypeTag    byte = 0x60
)

func writeULEB32(buf *bytes.Buffer, v uint32) {
	buf.Write(leb128.EncodeUint32(v))
}

func writeSLEB32(buf *bytes.Buffer, v int32) {
	buf.Write(leb128.EncodeInt32(v))
}

func writeString(buf *bytes.Buffer, s string) {
	writeULEB32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func writeSection(out *bytes.Buffer, id byte, content *bytes.Buffer) {
	out.WriteByte(id)
	writeULEB32(out, uint32(content.Len()))
	out.Write(content.Bytes())
}

func emitTypeSection(out *bytes.Buffer) {
	var content bytes.Buffer
	writeULEB32(&content, 1) // one function type
	content.WriteByte(funcTypeTag)
	writeULEB32(&content, 0) // zero params
	writeULEB32(&content, 1) // one result
	content.WriteByte(valTypeI32)
	writeSection(out, sectionType, &content)
}

func emitFunctionSection(out *bytes.Buffer) {
	var content bytes.Buffer
	writeULEB32(&content, 1) // one function
	writeULEB32(&content, 0) // using type index 0
	writeSection(out, sectionFunction, &content)
}

func emitExportSection(out *bytes.Buffer) {
	var content bytes.Buffer
	writeULEB32(&content, 1) // one export
	writeString(&content, "main")
	content.WriteByte(exportKindFunc)
	writeULEB32(&content, 0) // function index 0
	writeSection(out, sectionExport, &content)
}

// label is one entry on the emitter's open-block stack, used to resolve
// break/continue to a relative br depth: entering a loop pushes an outer
// block label (the break target) then an inner loop label (the continue
// target). A do-while also wraps its body in a block carrying the continue
// label, so continue falls through to the condition check.
type labelKind int

const (
	labelGeneric labelKind = iota
	labelLoopBlock
	labelLoopLoop
)

type emitter struct {
	labels []labelKind
}

func (e *emitter) push(k labelKind) { e.labels = append(e.labels, k) }
func (e *emitter) pop()             { e.labels = e.labels[:len(e.labels)-1] }

// depthTo finds the nearest enclosing label of kind k and returns its
// relative br depth (0 = innermost).
func (e *emitter) depthTo(k labelKind) uint32 {
	for i := len(e.labels) - 1; i >= 0; i-- {
		if e.labels[i] == k {
			return uint32(len(e.labels) - 1 - i)
		}
	}
	return 0
}

func (e *emitter) emitInstruction(buf *bytes.Buffer, instr ir.Instruction) {
	switch instr.Op {
	case ir.OpConstI32:
		buf.WriteByte(opI32Const)
		writeSLEB32(buf, instr.Operands[0].ConstValue)
	case ir.OpLocalGet:
		buf.WriteByte(opLocalGet)
		writeULEB32(buf, uint32(instr.Operands[0].LocalIndex))
	case ir.OpLocalSet:
		buf.WriteByte(opLocalSet)
		writeULEB32(buf, uint32(instr.Operands[0].LocalIndex))
	case ir.OpAdd:
		buf.WriteByte(opI32Add)
	case ir.OpSub:
		buf.WriteByte(opI32Sub)
	case ir.OpMul:
		buf.WriteByte(opI32Mul)
	case ir.OpDivS:
		buf.WriteByte(opI32DivS)
	case ir.OpRemS:
		buf.WriteByte(opI32RemS)
	case ir.OpEq:
		buf.WriteByte(opI32Eq)
	case ir.OpNotEq:
		buf.WriteByte(opI32Ne)
	case ir.OpLtS:
		buf.WriteByte(opI32LtS)
	case ir.OpGtS:
		buf.WriteByte(opI32GtS)
	case ir.OpLeS:
		buf.WriteByte(opI32LeS)
	case ir.OpGeS:
		buf.WriteByte(opI32GeS)
	case ir.OpAnd:
		buf.WriteByte(opI32And)
	case ir.OpOr:
		buf.WriteByte(opI32Or)
	case ir.OpXor:
		buf.WriteByte(opI32Xor)
	case ir.OpEqz:
		buf.WriteByte(opI32Eqz)
	case ir.OpDrop:
		buf.WriteByte(opDrop)
	case ir.OpReturn:
		buf.WriteByte(opReturn)
	case ir.OpBreak:
		buf.WriteByte(opBr)
		writeULEB32(buf, e.depthTo(labelLoopBlock))
	case ir.OpContinue:
		buf.WriteByte(opBr)
		writeULEB32(buf, e.depthTo(labelLoopLoop))
	case ir.OpRegion:
		e.emitRegion(buf, instr.Operands[0].Region)
	}
}

func (e *emitter) emitInstructions(buf *bytes.Buffer, instrs []ir.Instruction) {
	for _, instr := range instrs {
		e.emitInstruction(buf, instr)
	}
}

func (e *emitter) emitRegion(buf *bytes.Buffer, r *ir.Region) {
	switch r.Kind {
	case ir.RegionIf:
		e.emitInstructions(buf, r.Instructions) // condition
		buf.WriteByte(opIf)
		if r.Expression {
			buf.WriteByte(blockI32)
		} else {
			buf.WriteByte(blockVoid)
		}
		e.push(labelGeneric)
		e.emitInstructions(buf, r.Then.Instructions)
		if r.Else != nil {
			buf.WriteByte(opElse)
			e.emitInstructions(buf, r.Else.Instructions)
		}
		buf.WriteByte(opEnd)
		e.pop()

	case ir.RegionLoop:
		buf.WriteByte(opBlock)
		buf.WriteByte(blockVoid)
		e.push(labelLoopBlock)
		buf.WriteByte(opLoop)
		buf.WriteByte(blockVoid)
		e.push(labelLoopLoop)

		if r.IsDoWhile {
			buf.WriteByte(opBlock)
			buf.WriteByte(blockVoid)
			e.push(labelLoopLoop) // continue exits this block to the condition
			e.emitInstructions(buf, r.Body.Instructions)
			buf.WriteByte(opEnd)
			e.pop()
			e.emitInstructions(buf, r.Condition.Instructions)
			buf.WriteByte(opBrIf)
			writeULEB32(buf, 0) // continue looping while condition holds
		} else {
			e.emitInstructions(buf, r.Condition.Instructions)
			buf.WriteByte(opI32Eqz)
			buf.WriteByte(opBrIf)
			writeULEB32(buf, e.depthTo(labelLoopBlock))
			e.emitInstructions(buf, r.Body.Instructions)
			buf.WriteByte(opBr)
			writeULEB32(buf, 0) // unconditional re-check of the condition
		}

		buf.WriteByte(opEnd) // loop
		e.pop()
		buf.WriteByte(opEnd) // block
		e.pop()

	default:
		e.emitInstructions(buf, r.Instructions)
	}
}

func emitCodeSection(out *bytes.Buffer, mod *ir.Module) {
	var content bytes.Buffer
	writeULEB32(&content, uint32(len(mod.Functions)))

	for _, fn := range mod.Functions {
		var body bytes.Buffer

		if fn.NumLocals > 0 {
			writeULEB32(&body, 1)
			writeULEB32(&body, uint32(fn.NumLocals))
			body.WriteByte(valTypeI32)
		} else {
			writeULEB32(&body, 0)
		}

		e := &emitter{}
		e.emitRegion(&body, fn.Body)

		if fn.ReturnI32 {
			body.WriteByte(opI32Const)
			writeSLEB32(&body, 0)
			body.WriteByte(opReturn)
		}
		body.WriteByte(opEnd)

		writeULEB32(&content, uint32(body.Len()))
		content.Write(body.Bytes())
	}

	writeSection(out, sectionCode, &content)
}

// Emit serializes mod into a complete WASM 1.0 binary module.
func Emit(mod *ir.Module) []byte {
	var out bytes.Buffer

	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], wasmMagic)
	binary.LittleEndian.PutUint32(header[4:8], wasmVersion)
	out.Write(header[:])

	emitTypeSection(&out)
	emitFunctionSection(&out)
	emitExportSection(&out)
	emitCodeSection(&out, mod)

	return out.Bytes()
}
