package maqui

import "fmt"

// OpCode tags a ByteCode instruction.
type OpCode uint8

const (
	OpGetGlobal OpCode = iota
	OpSetGlobal
	OpSetGlobalConst
	OpSetGlobalGlobal
	OpLoadConst
	OpLoadNil
	OpLoadBool
	OpLoadInt
	OpMove
	OpCall
	OpNewTable
	OpSetTable
	OpSetField
	OpSetList
)

// ByteCode is one fixed-width instruction: an opcode tag plus up to three u8
// operands, a bool (LoadBool) or an i16 (LoadInt) payload. Kept as a flat struct
// rather than an interface-per-opcode so proto.bytecodes is a plain slice the VM can
// sweep without boxing or type switches on pointers, mirroring the
// opcode+arity+operands instruction layout cbarrick-ripl's WAM assembler uses.
type ByteCode struct {
	Op  OpCode
	A   uint8
	B   uint8
	C   uint8
	I16 int16
	B1  bool
}

func NewGetGlobal(dst, name uint8) ByteCode       { return ByteCode{Op: OpGetGlobal, A: dst, B: name} }
func NewSetGlobal(name, src uint8) ByteCode       { return ByteCode{Op: OpSetGlobal, A: name, B: src} }
func NewSetGlobalConst(name, c uint8) ByteCode    { return ByteCode{Op: OpSetGlobalConst, A: name, B: c} }
func NewSetGlobalGlobal(name, src uint8) ByteCode { return ByteCode{Op: OpSetGlobalGlobal, A: name, B: src} }
func NewLoadConst(dst, c uint8) ByteCode          { return ByteCode{Op: OpLoadConst, A: dst, B: c} }
func NewLoadNil(dst uint8) ByteCode               { return ByteCode{Op: OpLoadNil, A: dst} }
func NewLoadBool(dst uint8, b bool) ByteCode      { return ByteCode{Op: OpLoadBool, A: dst, B1: b} }
func NewLoadInt(dst uint8, i int16) ByteCode      { return ByteCode{Op: OpLoadInt, A: dst, I16: i} }
func NewMove(dst, src uint8) ByteCode             { return ByteCode{Op: OpMove, A: dst, B: src} }
func NewCall(fn uint8, nargs uint8) ByteCode      { return ByteCode{Op: OpCall, A: fn, B: nargs} }
func NewNewTable(dst, narr, nmap uint8) ByteCode  { return ByteCode{Op: OpNewTable, A: dst, B: narr, C: nmap} }
func NewSetTable(t, k, v uint8) ByteCode          { return ByteCode{Op: OpSetTable, A: t, B: k, C: v} }
func NewSetField(t, k, v uint8) ByteCode          { return ByteCode{Op: OpSetField, A: t, B: k, C: v} }
func NewSetList(t, n uint8) ByteCode              { return ByteCode{Op: OpSetList, A: t, B: n} }

var opNames = map[OpCode]string{
	OpGetGlobal: "GetGlobal", OpSetGlobal: "SetGlobal", OpSetGlobalConst: "SetGlobalConst",
	OpSetGlobalGlobal: "SetGlobalGlobal", OpLoadConst: "LoadConst", OpLoadNil: "LoadNil",
	OpLoadBool: "LoadBool", OpLoadInt: "LoadInt", OpMove: "Move", OpCall: "Call",
	OpNewTable: "NewTable", OpSetTable: "SetTable", OpSetField: "SetField", OpSetList: "SetList",
}

// String renders a disassembly line, in the spirit of original_source's labeled-field
// Debug impl for ByteCode.
func (bc ByteCode) String() string {
	switch bc.Op {
	case OpLoadNil:
		return fmt.Sprintf("%s(%d)", opNames[bc.Op], bc.A)
	case OpLoadBool:
		return fmt.Sprintf("%s(%d, %v)", opNames[bc.Op], bc.A, bc.B1)
	case OpLoadInt:
		return fmt.Sprintf("%s(%d, %d)", opNames[bc.Op], bc.A, bc.I16)
	case OpNewTable, OpSetTable, OpSetField:
		return fmt.Sprintf("%s(%d, %d, %d)", opNames[bc.Op], bc.A, bc.B, bc.C)
	default:
		return fmt.Sprintf("%s(%d, %d)", opNames[bc.Op], bc.A, bc.B)
	}
}
