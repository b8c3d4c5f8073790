package maqui

import "fmt"

// ExeState is the running machine: a single growable value stack, the one shared
// global table, and the slot a host function call is currently anchored at. There is
// exactly one ExeState per program run, mirroring original_source's vm::State.
type ExeState struct {
	stack     []Value
	globals   *Table
	funcIndex int
}

// NewExeState builds a fresh machine with an empty stack and the standard library
// (currently just print) installed in its global table.
func NewExeState() *ExeState {
	e := &ExeState{globals: NewTable(0, 8)}
	e.globals.Set(String("print"), Function(builtinPrint))
	return e
}

// Globals exposes the global table, mainly so host functions and tests can inspect
// state the program left behind.
func (e *ExeState) Globals() *Table {
	return e.globals
}

// setStack writes v at dst, growing the stack by exactly one slot if dst lands exactly
// at the current top. A dst further out than that would mean some earlier instruction
// failed to reserve its slot — a bug in the emitter, not a recoverable runtime state.
func (e *ExeState) setStack(dst int, v Value) {
	switch {
	case dst < len(e.stack):
		e.stack[dst] = v
	case dst == len(e.stack):
		e.stack = append(e.stack, v)
	default:
		panic(fmt.Sprintf("stack write at slot %d leaves a gap past top %d", dst, len(e.stack)))
	}
}

// Execute runs proto's bytecode to completion. There is no control flow in this core —
// every instruction runs exactly once, in order — so Execute is a single linear sweep.
func (e *ExeState) Execute(proto *ParseProto) {
	for _, bc := range proto.Bytecodes {
		switch bc.Op {
		case OpGetGlobal:
			e.setStack(int(bc.A), e.globals.Get(proto.Constants[bc.B]))
		case OpSetGlobal:
			e.globals.Set(proto.Constants[bc.A], e.stack[bc.B])
		case OpSetGlobalConst:
			e.globals.Set(proto.Constants[bc.A], proto.Constants[bc.B])
		case OpSetGlobalGlobal:
			e.globals.Set(proto.Constants[bc.A], e.globals.Get(proto.Constants[bc.B]))
		case OpLoadConst:
			e.setStack(int(bc.A), proto.Constants[bc.B])
		case OpLoadNil:
			e.setStack(int(bc.A), Nil)
		case OpLoadBool:
			e.setStack(int(bc.A), Boolean(bc.B1))
		case OpLoadInt:
			e.setStack(int(bc.A), Integer(int64(bc.I16)))
		case OpMove:
			e.setStack(int(bc.A), e.stack[bc.B])
		case OpCall:
			e.executeCall(bc)
		case OpNewTable:
			e.setStack(int(bc.A), TableValue(NewTable(int(bc.B), int(bc.C))))
		case OpSetTable:
			e.executeSetTable(bc)
		case OpSetField:
			e.executeSetField(proto, bc)
		case OpSetList:
			e.executeSetList(bc)
		default:
			panic(fmt.Sprintf("unknown opcode %d", bc.Op))
		}
	}
}

func (e *ExeState) requireTable(slot uint8, verb string) *Table {
	v := e.stack[slot]
	if v.Typ != TypeTable {
		panic(fmt.Sprintf("attempt to %s a %s value", verb, typeName(v.Typ)))
	}

	return v.AsTable()
}

// executeCall dispatches a Call through the function slot's HostFunction. funcIndex is
// recorded so the callee can find its arguments at funcIndex+1, funcIndex+2, ... without
// the Call instruction itself needing to pass them explicitly.
func (e *ExeState) executeCall(bc ByteCode) {
	fn := e.stack[bc.A]
	if fn.Typ != TypeFunction {
		panic(fmt.Sprintf("attempt to call a %s value", typeName(fn.Typ)))
	}

	e.funcIndex = int(bc.A)
	fn.AsFunction()(e)
}

func (e *ExeState) executeSetTable(bc ByteCode) {
	e.requireTable(bc.A, "index").Set(e.stack[bc.B], e.stack[bc.C])
}

func (e *ExeState) executeSetField(proto *ParseProto, bc ByteCode) {
	e.requireTable(bc.A, "index").Set(proto.Constants[bc.B], e.stack[bc.C])
}

// executeSetList flushes the n array-part values sitting at slots A+1..A+n into the
// table at slot A, then drops them from the stack — nothing later in the bytecode
// stream references those scratch slots again.
func (e *ExeState) executeSetList(bc ByteCode) {
	t := e.requireTable(bc.A, "index")

	start := int(bc.A) + 1
	n := int(bc.B)

	values := make([]Value, n)
	copy(values, e.stack[start:start+n])
	t.AppendArray(values...)

	e.stack = e.stack[:start]
}
