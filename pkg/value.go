package maqui

import (
	"fmt"
	"math"
	"strconv"
)

// ValueType tags the variant held by a Value.
type ValueType uint8

const (
	TypeNil ValueType = iota
	TypeBoolean
	TypeInteger
	TypeFloat
	TypeString
	TypeFunction
	TypeTable
)

// HostFunction is the signature every built-in callable via the Call opcode must
// implement: given a reference to the running VM, it returns the number of values it
// pushed as return values. The core only ever registers print, which always returns 0.
type HostFunction func(vm *ExeState) int32

// Value is the universal tagged value of the language: nil, a boolean, a 64-bit signed
// integer, a 64-bit float, a byte-string, a host function pointer, or a table handle.
// Only the field matching Typ is meaningful; Value is intentionally a flat struct
// rather than an interface so it can be copied cheaply and compared with ==-adjacent
// helpers instead of boxed dynamic dispatch.
type Value struct {
	Typ ValueType
	b   bool
	i   int64
	f   float64
	s   string
	fn  HostFunction
	t   *Table
}

// Nil is the single nil value.
var Nil = Value{Typ: TypeNil}

func Boolean(b bool) Value  { return Value{Typ: TypeBoolean, b: b} }
func Integer(i int64) Value { return Value{Typ: TypeInteger, i: i} }
func Float(f float64) Value { return Value{Typ: TypeFloat, f: f} }
func String(s string) Value { return Value{Typ: TypeString, s: s} }
func Function(fn HostFunction) Value {
	return Value{Typ: TypeFunction, fn: fn}
}
func TableValue(t *Table) Value { return Value{Typ: TypeTable, t: t} }

func (v Value) IsNil() bool { return v.Typ == TypeNil }

func (v Value) AsBool() bool         { return v.b }
func (v Value) AsInt() int64         { return v.i }
func (v Value) AsFloat() float64     { return v.f }
func (v Value) AsString() string     { return v.s }
func (v Value) AsFunction() HostFunction { return v.fn }
func (v Value) AsTable() *Table       { return v.t }

// Equal implements by-value equality for primitives and strings, and by-identity
// equality for functions and tables, per spec. Values of different Typ are never equal
// (in particular an Integer and an equal-valued Float do not compare equal).
func (v Value) Equal(o Value) bool {
	if v.Typ != o.Typ {
		return false
	}

	switch v.Typ {
	case TypeNil:
		return true
	case TypeBoolean:
		return v.b == o.b
	case TypeInteger:
		return v.i == o.i
	case TypeFloat:
		return v.f == o.f
	case TypeString:
		return v.s == o.s
	case TypeFunction:
		// Host functions are plain Go func values; compare by pointer identity via
		// their formatted address, since Go forbids == between func values directly.
		return fmt.Sprintf("%p", v.fn) == fmt.Sprintf("%p", o.fn)
	case TypeTable:
		return v.t == o.t
	default:
		return false
	}
}

// hashKey returns a comparable Go value suitable for use as a Go map key, so that
// Table.hash can be a plain map[interface{}]Value. Hashing agrees with Equal: floats
// hash by their IEEE-754 bit pattern (spec's simpler MAY option, see DESIGN.md), and
// functions/tables hash by identity.
func (v Value) hashKey() interface{} {
	switch v.Typ {
	case TypeNil:
		return nil
	case TypeBoolean:
		return v.b
	case TypeInteger:
		return v.i
	case TypeFloat:
		return math.Float64bits(v.f)
	case TypeString:
		return v.s
	case TypeFunction:
		// A distinct key type keeps a function's address text from colliding with a
		// String value holding the same text.
		type fnKey string
		return fnKey(fmt.Sprintf("%p", v.fn))
	case TypeTable:
		return v.t
	default:
		return nil
	}
}

// typeName names v's variant for error messages, e.g. "attempt to call a nil value".
func typeName(t ValueType) string {
	switch t {
	case TypeNil:
		return "nil"
	case TypeBoolean:
		return "boolean"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeFunction:
		return "function"
	case TypeTable:
		return "table"
	default:
		return "?"
	}
}

// Display renders v the way `print` shows it: nil/booleans/integers/floats in their
// natural form, strings quoted, functions as <function>, and tables as
// "{table}: <address>".
func (v Value) Display() string {
	switch v.Typ {
	case TypeNil:
		return "nil"
	case TypeBoolean:
		if v.b {
			return "true"
		}

		return "false"
	case TypeInteger:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return formatFloat(v.f)
	case TypeString:
		return "'" + v.s + "'"
	case TypeFunction:
		return "<function>"
	case TypeTable:
		return v.t.Display()
	default:
		return "?"
	}
}

// formatFloat renders a float the way `print(1.5e2)` expects: the shortest round-trip
// 'g' form, with ".0" appended when that form has neither a '.' nor an exponent, e.g.
// "150.0" rather than "150". Values that 'g' writes in exponent form (magnitude at
// least 1e6 or below 1e-4) keep it, e.g. "1e+06", with no fractional part added.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return s
		}
	}

	return s + ".0"
}
