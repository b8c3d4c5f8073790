package maqui

import "fmt"

// Table is the language's single associative container: a dense, 1-indexed array part
// plus a map part keyed by any non-nil Value. A Table is always referenced through a
// pointer (its "handle"); copying the pointer, not the struct, is what makes multiple
// Values alias the same mutable table, per spec §3/§9.
type Table struct {
	array []Value
	hash  map[interface{}]Value
}

// NewTable allocates a Table. arrayCap/mapCap are capacity hints, not bounds — the
// table grows past them like any other Go slice/map.
func NewTable(arrayCap, mapCap int) *Table {
	return &Table{
		array: make([]Value, 0, arrayCap),
		hash:  make(map[interface{}]Value, mapCap),
	}
}

// Set stores value under key. A Nil key is a runtime error: tables cannot be indexed
// by nil.
func (t *Table) Set(key, value Value) {
	if key.IsNil() {
		panic("table index is nil")
	}

	t.hash[key.hashKey()] = value
}

// Get looks up key, returning Nil if absent.
func (t *Table) Get(key Value) Value {
	if key.IsNil() {
		return Nil
	}

	if v, ok := t.hash[key.hashKey()]; ok {
		return v
	}

	return Nil
}

// AppendArray extends the array part with values, in order, growing it past whatever
// capacity hint NewTable was given.
func (t *Table) AppendArray(values ...Value) {
	t.array = append(t.array, values...)
}

// Array returns the table's dense array part.
func (t *Table) Array() []Value {
	return t.array
}

// Display renders the table the way `print` does: "{table}: <address-like token>",
// stable only within a single run, per spec §6 and original_source's table.rs Display.
func (t *Table) Display() string {
	return fmt.Sprintf("{table}: %p", t)
}
