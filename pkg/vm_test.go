package maqui

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureStdout redirects os.Stdout for the duration of fn and returns everything
// written to it, since builtinPrint writes there directly.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	orig := os.Stdout
	os.Stdout = w

	fn()

	os.Stdout = orig
	_ = w.Close()

	var buf strings.Builder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		buf.WriteString(scanner.Text())
		buf.WriteByte('\n')
	}

	return buf.String()
}

func run(t *testing.T, src string) string {
	t.Helper()

	proto := LoadFromReader(strings.NewReader(src))
	vm := NewExeState()

	return captureStdout(t, func() {
		vm.Execute(proto)
	})
}

func TestVMPrintStringLiteral(t *testing.T) {
	assert.Equal(t, "'hello, world!'\n", run(t, `print "hello, world!"`))
}

func TestVMPrintFloatExponent(t *testing.T) {
	assert.Equal(t, "150.0\n", run(t, `print(1.5e2)`))
}

func TestVMGlobalAliasing(t *testing.T) {
	assert.Equal(t, "10\n", run(t, `a = 10
b = a
print(b)`))
}

func TestVMLocalBindAndPrint(t *testing.T) {
	assert.Equal(t, "3\n", run(t, `local x = 3
print(x)`))
}

func TestVMGlobalReassignmentOverwrites(t *testing.T) {
	assert.Equal(t, "2\n", run(t, `a = 1
a = 2
print(a)`))
}

func TestVMLocalShadowingReadsNewestBinding(t *testing.T) {
	assert.Equal(t, "2\n", run(t, `local x = 1
local x = 2
print(x)`))
}

func TestVMUndefinedGlobalIsNil(t *testing.T) {
	assert.Equal(t, "nil\n", run(t, `print(undefined)`))
}

func TestVMTableConstructorArrayAndMap(t *testing.T) {
	proto := LoadFromReader(strings.NewReader(`local t = {1, 2, [3]=30, name="n"}`))
	vm := NewExeState()
	vm.Execute(proto)

	tbl := vm.stack[0].AsTable()
	assert.Equal(t, []Value{Integer(1), Integer(2)}, tbl.Array())
	assert.Equal(t, Integer(30), tbl.Get(Integer(3)))
	assert.Equal(t, String("n"), tbl.Get(String("name")))
}

func TestVMGlobalTableConstructorAndPrint(t *testing.T) {
	out := run(t, `t = { 1, 2, [3]=30, name="n" }
print(t)`)

	assert.Contains(t, out, "{table}:")

	tbl := vmGlobalTable(t, `t = { 1, 2, [3]=30, name="n" }`, "t")
	assert.Equal(t, []Value{Integer(1), Integer(2)}, tbl.Array())
	assert.Equal(t, Integer(30), tbl.Get(Integer(3)))
	assert.Equal(t, String("n"), tbl.Get(String("name")))
}

// vmGlobalTable runs src and returns the *Table bound to the global named name.
func vmGlobalTable(t *testing.T, src, name string) *Table {
	t.Helper()

	proto := LoadFromReader(strings.NewReader(src))
	vm := NewExeState()
	vm.Execute(proto)

	return vm.globals.Get(String(name)).AsTable()
}

func TestVMTableAliasingAcrossGlobals(t *testing.T) {
	proto := LoadFromReader(strings.NewReader(`local t = {1, 2}
g = t`))
	vm := NewExeState()
	vm.Execute(proto)

	local := vm.stack[0]
	global := vm.globals.Get(String("g"))

	assert.True(t, local.Equal(global))
	assert.Same(t, local.AsTable(), global.AsTable())
}

func TestVMStackGrowsMonotonically(t *testing.T) {
	vm := NewExeState()
	vm.setStack(0, Integer(1))
	vm.setStack(1, Integer(2))
	vm.setStack(0, Integer(9))

	assert.Equal(t, []Value{Integer(9), Integer(2)}, vm.stack)
}

func TestVMStackGapPanics(t *testing.T) {
	vm := NewExeState()
	assert.Panics(t, func() {
		vm.setStack(1, Integer(1))
	})
}

func TestVMCallingNonFunctionPanics(t *testing.T) {
	assert.Panics(t, func() {
		run(t, `a = 10
a(1)`)
	})
}

func TestVMIndexingNonTablePanics(t *testing.T) {
	proto := LoadFromReader(strings.NewReader(`local x = 1`))
	vm := NewExeState()
	vm.Execute(proto)

	assert.Panics(t, func() {
		vm.executeSetTable(NewSetTable(0, 0, 0))
	})
}
