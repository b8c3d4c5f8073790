package maqui

import "fmt"

// builtinPrint is the one standard library function this core ships: it reads its
// single argument off the stack at vm.funcIndex+1 (the slot the Call instruction's
// argIdx convention always places it in) and writes its Display form to stdout.
func builtinPrint(vm *ExeState) int32 {
	fmt.Println(vm.stack[vm.funcIndex+1].Display())
	return 0
}
