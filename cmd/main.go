package main

import (
	"fmt"
	"os"

	"maqui.dev/rt/pkg"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s script\n", os.Args[0])
		return
	}

	source := os.Args[1]

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, r)
			os.Exit(1)
		}
	}()

	proto, err := maqui.Load(source)
	if err != nil {
		panic(err.Error())
	}

	if os.Getenv("MAQUI_DUMP") == "1" {
		dump(proto)
	}

	vm := maqui.NewExeState()
	vm.Execute(proto)
}

// dump prints the constant pool and bytecode stream, the way original_source's
// `debug` feature disassembles a chunk before running it.
func dump(proto *maqui.ParseProto) {
	fmt.Fprintln(os.Stderr, "constants:")
	for i, c := range proto.Constants {
		fmt.Fprintf(os.Stderr, "  %d: %s\n", i, c.Display())
	}

	fmt.Fprintln(os.Stderr, "bytecodes:")
	for i, bc := range proto.Bytecodes {
		fmt.Fprintf(os.Stderr, "  %d: %s\n", i, bc)
	}
}
