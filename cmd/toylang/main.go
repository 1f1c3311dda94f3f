// Command toylang is the CLI driver for the toylang compiler/interpreter
// core: lex, parse, check, and run subcommands over pkg/toylang.
package main

import (
	"fmt"
	"os"

	"github.com/toylang/toylang/cmd/toylang/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
