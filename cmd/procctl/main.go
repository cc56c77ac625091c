// Command procctl loads a machine/process config pair, validates it, and
// either runs it to completion against a driver registry or inspects it
// offline (schema dump, one-shot validation, config-file watch).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
