// Command qmldiff is a thin cobra CLI driving pkg/qmldiff (SPEC_FULL.md
// §12): a package-main entrypoint that exits non-zero on the root
// command's error, with all real logic left to the library below it.
package main

import (
	"fmt"
	"os"

	"github.com/asivery/qmldiff/cmd/qmldiff/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
