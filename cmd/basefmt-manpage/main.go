package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/basefmt/cmd/basefmt"
)

func main() {
	rootCmd := basefmt.NewRootCmd()

	err := doc.GenMan(rootCmd, basefmt.ManHeader(), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
