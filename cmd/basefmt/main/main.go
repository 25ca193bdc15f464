package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/arthur-debert/basefmt/cmd/basefmt"
	"github.com/arthur-debert/basefmt/pkg/types"
	"github.com/arthur-debert/basefmt/pkg/ui/styles"
)

func main() {
	rootCmd := basefmt.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// The report was already printed
		var exitErr *basefmt.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		// Print the error in red
		errorStyle := styles.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(types.ExitFileError)
	}
}
