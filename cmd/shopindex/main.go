// Package main provides the entry point for the shopindex CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/shopindex/cmd/shopindex/cmd"
	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, shoperrors.FormatForCLI(err))
		os.Exit(1)
	}
}
