package main

import (
	"fmt"
	"os"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the gemini-actions-lab command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
