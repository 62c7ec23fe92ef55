// Command minicc translates a single mini-c source file into fasm
// assembly targeting Windows PE64. Grounded on std/compiler/main.go's
// flag-driven entry point (-o output path, mode switches via a small
// set of named flags), rebuilt on cobra/pflag per this project's CLI
// convention rather than the teacher's own hand-rolled os.Args loop.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/tinyrange/minicc/internal/compiler"
	"github.com/tinyrange/minicc/internal/token"
)

func main() {
	var outputPath string
	var verbose bool
	exitCode := 0

	cmd := &cobra.Command{
		Use:           "minicc <file.c>",
		Short:         "compile a mini-c source file to fasm assembly",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = compile(args[0], outputPath, verbose)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "a.asm", "output assembly file path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "dump the token stream to stderr while compiling")
	cmd.SetOut(os.Stdout)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stdout, "usage: minicc [-o output] [-v] <file.c>\n")
		os.Exit(1)
	}
	os.Exit(exitCode)
}

// compile runs one full translation and returns the process exit code:
// 0 on success, 1 if the input couldn't be opened, the output couldn't
// be created, or the compiler reported any error (spec.md §6).
func compile(inputPath, outputPath string, verbose bool) int {
	src, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minicc: %v\n", err)
		return 1
	}

	c := compiler.New(inputPath, src)
	if verbose {
		c.Verbose = func(tok token.Token) {
			fmt.Fprintln(os.Stderr, repr.String(tok, repr.Indent("  ")))
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minicc: %v\n", err)
		return 1
	}
	defer out.Close()

	errCount := c.Compile(out)
	if diag := c.Diagnostics(); diag != "" {
		fmt.Fprint(os.Stderr, diag)
	}
	if errCount > 0 {
		return 1
	}
	return 0
}
