// Package main implements the sptrcheck CLI tool.
//
// sptrcheck finds SharedPtr ownership mistakes that the sptr package can
// only catch as contract violations at run time, by inspecting source:
//
//  1. Locate the enclosing go.mod and confirm the module uses sptr
//  2. Parse every Go source file using go/parser
//  3. Walk function bodies and follow adoptions of raw pointers
//  4. Report each finding with its position and a suggested fix
//
// Usage:
//
//	sptrcheck check ./...          # Check the current module
//	sptrcheck check -v --tests dir # Include tests, print statistics
//	sptrcheck version              # Show version information
//
// Exit status is 0 when nothing was found, 1 when diagnostics were
// reported and 2 on usage or I/O errors.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/boboxa2010/SmartPointers/sptr"
)

const version = "0.1.0"

// Exit codes.
const (
	exitOK          = 0
	exitDiagnostics = 1
	exitError       = 2
)

// errDiagnostics signals that the check ran and found problems.
var errDiagnostics = errors.New("diagnostics reported")

func main() {
	os.Exit(execute(newRootCmd(), os.Args[1:]))
}

func execute(root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errDiagnostics):
		return exitDiagnostics
	default:
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return exitError
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sptrcheck",
		Short: "Static checker for SharedPtr ownership misuse",
		Long: `sptrcheck - SharedPtr ownership checker

Reports code that hands one object to two owner groups, which makes the
payload teardown run twice:

    double-adopt       sptr.NewShared(x) twice for the same x
    adopt-subobject    sptr.NewShared(&x.f); use sptr.Alias instead
    adopt-after-reset  p.ResetTo(x) for an x that is already owned

Checks can be disabled and paths excluded in a .sptrcheck.yaml file at the
module root.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := sptr.GetInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "sptrcheck version %s (sptr %s, %s counting)\n",
				version, info.Version, info.Counting)
		},
	}
}
