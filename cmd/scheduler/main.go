package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scheduler",
		Short: "Daily therapy-session scheduler for multi-team ABA clinics",
	}
	root.AddCommand(newSolveCmd())
	return root
}
