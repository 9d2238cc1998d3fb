package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scaffbox",
		Short: "Evolve LLM-generated Python scaffolds in sandboxed execution loops",
	}
	root.AddCommand(newRunExperimentCmd())
	root.AddCommand(newRunScaffoldCmd())
	root.AddCommand(newServeCmd())
	return root
}
