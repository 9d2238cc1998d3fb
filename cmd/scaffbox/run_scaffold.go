package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scaffoldlab/scaffbox/config"
	"github.com/scaffoldlab/scaffbox/logger"
	"github.com/scaffoldlab/scaffbox/sandbox"
)

var (
	flagScaffoldInput string
	flagScaffoldModel string
)

func newRunScaffoldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-scaffold <scaffold_dir>",
		Short: "Run one stored scaffold against a single input",
		Long: "Run the scaffold.py in <scaffold_dir> against one input in the sandbox\n" +
			"and print its output. The input comes from --input, or stdin when omitted.",
		Args: cobra.ExactArgs(1),
		RunE: runScaffold,
	}
	cmd.Flags().StringVar(&flagScaffoldInput, "input", "", "input passed to process_input (default: stdin)")
	cmd.Flags().StringVar(&flagScaffoldModel, "executor-model", "", "model the scaffold may call at runtime")
	return cmd
}

func runScaffold(cmd *cobra.Command, args []string) error {
	scaffoldDir := args[0]

	cfg, err := config.New()
	if err != nil {
		return err
	}

	log, err := logger.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	input := flagScaffoldInput
	if input == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		input = string(data)
	}

	model := flagScaffoldModel
	if model == "" {
		model = cfg.LLM.ExecutorModel
	}

	runner, err := sandbox.NewRunner(log, sandboxConfig(cfg), cfg.Sandbox.Backend)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := runner.RunScaffold(ctx, sandbox.ScaffoldRequest{
		ScaffoldDir:   scaffoldDir,
		Input:         input,
		ExecutorModel: model,
		TimeoutSec:    cfg.Sandbox.TimeoutSec,
		MemoryMB:      cfg.Sandbox.MemoryMB,
	})
	if err != nil {
		return err
	}

	fmt.Print(result.Stdout)
	if result.Stderr != "" {
		fmt.Fprint(os.Stderr, result.Stderr)
	}
	if result.Outcome != sandbox.OutcomeSuccess {
		return fmt.Errorf("scaffold execution ended with outcome %s: %s", result.Outcome, result.ErrorMessage)
	}
	return nil
}
