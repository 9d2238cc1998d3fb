package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scaffoldlab/scaffbox/config"
	"github.com/scaffoldlab/scaffbox/dataset"
	"github.com/scaffoldlab/scaffbox/executor"
	"github.com/scaffoldlab/scaffbox/experiment"
	"github.com/scaffoldlab/scaffbox/llm"
	"github.com/scaffoldlab/scaffbox/logger"
	"github.com/scaffoldlab/scaffbox/sandbox"
	"github.com/scaffoldlab/scaffbox/scaffolder"
	"github.com/scaffoldlab/scaffbox/scoring"
)

var (
	flagDomain           string
	flagScaffolderModel  string
	flagExecutorModel    string
	flagNumIterations    int
	flagScaffoldsPerIter int
	flagInitialScaffolds int
	flagNumTraining      int
	flagNumValidation    int
	flagTrainSeed        int64
	flagValidSeed        int64
	flagCrosswordMode    string
)

func newRunExperimentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-experiment <name> <data_dir>",
		Short: "Run an evolution experiment",
		Long: "Run an evolution experiment named <name> against the dataset in <data_dir>,\n" +
			"which must contain train.jsonl and valid.jsonl splits.",
		Args: cobra.ExactArgs(2),
		RunE: runExperiment,
	}
	cmd.Flags().StringVar(&flagDomain, "domain", "", "task domain (crosswords, mcq, gpqa, human-preference, codeforces)")
	cmd.Flags().StringVar(&flagScaffolderModel, "scaffolder-model", "", "model that writes scaffolds")
	cmd.Flags().StringVar(&flagExecutorModel, "executor-model", "", "model scaffolds may call at runtime")
	cmd.Flags().IntVar(&flagNumIterations, "num-iterations", 0, "evolution iterations to run")
	cmd.Flags().IntVar(&flagScaffoldsPerIter, "scaffolds-per-iter", 0, "parents selected per iteration")
	cmd.Flags().IntVar(&flagInitialScaffolds, "initial-scaffolds", 0, "size of the initial population")
	cmd.Flags().IntVar(&flagNumTraining, "num-training-examples", 0, "training examples per parent per iteration")
	cmd.Flags().IntVar(&flagNumValidation, "num-validation-examples", 0, "held-out validation examples")
	cmd.Flags().Int64Var(&flagTrainSeed, "train-seed", 0, "training sampler seed")
	cmd.Flags().Int64Var(&flagValidSeed, "valid-seed", 0, "validation sampler seed")
	cmd.Flags().StringVar(&flagCrosswordMode, "crossword-mode", "", "crossword scoring mode (strict or lenient)")
	return cmd
}

func runExperiment(cmd *cobra.Command, args []string) error {
	name, dataDir := args[0], args[1]

	cfg, err := config.New()
	if err != nil {
		return err
	}
	applyRunFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runner, err := sandbox.NewRunner(log, sandboxConfig(cfg), cfg.Sandbox.Backend)
	if err != nil {
		return err
	}

	scoreOpts := []scoring.Option{scoring.WithRunner(runner), scoring.WithLogger(log)}
	if flagCrosswordMode != "" {
		scoreOpts = append(scoreOpts, scoring.WithCrosswordMode(flagCrosswordMode))
	}
	score, err := scoring.New(cfg.Experiment.Domain, scoreOpts...)
	if err != nil {
		return err
	}

	gemini, err := llm.NewGeminiClient(ctx, cfg.LLM.ScaffolderModel, log)
	if err != nil {
		return err
	}
	client := llm.NewRetrying(gemini, retryConfig(cfg), log)

	gen := scaffolder.New(client, log,
		scaffolder.WithDomain(cfg.Experiment.Domain),
		scaffolder.WithScaffoldTimeout(cfg.Sandbox.TimeoutSec),
	)
	exec := executor.New(runner, log, cfg.Experiment.ExecuteWorkers)

	splits, err := dataset.LoadSplits(dataDir, []string{"train", "valid"})
	if err != nil {
		return err
	}

	files, err := experiment.NewFileManager(cfg.Experiment.BaseDir, name)
	if err != nil {
		return err
	}
	if err := files.SaveMetadata(runMetadata(name, cfg)); err != nil {
		return err
	}
	log.Info("experiment starting",
		zap.String("name", name),
		zap.String("run_dir", files.RunDir()),
		zap.String("domain", cfg.Experiment.Domain))

	runner2, err := experiment.NewRunner(log, files, gen, exec, experiment.Params{
		Config:        cfg.Experiment,
		ExecutorModel: cfg.LLM.ExecutorModel,
		TrainData:     splits["train"],
		ValidData:     splits["valid"],
		Score:         score,
	})
	if err != nil {
		return err
	}

	best, err := runner2.Run(ctx)
	if best.ScaffoldID != "" {
		fmt.Printf("Best scaffold: %s (validation score %.4f)\n", best.ScaffoldID, best.Score)
		fmt.Printf("Run directory: %s\n", files.RunDir())
	}
	return err
}

// applyRunFlags overlays command-line flags onto the loaded configuration.
// Zero values mean "not set" and leave the config untouched.
func applyRunFlags(cfg *config.Config) {
	if flagDomain != "" {
		cfg.Experiment.Domain = flagDomain
	}
	if flagScaffolderModel != "" {
		cfg.LLM.ScaffolderModel = flagScaffolderModel
	}
	if flagExecutorModel != "" {
		cfg.LLM.ExecutorModel = flagExecutorModel
	}
	if flagNumIterations > 0 {
		cfg.Experiment.NumIterations = flagNumIterations
	}
	if flagScaffoldsPerIter > 0 {
		cfg.Experiment.ScaffoldsPerIter = flagScaffoldsPerIter
	}
	if flagInitialScaffolds > 0 {
		cfg.Experiment.InitialScaffolds = flagInitialScaffolds
	}
	if flagNumTraining > 0 {
		cfg.Experiment.NumTrainingExamples = flagNumTraining
	}
	if flagNumValidation > 0 {
		cfg.Experiment.NumValidationExamples = flagNumValidation
	}
	if flagTrainSeed != 0 {
		cfg.Experiment.TrainSeed = flagTrainSeed
	}
	if flagValidSeed != 0 {
		cfg.Experiment.ValidSeed = flagValidSeed
	}
}

func sandboxConfig(cfg *config.Config) *sandbox.Config {
	return &sandbox.Config{
		Image:          cfg.Sandbox.Image,
		JudgeImage:     cfg.Sandbox.JudgeImage,
		TimeoutSec:     cfg.Sandbox.TimeoutSec,
		MemoryMB:       cfg.Sandbox.MemoryMB,
		CPUs:           cfg.Sandbox.CPUs,
		NetworkEnabled: cfg.Sandbox.NetworkEnabled,
	}
}

func retryConfig(cfg *config.Config) llm.RetryConfig {
	rc := llm.DefaultRetryConfig()
	if cfg.LLM.MaxRetries > 0 {
		rc.MaxRetries = cfg.LLM.MaxRetries
	}
	if cfg.LLM.InitialBackoffMS > 0 {
		rc.InitialDelay = time.Duration(cfg.LLM.InitialBackoffMS) * time.Millisecond
	}
	if cfg.LLM.MaxBackoffMS > 0 {
		rc.MaxDelay = time.Duration(cfg.LLM.MaxBackoffMS) * time.Millisecond
	}
	return rc
}

func runMetadata(name string, cfg *config.Config) experiment.RunMetadata {
	return experiment.RunMetadata{
		Name:                  name,
		Domain:                cfg.Experiment.Domain,
		CreatedAt:             time.Now().UTC(),
		ScaffolderModel:       cfg.LLM.ScaffolderModel,
		ExecutorModel:         cfg.LLM.ExecutorModel,
		NumIterations:         cfg.Experiment.NumIterations,
		ScaffoldsPerIter:      cfg.Experiment.ScaffoldsPerIter,
		InitialScaffolds:      cfg.Experiment.InitialScaffolds,
		NumTrainingExamples:   cfg.Experiment.NumTrainingExamples,
		NumValidationExamples: cfg.Experiment.NumValidationExamples,
		TrainSeed:             cfg.Experiment.TrainSeed,
		ValidSeed:             cfg.Experiment.ValidSeed,
	}
}
