package experiment

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scaffoldlab/scaffbox/config"
	"github.com/scaffoldlab/scaffbox/dataset"
	"github.com/scaffoldlab/scaffbox/executor"
	"github.com/scaffoldlab/scaffbox/scaffold"
	"github.com/scaffoldlab/scaffbox/scaffolder"
	"github.com/scaffoldlab/scaffbox/scoring"
)

// State names the runner's position in the evolution loop.
type State string

const (
	StateInitializing         State = "INITIALIZING"
	StateGeneratingPopulation State = "GENERATING_POPULATION"
	StateEvaluating           State = "EVALUATING"
	StateSelecting            State = "SELECTING"
	StateEvolving             State = "EVOLVING"
	StateDone                 State = "DONE"
)

// Params configures one experiment run.
type Params struct {
	Config        config.ExperimentConfig
	ExecutorModel string
	TrainData     []dataset.Example
	ValidData     []dataset.Example
	Score         scoring.Func
}

// Best is the run's answer: the highest validation score observed across
// every iteration, with the scaffold that earned it.
type Best struct {
	ScaffoldID string
	Score      float64
}

// Runner drives one experiment run. It owns the samplers and the scaffold
// store; workers only ever receive data by value.
type Runner struct {
	logger    *zap.Logger
	files     *FileManager
	generator *scaffolder.Generator
	executor  *executor.Executor

	params       Params
	trainSampler *dataset.ExampleSampler
	validSampler *dataset.ExampleSampler
	ids          *idAllocator

	state State

	// latestScores maps every validated scaffold to its most recent mean
	// validation score; creationOrder breaks selection ties.
	latestScores  map[string]float64
	creationOrder []string
}

// NewRunner wires a runner from already-loaded datasets and components.
func NewRunner(logger *zap.Logger, files *FileManager, gen *scaffolder.Generator, exec *executor.Executor, params Params) (*Runner, error) {
	if err := params.Config.Validate(); err != nil {
		return nil, err
	}
	if len(params.TrainData) == 0 || len(params.ValidData) == 0 {
		return nil, fmt.Errorf("train and valid datasets must be non-empty")
	}
	if params.Score == nil {
		return nil, fmt.Errorf("no scoring function provided")
	}

	return &Runner{
		logger:    logger,
		files:     files,
		generator: gen,
		executor:  exec,
		params:    params,
		// Training draws may exceed the dataset; validation never
		// resamples so the held-out pool stays fixed.
		trainSampler: dataset.NewExampleSampler(params.Config.TrainSeed, params.TrainData, true),
		validSampler: dataset.NewExampleSampler(params.Config.ValidSeed, params.ValidData, false),
		ids:          newIDAllocator(),
		state:        StateInitializing,
		latestScores: make(map[string]float64),
	}, nil
}

// State returns the runner's current state.
func (r *Runner) State() State { return r.state }

func (r *Runner) setState(s State) {
	r.logger.Info("state transition", zap.String("from", string(r.state)), zap.String("to", string(s)))
	r.state = s
}

// Run executes the whole experiment and returns the best scaffold seen.
// When a fatal mid-run failure occurs, the best-so-far result is returned
// alongside the error.
func (r *Runner) Run(ctx context.Context) (Best, error) {
	cfg := r.params.Config

	// The validation sample is drawn once and shared by every iteration,
	// so scores stay comparable across the whole run.
	validationSample, err := r.validSampler.Sample(cfg.NumValidationExamples)
	if err != nil {
		return Best{}, fmt.Errorf("draw validation sample: %w", err)
	}
	r.logger.Info("validation sample drawn", zap.Int("examples", len(validationSample)))

	best := Best{Score: -1}
	scoredOnce := false

	for iteration := 0; iteration < cfg.NumIterations; iteration++ {
		r.logger.Info("starting iteration", zap.Int("iteration", iteration))

		var (
			newIDs      []string
			trainScores map[string]ScoreSummary
		)

		if iteration == 0 {
			r.setState(StateGeneratingPopulation)
			newIDs, err = r.generateInitialPopulation(ctx)
		} else {
			r.setState(StateSelecting)
			parents := r.selectTopScaffolds()

			r.setState(StateEvolving)
			newIDs, trainScores, err = r.evolveScaffolds(ctx, iteration, parents)
		}
		if err != nil {
			return best, err
		}

		r.setState(StateEvaluating)
		validScores, succeeded := r.evaluateScaffolds(ctx, iteration, newIDs, validationSample)

		for _, id := range succeeded {
			summary := validScores[id]
			if summary.MeanScore > best.Score {
				best = Best{ScaffoldID: id, Score: summary.MeanScore}
			}
			scoredOnce = true
		}

		if err := r.files.SaveScores(iteration, IterationScores{Train: trainScores, Valid: validScores}); err != nil {
			r.logger.Warn("failed to save iteration scores", zap.Int("iteration", iteration), zap.Error(err))
		}

		r.logIterationResults(iteration, validScores)
	}

	r.setState(StateDone)

	if !scoredOnce || best.ScaffoldID == "" {
		return Best{}, fmt.Errorf("no scaffold produced a usable score")
	}

	r.logger.Info("experiment complete",
		zap.String("best_scaffold", best.ScaffoldID),
		zap.Float64("best_score", best.Score))
	return best, nil
}

// generateInitialPopulation creates iteration 0's scaffolds. Sampling
// happens up front on the runner's goroutine; only the LLM calls fan out.
func (r *Runner) generateInitialPopulation(ctx context.Context) ([]string, error) {
	cfg := r.params.Config

	type task struct {
		id       string
		examples []dataset.Example
	}

	tasks := make([]task, 0, cfg.InitialScaffolds)
	for i := 0; i < cfg.InitialScaffolds; i++ {
		examples, err := r.trainSampler.Sample(cfg.NumTrainingExamples)
		if err != nil {
			return nil, fmt.Errorf("draw training sample: %w", err)
		}
		tasks = append(tasks, task{id: r.ids.NextInitial(), examples: examples})
	}

	created := make([]bool, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.generateWorkers())

	for i, tk := range tasks {
		g.Go(func() error {
			result, err := r.generator.Generate(ctx, tk.examples, 0)
			if err != nil {
				// Recoverable: the population is just one smaller.
				r.logger.Warn("initial scaffold generation failed",
					zap.String("scaffold_id", tk.id), zap.Error(err))
				return nil
			}
			if err := r.files.Store().Save(tk.id, result); err != nil {
				r.logger.Warn("failed to save scaffold", zap.String("scaffold_id", tk.id), zap.Error(err))
				return nil
			}
			created[i] = true
			r.logger.Info("created initial scaffold", zap.String("scaffold_id", tk.id))
			return nil
		})
	}
	_ = g.Wait()

	var ids []string
	for i, tk := range tasks {
		if created[i] {
			ids = append(ids, tk.id)
		}
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("failed to generate any initial scaffold")
	}

	r.creationOrder = append(r.creationOrder, ids...)
	return ids, nil
}

// selectTopScaffolds picks the parents for the next generation from the
// most recent validation scores of every scaffold, best first. The sort
// is stable over creation order so ties resolve reproducibly.
func (r *Runner) selectTopScaffolds() []string {
	candidates := make([]string, 0, len(r.creationOrder))
	for _, id := range r.creationOrder {
		if _, ok := r.latestScores[id]; ok {
			candidates = append(candidates, id)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return r.latestScores[candidates[i]] > r.latestScores[candidates[j]]
	})

	k := r.params.Config.ScaffoldsPerIter
	if k > len(candidates) {
		k = len(candidates)
	}
	selected := candidates[:k]

	r.logger.Info("selected top scaffolds", zap.Strings("scaffold_ids", selected))
	return selected
}

// evolveScaffolds runs each parent on a fresh training sample for
// feedback, then asks the scaffolder for one child per parent.
func (r *Runner) evolveScaffolds(ctx context.Context, iteration int, parents []string) ([]string, map[string]ScoreSummary, error) {
	cfg := r.params.Config

	type task struct {
		parentID string
		childID  string
		runs     []scaffold.RunData
	}

	trainScores := make(map[string]ScoreSummary, len(parents))
	tasks := make([]task, 0, len(parents))

	for _, parentID := range parents {
		examples, err := r.trainSampler.Sample(cfg.NumTrainingExamples)
		if err != nil {
			return nil, nil, fmt.Errorf("draw training sample: %w", err)
		}

		report, err := r.runScaffold(ctx, iteration, parentID, "train", examples)
		if err != nil {
			r.logger.Warn("training run failed, evolving without feedback scores",
				zap.String("scaffold_id", parentID), zap.Error(err))
			continue
		}
		trainScores[parentID] = ScoreSummary{MeanScore: report.Score, Scores: report.Scores}

		// One run's worth of feedback keeps the evolution prompt bounded.
		tasks = append(tasks, task{
			parentID: parentID,
			childID:  r.ids.Child(parentID),
			runs:     report.Runs[:1],
		})
	}

	created := make([]bool, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.generateWorkers())

	for i, tk := range tasks {
		g.Go(func() error {
			result, err := r.generator.Evolve(ctx, tk.runs, tk.parentID, iteration)
			if err != nil {
				r.logger.Warn("scaffold evolution failed",
					zap.String("parent_id", tk.parentID), zap.Error(err))
				return nil
			}
			if err := r.files.Store().Save(tk.childID, result); err != nil {
				r.logger.Warn("failed to save scaffold", zap.String("scaffold_id", tk.childID), zap.Error(err))
				return nil
			}
			created[i] = true
			r.logger.Info("created evolved scaffold",
				zap.String("scaffold_id", tk.childID), zap.String("parent_id", tk.parentID))
			return nil
		})
	}
	_ = g.Wait()

	var ids []string
	for i, tk := range tasks {
		if created[i] {
			ids = append(ids, tk.childID)
		}
	}

	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("failed to evolve any scaffold in iteration %d", iteration)
	}

	r.creationOrder = append(r.creationOrder, ids...)
	return ids, trainScores, nil
}

// evaluateScaffolds scores each scaffold against the shared validation
// sample. A scaffold that cannot be evaluated scores zero and is not
// counted as a usable result.
func (r *Runner) evaluateScaffolds(ctx context.Context, iteration int, ids []string, sample []dataset.Example) (map[string]ScoreSummary, []string) {
	scores := make(map[string]ScoreSummary, len(ids))
	var succeeded []string

	for _, id := range ids {
		report, err := r.runScaffold(ctx, iteration, id, "valid", sample)
		if err != nil {
			r.logger.Warn("validation run failed",
				zap.String("scaffold_id", id), zap.Error(err))
			scores[id] = ScoreSummary{Scores: make([]float64, len(sample))}
			r.latestScores[id] = 0
			continue
		}
		scores[id] = ScoreSummary{MeanScore: report.Score, Scores: report.Scores}
		r.latestScores[id] = report.Score
		succeeded = append(succeeded, id)
	}

	return scores, succeeded
}

func (r *Runner) runScaffold(ctx context.Context, iteration int, id, runType string, examples []dataset.Example) (executor.Report, error) {
	result, err := r.files.Store().Load(id)
	if err != nil {
		return executor.Report{}, err
	}
	dir, err := r.files.Store().Dir(id)
	if err != nil {
		return executor.Report{}, err
	}

	return r.executor.Run(ctx, executor.RunSpec{
		ScaffoldID:    id,
		ScaffoldDir:   dir,
		Code:          result.Code,
		ExecutorModel: r.params.ExecutorModel,
		Examples:      examples,
		Score:         r.params.Score,
		LogPath: func(i int) string {
			return r.files.ExecutionLogPath(iteration, id, runType, i)
		},
	})
}

func (r *Runner) logIterationResults(iteration int, validScores map[string]ScoreSummary) {
	if len(validScores) == 0 {
		return
	}
	total, maxScore := 0.0, 0.0
	for _, s := range validScores {
		total += s.MeanScore
		if s.MeanScore > maxScore {
			maxScore = s.MeanScore
		}
	}
	r.logger.Info("iteration results",
		zap.Int("iteration", iteration),
		zap.Float64("avg_score", total/float64(len(validScores))),
		zap.Float64("max_score", maxScore))
}

func (r *Runner) generateWorkers() int {
	if r.params.Config.GenerateWorkers < 1 {
		return 1
	}
	return r.params.Config.GenerateWorkers
}
