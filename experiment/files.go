package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scaffoldlab/scaffbox/scaffold"
)

// RunMetadata is the experiment.yaml record written at run start.
type RunMetadata struct {
	Name                  string    `yaml:"name"`
	Domain                string    `yaml:"domain"`
	CreatedAt             time.Time `yaml:"created_at"`
	ScaffolderModel       string    `yaml:"scaffolder_model"`
	ExecutorModel         string    `yaml:"executor_model"`
	NumIterations         int       `yaml:"num_iterations"`
	ScaffoldsPerIter      int       `yaml:"scaffolds_per_iter"`
	InitialScaffolds      int       `yaml:"initial_scaffolds"`
	NumTrainingExamples   int       `yaml:"num_training_examples"`
	NumValidationExamples int       `yaml:"num_validation_examples"`
	TrainSeed             int64     `yaml:"train_seed"`
	ValidSeed             int64     `yaml:"valid_seed"`
}

// ScoreSummary records one scaffold's scores on one example batch.
type ScoreSummary struct {
	MeanScore float64   `yaml:"mean_score"`
	Scores    []float64 `yaml:"scores"`
}

// IterationScores is the scoring/scores_<n>.yaml record for one iteration.
type IterationScores struct {
	Train map[string]ScoreSummary `yaml:"train"`
	Valid map[string]ScoreSummary `yaml:"valid"`
}

// FileManager owns one run's on-disk layout:
//
//	<base>/<name>_<timestamp>/
//	    experiment.yaml
//	    scaffolds/<id>/{scaffold.py, metadata.json}
//	    logs/<iteration>/<id>/<type>_<n>.log
//	    scoring/scores_<iteration>.yaml
type FileManager struct {
	runDir string
	store  *scaffold.Store
}

// NewFileManager creates the run directory under baseDir.
func NewFileManager(baseDir, name string) (*FileManager, error) {
	runDir := filepath.Join(baseDir, fmt.Sprintf("%s_%s", name, time.Now().Format("20060102_150405")))
	for _, dir := range []string{runDir, filepath.Join(runDir, "logs"), filepath.Join(runDir, "scoring")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create run directory: %w", err)
		}
	}

	store, err := scaffold.NewStore(filepath.Join(runDir, "scaffolds"))
	if err != nil {
		return nil, err
	}

	return &FileManager{runDir: runDir, store: store}, nil
}

// RunDir returns the root of this run's artifacts.
func (m *FileManager) RunDir() string { return m.runDir }

// Store returns the run's scaffold store.
func (m *FileManager) Store() *scaffold.Store { return m.store }

// SaveMetadata writes experiment.yaml.
func (m *FileManager) SaveMetadata(meta RunMetadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal run metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.runDir, "experiment.yaml"), data, 0o644); err != nil {
		return fmt.Errorf("write run metadata: %w", err)
	}
	return nil
}

// ExecutionLogPath names the log file for one scaffold execution. runType
// distinguishes training from validation runs.
func (m *FileManager) ExecutionLogPath(iteration int, scaffoldID, runType string, n int) string {
	return filepath.Join(m.runDir, "logs", fmt.Sprintf("%d", iteration), scaffoldID,
		fmt.Sprintf("%s_%d.log", runType, n))
}

// SaveScores writes one iteration's training and validation scores.
func (m *FileManager) SaveScores(iteration int, scores IterationScores) error {
	data, err := yaml.Marshal(scores)
	if err != nil {
		return fmt.Errorf("marshal iteration scores: %w", err)
	}
	path := filepath.Join(m.runDir, "scoring", fmt.Sprintf("scores_%d.yaml", iteration))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write iteration scores: %w", err)
	}
	return nil
}

// LoadScores reads back one iteration's scores.
func (m *FileManager) LoadScores(iteration int) (IterationScores, error) {
	path := filepath.Join(m.runDir, "scoring", fmt.Sprintf("scores_%d.yaml", iteration))
	raw, err := os.ReadFile(path)
	if err != nil {
		return IterationScores{}, fmt.Errorf("read iteration scores: %w", err)
	}

	var scores IterationScores
	if err := yaml.Unmarshal(raw, &scores); err != nil {
		return IterationScores{}, fmt.Errorf("parse iteration scores: %w", err)
	}
	return scores, nil
}
