package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Sandbox    SandboxConfig    `mapstructure:"sandbox"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Experiment ExperimentConfig `mapstructure:"experiment"`
}

// ServerConfig holds MCP server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// SandboxConfig holds sandbox configuration
type SandboxConfig struct {
	Backend            string  `mapstructure:"backend"`
	Image              string  `mapstructure:"image"`
	JudgeImage         string  `mapstructure:"judge_image"`
	TimeoutSec         int     `mapstructure:"timeout_sec"`
	MemoryMB           int     `mapstructure:"memory_mb"`
	CPUs               float64 `mapstructure:"cpus"`
	NetworkEnabled     bool    `mapstructure:"network_enabled"`
	EnableLocalBackend bool    `mapstructure:"enable_local_backend"`
}

// LLMConfig holds configuration for the scaffolder and executor LLM clients
type LLMConfig struct {
	ScaffolderModel  string `mapstructure:"scaffolder_model"`
	ExecutorModel    string `mapstructure:"executor_model"`
	MaxRetries       int    `mapstructure:"max_retries"`
	InitialBackoffMS int    `mapstructure:"initial_backoff_ms"`
	MaxBackoffMS     int    `mapstructure:"max_backoff_ms"`
}

// ExperimentConfig holds the default parameters for the evolution loop
type ExperimentConfig struct {
	BaseDir               string `mapstructure:"base_dir"`
	Domain                string `mapstructure:"domain"`
	NumIterations         int    `mapstructure:"num_iterations"`
	ScaffoldsPerIter      int    `mapstructure:"scaffolds_per_iter"`
	InitialScaffolds      int    `mapstructure:"initial_scaffolds"`
	NumTrainingExamples   int    `mapstructure:"num_training_examples"`
	NumValidationExamples int    `mapstructure:"num_validation_examples"`
	TrainSeed             int64  `mapstructure:"train_seed"`
	ValidSeed             int64  `mapstructure:"valid_seed"`
	GenerateWorkers       int    `mapstructure:"generate_workers"`
	ExecuteWorkers        int    `mapstructure:"execute_workers"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)

	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")

	viper.SetDefault("sandbox.backend", "docker")
	viper.SetDefault("sandbox.image", "scaffold-runner")
	viper.SetDefault("sandbox.judge_image", "scaffold-judge")
	viper.SetDefault("sandbox.timeout_sec", 120)
	viper.SetDefault("sandbox.memory_mb", 512)
	viper.SetDefault("sandbox.cpus", 1.0)
	viper.SetDefault("sandbox.network_enabled", true)
	viper.SetDefault("sandbox.enable_local_backend", false)

	viper.SetDefault("llm.scaffolder_model", "gemini-2.5-pro")
	viper.SetDefault("llm.executor_model", "gemini-2.5-flash")
	viper.SetDefault("llm.max_retries", 3)
	viper.SetDefault("llm.initial_backoff_ms", 500)
	viper.SetDefault("llm.max_backoff_ms", 30000)

	viper.SetDefault("experiment.base_dir", "experiments")
	viper.SetDefault("experiment.domain", "crosswords")
	viper.SetDefault("experiment.num_iterations", 5)
	viper.SetDefault("experiment.scaffolds_per_iter", 2)
	viper.SetDefault("experiment.initial_scaffolds", 4)
	viper.SetDefault("experiment.num_training_examples", 3)
	viper.SetDefault("experiment.num_validation_examples", 10)
	viper.SetDefault("experiment.train_seed", 0)
	viper.SetDefault("experiment.valid_seed", 0)
	viper.SetDefault("experiment.generate_workers", 1)
	viper.SetDefault("experiment.execute_workers", 1)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Sandbox.TimeoutSec <= 0 {
		return fmt.Errorf("sandbox.timeout_sec must be positive, got: %d", c.Sandbox.TimeoutSec)
	}

	if c.Sandbox.MemoryMB <= 0 {
		return fmt.Errorf("sandbox.memory_mb must be positive, got: %d", c.Sandbox.MemoryMB)
	}

	supportedBackends := map[string]bool{
		"docker": true,
		"podman": true,
		"local":  c.Sandbox.EnableLocalBackend, // local only enabled if specifically allowed
	}

	if !supportedBackends[c.Sandbox.Backend] {
		return fmt.Errorf("unsupported sandbox.backend: %s", c.Sandbox.Backend)
	}

	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must be non-negative, got: %d", c.LLM.MaxRetries)
	}

	return c.Experiment.Validate()
}

// Validate checks the experiment loop parameters
func (e *ExperimentConfig) Validate() error {
	if e.NumIterations <= 0 {
		return fmt.Errorf("experiment.num_iterations must be positive, got: %d", e.NumIterations)
	}

	if e.InitialScaffolds <= 0 {
		return fmt.Errorf("experiment.initial_scaffolds must be positive, got: %d", e.InitialScaffolds)
	}

	if e.ScaffoldsPerIter <= 0 {
		return fmt.Errorf("experiment.scaffolds_per_iter must be positive, got: %d", e.ScaffoldsPerIter)
	}

	if e.ScaffoldsPerIter > e.InitialScaffolds {
		return fmt.Errorf("experiment.scaffolds_per_iter (%d) cannot exceed experiment.initial_scaffolds (%d)",
			e.ScaffoldsPerIter, e.InitialScaffolds)
	}

	if e.NumTrainingExamples <= 0 {
		return fmt.Errorf("experiment.num_training_examples must be positive, got: %d", e.NumTrainingExamples)
	}

	if e.NumValidationExamples <= 0 {
		return fmt.Errorf("experiment.num_validation_examples must be positive, got: %d", e.NumValidationExamples)
	}

	if e.GenerateWorkers < 1 || e.ExecuteWorkers < 1 {
		return fmt.Errorf("experiment worker bounds must be at least 1, got generate=%d execute=%d",
			e.GenerateWorkers, e.ExecuteWorkers)
	}

	return nil
}

// GetTimeout returns the execution timeout as a duration
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Sandbox.TimeoutSec) * time.Second
}
