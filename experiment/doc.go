// Package experiment orchestrates the full evolution loop.
//
// A Runner owns the datasets, samplers, and scaffold store for one run and
// drives the state machine INITIALIZING, GENERATING_POPULATION, then
// repeated EVALUATING, SELECTING, EVOLVING rounds until DONE. The best
// scoring scaffold observed across every iteration is the run's answer;
// evolution does not guarantee monotonic improvement, so the runner never
// reports just the final population.
//
// Per-scaffold failures (a generation that yields no code, an evaluation
// that crashes) are logged and scored zero. Only setup problems and an
// LLM outage that fails an entire iteration abort the run.
package experiment
