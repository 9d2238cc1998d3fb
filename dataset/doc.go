// Package dataset provides dataset loading and example sampling.
//
// Datasets are JSONL files with one example per line, split into
// train/valid/test files. Examples are loaded once at startup and never
// mutated. The ExampleSampler draws examples from a seeded permutation so
// that two samplers constructed with the same seed and dataset produce
// identical sequences, which is what makes experiment runs reproducible.
package dataset
