// Package main is the entry point for the scaffbox CLI.
//
// Scaffbox evolves LLM-generated Python scaffolds against a task dataset.
// The binary exposes three commands: "run-experiment" drives a full
// evolution experiment, "run-scaffold" runs one stored scaffold against a
// single input, and "serve" starts the sandboxed execution service over MCP.
//
// The serve command uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// GEMINI_API_KEY and friends may live in a local .env file.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
