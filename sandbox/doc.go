// Package sandbox provides secure execution of untrusted scaffold code.
//
// The sandbox package runs LLM-generated Python programs in isolated
// environments under hard CPU, memory, and wall-clock limits, and
// classifies the raw process outcome into a structured ExecutionResult.
// It supports Docker and Podman backends plus a local backend for
// development.
//
// Two execution shapes are supported: RunScaffold invokes a scaffold's
// process_input entry point against a single input (the scaffold may call
// the executor LLM at runtime), and RunTests judges a program against a
// suite of test cases, emitting per-test pass/fail detail as JSON.
//
// Usage:
//
//	runner, err := sandbox.NewRunner(logger, cfg, "docker")
//	result, err := runner.RunScaffold(ctx, sandbox.ScaffoldRequest{
//	    ScaffoldDir: "/path/to/scaffold",
//	    Input:       "puzzle text",
//	    TimeoutSec:  120,
//	})
package sandbox
