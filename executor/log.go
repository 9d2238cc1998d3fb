package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scaffoldlab/scaffbox/sandbox"
)

// WriteExecutionLog writes one example's execution record as a sectioned
// text file for post-run debugging.
func WriteExecutionLog(path, model, input string, result sandbox.ExecutionResult, errMsg string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("=== Scaffold Execution Log ===\n")
	fmt.Fprintf(&b, "Model: %s\n", model)
	fmt.Fprintf(&b, "Timestamp: %s\n", time.Now().Format("20060102_150405"))
	b.WriteString("\n=== INPUT ===\n")
	b.WriteString(input)
	b.WriteString("\n")
	if result.Stdout != "" {
		b.WriteString("\n=== STDOUT ===\n")
		b.WriteString(result.Stdout)
	}
	if result.Stderr != "" {
		b.WriteString("\n=== STDERR ===\n")
		b.WriteString(result.Stderr)
	}
	if errMsg != "" {
		fmt.Fprintf(&b, "\n=== ERROR ===\n%s\n", errMsg)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write log file: %w", err)
	}
	return nil
}
