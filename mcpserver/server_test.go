package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/scaffoldlab/scaffbox/config"
	"github.com/scaffoldlab/scaffbox/sandbox"
)

func callToolRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

// MockRunner implements sandbox.Runner for testing
type MockRunner struct {
	scaffoldResult sandbox.ExecutionResult
	scaffoldError  error
	testsResult    sandbox.ExecutionResult
	testsError     error

	lastScaffoldReq sandbox.ScaffoldRequest
	lastTestReq     sandbox.TestRequest
}

func (m *MockRunner) RunScaffold(_ context.Context, req sandbox.ScaffoldRequest) (sandbox.ExecutionResult, error) {
	m.lastScaffoldReq = req
	return m.scaffoldResult, m.scaffoldError
}

func (m *MockRunner) RunTests(_ context.Context, req sandbox.TestRequest) (sandbox.ExecutionResult, error) {
	m.lastTestReq = req
	return m.testsResult, m.testsError
}

func testServerConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Transport: "http",
			HTTPPort:  8080,
		},
		Sandbox: config.SandboxConfig{
			Backend:            "docker",
			Image:              "scaffold-runner",
			TimeoutSec:         30,
			MemoryMB:           512,
			NetworkEnabled:     true,
			EnableLocalBackend: false,
		},
		Logging: config.LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
		LLM: config.LLMConfig{
			ScaffolderModel: "gemini-2.5-pro",
			ExecutorModel:   "gemini-2.5-flash",
		},
	}
}

func TestNewMCPServer(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := testServerConfig()
	mockRunner := &MockRunner{}

	server, err := New(cfg, logger, mockRunner)
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, cfg, server.config)
	assert.Equal(t, logger, server.logger)
	assert.Equal(t, mockRunner, server.runner)
	assert.NotNil(t, server.mcpServer)
}

// Tool handlers are exercised directly; building CallToolRequest values for
// the library's dispatch path is not worth the ceremony here.
func TestHandleExecuteScaffold(t *testing.T) {
	logger := zaptest.NewLogger(t)
	mockRunner := &MockRunner{
		scaffoldResult: sandbox.ExecutionResult{
			Outcome: sandbox.OutcomeSuccess,
			Stdout:  "42",
			Stderr:  "model call: 1",
		},
	}

	server, err := New(testServerConfig(), logger, mockRunner)
	require.NoError(t, err)

	request := callToolRequest(map[string]any{
		"scaffold_dir": "/scaffolds/0",
		"input":        "1 2",
	})

	result, err := server.handleExecuteScaffold(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	text := textContent(t, result)
	assert.Contains(t, text, `"outcome":"success"`)
	assert.Contains(t, text, `"stdout":"42"`)

	// Config defaults flow into the sandbox request.
	assert.Equal(t, "/scaffolds/0", mockRunner.lastScaffoldReq.ScaffoldDir)
	assert.Equal(t, "1 2", mockRunner.lastScaffoldReq.Input)
	assert.Equal(t, "gemini-2.5-flash", mockRunner.lastScaffoldReq.ExecutorModel)
	assert.Equal(t, 30, mockRunner.lastScaffoldReq.TimeoutSec)
	assert.Equal(t, 512, mockRunner.lastScaffoldReq.MemoryMB)
}

func TestHandleExecuteScaffoldModelOverride(t *testing.T) {
	logger := zaptest.NewLogger(t)
	mockRunner := &MockRunner{
		scaffoldResult: sandbox.ExecutionResult{Outcome: sandbox.OutcomeSuccess},
	}

	server, err := New(testServerConfig(), logger, mockRunner)
	require.NoError(t, err)

	request := callToolRequest(map[string]any{
		"scaffold_dir":   "/scaffolds/0",
		"input":          "1 2",
		"executor_model": "gemini-2.5-pro",
	})

	_, err = server.handleExecuteScaffold(context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", mockRunner.lastScaffoldReq.ExecutorModel)
}

func TestHandleExecuteScaffoldMissingArgs(t *testing.T) {
	logger := zaptest.NewLogger(t)
	server, err := New(testServerConfig(), logger, &MockRunner{})
	require.NoError(t, err)

	request := callToolRequest(map[string]any{"input": "1 2"})

	_, err = server.handleExecuteScaffold(context.Background(), request)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scaffold_dir")
}

func TestHandleExecuteScaffoldRunnerError(t *testing.T) {
	logger := zaptest.NewLogger(t)
	mockRunner := &MockRunner{
		scaffoldError: assert.AnError,
	}

	server, err := New(testServerConfig(), logger, mockRunner)
	require.NoError(t, err)

	request := callToolRequest(map[string]any{
		"scaffold_dir": "/scaffolds/0",
		"input":        "1 2",
	})

	result, err := server.handleExecuteScaffold(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "Execution failed")
}

func TestHandleExecuteCodeTests(t *testing.T) {
	logger := zaptest.NewLogger(t)
	mockRunner := &MockRunner{
		testsResult: sandbox.ExecutionResult{
			Outcome: sandbox.OutcomeTestFailure,
			Tests: []sandbox.TestResult{
				{Passed: true},
				{Passed: false, Error: "wrong answer"},
			},
		},
	}

	server, err := New(testServerConfig(), logger, mockRunner)
	require.NoError(t, err)

	request := callToolRequest(map[string]any{
		"code":           "print(input())",
		"test_cases":     `[{"input": "1", "output": "1"}, {"input": "2", "output": "3"}]`,
		"time_limit_sec": 1.5,
	})

	result, err := server.handleExecuteCodeTests(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	text := textContent(t, result)
	assert.Contains(t, text, `"outcome":"test_failure"`)
	assert.Contains(t, text, "wrong answer")

	assert.Equal(t, "print(input())", mockRunner.lastTestReq.Code)
	assert.Len(t, mockRunner.lastTestReq.TestCases, 2)
	assert.Equal(t, "3", mockRunner.lastTestReq.TestCases[1].Output)
	assert.InDelta(t, 1.5, mockRunner.lastTestReq.TimeLimitSec, 1e-9)
	assert.Equal(t, 512, mockRunner.lastTestReq.MemoryMB)
}

func TestHandleExecuteCodeTestsBadJSON(t *testing.T) {
	logger := zaptest.NewLogger(t)
	server, err := New(testServerConfig(), logger, &MockRunner{})
	require.NoError(t, err)

	request := callToolRequest(map[string]any{
		"code":       "print(input())",
		"test_cases": "not json",
	})

	_, err = server.handleExecuteCodeTests(context.Background(), request)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "test_cases")
}
