package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/scaffoldlab/scaffbox/config"
	"github.com/scaffoldlab/scaffbox/sandbox"
)

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	runner    sandbox.Runner
	mcpServer *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, runner sandbox.Runner) (*MCPServer, error) {
	s := &MCPServer{
		config: cfg,
		logger: logger,
		runner: runner,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.String("sandbox.backend", s.config.Sandbox.Backend),
		zap.String("sandbox.image", s.config.Sandbox.Image),
		zap.Int("sandbox.timeout_sec", s.config.Sandbox.TimeoutSec),
		zap.Int("sandbox.memory_mb", s.config.Sandbox.MemoryMB),
		zap.Bool("sandbox.network_enabled", s.config.Sandbox.NetworkEnabled),
		zap.Bool("sandbox.enable_local_backend", s.config.Sandbox.EnableLocalBackend),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("scaffbox-executor", "A sandboxed scaffold execution server")

	s.registerExecuteScaffoldTool()
	s.registerExecuteCodeTestsTool()

	return s, nil
}

// registerExecuteScaffoldTool registers the execute_scaffold tool
func (s *MCPServer) registerExecuteScaffoldTool() {
	tool := mcp.Tool{
		Name:        "execute_scaffold",
		Description: "Run a scaffold's process_input entry point against one input in a sandbox",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"scaffold_dir": map[string]any{
					"type":        "string",
					"description": "Directory containing the scaffold.py source",
				},
				"input": map[string]any{
					"type":        "string",
					"description": "Input string passed to process_input",
				},
				"executor_model": map[string]any{
					"type":        "string",
					"description": "Model spec exposed to the scaffold at runtime (optional)",
				},
			},
			Required: []string{"scaffold_dir", "input"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleExecuteScaffold)
}

// registerExecuteCodeTestsTool registers the execute_code_tests tool
func (s *MCPServer) registerExecuteCodeTestsTool() {
	tool := mcp.Tool{
		Name:        "execute_code_tests",
		Description: "Judge a Python program against input/output test cases in a locked-down sandbox",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Python program reading stdin and writing stdout",
				},
				"test_cases": map[string]any{
					"type":        "string",
					"description": `JSON array of {"input": str, "output": str} objects`,
				},
				"time_limit_sec": map[string]any{
					"type":        "number",
					"description": "Per-test time limit in seconds (optional)",
				},
			},
			Required: []string{"code", "test_cases"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleExecuteCodeTests)
}

// handleExecuteScaffold handles the execute_scaffold tool
func (s *MCPServer) handleExecuteScaffold(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.Info("scaffold execution requested")

	scaffoldDir, err := request.RequireString("scaffold_dir")
	if err != nil {
		return nil, fmt.Errorf("scaffold_dir parameter is required: %w", err)
	}

	input, err := request.RequireString("input")
	if err != nil {
		return nil, fmt.Errorf("input parameter is required: %w", err)
	}

	req := sandbox.ScaffoldRequest{
		ScaffoldDir:   scaffoldDir,
		Input:         input,
		ExecutorModel: request.GetString("executor_model", s.config.LLM.ExecutorModel),
		TimeoutSec:    s.config.Sandbox.TimeoutSec,
		MemoryMB:      s.config.Sandbox.MemoryMB,
	}

	result, err := s.runner.RunScaffold(ctx, req)
	if err != nil {
		s.logger.Error("scaffold execution failed",
			zap.Error(err),
			zap.String("scaffold_dir", scaffoldDir))
		return errorResult(fmt.Sprintf("Execution failed: %v", err)), nil
	}

	s.logger.Info("scaffold execution completed",
		zap.Stringer("outcome", result.Outcome),
		zap.Int("stdout_len", len(result.Stdout)),
		zap.Int("stderr_len", len(result.Stderr)))

	return jsonResult(result)
}

// handleExecuteCodeTests handles the execute_code_tests tool
func (s *MCPServer) handleExecuteCodeTests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.Info("code test run requested")

	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	testCasesJSON, err := request.RequireString("test_cases")
	if err != nil {
		return nil, fmt.Errorf("test_cases parameter is required: %w", err)
	}

	var testCases []sandbox.TestCase
	if err := json.Unmarshal([]byte(testCasesJSON), &testCases); err != nil {
		return nil, fmt.Errorf("failed to parse test_cases: %w", err)
	}

	req := sandbox.TestRequest{
		Code:         code,
		TestCases:    testCases,
		TimeLimitSec: request.GetFloat("time_limit_sec", 0),
		MemoryMB:     s.config.Sandbox.MemoryMB,
	}

	result, err := s.runner.RunTests(ctx, req)
	if err != nil {
		s.logger.Error("code test run failed", zap.Error(err))
		return errorResult(fmt.Sprintf("Execution failed: %v", err)), nil
	}

	s.logger.Info("code test run completed",
		zap.Stringer("outcome", result.Outcome),
		zap.Int("test_cases", len(result.Tests)))

	return jsonResult(result)
}

// jsonResult renders an execution result as a single JSON text content.
func jsonResult(result sandbox.ExecutionResult) (*mcp.CallToolResult, error) {
	payload := map[string]any{
		"outcome": result.Outcome.String(),
		"stdout":  result.Stdout,
		"stderr":  result.Stderr,
	}
	if result.ErrorMessage != "" {
		payload["error"] = result.ErrorMessage
	}
	if result.Tests != nil {
		payload["results"] = result.Tests
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: msg,
			},
		},
		IsError: true,
	}
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
