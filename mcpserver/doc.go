// Package mcpserver exposes the sandbox as a Model Context Protocol
// service.
//
// It uses the mark3labs/mcp-go library to handle the protocol details and
// provides two tools: execute_scaffold runs a stored scaffold against one
// input, and execute_code_tests judges a program against a test suite.
//
// The server supports both stdio and HTTP transports as configured by the
// application configuration.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, runner)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio() // or server.ServeHTTP()
package mcpserver
