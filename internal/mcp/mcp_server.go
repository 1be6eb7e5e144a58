// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/covpost/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the covpost MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Covpost Coverage Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg}

	// --- 1. Tool: get_total_coverage ---
	s.AddTool(mcp.NewTool("get_total_coverage",
		mcp.WithDescription("Summarize whole-report coverage (instruction, line, method, class) from a JaCoCo XML report."),
		mcp.WithString("report_path", mcp.Description("Path to the JaCoCo XML report."), mcp.Required()),
	), h.handleGetTotalCoverage)

	// --- 2. Tool: get_changed_files_coverage ---
	s.AddTool(mcp.NewTool("get_changed_files_coverage",
		mcp.WithDescription("Aggregate coverage for the given changed source files (Java, Kotlin, Groovy)."),
		mcp.WithString("report_path", mcp.Description("Path to the JaCoCo XML report."), mcp.Required()),
		mcp.WithArray("changed_files",
			mcp.Description("Repository-relative paths, e.g. src/main/java/com/x/Foo.java."),
			mcp.WithStringItems(),
			mcp.Required(),
		),
	), h.handleGetChangedFilesCoverage)

	// --- 3. Tool: render_coverage_comment ---
	s.AddTool(mcp.NewTool("render_coverage_comment",
		mcp.WithDescription("Render the markdown pull request comment for a report and optional changed files."),
		mcp.WithString("report_path", mcp.Description("Path to the JaCoCo XML report."), mcp.Required()),
		mcp.WithArray("changed_files",
			mcp.Description("Repository-relative paths of changed files."),
			mcp.WithStringItems(),
		),
	), h.handleRenderCoverageComment)

	return s
}

// StartMCPServer starts the covpost MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
