package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/covpost/core"
	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/internal/outwriter"
	"github.com/huangsam/covpost/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// loadReport reads report_path from the request, falling back to the configured report.
func (h *toolHandler) loadReport(request mcp.CallToolRequest) (*schema.Report, error) {
	path := strings.TrimSpace(request.GetString("report_path", ""))
	if path == "" && h.baseCfg != nil {
		path = h.baseCfg.ReportPath
	}
	if path == "" {
		return nil, errors.New("report_path is required")
	}
	return core.LoadReport(path)
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetTotalCoverage(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.loadReport(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}
	return jsonResult(core.TotalCoverage(report)), nil
}

func (h *toolHandler) handleGetChangedFilesCoverage(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	changed := request.GetStringSlice("changed_files", nil)
	if len(changed) == 0 {
		return mcp.NewToolResultError("changed_files must list at least one path"), nil
	}
	report, err := h.loadReport(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	files, err := core.CorrelateChangedFiles(report, core.ClassifyPaths(changed))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("correlation failed: %v", err)), nil
	}
	if files == nil {
		files = []schema.FileCoverage{}
	}
	return jsonResult(files), nil
}

func (h *toolHandler) handleRenderCoverageComment(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.loadReport(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	// Unrecognized files only drop the changed-file section, as in the publish pipeline
	files, err := core.CorrelateChangedFiles(report, core.ClassifyPaths(request.GetStringSlice("changed_files", nil)))
	if err != nil {
		files = nil
	}
	return mcp.NewToolResultText(outwriter.RenderComment(core.TotalCoverage(report), files)), nil
}
