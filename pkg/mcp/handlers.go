package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/barrelgen/pkg/analyzer"
	"github.com/gnana997/barrelgen/pkg/classifier"
	"github.com/gnana997/barrelgen/pkg/registry"
)

// fileAnalysisView is the analyze_file response shape.
type fileAnalysisView struct {
	Path         string                        `json:"path"`
	Language     string                        `json:"language"`
	Exports      []analyzer.ExportRecord       `json:"exports"`
	Imports      []analyzer.ImportRecord       `json:"imports"`
	Declarations []analyzer.Declaration        `json:"declarations"`
	Verdicts     map[string]classifier.Verdict `json:"verdicts"`
}

// barrelPlanView is one directory entry of the plan_barrels response.
type barrelPlanView struct {
	Dir       string              `json:"dir"`
	Barrel    string              `json:"barrel"`
	Files     []registry.FilePlan `json:"files"`
	Conflicts []registry.Conflict `json:"conflicts,omitempty"`
}

func (s *Server) handleAnalyzeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := s.engine.AnalyzeFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	view := fileAnalysisView{
		Path:         state.Analysis.Path,
		Language:     state.Analysis.Language.String(),
		Exports:      state.Analysis.Exports,
		Imports:      state.Analysis.Imports,
		Declarations: state.Analysis.Declarations,
		Verdicts:     state.Verdicts,
	}
	return jsonResult(view)
}

func (s *Server) handleClassifyImports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := s.engine.AnalyzeFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("classification failed: %v", err)), nil
	}

	return jsonResult(state.Verdicts)
}

func (s *Server) handlePlanBarrels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	states, err := s.engine.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("snapshot failed: %v", err)), nil
	}

	plans := s.engine.PlanBarrels(states)

	views := make([]barrelPlanView, 0, len(plans))
	for _, plan := range plans {
		if len(plan.Files) == 0 {
			continue
		}
		views = append(views, barrelPlanView{
			Dir:       plan.Dir,
			Barrel:    s.engine.Config().BarrelName,
			Files:     plan.Files,
			Conflicts: plan.Conflicts,
		})
	}

	return jsonResult(views)
}

func (s *Server) handleGenerateBarrels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dryRun := request.GetBool("dry_run", false)

	run := s.engine.Run
	if dryRun {
		run = s.engine.RunDry
	}

	report, err := run(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run failed: %v", err)), nil
	}
	s.setLastReport(report)
	return jsonResult(report)
}

func (s *Server) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report := s.getLastReport()
	if report == nil {
		return mcp.NewToolResultError("no run has completed on this server yet"), nil
	}
	return jsonResult(report)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
