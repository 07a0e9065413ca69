package mcp

import "github.com/mark3labs/mcp-go/mcp"

func analyzeFileTool() mcp.Tool {
	return mcp.NewTool("analyze_file",
		mcp.WithDescription("Analyze one source file: exports, imports, top-level declarations, and per-import usage verdicts"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the file to analyze"),
		),
	)
}

func classifyImportsTool() mcp.Tool {
	return mcp.NewTool("classify_imports",
		mcp.WithDescription("Classify each imported local name of a file as type-only or value"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the file to classify"),
		),
	)
}

func planBarrelsTool() mcp.Tool {
	return mcp.NewTool("plan_barrels",
		mcp.WithDescription("Resolve the per-directory barrel plans for the configured root without writing anything"),
	)
}

func generateBarrelsTool() mcp.Tool {
	return mcp.NewTool("generate_barrels",
		mcp.WithDescription("Run the full pipeline: patch missing exports, rewrite type-only imports, emit barrels"),
		mcp.WithBoolean("dry_run",
			mcp.Description("Compute every mutation but write nothing"),
		),
	)
}

func getReportTool() mcp.Tool {
	return mcp.NewTool("get_report",
		mcp.WithDescription("Return the report of the most recent run on this server"),
	)
}
