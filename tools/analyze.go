package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/graphlens/graphlens/pkg/graph/analysis"
	"github.com/graphlens/graphlens/pkg/graph/storage"
	"github.com/graphlens/graphlens/util"
)

func RegisterAnalysisTools(s *server.MCPServer) {
	analyzeTool := mcp.NewTool("graph_analyze",
		mcp.WithDescription("Compute centrality metrics, connected components and a suggested focus node over a page of the ownership graph. Expensive metrics are skipped with a reason when the graph exceeds size ceilings"),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to fetch (1-1000, default 100)")),
		mcp.WithNumber("skip", mcp.Description("Rows to skip for paging (default 0)")),
		mcp.WithString("node_labels", mcp.Description("Comma-separated node labels to filter on")),
		mcp.WithString("relationship_types", mcp.Description("Comma-separated relationship types")),
		mcp.WithNumber("max_nodes", mcp.Description("Node ceiling applied before analysis")),
		mcp.WithBoolean("include_pagerank", mcp.Description("Compute pagerank (default true)")),
		mcp.WithBoolean("include_betweenness", mcp.Description("Compute betweenness centrality (default false, heaviest metric)")),
		mcp.WithBoolean("include_components", mcp.Description("Compute weakly connected components (default true)")),
		mcp.WithBoolean("unweighted", mcp.Description("Ignore stockRatio edge weights")),
	)
	s.AddTool(analyzeTool, util.ErrorGuard(util.AdaptLegacyHandler(graphAnalyzeHandler)))
}

func graphAnalyzeHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	spec := storage.FetchSpec{
		Limit:      intArg(arguments, "limit", defaultQueryLimit, maxQueryLimit),
		Skip:       intArg(arguments, "skip", 0, 0),
		NodeLabels: listArg(arguments, "node_labels"),
		RelTypes:   listArg(arguments, "relationship_types"),
	}

	data, err := loadGraph(ctx, spec, intArg(arguments, "max_nodes", 0, 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load graph: %v", err)), nil
	}

	opts := analysis.DefaultOptions()
	if v, ok := arguments["include_pagerank"].(bool); ok {
		opts.IncludePagerank = v
	}
	if v, ok := arguments["include_betweenness"].(bool); ok {
		opts.IncludeBetweenness = v
	}
	if v, ok := arguments["include_components"].(bool); ok {
		opts.IncludeComponents = v
	}
	if v, ok := arguments["unweighted"].(bool); ok && v {
		opts.UseEdgeWeight = false
	}

	return jsonResult(analysis.Run(data, opts))
}
