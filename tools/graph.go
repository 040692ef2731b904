package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/graph/metrics"
	"github.com/graphlens/graphlens/pkg/graph/storage"
	"github.com/graphlens/graphlens/pkg/graph/visualizer"
	"github.com/graphlens/graphlens/services"
	"github.com/graphlens/graphlens/util"
)

const queryTimeout = 30 * time.Second

// Query limits, mirroring the API the dashboard consumed.
const (
	defaultQueryLimit  = 100
	maxQueryLimit      = 1000
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

func RegisterGraphTools(s *server.MCPServer) {
	loadTool := mcp.NewTool("graph_load",
		mcp.WithDescription("Load a page of the ownership graph (companies, persons, shareholding and compensation relationships) as normalized nodes and edges"),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to fetch (1-1000, default 100)")),
		mcp.WithNumber("skip", mcp.Description("Rows to skip for paging (default 0)")),
		mcp.WithString("node_labels", mcp.Description("Comma-separated node labels to filter on (e.g. Company,Person)")),
		mcp.WithString("relationship_types", mcp.Description("Comma-separated relationship types (default HOLDS_SHARES,HAS_COMPENSATION)")),
		mcp.WithNumber("max_nodes", mcp.Description("Node ceiling applied after building; edges never dangle")),
	)
	s.AddTool(loadTool, util.ErrorGuard(util.AdaptLegacyHandler(graphLoadHandler)))

	searchTool := mcp.NewTool("graph_search",
		mcp.WithDescription("Search nodes by name or identifier and return them with their relationships"),
		mcp.WithString("search", mcp.Required(), mcp.Description("Search term")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (1-200, default 50)")),
		mcp.WithString("search_properties", mcp.Description("Comma-separated properties to search (default: schema name/id properties)")),
	)
	s.AddTool(searchTool, util.ErrorGuard(util.AdaptLegacyHandler(graphSearchHandler)))

	nodeTool := mcp.NewTool("graph_node",
		mcp.WithDescription("Fetch one node with its relationships. The id property is auto-detected (bizno, then personId) when omitted"),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node identifier value")),
		mcp.WithString("id_property", mcp.Description("Identifier property name; unrecognized values fall back to 'id'")),
	)
	s.AddTool(nodeTool, util.ErrorGuard(util.AdaptLegacyHandler(graphNodeHandler)))

	egoTool := mcp.NewTool("graph_ego",
		mcp.WithDescription("Load the subgraph within a bounded number of hops around a center node"),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Center node identifier")),
		mcp.WithString("id_property", mcp.Description("Identifier property name")),
		mcp.WithNumber("depth", mcp.Description("Traversal depth (1-3, default 1)")),
		mcp.WithNumber("limit", mcp.Description("Maximum relationships (default 100)")),
		mcp.WithNumber("max_nodes", mcp.Description("Node ceiling applied after building")),
	)
	s.AddTool(egoTool, util.ErrorGuard(util.AdaptLegacyHandler(graphEgoHandler)))

	statsTool := mcp.NewTool("graph_statistics",
		mcp.WithDescription("Aggregate statistics: node count, relationship count and per-label counts including the IndividualShareholder derived count"),
	)
	s.AddTool(statsTool, util.ErrorGuard(util.AdaptLegacyHandler(graphStatisticsHandler)))

	visualizeTool := mcp.NewTool("graph_visualize",
		mcp.WithDescription("Render a page of the ownership graph as a self-contained vis-network HTML document"),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to fetch (default 100)")),
		mcp.WithNumber("skip", mcp.Description("Rows to skip for paging")),
		mcp.WithString("node_labels", mcp.Description("Comma-separated node labels to filter on")),
		mcp.WithNumber("max_nodes", mcp.Description("Node ceiling applied after building")),
	)
	s.AddTool(visualizeTool, util.ErrorGuard(util.AdaptLegacyHandler(graphVisualizeHandler)))
}

func graphLoadHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
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
	return jsonResult(data)
}

func graphSearchHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	term, ok := arguments["search"].(string)
	if !ok || term == "" {
		return mcp.NewToolResultError("search must be a non-empty string"), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	store := services.DefaultGraphStore()
	limit := intArg(arguments, "limit", defaultSearchLimit, maxSearchLimit)

	rows, err := store.SearchNodes(ctx, term, limit, listArg(arguments, "search_properties"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	// Enrich the first matches with their relationships so the result is
	// a connected subgraph, not a bare node list.
	matched := graph.BuildGraphData(rows)
	enriched := rows
	for i, node := range matched.Nodes {
		if i >= 10 {
			break
		}
		idProperty := graph.PropPersonID
		if node.Label == graph.LabelCompany || node.Label == graph.LabelStockholder {
			idProperty = graph.PropBizno
		}
		rels, err := store.Relationships(ctx, node.ID, idProperty, storage.DirectionBoth, 20)
		if err != nil {
			continue
		}
		enriched = append(enriched, rels...)
	}

	data := graph.BuildGraphData(enriched)
	observeGraph(data)
	return jsonResult(data)
}

func graphNodeHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	nodeID, ok := arguments["node_id"].(string)
	if !ok || nodeID == "" {
		return mcp.NewToolResultError("node_id must be a non-empty string"), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	store := services.DefaultGraphStore()

	record, idProperty, err := resolveNodeRecord(ctx, store, nodeID, stringArg(arguments, "id_property"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("node lookup failed: %v", err)), nil
	}
	if record == nil {
		return mcp.NewToolResultError(fmt.Sprintf("node not found: %s", nodeID)), nil
	}

	rels, err := store.Relationships(ctx, nodeID, idProperty, storage.DirectionBoth, 50)
	if err != nil {
		rels = nil
	}

	return jsonResult(map[string]interface{}{
		"node":          record.Properties,
		"labels":        record.Labels,
		"id_property":   idProperty,
		"relationships": graph.BuildGraphData(rels),
	})
}

// resolveNodeRecord looks up a node, auto-detecting the id property
// (bizno, then personId) when the caller supplied none.
func resolveNodeRecord(ctx context.Context, store storage.GraphStore, nodeID, idProperty string) (*storage.NodeRecord, string, error) {
	if idProperty != "" {
		idProperty = graph.SanitizeIDProperty(idProperty)
		record, err := store.NodeByID(ctx, nodeID, idProperty)
		return record, idProperty, err
	}

	for _, candidate := range []string{graph.PropBizno, graph.PropPersonID} {
		record, err := store.NodeByID(ctx, nodeID, candidate)
		if err != nil {
			return nil, candidate, err
		}
		if record != nil {
			return record, candidate, nil
		}
	}
	return nil, graph.GenericIDProperty, nil
}

func graphEgoHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	nodeID, ok := arguments["node_id"].(string)
	if !ok || nodeID == "" {
		return mcp.NewToolResultError("node_id must be a non-empty string"), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := services.DefaultGraphStore().EgoGraph(ctx, nodeID,
		stringArg(arguments, "id_property"),
		intArg(arguments, "depth", 1, 3),
		intArg(arguments, "limit", defaultQueryLimit, maxQueryLimit),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ego graph failed: %v", err)), nil
	}

	data := graph.ApplyNodeCap(graph.BuildGraphData(rows), intArg(arguments, "max_nodes", 0, 0))
	observeGraph(data)
	return jsonResult(data)
}

func graphStatisticsHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	stats, err := services.DefaultGraphStore().Statistics(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("statistics failed: %v", err)), nil
	}
	return jsonResult(stats)
}

func graphVisualizeHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
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

	html, err := visualizer.GenerateHTML(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render graph: %v", err)), nil
	}
	return mcp.NewToolResultText(html), nil
}

// loadGraph is the fetch-and-build pipeline shared by the load, analyze
// and visualize tools. When maxNodes is set the returned edge set never
// dangles.
func loadGraph(ctx context.Context, spec storage.FetchSpec, maxNodes int) (graph.GraphData, error) {
	rows, err := services.DefaultGraphStore().FetchGraph(ctx, spec)
	if err != nil {
		return graph.GraphData{}, err
	}

	data := graph.ApplyNodeCap(graph.BuildGraphData(rows), maxNodes)
	observeGraph(data)
	return data, nil
}

func observeGraph(data graph.GraphData) {
	nodesByType := make(map[string]int)
	for _, n := range data.Nodes {
		nodesByType[n.Label]++
	}
	edgesByType := make(map[string]int)
	for _, e := range data.Edges {
		edgesByType[e.Label]++
	}
	metrics.ObserveGraph(nodesByType, edgesByType)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func stringArg(arguments map[string]interface{}, key string) string {
	v, _ := arguments[key].(string)
	return v
}

func intArg(arguments map[string]interface{}, key string, def, max int) int {
	v, ok := arguments[key].(float64)
	if !ok {
		return def
	}
	n := int(v)
	if n < 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

func listArg(arguments map[string]interface{}, key string) []string {
	raw, ok := arguments[key].(string)
	if !ok || raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
