// Command graph_export fetches a page of the ownership graph, runs the
// default analysis pass, and writes a self-contained vis-network HTML
// document plus a JSON report. It is the batch counterpart of the
// graph_visualize and graph_analyze tools.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/graph/analysis"
	"github.com/graphlens/graphlens/pkg/graph/storage"
	"github.com/graphlens/graphlens/pkg/graph/visualizer"
	"github.com/graphlens/graphlens/services"
)

func main() {
	envFile := flag.String("env", ".env", "Path to environment file")
	limit := flag.Int("limit", 500, "Maximum relationship rows to fetch")
	skip := flag.Int("skip", 0, "Rows to skip for paging")
	nodeLabels := flag.String("node-labels", "", "Comma-separated node labels to filter on")
	maxNodes := flag.Int("max-nodes", 0, "Node ceiling applied after building (0 = none)")
	htmlOut := flag.String("html", "graph.html", "Output HTML file")
	reportOut := flag.String("report", "", "Optional JSON analysis report file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("Warning: Error loading env file %s: %v\n", *envFile, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rows, err := services.DefaultGraphStore().FetchGraph(ctx, storage.FetchSpec{
		Limit:      *limit,
		Skip:       *skip,
		NodeLabels: splitList(*nodeLabels),
	})
	if err != nil {
		log.Fatalf("Failed to fetch graph: %v", err)
	}

	data := graph.ApplyNodeCap(graph.BuildGraphData(rows), *maxNodes)
	log.Printf("Built graph: %d nodes, %d edges", len(data.Nodes), len(data.Edges))

	if err := visualizer.WriteHTML(data, *htmlOut); err != nil {
		log.Fatalf("Failed to write HTML: %v", err)
	}
	log.Printf("Wrote %s", *htmlOut)

	if *reportOut != "" {
		result := analysis.Run(data, analysis.DefaultOptions())
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		if err := os.WriteFile(*reportOut, payload, 0o644); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		log.Printf("Wrote %s", *reportOut)
	}
}

func splitList(raw string) []string {
	if raw == "" {
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
